package vault

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/pdmvault/internal/logger"
	"github.com/marmos91/pdmvault/pkg/vault/errors"
)

// run executes one operation attempt function under the assembler's retry
// policy. Only retryable errors (store unavailability and commit conflicts)
// trigger another attempt; NotFound, Validation and Locked surface
// immediately. Each attempt works on a fresh session, so a failed attempt
// leaves no partial state behind.
func (a *Assembler) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	backoff := a.opts.RetryBackoff

	// Correlation ID tying together the log lines of one logical operation
	// across its retried sessions.
	opID := uuid.NewString()

	var err error
	for attempt := 1; attempt <= a.opts.RetryAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.IsRetryable(err) {
			break
		}
		if attempt == a.opts.RetryAttempts {
			break
		}

		a.metrics.RecordRetry(operation)
		logger.Warn("Retrying operation",
			logger.KeyOperation, operation,
			logger.KeySession, opID,
			logger.KeyAttempt, attempt,
			logger.KeyError, err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			err = ctx.Err()
			a.metrics.RecordOperation(operation, "canceled", time.Since(start))
			return err
		}
		backoff *= 2
	}

	a.metrics.RecordOperation(operation, resultLabel(err), time.Since(start))
	return err
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.Code(err); code != 0 {
		return strings.ToLower(code.String())
	}
	return "error"
}

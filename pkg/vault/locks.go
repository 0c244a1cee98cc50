package vault

import (
	"context"
	"time"

	"github.com/marmos91/pdmvault/internal/logger"
	"github.com/marmos91/pdmvault/pkg/metadata"
	"github.com/marmos91/pdmvault/pkg/vault/errors"
	"github.com/marmos91/pdmvault/pkg/version"
)

// CheckoutRequest asks for an exclusive edit lock on a file.
type CheckoutRequest struct {
	Filename string `validate:"required"`
	User     string `validate:"required,min=3"`
	Message  string `validate:"required,max=500"`
}

// CheckinRequest releases an edit lock held by User.
type CheckinRequest struct {
	Filename string `validate:"required"`
	User     string `validate:"required,min=3"`
}

// Checkout acquires the edit lock for a file and returns its record. Fails
// Locked when anyone (including the requesting user) already holds the lock.
func (a *Assembler) Checkout(ctx context.Context, req CheckoutRequest) (*FileRecord, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var record *FileRecord
	err := a.run(ctx, "checkout", func(ctx context.Context) error {
		rec, err := a.checkout(ctx, req)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *Assembler) checkout(ctx context.Context, req CheckoutRequest) (*FileRecord, error) {
	sess, err := a.meta.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Rollback()

	status, err := a.resolveStatus(ctx, req.Filename)
	if err != nil {
		return nil, err
	}

	existing, err := sess.GetLock(ctx, req.Filename)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewLockedError(req.Filename, existing.User)
	}

	err = sess.PutLock(ctx, &metadata.Lock{
		Filename:   req.Filename,
		User:       req.User,
		Message:    req.Message,
		AcquiredAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	record, err := a.assemble(ctx, sess, version.TrackedFile{
		Filename:  req.Filename,
		Status:    status,
		SizeBytes: a.sizeOf(ctx, req.Filename),
	})
	if err != nil {
		return nil, err
	}

	if err := sess.Commit(); err != nil {
		return nil, err
	}

	logger.Info("File checked out",
		logger.KeyFilename, req.Filename,
		logger.KeyUser, req.User)
	return &record, nil
}

// Checkin releases the edit lock for a file and returns its record. Only
// the lock holder may release it; anyone else fails Locked. Checking in a
// file that is not locked fails Validation.
func (a *Assembler) Checkin(ctx context.Context, req CheckinRequest) (*FileRecord, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var record *FileRecord
	err := a.run(ctx, "checkin", func(ctx context.Context) error {
		rec, err := a.checkin(ctx, req)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *Assembler) checkin(ctx context.Context, req CheckinRequest) (*FileRecord, error) {
	sess, err := a.meta.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Rollback()

	status, err := a.resolveStatus(ctx, req.Filename)
	if err != nil {
		return nil, err
	}

	existing, err := sess.GetLock(ctx, req.Filename)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.NewValidationError("file is not checked out")
	}
	if existing.User != req.User {
		return nil, errors.NewLockedError(req.Filename, existing.User)
	}

	if err := sess.DeleteLock(ctx, req.Filename); err != nil {
		return nil, err
	}

	record, err := a.assemble(ctx, sess, version.TrackedFile{
		Filename:  req.Filename,
		Status:    status,
		SizeBytes: a.sizeOf(ctx, req.Filename),
	})
	if err != nil {
		return nil, err
	}

	if err := sess.Commit(); err != nil {
		return nil, err
	}

	logger.Info("File checked in",
		logger.KeyFilename, req.Filename,
		logger.KeyUser, req.User)
	return &record, nil
}

package vault_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/pdmvault/pkg/vault"
	"github.com/marmos91/pdmvault/pkg/vault/errors"
)

func TestCheckout_AcquiresLock(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	record, err := f.assembler.Checkout(ctx, vault.CheckoutRequest{
		Filename: "bracket.sldprt",
		User:     "alice",
		Message:  "reworking mounting holes",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", record.LockedBy)

	listed, err := f.assembler.GetFile(ctx, "bracket.sldprt")
	require.NoError(t, err)
	assert.Equal(t, "alice", listed.LockedBy)
}

func TestCheckout_AlreadyLockedFails(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	_, err := f.assembler.Checkout(ctx, vault.CheckoutRequest{
		Filename: "bracket.sldprt",
		User:     "alice",
		Message:  "reworking mounting holes",
	})
	require.NoError(t, err)

	_, err = f.assembler.Checkout(ctx, vault.CheckoutRequest{
		Filename: "bracket.sldprt",
		User:     "bob",
		Message:  "want to edit too",
	})
	require.Error(t, err)
	assert.True(t, errors.IsLockedError(err))
	assert.Contains(t, err.Error(), "alice", "the error names the lock holder")
}

func TestCheckout_UntrackedFileFailsNotFound(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	_, err := f.assembler.Checkout(context.Background(), vault.CheckoutRequest{
		Filename: "ghost.sldprt",
		User:     "alice",
		Message:  "does not exist",
	})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestCheckout_RequestValidation(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	tests := []struct {
		name string
		req  vault.CheckoutRequest
	}{
		{"missing filename", vault.CheckoutRequest{User: "alice", Message: "msg"}},
		{"missing user", vault.CheckoutRequest{Filename: "bracket.sldprt", Message: "msg"}},
		{"user too short", vault.CheckoutRequest{Filename: "bracket.sldprt", User: "al", Message: "msg"}},
		{"missing message", vault.CheckoutRequest{Filename: "bracket.sldprt", User: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.assembler.Checkout(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestCheckin_ReleasesLock(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	_, err := f.assembler.Checkout(ctx, vault.CheckoutRequest{
		Filename: "bracket.sldprt",
		User:     "alice",
		Message:  "reworking mounting holes",
	})
	require.NoError(t, err)

	record, err := f.assembler.Checkin(ctx, vault.CheckinRequest{
		Filename: "bracket.sldprt",
		User:     "alice",
	})
	require.NoError(t, err)
	assert.Empty(t, record.LockedBy)

	// The file is free for the next user.
	_, err = f.assembler.Checkout(ctx, vault.CheckoutRequest{
		Filename: "bracket.sldprt",
		User:     "bob",
		Message:  "my turn",
	})
	require.NoError(t, err)
}

func TestCheckin_WrongUserFails(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	_, err := f.assembler.Checkout(ctx, vault.CheckoutRequest{
		Filename: "bracket.sldprt",
		User:     "alice",
		Message:  "reworking mounting holes",
	})
	require.NoError(t, err)

	_, err = f.assembler.Checkin(ctx, vault.CheckinRequest{
		Filename: "bracket.sldprt",
		User:     "bob",
	})
	require.Error(t, err)
	assert.True(t, errors.IsLockedError(err))

	// Lock still held by alice.
	record, err := f.assembler.GetFile(ctx, "bracket.sldprt")
	require.NoError(t, err)
	assert.Equal(t, "alice", record.LockedBy)
}

func TestCheckin_NotLockedFailsValidation(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)

	_, err := f.assembler.Checkin(context.Background(), vault.CheckinRequest{
		Filename: "bracket.sldprt",
		User:     "alice",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestCheckout_OnlyTwoRacersOneWins(t *testing.T) {
	f := newTestFixture(t, vault.Options{RequireTracked: true}, defaultFiles()...)
	ctx := context.Background()

	results := make(chan error, 2)
	for _, user := range []string{"alice", "bobby"} {
		go func(user string) {
			_, err := f.assembler.Checkout(ctx, vault.CheckoutRequest{
				Filename: "bracket.sldprt",
				User:     user,
				Message:  "racing for the lock",
			})
			results <- err
		}(user)
	}

	var failures, successes int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			assert.True(t, errors.IsLockedError(err))
			failures++
		} else {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
}

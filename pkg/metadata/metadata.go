// Package metadata defines the mutable descriptive store consumed by the
// vault: per-file descriptions and checkout locks, keyed by filename.
//
// The package holds only the data model and the store/session contracts.
// Backends live under store/ (memory, badger, gorm) and all pass the shared
// conformance suite in storetest.
package metadata

import (
	"context"
	"time"
)

// Entry is the persisted metadata row for one file.
//
// Entries are created implicitly on first upsert and updated in place
// afterwards; the vault never deletes them. The filename is the only join
// key between this store and the version store.
type Entry struct {
	// Filename is the primary key, a repository-relative path.
	Filename string

	// Description is the human-entered description. The zero value means
	// no description has been set; the assembler substitutes its default
	// sentinel on read.
	Description string
}

// Lock records a checkout: the exclusive right to modify a file's content.
//
// Locks are advisory at the store level; the assembler enforces ownership
// on checkin.
type Lock struct {
	// Filename is the locked file.
	Filename string

	// User is the lock owner.
	User string

	// Message is the reason given at checkout.
	Message string

	// AcquiredAt is the checkout time in UTC.
	AcquiredAt time.Time
}

// ============================================================================
// Session Interface
// ============================================================================

// Session is a single-use transactional handle against the store.
//
// All metadata reads and writes of one logical operation go through one
// session. Exactly one of Commit or Rollback executes exactly once per
// session: Rollback after a successful Commit (or vice versa) is a no-op
// returning nil, so `defer sess.Rollback()` is safe on every exit path.
//
// Isolation is read-committed: a session never observes another session's
// uncommitted writes. A session does observe its own uncommitted writes,
// which is what makes read-your-write assembly possible before commit.
//
// Sessions are NOT safe for concurrent use; each logical operation owns
// exactly one and discards it at operation end.
type Session interface {
	// GetEntry retrieves the metadata entry for a filename.
	// Absent metadata is not an error: returns (nil, nil) when no entry
	// exists for the filename.
	GetEntry(ctx context.Context, filename string) (*Entry, error)

	// UpsertEntry creates the entry if absent, otherwise overwrites its
	// description. The write becomes visible to other sessions at Commit.
	UpsertEntry(ctx context.Context, entry *Entry) error

	// GetLock retrieves the checkout lock for a filename.
	// Returns (nil, nil) when the file is not checked out.
	GetLock(ctx context.Context, filename string) (*Lock, error)

	// PutLock stores a checkout lock. Locks are create-only: when another
	// session committed a lock for the same filename first, PutLock or the
	// subsequent Commit fails with a Conflict error. Callers check
	// ownership with GetLock and release with DeleteLock before relocking.
	PutLock(ctx context.Context, lock *Lock) error

	// DeleteLock removes the checkout lock for a filename.
	// Deleting an absent lock is not an error.
	DeleteLock(ctx context.Context, filename string) error

	// Commit makes the session's writes visible atomically.
	// Stores with optimistic concurrency may return a Conflict error here
	// when another session committed a colliding write first.
	Commit() error

	// Rollback discards the session's writes. Always safe to call; returns
	// nil after a successful Commit.
	Rollback() error
}

// ============================================================================
// Store Interface
// ============================================================================

// Store is a keyed store of mutable descriptive fields.
//
// Concurrency contract:
//   - Sessions touching distinct filenames never block one another.
//   - Same-key writes resolve last-write-wins; each committed write is
//     atomic as a whole, never a corrupted or interleaved value. Backends
//     may strengthen this to optimistic concurrency by failing Commit with
//     a Conflict error, which callers retry.
//
// Thread Safety: implementations must be safe for concurrent use by
// multiple goroutines; the sessions they hand out are not.
type Store interface {
	// Begin opens a new session.
	Begin(ctx context.Context) (Session, error)

	// Healthcheck verifies the store is operational.
	Healthcheck(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Package memory implements metadata.Store with in-process maps.
//
// Sessions buffer their writes and apply them under the store mutex at
// commit, so rollback genuinely discards everything and a failed operation
// leaves the store untouched. Reads outside the session's own write set see
// only committed data (read-committed).
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/pdmvault/pkg/metadata"
	"github.com/marmos91/pdmvault/pkg/vault/errors"
)

// Store is an in-memory metadata store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]metadata.Entry
	locks   map[string]metadata.Lock

	failing  bool
	failNext int
}

// New creates an empty in-memory metadata store.
func New() *Store {
	return &Store{
		entries: make(map[string]metadata.Entry),
		locks:   make(map[string]metadata.Lock),
	}
}

// Begin opens a buffered session against the store.
func (s *Store) Begin(ctx context.Context) (metadata.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	failing := s.failing
	if s.failNext > 0 {
		s.failNext--
		failing = true
	}
	s.mu.Unlock()
	if failing {
		return nil, errors.NewUnavailableError("metadata", errSimulated)
	}

	return &session{
		store:          s,
		pendingEntries: make(map[string]metadata.Entry),
		pendingLocks:   make(map[string]*metadata.Lock),
	}, nil
}

// Healthcheck verifies the store is operational.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return errors.NewUnavailableError("metadata", errSimulated)
	}
	return nil
}

// Close releases resources. For the memory store this is a no-op.
func (s *Store) Close() error {
	return nil
}

// SetFailing toggles simulated unavailability for retry tests. While
// failing, Begin and Healthcheck return Unavailable errors.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// FailNext makes the next n Begin calls fail with Unavailable errors before
// the store recovers on its own. Used to exercise retry policies.
func (s *Store) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// ============================================================================
// Session
// ============================================================================

// session buffers writes until Commit applies them atomically.
type session struct {
	store *Store

	pendingEntries map[string]metadata.Entry
	// pendingLocks maps filename to the new lock, or to nil for a
	// buffered deletion.
	pendingLocks map[string]*metadata.Lock

	done bool
}

func (sess *session) GetEntry(ctx context.Context, filename string) (*metadata.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Own uncommitted writes first (read-your-write).
	if entry, ok := sess.pendingEntries[filename]; ok {
		entryCopy := entry
		return &entryCopy, nil
	}

	sess.store.mu.RLock()
	defer sess.store.mu.RUnlock()

	entry, ok := sess.store.entries[filename]
	if !ok {
		return nil, nil
	}
	entryCopy := entry
	return &entryCopy, nil
}

func (sess *session) UpsertEntry(ctx context.Context, entry *metadata.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sess.pendingEntries[entry.Filename] = *entry
	return nil
}

func (sess *session) GetLock(ctx context.Context, filename string) (*metadata.Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if lock, buffered := sess.pendingLocks[filename]; buffered {
		if lock == nil {
			return nil, nil
		}
		lockCopy := *lock
		return &lockCopy, nil
	}

	sess.store.mu.RLock()
	defer sess.store.mu.RUnlock()

	lock, ok := sess.store.locks[filename]
	if !ok {
		return nil, nil
	}
	lockCopy := lock
	return &lockCopy, nil
}

func (sess *session) PutLock(ctx context.Context, lock *metadata.Lock) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lockCopy := *lock
	sess.pendingLocks[lock.Filename] = &lockCopy
	return nil
}

func (sess *session) DeleteLock(ctx context.Context, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sess.pendingLocks[filename] = nil
	return nil
}

// Commit applies all buffered writes under the store mutex in one critical
// section, so concurrent readers observe either none or all of them.
func (sess *session) Commit() error {
	if sess.done {
		return nil
	}
	sess.done = true

	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()

	// Locks are create-only: a racing session that committed a lock for the
	// same filename first wins, and this commit fails as a whole.
	for filename, lock := range sess.pendingLocks {
		if lock == nil {
			continue
		}
		if _, held := sess.store.locks[filename]; held {
			return errors.NewConflictError(filename)
		}
	}

	for filename, entry := range sess.pendingEntries {
		sess.store.entries[filename] = entry
	}
	for filename, lock := range sess.pendingLocks {
		if lock == nil {
			delete(sess.store.locks, filename)
		} else {
			sess.store.locks[filename] = *lock
		}
	}

	return nil
}

// Rollback discards the buffered writes.
func (sess *session) Rollback() error {
	if sess.done {
		return nil
	}
	sess.done = true
	sess.pendingEntries = nil
	sess.pendingLocks = nil
	return nil
}

type simulatedError struct{}

func (simulatedError) Error() string { return "simulated outage" }

var errSimulated = simulatedError{}

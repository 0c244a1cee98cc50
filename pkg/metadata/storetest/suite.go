package storetest

import (
	"testing"

	"github.com/marmos91/pdmvault/pkg/metadata"
)

// StoreFactory creates a fresh, empty store for one test. Implementations
// should register cleanup with t.Cleanup.
type StoreFactory func(t *testing.T) metadata.Store

// RunConformanceSuite runs the full behavioral contract against a store
// implementation.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Run("Entries", func(t *testing.T) { runEntryTests(t, factory) })
	t.Run("Locks", func(t *testing.T) { runLockTests(t, factory) })
	t.Run("Sessions", func(t *testing.T) { runSessionTests(t, factory) })
	t.Run("Concurrency", func(t *testing.T) { runConcurrencyTests(t, factory) })

	t.Run("Healthcheck", func(t *testing.T) {
		store := factory(t)
		if err := store.Healthcheck(t.Context()); err != nil {
			t.Fatalf("Healthcheck() failed: %v", err)
		}
	})
}

// commitSession commits and fails the test on error.
func commitSession(t *testing.T, sess metadata.Session) {
	t.Helper()
	if err := sess.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
}

// beginSession opens a session and fails the test on error.
func beginSession(t *testing.T, store metadata.Store) metadata.Session {
	t.Helper()
	sess, err := store.Begin(t.Context())
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	return sess
}

// putEntry upserts and commits a single entry through its own session.
func putEntry(t *testing.T, store metadata.Store, filename, description string) {
	t.Helper()
	sess := beginSession(t, store)
	defer sess.Rollback()

	err := sess.UpsertEntry(t.Context(), &metadata.Entry{
		Filename:    filename,
		Description: description,
	})
	if err != nil {
		t.Fatalf("UpsertEntry() failed: %v", err)
	}
	commitSession(t, sess)
}

// getEntry reads an entry through its own session.
func getEntry(t *testing.T, store metadata.Store, filename string) *metadata.Entry {
	t.Helper()
	sess := beginSession(t, store)
	defer sess.Rollback()

	entry, err := sess.GetEntry(t.Context(), filename)
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	commitSession(t, sess)
	return entry
}

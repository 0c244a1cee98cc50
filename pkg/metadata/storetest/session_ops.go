package storetest

import (
	"testing"
	"time"

	"github.com/marmos91/pdmvault/pkg/metadata"
)

func fixedTime() time.Time {
	return time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)
}

// runSessionTests verifies the transactional contract of sessions.
func runSessionTests(t *testing.T, factory StoreFactory) {
	t.Run("ReadYourWrite", func(t *testing.T) { testReadYourWrite(t, factory) })
	t.Run("RollbackDiscardsWrites", func(t *testing.T) { testRollbackDiscards(t, factory) })
	t.Run("ReadCommittedIsolation", func(t *testing.T) { testReadCommitted(t, factory) })
	t.Run("RollbackAfterCommitIsNoop", func(t *testing.T) { testRollbackAfterCommit(t, factory) })
	t.Run("CommitAfterRollbackIsNoop", func(t *testing.T) { testCommitAfterRollback(t, factory) })
}

// testReadYourWrite verifies a session observes its own uncommitted writes.
func testReadYourWrite(t *testing.T, factory StoreFactory) {
	store := factory(t)

	sess := beginSession(t, store)
	defer sess.Rollback()

	err := sess.UpsertEntry(t.Context(), &metadata.Entry{
		Filename:    "a.mcam",
		Description: "uncommitted",
	})
	if err != nil {
		t.Fatalf("UpsertEntry() failed: %v", err)
	}

	entry, err := sess.GetEntry(t.Context(), "a.mcam")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if entry == nil || entry.Description != "uncommitted" {
		t.Fatalf("GetEntry() = %+v, want own uncommitted write", entry)
	}
}

// testRollbackDiscards verifies a rolled-back session leaves the store
// unchanged.
func testRollbackDiscards(t *testing.T, factory StoreFactory) {
	store := factory(t)

	sess := beginSession(t, store)
	err := sess.UpsertEntry(t.Context(), &metadata.Entry{
		Filename:    "a.mcam",
		Description: "doomed",
	})
	if err != nil {
		t.Fatalf("UpsertEntry() failed: %v", err)
	}
	if err := sess.PutLock(t.Context(), testLock("a.mcam", "mmclean", "doomed")); err != nil {
		t.Fatalf("PutLock() failed: %v", err)
	}
	if err := sess.Rollback(); err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}

	if entry := getEntry(t, store, "a.mcam"); entry != nil {
		t.Errorf("entry %+v survived rollback", entry)
	}

	read := beginSession(t, store)
	defer read.Rollback()
	lock, err := read.GetLock(t.Context(), "a.mcam")
	if err != nil {
		t.Fatalf("GetLock() failed: %v", err)
	}
	if lock != nil {
		t.Errorf("lock %+v survived rollback", lock)
	}
}

// testReadCommitted verifies a session never observes another session's
// uncommitted writes.
func testReadCommitted(t *testing.T, factory StoreFactory) {
	store := factory(t)

	writer := beginSession(t, store)
	err := writer.UpsertEntry(t.Context(), &metadata.Entry{
		Filename:    "a.mcam",
		Description: "not yet visible",
	})
	if err != nil {
		t.Fatalf("UpsertEntry() failed: %v", err)
	}

	reader := beginSession(t, store)
	entry, err := reader.GetEntry(t.Context(), "a.mcam")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("reader observed uncommitted write: %+v", entry)
	}
	if err := reader.Rollback(); err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}

	commitSession(t, writer)

	if entry := getEntry(t, store, "a.mcam"); entry == nil {
		t.Error("entry not visible after commit")
	}
}

// testRollbackAfterCommit verifies the deferred-rollback pattern is safe.
func testRollbackAfterCommit(t *testing.T, factory StoreFactory) {
	store := factory(t)

	sess := beginSession(t, store)
	err := sess.UpsertEntry(t.Context(), &metadata.Entry{
		Filename:    "a.mcam",
		Description: "committed",
	})
	if err != nil {
		t.Fatalf("UpsertEntry() failed: %v", err)
	}
	commitSession(t, sess)

	if err := sess.Rollback(); err != nil {
		t.Fatalf("Rollback() after Commit returned %v, want nil", err)
	}

	if entry := getEntry(t, store, "a.mcam"); entry == nil || entry.Description != "committed" {
		t.Errorf("entry = %+v, want committed value intact", entry)
	}
}

// testCommitAfterRollback verifies a rolled-back session cannot resurrect
// its writes.
func testCommitAfterRollback(t *testing.T, factory StoreFactory) {
	store := factory(t)

	sess := beginSession(t, store)
	err := sess.UpsertEntry(t.Context(), &metadata.Entry{
		Filename:    "a.mcam",
		Description: "doomed",
	})
	if err != nil {
		t.Fatalf("UpsertEntry() failed: %v", err)
	}
	if err := sess.Rollback(); err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if err := sess.Commit(); err != nil {
		t.Fatalf("Commit() after Rollback returned %v, want nil", err)
	}

	if entry := getEntry(t, store, "a.mcam"); entry != nil {
		t.Errorf("rolled-back write resurfaced: %+v", entry)
	}
}

package storetest

import (
	"testing"

	"github.com/marmos91/pdmvault/pkg/metadata"
)

// runEntryTests runs all entry operation conformance tests.
func runEntryTests(t *testing.T, factory StoreFactory) {
	t.Run("AbsentEntryIsNotAnError", func(t *testing.T) { testAbsentEntry(t, factory) })
	t.Run("UpsertCreates", func(t *testing.T) { testUpsertCreates(t, factory) })
	t.Run("UpsertOverwrites", func(t *testing.T) { testUpsertOverwrites(t, factory) })
	t.Run("EmptyDescriptionRoundTrips", func(t *testing.T) { testEmptyDescription(t, factory) })
	t.Run("DistinctKeysAreIndependent", func(t *testing.T) { testDistinctKeys(t, factory) })
}

// testAbsentEntry verifies a missing entry reads back as (nil, nil).
func testAbsentEntry(t *testing.T, factory StoreFactory) {
	store := factory(t)

	entry := getEntry(t, store, "never-written.mcam")
	if entry != nil {
		t.Fatalf("GetEntry() = %+v, want nil for absent entry", entry)
	}
}

// testUpsertCreates verifies the entry is created implicitly on first upsert.
func testUpsertCreates(t *testing.T, factory StoreFactory) {
	store := factory(t)

	putEntry(t, store, "a.mcam", "hull thickness spec")

	entry := getEntry(t, store, "a.mcam")
	if entry == nil {
		t.Fatal("GetEntry() = nil after upsert")
	}
	if entry.Filename != "a.mcam" {
		t.Errorf("Filename = %q, want %q", entry.Filename, "a.mcam")
	}
	if entry.Description != "hull thickness spec" {
		t.Errorf("Description = %q, want %q", entry.Description, "hull thickness spec")
	}
}

// testUpsertOverwrites verifies an existing entry is updated in place.
func testUpsertOverwrites(t *testing.T, factory StoreFactory) {
	store := factory(t)

	putEntry(t, store, "a.mcam", "first")
	putEntry(t, store, "a.mcam", "second")

	entry := getEntry(t, store, "a.mcam")
	if entry == nil {
		t.Fatal("GetEntry() = nil after upserts")
	}
	if entry.Description != "second" {
		t.Errorf("Description = %q, want %q", entry.Description, "second")
	}
}

// testEmptyDescription verifies the store does not confuse an empty
// description with an absent entry. The empty-vs-default policy belongs to
// the assembler, not the store.
func testEmptyDescription(t *testing.T, factory StoreFactory) {
	store := factory(t)

	putEntry(t, store, "a.mcam", "")

	entry := getEntry(t, store, "a.mcam")
	if entry == nil {
		t.Fatal("GetEntry() = nil, want entry with empty description")
	}
	if entry.Description != "" {
		t.Errorf("Description = %q, want empty", entry.Description)
	}
}

// testDistinctKeys verifies writes to one filename do not leak into another.
func testDistinctKeys(t *testing.T, factory StoreFactory) {
	store := factory(t)

	putEntry(t, store, "a.mcam", "alpha")
	putEntry(t, store, "b.mcam", "beta")

	if entry := getEntry(t, store, "a.mcam"); entry == nil || entry.Description != "alpha" {
		t.Errorf("a.mcam = %+v, want description %q", entry, "alpha")
	}
	if entry := getEntry(t, store, "b.mcam"); entry == nil || entry.Description != "beta" {
		t.Errorf("b.mcam = %+v, want description %q", entry, "beta")
	}
}

// runLockTests runs all checkout-lock conformance tests.
func runLockTests(t *testing.T, factory StoreFactory) {
	t.Run("AbsentLockIsNotAnError", func(t *testing.T) {
		store := factory(t)
		sess := beginSession(t, store)
		defer sess.Rollback()

		lock, err := sess.GetLock(t.Context(), "free.mcam")
		if err != nil {
			t.Fatalf("GetLock() failed: %v", err)
		}
		if lock != nil {
			t.Fatalf("GetLock() = %+v, want nil", lock)
		}
	})

	t.Run("PutAndGetLock", func(t *testing.T) {
		store := factory(t)
		want := testLock("a.mcam", "mmclean", "rework fixture")

		sess := beginSession(t, store)
		if err := sess.PutLock(t.Context(), want); err != nil {
			t.Fatalf("PutLock() failed: %v", err)
		}
		commitSession(t, sess)

		read := beginSession(t, store)
		defer read.Rollback()
		got, err := read.GetLock(t.Context(), "a.mcam")
		if err != nil {
			t.Fatalf("GetLock() failed: %v", err)
		}
		if got == nil {
			t.Fatal("GetLock() = nil after PutLock")
		}
		if got.User != want.User || got.Message != want.Message {
			t.Errorf("lock = %+v, want user %q message %q", got, want.User, want.Message)
		}
		if !got.AcquiredAt.Equal(want.AcquiredAt) {
			t.Errorf("AcquiredAt = %v, want %v", got.AcquiredAt, want.AcquiredAt)
		}
	})

	t.Run("DeleteLock", func(t *testing.T) {
		store := factory(t)

		sess := beginSession(t, store)
		if err := sess.PutLock(t.Context(), testLock("a.mcam", "mmclean", "m")); err != nil {
			t.Fatalf("PutLock() failed: %v", err)
		}
		commitSession(t, sess)

		del := beginSession(t, store)
		if err := del.DeleteLock(t.Context(), "a.mcam"); err != nil {
			t.Fatalf("DeleteLock() failed: %v", err)
		}
		commitSession(t, del)

		read := beginSession(t, store)
		defer read.Rollback()
		lock, err := read.GetLock(t.Context(), "a.mcam")
		if err != nil {
			t.Fatalf("GetLock() failed: %v", err)
		}
		if lock != nil {
			t.Fatalf("GetLock() = %+v after delete, want nil", lock)
		}
	})

	t.Run("DeleteAbsentLockIsNotAnError", func(t *testing.T) {
		store := factory(t)

		sess := beginSession(t, store)
		defer sess.Rollback()
		if err := sess.DeleteLock(t.Context(), "never-locked.mcam"); err != nil {
			t.Fatalf("DeleteLock() on absent lock failed: %v", err)
		}
		commitSession(t, sess)
	})
}

func testLock(filename, user, message string) *metadata.Lock {
	return &metadata.Lock{
		Filename:   filename,
		User:       user,
		Message:    message,
		AcquiredAt: fixedTime(),
	}
}

package badger

import (
	"testing"

	"github.com/marmos91/pdmvault/pkg/metadata"
	"github.com/marmos91/pdmvault/pkg/metadata/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) metadata.Store {
		store, err := New(t.Context(), Config{DBPath: t.TempDir()})
		if err != nil {
			t.Fatalf("failed to create badger store: %v", err)
		}
		t.Cleanup(func() {
			if err := store.Close(); err != nil {
				t.Errorf("failed to close badger store: %v", err)
			}
		})
		return store
	})
}

func TestInMemoryConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) metadata.Store {
		store, err := New(t.Context(), Config{InMemory: true})
		if err != nil {
			t.Fatalf("failed to create badger store: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

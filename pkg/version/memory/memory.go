// Package memory implements a deterministic in-memory version.Store.
//
// It backs the assembler tests and the metadata conformance suites, where a
// real git repository would make failures harder to reproduce.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/pdmvault/pkg/vault/errors"
	"github.com/marmos91/pdmvault/pkg/version"
)

// Store is an in-memory version store with a fixed listing order.
type Store struct {
	mu    sync.RWMutex
	files []version.TrackedFile

	// failing simulates a transient outage when set.
	failing bool
}

// New creates a store listing the given files in the given order.
func New(files ...version.TrackedFile) *Store {
	return &Store{files: files}
}

// ListTrackedFiles returns the configured files in insertion order.
func (s *Store) ListTrackedFiles(ctx context.Context) ([]version.TrackedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failing {
		return nil, errors.NewUnavailableError("version", errSimulated)
	}

	out := make([]version.TrackedFile, len(s.files))
	copy(out, s.files)
	return out, nil
}

// GetStatus returns the status of a single file.
func (s *Store) GetStatus(ctx context.Context, filename string) (version.Status, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failing {
		return "", errors.NewUnavailableError("version", errSimulated)
	}

	for _, f := range s.files {
		if f.Filename == filename {
			return f.Status, nil
		}
	}
	return "", errors.NewNotFoundError(filename, "file")
}

// Add appends a file to the listing.
func (s *Store) Add(file version.TrackedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, file)
}

// SetStatus changes the status of an existing file.
func (s *Store) SetStatus(filename string, status version.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.files {
		if s.files[i].Filename == filename {
			s.files[i].Status = status
			return
		}
	}
}

// SetFailing toggles simulated unavailability. While failing, every call
// returns an Unavailable error.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

type simulatedError struct{}

func (simulatedError) Error() string { return "simulated outage" }

var errSimulated = simulatedError{}

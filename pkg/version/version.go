// Package version defines the read-only contract the vault consumes from an
// external versioned-file engine.
//
// The engine's internal entities (commits, blobs, branches) are opaque to the
// vault; only the projection to (filename, status, size) is consumed here.
// Writes to the engine are assumed externally serialized and are not this
// package's concern.
package version

import "context"

// Status is the version-control state of a tracked file. It is an opaque
// token from the vault's perspective: the assembler copies it into records
// without interpreting it.
type Status string

const (
	// StatusTracked means the file is committed and unchanged.
	StatusTracked Status = "tracked"

	// StatusModified means the file is committed but has uncommitted changes.
	StatusModified Status = "modified"

	// StatusUntracked means the file exists in the working tree but has
	// never been committed.
	StatusUntracked Status = "untracked"
)

// TrackedFile is one entry of a store listing.
type TrackedFile struct {
	// Filename is the path of the file relative to the repository root.
	Filename string

	// Status is the file's version-control state.
	Status Status

	// SizeBytes is the size of the file in the working tree.
	SizeBytes int64
}

// Store provides read-only access to a versioned-file engine.
//
// Thread Safety: implementations must be safe for concurrent reads from
// multiple goroutines.
type Store interface {
	// ListTrackedFiles returns all files known to the engine in the engine's
	// listing order. The order is stable across calls for an unchanged
	// history.
	ListTrackedFiles(ctx context.Context) ([]TrackedFile, error)

	// GetStatus returns the status of a single file.
	// Returns a NotFound error if the filename has never been tracked and
	// does not exist in the working tree.
	GetStatus(ctx context.Context, filename string) (Status, error)
}

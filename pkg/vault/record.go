// Package vault assembles unified file records from two independent stores:
// an external version-control engine (version.Store) and a mutable metadata
// store (metadata.Store).
//
// The two stores share exactly one join key, the repository-relative
// filename. The assembler merges them per operation inside a single
// metadata session, so callers always observe either the state before or
// the state after a logical operation, never something in between.
package vault

import "github.com/marmos91/pdmvault/pkg/version"

// DefaultDescription is the sentinel substituted for files that have no
// metadata entry yet.
const DefaultDescription = "No description set."

// FileRecord is the unit returned to callers: one file's merged view of
// version status and descriptive metadata.
type FileRecord struct {
	// Filename is the repository-relative path, the join key between the
	// version store and the metadata store.
	Filename string `json:"filename"`

	// Description is the human-entered description, or DefaultDescription
	// when no metadata entry exists.
	Description string `json:"description"`

	// Status is the version-control status token supplied by the version
	// store.
	Status version.Status `json:"status"`

	// SizeBytes is the file size reported by the version store listing.
	SizeBytes int64 `json:"size_bytes"`

	// LockedBy names the user holding the checkout lock, or is empty when
	// the file is not checked out.
	LockedBy string `json:"locked_by,omitempty"`
}

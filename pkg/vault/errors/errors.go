// Package errors provides error types and error codes for the vault package.
// This is a leaf package with no internal dependencies, designed to be imported
// by the version store, the metadata store implementations, and the assembler
// without causing circular imports.
//
// Import graph: errors <- version, metadata <- store implementations <- vault
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested file does not exist where
	// existence is required (e.g. never tracked by the version store).
	ErrNotFound ErrorCode = iota + 1

	// ErrValidation indicates malformed input, such as an empty filename
	// or an empty description.
	ErrValidation

	// ErrUnavailable indicates a transient I/O failure from either store.
	// Operations failing with this code are retried a bounded number of
	// times before surfacing.
	ErrUnavailable

	// ErrConflict indicates a concurrent write collided with this one.
	// Raised by stores with optimistic concurrency (BadgerDB); the
	// assembler retries these, which resolves same-key races last-write-wins.
	ErrConflict

	// ErrLocked indicates the file is checked out by another user.
	ErrLocked
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrValidation:
		return "Validation"
	case ErrUnavailable:
		return "Unavailable"
	case ErrConflict:
		return "Conflict"
	case ErrLocked:
		return "Locked"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// VaultError represents a vault error with an error code.
type VaultError struct {
	Code    ErrorCode
	Message string
	Path    string
}

// Error implements the error interface.
func (e *VaultError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (file: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewNotFoundError creates a NotFound error.
func NewNotFoundError(path, resourceType string) *VaultError {
	return &VaultError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resourceType),
		Path:    path,
	}
}

// NewValidationError creates a Validation error.
func NewValidationError(message string) *VaultError {
	return &VaultError{
		Code:    ErrValidation,
		Message: message,
	}
}

// NewUnavailableError creates an Unavailable error wrapping a store failure.
func NewUnavailableError(store string, cause error) *VaultError {
	return &VaultError{
		Code:    ErrUnavailable,
		Message: fmt.Sprintf("%s store unavailable: %v", store, cause),
	}
}

// NewConflictError creates a Conflict error.
func NewConflictError(path string) *VaultError {
	return &VaultError{
		Code:    ErrConflict,
		Message: "concurrent modification detected",
		Path:    path,
	}
}

// NewLockedError creates a Locked error naming the lock holder.
func NewLockedError(path, owner string) *VaultError {
	return &VaultError{
		Code:    ErrLocked,
		Message: fmt.Sprintf("file checked out by %s", owner),
		Path:    path,
	}
}

// ============================================================================
// Error Type Checking Helpers
// ============================================================================

func codeOf(err error) (ErrorCode, bool) {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return 0, false
}

// Code returns the error's code, or zero when err is not a VaultError.
func Code(err error) ErrorCode {
	code, _ := codeOf(err)
	return code
}

// IsNotFoundError returns true if the error is a NotFound error.
func IsNotFoundError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrNotFound
}

// IsValidationError returns true if the error is a Validation error.
func IsValidationError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrValidation
}

// IsUnavailableError returns true if the error is an Unavailable error.
func IsUnavailableError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrUnavailable
}

// IsConflictError returns true if the error is a Conflict error.
func IsConflictError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrConflict
}

// IsLockedError returns true if the error is a Locked error.
func IsLockedError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrLocked
}

// IsRetryable returns true for errors the assembler may retry: transient
// store unavailability and optimistic-concurrency conflicts.
func IsRetryable(err error) bool {
	code, ok := codeOf(err)
	return ok && (code == ErrUnavailable || code == ErrConflict)
}

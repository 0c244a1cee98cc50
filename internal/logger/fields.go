package logger

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so vault operations
// can be aggregated and queried by filename, user, or operation.
const (
	// Vault operations
	KeyOperation = "operation" // Vault operation name: list_files, get_file, etc.
	KeyFilename  = "filename"  // Repository-relative file path
	KeyUser      = "user"      // User performing a checkout/checkin
	KeySession   = "session"   // Session correlation ID
	KeyAttempt   = "attempt"   // Retry attempt number (1-based)
	KeyDuration  = "duration"  // Operation wall time

	// Stores
	KeyStore  = "store"  // Store name: version, metadata
	KeyStatus = "status" // Version status token
	KeyCount  = "count"  // Number of records returned

	// Errors
	KeyError = "error" // Error message
	KeyCode  = "code"  // Vault error code
)

package badger

import (
	"encoding/json"

	"github.com/marmos91/pdmvault/pkg/metadata"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// BadgerDB is a key-value store, so prefixed keys organize the two row types
// into separate namespaces and prevent collisions between a file's entry and
// its lock:
//
// Data Type       Prefix   Key Format        Value Type
// =======================================================
// Metadata Entry  "e:"     e:<filename>      Entry (JSON)
// Checkout Lock   "k:"     k:<filename>      Lock (JSON)

const (
	prefixEntry = "e:"
	prefixLock  = "k:"
)

func keyEntry(filename string) []byte {
	return []byte(prefixEntry + filename)
}

func keyLock(filename string) []byte {
	return []byte(prefixLock + filename)
}

// ============================================================================
// Value Encoding
// ============================================================================

func encodeEntry(entry *metadata.Entry) ([]byte, error) {
	return json.Marshal(entry)
}

func decodeEntry(data []byte) (*metadata.Entry, error) {
	var entry metadata.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func encodeLock(lock *metadata.Lock) ([]byte, error) {
	return json.Marshal(lock)
}

func decodeLock(data []byte) (*metadata.Lock, error) {
	var lock metadata.Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, err
	}
	return &lock, nil
}

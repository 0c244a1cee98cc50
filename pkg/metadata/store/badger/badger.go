// Package badger implements metadata.Store on BadgerDB.
//
// Sessions map directly onto Badger's serializable transactions: a session
// holds one read-write transaction, sees its own writes before commit, and
// discards them on rollback. A same-key write race surfaces as a Conflict
// error at commit, which the assembler retries; the retry loop is what
// resolves concurrent updates last-write-wins.
package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/marmos91/pdmvault/pkg/metadata"
	"github.com/marmos91/pdmvault/pkg/vault/errors"
)

// Config holds BadgerDB store configuration.
type Config struct {
	// DBPath is the directory holding the Badger value log and SSTs.
	DBPath string `mapstructure:"path" yaml:"path"`

	// InMemory opens the database without touching disk. Used by tests.
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`
}

// Store is a BadgerDB-backed metadata store.
type Store struct {
	db *badgerdb.DB
}

// New opens (creating if needed) a BadgerDB metadata store.
func New(ctx context.Context, config Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badgerdb.DefaultOptions(config.DBPath)
	if config.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	}

	// Metadata rows are tiny; compression overhead is not worth it.
	opts = opts.WithLoggingLevel(badgerdb.WARNING)
	opts = opts.WithCompression(options.None)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	return &Store{db: db}, nil
}

// Begin opens a session backed by a Badger read-write transaction.
func (s *Store) Begin(ctx context.Context) (metadata.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &session{
		store: s,
		txn:   s.db.NewTransaction(true),
	}, nil
}

// Healthcheck verifies the store is operational.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.db.IsClosed() {
		return errors.NewUnavailableError("metadata", fmt.Errorf("database closed"))
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ============================================================================
// Session
// ============================================================================

// session wraps one Badger read-write transaction.
type session struct {
	store *Store
	txn   *badgerdb.Txn
	done  bool
}

func (sess *session) GetEntry(ctx context.Context, filename string) (*metadata.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	item, err := sess.txn.Get(keyEntry(filename))
	if err == badgerdb.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewUnavailableError("metadata", err)
	}

	var entry *metadata.Entry
	err = item.Value(func(val []byte) error {
		e, decErr := decodeEntry(val)
		if decErr != nil {
			return decErr
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, errors.NewUnavailableError("metadata", err)
	}

	return entry, nil
}

func (sess *session) UpsertEntry(ctx context.Context, entry *metadata.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeEntry(entry)
	if err != nil {
		return errors.NewUnavailableError("metadata", err)
	}

	if err := sess.txn.Set(keyEntry(entry.Filename), data); err != nil {
		return errors.NewUnavailableError("metadata", err)
	}
	return nil
}

func (sess *session) GetLock(ctx context.Context, filename string) (*metadata.Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	item, err := sess.txn.Get(keyLock(filename))
	if err == badgerdb.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewUnavailableError("metadata", err)
	}

	var lock *metadata.Lock
	err = item.Value(func(val []byte) error {
		l, decErr := decodeLock(val)
		if decErr != nil {
			return decErr
		}
		lock = l
		return nil
	})
	if err != nil {
		return nil, errors.NewUnavailableError("metadata", err)
	}

	return lock, nil
}

func (sess *session) PutLock(ctx context.Context, lock *metadata.Lock) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeLock(lock)
	if err != nil {
		return errors.NewUnavailableError("metadata", err)
	}

	if err := sess.txn.Set(keyLock(lock.Filename), data); err != nil {
		return errors.NewUnavailableError("metadata", err)
	}
	return nil
}

func (sess *session) DeleteLock(ctx context.Context, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := sess.txn.Delete(keyLock(filename))
	if err != nil && err != badgerdb.ErrKeyNotFound {
		return errors.NewUnavailableError("metadata", err)
	}
	return nil
}

// Commit publishes the transaction. A serializability conflict with a
// concurrently committed session maps to a Conflict error for the caller
// to retry.
func (sess *session) Commit() error {
	if sess.done {
		return nil
	}
	sess.done = true

	if err := sess.txn.Commit(); err != nil {
		if err == badgerdb.ErrConflict {
			return errors.NewConflictError("")
		}
		return errors.NewUnavailableError("metadata", err)
	}
	return nil
}

// Rollback discards the transaction.
func (sess *session) Rollback() error {
	if sess.done {
		return nil
	}
	sess.done = true
	sess.txn.Discard()
	return nil
}

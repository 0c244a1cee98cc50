package vault

import (
	"context"
	"strings"
	"time"

	"github.com/marmos91/pdmvault/internal/logger"
	"github.com/marmos91/pdmvault/pkg/metadata"
	"github.com/marmos91/pdmvault/pkg/metrics"
	"github.com/marmos91/pdmvault/pkg/vault/errors"
	"github.com/marmos91/pdmvault/pkg/version"
)

// Options control assembler policy.
type Options struct {
	// RequireTracked controls whether UpdateDescription and Checkout demand
	// the filename to exist in the version store first. When true (the
	// default configuration), writes to unknown files fail NotFound without
	// touching the metadata store.
	RequireTracked bool

	// DefaultDescription overrides the sentinel substituted for files
	// without a metadata entry. Empty means DefaultDescription.
	DefaultDescription string

	// RetryAttempts is the total number of attempts (including the first)
	// for operations failing with retryable errors. Zero means 3.
	RetryAttempts int

	// RetryBackoff is the initial delay between attempts, doubled after
	// each retry. Zero means 50ms.
	RetryBackoff time.Duration
}

func (o *Options) applyDefaults() {
	if o.DefaultDescription == "" {
		o.DefaultDescription = DefaultDescription
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 50 * time.Millisecond
	}
}

// Assembler merges version-store listings with metadata-store contents into
// unified file records.
//
// Both stores are injected at construction, so tests substitute
// deterministic in-memory fakes without touching real storage. Every public
// operation opens exactly one metadata session for its duration and either
// commits or rolls it back before returning.
//
// Thread Safety: safe for concurrent use; concurrent operations each get
// their own session and share nothing else.
type Assembler struct {
	versions version.Store
	meta     metadata.Store
	opts     Options
	metrics  *metrics.VaultMetrics
}

// New creates an assembler over the given stores.
func New(versions version.Store, meta metadata.Store, opts Options) *Assembler {
	opts.applyDefaults()
	return &Assembler{
		versions: versions,
		meta:     meta,
		opts:     opts,
		metrics:  metrics.NewVaultMetrics(),
	}
}

// ============================================================================
// Operations
// ============================================================================

// ListFiles returns one record per file known to the version store, in the
// version store's listing order.
func (a *Assembler) ListFiles(ctx context.Context) ([]FileRecord, error) {
	var records []FileRecord
	err := a.run(ctx, "list_files", func(ctx context.Context) error {
		recs, err := a.listFiles(ctx)
		if err != nil {
			return err
		}
		records = recs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *Assembler) listFiles(ctx context.Context) ([]FileRecord, error) {
	sess, err := a.meta.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Rollback()

	tracked, err := a.versions.ListTrackedFiles(ctx)
	if err != nil {
		return nil, err
	}

	// One session serves every lookup of the listing, so the whole result
	// reflects a single committed metadata state.
	records := make([]FileRecord, 0, len(tracked))
	for _, file := range tracked {
		record, err := a.assemble(ctx, sess, file)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := sess.Commit(); err != nil {
		return nil, err
	}

	logger.Debug("Assembled file listing", logger.KeyCount, len(records))
	return records, nil
}

// GetFile returns the record for a single file.
// Fails NotFound when the version store does not know the filename; the
// metadata store is not consulted in that case.
func (a *Assembler) GetFile(ctx context.Context, filename string) (*FileRecord, error) {
	if err := validFilename(filename); err != nil {
		return nil, err
	}

	var record *FileRecord
	err := a.run(ctx, "get_file", func(ctx context.Context) error {
		rec, err := a.getFile(ctx, filename)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *Assembler) getFile(ctx context.Context, filename string) (*FileRecord, error) {
	// Version status first: an untracked name fails before any metadata
	// work happens.
	status, err := a.versions.GetStatus(ctx, filename)
	if err != nil {
		return nil, err
	}

	sess, err := a.meta.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Rollback()

	record, err := a.assemble(ctx, sess, version.TrackedFile{
		Filename:  filename,
		Status:    status,
		SizeBytes: a.sizeOf(ctx, filename),
	})
	if err != nil {
		return nil, err
	}

	if err := sess.Commit(); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateDescription validates and stores a new description, returning the
// freshly assembled record. The returned record reflects the new value
// (read-your-write) because it is assembled through the same session that
// wrote it.
func (a *Assembler) UpdateDescription(ctx context.Context, filename, description string) (*FileRecord, error) {
	if err := validFilename(filename); err != nil {
		return nil, err
	}
	if description == "" {
		return nil, errors.NewValidationError("description must not be empty")
	}

	var record *FileRecord
	err := a.run(ctx, "update_description", func(ctx context.Context) error {
		rec, err := a.updateDescription(ctx, filename, description)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *Assembler) updateDescription(ctx context.Context, filename, description string) (*FileRecord, error) {
	sess, err := a.meta.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Rollback()

	status, err := a.resolveStatus(ctx, filename)
	if err != nil {
		return nil, err
	}

	err = sess.UpsertEntry(ctx, &metadata.Entry{
		Filename:    filename,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	record, err := a.assemble(ctx, sess, version.TrackedFile{
		Filename:  filename,
		Status:    status,
		SizeBytes: a.sizeOf(ctx, filename),
	})
	if err != nil {
		return nil, err
	}

	if err := sess.Commit(); err != nil {
		return nil, err
	}

	logger.Info("Description updated", logger.KeyFilename, filename)
	return &record, nil
}

// SearchFiles filters the listing by a case-insensitive filename substring
// and an optional status, returning at most limit records (limit <= 0 means
// no bound). Result order equals listing order.
func (a *Assembler) SearchFiles(ctx context.Context, query string, status version.Status, limit int) ([]FileRecord, error) {
	var records []FileRecord
	err := a.run(ctx, "search_files", func(ctx context.Context) error {
		all, err := a.listFiles(ctx)
		if err != nil {
			return err
		}

		needle := strings.ToLower(query)
		records = records[:0]
		for _, record := range all {
			if needle != "" && !strings.Contains(strings.ToLower(record.Filename), needle) {
				continue
			}
			if status != "" && record.Status != status {
				continue
			}
			records = append(records, record)
			if limit > 0 && len(records) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ============================================================================
// Assembly helpers
// ============================================================================

// assemble merges one version-store entry with its metadata, read through
// the given session.
func (a *Assembler) assemble(ctx context.Context, sess metadata.Session, file version.TrackedFile) (FileRecord, error) {
	entry, err := sess.GetEntry(ctx, file.Filename)
	if err != nil {
		return FileRecord{}, err
	}

	description := a.opts.DefaultDescription
	if entry != nil && entry.Description != "" {
		description = entry.Description
	}

	lock, err := sess.GetLock(ctx, file.Filename)
	if err != nil {
		return FileRecord{}, err
	}

	record := FileRecord{
		Filename:    file.Filename,
		Description: description,
		Status:      file.Status,
		SizeBytes:   file.SizeBytes,
	}
	if lock != nil {
		record.LockedBy = lock.User
	}
	return record, nil
}

// resolveStatus enforces the RequireTracked policy for write operations.
// With the policy off, unknown files are written as untracked.
func (a *Assembler) resolveStatus(ctx context.Context, filename string) (version.Status, error) {
	status, err := a.versions.GetStatus(ctx, filename)
	if err == nil {
		return status, nil
	}
	if errors.IsNotFoundError(err) && !a.opts.RequireTracked {
		return version.StatusUntracked, nil
	}
	return "", err
}

// sizeOf looks up a file's size in the version store listing. Size is
// best-effort display data; a file missing from the listing reports zero.
func (a *Assembler) sizeOf(ctx context.Context, filename string) int64 {
	tracked, err := a.versions.ListTrackedFiles(ctx)
	if err != nil {
		return 0
	}
	for _, file := range tracked {
		if file.Filename == filename {
			return file.SizeBytes
		}
	}
	return 0
}

func validFilename(filename string) error {
	if filename == "" {
		return errors.NewValidationError("filename must not be empty")
	}
	return nil
}

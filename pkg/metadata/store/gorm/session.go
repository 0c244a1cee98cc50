package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marmos91/pdmvault/pkg/metadata"
	"github.com/marmos91/pdmvault/pkg/vault/errors"
)

// session wraps one database transaction.
type session struct {
	tx   *gorm.DB
	done bool
}

func (sess *session) GetEntry(ctx context.Context, filename string) (*metadata.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var model entryModel
	err := sess.tx.First(&model, "filename = ?", filename).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewUnavailableError("metadata", err)
	}

	entry := &metadata.Entry{Filename: model.Filename}
	if model.Description != nil {
		entry.Description = *model.Description
	}
	return entry, nil
}

func (sess *session) UpsertEntry(ctx context.Context, entry *metadata.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	description := entry.Description
	model := entryModel{
		Filename:    entry.Filename,
		Description: &description,
	}

	err := sess.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "filename"}},
		DoUpdates: clause.AssignmentColumns([]string{"description"}),
	}).Create(&model).Error
	if err != nil {
		return errors.NewUnavailableError("metadata", err)
	}
	return nil
}

func (sess *session) GetLock(ctx context.Context, filename string) (*metadata.Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var model lockModel
	err := sess.tx.First(&model, "filename = ?", filename).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewUnavailableError("metadata", err)
	}

	return &metadata.Lock{
		Filename:   model.Filename,
		User:       model.User,
		Message:    model.Message,
		AcquiredAt: time.Unix(0, model.AcquiredAt).UTC(),
	}, nil
}

func (sess *session) PutLock(ctx context.Context, lock *metadata.Lock) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := lockModel{
		Filename:   lock.Filename,
		User:       lock.User,
		Message:    lock.Message,
		AcquiredAt: lock.AcquiredAt.UTC().UnixNano(),
	}

	// Locks are create-only. DoNothing plus a rows-affected check turns a
	// racing insert into a Conflict instead of silently stealing the lock.
	result := sess.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "filename"}},
		DoNothing: true,
	}).Create(&model)
	if result.Error != nil {
		return errors.NewUnavailableError("metadata", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError(lock.Filename)
	}
	return nil
}

func (sess *session) DeleteLock(ctx context.Context, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := sess.tx.Delete(&lockModel{}, "filename = ?", filename).Error
	if err != nil {
		return errors.NewUnavailableError("metadata", err)
	}
	return nil
}

// Commit publishes the transaction.
func (sess *session) Commit() error {
	if sess.done {
		return nil
	}
	sess.done = true

	if err := sess.tx.Commit().Error; err != nil {
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

	if err := sess.tx.Rollback().Error; err != nil {
		return errors.NewUnavailableError("metadata", err)
	}
	return nil
}

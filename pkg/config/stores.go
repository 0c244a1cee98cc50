package config

import (
	"context"
	"fmt"

	"github.com/marmos91/pdmvault/pkg/metadata"
	badgerstore "github.com/marmos91/pdmvault/pkg/metadata/store/badger"
	gormstore "github.com/marmos91/pdmvault/pkg/metadata/store/gorm"
	memorystore "github.com/marmos91/pdmvault/pkg/metadata/store/memory"
)

// NewMetadataStore builds the metadata store selected by the database
// section. The caller owns the returned store and must Close it.
func NewMetadataStore(ctx context.Context, cfg *DatabaseConfig) (metadata.Store, error) {
	switch cfg.Type {
	case "memory":
		return memorystore.New(), nil
	case "badger":
		return badgerstore.New(ctx, cfg.Badger)
	case "sqlite", "postgres":
		return gormstore.New(cfg.gormConfig())
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// gormConfig projects the database section onto the relational store's own
// configuration type.
func (c *DatabaseConfig) gormConfig() *gormstore.Config {
	return &gormstore.Config{
		Type:     gormstore.DatabaseType(c.Type),
		SQLite:   c.SQLite,
		Postgres: c.Postgres,
	}
}

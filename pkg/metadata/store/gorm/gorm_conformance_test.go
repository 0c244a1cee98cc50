package gorm

import (
	"path/filepath"
	"testing"

	"github.com/marmos91/pdmvault/pkg/metadata"
	"github.com/marmos91/pdmvault/pkg/metadata/storetest"
)

func TestSQLiteConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) metadata.Store {
		store, err := New(&Config{
			Type: DatabaseTypeSQLite,
			SQLite: SQLiteConfig{
				Path: filepath.Join(t.TempDir(), "metadata.db"),
			},
		})
		if err != nil {
			t.Fatalf("failed to create sqlite store: %v", err)
		}
		t.Cleanup(func() {
			if err := store.Close(); err != nil {
				t.Errorf("failed to close store: %v", err)
			}
		})
		return store
	})
}

func TestConfig(t *testing.T) {
	t.Run("default config uses sqlite", func(t *testing.T) {
		config := &Config{}
		config.ApplyDefaults()

		if config.Type != DatabaseTypeSQLite {
			t.Errorf("Type = %s, want sqlite", config.Type)
		}
		if config.SQLite.Path == "" {
			t.Error("expected default sqlite path")
		}
	})

	t.Run("postgres defaults", func(t *testing.T) {
		config := &Config{Type: DatabaseTypePostgres}
		config.ApplyDefaults()

		if config.Postgres.Port != 5432 {
			t.Errorf("Port = %d, want 5432", config.Postgres.Port)
		}
		if config.Postgres.SSLMode != "disable" {
			t.Errorf("SSLMode = %q, want disable", config.Postgres.SSLMode)
		}
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		config := &Config{Type: "cassandra"}
		if err := config.Validate(); err == nil {
			t.Error("expected error for unsupported database type")
		}
	})

	t.Run("postgres requires host", func(t *testing.T) {
		config := &Config{Type: DatabaseTypePostgres}
		config.ApplyDefaults()
		if err := config.Validate(); err == nil {
			t.Error("expected error for missing host")
		}
	})

	t.Run("postgres dsn", func(t *testing.T) {
		config := PostgresConfig{
			Host: "db.local", Port: 5432, Database: "pdm",
			User: "vault", Password: "secret", SSLMode: "disable",
		}
		want := "host=db.local port=5432 user=vault password=secret dbname=pdm sslmode=disable"
		if got := config.DSN(); got != want {
			t.Errorf("DSN() = %q, want %q", got, want)
		}
	})
}

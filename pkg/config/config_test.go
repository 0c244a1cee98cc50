package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, ".", cfg.Repository.Path)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.False(t, cfg.Vault.AllowUntracked)
	assert.Equal(t, 3, cfg.Vault.Retry.Attempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Vault.Retry.Backoff)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  format: json
repository:
  path: /srv/cad-files
database:
  type: badger
  badger:
    path: /var/lib/pdmvault/badger
vault:
  allow_untracked: true
  retry:
    attempts: 5
    backoff: 200ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/srv/cad-files", cfg.Repository.Path)
	assert.Equal(t, "badger", cfg.Database.Type)
	assert.Equal(t, "/var/lib/pdmvault/badger", cfg.Database.Badger.DBPath)
	assert.True(t, cfg.Vault.AllowUntracked)
	assert.Equal(t, 5, cfg.Vault.Retry.Attempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Vault.Retry.Backoff)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: info
  format: text
`)
	t.Setenv("PDMVAULT_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestLoad_InvalidLevelFailsValidation(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: loud
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_BadgerWithoutPathFails(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: badger
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestLoad_PostgresRequiresConnectionDetails(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: postgres
  postgres:
    host: db.internal
    user: pdmvault
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is required")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Repository.Path = "/srv/cad-files"
	cfg.Vault.Retry.Attempts = 4

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/cad-files", loaded.Repository.Path)
	assert.Equal(t, 4, loaded.Vault.Retry.Attempts)
}

func TestVaultOptions_Mapping(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Vault.AllowUntracked = true
	cfg.Vault.DefaultDescription = "Not yet described"

	opts := cfg.VaultOptions()
	assert.False(t, opts.RequireTracked)
	assert.Equal(t, "Not yet described", opts.DefaultDescription)
	assert.Equal(t, 3, opts.RetryAttempts)
	assert.Equal(t, 50*time.Millisecond, opts.RetryBackoff)
}

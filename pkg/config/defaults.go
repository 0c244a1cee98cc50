package config

import (
	"strings"
	"time"
)

// GetDefaultConfig returns a configuration with every default applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and
// environment variables to fill in any missing values.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyRepositoryDefaults(&cfg.Repository)
	applyDatabaseDefaults(&cfg.Database)
	applyVaultDefaults(&cfg.Vault)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyRepositoryDefaults sets the working tree default.
func applyRepositoryDefaults(cfg *RepositoryConfig) {
	if cfg.Path == "" {
		cfg.Path = "."
	}
}

// applyDatabaseDefaults sets metadata store defaults.
func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Type == "" {
		cfg.Type = "sqlite"
	}

	switch cfg.Type {
	case "sqlite", "postgres":
		gormCfg := cfg.gormConfig()
		gormCfg.ApplyDefaults()
		cfg.SQLite = gormCfg.SQLite
		cfg.Postgres = gormCfg.Postgres
	}
}

// applyVaultDefaults sets assembly policy defaults.
func applyVaultDefaults(cfg *VaultConfig) {
	// AllowUntracked defaults to false: writes demand a tracked file.
	if cfg.Retry.Attempts == 0 {
		cfg.Retry.Attempts = 3
	}
	if cfg.Retry.Backoff == 0 {
		cfg.Retry.Backoff = 50 * time.Millisecond
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

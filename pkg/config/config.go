package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	badgerstore "github.com/marmos91/pdmvault/pkg/metadata/store/badger"
	gormstore "github.com/marmos91/pdmvault/pkg/metadata/store/gorm"
	"github.com/marmos91/pdmvault/pkg/vault"
)

// Config represents the pdmvault configuration.
//
// This structure captures the static configuration of the vault:
//   - Logging configuration
//   - Repository location (the git working tree backing the version store)
//   - Database connection (metadata persistence)
//   - Vault policy (untracked-file handling, retry behavior)
//   - Metrics server settings
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (PDMVAULT_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Repository locates the git working tree holding the managed files
	Repository RepositoryConfig `mapstructure:"repository" yaml:"repository"`

	// Database configures the metadata store backend
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Vault contains assembly policy settings
	Vault VaultConfig `mapstructure:"vault" yaml:"vault"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// RepositoryConfig locates the version-controlled working tree.
type RepositoryConfig struct {
	// Path is the root of the git working tree. Relative paths resolve
	// against the process working directory.
	Path string `mapstructure:"path" validate:"required" yaml:"path"`
}

// DatabaseConfig selects and configures the metadata store backend.
type DatabaseConfig struct {
	// Type selects the backend.
	// Valid values: memory, badger, sqlite, postgres
	Type string `mapstructure:"type" validate:"required,oneof=memory badger sqlite postgres" yaml:"type"`

	// Badger configures the BadgerDB backend (only used when type is badger)
	Badger badgerstore.Config `mapstructure:"badger" yaml:"badger"`

	// SQLite configures the SQLite backend (only used when type is sqlite)
	SQLite gormstore.SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`

	// Postgres configures the PostgreSQL backend (only used when type is postgres)
	Postgres gormstore.PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// VaultConfig contains assembly policy settings.
type VaultConfig struct {
	// AllowUntracked permits metadata writes for files the version store
	// does not know about. Default: false (writes to unknown files fail)
	AllowUntracked bool `mapstructure:"allow_untracked" yaml:"allow_untracked"`

	// DefaultDescription is shown for files without stored metadata.
	// Empty uses the built-in sentinel.
	DefaultDescription string `mapstructure:"default_description" yaml:"default_description,omitempty"`

	// Retry controls how transient store failures are retried
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// RetryConfig controls the retry policy for transient store failures.
type RetryConfig struct {
	// Attempts is the total number of attempts, including the first.
	// Default: 3
	Attempts int `mapstructure:"attempts" validate:"omitempty,min=1,max=10" yaml:"attempts"`

	// Backoff is the initial delay between attempts, doubled after each.
	// Default: 50ms
	Backoff time.Duration `mapstructure:"backoff" yaml:"backoff"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// VaultOptions converts the policy section into assembler options.
func (c *Config) VaultOptions() vault.Options {
	return vault.Options{
		RequireTracked:     !c.Vault.AllowUntracked,
		DefaultDescription: c.Vault.DefaultDescription,
		RetryAttempts:      c.Vault.Retry.Attempts,
		RetryBackoff:       c.Vault.Retry.Backoff,
	}
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PDMVAULT_*)
//  2. Configuration file
//  3. Default values
//
// An empty configPath uses the default location under the XDG config
// directory; a missing file there is not an error and yields defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides instructions if not.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  pdmvault init\n\n"+
				"Or specify a custom config file:\n"+
				"  pdmvault <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  pdmvault init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Restricted permissions: the database section may carry credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the PDMVAULT_ prefix and underscores
	// Example: PDMVAULT_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("PDMVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/pdmvault/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		// Also check for os.PathError when an explicit config file doesn't exist
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Raw integers are nanoseconds
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "pdmvault")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "pdmvault")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}

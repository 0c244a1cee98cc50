package commands

import (
	"fmt"

	"github.com/marmos91/pdmvault/internal/logger"
	"github.com/marmos91/pdmvault/pkg/config"
	"github.com/marmos91/pdmvault/pkg/metrics"
	"github.com/marmos91/pdmvault/pkg/vault"
	"github.com/marmos91/pdmvault/pkg/version/git"
	"github.com/spf13/cobra"
)

// openVault loads configuration, initializes logging and metrics, and wires
// the stores into an assembler. The returned cleanup closes the metadata
// store and must run before process exit.
func openVault(cmd *cobra.Command) (*vault.Assembler, func(), error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	versions, err := git.New(cfg.Repository.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open repository at %s: %w", cfg.Repository.Path, err)
	}

	meta, err := config.NewMetadataStore(cmd.Context(), &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open metadata store: %w", err)
	}

	cleanup := func() {
		if closeErr := meta.Close(); closeErr != nil {
			logger.Warn("Failed to close metadata store", logger.KeyError, closeErr)
		}
	}

	return vault.New(versions, meta, cfg.VaultOptions()), cleanup, nil
}

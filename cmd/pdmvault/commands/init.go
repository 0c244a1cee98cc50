package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/pdmvault/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample pdmvault configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/pdmvault/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  pdmvault init

  # Initialize with custom path
  pdmvault init --config /etc/pdmvault/config.yaml

  # Force overwrite existing config
  pdmvault init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point repository.path at your git working tree")
	fmt.Println("  2. List your files with: pdmvault list")
	fmt.Printf("  3. Or specify custom config: pdmvault list --config %s\n", configPath)

	return nil
}

package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/pdmvault/internal/cli/output"
	"github.com/marmos91/pdmvault/pkg/config"
	"github.com/marmos91/pdmvault/pkg/version/git"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check vault health",
	Long: `Check that the configured repository and metadata store are
reachable and report their settings.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	repoStatus := "ok"
	if _, err := git.New(cfg.Repository.Path); err != nil {
		repoStatus = fmt.Sprintf("unavailable (%v)", err)
	}

	metaStatus := "ok"
	meta, err := config.NewMetadataStore(cmd.Context(), &cfg.Database)
	if err != nil {
		metaStatus = fmt.Sprintf("unavailable (%v)", err)
	} else {
		if err := meta.Healthcheck(cmd.Context()); err != nil {
			metaStatus = fmt.Sprintf("unhealthy (%v)", err)
		}
		_ = meta.Close()
	}

	return output.SimpleTable(os.Stdout, [][2]string{
		{"Repository", cfg.Repository.Path},
		{"Repository status", repoStatus},
		{"Metadata store", cfg.Database.Type},
		{"Metadata status", metaStatus},
	})
}

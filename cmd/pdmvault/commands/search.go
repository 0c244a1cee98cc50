package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/marmos91/pdmvault/internal/cli/output"
	"github.com/marmos91/pdmvault/pkg/version"
	"github.com/spf13/cobra"
)

var (
	searchStatus string
	searchLimit  int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search files by name and status",
	Long: `Search vault files by a case-insensitive filename substring,
optionally filtered by version status.

Examples:
  pdmvault search bracket
  pdmvault search --status modified
  pdmvault search fixture --limit 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchStatus, "status", "", "Filter by status (tracked, modified, untracked)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (0 = unlimited)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	var query string
	if len(args) == 1 {
		query = args[0]
	}

	assembler, cleanup, err := openVault(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := assembler.SearchFiles(cmd.Context(), query, version.Status(searchStatus), searchLimit)
	if err != nil {
		return err
	}

	if searchJSON {
		return json.NewEncoder(os.Stdout).Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No matching files.")
		return nil
	}
	return output.PrintRecords(os.Stdout, records)
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/marmos91/pdmvault/internal/cli/output"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all files in the vault",
	Long: `List every file tracked by the vault with its status, size,
description, and checkout state.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	assembler, cleanup, err := openVault(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := assembler.ListFiles(cmd.Context())
	if err != nil {
		return err
	}

	if listJSON {
		return json.NewEncoder(os.Stdout).Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No files in the vault.")
		return nil
	}
	return output.PrintRecords(os.Stdout, records)
}

package commands

import (
	"encoding/json"
	"os"

	"github.com/marmos91/pdmvault/internal/cli/output"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <filename>",
	Short: "Show a single file's record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	assembler, cleanup, err := openVault(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := assembler.GetFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if showJSON {
		return json.NewEncoder(os.Stdout).Encode(record)
	}
	return output.PrintRecord(os.Stdout, record)
}

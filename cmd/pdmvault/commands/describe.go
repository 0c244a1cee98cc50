package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/pdmvault/internal/cli/output"
	"github.com/marmos91/pdmvault/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <filename> [description]",
	Short: "Set a file's description",
	Long: `Set the description stored for a file.

When the description argument is omitted, an interactive prompt asks for it.

Examples:
  pdmvault describe bracket.sldprt "Mounting bracket, rev B"
  pdmvault describe bracket.sldprt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	filename := args[0]

	var description string
	if len(args) == 2 {
		description = args[1]
	} else {
		var err error
		description, err = prompt.InputRequired("Description")
		if err != nil {
			if prompt.IsAborted(err) {
				return fmt.Errorf("aborted")
			}
			return err
		}
	}

	assembler, cleanup, err := openVault(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := assembler.UpdateDescription(cmd.Context(), filename, description)
	if err != nil {
		return err
	}

	fmt.Printf("Updated %s\n\n", filename)
	return output.PrintRecord(os.Stdout, record)
}

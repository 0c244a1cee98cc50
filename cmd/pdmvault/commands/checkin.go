package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/pdmvault/internal/cli/output"
	"github.com/marmos91/pdmvault/pkg/vault"
	"github.com/spf13/cobra"
)

var checkinUser string

var checkinCmd = &cobra.Command{
	Use:   "checkin <filename>",
	Short: "Check a file back in, releasing its lock",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckin,
}

func init() {
	checkinCmd.Flags().StringVarP(&checkinUser, "user", "u", "", "Lock owner (default: $USER)")
}

func runCheckin(cmd *cobra.Command, args []string) error {
	user := checkinUser
	if user == "" {
		user = os.Getenv("USER")
	}

	assembler, cleanup, err := openVault(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := assembler.Checkin(cmd.Context(), vault.CheckinRequest{
		Filename: args[0],
		User:     user,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Checked in %s\n\n", args[0])
	return output.PrintRecord(os.Stdout, record)
}

package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/pdmvault/internal/cli/output"
	"github.com/marmos91/pdmvault/internal/cli/prompt"
	"github.com/marmos91/pdmvault/pkg/vault"
	"github.com/spf13/cobra"
)

var (
	checkoutUser    string
	checkoutMessage string
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <filename>",
	Short: "Check out a file for exclusive editing",
	Long: `Acquire the edit lock for a file. While checked out, no one else
can check out the same file until you check it back in.

Examples:
  pdmvault checkout bracket.sldprt -m "reworking mounting holes"
  pdmvault checkout bracket.sldprt --user alice -m "fixture update"`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckout,
}

func init() {
	checkoutCmd.Flags().StringVarP(&checkoutUser, "user", "u", "", "Lock owner (default: $USER)")
	checkoutCmd.Flags().StringVarP(&checkoutMessage, "message", "m", "", "Reason for the checkout")
}

func runCheckout(cmd *cobra.Command, args []string) error {
	user := checkoutUser
	if user == "" {
		user = os.Getenv("USER")
	}

	message := checkoutMessage
	if message == "" {
		var err error
		message, err = prompt.InputRequired("Checkout message")
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

	record, err := assembler.Checkout(cmd.Context(), vault.CheckoutRequest{
		Filename: args[0],
		User:     user,
		Message:  message,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Checked out %s as %s\n\n", args[0], user)
	return output.PrintRecord(os.Stdout, record)
}

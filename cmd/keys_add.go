package cmd

import (
	"errors"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/utils"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var keysAddCmd = &cobra.Command{
	Use:   "add <name> <public-key-file>",
	Short: "Register a friend's public key",
	Long: `Registers an RSA public key under a friend name, making it usable as an
encrypt recipient. Pass - as the file to read the key from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys add command")
		spinner, cleanup := startSpinner("Registering key...")
		defer cleanup()

		opts := workflows.AddFriendOptions{Name: args[0]}
		if args[1] == "-" {
			data, err := utils.ReadStdin()
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read key from stdin: %v", err)
			}
			opts.PublicKeyData = data
		} else {
			opts.PublicKeyPath = args[1]
		}

		result, err := workflows.AddFriend(cmd.Context(), opts)
		if errors.Is(err, cerrors.ErrInvalidKeyBundle) {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " That is not a PEM RSA public key\n" +
				ui.Error.Sprint("Error: ") + err.Error()
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to register key: %v", err)
		}

		message := ui.Success.Sprint("✓") + " Key registered for " + ui.Highlight.Sprint(result.Record.Name) + "\n" +
			"Fingerprint: " + ui.Highlight.Sprint(result.Record.Fingerprint)
		if result.BecameDefault {
			message += "\n" + ui.Info.Sprint("→") + " " + ui.Highlight.Sprint(result.Record.Name) +
				" is now the default encrypt recipient"
		}
		spinner.FinalMSG = message
		return nil
	},
}

package cmd

import (
	"errors"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var keyringStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether GPG is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keyring status command")
		spinner, cleanup := startSpinner("Probing keyring...")
		defer cleanup()

		result, err := workflows.KeyringStatus(cmd.Context())
		if errors.Is(err, cerrors.ErrKeyringTimedOut) {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " The keyring tool did not answer in time\n" +
				ui.Error.Sprint("Error: ") + err.Error()
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to probe keyring: %v", err)
		}

		if !result.Installed {
			spinner.FinalMSG = ui.Warning.Sprint("!") + " " + ui.Code.Sprint(result.Command) + " is not installed\n" +
				ui.Info.Sprint("→") + " PGP envelopes need a working GPG installation"
			return nil
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " " + result.Version + "\n" +
			ui.Muted.Sprint("command "+result.Command+", timeout "+result.Timeout.String())
		return nil
	},
}

package cmd

import (
	"errors"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var keysInitForce bool

func resetKeysInitState() {
	keysInitForce = false
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate your personal keypair",
	Long:  `Generates a fresh RSA keypair and registers it as your self key, used for envelopes addressed to you.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys init command")
		spinner, cleanup := startSpinner("Generating keypair...")
		defer cleanup()

		result, err := workflows.InitKeys(cmd.Context(), workflows.InitKeysOptions{Force: keysInitForce})
		if errors.Is(err, cerrors.ErrSelfKeyExists) {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " A self key already exists\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("capsule keys init --force") + " to replace it"
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to generate keypair: %v", err)
		}

		message := ui.Success.Sprint("✓") + " Keypair generated\n" +
			"Fingerprint: " + ui.Highlight.Sprint(result.Record.Fingerprint)
		if result.Replaced {
			message += "\n" + ui.Warning.Sprint("!") +
				" The previous self key was replaced; envelopes addressed to it can no longer be decrypted"
		}
		spinner.FinalMSG = message
		return nil
	},
}

func init() {
	keysInitCmd.Flags().BoolVarP(&keysInitForce, "force", "f", false, "replace an existing self key")
}

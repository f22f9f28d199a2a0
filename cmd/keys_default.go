package cmd

import (
	"errors"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var keysDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default encrypt recipient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys default command")
		spinner, cleanup := startSpinner("Updating default recipient...")
		defer cleanup()

		result, err := workflows.SetDefaultFriend(cmd.Context(), args[0])
		if errors.Is(err, cerrors.ErrKeyNotFound) {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " No friend named " + ui.Highlight.Sprint(args[0]) + "\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("capsule keys add") + " to register one"
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to set default recipient: %v", err)
		}

		message := ui.Success.Sprint("✓") + " Default recipient is now " + ui.Highlight.Sprint(result.Record.Name)
		if result.Previous != "" && result.Previous != result.Record.Name {
			message += " " + ui.Muted.Sprint("was "+result.Previous)
		}
		spinner.FinalMSG = message
		return nil
	},
}

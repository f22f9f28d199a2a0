package cmd

import (
	"errors"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var keysRemoveOrigin string

var keysRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a key from the registry",
	Long: `Removes a key and deletes its material from disk. Use --origin to pick the
namespace; use "self" as the name to remove your own keypair.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys remove command")
		spinner, cleanup := startSpinner("Removing key...")
		defer cleanup()

		origin := keystore.Origin(keysRemoveOrigin)
		name := args[0]
		if name == "self" && keysRemoveOrigin == "" {
			origin = keystore.OriginSelf
		}
		if origin == "" {
			origin = keystore.OriginFriend
		}

		result, err := workflows.RemoveKey(cmd.Context(), workflows.RemoveKeyOptions{
			Origin: origin,
			Name:   name,
		})
		if errors.Is(err, cerrors.ErrKeyNotFound) || errors.Is(err, cerrors.ErrNoSelfKey) {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " No " + string(origin) + " key named " + ui.Highlight.Sprint(name) + "\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("capsule keys list") + " to see what is registered"
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to remove key: %v", err)
		}

		message := ui.Success.Sprint("✓") + " Removed " + string(result.RemovedOrigin) + " key " + ui.Highlight.Sprint(name)
		if result.NewDefaultFriend != "" {
			message += "\n" + ui.Info.Sprint("→") + " " + ui.Highlight.Sprint(result.NewDefaultFriend) +
				" is now the default encrypt recipient"
		}
		spinner.FinalMSG = message
		return nil
	},
}

func init() {
	keysRemoveCmd.Flags().StringVar(&keysRemoveOrigin, "origin", "", "key namespace: friend, pgp, keybase, or github (default friend)")
}

package cmd

import (
	"errors"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keyringImportSecret bool
	keyringImportName   string
)

var keyringImportCmd = &cobra.Command{
	Use:   "import <key-id>",
	Short: "Import a key from the system keyring into the registry",
	Long: `Exports a key from GPG and registers the armored bundle under the pgp
origin. Use --secret to import your own private key, which makes PGP
envelopes addressed to you decryptable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keyring import command")
		spinner, cleanup := startSpinner("Importing from keyring...")
		defer cleanup()

		result, err := workflows.KeyringImport(cmd.Context(), workflows.KeyringImportOptions{
			KeyID:  args[0],
			Secret: keyringImportSecret,
			Name:   keyringImportName,
		})
		switch {
		case errors.Is(err, cerrors.ErrKeyNotFound):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " The keyring has no key matching " + ui.Highlight.Sprint(args[0]) + "\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("capsule keyring list") + " to see what it holds"
			return nil
		case errors.Is(err, cerrors.ErrKeyringTimedOut), errors.Is(err, cerrors.ErrKeyringUnavailable):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Could not talk to the keyring tool\n" +
				ui.Error.Sprint("Error: ") + err.Error()
			return nil
		case err != nil:
			return Logger.ErrorfAndReturn("failed to import key: %v", err)
		}

		message := ui.Success.Sprint("✓") + " Imported " + ui.Highlight.Sprint(result.Record.Name) + "\n" +
			"Fingerprint: " + ui.Highlight.Sprint(result.Record.Fingerprint)
		if keyringImportSecret {
			message += "\n" + ui.Info.Sprint("→") + " PGP envelopes addressed to you can now be decrypted"
		}
		spinner.FinalMSG = message
		return nil
	},
}

func init() {
	keyringImportCmd.Flags().BoolVar(&keyringImportSecret, "secret", false, "import the private key (for decrypting)")
	keyringImportCmd.Flags().StringVar(&keyringImportName, "name", "", "registry name (defaults to the key id, or self with --secret)")
}

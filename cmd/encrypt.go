package cmd

import (
	"errors"
	"fmt"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/utils"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	encryptRecipient string
	encryptSelf      bool
	encryptOutput    string
	encryptForcePGP  bool
)

func resetEncryptState() {
	encryptRecipient = ""
	encryptSelf = false
	encryptOutput = ""
	encryptForcePGP = false
}

// EncryptCmd builds an envelope for a recipient.
var EncryptCmd = &cobra.Command{
	Use:   "encrypt [file]",
	Short: "Encrypt a file for a recipient",
	Long: `Encrypts a file into a versioned envelope addressed to one recipient key.
Without --for, the default friend is used; without a default friend, your own
key. Pass - or no file to read the plaintext from stdin; without --output the
envelope goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")
		spinner, cleanup := startSpinner("Encrypting...")
		defer cleanup()

		opts := workflows.EncryptOptions{
			OutputPath: encryptOutput,
			Recipient:  encryptRecipient,
			Self:       encryptSelf,
			ForcePGP:   encryptForcePGP,
		}
		if len(args) == 0 || args[0] == "-" {
			data, err := utils.ReadStdin()
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read plaintext from stdin: %v", err)
			}
			opts.InputData = data
		} else {
			opts.InputPath = args[0]
		}

		result, err := workflows.Encrypt(cmd.Context(), opts)
		switch {
		case errors.Is(err, cerrors.ErrNoSelfKey):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " You have no keypair yet\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("capsule keys init") + " first"
			return nil
		case errors.Is(err, cerrors.ErrKeyNotFound):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " No usable recipient key\n" +
				ui.Error.Sprint("Error: ") + err.Error()
			return nil
		case errors.Is(err, cerrors.ErrEncryptionFailed):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Encryption failed\n" +
				ui.Error.Sprint("Error: ") + err.Error()
			return nil
		case err != nil:
			return Logger.ErrorfAndReturn("failed to encrypt: %v", err)
		}

		if result.OutputPath == "" {
			spinner.Stop()
			fmt.Println(string(result.Data))
			return nil
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Encrypted for " + ui.Highlight.Sprint(recipientLabel(result)) + "\n" +
			"Envelope written to " + ui.Path.Sprint(result.OutputPath)
		return nil
	},
}

func recipientLabel(result *workflows.EncryptResult) string {
	if result.Recipient.Name == "" {
		return "self"
	}
	return result.Recipient.Name
}

func init() {
	registerCommon(EncryptCmd)

	EncryptCmd.Flags().StringVar(&encryptRecipient, "for", "", "recipient key name")
	EncryptCmd.Flags().BoolVar(&encryptSelf, "self", false, "encrypt for your own key")
	EncryptCmd.Flags().StringVarP(&encryptOutput, "output", "o", "", "write the envelope to this file")
	EncryptCmd.Flags().BoolVar(&encryptForcePGP, "pgp", false, "force the PGP envelope format")
}

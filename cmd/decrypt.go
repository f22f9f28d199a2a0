package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/utils"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var decryptOutput string

func resetDecryptState() {
	decryptOutput = ""
}

// DecryptCmd opens an envelope with the matching local private key.
var DecryptCmd = &cobra.Command{
	Use:   "decrypt [file]",
	Short: "Decrypt an envelope",
	Long: `Opens an envelope with whichever of your keys it requires. PGP envelopes
prompt for the keyring passphrase. Pass - or no file to read the envelope
from stdin; without --output the plaintext goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")

		opts := workflows.DecryptOptions{OutputPath: decryptOutput}
		if len(args) == 0 || args[0] == "-" {
			data, err := utils.ReadStdin()
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read envelope from stdin: %v", err)
			}
			opts.InputData = data
		} else {
			opts.InputPath = args[0]
		}

		result, err := workflows.Decrypt(cmd.Context(), opts)
		if errors.Is(err, cerrors.ErrPassphraseRequired) {
			passphrase, promptErr := promptPassphrase()
			if promptErr != nil {
				return Logger.ErrorfAndReturn("failed to read passphrase: %v", promptErr)
			}
			opts.Passphrase = passphrase
			result, err = workflows.Decrypt(cmd.Context(), opts)
		}

		switch {
		case errors.Is(err, cerrors.ErrNotRecipient):
			fmt.Println(ui.Error.Sprint("✗") + " This envelope is not addressed to you\n" +
				ui.Error.Sprint("Error: ") + err.Error())
			return nil
		case errors.Is(err, cerrors.ErrNoSelfKey):
			fmt.Println(ui.Error.Sprint("✗") + " You have no keypair yet\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("capsule keys init") + " first")
			return nil
		case errors.Is(err, cerrors.ErrNoPgpKey):
			fmt.Println(ui.Error.Sprint("✗") + " No private keyring bundle is imported\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("capsule keyring import --secret <key-id>") + " first")
			return nil
		case errors.Is(err, cerrors.ErrDecryptionFailed), errors.Is(err, cerrors.ErrInvalidEnvelope),
			errors.Is(err, cerrors.ErrUnsupportedVersion):
			fmt.Println(ui.Error.Sprint("✗") + " Decryption failed\n" +
				ui.Error.Sprint("Error: ") + err.Error())
			return nil
		case err != nil:
			return Logger.ErrorfAndReturn("failed to decrypt: %v", err)
		}

		if result.Note != "" {
			Logger.WarnfUser("%s", result.Note)
		}

		if result.OutputPath == "" {
			os.Stdout.Write(result.Plaintext)
			return nil
		}

		fmt.Println(ui.Success.Sprint("✓") + " Plaintext written to " + ui.Path.Sprint(result.OutputPath))
		return nil
	},
}

// promptPassphrase reads the keyring passphrase without echo.
func promptPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "Keyring passphrase: ")
	passphrase, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(passphrase), nil
}

func init() {
	registerCommon(DecryptCmd)

	DecryptCmd.Flags().StringVarP(&decryptOutput, "output", "o", "", "write the plaintext to this file")
}

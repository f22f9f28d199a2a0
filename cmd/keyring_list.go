package cmd

import (
	"errors"
	"fmt"
	"strings"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var keyringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keys in the system keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keyring list command")
		spinner, cleanup := startSpinner("Listing keyring keys...")
		defer cleanup()

		result, err := workflows.KeyringList(cmd.Context())
		switch {
		case errors.Is(err, cerrors.ErrKeyringTimedOut):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " The keyring tool did not answer in time\n" +
				ui.Error.Sprint("Error: ") + err.Error()
			return nil
		case errors.Is(err, cerrors.ErrKeyringUnavailable):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Could not run the keyring tool\n" +
				ui.Error.Sprint("Error: ") + err.Error()
			return nil
		case err != nil:
			return Logger.ErrorfAndReturn("failed to list keyring keys: %v", err)
		}

		if len(result.Keys) == 0 {
			spinner.FinalMSG = ui.Muted.Sprint("the keyring holds no public keys")
			return nil
		}

		var b strings.Builder
		for _, key := range result.Keys {
			b.WriteString(ui.Highlight.Sprint(key.KeyID))
			if !key.Expires.IsZero() {
				b.WriteString(" " + ui.Muted.Sprint("expires "+key.Expires.Format("2006-01-02")))
			}
			b.WriteString("\n")
			for _, uid := range key.UIDs {
				line := "  " + uid.Name
				if uid.Email != "" {
					line += " <" + uid.Email + ">"
				}
				b.WriteString(line + "\n")
			}
		}

		spinner.Stop()
		fmt.Print(ui.EnsureNewline(b.String()))
		return nil
	},
}

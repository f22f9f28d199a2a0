package cmd

import (
	"fmt"
	"strings"

	"github.com/capsulecli/capsule/internal/keystore"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys list command")

		result, err := workflows.ListKeys(cmd.Context())
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read the registry: %v", err)
		}

		if result.Total() == 0 {
			fmt.Println(ui.Muted.Sprint("no keys registered") + "\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("capsule keys init") + " to generate your keypair")
			return nil
		}

		var b strings.Builder

		if result.Self != nil {
			b.WriteString(ui.Success.Sprint("self") + "\n")
			b.WriteString("  " + result.Self.Fingerprint + "\n")
		}

		writeGroup := func(title string, records []*keystore.Record) {
			if len(records) == 0 {
				return
			}
			b.WriteString(ui.Success.Sprint(title) + "\n")
			for _, record := range records {
				line := "  " + ui.Highlight.Sprint(record.Name)
				if record.Name == result.DefaultFriend && record.Origin == keystore.OriginFriend {
					line += " " + ui.Muted.Sprint("default")
				}
				line += "\n    " + record.Fingerprint
				if record.LastFetchedAt != nil {
					line += "\n    " + ui.Muted.Sprint("fetched "+record.LastFetchedAt.Format("2006-01-02 15:04"))
				}
				b.WriteString(line + "\n")
			}
		}

		writeGroup("friends", result.Friends)
		writeGroup("pgp", result.PGP)
		writeGroup("keybase", result.Keybase)
		writeGroup("github", result.GitHub)

		fmt.Print(ui.EnsureNewline(b.String()))
		return nil
	},
}

package cmd

import (
	"errors"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/ui"
	"github.com/capsulecli/capsule/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	fetchForceRefresh bool
	fetchBypassProofs bool
)

func resetFetchState() {
	fetchForceRefresh = false
	fetchBypassProofs = false
}

var keysFetchCmd = &cobra.Command{
	Use:   "fetch <github|keybase> <handle>",
	Short: "Fetch a public key from an identity directory",
	Long: `Looks up a user's published key on GitHub or Keybase and registers it as an
encrypt recipient. Keys fetched within the last day are reused without a
network call; use --refresh to force a new fetch.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys fetch command")
		spinner, cleanup := startSpinner("Fetching key from " + args[0] + "...")
		defer cleanup()

		result, err := workflows.FetchKey(cmd.Context(), workflows.FetchKeyOptions{
			Service:      args[0],
			Handle:       args[1],
			ForceRefresh: fetchForceRefresh,
			BypassProofs: fetchBypassProofs,
		})
		switch {
		case errors.Is(err, cerrors.ErrProofVerificationFailed):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + ui.Highlight.Sprint(args[1]) + "'s identity proofs do not verify\n" +
				ui.Info.Sprint("→") + " Pass " + ui.Code.Sprint("--allow-unproven") + " to import the key anyway"
			return nil
		case errors.Is(err, cerrors.ErrDirectoryLookupFailed):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Could not look up " + ui.Highlight.Sprint(args[1]) +
				" on " + args[0] + "\n" + ui.Error.Sprint("Error: ") + err.Error()
			return nil
		case errors.Is(err, cerrors.ErrInvalidKeyBundle):
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + args[0] + " returned something that is not a usable key\n" +
				ui.Error.Sprint("Error: ") + err.Error()
			return nil
		case err != nil:
			return Logger.ErrorfAndReturn("failed to fetch key: %v", err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Imported key for " + ui.Highlight.Sprint(result.Record.Name) + "\n" +
			"Fingerprint: " + ui.Highlight.Sprint(result.Record.Fingerprint) + "\n" +
			ui.Info.Sprint("→") + " Encrypt with " + ui.Code.Sprint("capsule encrypt --for "+result.Record.Name)
		return nil
	},
}

func init() {
	keysFetchCmd.Flags().BoolVar(&fetchForceRefresh, "refresh", false, "re-fetch even if a fresh copy is cached")
	keysFetchCmd.Flags().BoolVar(&fetchBypassProofs, "allow-unproven", false, "skip Keybase identity proof verification")
}

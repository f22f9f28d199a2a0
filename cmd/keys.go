package cmd

import (
	"github.com/spf13/cobra"
)

// KeysCmd manages the key registry.
var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the key registry",
	Long:  `Provides generation, import, listing, removal, and directory fetching of encryption keys.`,
}

func init() {
	registerCommon(KeysCmd)

	KeysCmd.AddCommand(keysInitCmd)
	KeysCmd.AddCommand(keysAddCmd)
	KeysCmd.AddCommand(keysListCmd)
	KeysCmd.AddCommand(keysRemoveCmd)
	KeysCmd.AddCommand(keysDefaultCmd)
	KeysCmd.AddCommand(keysFetchCmd)
}

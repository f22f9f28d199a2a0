package cmd

import (
	"github.com/spf13/cobra"
)

// KeyringCmd bridges to the system GPG keyring.
var KeyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Work with the system GPG keyring",
	Long:  `Probes, lists, and imports from the GPG installation on this machine.`,
}

func init() {
	registerCommon(KeyringCmd)

	KeyringCmd.AddCommand(keyringStatusCmd)
	KeyringCmd.AddCommand(keyringListCmd)
	KeyringCmd.AddCommand(keyringImportCmd)
}

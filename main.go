package main

import (
	"fmt"
	"os"

	"github.com/capsulecli/capsule/cmd"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "capsule",
	Short: "Capsule - recipient-addressed file encryption with a personal key registry.",
	Long: `Capsule encrypts files for people. It keeps a registry of keys: your own
keypair, friends' public keys, and keys fetched from GitHub, Keybase, or your
GPG keyring, and builds envelopes only the addressed recipient can open.

Usage:
  capsule <command> [flags]

Available Commands:
  keys       Manage the key registry
  keyring    Work with the system GPG keyring
  encrypt    Encrypt a file for a recipient
  decrypt    Decrypt an envelope
  log        Show the audit log

Run 'capsule help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewColorFigure("capsule", "", "cyan", true)
		banner.Print()
		fmt.Println("Run 'capsule --help' to see available commands.")
	},
}

func main() {
	rootCmd.AddCommand(cmd.KeysCmd)
	rootCmd.AddCommand(cmd.KeyringCmd)
	rootCmd.AddCommand(cmd.EncryptCmd)
	rootCmd.AddCommand(cmd.DecryptCmd)
	rootCmd.AddCommand(cmd.LogCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package cmd

import (
	logger "github.com/capsulecli/capsule/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger
)

// registerCommon wires the shared verbosity flags and logger setup onto a
// top-level command.
func registerCommon(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	existing := cmd.PersistentPreRun
	cmd.PersistentPreRun = func(c *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", c.Name(), verbose, debug)
		if existing != nil {
			existing(c, args)
		}
	}
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetKeysInitState()
	resetEncryptState()
	resetDecryptState()
	resetFetchState()
	resetCobraFlagState()
}

// resetCobraFlagState clears the changed marker on every flag to prevent test
// pollution between command executions.
func resetCobraFlagState() {
	for _, c := range []*cobra.Command{KeysCmd, KeyringCmd, EncryptCmd, DecryptCmd, LogCmd} {
		for _, sub := range append(c.Commands(), c) {
			sub.Flags().VisitAll(func(flag *pflag.Flag) {
				flag.Changed = false
			})
		}
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}

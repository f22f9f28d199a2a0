// Package logger provides leveled logging for capsule CLI commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output is formatted with colored semantic prefixes.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always shown.
//
// # Usage
//
// Create a logger with the desired verbosity:
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Fetched key for %s", handle)
//
// Commands typically create a logger in their PersistentPreRun and
// pass it to internal functions.
package logger

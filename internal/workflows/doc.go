// Package workflows provides high-level orchestration for capsule commands.
//
// Workflows coordinate multiple operations across packages (configs,
// keystore, envelope, resolver, keyring, audit) to implement complete
// user-facing features. Each workflow handles a single command's business
// logic, independent of CLI concerns like flag parsing, spinners, and output
// formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading configuration
//   - Validating prerequisites
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, cerrors.ErrPassphraseRequired) {
//	    // Prompt for the passphrase and retry
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// This enables cancellation, timeouts, and passing request-scoped values.
package workflows

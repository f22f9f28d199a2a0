// Package errors provides typed error values for the capsule application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. Each sentinel
// doubles as a stable message prefix: call sites wrap with
// fmt.Errorf("%w: %v", sentinel, cause), so scripts and tests can match on the
// error kind without depending on the cause text.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Key lookup errors: missing registry entries (ErrKeyNotFound, ErrNoSelfKey)
//   - Envelope errors: encrypt/decrypt failures (ErrDecryptionFailed, ErrNotRecipient)
//   - Resolver errors: directory lookups (ErrDirectoryLookupFailed)
//   - Keyring errors: local keyring tool (ErrKeyringUnavailable, ErrKeyringTimedOut)
//   - Registry errors: persistence of the key registry (ErrRegistryIO)
//
// # Usage
//
// Return errors from internal packages:
//
//	if db.Self == nil {
//	    return nil, errors.ErrNoSelfKey
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, cerrors.ErrPassphraseRequired) {
//	    // Re-prompt for a passphrase
//	}
package errors

package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/capsulecli/capsule/internal/audit"
	"github.com/capsulecli/capsule/internal/envelope"
	"github.com/capsulecli/capsule/internal/utils"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	// InputPath is the envelope file to decrypt. Ignored when InputData is set.
	InputPath string

	// InputData contains the envelope bytes when reading from stdin.
	InputData []byte

	// OutputPath is where the plaintext is written. When empty the plaintext
	// is returned in the result instead.
	OutputPath string

	// Passphrase unlocks the keyring private key for version 3 envelopes.
	Passphrase string
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	// Version is the envelope version that was consumed.
	Version int

	// Note carries a non-fatal diagnostic from the envelope dispatch.
	Note string

	// OutputPath is the written file, empty when Plaintext carries the content.
	OutputPath string

	// Plaintext holds the content when no output path was given.
	Plaintext []byte
}

// Decrypt opens an envelope with whichever local private key its version and
// recipient descriptor require.
//
// Version 3 envelopes need a passphrase; ErrPassphraseRequired signals the
// caller to prompt and retry. One attempt per call.
func Decrypt(ctx context.Context, opts DecryptOptions) (*DecryptResult, error) {
	data := opts.InputData
	if data == nil {
		fileData, err := os.ReadFile(opts.InputPath)
		if err != nil {
			return nil, fmt.Errorf("reading envelope: %w", err)
		}
		data = fileData
	}

	env, err := envelope.Parse(data)
	if err != nil {
		return nil, err
	}

	store := newStore()
	codec := newCodec(store)

	decrypted, err := codec.Decrypt(data, envelope.DecryptContext{Passphrase: opts.Passphrase})
	if err != nil {
		return nil, err
	}

	result := &DecryptResult{
		Version:    env.Version,
		Note:       decrypted.Note,
		OutputPath: opts.OutputPath,
	}

	if opts.OutputPath == "" {
		result.Plaintext = decrypted.Plaintext
	} else if err := utils.WriteFileAtomic(opts.OutputPath, decrypted.Plaintext, 0600); err != nil {
		return nil, fmt.Errorf("writing plaintext: %w", err)
	}

	audit.Log(audit.Entry{
		Operation:  "decrypt",
		Version:    env.Version,
		Note:       decrypted.Note,
		OutputPath: opts.OutputPath,
	})

	return result, nil
}

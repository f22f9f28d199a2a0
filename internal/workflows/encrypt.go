package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/capsulecli/capsule/internal/audit"
	"github.com/capsulecli/capsule/internal/envelope"
	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
	"github.com/capsulecli/capsule/internal/utils"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	// InputPath is the file to encrypt. Ignored when InputData is set.
	InputPath string

	// InputData contains the plaintext when reading from stdin.
	InputData []byte

	// OutputPath is where the envelope is written. When empty the envelope
	// bytes are returned in the result instead.
	OutputPath string

	// Recipient names the key to encrypt for, searched across namespaces.
	// When empty the default friend is used, and failing that the self key.
	Recipient string

	// Self addresses the envelope to the local self key regardless of
	// Recipient and the default friend.
	Self bool

	// ForcePGP routes encryption through the PGP path even for recipients
	// that would take the hybrid path. Fails for RSA-backed recipients.
	ForcePGP bool
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	// Recipient is the key the envelope is addressed to.
	Recipient *keystore.Record

	// Version is the envelope version that was produced.
	Version int

	// OutputPath is the written file, empty when Data carries the envelope.
	OutputPath string

	// Data holds the envelope bytes when no output path was given.
	Data []byte
}

// Encrypt builds an envelope for the chosen recipient.
//
// Recipient selection: an explicit name is looked up across all namespaces
// in the fixed friend, pgp, keybase, github order. Without a name the
// default friend is used; without a default friend the self key. Friend
// recipients have their last-used timestamp touched on success.
func Encrypt(ctx context.Context, opts EncryptOptions) (*EncryptResult, error) {
	content := opts.InputData
	if content == nil {
		data, err := os.ReadFile(opts.InputPath)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		content = data
	}

	store := newStore()

	record, err := chooseRecipient(store, opts)
	if err != nil {
		return nil, err
	}

	codec := newCodec(store)
	data, err := codec.Encrypt(content, record, envelope.EncryptOptions{ForcePGP: opts.ForcePGP})
	if err != nil {
		return nil, err
	}

	env, err := envelope.Parse(data)
	if err != nil {
		return nil, err
	}

	result := &EncryptResult{
		Recipient:  record,
		Version:    env.Version,
		OutputPath: opts.OutputPath,
	}

	if opts.OutputPath == "" {
		result.Data = data
	} else if err := utils.WriteFileAtomic(opts.OutputPath, data, 0600); err != nil {
		return nil, fmt.Errorf("writing envelope: %w", err)
	}

	if record.Origin == keystore.OriginFriend {
		if err := store.UpdateLastUsed(record.Name); err != nil {
			return nil, err
		}
	}

	audit.Log(audit.Entry{
		Operation:   "encrypt",
		Origin:      string(record.Origin),
		Recipient:   record.Name,
		Fingerprint: record.Fingerprint,
		Version:     env.Version,
		OutputPath:  opts.OutputPath,
	})

	return result, nil
}

// chooseRecipient applies the recipient selection rules.
func chooseRecipient(store *keystore.Store, opts EncryptOptions) (*keystore.Record, error) {
	if opts.Self {
		return store.GetKey(keystore.OriginSelf, "")
	}

	if opts.Recipient != "" {
		return store.GetKeyAny(opts.Recipient)
	}

	db, err := store.Load()
	if err != nil {
		return nil, err
	}
	if db.DefaultFriend != "" {
		return db.GetKey(keystore.OriginFriend, db.DefaultFriend)
	}
	if db.Keys.Self != nil {
		return db.Keys.Self, nil
	}
	return nil, fmt.Errorf("%w: no recipient given, no default friend, and no self key",
		cerrors.ErrKeyNotFound)
}

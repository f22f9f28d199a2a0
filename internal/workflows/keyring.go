package workflows

import (
	"context"
	"time"

	"github.com/capsulecli/capsule/internal/audit"
	"github.com/capsulecli/capsule/internal/envelope"
	"github.com/capsulecli/capsule/internal/keyring"
	"github.com/capsulecli/capsule/internal/keystore"
)

// KeyringStatusResult describes the system keyring installation.
type KeyringStatusResult struct {
	Command   string
	Timeout   time.Duration
	Installed bool
	Version   string
}

// KeyringStatus probes the configured keyring binary. A missing binary is a
// normal answer carried in the result, not an error.
func KeyringStatus(ctx context.Context) (*KeyringStatusResult, error) {
	bridge, err := newBridge()
	if err != nil {
		return nil, err
	}

	status, err := bridge.Probe(ctx)
	if err != nil {
		return nil, err
	}

	return &KeyringStatusResult{
		Command:   bridge.Command,
		Timeout:   bridge.Timeout,
		Installed: status.Installed,
		Version:   status.Version,
	}, nil
}

// KeyringListResult contains the keys held by the system keyring.
type KeyringListResult struct {
	Keys []keyring.Key
}

// KeyringList lists the public keys in the system keyring.
func KeyringList(ctx context.Context) (*KeyringListResult, error) {
	bridge, err := newBridge()
	if err != nil {
		return nil, err
	}

	keys, err := bridge.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	return &KeyringListResult{Keys: keys}, nil
}

// KeyringImportOptions configures the keyring import workflow.
type KeyringImportOptions struct {
	// KeyID selects the keyring key to export: a fingerprint, key ID, or
	// email the keyring tool accepts.
	KeyID string

	// Secret exports the private key instead of the public one. This is how
	// the operator's own identity becomes usable for decryption.
	Secret bool

	// Name overrides the registry name. Defaults to the key ID, or to the
	// reserved self name when Secret is set.
	Name string
}

// KeyringImportResult contains the outcome of a keyring import operation.
type KeyringImportResult struct {
	Record *keystore.Record
}

// KeyringImport exports a key from the system keyring and registers the
// armored bundle under the pgp origin.
func KeyringImport(ctx context.Context, opts KeyringImportOptions) (*KeyringImportResult, error) {
	bridge, err := newBridge()
	if err != nil {
		return nil, err
	}

	var bundle []byte
	if opts.Secret {
		bundle, err = bridge.ExportSecretKey(ctx, opts.KeyID)
	} else {
		bundle, err = bridge.ExportPublicKey(ctx, opts.KeyID)
	}
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		if opts.Secret {
			name = envelope.SelfPGPKeyName
		} else {
			name = opts.KeyID
		}
	}

	store := newStore()
	record, err := store.AddExternalKey(keystore.OriginPGP, name, bundle, keystore.Metadata{})
	if err != nil {
		return nil, err
	}

	audit.Log(audit.Entry{
		Operation:   "keyring import",
		Origin:      string(keystore.OriginPGP),
		KeyName:     record.Name,
		Fingerprint: record.Fingerprint,
	})

	return &KeyringImportResult{Record: record}, nil
}

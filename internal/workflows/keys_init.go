package workflows

import (
	"context"
	"fmt"

	"github.com/capsulecli/capsule/internal/audit"
	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
)

// InitKeysOptions configures the keys init workflow.
type InitKeysOptions struct {
	// Force replaces an existing self keypair instead of refusing.
	Force bool
}

// InitKeysResult contains the outcome of a keys init operation.
type InitKeysResult struct {
	// Record is the registered self key.
	Record *keystore.Record

	// Replaced indicates an existing self keypair was overwritten.
	Replaced bool
}

// InitKeys generates a fresh RSA keypair and registers it as the self key.
//
// Returns ErrSelfKeyExists if a self key is already registered and Force is
// not set. The old key material is overwritten on Force; envelopes addressed
// to the old key become undecryptable.
func InitKeys(ctx context.Context, opts InitKeysOptions) (*InitKeysResult, error) {
	store := newStore()

	existing, err := store.GetKey(keystore.OriginSelf, "")
	replaced := err == nil
	if replaced && !opts.Force {
		return nil, fmt.Errorf("%w: fingerprint %s", cerrors.ErrSelfKeyExists, existing.Fingerprint)
	}

	privatePEM, publicPEM, err := keystore.GenerateRSAKeyPair()
	if err != nil {
		return nil, err
	}

	record, err := store.AddSelfKey(privatePEM, publicPEM)
	if err != nil {
		return nil, err
	}

	audit.Log(audit.Entry{
		Operation:   "keys init",
		Origin:      string(keystore.OriginSelf),
		Fingerprint: record.Fingerprint,
	})

	return &InitKeysResult{Record: record, Replaced: replaced}, nil
}

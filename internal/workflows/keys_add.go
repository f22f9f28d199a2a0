package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/capsulecli/capsule/internal/audit"
	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
)

// AddFriendOptions configures the keys add workflow.
type AddFriendOptions struct {
	// Name is the registry name the friend's key is stored under.
	Name string

	// PublicKeyPath is the PEM file to read. Ignored when PublicKeyData is set.
	PublicKeyPath string

	// PublicKeyData contains the PEM bytes when reading from stdin.
	PublicKeyData []byte
}

// AddFriendResult contains the outcome of a keys add operation.
type AddFriendResult struct {
	Record *keystore.Record

	// BecameDefault indicates this friend became the default recipient.
	BecameDefault bool
}

// AddFriend registers a friend's RSA public key under the given name.
//
// Returns ErrInvalidKeyBundle if the input is not a PEM RSA public key. The
// first friend added becomes the default recipient.
func AddFriend(ctx context.Context, opts AddFriendOptions) (*AddFriendResult, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: a friend needs a name", cerrors.ErrInvalidKeyBundle)
	}

	publicPEM := opts.PublicKeyData
	if publicPEM == nil {
		data, err := os.ReadFile(opts.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading public key: %w", err)
		}
		publicPEM = data
	}

	store := newStore()

	before, err := store.Load()
	if err != nil {
		return nil, err
	}
	hadDefault := before.DefaultFriend != ""

	record, err := store.AddFriendKey(opts.Name, publicPEM)
	if err != nil {
		return nil, err
	}

	audit.Log(audit.Entry{
		Operation:   "keys add",
		Origin:      string(keystore.OriginFriend),
		KeyName:     record.Name,
		Fingerprint: record.Fingerprint,
	})

	return &AddFriendResult{
		Record:        record,
		BecameDefault: !hadDefault,
	}, nil
}

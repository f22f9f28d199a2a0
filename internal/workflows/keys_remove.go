package workflows

import (
	"context"
	"fmt"

	"github.com/capsulecli/capsule/internal/audit"
	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
)

// RemoveKeyOptions configures the keys remove workflow.
type RemoveKeyOptions struct {
	Origin keystore.Origin
	Name   string
}

// RemoveKeyResult contains the outcome of a keys remove operation.
type RemoveKeyResult struct {
	RemovedOrigin keystore.Origin
	RemovedName   string

	// NewDefaultFriend is the reassigned default after removing the previous
	// default friend. Empty when the default did not change or no friends
	// remain.
	NewDefaultFriend string
}

// RemoveKey deletes a key from the registry along with its on-disk material.
// Removing the default friend promotes another friend to default when one
// exists.
func RemoveKey(ctx context.Context, opts RemoveKeyOptions) (*RemoveKeyResult, error) {
	if !opts.Origin.Valid() {
		return nil, fmt.Errorf("%w: unknown origin %q", cerrors.ErrKeyNotFound, opts.Origin)
	}

	store := newStore()

	before, err := store.Load()
	if err != nil {
		return nil, err
	}
	wasDefault := opts.Origin == keystore.OriginFriend && before.DefaultFriend == opts.Name

	if err := store.RemoveKey(opts.Origin, opts.Name); err != nil {
		return nil, err
	}

	result := &RemoveKeyResult{
		RemovedOrigin: opts.Origin,
		RemovedName:   opts.Name,
	}

	if wasDefault {
		after, err := store.Load()
		if err != nil {
			return nil, err
		}
		result.NewDefaultFriend = after.DefaultFriend
	}

	audit.Log(audit.Entry{
		Operation: "keys remove",
		Origin:    string(opts.Origin),
		KeyName:   opts.Name,
	})

	return result, nil
}

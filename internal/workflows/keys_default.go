package workflows

import (
	"context"

	"github.com/capsulecli/capsule/internal/audit"
	"github.com/capsulecli/capsule/internal/keystore"
)

// SetDefaultFriendResult contains the outcome of a keys default operation.
type SetDefaultFriendResult struct {
	// Previous is the name of the friend that was the default before, if any.
	Previous string

	Record *keystore.Record
}

// SetDefaultFriend makes the named friend the default encrypt recipient.
// Returns ErrKeyNotFound if no friend with that name is registered.
func SetDefaultFriend(ctx context.Context, name string) (*SetDefaultFriendResult, error) {
	store := newStore()

	db, err := store.Load()
	if err != nil {
		return nil, err
	}

	record, err := db.GetKey(keystore.OriginFriend, name)
	if err != nil {
		return nil, err
	}

	previous := db.DefaultFriend
	db.DefaultFriend = name

	if err := store.Save(db); err != nil {
		return nil, err
	}

	audit.Log(audit.Entry{
		Operation: "keys default",
		Origin:    string(keystore.OriginFriend),
		KeyName:   name,
	})

	return &SetDefaultFriendResult{Previous: previous, Record: record}, nil
}

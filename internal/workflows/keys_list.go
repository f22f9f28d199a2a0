package workflows

import (
	"context"
	"sort"

	"github.com/capsulecli/capsule/internal/keystore"
)

// ListKeysResult contains the registry contents grouped by origin.
type ListKeysResult struct {
	Self    *keystore.Record
	Friends []*keystore.Record
	PGP     []*keystore.Record
	Keybase []*keystore.Record
	GitHub  []*keystore.Record

	// DefaultFriend is the name encrypt falls back to, if any.
	DefaultFriend string

	// LastUsed is the most recently used friend, if any.
	LastUsed string
}

// Total returns the number of registered keys including the self key.
func (r *ListKeysResult) Total() int {
	total := len(r.Friends) + len(r.PGP) + len(r.Keybase) + len(r.GitHub)
	if r.Self != nil {
		total++
	}
	return total
}

// ListKeys reads the registry and returns its contents with each origin's
// records sorted by name. A missing registry yields an empty result, not an
// error.
func ListKeys(ctx context.Context) (*ListKeysResult, error) {
	db, err := newStore().Load()
	if err != nil {
		return nil, err
	}

	return &ListKeysResult{
		Self:          db.Keys.Self,
		Friends:       sortedRecords(db.Keys.Friends),
		PGP:           sortedRecords(db.Keys.PGP),
		Keybase:       sortedRecords(db.Keys.Keybase),
		GitHub:        sortedRecords(db.Keys.GitHub),
		DefaultFriend: db.DefaultFriend,
		LastUsed:      db.LastUsed,
	}, nil
}

func sortedRecords(m map[string]*keystore.Record) []*keystore.Record {
	records := make([]*keystore.Record, 0, len(m))
	for _, record := range m {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records
}

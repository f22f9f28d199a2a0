package workflows

import (
	"context"

	"github.com/capsulecli/capsule/internal/audit"
	"github.com/capsulecli/capsule/internal/keystore"
	"github.com/capsulecli/capsule/internal/resolver"
)

// FetchKeyOptions configures the keys fetch workflow.
type FetchKeyOptions struct {
	// Service is the directory to query, "github" or "keybase".
	Service string

	// Handle is the username on that service.
	Handle string

	// ForceRefresh re-fetches even when a fresh record exists.
	ForceRefresh bool

	// BypassProofs skips Keybase proof verification.
	BypassProofs bool
}

// FetchKeyResult contains the outcome of a keys fetch operation.
type FetchKeyResult struct {
	Record *keystore.Record
}

// FetchKey resolves a public key from an identity directory into the
// registry. A record fetched within the last day is reused without a network
// call unless ForceRefresh is set.
func FetchKey(ctx context.Context, opts FetchKeyOptions) (*FetchKeyResult, error) {
	store := newStore()

	res, err := newResolver(store)
	if err != nil {
		return nil, err
	}

	record, err := res.Resolve(ctx, opts.Service, opts.Handle, resolver.Options{
		ForceRefresh: opts.ForceRefresh,
		BypassProofs: opts.BypassProofs,
	})
	if err != nil {
		return nil, err
	}

	audit.Log(audit.Entry{
		Operation:   "keys fetch",
		Origin:      string(record.Origin),
		KeyName:     record.Name,
		Fingerprint: record.Fingerprint,
		Service:     opts.Service,
		Handle:      opts.Handle,
	})

	return &FetchKeyResult{Record: record}, nil
}

package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
)

// keybaseProofStateOK is the state Keybase assigns to a proof that currently
// verifies.
const keybaseProofStateOK = 1

// keybaseLookup mirrors the fields we read from the user/lookup.json response.
type keybaseLookup struct {
	Status struct {
		Code int    `json:"code"`
		Desc string `json:"desc"`
		Name string `json:"name"`
	} `json:"status"`
	Them struct {
		Basics struct {
			Username string `json:"username"`
		} `json:"basics"`
		Profile struct {
			FullName string `json:"full_name"`
		} `json:"profile"`
		PublicKeys struct {
			Primary struct {
				Bundle      string `json:"bundle"`
				KeyFingerpr string `json:"key_fingerprint"`
			} `json:"primary"`
		} `json:"public_keys"`
		ProofsSummary struct {
			All []keybaseProof `json:"all"`
		} `json:"proofs_summary"`
	} `json:"them"`
}

type keybaseProof struct {
	ProofType string `json:"proof_type"`
	Nametag   string `json:"nametag"`
	State     int    `json:"state"`
}

// fetchKeybase looks up a user on Keybase and returns their primary public
// bundle. Unless bypassed, at least one identity proof must currently verify.
func (r *Resolver) fetchKeybase(ctx context.Context, handle string, opts Options) ([]byte, keystore.Metadata, error) {
	lookupURL := fmt.Sprintf("%s/_/api/1.0/user/lookup.json?username=%s",
		r.KeybaseAPIURL, url.QueryEscape(handle))

	body, status, err := r.get(ctx, lookupURL)
	if err != nil {
		return nil, keystore.Metadata{}, fmt.Errorf("%w: keybase unreachable: %v",
			cerrors.ErrDirectoryLookupFailed, err)
	}
	if status != http.StatusOK {
		return nil, keystore.Metadata{}, fmt.Errorf("%w: keybase returned status %d for %q",
			cerrors.ErrDirectoryLookupFailed, status, handle)
	}

	var lookup keybaseLookup
	if err := json.Unmarshal(body, &lookup); err != nil {
		return nil, keystore.Metadata{}, fmt.Errorf("%w: decoding keybase response: %v",
			cerrors.ErrDirectoryLookupFailed, err)
	}

	// Keybase reports application errors inside a 200 response.
	if lookup.Status.Code != 0 {
		return nil, keystore.Metadata{}, fmt.Errorf("%w: keybase lookup for %q: %s",
			cerrors.ErrDirectoryLookupFailed, handle, lookup.Status.Desc)
	}

	if opts.BypassProofs {
		r.Logger.WarnfUser("Skipping Keybase proof verification for %q", handle)
	} else if err := checkProofs(lookup.Them.ProofsSummary.All); err != nil {
		return nil, keystore.Metadata{}, fmt.Errorf("%w: keybase user %q: %v",
			cerrors.ErrProofVerificationFailed, handle, err)
	}

	bundle := lookup.Them.PublicKeys.Primary.Bundle
	if bundle == "" {
		return nil, keystore.Metadata{}, fmt.Errorf("%w: keybase user %q has no primary public key",
			cerrors.ErrInvalidKeyBundle, handle)
	}

	meta := keystore.Metadata{
		Username: lookup.Them.Basics.Username,
	}
	return []byte(bundle), meta, nil
}

// checkProofs requires at least one proof in the verifying state and rejects
// accounts where every advertised proof is broken.
func checkProofs(proofs []keybaseProof) error {
	if len(proofs) == 0 {
		return fmt.Errorf("no identity proofs published")
	}
	for _, proof := range proofs {
		if proof.State == keybaseProofStateOK {
			return nil
		}
	}
	return fmt.Errorf("none of the %d published proofs currently verify", len(proofs))
}

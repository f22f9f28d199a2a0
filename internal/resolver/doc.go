// Package resolver imports public keys from external identity directories.
//
// A resolve is idempotent within the freshness window: if the registry holds
// a record for the handle that was fetched recently enough, no network call
// is made. Stale and missing records are fetched, validated as armored
// public-key bundles, and written back through the key store.
//
// GitHub serves keys as the flat file a user publishes at
// github.com/<handle>.gpg; Keybase serves them through its lookup API, which
// additionally carries identity proofs that are checked before the key is
// accepted.
package resolver

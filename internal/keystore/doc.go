// Package keystore is the durable registry of key identities and their
// on-disk material.
//
// The registry is a single JSON file plus a keys/ directory tree of PEM and
// armored files, all owned by the Store. Records are classified by Origin
// (self, friend, pgp, keybase, github); exactly one self record exists at a
// time, and every other origin is keyed by a human-chosen name unique within
// its origin namespace.
//
// The package has no knowledge of envelope cryptography. Key identity is the
// Fingerprint of the public key bytes; names are a human convenience layer
// and are not part of identity.
//
// Mutations re-read, modify, and atomically rewrite the whole registry file.
// The load-mutate-save cycle is not safe for concurrent writers; the registry
// is single-user, single-process state and this is a documented limitation,
// not something locking is layered over.
package keystore

package errors

import "errors"

// Key lookup errors indicate a required key is missing from the registry.
var (
	// ErrKeyNotFound indicates no key is registered under the requested name.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNoSelfKey indicates no self keypair has been generated yet.
	ErrNoSelfKey = errors.New("no self key")

	// ErrNoPgpKey indicates no PGP private key is registered for the local identity.
	ErrNoPgpKey = errors.New("no pgp key")

	// ErrSelfKeyExists indicates a self keypair is already registered.
	ErrSelfKeyExists = errors.New("self key already exists")
)

// Envelope errors indicate failures producing or consuming encrypted envelopes.
var (
	// ErrEncryptionFailed indicates the envelope could not be produced.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrDecryptionFailed indicates the envelope could not be opened.
	// This covers authentication-tag mismatches; no partial plaintext is ever returned.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrNotRecipient indicates the envelope is addressed to someone else.
	ErrNotRecipient = errors.New("not the recipient")

	// ErrUnsupportedVersion indicates the envelope declares an unknown version.
	ErrUnsupportedVersion = errors.New("unsupported envelope version")

	// ErrPassphraseRequired indicates a PGP envelope needs a passphrase to open.
	ErrPassphraseRequired = errors.New("passphrase required")

	// ErrInvalidEnvelope indicates the envelope bytes are not a well-formed envelope.
	ErrInvalidEnvelope = errors.New("invalid envelope")
)

// Resolver errors indicate failures fetching keys from identity directories.
var (
	// ErrDirectoryLookupFailed indicates a directory service lookup failed.
	// The message distinguishes a missing handle from an unreachable service.
	ErrDirectoryLookupFailed = errors.New("directory lookup failed")

	// ErrProofVerificationFailed indicates the handle has no verified proofs
	// and the import was not explicitly allowed to skip verification.
	ErrProofVerificationFailed = errors.New("proof verification failed")

	// ErrInvalidKeyBundle indicates the fetched material is not a public-key block.
	ErrInvalidKeyBundle = errors.New("invalid key bundle")
)

// Keyring errors indicate the local keyring tool is not usable.
var (
	// ErrKeyringUnavailable indicates the keyring tool is not installed or not runnable.
	ErrKeyringUnavailable = errors.New("keyring unavailable")

	// ErrKeyringTimedOut indicates the keyring tool did not answer within the deadline.
	ErrKeyringTimedOut = errors.New("keyring timed out")
)

// Registry errors indicate failures persisting or reading the key registry.
var (
	// ErrRegistryIO indicates the registry file could not be read or written.
	// Registry I/O failures always propagate; the registry is the single
	// source of truth for key locations.
	ErrRegistryIO = errors.New("registry i/o failed")
)

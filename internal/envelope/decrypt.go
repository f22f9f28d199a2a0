package envelope

import (
	"encoding/base64"
	"fmt"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
)

// SelfPGPKeyName is the registry name under which the operator's own keyring
// bundle is imported. Version 3 decryption looks here for private material.
const SelfPGPKeyName = "self"

// DecryptContext carries caller-supplied inputs for decryption.
type DecryptContext struct {
	// Passphrase unlocks the local PGP private key for version 3 envelopes.
	Passphrase string
}

// DecryptResult is the outcome of opening an envelope.
type DecryptResult struct {
	Plaintext []byte

	// Note carries a non-fatal diagnostic, e.g. when the recipient label did
	// not match but the fingerprint did.
	Note string
}

// Decrypt inspects the envelope's version and metadata, resolves the required
// private key from the registry, and invokes the matching decryption path.
// One decision per call; retries (such as re-prompting for a passphrase)
// belong to the caller.
func (c *Codec) Decrypt(data []byte, dctx DecryptContext) (*DecryptResult, error) {
	env, err := Parse(data)
	if err != nil {
		return nil, err
	}

	switch env.Version {
	case Version1:
		return c.decryptLegacy(env)
	case Version2:
		return c.decryptHybrid(env)
	case Version3:
		return c.decryptPGP(env, dctx)
	}
	// Parse already rejected anything else.
	return nil, fmt.Errorf("%w: version %d", cerrors.ErrUnsupportedVersion, env.Version)
}

// decryptLegacy handles version 1: no metadata, the key is unconditionally
// the local self private key.
func (c *Codec) decryptLegacy(env *Envelope) (*DecryptResult, error) {
	selfRecord, err := c.Store.GetKey(keystore.OriginSelf, "")
	if err != nil {
		return nil, err
	}

	plaintext, err := c.openHybrid(env, selfRecord)
	if err != nil {
		return nil, err
	}
	return &DecryptResult{Plaintext: plaintext}, nil
}

// decryptHybrid handles version 2: the recipient descriptor decides ownership,
// trusting the fingerprint over the label.
func (c *Codec) decryptHybrid(env *Envelope) (*DecryptResult, error) {
	recipient := env.Metadata.Recipient

	addressedToSelf := recipient.Type == RecipientSelf ||
		(recipient.Type == RecipientFriend && recipient.Name == "self")

	selfRecord, selfErr := c.Store.GetKey(keystore.OriginSelf, "")

	note := ""
	switch {
	case addressedToSelf:
		if selfErr != nil {
			return nil, selfErr
		}
	case selfErr == nil && recipient.Fingerprint == selfRecord.Fingerprint:
		// The label names someone else but the key is ours. Fingerprint is
		// identity; the label is not.
		note = fmt.Sprintf("envelope is labeled for %s %q but its fingerprint matches your key; decrypting with the self key",
			recipient.Type, recipient.Name)
		c.Logger.Infof("%s", note)
	default:
		return nil, fmt.Errorf("%w: envelope is addressed to %s %q",
			cerrors.ErrNotRecipient, recipient.Type, recipient.Name)
	}

	plaintext, err := c.openHybrid(env, selfRecord)
	if err != nil {
		return nil, err
	}
	return &DecryptResult{Plaintext: plaintext, Note: note}, nil
}

// decryptPGP handles version 3 by delegating to the PGP collaborator.
func (c *Codec) decryptPGP(env *Envelope, dctx DecryptContext) (*DecryptResult, error) {
	record, err := c.Store.GetKey(keystore.OriginPGP, SelfPGPKeyName)
	if err != nil {
		return nil, fmt.Errorf("%w: no private keyring bundle imported as %q",
			cerrors.ErrNoPgpKey, SelfPGPKeyName)
	}

	if dctx.Passphrase == "" {
		return nil, fmt.Errorf("%w: version 3 envelopes need the keyring passphrase",
			cerrors.ErrPassphraseRequired)
	}

	bundle, err := c.Store.ReadBundle(record)
	if err != nil {
		return nil, err
	}

	plaintext, err := c.PGP.DecryptWith([]byte(env.EncryptedContent), bundle, dctx.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrDecryptionFailed, err)
	}

	return &DecryptResult{Plaintext: plaintext}, nil
}

// openHybrid unwraps the symmetric key with the record's private key and
// opens the AES-GCM content, verifying the authentication tag.
func (c *Codec) openHybrid(env *Envelope, selfRecord *keystore.Record) ([]byte, error) {
	privatePEM, err := c.Store.ReadPrivateKey(selfRecord)
	if err != nil {
		return nil, err
	}
	privateKey, err := keystore.ParsePrivateKey(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrDecryptionFailed, err)
	}

	wrappedKey, err := base64.StdEncoding.DecodeString(env.EncryptedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding encryptedKey: %v", cerrors.ErrInvalidEnvelope, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding iv: %v", cerrors.ErrInvalidEnvelope, err)
	}
	tag, err := base64.StdEncoding.DecodeString(env.AuthTag)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding authTag: %v", cerrors.ErrInvalidEnvelope, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.EncryptedContent)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding encryptedContent: %v", cerrors.ErrInvalidEnvelope, err)
	}

	symKey, err := unwrapKey(wrappedKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrapping symmetric key: %v", cerrors.ErrDecryptionFailed, err)
	}

	plaintext, err := openContent(symKey, nonce, ciphertext, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

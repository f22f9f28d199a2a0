package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
	logger "github.com/capsulecli/capsule/internal/logging"
)

const (
	symmetricKeySize = 32 // AES-256
	nonceSize        = 16
	tagSize          = 16
)

// Codec produces and consumes versioned envelopes. It reads key material
// through the Store and never persists anything itself.
type Codec struct {
	Store  *keystore.Store
	PGP    PGP
	Logger logger.Logger
}

// EncryptOptions configures envelope production.
type EncryptOptions struct {
	// ForcePGP routes encryption through the PGP collaborator even when the
	// recipient key would normally take the hybrid path. Only valid for
	// recipients backed by an armored bundle.
	ForcePGP bool
}

// Encrypt builds an envelope binding content to the recipient record's key.
//
// Recipients backed by an armored bundle (pgp, keybase, and github origins)
// delegate entirely to the PGP collaborator and produce a version 3 envelope.
// RSA-family recipients (self, friend) take the hybrid path: fresh AES-256
// key and 128-bit nonce, GCM content encryption, RSA-OAEP key wrap, version 2.
func (c *Codec) Encrypt(content []byte, record *keystore.Record, opts EncryptOptions) ([]byte, error) {
	recipient := describeRecipient(record)

	switch record.Origin {
	case keystore.OriginPGP, keystore.OriginKeybase, keystore.OriginGitHub:
		return c.encryptPGP(content, record, recipient)
	case keystore.OriginSelf, keystore.OriginFriend:
		if opts.ForcePGP {
			return nil, fmt.Errorf("%w: recipient %q has an RSA key, not a pgp bundle",
				cerrors.ErrEncryptionFailed, record.Name)
		}
		return c.encryptHybrid(content, record, recipient)
	}
	return nil, fmt.Errorf("%w: unknown key origin %q", cerrors.ErrEncryptionFailed, record.Origin)
}

func (c *Codec) encryptHybrid(content []byte, record *keystore.Record, recipient Recipient) ([]byte, error) {
	publicPEM, err := c.Store.ReadPublicKey(record)
	if err != nil {
		return nil, err
	}
	publicKey, err := keystore.ParsePublicKey(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrEncryptionFailed, err)
	}

	symKey := make([]byte, symmetricKeySize)
	if _, err := io.ReadFull(rand.Reader, symKey); err != nil {
		return nil, fmt.Errorf("%w: generating symmetric key: %v", cerrors.ErrEncryptionFailed, err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: generating nonce: %v", cerrors.ErrEncryptionFailed, err)
	}

	ciphertext, tag, err := sealContent(symKey, nonce, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrEncryptionFailed, err)
	}

	wrappedKey, err := wrapKey(symKey, publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapping symmetric key: %v", cerrors.ErrEncryptionFailed, err)
	}

	c.Logger.Debugf("Built version 2 envelope for %s recipient %q", record.Origin, record.Name)

	env := &Envelope{
		Version:          Version2,
		Metadata:         newMetadata(recipient),
		EncryptedKey:     base64.StdEncoding.EncodeToString(wrappedKey),
		IV:               base64.StdEncoding.EncodeToString(nonce),
		AuthTag:          base64.StdEncoding.EncodeToString(tag),
		EncryptedContent: base64.StdEncoding.EncodeToString(ciphertext),
	}
	return env.Marshal()
}

func (c *Codec) encryptPGP(content []byte, record *keystore.Record, recipient Recipient) ([]byte, error) {
	bundle, err := c.Store.ReadBundle(record)
	if err != nil {
		return nil, err
	}

	message, err := c.PGP.EncryptFor(content, bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrEncryptionFailed, err)
	}

	c.Logger.Debugf("Built version 3 envelope for %s recipient %q", record.Origin, record.Name)

	env := &Envelope{
		Version:          Version3,
		Metadata:         newMetadata(recipient),
		EncryptedContent: string(message),
	}
	return env.Marshal()
}

// describeRecipient maps a registry record to the envelope's recipient
// descriptor. GitHub-origin keys are armored PGP bundles, so they are
// addressed as pgp-typed recipients with the handle kept in Username.
func describeRecipient(record *keystore.Record) Recipient {
	recipient := Recipient{
		Fingerprint: record.Fingerprint,
		Email:       record.Email,
		Username:    record.Username,
	}
	switch record.Origin {
	case keystore.OriginSelf:
		recipient.Type = RecipientSelf
	case keystore.OriginFriend:
		recipient.Type = RecipientFriend
		recipient.Name = record.Name
	case keystore.OriginKeybase:
		recipient.Type = RecipientKeybase
		recipient.Name = record.Name
	case keystore.OriginPGP, keystore.OriginGitHub:
		recipient.Type = RecipientPGP
		recipient.Name = record.Name
	}
	return recipient
}

// wrapKey encrypts the symmetric key with RSA-OAEP. Oversized input for the
// key size is not expected at the fixed sizes used here but is still surfaced.
func wrapKey(symKey []byte, publicKey *rsa.PublicKey) ([]byte, error) {
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, publicKey, symKey, nil)
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

// unwrapKey recovers the symmetric key with RSA-OAEP.
func unwrapKey(wrapped []byte, privateKey *rsa.PrivateKey) ([]byte, error) {
	return rsa.DecryptOAEP(sha256.New(), rand.Reader, privateKey, wrapped, nil)
}

// sealContent encrypts content with AES-256-GCM, returning ciphertext and the
// 128-bit authentication tag separately.
func sealContent(symKey, nonce, content []byte) (ciphertext, tag []byte, err error) {
	block, err := aes.NewCipher(symKey)
	if err != nil {
		return nil, nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, nil, err
	}

	sealed := gcm.Seal(nil, nonce, content, nil)
	return sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:], nil
}

// openContent decrypts content with AES-256-GCM, verifying the tag. A tag
// mismatch fails; partial plaintext is never returned.
func openContent(symKey, nonce, ciphertext, tag []byte) ([]byte, error) {
	block, err := aes.NewCipher(symKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	return gcm.Open(nil, nonce, sealed, nil)
}

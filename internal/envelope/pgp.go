package envelope

import (
	"bytes"
	"crypto"
	"fmt"
	"io"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/ripemd160"
)

// openpgp falls back to RIPEMD160 when a recipient's self-signature advertises
// no hash preferences, and refuses to encrypt if that hash is unregistered.
// Bundles exported without preference subpackets are common, so register it.
func init() {
	crypto.RegisterHash(crypto.RIPEMD160, ripemd160.New)
}

// PGP is the external OpenPGP collaborator. The codec never reimplements the
// OpenPGP packet format; every version-3 envelope goes through this interface.
type PGP interface {
	// ImportPublicKey parses an armored public-key bundle and returns the
	// primary key ID and the first identity's email.
	ImportPublicKey(armored []byte) (keyID string, email string, err error)

	// EncryptFor encrypts content to the armored public key and returns the
	// armored message.
	EncryptFor(content, armoredPub []byte) ([]byte, error)

	// DecryptWith opens an armored message with the armored private key,
	// unlocking it with the passphrase when the key material is protected.
	DecryptWith(message, armoredPriv []byte, passphrase string) ([]byte, error)
}

// OpenPGP implements PGP on golang.org/x/crypto/openpgp.
type OpenPGP struct{}

func (OpenPGP) ImportPublicKey(armored []byte) (string, string, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armored))
	if err != nil {
		return "", "", fmt.Errorf("failed to read armored key ring: %w", err)
	}
	if len(entities) == 0 {
		return "", "", fmt.Errorf("armored bundle contains no keys")
	}

	entity := entities[0]
	keyID := entity.PrimaryKey.KeyIdString()

	email := ""
	for _, identity := range entity.Identities {
		if identity.UserId != nil && identity.UserId.Email != "" {
			email = identity.UserId.Email
			break
		}
	}

	return keyID, email, nil
}

func (OpenPGP) EncryptFor(content, armoredPub []byte) ([]byte, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armoredPub))
	if err != nil {
		return nil, fmt.Errorf("failed to read recipient key ring: %w", err)
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("recipient bundle contains no keys")
	}

	var buf bytes.Buffer
	armorWriter, err := armor.Encode(&buf, "PGP MESSAGE", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start armored message: %w", err)
	}

	plaintext, err := openpgp.Encrypt(armorWriter, entities, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start pgp encryption: %w", err)
	}
	if _, err := plaintext.Write(content); err != nil {
		return nil, fmt.Errorf("failed to write plaintext: %w", err)
	}
	if err := plaintext.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize pgp message: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize armor: %w", err)
	}

	return buf.Bytes(), nil
}

func (OpenPGP) DecryptWith(message, armoredPriv []byte, passphrase string) ([]byte, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armoredPriv))
	if err != nil {
		return nil, fmt.Errorf("failed to read private key ring: %w", err)
	}

	// Unlock protected key material before attempting the message.
	for _, entity := range entities {
		if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
			if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return nil, fmt.Errorf("failed to unlock private key: %w", err)
			}
		}
		for _, subkey := range entity.Subkeys {
			if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
				if err := subkey.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
					return nil, fmt.Errorf("failed to unlock subkey: %w", err)
				}
			}
		}
	}

	block, err := armor.Decode(bytes.NewReader(message))
	if err != nil {
		return nil, fmt.Errorf("failed to decode armored message: %w", err)
	}

	details, err := openpgp.ReadMessage(block.Body, openpgp.EntityList(entities), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read pgp message: %w", err)
	}

	plaintext, err := io.ReadAll(details.UnverifiedBody)
	if err != nil {
		return nil, fmt.Errorf("failed to read decrypted body: %w", err)
	}

	return plaintext, nil
}

// ValidatePublicBundle checks that armored bytes form a well-formed
// public-key block containing at least one key.
func ValidatePublicBundle(armored []byte) error {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armored))
	if err != nil {
		return fmt.Errorf("failed to read armored key ring: %w", err)
	}
	if len(entities) == 0 {
		return fmt.Errorf("armored bundle contains no keys")
	}
	return nil
}

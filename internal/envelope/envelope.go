package envelope

import (
	"encoding/json"
	"fmt"
	"time"

	cerrors "github.com/capsulecli/capsule/internal/errors"
)

// Envelope versions. Version semantics are fixed forever: new capability adds
// a new version, never redefines an old one.
const (
	// Version1 is the legacy shape: no metadata, always addressed to the
	// local self key.
	Version1 = 1

	// Version2 is the hybrid shape: AES-256-GCM content, RSA-OAEP wrapped
	// key, recipient descriptor in metadata.
	Version2 = 2

	// Version3 wraps an OpenPGP message produced by the PGP collaborator.
	Version3 = 3
)

// RecipientType tags who an envelope is addressed to.
type RecipientType string

const (
	RecipientSelf    RecipientType = "self"
	RecipientFriend  RecipientType = "friend"
	RecipientPGP     RecipientType = "pgp"
	RecipientKeybase RecipientType = "keybase"
)

// Recipient describes the addressed key. Ownership at decrypt time is decided
// by fingerprint, not name.
type Recipient struct {
	Type        RecipientType `json:"type"`
	Name        string        `json:"name,omitempty"`
	Fingerprint string        `json:"fingerprint"`
	Email       string        `json:"email,omitempty"`
	Username    string        `json:"username,omitempty"`
}

// Metadata is present in version 2 and 3 envelopes.
type Metadata struct {
	Sender    string    `json:"sender"`
	Recipient Recipient `json:"recipient"`
	Timestamp string    `json:"timestamp"`
}

// Envelope is the wire/file structure. Versions 1 and 2 carry the hybrid
// fields base64-encoded; version 3 carries the collaborator's armored message
// in EncryptedContent.
type Envelope struct {
	Version  int       `json:"version"`
	Metadata *Metadata `json:"metadata,omitempty"`

	EncryptedKey     string `json:"encryptedKey,omitempty"`
	IV               string `json:"iv,omitempty"`
	AuthTag          string `json:"authTag,omitempty"`
	EncryptedContent string `json:"encryptedContent"`
}

// Marshal returns the canonical serialized byte form.
func (e *Envelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrInvalidEnvelope, err)
	}
	return data, nil
}

// Parse decodes envelope bytes and validates the shape declared by its
// version. Each version has its own validation; adding a version must not
// change how existing versions parse. Unknown versions fail with
// ErrUnsupportedVersion.
func Parse(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrInvalidEnvelope, err)
	}

	switch env.Version {
	case Version1:
		if env.Metadata != nil {
			return nil, fmt.Errorf("%w: version 1 carries no metadata", cerrors.ErrInvalidEnvelope)
		}
		if err := requireHybridFields(&env); err != nil {
			return nil, err
		}
	case Version2:
		if env.Metadata == nil {
			return nil, fmt.Errorf("%w: version 2 requires metadata", cerrors.ErrInvalidEnvelope)
		}
		if env.Metadata.Recipient.Fingerprint == "" {
			return nil, fmt.Errorf("%w: version 2 requires a recipient fingerprint", cerrors.ErrInvalidEnvelope)
		}
		if err := requireHybridFields(&env); err != nil {
			return nil, err
		}
	case Version3:
		if env.EncryptedContent == "" {
			return nil, fmt.Errorf("%w: version 3 requires encrypted content", cerrors.ErrInvalidEnvelope)
		}
	default:
		return nil, fmt.Errorf("%w: version %d", cerrors.ErrUnsupportedVersion, env.Version)
	}

	return &env, nil
}

func requireHybridFields(env *Envelope) error {
	if env.EncryptedKey == "" || env.IV == "" || env.AuthTag == "" || env.EncryptedContent == "" {
		return fmt.Errorf("%w: version %d requires encryptedKey, iv, authTag and encryptedContent",
			cerrors.ErrInvalidEnvelope, env.Version)
	}
	return nil
}

func newMetadata(recipient Recipient) *Metadata {
	return &Metadata{
		Sender:    "self",
		Recipient: recipient,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

package keystore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"strings"
)

// Fingerprint derives the stable identity of a public key: the SHA-256 digest
// of the canonical key bytes, formatted as colon-separated hex byte pairs
// ("aa:bb:cc:..."). Two keys are the same identity iff fingerprints match
// byte-for-byte; registry names are a convenience layer on top.
//
// PEM input is canonicalized to its DER contents so the fingerprint does not
// depend on line wrapping or surrounding whitespace. Non-PEM input (armored
// PGP bundles) is trimmed of surrounding whitespace before hashing.
func Fingerprint(publicKey []byte) string {
	canonical := bytes.TrimSpace(publicKey)
	if block, _ := pem.Decode(canonical); block != nil {
		canonical = block.Bytes
	}

	digest := sha256.Sum256(canonical)
	encoded := hex.EncodeToString(digest[:])

	pairs := make([]string, 0, len(encoded)/2)
	for i := 0; i < len(encoded); i += 2 {
		pairs = append(pairs, encoded[i:i+2])
	}
	return strings.Join(pairs, ":")
}

package keystore

import (
	"strings"
	"testing"
)

func TestFingerprintStability(t *testing.T) {
	_, pub, err := GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}

	first := Fingerprint(pub)
	second := Fingerprint(pub)
	if first != second {
		t.Errorf("Fingerprint not stable: %q vs %q", first, second)
	}
}

func TestFingerprintWhitespaceIndependence(t *testing.T) {
	_, pub, err := GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}

	padded := append([]byte("\n\n  "), pub...)
	padded = append(padded, []byte("  \n")...)

	if Fingerprint(pub) != Fingerprint(padded) {
		t.Error("Fingerprint changed with surrounding whitespace")
	}
}

func TestFingerprintFormat(t *testing.T) {
	fp := Fingerprint([]byte("some key material"))

	pairs := strings.Split(fp, ":")
	if len(pairs) != 32 {
		t.Fatalf("Expected 32 byte pairs for SHA-256, got %d", len(pairs))
	}
	for _, pair := range pairs {
		if len(pair) != 2 {
			t.Errorf("Expected two hex chars per pair, got %q", pair)
		}
	}
}

func TestFingerprintDistinguishesKeys(t *testing.T) {
	_, pub1, err := GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}
	_, pub2, err := GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}

	if Fingerprint(pub1) == Fingerprint(pub2) {
		t.Error("Two distinct keys produced the same fingerprint")
	}
}

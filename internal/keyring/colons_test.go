package keyring

import (
	"testing"
	"time"
)

const sampleListing = `tru::1:1700000000:0:3:1:5
pub:u:4096:1:89ABCDEF01234567:1600000000:1900000000::u:::scESC::::::23::0:
fpr:::::::::0123456789ABCDEF0123456789ABCDEF01234567:
uid:u::::1600000000::AAAA::Alice Example (work) <alice@example.com>::::::::::0:
uid:u::::1600000001::BBBB::Alice Example <alice@home.example>::::::::::0:
sub:u:4096:1:1122334455667788:1600000000::::::e::::::23:
fpr:::::::::FFFF567890ABCDEF0123456789ABCDEF01234567:
pub:-:2048:1:0011223344556677:2020-01-15:::-:::scESC::::::23::0:
fpr:::::::::AAAA223344556677AAAA223344556677AAAA2233:
uid:-::::1579046400::CCCC::bob::::::::::0:
`

func TestParseColons(t *testing.T) {
	keys := parseColons(sampleListing)

	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %d", len(keys))
	}

	alice := keys[0]
	if alice.KeyID != "89ABCDEF01234567" {
		t.Errorf("Expected key ID 89ABCDEF01234567, got %q", alice.KeyID)
	}
	if alice.Fingerprint != "0123456789ABCDEF0123456789ABCDEF01234567" {
		t.Errorf("Unexpected fingerprint %q", alice.Fingerprint)
	}
	if alice.Trust != "u" {
		t.Errorf("Expected trust u, got %q", alice.Trust)
	}
	if got := alice.Created; !got.Equal(time.Unix(1600000000, 0)) {
		t.Errorf("Unexpected created time %v", got)
	}
	if got := alice.Expires; !got.Equal(time.Unix(1900000000, 0)) {
		t.Errorf("Unexpected expiry time %v", got)
	}
	if len(alice.UIDs) != 2 {
		t.Fatalf("Expected 2 uids, got %d", len(alice.UIDs))
	}
	if alice.UIDs[0].Name != "Alice Example" || alice.UIDs[0].Email != "alice@example.com" {
		t.Errorf("Unexpected first uid %+v", alice.UIDs[0])
	}
	if alice.UIDs[1].Email != "alice@home.example" {
		t.Errorf("Unexpected second uid %+v", alice.UIDs[1])
	}

	bob := keys[1]
	if bob.KeyID != "0011223344556677" {
		t.Errorf("Expected key ID 0011223344556677, got %q", bob.KeyID)
	}
	// The sub record's fingerprint must not overwrite the pub's.
	if bob.Fingerprint != "AAAA223344556677AAAA223344556677AAAA2233" {
		t.Errorf("Unexpected fingerprint %q", bob.Fingerprint)
	}
	if !bob.Created.Equal(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected date-form created time to parse, got %v", bob.Created)
	}
	if !bob.Expires.IsZero() {
		t.Errorf("Expected no expiry, got %v", bob.Expires)
	}
	if len(bob.UIDs) != 1 || bob.UIDs[0].Name != "bob" || bob.UIDs[0].Email != "" {
		t.Errorf("Unexpected uid %+v", bob.UIDs)
	}
}

func TestParseColonsEmptyOutput(t *testing.T) {
	if keys := parseColons(""); len(keys) != 0 {
		t.Errorf("Expected no keys, got %d", len(keys))
	}
}

func TestParseUID(t *testing.T) {
	cases := []struct {
		in    string
		name  string
		email string
	}{
		{"Alice Example <alice@example.com>", "Alice Example", "alice@example.com"},
		{"Alice Example (work laptop) <alice@example.com>", "Alice Example", "alice@example.com"},
		{"alice@example.com", "alice@example.com", ""},
		{"just a name", "just a name", ""},
	}

	for _, tc := range cases {
		uid := parseUID(tc.in)
		if uid.Name != tc.name || uid.Email != tc.email {
			t.Errorf("parseUID(%q) = %+v, expected name %q email %q", tc.in, uid, tc.name, tc.email)
		}
	}
}

package keystore

import "time"

// Origin classifies which subsystem introduced a key. The set is closed;
// switches over Origin enumerate every member so a new origin cannot be
// added without revisiting each dispatch site.
type Origin string

const (
	// OriginSelf is the locally generated identity keypair.
	OriginSelf Origin = "self"

	// OriginFriend is a manually imported public key.
	OriginFriend Origin = "friend"

	// OriginPGP is an armored bundle exported from the local keyring tool.
	OriginPGP Origin = "pgp"

	// OriginKeybase is a key fetched from the Keybase directory.
	OriginKeybase Origin = "keybase"

	// OriginGitHub is a key fetched from the GitHub directory.
	OriginGitHub Origin = "github"
)

// Valid reports whether o is a member of the closed origin set.
func (o Origin) Valid() bool {
	switch o {
	case OriginSelf, OriginFriend, OriginPGP, OriginKeybase, OriginGitHub:
		return true
	}
	return false
}

// Directory reports whether records of this origin are fetched from an
// identity directory and therefore carry a freshness window.
func (o Origin) Directory() bool {
	switch o {
	case OriginKeybase, OriginGitHub:
		return true
	case OriginSelf, OriginFriend, OriginPGP:
		return false
	}
	return false
}

// AnyOriginOrder is the fixed search order used when a caller asks for a key
// by name without naming an origin. Names may collide across origin
// namespaces; this order breaks the tie.
var AnyOriginOrder = []Origin{OriginFriend, OriginPGP, OriginKeybase, OriginGitHub}

// Record is one entry in the key registry. Self and friend records point at
// PEM material; directory and keyring records point at a single armored
// bundle.
type Record struct {
	Origin Origin `json:"origin"`
	Name   string `json:"name,omitempty"`

	PrivateKeyPath string `json:"private_key_path,omitempty"`
	PublicKeyPath  string `json:"public_key_path,omitempty"`
	BundlePath     string `json:"bundle_path,omitempty"`

	Fingerprint string `json:"fingerprint"`

	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`

	AddedAt time.Time `json:"added_at"`

	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	// LastFetchedAt drives the staleness check for directory origins.
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
}

// Metadata carries origin-dependent details alongside externally sourced keys.
type Metadata struct {
	Email    string
	Username string

	// FetchedAt records when the bundle was retrieved from a directory.
	// Ignored for non-directory origins.
	FetchedAt time.Time
}

// Database is the full persisted registry.
type Database struct {
	Keys struct {
		Self    *Record            `json:"self"`
		Friends map[string]*Record `json:"friends"`
		PGP     map[string]*Record `json:"pgp"`
		Keybase map[string]*Record `json:"keybase"`
		GitHub  map[string]*Record `json:"github"`
	} `json:"keys"`

	// Groups maps group names to recipient identifiers. Persisted for format
	// compatibility; no operation here mutates it.
	Groups map[string][]string `json:"groups"`

	DefaultFriend string `json:"default_friend,omitempty"`
	LastUsed      string `json:"last_used,omitempty"`
}

// NewDatabase returns the empty default registry structure.
func NewDatabase() *Database {
	db := &Database{
		Groups: make(map[string][]string),
	}
	db.Keys.Friends = make(map[string]*Record)
	db.Keys.PGP = make(map[string]*Record)
	db.Keys.Keybase = make(map[string]*Record)
	db.Keys.GitHub = make(map[string]*Record)
	return db
}

// originMap returns the map holding records of the given non-self origin,
// or nil for OriginSelf.
func (db *Database) originMap(origin Origin) map[string]*Record {
	switch origin {
	case OriginFriend:
		return db.Keys.Friends
	case OriginPGP:
		return db.Keys.PGP
	case OriginKeybase:
		return db.Keys.Keybase
	case OriginGitHub:
		return db.Keys.GitHub
	case OriginSelf:
		return nil
	}
	return nil
}

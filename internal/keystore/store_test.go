package keystore

import (
	"errors"
	"os"
	"testing"
	"time"

	cerrors "github.com/capsulecli/capsule/internal/errors"
)

// newTestKeyPEM generates a keypair and returns the public PEM half.
func newTestKeyPEM(t *testing.T) []byte {
	t.Helper()
	_, pub, err := GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}
	return pub
}

func TestLoadAbsentRegistry(t *testing.T) {
	store := NewStore(t.TempDir())

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if db.Keys.Self != nil {
		t.Error("Expected nil self record in empty registry")
	}
	if len(db.Keys.Friends) != 0 {
		t.Errorf("Expected no friends, got %d", len(db.Keys.Friends))
	}

	// A read-only call must not create the registry file.
	if _, err := os.Stat(store.RegistryPath()); !os.IsNotExist(err) {
		t.Error("Load created the registry file on disk")
	}
}

func TestAddSelfKeyRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	priv, pub, err := GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}

	record, err := store.AddSelfKey(priv, pub)
	if err != nil {
		t.Fatalf("AddSelfKey failed: %v", err)
	}
	if record.Fingerprint != Fingerprint(pub) {
		t.Error("Self record fingerprint does not match public key")
	}

	loaded, err := store.GetKey(OriginSelf, "")
	if err != nil {
		t.Fatalf("GetKey(self) failed: %v", err)
	}
	if loaded.Fingerprint != record.Fingerprint {
		t.Error("Loaded self record has different fingerprint")
	}

	privData, err := store.ReadPrivateKey(loaded)
	if err != nil {
		t.Fatalf("ReadPrivateKey failed: %v", err)
	}
	if _, err := ParsePrivateKey(privData); err != nil {
		t.Fatalf("Stored private key does not parse: %v", err)
	}
}

func TestAddFirstFriendSetsDefault(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.AddFriendKey("alice", newTestKeyPEM(t)); err != nil {
		t.Fatalf("AddFriendKey failed: %v", err)
	}
	if _, err := store.AddFriendKey("bob", newTestKeyPEM(t)); err != nil {
		t.Fatalf("AddFriendKey failed: %v", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if db.DefaultFriend != "alice" {
		t.Errorf("Expected default friend alice, got %q", db.DefaultFriend)
	}
}

func TestRemoveDefaultFriendReassigns(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.AddFriendKey("alice", newTestKeyPEM(t)); err != nil {
		t.Fatalf("AddFriendKey failed: %v", err)
	}
	if _, err := store.AddFriendKey("bob", newTestKeyPEM(t)); err != nil {
		t.Fatalf("AddFriendKey failed: %v", err)
	}

	record, err := store.GetKey(OriginFriend, "alice")
	if err != nil {
		t.Fatalf("GetKey failed: %v", err)
	}

	if err := store.RemoveKey(OriginFriend, "alice"); err != nil {
		t.Fatalf("RemoveKey failed: %v", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if db.DefaultFriend != "bob" {
		t.Errorf("Expected default reassigned to bob, got %q", db.DefaultFriend)
	}
	if _, err := os.Stat(record.PublicKeyPath); !os.IsNotExist(err) {
		t.Error("Backing key file was not removed")
	}
}

func TestRemoveLastFriendClearsDefault(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.AddFriendKey("alice", newTestKeyPEM(t)); err != nil {
		t.Fatalf("AddFriendKey failed: %v", err)
	}
	if err := store.RemoveKey(OriginFriend, "alice"); err != nil {
		t.Fatalf("RemoveKey failed: %v", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if db.DefaultFriend != "" {
		t.Errorf("Expected empty default friend, got %q", db.DefaultFriend)
	}
}

func TestGetKeyAnyOrder(t *testing.T) {
	store := NewStore(t.TempDir())

	// Same name in two namespaces: the friend entry must win.
	if _, err := store.AddExternalKey(OriginGitHub, "carol", []byte("github bundle"), Metadata{}); err != nil {
		t.Fatalf("AddExternalKey failed: %v", err)
	}
	if _, err := store.AddFriendKey("carol", newTestKeyPEM(t)); err != nil {
		t.Fatalf("AddFriendKey failed: %v", err)
	}

	record, err := store.GetKeyAny("carol")
	if err != nil {
		t.Fatalf("GetKeyAny failed: %v", err)
	}
	if record.Origin != OriginFriend {
		t.Errorf("Expected friend origin to win, got %q", record.Origin)
	}
}

func TestGetKeyAnyNotFound(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.GetKeyAny("nobody")
	if !errors.Is(err, cerrors.ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestAddExternalKeySetsLastFetched(t *testing.T) {
	store := NewStore(t.TempDir())

	fetchedAt := time.Now().UTC().Add(-2 * time.Hour)
	record, err := store.AddExternalKey(OriginKeybase, "keybase:dana", []byte("bundle"), Metadata{
		Username:  "dana",
		FetchedAt: fetchedAt,
	})
	if err != nil {
		t.Fatalf("AddExternalKey failed: %v", err)
	}

	if record.LastFetchedAt == nil || !record.LastFetchedAt.Equal(fetchedAt) {
		t.Errorf("Expected LastFetchedAt %v, got %v", fetchedAt, record.LastFetchedAt)
	}
	if record.Username != "dana" {
		t.Errorf("Expected username dana, got %q", record.Username)
	}
}

func TestAddExternalKeyPGPHasNoFetchTime(t *testing.T) {
	store := NewStore(t.TempDir())

	record, err := store.AddExternalKey(OriginPGP, "work", []byte("bundle"), Metadata{})
	if err != nil {
		t.Fatalf("AddExternalKey failed: %v", err)
	}
	if record.LastFetchedAt != nil {
		t.Error("PGP origin must not carry a fetch timestamp")
	}
}

func TestUpdateLastUsedFriendOnly(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.AddFriendKey("alice", newTestKeyPEM(t)); err != nil {
		t.Fatalf("AddFriendKey failed: %v", err)
	}
	if _, err := store.AddExternalKey(OriginGitHub, "github:erin", []byte("bundle"), Metadata{}); err != nil {
		t.Fatalf("AddExternalKey failed: %v", err)
	}

	if err := store.UpdateLastUsed("alice"); err != nil {
		t.Fatalf("UpdateLastUsed failed: %v", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if db.LastUsed != "alice" {
		t.Errorf("Expected last used alice, got %q", db.LastUsed)
	}
	if db.Keys.Friends["alice"].LastUsedAt == nil {
		t.Error("Friend record's LastUsedAt was not touched")
	}

	// Non-friend names are a deliberate no-op, not an error.
	if err := store.UpdateLastUsed("github:erin"); err != nil {
		t.Fatalf("UpdateLastUsed for non-friend failed: %v", err)
	}
	db, err = store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if db.LastUsed != "alice" {
		t.Errorf("Expected last used unchanged, got %q", db.LastUsed)
	}
	if db.Keys.GitHub["github:erin"].LastUsedAt != nil {
		t.Error("Non-friend record must not be touched by UpdateLastUsed")
	}
}

func TestAddFriendKeyRejectsGarbage(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.AddFriendKey("mallory", []byte("not a pem key"))
	if !errors.Is(err, cerrors.ErrInvalidKeyBundle) {
		t.Errorf("Expected ErrInvalidKeyBundle, got %v", err)
	}
}

func TestRemoveSelfKey(t *testing.T) {
	store := NewStore(t.TempDir())

	priv, pub, err := GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}
	if _, err := store.AddSelfKey(priv, pub); err != nil {
		t.Fatalf("AddSelfKey failed: %v", err)
	}

	if err := store.RemoveKey(OriginSelf, ""); err != nil {
		t.Fatalf("RemoveKey(self) failed: %v", err)
	}

	_, err = store.GetKey(OriginSelf, "")
	if !errors.Is(err, cerrors.ErrNoSelfKey) {
		t.Errorf("Expected ErrNoSelfKey after removal, got %v", err)
	}
}

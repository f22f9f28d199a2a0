package workflows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/capsulecli/capsule/internal/configs"
	"github.com/capsulecli/capsule/internal/envelope"
	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

// withTempSettings points the user settings at temp directories for the test.
func withTempSettings(t *testing.T) {
	t.Helper()

	original := configs.UserCapsuleSettings
	configs.UserCapsuleSettings = &configs.UserSettings{
		UserDataPath:    t.TempDir(),
		UserConfigsPath: t.TempDir(),
		Username:        "tester",
	}
	t.Cleanup(func() {
		configs.UserCapsuleSettings = original
	})
}

func TestInitKeys(t *testing.T) {
	withTempSettings(t)
	ctx := context.Background()

	result, err := InitKeys(ctx, InitKeysOptions{})
	if err != nil {
		t.Fatalf("InitKeys failed: %v", err)
	}
	if result.Record.Fingerprint == "" {
		t.Error("Expected a fingerprint on the self key")
	}
	if result.Replaced {
		t.Error("First init must not report a replacement")
	}

	// A second init without force refuses.
	_, err = InitKeys(ctx, InitKeysOptions{})
	if !errors.Is(err, cerrors.ErrSelfKeyExists) {
		t.Fatalf("Expected ErrSelfKeyExists, got %v", err)
	}

	forced, err := InitKeys(ctx, InitKeysOptions{Force: true})
	if err != nil {
		t.Fatalf("InitKeys with force failed: %v", err)
	}
	if !forced.Replaced {
		t.Error("Forced init must report a replacement")
	}
	if forced.Record.Fingerprint == result.Record.Fingerprint {
		t.Error("Expected a new keypair on forced init")
	}
}

func TestAddFriend(t *testing.T) {
	withTempSettings(t)
	ctx := context.Background()

	_, alicePub, err := keystore.GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}

	result, err := AddFriend(ctx, AddFriendOptions{Name: "alice", PublicKeyData: alicePub})
	if err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	if !result.BecameDefault {
		t.Error("First friend must become the default")
	}

	_, bobPub, err := keystore.GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}
	second, err := AddFriend(ctx, AddFriendOptions{Name: "bob", PublicKeyData: bobPub})
	if err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	if second.BecameDefault {
		t.Error("Second friend must not displace the default")
	}
}

func TestAddFriendRejectsGarbage(t *testing.T) {
	withTempSettings(t)

	_, err := AddFriend(context.Background(), AddFriendOptions{
		Name:          "mallory",
		PublicKeyData: []byte("not a key"),
	})
	if !errors.Is(err, cerrors.ErrInvalidKeyBundle) {
		t.Fatalf("Expected ErrInvalidKeyBundle, got %v", err)
	}
}

func TestEncryptDecryptSelfRoundTrip(t *testing.T) {
	withTempSettings(t)
	ctx := context.Background()

	if _, err := InitKeys(ctx, InitKeysOptions{}); err != nil {
		t.Fatalf("InitKeys failed: %v", err)
	}

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "note.txt")
	envelopePath := filepath.Join(dir, "note.capsule")
	outputPath := filepath.Join(dir, "note.out")

	if err := os.WriteFile(inputPath, []byte("meet at noon"), 0600); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	encrypted, err := Encrypt(ctx, EncryptOptions{
		InputPath:  inputPath,
		OutputPath: envelopePath,
		Self:       true,
	})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if encrypted.Version != envelope.Version2 {
		t.Errorf("Expected version 2, got %d", encrypted.Version)
	}

	decrypted, err := Decrypt(ctx, DecryptOptions{
		InputPath:  envelopePath,
		OutputPath: outputPath,
	})
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if decrypted.Note != "" {
		t.Errorf("Expected no note for a self envelope, got %q", decrypted.Note)
	}

	plaintext, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(plaintext) != "meet at noon" {
		t.Errorf("Round trip mismatch: %q", plaintext)
	}
}

func TestEncryptDefaultsToDefaultFriend(t *testing.T) {
	withTempSettings(t)
	ctx := context.Background()

	_, alicePub, err := keystore.GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}
	if _, err := AddFriend(ctx, AddFriendOptions{Name: "alice", PublicKeyData: alicePub}); err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}

	result, err := Encrypt(ctx, EncryptOptions{InputData: []byte("hello")})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if result.Recipient.Name != "alice" {
		t.Errorf("Expected the default friend as recipient, got %q", result.Recipient.Name)
	}
	if len(result.Data) == 0 {
		t.Error("Expected envelope bytes without an output path")
	}

	env, err := envelope.Parse(result.Data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if env.Metadata.Recipient.Type != envelope.RecipientFriend {
		t.Errorf("Expected a friend-addressed envelope, got %q", env.Metadata.Recipient.Type)
	}

	// Encrypting for a friend touches the last-used bookkeeping.
	list, err := ListKeys(ctx)
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if list.LastUsed != "alice" {
		t.Errorf("Expected alice as last used, got %q", list.LastUsed)
	}
	if list.Friends[0].LastUsedAt == nil {
		t.Error("Expected a last-used timestamp on the friend record")
	}
}

func TestEncryptWithNoKeys(t *testing.T) {
	withTempSettings(t)

	_, err := Encrypt(context.Background(), EncryptOptions{InputData: []byte("hello")})
	if !errors.Is(err, cerrors.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestRemoveKeyReassignsDefault(t *testing.T) {
	withTempSettings(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		_, pub, err := keystore.GenerateRSAKeyPair()
		if err != nil {
			t.Fatalf("GenerateRSAKeyPair failed: %v", err)
		}
		if _, err := AddFriend(ctx, AddFriendOptions{Name: name, PublicKeyData: pub}); err != nil {
			t.Fatalf("AddFriend failed: %v", err)
		}
	}

	result, err := RemoveKey(ctx, RemoveKeyOptions{Origin: keystore.OriginFriend, Name: "alice"})
	if err != nil {
		t.Fatalf("RemoveKey failed: %v", err)
	}
	if result.NewDefaultFriend != "bob" {
		t.Errorf("Expected bob as new default, got %q", result.NewDefaultFriend)
	}
}

func TestSetDefaultFriend(t *testing.T) {
	withTempSettings(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		_, pub, err := keystore.GenerateRSAKeyPair()
		if err != nil {
			t.Fatalf("GenerateRSAKeyPair failed: %v", err)
		}
		if _, err := AddFriend(ctx, AddFriendOptions{Name: name, PublicKeyData: pub}); err != nil {
			t.Fatalf("AddFriend failed: %v", err)
		}
	}

	result, err := SetDefaultFriend(ctx, "bob")
	if err != nil {
		t.Fatalf("SetDefaultFriend failed: %v", err)
	}
	if result.Previous != "alice" {
		t.Errorf("Expected alice as previous default, got %q", result.Previous)
	}

	_, err = SetDefaultFriend(ctx, "nobody")
	if !errors.Is(err, cerrors.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestFetchKeyUsesConfiguredEndpoints(t *testing.T) {
	withTempSettings(t)
	ctx := context.Background()

	entity, err := openpgp.NewEntity("Alice", "", "alice@example.com", nil)
	if err != nil {
		t.Fatalf("NewEntity failed: %v", err)
	}
	var bundle bytes.Buffer
	writer, err := armor.Encode(&bundle, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode failed: %v", err)
	}
	if err := entity.Serialize(writer); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/alice.gpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bundle.Bytes())
	})
	mux.HandleFunc("/users/alice", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"login": "alice"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	if err := configs.SaveConfig(&configs.Config{
		Directories: configs.DirectoriesConfig{
			GitHubAPIURL:  server.URL,
			GitHubRawURL:  server.URL,
			KeybaseAPIURL: server.URL,
		},
	}); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	result, err := FetchKey(ctx, FetchKeyOptions{Service: "github", Handle: "alice"})
	if err != nil {
		t.Fatalf("FetchKey failed: %v", err)
	}
	if result.Record.Origin != keystore.OriginGitHub {
		t.Errorf("Expected github origin, got %q", result.Record.Origin)
	}

	// The fetched key is immediately usable as an encrypt recipient.
	encrypted, err := Encrypt(ctx, EncryptOptions{
		InputData: []byte("hi alice"),
		Recipient: "github:alice",
	})
	if err != nil {
		t.Fatalf("Encrypt for fetched key failed: %v", err)
	}
	if encrypted.Version != envelope.Version3 {
		t.Errorf("Expected version 3 for a bundle-backed recipient, got %d", encrypted.Version)
	}
}

func TestShowLog(t *testing.T) {
	withTempSettings(t)
	ctx := context.Background()

	if _, err := InitKeys(ctx, InitKeysOptions{}); err != nil {
		t.Fatalf("InitKeys failed: %v", err)
	}
	if _, err := Encrypt(ctx, EncryptOptions{InputData: []byte("x"), Self: true}); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := Encrypt(ctx, EncryptOptions{InputData: []byte("y"), Self: true}); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	all, err := ShowLog(ctx, ShowLogOptions{})
	if err != nil {
		t.Fatalf("ShowLog failed: %v", err)
	}
	if len(all.Entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(all.Entries))
	}

	filtered, err := ShowLog(ctx, ShowLogOptions{Operation: "encrypt", Limit: 1})
	if err != nil {
		t.Fatalf("ShowLog failed: %v", err)
	}
	if len(filtered.Entries) != 1 || filtered.Entries[0].Operation != "encrypt" {
		t.Errorf("Unexpected filtered entries: %+v", filtered.Entries)
	}
}

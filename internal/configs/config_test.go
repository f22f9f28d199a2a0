package configs

import (
	"path/filepath"
	"testing"
	"time"
)

func withTempConfigDir(t *testing.T) {
	t.Helper()
	tempDir := t.TempDir()
	oldConfigsPath := UserCapsuleSettings.UserConfigsPath
	UserCapsuleSettings.UserConfigsPath = tempDir
	t.Cleanup(func() {
		UserCapsuleSettings.UserConfigsPath = oldConfigsPath
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	withTempConfigDir(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Keyring.Command != DefaultKeyringCommand {
		t.Errorf("Expected command %q, got %q", DefaultKeyringCommand, config.Keyring.Command)
	}
	if config.KeyringTimeout() != DefaultKeyringTimeout {
		t.Errorf("Expected timeout %v, got %v", DefaultKeyringTimeout, config.KeyringTimeout())
	}
	if config.Directories.KeybaseAPIURL != DefaultKeybaseAPIURL {
		t.Errorf("Expected keybase URL %q, got %q", DefaultKeybaseAPIURL, config.Directories.KeybaseAPIURL)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	withTempConfigDir(t)

	config := &Config{
		Keyring: KeyringConfig{
			Command:        "gpg2",
			TimeoutSeconds: 10,
		},
		Directories: DirectoriesConfig{
			GitHubAPIURL: "http://localhost:9999",
		},
	}

	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Keyring.Command != "gpg2" {
		t.Errorf("Expected command gpg2, got %q", loaded.Keyring.Command)
	}
	if loaded.KeyringTimeout() != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", loaded.KeyringTimeout())
	}
	if loaded.Directories.GitHubAPIURL != "http://localhost:9999" {
		t.Errorf("Expected overridden GitHub API URL, got %q", loaded.Directories.GitHubAPIURL)
	}
	// Unset fields still pick up defaults.
	if loaded.Directories.GitHubRawURL != DefaultGitHubRawURL {
		t.Errorf("Expected default raw URL, got %q", loaded.Directories.GitHubRawURL)
	}
}

func TestConfigPathLocation(t *testing.T) {
	withTempConfigDir(t)

	if err := SaveConfig(&Config{}); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	expected := filepath.Join(UserCapsuleSettings.UserConfigsPath, "config.toml")
	if err := LoadTOML(expected, &Config{}); err != nil {
		t.Fatalf("Expected config at %s: %v", expected, err)
	}
}

package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Keyring     KeyringConfig     `toml:"keyring"`
	Directories DirectoriesConfig `toml:"directories"`
}

// KeyringConfig controls how the local keyring tool is invoked.
type KeyringConfig struct {
	// Command is the keyring executable, "gpg" by default.
	Command string `toml:"command"`

	// TimeoutSeconds bounds every keyring invocation. The tool can hang
	// waiting on an interactive agent, so the default is deliberately short.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// DirectoriesConfig holds base URLs for the identity directory services.
// Overridable so tests can point the resolvers at local servers.
type DirectoriesConfig struct {
	GitHubAPIURL  string `toml:"github_api_url"`
	GitHubRawURL  string `toml:"github_raw_url"`
	KeybaseAPIURL string `toml:"keybase_api_url"`
}

// Defaults applied when the config file is absent or fields are unset.
const (
	DefaultKeyringCommand = "gpg"
	DefaultKeyringTimeout = 6 * time.Second

	DefaultGitHubAPIURL  = "https://api.github.com"
	DefaultGitHubRawURL  = "https://github.com"
	DefaultKeybaseAPIURL = "https://keybase.io"
)

// LoadConfig loads the configuration from the config file, filling defaults
// for any unset field. A missing file yields the default configuration.
func LoadConfig() (*Config, error) {
	configPath := filepath.Join(UserCapsuleSettings.UserConfigsPath, "config.toml")

	config := &Config{}

	if _, err := os.Stat(configPath); err == nil {
		if err := LoadTOML(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	config.applyDefaults()
	return config, nil
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(config *Config) error {
	configPath := filepath.Join(UserCapsuleSettings.UserConfigsPath, "config.toml")

	if err := SaveTOML(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// KeyringTimeout returns the configured keyring timeout as a duration.
func (c *Config) KeyringTimeout() time.Duration {
	return time.Duration(c.Keyring.TimeoutSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.Keyring.Command == "" {
		c.Keyring.Command = DefaultKeyringCommand
	}
	if c.Keyring.TimeoutSeconds <= 0 {
		c.Keyring.TimeoutSeconds = int(DefaultKeyringTimeout / time.Second)
	}
	if c.Directories.GitHubAPIURL == "" {
		c.Directories.GitHubAPIURL = DefaultGitHubAPIURL
	}
	if c.Directories.GitHubRawURL == "" {
		c.Directories.GitHubRawURL = DefaultGitHubRawURL
	}
	if c.Directories.KeybaseAPIURL == "" {
		c.Directories.KeybaseAPIURL = DefaultKeybaseAPIURL
	}
}

package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/capsulecli/capsule/internal/utils"
)

type UserSettings struct {
	// UserDataPath holds durable state: the key registry, key material, and audit log.
	UserDataPath string

	// UserConfigsPath holds the TOML configuration file.
	UserConfigsPath string

	Username string
}

var UserCapsuleSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")

	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		log.Fatalf("error getting username: %s", err)
	}

	UserCapsuleSettings = &UserSettings{
		UserDataPath:    filepath.Join(dataDir, "capsule"),
		UserConfigsPath: filepath.Join(configDir, "capsule"),
		Username:        username,
	}
}

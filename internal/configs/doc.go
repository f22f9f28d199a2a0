// Package configs manages user settings and the TOML configuration file.
//
// Path settings (data directory, config directory) are resolved once at
// startup from XDG conventions into UserCapsuleSettings. The TOML config file
// holds tunables: the keyring tool command and timeout, and the directory
// service base URLs.
package configs

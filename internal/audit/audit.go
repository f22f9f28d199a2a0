package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/capsulecli/capsule/internal/configs"

	"github.com/google/uuid"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	ID        string `json:"id"`   // UUID of this entry.
	User      string `json:"user"` // Local username performing the action.
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	Origin      string `json:"origin,omitempty"`      // Key namespace acted on.
	KeyName     string `json:"key_name,omitempty"`    // Registry name of the key.
	Fingerprint string `json:"fingerprint,omitempty"` // Fingerprint of the key involved.
	Service     string `json:"service,omitempty"`     // Directory service for fetches.
	Handle      string `json:"handle,omitempty"`      // Directory handle for fetches.
	Version     int    `json:"version,omitempty"`     // Envelope version for encrypt/decrypt.
	Recipient   string `json:"recipient,omitempty"`   // Recipient name for encrypt.
	Note        string `json:"note,omitempty"`        // Diagnostic carried by the result.
	OutputPath  string `json:"output_path,omitempty"` // Destination file for encrypt/decrypt.
}

// Log appends an entry to the audit log.
// If logging fails, it logs nothing and returns; operations should not fail
// just because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.User == "" {
		entry.User = configs.UserCapsuleSettings.Username
	}

	logPath := LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file.
func LogPath() string {
	return filepath.Join(configs.UserCapsuleSettings.UserDataPath, "audit.jsonl")
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	data, err := os.ReadFile(LogPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

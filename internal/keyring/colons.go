package keyring

import (
	"strconv"
	"strings"
	"time"
)

// UID is one user identity attached to a key.
type UID struct {
	Name  string
	Email string
}

// Key is one public key from the keyring listing.
type Key struct {
	KeyID       string
	Fingerprint string
	Trust       string
	Created     time.Time
	Expires     time.Time
	UIDs        []UID
}

// parseColons reads GPG's --with-colons listing. Each pub record starts a
// key; fpr and uid records that follow attach to it. Records we do not care
// about (sub, sig, tru and friends) are skipped.
func parseColons(output string) []Key {
	var keys []Key
	var current *Key

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "pub":
			keys = append(keys, Key{})
			current = &keys[len(keys)-1]
			if len(fields) > 6 {
				current.Trust = fields[1]
				current.KeyID = fields[4]
				current.Created = parseColonTime(fields[5])
				current.Expires = parseColonTime(fields[6])
			}
		case "fpr":
			if current != nil && current.Fingerprint == "" && len(fields) > 9 {
				current.Fingerprint = fields[9]
			}
		case "uid":
			if current != nil && len(fields) > 9 {
				current.UIDs = append(current.UIDs, parseUID(fields[9]))
			}
		}
	}

	return keys
}

// parseColonTime handles both formats GPG emits: epoch seconds and the older
// yyyy-mm-dd form. An empty field means no expiry.
func parseColonTime(field string) time.Time {
	if field == "" {
		return time.Time{}
	}
	if seconds, err := strconv.ParseInt(field, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC()
	}
	if t, err := time.Parse("2006-01-02", field); err == nil {
		return t
	}
	return time.Time{}
}

// parseUID splits "Name (comment) <email>" into its parts.
func parseUID(field string) UID {
	uid := UID{Name: field}

	if open := strings.LastIndex(field, "<"); open >= 0 {
		if end := strings.LastIndex(field, ">"); end > open {
			uid.Email = field[open+1 : end]
			uid.Name = strings.TrimSpace(field[:open])
		}
	}
	if open := strings.Index(uid.Name, " ("); open >= 0 {
		uid.Name = strings.TrimSpace(uid.Name[:open])
	}

	return uid
}

package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/utils"
)

// Store is the durable key registry. It owns the registry file and all key
// material paths it creates; callers never write key bytes directly.
//
// Mutations follow a load-mutate-save cycle over the whole registry file.
// This has a read-modify-write race if two writers interleave; the registry
// is single-writer, single-user, local-process state and accepts that
// limitation rather than adding locking.
type Store struct {
	// Root is the data directory holding keys.json and the keys/ tree.
	Root string
}

// NewStore returns a Store rooted at the given data directory.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// RegistryPath returns the path of the persisted registry file.
func (s *Store) RegistryPath() string {
	return filepath.Join(s.Root, "keys.json")
}

func (s *Store) materialDir(origin Origin) string {
	return filepath.Join(s.Root, "keys", string(origin))
}

// Load reads the persisted registry. If no registry file exists it returns
// the empty default structure without creating a file: read-only calls must
// not leave anything behind on disk.
func (s *Store) Load() (*Database, error) {
	data, err := os.ReadFile(s.RegistryPath())
	if os.IsNotExist(err) {
		return NewDatabase(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", cerrors.ErrRegistryIO, s.RegistryPath(), err)
	}

	db := NewDatabase()
	if err := json.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", cerrors.ErrRegistryIO, s.RegistryPath(), err)
	}

	// Maps may come back nil from a hand-edited file.
	if db.Keys.Friends == nil {
		db.Keys.Friends = make(map[string]*Record)
	}
	if db.Keys.PGP == nil {
		db.Keys.PGP = make(map[string]*Record)
	}
	if db.Keys.Keybase == nil {
		db.Keys.Keybase = make(map[string]*Record)
	}
	if db.Keys.GitHub == nil {
		db.Keys.GitHub = make(map[string]*Record)
	}
	if db.Groups == nil {
		db.Groups = make(map[string][]string)
	}

	return db, nil
}

// Save atomically replaces the registry file with the serialized database.
// I/O failures propagate: a stale registry silently accepted is worse than a
// visible save error.
func (s *Store) Save(db *Database) error {
	if err := os.MkdirAll(s.Root, 0700); err != nil {
		return fmt.Errorf("%w: creating %s: %v", cerrors.ErrRegistryIO, s.Root, err)
	}

	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: serializing registry: %v", cerrors.ErrRegistryIO, err)
	}

	if err := utils.WriteFileAtomic(s.RegistryPath(), data, 0600); err != nil {
		return fmt.Errorf("%w: writing %s: %v", cerrors.ErrRegistryIO, s.RegistryPath(), err)
	}

	return nil
}

// AddSelfKey writes the keypair material and registers it as the single self
// record, replacing any previous one.
func (s *Store) AddSelfKey(privatePEM, publicPEM []byte) (*Record, error) {
	dir := s.materialDir(OriginSelf)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", cerrors.ErrRegistryIO, dir, err)
	}

	privatePath := filepath.Join(dir, "self.pem")
	publicPath := filepath.Join(dir, "self.pub")

	if err := os.WriteFile(privatePath, privatePEM, 0600); err != nil {
		return nil, fmt.Errorf("%w: writing private key: %v", cerrors.ErrRegistryIO, err)
	}
	if err := os.WriteFile(publicPath, publicPEM, 0600); err != nil {
		return nil, fmt.Errorf("%w: writing public key: %v", cerrors.ErrRegistryIO, err)
	}

	db, err := s.Load()
	if err != nil {
		return nil, err
	}

	record := &Record{
		Origin:         OriginSelf,
		PrivateKeyPath: privatePath,
		PublicKeyPath:  publicPath,
		Fingerprint:    Fingerprint(publicPEM),
		AddedAt:        time.Now().UTC(),
	}
	db.Keys.Self = record

	if err := s.Save(db); err != nil {
		return nil, err
	}

	return record, nil
}

// AddFriendKey writes a friend's public key and upserts its record. The first
// friend added becomes the default friend if none is set.
func (s *Store) AddFriendKey(name string, publicPEM []byte) (*Record, error) {
	if _, err := ParsePublicKey(publicPEM); err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrInvalidKeyBundle, err)
	}

	dir := s.materialDir(OriginFriend)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", cerrors.ErrRegistryIO, dir, err)
	}

	publicPath := filepath.Join(dir, safeFileName(name)+".pub")
	if err := os.WriteFile(publicPath, publicPEM, 0600); err != nil {
		return nil, fmt.Errorf("%w: writing public key: %v", cerrors.ErrRegistryIO, err)
	}

	db, err := s.Load()
	if err != nil {
		return nil, err
	}

	record := &Record{
		Origin:        OriginFriend,
		Name:          name,
		PublicKeyPath: publicPath,
		Fingerprint:   Fingerprint(publicPEM),
		AddedAt:       time.Now().UTC(),
	}
	db.Keys.Friends[name] = record

	if db.DefaultFriend == "" {
		db.DefaultFriend = name
	}

	if err := s.Save(db); err != nil {
		return nil, err
	}

	return record, nil
}

// AddExternalKey writes an armored bundle fetched from a directory or
// exported from the local keyring and upserts its record.
func (s *Store) AddExternalKey(origin Origin, name string, bundle []byte, meta Metadata) (*Record, error) {
	switch origin {
	case OriginPGP, OriginKeybase, OriginGitHub:
	case OriginSelf, OriginFriend:
		return nil, fmt.Errorf("%w: origin %q does not take a bundle", cerrors.ErrInvalidKeyBundle, origin)
	default:
		return nil, fmt.Errorf("%w: unknown origin %q", cerrors.ErrInvalidKeyBundle, origin)
	}

	dir := s.materialDir(origin)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", cerrors.ErrRegistryIO, dir, err)
	}

	bundlePath := filepath.Join(dir, safeFileName(name)+".asc")
	if err := os.WriteFile(bundlePath, bundle, 0600); err != nil {
		return nil, fmt.Errorf("%w: writing bundle: %v", cerrors.ErrRegistryIO, err)
	}

	db, err := s.Load()
	if err != nil {
		return nil, err
	}

	record := &Record{
		Origin:      origin,
		Name:        name,
		BundlePath:  bundlePath,
		Fingerprint: Fingerprint(bundle),
		Email:       meta.Email,
		Username:    meta.Username,
		AddedAt:     time.Now().UTC(),
	}
	if origin.Directory() {
		fetchedAt := meta.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}
		record.LastFetchedAt = &fetchedAt
	}
	db.originMap(origin)[name] = record

	if err := s.Save(db); err != nil {
		return nil, err
	}

	return record, nil
}

// GetKey returns the record registered under the given origin and name.
// For OriginSelf the name is ignored.
func (s *Store) GetKey(origin Origin, name string) (*Record, error) {
	db, err := s.Load()
	if err != nil {
		return nil, err
	}
	return db.GetKey(origin, name)
}

// GetKey looks up a record in an already loaded database.
func (db *Database) GetKey(origin Origin, name string) (*Record, error) {
	if origin == OriginSelf {
		if db.Keys.Self == nil {
			return nil, cerrors.ErrNoSelfKey
		}
		return db.Keys.Self, nil
	}

	m := db.originMap(origin)
	if m == nil {
		return nil, fmt.Errorf("%w: unknown origin %q", cerrors.ErrKeyNotFound, origin)
	}
	record, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: no %s key named %q", cerrors.ErrKeyNotFound, origin, name)
	}
	return record, nil
}

// GetKeyAny searches every non-self namespace for the name, in the fixed
// order friend, pgp, keybase, github, and returns the first match. Callers
// needing a specific origin must use GetKey.
func (s *Store) GetKeyAny(name string) (*Record, error) {
	db, err := s.Load()
	if err != nil {
		return nil, err
	}
	return db.GetKeyAny(name)
}

// GetKeyAny looks up a record by name across namespaces in an already loaded
// database.
func (db *Database) GetKeyAny(name string) (*Record, error) {
	for _, origin := range AnyOriginOrder {
		if record, ok := db.originMap(origin)[name]; ok {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: no key named %q in any namespace", cerrors.ErrKeyNotFound, name)
}

// RemoveKey deletes the registry entry and its backing file(s). Removing the
// default friend reassigns the default to any remaining friend, or clears it.
func (s *Store) RemoveKey(origin Origin, name string) error {
	db, err := s.Load()
	if err != nil {
		return err
	}

	var paths []string

	if origin == OriginSelf {
		if db.Keys.Self == nil {
			return cerrors.ErrNoSelfKey
		}
		paths = append(paths, db.Keys.Self.PrivateKeyPath, db.Keys.Self.PublicKeyPath)
		db.Keys.Self = nil
	} else {
		m := db.originMap(origin)
		if m == nil {
			return fmt.Errorf("%w: unknown origin %q", cerrors.ErrKeyNotFound, origin)
		}
		record, ok := m[name]
		if !ok {
			return fmt.Errorf("%w: no %s key named %q", cerrors.ErrKeyNotFound, origin, name)
		}
		paths = append(paths, record.PrivateKeyPath, record.PublicKeyPath, record.BundlePath)
		delete(m, name)

		if origin == OriginFriend && db.DefaultFriend == name {
			db.DefaultFriend = ""
			for remaining := range db.Keys.Friends {
				db.DefaultFriend = remaining
				break
			}
		}
		if db.LastUsed == name {
			db.LastUsed = ""
		}
	}

	if err := s.Save(db); err != nil {
		return err
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: removing %s: %v", cerrors.ErrRegistryIO, path, err)
		}
	}

	return nil
}

// UpdateLastUsed touches the friend record's last-used timestamp and the
// database's last-used pointer. Deliberately a no-op for every other origin.
func (s *Store) UpdateLastUsed(name string) error {
	db, err := s.Load()
	if err != nil {
		return err
	}

	record, ok := db.Keys.Friends[name]
	if !ok {
		return nil
	}

	now := time.Now().UTC()
	record.LastUsedAt = &now
	db.LastUsed = name

	return s.Save(db)
}

// ReadPublicKey returns the PEM public key bytes backing a self or friend record.
func (s *Store) ReadPublicKey(record *Record) ([]byte, error) {
	if record.PublicKeyPath == "" {
		return nil, fmt.Errorf("%w: record %q has no public key material", cerrors.ErrKeyNotFound, record.Name)
	}
	data, err := os.ReadFile(record.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", cerrors.ErrRegistryIO, record.PublicKeyPath, err)
	}
	return data, nil
}

// ReadPrivateKey returns the PEM private key bytes backing a self record.
func (s *Store) ReadPrivateKey(record *Record) ([]byte, error) {
	if record.PrivateKeyPath == "" {
		return nil, fmt.Errorf("%w: record %q has no private key material", cerrors.ErrKeyNotFound, record.Name)
	}
	data, err := os.ReadFile(record.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", cerrors.ErrRegistryIO, record.PrivateKeyPath, err)
	}
	return data, nil
}

// ReadBundle returns the armored bundle backing a pgp, keybase, or github record.
func (s *Store) ReadBundle(record *Record) ([]byte, error) {
	if record.BundlePath == "" {
		return nil, fmt.Errorf("%w: record %q has no bundle material", cerrors.ErrKeyNotFound, record.Name)
	}
	data, err := os.ReadFile(record.BundlePath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", cerrors.ErrRegistryIO, record.BundlePath, err)
	}
	return data, nil
}

// safeFileName makes a registry name usable as a file name. Directory names
// like "github:alice" carry a colon.
func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\':
			return '_'
		}
		return r
	}, name)
}

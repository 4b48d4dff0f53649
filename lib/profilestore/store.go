// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package profilestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"

	"github.com/veil-project/veil/lib/profile"
)

// FileName is the store document's name inside the config directory.
const FileName = "security_profiles.json"

// Options configures a Store.
type Options struct {
	// Logger receives store activity. Nil disables logging.
	Logger *slog.Logger
}

// Store is a named catalog of security profiles backed by one file.
type Store struct {
	path     string
	logger   *slog.Logger
	profiles map[string]*profile.SecurityProfile
}

// Open loads the store at path. A missing file yields an empty
// catalog; the file is created on the first Save. A file that exists
// but does not parse fails with a *PersistenceError wrapping
// ErrCorrupt, and one holding an invalid profile fails with a
// *PersistenceError wrapping profile.ErrInvalidProfile.
func Open(path string, options Options) (*Store, error) {
	store := &Store{
		path:     path,
		logger:   options.Logger,
		profiles: make(map[string]*profile.SecurityProfile),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		store.log("profile store not found, starting empty", "path", path)
		return store, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	profiles, err := decode(data)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}
	store.profiles = profiles
	store.log("loaded profile store", "path", path, "profiles", len(profiles))
	return store, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load returns a copy of the stored profile called name.
func (s *Store) Load(name string) (*profile.SecurityProfile, error) {
	p, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return p.Clone(), nil
}

// Resolve returns the stored profile called name, falling back to the
// preset of that name. Stored profiles shadow presets.
func (s *Store) Resolve(name string) (*profile.SecurityProfile, error) {
	if p, ok := s.profiles[name]; ok {
		return p.Clone(), nil
	}
	if preset, ok := profile.LookupPreset(name); ok {
		return preset.Profile, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// Save validates p and stores a copy of it under p.Name, replacing any
// profile of that name, then persists the catalog.
func (s *Store) Save(p *profile.SecurityProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	next := s.snapshot()
	next[p.Name] = p.Clone()
	if err := s.persist(next); err != nil {
		return err
	}
	s.profiles = next
	s.log("saved profile", "name", p.Name)
	return nil
}

// Create saves a fresh default profile under name. It fails when name
// is already stored.
func (s *Store) Create(name string) (*profile.SecurityProfile, error) {
	if _, exists := s.profiles[name]; exists {
		return nil, fmt.Errorf("profile %q already exists", name)
	}
	p := profile.New(name)
	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Delete removes the profile called name and persists the catalog.
func (s *Store) Delete(name string) error {
	if _, ok := s.profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}

	next := s.snapshot()
	delete(next, name)
	if err := s.persist(next); err != nil {
		return err
	}
	s.profiles = next
	s.log("deleted profile", "name", name)
	return nil
}

// List returns copies of every stored profile sorted by name.
func (s *Store) List() []*profile.SecurityProfile {
	names := s.Names()
	result := make([]*profile.SecurityProfile, len(names))
	for i, name := range names {
		result[i] = s.profiles[name].Clone()
	}
	return result
}

// Names returns the stored profile names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Presets returns the built-in preset catalog.
func (s *Store) Presets() []profile.Preset {
	return profile.Presets()
}

// snapshot copies the catalog map. Profiles are never mutated in
// place, so sharing the pointers is safe.
func (s *Store) snapshot() map[string]*profile.SecurityProfile {
	next := make(map[string]*profile.SecurityProfile, len(s.profiles))
	for name, p := range s.profiles {
		next[name] = p
	}
	return next
}

func (s *Store) persist(profiles map[string]*profile.SecurityProfile) error {
	data, err := encode(profiles)
	if err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	if err := writeAtomic(s.path, data); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// log is a helper that only logs if a logger is configured.
func (s *Store) log(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func decode(data []byte) (map[string]*profile.SecurityProfile, error) {
	var document map[string]*profile.SecurityProfile
	if err := json.Unmarshal(jsonc.ToJSON(data), &document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	profiles := make(map[string]*profile.SecurityProfile, len(document))
	for name, p := range document {
		if p == nil {
			return nil, fmt.Errorf("%w: profile %q is null", ErrCorrupt, name)
		}
		// The key is authoritative; a stale name field inside the
		// value is overwritten.
		p.Name = name
		if err := p.Validate(); err != nil {
			return nil, err
		}
		profiles[name] = p
	}
	return profiles, nil
}

func encode(profiles map[string]*profile.SecurityProfile) ([]byte, error) {
	// encoding/json sorts map keys, so the document is deterministic.
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding profiles: %w", err)
	}
	return append(data, '\n'), nil
}

// writeAtomic writes data to a temporary file beside path, fsyncs it,
// and renames it into place. Readers never see a partial write.
func writeAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating temporary store file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary store file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary store file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary store file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming store file into place: %w", err)
	}

	// Sync the parent directory so the rename survives a power loss.
	parentDirectory, err := os.Open(directory)
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

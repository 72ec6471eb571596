// Package state persists the fingerprint map recorded after the last
// successful pipeline run. The map is the only artifact that outlives a
// run; it is committed with write-then-rename so a crash mid-save never
// corrupts the next run's view.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Map associates a source dataset name with the opaque fingerprint
// observed for it. A dataset is reprocessed iff its current fingerprint
// differs from, or is absent from, the committed map.
type Map map[string]string

// Store reads and atomically writes the fingerprint map on disk.
type Store struct {
	path string
}

// NewStore returns a store backed by the given file path. The file need
// not exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the committed map. A missing file yields an empty map, not
// an error; a first run sees every dataset as new.
func (s *Store) Load() (Map, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Map{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", s.path, err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", s.path, err)
	}
	if m == nil {
		m = Map{}
	}
	return m, nil
}

// Save commits a new map. The payload is written to a temporary file in
// the same directory, synced, and renamed over the target so the
// committed view is always either the old map or the new one.
func (s *Store) Save(m Map) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("commit state %s: %w", s.path, err)
	}
	return nil
}

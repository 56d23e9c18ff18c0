// Package depfile implements on-disk persistence for depfiles and run records.
package depfile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DepfileStore = (*Store)(nil)

// Store persists depfiles as individual make-rule files under the scratch
// directory, plus a flat JSON state file with the driver's run records.
type Store struct {
	dir       string
	statePath string
	mu        sync.RWMutex
	records   map[string]domain.TargetRecord
}

// NewStore creates a store rooted at the given scratch directory.
func NewStore(dir string) (*Store, error) {
	s := &Store{
		dir:       filepath.Clean(dir),
		statePath: filepath.Join(filepath.Clean(dir), "weft_state.json"),
		records:   make(map[string]domain.TargetRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Write persists the depfile under its fixed filename, e.g. "dart2js.d".
func (s *Store) Write(name string, d domain.Depfile) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create depfile directory")
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, d.Encode(), 0o644); err != nil { //nolint:gosec // build metadata, not a secret
		return zerr.With(zerr.Wrap(err, "failed to write depfile"), "path", path)
	}
	return nil
}

// Read loads a previously written depfile. Returns nil, nil if not found.
func (s *Store) Read(name string) (*domain.Depfile, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path) //nolint:gosec // Path is under the scratch dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read depfile"), "path", path)
	}

	d := domain.ParseDepfile(data)
	return &d, nil
}

// GetRecord retrieves the run record for a target name.
func (s *Store) GetRecord(targetName string) (*domain.TargetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[targetName]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// PutRecord stores the run record for a target.
func (s *Store) PutRecord(rec domain.TargetRecord) error {
	s.mu.Lock()
	s.records[rec.TargetName] = rec
	s.mu.Unlock()

	return s.save()
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.statePath) //nolint:gosec // Path is under the scratch dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read state file")
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return zerr.Wrap(err, "failed to unmarshal state file")
	}
	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal state file")
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for state file")
	}

	if err := os.WriteFile(s.statePath, data, 0o644); err != nil { //nolint:gosec // build metadata, not a secret
		return zerr.Wrap(err, "failed to write state file")
	}
	return nil
}

package web_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

// memStore is an in-memory DepfileStore for target tests.
type memStore struct {
	mu       sync.Mutex
	depfiles map[string]domain.Depfile
	records  map[string]domain.TargetRecord
}

var _ ports.DepfileStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		depfiles: make(map[string]domain.Depfile),
		records:  make(map[string]domain.TargetRecord),
	}
}

func (s *memStore) Write(name string, d domain.Depfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depfiles[name] = d
	return nil
}

func (s *memStore) Read(name string) (*domain.Depfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.depfiles[name]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *memStore) PutRecord(rec domain.TargetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.TargetName] = rec
	return nil
}

func (s *memStore) GetRecord(targetName string) (*domain.TargetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[targetName]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

package ports

import "go.trai.ch/weft/internal/core/domain"

// DepfileStore persists per-target depfiles and the driver's run records.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type DepfileStore interface {
	// Write persists the depfile under the given fixed filename.
	Write(name string, d domain.Depfile) error

	// Read loads a previously written depfile. Returns nil, nil if not found.
	Read(name string) (*domain.Depfile, error)

	// PutRecord stores the run record for a target.
	PutRecord(rec domain.TargetRecord) error

	// GetRecord retrieves the run record for a target name.
	// Returns nil, nil if not found.
	GetRecord(targetName string) (*domain.TargetRecord, error)
}

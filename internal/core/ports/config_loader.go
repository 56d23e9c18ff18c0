package ports

import "go.trai.ch/weft/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given project directory and
	// returns the base build environment. Command-line flags may override
	// individual defines afterwards.
	Load(cwd string) (*domain.Environment, error)
}

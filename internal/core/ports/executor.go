// Package ports defines the core interfaces for the application.
package ports

import "context"

// Executor runs an external process and captures its output. The compiler
// is invoked through this boundary and treated as opaque: the pipeline only
// sees the exit status and the combined stdout/stderr stream.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run executes argv[0] with argv[1:] in dir, blocking until it exits.
	// The combined stdout+stderr is always returned, alongside an error
	// carrying the exit code when the process exits non-zero.
	Run(ctx context.Context, dir string, argv []string) ([]byte, error)
}

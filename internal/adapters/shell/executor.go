// Package shell provides the subprocess executor adapter.
package shell

import (
	"context"
	"os/exec"
	"strings"

	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
//
// There is deliberately no timeout here: the compiler is a blocking call and
// a hung process blocks the pipeline. Context cancellation (e.g. SIGINT on
// the driver) kills the child via exec.CommandContext.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Run executes argv in dir and returns the combined stdout+stderr. A
// non-zero exit produces an error annotated with the exit code; the captured
// output is still returned so callers can surface it as the diagnostic.
func (e *Executor) Run(ctx context.Context, dir string, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, zerr.New("empty command")
	}

	if e.logger != nil {
		e.logger.Info("running " + strings.Join(argv, " "))
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv is assembled by the pipeline
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return out, zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}

	return out, nil
}

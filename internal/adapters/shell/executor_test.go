package shell_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/shell"
	"go.trai.ch/zerr"
)

func TestExecutor_Run_CapturesCombinedOutput(t *testing.T) {
	executor := shell.NewExecutor(nil)
	tmpDir := t.TempDir()

	out, err := executor.Run(context.Background(), tmpDir, []string{"sh", "-c", "echo to-stdout; echo to-stderr 1>&2"})
	require.NoError(t, err)

	assert.Contains(t, string(out), "to-stdout")
	assert.Contains(t, string(out), "to-stderr")
}

func TestExecutor_Run_NonZeroExit(t *testing.T) {
	executor := shell.NewExecutor(nil)
	tmpDir := t.TempDir()

	out, err := executor.Run(context.Background(), tmpDir, []string{"sh", "-c", "echo diagnostic; exit 3"})
	require.Error(t, err)

	// Output is still returned for the caller's diagnostics.
	assert.Contains(t, string(out), "diagnostic")

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, 3, zErr.Metadata()["exit_code"])
}

func TestExecutor_Run_EmptyCommand(t *testing.T) {
	executor := shell.NewExecutor(nil)

	_, err := executor.Run(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
}

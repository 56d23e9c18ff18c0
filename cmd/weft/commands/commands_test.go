package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/cmd/weft/commands"
	"go.trai.ch/weft/internal/adapters/fs"
	"go.trai.ch/weft/internal/adapters/telemetry"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.trai.ch/weft/internal/engine/runner"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	cli      *commands.CLI
	loader   *mocks.MockConfigLoader
	executor *mocks.MockExecutor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	loader := mocks.NewMockConfigLoader(ctrl)
	executor := mocks.NewMockExecutor(ctrl)
	hasher := fs.NewHasher()
	resolver := fs.NewResolver()
	run := runner.NewRunner(log, hasher, resolver, telemetry.NewNoOpTracer())

	a := app.New(loader, run, log, executor, hasher, resolver, fs.NewWalker())
	return &fixture{
		cli:      commands.New(a),
		loader:   loader,
		executor: executor,
	}
}

// projectEnv seeds a minimal project tree and returns its environment.
func projectEnv(t *testing.T) *domain.Environment {
	t.Helper()
	projectDir := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(projectDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	write("lib/main.dart", "void main() {}")
	write("web/index.html", `<script src="main.dart.js"></script>`)

	return &domain.Environment{
		ProjectDir:   projectDir,
		BuildDir:     filepath.Join(projectDir, ".weft", "build"),
		OutputDir:    filepath.Join(projectDir, "build", "web"),
		Defines:      map[string]string{},
		CompilerPath: "dart2js",
	}
}

func TestBuild_MissingModeFails(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(gomock.Any()).Return(projectEnv(t), nil)
	// No executor expectation: the mode check fails before any target runs.

	f.cli.SetArgs([]string{"build"})

	err := f.cli.Execute(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingBuildMode)
}

func TestBuild_ReleaseRunsPipeline(t *testing.T) {
	f := newFixture(t)
	env := projectEnv(t)
	f.loader.EXPECT().Load(gomock.Any()).Return(env, nil)

	f.executor.EXPECT().Run(gomock.Any(), env.ProjectDir, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, argv []string) ([]byte, error) {
			for _, arg := range argv {
				if arg == filepath.Join(env.BuildDir, "main.dart.js") {
					require.NoError(t, os.WriteFile(arg, []byte("js"), 0o600))
				}
			}
			return nil, nil
		}).Times(2)

	f.cli.SetArgs([]string{"build", "--release"})

	require.NoError(t, f.cli.Execute(context.Background()))
	assert.FileExists(t, filepath.Join(env.OutputDir, "flutter_service_worker.js"))
}

func TestBuild_ConflictingModes(t *testing.T) {
	f := newFixture(t)

	f.cli.SetArgs([]string{"build", "--release", "--debug"})

	err := f.cli.Execute(context.Background())
	require.Error(t, err)
}

func TestClean(t *testing.T) {
	f := newFixture(t)
	env := projectEnv(t)
	require.NoError(t, os.MkdirAll(env.BuildDir, 0o750))
	f.loader.EXPECT().Load(gomock.Any()).Return(env, nil)

	f.cli.SetArgs([]string{"clean"})

	require.NoError(t, f.cli.Execute(context.Background()))
	assert.NoDirExists(t, env.BuildDir)
}

func TestVersion(t *testing.T) {
	f := newFixture(t)

	f.cli.SetArgs([]string{"version"})

	require.NoError(t, f.cli.Execute(context.Background()))
}

func TestRoot_Help(t *testing.T) {
	f := newFixture(t)

	f.cli.SetArgs([]string{"--help"})

	require.NoError(t, f.cli.Execute(context.Background()))
}

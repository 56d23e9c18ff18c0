package web_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.trai.ch/weft/internal/engine/web"
	"go.uber.org/mock/gomock"
)

func compileEnv(t *testing.T, mode string) *domain.Environment {
	t.Helper()
	projectDir := t.TempDir()
	env := &domain.Environment{
		ProjectDir:    projectDir,
		BuildDir:      filepath.Join(projectDir, ".weft", "build"),
		OutputDir:     filepath.Join(projectDir, "build", "web"),
		Defines:       map[string]string{},
		CompilerPath:  "dart2js",
		LibrariesSpec: "/sdk/libraries.json",
		PackagesPath:  filepath.Join(projectDir, ".dart_tool", "package_config.json"),
	}
	if mode != "" {
		env.Defines[domain.DefineBuildMode] = mode
	}
	require.NoError(t, os.MkdirAll(env.BuildDir, 0o750))
	return env
}

func TestDart2JSTarget_MissingBuildModeAbortsBeforeSubprocess(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	// No Run expectation: any subprocess call fails the test.

	target := web.NewDart2JSTarget(executor, newMemStore(), noopLogger(ctrl))

	err := target.Build(context.Background(), compileEnv(t, ""))
	require.ErrorIs(t, err, domain.ErrMissingBuildMode)
}

func TestDart2JSTarget_ReleaseStages(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := compileEnv(t, "release")
	env.DartDefines = []string{"FLAVOR=prod"}

	var stages [][]string
	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Run(gomock.Any(), env.ProjectDir, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, argv []string) ([]byte, error) {
			stages = append(stages, argv)
			if len(stages) == 2 {
				// The codegen stage emits the bundle and its .deps listing.
				writeFile(t, filepath.Join(env.BuildDir, "main.dart.js"), "js")
				writeFile(t, filepath.Join(env.BuildDir, "main.dart.js.deps"),
					"file:///project/lib/main.dart\nfile:///project/lib/app.dart\n")
			}
			return []byte("ok"), nil
		}).Times(2)

	store := newMemStore()
	target := web.NewDart2JSTarget(executor, store, noopLogger(ctrl))

	require.NoError(t, target.Build(context.Background(), env))
	require.Len(t, stages, 2)

	kernel := stages[0]
	assert.Equal(t, "dart2js", kernel[0])
	assert.Contains(t, kernel, "--cfe-only")
	assert.Contains(t, kernel, "--packages="+env.PackagesPath)
	assert.Contains(t, kernel, "--libraries-spec=/sdk/libraries.json")
	assert.Contains(t, kernel, "-Ddart.vm.product=true")
	assert.Contains(t, kernel, "-DFLAVOR=prod")
	assert.NotContains(t, kernel, "-O4")

	codegen := stages[1]
	assert.Contains(t, codegen, "-O4")
	assert.Contains(t, codegen, filepath.Join(env.BuildDir, "app.dill"))
	assert.Contains(t, codegen, filepath.Join(env.BuildDir, "main.dart.js"))
	assert.NotContains(t, codegen, "--no-minify")
	assert.NotContains(t, codegen, "--csp")

	d, err := store.Read("dart2js.d")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, []string{"/project/lib/main.dart", "/project/lib/app.dart"}, d.Inputs)
}

func TestDart2JSTarget_ProfileFlags(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := compileEnv(t, "profile")
	env.Defines[domain.DefineCspMode] = "true"
	env.Defines[domain.DefineSourceMaps] = "false"
	env.Defines[domain.DefineNativeNullAssertions] = "true"
	env.Defines[domain.DefineOptimization] = "O2"

	var stages [][]string
	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Run(gomock.Any(), env.ProjectDir, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, argv []string) ([]byte, error) {
			stages = append(stages, argv)
			return nil, nil
		}).Times(2)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()) // no .deps file is a warning, not an error

	target := web.NewDart2JSTarget(executor, newMemStore(), log)
	require.NoError(t, target.Build(context.Background(), env))

	codegen := stages[1]
	assert.Contains(t, codegen, "-Ddart.vm.profile=true")
	assert.Contains(t, codegen, "--no-minify")
	assert.Contains(t, codegen, "--csp")
	assert.Contains(t, codegen, "-O2")
	assert.Contains(t, codegen, "--no-source-maps")
	assert.Contains(t, codegen, "--native-null-assertions")
	assert.NotContains(t, codegen, "-Ddart.vm.product=true")
}

func TestDart2JSTarget_CompilerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := compileEnv(t, "release")

	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Run(gomock.Any(), env.ProjectDir, gomock.Any()).
		Return([]byte("lib/main.dart:1:1: Error: oops"), assert.AnError)

	target := web.NewDart2JSTarget(executor, newMemStore(), noopLogger(ctrl))

	err := target.Build(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiler failed")

	meta := zerrMetadata(err)
	require.NotNil(t, meta)
	assert.Equal(t, "kernel", meta["stage"])
	assert.Contains(t, meta["output"], "Error: oops")
}

func TestDart2JSTarget_MissingDepsIsNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := compileEnv(t, "debug")

	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Run(gomock.Any(), env.ProjectDir, gomock.Any()).Return(nil, nil).Times(2)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any())

	store := newMemStore()
	target := web.NewDart2JSTarget(executor, store, log)

	require.NoError(t, target.Build(context.Background(), env))

	d, err := store.Read("dart2js.d")
	require.NoError(t, err)
	assert.Nil(t, d, "no depfile must be written without a .deps listing")
}

func noopLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

func zerrMetadata(err error) map[string]any {
	type metadataCarrier interface{ Metadata() map[string]any }
	carrier, ok := err.(metadataCarrier)
	if !ok {
		return nil
	}
	return carrier.Metadata()
}

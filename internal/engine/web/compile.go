package web

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ domain.Target = (*Dart2JSTarget)(nil)

// Dart2JSTarget runs the two compiler stages: a kernel stage producing the
// intermediate app.dill, then the codegen stage emitting the JavaScript
// bundle into the build directory. The compiler is an opaque subprocess;
// its .deps listing is translated into the standard depfile shape.
type Dart2JSTarget struct {
	executor ports.Executor
	store    ports.DepfileStore
	logger   ports.Logger
	deps     []domain.Target
}

// NewDart2JSTarget creates the compile target.
func NewDart2JSTarget(executor ports.Executor, store ports.DepfileStore, log ports.Logger, deps ...domain.Target) *Dart2JSTarget {
	return &Dart2JSTarget{executor: executor, store: store, logger: log, deps: deps}
}

func (t *Dart2JSTarget) Name() string                  { return "dart2js" }
func (t *Dart2JSTarget) Dependencies() []domain.Target { return t.deps }
func (t *Dart2JSTarget) DepfileName() string           { return "dart2js.d" }

func (t *Dart2JSTarget) Inputs(env *domain.Environment) []string {
	// The declared patterns only seed the first run; afterwards the
	// compiler-reported .deps listing is authoritative.
	return []string{env.TargetFile(), "pubspec.yaml", filepath.Join(env.BuildDir, "main.dart")}
}

func (t *Dart2JSTarget) Outputs(env *domain.Environment) []string {
	return []string{filepath.Join(env.BuildDir, mainBundleName)}
}

// Build invokes the kernel and codegen stages. The build mode is required
// configuration and is checked before any subprocess is started.
func (t *Dart2JSTarget) Build(ctx context.Context, env *domain.Environment) error {
	mode, err := env.BuildMode()
	if err != nil {
		return err
	}

	dillPath := filepath.Join(env.BuildDir, "app.dill")
	bundlePath := filepath.Join(env.BuildDir, mainBundleName)
	entryPath := filepath.Join(env.BuildDir, "main.dart")

	kernelArgs := append(t.commonArgs(env, mode),
		"--cfe-only",
		"--packages="+env.PackagesPath,
		"-o", dillPath,
		entryPath,
	)
	if err := t.runStage(ctx, env, "kernel", kernelArgs); err != nil {
		return err
	}

	codegenArgs := t.commonArgs(env, mode)
	codegenArgs = append(codegenArgs, env.Optimization())
	if mode == domain.BuildModeProfile {
		codegenArgs = append(codegenArgs, "--no-minify")
	}
	if env.CspMode() {
		codegenArgs = append(codegenArgs, "--csp")
	}
	codegenArgs = append(codegenArgs, "-o", bundlePath, dillPath)
	if err := t.runStage(ctx, env, "codegen", codegenArgs); err != nil {
		return err
	}

	return t.writeDepfile(env, bundlePath)
}

// commonArgs builds the flag set shared by both stages.
func (t *Dart2JSTarget) commonArgs(env *domain.Environment, mode domain.BuildMode) []string {
	args := []string{env.CompilerPath}
	if env.LibrariesSpec != "" {
		args = append(args, "--libraries-spec="+env.LibrariesSpec)
	}
	args = append(args, env.FrontEndFlags...)
	if env.NativeNullAssertions() {
		args = append(args, "--native-null-assertions")
	}

	switch mode {
	case domain.BuildModeRelease:
		args = append(args, "-Ddart.vm.product=true")
	case domain.BuildModeProfile:
		args = append(args, "-Ddart.vm.profile=true")
	case domain.BuildModeDebug:
	}

	for _, define := range env.DartDefines {
		args = append(args, "-D"+define)
	}
	if !env.SourceMaps() {
		args = append(args, "--no-source-maps")
	}
	return args
}

func (t *Dart2JSTarget) runStage(ctx context.Context, env *domain.Environment, stage string, argv []string) error {
	out, err := t.executor.Run(ctx, env.ProjectDir, argv)

	// The compiler's combined output belongs to this target's span so a
	// progress display can attach it to the right vertex.
	if span := ports.SpanFromContext(ctx); span != nil && len(out) > 0 {
		_, _ = span.Write(out)
	}

	if err != nil {
		wrapped := zerr.Wrap(err, domain.ErrCompilerFailed.Error())
		wrapped = zerr.With(wrapped, "stage", stage)
		return zerr.With(wrapped, "output", string(out))
	}
	return nil
}

// writeDepfile translates the compiler's .deps listing into the standard
// depfile. A compiler that did not emit one degrades incremental fidelity
// but never fails the build.
func (t *Dart2JSTarget) writeDepfile(env *domain.Environment, bundlePath string) error {
	depsPath := bundlePath + ".deps"
	data, err := os.ReadFile(depsPath) //nolint:gosec // Path is under the scratch dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Warn("compiler emitted no .deps file, skipping depfile generation")
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read compiler deps"), "path", depsPath)
	}

	return t.store.Write(t.DepfileName(), domain.Depfile{
		Inputs:  domain.ParseCompilerDeps(data),
		Outputs: []string{bundlePath},
	})
}

// Package app wires the configuration, target graph and runner into the
// operations exposed by the CLI.
package app

import (
	"context"
	"os"

	"go.trai.ch/weft/internal/adapters/depfile"            //nolint:depguard // Wired in app layer
	progrockadapter "go.trai.ch/weft/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/runner"
	"go.trai.ch/weft/internal/engine/web"
	"go.trai.ch/zerr"
)

// App exposes the build pipeline's top level operations.
type App struct {
	loader   ports.ConfigLoader
	runner   *runner.Runner
	logger   ports.Logger
	executor ports.Executor
	hasher   ports.Hasher
	resolver ports.InputResolver
	walker   ports.FileWalker
}

// New creates the App.
func New(
	loader ports.ConfigLoader,
	run *runner.Runner,
	log ports.Logger,
	executor ports.Executor,
	hasher ports.Hasher,
	resolver ports.InputResolver,
	walker ports.FileWalker,
) *App {
	return &App{
		loader:   loader,
		runner:   run,
		logger:   log,
		executor: executor,
		hasher:   hasher,
		resolver: resolver,
		walker:   walker,
	}
}

// BuildOptions carries the command line overrides for one build.
type BuildOptions struct {
	// Mode is the build mode (debug, profile or release). Required.
	Mode string

	// Defines override individual well-known defines from the config file.
	Defines map[string]string

	// DartDefines are extra -D defines appended to the configured ones.
	DartDefines []string

	// NoCache forces every target to run.
	NoCache bool

	// Progress enables progrock progress recording for the run.
	Progress bool
}

// Build loads the configuration, applies overrides and drives the pipeline.
func (a *App) Build(ctx context.Context, cwd string, opts BuildOptions) error {
	env, err := a.environment(cwd, opts)
	if err != nil {
		return err
	}

	// The build mode is required configuration; fail before any target work.
	if _, err := env.BuildMode(); err != nil {
		return err
	}

	store, err := depfile.NewStore(env.BuildDir)
	if err != nil {
		return err
	}

	graph, err := a.targetGraph(store)
	if err != nil {
		return err
	}

	run := a.runner
	if opts.Progress {
		run = runner.NewRunner(a.logger, a.hasher, a.resolver, progrockadapter.New())
	}

	return run.Run(ctx, env, graph, runner.Options{Store: store, NoCache: opts.NoCache})
}

// Clean removes the scratch and output directories.
func (a *App) Clean(cwd string) error {
	env, err := a.loader.Load(cwd)
	if err != nil {
		return err
	}

	for _, dir := range []string{env.BuildDir, env.OutputDir} {
		if err := os.RemoveAll(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove directory"), "path", dir)
		}
		a.logger.Info("removed " + dir)
	}
	return nil
}

func (a *App) environment(cwd string, opts BuildOptions) (*domain.Environment, error) {
	env, err := a.loader.Load(cwd)
	if err != nil {
		return nil, err
	}

	if opts.Mode != "" {
		env.Defines[domain.DefineBuildMode] = opts.Mode
	}
	for key, value := range opts.Defines {
		env.Defines[key] = value
	}
	env.DartDefines = append(env.DartDefines, opts.DartDefines...)

	return env, nil
}

// targetGraph assembles the fixed pipeline:
// entrypoint -> dart2js -> bundle -> fingerprint -> service worker.
func (a *App) targetGraph(store ports.DepfileStore) (*domain.Graph, error) {
	entrypoint := web.NewEntrypointTarget(store)
	compile := web.NewDart2JSTarget(a.executor, store, a.logger, entrypoint)
	bundle := web.NewBundleTarget(store, a.logger, compile)
	fingerprint := web.NewFingerprintTarget(a.hasher, a.walker, bundle)
	worker := web.NewServiceWorkerTarget(a.hasher, a.walker, store, fingerprint)

	return domain.NewGraph(worker)
}

// Components aggregates everything the command layer needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

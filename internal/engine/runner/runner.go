// Package runner implements the sequential build driver.
package runner

import (
	"context"
	"time"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner drives a validated target graph to completion. Targets execute
// one at a time in topological order; the first failure aborts the run.
type Runner struct {
	logger   ports.Logger
	hasher   ports.Hasher
	resolver ports.InputResolver
	tracer   ports.Tracer
}

// Options configures a single run.
type Options struct {
	// Store receives depfiles and run records. The store is scoped to the
	// build's scratch directory, so it is created per invocation rather
	// than injected into the Runner.
	Store ports.DepfileStore

	// NoCache forces every target to run even when its recorded input
	// digest is unchanged.
	NoCache bool
}

// NewRunner creates a new Runner.
func NewRunner(
	log ports.Logger,
	hasher ports.Hasher,
	resolver ports.InputResolver,
	tracer ports.Tracer,
) *Runner {
	return &Runner{
		logger:   log,
		hasher:   hasher,
		resolver: resolver,
		tracer:   tracer,
	}
}

// Run validates the graph and executes its targets in dependency order.
func (r *Runner) Run(ctx context.Context, env *domain.Environment, graph *domain.Graph, opts Options) error {
	if err := graph.Validate(); err != nil {
		return err
	}

	r.tracer.EmitPlan(ctx, graph.ExecutionOrder())

	for target := range graph.Walk() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.runTarget(ctx, env, target, opts); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrTargetFailed.Error()), "target", target.Name())
		}
	}

	return nil
}

func (r *Runner) runTarget(ctx context.Context, env *domain.Environment, target domain.Target, opts Options) error {
	spanCtx, span := r.tracer.Start(ctx, target.Name())
	defer span.End()

	fresh, err := r.isFresh(env, target, opts)
	if err != nil {
		// Staleness bookkeeping must never fail a build, fall through to
		// a full rebuild instead.
		r.logger.Warn("staleness check failed for " + target.Name() + ", rebuilding")
		fresh = false
	}
	if fresh {
		span.SetAttribute("weft.cached", true)
		r.logger.Info(target.Name() + " is up to date")
		return nil
	}

	r.logger.Info("building " + target.Name())
	if err := target.Build(ports.ContextWithSpan(spanCtx, span), env); err != nil {
		span.RecordError(err)
		return err
	}

	return r.record(env, target, opts)
}

// isFresh reports whether the target's recorded input digest still matches
// its current inputs and all of its outputs still resolve.
func (r *Runner) isFresh(env *domain.Environment, target domain.Target, opts Options) (bool, error) {
	if opts.NoCache || opts.Store == nil {
		return false, nil
	}

	rec, err := opts.Store.GetRecord(target.Name())
	if err != nil || rec == nil {
		return false, err
	}

	digest, err := r.inputDigest(env, target, opts)
	if err != nil {
		return false, err
	}
	if digest != rec.InputDigest {
		return false, nil
	}

	// Every declared output pattern must still match something, otherwise
	// an output was cleaned away and the target has to run again.
	for _, pattern := range target.Outputs(env) {
		matches, err := r.resolver.ResolveInputs([]string{pattern}, env.ProjectDir)
		if err != nil {
			return false, err
		}
		if len(matches) == 0 {
			return false, nil
		}
	}

	return true, nil
}

// inputDigest hashes the target's current input set. When a previous run
// left a depfile behind, its recorded inputs are authoritative; otherwise
// the declared input patterns are resolved against the project directory.
func (r *Runner) inputDigest(env *domain.Environment, target domain.Target, opts Options) (string, error) {
	var inputs []string

	if name := target.DepfileName(); name != "" {
		d, err := opts.Store.Read(name)
		if err != nil {
			return "", err
		}
		if d != nil {
			inputs = d.Inputs
		}
	}

	if inputs == nil {
		resolved, err := r.resolver.ResolveInputs(target.Inputs(env), env.ProjectDir)
		if err != nil {
			return "", err
		}
		inputs = resolved
	}

	return r.hasher.InputDigest(inputs)
}

func (r *Runner) record(env *domain.Environment, target domain.Target, opts Options) error {
	if opts.Store == nil {
		return nil
	}

	digest, err := r.inputDigest(env, target, opts)
	if err != nil {
		// A missing input after a successful build is odd but not fatal;
		// the next run simply sees the target as stale.
		r.logger.Warn("failed to record inputs for " + target.Name())
		return nil
	}

	rec := domain.TargetRecord{
		TargetName:  target.Name(),
		InputDigest: digest,
		Timestamp:   time.Now(),
	}
	if err := opts.Store.PutRecord(rec); err != nil {
		return zerr.Wrap(err, "failed to persist run record")
	}
	return nil
}

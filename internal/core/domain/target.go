package domain

import "context"

// Target is one named step of the fixed build pipeline. Targets are
// immutable once constructed; the build driver executes them in
// topological order of their dependency edges.
type Target interface {
	// Name identifies the target. Names must be unique within a graph.
	Name() string

	// Dependencies are the targets that must complete before this one runs.
	Dependencies() []Target

	// Inputs are glob patterns (relative to the project directory) over the
	// source files this target consumes. They drive the driver-level
	// staleness check; the depfile written by Build is the authoritative
	// record for external schedulers.
	Inputs(env *Environment) []string

	// Outputs are glob patterns over the files this target produces.
	Outputs(env *Environment) []string

	// DepfileName is the fixed filename this target records its observed
	// I/O under, or "" when the target writes no depfile.
	DepfileName() string

	// Build performs the target's action against the environment.
	Build(ctx context.Context, env *Environment) error
}

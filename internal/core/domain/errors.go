package domain

import "go.trai.ch/zerr"

var (
	// ErrTargetAlreadyExists is returned when two targets in the graph share a name.
	ErrTargetAlreadyExists = zerr.New("target already exists")

	// ErrMissingDependency is returned when a target depends on a target that is not in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when the target graph is not a DAG.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTargetFailed is returned when a target's build action fails.
	ErrTargetFailed = zerr.New("target failed")

	// ErrMissingBuildMode is returned when the BuildMode define is absent.
	// The build mode is required configuration and must fail before any
	// subprocess work is started.
	ErrMissingBuildMode = zerr.New("missing required define: BuildMode")

	// ErrInvalidBuildMode is returned when the BuildMode define is not one
	// of debug, profile or release.
	ErrInvalidBuildMode = zerr.New("invalid build mode")

	// ErrCompilerFailed is returned when a compiler stage exits non-zero.
	ErrCompilerFailed = zerr.New("compiler failed")

	// ErrMissingEntrypoint is returned when the configured target file does not exist.
	ErrMissingEntrypoint = zerr.New("entrypoint file not found")
)

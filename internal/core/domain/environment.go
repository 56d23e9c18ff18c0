// Package domain contains the core domain models for the web build pipeline.
package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Environment is the shared execution context handed to every build target.
// It is assembled once per invocation by the build driver and treated as
// read-only configuration during target execution; the DAG's strict ordering
// guarantees no two targets touch it concurrently.
type Environment struct {
	// ProjectDir is the root of the application project.
	ProjectDir string
	// BuildDir is the scratch directory for intermediate artifacts.
	BuildDir string
	// OutputDir receives the final release bundle.
	OutputDir string

	// Defines is the string-keyed configuration map. See the Define*
	// constants for recognized keys.
	Defines map[string]string

	// DartDefines are user-supplied -D defines passed through to the compiler.
	DartDefines []string

	// CompilerPath is the dart2js executable, resolved via PATH when relative.
	CompilerPath string
	// LibrariesSpec is the path of the SDK libraries specification.
	LibrariesSpec string
	// PackagesPath is the package configuration consumed by the kernel stage.
	PackagesPath string
	// FrontEndFlags are extra flags forwarded to both compiler stages.
	FrontEndFlags []string

	// Application metadata written into version.json.
	AppName     string
	AppVersion  string
	BuildNumber string
}

// BuildMode returns the configured build mode. The mode has no default:
// an absent or unrecognized value is a configuration error.
func (e *Environment) BuildMode() (BuildMode, error) {
	raw, ok := e.Defines[DefineBuildMode]
	if !ok || raw == "" {
		return "", ErrMissingBuildMode
	}
	switch BuildMode(raw) {
	case BuildModeDebug, BuildModeProfile, BuildModeRelease:
		return BuildMode(raw), nil
	default:
		return "", zerr.With(ErrInvalidBuildMode, "value", raw)
	}
}

// TargetFile returns the application entrypoint, defaulting to lib/main.dart.
func (e *Environment) TargetFile() string {
	if v := e.Defines[DefineTargetFile]; v != "" {
		return v
	}
	return "lib/main.dart"
}

// Optimization returns the dart2js optimization flag, defaulting to -O4.
func (e *Environment) Optimization() string {
	if v := e.Defines[DefineOptimization]; v != "" {
		return "-" + strings.TrimPrefix(v, "-")
	}
	return "-O4"
}

// BaseHref returns the configured base path, or "/" when unset.
func (e *Environment) BaseHref() string {
	if v := e.Defines[DefineBaseHref]; v != "" {
		return v
	}
	return "/"
}

// ServiceWorkerStrategy returns the offline strategy, defaulting to
// offline-first. Unrecognized values fall back to the default rather than
// silently disabling offline support.
func (e *Environment) ServiceWorkerStrategy() ServiceWorkerStrategy {
	if ServiceWorkerStrategy(e.Defines[DefineServiceWorkerStrategy]) == ServiceWorkerNone {
		return ServiceWorkerNone
	}
	return ServiceWorkerOfflineFirst
}

// CspMode reports whether CSP-compatible output is requested.
func (e *Environment) CspMode() bool {
	return e.boolDefine(DefineCspMode, false)
}

// SourceMaps reports whether source maps should be emitted. Defaults to true.
func (e *Environment) SourceMaps() bool {
	return e.boolDefine(DefineSourceMaps, true)
}

// NativeNullAssertions reports whether native null assertions are enabled.
func (e *Environment) NativeNullAssertions() bool {
	return e.boolDefine(DefineNativeNullAssertions, false)
}

// HasWebPlugins reports whether the plugin registrant is wired into the
// synthesized entrypoint.
func (e *Environment) HasWebPlugins() bool {
	return e.boolDefine(DefineHasWebPlugins, false)
}

func (e *Environment) boolDefine(key string, def bool) bool {
	raw, ok := e.Defines[key]
	if !ok || raw == "" {
		return def
	}
	return raw == "true"
}

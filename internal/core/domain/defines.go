package domain

// Recognized define keys. These are the string keys of Environment.Defines
// and mirror the configuration surface of the web build: a missing
// BuildMode is fatal, everything else has a documented default.
const (
	// DefineBuildMode selects debug, profile or release output. Required.
	DefineBuildMode = "BuildMode"

	// DefineTargetFile is the application entrypoint compiled into the bundle.
	DefineTargetFile = "TargetFile"

	// DefineOptimization is the dart2js optimization level, "O1".."O4".
	DefineOptimization = "Optimization"

	// DefineCspMode disables dynamic code generation in the emitted JS.
	DefineCspMode = "CspMode"

	// DefineBaseHref is the path the application is served under.
	DefineBaseHref = "BaseHref"

	// DefineServiceWorkerStrategy selects the offline caching strategy.
	DefineServiceWorkerStrategy = "ServiceWorkerStrategy"

	// DefineSourceMaps toggles source map emission.
	DefineSourceMaps = "SourceMaps"

	// DefineNativeNullAssertions toggles null checks on native JS interop values.
	DefineNativeNullAssertions = "NativeNullAssertions"

	// DefineHasWebPlugins marks that a plugin registrant should be wired
	// into the synthesized entrypoint.
	DefineHasWebPlugins = "HasWebPlugins"
)

// BuildMode is the compilation mode of the bundle.
type BuildMode string

const (
	// BuildModeDebug produces unoptimized output with assertions enabled.
	BuildModeDebug BuildMode = "debug"
	// BuildModeProfile produces optimized but unminified output for profiling.
	BuildModeProfile BuildMode = "profile"
	// BuildModeRelease produces fully optimized output.
	BuildModeRelease BuildMode = "release"
)

// ServiceWorkerStrategy selects how the generated service worker caches the
// application.
type ServiceWorkerStrategy string

const (
	// ServiceWorkerOfflineFirst caches the full bundle for offline use.
	ServiceWorkerOfflineFirst ServiceWorkerStrategy = "offline-first"
	// ServiceWorkerNone disables offline support; the generator emits an
	// empty script so a previously installed worker is replaced.
	ServiceWorkerNone ServiceWorkerStrategy = "none"
)

// Package config provides the configuration loader for weft.
package config

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file looked up in the project directory.
const DefaultFilename = "weft.yaml"

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
	logger   ports.Logger
}

// NewLoader creates a loader for the default configuration filename.
func NewLoader(log ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{Filename: DefaultFilename, logger: log}
}

// Load reads the configuration from the given project directory and returns
// the base build environment. A missing config file is not an error; the
// returned environment then carries only defaults.
func (l *FileConfigLoader) Load(cwd string) (*domain.Environment, error) {
	path := filepath.Join(cwd, l.Filename)

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if l.logger != nil {
				l.logger.Info("no " + l.Filename + " found, using defaults")
			}
			return defaultEnvironment(cwd), nil
		}
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var weftfile Weftfile
	if err := yaml.Unmarshal(data, &weftfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	return buildEnvironment(cwd, &weftfile), nil
}

func defaultEnvironment(cwd string) *domain.Environment {
	return buildEnvironment(cwd, &Weftfile{})
}

func buildEnvironment(cwd string, weftfile *Weftfile) *domain.Environment {
	env := &domain.Environment{
		ProjectDir:    cwd,
		BuildDir:      filepath.Join(cwd, ".weft", "build"),
		OutputDir:     filepath.Join(cwd, "build", "web"),
		Defines:       make(map[string]string),
		CompilerPath:  "dart2js",
		LibrariesSpec: weftfile.Compiler.LibrariesSpec,
		PackagesPath:  filepath.Join(cwd, ".dart_tool", "package_config.json"),
		FrontEndFlags: weftfile.Compiler.FrontEndFlags,
		AppName:       weftfile.App.Name,
		AppVersion:    weftfile.App.Version,
		BuildNumber:   weftfile.App.BuildNumber,
	}

	if weftfile.Build.BuildDir != "" {
		env.BuildDir = resolve(cwd, weftfile.Build.BuildDir)
	}
	if weftfile.Build.OutputDir != "" {
		env.OutputDir = resolve(cwd, weftfile.Build.OutputDir)
	}
	if weftfile.Compiler.Path != "" {
		env.CompilerPath = weftfile.Compiler.Path
	}
	if weftfile.Compiler.Packages != "" {
		env.PackagesPath = resolve(cwd, weftfile.Compiler.Packages)
	}

	// The build section maps onto the well-known defines. Zero values are
	// left out so the domain defaults apply.
	if weftfile.Build.Target != "" {
		env.Defines[domain.DefineTargetFile] = weftfile.Build.Target
	}
	if weftfile.Build.BaseHref != "" {
		env.Defines[domain.DefineBaseHref] = weftfile.Build.BaseHref
	}
	if weftfile.Build.Optimization != "" {
		env.Defines[domain.DefineOptimization] = weftfile.Build.Optimization
	}
	if weftfile.Build.PwaStrategy != "" {
		env.Defines[domain.DefineServiceWorkerStrategy] = weftfile.Build.PwaStrategy
	}
	if weftfile.Build.Csp {
		env.Defines[domain.DefineCspMode] = "true"
	}
	if weftfile.Build.SourceMaps != nil && !*weftfile.Build.SourceMaps {
		env.Defines[domain.DefineSourceMaps] = "false"
	}
	if weftfile.Build.NativeNullAssertions {
		env.Defines[domain.DefineNativeNullAssertions] = "true"
	}
	if weftfile.Build.HasPlugins {
		env.Defines[domain.DefineHasWebPlugins] = "true"
	}

	// Sorted so the compiler command line is stable across runs.
	for _, key := range slices.Sorted(maps.Keys(weftfile.Defines)) {
		env.DartDefines = append(env.DartDefines, key+"="+weftfile.Defines[key])
	}

	return env
}

func resolve(cwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

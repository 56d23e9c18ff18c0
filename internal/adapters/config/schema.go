package config

// Weftfile represents the structure of the weft.yaml configuration file.
type Weftfile struct {
	Version  string            `yaml:"version"`
	App      AppDTO            `yaml:"app"`
	Build    BuildDTO          `yaml:"build"`
	Compiler CompilerDTO       `yaml:"compiler"`
	Defines  map[string]string `yaml:"defines"`
}

// AppDTO carries the application metadata written into version.json.
type AppDTO struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	BuildNumber string `yaml:"buildNumber"`
}

// BuildDTO configures the pipeline's directories and recognized defines.
type BuildDTO struct {
	Target               string `yaml:"target"`
	BuildDir             string `yaml:"buildDir"`
	OutputDir            string `yaml:"outputDir"`
	BaseHref             string `yaml:"baseHref"`
	Optimization         string `yaml:"optimization"`
	Csp                  bool   `yaml:"csp"`
	SourceMaps           *bool  `yaml:"sourceMaps"`
	NativeNullAssertions bool   `yaml:"nativeNullAssertions"`
	HasPlugins           bool   `yaml:"hasPlugins"`
	PwaStrategy          string `yaml:"pwaStrategy"`
}

// CompilerDTO configures the compiler subprocess.
type CompilerDTO struct {
	Path          string   `yaml:"path"`
	LibrariesSpec string   `yaml:"librariesSpec"`
	Packages      string   `yaml:"packages"`
	FrontEndFlags []string `yaml:"frontEndFlags"`
}

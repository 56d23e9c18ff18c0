package web

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"text/template"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// pluginRegistrantPath is the fixed location of the generated plugin
// registrant, relative to the project directory. Generating the registrant
// itself is out of scope; only the import is wired in.
const pluginRegistrantPath = "lib/web_plugin_registrant.dart"

var entrypointTemplate = template.Must(template.New("entrypoint").Parse(
	`// Generated file. Do not edit.
{{if .HasPlugins}}import '{{.RegistrantImport}}' as plugin_registrant;
{{end}}import '{{.TargetImport}}' as entrypoint;

Future<void> main() async {
{{- if .HasPlugins}}
  plugin_registrant.registerPlugins();
{{- end}}
  entrypoint.main();
}
`))

var _ domain.Target = (*EntrypointTarget)(nil)

// EntrypointTarget synthesizes the compiler entry file in the build
// directory. The generated glue imports the user's configured target file
// and, when web plugins are enabled, the plugin registrant.
type EntrypointTarget struct {
	store ports.DepfileStore
}

// NewEntrypointTarget creates the entrypoint synthesis target.
func NewEntrypointTarget(store ports.DepfileStore) *EntrypointTarget {
	return &EntrypointTarget{store: store}
}

func (t *EntrypointTarget) Name() string                  { return "web_entrypoint" }
func (t *EntrypointTarget) Dependencies() []domain.Target { return nil }
func (t *EntrypointTarget) DepfileName() string           { return "web_entrypoint.d" }

func (t *EntrypointTarget) Inputs(env *domain.Environment) []string {
	inputs := []string{env.TargetFile()}
	if env.HasWebPlugins() {
		inputs = append(inputs, pluginRegistrantPath)
	}
	return inputs
}

func (t *EntrypointTarget) Outputs(env *domain.Environment) []string {
	return []string{filepath.Join(env.BuildDir, "main.dart")}
}

// Build renders the entry file. A missing user target file is a
// configuration error surfaced before any compiler work starts.
func (t *EntrypointTarget) Build(_ context.Context, env *domain.Environment) error {
	targetPath := filepath.Join(env.ProjectDir, env.TargetFile())
	if _, err := os.Stat(targetPath); err != nil {
		return zerr.With(domain.ErrMissingEntrypoint, "path", targetPath)
	}

	data := struct {
		HasPlugins       bool
		RegistrantImport string
		TargetImport     string
	}{
		HasPlugins:       env.HasWebPlugins(),
		RegistrantImport: importURI(env.BuildDir, filepath.Join(env.ProjectDir, pluginRegistrantPath)),
		TargetImport:     importURI(env.BuildDir, targetPath),
	}

	var buf bytes.Buffer
	if err := entrypointTemplate.Execute(&buf, data); err != nil {
		return zerr.Wrap(err, "failed to render entrypoint")
	}

	if err := os.MkdirAll(env.BuildDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create build directory")
	}
	outPath := filepath.Join(env.BuildDir, "main.dart")
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil { //nolint:gosec // generated source, not a secret
		return zerr.With(zerr.Wrap(err, "failed to write entrypoint"), "path", outPath)
	}

	inputs := []string{targetPath}
	if env.HasWebPlugins() {
		inputs = append(inputs, filepath.Join(env.ProjectDir, pluginRegistrantPath))
	}
	return t.store.Write(t.DepfileName(), domain.Depfile{
		Inputs:  inputs,
		Outputs: []string{outPath},
	})
}

// importURI renders the import path of target relative to the directory
// holding the generated file, in URI (forward slash) form.
func importURI(fromDir, target string) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

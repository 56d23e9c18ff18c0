package web_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/web"
	"go.uber.org/mock/gomock"
)

const indexTemplate = `<!DOCTYPE html>
<html>
<head><base href="$FLUTTER_BASE_HREF"></head>
<body>
  <script>
    var serviceWorkerVersion = "$FLUTTER_SERVICE_WORKER_VERSION";
    navigator.serviceWorker.register('flutter_service_worker.js');
  </script>
  <script src="main.dart.js"></script>
</body>
</html>
`

func bundleEnv(t *testing.T) *domain.Environment {
	t.Helper()
	projectDir := t.TempDir()
	env := &domain.Environment{
		ProjectDir:  projectDir,
		BuildDir:    filepath.Join(projectDir, ".weft", "build"),
		OutputDir:   filepath.Join(projectDir, "build", "web"),
		Defines:     map[string]string{domain.DefineBuildMode: "release"},
		AppName:     "shop",
		AppVersion:  "2.1.0",
		BuildNumber: "17",
	}

	writeFile(t, filepath.Join(env.BuildDir, "main.dart.js"), "console.log('main');")
	writeFile(t, filepath.Join(env.BuildDir, "main.dart.js.map"), "{}")
	writeFile(t, filepath.Join(env.BuildDir, "main.dart.js.deps"), "file:///x\n")
	writeFile(t, filepath.Join(env.BuildDir, "main.checkout-1.part.js"), "chunk")
	writeFile(t, filepath.Join(env.ProjectDir, "web", "index.html"), indexTemplate)
	writeFile(t, filepath.Join(env.ProjectDir, "web", "assets", "images", "logo.png"), "png-bytes")

	return env
}

func TestBundleTarget_AssemblesOutputDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := bundleEnv(t)

	store := newMemStore()
	target := web.NewBundleTarget(store, noopLogger(ctrl))

	require.NoError(t, target.Build(context.Background(), env))

	assert.FileExists(t, filepath.Join(env.OutputDir, "main.dart.js"))
	assert.FileExists(t, filepath.Join(env.OutputDir, "main.dart.js.map"))
	assert.FileExists(t, filepath.Join(env.OutputDir, "main.checkout-1.part.js"))
	assert.FileExists(t, filepath.Join(env.OutputDir, "assets", "images", "logo.png"))
	assert.NoFileExists(t, filepath.Join(env.OutputDir, "main.dart.js.deps"),
		"intermediate .deps files stay in the scratch dir")
	assert.NoFileExists(t, filepath.Join(env.OutputDir, "main.dart"))

	d, err := store.Read("web_resources.d")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.NotEmpty(t, d.Inputs)
	assert.Contains(t, d.Outputs, filepath.Join(env.OutputDir, "version.json"))
}

func TestBundleTarget_EntryHTMLSubstitutions(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := bundleEnv(t)
	env.Defines[domain.DefineBaseHref] = "/shop/"

	target := web.NewBundleTarget(newMemStore(), noopLogger(ctrl))
	require.NoError(t, target.Build(context.Background(), env))

	html := readFile(t, filepath.Join(env.OutputDir, "index.html"))

	assert.NotContains(t, html, "$FLUTTER_SERVICE_WORKER_VERSION")
	assert.NotContains(t, html, "$FLUTTER_BASE_HREF")
	assert.Contains(t, html, `<base href="/shop/">`)

	// The cache-buster is a decimal uint32, assigned to the version
	// variable and appended to the legacy registration call.
	versionRe := regexp.MustCompile(`var serviceWorkerVersion = "(\d+)";`)
	match := versionRe.FindStringSubmatch(html)
	require.NotNil(t, match, "expected a numeric worker version in: %s", html)
	assert.Contains(t, html, "navigator.serviceWorker.register('flutter_service_worker.js?v="+match[1]+"')")
}

func TestBundleTarget_DefaultBaseHref(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := bundleEnv(t)

	target := web.NewBundleTarget(newMemStore(), noopLogger(ctrl))
	require.NoError(t, target.Build(context.Background(), env))

	assert.Contains(t, readFile(t, filepath.Join(env.OutputDir, "index.html")), `<base href="/">`)
}

func TestBundleTarget_VersionJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := bundleEnv(t)

	target := web.NewBundleTarget(newMemStore(), noopLogger(ctrl))
	require.NoError(t, target.Build(context.Background(), env))

	var descriptor map[string]string
	data, err := os.ReadFile(filepath.Join(env.OutputDir, "version.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &descriptor))

	assert.Equal(t, "shop", descriptor["app_name"])
	assert.Equal(t, "2.1.0", descriptor["version"])
	assert.Equal(t, "17", descriptor["build_number"])
}

func TestBundleTarget_MissingWebDirIsWarning(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := bundleEnv(t)
	require.NoError(t, os.RemoveAll(filepath.Join(env.ProjectDir, "web")))

	target := web.NewBundleTarget(newMemStore(), noopLogger(ctrl))
	require.NoError(t, target.Build(context.Background(), env))

	assert.FileExists(t, filepath.Join(env.OutputDir, "main.dart.js"))
}

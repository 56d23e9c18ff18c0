package web_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/fs"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/web"
)

var (
	hashedMainRe  = regexp.MustCompile(`^main\.dart\.[0-9a-f]{8}\.js$`)
	hashedChunkRe = regexp.MustCompile(`^main\.checkout-1\.part\.[0-9a-f]{8}\.js$`)
	hashedLogoRe  = regexp.MustCompile(`^logo\.[0-9a-f]{8}\.png$`)
)

func fingerprintEnv(t *testing.T) *domain.Environment {
	t.Helper()
	projectDir := t.TempDir()
	env := &domain.Environment{
		ProjectDir: projectDir,
		OutputDir:  filepath.Join(projectDir, "build", "web"),
		Defines:    map[string]string{domain.DefineBuildMode: "release"},
	}
	seedOutputDir(t, env.OutputDir)
	return env
}

func seedOutputDir(t *testing.T, outputDir string) {
	t.Helper()
	writeFile(t, filepath.Join(outputDir, "main.dart.js"),
		"loadChunk('main.checkout-1.part.js');img('assets/images/logo.png');\n//# sourceMappingURL=main.dart.js.map\n")
	writeFile(t, filepath.Join(outputDir, "main.dart.js.map"), "{\"version\":3}")
	writeFile(t, filepath.Join(outputDir, "main.checkout-1.part.js"),
		"img('assets/images/logo.png');\n//# sourceMappingURL=main.checkout-1.part.js.map\n")
	writeFile(t, filepath.Join(outputDir, "main.checkout-1.part.js.map"), "{\"version\":3}")
	writeFile(t, filepath.Join(outputDir, "assets", "images", "logo.png"), "png-bytes")
	writeFile(t, filepath.Join(outputDir, "assets", "fonts", "Roboto.ttf"), "font-bytes")
	writeFile(t, filepath.Join(outputDir, "index.html"), "<script src=\"main.dart.js\"></script>")
}

func newFingerprintTarget() *web.FingerprintTarget {
	return web.NewFingerprintTarget(fs.NewHasher(), fs.NewWalker())
}

// findMatch returns the single file in dir whose basename matches re.
func findMatch(t *testing.T, dir string, re *regexp.Regexp) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var matches []string
	for _, entry := range entries {
		if re.MatchString(entry.Name()) {
			matches = append(matches, entry.Name())
		}
	}
	require.Len(t, matches, 1, "expected one match for %v in %s", re, dir)
	return matches[0]
}

func TestFingerprintTarget_Images(t *testing.T) {
	env := fingerprintEnv(t)

	require.NoError(t, newFingerprintTarget().Build(context.Background(), env))

	imagesDir := filepath.Join(env.OutputDir, "assets", "images")
	hashed := findMatch(t, imagesDir, hashedLogoRe)

	// The original must be gone, the hashed copy byte-identical.
	assert.NoFileExists(t, filepath.Join(imagesDir, "logo.png"))
	assert.Equal(t, "png-bytes", readFile(t, filepath.Join(imagesDir, hashed)))

	// Files outside an images directory are untouched.
	assert.FileExists(t, filepath.Join(env.OutputDir, "assets", "fonts", "Roboto.ttf"))
}

func TestFingerprintTarget_ReferenceRewriting(t *testing.T) {
	env := fingerprintEnv(t)

	require.NoError(t, newFingerprintTarget().Build(context.Background(), env))

	imagesDir := filepath.Join(env.OutputDir, "assets", "images")
	hashedLogo := findMatch(t, imagesDir, hashedLogoRe)
	hashedMain := findMatch(t, env.OutputDir, hashedMainRe)
	hashedChunk := findMatch(t, env.OutputDir, hashedChunkRe)

	mainContent := readFile(t, filepath.Join(env.OutputDir, hashedMain))
	assert.NotContains(t, mainContent, "images/logo.png'")
	assert.Contains(t, mainContent, "images/"+hashedLogo)
	assert.NotContains(t, mainContent, "main.checkout-1.part.js'")
	assert.Contains(t, mainContent, hashedChunk)
	assert.Contains(t, mainContent, "sourceMappingURL="+hashedMain+".map")

	chunkContent := readFile(t, filepath.Join(env.OutputDir, hashedChunk))
	assert.Contains(t, chunkContent, "images/"+hashedLogo)
	assert.Contains(t, chunkContent, "sourceMappingURL="+hashedChunk+".map")
}

func TestFingerprintTarget_JSRenames(t *testing.T) {
	env := fingerprintEnv(t)

	require.NoError(t, newFingerprintTarget().Build(context.Background(), env))

	hashedMain := findMatch(t, env.OutputDir, hashedMainRe)
	hashedChunk := findMatch(t, env.OutputDir, hashedChunkRe)

	assert.NoFileExists(t, filepath.Join(env.OutputDir, "main.dart.js"))
	assert.NoFileExists(t, filepath.Join(env.OutputDir, "main.checkout-1.part.js"))

	// Source maps are copied, not moved.
	assert.FileExists(t, filepath.Join(env.OutputDir, hashedMain+".map"))
	assert.FileExists(t, filepath.Join(env.OutputDir, hashedChunk+".map"))
	assert.FileExists(t, filepath.Join(env.OutputDir, "main.dart.js.map"))

	html := readFile(t, filepath.Join(env.OutputDir, "index.html"))
	assert.Contains(t, html, hashedMain)
	assert.NotContains(t, html, `"main.dart.js"`)
}

func TestFingerprintTarget_Deterministic(t *testing.T) {
	env1 := fingerprintEnv(t)
	env2 := fingerprintEnv(t)

	require.NoError(t, newFingerprintTarget().Build(context.Background(), env1))
	require.NoError(t, newFingerprintTarget().Build(context.Background(), env2))

	main1 := findMatch(t, env1.OutputDir, hashedMainRe)
	main2 := findMatch(t, env2.OutputDir, hashedMainRe)
	assert.Equal(t, main1, main2, "identical input must produce identical hashed names")
	assert.Equal(t,
		readFile(t, filepath.Join(env1.OutputDir, main1)),
		readFile(t, filepath.Join(env2.OutputDir, main2)))
}

func TestFingerprintTarget_EmptyOutputDirIsNoOp(t *testing.T) {
	projectDir := t.TempDir()
	env := &domain.Environment{
		ProjectDir: projectDir,
		OutputDir:  filepath.Join(projectDir, "build", "web"),
		Defines:    map[string]string{domain.DefineBuildMode: "release"},
	}
	require.NoError(t, os.MkdirAll(env.OutputDir, 0o750))

	require.NoError(t, newFingerprintTarget().Build(context.Background(), env))
}

package web

import (
	"context"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// shortHashLen is the number of hex characters embedded into fingerprinted
// filenames. The full hash still backs the service worker manifest.
const shortHashLen = 8

var _ domain.Target = (*FingerprintTarget)(nil)

// FingerprintTarget renames every cacheable file in the output directory so
// its name is a function of its content, and rewrites all references to the
// renamed files. The bundle stays functionally identical: images move to
// hashed names, the bundle and its chunks follow, and the entry HTML is
// patched to load the hashed main bundle.
type FingerprintTarget struct {
	hasher ports.Hasher
	walker ports.FileWalker
	deps   []domain.Target
}

// NewFingerprintTarget creates the fingerprinting target.
func NewFingerprintTarget(hasher ports.Hasher, walker ports.FileWalker, deps ...domain.Target) *FingerprintTarget {
	return &FingerprintTarget{hasher: hasher, walker: walker, deps: deps}
}

func (t *FingerprintTarget) Name() string                  { return "web_fingerprint" }
func (t *FingerprintTarget) Dependencies() []domain.Target { return t.deps }
func (t *FingerprintTarget) DepfileName() string           { return "" }

func (t *FingerprintTarget) Inputs(env *domain.Environment) []string {
	// The entry HTML changes on every bundle assembly (fresh cache-buster
	// token), so this target is never skipped after a re-assembly.
	return []string{filepath.Join(env.OutputDir, entryHTMLName)}
}

func (t *FingerprintTarget) Outputs(env *domain.Environment) []string {
	return []string{filepath.Join(env.OutputDir, entryHTMLName)}
}

// Build runs the pipeline: classification, image fingerprinting, reference
// rewriting, concurrent chunk fingerprinting, main bundle fingerprinting
// and the HTML patch. Missing optional artifacts are silently skipped.
func (t *FingerprintTarget) Build(ctx context.Context, env *domain.Environment) error {
	res := classify(t.walker, env.OutputDir)

	imageMap, err := t.fingerprintImages(env.OutputDir, res[domain.ResourceImage])
	if err != nil {
		return err
	}

	return t.fingerprintJS(ctx, env.OutputDir, res, imageMap)
}

// fingerprintImages moves each image to a hash-embedded name and returns
// the reference map keyed by the image's last two path segments.
func (t *FingerprintTarget) fingerprintImages(outputDir string, images []domain.ResourceEntry) (map[string]string, error) {
	refs := make(map[string]string)

	for _, img := range images {
		hash, err := t.hasher.HashFile(img.Path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to hash image"), "path", img.Path)
		}

		newPath := hashedName(img.Path, hash)
		if err := copyFile(img.Path, newPath); err != nil {
			return nil, err
		}
		if err := os.Remove(img.Path); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to remove original image"), "path", img.Path)
		}

		// References inside the bundle use the trailing directory plus
		// filename, e.g. "images/logo.png".
		refs[lastTwoSegments(outputDir, img.Path)] = lastTwoSegments(outputDir, newPath)
	}

	return refs, nil
}

// fingerprintJS rewrites image references inside the bundle, fingerprints
// every chunk concurrently, folds the chunk renames into the in-memory main
// bundle content, fingerprints the main bundle and patches the entry HTML.
func (t *FingerprintTarget) fingerprintJS(ctx context.Context, outputDir string, res domain.Resources, imageMap map[string]string) error {
	main, hasMain := res.First(domain.ResourceJSMain)

	var mainContent string
	if hasMain {
		data, err := os.ReadFile(main.Path) //nolint:gosec // Path comes from the classification walk
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				hasMain = false
			} else {
				return zerr.With(zerr.Wrap(err, "failed to read main bundle"), "path", main.Path)
			}
		}
		mainContent = replaceRefs(string(data), imageMap)
	}

	chunks := res[domain.ResourceJSChunk]
	renames := make([]struct{ old, new string }, len(chunks))

	// Chunk tasks are mutually independent: each touches only its own
	// file, its own source map and its own renames slot. The join below
	// is the barrier before the shared main bundle content is finalized.
	g, _ := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			oldName, newName, err := t.fingerprintChunk(chunk.Path, imageMap)
			if err != nil {
				return err
			}
			renames[i] = struct{ old, new string }{oldName, newName}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if !hasMain {
		return nil
	}

	for _, rn := range renames {
		if rn.old != "" {
			mainContent = strings.ReplaceAll(mainContent, rn.old, rn.new)
		}
	}

	hash, err := t.finalizeMain(main.Path, mainContent)
	if err != nil {
		return err
	}

	return t.patchHTML(res, filepath.Base(hashedName(main.Path, hash)))
}

// fingerprintChunk rewrites image references inside one chunk, renames it
// to its hash-embedded name and copies its source map alongside. A chunk
// deleted between classification and here is a no-op.
func (t *FingerprintTarget) fingerprintChunk(path string, imageMap map[string]string) (oldName, newName string, err error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the classification walk
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", nil
		}
		return "", "", zerr.With(zerr.Wrap(err, "failed to read chunk"), "path", path)
	}

	content := replaceRefs(string(data), imageMap)
	hash := t.hasher.HashBytes([]byte(content))
	newPath := hashedName(path, hash)

	content = patchSourceMapRef(content, filepath.Base(path), filepath.Base(newPath))
	if err := os.WriteFile(newPath, []byte(content), 0o644); err != nil { //nolint:gosec // public web asset
		return "", "", zerr.With(zerr.Wrap(err, "failed to write chunk"), "path", newPath)
	}
	if err := os.Remove(path); err != nil {
		return "", "", zerr.With(zerr.Wrap(err, "failed to remove original chunk"), "path", path)
	}
	if err := copySourceMap(path, newPath); err != nil {
		return "", "", err
	}

	return filepath.Base(path), filepath.Base(newPath), nil
}

// finalizeMain hashes the fully rewritten main bundle content, writes it to
// its hash-embedded path and deletes the original file.
func (t *FingerprintTarget) finalizeMain(path, content string) (string, error) {
	hash := t.hasher.HashBytes([]byte(content))
	newPath := hashedName(path, hash)

	content = patchSourceMapRef(content, filepath.Base(path), filepath.Base(newPath))
	if err := os.WriteFile(newPath, []byte(content), 0o644); err != nil { //nolint:gosec // public web asset
		return "", zerr.With(zerr.Wrap(err, "failed to write main bundle"), "path", newPath)
	}
	if err := os.Remove(path); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to remove original main bundle"), "path", path)
	}
	if err := copySourceMap(path, newPath); err != nil {
		return "", err
	}

	return hash, nil
}

// patchHTML replaces the literal unhashed main bundle reference in the
// entry HTML with the hashed filename.
func (t *FingerprintTarget) patchHTML(res domain.Resources, hashedMain string) error {
	html, ok := res.First(domain.ResourceHTML)
	if !ok {
		return nil
	}

	data, err := os.ReadFile(html.Path) //nolint:gosec // Path comes from the classification walk
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read entry HTML"), "path", html.Path)
	}

	patched := strings.ReplaceAll(string(data), mainBundleName, hashedMain)
	if err := os.WriteFile(html.Path, []byte(patched), 0o644); err != nil { //nolint:gosec // public web asset
		return zerr.With(zerr.Wrap(err, "failed to write entry HTML"), "path", html.Path)
	}
	return nil
}

// hashedName derives "<name>.<hash-fragment>.<ext>" next to the original.
func hashedName(path, hash string) string {
	fragment := hash
	if len(fragment) > shortHashLen {
		fragment = fragment[:shortHashLen]
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), base+"."+fragment+ext)
}

// lastTwoSegments renders the path's trailing directory plus filename in
// URL form, computed against the output root rather than substring slicing.
func lastTwoSegments(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return parts[len(parts)-1]
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

// replaceRefs applies the image reference map to the given content. Keys
// are visited in sorted order so reruns over identical input produce
// byte-identical output.
func replaceRefs(content string, refs map[string]string) string {
	for _, original := range slices.Sorted(maps.Keys(refs)) {
		content = strings.ReplaceAll(content, original, refs[original])
	}
	return content
}

// patchSourceMapRef rewrites the sourceMappingURL comment to point at the
// hashed map name.
func patchSourceMapRef(content, oldName, newName string) string {
	return strings.ReplaceAll(content, "sourceMappingURL="+oldName+".map", "sourceMappingURL="+newName+".map")
}

// copySourceMap copies the original file's .map sibling to the hashed
// name's .map sibling. A missing source map is a silent no-op.
func copySourceMap(oldPath, newPath string) error {
	mapPath := oldPath + ".map"
	if _, err := os.Stat(mapPath); err != nil {
		return nil
	}
	return copyFile(mapPath, newPath+".map")
}

package web

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	serviceWorkerVersionToken = "$FLUTTER_SERVICE_WORKER_VERSION"
	baseHrefToken             = "$FLUTTER_BASE_HREF"

	legacyWorkerRegistration = "navigator.serviceWorker.register('" + workerFileName + "')"
)

var _ domain.Target = (*BundleTarget)(nil)

// BundleTarget assembles the release bundle: the compiled JavaScript from
// the build directory plus the project's static web/ resources, with the
// HTML entry point's placeholder tokens substituted. It also emits the
// version.json descriptor.
type BundleTarget struct {
	store  ports.DepfileStore
	logger ports.Logger
	deps   []domain.Target

	// versionToken produces the cache-buster written into the entry HTML,
	// a decimal rendering of a random 32-bit unsigned integer.
	versionToken func() string
}

// NewBundleTarget creates the bundle assembly target.
func NewBundleTarget(store ports.DepfileStore, log ports.Logger, deps ...domain.Target) *BundleTarget {
	return &BundleTarget{
		store:  store,
		logger: log,
		deps:   deps,
		versionToken: func() string {
			return strconv.FormatUint(uint64(rand.Uint32()), 10)
		},
	}
}

func (t *BundleTarget) Name() string                  { return "web_release_bundle" }
func (t *BundleTarget) Dependencies() []domain.Target { return t.deps }
func (t *BundleTarget) DepfileName() string           { return "web_resources.d" }

func (t *BundleTarget) Inputs(env *domain.Environment) []string {
	return []string{
		filepath.Join(env.BuildDir, "main.*"),
		filepath.Join(env.ProjectDir, "web", "*"),
		filepath.Join(env.ProjectDir, "web", "*", "*"),
	}
}

func (t *BundleTarget) Outputs(env *domain.Environment) []string {
	return []string{
		filepath.Join(env.OutputDir, mainBundleName),
		filepath.Join(env.OutputDir, "version.json"),
	}
}

// Build copies the bundle and static resources into the output directory.
func (t *BundleTarget) Build(_ context.Context, env *domain.Environment) error {
	if err := os.MkdirAll(env.OutputDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create output directory")
	}

	var d domain.Depfile

	if err := t.copyBundle(env, &d); err != nil {
		return err
	}
	if err := t.copyWebResources(env, &d); err != nil {
		return err
	}
	if err := t.writeVersionJSON(env, &d); err != nil {
		return err
	}

	return t.store.Write(t.DepfileName(), d)
}

// copyBundle copies every compiled bundle file, excluding the intermediate
// .deps listing, from the build directory into the output directory.
func (t *BundleTarget) copyBundle(env *domain.Environment, d *domain.Depfile) error {
	matches, err := filepath.Glob(filepath.Join(env.BuildDir, "main.*"))
	if err != nil {
		return zerr.Wrap(err, "failed to glob bundle files")
	}

	for _, src := range matches {
		if strings.HasSuffix(src, ".deps") || filepath.Base(src) == "main.dart" {
			continue
		}
		dst := filepath.Join(env.OutputDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return err
		}
		d.Inputs = append(d.Inputs, src)
		d.Outputs = append(d.Outputs, dst)
	}
	return nil
}

// copyWebResources copies the project's web/ directory into the output
// directory preserving layout, substituting tokens in the entry HTML.
func (t *BundleTarget) copyWebResources(env *domain.Environment, d *domain.Depfile) error {
	webDir := filepath.Join(env.ProjectDir, "web")
	if _, err := os.Stat(webDir); err != nil {
		t.logger.Warn("no web directory found, skipping static resources")
		return nil
	}

	token := t.versionToken()

	return filepath.WalkDir(webDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(webDir, path)
		if err != nil {
			return zerr.Wrap(err, "failed to compute relative path")
		}
		dst := filepath.Join(env.OutputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return zerr.Wrap(err, "failed to create output subdirectory")
		}

		if rel == entryHTMLName {
			if err := t.writeEntryHTML(env, path, dst, token); err != nil {
				return err
			}
		} else if err := copyFile(path, dst); err != nil {
			return err
		}

		d.Inputs = append(d.Inputs, path)
		d.Outputs = append(d.Outputs, dst)
		return nil
	})
}

// writeEntryHTML copies index.html with its placeholder tokens substituted:
// the worker cache-buster token, the legacy registration call's query
// parameter and the base href.
func (t *BundleTarget) writeEntryHTML(env *domain.Environment, src, dst, token string) error {
	data, err := os.ReadFile(src) //nolint:gosec // Path is under the project dir
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read entry HTML"), "path", src)
	}

	html := string(data)
	html = strings.ReplaceAll(html, serviceWorkerVersionToken, token)
	html = strings.ReplaceAll(html, legacyWorkerRegistration,
		"navigator.serviceWorker.register('"+workerFileName+"?v="+token+"')")
	html = strings.ReplaceAll(html, baseHrefToken, env.BaseHref())

	if err := os.WriteFile(dst, []byte(html), 0o644); err != nil { //nolint:gosec // public web asset
		return zerr.With(zerr.Wrap(err, "failed to write entry HTML"), "path", dst)
	}
	return nil
}

func (t *BundleTarget) writeVersionJSON(env *domain.Environment, d *domain.Depfile) error {
	descriptor := struct {
		AppName     string `json:"app_name"`
		Version     string `json:"version"`
		BuildNumber string `json:"build_number"`
	}{
		AppName:     env.AppName,
		Version:     env.AppVersion,
		BuildNumber: env.BuildNumber,
	}

	data, err := json.Marshal(descriptor)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal version descriptor")
	}

	path := filepath.Join(env.OutputDir, "version.json")
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // public web asset
		return zerr.With(zerr.Wrap(err, "failed to write version.json"), "path", path)
	}
	d.Outputs = append(d.Outputs, path)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // Paths come from directory walks
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open source file"), "path", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) //nolint:gosec // Path is under the output dir
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create destination file"), "path", dst)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	return out.Close()
}

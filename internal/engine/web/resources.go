// Package web implements the fixed release pipeline for a compiled web
// application bundle: entrypoint synthesis, compilation, bundle assembly,
// asset fingerprinting and service worker generation.
package web

import (
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

const (
	// mainBundleName is the codegen stage's output filename.
	mainBundleName = "main.dart.js"

	// entryHTMLName is the application's HTML entry point.
	entryHTMLName = "index.html"

	// workerFileName is the generated service worker script.
	workerFileName = "flutter_service_worker.js"
)

// chunkPattern matches deferred chunk filenames, e.g. main.foo_bar-1.part.js.
var chunkPattern = regexp.MustCompile(`^main\..+\.part\.js$`)

// hashedMainPattern matches the main bundle after fingerprinting.
var hashedMainPattern = regexp.MustCompile(`^main\.dart(\.[0-9a-f]{8})?\.js$`)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".ico":  true,
	".svg":  true,
}

// classify scans the output directory and groups its files by the role they
// play in the fingerprinting pipeline. The result is rebuilt on every run
// and threaded explicitly through the pipeline stages.
func classify(walker ports.FileWalker, outputDir string) domain.Resources {
	res := make(domain.Resources)

	for path := range walker.WalkFiles(outputDir, true) {
		base := filepath.Base(path)
		switch {
		case base == mainBundleName:
			res[domain.ResourceJSMain] = append(res[domain.ResourceJSMain], domain.ResourceEntry{Kind: domain.ResourceJSMain, Path: path})
		case chunkPattern.MatchString(base):
			res[domain.ResourceJSChunk] = append(res[domain.ResourceJSChunk], domain.ResourceEntry{Kind: domain.ResourceJSChunk, Path: path})
		case isImagePath(outputDir, path):
			res[domain.ResourceImage] = append(res[domain.ResourceImage], domain.ResourceEntry{Kind: domain.ResourceImage, Path: path})
		case base == entryHTMLName && filepath.Dir(path) == filepath.Clean(outputDir):
			res[domain.ResourceHTML] = append(res[domain.ResourceHTML], domain.ResourceEntry{Kind: domain.ResourceHTML, Path: path})
		}
	}

	return res
}

// isImagePath reports whether the file sits under an images directory
// segment within the output tree and carries an image extension.
func isImagePath(outputDir, path string) bool {
	if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}

	rel, err := filepath.Rel(outputDir, path)
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if segment == "images" {
			return true
		}
	}
	return false
}

package fs

import (
	"path/filepath"
	"sort"

	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using filepath.Glob.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveInputs resolves the given patterns against root. Patterns with no
// matches are skipped: the pipeline declares patterns over optional
// artifacts (source maps, deferred chunks) that legitimately may not exist.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	uniquePaths := make(map[string]bool)

	for _, input := range inputs {
		path := input
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, input)
		}

		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", path)
		}

		for _, match := range matches {
			uniquePaths[match] = true
		}
	}

	result := make([]string, 0, len(uniquePaths))
	for path := range uniquePaths {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}

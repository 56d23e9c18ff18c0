package domain

// ResourceKind classifies a file in the output directory for the
// fingerprinting pipeline. Files with no matching kind pass through the
// pipeline untouched.
type ResourceKind string

const (
	// ResourceJSMain is the main compiled bundle file.
	ResourceJSMain ResourceKind = "js-main"
	// ResourceJSChunk is a lazily-loaded deferred chunk of the bundle.
	ResourceJSChunk ResourceKind = "js-chunk"
	// ResourceImage is an image asset.
	ResourceImage ResourceKind = "image"
	// ResourceHTML is the HTML entry point.
	ResourceHTML ResourceKind = "html"
)

// ResourceEntry is one classified file.
type ResourceEntry struct {
	Kind ResourceKind
	// Path is the absolute path of the file.
	Path string
}

// Resources is the result of a classification pass over the output
// directory. It is rebuilt fresh on every pipeline run and threaded
// explicitly through the fingerprinting stages.
type Resources map[ResourceKind][]ResourceEntry

// First returns the single entry of the given kind, or false when none was
// classified. Used for the kinds that appear at most once (main bundle,
// entry HTML).
func (r Resources) First(kind ResourceKind) (ResourceEntry, bool) {
	entries := r[kind]
	if len(entries) == 0 {
		return ResourceEntry{}, false
	}
	return entries[0], true
}

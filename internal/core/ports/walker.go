package ports

import "iter"

// FileWalker enumerates the files below a directory root.
type FileWalker interface {
	// WalkFiles yields all files under root in lexical order, skipping
	// dotfiles and dot-directories when skipHidden is set.
	WalkFiles(root string, skipHidden bool) iter.Seq[string]
}

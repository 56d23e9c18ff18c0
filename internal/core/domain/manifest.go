package domain

import "sort"

// ServiceWorkerManifest maps logical, /-rooted URLs to full content hashes,
// plus the ordered core list of URLs the worker must cache during install.
// The root URL "/" aliases the HTML entry point's hash. The manifest is
// regenerated on every build and embedded literally into the worker script.
type ServiceWorkerManifest struct {
	Entries   map[string]string
	CoreFiles []string
}

// NewServiceWorkerManifest creates an empty manifest.
func NewServiceWorkerManifest() *ServiceWorkerManifest {
	return &ServiceWorkerManifest{Entries: make(map[string]string)}
}

// SortedURLs returns the manifest keys in lexical order, so the embedded
// literal is byte-stable across reruns of an unchanged bundle.
func (m *ServiceWorkerManifest) SortedURLs() []string {
	urls := make([]string, 0, len(m.Entries))
	for url := range m.Entries {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Has reports whether the manifest contains the given URL.
func (m *ServiceWorkerManifest) Has(url string) bool {
	_, ok := m.Entries[url]
	return ok
}

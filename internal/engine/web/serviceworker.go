package web

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ domain.Target = (*ServiceWorkerTarget)(nil)

// ServiceWorkerTarget generates flutter_service_worker.js from a manifest
// of the final output directory. The script implements an offline-first
// cache over three logical caches; strategy "none" writes an empty script
// so a previously installed worker is replaced by an inert one.
type ServiceWorkerTarget struct {
	hasher ports.Hasher
	walker ports.FileWalker
	store  ports.DepfileStore
	deps   []domain.Target
}

// NewServiceWorkerTarget creates the service worker generation target.
func NewServiceWorkerTarget(hasher ports.Hasher, walker ports.FileWalker, store ports.DepfileStore, deps ...domain.Target) *ServiceWorkerTarget {
	return &ServiceWorkerTarget{hasher: hasher, walker: walker, store: store, deps: deps}
}

func (t *ServiceWorkerTarget) Name() string                  { return "web_service_worker" }
func (t *ServiceWorkerTarget) Dependencies() []domain.Target { return t.deps }
func (t *ServiceWorkerTarget) DepfileName() string           { return "service_worker.d" }

func (t *ServiceWorkerTarget) Inputs(env *domain.Environment) []string {
	return []string{filepath.Join(env.OutputDir, entryHTMLName)}
}

func (t *ServiceWorkerTarget) Outputs(env *domain.Environment) []string {
	return []string{filepath.Join(env.OutputDir, workerFileName)}
}

// Build computes the manifest and writes the worker script.
func (t *ServiceWorkerTarget) Build(_ context.Context, env *domain.Environment) error {
	workerPath := filepath.Join(env.OutputDir, workerFileName)

	manifest, inputs, err := t.buildManifest(env.OutputDir)
	if err != nil {
		return err
	}

	script, err := Generate(manifest, env.ServiceWorkerStrategy())
	if err != nil {
		return err
	}

	if err := os.WriteFile(workerPath, []byte(script), 0o644); err != nil { //nolint:gosec // public web asset
		return zerr.With(zerr.Wrap(err, "failed to write service worker"), "path", workerPath)
	}

	return t.store.Write(t.DepfileName(), domain.Depfile{
		Inputs:  inputs,
		Outputs: []string{workerPath},
	})
}

// buildManifest walks the output directory and hashes every cacheable file.
// Dotfiles, source maps and the worker script itself are excluded; URLs are
// site-relative and /-rooted, with / aliasing the HTML entry point.
func (t *ServiceWorkerTarget) buildManifest(outputDir string) (*domain.ServiceWorkerManifest, []string, error) {
	m := domain.NewServiceWorkerManifest()
	var inputs []string
	var mainURL string

	for path := range t.walker.WalkFiles(outputDir, true) {
		base := filepath.Base(path)
		if base == workerFileName || strings.HasSuffix(base, ".map") {
			continue
		}

		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return nil, nil, zerr.Wrap(err, "failed to compute relative path")
		}
		url := "/" + filepath.ToSlash(rel)

		hash, err := t.hasher.HashFile(path)
		if err != nil {
			return nil, nil, zerr.With(zerr.Wrap(err, "failed to hash resource"), "path", path)
		}
		m.Entries[url] = hash
		inputs = append(inputs, path)

		if rel == entryHTMLName {
			m.Entries["/"] = hash
		}
		if !strings.Contains(filepath.ToSlash(rel), "/") && hashedMainPattern.MatchString(base) {
			mainURL = url
		}
	}

	m.CoreFiles = coreFiles(m, mainURL)
	return m, inputs, nil
}

// coreFiles is the fixed bootstrap set the worker caches during install.
func coreFiles(m *domain.ServiceWorkerManifest, mainURL string) []string {
	core := []string{"/"}
	if mainURL != "" {
		core = append(core, mainURL)
	}
	core = append(core, "/"+entryHTMLName, "/assets/NOTICES")
	for _, optional := range []string{"/assets/AssetManifest.json", "/assets/FontManifest.json"} {
		if m.Has(optional) {
			core = append(core, optional)
		}
	}
	return core
}

// Generate renders the worker script for the given manifest, or empty text
// when the strategy disables offline support.
func Generate(m *domain.ServiceWorkerManifest, strategy domain.ServiceWorkerStrategy) (string, error) {
	if strategy == domain.ServiceWorkerNone {
		return "", nil
	}

	resources, err := json.MarshalIndent(m.Entries, "", "  ")
	if err != nil {
		return "", zerr.Wrap(err, "failed to marshal manifest")
	}
	core, err := json.MarshalIndent(m.CoreFiles, "", "  ")
	if err != nil {
		return "", zerr.Wrap(err, "failed to marshal core list")
	}

	var buf bytes.Buffer
	err = workerTemplate.Execute(&buf, struct {
		Resources string
		Core      string
	}{
		Resources: string(resources),
		Core:      string(core),
	})
	if err != nil {
		return "", zerr.Wrap(err, "failed to render service worker")
	}
	return buf.String(), nil
}

// workerTemplate is the browser-side cache state machine. Three caches: the
// manifest record, a staging cache populated during install, and the live
// content cache. Any failure while transitioning between versions wipes all
// three so the next load re-bootstraps from network.
var workerTemplate = template.Must(template.New("serviceworker").Parse(`'use strict';
const MANIFEST = 'flutter-app-manifest';
const TEMP = 'flutter-temp-cache';
const CACHE_NAME = 'flutter-app-cache';

const RESOURCES = {{.Resources}};

// The application shell files that are downloaded before a service worker can
// start.
const CORE = {{.Core}};

// During install, the TEMP cache is populated with the application shell files.
self.addEventListener("install", (event) => {
  self.skipWaiting();
  return event.waitUntil(
    caches.open(TEMP).then((cache) => {
      return cache.addAll(
        CORE.map((value) => new Request(value, {'cache': 'reload'})));
    })
  );
});

// During activate, the cache is populated with the temp files downloaded in
// install. If this service worker is upgrading from one with a saved
// MANIFEST, then use this to retain unchanged resource files.
self.addEventListener("activate", function(event) {
  return event.waitUntil(async function() {
    try {
      var contentCache = await caches.open(CACHE_NAME);
      var tempCache = await caches.open(TEMP);
      var manifestCache = await caches.open(MANIFEST);
      var manifest = await manifestCache.match('manifest');
      // When there is no prior manifest, clear the entire cache.
      if (!manifest) {
        await caches.delete(CACHE_NAME);
        contentCache = await caches.open(CACHE_NAME);
        for (var request of await tempCache.keys()) {
          var response = await tempCache.match(request);
          await contentCache.put(request, response);
        }
        await caches.delete(TEMP);
        // Save the manifest to make future upgrades efficient.
        await manifestCache.put('manifest', new Response(JSON.stringify(RESOURCES)));
        self.clients.claim();
        return;
      }
      var oldManifest = await manifest.json();
      var origin = self.location.origin;
      for (var request of await contentCache.keys()) {
        var key = request.url.substring(origin.length);
        if (key == "") {
          key = "/";
        }
        // If a resource from the old manifest is not in the new cache, or if
        // the content hash has changed, delete it. Otherwise the resource is left
        // in the cache and can be reused by the new service worker.
        if (!RESOURCES[key] || RESOURCES[key] != oldManifest[key]) {
          await contentCache.delete(request);
        }
      }
      // Populate the cache with the app shell TEMP files, potentially
      // overwriting cache files preserved above.
      for (var request of await tempCache.keys()) {
        var response = await tempCache.match(request);
        await contentCache.put(request, response);
      }
      await caches.delete(TEMP);
      // Save the manifest to make future upgrades efficient.
      await manifestCache.put('manifest', new Response(JSON.stringify(RESOURCES)));
      self.clients.claim();
      return;
    } catch (err) {
      // On an unhandled exception the state of the cache cannot be guaranteed.
      console.error('Failed to upgrade service worker: ' + err);
      await caches.delete(CACHE_NAME);
      await caches.delete(TEMP);
      await caches.delete(MANIFEST);
    }
  }());
});

// The fetch handler redirects requests for RESOURCE files to the service
// worker cache.
self.addEventListener("fetch", (event) => {
  if (event.request.method !== 'GET') {
    return;
  }
  var origin = self.location.origin;
  var key = event.request.url.substring(origin.length);
  // Provide a 'cache busting' behavior for the worker script itself.
  if (key.indexOf('?v=') != -1) {
    key = key.split('?v=')[0];
  }
  // Redirect URLs to the index.html
  if (event.request.url == origin || event.request.url.startsWith(origin + '/#') || key == '') {
    key = '/';
  }
  // If the URL is not the RESOURCE list then return to signal that the
  // browser should take over.
  if (!RESOURCES[key]) {
    return;
  }
  // If the URL is the index.html, perform an online-first request.
  if (key == '/') {
    return onlineFirst(event);
  }
  event.respondWith(caches.open(CACHE_NAME)
    .then((cache) =>  {
      return cache.match(event.request).then((response) => {
        // Either respond with the cached resource, or perform a fetch and
        // lazily populate the cache.
        return response || fetch(event.request).then((response) => {
          if (response && Boolean(response.ok)) {
            cache.put(event.request, response.clone());
          }
          return response;
        });
      })
    })
  );
});

self.addEventListener('message', (event) => {
  // SkipWaiting can be used to immediately activate a waiting service worker.
  // This will also require a page refresh triggered by the main worker.
  if (event.data === 'skipWaiting') {
    self.skipWaiting();
    return;
  }
  if (event.data === 'downloadOffline') {
    downloadOffline();
    return;
  }
});

// Download offline will check the RESOURCES for all files not in the cache
// and populate them.
async function downloadOffline() {
  var resources = [];
  var contentCache = await caches.open(CACHE_NAME);
  var currentContent = {};
  var origin = self.location.origin;
  for (var request of await contentCache.keys()) {
    var key = request.url.substring(origin.length);
    if (key == "") {
      key = "/";
    }
    currentContent[key] = true;
  }
  for (var resourceKey of Object.keys(RESOURCES)) {
    if (!currentContent[resourceKey]) {
      resources.push(resourceKey);
    }
  }
  return contentCache.addAll(resources);
}

// Attempt to download the resource online before falling back to
// the offline cache.
function onlineFirst(event) {
  return event.respondWith(
    fetch(event.request).then((response) => {
      return caches.open(CACHE_NAME).then((cache) => {
        cache.put(event.request, response.clone());
        return response;
      });
    }).catch((error) => {
      return caches.open(CACHE_NAME).then((cache) => {
        return cache.match(event.request).then((response) => {
          if (response != null) {
            return response;
          }
          throw error;
        });
      });
    })
  );
}
`))

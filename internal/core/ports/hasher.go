package ports

// Hasher computes content hashes for fingerprinting and staleness checks.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFile returns the full hex content hash of the file at path.
	HashFile(path string) (string, error)

	// HashBytes returns the full hex content hash of data.
	HashBytes(data []byte) string

	// InputDigest computes a single digest over the given files (paths and
	// contents), used by the build driver to detect unchanged targets.
	InputDigest(paths []string) (string, error)
}

package fs

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes content hashes. Fingerprints (filenames, worker manifest)
// use blake3 so the hash is a stable function of content alone; the driver's
// staleness digests use xxhash, which is cheaper and never leaves the local
// state file.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile returns the full blake3 hex digest of the file at path.
func (h *Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashBytes returns the full blake3 hex digest of data.
func (h *Hasher) HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// InputDigest computes a single xxhash digest over the given files, mixing
// each path and its content hash so renames and edits both invalidate it.
func (h *Hasher) InputDigest(paths []string) (string, error) {
	digest := xxhash.New()

	for _, path := range paths {
		_, _ = digest.WriteString(path)
		_, _ = digest.Write([]byte{0})

		fileHash, err := h.hashFileXX(path)
		if err != nil {
			return "", err
		}
		if err := binary.Write(digest, binary.LittleEndian, fileHash); err != nil {
			return "", zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

func (h *Hasher) hashFileXX(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

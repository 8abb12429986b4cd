package build

import (
	"os"

	"github.com/cespare/xxhash/v2"
)

// HashBytes computes the content hash of a file's raw bytes.  The hash is the
// sole cache-validity key: equal hashes mean interchangeable analysis
// results.
func HashBytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// HashFile computes the content hash of the file at the given path.
func HashFile(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return HashBytes(data), nil
}

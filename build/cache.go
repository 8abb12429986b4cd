package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fern/codec"
	"fern/ir"
	"fern/report"
)

// cacheFileExt is the extension of binary cache entries.
const cacheFileExt = ".fir"

// CacheStats counts how the cache behaved over one build.
type CacheStats struct {
	// Hits is the number of files restored from the cache.
	Hits int

	// Misses is the number of files that had no usable cache entry.
	Misses int

	// Invalidations is the number of entries discarded as stale, corrupt,
	// or written by a different format version.
	Invalidations int
}

// Cache is the on-disk incremental cache of analyzed files.  Each entry is
// one FileIR in the binary cache format, named by the hash of the source
// file's path so entries never collide and renames simply miss.
//
// A cache entry is valid only when its recorded content hash equals the
// current hash of the source file.  Corrupt entries and entries written by a
// different format version are discarded and reanalyzed; corruption is never
// fatal to the build.
type Cache struct {
	dir string
	log *zap.Logger

	mu    sync.Mutex
	stats CacheStats
}

// OpenCache opens (creating if needed) the cache rooted at the given
// directory.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Cache{dir: dir, log: report.Logger().Named("cache")}, nil
}

// Dir returns the cache's root directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// Load looks up the cache entry for the given source path and returns it if
// it is present, decodable, and matches the file's current content hash.
func (c *Cache) Load(path string, contentHash uint64) (*ir.FileIR, bool) {
	entry := c.entryPath(path)

	data, err := os.ReadFile(entry)
	if err != nil {
		c.miss(0)
		return nil, false
	}

	f, err := codec.DecodeFile(data)
	if err != nil {
		if errors.Is(err, codec.ErrVersionMismatch) {
			// A version bump invalidates every entry at once: the whole
			// cache was written by an older front end.
			c.log.Info("cache format version changed, clearing cache",
				zap.String("dir", c.dir),
			)

			if clearErr := c.Clear(); clearErr != nil {
				c.log.Warn("failed to clear stale cache", zap.Error(clearErr))
			}

			c.miss(1)
			return nil, false
		}

		// Corruption is fatal for this entry only.
		c.log.Warn("discarding corrupt cache entry",
			zap.String("path", path),
			zap.Error(err),
		)

		os.Remove(entry)
		c.miss(1)
		return nil, false
	}

	if f.Path != path || f.ContentHash != contentHash {
		os.Remove(entry)
		c.miss(1)
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()

	return f, true
}

// Store writes the analyzed file into the cache, replacing any previous
// entry for its path.
func (c *Cache) Store(f *ir.FileIR) error {
	data, err := codec.EncodeFile(f)
	if err != nil {
		return fmt.Errorf("encoding cache entry for %s: %w", f.Path, err)
	}

	return os.WriteFile(c.entryPath(f.Path), data, 0o644)
}

// Clear removes every entry in the cache directory.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), cacheFileExt) {
			if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Cache) miss(invalidations int) {
	c.mu.Lock()
	c.stats.Misses++
	c.stats.Invalidations += invalidations
	c.mu.Unlock()
}

// entryPath names an entry by the hash of the source path: stable, collision
// free, and safe for nested source paths.
func (c *Cache) entryPath(path string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x%s", HashBytes([]byte(path)), cacheFileExt))
}

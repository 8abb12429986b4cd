package build

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml"

	"fern/common"
)

// Config is the project configuration loaded from `fern.toml`.
type Config struct {
	// Name is the project's display name.
	Name string `toml:"name"`

	// SourceRoot is the directory source paths are resolved against,
	// relative to the project file.
	SourceRoot string `toml:"source_root"`

	// CacheDir is the analysis cache directory, relative to the project
	// file.
	CacheDir string `toml:"cache_dir"`

	// MaxParallelism bounds the analysis worker pool.  Zero means one
	// worker per CPU.
	MaxParallelism int `toml:"max_parallelism"`

	// Strict promotes warnings to build-blocking severity.
	Strict bool `toml:"strict"`
}

// DefaultConfig returns the configuration used when no project file exists.
func DefaultConfig() Config {
	return Config{
		Name:           "fern-project",
		SourceRoot:     ".",
		CacheDir:       common.FernCacheDir,
		MaxParallelism: runtime.NumCPU(),
	}
}

// LoadConfig reads and validates a project file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading project file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	if cfg.MaxParallelism < 0 {
		return Config{}, fmt.Errorf("max_parallelism must not be negative")
	}
	if cfg.MaxParallelism == 0 {
		cfg.MaxParallelism = runtime.NumCPU()
	}
	if cfg.SourceRoot == "" {
		cfg.SourceRoot = "."
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = common.FernCacheDir
	}

	return cfg, nil
}

// FindProjectFile walks upward from the given directory looking for a
// `fern.toml`.  It returns the file's path, or false when no enclosing
// directory has one.
func FindProjectFile(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, common.FernProjectFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}

// DiscoverConfig locates and loads the project configuration governing the
// given directory.  When no project file exists, the directory itself becomes
// the project root with default configuration.
func DiscoverConfig(dir string) (Config, string, error) {
	path, ok := FindProjectFile(dir)
	if !ok {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return Config{}, "", err
		}

		return DefaultConfig(), abs, nil
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, filepath.Dir(path), nil
}

package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fern/ast"
)

// stubParser is a minimal front end for orchestrator tests: each file parses
// to a single class named after the file.
type stubParser struct {
	failOn string
}

func (p stubParser) ParseFile(path string, src []byte) (*ast.File, error) {
	if path == p.failOn {
		return nil, &ast.ParseError{Path: path, Message: "unexpected token"}
	}

	name := strings.TrimSuffix(filepath.Base(path), ".fern")
	name = strings.ToUpper(name[:1]) + name[1:] + "View"

	return &ast.File{
		Path: path,
		Defs: []ast.Def{
			&ast.ClassDef{Name: name},
		},
	}, nil
}

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeSource(t, root, "main.fern", "import \"pages/home\"\n\nclass App {}\n")
	writeSource(t, root, "pages/home.fern", "import \"shared\"\n\nclass Home {}\n")
	writeSource(t, root, "shared.fern", "class Shared {}\n")
	return root
}

func buildProject(t *testing.T, root string, opts Options, parser ast.Parser) *Result {
	t.Helper()

	o, err := NewOrchestrator(root, DefaultConfig(), parser, opts)
	require.NoError(t, err)

	result, err := o.Build(context.Background(), "main.fern", nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// -----------------------------------------------------------------------------

func TestBuild_AnalyzesAllFilesInDependencyOrder(t *testing.T) {
	root := newTestProject(t)

	result := buildProject(t, root, Options{NoCache: true}, stubParser{})

	require.Len(t, result.Files, 3)
	assert.True(t, result.Ready)
	assert.Empty(t, result.Cycles)

	// Every file was analyzed fresh.
	for _, fr := range result.Files {
		assert.False(t, fr.FromCache, fr.Path)
	}

	// Dependency edges survived onto the IR.
	main := result.IRs["main.fern"]
	require.NotNil(t, main)
	assert.Equal(t, []string{"pages/home.fern"}, main.Dependencies)
}

func TestBuild_SecondBuildIsServedFromCache(t *testing.T) {
	root := newTestProject(t)

	first := buildProject(t, root, Options{}, stubParser{})
	require.True(t, first.Ready)

	second := buildProject(t, root, Options{}, stubParser{})

	assert.Equal(t, 3, second.CacheStats.Hits)
	assert.Equal(t, 0, second.CacheStats.Misses)
	for _, fr := range second.Files {
		assert.True(t, fr.FromCache, fr.Path)
	}

	// The cached IR is interchangeable with the freshly analyzed one.
	diff := cmp.Diff(first.IRs["shared.fern"], second.IRs["shared.fern"])
	assert.Empty(t, diff)
}

func TestBuild_ContentChangeForcesReanalysis(t *testing.T) {
	root := newTestProject(t)

	buildProject(t, root, Options{}, stubParser{})

	// A one-character change must invalidate exactly that file.
	writeSource(t, root, "shared.fern", "class Shared {} \n")

	second := buildProject(t, root, Options{}, stubParser{})

	byPath := make(map[string]FileReport)
	for _, fr := range second.Files {
		byPath[fr.Path] = fr
	}

	assert.False(t, byPath["shared.fern"].FromCache)
	assert.True(t, byPath["main.fern"].FromCache)
	assert.True(t, byPath["pages/home.fern"].FromCache)
	assert.Equal(t, 2, second.CacheStats.Hits)
}

func TestBuild_NoCacheOptionSkipsTheCache(t *testing.T) {
	root := newTestProject(t)

	buildProject(t, root, Options{}, stubParser{})
	second := buildProject(t, root, Options{NoCache: true}, stubParser{})

	for _, fr := range second.Files {
		assert.False(t, fr.FromCache, fr.Path)
	}
	assert.Equal(t, CacheStats{}, second.CacheStats)
}

func TestBuild_ParseFailureDoesNotAbortSiblings(t *testing.T) {
	root := newTestProject(t)

	o, err := NewOrchestrator(root, DefaultConfig(), stubParser{failOn: "pages/home.fern"}, Options{NoCache: true})
	require.NoError(t, err)

	result, buildErr := o.Build(context.Background(), "main.fern", nil)
	require.NotNil(t, result)

	// The failure surfaces as a build-level error and an unready result.
	require.Error(t, buildErr)
	assert.Contains(t, buildErr.Error(), "pages/home.fern")
	assert.False(t, result.Ready)

	// Sibling files still completed.
	require.Len(t, result.Files, 3)
	assert.NotNil(t, result.IRs["shared.fern"])
	assert.NotNil(t, result.IRs["main.fern"])
	assert.Nil(t, result.IRs["pages/home.fern"])
}

func TestBuild_ProgressStreamSeesPhases(t *testing.T) {
	root := newTestProject(t)

	o, err := NewOrchestrator(root, DefaultConfig(), stubParser{}, Options{NoCache: true})
	require.NoError(t, err)

	progress := NewProgressStream()
	events := progress.Subscribe()

	_, err = o.Build(context.Background(), "main.fern", progress)
	require.NoError(t, err)

	seen := make(map[Phase]bool)
	var last ProgressEvent
	for ev := range events {
		assert.Equal(t, progress.BuildID(), ev.BuildID)
		seen[ev.Phase] = true
		last = ev
	}

	assert.True(t, seen[PhaseStarting])
	assert.True(t, seen[PhaseDependencyResolution])
	assert.True(t, seen[PhaseTypeResolution])
	assert.True(t, seen[PhaseComplete])
	assert.Equal(t, float64(100), last.Percent)
}

func TestBuild_CorruptCacheEntryIsDiscarded(t *testing.T) {
	root := newTestProject(t)

	buildProject(t, root, Options{}, stubParser{})

	// Truncate every cache entry.
	cacheDir := filepath.Join(root, ".fern")
	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		require.NoError(t, os.WriteFile(filepath.Join(cacheDir, entry.Name()), []byte{0xDE, 0xAD}, 0o644))
	}

	second := buildProject(t, root, Options{}, stubParser{})

	assert.True(t, second.Ready)
	assert.Equal(t, 0, second.CacheStats.Hits)
	assert.Equal(t, 3, second.CacheStats.Invalidations)
}

// -----------------------------------------------------------------------------

func TestConfig_LoadAndDefaults(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "fern.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"name = \"storefront\"\nmax_parallelism = 2\nstrict = true\n",
	), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.Name)
	assert.Equal(t, 2, cfg.MaxParallelism)
	assert.True(t, cfg.Strict)

	// Unset keys keep their defaults.
	assert.Equal(t, ".", cfg.SourceRoot)
	assert.Equal(t, ".fern", cfg.CacheDir)
}

func TestConfig_DiscoveryWalksUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "fern.toml"), []byte("name = \"nested\"\n"), 0o644))

	nested := filepath.Join(root, "src", "pages")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, projectRoot, err := DiscoverConfig(nested)
	require.NoError(t, err)

	assert.Equal(t, "nested", cfg.Name)
	assert.Equal(t, root, projectRoot)
}

func TestConfig_MissingProjectFileFallsBack(t *testing.T) {
	dir := t.TempDir()

	cfg, projectRoot, err := DiscoverConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Name, cfg.Name)
	assert.Equal(t, dir, projectRoot)
}

func TestHashBytes_IsStablePerContent(t *testing.T) {
	a := HashBytes([]byte("class App {}"))
	b := HashBytes([]byte("class App {}"))
	c := HashBytes([]byte("class App {} "))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

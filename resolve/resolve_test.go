package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanDirectives(t *testing.T) {
	src := []byte(`// @package: app
// Entry point.

import "widgets/button"
import "models/user" as user
export "theme"

class App {}
import "ignored/below/definitions"
`)

	imports, exports := ScanDirectives(src)

	assert.Equal(t, []string{"widgets/button", "models/user"}, imports)
	assert.Equal(t, []string{"theme"}, exports)
}

func TestBuild_WalksImportClosure(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "main.fern", "import \"widgets/button\"\n\nclass App {}\n")
	writeSource(t, root, "widgets/button.fern", "import \"theme\"\n\nclass Button {}\n")
	writeSource(t, root, "theme.fern", "class Theme {}\n")

	graph, err := NewGraphBuilder(root).Build("main.fern")
	require.NoError(t, err)

	assert.Equal(t, 3, graph.Len())

	node, ok := graph.Node("main.fern")
	require.True(t, ok)
	assert.Equal(t, []string{"widgets/button.fern"}, node.Deps)

	// Sibling imports resolve relative to the importing file's directory
	// first, then the project root.
	button, ok := graph.Node("widgets/button.fern")
	require.True(t, ok)
	assert.Equal(t, []string{"theme.fern"}, button.Deps)
}

func TestBuild_SkipsMissingAndEscapingTargets(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "main.fern", "import \"nonexistent\"\nimport \"../outside\"\n\nclass App {}\n")

	graph, err := NewGraphBuilder(root).Build("main.fern")
	require.NoError(t, err)

	node, ok := graph.Node("main.fern")
	require.True(t, ok)
	assert.Empty(t, node.Deps)
	assert.Equal(t, 1, graph.Len())
}

func TestBuild_ExportsAreDependencies(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "lib.fern", "export \"parts/header\"\n\nclass Lib {}\n")
	writeSource(t, root, "parts/header.fern", "class Header {}\n")

	graph, err := NewGraphBuilder(root).Build("lib.fern")
	require.NoError(t, err)

	node, ok := graph.Node("lib.fern")
	require.True(t, ok)
	assert.Equal(t, []string{"parts/header.fern"}, node.Deps)
}

func TestBuild_CyclicImportsStillProduceAGraph(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.fern", "import \"b\"\n\nclass A {}\n")
	writeSource(t, root, "b.fern", "import \"a\"\n\nclass B {}\n")

	graph, err := NewGraphBuilder(root).Build("a.fern")
	require.NoError(t, err)

	order, cycles := graph.BuildOrder()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a.fern", "b.fern"}, cycles[0].Paths)
	assert.Len(t, order, 2)
}

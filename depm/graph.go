package depm

import "sort"

// DepNode is a single file in the dependency graph.
type DepNode struct {
	// Path is the file's path relative to the project root.
	Path string

	// Deps are the paths of the files this file imports.
	Deps []string

	// Dependents are the paths of the files that import this file.
	Dependents []string
}

// Cycle is a set of files that mutually depend on each other.  The paths are
// stored in sorted order so each cycle has a canonical form.
type Cycle struct {
	Paths []string
}

// Graph is the project dependency graph.  Nodes are files; edges point from
// a file to the files it imports.
type Graph struct {
	nodes map[string]*DepNode

	// roots are the paths that traversal starts from, in insertion order.
	roots []string
}

// NewGraph creates a new, empty dependency graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*DepNode)}
}

// AddNode adds a file to the graph if it is not already present and returns
// its node.
func (g *Graph) AddNode(path string) *DepNode {
	if node, ok := g.nodes[path]; ok {
		return node
	}

	node := &DepNode{Path: path}
	g.nodes[path] = node
	g.roots = append(g.roots, path)
	return node
}

// AddEdge records that `from` imports `to`, creating either node as needed.
// Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	a := g.AddNode(from)
	b := g.AddNode(to)

	for _, dep := range a.Deps {
		if dep == to {
			return
		}
	}

	a.Deps = append(a.Deps, to)
	b.Dependents = append(b.Dependents, from)
}

// Node looks up a node by path.
func (g *Graph) Node(path string) (*DepNode, bool) {
	node, ok := g.nodes[path]
	return node, ok
}

// Len returns the number of files in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Paths returns all file paths in the graph in sorted order.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.nodes))
	for path := range g.nodes {
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths
}

// -----------------------------------------------------------------------------

// Visit colors used during the depth-first traversal: a white node has not
// been visited, a grey node is on the current traversal stack, and a black
// node is fully processed.
const (
	colorWhite = iota
	colorGrey
	colorBlack
)

// BuildOrder computes a dependency-first ordering of all files in the graph
// along with any import cycles it contains.
//
// The order is the post-order of a depth-first traversal: a file always
// appears after all of its acyclic dependencies.  Cycles do not abort the
// traversal.  When the walk reaches a file that is already on the traversal
// stack, the edge is treated as satisfied and the enclosing cycle is
// recorded.  Every file, cyclic or not, appears in the order exactly once,
// so a build can still process the whole project and report the cycles as
// issues rather than failing outright.
func (g *Graph) BuildOrder() ([]string, []Cycle) {
	t := &traversal{
		graph: g,
		color: make(map[string]int, len(g.nodes)),
		seen:  make(map[string]struct{}),
	}

	for _, root := range g.roots {
		t.visit(root)
	}

	return t.order, t.cycles
}

type traversal struct {
	graph *Graph
	color map[string]int

	// stack is the chain of grey nodes from the traversal root to the
	// node currently being visited.
	stack []string

	order  []string
	cycles []Cycle

	// seen deduplicates recorded cycles by their canonical form.
	seen map[string]struct{}
}

func (t *traversal) visit(path string) {
	switch t.color[path] {
	case colorBlack:
		return
	case colorGrey:
		// Back edge: everything on the stack from this node down is a
		// cycle.
		t.recordCycle(path)
		return
	}

	t.color[path] = colorGrey
	t.stack = append(t.stack, path)

	node := t.graph.nodes[path]
	for _, dep := range node.Deps {
		t.visit(dep)
	}

	t.stack = t.stack[:len(t.stack)-1]
	t.color[path] = colorBlack
	t.order = append(t.order, path)
}

func (t *traversal) recordCycle(start string) {
	var paths []string
	for i := len(t.stack) - 1; i >= 0; i-- {
		paths = append(paths, t.stack[i])
		if t.stack[i] == start {
			break
		}
	}

	sort.Strings(paths)

	key := ""
	for _, p := range paths {
		key += p + "\x00"
	}
	if _, ok := t.seen[key]; ok {
		return
	}

	t.seen[key] = struct{}{}
	t.cycles = append(t.cycles, Cycle{Paths: paths})
}

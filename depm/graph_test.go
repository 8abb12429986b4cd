package depm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf(order []string, path string) int {
	for i, p := range order {
		if p == path {
			return i
		}
	}
	return -1
}

func TestBuildOrder_DependenciesFirst(t *testing.T) {
	g := NewGraph()

	// main -> a -> c, main -> b -> c
	g.AddEdge("main.fern", "a.fern")
	g.AddEdge("main.fern", "b.fern")
	g.AddEdge("a.fern", "c.fern")
	g.AddEdge("b.fern", "c.fern")

	order, cycles := g.BuildOrder()

	assert.Empty(t, cycles)
	require.Len(t, order, 4)

	assert.Less(t, indexOf(order, "c.fern"), indexOf(order, "a.fern"))
	assert.Less(t, indexOf(order, "c.fern"), indexOf(order, "b.fern"))
	assert.Less(t, indexOf(order, "a.fern"), indexOf(order, "main.fern"))
	assert.Less(t, indexOf(order, "b.fern"), indexOf(order, "main.fern"))
}

func TestBuildOrder_TwoFileCycle(t *testing.T) {
	g := NewGraph()

	// a and b import each other; b also imports c, which is acyclic.
	g.AddEdge("a.fern", "b.fern")
	g.AddEdge("b.fern", "a.fern")
	g.AddEdge("b.fern", "c.fern")

	order, cycles := g.BuildOrder()

	// Exactly one cycle, containing exactly a and b.
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a.fern", "b.fern"}, cycles[0].Paths)

	// Both cycle members still appear in the order exactly once.
	require.Len(t, order, 3)
	assert.Equal(t, 1, countOf(order, "a.fern"))
	assert.Equal(t, 1, countOf(order, "b.fern"))

	// The acyclic edge b -> c is still honored.
	assert.Less(t, indexOf(order, "c.fern"), indexOf(order, "b.fern"))
}

func countOf(order []string, path string) int {
	n := 0
	for _, p := range order {
		if p == path {
			n++
		}
	}
	return n
}

func TestBuildOrder_SelfImport(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a.fern", "a.fern")

	order, cycles := g.BuildOrder()

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a.fern"}, cycles[0].Paths)
	assert.Equal(t, []string{"a.fern"}, order)
}

func TestBuildOrder_CycleReportedOnce(t *testing.T) {
	g := NewGraph()

	// Two distinct entry points into the same a <-> b cycle.
	g.AddEdge("x.fern", "a.fern")
	g.AddEdge("y.fern", "b.fern")
	g.AddEdge("a.fern", "b.fern")
	g.AddEdge("b.fern", "a.fern")

	_, cycles := g.BuildOrder()

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a.fern", "b.fern"}, cycles[0].Paths)
}

func TestAddEdge_IgnoresDuplicates(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a.fern", "b.fern")
	g.AddEdge("a.fern", "b.fern")

	node, ok := g.Node("a.fern")
	require.True(t, ok)
	assert.Equal(t, []string{"b.fern"}, node.Deps)

	dep, ok := g.Node("b.fern")
	require.True(t, ok)
	assert.Equal(t, []string{"a.fern"}, dep.Dependents)
}

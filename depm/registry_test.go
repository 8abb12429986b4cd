package depm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fern/common"
	"fern/ir"
	"fern/report"
	"fern/types"
)

func classDecl(name string) *ir.ClassDecl {
	return &ir.ClassDecl{
		NodeBase: ir.NewNodeBase(ir.NodeID{File: "t.fern", Num: 0}, report.NoLoc),
		Name:     name,
		Sym: &common.Symbol{
			Name: name,
			File: "t.fern",
			Type: &types.ClassRef{Name: name},
			Kind: common.SymClass,
		},
	}
}

func TestRegistry_DefineAndLookup(t *testing.T) {
	reg := NewRegistry()

	require.True(t, reg.DefineClass(classDecl("Button")))

	cd, ok := reg.LookupClass("Button")
	require.True(t, ok)
	assert.Equal(t, "Button", cd.Name)

	sym, ok := reg.LookupSymbol("Button")
	require.True(t, ok)
	assert.Equal(t, common.SymClass, sym.Kind)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()

	require.True(t, reg.DefineClass(classDecl("Button")))
	assert.False(t, reg.DefineClass(classDecl("Button")))
}

func TestRegistry_MergeFile(t *testing.T) {
	reg := NewRegistry()

	f := &ir.FileIR{
		Path:    "widgets.fern",
		Classes: []*ir.ClassDecl{classDecl("Button"), classDecl("Label")},
	}
	reg.MergeFile(f)

	_, ok := reg.LookupClass("Button")
	assert.True(t, ok)
	_, ok = reg.LookupClass("Label")
	assert.True(t, ok)
}

func TestRegistry_BuiltTracking(t *testing.T) {
	reg := NewRegistry()

	assert.False(t, reg.IsBuilt("a.fern"))
	reg.MarkBuilt("a.fern")
	assert.True(t, reg.IsBuilt("a.fern"))
	assert.Equal(t, 1, reg.BuiltCount())
}

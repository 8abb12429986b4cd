package ir

import (
	"fmt"

	"fern/report"
)

// NodeID is the process-unique, stable identity of an IR node.  IDs are
// allocated by a per-file monotonically increasing counter namespaced by the
// file path, so two nodes from different files can never collide.
type NodeID struct {
	// The path of the file the node belongs to.
	File string

	// The per-file node number.
	Num uint32
}

func (id NodeID) String() string {
	return fmt.Sprintf("%s#%d", id.File, id.Num)
}

// IDAllocator hands out node IDs for a single file.  It is not safe for
// concurrent use: each file's declaration extraction owns its allocator.
type IDAllocator struct {
	file string
	next uint32
}

// NewIDAllocator creates an ID allocator namespaced by the given file path.
func NewIDAllocator(file string) *IDAllocator {
	return &IDAllocator{file: file}
}

// Alloc returns the next node ID.
func (a *IDAllocator) Alloc() NodeID {
	id := NodeID{File: a.file, Num: a.next}
	a.next++
	return id
}

// Count returns how many IDs have been allocated so far.
func (a *IDAllocator) Count() uint32 {
	return a.next
}

// -----------------------------------------------------------------------------

// Metadata carries opaque key-value annotations attached to a node by later
// passes.  Attaching metadata never mutates any other field of the node.
type Metadata map[string]string

// Node is the abstract interface for all IR nodes.  Concrete IR nodes are
// immutable value objects: a pass that needs to change a node produces a new
// node, sharing unchanged children structurally.  The only in-place
// annotation points are metadata and the expression type slot, each written
// exactly once by its owning pass.
type Node interface {
	// ID returns the node's stable identity.
	ID() NodeID

	// Loc returns the source location of the node.
	Loc() report.SourceLoc

	// Meta returns the node's metadata annotations.  May be nil.
	Meta() Metadata
}

// NodeBase is a utility base struct for all IR nodes.
type NodeBase struct {
	// The node's identity.
	Ident NodeID

	// The source location of the node.
	Pos report.SourceLoc

	// The metadata annotations attached to the node.  Nil until the first
	// annotation is attached.
	Annots Metadata
}

// NewNodeBase creates a new node base with the given identity and location.
func NewNodeBase(id NodeID, loc report.SourceLoc) NodeBase {
	return NodeBase{Ident: id, Pos: loc}
}

func (nb *NodeBase) ID() NodeID           { return nb.Ident }
func (nb *NodeBase) Loc() report.SourceLoc { return nb.Pos }
func (nb *NodeBase) Meta() Metadata       { return nb.Annots }

// Annotate attaches a metadata annotation to the node.
func (nb *NodeBase) Annotate(key, value string) {
	if nb.Annots == nil {
		nb.Annots = make(Metadata)
	}

	nb.Annots[key] = value
}

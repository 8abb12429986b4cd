package ast

import (
	"fmt"

	"fern/report"
)

// Node is the abstract interface for all syntax-tree nodes.  The syntax tree
// is the hand-off format of the external text parser: the analysis pipeline
// consumes it and never re-reads source text.
type Node interface {
	// The source location the node spans.
	Span() report.SourceLoc
}

// NodeBase is a utility base struct for all syntax-tree nodes.
type NodeBase struct {
	// The location over which the node occurs.
	span report.SourceLoc
}

// NewNodeBase creates a new node base with the given location.
func NewNodeBase(span report.SourceLoc) NodeBase {
	return NodeBase{span: span}
}

// NewNodeBaseOver creates a new node base spanning over two locations.
func NewNodeBaseOver(start, end report.SourceLoc) NodeBase {
	return NodeBase{span: report.LocOver(start, end)}
}

func (nb NodeBase) Span() report.SourceLoc {
	return nb.span
}

// -----------------------------------------------------------------------------

// File is the syntax tree of one parsed source file.
type File struct {
	// The path of the source file.
	Path string

	// The import and export directives at the top of the file, in order.
	Directives []*Directive

	// The top-level definitions of the file, in order.
	Defs []Def

	// Free-form file metadata annotations scanned from the file header.
	Metadata map[string]string
}

// Directive is an import or export directive.
type Directive struct {
	NodeBase

	// The directive kind: import or export.
	Kind DirectiveKind

	// The raw target path as written in source.
	Path string

	// The optional alias an import is bound to.  Empty for exports.
	Alias string
}

// DirectiveKind enumerates the kinds of file directives.
type DirectiveKind int

const (
	DirImport DirectiveKind = iota
	DirExport
)

// -----------------------------------------------------------------------------

// TypeName is a syntactic type annotation: a name, optional type arguments,
// and an optional nullability marker.  A nil *TypeName means the annotation
// was omitted and the type must be inferred.
type TypeName struct {
	NodeBase

	// The written type name.
	Name string

	// The type arguments, if any.
	Args []*TypeName

	// Whether the annotation carries a nullability marker.
	Nullable bool
}

func (tn *TypeName) String() string {
	s := tn.Name
	if len(tn.Args) > 0 {
		s += "<"
		for i, arg := range tn.Args {
			s += arg.String()
			if i < len(tn.Args)-1 {
				s += ", "
			}
		}
		s += ">"
	}

	if tn.Nullable {
		s += "?"
	}

	return s
}

// -----------------------------------------------------------------------------

// Parser is the interface boundary to the external text parser.  The front
// end assumes a parser exists and never implements one: parse failures are
// fatal for the file being parsed only.
type Parser interface {
	// ParseFile parses the source bytes of the file at the given path into a
	// syntax tree.
	ParseFile(path string, src []byte) (*File, error)
}

// ParseError is the error the external parser reports for unparseable input.
type ParseError struct {
	// The path of the unparseable file.
	Path string

	// Where parsing failed.
	Loc report.SourceLoc

	// The parser's message.
	Message string
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: parse error: %s", pe.Path, pe.Loc.Line+1, pe.Loc.Col+1, pe.Message)
}

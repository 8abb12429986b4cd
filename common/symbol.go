package common

import (
	"fern/report"
	"fern/types"
)

// Symbol represents a semantic symbol: a named value or declaration.  Symbols
// are created by declaration extraction and shared by reference: every
// identifier that resolves to a declaration points at the same symbol.
type Symbol struct {
	// The name of the symbol.
	Name string

	// The path of the file which declares this symbol.
	File string

	// Where the symbol was declared.
	DefLoc report.SourceLoc

	// The type of the value stored in the symbol.
	Type types.Type

	// The symbol's kind: what kind of thing this symbol represents.  This
	// must be one of the enumerated symbol kinds.
	Kind SymbolKind

	// The symbol's visibility outside its declaring scope.
	Visibility Visibility

	// The declaration modifiers applied to the symbol.
	Modifiers Modifiers

	// Whether or not the symbol was actually used.
	Used bool
}

// SymbolKind enumerates the different kinds of symbols.
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymParameter
	SymField
	SymFunc
	SymMethod
	SymClass
)

func (sk SymbolKind) String() string {
	switch sk {
	case SymVariable:
		return "variable"
	case SymParameter:
		return "parameter"
	case SymField:
		return "field"
	case SymFunc:
		return "function"
	case SymMethod:
		return "method"
	default:
		return "class"
	}
}

// -----------------------------------------------------------------------------

// Visibility enumerates the visibility modifiers a declaration may carry.
type Visibility int

const (
	VisPublic Visibility = iota
	VisPrivate
	VisProtected
	VisInternal
)

func (v Visibility) String() string {
	switch v {
	case VisPublic:
		return "public"
	case VisPrivate:
		return "private"
	case VisProtected:
		return "protected"
	default:
		return "internal"
	}
}

// -----------------------------------------------------------------------------

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	ModFinal Modifiers = 1 << iota
	ModConst
	ModLate
	ModStatic
	ModAbstract
	ModRequired
	ModNamed
	ModOptional
)

// Has returns whether the set contains every one of the given modifiers.
func (m Modifiers) Has(mods Modifiers) bool {
	return m&mods == mods
}

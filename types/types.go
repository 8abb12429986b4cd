package types

import "strings"

// Type is the parent interface for all types in the Fern IR.  The type grammar
// is closed: every type is one of the variants defined in this file.  Types
// are immutable value objects and may be freely shared between IR nodes.
type Type interface {
	// Repr returns a representative string of the type for purposes of issue
	// reporting.
	Repr() string

	// equals is the internal, variant-specific implementation of Equals.  It
	// should NEVER be called directly except by Equals: it does not handle
	// special cases like nil operands.
	equals(other Type) bool
}

// -----------------------------------------------------------------------------

// PrimType represents a primitive type.  It should be one of the enumerated
// primitive types.
type PrimType int

// Enumeration of the different primitive types.
const (
	PrimInt PrimType = iota
	PrimFloat
	PrimBool
	PrimString
	PrimVoid
	PrimDynamic
	PrimNever
)

func (pt PrimType) Repr() string {
	switch pt {
	case PrimInt:
		return "int"
	case PrimFloat:
		return "float"
	case PrimBool:
		return "bool"
	case PrimString:
		return "string"
	case PrimVoid:
		return "void"
	case PrimDynamic:
		return "dynamic"
	default:
		// PrimNever
		return "never"
	}
}

func (pt PrimType) equals(other Type) bool {
	if opt, ok := other.(PrimType); ok {
		return pt == opt
	}

	return false
}

// -----------------------------------------------------------------------------

// ClassRef represents a reference to a declared class by qualified name.
type ClassRef struct {
	// The qualified name of the referenced class.
	Name string

	// The type arguments the class is instantiated with.  Empty for
	// non-generic classes.
	TypeArgs []Type

	// Whether the referenced class is abstract.
	Abstract bool
}

func (cr *ClassRef) Repr() string {
	if len(cr.TypeArgs) == 0 {
		return cr.Name
	}

	sb := strings.Builder{}
	sb.WriteString(cr.Name)
	sb.WriteRune('<')

	for i, arg := range cr.TypeArgs {
		sb.WriteString(arg.Repr())

		if i < len(cr.TypeArgs)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteRune('>')
	return sb.String()
}

func (cr *ClassRef) equals(other Type) bool {
	if ocr, ok := other.(*ClassRef); ok {
		if cr.Name != ocr.Name || len(cr.TypeArgs) != len(ocr.TypeArgs) {
			return false
		}

		for i, arg := range cr.TypeArgs {
			if !Equals(arg, ocr.TypeArgs[i]) {
				return false
			}
		}

		return true
	}

	return false
}

// -----------------------------------------------------------------------------

// GenericType represents a generic type: a base type parameterized over a list
// of type parameters and instantiated with type arguments.
type GenericType struct {
	// The base type being parameterized.
	Base Type

	// The type arguments of this instantiation.
	TypeArgs []Type

	// The names of the declared type parameters.
	TypeParams []string
}

func (gt *GenericType) Repr() string {
	sb := strings.Builder{}
	sb.WriteString(gt.Base.Repr())
	sb.WriteRune('<')

	for i, arg := range gt.TypeArgs {
		sb.WriteString(arg.Repr())

		if i < len(gt.TypeArgs)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteRune('>')
	return sb.String()
}

func (gt *GenericType) equals(other Type) bool {
	if ogt, ok := other.(*GenericType); ok {
		if !Equals(gt.Base, ogt.Base) || len(gt.TypeArgs) != len(ogt.TypeArgs) {
			return false
		}

		for i, arg := range gt.TypeArgs {
			if !Equals(arg, ogt.TypeArgs[i]) {
				return false
			}
		}

		return true
	}

	return false
}

// -----------------------------------------------------------------------------

// Param represents a single parameter of a function signature.
type Param struct {
	// The name of the parameter.  May be empty for positional parameters.
	Name string

	// The type of the parameter.
	Type Type

	// Whether the parameter is optional.
	Optional bool

	// Whether the parameter is passed by name rather than position.
	Named bool

	// Whether a named parameter must be supplied at every call site.
	Required bool
}

// FuncSig represents a function signature.
type FuncSig struct {
	// The ordered parameters of the function.
	Params []Param

	// The return type of the function.
	ReturnType Type

	// The names of the declared type parameters.  Empty for non-generic
	// functions.
	TypeParams []string
}

func (fs *FuncSig) Repr() string {
	sb := strings.Builder{}
	sb.WriteRune('(')

	for i, param := range fs.Params {
		sb.WriteString(param.Type.Repr())

		if i < len(fs.Params)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteString(") -> ")
	sb.WriteString(fs.ReturnType.Repr())

	return sb.String()
}

func (fs *FuncSig) equals(other Type) bool {
	if ofs, ok := other.(*FuncSig); ok {
		if len(fs.Params) != len(ofs.Params) {
			return false
		}

		for i, param := range fs.Params {
			oparam := ofs.Params[i]

			if param.Named != oparam.Named || param.Optional != oparam.Optional {
				return false
			}

			if !Equals(param.Type, oparam.Type) {
				return false
			}
		}

		return Equals(fs.ReturnType, ofs.ReturnType)
	}

	return false
}

// -----------------------------------------------------------------------------

// NullableType represents a nullable wrapping of exactly one non-nullable
// inner type.  NullableType values must only ever be created through
// NewNullable which enforces the flattening invariant: a nullable may never
// wrap another nullable.
type NullableType struct {
	// The wrapped inner type.  Never itself a NullableType.
	Inner Type
}

// NewNullable creates a nullable wrapping of the given type.  Nested
// nullability is flattened on construction: NewNullable of an already
// nullable type returns an equivalent single wrapping.
func NewNullable(inner Type) *NullableType {
	for {
		if nt, ok := inner.(*NullableType); ok {
			inner = nt.Inner
		} else {
			break
		}
	}

	return &NullableType{Inner: inner}
}

func (nt *NullableType) Repr() string {
	return nt.Inner.Repr() + "?"
}

func (nt *NullableType) equals(other Type) bool {
	if ont, ok := other.(*NullableType); ok {
		return Equals(nt.Inner, ont.Inner)
	}

	return false
}

// -----------------------------------------------------------------------------

// UnresolvedType is a placeholder for a type whose name could not be resolved
// to a declaration.  It carries the diagnostic history of every resolution
// attempt made so failures stay visible to later passes instead of silently
// degrading to dynamic.
type UnresolvedType struct {
	// The name that failed to resolve.
	Name string

	// A hint about where the name was expected to come from.
	Hint string

	// The resolution attempts made, in order.
	Attempts []string
}

func (ut *UnresolvedType) Repr() string {
	return "<unresolved: " + ut.Name + ">"
}

// equals for unresolved types compares by name only: two unresolved
// references to the same name denote the same (unknown) type.
func (ut *UnresolvedType) equals(other Type) bool {
	if out, ok := other.(*UnresolvedType); ok {
		return ut.Name == out.Name
	}

	return false
}

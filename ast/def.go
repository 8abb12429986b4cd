package ast

import "fern/common"

// Def is the interface for all top-level definitions.
type Def interface {
	Node

	// DefName returns the declared name of the definition.
	DefName() string

	defNode()
}

// -----------------------------------------------------------------------------

// ClassDef represents a class definition, including widget classes.
type ClassDef struct {
	NodeBase

	// The declared name of the class.
	Name string

	// The optional superclass annotation.
	Superclass *TypeName

	// Whether the class is declared abstract.
	Abstract bool

	// The names of the declared type parameters.
	TypeParams []string

	// The declared visibility of the class.
	Visibility common.Visibility

	// The documentation comment attached to the class, if any.
	Doc string

	// The source annotations attached to the class, if any.
	Annotations []string

	// The field definitions of the class, in order.
	Fields []*FieldDef

	// The method definitions of the class, in order.
	Methods []*FuncDef
}

func (cd *ClassDef) DefName() string { return cd.Name }
func (cd *ClassDef) defNode()        {}

// -----------------------------------------------------------------------------

// FuncDef represents a free function or method definition.
type FuncDef struct {
	NodeBase

	// The declared name of the function.
	Name string

	// The ordered parameter definitions.
	Params []*ParamDef

	// The optional return type annotation.  Nil means void.
	ReturnType *TypeName

	// The function body.  Nil for abstract methods and declarations without
	// bodies.
	Body *BlockStmt

	// The names of the declared type parameters.
	TypeParams []string

	// Whether the method is declared abstract.  Only meaningful on methods.
	Abstract bool

	// Whether the method is declared static.  Only meaningful on methods.
	Static bool

	// Whether the function suspends (async-style body).
	Async bool

	// The declared visibility of the function.
	Visibility common.Visibility

	// The documentation comment attached to the function, if any.
	Doc string

	// The source annotations attached to the function, if any.
	Annotations []string
}

func (fd *FuncDef) DefName() string { return fd.Name }
func (fd *FuncDef) defNode()        {}

// -----------------------------------------------------------------------------

// FieldDef represents a field definition within a class.
type FieldDef struct {
	NodeBase

	// The declared name of the field.
	Name string

	// The optional type annotation.
	Type *TypeName

	// The optional initializer expression.
	Init Expr

	// The declaration modifiers applied to the field.
	Mods common.Modifiers

	// The declared visibility of the field.
	Visibility common.Visibility

	// The documentation comment attached to the field, if any.
	Doc string
}

// ParamDef represents a single parameter definition.
type ParamDef struct {
	NodeBase

	// The declared name of the parameter.
	Name string

	// The optional type annotation.
	Type *TypeName

	// The optional default value expression.
	Default Expr

	// The declaration modifiers applied to the parameter: named, optional,
	// and required are the meaningful ones here.
	Mods common.Modifiers
}

// VarDef represents a local variable definition.  It appears inside variable
// declaration statements and foreach headers.
type VarDef struct {
	NodeBase

	// The declared name of the variable.
	Name string

	// The optional type annotation.
	Type *TypeName

	// The optional initializer expression.
	Init Expr

	// The declaration modifiers applied to the variable.
	Mods common.Modifiers
}

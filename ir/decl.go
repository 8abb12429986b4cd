package ir

import (
	"fern/common"
	"fern/types"
)

// Decl is the interface for all IR declaration nodes.
type Decl interface {
	Node

	// Kind returns the declaration's variant tag.
	Kind() DeclKind

	// DeclName returns the declared name.
	DeclName() string
}

// DeclKind enumerates the closed set of declaration variants.  The numeric
// values are stable: they double as variant tags in the binary cache format.
type DeclKind uint8

const (
	DeclClass DeclKind = iota
	DeclFunc
	DeclField
	DeclParam
	DeclVar
)

// WidgetKind classifies a class declaration's role in the widget model.
type WidgetKind uint8

const (
	WidgetNone WidgetKind = iota
	WidgetStateless
	WidgetStateful
	WidgetState
)

// -----------------------------------------------------------------------------

// ClassDecl represents a class declaration, including widget classes.
type ClassDecl struct {
	NodeBase

	// The declared name of the class.
	Name string

	// The fully qualified name: the file's package path plus the class name.
	QualifiedName string

	// The resolved superclass type; nil when the class extends Object.
	Superclass types.Type

	// Whether the class is declared abstract.
	Abstract bool

	// The class's role in the widget model.
	WidgetKind WidgetKind

	// The names of the declared type parameters.
	TypeParams []string

	// The declared visibility of the class.
	Visibility common.Visibility

	// The documentation comment attached to the class, if any.
	Doc string

	// The source annotations attached to the class, if any.
	Annotations []string

	// The field declarations of the class, in order.
	Fields []*FieldDecl

	// The method declarations of the class, in order.
	Methods []*FuncDecl

	// The symbol declared by this class.
	Sym *common.Symbol
}

func (cd *ClassDecl) Kind() DeclKind   { return DeclClass }
func (cd *ClassDecl) DeclName() string { return cd.Name }

// Method returns the class's method with the given name, or nil.
func (cd *ClassDecl) Method(name string) *FuncDecl {
	for _, m := range cd.Methods {
		if m.Name == name {
			return m
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// FuncDecl represents a free function or method declaration.
type FuncDecl struct {
	NodeBase

	// The declared name of the function.
	Name string

	// The name of the owning class for methods; empty for free functions.
	Owner string

	// The ordered parameter declarations.
	Params []*ParamDecl

	// The function's signature.  The signature's parameter list mirrors
	// Params.
	Sig *types.FuncSig

	// The function body.  Nil for abstract methods.
	Body *Block

	// Whether the method is declared abstract.
	Abstract bool

	// Whether the method is declared static.
	Static bool

	// Whether the function suspends (async-style body).
	Async bool

	// The declared visibility of the function.
	Visibility common.Visibility

	// The documentation comment attached to the function, if any.
	Doc string

	// The source annotations attached to the function, if any.
	Annotations []string

	// The symbol declared by this function.
	Sym *common.Symbol
}

func (fd *FuncDecl) Kind() DeclKind   { return DeclFunc }
func (fd *FuncDecl) DeclName() string { return fd.Name }

// -----------------------------------------------------------------------------

// FieldDecl represents a field declaration within a class.
type FieldDecl struct {
	NodeBase

	// The declared name of the field.
	Name string

	// The field's type: the declared annotation, or the inferred initializer
	// type when no annotation was written.
	Type types.Type

	// The optional initializer expression.
	Init Expr

	// The declaration modifiers applied to the field.
	Mods common.Modifiers

	// The declared visibility of the field.
	Visibility common.Visibility

	// The documentation comment attached to the field, if any.
	Doc string

	// The symbol declared by this field.
	Sym *common.Symbol
}

func (fd *FieldDecl) Kind() DeclKind   { return DeclField }
func (fd *FieldDecl) DeclName() string { return fd.Name }

// ParamDecl represents a single parameter declaration.
type ParamDecl struct {
	NodeBase

	// The declared name of the parameter.
	Name string

	// The parameter's type.
	Type types.Type

	// The optional default value expression.
	Default Expr

	// The declaration modifiers applied to the parameter.
	Mods common.Modifiers

	// The symbol declared by this parameter.
	Sym *common.Symbol
}

func (pd *ParamDecl) Kind() DeclKind   { return DeclParam }
func (pd *ParamDecl) DeclName() string { return pd.Name }

// VarDecl represents a local variable declaration.
type VarDecl struct {
	NodeBase

	// The declared name of the variable.
	Name string

	// The variable's type: the declared annotation, or the inferred
	// initializer type when no annotation was written.
	Type types.Type

	// The optional initializer expression.
	Init Expr

	// The declaration modifiers applied to the variable.
	Mods common.Modifiers

	// The symbol declared by this variable.
	Sym *common.Symbol
}

func (vd *VarDecl) Kind() DeclKind   { return DeclVar }
func (vd *VarDecl) DeclName() string { return vd.Name }

package ir

import (
	"fern/common"
	"fern/types"
)

// Expr is the interface for all IR expression nodes.  Every expression is
// assigned a type by the type-inference pass; before inference runs, Type
// returns nil.
type Expr interface {
	Node

	// Kind returns the expression's variant tag.  The set of kinds is closed:
	// consumers switch exhaustively over it.
	Kind() ExprKind

	// Type returns the yielded type of the expression.
	Type() types.Type
}

// ExprKind enumerates the closed set of expression variants.  The numeric
// values are stable: they double as variant tags in the binary cache format.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprIdent
	ExprProperty
	ExprIndex
	ExprUnary
	ExprBinary
	ExprAssign
	ExprCond
	ExprCall
	ExprLambda
	ExprAwait
	ExprCast
	ExprTypeTest
)

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	NodeBase

	// The yielded type of the expression, assigned once by type inference.
	Ty types.Type
}

func (eb *ExprBase) Type() types.Type { return eb.Ty }

// SetType assigns the expression's type.  It is called exactly once per
// expression by the type-inference pass.
func (eb *ExprBase) SetType(t types.Type) { eb.Ty = t }

// -----------------------------------------------------------------------------

// LitKind enumerates the kinds of literal expressions.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
	LitNull
)

// Literal represents a literal value.
type Literal struct {
	ExprBase

	// The literal kind.
	LitKind LitKind

	// The literal's source text, unescaped for strings.
	Value string
}

// IdentRef represents an identifier reference.  Symbol resolution either
// binds Sym to a concrete declaration or leaves it nil, in which case the
// expression's type is an UnresolvedType carrying the resolution history.
type IdentRef struct {
	ExprBase

	// The referenced name.
	Name string

	// The resolved symbol; nil when resolution failed.
	Sym *common.Symbol
}

// PropertyAccess represents a property access: `recv.name`.
type PropertyAccess struct {
	ExprBase

	Recv Expr
	Name string
}

// IndexAccess represents an index access: `recv[index]`.
type IndexAccess struct {
	ExprBase

	Recv  Expr
	Index Expr
}

// -----------------------------------------------------------------------------

// UnaryOp represents a unary operator application.
type UnaryOp struct {
	ExprBase

	Op      string
	Operand Expr
}

// BinaryOp represents a binary operator application.
type BinaryOp struct {
	ExprBase

	Op       string
	Lhs, Rhs Expr
}

// Assign represents a plain or compound assignment.
type Assign struct {
	ExprBase

	// The assignment target.
	Target Expr

	// The compound operator spelling, empty for plain assignment.
	Op string

	// The assigned value.
	Value Expr
}

// Conditional represents a ternary conditional expression.
type Conditional struct {
	ExprBase

	Cond, Then, Else Expr
}

// -----------------------------------------------------------------------------

// CallKind enumerates the three kinds of calls.
type CallKind uint8

const (
	CallFunction CallKind = iota
	CallMethod
	CallConstructor
)

// Arg is a single call argument, optionally named.
type Arg struct {
	// The argument name for named arguments; empty for positional ones.
	Name string

	// The argument value.
	Value Expr
}

// Call represents a call of one of three kinds: a free function call, a
// method call on a receiver, or a constructor invocation.
type Call struct {
	ExprBase

	// The call kind.
	CallKind CallKind

	// The receiver expression for method calls; nil otherwise.
	Recv Expr

	// The called name: the function name, the method name, or the constructed
	// class name.
	Name string

	// The call arguments, in source order.
	Args []Arg

	// The resolved callee symbol; nil when resolution failed or the callee is
	// not a simple name.
	Sym *common.Symbol
}

// Lambda represents an anonymous function expression.
type Lambda struct {
	ExprBase

	// The ordered parameter declarations.
	Params []*ParamDecl

	// The block body; nil for expression-bodied lambdas.
	Body *Block

	// The expression body; nil for block-bodied lambdas.
	ExprBody Expr
}

// Await represents an await-style suspension of a computation.
type Await struct {
	ExprBase

	Operand Expr
}

// Cast represents an explicit type cast.  The destination type is stored as
// the expression's type; Target records the annotation as written.
type Cast struct {
	ExprBase

	Operand Expr
	Target  types.Type
}

// TypeTest represents a type test expression.
type TypeTest struct {
	ExprBase

	Operand Expr
	Target  types.Type
	Negated bool
}

func (l *Literal) Kind() ExprKind         { return ExprLiteral }
func (ir *IdentRef) Kind() ExprKind       { return ExprIdent }
func (pa *PropertyAccess) Kind() ExprKind { return ExprProperty }
func (ia *IndexAccess) Kind() ExprKind    { return ExprIndex }
func (uo *UnaryOp) Kind() ExprKind        { return ExprUnary }
func (bo *BinaryOp) Kind() ExprKind       { return ExprBinary }
func (a *Assign) Kind() ExprKind          { return ExprAssign }
func (c *Conditional) Kind() ExprKind     { return ExprCond }
func (c *Call) Kind() ExprKind            { return ExprCall }
func (l *Lambda) Kind() ExprKind          { return ExprLambda }
func (a *Await) Kind() ExprKind           { return ExprAwait }
func (c *Cast) Kind() ExprKind            { return ExprCast }
func (tt *TypeTest) Kind() ExprKind       { return ExprTypeTest }

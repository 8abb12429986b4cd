package ast

// Expr is the interface for all expression nodes.
type Expr interface {
	Node

	exprNode()
}

// -----------------------------------------------------------------------------

// LitKind enumerates the kinds of literal expressions.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
	LitNull
)

// LiteralExpr represents a literal value.
type LiteralExpr struct {
	NodeBase

	// The literal kind.
	Kind LitKind

	// The literal's source text, unescaped for strings.
	Value string
}

// IdentExpr represents a bare identifier reference.
type IdentExpr struct {
	NodeBase

	// The referenced name.
	Name string
}

// PropertyExpr represents a property access: `recv.name`.
type PropertyExpr struct {
	NodeBase

	Recv Expr
	Name string
}

// IndexExpr represents an index access: `recv[index]`.
type IndexExpr struct {
	NodeBase

	Recv  Expr
	Index Expr
}

// -----------------------------------------------------------------------------

// UnaryExpr represents a unary operator application.
type UnaryExpr struct {
	NodeBase

	// The operator's source spelling.
	Op string

	Operand Expr
}

// BinaryExpr represents a binary operator application.
type BinaryExpr struct {
	NodeBase

	// The operator's source spelling.
	Op string

	Lhs, Rhs Expr
}

// AssignExpr represents a plain or compound assignment.
type AssignExpr struct {
	NodeBase

	// The assignment target.
	Target Expr

	// The compound operator spelling, empty for plain assignment.
	Op string

	// The assigned value.
	Value Expr
}

// CondExpr represents a ternary conditional expression.
type CondExpr struct {
	NodeBase

	Cond, Then, Else Expr
}

// -----------------------------------------------------------------------------

// CallKind enumerates the three kinds of calls.
type CallKind int

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

// CallExpr represents a call of one of three kinds: a free function call, a
// method call on a receiver, or a constructor invocation.
type CallExpr struct {
	NodeBase

	// The call kind.
	Kind CallKind

	// The receiver expression for method calls; nil otherwise.
	Target Expr

	// The called name: the function name, the method name, or the constructed
	// class name.
	Name string

	// The call arguments, in source order.
	Args []Arg

	// The explicit type argument annotations, if any.
	TypeArgs []*TypeName
}

// LambdaExpr represents an anonymous function expression.
type LambdaExpr struct {
	NodeBase

	// The ordered parameter definitions.
	Params []*ParamDef

	// The block body; nil for expression-bodied lambdas.
	Body *BlockStmt

	// The expression body; nil for block-bodied lambdas.
	ExprBody Expr
}

// AwaitExpr represents an await-style suspension of a computation.
type AwaitExpr struct {
	NodeBase

	Operand Expr
}

// CastExpr represents an explicit type cast: `operand as T`.
type CastExpr struct {
	NodeBase

	Operand Expr
	Target  *TypeName
}

// TypeTestExpr represents a type test: `operand is T` or `operand is! T`.
type TypeTestExpr struct {
	NodeBase

	Operand Expr
	Target  *TypeName
	Negated bool
}

func (le *LiteralExpr) exprNode()  {}
func (ie *IdentExpr) exprNode()    {}
func (pe *PropertyExpr) exprNode() {}
func (ix *IndexExpr) exprNode()    {}
func (ue *UnaryExpr) exprNode()    {}
func (be *BinaryExpr) exprNode()   {}
func (ae *AssignExpr) exprNode()   {}
func (ce *CondExpr) exprNode()     {}
func (cl *CallExpr) exprNode()     {}
func (lm *LambdaExpr) exprNode()   {}
func (aw *AwaitExpr) exprNode()    {}
func (ca *CastExpr) exprNode()     {}
func (tt *TypeTestExpr) exprNode() {}

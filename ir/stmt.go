package ir

import "fern/report"

// Stmt is the interface for all IR statement nodes.
type Stmt interface {
	Node

	// Kind returns the statement's variant tag.  The set of kinds is closed:
	// consumers switch exhaustively over it.
	Kind() StmtKind

	// Usages returns the widget usages nested under this statement.  The list
	// is computed once by declaration extraction and cached on the node so
	// consumers never re-walk the subtree.
	Usages() []*WidgetUsage
}

// StmtKind enumerates the closed set of statement variants.  The numeric
// values are stable: they double as variant tags in the binary cache format.
type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtExpr
	StmtLocalVar
	StmtIf
	StmtFor
	StmtForEach
	StmtWhile
	StmtSwitch
	StmtTry
	StmtReturn
	StmtBreak
	StmtContinue
	StmtThrow
	StmtAssert
	StmtYield
	StmtLabeled
)

// WidgetUsage records one UI-node instantiation nested under a statement:
// which widget is constructed, where, and under what structural conditions.
type WidgetUsage struct {
	// The name of the instantiated widget class.
	Widget string

	// Where the instantiation occurs.
	Loc report.SourceLoc

	// Whether the instantiation sits under a conditional branch.
	Conditional bool

	// Whether the instantiation is generated by iteration.
	Iterated bool

	// Usages nested under this instantiation's arguments.
	Children []*WidgetUsage
}

// StmtBase is the base struct for all statements.
type StmtBase struct {
	NodeBase

	// The cached widget usages nested under the statement.
	NestedUsages []*WidgetUsage
}

func (sb *StmtBase) Usages() []*WidgetUsage { return sb.NestedUsages }

// SetUsages caches the statement's nested widget usages.  It is called
// exactly once per statement by declaration extraction.
func (sb *StmtBase) SetUsages(usages []*WidgetUsage) { sb.NestedUsages = usages }

// -----------------------------------------------------------------------------

// Block represents a braced sequence of statements.
type Block struct {
	StmtBase

	Stmts []Stmt
}

// ExprStmt represents an expression used in statement position.
type ExprStmt struct {
	StmtBase

	Expr Expr
}

// LocalVar represents a local variable declaration statement.
type LocalVar struct {
	StmtBase

	Decl *VarDecl
}

// -----------------------------------------------------------------------------

// If represents an if statement with an optional else branch.
type If struct {
	StmtBase

	Cond Expr
	Then *Block

	// The else branch: nil, a *Block, or a chained *If.
	Else Stmt
}

// For represents a classic three-clause for loop.  Any clause may be nil.
type For struct {
	StmtBase

	Init   Stmt
	Cond   Expr
	Update Expr
	Body   *Block
}

// ForEach represents iteration over a sequence.
type ForEach struct {
	StmtBase

	Var  *VarDecl
	Seq  Expr
	Body *Block
}

// While represents a while or do-while loop.
type While struct {
	StmtBase

	Cond Expr
	Body *Block

	// Whether the body runs before the first condition check (do-while).
	DoFirst bool
}

// SwitchCase is a single case of a switch statement.
type SwitchCase struct {
	Values []Expr
	Body   *Block
}

// Switch represents a switch statement.
type Switch struct {
	StmtBase

	Subject Expr
	Cases   []SwitchCase
	Default *Block
}

// Catch is a single catch clause of a try statement.
type Catch struct {
	Param *VarDecl
	Body  *Block
}

// Try represents a try statement.
type Try struct {
	StmtBase

	Body    *Block
	Catches []Catch
	Finally *Block
}

// -----------------------------------------------------------------------------

// Return represents a return statement with an optional value.
type Return struct {
	StmtBase

	Value Expr
}

// Break represents a break statement with an optional label.
type Break struct {
	StmtBase

	Label string
}

// Continue represents a continue statement with an optional label.
type Continue struct {
	StmtBase

	Label string
}

// Throw represents a throw statement.
type Throw struct {
	StmtBase

	Value Expr
}

// Assert represents an assert statement with an optional message.
type Assert struct {
	StmtBase

	Cond    Expr
	Message Expr
}

// Yield represents a yield or yield-each statement.
type Yield struct {
	StmtBase

	Value Expr
	Each  bool
}

// Labeled represents a labeled statement.
type Labeled struct {
	StmtBase

	Label string
	Stmt  Stmt
}

func (b *Block) Kind() StmtKind     { return StmtBlock }
func (es *ExprStmt) Kind() StmtKind { return StmtExpr }
func (lv *LocalVar) Kind() StmtKind { return StmtLocalVar }
func (i *If) Kind() StmtKind        { return StmtIf }
func (f *For) Kind() StmtKind       { return StmtFor }
func (fe *ForEach) Kind() StmtKind  { return StmtForEach }
func (w *While) Kind() StmtKind     { return StmtWhile }
func (s *Switch) Kind() StmtKind    { return StmtSwitch }
func (t *Try) Kind() StmtKind       { return StmtTry }
func (r *Return) Kind() StmtKind    { return StmtReturn }
func (b *Break) Kind() StmtKind     { return StmtBreak }
func (c *Continue) Kind() StmtKind  { return StmtContinue }
func (t *Throw) Kind() StmtKind     { return StmtThrow }
func (a *Assert) Kind() StmtKind    { return StmtAssert }
func (y *Yield) Kind() StmtKind     { return StmtYield }
func (l *Labeled) Kind() StmtKind   { return StmtLabeled }

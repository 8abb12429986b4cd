package ast

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node

	stmtNode()
}

// BlockStmt represents a braced sequence of statements.
type BlockStmt struct {
	NodeBase

	// The statements of the block, in order.
	Stmts []Stmt
}

// ExprStmt represents an expression used in statement position.
type ExprStmt struct {
	NodeBase

	// The wrapped expression.
	Expr Expr
}

// VarDeclStmt represents a local variable declaration statement.
type VarDeclStmt struct {
	NodeBase

	// The declared variable.
	Decl *VarDef
}

// -----------------------------------------------------------------------------

// IfStmt represents an if statement with an optional else branch.
type IfStmt struct {
	NodeBase

	// The branch condition.
	Cond Expr

	// The then branch.
	Then *BlockStmt

	// The else branch: nil, a *BlockStmt, or a chained *IfStmt.
	Else Stmt
}

// ForStmt represents a classic three-clause for loop.  Any of the clauses may
// be nil.
type ForStmt struct {
	NodeBase

	Init   Stmt
	Cond   Expr
	Update Expr
	Body   *BlockStmt
}

// ForEachStmt represents iteration over a sequence.
type ForEachStmt struct {
	NodeBase

	// The iteration variable.
	Var *VarDef

	// The sequence being iterated.
	Seq Expr

	// The loop body.
	Body *BlockStmt
}

// WhileStmt represents a while or do-while loop.
type WhileStmt struct {
	NodeBase

	// The loop condition.
	Cond Expr

	// The loop body.
	Body *BlockStmt

	// Whether the body runs before the first condition check (do-while).
	DoFirst bool
}

// SwitchStmt represents a switch statement.
type SwitchStmt struct {
	NodeBase

	// The subject expression being switched over.
	Subject Expr

	// The cases of the switch, in order.
	Cases []SwitchCase

	// The optional default block.
	Default *BlockStmt
}

// SwitchCase is a single case of a switch statement.
type SwitchCase struct {
	// The values matched by the case.
	Values []Expr

	// The case body.
	Body *BlockStmt
}

// TryStmt represents a try statement with catch clauses and an optional
// finally block.
type TryStmt struct {
	NodeBase

	Body    *BlockStmt
	Catches []CatchClause
	Finally *BlockStmt
}

// CatchClause is a single catch clause of a try statement.
type CatchClause struct {
	// The optional caught-error binding.
	Param *VarDef

	// The clause body.
	Body *BlockStmt
}

// -----------------------------------------------------------------------------

// ReturnStmt represents a return statement with an optional value.
type ReturnStmt struct {
	NodeBase

	Value Expr
}

// BreakStmt represents a break statement with an optional label.
type BreakStmt struct {
	NodeBase

	Label string
}

// ContinueStmt represents a continue statement with an optional label.
type ContinueStmt struct {
	NodeBase

	Label string
}

// ThrowStmt represents a throw statement.
type ThrowStmt struct {
	NodeBase

	Value Expr
}

// AssertStmt represents an assert statement with an optional message.
type AssertStmt struct {
	NodeBase

	Cond    Expr
	Message Expr
}

// YieldStmt represents a yield or yield-each statement.
type YieldStmt struct {
	NodeBase

	Value Expr
	Each  bool
}

// LabeledStmt represents a labeled statement.
type LabeledStmt struct {
	NodeBase

	Label string
	Stmt  Stmt
}

func (bs *BlockStmt) stmtNode()    {}
func (es *ExprStmt) stmtNode()     {}
func (vs *VarDeclStmt) stmtNode()  {}
func (is *IfStmt) stmtNode()       {}
func (fs *ForStmt) stmtNode()      {}
func (fe *ForEachStmt) stmtNode()  {}
func (ws *WhileStmt) stmtNode()    {}
func (ss *SwitchStmt) stmtNode()   {}
func (ts *TryStmt) stmtNode()      {}
func (rs *ReturnStmt) stmtNode()   {}
func (bs *BreakStmt) stmtNode()    {}
func (cs *ContinueStmt) stmtNode() {}
func (ts *ThrowStmt) stmtNode()    {}
func (as *AssertStmt) stmtNode()   {}
func (ys *YieldStmt) stmtNode()    {}
func (ls *LabeledStmt) stmtNode()  {}

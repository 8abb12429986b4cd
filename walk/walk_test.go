package walk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fern/ast"
	"fern/depm"
	"fern/ir"
	"fern/report"
	"fern/types"
)

// -----------------------------------------------------------------------------
// Syntax tree fixture helpers.

func tloc(n int) report.SourceLoc {
	return report.NewLoc("app.fern", n, 0, n*100, 10)
}

func nb(n int) ast.NodeBase {
	return ast.NewNodeBase(tloc(n))
}

func tn(name string) *ast.TypeName {
	return &ast.TypeName{NodeBase: nb(0), Name: name}
}

func lit(kind ast.LitKind, value string) *ast.LiteralExpr {
	return &ast.LiteralExpr{NodeBase: nb(1), Kind: kind, Value: value}
}

func ident(name string) *ast.IdentExpr {
	return &ast.IdentExpr{NodeBase: nb(1), Name: name}
}

func construct(name string, args ...ast.Expr) *ast.CallExpr {
	call := &ast.CallExpr{NodeBase: nb(2), Kind: ast.CallConstructor, Name: name}
	for _, arg := range args {
		call.Args = append(call.Args, ast.Arg{Value: arg})
	}

	return call
}

func block(line int, stmts ...ast.Stmt) *ast.BlockStmt {
	return &ast.BlockStmt{NodeBase: nb(line), Stmts: stmts}
}

func retStmt(line int, value ast.Expr) *ast.ReturnStmt {
	return &ast.ReturnStmt{NodeBase: nb(line), Value: value}
}

func exprStmt(line int, x ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{NodeBase: nb(line), Expr: x}
}

func varStmt(line int, name string, ty *ast.TypeName, init ast.Expr) *ast.VarDeclStmt {
	return &ast.VarDeclStmt{
		NodeBase: nb(line),
		Decl:     &ast.VarDef{NodeBase: nb(line), Name: name, Type: ty, Init: init},
	}
}

func fnDef(name string, ret *ast.TypeName, body *ast.BlockStmt, params ...*ast.ParamDef) *ast.FuncDef {
	return &ast.FuncDef{NodeBase: nb(3), Name: name, Params: params, ReturnType: ret, Body: body}
}

func analyze(t *testing.T, defs ...ast.Def) (*ir.FileIR, *depm.Registry) {
	t.Helper()

	reg := depm.NewRegistry()
	f := &ast.File{Path: "app.fern", Defs: defs}
	fir := NewPipeline(reg).AnalyzeFile(f, 0xABCD)

	require.NotNil(t, fir)
	return fir, reg
}

func issuesContaining(fir *ir.FileIR, substr string) []report.AnalysisIssue {
	var matched []report.AnalysisIssue
	for _, issue := range fir.Issues {
		if strings.Contains(issue.Message, substr) {
			matched = append(matched, issue)
		}
	}

	return matched
}

// -----------------------------------------------------------------------------
// Declaration extraction.

func TestExtract_WidgetClassification(t *testing.T) {
	buildBody := block(10, retStmt(11, construct("Container")))

	fir, reg := analyze(t,
		&ast.ClassDef{
			NodeBase:   nb(1),
			Name:       "SplashPage",
			Superclass: tn("StatelessWidget"),
			Methods:    []*ast.FuncDef{fnDef("build", tn("Widget"), buildBody)},
		},
		&ast.ClassDef{NodeBase: nb(20), Name: "AppTheme"},
	)

	require.Len(t, fir.Classes, 2)

	splash := fir.Class("SplashPage")
	require.NotNil(t, splash)
	assert.Equal(t, ir.WidgetStateless, splash.WidgetKind)
	assert.Equal(t, "app.SplashPage", splash.QualifiedName)

	theme := fir.Class("AppTheme")
	require.NotNil(t, theme)
	assert.Equal(t, ir.WidgetNone, theme.WidgetKind)

	// Both classes are visible in the project registry.
	_, ok := reg.LookupClass("SplashPage")
	assert.True(t, ok)
	_, ok = reg.LookupClass("AppTheme")
	assert.True(t, ok)
}

func TestExtract_NodeIDsAreUniquePerFile(t *testing.T) {
	fir, _ := analyze(t, fnDef("main", nil, block(1,
		varStmt(2, "x", nil, lit(ast.LitInt, "1")),
		exprStmt(3, ident("x")),
	)))

	assert.Greater(t, fir.NodeCount, uint32(3))

	// IDs are namespaced by the file path.
	assert.Equal(t, "app.fern", fir.Functions[0].ID().File)
}

func TestExtract_WidgetUsageFlags(t *testing.T) {
	// build() {
	//     if (flag) { Icon(); }
	//     foreach (item in items) { ListTile(); }
	//     return Column(Text());
	// }
	body := block(1,
		&ast.IfStmt{
			NodeBase: nb(2),
			Cond:     ident("flag"),
			Then:     block(2, exprStmt(3, construct("Icon"))),
		},
		&ast.ForEachStmt{
			NodeBase: nb(4),
			Var:      &ast.VarDef{NodeBase: nb(4), Name: "item"},
			Seq:      ident("items"),
			Body:     block(4, exprStmt(5, construct("ListTile"))),
		},
		retStmt(6, construct("Column", construct("Text"))),
	)

	fir, _ := analyze(t, fnDef("build", tn("Widget"), body))

	usages := fir.Functions[0].Body.Usages()
	byName := make(map[string]*ir.WidgetUsage)
	for _, u := range usages {
		byName[u.Widget] = u
	}

	require.Contains(t, byName, "Icon")
	assert.True(t, byName["Icon"].Conditional)
	assert.False(t, byName["Icon"].Iterated)

	require.Contains(t, byName, "ListTile")
	assert.True(t, byName["ListTile"].Iterated)

	require.Contains(t, byName, "Column")
	assert.False(t, byName["Column"].Conditional)

	// Text is a child of Column, not a top-level usage.
	assert.NotContains(t, byName, "Text")
	require.Len(t, byName["Column"].Children, 1)
	assert.Equal(t, "Text", byName["Column"].Children[0].Widget)
}

func TestExtract_DuplicateDefinition(t *testing.T) {
	fir, _ := analyze(t,
		fnDef("render", nil, block(1)),
		fnDef("render", nil, block(2)),
	)

	require.NotEmpty(t, issuesContaining(fir, "multiple definitions"))
	assert.Equal(t, 1, fir.ErrorCount())
}

// -----------------------------------------------------------------------------
// Symbol resolution.

func TestResolve_LocalsAndParams(t *testing.T) {
	param := &ast.ParamDef{NodeBase: nb(1), Name: "count", Type: tn("int")}
	body := block(1,
		varStmt(2, "doubled", nil, &ast.BinaryExpr{
			NodeBase: nb(2), Op: "*",
			Lhs: ident("count"),
			Rhs: lit(ast.LitInt, "2"),
		}),
		retStmt(3, ident("doubled")),
	)

	fir, _ := analyze(t, fnDef("scale", tn("int"), body, param))

	fn := fir.Functions[0]
	local := fn.Body.Stmts[0].(*ir.LocalVar)
	ret := fn.Body.Stmts[1].(*ir.Return)

	// The parameter reference is bound to the parameter's symbol.
	mul := local.Decl.Init.(*ir.BinaryOp)
	countRef := mul.Lhs.(*ir.IdentRef)
	require.NotNil(t, countRef.Sym)
	assert.Same(t, fn.Params[0].Sym, countRef.Sym)

	// The local reference is bound to the local's symbol.
	doubledRef := ret.Value.(*ir.IdentRef)
	require.NotNil(t, doubledRef.Sym)
	assert.Same(t, local.Decl.Sym, doubledRef.Sym)
}

func TestResolve_UnresolvedIsDataNotFailure(t *testing.T) {
	fir, _ := analyze(t, fnDef("broken", nil, block(1,
		exprStmt(2, ident("missingName")),
	)))

	ref := fir.Functions[0].Body.Stmts[0].(*ir.ExprStmt).Expr.(*ir.IdentRef)
	assert.Nil(t, ref.Sym)

	unres, ok := ref.Type().(*types.UnresolvedType)
	require.True(t, ok)
	assert.Equal(t, "missingName", unres.Name)
	assert.NotEmpty(t, unres.Attempts)

	// Unresolved references are not errors: the partial IR stays usable.
	assert.Equal(t, 0, fir.ErrorCount())
}

func TestResolve_MethodSeesFieldsAndThis(t *testing.T) {
	cls := &ast.ClassDef{
		NodeBase: nb(1),
		Name:     "Counter",
		Fields: []*ast.FieldDef{
			{NodeBase: nb(2), Name: "value", Type: tn("int")},
		},
		Methods: []*ast.FuncDef{
			fnDef("current", tn("int"), block(3, retStmt(4, ident("value")))),
		},
	}

	fir, _ := analyze(t, cls)

	method := fir.Classes[0].Methods[0]
	ref := method.Body.Stmts[0].(*ir.Return).Value.(*ir.IdentRef)
	require.NotNil(t, ref.Sym)
	assert.Same(t, fir.Classes[0].Fields[0].Sym, ref.Sym)
}

// -----------------------------------------------------------------------------
// Type inference.

func TestInfer_NumericWidening(t *testing.T) {
	fir, _ := analyze(t, fnDef("mix", nil, block(1,
		varStmt(2, "a", nil, &ast.BinaryExpr{
			NodeBase: nb(2), Op: "+",
			Lhs: lit(ast.LitInt, "1"),
			Rhs: lit(ast.LitFloat, "2.5"),
		}),
		varStmt(3, "b", nil, &ast.BinaryExpr{
			NodeBase: nb(3), Op: "+",
			Lhs: lit(ast.LitInt, "1"),
			Rhs: lit(ast.LitInt, "2"),
		}),
	)))

	a := fir.Functions[0].Body.Stmts[0].(*ir.LocalVar)
	b := fir.Functions[0].Body.Stmts[1].(*ir.LocalVar)

	assert.True(t, types.Equals(a.Decl.Type, types.PrimFloat))
	assert.True(t, types.Equals(b.Decl.Type, types.PrimInt))
}

func TestInfer_ConstructionYieldsConstructedType(t *testing.T) {
	fir, _ := analyze(t, fnDef("make", nil, block(1,
		varStmt(2, "w", nil, construct("Text")),
	)))

	decl := fir.Functions[0].Body.Stmts[0].(*ir.LocalVar).Decl
	cr, ok := decl.Type.(*types.ClassRef)
	require.True(t, ok)
	assert.Equal(t, "Text", cr.Name)
}

func TestInfer_TypeMismatchIsFlagged(t *testing.T) {
	fir, _ := analyze(t, fnDef("bad", nil, block(1,
		varStmt(2, "n", tn("int"), lit(ast.LitString, "oops")),
	)))

	mismatches := issuesContaining(fir, "type mismatch")
	require.Len(t, mismatches, 1)
	assert.Equal(t, report.SeverityError, mismatches[0].Severity)
}

func TestInfer_ReturnMismatchIsFlagged(t *testing.T) {
	fir, _ := analyze(t, fnDef("answer", tn("int"), block(1,
		retStmt(2, lit(ast.LitString, "forty-two")),
	)))

	require.NotEmpty(t, issuesContaining(fir, "type mismatch"))
}

func TestInfer_IntWidensIntoFloatSlot(t *testing.T) {
	fir, _ := analyze(t, fnDef("widen", nil, block(1,
		varStmt(2, "f", tn("float"), lit(ast.LitInt, "3")),
	)))

	assert.Empty(t, issuesContaining(fir, "type mismatch"))
}

// -----------------------------------------------------------------------------
// Flow analysis.

func TestFlow_UnreachableAfterBothBranchesReturn(t *testing.T) {
	// if (flag) { return 1; } else { return 2; }
	// doSomething();   <- unreachable
	body := block(1,
		&ast.IfStmt{
			NodeBase: nb(2),
			Cond:     ident("flag"),
			Then:     block(2, retStmt(3, lit(ast.LitInt, "1"))),
			Else:     block(4, retStmt(5, lit(ast.LitInt, "2"))),
		},
		exprStmt(6, ident("doSomething")),
	)

	fir, _ := analyze(t, fnDef("pick", tn("int"), body))

	unreachable := issuesContaining(fir, "unreachable")
	require.Len(t, unreachable, 1)
	assert.Equal(t, report.SeverityWarning, unreachable[0].Severity)
	assert.Equal(t, 6, unreachable[0].Loc.Line)
}

func TestFlow_UnreachableAfterThrow(t *testing.T) {
	body := block(1,
		&ast.ThrowStmt{NodeBase: nb(2), Value: construct("StateError")},
		exprStmt(3, ident("never")),
	)

	fir, _ := analyze(t, fnDef("boom", nil, body))

	assert.Len(t, issuesContaining(fir, "unreachable"), 1)
}

func TestFlow_MissingReturnIsWarned(t *testing.T) {
	// Only the then branch returns; control can fall off the end.
	body := block(1,
		&ast.IfStmt{
			NodeBase: nb(2),
			Cond:     ident("flag"),
			Then:     block(2, retStmt(3, lit(ast.LitInt, "1"))),
		},
	)

	fir, _ := analyze(t, fnDef("partial", tn("int"), body))

	warnings := issuesContaining(fir, "return a value")
	require.Len(t, warnings, 1)
	assert.Equal(t, report.SeverityWarning, warnings[0].Severity)
}

func TestFlow_InfiniteLoopCountsAsNonTerminating(t *testing.T) {
	// while (true) { spin(); }  -- provably never falls off the end.
	body := block(1,
		&ast.WhileStmt{
			NodeBase: nb(2),
			Cond:     lit(ast.LitBool, "true"),
			Body:     block(2, exprStmt(3, ident("spin"))),
		},
	)

	fir, _ := analyze(t, fnDef("forever", tn("int"), body))

	assert.Empty(t, issuesContaining(fir, "return a value"))
}

func TestFlow_LoopWithBreakStillFallsThrough(t *testing.T) {
	body := block(1,
		&ast.WhileStmt{
			NodeBase: nb(2),
			Cond:     lit(ast.LitBool, "true"),
			Body:     block(2, &ast.BreakStmt{NodeBase: nb(3)}),
		},
	)

	fir, _ := analyze(t, fnDef("escapes", tn("int"), body))

	assert.Len(t, issuesContaining(fir, "return a value"), 1)
}

func TestFlow_LabeledBreakExitsTheLabeledLoop(t *testing.T) {
	// outer: while (true) { while (true) { break outer; } }
	// return 1;
	body := block(1,
		&ast.LabeledStmt{
			NodeBase: nb(2),
			Label:    "outer",
			Stmt: &ast.WhileStmt{
				NodeBase: nb(2),
				Cond:     lit(ast.LitBool, "true"),
				Body: block(3, &ast.WhileStmt{
					NodeBase: nb(3),
					Cond:     lit(ast.LitBool, "true"),
					Body:     block(4, &ast.BreakStmt{NodeBase: nb(4), Label: "outer"}),
				}),
			},
		},
		retStmt(6, lit(ast.LitInt, "1")),
	)

	fir, _ := analyze(t, fnDef("escapesOuter", tn("int"), body))

	// The break targets the outer loop, so the return after it is live and
	// every path produces a value.
	assert.Empty(t, issuesContaining(fir, "unreachable"))
	assert.Empty(t, issuesContaining(fir, "return a value"))
}

func TestFlow_UnlabeledBreakStillTargetsInnermostLoop(t *testing.T) {
	// while (true) { while (true) { break; } }  -- only the inner loop
	// exits, so the outer loop never terminates.
	body := block(1,
		&ast.WhileStmt{
			NodeBase: nb(2),
			Cond:     lit(ast.LitBool, "true"),
			Body: block(3, &ast.WhileStmt{
				NodeBase: nb(3),
				Cond:     lit(ast.LitBool, "true"),
				Body:     block(4, &ast.BreakStmt{NodeBase: nb(4)}),
			}),
		},
	)

	fir, _ := analyze(t, fnDef("spins", tn("int"), body))

	assert.Empty(t, issuesContaining(fir, "return a value"))
}

// -----------------------------------------------------------------------------
// Validation.

func TestValidate_StatefulWidgetNeedsCompanionState(t *testing.T) {
	fir, _ := analyze(t, &ast.ClassDef{
		NodeBase:   nb(1),
		Name:       "HomePage",
		Superclass: tn("StatefulWidget"),
	})

	require.Len(t, issuesContaining(fir, "companion state"), 1)
}

func TestValidate_CompanionStateSatisfiesTheRule(t *testing.T) {
	buildBody := block(4, retStmt(5, construct("Container")))

	fir, _ := analyze(t,
		&ast.ClassDef{
			NodeBase:   nb(1),
			Name:       "HomePage",
			Superclass: tn("StatefulWidget"),
		},
		&ast.ClassDef{
			NodeBase:   nb(3),
			Name:       "HomePageState",
			Superclass: tn("State"),
			Methods:    []*ast.FuncDef{fnDef("build", tn("Container"), buildBody)},
		},
	)

	assert.Empty(t, issuesContaining(fir, "companion state"))
	assert.Equal(t, 0, fir.ErrorCount())
}

func TestValidate_AbstractMethodMustNotHaveBody(t *testing.T) {
	method := fnDef("layout", tn("Widget"), block(2, retStmt(3, construct("Container"))))
	method.Abstract = true

	fir, _ := analyze(t, &ast.ClassDef{
		NodeBase: nb(1),
		Name:     "Panel",
		Abstract: true,
		Methods:  []*ast.FuncDef{method},
	})

	require.Len(t, issuesContaining(fir, "must not have a body"), 1)
}

func TestValidate_WidgetWithoutBuildMethod(t *testing.T) {
	fir, _ := analyze(t, &ast.ClassDef{
		NodeBase:   nb(1),
		Name:       "EmptyCard",
		Superclass: tn("StatelessWidget"),
	})

	require.Len(t, issuesContaining(fir, "`build` method"), 1)
}

func TestValidate_ConstructingAbstractClass(t *testing.T) {
	fir, _ := analyze(t,
		&ast.ClassDef{NodeBase: nb(1), Name: "Shape", Abstract: true},
		fnDef("make", nil, block(3, exprStmt(4, construct("Shape")))),
	)

	require.Len(t, issuesContaining(fir, "cannot construct abstract class"), 1)
}

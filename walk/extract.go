package walk

import (
	"fern/ast"
	"fern/common"
	"fern/depm"
	"fern/ir"
	"fern/report"
	"fern/types"
	"fern/util"
)

// extractor implements the declaration-extraction pass: a single walk of the
// syntax tree that creates every IR node, allocates node IDs, creates the
// symbols for all declarations, registers global declarations with the
// project registry, and caches nested widget usages on statements.
type extractor struct {
	acc *fileAcc
	reg *depm.Registry
	ids *ir.IDAllocator
}

func (e *extractor) extractFile(f *ast.File) {
	for _, dir := range f.Directives {
		switch dir.Kind {
		case ast.DirImport:
			e.acc.imports = append(e.acc.imports, dir.Path)
		case ast.DirExport:
			e.acc.exports = append(e.acc.exports, dir.Path)
		}
	}

	for _, def := range f.Defs {
		switch d := def.(type) {
		case *ast.ClassDef:
			e.extractClass(d)
		case *ast.FuncDef:
			fd := e.extractFunc(d, "")
			if !e.reg.DefineFunction(fd) {
				e.acc.addIssue(report.Errorf(d.Span(), "multiple definitions of `%s`", d.Name))
			}

			e.acc.functions = append(e.acc.functions, fd)
		}
	}
}

// base allocates a node ID and builds a node base at the given location.
func (e *extractor) base(span report.SourceLoc) ir.NodeBase {
	return ir.NewNodeBase(e.ids.Alloc(), span)
}

// -----------------------------------------------------------------------------

func (e *extractor) extractClass(d *ast.ClassDef) {
	superName := ""
	if d.Superclass != nil {
		superName = d.Superclass.Name
	}

	// Make the class visible to the subtyping hierarchy before any of its
	// members are lowered so self-referential annotations resolve.
	types.RegisterClass(d.Name, superName)

	var classType types.Type = &types.ClassRef{Name: d.Name, Abstract: d.Abstract}
	if len(d.TypeParams) > 0 {
		classType = &types.GenericType{Base: classType, TypeParams: d.TypeParams}
	}

	cd := &ir.ClassDecl{
		NodeBase:      e.base(d.Span()),
		Name:          d.Name,
		QualifiedName: e.acc.pkgName() + "." + d.Name,
		Superclass:    e.lowerTypeName(d.Superclass),
		Abstract:      d.Abstract,
		WidgetKind:    widgetKindOf(superName),
		TypeParams:    d.TypeParams,
		Visibility:    d.Visibility,
		Doc:           d.Doc,
		Annotations:   d.Annotations,
		Sym: &common.Symbol{
			Name:       d.Name,
			File:       e.acc.path,
			DefLoc:     d.Span(),
			Type:       classType,
			Kind:       common.SymClass,
			Visibility: d.Visibility,
		},
	}

	for _, field := range d.Fields {
		cd.Fields = append(cd.Fields, e.extractField(field))
	}

	for _, method := range d.Methods {
		cd.Methods = append(cd.Methods, e.extractFunc(method, d.Name))
	}

	if !e.reg.DefineClass(cd) {
		e.acc.addIssue(report.Errorf(d.Span(), "multiple definitions of `%s`", d.Name))
	}

	e.acc.classes = append(e.acc.classes, cd)
}

// widgetKindOf classifies a class by the name of its superclass.
func widgetKindOf(superName string) ir.WidgetKind {
	switch superName {
	case "StatelessWidget":
		return ir.WidgetStateless
	case "StatefulWidget":
		return ir.WidgetStateful
	case "State":
		return ir.WidgetState
	default:
		return ir.WidgetNone
	}
}

func (e *extractor) extractFunc(d *ast.FuncDef, owner string) *ir.FuncDecl {
	params := make([]*ir.ParamDecl, len(d.Params))
	sigParams := make([]types.Param, len(d.Params))
	for i, p := range d.Params {
		params[i] = e.extractParam(p)
		sigParams[i] = types.Param{
			Name:     p.Name,
			Type:     params[i].Type,
			Optional: p.Mods.Has(common.ModOptional),
			Named:    p.Mods.Has(common.ModNamed),
			Required: p.Mods.Has(common.ModRequired),
		}
	}

	var returnType types.Type = types.PrimVoid
	if d.ReturnType != nil {
		returnType = e.lowerTypeName(d.ReturnType)
	}

	sig := &types.FuncSig{Params: sigParams, ReturnType: returnType, TypeParams: d.TypeParams}

	symKind := common.SymFunc
	if owner != "" {
		symKind = common.SymMethod
	}

	return &ir.FuncDecl{
		NodeBase:    e.base(d.Span()),
		Name:        d.Name,
		Owner:       owner,
		Params:      params,
		Sig:         sig,
		Body:        e.block(d.Body),
		Abstract:    d.Abstract,
		Static:      d.Static,
		Async:       d.Async,
		Visibility:  d.Visibility,
		Doc:         d.Doc,
		Annotations: d.Annotations,
		Sym: &common.Symbol{
			Name:       d.Name,
			File:       e.acc.path,
			DefLoc:     d.Span(),
			Type:       sig,
			Kind:       symKind,
			Visibility: d.Visibility,
		},
	}
}

func (e *extractor) extractField(d *ast.FieldDef) *ir.FieldDecl {
	ty := e.lowerTypeName(d.Type)

	return &ir.FieldDecl{
		NodeBase:   e.base(d.Span()),
		Name:       d.Name,
		Type:       ty,
		Init:       e.expr(d.Init),
		Mods:       d.Mods,
		Visibility: d.Visibility,
		Doc:        d.Doc,
		Sym: &common.Symbol{
			Name:       d.Name,
			File:       e.acc.path,
			DefLoc:     d.Span(),
			Type:       ty,
			Kind:       common.SymField,
			Visibility: d.Visibility,
			Modifiers:  d.Mods,
		},
	}
}

func (e *extractor) extractParam(d *ast.ParamDef) *ir.ParamDecl {
	ty := e.lowerTypeName(d.Type)
	if ty == nil {
		ty = types.PrimDynamic
	}

	return &ir.ParamDecl{
		NodeBase: e.base(d.Span()),
		Name:     d.Name,
		Type:     ty,
		Default:  e.expr(d.Default),
		Mods:     d.Mods,
		Sym: &common.Symbol{
			Name:      d.Name,
			File:      e.acc.path,
			DefLoc:    d.Span(),
			Type:      ty,
			Kind:      common.SymParameter,
			Modifiers: d.Mods,
		},
	}
}

func (e *extractor) extractVar(d *ast.VarDef) *ir.VarDecl {
	// An omitted annotation leaves the type nil here; type inference fills
	// it in from the initializer.
	ty := e.lowerTypeName(d.Type)

	return &ir.VarDecl{
		NodeBase: e.base(d.Span()),
		Name:     d.Name,
		Type:     ty,
		Init:     e.expr(d.Init),
		Mods:     d.Mods,
		Sym: &common.Symbol{
			Name:      d.Name,
			File:      e.acc.path,
			DefLoc:    d.Span(),
			Type:      ty,
			Kind:      common.SymVariable,
			Modifiers: d.Mods,
		},
	}
}

// -----------------------------------------------------------------------------

// lowerTypeName lowers a syntactic type annotation into a semantic type.  A
// nil annotation lowers to nil.
func (e *extractor) lowerTypeName(tn *ast.TypeName) types.Type {
	if tn == nil {
		return nil
	}

	var t types.Type
	switch tn.Name {
	case "int":
		t = types.PrimInt
	case "float", "double":
		t = types.PrimFloat
	case "bool":
		t = types.PrimBool
	case "string", "String":
		t = types.PrimString
	case "void":
		t = types.PrimVoid
	case "dynamic":
		t = types.PrimDynamic
	case "never", "Never":
		t = types.PrimNever
	default:
		var args []types.Type
		for _, arg := range tn.Args {
			args = append(args, e.lowerTypeName(arg))
		}

		abstract := false
		if cd, ok := e.reg.LookupClass(tn.Name); ok {
			abstract = cd.Abstract
		}

		t = &types.ClassRef{Name: tn.Name, TypeArgs: args, Abstract: abstract}
	}

	if tn.Nullable {
		t = types.NewNullable(t)
	}

	return t
}

// -----------------------------------------------------------------------------

func (e *extractor) block(b *ast.BlockStmt) *ir.Block {
	if b == nil {
		return nil
	}

	block := &ir.Block{StmtBase: ir.StmtBase{NodeBase: e.base(b.Span())}}
	var usages []*ir.WidgetUsage
	for _, s := range b.Stmts {
		stmt := e.stmt(s)
		block.Stmts = append(block.Stmts, stmt)
		usages = append(usages, stmt.Usages()...)
	}

	block.SetUsages(usages)
	return block
}

func (e *extractor) stmt(s ast.Stmt) ir.Stmt {
	switch st := s.(type) {
	case *ast.BlockStmt:
		return e.block(st)

	case *ast.ExprStmt:
		x := e.expr(st.Expr)
		stmt := &ir.ExprStmt{StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())}, Expr: x}
		stmt.SetUsages(exprUsages(x))
		return stmt

	case *ast.VarDeclStmt:
		decl := e.extractVar(st.Decl)
		stmt := &ir.LocalVar{StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())}, Decl: decl}
		stmt.SetUsages(exprUsages(decl.Init))
		return stmt

	case *ast.IfStmt:
		stmt := &ir.If{
			StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())},
			Cond:     e.expr(st.Cond),
			Then:     e.block(st.Then),
			Else:     e.stmt(st.Else),
		}

		usages := exprUsages(stmt.Cond)
		usages = append(usages, flagUsages(blockUsages(stmt.Then), true, false)...)
		if stmt.Else != nil {
			usages = append(usages, flagUsages(stmt.Else.Usages(), true, false)...)
		}

		stmt.SetUsages(usages)
		return stmt

	case *ast.ForStmt:
		stmt := &ir.For{
			StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())},
			Init:     e.stmt(st.Init),
			Cond:     e.expr(st.Cond),
			Update:   e.expr(st.Update),
			Body:     e.block(st.Body),
		}

		var usages []*ir.WidgetUsage
		if stmt.Init != nil {
			usages = append(usages, stmt.Init.Usages()...)
		}
		usages = append(usages, flagUsages(blockUsages(stmt.Body), false, true)...)

		stmt.SetUsages(usages)
		return stmt

	case *ast.ForEachStmt:
		stmt := &ir.ForEach{
			StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())},
			Var:      e.extractVar(st.Var),
			Seq:      e.expr(st.Seq),
			Body:     e.block(st.Body),
		}

		usages := exprUsages(stmt.Seq)
		usages = append(usages, flagUsages(blockUsages(stmt.Body), false, true)...)

		stmt.SetUsages(usages)
		return stmt

	case *ast.WhileStmt:
		stmt := &ir.While{
			StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())},
			Cond:     e.expr(st.Cond),
			Body:     e.block(st.Body),
			DoFirst:  st.DoFirst,
		}

		stmt.SetUsages(flagUsages(blockUsages(stmt.Body), false, true))
		return stmt

	case *ast.SwitchStmt:
		stmt := &ir.Switch{
			StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())},
			Subject:  e.expr(st.Subject),
			Default:  e.block(st.Default),
		}

		usages := exprUsages(stmt.Subject)
		for _, c := range st.Cases {
			var values []ir.Expr
			for _, v := range c.Values {
				values = append(values, e.expr(v))
			}

			body := e.block(c.Body)
			stmt.Cases = append(stmt.Cases, ir.SwitchCase{Values: values, Body: body})
			usages = append(usages, flagUsages(blockUsages(body), true, false)...)
		}
		if stmt.Default != nil {
			usages = append(usages, flagUsages(stmt.Default.Usages(), true, false)...)
		}

		stmt.SetUsages(usages)
		return stmt

	case *ast.TryStmt:
		stmt := &ir.Try{
			StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())},
			Body:     e.block(st.Body),
			Finally:  e.block(st.Finally),
		}

		usages := append([]*ir.WidgetUsage(nil), blockUsages(stmt.Body)...)
		for _, c := range st.Catches {
			var param *ir.VarDecl
			if c.Param != nil {
				param = e.extractVar(c.Param)
			}

			body := e.block(c.Body)
			stmt.Catches = append(stmt.Catches, ir.Catch{Param: param, Body: body})
			usages = append(usages, flagUsages(blockUsages(body), true, false)...)
		}
		if stmt.Finally != nil {
			usages = append(usages, stmt.Finally.Usages()...)
		}

		stmt.SetUsages(usages)
		return stmt

	case *ast.ReturnStmt:
		x := e.expr(st.Value)
		stmt := &ir.Return{StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())}, Value: x}
		stmt.SetUsages(exprUsages(x))
		return stmt

	case *ast.BreakStmt:
		return &ir.Break{StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())}, Label: st.Label}

	case *ast.ContinueStmt:
		return &ir.Continue{StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())}, Label: st.Label}

	case *ast.ThrowStmt:
		x := e.expr(st.Value)
		stmt := &ir.Throw{StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())}, Value: x}
		stmt.SetUsages(exprUsages(x))
		return stmt

	case *ast.AssertStmt:
		stmt := &ir.Assert{
			StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())},
			Cond:     e.expr(st.Cond),
			Message:  e.expr(st.Message),
		}

		stmt.SetUsages(exprUsages(stmt.Cond))
		return stmt

	case *ast.YieldStmt:
		x := e.expr(st.Value)
		stmt := &ir.Yield{StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())}, Value: x, Each: st.Each}
		stmt.SetUsages(exprUsages(x))
		return stmt

	case *ast.LabeledStmt:
		inner := e.stmt(st.Stmt)
		stmt := &ir.Labeled{StmtBase: ir.StmtBase{NodeBase: e.base(st.Span())}, Label: st.Label, Stmt: inner}
		stmt.SetUsages(inner.Usages())
		return stmt

	default:
		return nil
	}
}

// -----------------------------------------------------------------------------

func (e *extractor) expr(x ast.Expr) ir.Expr {
	switch xpr := x.(type) {
	case *ast.LiteralExpr:
		return &ir.Literal{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			LitKind:  litKindOf(xpr.Kind),
			Value:    xpr.Value,
		}

	case *ast.IdentExpr:
		return &ir.IdentRef{ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())}, Name: xpr.Name}

	case *ast.PropertyExpr:
		return &ir.PropertyAccess{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Recv:     e.expr(xpr.Recv),
			Name:     xpr.Name,
		}

	case *ast.IndexExpr:
		return &ir.IndexAccess{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Recv:     e.expr(xpr.Recv),
			Index:    e.expr(xpr.Index),
		}

	case *ast.UnaryExpr:
		return &ir.UnaryOp{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Op:       xpr.Op,
			Operand:  e.expr(xpr.Operand),
		}

	case *ast.BinaryExpr:
		return &ir.BinaryOp{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Op:       xpr.Op,
			Lhs:      e.expr(xpr.Lhs),
			Rhs:      e.expr(xpr.Rhs),
		}

	case *ast.AssignExpr:
		return &ir.Assign{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Target:   e.expr(xpr.Target),
			Op:       xpr.Op,
			Value:    e.expr(xpr.Value),
		}

	case *ast.CondExpr:
		return &ir.Conditional{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Cond:     e.expr(xpr.Cond),
			Then:     e.expr(xpr.Then),
			Else:     e.expr(xpr.Else),
		}

	case *ast.CallExpr:
		call := &ir.Call{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			CallKind: callKindOf(xpr.Kind),
			Recv:     e.expr(xpr.Target),
			Name:     xpr.Name,
		}

		for _, arg := range xpr.Args {
			call.Args = append(call.Args, ir.Arg{Name: arg.Name, Value: e.expr(arg.Value)})
		}

		return call

	case *ast.LambdaExpr:
		lambda := &ir.Lambda{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Body:     e.block(xpr.Body),
			ExprBody: e.expr(xpr.ExprBody),
		}

		for _, p := range xpr.Params {
			lambda.Params = append(lambda.Params, e.extractParam(p))
		}

		return lambda

	case *ast.AwaitExpr:
		return &ir.Await{ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())}, Operand: e.expr(xpr.Operand)}

	case *ast.CastExpr:
		return &ir.Cast{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Operand:  e.expr(xpr.Operand),
			Target:   e.lowerTypeName(xpr.Target),
		}

	case *ast.TypeTestExpr:
		return &ir.TypeTest{
			ExprBase: ir.ExprBase{NodeBase: e.base(xpr.Span())},
			Operand:  e.expr(xpr.Operand),
			Target:   e.lowerTypeName(xpr.Target),
			Negated:  xpr.Negated,
		}

	default:
		return nil
	}
}

func litKindOf(k ast.LitKind) ir.LitKind {
	switch k {
	case ast.LitInt:
		return ir.LitInt
	case ast.LitFloat:
		return ir.LitFloat
	case ast.LitBool:
		return ir.LitBool
	case ast.LitString:
		return ir.LitString
	default:
		return ir.LitNull
	}
}

func callKindOf(k ast.CallKind) ir.CallKind {
	switch k {
	case ast.CallMethod:
		return ir.CallMethod
	case ast.CallConstructor:
		return ir.CallConstructor
	default:
		return ir.CallFunction
	}
}

// -----------------------------------------------------------------------------

// blockUsages returns a block's cached usages, tolerating absent blocks.
func blockUsages(b *ir.Block) []*ir.WidgetUsage {
	if b == nil {
		return nil
	}

	return b.Usages()
}

// exprUsages collects the widget usages nested under an expression: every
// constructor invocation, with constructions inside its arguments recorded as
// children rather than repeated at the top level.
func exprUsages(x ir.Expr) []*ir.WidgetUsage {
	if x == nil {
		return nil
	}

	switch xpr := x.(type) {
	case *ir.PropertyAccess:
		return exprUsages(xpr.Recv)

	case *ir.IndexAccess:
		return append(exprUsages(xpr.Recv), exprUsages(xpr.Index)...)

	case *ir.UnaryOp:
		return exprUsages(xpr.Operand)

	case *ir.BinaryOp:
		return append(exprUsages(xpr.Lhs), exprUsages(xpr.Rhs)...)

	case *ir.Assign:
		return append(exprUsages(xpr.Target), exprUsages(xpr.Value)...)

	case *ir.Conditional:
		usages := exprUsages(xpr.Cond)
		usages = append(usages, flagUsages(exprUsages(xpr.Then), true, false)...)
		usages = append(usages, flagUsages(exprUsages(xpr.Else), true, false)...)
		return usages

	case *ir.Call:
		var args []*ir.WidgetUsage
		for _, arg := range xpr.Args {
			args = append(args, exprUsages(arg.Value)...)
		}

		if xpr.CallKind == ir.CallConstructor {
			return []*ir.WidgetUsage{{Widget: xpr.Name, Loc: xpr.Loc(), Children: args}}
		}

		return append(exprUsages(xpr.Recv), args...)

	case *ir.Lambda:
		if xpr.Body != nil {
			return xpr.Body.Usages()
		}

		return exprUsages(xpr.ExprBody)

	case *ir.Await:
		return exprUsages(xpr.Operand)

	case *ir.Cast:
		return exprUsages(xpr.Operand)

	case *ir.TypeTest:
		return exprUsages(xpr.Operand)

	default:
		return nil
	}
}

// flagUsages returns copies of the given usages with the conditional and
// iterated flags OR'd in, applied recursively to nested children.
func flagUsages(usages []*ir.WidgetUsage, conditional, iterated bool) []*ir.WidgetUsage {
	if len(usages) == 0 {
		return nil
	}

	return util.Map(usages, func(u *ir.WidgetUsage) *ir.WidgetUsage {
		return &ir.WidgetUsage{
			Widget:      u.Widget,
			Loc:         u.Loc,
			Conditional: u.Conditional || conditional,
			Iterated:    u.Iterated || iterated,
			Children:    flagUsages(u.Children, conditional, iterated),
		}
	})
}

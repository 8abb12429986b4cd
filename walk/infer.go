package walk

import (
	"fern/depm"
	"fern/ir"
	"fern/report"
	"fern/types"
)

// inferrer implements the type-inference pass.  It assigns a type to every
// expression bottom-up using a fixed rule per expression kind and flags
// assignment sites whose right-hand type is not assignable to the left-hand
// type.  Inference never fails: an expression whose type cannot be computed
// gets dynamic.
type inferrer struct {
	acc *fileAcc
	reg *depm.Registry

	// The declared return type of the function body being inferred.
	ret types.Type
}

func (inf *inferrer) inferFile() {
	for _, cls := range inf.acc.classes {
		for _, field := range cls.Fields {
			inf.inferField(field)
		}
	}

	for _, fn := range inf.acc.allFuncs() {
		inf.inferFunc(fn)
	}
}

func (inf *inferrer) inferField(field *ir.FieldDecl) {
	if field.Init == nil {
		return
	}

	initTy := inf.inferExpr(field.Init)
	if field.Type == nil {
		field.Type = initTy
		field.Sym.Type = initTy
	} else if !types.IsAssignableTo(initTy, field.Type) {
		inf.acc.addIssue(report.Errorf(
			field.Loc(),
			"type mismatch: cannot assign `%s` to field of type `%s`",
			initTy.Repr(), field.Type.Repr(),
		))
	}
}

func (inf *inferrer) inferFunc(fn *ir.FuncDecl) {
	for _, param := range fn.Params {
		if param.Default == nil {
			continue
		}

		defTy := inf.inferExpr(param.Default)
		if !types.IsAssignableTo(defTy, param.Type) {
			inf.acc.addIssue(report.Errorf(
				param.Loc(),
				"type mismatch: default value of type `%s` is not assignable to parameter of type `%s`",
				defTy.Repr(), param.Type.Repr(),
			))
		}
	}

	if fn.Body == nil {
		return
	}

	inf.ret = fn.Sig.ReturnType
	inf.inferBlock(fn.Body)
}

// -----------------------------------------------------------------------------

func (inf *inferrer) inferBlock(b *ir.Block) {
	if b == nil {
		return
	}

	for _, s := range b.Stmts {
		inf.inferStmt(s)
	}
}

func (inf *inferrer) inferStmt(s ir.Stmt) {
	switch st := s.(type) {
	case *ir.Block:
		inf.inferBlock(st)

	case *ir.ExprStmt:
		inf.inferExpr(st.Expr)

	case *ir.LocalVar:
		inf.inferVar(st.Decl)

	case *ir.If:
		inf.inferExpr(st.Cond)
		inf.inferBlock(st.Then)
		if st.Else != nil {
			inf.inferStmt(st.Else)
		}

	case *ir.For:
		if st.Init != nil {
			inf.inferStmt(st.Init)
		}
		if st.Cond != nil {
			inf.inferExpr(st.Cond)
		}
		if st.Update != nil {
			inf.inferExpr(st.Update)
		}
		inf.inferBlock(st.Body)

	case *ir.ForEach:
		seqTy := inf.inferExpr(st.Seq)
		if st.Var.Type == nil {
			elemTy := elementTypeOf(seqTy)
			st.Var.Type = elemTy
			st.Var.Sym.Type = elemTy
		}
		inf.inferBlock(st.Body)

	case *ir.While:
		inf.inferExpr(st.Cond)
		inf.inferBlock(st.Body)

	case *ir.Switch:
		inf.inferExpr(st.Subject)
		for _, c := range st.Cases {
			for _, v := range c.Values {
				inf.inferExpr(v)
			}

			inf.inferBlock(c.Body)
		}
		inf.inferBlock(st.Default)

	case *ir.Try:
		inf.inferBlock(st.Body)
		for _, c := range st.Catches {
			if c.Param != nil && c.Param.Type == nil {
				c.Param.Type = types.PrimDynamic
				c.Param.Sym.Type = types.PrimDynamic
			}

			inf.inferBlock(c.Body)
		}
		inf.inferBlock(st.Finally)

	case *ir.Return:
		if st.Value == nil {
			return
		}

		valTy := inf.inferExpr(st.Value)
		if inf.ret != nil && !types.IsAssignableTo(valTy, inf.ret) {
			inf.acc.addIssue(report.Errorf(
				st.Loc(),
				"type mismatch: cannot return `%s` from a function returning `%s`",
				valTy.Repr(), inf.ret.Repr(),
			))
		}

	case *ir.Throw:
		inf.inferExpr(st.Value)

	case *ir.Assert:
		inf.inferExpr(st.Cond)
		if st.Message != nil {
			inf.inferExpr(st.Message)
		}

	case *ir.Yield:
		if st.Value != nil {
			inf.inferExpr(st.Value)
		}

	case *ir.Labeled:
		inf.inferStmt(st.Stmt)
	}
}

func (inf *inferrer) inferVar(decl *ir.VarDecl) {
	if decl.Init == nil {
		if decl.Type == nil {
			decl.Type = types.PrimDynamic
			decl.Sym.Type = types.PrimDynamic
		}

		return
	}

	initTy := inf.inferExpr(decl.Init)
	if decl.Type == nil {
		decl.Type = initTy
		decl.Sym.Type = initTy
	} else if !types.IsAssignableTo(initTy, decl.Type) {
		inf.acc.addIssue(report.Errorf(
			decl.Loc(),
			"type mismatch: cannot assign `%s` to variable of type `%s`",
			initTy.Repr(), decl.Type.Repr(),
		))
	}
}

// -----------------------------------------------------------------------------

// inferExpr computes and caches the type of an expression.  Expressions whose
// type was already attached by an earlier pass (unresolved identifiers) keep
// that type.
func (inf *inferrer) inferExpr(x ir.Expr) types.Type {
	if x == nil {
		return types.PrimDynamic
	}

	if ty := x.Type(); ty != nil {
		return ty
	}

	ty := inf.computeType(x)
	setExprType(x, ty)
	return ty
}

// setExprType stores an inferred type through the concrete node's embedded
// base.
func setExprType(x ir.Expr, ty types.Type) {
	type typed interface{ SetType(types.Type) }

	if t, ok := x.(typed); ok {
		t.SetType(ty)
	}
}

func (inf *inferrer) computeType(x ir.Expr) types.Type {
	switch xpr := x.(type) {
	case *ir.Literal:
		return literalType(xpr.LitKind)

	case *ir.IdentRef:
		if xpr.Sym != nil && xpr.Sym.Type != nil {
			return xpr.Sym.Type
		}

		return types.PrimDynamic

	case *ir.PropertyAccess:
		recvTy := inf.inferExpr(xpr.Recv)
		return inf.memberType(recvTy, xpr.Name)

	case *ir.IndexAccess:
		recvTy := inf.inferExpr(xpr.Recv)
		inf.inferExpr(xpr.Index)
		return indexedType(recvTy)

	case *ir.UnaryOp:
		operandTy := inf.inferExpr(xpr.Operand)
		if xpr.Op == "!" {
			return types.PrimBool
		}

		return operandTy

	case *ir.BinaryOp:
		return inf.binaryType(xpr)

	case *ir.Assign:
		targetTy := inf.inferExpr(xpr.Target)
		valTy := inf.inferExpr(xpr.Value)

		if xpr.Op == "" && !types.IsAssignableTo(valTy, targetTy) {
			inf.acc.addIssue(report.Errorf(
				xpr.Loc(),
				"type mismatch: cannot assign `%s` to `%s`",
				valTy.Repr(), targetTy.Repr(),
			))
		}

		return targetTy

	case *ir.Conditional:
		inf.inferExpr(xpr.Cond)
		thenTy := inf.inferExpr(xpr.Then)
		elseTy := inf.inferExpr(xpr.Else)
		return types.CommonSupertype(thenTy, elseTy)

	case *ir.Call:
		return inf.callType(xpr)

	case *ir.Lambda:
		return inf.lambdaType(xpr)

	case *ir.Await:
		return awaitedType(inf.inferExpr(xpr.Operand))

	case *ir.Cast:
		inf.inferExpr(xpr.Operand)
		if xpr.Target == nil {
			return types.PrimDynamic
		}

		return xpr.Target

	case *ir.TypeTest:
		inf.inferExpr(xpr.Operand)
		return types.PrimBool

	default:
		return types.PrimDynamic
	}
}

func (inf *inferrer) binaryType(xpr *ir.BinaryOp) types.Type {
	lhsTy := inf.inferExpr(xpr.Lhs)
	rhsTy := inf.inferExpr(xpr.Rhs)

	switch xpr.Op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return types.PrimBool

	case "??":
		return types.CommonSupertype(nonNullOf(lhsTy), rhsTy)

	case "+", "-", "*", "/", "%":
		if widened, ok := widenNumeric(lhsTy, rhsTy); ok {
			return widened
		}

		if xpr.Op == "+" && types.Equals(lhsTy, types.PrimString) && types.Equals(rhsTy, types.PrimString) {
			return types.PrimString
		}

		return types.PrimDynamic

	default:
		return types.PrimDynamic
	}
}

func (inf *inferrer) callType(call *ir.Call) types.Type {
	if call.Recv != nil {
		inf.inferExpr(call.Recv)
	}
	for _, arg := range call.Args {
		inf.inferExpr(arg.Value)
	}

	switch call.CallKind {
	case ir.CallConstructor:
		abstract := false
		if cd, ok := inf.reg.LookupClass(call.Name); ok {
			abstract = cd.Abstract
		}

		return &types.ClassRef{Name: call.Name, Abstract: abstract}

	case ir.CallMethod:
		if call.Recv == nil {
			return types.PrimDynamic
		}

		// Bind the callee now that the receiver's type is known.
		recvTy := call.Recv.Type()
		if cls := inf.classOf(recvTy); cls != nil {
			if method := cls.Method(call.Name); method != nil {
				call.Sym = method.Sym
				return method.Sig.ReturnType
			}
		}

		return types.PrimDynamic

	default:
		if call.Sym != nil {
			if sig, ok := call.Sym.Type.(*types.FuncSig); ok {
				return sig.ReturnType
			}
		}

		return types.PrimDynamic
	}
}

func (inf *inferrer) lambdaType(lambda *ir.Lambda) types.Type {
	params := make([]types.Param, len(lambda.Params))
	for i, p := range lambda.Params {
		params[i] = types.Param{Name: p.Name, Type: p.Type}
	}

	var retTy types.Type = types.PrimDynamic
	if lambda.ExprBody != nil {
		retTy = inf.inferExpr(lambda.ExprBody)
	} else {
		// The body may contain returns against an unknown declared type;
		// they are not checked against the enclosing function's return.
		saved := inf.ret
		inf.ret = types.PrimDynamic
		inf.inferBlock(lambda.Body)
		inf.ret = saved
	}

	return &types.FuncSig{Params: params, ReturnType: retTy}
}

// memberType resolves the type of a member access on the given receiver type
// using the project registry's class declarations.  The superclass chain is
// walked upward; a seen set guards against inheritance cycles.
func (inf *inferrer) memberType(recvTy types.Type, name string) types.Type {
	seen := make(map[string]struct{})

	for cls := inf.classOf(recvTy); cls != nil; cls = inf.classOf(cls.Superclass) {
		if _, ok := seen[cls.Name]; ok {
			break
		}
		seen[cls.Name] = struct{}{}

		for _, field := range cls.Fields {
			if field.Name == name {
				if field.Type != nil {
					return field.Type
				}

				return types.PrimDynamic
			}
		}

		if method := cls.Method(name); method != nil {
			return method.Sig
		}
	}

	return types.PrimDynamic
}

// classOf maps a receiver type to its class declaration, looking through
// nullability and generic instantiation.
func (inf *inferrer) classOf(t types.Type) *ir.ClassDecl {
	switch ty := nonNullOf(t).(type) {
	case *types.ClassRef:
		if cd, ok := inf.reg.LookupClass(ty.Name); ok {
			return cd
		}

	case *types.GenericType:
		return inf.classOf(ty.Base)
	}

	return nil
}

// -----------------------------------------------------------------------------

func literalType(kind ir.LitKind) types.Type {
	switch kind {
	case ir.LitInt:
		return types.PrimInt
	case ir.LitFloat:
		return types.PrimFloat
	case ir.LitBool:
		return types.PrimBool
	case ir.LitString:
		return types.PrimString
	default:
		// The null literal inhabits every nullable type.
		return types.NewNullable(types.PrimNever)
	}
}

// widenNumeric applies the numeric widening rule: two ints stay int, any
// float operand widens the result to float.
func widenNumeric(a, b types.Type) (types.Type, bool) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, false
	}

	if types.Equals(a, types.PrimFloat) || types.Equals(b, types.PrimFloat) {
		return types.PrimFloat, true
	}

	return types.PrimInt, true
}

func isNumeric(t types.Type) bool {
	return types.Equals(t, types.PrimInt) || types.Equals(t, types.PrimFloat)
}

// nonNullOf strips one level of nullability.
func nonNullOf(t types.Type) types.Type {
	if nt, ok := t.(*types.NullableType); ok {
		return nt.Inner
	}

	return t
}

// elementTypeOf returns the element type yielded by iterating the given
// sequence type.
func elementTypeOf(seqTy types.Type) types.Type {
	if cr, ok := nonNullOf(seqTy).(*types.ClassRef); ok {
		switch cr.Name {
		case "List", "Set", "Iterable":
			if len(cr.TypeArgs) == 1 {
				return cr.TypeArgs[0]
			}
		}
	}

	if types.Equals(nonNullOf(seqTy), types.PrimString) {
		return types.PrimString
	}

	return types.PrimDynamic
}

// indexedType returns the type yielded by indexing the given receiver type.
func indexedType(recvTy types.Type) types.Type {
	if cr, ok := nonNullOf(recvTy).(*types.ClassRef); ok {
		switch cr.Name {
		case "List":
			if len(cr.TypeArgs) == 1 {
				return cr.TypeArgs[0]
			}
		case "Map":
			// Map lookup misses yield null.
			if len(cr.TypeArgs) == 2 {
				return types.NewNullable(cr.TypeArgs[1])
			}
		}
	}

	if types.Equals(nonNullOf(recvTy), types.PrimString) {
		return types.PrimString
	}

	return types.PrimDynamic
}

// awaitedType unwraps a Future-style wrapper around an awaited value.
func awaitedType(t types.Type) types.Type {
	if cr, ok := nonNullOf(t).(*types.ClassRef); ok && cr.Name == "Future" && len(cr.TypeArgs) == 1 {
		return cr.TypeArgs[0]
	}

	return t
}

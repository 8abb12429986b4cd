package walk

import (
	"fern/common"
	"fern/depm"
	"fern/ir"
	"fern/types"
)

// resolver implements the symbol-resolution pass.  It binds every identifier
// reference to a declaration, searching the nested lexical scopes first, then
// the file's own declarations, then the project registry.  Resolution never
// fails: a name that cannot be bound gets an UnresolvedType carrying the
// attempt history, and analysis continues with the partial IR.
type resolver struct {
	acc *fileAcc
	reg *depm.Registry

	// The nested lexical scopes of the function body being resolved.
	locals scopeStack

	// The file-level declarations visible to every body in the file.
	fileScope map[string]*common.Symbol
}

func (r *resolver) resolveFile() {
	r.fileScope = make(map[string]*common.Symbol)
	for _, cls := range r.acc.classes {
		r.fileScope[cls.Name] = cls.Sym
	}
	for _, fn := range r.acc.functions {
		r.fileScope[fn.Name] = fn.Sym
	}

	for _, fn := range r.acc.functions {
		r.resolveFunc(fn, nil)
	}

	for _, cls := range r.acc.classes {
		for _, field := range cls.Fields {
			if field.Init != nil {
				r.locals.push()
				r.defineMembers(cls, true)
				r.resolveExpr(field.Init)
				r.locals.pop()
			}
		}

		for _, method := range cls.Methods {
			r.resolveFunc(method, cls)
		}
	}
}

func (r *resolver) resolveFunc(fn *ir.FuncDecl, owner *ir.ClassDecl) {
	if fn.Body == nil {
		return
	}

	r.locals.push()
	defer r.locals.pop()

	if owner != nil {
		r.defineMembers(owner, fn.Static)

		if !fn.Static {
			r.locals.define(&common.Symbol{
				Name: "this",
				File: r.acc.path,
				Type: &types.ClassRef{Name: owner.Name, Abstract: owner.Abstract},
				Kind: common.SymVariable,
			})
		}
	}

	for _, param := range fn.Params {
		if param.Default != nil {
			r.resolveExpr(param.Default)
		}

		r.locals.define(param.Sym)
	}

	r.resolveBlock(fn.Body)
}

// defineMembers binds a class's fields and methods into the current scope so
// bodies can reference them without an explicit receiver.  Static contexts
// only see static members.
func (r *resolver) defineMembers(cls *ir.ClassDecl, staticOnly bool) {
	for _, field := range cls.Fields {
		if !staticOnly || field.Mods.Has(common.ModStatic) {
			r.locals.define(field.Sym)
		}
	}

	for _, method := range cls.Methods {
		if !staticOnly || method.Static {
			r.locals.define(method.Sym)
		}
	}
}

// -----------------------------------------------------------------------------

func (r *resolver) resolveBlock(b *ir.Block) {
	if b == nil {
		return
	}

	r.locals.push()
	for _, s := range b.Stmts {
		r.resolveStmt(s)
	}
	r.locals.pop()
}

func (r *resolver) resolveStmt(s ir.Stmt) {
	switch st := s.(type) {
	case *ir.Block:
		r.resolveBlock(st)

	case *ir.ExprStmt:
		r.resolveExpr(st.Expr)

	case *ir.LocalVar:
		// The initializer is resolved before the name is bound: a variable
		// is not in scope within its own initializer.
		if st.Decl.Init != nil {
			r.resolveExpr(st.Decl.Init)
		}

		r.locals.define(st.Decl.Sym)

	case *ir.If:
		r.resolveExpr(st.Cond)
		r.resolveBlock(st.Then)
		if st.Else != nil {
			r.resolveStmt(st.Else)
		}

	case *ir.For:
		r.locals.push()
		if st.Init != nil {
			r.resolveStmt(st.Init)
		}
		if st.Cond != nil {
			r.resolveExpr(st.Cond)
		}
		if st.Update != nil {
			r.resolveExpr(st.Update)
		}
		r.resolveBlock(st.Body)
		r.locals.pop()

	case *ir.ForEach:
		r.resolveExpr(st.Seq)

		r.locals.push()
		r.locals.define(st.Var.Sym)
		r.resolveBlock(st.Body)
		r.locals.pop()

	case *ir.While:
		r.resolveExpr(st.Cond)
		r.resolveBlock(st.Body)

	case *ir.Switch:
		r.resolveExpr(st.Subject)
		for _, c := range st.Cases {
			for _, v := range c.Values {
				r.resolveExpr(v)
			}

			r.resolveBlock(c.Body)
		}
		r.resolveBlock(st.Default)

	case *ir.Try:
		r.resolveBlock(st.Body)
		for _, c := range st.Catches {
			r.locals.push()
			if c.Param != nil {
				r.locals.define(c.Param.Sym)
			}
			r.resolveBlock(c.Body)
			r.locals.pop()
		}
		r.resolveBlock(st.Finally)

	case *ir.Return:
		if st.Value != nil {
			r.resolveExpr(st.Value)
		}

	case *ir.Throw:
		r.resolveExpr(st.Value)

	case *ir.Assert:
		r.resolveExpr(st.Cond)
		if st.Message != nil {
			r.resolveExpr(st.Message)
		}

	case *ir.Yield:
		if st.Value != nil {
			r.resolveExpr(st.Value)
		}

	case *ir.Labeled:
		r.resolveStmt(st.Stmt)
	}
}

// -----------------------------------------------------------------------------

func (r *resolver) resolveExpr(x ir.Expr) {
	switch xpr := x.(type) {
	case *ir.IdentRef:
		if sym, ok := r.lookup(xpr.Name); ok {
			xpr.Sym = sym
		} else {
			xpr.SetType(&types.UnresolvedType{
				Name: xpr.Name,
				Hint: "identifier",
				Attempts: []string{
					"searched enclosing lexical scopes",
					"searched file declarations",
					"searched project registry",
				},
			})
		}

	case *ir.PropertyAccess:
		r.resolveExpr(xpr.Recv)

	case *ir.IndexAccess:
		r.resolveExpr(xpr.Recv)
		r.resolveExpr(xpr.Index)

	case *ir.UnaryOp:
		r.resolveExpr(xpr.Operand)

	case *ir.BinaryOp:
		r.resolveExpr(xpr.Lhs)
		r.resolveExpr(xpr.Rhs)

	case *ir.Assign:
		r.resolveExpr(xpr.Target)
		r.resolveExpr(xpr.Value)

	case *ir.Conditional:
		r.resolveExpr(xpr.Cond)
		r.resolveExpr(xpr.Then)
		r.resolveExpr(xpr.Else)

	case *ir.Call:
		if xpr.Recv != nil {
			r.resolveExpr(xpr.Recv)
		}
		for _, arg := range xpr.Args {
			r.resolveExpr(arg.Value)
		}

		switch xpr.CallKind {
		case ir.CallFunction, ir.CallConstructor:
			if sym, ok := r.lookup(xpr.Name); ok {
				xpr.Sym = sym
			}

			// Method callees are bound by type inference once the
			// receiver's type is known.
		}

	case *ir.Lambda:
		r.locals.push()
		for _, param := range xpr.Params {
			if param.Default != nil {
				r.resolveExpr(param.Default)
			}

			r.locals.define(param.Sym)
		}

		if xpr.Body != nil {
			r.resolveBlock(xpr.Body)
		} else {
			r.resolveExpr(xpr.ExprBody)
		}
		r.locals.pop()

	case *ir.Await:
		r.resolveExpr(xpr.Operand)

	case *ir.Cast:
		r.resolveExpr(xpr.Operand)

	case *ir.TypeTest:
		r.resolveExpr(xpr.Operand)
	}
}

// lookup searches for a name in resolution order: lexical scopes, the file's
// own declarations, then the project registry.  Only same-file symbols have
// their used flag set here: registry symbols may be read concurrently by
// other files' pipelines.
func (r *resolver) lookup(name string) (*common.Symbol, bool) {
	if sym, ok := r.locals.lookup(name); ok {
		sym.Used = true
		return sym, true
	}

	if sym, ok := r.fileScope[name]; ok {
		sym.Used = true
		return sym, true
	}

	if sym, ok := r.reg.LookupSymbol(name); ok {
		return sym, true
	}

	return nil, false
}

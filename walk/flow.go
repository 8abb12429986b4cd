package walk

import (
	"fern/ir"
	"fern/report"
	"fern/types"
)

// flowAnalyzer implements the flow-analysis pass.  For every function and
// method body it builds a control-flow graph, computes reachability from the
// entry, warns about unreachable statements, and warns when a path through a
// non-void body can fall off the end without returning.  Flow findings are
// warnings, never errors.
type flowAnalyzer struct {
	acc *fileAcc
}

func (fa *flowAnalyzer) analyzeFile() {
	for _, fn := range fa.acc.allFuncs() {
		if fn.Body != nil {
			fa.analyzeFunc(fn)
		}
	}
}

func (fa *flowAnalyzer) analyzeFunc(fn *ir.FuncDecl) {
	g := buildCFG(fn.Body)
	reached := g.reachable()

	fa.flagBlock(fn.Body, reached)

	if !returnsValue(fn) {
		return
	}

	// A reachable node on the final frontier means some execution path
	// falls off the end of the body without returning.  A body that only
	// leaves through returns, throws, or never leaves at all (a loop with
	// no exit) has no reachable frontier.
	for _, n := range g.frontier {
		if reached[n.stmt] {
			fa.acc.addIssue(report.Warnf(
				fn.Loc(),
				"not all paths through `%s` return a value",
				fn.Name,
			))
			return
		}
	}
}

// returnsValue reports whether the function's declared return type requires
// every path to produce a value.
func returnsValue(fn *ir.FuncDecl) bool {
	ret := fn.Sig.ReturnType
	if ret == nil {
		return false
	}

	return !types.Equals(ret, types.PrimVoid) && !types.Equals(ret, types.PrimDynamic)
}

// flagBlock warns on the first statement of every unreachable run in the
// block and recurses into the bodies of reachable compound statements.
func (fa *flowAnalyzer) flagBlock(b *ir.Block, reached map[ir.Stmt]bool) {
	if b == nil {
		return
	}

	flagged := false
	for _, s := range b.Stmts {
		if !reached[s] {
			if !flagged {
				fa.acc.addIssue(report.Warnf(s.Loc(), "unreachable code"))
				flagged = true
			}

			continue
		}

		flagged = false
		switch st := s.(type) {
		case *ir.Block:
			fa.flagBlock(st, reached)
		case *ir.If:
			fa.flagBlock(st.Then, reached)
			fa.flagElse(st.Else, reached)
		case *ir.For:
			fa.flagBlock(st.Body, reached)
		case *ir.ForEach:
			fa.flagBlock(st.Body, reached)
		case *ir.While:
			fa.flagBlock(st.Body, reached)
		case *ir.Switch:
			for _, c := range st.Cases {
				fa.flagBlock(c.Body, reached)
			}
			fa.flagBlock(st.Default, reached)
		case *ir.Try:
			fa.flagBlock(st.Body, reached)
			for _, c := range st.Catches {
				fa.flagBlock(c.Body, reached)
			}
			fa.flagBlock(st.Finally, reached)
		case *ir.Labeled:
			if inner, ok := st.Stmt.(*ir.Block); ok {
				fa.flagBlock(inner, reached)
			}
		}
	}
}

// flagElse follows an else chain: each link is either a block or another if.
func (fa *flowAnalyzer) flagElse(s ir.Stmt, reached map[ir.Stmt]bool) {
	switch st := s.(type) {
	case *ir.Block:
		fa.flagBlock(st, reached)
	case *ir.If:
		fa.flagBlock(st.Then, reached)
		fa.flagElse(st.Else, reached)
	}
}

// -----------------------------------------------------------------------------

// cfgNode is one node of a function body's control-flow graph.  Every
// statement of the body gets exactly one node; the entry is a synthetic node
// with a nil statement.
type cfgNode struct {
	stmt  ir.Stmt
	succs []*cfgNode
}

// cfg is the control-flow graph of one function body.
type cfg struct {
	entry *cfgNode

	// frontier holds the nodes from which control falls off the end of the
	// body without an explicit return or throw.
	frontier []*cfgNode
}

// reachable computes the set of statements reachable from the entry.
func (g *cfg) reachable() map[ir.Stmt]bool {
	reached := make(map[ir.Stmt]bool)
	visited := make(map[*cfgNode]bool)

	stack := []*cfgNode{g.entry}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[n] {
			continue
		}
		visited[n] = true

		if n.stmt != nil {
			reached[n.stmt] = true
		}

		stack = append(stack, n.succs...)
	}

	return reached
}

// buildCFG builds the control-flow graph of a function body.
func buildCFG(body *ir.Block) *cfg {
	b := &cfgBuilder{}
	entry := &cfgNode{}

	frontier := b.stmt(body, []*cfgNode{entry})

	return &cfg{entry: entry, frontier: frontier}
}

// cfgBuilder threads loop and switch break targets while translating the
// statement tree into graph edges.
type cfgBuilder struct {
	// breaks collects the break nodes of the enclosing breakable constructs,
	// innermost last.
	breaks []*jumpFrame

	// continues collects the continue nodes of the enclosing loops,
	// innermost last.
	continues []*jumpFrame

	// pendingLabel is the label wrapping the next breakable construct, if
	// any; the construct consumes it when it pushes its frames.
	pendingLabel string
}

// jumpFrame collects the break or continue nodes targeting one enclosing
// breakable construct, together with the label it was declared under.
type jumpFrame struct {
	label string
	nodes []*cfgNode
}

// frameFor picks the frame a break or continue targets: the innermost frame
// for an unlabeled jump, the innermost frame carrying the label otherwise.
// A label that matches no enclosing construct resolves to no frame.
func frameFor(frames []*jumpFrame, label string) *jumpFrame {
	if len(frames) == 0 {
		return nil
	}

	if label == "" {
		return frames[len(frames)-1]
	}

	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].label == label {
			return frames[i]
		}
	}

	return nil
}

func link(preds []*cfgNode, n *cfgNode) {
	for _, p := range preds {
		p.succs = append(p.succs, n)
	}
}

// stmt adds the subgraph for one statement, wiring the given predecessors to
// its entry, and returns the frontier: the nodes from which control falls
// through to whatever follows the statement.
func (b *cfgBuilder) stmt(s ir.Stmt, preds []*cfgNode) []*cfgNode {
	if isNilStmt(s) {
		return preds
	}

	n := &cfgNode{stmt: s}
	link(preds, n)

	switch st := s.(type) {
	case *ir.Block:
		frontier := []*cfgNode{n}
		for _, inner := range st.Stmts {
			frontier = b.stmt(inner, frontier)
		}

		return frontier

	case *ir.If:
		thenFront := b.stmt(st.Then, []*cfgNode{n})

		if st.Else == nil {
			// No else branch: the condition itself falls through.
			return append(thenFront, n)
		}

		elseFront := b.stmt(st.Else, []*cfgNode{n})
		return append(thenFront, elseFront...)

	case *ir.For:
		header := []*cfgNode{n}
		if st.Init != nil {
			header = b.stmt(st.Init, header)
		}

		return b.loop(st.Body, header, st.Cond == nil || isAlwaysTrue(st.Cond))

	case *ir.ForEach:
		// The sequence may be empty, so a foreach always falls through.
		return b.loop(st.Body, []*cfgNode{n}, false)

	case *ir.While:
		return b.loop(st.Body, []*cfgNode{n}, isAlwaysTrue(st.Cond))

	case *ir.Switch:
		b.breaks = append(b.breaks, &jumpFrame{label: b.takeLabel()})

		var frontier []*cfgNode
		for _, c := range st.Cases {
			frontier = append(frontier, b.stmt(c.Body, []*cfgNode{n})...)
		}

		if st.Default != nil {
			frontier = append(frontier, b.stmt(st.Default, []*cfgNode{n})...)
		} else {
			// Without a default, the subject may match no case.
			frontier = append(frontier, n)
		}

		frontier = append(frontier, b.popBreaks()...)
		return frontier

	case *ir.Try:
		// Conservative: an exception can leave the body at any point, so
		// every catch is entered from the try header.
		frontier := b.stmt(st.Body, []*cfgNode{n})
		for _, c := range st.Catches {
			frontier = append(frontier, b.stmt(c.Body, []*cfgNode{n})...)
		}

		if st.Finally != nil {
			// The finally block runs on every path, including throwing
			// ones entered from the header.
			frontier = b.stmt(st.Finally, append(frontier, n))
		}

		return frontier

	case *ir.Return, *ir.Throw:
		return nil

	case *ir.Break:
		if f := frameFor(b.breaks, st.Label); f != nil {
			f.nodes = append(f.nodes, n)
		}

		return nil

	case *ir.Continue:
		if f := frameFor(b.continues, st.Label); f != nil {
			f.nodes = append(f.nodes, n)
		}

		return nil

	case *ir.Labeled:
		b.pendingLabel = st.Label
		frontier := b.stmt(st.Stmt, []*cfgNode{n})
		b.pendingLabel = ""
		return frontier

	default:
		return []*cfgNode{n}
	}
}

// loop wires a loop body: the body's frontier and any continue targets loop
// back to the header, and the loop's own frontier is the header (condition
// false) plus any break nodes.  Loops whose condition can never be false
// only fall through via break.
func (b *cfgBuilder) loop(body *ir.Block, header []*cfgNode, noExit bool) []*cfgNode {
	label := b.takeLabel()
	b.breaks = append(b.breaks, &jumpFrame{label: label})
	b.continues = append(b.continues, &jumpFrame{label: label})

	bodyFront := b.stmt(body, header)

	// Back edges keep the body marked reachable from itself; they matter
	// for do-while headers.
	for _, h := range header {
		link(bodyFront, h)
	}
	top := len(b.continues) - 1
	for _, h := range header {
		link(b.continues[top].nodes, h)
	}
	b.continues = b.continues[:top]

	frontier := b.popBreaks()
	if !noExit {
		frontier = append(frontier, header...)
	}

	return frontier
}

func (b *cfgBuilder) popBreaks() []*cfgNode {
	top := len(b.breaks) - 1
	breaks := b.breaks[top].nodes
	b.breaks = b.breaks[:top]
	return breaks
}

func (b *cfgBuilder) takeLabel() string {
	label := b.pendingLabel
	b.pendingLabel = ""
	return label
}

// isNilStmt reports whether a statement is absent: either a nil interface or
// a typed nil block stored in one.
func isNilStmt(s ir.Stmt) bool {
	if s == nil {
		return true
	}

	blk, ok := s.(*ir.Block)
	return ok && blk == nil
}

// isAlwaysTrue reports whether a loop condition is the constant true.
func isAlwaysTrue(cond ir.Expr) bool {
	lit, ok := cond.(*ir.Literal)
	return ok && lit.LitKind == ir.LitBool && lit.Value == "true"
}

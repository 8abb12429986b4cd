package codec

import (
	"bytes"
	"encoding/binary"
	"sort"

	"fern/common"
	"fern/ir"
	"fern/report"
	"fern/types"
)

// Writer encodes a finalized FileIR into the binary cache format.  A writer
// is single-use: its string and type tables are append-only during one
// encode.
type Writer struct {
	strings     *StringTable
	typeEntries [][]byte
	typeIndex   map[string]uint32
	body        bytes.Buffer
	err         error
}

// NewWriter creates a new single-use writer.
func NewWriter() *Writer {
	return &Writer{
		strings:   NewStringTable(),
		typeIndex: make(map[string]uint32),
	}
}

// EncodeFile is a convenience wrapper encoding one FileIR with a fresh
// writer.
func EncodeFile(f *ir.FileIR) ([]byte, error) {
	return NewWriter().EncodeFile(f)
}

// EncodeFile encodes the given FileIR and returns the complete cache buffer:
// header, string table, type table, then the declaration body.  Encoding is
// deterministic: the same FileIR always produces the same bytes.
func (w *Writer) EncodeFile(f *ir.FileIR) ([]byte, error) {
	w.str(f.Path)
	w.u64(f.ContentHash)
	w.u32(f.NodeCount)

	w.metadata(f.Metadata)
	w.strSlice(f.Imports)
	w.strSlice(f.Exports)
	w.strSlice(f.Dependencies)
	w.strSlice(f.Dependents)

	w.u32(uint32(len(f.Classes)))
	for _, cls := range f.Classes {
		w.classDecl(cls)
	}

	w.u32(uint32(len(f.Functions)))
	for _, fn := range f.Functions {
		w.funcDecl(fn)
	}

	w.u32(uint32(len(f.Issues)))
	for _, issue := range f.Issues {
		w.u8(uint8(issue.Severity))
		w.str(issue.Message)
		w.loc(issue.Loc)
	}

	if w.err != nil {
		return nil, w.err
	}

	var out bytes.Buffer
	putU32(&out, Magic)
	putU16(&out, Version)

	putU32(&out, w.strings.Count())
	for _, s := range w.strings.All() {
		putU16(&out, uint16(len(s)))
		out.WriteString(s)
	}

	putU32(&out, uint32(len(w.typeEntries)))
	for _, entry := range w.typeEntries {
		out.Write(entry)
	}

	out.Write(w.body.Bytes())
	return out.Bytes(), nil
}

// -----------------------------------------------------------------------------
// Primitive emitters.  All writes go through the sticky error: once a write
// fails, every following write is a no-op.

func putU16(b *bytes.Buffer, v uint16) {
	var scratch [2]byte
	binary.LittleEndian.PutUint16(scratch[:], v)
	b.Write(scratch[:])
}

func putU32(b *bytes.Buffer, v uint32) {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], v)
	b.Write(scratch[:])
}

func putU64(b *bytes.Buffer, v uint64) {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], v)
	b.Write(scratch[:])
}

func putBool(b *bytes.Buffer, v bool) {
	if v {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
}

func (w *Writer) u8(v uint8) {
	if w.err == nil {
		w.body.WriteByte(v)
	}
}

func (w *Writer) u16(v uint16) {
	if w.err == nil {
		putU16(&w.body, v)
	}
}

func (w *Writer) u32(v uint32) {
	if w.err == nil {
		putU32(&w.body, v)
	}
}

func (w *Writer) u64(v uint64) {
	if w.err == nil {
		putU64(&w.body, v)
	}
}

func (w *Writer) bool(v bool) {
	if w.err == nil {
		putBool(&w.body, v)
	}
}

// intern adds a string to the table, recording a hard failure for
// over-length strings.
func (w *Writer) intern(s string) uint32 {
	idx, err := w.strings.Add(s)
	if err != nil && w.err == nil {
		w.err = err
	}

	return idx
}

func (w *Writer) str(s string) {
	w.u32(w.intern(s))
}

func (w *Writer) strSlice(ss []string) {
	w.u32(uint32(len(ss)))
	for _, s := range ss {
		w.str(s)
	}
}

// metadata writes a metadata map in sorted key order so that encoding stays
// deterministic.
func (w *Writer) metadata(meta map[string]string) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w.u16(uint16(len(keys)))
	for _, k := range keys {
		w.str(k)
		w.str(meta[k])
	}
}

func (w *Writer) loc(loc report.SourceLoc) {
	w.str(loc.File)
	w.u32(uint32(loc.Line))
	w.u32(uint32(loc.Col))
	w.u32(uint32(loc.Offset))
	w.u32(uint32(loc.Length))
}

func (w *Writer) nodeBase(nb *ir.NodeBase) {
	w.u32(nb.Ident.Num)
	w.loc(nb.Pos)
	w.metadata(map[string]string(nb.Annots))
}

func (w *Writer) symbol(sym *common.Symbol) {
	w.bool(sym != nil)
	if sym == nil {
		return
	}

	w.str(sym.Name)
	w.str(sym.File)
	w.loc(sym.DefLoc)
	w.typeRef(sym.Type)
	w.u8(uint8(sym.Kind))
	w.u8(uint8(sym.Visibility))
	w.u16(uint16(sym.Modifiers))
	w.bool(sym.Used)
}

// -----------------------------------------------------------------------------
// Type table.

// typeRef interns a type and writes its table index.  A nil type writes the
// nil sentinel.
func (w *Writer) typeRef(t types.Type) {
	w.u32(w.internType(t))
}

// internType deduplicates a type into the type table and returns its index.
// Component types are interned before their parent, so table entries only
// ever reference earlier entries.
func (w *Writer) internType(t types.Type) uint32 {
	if t == nil {
		return nilTypeRef
	}

	entry := w.buildTypeEntry(t)
	key := string(entry)
	if idx, ok := w.typeIndex[key]; ok {
		return idx
	}

	idx := uint32(len(w.typeEntries))
	w.typeEntries = append(w.typeEntries, entry)
	w.typeIndex[key] = idx

	return idx
}

// buildTypeEntry encodes one type-table entry.  Nested types are interned
// recursively and referenced by index.
func (w *Writer) buildTypeEntry(t types.Type) []byte {
	var b bytes.Buffer

	switch v := t.(type) {
	case types.PrimType:
		b.WriteByte(tagPrim)
		b.WriteByte(uint8(v))
	case *types.ClassRef:
		b.WriteByte(tagClassRef)
		putU32(&b, w.intern(v.Name))
		putU32(&b, uint32(len(v.TypeArgs)))
		for _, arg := range v.TypeArgs {
			putU32(&b, w.internType(arg))
		}
		putBool(&b, v.Abstract)
	case *types.GenericType:
		b.WriteByte(tagGeneric)
		putU32(&b, w.internType(v.Base))
		putU32(&b, uint32(len(v.TypeArgs)))
		for _, arg := range v.TypeArgs {
			putU32(&b, w.internType(arg))
		}
		putU32(&b, uint32(len(v.TypeParams)))
		for _, param := range v.TypeParams {
			putU32(&b, w.intern(param))
		}
	case *types.FuncSig:
		b.WriteByte(tagFuncSig)
		putU32(&b, uint32(len(v.Params)))
		for _, param := range v.Params {
			putU32(&b, w.intern(param.Name))
			putU32(&b, w.internType(param.Type))

			var flags uint8
			if param.Optional {
				flags |= 1
			}
			if param.Named {
				flags |= 2
			}
			if param.Required {
				flags |= 4
			}
			b.WriteByte(flags)
		}
		putU32(&b, w.internType(v.ReturnType))
		putU32(&b, uint32(len(v.TypeParams)))
		for _, param := range v.TypeParams {
			putU32(&b, w.intern(param))
		}
	case *types.NullableType:
		b.WriteByte(tagNullable)
		putU32(&b, w.internType(v.Inner))
	case *types.UnresolvedType:
		b.WriteByte(tagUnresolved)
		putU32(&b, w.intern(v.Name))
		putU32(&b, w.intern(v.Hint))
		putU32(&b, uint32(len(v.Attempts)))
		for _, attempt := range v.Attempts {
			putU32(&b, w.intern(attempt))
		}
	default:
		if w.err == nil {
			w.err = corruptf("unknown type variant %T", t)
		}
	}

	return b.Bytes()
}

// -----------------------------------------------------------------------------
// Expressions.

func (w *Writer) exprBase(eb *ir.ExprBase) {
	w.nodeBase(&eb.NodeBase)
	w.typeRef(eb.Ty)
}

func (w *Writer) expr(e ir.Expr) {
	if e == nil {
		w.u8(nilNode)
		return
	}

	w.u8(uint8(e.Kind()))

	switch v := e.(type) {
	case *ir.Literal:
		w.exprBase(&v.ExprBase)
		w.u8(uint8(v.LitKind))
		w.str(v.Value)
	case *ir.IdentRef:
		w.exprBase(&v.ExprBase)
		w.str(v.Name)
		w.symbol(v.Sym)
	case *ir.PropertyAccess:
		w.exprBase(&v.ExprBase)
		w.expr(v.Recv)
		w.str(v.Name)
	case *ir.IndexAccess:
		w.exprBase(&v.ExprBase)
		w.expr(v.Recv)
		w.expr(v.Index)
	case *ir.UnaryOp:
		w.exprBase(&v.ExprBase)
		w.str(v.Op)
		w.expr(v.Operand)
	case *ir.BinaryOp:
		w.exprBase(&v.ExprBase)
		w.str(v.Op)
		w.expr(v.Lhs)
		w.expr(v.Rhs)
	case *ir.Assign:
		w.exprBase(&v.ExprBase)
		w.expr(v.Target)
		w.str(v.Op)
		w.expr(v.Value)
	case *ir.Conditional:
		w.exprBase(&v.ExprBase)
		w.expr(v.Cond)
		w.expr(v.Then)
		w.expr(v.Else)
	case *ir.Call:
		w.exprBase(&v.ExprBase)
		w.u8(uint8(v.CallKind))
		w.expr(v.Recv)
		w.str(v.Name)
		w.u32(uint32(len(v.Args)))
		for _, arg := range v.Args {
			w.str(arg.Name)
			w.expr(arg.Value)
		}
		w.symbol(v.Sym)
	case *ir.Lambda:
		w.exprBase(&v.ExprBase)
		w.u32(uint32(len(v.Params)))
		for _, param := range v.Params {
			w.paramDecl(param)
		}
		w.block(v.Body)
		w.expr(v.ExprBody)
	case *ir.Await:
		w.exprBase(&v.ExprBase)
		w.expr(v.Operand)
	case *ir.Cast:
		w.exprBase(&v.ExprBase)
		w.expr(v.Operand)
		w.typeRef(v.Target)
	case *ir.TypeTest:
		w.exprBase(&v.ExprBase)
		w.expr(v.Operand)
		w.typeRef(v.Target)
		w.bool(v.Negated)
	}
}

// -----------------------------------------------------------------------------
// Statements.

func (w *Writer) usages(usages []*ir.WidgetUsage) {
	w.u32(uint32(len(usages)))
	for _, usage := range usages {
		w.str(usage.Widget)
		w.loc(usage.Loc)
		w.bool(usage.Conditional)
		w.bool(usage.Iterated)
		w.usages(usage.Children)
	}
}

func (w *Writer) stmtBase(sb *ir.StmtBase) {
	w.nodeBase(&sb.NodeBase)
	w.usages(sb.NestedUsages)
}

// block writes an optional block.
func (w *Writer) block(b *ir.Block) {
	if b == nil {
		w.u8(nilNode)
	} else {
		w.stmt(b)
	}
}

func (w *Writer) varDecl(vd *ir.VarDecl) {
	w.bool(vd != nil)
	if vd == nil {
		return
	}

	w.nodeBase(&vd.NodeBase)
	w.str(vd.Name)
	w.typeRef(vd.Type)
	w.expr(vd.Init)
	w.u16(uint16(vd.Mods))
	w.symbol(vd.Sym)
}

func (w *Writer) stmt(s ir.Stmt) {
	if s == nil {
		w.u8(nilNode)
		return
	}

	w.u8(uint8(s.Kind()))

	switch v := s.(type) {
	case *ir.Block:
		w.stmtBase(&v.StmtBase)
		w.u32(uint32(len(v.Stmts)))
		for _, inner := range v.Stmts {
			w.stmt(inner)
		}
	case *ir.ExprStmt:
		w.stmtBase(&v.StmtBase)
		w.expr(v.Expr)
	case *ir.LocalVar:
		w.stmtBase(&v.StmtBase)
		w.varDecl(v.Decl)
	case *ir.If:
		w.stmtBase(&v.StmtBase)
		w.expr(v.Cond)
		w.block(v.Then)
		w.stmt(v.Else)
	case *ir.For:
		w.stmtBase(&v.StmtBase)
		w.stmt(v.Init)
		w.expr(v.Cond)
		w.expr(v.Update)
		w.block(v.Body)
	case *ir.ForEach:
		w.stmtBase(&v.StmtBase)
		w.varDecl(v.Var)
		w.expr(v.Seq)
		w.block(v.Body)
	case *ir.While:
		w.stmtBase(&v.StmtBase)
		w.expr(v.Cond)
		w.block(v.Body)
		w.bool(v.DoFirst)
	case *ir.Switch:
		w.stmtBase(&v.StmtBase)
		w.expr(v.Subject)
		w.u32(uint32(len(v.Cases)))
		for _, c := range v.Cases {
			w.u32(uint32(len(c.Values)))
			for _, val := range c.Values {
				w.expr(val)
			}
			w.block(c.Body)
		}
		w.block(v.Default)
	case *ir.Try:
		w.stmtBase(&v.StmtBase)
		w.block(v.Body)
		w.u32(uint32(len(v.Catches)))
		for _, c := range v.Catches {
			w.varDecl(c.Param)
			w.block(c.Body)
		}
		w.block(v.Finally)
	case *ir.Return:
		w.stmtBase(&v.StmtBase)
		w.expr(v.Value)
	case *ir.Break:
		w.stmtBase(&v.StmtBase)
		w.str(v.Label)
	case *ir.Continue:
		w.stmtBase(&v.StmtBase)
		w.str(v.Label)
	case *ir.Throw:
		w.stmtBase(&v.StmtBase)
		w.expr(v.Value)
	case *ir.Assert:
		w.stmtBase(&v.StmtBase)
		w.expr(v.Cond)
		w.expr(v.Message)
	case *ir.Yield:
		w.stmtBase(&v.StmtBase)
		w.expr(v.Value)
		w.bool(v.Each)
	case *ir.Labeled:
		w.stmtBase(&v.StmtBase)
		w.str(v.Label)
		w.stmt(v.Stmt)
	}
}

// -----------------------------------------------------------------------------
// Declarations.

func (w *Writer) paramDecl(pd *ir.ParamDecl) {
	w.nodeBase(&pd.NodeBase)
	w.str(pd.Name)
	w.typeRef(pd.Type)
	w.expr(pd.Default)
	w.u16(uint16(pd.Mods))
	w.symbol(pd.Sym)
}

func (w *Writer) fieldDecl(fd *ir.FieldDecl) {
	w.nodeBase(&fd.NodeBase)
	w.str(fd.Name)
	w.typeRef(fd.Type)
	w.expr(fd.Init)
	w.u16(uint16(fd.Mods))
	w.u8(uint8(fd.Visibility))
	w.str(fd.Doc)
	w.symbol(fd.Sym)
}

func (w *Writer) funcDecl(fd *ir.FuncDecl) {
	w.nodeBase(&fd.NodeBase)
	w.str(fd.Name)
	w.str(fd.Owner)

	w.u32(uint32(len(fd.Params)))
	for _, param := range fd.Params {
		w.paramDecl(param)
	}

	if fd.Sig == nil {
		w.u32(nilTypeRef)
	} else {
		w.typeRef(fd.Sig)
	}
	w.block(fd.Body)
	w.bool(fd.Abstract)
	w.bool(fd.Static)
	w.bool(fd.Async)
	w.u8(uint8(fd.Visibility))
	w.str(fd.Doc)
	w.strSlice(fd.Annotations)
	w.symbol(fd.Sym)
}

func (w *Writer) classDecl(cd *ir.ClassDecl) {
	w.nodeBase(&cd.NodeBase)
	w.str(cd.Name)
	w.str(cd.QualifiedName)
	w.typeRef(cd.Superclass)
	w.bool(cd.Abstract)
	w.u8(uint8(cd.WidgetKind))
	w.strSlice(cd.TypeParams)
	w.u8(uint8(cd.Visibility))
	w.str(cd.Doc)
	w.strSlice(cd.Annotations)

	w.u32(uint32(len(cd.Fields)))
	for _, field := range cd.Fields {
		w.fieldDecl(field)
	}

	w.u32(uint32(len(cd.Methods)))
	for _, method := range cd.Methods {
		w.funcDecl(method)
	}

	w.symbol(cd.Sym)
}

package codec

import (
	"encoding/binary"
	"fmt"

	"fern/common"
	"fern/ir"
	"fern/report"
	"fern/types"
)

// Reader decodes a binary cache buffer back into a FileIR.  The reader fails
// hard on any corruption: it never silently substitutes an empty or default
// value for unreadable data.
type Reader struct {
	data    []byte
	pos     int
	strings []string
	types   []types.Type
	err     error
}

// NewReader creates a reader over the given cache buffer.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// DecodeFile is a convenience wrapper decoding one FileIR with a fresh
// reader.
func DecodeFile(data []byte) (*ir.FileIR, error) {
	return NewReader(data).DecodeFile()
}

// DecodeFile decodes the complete cache buffer.  It returns ErrBadMagic for
// buffers that are not cache files and ErrVersionMismatch for cache files
// written by a different format version.
func (r *Reader) DecodeFile() (*ir.FileIR, error) {
	if magic := r.u32(); r.err == nil && magic != Magic {
		return nil, ErrBadMagic
	}

	if version := r.u16(); r.err == nil && version != Version {
		return nil, ErrVersionMismatch
	}

	r.readStringTable()
	r.readTypeTable()

	f := &ir.FileIR{}
	f.Path = r.str()
	f.ContentHash = r.u64()
	f.NodeCount = r.u32()

	f.Metadata = r.metadata()
	f.Imports = r.strSlice()
	f.Exports = r.strSlice()
	f.Dependencies = r.strSlice()
	f.Dependents = r.strSlice()

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		f.Classes = append(f.Classes, r.classDecl(f.Path))
	}

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		f.Functions = append(f.Functions, r.funcDecl(f.Path))
	}

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		severity := report.Severity(r.u8())
		msg := r.str()
		loc := r.loc()
		f.Issues = append(f.Issues, report.AnalysisIssue{Severity: severity, Message: msg, Loc: loc})
	}

	if r.err != nil {
		return nil, r.err
	}

	return f, nil
}

// -----------------------------------------------------------------------------
// Primitive readers.  All reads go through the sticky error: once a read
// fails, every following read returns a zero value.

// need checks that n more bytes remain.  Truncated buffers are a hard
// failure, exactly like out-of-range string indices.
func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}

	if r.pos+n > len(r.data) {
		r.err = &StringTableError{Msg: fmt.Sprintf("truncated buffer: need %d bytes at offset %d of %d", n, r.pos, len(r.data))}
		return false
	}

	return true
}

func (r *Reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}

	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *Reader) u16() uint16 {
	if !r.need(2) {
		return 0
	}

	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *Reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}

	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *Reader) u64() uint64 {
	if !r.need(8) {
		return 0
	}

	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}

func (r *Reader) bool() bool {
	return r.u8() != 0
}

// tableCount reads a table's entry count and bounds it against the bytes
// actually remaining in the buffer.  Every entry occupies at least minEntry
// bytes on disk, so a larger count is corruption and must be rejected before
// any allocation is sized from it.
func (r *Reader) tableCount(minEntry int) int {
	count := int(r.u32())
	if r.err != nil {
		return 0
	}

	if remaining := len(r.data) - r.pos; count > remaining/minEntry {
		r.err = corruptf("table count %d exceeds the %d remaining bytes", count, len(r.data)-r.pos)
		return 0
	}

	return count
}

func (r *Reader) readStringTable() {
	count := r.tableCount(2)

	r.strings = make([]string, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		length := int(r.u16())
		if !r.need(length) {
			return
		}

		r.strings = append(r.strings, string(r.data[r.pos:r.pos+length]))
		r.pos += length
	}

	if r.err == nil && (len(r.strings) == 0 || r.strings[0] != "") {
		r.err = &StringTableError{Msg: "index 0 is not the empty string"}
	}
}

// str reads a u32 string-table index and resolves it.  An index outside
// [0, count) is a hard failure.
func (r *Reader) str() string {
	idx := r.u32()
	if r.err != nil {
		return ""
	}

	if idx >= uint32(len(r.strings)) {
		r.err = &StringTableError{Msg: fmt.Sprintf("index %d out of range [0, %d)", idx, len(r.strings))}
		return ""
	}

	return r.strings[idx]
}

func (r *Reader) strSlice() []string {
	count := r.u32()

	var ss []string
	for i := uint32(0); i < count && r.err == nil; i++ {
		ss = append(ss, r.str())
	}

	return ss
}

func (r *Reader) metadata() map[string]string {
	count := r.u16()
	if count == 0 {
		return nil
	}

	meta := make(map[string]string, count)
	for i := uint16(0); i < count && r.err == nil; i++ {
		k := r.str()
		meta[k] = r.str()
	}

	return meta
}

func (r *Reader) loc() report.SourceLoc {
	return report.SourceLoc{
		File:   r.str(),
		Line:   int(r.u32()),
		Col:    int(r.u32()),
		Offset: int(r.u32()),
		Length: int(r.u32()),
	}
}

func (r *Reader) nodeBase(file string) ir.NodeBase {
	num := r.u32()
	loc := r.loc()
	meta := r.metadata()

	return ir.NodeBase{
		Ident:  ir.NodeID{File: file, Num: num},
		Pos:    loc,
		Annots: ir.Metadata(meta),
	}
}

func (r *Reader) symbol() *common.Symbol {
	if !r.bool() {
		return nil
	}

	return &common.Symbol{
		Name:       r.str(),
		File:       r.str(),
		DefLoc:     r.loc(),
		Type:       r.typeRef(),
		Kind:       common.SymbolKind(r.u8()),
		Visibility: common.Visibility(r.u8()),
		Modifiers:  common.Modifiers(r.u16()),
		Used:       r.bool(),
	}
}

// -----------------------------------------------------------------------------
// Type table.

// readTypeTable decodes the type table.  Entries may only reference earlier
// entries; forward references are corruption.
func (r *Reader) readTypeTable() {
	count := r.tableCount(1)

	r.types = make([]types.Type, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		r.types = append(r.types, r.typeEntry())
	}
}

// resolveTypeRef resolves a raw type-table index read from an entry or the
// body against the entries decoded so far.
func (r *Reader) resolveTypeRef(idx uint32) types.Type {
	if r.err != nil || idx == nilTypeRef {
		return nil
	}

	if idx >= uint32(len(r.types)) {
		r.err = corruptf("type reference %d out of range [0, %d)", idx, len(r.types))
		return nil
	}

	return r.types[idx]
}

// typeRef reads a u32 type reference from the body.
func (r *Reader) typeRef() types.Type {
	return r.resolveTypeRef(r.u32())
}

func (r *Reader) typeEntry() types.Type {
	tag := r.u8()
	if r.err != nil {
		return nil
	}

	switch tag {
	case tagPrim:
		return types.PrimType(r.u8())
	case tagClassRef:
		cr := &types.ClassRef{Name: r.str()}
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			cr.TypeArgs = append(cr.TypeArgs, r.resolveTypeRef(r.u32()))
		}
		cr.Abstract = r.bool()
		return cr
	case tagGeneric:
		gt := &types.GenericType{Base: r.resolveTypeRef(r.u32())}
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			gt.TypeArgs = append(gt.TypeArgs, r.resolveTypeRef(r.u32()))
		}
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			gt.TypeParams = append(gt.TypeParams, r.str())
		}
		return gt
	case tagFuncSig:
		fs := &types.FuncSig{}
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			param := types.Param{Name: r.str(), Type: r.resolveTypeRef(r.u32())}

			flags := r.u8()
			param.Optional = flags&1 != 0
			param.Named = flags&2 != 0
			param.Required = flags&4 != 0

			fs.Params = append(fs.Params, param)
		}
		fs.ReturnType = r.resolveTypeRef(r.u32())
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			fs.TypeParams = append(fs.TypeParams, r.str())
		}
		return fs
	case tagNullable:
		inner := r.resolveTypeRef(r.u32())
		if inner == nil {
			if r.err == nil {
				r.err = corruptf("nullable type with no inner type")
			}
			return nil
		}
		return types.NewNullable(inner)
	case tagUnresolved:
		ut := &types.UnresolvedType{Name: r.str(), Hint: r.str()}
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			ut.Attempts = append(ut.Attempts, r.str())
		}
		return ut
	}

	r.err = corruptf("unknown type tag %d", tag)
	return nil
}

// -----------------------------------------------------------------------------
// Expressions.

func (r *Reader) exprBase(file string) ir.ExprBase {
	nb := r.nodeBase(file)
	return ir.ExprBase{NodeBase: nb, Ty: r.typeRef()}
}

func (r *Reader) expr(file string) ir.Expr {
	tag := r.u8()
	if r.err != nil || tag == nilNode {
		return nil
	}

	switch ir.ExprKind(tag) {
	case ir.ExprLiteral:
		e := &ir.Literal{ExprBase: r.exprBase(file)}
		e.LitKind = ir.LitKind(r.u8())
		e.Value = r.str()
		return e
	case ir.ExprIdent:
		e := &ir.IdentRef{ExprBase: r.exprBase(file)}
		e.Name = r.str()
		e.Sym = r.symbol()
		return e
	case ir.ExprProperty:
		e := &ir.PropertyAccess{ExprBase: r.exprBase(file)}
		e.Recv = r.expr(file)
		e.Name = r.str()
		return e
	case ir.ExprIndex:
		e := &ir.IndexAccess{ExprBase: r.exprBase(file)}
		e.Recv = r.expr(file)
		e.Index = r.expr(file)
		return e
	case ir.ExprUnary:
		e := &ir.UnaryOp{ExprBase: r.exprBase(file)}
		e.Op = r.str()
		e.Operand = r.expr(file)
		return e
	case ir.ExprBinary:
		e := &ir.BinaryOp{ExprBase: r.exprBase(file)}
		e.Op = r.str()
		e.Lhs = r.expr(file)
		e.Rhs = r.expr(file)
		return e
	case ir.ExprAssign:
		e := &ir.Assign{ExprBase: r.exprBase(file)}
		e.Target = r.expr(file)
		e.Op = r.str()
		e.Value = r.expr(file)
		return e
	case ir.ExprCond:
		e := &ir.Conditional{ExprBase: r.exprBase(file)}
		e.Cond = r.expr(file)
		e.Then = r.expr(file)
		e.Else = r.expr(file)
		return e
	case ir.ExprCall:
		e := &ir.Call{ExprBase: r.exprBase(file)}
		e.CallKind = ir.CallKind(r.u8())
		e.Recv = r.expr(file)
		e.Name = r.str()
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			arg := ir.Arg{Name: r.str()}
			arg.Value = r.expr(file)
			e.Args = append(e.Args, arg)
		}
		e.Sym = r.symbol()
		return e
	case ir.ExprLambda:
		e := &ir.Lambda{ExprBase: r.exprBase(file)}
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			e.Params = append(e.Params, r.paramDecl(file))
		}
		e.Body = r.block(file)
		e.ExprBody = r.expr(file)
		return e
	case ir.ExprAwait:
		e := &ir.Await{ExprBase: r.exprBase(file)}
		e.Operand = r.expr(file)
		return e
	case ir.ExprCast:
		e := &ir.Cast{ExprBase: r.exprBase(file)}
		e.Operand = r.expr(file)
		e.Target = r.typeRef()
		return e
	case ir.ExprTypeTest:
		e := &ir.TypeTest{ExprBase: r.exprBase(file)}
		e.Operand = r.expr(file)
		e.Target = r.typeRef()
		e.Negated = r.bool()
		return e
	}

	r.err = corruptf("unknown expression tag %d", tag)
	return nil
}

// -----------------------------------------------------------------------------
// Statements.

func (r *Reader) usages() []*ir.WidgetUsage {
	count := r.u32()

	var usages []*ir.WidgetUsage
	for i := uint32(0); i < count && r.err == nil; i++ {
		usage := &ir.WidgetUsage{
			Widget:      r.str(),
			Loc:         r.loc(),
			Conditional: r.bool(),
			Iterated:    r.bool(),
		}
		usage.Children = r.usages()
		usages = append(usages, usage)
	}

	return usages
}

func (r *Reader) stmtBase(file string) ir.StmtBase {
	nb := r.nodeBase(file)
	return ir.StmtBase{NodeBase: nb, NestedUsages: r.usages()}
}

// block reads an optional block written by Writer.block.
func (r *Reader) block(file string) *ir.Block {
	s := r.stmt(file)
	if s == nil {
		return nil
	}

	b, ok := s.(*ir.Block)
	if !ok {
		if r.err == nil {
			r.err = corruptf("expected block statement, got kind %d", s.Kind())
		}
		return nil
	}

	return b
}

func (r *Reader) varDecl(file string) *ir.VarDecl {
	if !r.bool() {
		return nil
	}

	vd := &ir.VarDecl{NodeBase: r.nodeBase(file)}
	vd.Name = r.str()
	vd.Type = r.typeRef()
	vd.Init = r.expr(file)
	vd.Mods = common.Modifiers(r.u16())
	vd.Sym = r.symbol()

	return vd
}

func (r *Reader) stmt(file string) ir.Stmt {
	tag := r.u8()
	if r.err != nil || tag == nilNode {
		return nil
	}

	switch ir.StmtKind(tag) {
	case ir.StmtBlock:
		s := &ir.Block{StmtBase: r.stmtBase(file)}
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			s.Stmts = append(s.Stmts, r.stmt(file))
		}
		return s
	case ir.StmtExpr:
		s := &ir.ExprStmt{StmtBase: r.stmtBase(file)}
		s.Expr = r.expr(file)
		return s
	case ir.StmtLocalVar:
		s := &ir.LocalVar{StmtBase: r.stmtBase(file)}
		s.Decl = r.varDecl(file)
		return s
	case ir.StmtIf:
		s := &ir.If{StmtBase: r.stmtBase(file)}
		s.Cond = r.expr(file)
		s.Then = r.block(file)
		s.Else = r.stmt(file)
		return s
	case ir.StmtFor:
		s := &ir.For{StmtBase: r.stmtBase(file)}
		s.Init = r.stmt(file)
		s.Cond = r.expr(file)
		s.Update = r.expr(file)
		s.Body = r.block(file)
		return s
	case ir.StmtForEach:
		s := &ir.ForEach{StmtBase: r.stmtBase(file)}
		s.Var = r.varDecl(file)
		s.Seq = r.expr(file)
		s.Body = r.block(file)
		return s
	case ir.StmtWhile:
		s := &ir.While{StmtBase: r.stmtBase(file)}
		s.Cond = r.expr(file)
		s.Body = r.block(file)
		s.DoFirst = r.bool()
		return s
	case ir.StmtSwitch:
		s := &ir.Switch{StmtBase: r.stmtBase(file)}
		s.Subject = r.expr(file)
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			var c ir.SwitchCase
			for m := r.u32(); m > 0 && r.err == nil; m-- {
				c.Values = append(c.Values, r.expr(file))
			}
			c.Body = r.block(file)
			s.Cases = append(s.Cases, c)
		}
		s.Default = r.block(file)
		return s
	case ir.StmtTry:
		s := &ir.Try{StmtBase: r.stmtBase(file)}
		s.Body = r.block(file)
		for n := r.u32(); n > 0 && r.err == nil; n-- {
			var c ir.Catch
			c.Param = r.varDecl(file)
			c.Body = r.block(file)
			s.Catches = append(s.Catches, c)
		}
		s.Finally = r.block(file)
		return s
	case ir.StmtReturn:
		s := &ir.Return{StmtBase: r.stmtBase(file)}
		s.Value = r.expr(file)
		return s
	case ir.StmtBreak:
		s := &ir.Break{StmtBase: r.stmtBase(file)}
		s.Label = r.str()
		return s
	case ir.StmtContinue:
		s := &ir.Continue{StmtBase: r.stmtBase(file)}
		s.Label = r.str()
		return s
	case ir.StmtThrow:
		s := &ir.Throw{StmtBase: r.stmtBase(file)}
		s.Value = r.expr(file)
		return s
	case ir.StmtAssert:
		s := &ir.Assert{StmtBase: r.stmtBase(file)}
		s.Cond = r.expr(file)
		s.Message = r.expr(file)
		return s
	case ir.StmtYield:
		s := &ir.Yield{StmtBase: r.stmtBase(file)}
		s.Value = r.expr(file)
		s.Each = r.bool()
		return s
	case ir.StmtLabeled:
		s := &ir.Labeled{StmtBase: r.stmtBase(file)}
		s.Label = r.str()
		s.Stmt = r.stmt(file)
		return s
	}

	r.err = corruptf("unknown statement tag %d", tag)
	return nil
}

// -----------------------------------------------------------------------------
// Declarations.

func (r *Reader) paramDecl(file string) *ir.ParamDecl {
	pd := &ir.ParamDecl{NodeBase: r.nodeBase(file)}
	pd.Name = r.str()
	pd.Type = r.typeRef()
	pd.Default = r.expr(file)
	pd.Mods = common.Modifiers(r.u16())
	pd.Sym = r.symbol()

	return pd
}

func (r *Reader) fieldDecl(file string) *ir.FieldDecl {
	fd := &ir.FieldDecl{NodeBase: r.nodeBase(file)}
	fd.Name = r.str()
	fd.Type = r.typeRef()
	fd.Init = r.expr(file)
	fd.Mods = common.Modifiers(r.u16())
	fd.Visibility = common.Visibility(r.u8())
	fd.Doc = r.str()
	fd.Sym = r.symbol()

	return fd
}

func (r *Reader) funcDecl(file string) *ir.FuncDecl {
	fd := &ir.FuncDecl{NodeBase: r.nodeBase(file)}
	fd.Name = r.str()
	fd.Owner = r.str()

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		fd.Params = append(fd.Params, r.paramDecl(file))
	}

	if sig, ok := r.typeRef().(*types.FuncSig); ok {
		fd.Sig = sig
	}

	fd.Body = r.block(file)
	fd.Abstract = r.bool()
	fd.Static = r.bool()
	fd.Async = r.bool()
	fd.Visibility = common.Visibility(r.u8())
	fd.Doc = r.str()
	fd.Annotations = r.strSlice()
	fd.Sym = r.symbol()

	return fd
}

func (r *Reader) classDecl(file string) *ir.ClassDecl {
	cd := &ir.ClassDecl{NodeBase: r.nodeBase(file)}
	cd.Name = r.str()
	cd.QualifiedName = r.str()
	cd.Superclass = r.typeRef()
	cd.Abstract = r.bool()
	cd.WidgetKind = ir.WidgetKind(r.u8())
	cd.TypeParams = r.strSlice()
	cd.Visibility = common.Visibility(r.u8())
	cd.Doc = r.str()
	cd.Annotations = r.strSlice()

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		cd.Fields = append(cd.Fields, r.fieldDecl(file))
	}

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		cd.Methods = append(cd.Methods, r.funcDecl(file))
	}

	cd.Sym = r.symbol()

	return cd
}

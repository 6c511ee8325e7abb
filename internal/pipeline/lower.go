package pipeline

import (
	"fmt"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/ir"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/symbol"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Procedure is one lowered procedure body, keyed in LowerFile's result
// by the same "Owner::Method"-style path `internal/resolve` already
// uses, so a caller can line a lowering back up with its declaration
// without re-walking the AST.
type Procedure struct {
	Symbol string
	Body   ir.Node
}

// LowerFile translates every procedure body in f into the IR package's
// node trees, grounded on the teacher's elaborate/eval passes' general
// shape (walk the checked tree once, building one output node per
// input node) but targeting `internal/ir`'s typed node family instead
// of ailang's evaluator closures.
//
// The per-node analysis type the bidirectional checker computed is not
// threaded back onto the AST (the checker reports diagnostics and
// demands, not a node->type map), so every lowered node's Type() is
// left nil here; a backend wanting types back re-synthesizes them from
// tb against the resolved declarations, the same way `internal/check`
// itself does.
func LowerFile(tb *types.Table, res *resolve.Result, f *ast.File) map[string]Procedure {
	out := make(map[string]Procedure)
	l := &lowerer{tb: tb, res: res, next: 1}
	for _, it := range f.Items {
		switch d := it.(type) {
		case *ast.ProcedureItem:
			if d.Body == nil {
				continue
			}
			sym := symbol.Mangle(nil, d.Name, nil)
			out[d.Name] = Procedure{Symbol: sym, Body: l.prologue(d.Body)}
		case *ast.ClassItem:
			for _, m := range d.Methods {
				if m.Body == nil {
					continue
				}
				sym := symbol.MangleMethod(nil, d.Name, m.Name)
				key := d.Name + "::" + m.Name
				out[key] = Procedure{Symbol: sym, Body: l.prologue(m.Body)}
			}
		case *ast.ModalItem:
			for _, st := range d.States {
				for _, tr := range st.Transitions {
					if tr.Body == nil {
						continue
					}
					sym := symbol.MangleModalTransition(nil, d.Name, st.Name, tr.Name)
					key := d.Name + "::" + st.Name + "::" + tr.Name
					out[key] = Procedure{Symbol: sym, Body: l.prologue(tr.Body)}
				}
			}
		}
	}
	return out
}

// prologue lowers a procedure/method/transition body and prepends the
// InitPanicHandle node representing the hidden panic-out parameter
// every procedure prologue receives (spec.md §4.7). Nested blocks (if,
// loop, region, ...) go through plain block instead, since the handle
// is acquired once per procedure, not per scope.
func (l *lowerer) prologue(b *ast.Block) *ir.Block {
	out := l.block(b)
	if out == nil {
		return nil
	}
	out.Body = append([]ir.Node{&ir.InitPanicHandle{Base: l.base(b)}}, out.Body...)
	return out
}

type lowerer struct {
	tb   *types.Table
	res  *resolve.Result
	next uint64
}

// checkedBinaryOps are the BinaryOp operators spec.md §4.7 lists as
// fallible (div/rem, shift); every other operator lowers straight to
// a plain BinaryOp.
var checkedBinaryOps = map[string]bool{"/": true, "%": true, "<<": true, ">>": true}

// binaryOp lowers a resolved operator and its already-lowered operands,
// wrapping in CheckOp when the operator can panic at runtime. It is
// shared between BinaryOp expressions and compound-assignment's
// implicit read-modify-write so both get the same panic semantics.
func (l *lowerer) binaryOp(n ast.Node, op string, left, right ir.Node) ir.Node {
	if checkedBinaryOps[op] {
		return &ir.CheckOp{Base: l.base(n), Op: op, Operands: []ir.Node{left, right}}
	}
	return &ir.BinaryOp{Base: l.base(n), Op: op, Left: left, Right: right}
}

func (l *lowerer) id() uint64 {
	id := l.next
	l.next++
	return id
}

func (l *lowerer) base(n ast.Node) ir.Base {
	return ir.Base{NodeID: l.id(), Sp: n.Span()}
}

func (l *lowerer) block(b *ast.Block) *ir.Block {
	if b == nil {
		return nil
	}
	out := &ir.Block{Base: l.base(b)}
	for _, s := range b.Stmts {
		if n := l.stmt(s); n != nil {
			out.Body = append(out.Body, n)
		}
	}
	if b.Tail != nil {
		out.Tail = l.expr(b.Tail)
	}
	return out
}

func (l *lowerer) stmt(s ast.Stmt) ir.Node {
	switch x := s.(type) {
	case *ast.LetStmt:
		return &ir.BindVar{Base: l.base(x), Name: x.Name, Value: l.expr(x.Value)}
	case *ast.AssignStmt:
		if id, ok := x.Target.(*ast.Ident); ok {
			return &ir.StoreVar{Base: l.base(x), Name: id.Name, Value: l.expr(x.Value)}
		}
		return &ir.WritePtr{Base: l.base(x), Ptr: l.expr(x.Target), Value: l.expr(x.Value)}
	case *ast.CompoundAssignStmt:
		if id, ok := x.Target.(*ast.Ident); ok {
			read := &ir.ReadVar{Base: l.base(x), Name: id.Name}
			bin := l.binaryOp(x, x.Op, read, l.expr(x.Value))
			return &ir.StoreVar{Base: l.base(x), Name: id.Name, Value: bin}
		}
		return l.expr(x.Value)
	case *ast.ExprStmt:
		return l.expr(x.X)
	case *ast.ReturnStmt:
		var v ir.Node
		if x.Value != nil {
			v = l.expr(x.Value)
		}
		return &ir.Return{Base: l.base(x), Value: v}
	case *ast.ResultStmt:
		return &ir.Result{Base: l.base(x), Value: l.expr(x.Value)}
	case *ast.BreakStmt:
		var v ir.Node
		if x.Value != nil {
			v = l.expr(x.Value)
		}
		return &ir.Break{Base: l.base(x), Label: x.Label, Value: v}
	case *ast.ContinueStmt:
		return &ir.Continue{Base: l.base(x), Label: x.Label}
	case *ast.UnsafeBlockStmt:
		return l.block(x.Body)
	case *ast.DeferStmt:
		return &ir.Defer{Base: l.base(x), Body: l.expr(x.X)}
	case *ast.RegionStmt:
		return &ir.Region{Base: l.base(x), Alias: x.Alias, Body: l.block(x.Body)}
	case *ast.FrameStmt:
		return &ir.Frame{Base: l.base(x), Body: l.block(x.Body)}
	case *ast.ErrorStmt:
		return nil
	default:
		panic(fmt.Sprintf("lower: unhandled statement %T", s))
	}
}

func (l *lowerer) expr(e ast.Expr) ir.Node {
	if e == nil {
		return nil
	}
	switch x := e.(type) {
	case *ast.Literal:
		return &ir.Opaque{Base: l.base(x), Info: ir.ValueInfo{Kind: ir.NoInfo, Name: x.Raw}}
	case *ast.Ident:
		return &ir.ReadVar{Base: l.base(x), Name: x.Name}
	case *ast.PathExpr:
		return &ir.StoreGlobal{Base: l.base(x), Path: joinPath(x.Segments)}
	case *ast.FieldAccess:
		return &ir.Opaque{Base: l.base(x), Operand: l.expr(x.Target),
			Info: ir.ValueInfo{Kind: ir.FieldOffset, Name: x.Name}}
	case *ast.TupleAccess:
		return &ir.Opaque{Base: l.base(x), Operand: l.expr(x.Target),
			Info: ir.ValueInfo{Kind: ir.TupleIndex, Index: x.Index}}
	case *ast.IndexExpr:
		target := l.expr(x.Target)
		index := l.expr(x.Index)
		return &ir.CheckIndex{Base: l.base(x), Target: target, Index: index}
	case *ast.CallExpr:
		return l.call(x)
	case *ast.QualifiedApplyExpr:
		args := make([]ir.Node, len(x.Args))
		for i, a := range x.Args {
			args[i] = l.expr(a.Value)
		}
		sym := symbol.MangleMethod(nil, fmt.Sprintf("%T", x.Qualifier), x.Method)
		call := &ir.Call{Base: l.base(x), Symbol: sym, Args: args}
		return &ir.PanicCheck{Base: l.base(x), Call: call}
	case *ast.RangeExpr:
		return &ir.Seq{Base: l.base(x), Exprs: []ir.Node{l.expr(x.From), l.expr(x.To)}}
	case *ast.MethodCallExpr:
		args := make([]ir.Node, len(x.Args))
		for i, a := range x.Args {
			args[i] = l.expr(a.Value)
		}
		call := &ir.CallVTable{Base: l.base(x), Receiver: l.expr(x.Receiver), Method: x.Method, Args: args}
		return &ir.PanicCheck{Base: l.base(x), Call: call}
	case *ast.CastExpr:
		return &ir.CheckCast{Base: l.base(x), Value: l.expr(x.Value)}
	case *ast.TransmuteExpr:
		return &ir.Transmute{Base: l.base(x), Value: l.expr(x.Value)}
	case *ast.IfExpr:
		var elseN ir.Node
		if x.Else != nil {
			elseN = l.expr(x.Else)
		}
		return &ir.If{Base: l.base(x), Cond: l.expr(x.Cond), Then: l.block(x.Then), Else: elseN}
	case *ast.MatchExpr:
		arms := make([]ir.MatchArm, len(x.Arms))
		for i, a := range x.Arms {
			var guard ir.Node
			if a.Guard != nil {
				guard = l.expr(a.Guard)
			}
			arms[i] = ir.MatchArm{Pattern: fmt.Sprintf("%T", a.Pattern), Guard: guard, Body: l.expr(a.Body)}
		}
		return &ir.Match{Base: l.base(x), Scrutinee: l.expr(x.Scrutinee), Arms: arms}
	case *ast.UnaryOp:
		return &ir.UnaryOp{Base: l.base(x), Op: x.Op, Operand: l.expr(x.Operand)}
	case *ast.BinaryOp:
		return l.binaryOp(x, x.Op, l.expr(x.Left), l.expr(x.Right))
	case *ast.DerefExpr:
		// Every deref is checked: the lowerer has no per-node analysis
		// type (see LowerFile's doc comment) to tell a proven-@Valid
		// pointer from a @Null/@Expired one, so CheckOp's generic
		// runtime check covers the case spec.md §4.7 requires.
		return &ir.CheckOp{Base: l.base(x), Op: "deref", Operands: []ir.Node{l.expr(x.Operand)}}
	case *ast.AddrOfExpr:
		return &ir.AddrOf{Base: l.base(x), Operand: l.expr(x.Operand)}
	case *ast.MoveExpr:
		return l.expr(x.Operand)
	case *ast.AllocExpr:
		return &ir.Alloc{Base: l.base(x), Value: l.expr(x.Value), Region: x.Region}
	case *ast.PropagateExpr:
		v := l.expr(x.Operand)
		if _, already := v.(*ir.PanicCheck); already {
			// x.Operand was itself a call: l.call/l.expr already wrapped
			// it, and every call now propagates its panic unconditionally
			// (spec.md §4.7), so `?` adds nothing further here.
			return v
		}
		return &ir.PanicCheck{Base: l.base(x), Call: v}
	case *ast.RecordLiteral:
		fields := make([]ir.Node, len(x.Fields))
		for i, fld := range x.Fields {
			fields[i] = l.expr(fld.Value)
		}
		if x.Spread != nil {
			fields = append(fields, l.expr(x.Spread))
		}
		return &ir.Seq{Base: l.base(x), Exprs: fields}
	case *ast.EnumLiteral:
		var fields []ir.Node
		for _, v := range x.TuplePayload {
			fields = append(fields, l.expr(v))
		}
		for _, fld := range x.RecordFields {
			fields = append(fields, l.expr(fld.Value))
		}
		return &ir.Opaque{Base: l.base(x), Operand: &ir.Seq{Base: l.base(x), Exprs: fields},
			Info: ir.ValueInfo{Kind: ir.EnumPayloadIndex, Name: x.Variant}}
	case *ast.TupleLiteral:
		elems := make([]ir.Node, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = l.expr(el)
		}
		return &ir.Seq{Base: l.base(x), Exprs: elems}
	case *ast.ArrayLiteral:
		elems := make([]ir.Node, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = l.expr(el)
		}
		return &ir.Seq{Base: l.base(x), Exprs: elems}
	case *ast.ArrayRepeat:
		return &ir.Seq{Base: l.base(x), Exprs: []ir.Node{l.expr(x.Value), l.expr(x.Count)}}
	case *ast.SizeofExpr:
		var of ir.Node
		if x.Of != nil {
			of = l.expr(x.Of)
		}
		return &ir.Opaque{Base: l.base(x), Operand: of, Info: ir.ValueInfo{Kind: ir.NoInfo}}
	case *ast.AlignofExpr:
		var of ir.Node
		if x.Of != nil {
			of = l.expr(x.Of)
		}
		return &ir.Opaque{Base: l.base(x), Operand: of, Info: ir.ValueInfo{Kind: ir.NoInfo}}
	case *ast.Block:
		return l.block(x)
	case *ast.UnsafeBlockExpr:
		return l.block(x.Body)
	case *ast.YieldExpr:
		var v ir.Node
		if x.Value != nil {
			v = l.expr(x.Value)
		}
		return &ir.Yield{Base: l.base(x), Value: v, Release: x.Release}
	case *ast.YieldFromExpr:
		return &ir.YieldFrom{Base: l.base(x), Source: l.expr(x.Source)}
	case *ast.SyncExpr:
		return &ir.Sync{Base: l.base(x), Operand: l.expr(x.Operand)}
	case *ast.RaceExpr:
		arms := make([]ir.Node, len(x.Arms))
		for i, a := range x.Arms {
			arms[i] = &ir.RaceReturn{Base: l.base(x), Name: a.Name, Value: l.expr(a.Expr)}
		}
		return &ir.RaceYield{Base: l.base(x), Arms: arms}
	case *ast.AllExpr:
		ops := make([]ir.Node, len(x.Operands))
		for i, o := range x.Operands {
			ops[i] = l.expr(o)
		}
		return &ir.All{Base: l.base(x), Operands: ops}
	case *ast.ParallelExpr:
		return &ir.Parallel{Base: l.base(x), Body: l.block(x.Body)}
	case *ast.SpawnExpr:
		return &ir.Spawn{Base: l.base(x), Body: l.expr(x.Body)}
	case *ast.WaitExpr:
		return &ir.Wait{Base: l.base(x), Handle: l.expr(x.Handle)}
	case *ast.DispatchExpr:
		var chunk ir.Node
		if x.Opts.Chunk != nil {
			chunk = l.expr(x.Opts.Chunk)
		}
		return &ir.Dispatch{Base: l.base(x), Range: l.expr(x.Range), Body: l.block(x.Body),
			ReduceOp: x.Opts.ReduceOp, Ordered: x.Opts.Ordered, Chunk: chunk}
	case *ast.KeyBlockExpr:
		return l.block(x.Body)
	case *ast.WidenExpr:
		return &ir.Opaque{Base: l.base(x), Operand: l.expr(x.Operand), Info: ir.ValueInfo{Kind: ir.ModalWidenInfo}}
	case *ast.WhileLoop:
		body := l.block(x.Body)
		return &ir.Loop{Base: l.base(x), Cond: l.expr(x.Cond), Body: body}
	case *ast.ForLoop:
		return &ir.Loop{Base: l.base(x), Cond: l.expr(x.Iter), Body: l.block(x.Body)}
	case *ast.LoopExpr:
		return &ir.Loop{Base: l.base(x), Body: l.block(x.Body)}
	case *ast.ErrorExpr:
		return &ir.Opaque{Base: l.base(x)}
	default:
		panic(fmt.Sprintf("lower: unhandled expression %T", e))
	}
}

// call lowers an ordinary user call and wraps it in PanicCheck: every
// call propagates its callee's panic-out slot into the caller's own,
// not only the ones an explicit `?` marks (spec.md §4.7).
func (l *lowerer) call(x *ast.CallExpr) ir.Node {
	args := make([]ir.Node, len(x.Args))
	for i, a := range x.Args {
		args[i] = l.expr(a.Value)
	}
	sym := ""
	if name, ok := callName(x.Callee); ok {
		sym = symbol.Mangle(nil, name, nil)
	}
	call := &ir.Call{Base: l.base(x), Symbol: sym, Callee: l.expr(x.Callee), Args: args}
	return &ir.PanicCheck{Base: l.base(x), Call: call}
}

func callName(e ast.Expr) (string, bool) {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name, true
	case *ast.PathExpr:
		return joinPath(x.Segments), true
	default:
		return "", false
	}
}

func joinPath(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "::"
		}
		out += s
	}
	return out
}

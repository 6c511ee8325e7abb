package modal

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
)

// SuspendPoint is one place an async procedure's state machine can
// suspend: a `yield e` stores e in the `Suspended` payload and returns,
// a `yield-from source` drives another async value to completion first.
type SuspendPoint struct {
	Index int
	Site  ast.Node
	From  bool
}

// Frame is the persistent state an async procedure's desugared state
// machine needs across a suspend/resume boundary: every parameter, the
// receiver and every let-bound local, whether or not it is live across
// a suspend point, plus the ordered list of suspend points themselves, whose index
// becomes the frame's resume-state discriminant.
type Frame struct {
	Locals   []string
	Suspends []SuspendPoint
}

// SynthesizeFrame walks decl's body and builds its async frame. It is
// only meaningful for a procedure whose return type is Async<...>;
// callers are expected to have checked that already.
func SynthesizeFrame(decl *ast.ProcedureItem) Frame {
	b := &frameBuilder{}
	for _, p := range decl.Params {
		b.locals = append(b.locals, p.Name)
	}
	if decl.Receiver != nil {
		b.locals = append(b.locals, decl.Receiver.Name)
	}
	b.walkBlock(decl.Body)
	return Frame{Locals: b.locals, Suspends: b.suspends}
}

type frameBuilder struct {
	locals   []string
	suspends []SuspendPoint
	seen     map[string]bool
}

func (b *frameBuilder) addLocal(name string) {
	if b.seen == nil {
		b.seen = make(map[string]bool)
	}
	if b.seen[name] {
		return
	}
	b.seen[name] = true
	b.locals = append(b.locals, name)
}

func (b *frameBuilder) walkBlock(blk *ast.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		b.walkStmt(s)
	}
	if blk.Tail != nil {
		b.walkExpr(blk.Tail)
	}
}

func (b *frameBuilder) walkStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.LetStmt:
		b.addLocal(x.Name)
		b.walkExpr(x.Value)
	case *ast.AssignStmt:
		b.walkExpr(x.Value)
	case *ast.CompoundAssignStmt:
		b.walkExpr(x.Value)
	case *ast.ExprStmt:
		b.walkExpr(x.X)
	case *ast.ReturnStmt:
		b.walkExpr(x.Value)
	case *ast.ResultStmt:
		b.walkExpr(x.Value)
	case *ast.BreakStmt:
		b.walkExpr(x.Value)
	case *ast.UnsafeBlockStmt:
		b.walkBlock(x.Body)
	case *ast.DeferStmt:
		b.walkExpr(x.X)
	case *ast.RegionStmt:
		b.walkExpr(x.Init)
		b.walkBlock(x.Body)
	case *ast.FrameStmt:
		b.walkBlock(x.Body)
	default:
	}
}

func (b *frameBuilder) walkExpr(e ast.Expr) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.YieldExpr:
		b.walkExpr(x.Value)
		b.suspends = append(b.suspends, SuspendPoint{Index: len(b.suspends), Site: x})
	case *ast.YieldFromExpr:
		b.walkExpr(x.Source)
		b.suspends = append(b.suspends, SuspendPoint{Index: len(b.suspends), Site: x, From: true})
	case *ast.IfExpr:
		b.walkExpr(x.Cond)
		b.walkBlock(x.Then)
		b.walkExpr(x.Else)
	case *ast.MatchExpr:
		b.walkExpr(x.Scrutinee)
		for _, arm := range x.Arms {
			b.walkExpr(arm.Guard)
			b.walkExpr(arm.Body)
		}
	case *ast.Block:
		b.walkBlock(x)
	case *ast.UnsafeBlockExpr:
		b.walkBlock(x.Body)
	case *ast.KeyBlockExpr:
		b.walkBlock(x.Body)
	case *ast.WhileLoop:
		b.walkExpr(x.Cond)
		b.walkBlock(x.Body)
	case *ast.ForLoop:
		b.walkExpr(x.Iter)
		b.walkBlock(x.Body)
	case *ast.LoopExpr:
		b.walkBlock(x.Body)
	case *ast.CallExpr:
		b.walkExpr(x.Callee)
		for _, a := range x.Args {
			b.walkExpr(a.Value)
		}
	case *ast.MethodCallExpr:
		b.walkExpr(x.Receiver)
		for _, a := range x.Args {
			b.walkExpr(a.Value)
		}
	case *ast.QualifiedApplyExpr:
		for _, a := range x.Args {
			b.walkExpr(a.Value)
		}
	case *ast.BinaryOp:
		b.walkExpr(x.Left)
		b.walkExpr(x.Right)
	case *ast.UnaryOp:
		b.walkExpr(x.Operand)
	case *ast.FieldAccess:
		b.walkExpr(x.Target)
	case *ast.TupleAccess:
		b.walkExpr(x.Target)
	case *ast.IndexExpr:
		b.walkExpr(x.Target)
		b.walkExpr(x.Index)
	case *ast.AddrOfExpr:
		b.walkExpr(x.Operand)
	case *ast.DerefExpr:
		b.walkExpr(x.Operand)
	case *ast.MoveExpr:
		b.walkExpr(x.Operand)
	case *ast.AllocExpr:
		b.walkExpr(x.Value)
	case *ast.CastExpr:
		b.walkExpr(x.Value)
	case *ast.TransmuteExpr:
		b.walkExpr(x.Value)
	case *ast.PropagateExpr:
		b.walkExpr(x.Operand)
	case *ast.WidenExpr:
		b.walkExpr(x.Operand)
	case *ast.SyncExpr:
		b.walkExpr(x.Operand)
	case *ast.RaceExpr:
		for _, arm := range x.Arms {
			b.walkExpr(arm.Expr)
		}
	case *ast.AllExpr:
		for _, op := range x.Operands {
			b.walkExpr(op)
		}
	case *ast.SpawnExpr:
		b.walkExpr(x.Body)
	case *ast.WaitExpr:
		b.walkExpr(x.Handle)
	case *ast.ParallelExpr:
		b.walkBlock(x.Body)
	case *ast.DispatchExpr:
		b.walkExpr(x.Range)
		b.walkBlock(x.Body)
	case *ast.TupleLiteral:
		for _, el := range x.Elems {
			b.walkExpr(el)
		}
	case *ast.ArrayLiteral:
		for _, el := range x.Elems {
			b.walkExpr(el)
		}
	case *ast.ArrayRepeat:
		b.walkExpr(x.Value)
	case *ast.RecordLiteral:
		for _, f := range x.Fields {
			b.walkExpr(f.Value)
		}
		b.walkExpr(x.Spread)
	case *ast.EnumLiteral:
		for _, p := range x.TuplePayload {
			b.walkExpr(p)
		}
		for _, f := range x.RecordFields {
			b.walkExpr(f.Value)
		}
	default:
	}
}

// CheckKeyAcrossYield enforces E-CON-0213: a bare `yield e` while any
// `key` block is active must be refused, since the held key's lease
// cannot be proven released across a suspend point. `yield release e`
// is exempt — that form is precisely the escape hatch for suspending
// while holding a key, by giving it up first.
func CheckKeyAcrossYield(sink *diag.Sink, decl *ast.ProcedureItem) {
	w := &keyWalker{sink: sink}
	w.walkBlock(decl.Body)
}

type keyWalker struct {
	sink     *diag.Sink
	keyDepth int
}

func (w *keyWalker) walkBlock(blk *ast.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		w.walkStmt(s)
	}
	w.walkExpr(blk.Tail)
}

func (w *keyWalker) walkStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.LetStmt:
		w.walkExpr(x.Value)
	case *ast.AssignStmt:
		w.walkExpr(x.Value)
	case *ast.CompoundAssignStmt:
		w.walkExpr(x.Value)
	case *ast.ExprStmt:
		w.walkExpr(x.X)
	case *ast.ReturnStmt:
		w.walkExpr(x.Value)
	case *ast.ResultStmt:
		w.walkExpr(x.Value)
	case *ast.UnsafeBlockStmt:
		w.walkBlock(x.Body)
	case *ast.RegionStmt:
		w.walkExpr(x.Init)
		w.walkBlock(x.Body)
	case *ast.FrameStmt:
		w.walkBlock(x.Body)
	default:
	}
}

func (w *keyWalker) walkExpr(e ast.Expr) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.YieldExpr:
		w.walkExpr(x.Value)
		if !x.Release && w.keyDepth > 0 {
			w.sink.Errorf(diag.EConKeyAcrossYield, x.Span(),
				"yield while holding a key requires `yield release`")
		}
	case *ast.YieldFromExpr:
		w.walkExpr(x.Source)
		if w.keyDepth > 0 {
			w.sink.Errorf(diag.EConKeyAcrossYield, x.Span(),
				"yield-from while holding a key requires releasing it first")
		}
	case *ast.KeyBlockExpr:
		w.keyDepth++
		w.walkBlock(x.Body)
		w.keyDepth--
	case *ast.IfExpr:
		w.walkExpr(x.Cond)
		w.walkBlock(x.Then)
		w.walkExpr(x.Else)
	case *ast.MatchExpr:
		w.walkExpr(x.Scrutinee)
		for _, arm := range x.Arms {
			w.walkExpr(arm.Guard)
			w.walkExpr(arm.Body)
		}
	case *ast.Block:
		w.walkBlock(x)
	case *ast.UnsafeBlockExpr:
		w.walkBlock(x.Body)
	case *ast.WhileLoop:
		w.walkExpr(x.Cond)
		w.walkBlock(x.Body)
	case *ast.ForLoop:
		w.walkExpr(x.Iter)
		w.walkBlock(x.Body)
	case *ast.LoopExpr:
		w.walkBlock(x.Body)
	case *ast.CallExpr:
		w.walkExpr(x.Callee)
		for _, a := range x.Args {
			w.walkExpr(a.Value)
		}
	case *ast.MethodCallExpr:
		w.walkExpr(x.Receiver)
		for _, a := range x.Args {
			w.walkExpr(a.Value)
		}
	case *ast.BinaryOp:
		w.walkExpr(x.Left)
		w.walkExpr(x.Right)
	case *ast.UnaryOp:
		w.walkExpr(x.Operand)
	case *ast.FieldAccess:
		w.walkExpr(x.Target)
	case *ast.TupleAccess:
		w.walkExpr(x.Target)
	case *ast.IndexExpr:
		w.walkExpr(x.Target)
		w.walkExpr(x.Index)
	case *ast.AddrOfExpr:
		w.walkExpr(x.Operand)
	case *ast.DerefExpr:
		w.walkExpr(x.Operand)
	case *ast.MoveExpr:
		w.walkExpr(x.Operand)
	case *ast.AllocExpr:
		w.walkExpr(x.Value)
	case *ast.CastExpr:
		w.walkExpr(x.Value)
	case *ast.PropagateExpr:
		w.walkExpr(x.Operand)
	case *ast.SyncExpr:
		w.walkExpr(x.Operand)
	case *ast.RaceExpr:
		for _, arm := range x.Arms {
			w.walkExpr(arm.Expr)
		}
	case *ast.AllExpr:
		for _, op := range x.Operands {
			w.walkExpr(op)
		}
	case *ast.SpawnExpr:
		w.walkExpr(x.Body)
	case *ast.WaitExpr:
		w.walkExpr(x.Handle)
	case *ast.ParallelExpr:
		w.walkBlock(x.Body)
	case *ast.DispatchExpr:
		w.walkExpr(x.Range)
		w.walkBlock(x.Body)
	default:
	}
}

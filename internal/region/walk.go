package region

import (
	"fmt"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
)

func (a *Analyzer) walkBlock(env *scope, b *ast.Block) {
	if b == nil {
		return
	}
	inner := newScope(env)
	for _, s := range b.Stmts {
		a.walkStmt(inner, s)
	}
	if b.Tail != nil {
		a.walkExpr(inner, b.Tail)
	}
}

func (a *Analyzer) walkStmt(env *scope, s ast.Stmt) {
	switch x := s.(type) {
	case nil, *ast.ErrorStmt:
		return
	case *ast.LetStmt:
		a.walkExpr(env, x.Value)
		st := Valid
		if x.Value == nil {
			st = Fresh
		}
		env.define(x.Name, st, a.regionOf(x.Value))
	case *ast.AssignStmt:
		a.walkExpr(env, x.Value)
		if id, ok := x.Target.(*ast.Ident); ok {
			if r, found := env.lookup(id.Name); found {
				r.state = Valid
				r.region = a.regionOf(x.Value)
				return
			}
		}
		a.walkExpr(env, x.Target)
	case *ast.CompoundAssignStmt:
		a.walkExpr(env, x.Value)
		a.walkExpr(env, x.Target)
	case *ast.ExprStmt:
		a.walkExpr(env, x.X)
	case *ast.ReturnStmt:
		if x.Value != nil {
			a.walkExpr(env, x.Value)
		}
	case *ast.ResultStmt:
		a.walkExpr(env, x.Value)
	case *ast.BreakStmt:
		if x.Value != nil {
			a.walkExpr(env, x.Value)
		}
	case *ast.ContinueStmt:
		return
	case *ast.UnsafeBlockStmt:
		a.walkBlock(env, x.Body)
	case *ast.DeferStmt:
		a.walkExpr(env, x.X)
	case *ast.RegionStmt:
		a.walkRegionStmt(env, x)
	case *ast.FrameStmt:
		a.walkBlock(env, x.Body)
	default:
	}
}

// walkRegionStmt pushes a fresh region for the body, then on exit
// expires every binding (anywhere still visible, not just locals —
// escape by assignment to an outer variable is exactly what makes
// expiry worth checking) whose pointee was allocated in that region.
func (a *Analyzer) walkRegionStmt(env *scope, x *ast.RegionStmt) {
	a.walkExpr(env, x.Init)
	name := x.Alias
	if name == "" {
		a.anon++
		name = fmt.Sprintf("$region%d", a.anon)
	}
	a.regions = append(a.regions, name)
	child := newScope(env)
	if x.Alias != "" {
		child.define(x.Alias, Valid, "")
	}
	a.walkBlock(child, x.Body)
	a.regions = a.regions[:len(a.regions)-1]
	a.expireRegion(env, name)
}

func (a *Analyzer) expireRegion(env *scope, name string) {
	for sc := env; sc != nil; sc = sc.parent {
		for _, r := range sc.vars {
			if r.region == name {
				r.state = Expired
			}
		}
	}
}

// regionOf identifies which active region an expression's allocation
// belongs to, for the one provenance-carrying shape this bootstrap
// stage tracks directly: `^expr`/`alloc(R, expr)`. A let binding
// copying an existing pointer (`let y = x`) does not propagate x's
// region tag onto y — full alias-aware provenance tracking belongs to
// a later, more complete pass; this one catches the direct-allocation
// case spec.md's worked examples exercise.
func (a *Analyzer) regionOf(e ast.Expr) string {
	alloc, ok := e.(*ast.AllocExpr)
	if !ok {
		return ""
	}
	if alloc.Region != "" {
		return alloc.Region
	}
	if len(a.regions) > 0 {
		return a.regions[len(a.regions)-1]
	}
	return ""
}

// walkExpr records reads (rejecting Moved/Poisoned/Expired bindings)
// and recurses into every subexpression, joining branch effects at
// if/match and approximating loop fixed points with a two-pass walk.
func (a *Analyzer) walkExpr(env *scope, e ast.Expr) {
	switch x := e.(type) {
	case nil, *ast.ErrorExpr, *ast.Literal:
		return
	case *ast.Ident:
		a.checkRead(env, x)
	case *ast.PathExpr:
		return
	case *ast.MoveExpr:
		a.walkMove(env, x)
	case *ast.FieldAccess:
		a.walkExpr(env, x.Target)
	case *ast.TupleAccess:
		a.walkExpr(env, x.Target)
	case *ast.IndexExpr:
		a.walkExpr(env, x.Target)
		a.walkExpr(env, x.Index)
	case *ast.CallExpr:
		a.walkExpr(env, x.Callee)
		a.walkArgs(env, x.Args)
	case *ast.MethodCallExpr:
		a.walkExpr(env, x.Receiver)
		a.walkArgs(env, x.Args)
	case *ast.QualifiedApplyExpr:
		a.walkArgs(env, x.Args)
	case *ast.CastExpr:
		a.walkExpr(env, x.Value)
	case *ast.TransmuteExpr:
		a.walkExpr(env, x.Value)
	case *ast.PropagateExpr:
		a.walkExpr(env, x.Operand)
	case *ast.AddrOfExpr:
		a.walkExpr(env, x.Operand)
	case *ast.AllocExpr:
		a.walkExpr(env, x.Value)
	case *ast.DerefExpr:
		a.walkExpr(env, x.Operand)
	case *ast.WidenExpr:
		a.walkExpr(env, x.Operand)
	case *ast.UnaryOp:
		a.walkExpr(env, x.Operand)
	case *ast.BinaryOp:
		a.walkExpr(env, x.Left)
		a.walkExpr(env, x.Right)
	case *ast.RangeExpr:
		a.walkExpr(env, x.From)
		a.walkExpr(env, x.To)
	case *ast.TupleLiteral:
		for _, el := range x.Elems {
			a.walkExpr(env, el)
		}
	case *ast.ArrayLiteral:
		for _, el := range x.Elems {
			a.walkExpr(env, el)
		}
	case *ast.ArrayRepeat:
		a.walkExpr(env, x.Value)
	case *ast.RecordLiteral:
		for _, f := range x.Fields {
			a.walkExpr(env, f.Value)
		}
		a.walkExpr(env, x.Spread)
	case *ast.EnumLiteral:
		for _, p := range x.TuplePayload {
			a.walkExpr(env, p)
		}
		for _, f := range x.RecordFields {
			a.walkExpr(env, f.Value)
		}
	case *ast.Block:
		a.walkBlock(env, x)
	case *ast.UnsafeBlockExpr:
		a.walkBlock(env, x.Body)
	case *ast.KeyBlockExpr:
		a.walkBlock(env, x.Body)
	case *ast.IfExpr:
		a.walkIf(env, x)
	case *ast.MatchExpr:
		a.walkMatch(env, x)
	case *ast.WhileLoop:
		a.walkExpr(env, x.Cond)
		a.walkLoop(env, x.Body)
	case *ast.ForLoop:
		a.walkExpr(env, x.Iter)
		a.walkLoopWithBinder(env, x.Body, x.Pattern)
	case *ast.LoopExpr:
		a.walkLoop(env, x.Body)
	case *ast.YieldExpr:
		a.walkExpr(env, x.Value)
	case *ast.YieldFromExpr:
		a.walkExpr(env, x.Source)
	case *ast.SyncExpr:
		a.walkExpr(env, x.Operand)
	case *ast.RaceExpr:
		for _, arm := range x.Arms {
			a.walkExpr(env, arm.Expr)
		}
	case *ast.AllExpr:
		for _, op := range x.Operands {
			a.walkExpr(env, op)
		}
	case *ast.ParallelExpr:
		a.walkExpr(env, x.Cancel)
		a.walkBlock(env, x.Body)
	case *ast.SpawnExpr:
		a.walkExpr(env, x.Body)
	case *ast.WaitExpr:
		a.walkExpr(env, x.Handle)
	case *ast.DispatchExpr:
		a.walkExpr(env, x.Range)
		a.walkExpr(env, x.Opts.Chunk)
		a.walkBlock(env, x.Body)
	default:
	}
}

func (a *Analyzer) walkArgs(env *scope, args []ast.Arg) {
	for _, arg := range args {
		if arg.Move {
			if id, ok := arg.Value.(*ast.Ident); ok {
				a.markMoved(env, id)
				continue
			}
		}
		a.walkExpr(env, arg.Value)
	}
}

func (a *Analyzer) walkMove(env *scope, x *ast.MoveExpr) {
	if id, ok := x.Operand.(*ast.Ident); ok {
		a.markMoved(env, id)
		return
	}
	a.walkExpr(env, x.Operand)
}

func (a *Analyzer) markMoved(env *scope, id *ast.Ident) {
	r, ok := env.lookup(id.Name)
	if !ok {
		return
	}
	if r.state == Moved || r.state == Poisoned {
		a.sink.Errorf(diag.ETypMoveAfterUse, id.Span(), "use of moved binding %q", id.Name)
	}
	r.state = Moved
}

func (a *Analyzer) checkRead(env *scope, id *ast.Ident) {
	r, ok := env.lookup(id.Name)
	if !ok {
		return
	}
	switch r.state {
	case Moved, Poisoned:
		a.sink.Errorf(diag.ETypMoveAfterUse, id.Span(), "use of moved binding %q", id.Name)
	case Expired:
		a.sink.Errorf(diag.ETypExpiredDeref, id.Span(), "use of a binding whose region has exited")
	}
}

// walkIf joins the then/else branches' effects: a binding left moved
// in either arm must be treated as possibly moved afterward, since the
// analysis is not path-sensitive.
func (a *Analyzer) walkIf(env *scope, x *ast.IfExpr) {
	a.walkExpr(env, x.Cond)
	pre := capture(env)

	a.walkBlock(newScope(env), x.Then)
	thenSnap := capture(env)
	restore(pre)

	var elseSnap snapshot
	if x.Else != nil {
		a.walkExpr(env, x.Else)
		elseSnap = capture(env)
		restore(pre)
	} else {
		elseSnap = pre
	}

	merged := make(snapshot)
	mergeInto(merged, thenSnap, elseSnap)
	apply(merged)
}

// walkMatch joins every arm's effects the same way walkIf joins two.
func (a *Analyzer) walkMatch(env *scope, x *ast.MatchExpr) {
	a.walkExpr(env, x.Scrutinee)
	pre := capture(env)
	if len(x.Arms) == 0 {
		return
	}
	merged := make(snapshot)
	for i, arm := range x.Arms {
		restore(pre)
		armEnv := newScope(env)
		bindPattern(armEnv, arm.Pattern)
		if arm.Guard != nil {
			a.walkExpr(armEnv, arm.Guard)
		}
		a.walkExpr(armEnv, arm.Body)
		snap := capture(env)
		if i == 0 {
			for r, st := range snap {
				merged[r] = st
			}
		} else {
			next := make(snapshot)
			mergeInto(next, merged, snap)
			merged = next
		}
	}
	restore(pre)
	apply(merged)
}

// bindPattern defines every binder a pattern introduces as Valid; it
// only needs names (not types — this pass never consults the type
// table), so it walks the same binder-producing pattern shapes
// `internal/pattern` resolves more fully for the type checker.
func bindPattern(env *scope, p ast.Pattern) {
	switch x := p.(type) {
	case *ast.Ident:
		env.define(x.Name, Valid, "")
	case *ast.TuplePattern:
		for _, sub := range x.Elems {
			bindPattern(env, sub)
		}
	default:
	}
}

// walkLoop approximates the loop's dataflow fixed point with two
// passes: the first discovers what the body can do to bindings visible
// before it; those effects are joined with "never entered" and applied,
// then the body is walked once more against that joined state so a use
// depending on a previous iteration's move is caught.
func (a *Analyzer) walkLoop(env *scope, body *ast.Block) {
	pre := capture(env)
	a.walkBlock(newScope(env), body)
	post := capture(env)
	merged := make(snapshot)
	mergeInto(merged, pre, post)
	apply(merged)
	a.walkBlock(newScope(env), body)
}

func (a *Analyzer) walkLoopWithBinder(env *scope, body *ast.Block, pat ast.Pattern) {
	bound := newScope(env)
	bindPattern(bound, pat)
	a.walkLoop(bound, body)
}

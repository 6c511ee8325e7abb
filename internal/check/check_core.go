package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/concur"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/pattern"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Synth is TypeExpr(ctx, e, env) => T: it infers e's type without an
// expected type to check against.
func (c *Checker) Synth(env *Env, e ast.Expr) types.Type {
	switch x := e.(type) {
	case nil, *ast.ErrorExpr:
		return c.errorType()
	case *ast.Literal:
		return c.synthLiteral(x, nil)
	case *ast.Ident:
		p, ok := c.TypePlace(env, x)
		if !ok {
			return c.errorType()
		}
		return p.Type
	case *ast.PathExpr:
		return c.synthPath(env, x)
	case *ast.TupleLiteral:
		return c.synthTuple(env, x)
	case *ast.ArrayLiteral:
		return c.synthArray(env, x)
	case *ast.ArrayRepeat:
		return c.synthArrayRepeat(env, x)
	case *ast.RecordLiteral:
		return c.synthRecordLiteral(env, x)
	case *ast.EnumLiteral:
		return c.synthEnumLiteral(env, x)
	case *ast.FieldAccess, *ast.TupleAccess, *ast.IndexExpr:
		p, ok := c.TypePlace(env, x)
		if !ok {
			return c.errorType()
		}
		return p.Type
	case *ast.CallExpr:
		return c.synthCall(env, x)
	case *ast.MethodCallExpr:
		return c.synthMethodCall(env, x)
	case *ast.QualifiedApplyExpr:
		return c.synthQualifiedApply(env, x)
	case *ast.CastExpr:
		return c.synthCast(env, x)
	case *ast.IfExpr:
		return c.synthIf(env, x)
	case *ast.MatchExpr:
		return c.synthMatch(env, x)
	case *ast.RangeExpr:
		return c.synthRange(env, x)
	case *ast.UnaryOp:
		return c.synthUnary(env, x)
	case *ast.BinaryOp:
		return c.synthBinary(env, x)
	case *ast.DerefExpr:
		p, ok := c.TypePlace(env, x)
		if !ok {
			return c.errorType()
		}
		return p.Type
	case *ast.AddrOfExpr:
		return c.synthAddrOf(env, x)
	case *ast.MoveExpr:
		return c.synthMove(env, x)
	case *ast.AllocExpr:
		return c.tb.Ptr(c.Synth(env, x.Value), "Valid")
	case *ast.TransmuteExpr:
		return c.synthTransmute(env, x)
	case *ast.PropagateExpr:
		return c.synthPropagate(env, x)
	case *ast.Block:
		return c.synthBlock(env, x)
	case *ast.UnsafeBlockExpr:
		c.enterUnsafe()
		defer c.leaveUnsafe()
		return c.synthBlock(env, x.Body)
	case *ast.WidenExpr:
		return c.synthWiden(env, x)
	case *ast.SizeofExpr, *ast.AlignofExpr:
		return c.tb.Primitive("usize")
	case *ast.WhileLoop:
		c.CheckAgainst(env, x.Cond, c.boolType())
		c.synthBlock(NewEnv(env), x.Body)
		return c.unitType()
	case *ast.ForLoop:
		return c.synthForLoop(env, x)
	case *ast.LoopExpr:
		c.synthBlock(NewEnv(env), x.Body)
		return c.errorType() // `!`: a bare `loop` only exits via break/return
	case *ast.KeyBlockExpr:
		return c.synthBlock(NewEnv(env), x.Body)
	case *ast.YieldExpr:
		c.Synth(env, x.Value)
		return c.unitType()
	case *ast.YieldFromExpr:
		return c.Synth(env, x.Source)
	case *ast.SyncExpr:
		return c.synthSync(env, x)
	case *ast.RaceExpr:
		return c.synthRace(env, x)
	case *ast.AllExpr:
		return c.synthAll(env, x)
	case *ast.ParallelExpr:
		c.synthBlock(NewEnv(env), x.Body)
		concur.CheckParallel(c.sink, env.PermissionOf, x)
		return c.unitType()
	case *ast.SpawnExpr:
		inner := c.Synth(env, x.Body)
		concur.CheckSpawn(c.sink, env.PermissionOf, x)
		return c.tb.Named("Spawned", []types.Type{inner})
	case *ast.WaitExpr:
		return c.synthWait(env, x)
	case *ast.DispatchExpr:
		return c.synthDispatch(env, x)
	default:
		c.sink.Errorf(diag.ETypMismatch, e.Span(), "internal: unhandled expression %T", e)
		return c.errorType()
	}
}

// CheckAgainst is CheckExprAgainst(ctx, e, T, env): it synthesizes e's
// type (feeding literals the expected type so they can unify rather
// than defaulting) and requires the result be a subtype of expected.
// A block with no tail whose last statement is `result v` is checked by
// checking v against expected.
func (c *Checker) CheckAgainst(env *Env, e ast.Expr, expected types.Type) {
	if b, ok := e.(*ast.Block); ok && b.Tail == nil && len(b.Stmts) > 0 {
		if r, ok := b.Stmts[len(b.Stmts)-1].(*ast.ResultStmt); ok {
			inner := NewEnv(env)
			for _, s := range b.Stmts[:len(b.Stmts)-1] {
				c.checkStmt(inner, s)
			}
			c.CheckAgainst(inner, r.Value, expected)
			return
		}
	}
	if lit, ok := e.(*ast.Literal); ok {
		got := c.synthLiteral(lit, expected)
		if !c.subtype(got, expected) {
			c.sink.Errorf(diag.ETypMismatch, e.Span(), "expected %s, got %s", expected.String(), got.String())
		}
		return
	}
	if rec, ok := e.(*ast.RecordLiteral); ok && rec.Spread == nil {
		got := c.synthRecordLiteral(env, rec)
		if !c.subtype(got, expected) {
			c.sink.Errorf(diag.ETypNotSubtype, e.Span(), "expected %s, got %s", expected.String(), got.String())
		}
		return
	}
	got := c.Synth(env, e)
	if !c.subtype(got, expected) {
		c.sink.Errorf(diag.ETypNotSubtype, e.Span(), "expected %s, got %s", expected.String(), got.String())
	}
}

func (c *Checker) synthPath(env *Env, x *ast.PathExpr) types.Type {
	sym, ok := c.symbolOf(x)
	if !ok {
		c.sink.Errorf(diag.ETypUnresolved, x.Span(), "unresolved path %v", x.Segments)
		return c.errorType()
	}
	switch decl := sym.Decl.(type) {
	case *ast.ProcedureItem:
		return c.procedureType(decl)
	case *ast.StaticItem:
		t, err := c.build(decl.Type)
		if err != nil {
			return c.errorType()
		}
		return t
	default:
		if len(x.Segments) == 1 {
			if p, ok := c.TypePlace(env, &ast.Ident{Base: x.Base, Name: x.Segments[0]}); ok {
				return p.Type
			}
		}
		return c.errorType()
	}
}

func (c *Checker) procedureType(decl *ast.ProcedureItem) types.Type {
	params := make([]types.Type, len(decl.Params))
	for i, p := range decl.Params {
		t, err := c.build(p.Type)
		if err != nil {
			t = c.errorType()
		}
		params[i] = t
	}
	ret := c.unitType()
	if decl.Return != nil {
		if t, err := c.build(decl.Return); err == nil {
			ret = t
		}
	}
	return c.tb.Func(params, ret)
}

func (c *Checker) synthIf(env *Env, x *ast.IfExpr) types.Type {
	c.CheckAgainst(env, x.Cond, c.boolType())
	thenT := c.synthBlock(NewEnv(env), x.Then)
	if x.Else == nil {
		return c.unitType()
	}
	c.CheckAgainst(env, x.Else, thenT)
	return thenT
}

func (c *Checker) synthBlock(env *Env, b *ast.Block) types.Type {
	inner := NewEnv(env)
	for _, s := range b.Stmts {
		c.checkStmt(inner, s)
	}
	if b.Tail == nil {
		return c.unitType()
	}
	return c.Synth(inner, b.Tail)
}

// synthMatch types the scrutinee, delegates exhaustiveness/shadowing
// and binder extraction to `internal/pattern`, then checks every arm's
// guard (bool) and body against a common join type (the first arm's).
func (c *Checker) synthMatch(env *Env, x *ast.MatchExpr) types.Type {
	scrut := c.Synth(env, x.Scrutinee)
	res := pattern.Check(c.tb, c.sink, scrut, x, x.Arms)

	var joined types.Type
	for i, arm := range x.Arms {
		armEnv := NewEnv(env)
		if i < len(res.Arms) {
			for _, b := range res.Arms[i].Binders {
				armEnv.define(b.Name, b.Type, types.PermConst, false)
			}
		}
		if arm.Guard != nil {
			c.CheckAgainst(armEnv, arm.Guard, c.boolType())
		}
		if joined == nil {
			joined = c.Synth(armEnv, arm.Body)
		} else {
			c.CheckAgainst(armEnv, arm.Body, joined)
		}
	}
	if joined == nil {
		return c.unitType()
	}
	return joined
}

func (c *Checker) synthRange(env *Env, x *ast.RangeExpr) types.Type {
	var elem types.Type
	if x.From != nil {
		elem = c.Synth(env, x.From)
	}
	if x.To != nil {
		if elem != nil {
			c.CheckAgainst(env, x.To, elem)
		} else {
			elem = c.Synth(env, x.To)
		}
	}
	if elem == nil {
		elem = c.tb.Primitive("i32")
	}
	return c.tb.Named("Range", []types.Type{elem})
}

func (c *Checker) synthAddrOf(env *Env, x *ast.AddrOfExpr) types.Type {
	place, ok := c.TypePlace(env, x.Operand)
	if !ok {
		return c.errorType()
	}
	return c.tb.Perm(types.ParsePermission(x.Permission), place.Type)
}

func (c *Checker) synthMove(env *Env, x *ast.MoveExpr) types.Type {
	place, ok := c.TypePlace(env, x.Operand)
	if !ok {
		return c.errorType()
	}
	if place.Root != "" {
		if b, found := env.lookup(place.Root); found {
			if b.moved {
				c.sink.Errorf(diag.ETypMoveAfterUse, x.Span(), "use of moved binding %q", place.Root)
			}
			b.moved = true
		}
	}
	return place.Type
}

// synthPropagate types `e?`: the operand must be a two-armed union (a
// result-shaped `T | E`); propagation yields the non-error arm and
// defers the early-return-on-error lowering to `internal/ir`, which
// has the enclosing procedure's declared return type in scope to
// validate the error arm against.
func (c *Checker) synthPropagate(env *Env, x *ast.PropagateExpr) types.Type {
	t := c.Synth(env, x.Operand)
	members, ok := types.AsUnion(types.Deref(t))
	if !ok || len(members) != 2 {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "`?` requires a two-armed union (result-shaped) operand, got %s", t.String())
		return t
	}
	return members[0]
}

func (c *Checker) synthForLoop(env *Env, x *ast.ForLoop) types.Type {
	iterT := c.Synth(env, x.Iter)
	elem, ok := elementType(types.Deref(iterT))
	if !ok {
		if _, args, isNamed := types.AsNamed(types.Deref(iterT)); isNamed && len(args) == 1 {
			elem = args[0]
		} else {
			elem = c.errorType()
		}
	}
	bodyEnv := NewEnv(env)
	for _, b := range bindPatternLocal(c.tb, elem, x.Pattern) {
		bodyEnv.define(b.Name, b.Type, types.PermConst, false)
	}
	c.synthBlock(bodyEnv, x.Body)
	return c.unitType()
}

// bindPatternLocal extracts binders for the simple binder patterns a
// `for` loop head uses (an identifier, or a tuple of identifiers);
// anything more refutable belongs to `match`, not a loop head.
func bindPatternLocal(tb *types.Table, ty types.Type, p ast.Pattern) []pattern.Binder {
	switch x := p.(type) {
	case *ast.Ident:
		return []pattern.Binder{{Name: x.Name, Type: ty}}
	case *ast.TuplePattern:
		elems, ok := types.AsTuple(types.Deref(ty))
		var out []pattern.Binder
		for i, sub := range x.Elems {
			et := ty
			if ok && i < len(elems) {
				et = elems[i]
			}
			out = append(out, bindPatternLocal(tb, et, sub)...)
		}
		return out
	case *ast.WildcardPattern:
		return nil
	default:
		return nil
	}
}

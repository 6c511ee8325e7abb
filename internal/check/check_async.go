package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/concur"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// synthSync types `sync(e)`: e must be an Async<Out,In,R,E> value and
// the expression yields its completed result R (the driving of the
// generator to completion is internal/concur's lowering concern, not
// a typing one).
func (c *Checker) synthSync(env *Env, x *ast.SyncExpr) types.Type {
	t := c.Synth(env, x.Operand)
	_, _, result, _, ok := types.AsAsync(types.Deref(t))
	if !ok {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "sync() requires an async value, got %s", t.String())
		return c.errorType()
	}
	return result
}

// synthRace types a `race { arms }` block: every arm must itself be an
// async value, and the block as a whole produces whichever arm's
// result completes first, so its type is the union of each arm's
// result type (spec.md §4.5's structured-concurrency surface).
func (c *Checker) synthRace(env *Env, x *ast.RaceExpr) types.Type {
	var results []types.Type
	for _, arm := range x.Arms {
		t := c.Synth(env, arm.Expr)
		_, _, result, _, ok := types.AsAsync(types.Deref(t))
		if !ok {
			c.sink.Errorf(diag.ETypMismatch, arm.Expr.Span(), "race arm must be async, got %s", t.String())
			continue
		}
		if arm.Name != "" {
			env.define(arm.Name, result, types.PermConst, false)
		}
		results = append(results, result)
	}
	if len(results) == 0 {
		return c.errorType()
	}
	if len(results) == 1 {
		return results[0]
	}
	return c.tb.Union(results)
}

// synthAll types `all(asyncs...)`: every operand must be async, and the
// result is the tuple of their completed results.
func (c *Checker) synthAll(env *Env, x *ast.AllExpr) types.Type {
	results := make([]types.Type, 0, len(x.Operands))
	for _, op := range x.Operands {
		t := c.Synth(env, op)
		_, _, result, _, ok := types.AsAsync(types.Deref(t))
		if !ok {
			c.sink.Errorf(diag.ETypMismatch, op.Span(), "all() operand must be async, got %s", t.String())
			results = append(results, c.errorType())
			continue
		}
		results = append(results, result)
	}
	return c.tb.Tuple(results)
}

// synthWait types `wait(h)`: h must be a Spawned<T> handle, yielding T.
func (c *Checker) synthWait(env *Env, x *ast.WaitExpr) types.Type {
	t := c.Synth(env, x.Handle)
	path, args, ok := types.AsNamed(types.Deref(t))
	if !ok || path != "Spawned" || len(args) != 1 {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "wait() requires a spawned handle, got %s", t.String())
		return c.errorType()
	}
	return args[0]
}

// synthDispatch types `dispatch i in range { body }` (spec.md §4.6's
// data-parallel form): the binder is bound usize over the body, and a
// `reduce:` option additionally requires the body's tail value be
// combinable under that operator (left to the reduce op's own
// well-formedness — checked structurally here as "present").
func (c *Checker) synthDispatch(env *Env, x *ast.DispatchExpr) types.Type {
	c.Synth(env, x.Range)
	bodyEnv := NewEnv(env)
	bodyEnv.define(x.Binder, c.tb.Primitive("usize"), types.PermConst, false)
	if x.Opts.Chunk != nil {
		c.CheckAgainst(env, x.Opts.Chunk, c.tb.Primitive("usize"))
	}
	t := c.synthBlock(bodyEnv, x.Body)
	concur.CheckDispatch(c.sink, env.PermissionOf, x)
	return t
}

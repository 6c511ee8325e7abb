package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// enterUnsafe/leaveUnsafe bracket an `unsafe { ... }` span (spec.md
// §4.3 "unsafe spans"). Nesting is tracked by depth rather than by
// recording source spans, since this is a tree-walking checker: every
// operation the checker gates on "inside unsafe" is gated while that
// subtree is being visited, which is exactly the set of spans lexically
// inside an unsafe block.
func (c *Checker) enterUnsafe() { c.unsafeDepth++ }
func (c *Checker) leaveUnsafe() { c.unsafeDepth-- }

func (c *Checker) requireUnsafe(n ast.Node, what string) {
	if !c.inUnsafe() {
		c.sink.Errorf(diag.ETypUnsafeOutside, n.Span(), "%s is only permitted inside an unsafe block", what)
	}
}

func (c *Checker) synthTransmute(env *Env, x *ast.TransmuteExpr) types.Type {
	c.requireUnsafe(x, "transmute")
	c.Synth(env, x.Value)
	t, err := c.build(x.TargetType)
	if err != nil {
		return c.errorType()
	}
	return t
}

// synthCast checks `e as T`. A cast between two raw numeric primitives
// always reaches IR as an explicit conversion; one that narrows
// (the target holds fewer bits than the source) additionally requires
// an unsafe span, along with float->int narrowing and any cast
// touching a raw pointer.
func (c *Checker) synthCast(env *Env, x *ast.CastExpr) types.Type {
	from := c.Synth(env, x.Value)
	to, err := c.build(x.Type)
	if err != nil {
		c.sink.Errorf(diag.ETypUnresolved, x.Span(), "%v", err)
		return c.errorType()
	}
	if c.isNarrowingCast(from, to) {
		c.requireUnsafe(x, "this cast narrowing")
	}
	return to
}

func (c *Checker) isNarrowingCast(from, to types.Type) bool {
	from, to = types.Deref(from), types.Deref(to)
	if _, _, ok := types.AsRawPtr(to); ok {
		return true
	}
	if _, _, ok := types.AsRawPtr(from); ok {
		return true
	}
	fname, fok := types.AsPrimitive(from)
	tname, tok := types.AsPrimitive(to)
	if !fok || !tok {
		return false
	}
	if isFloatPrimitive(fname) && isIntegerPrimitive(tname) {
		return true
	}
	fl, flOK := c.tb.LayoutOf(from)
	tl, tlOK := c.tb.LayoutOf(to)
	return flOK && tlOK && tl.Size < fl.Size
}

// checkRawDeref requires unsafe for dereferencing a raw (*imm/*mut)
// pointer, as distinct from the managed Ptr<T>, which DerefExpr's
// normal place-typing rule already handles safely (null/expired are
// diagnostics, not a hard unsafe-span requirement).
func (c *Checker) checkRawDeref(n ast.Node, t types.Type) {
	if _, _, ok := types.AsRawPtr(types.Deref(t)); ok {
		c.requireUnsafe(n, "raw pointer dereference")
	}
}

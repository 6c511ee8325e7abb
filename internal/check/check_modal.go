package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// widenThreshold is the payload size (spec.md §4.3) at or above which
// `widen e` fires a static warning, since widening a large payload
// discards the state tag that would otherwise let the reader avoid a
// defensive copy.
const widenThreshold = 256

// synthWiden types `widen e`, converting `M@S` to `M` (or dropping a
// Ptr/string/bytes state), warning when the widened payload is large.
func (c *Checker) synthWiden(env *Env, x *ast.WidenExpr) types.Type {
	t := c.Synth(env, x.Operand)
	dt := types.Deref(t)

	if path, args, _, ok := types.AsModalState(dt); ok {
		widened := c.tb.Named(path, args)
		c.warnIfLarge(x, widened)
		return widened
	}
	if elem, _, ok := types.AsPtr(dt); ok {
		return c.tb.Ptr(elem, "")
	}
	if bytes, state, ok := types.AsString(dt); ok && state != "" {
		return c.tb.Str(bytes, "")
	}
	c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s has no state to widen", t.String())
	return t
}

func (c *Checker) warnIfLarge(x *ast.WidenExpr, t types.Type) {
	threshold := c.widenThreshold
	if threshold == 0 {
		threshold = widenThreshold
	}
	layout, ok := c.tb.LayoutOf(t)
	if ok && layout.Size >= uint64(threshold) {
		c.sink.Warnf(diag.WImplicitWiden, x.Span(), "widening %s copies a %d-byte payload; consider an explicit alias instead", t.String(), layout.Size)
	}
}

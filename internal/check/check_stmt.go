package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// checkStmt types one statement of a block, threading moved-ness and
// new bindings into env (spec.md §4.3's statement forms).
func (c *Checker) checkStmt(env *Env, s ast.Stmt) {
	switch x := s.(type) {
	case nil, *ast.ErrorStmt:
		return
	case *ast.LetStmt:
		c.checkLetStmt(env, x)
	case *ast.AssignStmt:
		c.checkAssign(env, x.Target, x.Value, x)
	case *ast.CompoundAssignStmt:
		c.checkCompoundAssign(env, x)
	case *ast.ExprStmt:
		c.Synth(env, x.X)
	case *ast.ReturnStmt:
		if x.Value != nil {
			c.Synth(env, x.Value)
		}
	case *ast.ResultStmt:
		c.Synth(env, x.Value)
	case *ast.BreakStmt:
		if x.Value != nil {
			c.Synth(env, x.Value)
		}
	case *ast.ContinueStmt:
		// no payload to type
	case *ast.UnsafeBlockStmt:
		c.enterUnsafe()
		c.synthBlock(env, x.Body)
		c.leaveUnsafe()
	case *ast.DeferStmt:
		c.Synth(env, x.X)
	case *ast.RegionStmt:
		c.checkRegionStmt(env, x)
	case *ast.FrameStmt:
		// Full region-alias scoping is internal/region's job; here we
		// only need the body to type-check in the enclosing env.
		c.synthBlock(env, x.Body)
	default:
		c.sink.Errorf(diag.ETypMismatch, s.Span(), "internal: unhandled statement %T", s)
	}
}

func (c *Checker) checkLetStmt(env *Env, x *ast.LetStmt) {
	var declared types.Type
	if x.Type != nil {
		t, err := c.build(x.Type)
		if err != nil {
			c.sink.Errorf(diag.ETypUnresolved, x.Span(), "%v", err)
			declared = c.errorType()
		} else {
			declared = t
		}
	}
	var got types.Type
	if declared != nil {
		c.CheckAgainst(env, x.Value, declared)
		got = declared
	} else {
		got = c.Synth(env, x.Value)
	}
	env.define(x.Name, got, types.PermConst, x.Mutable)
}

// checkCompoundAssign checks `place op= value`: both must already be a
// matching numeric/string type under the arithmetic rules `synthBinary`
// uses for `op`, and the place must be mutable.
func (c *Checker) checkCompoundAssign(env *Env, x *ast.CompoundAssignStmt) {
	place, ok := c.TypePlace(env, x.Target)
	if !ok {
		return
	}
	if b, ok := env.lookup(place.Root); ok && !b.mutable {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "cannot assign to immutable binding %q", place.Root)
	}
	synthetic := &ast.BinaryOp{Base: x.Base, Op: x.Op, Left: x.Target, Right: x.Value}
	got := c.synthBinary(env, synthetic)
	if !c.subtype(got, place.Type) {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "expected %s, got %s", place.Type.String(), got.String())
	}
}

// checkRegionStmt synthesizes the region's init expression (its type is
// not checked against any allocator capability) and types the body, in
// a nested env when an alias is given; the alias's actual
// lifetime-scoping discipline belongs to internal/region.
func (c *Checker) checkRegionStmt(env *Env, x *ast.RegionStmt) {
	c.Synth(env, x.Init)
	bodyEnv := env
	if x.Alias != "" {
		bodyEnv = NewEnv(env)
	}
	c.synthBlock(bodyEnv, x.Body)
}

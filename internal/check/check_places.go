package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Place is the result of TypePlace: an lvalue's type plus the
// permission it carries exactly (spec.md §4.3: places carry their
// permission as declared; only rvalues strip it to const).
type Place struct {
	Type types.Type
	Perm types.Permission
	// Root is the innermost Ident a place ultimately projects from,
	// used to look up/update the moved-ness of the underlying binding.
	Root string
}

// TypePlace types an lvalue expression, distinct from Synth because a
// place's permission is exactly what it was declared with, not
// collapsed to const the way a plain rvalue read would be.
func (c *Checker) TypePlace(env *Env, e ast.Expr) (Place, bool) {
	switch x := e.(type) {
	case *ast.Ident:
		b, ok := env.lookup(x.Name)
		if !ok {
			c.sink.Errorf(diag.ETypUnresolved, x.Span(), "undefined name %q", x.Name)
			return Place{Type: c.errorType()}, false
		}
		if b.moved {
			c.sink.Errorf(diag.ETypMoveAfterUse, x.Span(), "use of moved binding %q", x.Name)
		}
		return Place{Type: b.typ, Perm: b.perm, Root: x.Name}, true
	case *ast.FieldAccess:
		base, ok := c.TypePlace(env, x.Target)
		if !ok {
			return Place{Type: c.errorType()}, false
		}
		ft, ok := c.lookupFieldType(base.Type, x.Name)
		if !ok {
			c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s has no field %q", base.Type.String(), x.Name)
			return Place{Type: c.errorType()}, false
		}
		return Place{Type: ft, Perm: base.Perm, Root: base.Root}, true
	case *ast.TupleAccess:
		base, ok := c.TypePlace(env, x.Target)
		if !ok {
			return Place{Type: c.errorType()}, false
		}
		elems, ok := types.AsTuple(types.Deref(base.Type))
		if !ok || x.Index < 0 || x.Index >= len(elems) {
			c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s has no element .%d", base.Type.String(), x.Index)
			return Place{Type: c.errorType()}, false
		}
		return Place{Type: elems[x.Index], Perm: base.Perm, Root: base.Root}, true
	case *ast.IndexExpr:
		base, ok := c.TypePlace(env, x.Target)
		if !ok {
			return Place{Type: c.errorType()}, false
		}
		c.CheckIndexOperand(env, x.Index)
		elem, ok := elementType(types.Deref(base.Type))
		if !ok {
			c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s cannot be indexed", base.Type.String())
			return Place{Type: c.errorType()}, false
		}
		return Place{Type: elem, Perm: base.Perm, Root: base.Root}, true
	case *ast.DerefExpr:
		t := c.Synth(env, x.Operand)
		c.checkRawDeref(x, t)
		if elem, _, ok := types.AsRawPtr(types.Deref(t)); ok {
			return Place{Type: elem, Perm: types.PermConst}, true
		}
		elem, state, ok := types.AsPtr(types.Deref(t))
		if !ok {
			c.sink.Errorf(diag.ETypMismatch, x.Span(), "cannot dereference non-pointer type %s", t.String())
			return Place{Type: c.errorType()}, false
		}
		if state == "Null" || state == "Expired" {
			c.sink.Errorf(diag.ETypExpiredDeref, x.Span(), "dereference of a %s pointer", state)
		}
		return Place{Type: elem, Perm: types.PermConst}, true
	default:
		c.sink.Errorf(diag.ETypMismatch, e.Span(), "expression is not assignable")
		return Place{Type: c.errorType()}, false
	}
}

// CheckIndexOperand requires an index to be a usize-compatible integer
// or a range (a slicing index).
func (c *Checker) CheckIndexOperand(env *Env, idx ast.Expr) {
	if _, ok := idx.(*ast.RangeExpr); ok {
		c.Synth(env, idx)
		return
	}
	t := c.Synth(env, idx)
	if name, ok := types.AsPrimitive(types.Deref(t)); !ok || !isIntegerPrimitive(name) {
		c.sink.Errorf(diag.ETypMismatch, idx.Span(), "index must be an integer, got %s", t.String())
	}
}

func elementType(t types.Type) (types.Type, bool) {
	if elem, ok := types.AsSlice(t); ok {
		return elem, true
	}
	if elem, _, ok := types.AsArray(t); ok {
		return elem, true
	}
	return nil, false
}

func (c *Checker) lookupFieldType(ty types.Type, name string) (types.Type, bool) {
	path, args, ok := types.AsNamed(types.Deref(ty))
	if !ok {
		return nil, false
	}
	decl, ok := c.recordDecl(path)
	if !ok {
		return nil, false
	}
	return fieldType(c.tb, decl.Fields, name, genericEnv(decl.Generics, args))
}

// checkAssign checks `target = value`: the place must be mutable
// (a `var` binding, or a projection rooted at one) and the value must
// be a subtype of the place's declared type.
func (c *Checker) checkAssign(env *Env, target, value ast.Expr, sp ast.Node) {
	place, ok := c.TypePlace(env, target)
	if !ok {
		return
	}
	if b, ok := env.lookup(place.Root); ok && !b.mutable {
		c.sink.Errorf(diag.ETypMismatch, sp.Span(), "cannot assign to immutable binding %q", place.Root)
	}
	c.CheckAgainst(env, value, place.Type)
}

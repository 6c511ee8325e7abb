package types

import "github.com/cursive-lang/cursive0/internal/ast"

// These accessors are the only view other packages have of a Type's
// concrete representation: every other package (pattern,
// check, generics, region, modal, ir) goes through these accessors
// rather than type-asserting into an unexported struct it cannot name.

func AsPrimitive(t Type) (name string, ok bool) {
	p, ok := t.(*primitiveT)
	if !ok {
		return "", false
	}
	return p.name, true
}

func AsString(t Type) (bytes bool, state string, ok bool) {
	s, ok := t.(*stringT)
	if !ok {
		return false, "", false
	}
	return s.bytes, s.state, true
}

func AsPtr(t Type) (elem Type, state string, ok bool) {
	p, ok := t.(*ptrT)
	if !ok {
		return nil, "", false
	}
	return p.elem, p.state, true
}

func AsRawPtr(t Type) (elem Type, mut bool, ok bool) {
	p, ok := t.(*rawPtrT)
	if !ok {
		return nil, false, false
	}
	return p.elem, p.mut, true
}

func AsTuple(t Type) (elems []Type, ok bool) {
	tt, ok := t.(*tupleT)
	if !ok {
		return nil, false
	}
	return tt.elems, true
}

func AsArray(t Type) (elem Type, length int64, ok bool) {
	a, ok := t.(*arrayT)
	if !ok {
		return nil, 0, false
	}
	return a.elem, a.len, true
}

func AsSlice(t Type) (elem Type, ok bool) {
	s, ok := t.(*sliceT)
	if !ok {
		return nil, false
	}
	return s.elem, true
}

func AsUnion(t Type) (members []Type, ok bool) {
	u, ok := t.(*unionT)
	if !ok {
		return nil, false
	}
	return u.members, true
}

func AsFunc(t Type) (params []Type, ret Type, ok bool) {
	f, ok := t.(*funcT)
	if !ok {
		return nil, nil, false
	}
	return f.params, f.ret, true
}

func AsNamed(t Type) (path string, args []Type, ok bool) {
	n, ok := t.(*namedT)
	if !ok {
		return "", nil, false
	}
	return n.path, n.args, true
}

func AsModalState(t Type) (path string, args []Type, state string, ok bool) {
	m, ok := t.(*modalStateT)
	if !ok {
		return "", nil, "", false
	}
	return m.path, m.args, m.state, true
}

func AsPerm(t Type) (perm Permission, elem Type, ok bool) {
	p, ok := t.(*permT)
	if !ok {
		return 0, nil, false
	}
	return p.perm, p.elem, true
}

func AsRefinement(t Type) (underlying Type, predicate ast.Expr, ok bool) {
	r, ok := t.(*refinementT)
	if !ok {
		return nil, nil, false
	}
	return r.underlying, r.predicate, true
}

func AsOpaque(t Type) (path string, ok bool) {
	o, ok := t.(*opaqueT)
	if !ok {
		return "", false
	}
	return o.path, true
}

func AsDyn(t Type) (classPath string, ok bool) {
	d, ok := t.(*dynT)
	if !ok {
		return "", false
	}
	return d.classPath, true
}

func AsAsync(t Type) (out, in, result, err Type, ok bool) {
	a, ok := t.(*asyncT)
	if !ok {
		return nil, nil, nil, nil, false
	}
	return a.out, a.in, a.result, a.err, true
}

func AsTypeVar(t Type) (name string, ok bool) {
	v, ok := t.(*typeVarT)
	if !ok {
		return "", false
	}
	return v.name, true
}

// Deref strips permission and refinement wrappers to the representation
// type underneath, the view most pattern/generics/region code wants
// when it only cares about shape, not qualifiers.
func Deref(t Type) Type {
	for {
		if p, elem, ok := AsPerm(t); ok {
			_ = p
			t = elem
			continue
		}
		if under, _, ok := AsRefinement(t); ok {
			t = under
			continue
		}
		return t
	}
}

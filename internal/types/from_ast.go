package types

import (
	"fmt"

	"github.com/cursive-lang/cursive0/internal/ast"
)

// Build converts a surface ast.TypeExpr into an interned Type. env
// substitutes generic parameter names already bound to concrete Types
// (e.g. a named type's own arguments, when resolving its declaration's
// field types for layout purposes); a name not in env becomes a
// typeVarT, left for `internal/generics` to substitute later.
func (tb *Table) Build(t ast.TypeExpr, env map[string]Type) (Type, error) {
	switch tt := t.(type) {
	case *ast.ErrorType:
		return tb.Primitive("!"), nil
	case *ast.PrimitiveType:
		return tb.Primitive(tt.Name), nil
	case *ast.StringType:
		return tb.Str(tt.Bytes, tt.State), nil
	case *ast.PtrType:
		elem, err := tb.Build(tt.Elem, env)
		if err != nil {
			return nil, err
		}
		return tb.Ptr(elem, tt.State), nil
	case *ast.RawPtrType:
		elem, err := tb.Build(tt.Elem, env)
		if err != nil {
			return nil, err
		}
		return tb.RawPtr(elem, tt.Mut), nil
	case *ast.TupleType:
		elems := make([]Type, len(tt.Elems))
		for i, e := range tt.Elems {
			r, err := tb.Build(e, env)
			if err != nil {
				return nil, err
			}
			elems[i] = r
		}
		return tb.Tuple(elems), nil
	case *ast.ArrayType:
		elem, err := tb.Build(tt.Elem, env)
		if err != nil {
			return nil, err
		}
		return tb.Array(elem, constEvalLen(tt.Len)), nil
	case *ast.SliceType:
		elem, err := tb.Build(tt.Elem, env)
		if err != nil {
			return nil, err
		}
		return tb.Slice(elem), nil
	case *ast.UnionType:
		members := make([]Type, len(tt.Members))
		for i, m := range tt.Members {
			r, err := tb.Build(m, env)
			if err != nil {
				return nil, err
			}
			members[i] = r
		}
		return tb.Union(members), nil
	case *ast.FuncType:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			r, err := tb.Build(p, env)
			if err != nil {
				return nil, err
			}
			params[i] = r
		}
		ret, err := tb.Build(tt.Return, env)
		if err != nil {
			return nil, err
		}
		return tb.Func(params, ret), nil
	case *ast.PathType:
		if len(tt.Segments) == 1 && len(tt.Args) == 0 {
			if bound, ok := env[tt.Segments[0]]; ok {
				return bound, nil
			}
			if _, isDecl := tb.sigma[tt.Segments[0]]; !isDecl {
				return tb.TypeVar(tt.Segments[0]), nil
			}
		}
		path := joinSegments(tt.Segments)
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			r, err := tb.Build(a, env)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return tb.Named(path, args), nil
	case *ast.ModalStateType:
		path := joinSegments(tt.Segments)
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			r, err := tb.Build(a, env)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return tb.ModalState(path, args, tt.State), nil
	case *ast.PermType:
		elem, err := tb.Build(tt.Elem, env)
		if err != nil {
			return nil, err
		}
		return tb.Perm(ParsePermission(tt.Perm), elem), nil
	case *ast.RefinementType:
		under, err := tb.Build(tt.Underlying, env)
		if err != nil {
			return nil, err
		}
		return tb.Refinement(under, tt.Predicate), nil
	case *ast.OpaqueType:
		return tb.Opaque(joinSegments(tt.Path)), nil
	case *ast.DynType:
		return tb.Dyn(joinSegments(tt.ClassPath)), nil
	case *ast.AsyncType:
		out, err := tb.Build(tt.Out, env)
		if err != nil {
			return nil, err
		}
		in, err := tb.Build(tt.In, env)
		if err != nil {
			return nil, err
		}
		result, err := tb.Build(tt.Result, env)
		if err != nil {
			return nil, err
		}
		errT, err := tb.Build(tt.Err, env)
		if err != nil {
			return nil, err
		}
		return tb.Async(out, in, result, errT), nil
	default:
		return nil, fmt.Errorf("types: unhandled type expression %T", t)
	}
}

// constEvalLen evaluates an array-length expression when it is a
// plain integer literal; anything more involved (a static referring
// to a const, an arithmetic expression) is `internal/check`'s job to
// fold before layout is asked for, so this returns -1 rather than
// guessing.
func constEvalLen(e ast.Expr) int64 {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return -1
	}
	n, ok := lit.Value.(int64)
	if !ok {
		return -1
	}
	return n
}

// genericEnv zips a declaration's generic parameter names against a
// named type's concrete argument list, for resolving that
// declaration's field/variant types during layout computation.
func genericEnv(params []ast.GenericParam, args []Type) map[string]Type {
	env := make(map[string]Type, len(params))
	for i, p := range params {
		if i < len(args) {
			env[p.Name] = args[i]
		}
	}
	return env
}

package pattern

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/types"
)

// bind walks a pattern against the type it is matched against and
// collects every name it binds, in left-to-right order. A record
// pattern's own type ascription (when distinct from the scrutinee,
// e.g. matching a union member down to one of its cases) is
// `internal/check`'s call to make after it has decided the arm is
// well-typed at all; here the scrutinee type is authoritative.
func bind(tb *types.Table, ty types.Type, p ast.Pattern) []Binder {
	switch x := p.(type) {
	case *ast.Ident:
		return []Binder{{Name: x.Name, Type: ty}}
	case *ast.TypedBindingPattern:
		bt, err := tb.Build(x.Type, nil)
		if err != nil {
			bt = ty
		}
		return []Binder{{Name: x.Name, Type: bt}}
	case *ast.WildcardPattern, *ast.Literal, *ast.RangeExpr, *ast.ErrorPattern:
		return nil
	case *ast.TuplePattern:
		elems, ok := types.AsTuple(types.Deref(ty))
		var out []Binder
		for i, sub := range x.Elems {
			et := ty
			if ok && i < len(elems) {
				et = elems[i]
			}
			out = append(out, bind(tb, et, sub)...)
		}
		return out
	case *ast.RecordPattern, *ast.EnumPattern, *ast.ModalPattern:
		name, _ := ctorName(p)
		c, found := ctorEntry(tb, types.Deref(ty), name)
		subs := subPatternsOf(c, p)
		var out []Binder
		for i, sub := range subs {
			ft := ty
			if found && i < len(c.FieldTypes) {
				ft = c.FieldTypes[i]
			}
			out = append(out, bind(tb, ft, sub)...)
		}
		return out
	default:
		return nil
	}
}

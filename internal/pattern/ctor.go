package pattern

import (
	"fmt"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Ctor is one member of a type's constructor signature: a name (a
// bool literal, an enum variant, a modal state, or the single
// synthetic constructor standing for a tuple/record shape) plus the
// types of the columns specializing on it introduces.
type Ctor struct {
	Name       string
	FieldNames []string // "" entries for positional (tuple-shaped) fields
	FieldTypes []types.Type
}

// signature returns every constructor of ty's type family and whether
// that enumeration is complete. An incomplete (or empty non-bottom)
// signature means the usefulness check must fall back to the default
// matrix — the family has too many members (ints, floats, strings) or
// is opaque to this pass (class, alias-to-class, async) to enumerate.
func signature(tb *types.Table, ty types.Type) ([]Ctor, bool) {
	ty = types.Deref(ty)

	if name, ok := types.AsPrimitive(ty); ok {
		switch name {
		case "bool":
			return []Ctor{{Name: "true"}, {Name: "false"}}, true
		case "!":
			return nil, true // the never type has no inhabitants: vacuously exhaustive
		default:
			return nil, false // numeric/char domains are treated as open (need a wildcard or full interval cover)
		}
	}
	if elems, ok := types.AsTuple(ty); ok {
		return []Ctor{{Name: "tuple", FieldNames: make([]string, len(elems)), FieldTypes: elems}}, true
	}
	if path, args, stateName, ok := types.AsModalState(ty); ok {
		fields, names, ok := modalStateFields(tb, path, args, stateName)
		if !ok {
			return nil, false
		}
		return []Ctor{{Name: stateName, FieldNames: names, FieldTypes: fields}}, true
	}
	if path, args, ok := types.AsNamed(ty); ok {
		resolved, ok := tb.ResolveAlias(path)
		if !ok {
			return nil, false
		}
		sym, ok := tb.Lookup(resolved)
		if !ok {
			return nil, false
		}
		switch decl := sym.Decl.(type) {
		case *ast.RecordItem:
			env := bindGenerics(decl.Generics, args)
			names := make([]string, len(decl.Fields))
			fields := make([]types.Type, len(decl.Fields))
			for i, f := range decl.Fields {
				ft, err := tb.Build(f.Type, env)
				if err != nil {
					return nil, false
				}
				names[i] = f.Name
				fields[i] = ft
			}
			return []Ctor{{Name: "record", FieldNames: names, FieldTypes: fields}}, true
		case *ast.EnumItem:
			env := bindGenerics(decl.Generics, args)
			ctors := make([]Ctor, len(decl.Variants))
			for i, v := range decl.Variants {
				names := make([]string, 0, len(v.TuplePayload)+len(v.RecordFields))
				fields := make([]types.Type, 0, len(v.TuplePayload)+len(v.RecordFields))
				for _, t := range v.TuplePayload {
					ft, err := tb.Build(t, env)
					if err != nil {
						return nil, false
					}
					names = append(names, "")
					fields = append(fields, ft)
				}
				for _, f := range v.RecordFields {
					ft, err := tb.Build(f.Type, env)
					if err != nil {
						return nil, false
					}
					names = append(names, f.Name)
					fields = append(fields, ft)
				}
				ctors[i] = Ctor{Name: v.Name, FieldNames: names, FieldTypes: fields}
			}
			return ctors, true
		case *ast.ModalItem:
			env := bindGenerics(decl.Generics, args)
			ctors := make([]Ctor, len(decl.States))
			for i, st := range decl.States {
				names := make([]string, len(st.Fields))
				fields := make([]types.Type, len(st.Fields))
				for j, f := range st.Fields {
					ft, err := tb.Build(f.Type, env)
					if err != nil {
						return nil, false
					}
					names[j] = f.Name
					fields[j] = ft
				}
				ctors[i] = Ctor{Name: st.Name, FieldNames: names, FieldTypes: fields}
			}
			return ctors, true
		default:
			return nil, false // class, or any declaration kind with no constructor shape
		}
	}
	return nil, false
}

func modalStateFields(tb *types.Table, path string, args []types.Type, state string) ([]types.Type, []string, bool) {
	resolved, ok := tb.ResolveAlias(path)
	if !ok {
		return nil, nil, false
	}
	sym, ok := tb.Lookup(resolved)
	if !ok || sym.Kind != resolve.KindModal {
		return nil, nil, false
	}
	decl, ok := sym.Decl.(*ast.ModalItem)
	if !ok {
		return nil, nil, false
	}
	env := bindGenerics(decl.Generics, args)
	for _, st := range decl.States {
		if st.Name != state {
			continue
		}
		names := make([]string, len(st.Fields))
		fields := make([]types.Type, len(st.Fields))
		for i, f := range st.Fields {
			ft, err := tb.Build(f.Type, env)
			if err != nil {
				return nil, nil, false
			}
			names[i] = f.Name
			fields[i] = ft
		}
		return fields, names, true
	}
	return nil, nil, false
}

func bindGenerics(params []ast.GenericParam, args []types.Type) map[string]types.Type {
	env := make(map[string]types.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			env[p.Name] = args[i]
		}
	}
	return env
}

// ctorName classifies a concrete (non-wildcard-like) pattern by the
// constructor it names; ok is false for any pattern that matches
// everything at this position (wildcard, plain binder, typed binder).
func ctorName(p ast.Pattern) (string, bool) {
	switch x := p.(type) {
	case *ast.Literal:
		if x.Kind == ast.LitBool {
			if b, _ := x.Value.(bool); b {
				return "true", true
			}
			return "false", true
		}
		return "lit:" + x.Raw, true
	case *ast.RangeExpr:
		return "range:" + rangeKey(x), true
	case *ast.TuplePattern:
		return "tuple", true
	case *ast.RecordPattern:
		return "record", true
	case *ast.EnumPattern:
		return x.Variant, true
	case *ast.ModalPattern:
		return x.State, true
	default:
		return "", false
	}
}

func rangeKey(r *ast.RangeExpr) string {
	return fmt.Sprintf("%d:%s:%s", r.Kind, exprKey(r.From), exprKey(r.To))
}

func exprKey(e ast.Expr) string {
	if e == nil {
		return ""
	}
	if lit, ok := e.(*ast.Literal); ok {
		return lit.Raw
	}
	return fmt.Sprintf("%T@%p", e, e)
}

// subPatternsOf extracts p's sub-patterns in the field order c.Names
// describes, defaulting any field the pattern omits (a partial record
// pattern's `..`) to a wildcard.
func subPatternsOf(c Ctor, p ast.Pattern) []ast.Pattern {
	switch x := p.(type) {
	case *ast.TuplePattern:
		return x.Elems
	case *ast.RecordPattern:
		return projectNamed(c.FieldNames, x.Fields)
	case *ast.EnumPattern:
		if len(x.TuplePayload) > 0 {
			return x.TuplePayload
		}
		return projectNamed(c.FieldNames, x.RecordFields)
	case *ast.ModalPattern:
		return projectNamed(c.FieldNames, x.RecordFields)
	default:
		return nil
	}
}

// projectNamed aligns a pattern's field list to the declaration's field
// order. The parenthesized "(p, p)" pattern spelling for a record-shaped
// state (modal states have no separate tuple-payload form) lowers to
// positionally-named fields ("0", "1", ...) rather than the state's
// declared names, so when no field in the pattern matches any declared
// name at all, this falls back to zipping by position instead of
// leaving every field a silent wildcard.
func projectNamed(names []string, fields []ast.FieldPattern) []ast.Pattern {
	out := make([]ast.Pattern, len(names))
	for i := range out {
		out[i] = &ast.WildcardPattern{}
	}
	matchedAny := false
	for i, n := range names {
		for _, fp := range fields {
			if fp.Name == n {
				out[i] = fp.Pattern
				matchedAny = true
				break
			}
		}
	}
	if !matchedAny {
		for i := range names {
			if i < len(fields) {
				out[i] = fields[i].Pattern
			}
		}
	}
	return out
}

func wildcards(n int) []ast.Pattern {
	out := make([]ast.Pattern, n)
	for i := range out {
		out[i] = &ast.WildcardPattern{}
	}
	return out
}

func isWildcardLike(p ast.Pattern) bool {
	_, ok := ctorName(p)
	return !ok
}

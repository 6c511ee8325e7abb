package pattern

import (
	"strings"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/types"
)

// isUseful reports whether target is useful against rows: whether some
// value matched by target is matched by no row (i.e. target reaches
// live code were it inserted as the next arm). When missing is
// non-nil, one witness of such a value is appended to it on success.
//
// This is Maranget's usefulness algorithm (as used by rustc and OCaml's
// match compiler): specialize on target's head constructor when it has
// one, or branch over the type's full constructor signature when the
// head is a wildcard and that signature is known, falling back to the
// default matrix (rows whose head is itself wildcard-like) when the
// signature is open-ended (integers, opaque types).
func isUseful(tb *types.Table, rows []row, colTypes []types.Type, target []ast.Pattern, missing *[]string) bool {
	w, ok := usefulRec(tb, rows, colTypes, target)
	if ok && missing != nil {
		*missing = append(*missing, strings.Join(w, ", "))
	}
	return ok
}

func usefulRec(tb *types.Table, rows []row, colTypes []types.Type, target []ast.Pattern) ([]string, bool) {
	if len(colTypes) == 0 {
		if len(rows) == 0 {
			return []string{}, true
		}
		return nil, false
	}

	head := target[0]
	restTarget := target[1:]
	ty := colTypes[0]
	restTypes := colTypes[1:]

	if name, ok := ctorName(head); ok {
		c, found := ctorEntry(tb, ty, name)
		var sub []ast.Pattern
		if found {
			sub = subPatternsOf(c, head)
		}
		arity := len(c.FieldTypes)
		specRows := specializeRows(tb, rows, ty, name)
		newTarget := append(append([]ast.Pattern{}, sub...), restTarget...)
		newTypes := append(append([]types.Type{}, c.FieldTypes...), restTypes...)
		w, ok2 := usefulRec(tb, specRows, newTypes, newTarget)
		if !ok2 {
			return nil, false
		}
		combined := combineCtor(name, w[:arity])
		return append([]string{combined}, w[arity:]...), true
	}

	ctors, complete := signature(tb, ty)
	if complete {
		for _, c := range ctors {
			arity := len(c.FieldTypes)
			specRows := specializeRows(tb, rows, ty, c.Name)
			subTarget := wildcards(arity)
			newTarget := append(append([]ast.Pattern{}, subTarget...), restTarget...)
			newTypes := append(append([]types.Type{}, c.FieldTypes...), restTypes...)
			w, ok2 := usefulRec(tb, specRows, newTypes, newTarget)
			if ok2 {
				combined := combineCtor(c.Name, w[:arity])
				return append([]string{combined}, w[arity:]...), true
			}
		}
		return nil, false
	}

	defRows := defaultRows(rows)
	w, ok2 := usefulRec(tb, defRows, restTypes, restTarget)
	if !ok2 {
		return nil, false
	}
	return append([]string{"_"}, w...), true
}

func combineCtor(name string, fieldWitnesses []string) string {
	switch name {
	case "tuple":
		return "(" + strings.Join(fieldWitnesses, ", ") + ")"
	case "record":
		return "{ " + strings.Join(fieldWitnesses, ", ") + " }"
	default:
		if len(fieldWitnesses) == 0 {
			return name
		}
		return name + "(" + strings.Join(fieldWitnesses, ", ") + ")"
	}
}

// ctorEntry finds name's signature entry for ty, when ty's signature
// is known to the type table at all (literal/range constructors over
// an open-ended primitive domain have none: their arity is always 0).
func ctorEntry(tb *types.Table, ty types.Type, name string) (Ctor, bool) {
	ctors, _ := signature(tb, ty)
	for _, c := range ctors {
		if c.Name == name {
			return c, true
		}
	}
	return Ctor{}, false
}

// specializeRows keeps rows compatible with constructor name, replacing
// each kept row's head column with its sub-patterns (or fresh
// wildcards, for a row whose head was itself wildcard-like).
func specializeRows(tb *types.Table, rows []row, ty types.Type, name string) []row {
	c, _ := ctorEntry(tb, ty, name)
	arity := len(c.FieldTypes)
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		head := r.pats[0]
		rest := r.pats[1:]
		if isWildcardLike(head) {
			out = append(out, row{pats: append(wildcards(arity), rest...), guarded: r.guarded})
			continue
		}
		hn, _ := ctorName(head)
		if hn != name {
			continue
		}
		sub := subPatternsOf(c, head)
		if len(sub) != arity {
			sub = padPatterns(sub, arity)
		}
		out = append(out, row{pats: append(append([]ast.Pattern{}, sub...), rest...), guarded: r.guarded})
	}
	return out
}

func padPatterns(pats []ast.Pattern, n int) []ast.Pattern {
	out := make([]ast.Pattern, n)
	copy(out, pats)
	for i := len(pats); i < n; i++ {
		out[i] = &ast.WildcardPattern{}
	}
	return out
}

// defaultRows keeps only rows whose head is wildcard-like, dropping
// that column: the residual matrix relevant once target's head has
// fallen through every named constructor of an open-ended signature.
func defaultRows(rows []row) []row {
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		if isWildcardLike(r.pats[0]) {
			out = append(out, row{pats: r.pats[1:], guarded: r.guarded})
		}
	}
	return out
}

// Package types implements Cursive0's type table (spec.md §3.3): types
// are interned once and referenced by stable handle, with structural
// equivalence, union normalization, a subtyping judgement, and a
// per-type layout cache. Named types (record/enum/modal/alias/class)
// are resolved against the Sigma table a Table is constructed with,
// rather than carrying their own declarations, so a Table only ever
// needs `internal/resolve`'s output and the bare `internal/ast` nodes
// it already points at.
package types

import (
	"fmt"
	"strings"

	"github.com/cursive-lang/cursive0/internal/ast"
)

// Type is a fully interned type. Construction only ever happens
// through a Table, and the interface carries an unexported method so
// no type outside this package can implement it — two Types with equal
// key() always intern to the same pointer, so `==` is equivalence.
type Type interface {
	String() string
	key() string
}

// Permission is a point in the unique <: shared <: const lattice
// (spec.md §3.5). Values increase with looser access, so p <: q iff
// p <= q numerically.
type Permission int

const (
	PermUnique Permission = iota
	PermShared
	PermConst
)

func ParsePermission(s string) Permission {
	switch s {
	case "unique":
		return PermUnique
	case "shared":
		return PermShared
	default:
		return PermConst
	}
}

func (p Permission) String() string {
	switch p {
	case PermUnique:
		return "unique"
	case PermShared:
		return "shared"
	default:
		return "const"
	}
}

// LE reports whether p is a subtype of (no more permissive than) q.
func (p Permission) LE(q Permission) bool { return p <= q }

type primitiveT struct{ name string }

func (t *primitiveT) String() string { return t.name }
func (t *primitiveT) key() string    { return "prim:" + t.name }

// IsBottom reports whether t is `!`, the subtype of every type
// (spec.md §4.3 subtyping rule 2).
func IsBottom(t Type) bool {
	p, ok := t.(*primitiveT)
	return ok && p.name == "!"
}

// IsUnit reports whether t is the zero-element tuple `()`.
func IsUnit(t Type) bool {
	tup, ok := t.(*tupleT)
	return ok && len(tup.elems) == 0
}

type stringT struct {
	bytes bool
	state string
}

func (t *stringT) String() string {
	name := "string"
	if t.bytes {
		name = "bytes"
	}
	if t.state != "" {
		name += "@" + t.state
	}
	return name
}
func (t *stringT) key() string { return fmt.Sprintf("str:%v:%s", t.bytes, t.state) }

type ptrT struct {
	elem  Type
	state string
}

func (t *ptrT) String() string {
	s := "Ptr<" + t.elem.String() + ">"
	if t.state != "" {
		s += "@" + t.state
	}
	return s
}
func (t *ptrT) key() string { return "ptr:" + t.elem.key() + "@" + t.state }

type rawPtrT struct {
	elem Type
	mut  bool
}

func (t *rawPtrT) String() string {
	kind := "imm"
	if t.mut {
		kind = "mut"
	}
	return "*" + kind + " " + t.elem.String()
}
func (t *rawPtrT) key() string { return fmt.Sprintf("rawptr:%v:%s", t.mut, t.elem.key()) }

type tupleT struct{ elems []Type }

func (t *tupleT) String() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *tupleT) key() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.key()
	}
	return "tuple:(" + strings.Join(parts, ",") + ")"
}

type arrayT struct {
	elem Type
	len  int64 // -1 if the length expression could not be const-evaluated
}

func (t *arrayT) String() string { return fmt.Sprintf("[%s; %d]", t.elem.String(), t.len) }
func (t *arrayT) key() string    { return fmt.Sprintf("array:%s;%d", t.elem.key(), t.len) }

type sliceT struct{ elem Type }

func (t *sliceT) String() string { return "[" + t.elem.String() + "]" }
func (t *sliceT) key() string    { return "slice:" + t.elem.key() }

// unionT's members are kept normalized: flattened, deduplicated, and
// sorted by key so that `A|B` and `B|A` intern to the same value.
type unionT struct{ members []Type }

func (t *unionT) String() string {
	parts := make([]string, len(t.members))
	for i, m := range t.members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}
func (t *unionT) key() string {
	parts := make([]string, len(t.members))
	for i, m := range t.members {
		parts[i] = m.key()
	}
	return "union:{" + strings.Join(parts, ",") + "}"
}

type funcT struct {
	params []Type
	ret    Type
}

func (t *funcT) String() string {
	parts := make([]string, len(t.params))
	for i, p := range t.params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + t.ret.String()
}
func (t *funcT) key() string {
	parts := make([]string, len(t.params))
	for i, p := range t.params {
		parts[i] = p.key()
	}
	return "func:(" + strings.Join(parts, ",") + ")->" + t.ret.key()
}

// namedT is a nominal reference to a record, enum, modal, alias, or
// class declared in Sigma, by qualified path plus generic arguments.
type namedT struct {
	path string
	args []Type
}

func (t *namedT) String() string {
	if len(t.args) == 0 {
		return t.path
	}
	parts := make([]string, len(t.args))
	for i, a := range t.args {
		parts[i] = a.String()
	}
	return t.path + "<" + strings.Join(parts, ", ") + ">"
}
func (t *namedT) key() string {
	parts := make([]string, len(t.args))
	for i, a := range t.args {
		parts[i] = a.key()
	}
	return "named:" + t.path + "<" + strings.Join(parts, ",") + ">"
}

type modalStateT struct {
	path  string
	args  []Type
	state string
}

func (t *modalStateT) String() string {
	base := (&namedT{path: t.path, args: t.args}).String()
	return base + "@" + t.state
}
func (t *modalStateT) key() string {
	return (&namedT{path: t.path, args: t.args}).key() + "@" + t.state
}

type permT struct {
	perm Permission
	elem Type
}

func (t *permT) String() string { return t.perm.String() + " " + t.elem.String() }
func (t *permT) key() string    { return "perm:" + t.perm.String() + ":" + t.elem.key() }

// refinementT's Predicate is carried as the surface ast.Expr it was
// parsed from (over `self`); interning and equivalence fall back to a
// structural dump of that expression, since no two distinct predicate
// ASTs should ever be treated as identical by accident.
type refinementT struct {
	underlying Type
	predicate  ast.Expr
}

func (t *refinementT) String() string {
	return t.underlying.String() + " where {" + dumpExpr(t.predicate) + "}"
}
func (t *refinementT) key() string {
	return "refine:" + t.underlying.key() + ";" + dumpExpr(t.predicate)
}

type opaqueT struct{ path string }

func (t *opaqueT) String() string { return "opaque " + t.path }
func (t *opaqueT) key() string    { return "opaque:" + t.path }

type dynT struct{ classPath string }

func (t *dynT) String() string { return "$" + t.classPath }
func (t *dynT) key() string    { return "dyn:" + t.classPath }

type asyncT struct{ out, in, result, err Type }

func (t *asyncT) String() string {
	return fmt.Sprintf("Async<%s, %s, %s, %s>", t.out, t.in, t.result, t.err)
}
func (t *asyncT) key() string {
	return fmt.Sprintf("async:%s,%s,%s,%s", t.out.key(), t.in.key(), t.result.key(), t.err.key())
}

// typeVarT is an unsubstituted reference to a generic parameter inside
// a polymorphic declaration's body; `internal/generics` replaces these
// with concrete arguments when it clones a declaration for a demand.
type typeVarT struct{ name string }

func (t *typeVarT) String() string { return t.name }
func (t *typeVarT) key() string    { return "var:" + t.name }

// dumpExpr renders an expression structurally enough that two distinct
// predicate ASTs never collide, without needing a full pretty-printer
// here (that belongs to `internal/check`, which already types these
// expressions); this is only ever used as part of an intern key.
func dumpExpr(e ast.Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch x := e.(type) {
	case *ast.Ident:
		return "id(" + x.Name + ")"
	case *ast.Literal:
		return fmt.Sprintf("lit(%v)", x.Value)
	case *ast.BinaryOp:
		return "(" + dumpExpr(x.Left) + x.Op + dumpExpr(x.Right) + ")"
	case *ast.UnaryOp:
		return "(" + x.Op + dumpExpr(x.Operand) + ")"
	case *ast.CallExpr:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = dumpExpr(a.Value)
		}
		return dumpExpr(x.Callee) + "(" + strings.Join(parts, ",") + ")"
	case *ast.FieldAccess:
		return dumpExpr(x.Target) + "." + x.Name
	case *ast.PathExpr:
		return strings.Join(x.Segments, "::")
	default:
		return fmt.Sprintf("%T@%p", x, x)
	}
}

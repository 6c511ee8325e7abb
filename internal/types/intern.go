package types

import (
	"sort"
	"sync"

	"github.com/minio/highwayhash"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/resolve"
)

// internKey is a fixed 32-byte key; it need not be secret, only
// stable, since it only ever seeds the intern table's bucketing.
var internKey = []byte("cursive0-type-table-0123456789AB")

// Table is the type intern pool for one compilation: every Type value
// handed out by its constructors is structurally unique, so `==`
// between two Types is equivalence (spec.md §3.3). It also resolves
// named types against the Sigma table the resolver produced, and
// caches layouts per interned type.
type Table struct {
	mu      sync.Mutex
	cache   map[string]Type
	layouts map[string]*Layout
	sigma   map[string]*resolve.Symbol

	// building guards against an alias cycle (A = B, B = A) recursing
	// forever while resolving a named type's target.
	building map[string]bool
}

// NewTable creates a Table backed by a resolver's Sigma output, used
// to look up record/enum/modal/alias/class declarations when a named
// type's structure (fields, variants, states, alias target) is needed.
func NewTable(sigma map[string]*resolve.Symbol) *Table {
	return &Table{
		cache:    make(map[string]Type),
		layouts:  make(map[string]*Layout),
		sigma:    sigma,
		building: make(map[string]bool),
	}
}

func hashKey(s string) uint64 {
	h, err := highwayhash.New64(internKey)
	if err != nil {
		panic(err) // internKey's length is fixed and always valid
	}
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Digest returns a stable 64-bit fingerprint of t's structural key, a
// compact handle in place of the full key string. No other package
// calls it; symbol mangling works from the type's String form.
func (tb *Table) Digest(t Type) uint64 { return hashKey(t.key()) }

func (tb *Table) intern(t Type) Type {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	k := t.key()
	if existing, ok := tb.cache[k]; ok {
		return existing
	}
	tb.cache[k] = t
	return t
}

func (tb *Table) Primitive(name string) Type { return tb.intern(&primitiveT{name: name}) }

func (tb *Table) Str(bytes bool, state string) Type {
	return tb.intern(&stringT{bytes: bytes, state: state})
}

func (tb *Table) Ptr(elem Type, state string) Type {
	return tb.intern(&ptrT{elem: elem, state: state})
}

func (tb *Table) RawPtr(elem Type, mut bool) Type {
	return tb.intern(&rawPtrT{elem: elem, mut: mut})
}

func (tb *Table) Tuple(elems []Type) Type {
	return tb.intern(&tupleT{elems: elems})
}

func (tb *Table) Array(elem Type, length int64) Type {
	return tb.intern(&arrayT{elem: elem, len: length})
}

func (tb *Table) Slice(elem Type) Type {
	return tb.intern(&sliceT{elem: elem})
}

// Union flattens nested unions, deduplicates by structural key, sorts
// for order-independence, and collapses a singleton set to its one
// member (spec.md §3.3: "union members are normalized to a canonical
// set; order irrelevant; A|A = A").
func (tb *Table) Union(members []Type) Type {
	seen := make(map[string]Type)
	var flat []Type
	var flatten func(Type)
	flatten = func(t Type) {
		if u, ok := t.(*unionT); ok {
			for _, m := range u.members {
				flatten(m)
			}
			return
		}
		if _, ok := seen[t.key()]; ok {
			return
		}
		seen[t.key()] = t
		flat = append(flat, t)
	}
	for _, m := range members {
		flatten(m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].key() < flat[j].key() })
	return tb.intern(&unionT{members: flat})
}

func (tb *Table) Func(params []Type, ret Type) Type {
	return tb.intern(&funcT{params: params, ret: ret})
}

func (tb *Table) Named(path string, args []Type) Type {
	return tb.intern(&namedT{path: path, args: args})
}

func (tb *Table) ModalState(path string, args []Type, state string) Type {
	return tb.intern(&modalStateT{path: path, args: args, state: state})
}

func (tb *Table) Perm(perm Permission, elem Type) Type {
	return tb.intern(&permT{perm: perm, elem: elem})
}

func (tb *Table) Refinement(underlying Type, predicate ast.Expr) Type {
	return tb.intern(&refinementT{underlying: underlying, predicate: predicate})
}

func (tb *Table) Opaque(path string) Type { return tb.intern(&opaqueT{path: path}) }

func (tb *Table) Dyn(classPath string) Type { return tb.intern(&dynT{classPath: classPath}) }

func (tb *Table) Async(out, in, result, err Type) Type {
	return tb.intern(&asyncT{out: out, in: in, result: result, err: err})
}

func (tb *Table) TypeVar(name string) Type { return tb.intern(&typeVarT{name: name}) }

// Lookup returns the Sigma symbol backing a named type's path, if any.
func (tb *Table) Lookup(path string) (*resolve.Symbol, bool) {
	sym, ok := tb.sigma[path]
	return sym, ok
}

// ResolveAlias follows a chain of `type X = Y` declarations to Y's
// underlying namedT/non-alias target, reporting false on a cycle
// rather than recursing forever.
func (tb *Table) ResolveAlias(path string) (string, bool) {
	seen := make(map[string]bool)
	for {
		if seen[path] {
			return "", false
		}
		seen[path] = true
		sym, ok := tb.sigma[path]
		if !ok || sym.Kind != resolve.KindAlias {
			return path, true
		}
		alias, ok := sym.Decl.(*ast.TypeAliasItem)
		if !ok {
			return path, true
		}
		target, ok := alias.Target.(*ast.PathType)
		if !ok {
			return path, true // alias target isn't itself a bare named path
		}
		path = joinSegments(target.Segments)
	}
}

func joinSegments(segs []string) string {
	out := segs[0]
	for _, s := range segs[1:] {
		out += "::" + s
	}
	return out
}

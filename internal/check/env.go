package check

import "github.com/cursive-lang/cursive0/internal/types"

// binding is one local name's type-checking state: its declared type,
// the permission it was bound under, and whether a prior `move` has
// already consumed it. Full Fresh/Valid/Moved/Poisoned dataflow across
// control-flow edges is `internal/region`'s job (spec.md §4.4); this
// package only tracks the same-block, no-loop-back case a bidirectional
// pass can decide locally — enough to catch the common "moved then used
// again in the next statement" mistake without claiming CFG coverage.
type binding struct {
	typ     types.Type
	perm    types.Permission
	mutable bool
	moved   bool
}

// Env is a lexically-nested variable environment.
type Env struct {
	parent *Env
	vars   map[string]*binding
}

// NewEnv creates a child scope of parent (nil for the outermost scope).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]*binding)}
}

func (e *Env) define(name string, t types.Type, perm types.Permission, mutable bool) {
	e.vars[name] = &binding{typ: t, perm: perm, mutable: mutable}
}

func (e *Env) lookup(name string) (*binding, bool) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// PermissionOf exposes a binding's permission to other packages that
// need it without seeing the checker's internal binding state —
// `internal/concur`'s parallel-safety check is built against exactly
// this shape (its `PermissionOf` function type).
func (e *Env) PermissionOf(name string) (types.Permission, bool) {
	b, ok := e.lookup(name)
	if !ok {
		return 0, false
	}
	return b.perm, true
}

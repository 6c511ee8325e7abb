package resolve

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
)

// aliasFile binds `import`/`using` clauses to their targets. Per
// spec.md §4.2 contract (c), both introduce aliases into the current
// resolution scope — never a new declaration — so they resolve
// entirely against symbols the declare pass already populated.
func (r *resolver) aliasFile(f *ast.File) {
	for _, item := range f.Items {
		switch it := item.(type) {
		case *ast.Import:
			r.aliasImport(it)
		case *ast.Using:
			r.aliasUsing(it)
		}
	}
}

func (r *resolver) aliasImport(it *ast.Import) {
	base := joinPath(it.Path)
	if len(it.Selected) == 0 {
		// Whole-module import: names are already reachable by their
		// fully-qualified path, since this resolver treats the set of
		// files passed to Resolve as one module with no cross-binary
		// loading (an outer driver's job per the Non-goals). Nothing
		// further to bind.
		return
	}
	for _, name := range it.Selected {
		full := base + "::" + name
		sym, ok := r.result.Sigma[full]
		if !ok {
			sym, ok = r.result.Values[full]
		}
		if !ok {
			r.markUnresolved(it, diag.ESemUnresolved, "import %q: %q not found", base, name)
			continue
		}
		r.bindAlias(name, sym, it)
	}
}

func (r *resolver) aliasUsing(it *ast.Using) {
	full := joinPath(it.Path)
	sym, ok := r.result.Sigma[full]
	if !ok {
		sym, ok = r.result.Values[full]
	}
	if !ok {
		r.markUnresolved(it, diag.ESemUnresolved, "using %q: no such declaration", full)
		return
	}
	name := it.Alias
	if name == "" {
		name = sym.Name
	}
	r.bindAlias(name, sym, it)
}

func (r *resolver) bindAlias(name string, sym *Symbol, at ast.Node) {
	if prev, ok := r.aliases[name]; ok && prev != sym {
		r.markUnresolved(at, diag.ESemAliasConflict, "alias %q already bound to %q", name, prev.QualifiedName())
		return
	}
	r.aliases[name] = sym
}

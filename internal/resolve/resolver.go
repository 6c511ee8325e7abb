// Package resolve implements Cursive0's name/scope resolver (spec.md
// §4.2): it binds identifiers and paths to declarations, enforces
// visibility, and populates the Sigma table (types, with each modal
// state under its Modal::State path) and the value table (statics,
// procedures, class methods and modal transitions; modal states are
// not entered there).
//
// Resolve() treats every *ast.File passed to it together as one module
// (spec.md has no module-loading story in this pipeline — that is an
// outer driver's job per the Non-goals); `private` is therefore scoped
// to one file and `internal` to the whole batch.
package resolve

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
)

// Result is the resolver's output: the populated Sigma/value tables
// plus a side table of per-node resolutions. Cursive0's AST nodes are
// built once by the parser and never carry a resolver-owned field
// (keeping `internal/ast` resolver-agnostic, the way the teacher keeps
// its surface AST independent of `internal/typedast`); instead of
// splicing a replacement ErrorExpr into an already-built parent,
// resolution results are looked up by node identity here. A node present
// in Unresolved is exactly as inert to the type checker as a literal
// ErrorExpr would be — the diagnostic has already been reported.
type Result struct {
	Sigma      map[string]*Symbol
	Values     map[string]*Symbol
	Resolved   map[ast.Node]*Symbol
	Unresolved map[ast.Node]bool
}

func newResult() *Result {
	return &Result{
		Sigma:      make(map[string]*Symbol),
		Values:     make(map[string]*Symbol),
		Resolved:   make(map[ast.Node]*Symbol),
		Unresolved: make(map[ast.Node]bool),
	}
}

// Lookup returns the symbol resolved for node, if any.
func (r *Result) Lookup(node ast.Node) (*Symbol, bool) {
	sym, ok := r.Resolved[node]
	return sym, ok
}

type resolver struct {
	sink    *diag.Sink
	result  *Result
	aliases map[string]*Symbol // from `using`/selective `import`

	curFile  string
	curOwner string // enclosing record/enum/modal/class name, for `protected`
}

// Resolve runs declaration, aliasing, and body-resolution over files,
// returning the populated tables and side-resolution map. Diagnostics
// (unresolved names, visibility violations, duplicate declarations) are
// reported to sink; a failed lookup never panics, it marks the node
// Unresolved and lets the caller continue (spec.md §4.2 contract a).
func Resolve(files []*ast.File, sink *diag.Sink) *Result {
	r := &resolver{sink: sink, result: newResult(), aliases: make(map[string]*Symbol)}
	for _, f := range files {
		r.declareFile(f)
	}
	for _, f := range files {
		r.aliasFile(f)
	}
	for _, f := range files {
		r.curFile = fileName(f)
		r.resolveFile(f)
	}
	return r.result
}

func fileName(f *ast.File) string {
	// The parser does not stamp *ast.File with its source name
	// directly; the span's start position carries it.
	return f.Span().Start.File
}

func (r *resolver) markResolved(node ast.Node, sym *Symbol) {
	r.result.Resolved[node] = sym
}

func (r *resolver) markUnresolved(node ast.Node, code diag.Code, format string, args ...interface{}) {
	r.result.Unresolved[node] = true
	r.sink.Errorf(code, node.Span(), format, args...)
}

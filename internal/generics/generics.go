// Package generics implements monomorphization (spec.md §4.3.2):
// generic declarations stay in polymorphic form until a call site's
// instantiation demand names concrete argument types, at which point
// this package builds the substitution, checks each generic parameter's
// class bounds, and re-checks a fresh instance of the body under that
// substitution.
package generics

import (
	"fmt"
	"strings"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/check"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/types"
)

// maxDepth is the monomorphization recursion limit spec.md §4.3.2
// names: a demand chain longer than this almost certainly means a
// divergent type-level recursion (e.g. `Box<Box<Box<...>>>` generated
// by a self-instantiating generic), not a legitimate deeply nested
// instantiation.
const maxDepth = 128

// Instance is one monomorphization result: a mangled symbol name, the
// path/argument types it was instantiated from, and the procedure
// declaration its body was re-checked against under the substitution.
type Instance struct {
	Symbol string
	Path   string
	Args   []types.Type
	Proc   *ast.ProcedureItem
}

// Engine drains a queue of instantiation demands to a fixed point,
// producing one Instance per distinct (path, arg-types) pair.
type Engine struct {
	tb   *types.Table
	res  *resolve.Result
	sink *diag.Sink

	instances map[string]*Instance
	depth     map[string]int
	queue     []check.Demand
	maxDepth  int
}

// NewEngine creates an Engine sharing tb/res/sink with the checker
// pass that raised the initial demands.
func NewEngine(tb *types.Table, res *resolve.Result, sink *diag.Sink) *Engine {
	return &Engine{
		tb:        tb,
		res:       res,
		sink:      sink,
		instances: make(map[string]*Instance),
		depth:     make(map[string]int),
		maxDepth:  maxDepth,
	}
}

// SetMaxDepth overrides the recursion limit Run enforces, letting a
// caller honor a project's `monomorphization_depth` configuration
// instead of always falling back to spec.md §4.3.2's reference default.
func (e *Engine) SetMaxDepth(n int) {
	if n > 0 {
		e.maxDepth = n
	}
}

// Enqueue adds demands raised by a checking pass (spec.md §4.3.2: "the
// checker emits instantiation demands... to a work queue").
func (e *Engine) Enqueue(demands ...check.Demand) {
	e.queue = append(e.queue, demands...)
}

// Instances returns every instance produced so far, keyed by mangled
// symbol.
func (e *Engine) Instances() map[string]*Instance { return e.instances }

// Run pops demands until the queue is empty, cloning and re-checking
// each newly discovered instance; re-checking a clone may itself raise
// further demands (nested generic calls), which are appended to the
// same queue, so the whole pass runs to a fixed point rather than one
// sweep (spec.md §4.3.2: "the queue runs to fixed point").
func (e *Engine) Run() {
	for len(e.queue) > 0 {
		d := e.queue[0]
		e.queue = e.queue[1:]
		e.process(d)
	}
}

func (e *Engine) process(d check.Demand) {
	sym, ok := e.res.Values[d.Path]
	if !ok {
		return
	}
	proc, ok := sym.Decl.(*ast.ProcedureItem)
	if !ok || len(proc.Generics) == 0 {
		return
	}

	mangled := Mangle(d.Path, d.Args)
	if _, done := e.instances[mangled]; done {
		return
	}

	e.depth[d.Path]++
	if e.depth[d.Path] > e.maxDepth {
		e.sink.Errorf(diag.ETypMonoDepth, proc.Span(), "monomorphization of %q did not terminate within depth %d", d.Path, e.maxDepth)
		return
	}

	subst := make(map[string]types.Type, len(proc.Generics))
	for i, g := range proc.Generics {
		if i < len(d.Args) && d.Args[i] != nil {
			subst[g.Name] = d.Args[i]
		} else {
			subst[g.Name] = e.tb.Primitive("!")
		}
	}

	for _, g := range proc.Generics {
		e.checkBounds(proc, g, subst[g.Name])
	}

	inst := &Instance{Symbol: mangled, Path: d.Path, Args: d.Args, Proc: proc}
	e.instances[mangled] = inst

	sub := check.New(e.tb, e.res, e.sink, nil).WithGenericEnv(subst)
	sub.CheckProcedure(proc)
	e.Enqueue(sub.Demands()...)
}

// checkBounds discharges `T <: Class` (spec.md §4.3.2: "checks bounds...
// discharged by searching Sigma for an impl"). This grammar has no
// `impl` block, so satisfaction is structural: the argument type must
// have a method matching every one of the class's signatures, found at
// the same `"Owner::Method"` key `internal/check`'s method dispatch
// uses (the class's own methods, not the concrete type's, since Sigma
// has no separate impl table to search).
func (e *Engine) checkBounds(proc *ast.ProcedureItem, g ast.GenericParam, arg types.Type) {
	for _, bound := range g.Bounds {
		path, ok := bound.(*ast.PathType)
		if !ok || len(path.Segments) != 1 {
			continue
		}
		classSym, ok := e.res.Sigma[path.Segments[0]]
		if !ok {
			continue
		}
		class, ok := classSym.Decl.(*ast.ClassItem)
		if !ok {
			continue
		}
		argPath, _, isNamed := types.AsNamed(types.Deref(arg))
		if !isNamed {
			e.sink.Errorf(diag.ETypNotSubtype, proc.Span(), "%s does not satisfy bound %s", arg.String(), class.Name)
			continue
		}
		for _, m := range class.Methods {
			key := argPath + "::" + m.Name
			if _, found := e.res.Values[key]; !found {
				e.sink.Errorf(diag.ETypNotSubtype, proc.Span(), "%s does not satisfy bound %s: missing method %q", arg.String(), class.Name, m.Name)
			}
		}
	}
}

// Mangle produces the key the monomorphization map stores an instance
// under: the generic declaration's path followed by each argument
// type's string form. It is not the linker-visible symbol; the
// canonical mangling grammar, shared with linked call sites, belongs to
// `internal/symbol`.
func Mangle(path string, args []types.Type) string {
	if len(args) == 0 {
		return path
	}
	parts := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", path, strings.Join(parts, ","))
}

// Package check implements Cursive0's bidirectional type checker
// (spec.md §4.3): expression synthesis and checking, place typing,
// operator rules, permission/capability/purity enforcement, contract
// and refinement proof obligations, modal widening, and unsafe-span
// enforcement. Exhaustiveness and binder extraction for `match` are
// delegated to `internal/pattern`; monomorphization demands are queued
// for `internal/generics`; region/async/concurrency desugaring belongs
// to `internal/region`, `internal/modal`, and `internal/concur`
// respectively — this package types the core expression language they
// all sit on top of.
package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Checker holds the shared state of one checking pass over a resolved
// program: the type table (interning + layout + subtyping), the
// resolver's symbol/path resolutions, the diagnostic sink, and the
// predicate prover contracts and refinements discharge against.
type Checker struct {
	tb     *types.Table
	res    *resolve.Result
	sink   *diag.Sink
	prover types.Prover

	unsafeDepth int

	// entryEnv is non-nil only while checking a contract's post clause
	// (spec.md §4.3 contracts): it holds the bindings as they stood at
	// procedure entry, the shadow environment `entry(x)` resolves x's
	// type against instead of the (possibly different) env post-clause
	// checking would otherwise use.
	entryEnv *Env

	// widenThreshold overrides the payload-size warning threshold
	// `widen` checks against; 0 means "use the package default"
	// (WithWidenThreshold lets a caller honor a project's
	// `widen_warn_threshold_bytes` configuration).
	widenThreshold int

	// demands collects generic instantiation requests raised while
	// checking calls to a generic procedure; `internal/generics` drains
	// this queue. Kept here rather than dropped, since the checker is
	// the only pass that sees every call site.
	demands []Demand

	// genEnv substitutes generic-parameter names to concrete types while
	// re-checking a monomorphized clone; nil for an ordinary (polymorphic
	// declaration's own) checking pass. `internal/generics` sets this via
	// WithGenericEnv before re-checking a substituted body.
	genEnv map[string]types.Type
}

// WithWidenThreshold overrides the payload-size threshold `widen e`
// warns at or above.
func (c *Checker) WithWidenThreshold(bytes int) *Checker {
	c.widenThreshold = bytes
	return c
}

// WithGenericEnv returns a Checker sharing this one's tables/sink but
// substituting generic-parameter names through env for the duration of
// checking a monomorphization instance's cloned body.
func (c *Checker) WithGenericEnv(env map[string]types.Type) *Checker {
	clone := *c
	clone.genEnv = env
	clone.demands = nil
	return &clone
}

// build resolves a surface type, substituting any active generic
// environment — the single choke point every type-position checker
// call should go through instead of calling tb.Build directly, so a
// monomorphized clone's nested type positions (casts, transmutes,
// literals) see the same substitution its parameters do.
func (c *Checker) build(t ast.TypeExpr) (types.Type, error) {
	return c.tb.Build(t, c.genEnv)
}

// Demand is one monomorphization instantiation request (spec.md
// §4.3.2): a generic declaration's path plus the concrete argument
// types inferred or written at a call site.
type Demand struct {
	Path string
	Args []types.Type
}

// New creates a Checker over tb/res, reporting to sink, proving
// refinement/contract obligations with prover (types.DefaultProver if
// nil).
func New(tb *types.Table, res *resolve.Result, sink *diag.Sink, prover types.Prover) *Checker {
	if prover == nil {
		prover = types.DefaultProver
	}
	return &Checker{tb: tb, res: res, sink: sink, prover: prover}
}

// Demands returns the instantiation demands raised so far.
func (c *Checker) Demands() []Demand { return c.demands }

func (c *Checker) demand(path string, args []types.Type) {
	c.demands = append(c.demands, Demand{Path: path, Args: args})
}

func (c *Checker) inUnsafe() bool { return c.unsafeDepth > 0 }

// subtype is a thin wrapper binding the checker's own prover into every
// subtyping query, so call sites never have to thread it through.
func (c *Checker) subtype(a, b types.Type) bool {
	return types.Subtype(c.tb, c.prover, a, b)
}

// errorType is synthesized in place of any ill-typed expression so that
// checking can continue rather than abort (spec.md §4.2 contract (a),
// carried over to the checker: an error propagates as `!`, a subtype of
// everything, so it never triggers a cascade of spurious mismatches).
func (c *Checker) errorType() types.Type { return c.tb.Primitive("!") }

func (c *Checker) unitType() types.Type { return c.tb.Tuple(nil) }

func (c *Checker) boolType() types.Type { return c.tb.Primitive("bool") }

// symbolOf returns the resolved symbol for a node the resolver already
// annotated (a path, a field, a call callee), if any.
func (c *Checker) symbolOf(n ast.Node) (*resolve.Symbol, bool) {
	if c.res == nil {
		return nil, false
	}
	return c.res.Lookup(n)
}

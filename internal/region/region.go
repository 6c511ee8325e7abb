// Package region implements the region/ownership analysis of spec.md
// §4.4: a forward dataflow over each procedure body tracking every
// binding's validity (Fresh / Valid / Moved / Poisoned / Expired)
// across branches and loops, and expiring every binding whose pointee
// was allocated in a region once that region exits.
//
// This is a separate pass from `internal/check`'s own move tracking,
// which only catches the straightforward same-block case; this package
// is where the full control-flow-sensitive guarantee spec.md's
// invariants 6 and 7 actually require lives.
package region

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
)

// State is a binding's validity at a program point.
type State int

const (
	Fresh State = iota
	Valid
	Moved
	Poisoned
	Expired
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Valid:
		return "valid"
	case Moved:
		return "moved"
	case Poisoned:
		return "poisoned"
	case Expired:
		return "expired"
	default:
		return "?"
	}
}

// join combines the state two control-flow paths leave a binding in:
// the more restrictive of the two, since a later read must be safe
// regardless of which path was actually taken.
func join(a, b State) State {
	if a > b {
		return a
	}
	return b
}

// record is one binding's mutable validity cell, shared by every scope
// in the chain that can see it — branches mutate it directly and the
// analyzer snapshots/restores it around a branch to compute the join.
type record struct {
	state  State
	region string // region alias owning this binding's pointee, "" if none
}

type scope struct {
	parent *scope
	vars   map[string]*record
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*record)}
}

func (s *scope) define(name string, st State, reg string) {
	s.vars[name] = &record{state: st, region: reg}
}

func (s *scope) lookup(name string) (*record, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if r, ok := sc.vars[name]; ok {
			return r, true
		}
	}
	return nil, false
}

// snapshot captures the current state of every binding visible from s,
// so a branch's effects can be computed against a clean baseline and
// restored before trying the next branch.
type snapshot map[*record]State

func capture(s *scope) snapshot {
	out := make(snapshot)
	seen := make(map[string]bool)
	for sc := s; sc != nil; sc = sc.parent {
		for name, r := range sc.vars {
			if !seen[name] {
				seen[name] = true
				out[r] = r.state
			}
		}
	}
	return out
}

func restore(snap snapshot) {
	for r, st := range snap {
		r.state = st
	}
}

func apply(snap snapshot) {
	for r, st := range snap {
		r.state = st
	}
}

func mergeInto(dst, a, b snapshot) {
	for r, sa := range a {
		sb, ok := b[r]
		if !ok {
			sb = sa
		}
		dst[r] = join(sa, sb)
	}
	for r, sb := range b {
		if _, ok := dst[r]; !ok {
			dst[r] = sb
		}
	}
}

// Analyzer runs the validity dataflow over a procedure.
type Analyzer struct {
	sink    *diag.Sink
	regions []string
	anon    int
}

// NewAnalyzer creates an Analyzer reporting to sink.
func NewAnalyzer(sink *diag.Sink) *Analyzer {
	return &Analyzer{sink: sink}
}

// AnalyzeProcedure walks decl's body; extern declarations (no body)
// have nothing to analyze.
func (a *Analyzer) AnalyzeProcedure(decl *ast.ProcedureItem) {
	if decl.Body == nil {
		return
	}
	top := newScope(nil)
	if decl.Receiver != nil {
		top.define(decl.Receiver.Name, Valid, "")
	}
	for _, p := range decl.Params {
		top.define(p.Name, Valid, "")
	}
	a.walkBlock(top, decl.Body)
}

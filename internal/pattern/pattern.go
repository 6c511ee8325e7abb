// Package pattern implements match-arm typing and exhaustiveness
// analysis (spec.md §4.3.1): patterns are typed against a scrutinee
// type to produce per-arm binders plus an exhaustiveness verdict,
// built from the classic usefulness-matrix construction (Maranget,
// "Warnings for pattern matching") rather than ad-hoc case arithmetic,
// the way the teacher's own exhaustiveness pass is structured around
// an explicit universe/cover/subtract model.
package pattern

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Binder is one name bound by a pattern, with its resolved type.
type Binder struct {
	Name string
	Type types.Type
}

// ArmResult is the outcome of typing one match arm's pattern.
type ArmResult struct {
	Binders []Binder
}

// MatchResult is the outcome of checking a whole match expression.
type MatchResult struct {
	Arms       []ArmResult
	Exhaustive bool
	// Missing holds human-readable witnesses of uncovered shapes, used
	// to word the W-NON-EXHAUSTIVE diagnostic; empty when Exhaustive.
	Missing []string
}

// row is one arm reduced to the pattern matrix the usefulness check
// walks: a list of column patterns (more than one only after
// specializing into a constructor's fields) plus whether a guard makes
// the arm's coverage unreliable.
type row struct {
	pats    []ast.Pattern
	guarded bool
}

// Check types every arm's pattern against scrutinee, extracts binders,
// and decides exhaustiveness over the whole arm list. It reports
// W-NON-EXHAUSTIVE when some value of scrutinee reaches no arm, and
// W-SHADOWED-ARM for any arm made unreachable by an earlier one.
func Check(tb *types.Table, sink *diag.Sink, scrutinee types.Type, matchSpan ast.Node, arms []ast.MatchArm) MatchResult {
	if len(arms) == 0 {
		sink.Warnf(diag.WNonExhaustive, matchSpan.Span(), "match has no arms; every value of the scrutinee is unhandled")
		return MatchResult{}
	}
	result := MatchResult{Arms: make([]ArmResult, len(arms))}
	for i, arm := range arms {
		result.Arms[i] = ArmResult{Binders: bind(tb, scrutinee, arm.Pattern)}
	}

	rows := make([]row, len(arms))
	for i, arm := range arms {
		rows[i] = row{pats: []ast.Pattern{arm.Pattern}, guarded: arm.Guard != nil}
	}

	colTypes := []types.Type{scrutinee}
	for i := range rows {
		if rows[i].guarded {
			continue
		}
		prefix := unguarded(rows[:i])
		if !isUseful(tb, prefix, colTypes, rows[i].pats, nil) {
			sink.Warnf(diag.WShadowedArm, rows[i].pats[0].Span(), "this arm is unreachable; all of its values are already matched above")
		}
	}

	var missing []string
	wildcard := []ast.Pattern{&ast.WildcardPattern{}}
	isUseful(tb, unguarded(rows), colTypes, wildcard, &missing)
	if len(missing) > 0 {
		result.Missing = missing
		sink.Warnf(diag.WNonExhaustive, arms[len(arms)-1].Sp, "match is not exhaustive; missing: %s", joinWitnesses(missing))
	} else {
		result.Exhaustive = true
	}
	return result
}

func joinWitnesses(ws []string) string {
	out := ws[0]
	for _, w := range ws[1:] {
		out += ", " + w
	}
	return out
}

func unguarded(rows []row) []row {
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		if !r.guarded {
			out = append(out, r)
		}
	}
	return out
}

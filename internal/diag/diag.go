// Package diag implements Cursive0's structured diagnostics: stable
// codes, severities, spans, and attribute-based suppression, streamed
// into a per-file sink (spec.md §2, §4.1, §7).
package diag

import (
	"fmt"
	"sort"

	"github.com/cursive-lang/cursive0/internal/source"
)

// Severity is the diagnostic level.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "?"
	}
}

// Code is a stable diagnostic identifier, per the taxonomy in
// spec.md §6 (E-SRC-05xx, E-UNS-01xx, E-TYP-xxxx, E-SEM-28xx,
// E-CAP-0001, E-CON-02xx, W-* warnings).
type Code string

const (
	ESrcMissingTerminator Code = "E-SRC-0510"
	ESrcSyntax            Code = "E-SRC-0520"
	ESrcTrailingComma     Code = "E-SRC-0521"
	EUnsSurface           Code = "E-UNS-0100"
	ETypMismatch          Code = "E-TYP-0001"
	ETypNotSubtype        Code = "E-TYP-0002"
	ETypUnresolved        Code = "E-TYP-0003"
	ETypDuplicateField    Code = "E-TYP-0004"
	ETypMoveAfterUse      Code = "E-TYP-0005"
	ETypExpiredDeref      Code = "E-TYP-0006"
	ETypUnsafeOutside     Code = "E-TYP-0007"
	ETypMonoDepth         Code = "E-TYP-0008"
	ETypRefinementUnprov  Code = "E-TYP-1953"
	ESemEntryResult       Code = "E-SEM-2800"
	ESemUnresolved        Code = "E-SEM-2810"
	ESemVisibility        Code = "E-SEM-2811"
	ESemDuplicateDecl     Code = "E-SEM-2812"
	ESemAliasConflict     Code = "E-SEM-2813"
	ESemReturnAtModule    Code = "E-SEM-3165"
	ECapExternCapability  Code = "E-CAP-0001"
	EConKeyAcrossYield    Code = "E-CON-0213"
	EConParallel          Code = "E-CON-0001"
	WExhaustiveness       Code = "W-EXHAUSTIVENESS"
	WImplicitWiden        Code = "W-WIDEN"
	WStaleBinding         Code = "W-STALE-BINDING"
	WShadowedArm          Code = "W-SHADOWED-ARM"
	WNonExhaustive        Code = "W-NON-EXHAUSTIVE"
)

func (c Code) Severity() Severity {
	if len(c) > 0 && c[0] == 'W' {
		return Warning
	}
	return Error
}

// Diagnostic is one reported finding.
type Diagnostic struct {
	Code    Code
	Message string
	Span    source.Span
	Notes   []Note
}

// Note is a secondary span pointing at, e.g., the declaration a node
// was expected to match (spec.md §7).
type Note struct {
	Message string
	Span    source.Span
}

func (d Diagnostic) Severity() Severity { return d.Code.Severity() }

// Sink accumulates diagnostics for one file/subtree, in discovery
// order, per spec.md §7 ("diagnostics are printed in discovery
// order"). Suppression is attribute-scoped: PushAllow/PopAllow bracket
// an item's subtree while it is being visited.
type Sink struct {
	diags      []Diagnostic
	allowStack [][]Code
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink { return &Sink{} }

// PushAllow enters the subtree of an item carrying `[[allow(codes...)]]`.
func (s *Sink) PushAllow(codes []Code) {
	s.allowStack = append(s.allowStack, codes)
}

// PopAllow leaves the subtree pushed by the matching PushAllow.
func (s *Sink) PopAllow() {
	if len(s.allowStack) > 0 {
		s.allowStack = s.allowStack[:len(s.allowStack)-1]
	}
}

func (s *Sink) suppressed(code Code) bool {
	for _, frame := range s.allowStack {
		for _, c := range frame {
			if c == code {
				return true
			}
		}
	}
	return false
}

// Report appends d to the sink unless currently suppressed by an
// enclosing `[[allow(code)]]` attribute.
func (s *Sink) Report(d Diagnostic) {
	if s.suppressed(d.Code) {
		return
	}
	s.diags = append(s.diags, d)
}

// Errorf reports an Error-severity diagnostic.
func (s *Sink) Errorf(code Code, sp source.Span, format string, args ...interface{}) {
	s.Report(Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: sp})
}

// Warnf reports a Warning-severity diagnostic.
func (s *Sink) Warnf(code Code, sp source.Span, format string, args ...interface{}) {
	s.Report(Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: sp})
}

// All returns the accumulated diagnostics in discovery order.
func (s *Sink) All() []Diagnostic { return s.diags }

// HasErrors reports whether any Error-severity diagnostic was emitted;
// per spec.md §7 this decides the process's final exit code.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity() == Error {
			return true
		}
	}
	return false
}

// Merge combines base's and other's diagnostics into a new sink ordered
// by span start offset (diagnostics at the same offset keep base's
// before other's, each in its original order), for
// the "speculative parsing with backtracking" / forked-subparse case
// of spec.md §9 (MergeDiag). The caller decides whether to keep other's
// diagnostics at all (a discarded speculative parse should not merge).
func Merge(base *Sink, other *Sink) *Sink {
	merged := NewSink()
	merged.diags = append(merged.diags, base.diags...)
	merged.diags = append(merged.diags, other.diags...)
	sort.SliceStable(merged.diags, func(i, j int) bool {
		return merged.diags[i].Span.Start.Offset < merged.diags[j].Span.Start.Offset
	})
	return merged
}

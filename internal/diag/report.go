package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	noteColor  = color.New(color.FgCyan)
	posColor   = color.New(color.Faint)
)

// Print renders diags to w, one per line, colorized by severity, in
// discovery order (spec.md §7). It never reorders errors relative to
// warnings — discovery order is the contract, not severity order.
func Print(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		c := noteColor
		switch d.Severity() {
		case Error:
			c = errorColor
		case Warning:
			c = warnColor
		}
		fmt.Fprintf(w, "%s %s: %s\n", posColor.Sprint(d.Span.String()), c.Sprint(string(d.Code)), d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s note: %s\n", posColor.Sprint(n.Span.String()), n.Message)
		}
	}
}

// jsonDiagnostic is the stable on-disk shape for a machine-readable
// diagnostic batch, grounded on the teacher's ailang.error/v1 schema.
type jsonDiagnostic struct {
	Schema  string   `json:"schema"`
	Code    string   `json:"code"`
	Severity string  `json:"severity"`
	Message string   `json:"message"`
	Span    string   `json:"span"`
	Notes   []string `json:"notes,omitempty"`
}

// ToJSON renders diags as a deterministic (sorted-by-span) JSON array.
func ToJSON(diags []Diagnostic) (string, error) {
	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start.Offset < sorted[j].Span.Start.Offset
	})
	out := make([]jsonDiagnostic, len(sorted))
	for i, d := range sorted {
		jd := jsonDiagnostic{
			Schema:   "cursive0.diagnostic/v1",
			Code:     string(d.Code),
			Severity: d.Severity().String(),
			Message:  d.Message,
			Span:     d.Span.String(),
		}
		for _, n := range d.Notes {
			jd.Notes = append(jd.Notes, fmt.Sprintf("%s: %s", n.Span, n.Message))
		}
		out[i] = jd
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

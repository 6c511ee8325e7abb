package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cursive-lang/cursive0/internal/diag"
)

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// printDiagnostics renders every diagnostic in discovery order, the
// same ordering guarantee spec.md §7 requires of the sink itself.
func printDiagnostics(cmd *cobra.Command, sink *diag.Sink) {
	out := cmd.OutOrStdout()
	for _, d := range sink.All() {
		tag := red(string(d.Code))
		if d.Severity() == diag.Warning {
			tag = yellow(string(d.Code))
		}
		fmt.Fprintf(out, "%s %s: %s\n", cyan(d.Span.String()), tag, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(out, "  %s %s\n", cyan(n.Span.String()), n.Message)
		}
	}
}

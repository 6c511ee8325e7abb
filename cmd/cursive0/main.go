// Command cursive0 is the bootstrap compiler's harness binary: thin
// subcommands over the internal/pipeline front end, following the
// teacher's own cmd/ailang in spirit (a single entry point dispatching
// to run/repl/test-style subcommands) but built on spf13/cobra instead
// of the teacher's hand-rolled flag.Parse dispatch, since a multi-level
// subcommand surface (parse/check/lower/repl, each with its own flags)
// is exactly what cobra+pflag exist for.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	red  = color.New(color.FgRed).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()

	// Version is set by ldflags during release builds.
	Version = "dev"
)

func main() {
	root := &cobra.Command{
		Use:     "cursive0",
		Short:   "Cursive0 bootstrap compiler",
		Version: Version,
	}
	root.AddCommand(newParseCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newLowerCmd())
	root.AddCommand(newReplCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", red("error"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

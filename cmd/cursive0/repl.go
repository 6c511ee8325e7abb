package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/cursive-lang/cursive0/internal/config"
	"github.com/cursive-lang/cursive0/internal/ir"
	"github.com/cursive-lang/cursive0/internal/pipeline"
)

// newReplCmd builds a read-check-lower loop over liner, the same
// readline library the teacher's own internal/repl uses for history and
// multiline input — adapted from an eval loop (ailang's REPL holds a
// persistent Environment and prints a value each iteration) to a
// check/lower loop, since this front end has no evaluator: each
// submitted snippet is parsed, checked, and lowered fresh, with
// diagnostics or the lowered IR printed back.
func newReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive check/lower loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepl(cmd.OutOrStdout())
			return nil
		},
	}
	return cmd
}

func runRepl(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".cursive0_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "%s\n", bold("cursive0 repl"))
	fmt.Fprintln(out, "Type an item (procedure/class/modal); empty line submits.")

	cfg := config.Default()
	replNum := 0
	for {
		snippet, err := readSnippet(line)
		if err == io.EOF {
			fmt.Fprintln(out, "goodbye")
			return
		}
		if snippet == "" {
			continue
		}
		line.AppendHistory(snippet)
		replNum++

		res := pipeline.Run(cfg, pipeline.Source{
			Code:     snippet,
			Filename: fmt.Sprintf("<repl:%d>", replNum),
		})
		for _, d := range res.Sink.All() {
			fmt.Fprintf(out, "%s: %s\n", d.Code, d.Message)
		}
		if res.Sink.HasErrors() {
			continue
		}
		for name, proc := range res.Artifacts.Lowered {
			fmt.Fprintf(out, "; %s -> %s\n", name, proc.Symbol)
			fmt.Fprint(out, ir.Sprint(proc.Body))
		}
	}
}

func readSnippet(line *liner.State) (string, error) {
	var snippet string
	for {
		text, err := line.Prompt("cursive0> ")
		if err != nil {
			return "", err
		}
		if text == "" {
			return snippet, nil
		}
		snippet += text + "\n"
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/source"
)

func newParseCmd() *cobra.Command {
	var dumpAST bool
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Lex and parse a file, reporting syntax diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFile(args[0])
			if err != nil {
				return err
			}
			sink := diag.NewSink()
			toks, docs, unsafe := lexer.Tokenize(f)
			file := parser.Parse(f, toks, docs, unsafe, sink)
			ast.AttachDocs(file, docs)

			printDiagnostics(cmd, sink)
			if dumpAST {
				fmt.Fprintf(cmd.OutOrStdout(), "%d top-level items\n", len(file.Items))
			}
			if sink.HasErrors() {
				return fmt.Errorf("parse failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print a summary of the parsed AST")
	return cmd
}

func loadFile(path string) (*source.File, error) {
	loader := source.NewLoader()
	return loader.Load(context.Background(), path)
}

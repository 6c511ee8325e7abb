package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/source"
)

func parseFile(t *testing.T, src string) *ast.File {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	sink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, sink)
	require.False(t, sink.HasErrors(), "unexpected parse errors: %v", sink.All())
	return file
}

func TestAttachDocsModuleDoc(t *testing.T) {
	file := parseFile(t, "//! a module overview\nprocedure main() { }\n")
	require.Len(t, file.ModuleDoc, 1)
	require.Equal(t, "a module overview", file.ModuleDoc[0].Text)
}

func TestAttachDocsLineDocOnItem(t *testing.T) {
	file := parseFile(t, "/// computes the answer\nprocedure answer() { }\n")
	require.Len(t, file.Items, 1)
	proc, ok := file.Items[0].(*ast.ProcedureItem)
	require.True(t, ok)
	require.Len(t, proc.Docs, 1)
	require.Equal(t, "computes the answer", proc.Docs[0].Text)
}

func TestAttachDocsDoesNotLeakToNextItem(t *testing.T) {
	file := parseFile(t, "/// for first\nprocedure first() { }\nprocedure second() { }\n")
	require.Len(t, file.Items, 2)
	first := file.Items[0].(*ast.ProcedureItem)
	second := file.Items[1].(*ast.ProcedureItem)
	require.Len(t, first.Docs, 1)
	require.Empty(t, second.Docs)
}

func TestAttachDocsMultipleLinesAccumulate(t *testing.T) {
	file := parseFile(t, "/// line one\n/// line two\nprocedure f() { }\n")
	proc := file.Items[0].(*ast.ProcedureItem)
	require.Len(t, proc.Docs, 2)
	require.Equal(t, "line one", proc.Docs[0].Text)
	require.Equal(t, "line two", proc.Docs[1].Text)
}

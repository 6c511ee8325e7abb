package region_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/region"
	"github.com/cursive-lang/cursive0/internal/source"
)

func analyzeProcedure(t *testing.T, src string) *diag.Sink {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	sink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, sink)
	require.False(t, sink.HasErrors(), "unexpected parse errors: %v", sink.All())

	a := region.NewAnalyzer(sink)
	for _, item := range file.Items {
		if proc, ok := item.(*ast.ProcedureItem); ok {
			a.AnalyzeProcedure(proc)
		}
	}
	return sink
}

func TestAnalyzeProcedureNoIssues(t *testing.T) {
	sink := analyzeProcedure(t, `procedure f(x: i32) -> i32 {
  let y = x
  result y
}
`)
	require.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.All())
}

func TestAnalyzeProcedureUseAfterMove(t *testing.T) {
	sink := analyzeProcedure(t, `procedure f(x: i32) -> i32 {
  let y = move x
  result x
}
`)
	require.True(t, sink.HasErrors())
	require.Equal(t, diag.ETypMoveAfterUse, sink.All()[0].Code)
}

func TestAnalyzeProcedureDoubleMoveIsError(t *testing.T) {
	sink := analyzeProcedure(t, `procedure consume(x: i32) -> i32 { result x }
procedure f(x: i32) -> i32 {
  let a = move x
  let b = move x
  result a
}
`)
	require.True(t, sink.HasErrors())
}

func TestAnalyzeProcedureExternHasNoBody(t *testing.T) {
	sink := analyzeProcedure(t, "extern procedure f(x: i32) -> i32\n")
	require.False(t, sink.HasErrors())
}

func TestStateStringsAreDistinct(t *testing.T) {
	states := []region.State{region.Fresh, region.Valid, region.Moved, region.Poisoned, region.Expired}
	seen := make(map[string]bool)
	for _, s := range states {
		str := s.String()
		require.False(t, seen[str], "duplicate State.String() value %q", str)
		seen[str] = true
	}
}

package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/source"
	"github.com/cursive-lang/cursive0/internal/types"
)

func tableAndMatch(t *testing.T, src string) (*types.Table, *diag.Sink, *ast.MatchExpr) {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	parseSink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, parseSink)
	require.False(t, parseSink.HasErrors(), "unexpected parse errors: %v", parseSink.All())
	res := resolve.Resolve([]*ast.File{file}, parseSink)
	require.False(t, parseSink.HasErrors(), "unexpected resolve errors: %v", parseSink.All())

	var match *ast.MatchExpr
	for _, item := range file.Items {
		proc, ok := item.(*ast.ProcedureItem)
		if !ok || proc.Body == nil {
			continue
		}
		if m, ok := proc.Body.Tail.(*ast.MatchExpr); ok {
			match = m
		}
	}
	require.NotNil(t, match, "fixture must contain a procedure whose tail expression is a match")
	return types.NewTable(res.Sigma), diag.NewSink(), match
}

func hasCode(sink *diag.Sink, code diag.Code) bool {
	for _, d := range sink.All() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestExhaustiveEnumMatch(t *testing.T) {
	src := "enum Color { Red, Green, Blue }\n" +
		"procedure f(c: Color) {\n" +
		"  match c {\n" +
		"    Color::Red => 1,\n" +
		"    Color::Green => 2,\n" +
		"    Color::Blue => 3,\n" +
		"  }\n" +
		"}\n"
	tb, sink, m := tableAndMatch(t, src)
	color := tb.Named("Color", nil)
	res := Check(tb, sink, color, m, m.Arms)
	require.True(t, res.Exhaustive)
	require.False(t, hasCode(sink, diag.WNonExhaustive))
}

func TestNonExhaustiveEnumMatch(t *testing.T) {
	src := "enum Color { Red, Green, Blue }\n" +
		"procedure f(c: Color) {\n" +
		"  match c {\n" +
		"    Color::Red => 1,\n" +
		"    Color::Green => 2,\n" +
		"  }\n" +
		"}\n"
	tb, sink, m := tableAndMatch(t, src)
	color := tb.Named("Color", nil)
	res := Check(tb, sink, color, m, m.Arms)
	require.False(t, res.Exhaustive)
	require.True(t, hasCode(sink, diag.WNonExhaustive))
}

func TestWildcardArmCoversRemainder(t *testing.T) {
	src := "enum Color { Red, Green, Blue }\n" +
		"procedure f(c: Color) {\n" +
		"  match c {\n" +
		"    Color::Red => 1,\n" +
		"    _ => 0,\n" +
		"  }\n" +
		"}\n"
	tb, sink, m := tableAndMatch(t, src)
	color := tb.Named("Color", nil)
	res := Check(tb, sink, color, m, m.Arms)
	require.True(t, res.Exhaustive)
}

func TestShadowedArmAfterWildcard(t *testing.T) {
	src := "enum Color { Red, Green, Blue }\n" +
		"procedure f(c: Color) {\n" +
		"  match c {\n" +
		"    _ => 0,\n" +
		"    Color::Red => 1,\n" +
		"  }\n" +
		"}\n"
	tb, sink, m := tableAndMatch(t, src)
	color := tb.Named("Color", nil)
	Check(tb, sink, color, m, m.Arms)
	require.True(t, hasCode(sink, diag.WShadowedArm))
}

func TestBoolMatchExhaustive(t *testing.T) {
	src := "procedure f(b: bool) {\n" +
		"  match b {\n" +
		"    true => 1,\n" +
		"    false => 0,\n" +
		"  }\n" +
		"}\n"
	tb, sink, m := tableAndMatch(t, src)
	res := Check(tb, sink, tb.Primitive("bool"), m, m.Arms)
	require.True(t, res.Exhaustive)
}

func TestBoolMatchNonExhaustive(t *testing.T) {
	src := "procedure f(b: bool) {\n" +
		"  match b {\n" +
		"    true => 1,\n" +
		"  }\n" +
		"}\n"
	tb, sink, m := tableAndMatch(t, src)
	res := Check(tb, sink, tb.Primitive("bool"), m, m.Arms)
	require.False(t, res.Exhaustive)
}

func TestTuplePatternBinders(t *testing.T) {
	src := "procedure f(p: (i32, i32)) {\n" +
		"  match p {\n" +
		"    (a, b) => a,\n" +
		"  }\n" +
		"}\n"
	tb, sink, m := tableAndMatch(t, src)
	i32 := tb.Primitive("i32")
	tup := tb.Tuple([]types.Type{i32, i32})
	res := Check(tb, sink, tup, m, m.Arms)
	require.True(t, res.Exhaustive)
	require.Len(t, res.Arms[0].Binders, 2)
	require.Equal(t, "a", res.Arms[0].Binders[0].Name)
	require.Equal(t, i32, res.Arms[0].Binders[0].Type)
	require.Equal(t, "b", res.Arms[0].Binders[1].Name)
}

func TestEnumPayloadBinders(t *testing.T) {
	src := "enum Maybe { None, Some(i32) }\n" +
		"procedure f(m: Maybe) {\n" +
		"  match m {\n" +
		"    Maybe::None => 0,\n" +
		"    Maybe::Some(x) => x,\n" +
		"  }\n" +
		"}\n"
	tb, sink, m := tableAndMatch(t, src)
	maybe := tb.Named("Maybe", nil)
	res := Check(tb, sink, maybe, m, m.Arms)
	require.True(t, res.Exhaustive)
	require.Empty(t, res.Arms[0].Binders)
	require.Len(t, res.Arms[1].Binders, 1)
	require.Equal(t, "x", res.Arms[1].Binders[0].Name)
	require.Equal(t, tb.Primitive("i32"), res.Arms[1].Binders[0].Type)
}

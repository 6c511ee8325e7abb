package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.File, *diag.Sink) {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	sink := diag.NewSink()
	file := Parse(f, toks, docs, unsafeSpans, sink)
	return file, sink
}

func mustParseOK(t *testing.T, src string) *ast.File {
	t.Helper()
	file, sink := parseSrc(t, src)
	require.False(t, sink.HasErrors(), "unexpected parse errors for %q: %v", src, sink.All())
	return file
}

func TestParseLiterals(t *testing.T) {
	file := mustParseOK(t, "static let x: i32 = 42\n")
	require.Len(t, file.Items, 1)
	st, ok := file.Items[0].(*ast.StaticItem)
	require.True(t, ok)
	lit, ok := st.Value.(*ast.Literal)
	require.True(t, ok)
	require.Equal(t, ast.LitInt, lit.Kind)
	require.Equal(t, int64(42), lit.Value)
}

func TestParseBinaryPrecedence(t *testing.T) {
	file := mustParseOK(t, "static let x: i32 = 1 + 2 * 3\n")
	st := file.Items[0].(*ast.StaticItem)
	bin, ok := st.Value.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
	_, rightIsMul := bin.Right.(*ast.BinaryOp)
	require.True(t, rightIsMul, "multiplication must bind tighter than addition")
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	file := mustParseOK(t, "static let x: i32 = 2 ** 3 ** 2\n")
	st := file.Items[0].(*ast.StaticItem)
	top, ok := st.Value.(*ast.BinaryOp)
	require.True(t, ok)
	_, rightNested := top.Right.(*ast.BinaryOp)
	require.True(t, rightNested, "** must associate to the right")
}

func TestParseTupleVsParen(t *testing.T) {
	file := mustParseOK(t, "static let a: i32 = (1)\nstatic let b: (i32, i32) = (1, 2)\nstatic let c: (i32,) = (1,)\n")
	a := file.Items[0].(*ast.StaticItem)
	_, paren := a.Value.(*ast.Literal)
	require.True(t, paren, "(1) must unwrap to the bare literal")

	b := file.Items[1].(*ast.StaticItem)
	tup, ok := b.Value.(*ast.TupleLiteral)
	require.True(t, ok)
	require.Len(t, tup.Elems, 2)

	c := file.Items[2].(*ast.StaticItem)
	single, ok := c.Value.(*ast.TupleLiteral)
	require.True(t, ok)
	require.Len(t, single.Elems, 1)
}

func TestParseGenericArgsVsComparison(t *testing.T) {
	file := mustParseOK(t, "static let x: bool = a < b\n")
	st := file.Items[0].(*ast.StaticItem)
	_, isBin := st.Value.(*ast.BinaryOp)
	require.True(t, isBin, "a < b with no call/brace/:: follower must parse as comparison")
}

func TestParseNestedGenericArgs(t *testing.T) {
	file := mustParseOK(t, "record Box { value: Pair<Pair<i32, i32>, i32> }\n")
	rec := file.Items[0].(*ast.RecordItem)
	require.Len(t, rec.Fields, 1)
	pathT, ok := rec.Fields[0].Type.(*ast.PathType)
	require.True(t, ok)
	require.Equal(t, []string{"Pair"}, pathT.Segments)
	require.Len(t, pathT.Args, 2)
	inner, ok := pathT.Args[0].(*ast.PathType)
	require.True(t, ok)
	require.Equal(t, []string{"Pair"}, inner.Segments)
}

func TestParseRecordLiteral(t *testing.T) {
	file := mustParseOK(t, "procedure make() -> Point {\n  result Point { x: 1, y: 2 }\n}\n")
	proc := file.Items[0].(*ast.ProcedureItem)
	require.NotNil(t, proc.Body)
	require.Len(t, proc.Body.Stmts, 1)
	res, ok := proc.Body.Stmts[0].(*ast.ResultStmt)
	require.True(t, ok)
	rec, ok := res.Value.(*ast.RecordLiteral)
	require.True(t, ok)
	require.Len(t, rec.Fields, 2)
}

func TestParseIfElseTail(t *testing.T) {
	file := mustParseOK(t, "procedure sign(n: i32) -> i32 {\n  if n < 0 { -1 } else { 1 }\n}\n")
	proc := file.Items[0].(*ast.ProcedureItem)
	require.NotNil(t, proc.Body.Tail)
	_, ok := proc.Body.Tail.(*ast.IfExpr)
	require.True(t, ok)
}

func TestParseMatchPatterns(t *testing.T) {
	src := `procedure classify(v: Shape) -> i32 {
  match v {
    Shape::Circle(r) => 1,
    Shape::Square { side } => 2,
    _ => 0,
  }
}
`
	file := mustParseOK(t, src)
	proc := file.Items[0].(*ast.ProcedureItem)
	m, ok := proc.Body.Tail.(*ast.MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)
	_, ok = m.Arms[0].Pattern.(*ast.EnumPattern)
	require.True(t, ok)
	_, ok = m.Arms[2].Pattern.(*ast.WildcardPattern)
	require.True(t, ok)
}

func TestParseRangePatternsAndExprs(t *testing.T) {
	file := mustParseOK(t, "static let r: bool = true\nprocedure f(n: i32) -> i32 {\n  match n {\n    0..10 => 1,\n    _ => 0,\n  }\n}\n")
	proc := file.Items[1].(*ast.ProcedureItem)
	m := proc.Body.Tail.(*ast.MatchExpr)
	rng, ok := m.Arms[0].Pattern.(*ast.RangeExpr)
	require.True(t, ok)
	require.Equal(t, ast.RangeExclusive, rng.Kind)
}

func TestParseRegionAndFrame(t *testing.T) {
	file := mustParseOK(t, "procedure f() -> i32 {\n  region alloc_region() as R {\n    frame R {\n      result 0\n    }\n  }\n}\n")
	proc := file.Items[0].(*ast.ProcedureItem)
	stmt, ok := proc.Body.Stmts[0].(*ast.RegionStmt)
	require.True(t, ok)
	require.Equal(t, "R", stmt.Alias)
	_, ok = stmt.Body.Stmts[0].(*ast.FrameStmt)
	require.True(t, ok)
}

func TestParseModalWithTransitions(t *testing.T) {
	src := `modal Connection {
  @Closed {
    procedure open(~!) -> Connection@Open {
      result widen self
    }
  }
  @Open {
    sock: i32,
  }
}
`
	file := mustParseOK(t, src)
	m := file.Items[0].(*ast.ModalItem)
	require.Len(t, m.States, 2)
	require.Equal(t, "Closed", m.States[0].Name)
	require.Len(t, m.States[0].Transitions, 1)
	require.Equal(t, "open", m.States[0].Transitions[0].Name)
	require.NotNil(t, m.States[0].Transitions[0].Receiver)
}

func TestParseParallelDispatch(t *testing.T) {
	src := `procedure sumAll(xs: [i32]) -> i32 {
  parallel ctx.cpu() {
    dispatch i in 0..10 [reduce: add, ordered] {
      yield xs[i]
    }
  }
}
`
	file := mustParseOK(t, src)
	proc := file.Items[0].(*ast.ProcedureItem)
	par, ok := proc.Body.Tail.(*ast.ParallelExpr)
	require.True(t, ok)
	require.Equal(t, "cpu", par.Domain)
	disp, ok := par.Body.Tail.(*ast.DispatchExpr)
	require.True(t, ok)
	require.Equal(t, "add", disp.Opts.ReduceOp)
	require.True(t, disp.Opts.Ordered)
}

func TestParseTrailingCommaRequiresLaterLine(t *testing.T) {
	_, sink := parseSrc(t, "record Bad { x: i32, }\n")
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ESrcTrailingComma {
			found = true
		}
	}
	require.True(t, found, "same-line trailing comma before closer must be flagged")
}

func TestParseTrailingCommaOnLaterLineIsFine(t *testing.T) {
	mustParseOK(t, "record Good {\n  x: i32,\n  y: i32,\n}\n")
}

func TestParseErrorRecoverySkipsMalformedItem(t *testing.T) {
	file, sink := parseSrc(t, "record ??? broken\nrecord Fine { x: i32 }\n")
	require.True(t, sink.HasErrors())
	require.Len(t, file.Items, 2)
	_, isErr := file.Items[0].(*ast.ErrorItem)
	require.True(t, isErr)
	fine, ok := file.Items[1].(*ast.RecordItem)
	require.True(t, ok)
	require.Equal(t, "Fine", fine.Name)
}

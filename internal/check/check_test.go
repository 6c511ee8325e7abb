package check_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/check"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/source"
	"github.com/cursive-lang/cursive0/internal/types"
)

func checkSrc(t *testing.T, src string) *diag.Sink {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	sink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, sink)
	require.False(t, sink.HasErrors(), "unexpected parse errors: %v", sink.All())

	res := resolve.Resolve([]*ast.File{file}, sink)
	require.False(t, sink.HasErrors(), "unexpected resolve errors: %v", sink.All())

	tb := types.NewTable(res.Sigma)
	c := check.New(tb, res, sink, types.DefaultProver)
	c.CheckFile(file)
	return sink
}

func firstCode(sink *diag.Sink) diag.Code {
	all := sink.All()
	if len(all) == 0 {
		return ""
	}
	return all[0].Code
}

func TestCheckWellTypedProcedure(t *testing.T) {
	sink := checkSrc(t, "procedure sign(n: i32) -> i32 {\n  if n < 0 { -1 } else { 1 }\n}\n")
	require.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.All())
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	sink := checkSrc(t, `procedure f() -> i32 {
  result true
}
`)
	require.True(t, sink.HasErrors())
	require.Equal(t, diag.ETypMismatch, firstCode(sink))
}

func TestCheckArgumentCountMismatch(t *testing.T) {
	sink := checkSrc(t, `procedure add(a: i32, b: i32) -> i32 {
  result a + b
}
procedure useIt() -> i32 {
  result add(1)
}
`)
	require.True(t, sink.HasErrors())
}

func TestCheckUnknownMethod(t *testing.T) {
	sink := checkSrc(t, `class Counter {
  procedure bump(~!) -> i32 {
    result 0
  }
}
procedure useIt(c: Counter) -> i32 {
  result c.missing()
}
`)
	require.True(t, sink.HasErrors())
}

func TestCheckOperatorRequiresNumericOperands(t *testing.T) {
	sink := checkSrc(t, `procedure f() -> bool {
  result true + false
}
`)
	require.True(t, sink.HasErrors())
	require.Equal(t, diag.ETypMismatch, firstCode(sink))
}

func TestCheckRecordLiteralDuplicateField(t *testing.T) {
	sink := checkSrc(t, `record Point {
  x: i32,
  y: i32,
}
procedure make() -> Point {
  result Point { x: 1, x: 2, y: 3 }
}
`)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ETypDuplicateField {
			found = true
		}
	}
	require.True(t, found, "a duplicated record field must report E-TYP-0004")
}

func TestCheckRecordLiteralMissingField(t *testing.T) {
	sink := checkSrc(t, `record Point {
  x: i32,
  y: i32,
}
procedure make() -> Point {
  result Point { x: 1 }
}
`)
	require.True(t, sink.HasErrors())
}

func TestCheckPureProcedureRejectsImpureParam(t *testing.T) {
	sink := checkSrc(t, `pure procedure f(x: unique i32) -> i32 {
  result 0
}
`)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ETypMismatch {
			found = true
		}
	}
	require.True(t, found, "a pure procedure receiving a unique-permissioned parameter must be rejected")
}

func TestCheckModalWidenWarnsOnLargePayload(t *testing.T) {
	src := `modal Connection {
  @Closed {
    procedure open(~!) -> Connection@Open {
      result widen self
    }
  }
  @Open {
    buffer: [i32; 128],
  }
}
`
	sink := checkSrc(t, src)
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.WImplicitWiden {
			found = true
		}
	}
	require.True(t, found, "widening into a large-payload state must warn")
}

func TestCheckContractPostconditionCanReferenceEntry(t *testing.T) {
	src := "procedure bump(n: i32) -> i32 |= n > 0 => entry(n) > 0 {\n  result n + 1\n}\n"
	sink := checkSrc(t, src)
	for _, d := range sink.All() {
		require.NotEqual(t, diag.ETypUnresolved, d.Code, "entry(n) must not resolve as an undefined name: %v", d)
		require.NotEqual(t, diag.ESemEntryResult, d.Code, "entry(n) must be legal inside a post clause: %v", d)
	}
}

func TestCheckContractEntryRejectedInPrecondition(t *testing.T) {
	src := "procedure bump(n: i32) -> i32 |= entry(n) > 0 => n > 0 {\n  result n + 1\n}\n"
	sink := checkSrc(t, src)
	require.Equal(t, diag.ESemEntryResult, firstCode(sink))
}

func TestCheckContractEntryOutsideAnyContractIsRejected(t *testing.T) {
	src := "procedure bump(n: i32) -> i32 {\n  result entry(n)\n}\n"
	sink := checkSrc(t, src)
	require.Equal(t, diag.ESemEntryResult, firstCode(sink))
}

package generics

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

func checkerFor(t *testing.T, src string) (*check.Checker, *types.Table, *resolve.Result, *diag.Sink) {
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
	return c, tb, res, sink
}

func TestEngineInstantiatesGenericProcedure(t *testing.T) {
	src := `procedure identity<T>(x: T) -> T {
  result x
}
procedure useIt() -> i32 {
  result identity(1)
}
`
	c, tb, res, sink := checkerFor(t, src)
	require.False(t, sink.HasErrors(), "unexpected checking errors: %v", sink.All())

	eng := NewEngine(tb, res, sink)
	eng.Enqueue(c.Demands()...)
	eng.Run()

	require.NotEmpty(t, eng.Instances(), "a call to a generic procedure must raise at least one instantiation demand")
	for _, inst := range eng.Instances() {
		require.Equal(t, "identity", inst.Path)
		require.Equal(t, "identity", inst.Proc.Name)
	}
}

func TestEngineDedupsIdenticalInstantiations(t *testing.T) {
	src := `procedure identity<T>(x: T) -> T {
  result x
}
procedure useIt() -> i32 {
  result identity(identity(1))
}
`
	c, tb, res, sink := checkerFor(t, src)
	require.False(t, sink.HasErrors(), "unexpected checking errors: %v", sink.All())

	eng := NewEngine(tb, res, sink)
	eng.Enqueue(c.Demands()...)
	eng.Run()

	i32Count := 0
	for _, inst := range eng.Instances() {
		if len(inst.Args) == 1 && inst.Args[0] == tb.Primitive("i32") {
			i32Count++
		}
	}
	require.LessOrEqual(t, i32Count, 1, "two calls instantiating identity<i32> must collapse to one instance")
}

func TestEngineDepthLimitReportsError(t *testing.T) {
	src := `procedure identity<T>(x: T) -> T {
  result x
}
`
	_, tb, res, sink := checkerFor(t, src)
	require.False(t, sink.HasErrors())

	eng := NewEngine(tb, res, sink)
	eng.SetMaxDepth(2)

	i32 := tb.Primitive("i32")
	boolT := tb.Primitive("bool")
	str := tb.Str(false, "owned")

	// Each demand instantiates identity at a distinct argument type, so
	// none collapse via the instances-by-mangled-symbol dedup; depth is
	// tracked per declaration path, so the third demand must exceed the
	// configured limit of 2.
	eng.Enqueue(check.Demand{Path: "identity", Args: []types.Type{i32}})
	eng.Enqueue(check.Demand{Path: "identity", Args: []types.Type{boolT}})
	eng.Enqueue(check.Demand{Path: "identity", Args: []types.Type{str}})
	eng.Run()

	require.True(t, sink.HasErrors(), "exceeding the configured monomorphization depth must report an error")
	require.Len(t, eng.Instances(), 2, "the third demand must be rejected before producing an instance")
}

func TestMangleWithAndWithoutArgs(t *testing.T) {
	tb := types.NewTable(nil)
	i32 := tb.Primitive("i32")
	require.Equal(t, "identity", Mangle("identity", nil))
	require.Equal(t, "identity[i32]", Mangle("identity", []types.Type{i32}))
}

func TestMangleNilArgIsPlaceholder(t *testing.T) {
	require.Equal(t, "f[?]", Mangle("f", []types.Type{nil}))
}

package modal_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/modal"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/source"
	"github.com/cursive-lang/cursive0/internal/types"
)

func parseAndResolve(t *testing.T, src string) (*ast.File, *types.Table, *diag.Sink) {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	sink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, sink)
	require.False(t, sink.HasErrors(), "unexpected parse errors: %v", sink.All())

	res := resolve.Resolve([]*ast.File{file}, sink)
	require.False(t, sink.HasErrors(), "unexpected resolve errors: %v", sink.All())

	tb := types.NewTable(res.Sigma)
	return file, tb, sink
}

func findModal(t *testing.T, f *ast.File, name string) *ast.ModalItem {
	t.Helper()
	for _, item := range f.Items {
		if m, ok := item.(*ast.ModalItem); ok && m.Name == name {
			return m
		}
	}
	t.Fatalf("modal %q not found", name)
	return nil
}

const connectionSrc = `modal Connection {
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

func TestPlanLayoutTaggedByDefault(t *testing.T) {
	file, tb, sink := parseAndResolve(t, connectionSrc)
	require.False(t, sink.HasErrors())
	decl := findModal(t, file, "Connection")

	plan, ok := modal.PlanLayout(tb, decl, nil)
	require.True(t, ok)
	require.Equal(t, modal.Tagged, plan.Kind)
	require.Equal(t, "u8", plan.DiscType)
	require.Len(t, plan.States, 2)
}

func TestPlanLayoutNoNicheAlwaysTagged(t *testing.T) {
	file, tb, sink := parseAndResolve(t, connectionSrc)
	require.False(t, sink.HasErrors())
	decl := findModal(t, file, "Connection")

	plan, ok := modal.PlanLayoutNoNiche(tb, decl, nil)
	require.True(t, ok)
	require.Equal(t, modal.Tagged, plan.Kind)
}

func TestPlanLayoutDiscriminantGrowsWithStateCount(t *testing.T) {
	var b strings.Builder
	b.WriteString("modal Many {\n")
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "  @S%d {\n    x: i32,\n  }\n", i)
	}
	b.WriteString("}\n")

	file, tb, sink := parseAndResolve(t, b.String())
	require.False(t, sink.HasErrors())
	decl := findModal(t, file, "Many")

	plan, ok := modal.PlanLayout(tb, decl, nil)
	require.True(t, ok)
	require.Equal(t, "u16", plan.DiscType, "more than 256 states must widen the discriminant past u8")
}

func TestCheckTransitionsAcceptsValidTarget(t *testing.T) {
	file, _, sink := parseAndResolve(t, connectionSrc)
	require.False(t, sink.HasErrors())
	decl := findModal(t, file, "Connection")

	s := diag.NewSink()
	modal.CheckTransitions(s, decl)
	require.False(t, s.HasErrors(), "unexpected diagnostics: %v", s.All())
}

func TestCheckTransitionsRejectsUndeclaredTarget(t *testing.T) {
	src := `modal Connection {
  @Closed {
    procedure open(~!) -> Connection@Missing {
      result widen self
    }
  }
  @Open {
    sock: i32,
  }
}
`
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	parseSink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, parseSink)
	require.False(t, parseSink.HasErrors(), "unexpected parse errors: %v", parseSink.All())

	decl := findModal(t, file, "Connection")

	s := diag.NewSink()
	modal.CheckTransitions(s, decl)
	require.True(t, s.HasErrors())
	require.Equal(t, diag.ETypMismatch, s.All()[0].Code)
}

func TestAnalyzeFileBuildsPlansAndFrames(t *testing.T) {
	file, tb, sink := parseAndResolve(t, connectionSrc)
	require.False(t, sink.HasErrors())

	s := diag.NewSink()
	res := modal.AnalyzeFile(tb, s, file)
	require.False(t, s.HasErrors(), "unexpected diagnostics: %v", s.All())
	require.Contains(t, res.Plans, "Connection")
	require.Equal(t, modal.Tagged, res.Plans["Connection"].Kind)
}

func TestSynthesizeFrameCollectsLocalsAndSuspends(t *testing.T) {
	src := `procedure producer() -> Async<i32, i32, i32, i32> {
  let a = 1
  yield a
  let b = 2
  yield b
  result b
}
`
	file, _, sink := parseAndResolve(t, src)
	require.False(t, sink.HasErrors(), "unexpected parse/resolve errors: %v", sink.All())

	var proc *ast.ProcedureItem
	for _, item := range file.Items {
		if p, ok := item.(*ast.ProcedureItem); ok {
			proc = p
		}
	}
	require.NotNil(t, proc)

	frame := modal.SynthesizeFrame(proc)
	require.Contains(t, frame.Locals, "a")
	require.Contains(t, frame.Locals, "b")
	require.Len(t, frame.Suspends, 2)
}

func TestCheckKeyAcrossYieldRejectsBareYield(t *testing.T) {
	src := `procedure bad() -> Async<i32, i32, i32, i32> {
  #lock {
    yield 1
  }
}
`
	file, _, sink := parseAndResolve(t, src)
	require.False(t, sink.HasErrors(), "unexpected parse/resolve errors: %v", sink.All())

	var proc *ast.ProcedureItem
	for _, item := range file.Items {
		if p, ok := item.(*ast.ProcedureItem); ok {
			proc = p
		}
	}
	require.NotNil(t, proc)

	s := diag.NewSink()
	modal.CheckKeyAcrossYield(s, proc)
	require.True(t, s.HasErrors())
	require.Equal(t, diag.EConKeyAcrossYield, s.All()[0].Code)
}

func TestCheckKeyAcrossYieldAllowsReleasingYield(t *testing.T) {
	src := `procedure ok() -> Async<i32, i32, i32, i32> {
  #lock {
    yield release 1
  }
}
`
	file, _, sink := parseAndResolve(t, src)
	require.False(t, sink.HasErrors(), "unexpected parse/resolve errors: %v", sink.All())

	var proc *ast.ProcedureItem
	for _, item := range file.Items {
		if p, ok := item.(*ast.ProcedureItem); ok {
			proc = p
		}
	}
	require.NotNil(t, proc)

	s := diag.NewSink()
	modal.CheckKeyAcrossYield(s, proc)
	require.False(t, s.HasErrors(), "unexpected diagnostics: %v", s.All())
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/config"
)

func TestRunSimpleProcedureLowers(t *testing.T) {
	src := "procedure sign(n: i32) -> i32 {\n  if n < 0 { -1 } else { 1 }\n}\n"
	res := Run(config.Default(), Source{Code: src, Filename: "test://unit"})

	require.False(t, res.Sink.HasErrors(), "unexpected diagnostics: %v", res.Sink.All())
	require.NotNil(t, res.Artifacts.File)
	require.NotNil(t, res.Artifacts.Resolved)
	require.NotNil(t, res.Artifacts.Types)
	require.Contains(t, res.Artifacts.Lowered, "sign")
}

func TestRunReportsPhaseTimings(t *testing.T) {
	src := "procedure f() -> i32 {\n  result 0\n}\n"
	res := Run(config.Default(), Source{Code: src, Filename: "test://unit"})

	for _, phase := range []string{"lex+parse", "resolve", "check", "region", "modal", "lower"} {
		if _, ok := res.PhaseTimings[phase]; !ok {
			t.Errorf("missing phase timing for %q", phase)
		}
	}
}

func TestRunStopsAfterParseErrors(t *testing.T) {
	res := Run(config.Default(), Source{Code: "procedure {{{", Filename: "test://unit"})
	require.True(t, res.Sink.HasErrors())
	require.Nil(t, res.Artifacts.Lowered, "lowering must not run over an AST that failed to parse")
}

func TestRunHonorsConfiguredAllowList(t *testing.T) {
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
	cfg := config.Default()
	cfg.Allow = []string{"W-WIDEN"}
	res := Run(cfg, Source{Code: src, Filename: "test://unit"})
	for _, d := range res.Sink.All() {
		require.NotEqual(t, "W-WIDEN", string(d.Code), "an allowed code must not be reported")
	}
}

func TestRunClassMethodLowersWithQualifiedSymbol(t *testing.T) {
	src := `class Counter {
  procedure bump(~!) -> i32 {
    result 0
  }
}
`
	res := Run(config.Default(), Source{Code: src, Filename: "test://unit"})
	require.False(t, res.Sink.HasErrors(), "unexpected diagnostics: %v", res.Sink.All())
	require.Contains(t, res.Artifacts.Lowered, "Counter::bump")
}

func TestRunMonomorphizationDepthConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.MonomorphizationDepth = 1
	src := "procedure f() -> i32 {\n  result 0\n}\n"
	res := Run(cfg, Source{Code: src, Filename: "test://unit"})
	require.NotNil(t, res.Artifacts.Generics, "the generics engine must still run even at a reduced depth")
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/config"
	"github.com/cursive-lang/cursive0/internal/ir"
)

func lowerOne(t *testing.T, src, name string) string {
	t.Helper()
	res := Run(config.Default(), Source{Code: src, Filename: "test://unit"})
	require.False(t, res.Sink.HasErrors(), "unexpected diagnostics: %v", res.Sink.All())
	proc, ok := res.Artifacts.Lowered[name]
	require.True(t, ok, "no lowered procedure named %q", name)
	return ir.Sprint(proc.Body)
}

func TestLowerProcedurePrologueInitializesPanicHandle(t *testing.T) {
	src := "procedure f() -> i32 {\n  result 0\n}\n"
	out := lowerOne(t, src, "f")
	require.Contains(t, out, "InitPanicHandle")
}

func TestLowerDivisionIsCheckedOp(t *testing.T) {
	src := "procedure f(a: i32, b: i32) -> i32 {\n  result a / b\n}\n"
	out := lowerOne(t, src, "f")
	require.Contains(t, out, "CheckOp")
	require.Contains(t, out, "op: /")
	require.NotContains(t, out, "BinaryOp")
}

func TestLowerAdditionStaysPlainBinaryOp(t *testing.T) {
	src := "procedure f(a: i32, b: i32) -> i32 {\n  result a + b\n}\n"
	out := lowerOne(t, src, "f")
	require.Contains(t, out, "BinaryOp")
	require.Contains(t, out, "op: +")
}

func TestLowerShiftIsCheckedOp(t *testing.T) {
	src := "procedure f(a: i32, b: u32) -> i32 {\n  result a << b\n}\n"
	out := lowerOne(t, src, "f")
	require.Contains(t, out, "CheckOp")
	require.Contains(t, out, "op: <<")
}

func TestLowerCastLowersToCheckCast(t *testing.T) {
	src := "procedure f(a: i32) -> i64 {\n  result a as i64\n}\n"
	out := lowerOne(t, src, "f")
	require.Contains(t, out, "CheckCast")
}

func TestLowerDerefLowersToCheckedDeref(t *testing.T) {
	src := "procedure f(p: Ptr<i32>) -> i32 {\n  result *p\n}\n"
	out := lowerOne(t, src, "f")
	require.Contains(t, out, "CheckOp")
	require.Contains(t, out, "op: deref")
}

func TestLowerCallGetsTrailingPanicCheck(t *testing.T) {
	src := "procedure g() -> i32 {\n  result 0\n}\nprocedure f() -> i32 {\n  result g()\n}\n"
	out := lowerOne(t, src, "f")
	require.Contains(t, out, "PanicCheck")
}

func TestLowerPropagateDoesNotDoubleWrapACall(t *testing.T) {
	src := "record Bad { code: i32 }\nprocedure g() -> i32 | Bad {\n  result 0\n}\nprocedure f() -> i32 | Bad {\n  result g()?\n}\n"
	out := lowerOne(t, src, "f")
	require.Equal(t, 1, countOccurrences(out, "PanicCheck"))
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}

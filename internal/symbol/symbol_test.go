package symbol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/types"
)

func TestMangleDeterministic(t *testing.T) {
	a := Mangle([]string{"collections"}, "List", nil)
	b := Mangle([]string{"collections"}, "List", nil)
	require.Equal(t, a, b, "mangling the same path/name must be deterministic")
}

func TestMangleDistinguishesPaths(t *testing.T) {
	a := Mangle([]string{"collections"}, "List", nil)
	b := Mangle([]string{"net"}, "List", nil)
	require.NotEqual(t, a, b)
}

func TestMangleEncodesLengthPrefixedSegments(t *testing.T) {
	name := Mangle(nil, "main", nil)
	require.True(t, strings.HasPrefix(name, "_CV0"))
	require.Contains(t, name, "4main")
}

func TestMangleWithGenericArgs(t *testing.T) {
	tb := types.NewTable(nil)
	i32 := tb.Primitive("i32")
	bogus := tb.Primitive("bool")

	withI32 := Mangle([]string{"collections"}, "List", []types.Type{i32})
	withBool := Mangle([]string{"collections"}, "List", []types.Type{bogus})
	unparam := Mangle([]string{"collections"}, "List", nil)

	require.NotEqual(t, withI32, withBool, "distinct instantiations must mangle differently")
	require.NotEqual(t, withI32, unparam, "an instantiated generic must not collide with its unparameterized form")
}

func TestMangleLongArgListHashes(t *testing.T) {
	tb := types.NewTable(nil)
	args := make([]types.Type, 0, 32)
	for i := 0; i < 32; i++ {
		args = append(args, tb.Named("some.very.long.module.path.TypeName", nil))
	}
	got := Mangle(nil, "Pair", args)
	require.Contains(t, got, "H", "a large encoded argument list must fall back to a content hash")
}

func TestMangleModalTransition(t *testing.T) {
	a := MangleModalTransition([]string{"net"}, "Connection", "Open", "close")
	b := MangleModalTransition([]string{"net"}, "Connection", "Closed", "close")
	require.NotEqual(t, a, b, "transitions from distinct states must mangle differently")
}

func TestMangleMethod(t *testing.T) {
	a := MangleMethod([]string{"collections"}, "List", "push")
	b := MangleMethod([]string{"collections"}, "List", "pop")
	require.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "_CV0"))
}

func TestMangleTypeConstructors(t *testing.T) {
	tb := types.NewTable(nil)
	i32 := tb.Primitive("i32")
	str := tb.Str(false, "owned")

	cases := []types.Type{
		i32,
		str,
		tb.Ptr(i32, "valid"),
		tb.RawPtr(i32, true),
		tb.Tuple([]types.Type{i32, str}),
		tb.Array(i32, 4),
		tb.Slice(i32),
		tb.Union([]types.Type{i32, str}),
		tb.Func([]types.Type{i32}, str),
		tb.Named("net.Connection", nil),
		tb.ModalState("net.Connection", nil, "Open"),
		tb.Perm(types.PermUnique, i32),
		tb.Opaque("net.Handle"),
		tb.Dyn("io.Reader"),
		tb.Async(i32, str, i32, str),
		tb.TypeVar("T"),
	}

	seen := make(map[string]types.Type, len(cases))
	for _, c := range cases {
		m := Mangle(nil, "f", []types.Type{c})
		if prior, ok := seen[m]; ok && prior != c {
			t.Fatalf("distinct type constructors mangled to the same symbol: %q", m)
		}
		seen[m] = c
	}
}

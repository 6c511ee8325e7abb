package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/source"
)

func tableFor(t *testing.T, src string) (*Table, *ast.File) {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	sink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, sink)
	require.False(t, sink.HasErrors(), "unexpected parse errors: %v", sink.All())
	res := resolve.Resolve([]*ast.File{file}, sink)
	require.False(t, sink.HasErrors(), "unexpected resolve errors: %v", sink.All())
	return NewTable(res.Sigma), file
}

func TestInterningIsStructural(t *testing.T) {
	tb := NewTable(nil)
	a := tb.Tuple([]Type{tb.Primitive("i32"), tb.Primitive("bool")})
	b := tb.Tuple([]Type{tb.Primitive("i32"), tb.Primitive("bool")})
	require.True(t, a == b, "structurally identical types must intern to the same value")
}

func TestUnionNormalization(t *testing.T) {
	tb := NewTable(nil)
	i32 := tb.Primitive("i32")
	str := tb.Str(false, "")
	ab := tb.Union([]Type{i32, str})
	ba := tb.Union([]Type{str, i32, i32})
	require.True(t, ab == ba, "union member order and duplicates must not affect interning")
}

func TestUnionSingletonCollapses(t *testing.T) {
	tb := NewTable(nil)
	i32 := tb.Primitive("i32")
	require.True(t, tb.Union([]Type{i32}) == i32)
}

func TestSubtypeBottom(t *testing.T) {
	tb := NewTable(nil)
	bang := tb.Primitive("!")
	i32 := tb.Primitive("i32")
	require.True(t, Subtype(tb, nil, bang, i32))
	require.False(t, Subtype(tb, nil, i32, bang))
}

func TestSubtypePermissionLattice(t *testing.T) {
	tb := NewTable(nil)
	i32 := tb.Primitive("i32")
	unique := tb.Perm(PermUnique, i32)
	shared := tb.Perm(PermShared, i32)
	constT := tb.Perm(PermConst, i32)
	require.True(t, Subtype(tb, nil, unique, shared))
	require.True(t, Subtype(tb, nil, unique, constT))
	require.True(t, Subtype(tb, nil, shared, constT))
	require.False(t, Subtype(tb, nil, constT, shared))
	require.False(t, Subtype(tb, nil, shared, unique))
}

func TestSubtypeFuncContravariantParams(t *testing.T) {
	tb := NewTable(nil)
	i32 := tb.Primitive("i32")
	numeric := tb.Union([]Type{tb.Primitive("i32"), tb.Primitive("i64")})
	narrow := tb.Func([]Type{numeric}, i32) // accepts more
	wide := tb.Func([]Type{i32}, i32)       // accepts less
	require.True(t, Subtype(tb, nil, narrow, wide), "a function accepting a wider parameter type is a subtype")
	require.False(t, Subtype(tb, nil, wide, narrow))
}

func TestSubtypeUnionRules(t *testing.T) {
	tb := NewTable(nil)
	i32 := tb.Primitive("i32")
	f64 := tb.Primitive("f64")
	u := tb.Union([]Type{i32, f64})
	require.True(t, Subtype(tb, nil, i32, u))
	require.False(t, Subtype(tb, nil, tb.Primitive("bool"), u))
}

func TestSubtypePtrStateDropRule(t *testing.T) {
	tb := NewTable(nil)
	i32 := tb.Primitive("i32")
	bare := tb.Ptr(i32, "")
	valid := tb.Ptr(i32, "Valid")
	null := tb.Ptr(i32, "Null")
	expired := tb.Ptr(i32, "Expired")

	require.True(t, Subtype(tb, nil, valid, bare), "Ptr<T>@Valid must widen to bare Ptr<T>")
	require.True(t, Subtype(tb, nil, null, bare), "Ptr<T>@Null must widen to bare Ptr<T>")
	require.False(t, Subtype(tb, nil, expired, bare), "Ptr<T>@Expired must never widen to bare Ptr<T>")
	require.False(t, Subtype(tb, nil, bare, valid), "a bare Ptr<T> must not narrow to a specific state")
}

func TestRecordLayoutSequential(t *testing.T) {
	tb, _ := tableFor(t, "record Point { x: i32, y: i32 }\n")
	point := tb.Named("Point", nil)
	l, ok := tb.LayoutOf(point)
	require.True(t, ok)
	require.Equal(t, uint64(8), l.Size)
	require.Equal(t, uint64(4), l.Align)
}

func TestEnumLayoutTagged(t *testing.T) {
	tb, _ := tableFor(t, "enum Color { Red, Green, Blue }\n")
	color := tb.Named("Color", nil)
	l, ok := tb.LayoutOf(color)
	require.True(t, ok)
	require.Equal(t, "u8", l.DiscType)
	require.Nil(t, l.Niche)
}

func TestEnumLayoutNiche(t *testing.T) {
	tb, _ := tableFor(t, "enum Maybe { None, Some(Ptr<i32>) }\n")
	maybe := tb.Named("Maybe", nil)
	l, ok := tb.LayoutOf(maybe)
	require.True(t, ok)
	require.NotNil(t, l.Niche, "a pointer payload variant paired with one empty variant should fold the tag away")
	require.Equal(t, wordSize, int(l.Size))
}

func TestAliasLayoutFollowsTarget(t *testing.T) {
	tb, _ := tableFor(t, "record Point { x: i32, y: i32 }\ntype Coord = Point\n")
	coord := tb.Named("Coord", nil)
	l, ok := tb.LayoutOf(coord)
	require.True(t, ok)
	require.Equal(t, uint64(8), l.Size)
}

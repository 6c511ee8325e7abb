package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosAtFirstLine(t *testing.T) {
	f := NewFile("test://unit", []byte("abc\ndef\n"))
	pos := f.PosAt(2)
	require.Equal(t, 1, pos.Line)
	require.Equal(t, 3, pos.Column)
}

func TestPosAtSecondLine(t *testing.T) {
	f := NewFile("test://unit", []byte("abc\ndef\n"))
	pos := f.PosAt(5)
	require.Equal(t, 2, pos.Line)
	require.Equal(t, 2, pos.Column)
}

func TestPosAtClampsOutOfRange(t *testing.T) {
	f := NewFile("test://unit", []byte("abc"))
	require.Equal(t, f.PosAt(100), f.PosAt(3))
	require.Equal(t, f.PosAt(0), f.PosAt(-5))
}

func TestPosAtWideRunes(t *testing.T) {
	// U+4E2D is a full-width CJK character; it should advance the column by 2.
	f := NewFile("test://unit", []byte("中x"))
	pos := f.PosAt(len("中"))
	require.Equal(t, 3, pos.Column)
}

func TestSpanStringSameLine(t *testing.T) {
	f := NewFile("test://unit", []byte("let x = 1"))
	sp := f.Span(0, 3)
	require.Equal(t, "test://unit:1:1-4", sp.String())
}

func TestSpanStringMultiLine(t *testing.T) {
	f := NewFile("test://unit", []byte("abc\ndef"))
	sp := f.Span(1, 5)
	require.Equal(t, "test://unit:1:2-2:2", sp.String())
}

func TestBetweenWidensSpan(t *testing.T) {
	f := NewFile("test://unit", []byte("abcdefgh"))
	a := f.Span(2, 4)
	b := f.Span(5, 7)
	got := Between(a, b)
	require.Equal(t, a.Start, got.Start)
	require.Equal(t, b.End, got.End)
}

func TestBetweenOutOfOrderArgs(t *testing.T) {
	f := NewFile("test://unit", []byte("abcdefgh"))
	a := f.Span(5, 7)
	b := f.Span(2, 4)
	got := Between(a, b)
	require.Equal(t, b.Start, got.Start)
	require.Equal(t, a.End, got.End)
}

func TestTextAndLine(t *testing.T) {
	f := NewFile("test://unit", []byte("let x = 1\nlet y = 2\n"))
	sp := f.Span(0, 9)
	require.Equal(t, "let x = 1", f.Text(sp))
	require.Equal(t, "let x = 1", f.Line(1))
	require.Equal(t, "let y = 2", f.Line(2))
	require.Equal(t, "", f.Line(99))
}

package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/source"
)

func tokenize(t *testing.T, src string) ([]Token, []DocComment, []source.Span) {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	return Tokenize(f)
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeEndsInEof(t *testing.T) {
	toks, _, _ := tokenize(t, "x")
	require.Equal(t, Eof, toks[len(toks)-1].Kind)
}

func TestTokenizeIdentifierAndKeyword(t *testing.T) {
	toks, _, _ := tokenize(t, "let x")
	require.Equal(t, []Kind{Keyword, Identifier, Eof}, kinds(toks))
	require.Equal(t, "let", toks[0].Literal)
	require.Equal(t, "x", toks[1].Literal)
}

func TestTokenizeBoolAndNullAreNotKeywords(t *testing.T) {
	toks, _, _ := tokenize(t, "true false null")
	require.Equal(t, []Kind{BoolLiteral, BoolLiteral, NullLiteral, Eof}, kinds(toks))
}

func TestTokenizeIntAndFloatLiterals(t *testing.T) {
	toks, _, _ := tokenize(t, "10 1.5 2e10 4usize")
	require.Equal(t, []Kind{IntLiteral, FloatLiteral, FloatLiteral, IntLiteral, Eof}, kinds(toks))
	require.Equal(t, "4usize", toks[3].Literal)
}

func TestTokenizeStringAndCharLiterals(t *testing.T) {
	toks, _, _ := tokenize(t, `"hi\"" 'a'`)
	require.Equal(t, []Kind{StringLiteral, CharLiteral, Eof}, kinds(toks))
	require.Equal(t, `"hi\""`, toks[0].Literal)
	require.Equal(t, `'a'`, toks[1].Literal)
}

func TestTokenizeMultiByteOperatorsPreferLongestMatch(t *testing.T) {
	toks, _, _ := tokenize(t, "a <<= b ..= c")
	ops := []string{}
	for _, tok := range toks {
		if tok.Kind == Operator {
			ops = append(ops, tok.Literal)
		}
	}
	require.Equal(t, []string{"<<=", "..="}, ops)
}

func TestTokenizeNewlineIsSignificant(t *testing.T) {
	toks, _, _ := tokenize(t, "a\nb")
	require.Equal(t, []Kind{Identifier, Newline, Identifier, Eof}, kinds(toks))
}

func TestTokenizeLineCommentDropped(t *testing.T) {
	toks, docs, _ := tokenize(t, "x // a plain comment\ny")
	require.Equal(t, []Kind{Identifier, Newline, Identifier, Eof}, kinds(toks))
	require.Empty(t, docs)
}

func TestTokenizeDocComments(t *testing.T) {
	_, docs, _ := tokenize(t, "/// a line doc\n//! a module doc\n")
	require.Len(t, docs, 2)
	require.Equal(t, DocLine, docs[0].Kind)
	require.Equal(t, "a line doc", docs[0].Text)
	require.Equal(t, DocModule, docs[1].Kind)
	require.Equal(t, "a module doc", docs[1].Text)
}

func TestTokenizeUnsafeSpanDetection(t *testing.T) {
	_, _, unsafeSpans := tokenize(t, "unsafe { let x = 1 }")
	require.Len(t, unsafeSpans, 1)
	require.Equal(t, 0, unsafeSpans[0].Start.Offset)
}

func TestTokenizeUnsafeSpanIgnoresBracesInStrings(t *testing.T) {
	_, _, unsafeSpans := tokenize(t, `unsafe { let s = "}" }`)
	require.Len(t, unsafeSpans, 1)
}

func TestTokenizePunctuatorsVsOperators(t *testing.T) {
	toks, _, _ := tokenize(t, "(a, b)")
	require.Equal(t, Punctuator, toks[0].Kind)
	require.Equal(t, Punctuator, toks[2].Kind)
	require.Equal(t, Punctuator, toks[4].Kind)
}

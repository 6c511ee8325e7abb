// Package lexer reproduces, minimally, the token/doc-comment/unsafe-span
// contract that spec.md §6 assigns to an external collaborator. The real
// Cursive0 toolchain's lexer lives elsewhere; this package exists only so
// the parser and everything downstream of it can be driven end-to-end in
// this repository's own tests.
package lexer

import "github.com/cursive-lang/cursive0/internal/source"

// Kind is a token category, matching spec.md §6's external contract.
type Kind int

const (
	Identifier Kind = iota
	Keyword
	Operator
	Punctuator
	IntLiteral
	FloatLiteral
	StringLiteral
	CharLiteral
	BoolLiteral
	NullLiteral
	Newline
	Unknown
	Eof
)

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Operator:
		return "operator"
	case Punctuator:
		return "punctuator"
	case IntLiteral:
		return "int-literal"
	case FloatLiteral:
		return "float-literal"
	case StringLiteral:
		return "string-literal"
	case CharLiteral:
		return "char-literal"
	case BoolLiteral:
		return "bool-literal"
	case NullLiteral:
		return "null-literal"
	case Newline:
		return "newline"
	case Unknown:
		return "unknown"
	case Eof:
		return "eof"
	default:
		return "?"
	}
}

// Token is one lexical unit.
type Token struct {
	Kind    Kind
	Literal string
	Span    source.Span
}

// DocKind distinguishes a `///` line doc from a `//!` module doc.
type DocKind int

const (
	DocLine DocKind = iota
	DocModule
)

// DocComment is one doc comment, kept verbatim (no reflowing); only its
// attachment to an item is this front-end's job (spec.md §4.1).
type DocComment struct {
	Kind DocKind
	Text string
	Span source.Span
}

// Keywords recognized by the surface grammar (spec.md §3.2/§4.1).
var Keywords = map[string]bool{
	"import": true, "using": true, "static": true, "let": true, "var": true,
	"procedure": true, "record": true, "enum": true, "modal": true,
	"class": true, "type": true, "where": true, "if": true, "else": true,
	"match": true, "for": true, "while": true, "loop": true, "in": true,
	"return": true, "result": true, "break": true, "continue": true,
	"unsafe": true, "defer": true, "region": true, "frame": true, "as": true,
	"move": true, "transmute": true, "sizeof": true, "alignof": true,
	"yield": true, "release": true, "sync": true, "race": true, "all": true,
	"parallel": true, "spawn": true, "wait": true, "dispatch": true,
	"opaque": true, "dyn": true, "true": true, "false": true, "null": true,
	"pub": true, "private": true, "internal": true, "protected": true,
	"public": true, "extern": true, "const": true, "unique": true, "shared": true,
	"reduce": true, "ordered": true, "chunk": true, "widen": true, "from": true,
	"shadow": true, "pure": true,
}

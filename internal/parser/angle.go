package parser

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/lexer"
)

// angleDelta returns the bracket-depth contribution of tok when
// scanning a speculative generic-args list.
func angleDelta(tok lexer.Token) int {
	if tok.Kind != lexer.Operator {
		return 0
	}
	switch tok.Literal {
	case "<":
		return 1
	case ">":
		return -1
	case ">>":
		return -2
	}
	return 0
}

// angleScan speculatively walks forward from `<` looking for the
// matching top-level `>` (spec.md §4.1). A `>>` counts as two closers
// and is not split here; the committed parse splits it on demand. It
// returns the index just past the token that closes the list, or -1 if
// the angle run never balances before a token that cannot appear
// inside a generic-args list (a Newline, or EOF), or if the list would
// close on the first half of a `>>`.
func (p *Parser) angleScan() int {
	depth := 0
	i := p.pos
	for i < len(p.toks) {
		t := p.toks[i]
		if t.Kind == lexer.Newline || t.Kind == lexer.Eof {
			return -1
		}
		depth += angleDelta(t)
		i++
		if depth == 0 {
			return i
		}
		if depth < 0 {
			return -1
		}
	}
	return -1
}

// splitShiftRAt splits the `>>` operator token at index i into two `>`
// tokens in place.
func (p *Parser) splitShiftRAt(i int) {
	t := p.toks[i]
	mid := t.Span.Start.Offset + 1
	left := lexer.Token{Kind: lexer.Operator, Literal: ">", Span: p.file.Span(t.Span.Start.Offset, mid)}
	right := lexer.Token{Kind: lexer.Operator, Literal: ">", Span: p.file.Span(mid, t.Span.End.Offset)}
	updated := make([]lexer.Token, 0, len(p.toks)+1)
	updated = append(updated, p.toks[:i]...)
	updated = append(updated, left, right)
	updated = append(updated, p.toks[i+1:]...)
	p.toks = updated
}

// splitShiftR splits the `>>` token at the cursor, if any, into two
// `>` tokens — used when a caller already knows it is positioned on a
// closing angle that needs splitting (e.g. after parseGenericParams'
// list loop).
func (p *Parser) splitShiftR() {
	if p.cur().Kind == lexer.Operator && p.cur().Literal == ">>" {
		p.splitShiftRAt(p.pos)
	}
}

// tryGenericArgsType speculatively parses `<T, ...>` as generic type
// arguments. It commits only if the matching top-level `>` is
// immediately followed by `(`, `{`, or `::` (spec.md §4.1's call-
// position heuristic: avoids misreading `a < b` as generic args).
// On failure the cursor is restored and no diagnostic is emitted.
func (p *Parser) tryGenericArgsType() ([]ast.TypeExpr, bool) {
	if !p.isOp("<") {
		return nil, false
	}
	saved := p.pos
	closeIdx := p.angleScan()
	if closeIdx < 0 {
		p.pos = saved
		return nil, false
	}
	after := closeIdx
	if after >= len(p.toks) {
		p.pos = saved
		return nil, false
	}
	followTok := p.toks[after]
	follows := (followTok.Kind == lexer.Punctuator && (followTok.Literal == "(" || followTok.Literal == "{")) ||
		(followTok.Kind == lexer.Operator && followTok.Literal == "::")
	if !follows {
		p.pos = saved
		return nil, false
	}
	// Commit: actually parse the args for real using the real parser
	// state (now that we know the shape is right).
	p.advance() // consume "<"
	var args []ast.TypeExpr
	for !p.isOp(">") {
		p.skipNewlines()
		args = append(args, p.parseType())
		p.skipNewlines()
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	p.splitShiftR()
	p.expectOp(">")
	return args, true
}

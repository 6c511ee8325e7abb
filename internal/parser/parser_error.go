package parser

import "github.com/cursive-lang/cursive0/internal/lexer"

// topLevelKeywords names the keywords syncItem treats as a plausible
// re-entry point (spec.md §4.1).
var topLevelKeywords = map[string]bool{
	"import": true, "using": true, "static": true, "procedure": true,
	"record": true, "enum": true, "modal": true, "class": true, "type": true,
}

var stmtStartKeywords = map[string]bool{
	"let": true, "var": true, "return": true, "result": true, "break": true,
	"continue": true, "unsafe": true, "defer": true, "region": true,
	"frame": true, "if": true, "match": true, "while": true, "for": true, "loop": true,
}

// syncItem consumes tokens until a top-level keyword, `}` at depth 0,
// or EOF — the item-level recovery point.
func (p *Parser) syncItem() {
	depth := 0
	for !p.atEOF() {
		if depth == 0 && p.cur().Kind == lexer.Keyword && topLevelKeywords[p.cur().Literal] {
			return
		}
		switch {
		case p.isOp("{") || p.isOp("(") || p.isOp("["):
			depth++
		case p.isOp("}") || p.isOp(")") || p.isOp("]"):
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

// syncStmt consumes tokens until a statement terminator, a statement-
// start keyword, or a closing `}` at depth 0.
func (p *Parser) syncStmt() {
	depth := 0
	for !p.atEOF() {
		if depth == 0 {
			if p.cur().Kind == lexer.Newline || p.isOp(";") {
				p.advance()
				return
			}
			if p.isOp("}") {
				return
			}
			if p.cur().Kind == lexer.Keyword && stmtStartKeywords[p.cur().Literal] {
				return
			}
		}
		switch {
		case p.isOp("{") || p.isOp("(") || p.isOp("["):
			depth++
		case p.isOp("}") || p.isOp(")") || p.isOp("]"):
			if depth == 0 {
				p.advance()
				continue
			}
			depth--
		}
		p.advance()
	}
}

// syncType consumes tokens until a plausible type-position re-entry:
// a statement terminator, `=`, `,`, or a closing delimiter at depth 0.
func (p *Parser) syncType() {
	depth := 0
	for !p.atEOF() {
		if depth == 0 && (p.cur().Kind == lexer.Newline || p.isOp(",") || p.isOp("=") || p.isOp(")") || p.isOp("}") || p.isOp(";")) {
			return
		}
		switch {
		case p.isOp("<") || p.isOp("(") || p.isOp("[") || p.isOp("{"):
			depth++
		case p.isOp(">") || p.isOp(")") || p.isOp("]") || p.isOp("}"):
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

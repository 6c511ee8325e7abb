package parser

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/source"
)

var compoundAssignOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
}

// parseStmtOrTail parses one block-body statement. The second return
// value is true when the statement is an unterminated expression
// followed by the block's closing `}` (directly, or after one line
// break) — its ExprStmt.X is the block's tail value (spec.md §3.2, §4.1).
func (p *Parser) parseStmtOrTail() (ast.Stmt, bool) {
	switch {
	case p.isKeyword("let") || p.isKeyword("var"):
		return p.parseLetStmt(), false
	case p.isKeyword("shadow"):
		return p.parseLetStmt(), false
	case p.isKeyword("return"):
		return p.parseReturnStmt(), false
	case p.isKeyword("result"):
		return p.parseResultStmt(), false
	case p.isKeyword("break"):
		return p.parseBreakStmt(), false
	case p.isKeyword("continue"):
		return p.parseContinueStmt(), false
	case p.isKeyword("defer"):
		return p.parseDeferStmt(), false
	case p.isKeyword("region"):
		return p.parseRegionStmt(), false
	case p.isKeyword("frame"):
		return p.parseFrameStmt(), false
	case p.isKeyword("unsafe") && p.peekAt(1).Literal == "{":
		return p.parseUnsafeStmt(), false
	case p.cur().Kind == lexer.Identifier && p.peekAt(1).Kind == lexer.Punctuator && p.peekAt(1).Literal == ":" &&
		(p.peekAt(2).Literal == "while" || p.peekAt(2).Literal == "for" || p.peekAt(2).Literal == "loop"):
		return p.parseLabeledLoopStmt(), false
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.cur().Span
	shadow := false
	if p.isKeyword("shadow") {
		shadow = true
		p.advance()
	}
	mutable := p.isKeyword("var")
	p.advance() // "let" | "var"
	name, _, _ := p.expectIdent()
	var t ast.TypeExpr
	if p.isOp(":") {
		p.advance()
		t = p.parseType()
	}
	var val ast.Expr
	if _, ok := p.expectOp("="); ok {
		val = p.parseExpr(PrecLowest, true)
	}
	stmt := &ast.LetStmt{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Mutable: mutable, Shadow: shadow, Name: name, Type: t, Value: val}
	p.terminator()
	return stmt
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // "return"
	var val ast.Expr
	if !p.atStmtEnd() {
		val = p.parseExpr(PrecLowest, true)
	}
	stmt := &ast.ReturnStmt{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Value: val}
	p.terminator()
	return stmt
}

func (p *Parser) parseResultStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // "result"
	val := p.parseExpr(PrecLowest, true)
	stmt := &ast.ResultStmt{Base: ast.Base{Sp: source.Between(start, val.Span())}, Value: val}
	p.terminator()
	return stmt
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // "break"
	var val ast.Expr
	if !p.atStmtEnd() {
		val = p.parseExpr(PrecLowest, true)
	}
	stmt := &ast.BreakStmt{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Value: val}
	p.terminator()
	return stmt
}

func (p *Parser) parseContinueStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // "continue"
	label := ""
	stmt := &ast.ContinueStmt{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Label: label}
	p.terminator()
	return stmt
}

func (p *Parser) parseDeferStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // "defer"
	val := p.parseExpr(PrecLowest, true)
	stmt := &ast.DeferStmt{Base: ast.Base{Sp: source.Between(start, val.Span())}, X: val}
	p.terminator()
	return stmt
}

func (p *Parser) parseRegionStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // "region"
	init := p.parseExpr(PrecLowest, false)
	alias := ""
	// The expression parser reads `as R` as a cast; a cast to a bare
	// single-segment name is taken apart into the init and the alias.
	if cast, ok := init.(*ast.CastExpr); ok {
		if pt, ok := cast.Type.(*ast.PathType); ok && len(pt.Segments) == 1 && len(pt.Args) == 0 {
			init, alias = cast.Value, pt.Segments[0]
		}
	}
	if p.isKeyword("as") {
		p.advance()
		alias, _, _ = p.expectIdent()
	}
	body := p.parseBlock()
	return &ast.RegionStmt{Base: ast.Base{Sp: source.Between(start, body.Span())}, Alias: alias, Init: init, Body: body}
}

func (p *Parser) parseFrameStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // "frame"
	alias, _, _ := p.expectIdent()
	body := p.parseBlock()
	return &ast.FrameStmt{Base: ast.Base{Sp: source.Between(start, body.Span())}, RegionAlias: alias, Body: body}
}

func (p *Parser) parseUnsafeStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // "unsafe"
	body := p.parseBlock()
	return &ast.UnsafeBlockStmt{Base: ast.Base{Sp: source.Between(start, body.Span())}, Body: body}
}

func (p *Parser) parseLabeledLoopStmt() ast.Stmt {
	label, _, _ := p.expectIdent()
	p.expectOp(":")
	var loop ast.Expr
	switch {
	case p.isKeyword("while"):
		loop = p.parseWhileLoop(label)
	case p.isKeyword("for"):
		loop = p.parseForLoop(label)
	case p.isKeyword("loop"):
		loop = p.parseLoopExpr(label)
	}
	return &ast.ExprStmt{Base: ast.Base{Sp: loop.Span()}, X: loop}
}

// parseExprOrAssignStmt parses an expression at statement head, then
// resolves it to an assignment, a compound assignment, a plain
// expression statement, or (if followed by the block's closing `}`,
// directly or after one line break) the block's tail value.
func (p *Parser) parseExprOrAssignStmt() (ast.Stmt, bool) {
	start := p.cur().Span
	e := p.parseExpr(PrecLowest, true)
	if p.isOp("=") {
		p.advance()
		val := p.parseExpr(PrecLowest, true)
		stmt := &ast.AssignStmt{Base: ast.Base{Sp: source.Between(start, val.Span())}, Target: e, Value: val}
		p.terminator()
		return stmt, false
	}
	if op, ok := compoundAssignOps[p.cur().Literal]; ok && p.cur().Kind == lexer.Operator {
		p.advance()
		val := p.parseExpr(PrecLowest, true)
		stmt := &ast.CompoundAssignStmt{Base: ast.Base{Sp: source.Between(start, val.Span())}, Op: op, Target: e, Value: val}
		p.terminator()
		return stmt, false
	}
	if p.isOp("}") || (p.cur().Kind == lexer.Newline && p.peekAt(1).Kind == lexer.Punctuator && p.peekAt(1).Literal == "}") {
		return &ast.ExprStmt{Base: ast.Base{Sp: e.Span()}, X: e}, true
	}
	stmt := &ast.ExprStmt{Base: ast.Base{Sp: e.Span()}, X: e}
	p.terminator()
	return stmt, false
}

func (p *Parser) atStmtEnd() bool {
	return p.cur().Kind == lexer.Newline || p.isOp(";") || p.isOp("}") || p.atEOF()
}

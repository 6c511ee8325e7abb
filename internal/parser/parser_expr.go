package parser

import (
	"strconv"
	"strings"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/source"
)

// Precedence levels, loosest to tightest, per spec.md §4.1:
// range > || > && > comparison > | > ^ > & > shift > + - > * / % >
// ** (right-assoc) > as > unary > postfix > primary.
const (
	PrecLowest = iota
	PrecRange
	PrecLogicalOr
	PrecLogicalAnd
	PrecComparison
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecShift
	PrecAdditive
	PrecMultiplicative
	PrecPower
	PrecAs
	PrecUnary
	PrecPostfix
)

var binaryPrec = map[string]int{
	"||": PrecLogicalOr, "&&": PrecLogicalAnd,
	"==": PrecComparison, "!=": PrecComparison, "<": PrecComparison, ">": PrecComparison, "<=": PrecComparison, ">=": PrecComparison,
	"|": PrecBitOr, "^": PrecBitXor, "&": PrecBitAnd,
	"<<": PrecShift, ">>": PrecShift,
	"+": PrecAdditive, "-": PrecAdditive, "++": PrecAdditive,
	"*": PrecMultiplicative, "/": PrecMultiplicative, "%": PrecMultiplicative,
	"**": PrecPower,
}

var rightAssoc = map[string]bool{"**": true}

// parseExpr is the Pratt cascade entry point. allowBrace controls
// whether a following `{` may begin a record/block literal at this
// position — false inside `if cond { ... }`-style condition slots so
// the `{` is read as the body, not a record literal (spec.md §4.1).
// Range is the loosest-binding construct, so it is only considered
// when the caller accepts expressions down to PrecLowest/PrecRange;
// a caller requesting a tighter floor (e.g. PrecUnary for an operand
// slot) goes straight to the binary cascade.
func (p *Parser) parseExpr(minPrec int, allowBrace bool) ast.Expr {
	if minPrec <= PrecRange {
		return p.parseRangeExpr(allowBrace)
	}
	return p.parseBinaryLevel(minPrec, allowBrace)
}

func (p *Parser) parseBinaryLevel(minPrec int, allowBrace bool) ast.Expr {
	left := p.parseCastExpr(allowBrace)
	return p.parseBinaryRHS(left, minPrec, allowBrace)
}

func (p *Parser) parseBinaryRHS(left ast.Expr, minPrec int, allowBrace bool) ast.Expr {
	for {
		op := p.cur().Literal
		prec, ok := binaryPrec[op]
		if !ok || (p.cur().Kind != lexer.Operator) || prec < minPrec {
			return left
		}
		p.advance()
		nextMin := prec + 1
		if rightAssoc[op] {
			nextMin = prec
		}
		right := p.parseBinaryLevel(nextMin, allowBrace)
		left = &ast.BinaryOp{Base: ast.Base{Sp: source.Between(left.Span(), right.Span())}, Op: op, Left: left, Right: right}
	}
}

// parseRangeExpr handles the six range forms, the loosest-binding
// construct in the cascade (spec.md §4.1); its bounds are full
// logical-or-and-tighter expressions.
func (p *Parser) parseRangeExpr(allowBrace bool) ast.Expr {
	start := p.cur().Span
	if kind, ok := p.rangeOpKind(); ok {
		p.advance()
		to := p.parseBinaryLevel(PrecLogicalOr, allowBrace)
		return &ast.RangeExpr{Base: ast.Base{Sp: source.Between(start, to.Span())}, Kind: p.kindFor(kind), To: to}
	}
	first := p.parseBinaryLevel(PrecLogicalOr, allowBrace)
	if kind, ok := p.rangeOpKind(); ok {
		p.advance()
		if p.atRangeEnd() {
			return &ast.RangeExpr{Base: ast.Base{Sp: source.Between(first.Span(), p.prevSpan())}, Kind: p.kindForStartOnly(kind), From: first}
		}
		to := p.parseBinaryLevel(PrecLogicalOr, allowBrace)
		return &ast.RangeExpr{Base: ast.Base{Sp: source.Between(first.Span(), to.Span())}, Kind: p.kindFor(kind), From: first, To: to}
	}
	return first
}

// rangeOpKind recognizes `..`/`..=` without colliding with `.` field
// access (handled in postfix) or `...` (array/slice ellipsis, unused
// in expression position).
func (p *Parser) rangeOpKind() (string, bool) {
	t := p.cur()
	if t.Literal == ".." || t.Literal == "..=" {
		return t.Literal, true
	}
	return "", false
}

func (p *Parser) kindFor(op string) ast.RangeKind {
	if op == "..=" {
		return ast.RangeInclusive
	}
	return ast.RangeExclusive
}

func (p *Parser) kindForStartOnly(op string) ast.RangeKind {
	if op == "..=" {
		return ast.RangeToInclusive // `x..=` is unusual; treated as From-only inclusive is not standard, kept for completeness
	}
	return ast.RangeFrom
}

func (p *Parser) atRangeEnd() bool {
	return p.isOp(")") || p.isOp("]") || p.isOp("}") || p.isOp(",") || p.cur().Kind == lexer.Newline || p.atEOF()
}

func (p *Parser) parseCastExpr(allowBrace bool) ast.Expr {
	e := p.parseUnary(allowBrace)
	for p.isKeyword("as") {
		p.advance()
		t := p.parseType()
		e = &ast.CastExpr{Base: ast.Base{Sp: source.Between(e.Span(), t.Span())}, Value: e, Type: t}
	}
	return e
}

func (p *Parser) parseUnary(allowBrace bool) ast.Expr {
	start := p.cur().Span
	switch {
	case p.isOp("-") || p.isOp("!") || p.isOp("~"):
		op := p.advance().Literal
		operand := p.parseUnary(allowBrace)
		return &ast.UnaryOp{Base: ast.Base{Sp: source.Between(start, operand.Span())}, Op: op, Operand: operand}
	case p.isOp("*"):
		p.advance()
		operand := p.parseUnary(allowBrace)
		return &ast.DerefExpr{Base: ast.Base{Sp: source.Between(start, operand.Span())}, Operand: operand}
	case p.isOp("&"):
		p.advance()
		perm := "const"
		if p.isKeyword("unique") || p.isKeyword("shared") || p.isKeyword("const") {
			perm = p.advance().Literal
		}
		operand := p.parseUnary(allowBrace)
		return &ast.AddrOfExpr{Base: ast.Base{Sp: source.Between(start, operand.Span())}, Operand: operand, Permission: perm}
	case p.isOp("^"):
		p.advance()
		operand := p.parseUnary(allowBrace)
		return &ast.AllocExpr{Base: ast.Base{Sp: source.Between(start, operand.Span())}, Value: operand}
	case p.isKeyword("move"):
		p.advance()
		operand := p.parseUnary(allowBrace)
		return &ast.MoveExpr{Base: ast.Base{Sp: source.Between(start, operand.Span())}, Operand: operand}
	case p.isKeyword("widen"):
		p.advance()
		operand := p.parseUnary(allowBrace)
		return &ast.WidenExpr{Base: ast.Base{Sp: source.Between(start, operand.Span())}, Operand: operand}
	default:
		return p.parsePostfix(p.parsePrimary(allowBrace), allowBrace)
	}
}

func (p *Parser) parsePostfix(e ast.Expr, allowBrace bool) ast.Expr {
	for {
		start := e.Span()
		switch {
		case p.isOp("."):
			p.advance()
			if p.cur().Kind == lexer.IntLiteral {
				idx, _ := strconv.Atoi(p.cur().Literal)
				sp := p.advance().Span
				e = &ast.TupleAccess{Base: ast.Base{Sp: source.Between(start, sp)}, Target: e, Index: idx}
				continue
			}
			name, sp, ok := p.expectIdent()
			if !ok {
				return e
			}
			if p.isOp("(") {
				args := p.parseArgs()
				e = &ast.MethodCallExpr{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Receiver: e, Method: name, Args: args}
				continue
			}
			e = &ast.FieldAccess{Base: ast.Base{Sp: source.Between(start, sp)}, Target: e, Name: name}
		case p.isOp("("):
			args := p.parseArgs()
			e = &ast.CallExpr{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Callee: e, Args: args}
		case p.isOp("["):
			p.advance()
			idx := p.parseExpr(PrecLowest, true)
			end, _ := p.expectOp("]")
			e = &ast.IndexExpr{Base: ast.Base{Sp: source.Between(start, end)}, Target: e, Index: idx}
		case p.isOp("?"):
			sp := p.advance().Span
			e = &ast.PropagateExpr{Base: ast.Base{Sp: source.Between(start, sp)}, Operand: e}
		case allowBrace && p.isOp("{") && isRecordLiteralHead(e):
			e = p.parseRecordLiteralTail(e)
		default:
			return e
		}
	}
}

func isRecordLiteralHead(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.PathExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) exprToType(e ast.Expr) ast.TypeExpr {
	switch v := e.(type) {
	case *ast.Ident:
		return &ast.PathType{Base: ast.Base{Sp: v.Span()}, Segments: []string{v.Name}}
	case *ast.PathExpr:
		return &ast.PathType{Base: ast.Base{Sp: v.Span()}, Segments: v.Segments, Args: v.Generics}
	default:
		return &ast.ErrorType{Base: ast.Base{Sp: e.Span()}}
	}
}

func (p *Parser) parseRecordLiteralTail(typeExpr ast.Expr) ast.Expr {
	start := typeExpr.Span()
	p.advance() // "{"
	var fields []ast.FieldInit
	var spread ast.Expr
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("..") {
			p.advance()
			spread = p.parseExpr(PrecLowest, true)
			p.skipNewlines()
			break
		}
		name, sp, ok := p.expectIdent()
		if !ok {
			break
		}
		var val ast.Expr = &ast.Ident{Base: ast.Base{Sp: sp}, Name: name}
		if p.isOp(":") {
			p.advance()
			val = p.parseExpr(PrecLowest, true)
		}
		fields = append(fields, ast.FieldInit{Name: name, Value: val, Sp: sp})
		p.skipNewlines()
		if p.isOp(",") {
			commaLine := p.cur().Span.Start.Line
			p.allowTrailingComma("}", commaLine)
			p.skipNewlines()
			continue
		}
		break
	}
	end, _ := p.expectOp("}")
	return &ast.RecordLiteral{Base: ast.Base{Sp: source.Between(start, end)}, Type: p.exprToType(typeExpr), Fields: fields, Spread: spread}
}

func (p *Parser) parseArgs() []ast.Arg {
	p.advance() // "("
	var args []ast.Arg
	for !p.isOp(")") && !p.atEOF() {
		p.skipNewlines()
		start := p.cur().Span
		move := false
		if p.isKeyword("move") {
			p.advance()
			move = true
		}
		name := ""
		if p.cur().Kind == lexer.Identifier && p.peekAt(1).Literal == ":" && p.peekAt(1).Kind == lexer.Punctuator {
			name = p.advance().Literal
			p.advance() // ":"
		}
		val := p.parseExpr(PrecLowest, true)
		args = append(args, ast.Arg{Name: name, Value: val, Move: move, Sp: source.Between(start, val.Span())})
		p.skipNewlines()
		if p.isOp(",") {
			commaLine := p.cur().Span.Start.Line
			p.allowTrailingComma(")", commaLine)
			p.skipNewlines()
			continue
		}
		break
	}
	p.expectOp(")")
	return args
}

func (p *Parser) parsePrimary(allowBrace bool) ast.Expr {
	start := p.cur().Span
	switch {
	case p.cur().Kind == lexer.IntLiteral:
		tok := p.advance()
		return &ast.Literal{Base: ast.Base{Sp: start}, Kind: ast.LitInt, Raw: tok.Literal, Value: parseIntLiteral(tok.Literal)}
	case p.cur().Kind == lexer.FloatLiteral:
		tok := p.advance()
		v, _ := strconv.ParseFloat(trimFloatSuffix(tok.Literal), 64)
		return &ast.Literal{Base: ast.Base{Sp: start}, Kind: ast.LitFloat, Raw: tok.Literal, Value: v}
	case p.cur().Kind == lexer.StringLiteral:
		tok := p.advance()
		return &ast.Literal{Base: ast.Base{Sp: start}, Kind: ast.LitString, Raw: tok.Literal, Value: unquoteLoose(tok.Literal)}
	case p.cur().Kind == lexer.CharLiteral:
		tok := p.advance()
		return &ast.Literal{Base: ast.Base{Sp: start}, Kind: ast.LitChar, Raw: tok.Literal}
	case p.cur().Kind == lexer.BoolLiteral:
		tok := p.advance()
		return &ast.Literal{Base: ast.Base{Sp: start}, Kind: ast.LitBool, Raw: tok.Literal, Value: tok.Literal == "true"}
	case p.cur().Kind == lexer.NullLiteral:
		p.advance()
		return &ast.Literal{Base: ast.Base{Sp: start}, Kind: ast.LitNull}
	case p.isOp("("):
		return p.parseParenOrTuple(allowBrace)
	case p.isOp("["):
		return p.parseArrayLiteral()
	case p.isKeyword("if"):
		return p.parseIfExpr()
	case p.isKeyword("match"):
		return p.parseMatchExpr()
	case p.isKeyword("while"):
		return p.parseWhileLoop("")
	case p.isKeyword("for"):
		return p.parseForLoop("")
	case p.isKeyword("loop"):
		return p.parseLoopExpr("")
	case p.isKeyword("unsafe"):
		p.advance()
		body := p.parseBlock()
		return &ast.UnsafeBlockExpr{Base: ast.Base{Sp: source.Between(start, body.Span())}, Body: body}
	case p.isKeyword("transmute"):
		return p.parseTransmute()
	case p.isKeyword("sizeof"):
		return p.parseSizeAlign(true)
	case p.isKeyword("alignof"):
		return p.parseSizeAlign(false)
	case p.isKeyword("yield"):
		return p.parseYield(allowBrace)
	case p.isKeyword("sync"):
		p.advance()
		p.expectOp("(")
		inner := p.parseExpr(PrecLowest, true)
		end, _ := p.expectOp(")")
		return &ast.SyncExpr{Base: ast.Base{Sp: source.Between(start, end)}, Operand: inner}
	case p.isKeyword("race"):
		return p.parseRace()
	case p.isKeyword("all"):
		p.advance()
		p.expectOp("(")
		var ops []ast.Expr
		for !p.isOp(")") && !p.atEOF() {
			ops = append(ops, p.parseExpr(PrecLowest, true))
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expectOp(")")
		return &ast.AllExpr{Base: ast.Base{Sp: source.Between(start, end)}, Operands: ops}
	case p.isKeyword("parallel"):
		return p.parseParallel()
	case p.isKeyword("spawn"):
		p.advance()
		var body ast.Expr
		if p.isOp("{") {
			body = p.parseBlock()
		} else {
			body = p.parseExpr(PrecUnary, allowBrace)
		}
		return &ast.SpawnExpr{Base: ast.Base{Sp: source.Between(start, body.Span())}, Body: body}
	case p.isKeyword("wait"):
		p.advance()
		p.expectOp("(")
		h := p.parseExpr(PrecLowest, true)
		end, _ := p.expectOp(")")
		return &ast.WaitExpr{Base: ast.Base{Sp: source.Between(start, end)}, Handle: h}
	case p.isKeyword("dispatch"):
		return p.parseDispatch()
	case p.isOp("#"):
		return p.parseKeyBlock()
	case p.isOp("{"):
		return p.parseBlock()
	case p.cur().Kind == lexer.Identifier:
		return p.parseIdentOrPathOrRecord(allowBrace)
	default:
		p.errorf(diag.ESrcSyntax, p.cur().Span, "unexpected token %q in expression", p.cur().Literal)
		p.syncStmt()
		return &ast.ErrorExpr{Base: ast.Base{Sp: start}}
	}
}

func parseIntLiteral(raw string) int64 {
	digits := strings.TrimSpace(raw)
	var num strings.Builder
	for _, r := range digits {
		if r >= '0' && r <= '9' {
			num.WriteRune(r)
			continue
		}
		break
	}
	v, _ := strconv.ParseInt(num.String(), 10, 64)
	return v
}

// trimFloatSuffix strips a trailing `f32`/`f64` type suffix, if any,
// from a float literal's raw text before handing it to strconv.
func trimFloatSuffix(raw string) string {
	for _, suf := range []string{"f32", "f64"} {
		if strings.HasSuffix(raw, suf) {
			return strings.TrimSuffix(raw, suf)
		}
	}
	return raw
}

func unquoteLoose(raw string) string {
	s := strings.TrimPrefix(raw, "\"")
	s = strings.TrimSuffix(s, "\"")
	return s
}

func (p *Parser) parseIdentOrPathOrRecord(allowBrace bool) ast.Expr {
	start := p.cur().Span
	name := p.advance().Literal
	if p.isOp("::") {
		segs := []string{name}
		for p.isOp("::") {
			p.advance()
			n, _, ok := p.expectIdent()
			if !ok {
				break
			}
			segs = append(segs, n)
		}
		var generics []ast.TypeExpr
		if gen, ok := p.tryGenericArgsType(); ok {
			generics = gen
		}
		pe := &ast.PathExpr{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Segments: segs, Generics: generics}
		if allowBrace && p.isOp("{") {
			return p.parseRecordLiteralTail(pe)
		}
		return pe
	}
	if gen, ok := p.tryGenericArgsType(); ok {
		pe := &ast.PathExpr{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Segments: []string{name}, Generics: gen}
		return pe
	}
	return &ast.Ident{Base: ast.Base{Sp: start}, Name: name}
}

// parseParenOrTuple disambiguates `(e)` / `(e,)` / `(e, e, ...)`
// (spec.md §4.1): it parses the first expression, and a `,` after it
// makes the whole a tuple; `()` is the empty tuple.
func (p *Parser) parseParenOrTuple(allowBrace bool) ast.Expr {
	start := p.cur().Span
	p.advance() // "("
	if p.isOp(")") {
		end := p.advance().Span
		return &ast.TupleLiteral{Base: ast.Base{Sp: source.Between(start, end)}}
	}
	first := p.parseExpr(PrecLowest, true)
	if p.isOp(",") {
		elems := []ast.Expr{first}
		for p.isOp(",") {
			p.advance()
			p.skipNewlines()
			if p.isOp(")") {
				break
			}
			elems = append(elems, p.parseExpr(PrecLowest, true))
			p.skipNewlines()
		}
		end, _ := p.expectOp(")")
		return &ast.TupleLiteral{Base: ast.Base{Sp: source.Between(start, end)}, Elems: elems}
	}
	end, _ := p.expectOp(")")
	_ = end
	return first
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.cur().Span
	p.advance() // "["
	if p.isOp("]") {
		end := p.advance().Span
		return &ast.ArrayLiteral{Base: ast.Base{Sp: source.Between(start, end)}}
	}
	first := p.parseExpr(PrecLowest, true)
	if p.isOp(";") {
		p.advance()
		count := p.parseExpr(PrecLowest, true)
		end, _ := p.expectOp("]")
		return &ast.ArrayRepeat{Base: ast.Base{Sp: source.Between(start, end)}, Value: first, Count: count}
	}
	elems := []ast.Expr{first}
	for p.isOp(",") {
		commaLine := p.cur().Span.Start.Line
		p.advance()
		p.skipNewlines()
		if p.isOp("]") {
			break
		}
		elems = append(elems, p.parseExpr(PrecLowest, true))
		_ = commaLine
	}
	end, _ := p.expectOp("]")
	return &ast.ArrayLiteral{Base: ast.Base{Sp: source.Between(start, end)}, Elems: elems}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // "if"
	cond := p.parseExpr(PrecLowest, false)
	then := p.parseBlock()
	var elseBranch ast.Expr
	end := then.Span()
	if p.isKeyword("else") {
		p.advance()
		if p.isKeyword("if") {
			elseBranch = p.parseIfExpr()
		} else {
			elseBranch = p.parseBlock()
		}
		end = elseBranch.Span()
	}
	return &ast.IfExpr{Base: ast.Base{Sp: source.Between(start, end)}, Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // "match"
	scrutinee := p.parseExpr(PrecLowest, false)
	p.expectOp("{")
	var arms []ast.MatchArm
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("}") {
			break
		}
		armStart := p.cur().Span
		pat := p.parsePattern()
		var guard ast.Expr
		if p.isKeyword("if") {
			p.advance()
			guard = p.parseExpr(PrecLowest, false)
		}
		p.expectOp("=>")
		body := p.parseExpr(PrecLowest, true)
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Sp: source.Between(armStart, body.Span())})
		p.skipNewlines()
		if p.isOp(",") {
			p.advance()
			p.skipNewlines()
		}
	}
	end, _ := p.expectOp("}")
	return &ast.MatchExpr{Base: ast.Base{Sp: source.Between(start, end)}, Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseTransmute() ast.Expr {
	start := p.cur().Span
	p.advance() // "transmute"
	p.expectOp("<")
	t := p.parseType()
	p.splitShiftR()
	p.expectOp(">")
	p.expectOp("(")
	val := p.parseExpr(PrecLowest, true)
	end, _ := p.expectOp(")")
	return &ast.TransmuteExpr{Base: ast.Base{Sp: source.Between(start, end)}, Value: val, TargetType: t}
}

func (p *Parser) parseSizeAlign(sizeof bool) ast.Expr {
	start := p.cur().Span
	p.advance()
	var t ast.TypeExpr
	var of ast.Expr
	if p.isOp("<") {
		p.advance()
		t = p.parseType()
		p.splitShiftR()
		p.expectOp(">")
		p.expectOp("(")
		end, _ := p.expectOp(")")
		if sizeof {
			return &ast.SizeofExpr{Base: ast.Base{Sp: source.Between(start, end)}, Type: t}
		}
		return &ast.AlignofExpr{Base: ast.Base{Sp: source.Between(start, end)}, Type: t}
	}
	p.expectOp("(")
	of = p.parseExpr(PrecLowest, true)
	end, _ := p.expectOp(")")
	if sizeof {
		return &ast.SizeofExpr{Base: ast.Base{Sp: source.Between(start, end)}, Of: of}
	}
	return &ast.AlignofExpr{Base: ast.Base{Sp: source.Between(start, end)}, Of: of}
}

func (p *Parser) parseYield(allowBrace bool) ast.Expr {
	start := p.cur().Span
	p.advance() // "yield"
	if p.isKeyword("from") {
		p.advance()
		src := p.parseExpr(PrecUnary, allowBrace)
		return &ast.YieldFromExpr{Base: ast.Base{Sp: source.Between(start, src.Span())}, Source: src}
	}
	release := false
	if p.isKeyword("release") {
		p.advance()
		release = true
	}
	val := p.parseExpr(PrecUnary, allowBrace)
	return &ast.YieldExpr{Base: ast.Base{Sp: source.Between(start, val.Span())}, Value: val, Release: release}
}

func (p *Parser) parseRace() ast.Expr {
	start := p.cur().Span
	p.advance() // "race"
	p.expectOp("{")
	var arms []ast.RaceArm
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("}") {
			break
		}
		armStart := p.cur().Span
		name := ""
		if p.cur().Kind == lexer.Identifier && p.peekAt(1).Literal == ":" {
			name = p.advance().Literal
			p.advance()
		}
		e := p.parseExpr(PrecLowest, true)
		arms = append(arms, ast.RaceArm{Name: name, Expr: e, Sp: source.Between(armStart, e.Span())})
		p.skipNewlines()
		if p.isOp(",") {
			p.advance()
			p.skipNewlines()
		}
	}
	end, _ := p.expectOp("}")
	return &ast.RaceExpr{Base: ast.Base{Sp: source.Between(start, end)}, Arms: arms}
}

func (p *Parser) parseParallel() ast.Expr {
	start := p.cur().Span
	p.advance() // "parallel"
	domain := "cpu"
	var cancel ast.Expr
	name := ""
	if p.cur().Kind == lexer.Identifier && p.cur().Literal == "ctx" {
		p.advance()
		p.expectOp(".")
		domain, _, _ = p.expectIdent()
		p.expectOp("(")
		for !p.isOp(")") && !p.atEOF() {
			if p.cur().Kind == lexer.Identifier && p.cur().Literal == "name" {
				p.advance()
				p.expectOp(":")
				nameLit := p.parseExpr(PrecLowest, true)
				if lit, ok := nameLit.(*ast.Literal); ok {
					if s, ok := lit.Value.(string); ok {
						name = s
					}
				}
			} else {
				cancel = p.parseExpr(PrecLowest, true)
			}
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		p.expectOp(")")
	}
	body := p.parseBlock()
	return &ast.ParallelExpr{Base: ast.Base{Sp: source.Between(start, body.Span())}, Domain: domain, Cancel: cancel, Name: name, Body: body}
}

func (p *Parser) parseDispatch() ast.Expr {
	start := p.cur().Span
	p.advance() // "dispatch"
	binder, _, _ := p.expectIdent()
	p.expectKeyword("in")
	rng := p.parseExpr(PrecLowest, false)
	var opts ast.DispatchOptions
	if p.isOp("[") {
		p.advance()
		for !p.isOp("]") && !p.atEOF() {
			name := p.advance().Literal // `reduce`/`ordered`/`chunk` lex as keywords
			switch name {
			case "reduce":
				p.expectOp(":")
				op, _, _ := p.expectIdent()
				opts.ReduceOp = op
			case "ordered":
				opts.Ordered = true
			case "chunk":
				p.expectOp(":")
				opts.Chunk = p.parseExpr(PrecLowest, true)
			}
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		p.expectOp("]")
	}
	body := p.parseBlock()
	return &ast.DispatchExpr{Base: ast.Base{Sp: source.Between(start, body.Span())}, Binder: binder, Range: rng, Opts: opts, Body: body}
}

func (p *Parser) parseKeyBlock() ast.Expr {
	start := p.cur().Span
	p.advance() // "#"
	name, _, _ := p.expectIdent()
	perm := "unique"
	body := p.parseBlock()
	return &ast.KeyBlockExpr{Base: ast.Base{Sp: source.Between(start, body.Span())}, KeyName: name, Perm: perm, Body: body}
}

func (p *Parser) parseWhileLoop(label string) ast.Expr {
	start := p.cur().Span
	p.advance() // "while"
	cond := p.parseExpr(PrecLowest, false)
	body := p.parseBlock()
	return &ast.WhileLoop{Base: ast.Base{Sp: source.Between(start, body.Span())}, Label: label, Cond: cond, Body: body}
}

func (p *Parser) parseForLoop(label string) ast.Expr {
	start := p.cur().Span
	p.advance() // "for"
	pat := p.parsePattern()
	p.expectKeyword("in")
	iter := p.parseExpr(PrecLowest, false)
	body := p.parseBlock()
	return &ast.ForLoop{Base: ast.Base{Sp: source.Between(start, body.Span())}, Label: label, Pattern: pat, Iter: iter, Body: body}
}

func (p *Parser) parseLoopExpr(label string) ast.Expr {
	start := p.cur().Span
	p.advance() // "loop"
	body := p.parseBlock()
	return &ast.LoopExpr{Base: ast.Base{Sp: source.Between(start, body.Span())}, Label: label, Body: body}
}

// parseBlock parses `{ stmts... [tail_expr] }`.
func (p *Parser) parseBlock() *ast.Block {
	start := p.cur().Span
	if _, ok := p.expectOp("{"); !ok {
		return &ast.Block{Base: ast.Base{Sp: start}}
	}
	var stmts []ast.Stmt
	var tail ast.Expr
	for {
		p.skipNewlines()
		if p.isOp("}") || p.atEOF() {
			break
		}
		stmt, isTail := p.parseStmtOrTail()
		if isTail {
			tail = stmt.(*ast.ExprStmt).X
			p.skipNewlines()
			break
		}
		stmts = append(stmts, stmt)
	}
	end, _ := p.expectOp("}")
	return &ast.Block{Base: ast.Base{Sp: source.Between(start, end)}, Stmts: stmts, Tail: tail}
}

package parser

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/source"
)

// parsePattern parses a pattern, then folds it into a range pattern if
// followed by `..`/`..=` against a literal bound (spec.md §3.2: "range").
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePrimaryPattern()
	if kind, ok := p.rangeOpKind(); ok {
		p.advance()
		if p.atRangeEnd() {
			return &ast.RangeExpr{Base: ast.Base{Sp: source.Between(first.Span(), p.prevSpan())}, Kind: p.kindForStartOnly(kind), From: asExpr(first)}
		}
		to := p.parsePrimaryPattern()
		return &ast.RangeExpr{Base: ast.Base{Sp: source.Between(first.Span(), to.Span())}, Kind: p.kindFor(kind), From: asExpr(first), To: asExpr(to)}
	}
	return first
}

func asExpr(pat ast.Pattern) ast.Expr {
	if e, ok := pat.(ast.Expr); ok {
		return e
	}
	return nil
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	start := p.cur().Span
	switch {
	case p.cur().Kind == lexer.Identifier && p.cur().Literal == "_":
		p.advance()
		return &ast.WildcardPattern{Base: ast.Base{Sp: start}}
	case p.cur().Kind == lexer.IntLiteral || p.cur().Kind == lexer.FloatLiteral ||
		p.cur().Kind == lexer.StringLiteral || p.cur().Kind == lexer.CharLiteral ||
		p.cur().Kind == lexer.BoolLiteral || p.cur().Kind == lexer.NullLiteral:
		return p.parsePrimary(true).(ast.Pattern)
	case p.isOp("-") && (p.peekAt(1).Kind == lexer.IntLiteral || p.peekAt(1).Kind == lexer.FloatLiteral):
		p.advance()
		lit := p.parsePrimary(true).(*ast.Literal)
		lit.Raw = "-" + lit.Raw
		lit.SetSpan(source.Between(start, lit.Span()))
		return lit
	case p.isOp("("):
		return p.parseTuplePattern()
	case p.cur().Kind == lexer.Identifier:
		return p.parsePathOrBinderPattern()
	default:
		p.errorf(diag.ESrcSyntax, p.cur().Span, "expected a pattern, found %q", p.cur().Literal)
		p.syncStmt()
		return &ast.ErrorPattern{Base: ast.Base{Sp: start}}
	}
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	start := p.cur().Span
	p.advance() // "("
	var elems []ast.Pattern
	for !p.isOp(")") && !p.atEOF() {
		p.skipNewlines()
		elems = append(elems, p.parsePattern())
		p.skipNewlines()
		if p.isOp(",") {
			commaLine := p.cur().Span.Start.Line
			p.allowTrailingComma(")", commaLine)
			p.skipNewlines()
			continue
		}
		break
	}
	end, _ := p.expectOp(")")
	return &ast.TuplePattern{Base: ast.Base{Sp: source.Between(start, end)}, Elems: elems}
}

// parsePathOrBinderPattern disambiguates a bare binder (`name`), a
// typed binding (`name: T`), and a type-qualified constructor pattern
// (`Type::Variant(...)`, `Type@State{...}`, `Type{...}`) — all share
// the identifier-start prefix (spec.md §3.2).
func (p *Parser) parsePathOrBinderPattern() ast.Pattern {
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
		typeExpr := &ast.PathType{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Segments: segs[:len(segs)-1]}
		variant := segs[len(segs)-1]
		return p.parseEnumPatternTail(start, typeExpr, variant)
	}
	if p.isOp("@") {
		p.advance()
		state, _, _ := p.expectIdent()
		typeExpr := &ast.PathType{Base: ast.Base{Sp: start}, Segments: []string{name}}
		return p.parseModalPatternTail(start, typeExpr, state)
	}
	if p.isOp("{") && isCapitalized(name) {
		typeExpr := &ast.PathType{Base: ast.Base{Sp: start}, Segments: []string{name}}
		return p.parseRecordPatternTail(start, typeExpr)
	}
	if p.isOp(":") {
		p.advance()
		t := p.parseType()
		return &ast.TypedBindingPattern{Base: ast.Base{Sp: source.Between(start, t.Span())}, Name: name, Type: t}
	}
	return &ast.Ident{Base: ast.Base{Sp: start}, Name: name}
}

func isCapitalized(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}

func (p *Parser) parseEnumPatternTail(start source.Span, typeExpr ast.TypeExpr, variant string) ast.Pattern {
	if p.isOp("(") {
		p.advance()
		var payload []ast.Pattern
		for !p.isOp(")") && !p.atEOF() {
			p.skipNewlines()
			payload = append(payload, p.parsePattern())
			p.skipNewlines()
			if p.isOp(",") {
				commaLine := p.cur().Span.Start.Line
				p.allowTrailingComma(")", commaLine)
				p.skipNewlines()
				continue
			}
			break
		}
		end, _ := p.expectOp(")")
		return &ast.EnumPattern{Base: ast.Base{Sp: source.Between(start, end)}, Type: typeExpr, Variant: variant, TuplePayload: payload}
	}
	if p.isOp("{") {
		fields, _, end := p.parseFieldPatternList()
		return &ast.EnumPattern{Base: ast.Base{Sp: source.Between(start, end)}, Type: typeExpr, Variant: variant, RecordFields: fields}
	}
	return &ast.EnumPattern{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Type: typeExpr, Variant: variant}
}

func (p *Parser) parseModalPatternTail(start source.Span, typeExpr ast.TypeExpr, state string) ast.Pattern {
	if p.isOp("{") {
		fields, _, end := p.parseFieldPatternList()
		return &ast.ModalPattern{Base: ast.Base{Sp: source.Between(start, end)}, Type: typeExpr, State: state, RecordFields: fields}
	}
	if p.isOp("(") {
		p.advance()
		var payload []ast.Pattern
		for !p.isOp(")") && !p.atEOF() {
			p.skipNewlines()
			payload = append(payload, p.parsePattern())
			if p.isOp(",") {
				p.advance()
				p.skipNewlines()
				continue
			}
			break
		}
		end, _ := p.expectOp(")")
		fields := make([]ast.FieldPattern, 0, len(payload))
		for i, pat := range payload {
			fields = append(fields, ast.FieldPattern{Name: tupleFieldName(i), Pattern: pat})
		}
		return &ast.ModalPattern{Base: ast.Base{Sp: source.Between(start, end)}, Type: typeExpr, State: state, RecordFields: fields}
	}
	return &ast.ModalPattern{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Type: typeExpr, State: state}
}

func tupleFieldName(i int) string {
	return [...]string{"0", "1", "2", "3", "4", "5", "6", "7"}[i%8]
}

func (p *Parser) parseRecordPatternTail(start source.Span, typeExpr ast.TypeExpr) ast.Pattern {
	fields, rest, end := p.parseFieldPatternList()
	return &ast.RecordPattern{Base: ast.Base{Sp: source.Between(start, end)}, Type: typeExpr, Fields: fields, Rest: rest}
}

// parseFieldPatternList parses the `{ name: pat, name, .., }` body
// shared by record/enum-record/modal patterns, desugaring the
// shorthand `name` field to `name: name` (spec.md §3.2).
func (p *Parser) parseFieldPatternList() ([]ast.FieldPattern, bool, source.Span) {
	p.advance() // "{"
	var fields []ast.FieldPattern
	rest := false
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("..") {
			p.advance()
			rest = true
			p.skipNewlines()
			break
		}
		name, sp, ok := p.expectIdent()
		if !ok {
			break
		}
		var pat ast.Pattern = &ast.Ident{Base: ast.Base{Sp: sp}, Name: name}
		if p.isOp(":") {
			p.advance()
			pat = p.parsePattern()
		}
		fields = append(fields, ast.FieldPattern{Name: name, Pattern: pat})
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
	return fields, rest, end
}

package parser

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/source"
)

// parseItem parses one top-level declaration, after any leading
// attributes and visibility keyword. An unrecognized item head, or a
// record whose name is missing, syncs to the next top-level keyword and
// is recorded as an *ast.ErrorItem; other malformed items are kept as
// their own item kind with whatever parts did parse.
func (p *Parser) parseItem() ast.Item {
	start := p.cur().Span
	attrs := p.parseAttributes()
	vis := p.parseVisibility()
	switch {
	case p.isKeyword("import"):
		return p.parseImport(start)
	case p.isKeyword("using"):
		return p.parseUsing(start)
	case p.isKeyword("static"):
		return p.parseStaticItem(start, vis, attrs)
	case p.isKeyword("extern") || p.isKeyword("pure") || p.isKeyword("procedure"):
		return p.parseProcedureItem(start, vis, attrs)
	case p.isKeyword("record"):
		return p.parseRecordItem(start, vis, attrs)
	case p.isKeyword("enum"):
		return p.parseEnumItem(start, vis, attrs)
	case p.isKeyword("modal"):
		return p.parseModalItem(start, vis, attrs)
	case p.isKeyword("class"):
		return p.parseClassItem(start, vis, attrs)
	case p.isKeyword("type"):
		return p.parseTypeAliasItem(start, vis, attrs)
	default:
		p.errorf(diag.ESrcSyntax, p.cur().Span, "expected an item, found %q", p.cur().Literal)
		p.syncItem()
		return &ast.ErrorItem{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}}
	}
}

// parseAttributes parses zero or more `[[ident(args...)]]` annotations
// preceding an item (spec.md §7).
func (p *Parser) parseAttributes() []ast.Attribute {
	var attrs []ast.Attribute
	for p.isOp("[") && p.peekAt(1).Literal == "[" {
		start := p.cur().Span
		p.advance()
		p.advance()
		name, _, _ := p.expectIdent()
		var args []string
		if p.isOp("(") {
			p.advance()
			for !p.isOp(")") && !p.atEOF() {
				a, _, ok := p.expectIdent()
				if !ok {
					break
				}
				args = append(args, a)
				if p.isOp(",") {
					p.advance()
					continue
				}
				break
			}
			p.expectOp(")")
		}
		p.expectOp("]")
		end, _ := p.expectOp("]")
		attrs = append(attrs, ast.Attribute{Name: name, Args: args, Sp: source.Between(start, end)})
		p.skipNewlines()
	}
	return attrs
}

func (p *Parser) parseVisibility() ast.Visibility {
	switch {
	case p.isKeyword("pub") || p.isKeyword("public"):
		p.advance()
		return ast.VisPublic
	case p.isKeyword("protected"):
		p.advance()
		return ast.VisProtected
	case p.isKeyword("internal"):
		p.advance()
		return ast.VisInternal
	case p.isKeyword("private"):
		p.advance()
		return ast.VisPrivate
	default:
		return ast.VisPrivate
	}
}

func (p *Parser) parseImport(start source.Span) ast.Item {
	p.advance() // "import"
	segs := p.parsePathSegments()
	var selected []string
	if p.isOp("(") {
		p.advance()
		for !p.isOp(")") && !p.atEOF() {
			n, _, ok := p.expectIdent()
			if !ok {
				break
			}
			selected = append(selected, n)
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		p.expectOp(")")
	}
	item := &ast.Import{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Path: segs, Selected: selected}
	p.terminator()
	return item
}

func (p *Parser) parseUsing(start source.Span) ast.Item {
	p.advance() // "using"
	segs := p.parsePathSegments()
	alias := segs[len(segs)-1]
	if p.isKeyword("as") {
		p.advance()
		alias, _, _ = p.expectIdent()
	}
	item := &ast.Using{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Path: segs, Alias: alias}
	p.terminator()
	return item
}

func (p *Parser) parseStaticItem(start source.Span, vis ast.Visibility, attrs []ast.Attribute) ast.Item {
	p.advance() // "static"
	mutable := p.isKeyword("var")
	p.advance() // "let" | "var"
	name, _, _ := p.expectIdent()
	var t ast.TypeExpr
	if p.isOp(":") {
		p.advance()
		t = p.parseType()
	}
	p.expectOp("=")
	val := p.parseExpr(PrecLowest, true)
	item := &ast.StaticItem{
		Base: ast.Base{Sp: source.Between(start, val.Span())}, Vis: vis, Mutable: mutable,
		Name: name, Type: t, Value: val, Attrs: attrs,
	}
	p.terminator()
	return item
}

// parseProcedureItem handles `[extern] [pure] procedure name<G>(params)
// -> R contracts? body|;`, including the `~`/`~!`/`~%` receiver
// shorthand (spec.md §4.3), which desugars to an explicit leading
// `self`-style Param of the given permission.
func (p *Parser) parseProcedureItem(start source.Span, vis ast.Visibility, attrs []ast.Attribute) *ast.ProcedureItem {
	extern := false
	pure := false
	for p.isKeyword("extern") || p.isKeyword("pure") {
		if p.isKeyword("extern") {
			extern = true
		} else {
			pure = true
		}
		p.advance()
	}
	p.expectKeyword("procedure")
	name, _, _ := p.expectIdent()
	generics := p.parseGenericParams()
	var where *ast.WhereClause
	params, receiver := p.parseParamList()
	var ret ast.TypeExpr
	if p.isOp("->") {
		p.advance()
		ret = p.parseType()
	}
	var contracts []ast.Contract
	for p.isOp("|=") {
		cStart := p.cur().Span
		p.advance()
		pre := p.parseExpr(PrecLowest, false)
		p.expectOp("=>")
		post := p.parseExpr(PrecLowest, false)
		contracts = append(contracts, ast.Contract{Pre: pre, Post: post, Sp: source.Between(cStart, post.Span())})
	}
	if p.isKeyword("where") {
		where = p.parseWhereClause()
	}
	var body *ast.Block
	end := p.prevSpan()
	if extern {
		p.terminator()
	} else {
		body = p.parseBlock()
		end = body.Span()
	}
	return &ast.ProcedureItem{
		Base: ast.Base{Sp: source.Between(start, end)}, Vis: vis, Extern: extern, Pure: pure,
		Name: name, Generics: generics, Where: where, Receiver: receiver, Params: params,
		Return: ret, Contracts: contracts, Body: body, Attrs: attrs,
	}
}

// parseParamList parses `(params...)`, desugaring a leading `~`
// (shared-self), `~!` (unique-self), or `~%` (const-self) receiver
// shorthand into an explicit *Param named "self" (spec.md §4.3).
func (p *Parser) parseParamList() ([]ast.Param, *ast.Param) {
	p.expectOp("(")
	var receiver *ast.Param
	var params []ast.Param
	first := true
	for !p.isOp(")") && !p.atEOF() {
		p.skipNewlines()
		if first && p.isOp("~") {
			sp := p.cur().Span
			perm := "shared"
			p.advance()
			if p.isOp("!") {
				p.advance()
				perm = "unique"
			} else if p.isOp("%") {
				p.advance()
				perm = "const"
			}
			receiver = &ast.Param{Name: "self", Type: &ast.PermType{Base: ast.Base{Sp: sp}, Perm: perm, Elem: &ast.PathType{Base: ast.Base{Sp: sp}, Segments: []string{"Self"}}}, Sp: sp}
			first = false
			if p.isOp(",") {
				p.advance()
				p.skipNewlines()
				continue
			}
			break
		}
		first = false
		pStart := p.cur().Span
		move := false
		if p.isKeyword("move") {
			p.advance()
			move = true
		}
		name, _, _ := p.expectIdent()
		p.expectOp(":")
		t := p.parseType()
		params = append(params, ast.Param{Name: name, Type: t, Move: move, Sp: source.Between(pStart, t.Span())})
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
	return params, receiver
}

func (p *Parser) parseWhereClause() *ast.WhereClause {
	start := p.cur().Span
	p.advance() // "where"
	p.expectOp("{")
	var preds []ast.Expr
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		preds = append(preds, p.parseExpr(PrecLowest, true))
		p.skipNewlines()
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expectOp("}")
	return &ast.WhereClause{Predicates: preds, Sp: source.Between(start, end)}
}

func (p *Parser) parseRecordItem(start source.Span, vis ast.Visibility, attrs []ast.Attribute) ast.Item {
	p.advance() // "record"
	name, _, ok := p.expectIdent()
	if !ok {
		p.syncItem()
		return &ast.ErrorItem{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}}
	}
	generics := p.parseGenericParams()
	var where *ast.WhereClause
	if p.isKeyword("where") {
		where = p.parseWhereClause()
	}
	fields, end := p.parseFieldList()
	return &ast.RecordItem{
		Base: ast.Base{Sp: source.Between(start, end)}, Vis: vis, Name: name,
		Generics: generics, Where: where, Fields: fields, Attrs: attrs,
	}
}

func (p *Parser) parseFieldList() ([]ast.Field, source.Span) {
	p.expectOp("{")
	var fields []ast.Field
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("}") {
			break
		}
		fStart := p.cur().Span
		name, _, _ := p.expectIdent()
		p.expectOp(":")
		t := p.parseType()
		fields = append(fields, ast.Field{Name: name, Type: t, Sp: source.Between(fStart, t.Span())})
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
	return fields, end
}

func (p *Parser) parseEnumItem(start source.Span, vis ast.Visibility, attrs []ast.Attribute) ast.Item {
	p.advance() // "enum"
	name, _, _ := p.expectIdent()
	generics := p.parseGenericParams()
	var where *ast.WhereClause
	if p.isKeyword("where") {
		where = p.parseWhereClause()
	}
	p.expectOp("{")
	var variants []ast.EnumVariant
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("}") {
			break
		}
		variants = append(variants, p.parseEnumVariant())
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
	return &ast.EnumItem{
		Base: ast.Base{Sp: source.Between(start, end)}, Vis: vis, Name: name,
		Generics: generics, Where: where, Variants: variants, Attrs: attrs,
	}
}

func (p *Parser) parseEnumVariant() ast.EnumVariant {
	start := p.cur().Span
	name, _, _ := p.expectIdent()
	if p.isOp("(") {
		p.advance()
		var payload []ast.TypeExpr
		for !p.isOp(")") && !p.atEOF() {
			payload = append(payload, p.parseType())
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expectOp(")")
		return ast.EnumVariant{Name: name, TuplePayload: payload, Sp: source.Between(start, end)}
	}
	if p.isOp("{") {
		fields, end := p.parseFieldList()
		return ast.EnumVariant{Name: name, RecordFields: fields, Sp: source.Between(start, end)}
	}
	return ast.EnumVariant{Name: name, Sp: source.Between(start, p.prevSpan())}
}

func (p *Parser) parseModalItem(start source.Span, vis ast.Visibility, attrs []ast.Attribute) ast.Item {
	p.advance() // "modal"
	name, _, _ := p.expectIdent()
	generics := p.parseGenericParams()
	var where *ast.WhereClause
	if p.isKeyword("where") {
		where = p.parseWhereClause()
	}
	p.expectOp("{")
	var states []ast.ModalState
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("}") {
			break
		}
		states = append(states, p.parseModalState())
		p.skipNewlines()
	}
	end, _ := p.expectOp("}")
	return &ast.ModalItem{
		Base: ast.Base{Sp: source.Between(start, end)}, Vis: vis, Name: name,
		Generics: generics, Where: where, States: states, Attrs: attrs,
	}
}

func (p *Parser) parseModalState() ast.ModalState {
	start := p.cur().Span
	p.expectOp("@")
	name, _, _ := p.expectIdent()
	p.expectOp("{")
	var fields []ast.Field
	var transitions []*ast.ProcedureItem
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("}") {
			break
		}
		if p.isKeyword("procedure") || p.isKeyword("extern") || p.isKeyword("pure") {
			transitions = append(transitions, p.parseProcedureItem(p.cur().Span, ast.VisPublic, nil))
			p.skipNewlines()
			continue
		}
		fStart := p.cur().Span
		fname, _, _ := p.expectIdent()
		p.expectOp(":")
		t := p.parseType()
		fields = append(fields, ast.Field{Name: fname, Type: t, Sp: source.Between(fStart, t.Span())})
		p.skipNewlines()
		if p.isOp(",") {
			commaLine := p.cur().Span.Start.Line
			p.allowTrailingComma("}", commaLine)
			p.skipNewlines()
			continue
		}
	}
	end, _ := p.expectOp("}")
	return ast.ModalState{Name: name, Fields: fields, Transitions: transitions, Sp: source.Between(start, end)}
}

func (p *Parser) parseClassItem(start source.Span, vis ast.Visibility, attrs []ast.Attribute) ast.Item {
	p.advance() // "class"
	name, _, _ := p.expectIdent()
	generics := p.parseGenericParams()
	p.expectOp("{")
	var methods []*ast.ProcedureItem
	for !p.isOp("}") && !p.atEOF() {
		p.skipNewlines()
		if p.isOp("}") {
			break
		}
		methods = append(methods, p.parseProcedureItem(p.cur().Span, ast.VisPublic, nil))
		p.skipNewlines()
	}
	end, _ := p.expectOp("}")
	return &ast.ClassItem{
		Base: ast.Base{Sp: source.Between(start, end)}, Vis: vis, Name: name,
		Generics: generics, Methods: methods, Attrs: attrs,
	}
}

func (p *Parser) parseTypeAliasItem(start source.Span, vis ast.Visibility, attrs []ast.Attribute) ast.Item {
	p.advance() // "type"
	name, _, _ := p.expectIdent()
	generics := p.parseGenericParams()
	p.expectOp("=")
	target := p.parseType()
	item := &ast.TypeAliasItem{
		Base: ast.Base{Sp: source.Between(start, target.Span())}, Vis: vis, Name: name,
		Generics: generics, Target: target, Attrs: attrs,
	}
	p.terminator()
	return item
}

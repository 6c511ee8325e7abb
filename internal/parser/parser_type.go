package parser

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/source"
)

var primitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"isize": true, "usize": true, "f16": true, "f32": true, "f64": true,
	"bool": true, "char": true,
}

// parseType parses a type expression, then wraps it in a refinement if
// followed by `where { predicate }` (spec.md §3.2).
func (p *Parser) parseType() ast.TypeExpr {
	start := p.cur().Span
	t := p.parsePermType()
	if p.isKeyword("where") {
		p.advance()
		if _, ok := p.expectOp("{"); ok {
			pred := p.parseExpr(PrecLowest, true)
			end, _ := p.expectOp("}")
			return &ast.RefinementType{
				Base:       ast.Base{Sp: source.Between(start, end)},
				Underlying: t,
				Predicate:  pred,
			}
		}
	}
	return t
}

func (p *Parser) parsePermType() ast.TypeExpr {
	start := p.cur().Span
	if p.cur().Kind == lexer.Keyword && (p.cur().Literal == "const" || p.cur().Literal == "unique" || p.cur().Literal == "shared") {
		perm := p.advance().Literal
		elem := p.parsePermType()
		return &ast.PermType{Base: ast.Base{Sp: source.Between(start, elem.Span())}, Perm: perm, Elem: elem}
	}
	return p.parseUnionType()
}

// parseUnionType parses `A | B | ...`; a lone member returns that
// member unwrapped (a UnionType of one is not constructed).
func (p *Parser) parseUnionType() ast.TypeExpr {
	start := p.cur().Span
	first := p.parsePostfixType()
	if !p.isOp("|") {
		return first
	}
	members := []ast.TypeExpr{first}
	for p.isOp("|") {
		p.advance()
		members = append(members, p.parsePostfixType())
	}
	end := members[len(members)-1].Span()
	return &ast.UnionType{Base: ast.Base{Sp: source.Between(start, end)}, Members: members}
}

// parsePostfixType handles `@State` modal-state suffixes on an
// otherwise-parsed base type.
func (p *Parser) parsePostfixType() ast.TypeExpr {
	t := p.parsePrimaryType()
	for p.isOp("@") {
		p.advance()
		state, sp, ok := p.expectIdent()
		if !ok {
			break
		}
		switch tt := t.(type) {
		case *ast.PathType:
			t = &ast.ModalStateType{
				Base: ast.Base{Sp: source.Between(t.Span(), sp)}, Segments: tt.Segments, Args: tt.Args, State: state,
			}
		case *ast.PtrType:
			tt.State = state
			tt.SetSpan(source.Between(t.Span(), sp))
		case *ast.StringType:
			tt.State = state
			tt.SetSpan(source.Between(t.Span(), sp))
		default:
			p.errorf(diag.ESrcSyntax, sp, "modal state suffix not applicable to this type")
		}
	}
	return t
}

func (p *Parser) parsePrimaryType() ast.TypeExpr {
	start := p.cur().Span
	switch {
	case p.cur().Kind == lexer.Identifier && primitiveNames[p.cur().Literal]:
		name := p.advance().Literal
		return &ast.PrimitiveType{Base: ast.Base{Sp: start}, Name: name}
	case p.isOp("(") :
		return p.parseTupleOrFuncType()
	case p.isOp("[") :
		return p.parseArrayOrSliceType()
	case p.isOp("*") :
		return p.parseRawPtrType()
	case p.isOp("!") :
		p.advance()
		return &ast.PrimitiveType{Base: ast.Base{Sp: start}, Name: "!"}
	case p.isKeyword("opaque"):
		p.advance()
		segs := p.parsePathSegments()
		return &ast.OpaqueType{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Path: segs}
	case p.isOp("$"):
		p.advance()
		segs := p.parsePathSegments()
		return &ast.DynType{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, ClassPath: segs}
	case p.cur().Kind == lexer.Identifier && p.cur().Literal == "string":
		p.advance()
		return &ast.StringType{Base: ast.Base{Sp: start}, Bytes: false}
	case p.cur().Kind == lexer.Identifier && p.cur().Literal == "bytes":
		p.advance()
		return &ast.StringType{Base: ast.Base{Sp: start}, Bytes: true}
	case p.cur().Kind == lexer.Identifier && p.cur().Literal == "Ptr":
		return p.parsePtrType()
	case p.cur().Kind == lexer.Identifier && p.cur().Literal == "Async":
		return p.parseAsyncType()
	case p.cur().Kind == lexer.Identifier:
		return p.parsePathType()
	default:
		p.errorf(diag.ESrcSyntax, p.cur().Span, "expected a type, found %q", p.cur().Literal)
		p.syncType()
		return &ast.ErrorType{Base: ast.Base{Sp: start}}
	}
}

func (p *Parser) prevSpan() source.Span {
	if p.pos == 0 {
		return p.cur().Span
	}
	return p.toks[p.pos-1].Span
}

func (p *Parser) parsePathSegments() []string {
	var segs []string
	name, _, ok := p.expectIdent()
	if !ok {
		return segs
	}
	segs = append(segs, name)
	for p.isOp("::") {
		p.advance()
		name, _, ok := p.expectIdent()
		if !ok {
			break
		}
		segs = append(segs, name)
	}
	return segs
}

func (p *Parser) parsePathType() ast.TypeExpr {
	start := p.cur().Span
	segs := p.parsePathSegments()
	// In type position `<` always opens a generic-args list, so it is
	// parsed directly, without tryGenericArgsType's follower check.
	var args []ast.TypeExpr
	if p.isOp("<") {
		p.advance()
		for !p.isOp(">") && !p.isOp(">>") && !p.atEOF() {
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
	}
	return &ast.PathType{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Segments: segs, Args: args}
}

func (p *Parser) parsePtrType() ast.TypeExpr {
	start := p.cur().Span
	p.advance() // "Ptr"
	p.expectOp("<")
	elem := p.parseType()
	p.expectOp(">")
	return &ast.PtrType{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Elem: elem}
}

func (p *Parser) parseAsyncType() ast.TypeExpr {
	start := p.cur().Span
	p.advance() // "Async"
	p.expectOp("<")
	out := p.parseType()
	p.expectOp(",")
	in := p.parseType()
	p.expectOp(",")
	res := p.parseType()
	p.expectOp(",")
	errT := p.parseType()
	p.expectOp(">")
	return &ast.AsyncType{Base: ast.Base{Sp: source.Between(start, p.prevSpan())}, Out: out, In: in, Result: res, Err: errT}
}

func (p *Parser) parseRawPtrType() ast.TypeExpr {
	start := p.cur().Span
	p.advance() // "*"
	mut := false
	if p.cur().Kind == lexer.Identifier && (p.cur().Literal == "mut" || p.cur().Literal == "imm") {
		mut = p.advance().Literal == "mut"
	}
	elem := p.parsePermType()
	return &ast.RawPtrType{Base: ast.Base{Sp: source.Between(start, elem.Span())}, Elem: elem, Mut: mut}
}

// parseTupleOrFuncType disambiguates `(T)` (grouping), `(T,)`/`(T,T)`
// (tuple), and `(T,...) -> R` (function type), mirroring the
// expression-level tuple-vs-paren rule (spec.md §4.1).
func (p *Parser) parseTupleOrFuncType() ast.TypeExpr {
	start := p.cur().Span
	p.advance() // "("
	var elems []ast.TypeExpr
	trailingComma := false
	if !p.isOp(")") {
		for {
			p.skipNewlines()
			elems = append(elems, p.parseType())
			p.skipNewlines()
			if p.isOp(",") {
				p.advance()
				trailingComma = true
				p.skipNewlines()
				if p.isOp(")") {
					break
				}
				trailingComma = false
				continue
			}
			break
		}
	}
	end, _ := p.expectOp(")")
	if p.isOp("->") {
		p.advance()
		ret := p.parseType()
		return &ast.FuncType{Base: ast.Base{Sp: source.Between(start, ret.Span())}, Params: elems, Return: ret}
	}
	if len(elems) == 1 && !trailingComma {
		return elems[0]
	}
	return &ast.TupleType{Base: ast.Base{Sp: source.Between(start, end)}, Elems: elems}
}

func (p *Parser) parseArrayOrSliceType() ast.TypeExpr {
	start := p.cur().Span
	p.advance() // "["
	elem := p.parseType()
	if p.isOp(";") {
		p.advance()
		length := p.parseExpr(PrecLowest, true)
		end, _ := p.expectOp("]")
		return &ast.ArrayType{Base: ast.Base{Sp: source.Between(start, end)}, Elem: elem, Len: length}
	}
	end, _ := p.expectOp("]")
	return &ast.SliceType{Base: ast.Base{Sp: source.Between(start, end)}, Elem: elem}
}

// parseGenericParams parses `<T: Bound + Bound, ...>` after an item
// name, or returns nil if absent.
func (p *Parser) parseGenericParams() []ast.GenericParam {
	if !p.isOp("<") {
		return nil
	}
	p.advance()
	var params []ast.GenericParam
	for !p.isOp(">") && !p.atEOF() {
		p.skipNewlines()
		name, sp, ok := p.expectIdent()
		if !ok {
			break
		}
		var bounds []ast.TypeExpr
		if p.isOp(":") {
			p.advance()
			bounds = append(bounds, p.parseType())
			for p.isOp("+") {
				p.advance()
				bounds = append(bounds, p.parseType())
			}
		}
		params = append(params, ast.GenericParam{Name: name, Bounds: bounds, Sp: sp})
		p.skipNewlines()
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	p.splitShiftR()
	p.expectOp(">")
	return params
}

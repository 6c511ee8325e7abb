// Package parser implements Cursive0's recursive-descent, Pratt-style
// expression parser (spec.md §4.1): a read-only token slice plus a
// cursor, panic-mode recovery via per-nonterminal sync routines, and
// speculative lookahead for the generic-args-vs-comparison and
// tuple-vs-paren ambiguities.
package parser

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/source"
)

// Parser holds the token cursor and diagnostic sink. Subparsers are
// immutable-by-convention: a successful call advances p.pos and
// returns a value; a failed call emits into p.sink and calls a sync
// routine, never panicking across an exported entry point.
type Parser struct {
	file   *source.File
	toks   []lexer.Token // the token slice; on-demand >> splitting grows this
	pos    int
	sink   *diag.Sink
	unsafe []source.Span
}

// New creates a Parser over an already-lexed token stream.
func New(file *source.File, toks []lexer.Token, unsafe []source.Span, sink *diag.Sink) *Parser {
	p := &Parser{file: file, toks: filterNewlineRuns(toks), sink: sink, unsafe: unsafe}
	return p
}

// filterNewlineRuns collapses runs of Newline tokens into a single one
// and drops leading/trailing ones; the grammar only cares whether a
// terminator is present, not how many newlines produced it.
func filterNewlineRuns(in []lexer.Token) []lexer.Token {
	out := make([]lexer.Token, 0, len(in))
	prevNewline := true // drop leading newlines
	for _, t := range in {
		if t.Kind == lexer.Newline {
			if prevNewline {
				continue
			}
			prevNewline = true
			out = append(out, t)
			continue
		}
		prevNewline = false
		out = append(out, t)
	}
	return out
}

// --- cursor primitives ---

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.eofToken()
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.eofToken()
	}
	return p.toks[i]
}

func (p *Parser) eofToken() lexer.Token {
	if len(p.toks) > 0 {
		last := p.toks[len(p.toks)-1]
		if last.Kind == lexer.Eof {
			return last
		}
	}
	return lexer.Token{Kind: lexer.Eof}
}

func (p *Parser) atEOF() bool { return p.cur().Kind == lexer.Eof }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// skipNewlines consumes any Newline tokens at the cursor; used where a
// construct may legally continue on the next source line (inside
// balanced delimiters, per spec.md §6: "newlines... ignored inside
// balanced delimiters").
func (p *Parser) skipNewlines() {
	for p.cur().Kind == lexer.Newline {
		p.advance()
	}
}

func (p *Parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == lexer.Keyword && t.Literal == kw
}

func (p *Parser) isOp(op string) bool {
	t := p.cur()
	return (t.Kind == lexer.Operator || t.Kind == lexer.Punctuator) && t.Literal == op
}

func (p *Parser) expectOp(op string) (source.Span, bool) {
	if p.isOp(op) {
		t := p.advance()
		return t.Span, true
	}
	p.errorf(diag.ESrcSyntax, p.cur().Span, "expected %q, found %q", op, p.cur().Literal)
	return p.cur().Span, false
}

func (p *Parser) expectKeyword(kw string) (source.Span, bool) {
	if p.isKeyword(kw) {
		t := p.advance()
		return t.Span, true
	}
	p.errorf(diag.ESrcSyntax, p.cur().Span, "expected keyword %q, found %q", kw, p.cur().Literal)
	return p.cur().Span, false
}

func (p *Parser) expectIdent() (string, source.Span, bool) {
	if p.cur().Kind == lexer.Identifier {
		t := p.advance()
		return t.Literal, t.Span, true
	}
	p.errorf(diag.ESrcSyntax, p.cur().Span, "expected identifier, found %q", p.cur().Literal)
	return "", p.cur().Span, false
}

func (p *Parser) errorf(code diag.Code, sp source.Span, format string, args ...interface{}) {
	p.sink.Errorf(code, sp, format, args...)
}

// terminator consumes a statement terminator (Newline, `;`, or being
// positioned at a closing delimiter/EOF, which implicitly terminates).
func (p *Parser) terminator() {
	if p.cur().Kind == lexer.Newline {
		p.advance()
		return
	}
	if p.isOp(";") {
		p.advance()
		return
	}
	if p.isOp("}") || p.atEOF() {
		return
	}
	p.errorf(diag.ESrcMissingTerminator, p.cur().Span, "missing statement terminator before %q", p.cur().Literal)
}

// atClosingOnLaterLine reports whether the cursor sits on a closing
// delimiter that begins strictly after startLine — the trailing-comma
// rule of spec.md §3.2/§4.1.
func (p *Parser) atClosingOnLaterLine(closer string, startLine int) bool {
	return p.isOp(closer) && p.cur().Span.Start.Line > startLine
}

// allowTrailingComma consumes a `,` if one is present. It reports
// E-SRC-0521 only when the comma is followed by closer on the same
// line; a closer on a later line, or any other token, is accepted.
func (p *Parser) allowTrailingComma(closer string, commaLine int) {
	if !p.isOp(",") {
		return
	}
	comma := p.advance()
	if p.isOp(closer) && p.cur().Span.Start.Line > comma.Span.Start.Line {
		return
	}
	// A non-trailing comma here means the caller's list loop will pick
	// the next element back up; only flag the case that looks like an
	// intended-but-malformed trailing comma (closer on the same line).
	if p.isOp(closer) {
		p.errorf(diag.ESrcTrailingComma, comma.Span, "trailing comma must be followed by a closing delimiter on a later line")
	}
	_ = commaLine
}

// Parse runs the full item-loop over the token stream, producing a
// *ast.File. A malformed item syncs to SyncItem and is recorded as an
// *ast.ErrorItem so the rest of the file is still analyzed (spec.md §4.1).
func Parse(file *source.File, toks []lexer.Token, docs []lexer.DocComment, unsafe []source.Span, sink *diag.Sink) *ast.File {
	p := New(file, toks, unsafe, sink)
	start := p.cur().Span
	f := &ast.File{}
	for !p.atEOF() {
		p.skipNewlines()
		if p.atEOF() {
			break
		}
		item := p.parseItem()
		if item != nil {
			f.Items = append(f.Items, item)
		}
	}
	end := p.cur().Span
	f.SetSpan(source.Between(start, end))
	ast.AttachDocs(f, docs)
	return f
}

package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/source"
)

func parseSrc(t *testing.T, name, src string) *ast.File {
	t.Helper()
	f := source.NewFile(name, []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	sink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, sink)
	require.False(t, sink.HasErrors(), "unexpected parse errors for %q: %v", src, sink.All())
	return file
}

func hasCode(sink *diag.Sink, code diag.Code) bool {
	for _, d := range sink.All() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestResolveStaticReference(t *testing.T) {
	file := parseSrc(t, "test://a", "static let x: i32 = 1\nstatic let y: i32 = x\n")
	sink := diag.NewSink()
	res := Resolve([]*ast.File{file}, sink)
	require.False(t, sink.HasErrors())
	require.Contains(t, res.Values, "x")

	y := file.Items[1].(*ast.StaticItem)
	ident := y.Value.(*ast.Ident)
	sym, ok := res.Lookup(ident)
	require.True(t, ok)
	require.Equal(t, "x", sym.Name)
}

func TestResolveUnknownIdentifier(t *testing.T) {
	file := parseSrc(t, "test://a", "static let y: i32 = nope\n")
	sink := diag.NewSink()
	Resolve([]*ast.File{file}, sink)
	require.True(t, hasCode(sink, diag.ESemUnresolved))
}

func TestResolveDuplicateDeclaration(t *testing.T) {
	file := parseSrc(t, "test://a", "procedure f() {}\nprocedure f() {}\n")
	sink := diag.NewSink()
	Resolve([]*ast.File{file}, sink)
	require.True(t, hasCode(sink, diag.ESemDuplicateDecl))
}

func TestResolveLetShadowRequiresKeyword(t *testing.T) {
	file := parseSrc(t, "test://a", "procedure f() { let x: i32 = 1\nlet x: i32 = 2 }\n")
	sink := diag.NewSink()
	Resolve([]*ast.File{file}, sink)
	require.True(t, hasCode(sink, diag.ESemDuplicateDecl))
}

func TestResolveShadowLetAllowsRebind(t *testing.T) {
	file := parseSrc(t, "test://a", "procedure f() { let x: i32 = 1\nshadow let x: i32 = 2 }\n")
	sink := diag.NewSink()
	Resolve([]*ast.File{file}, sink)
	require.False(t, hasCode(sink, diag.ESemDuplicateDecl))
}

func TestResolveNestedScopeShadowNeedsNoKeyword(t *testing.T) {
	file := parseSrc(t, "test://a", "procedure f() { let x: i32 = 1\nif true { let x: i32 = 2 } }\n")
	sink := diag.NewSink()
	Resolve([]*ast.File{file}, sink)
	require.False(t, hasCode(sink, diag.ESemDuplicateDecl))
}

func TestResolvePrivateVisibilityCrossFile(t *testing.T) {
	a := parseSrc(t, "test://a", "private procedure helper() {}\n")
	b := parseSrc(t, "test://b", "procedure caller() { helper() }\n")
	sink := diag.NewSink()
	Resolve([]*ast.File{a, b}, sink)
	require.True(t, hasCode(sink, diag.ESemVisibility))
}

func TestResolveRecordFieldType(t *testing.T) {
	file := parseSrc(t, "test://a", "record Point { x: i32, y: i32 }\nstatic let origin: Point = Point { x: 0, y: 0 }\n")
	sink := diag.NewSink()
	res := Resolve([]*ast.File{file}, sink)
	require.False(t, sink.HasErrors())
	require.Contains(t, res.Sigma, "Point")
}

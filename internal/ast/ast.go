// Package ast defines Cursive0's surface syntax tree: one tagged
// struct per construct (no inheritance), each carrying exactly one
// span, per spec.md §3.2.
package ast

import "github.com/cursive-lang/cursive0/internal/source"

// Node is implemented by every AST type.
type Node interface {
	Span() source.Span
}

// Expr, Stmt, Type, Pattern, Item mark the five surface categories
// (spec.md §3.2). A concrete node may implement more than one: a bare
// identifier is both Expr and Pattern.
type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type TypeExpr interface {
	Node
	typeNode()
}

type Pattern interface {
	Node
	patternNode()
}

type Item interface {
	Node
	itemNode()
}

type Base struct{ Sp source.Span }

func (b Base) Span() source.Span { return b.Sp }

// SetSpan lets a builder (the parser) stamp a node's span after
// construction, e.g. once a composite's full extent is known.
func (b *Base) SetSpan(sp source.Span) { b.Sp = sp }

// Visibility is the declared visibility of an Item.
type Visibility int

const (
	VisPrivate Visibility = iota
	VisInternal
	VisProtected
	VisPublic
)

// Attribute is an `[[ident(args...)]]` annotation preceding an item,
// e.g. `[[allow(W-EXHAUST)]]` (spec.md §7, supplemented per
// SPEC_FULL.md §3 from original_source's attribute grammar).
type Attribute struct {
	Name string
	Args []string
	Sp   source.Span
}

// Doc is one attached doc comment, kept verbatim.
type Doc struct {
	Text string
	Sp   source.Span
}

// GenericParam is a single `<T: Bound, ...>` generic parameter.
type GenericParam struct {
	Name   string
	Bounds []TypeExpr
	Sp     source.Span
}

// WhereClause holds `where` predicates attached to a generic
// declaration (distinct from a refinement type's `where {P}`).
type WhereClause struct {
	Predicates []Expr
	Sp         source.Span
}

// File is one parsed translation unit.
type File struct {
	Base
	ModuleDoc []Doc
	Items     []Item
}

// ErrorItem is the parser's recovery sentinel: it never participates
// in type checking (spec.md §3.2).
type ErrorItem struct {
	Base
}

func (*ErrorItem) itemNode() {}

// Import is `import path::to::module (a, b, ...)?`.
type Import struct {
	Base
	Path     []string
	Selected []string // empty = whole-module import
}

func (*Import) itemNode() {}

// Using introduces an alias, not a new declaration (spec.md §4.2).
type Using struct {
	Base
	Path  []string
	Alias string
}

func (*Using) itemNode() {}

// StaticItem is a module-scope `static let`/`static var`.
type StaticItem struct {
	Base
	Vis      Visibility
	Mutable  bool
	Name     string
	Type     TypeExpr // optional
	Value    Expr
	Attrs    []Attribute
	Docs     []Doc
}

func (*StaticItem) itemNode() {}

// Param is one procedure parameter.
type Param struct {
	Name string
	Type TypeExpr
	Move bool // `move` parameter: consumes its argument (spec.md §4.3)
	Sp   source.Span
}

// Contract is a `|= pre => post` clause (spec.md §4.3).
type Contract struct {
	Pre  Expr
	Post Expr
	Sp   source.Span
}

// ProcedureItem is a `procedure` declaration, including `extern` ones.
type ProcedureItem struct {
	Base
	Vis       Visibility
	Extern    bool
	Pure      bool
	Name      string
	Generics  []GenericParam
	Where     *WhereClause
	Receiver  *Param // shorthand-desugared `~`/`~!`/`~%` receiver, or explicit self param
	Params    []Param
	Return    TypeExpr
	Contracts []Contract
	Body      *Block // nil for `extern`
	Attrs     []Attribute
	Docs      []Doc
}

func (*ProcedureItem) itemNode() {}

// Field is one record/enum-variant field.
type Field struct {
	Name string
	Type TypeExpr
	Sp   source.Span
}

// RecordItem is a `record` declaration.
type RecordItem struct {
	Base
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Where    *WhereClause
	Fields   []Field
	Attrs    []Attribute
	Docs     []Doc
}

func (*RecordItem) itemNode() {}

// EnumVariant is one `enum` case, with an optional tuple- or
// record-shaped payload.
type EnumVariant struct {
	Name         string
	TuplePayload []TypeExpr
	RecordFields []Field
	Sp           source.Span
}

// EnumItem is an `enum` declaration.
type EnumItem struct {
	Base
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Where    *WhereClause
	Variants []EnumVariant
	Attrs    []Attribute
	Docs     []Doc
}

func (*EnumItem) itemNode() {}

// ModalState is one `@State { fields }` block of a modal declaration,
// plus the transition methods declared within it.
type ModalState struct {
	Name       string
	Fields     []Field
	Transitions []*ProcedureItem // methods with a target-state return
	Sp         source.Span
}

// ModalItem is a `modal` declaration (spec.md §3.2, §4.5).
type ModalItem struct {
	Base
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Where    *WhereClause
	States   []ModalState
	Attrs    []Attribute
	Docs     []Doc
}

func (*ModalItem) itemNode() {}

// ClassItem declares a capability/trait-like bound usable in `where`
// clauses and generic bounds.
type ClassItem struct {
	Base
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Methods  []*ProcedureItem // signatures only (no Body) unless a default
	Attrs    []Attribute
	Docs     []Doc
}

func (*ClassItem) itemNode() {}

// TypeAliasItem is `type Name<generics> = Type`.
type TypeAliasItem struct {
	Base
	Vis      Visibility
	Name     string
	Generics []GenericParam
	Target   TypeExpr
	Attrs    []Attribute
	Docs     []Doc
}

func (*TypeAliasItem) itemNode() {}

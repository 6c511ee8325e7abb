package ast

// ErrorPattern is the parser's recovery sentinel for patterns.
type ErrorPattern struct{ Base }

func (*ErrorPattern) patternNode() {}

// WildcardPattern is `_`.
type WildcardPattern struct{ Base }

func (*WildcardPattern) patternNode() {}

// TypedBindingPattern is `name: T`, binding with an explicit type
// ascription (used in e.g. closure/match-arm parameters).
type TypedBindingPattern struct {
	Base
	Name string
	Type TypeExpr
}

func (*TypedBindingPattern) patternNode() {}

// TuplePattern is `(p, p, ...)`.
type TuplePattern struct {
	Base
	Elems []Pattern
}

func (*TuplePattern) patternNode() {}

// FieldPattern is one `name: pattern` entry of a record pattern
// (shorthand `name` desugars to `name: name` by the parser).
type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// RecordPattern is `Type { field: pat, ... }`.
type RecordPattern struct {
	Base
	Type   TypeExpr // optional type ascription
	Fields []FieldPattern
	Rest   bool // trailing `..` "ignore remaining fields"
}

func (*RecordPattern) patternNode() {}

// EnumPattern is `Type::Variant(p, ...)` or `Type::Variant { fields }`.
type EnumPattern struct {
	Base
	Type         TypeExpr
	Variant      string
	TuplePayload []Pattern
	RecordFields []FieldPattern
}

func (*EnumPattern) patternNode() {}

// ModalPattern is `Type@State(p, ...)` / `Type@State { fields }`
// (spec.md §3.2: "modal (state + optional record payload)").
type ModalPattern struct {
	Base
	Type         TypeExpr
	State        string
	RecordFields []FieldPattern
}

func (*ModalPattern) patternNode() {}

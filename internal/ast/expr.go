package ast

import "github.com/cursive-lang/cursive0/internal/source"

// ErrorExpr is the parser's recovery sentinel for expressions; absorbed
// and replaced by `!` before type checking (spec.md §3.2).
type ErrorExpr struct{ Base }

func (*ErrorExpr) exprNode() {}

// LiteralKind distinguishes the literal forms.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
	LitNull
	LitUnit
)

// Literal is any scalar literal.
type Literal struct {
	Base
	Kind  LiteralKind
	Raw   string
	Value interface{}
}

func (*Literal) exprNode()    {}
func (*Literal) patternNode() {}

// Ident is a bare identifier, usable as expression or pattern binder.
type Ident struct {
	Base
	Name string
}

func (*Ident) exprNode()    {}
func (*Ident) patternNode() {}

// PathExpr is `M::N::item`, optionally with explicit generic args
// `M::N<A,...>`.
type PathExpr struct {
	Base
	Segments []string
	Generics []TypeExpr
}

func (*PathExpr) exprNode() {}

// FieldAccess is `e.name`.
type FieldAccess struct {
	Base
	Target Expr
	Name   string
}

func (*FieldAccess) exprNode() {}

// TupleAccess is `e.0`.
type TupleAccess struct {
	Base
	Target Expr
	Index  int
}

func (*TupleAccess) exprNode() {}

// IndexExpr is `e[i]`.
type IndexExpr struct {
	Base
	Target Expr
	Index  Expr
}

func (*IndexExpr) exprNode() {}

// CallExpr is `f(args...)`.
type CallExpr struct {
	Base
	Callee Expr
	Args   []Arg
}

func (*CallExpr) exprNode() {}

// Arg is one call argument, possibly `move`d.
type Arg struct {
	Name  string // named argument, or "" for positional
	Value Expr
	Move  bool
	Sp    source.Span
}

// MethodCallExpr is `recv.method(args...)`.
type MethodCallExpr struct {
	Base
	Receiver Expr
	Method   string
	Generics []TypeExpr
	Args     []Arg
}

func (*MethodCallExpr) exprNode() {}

// QualifiedApplyExpr is `Type::method(args...)` (UFCS-style explicit
// qualification, as distinct from a resolved PathExpr call).
type QualifiedApplyExpr struct {
	Base
	Qualifier TypeExpr
	Method    string
	Args      []Arg
}

func (*QualifiedApplyExpr) exprNode() {}

// CastExpr is `e as T`.
type CastExpr struct {
	Base
	Value Expr
	Type  TypeExpr
}

func (*CastExpr) exprNode() {}

// IfExpr is `if cond { then } else { else }`, else optional.
type IfExpr struct {
	Base
	Cond Expr
	Then *Block
	Else Expr // *Block or *IfExpr or nil
}

func (*IfExpr) exprNode() {}

// MatchArm is one `pattern [if guard] => body` arm.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // optional
	Body    Expr
	Sp      source.Span
}

// MatchExpr is `match scrutinee { arms }`.
type MatchExpr struct {
	Base
	Scrutinee Expr
	Arms      []MatchArm
}

func (*MatchExpr) exprNode() {}

// RangeKind distinguishes the six range forms (spec.md §3.2).
type RangeKind int

const (
	RangeFull RangeKind = iota
	RangeFrom
	RangeTo
	RangeToInclusive
	RangeExclusive
	RangeInclusive
)

// RangeExpr is any of the six range forms; From/To are nil when absent.
type RangeExpr struct {
	Base
	Kind RangeKind
	From Expr
	To   Expr
}

func (*RangeExpr) exprNode()    {}
func (*RangeExpr) patternNode() {}

// UnaryOp is a prefix operator expression.
type UnaryOp struct {
	Base
	Op      string
	Operand Expr
}

func (*UnaryOp) exprNode() {}

// BinaryOp is an infix operator expression.
type BinaryOp struct {
	Base
	Op          string
	Left, Right Expr
}

func (*BinaryOp) exprNode() {}

// DerefExpr is `*e`.
type DerefExpr struct {
	Base
	Operand Expr
}

func (*DerefExpr) exprNode() {}

// AddrOfExpr is `&e` / `&mut e` style address-of, tagged by permission.
type AddrOfExpr struct {
	Base
	Operand    Expr
	Permission string // "const" | "unique" | "shared"
}

func (*AddrOfExpr) exprNode() {}

// MoveExpr is `move e`.
type MoveExpr struct {
	Base
	Operand Expr
}

func (*MoveExpr) exprNode() {}

// AllocExpr is `^expr`, allocating into the innermost active region.
type AllocExpr struct {
	Base
	Value  Expr
	Region string // named target region via `alloc(R, expr)`, or "" for `^expr`
}

func (*AllocExpr) exprNode() {}

// TransmuteExpr is `transmute<T>(e)`, legal only inside an unsafe span.
type TransmuteExpr struct {
	Base
	Value      Expr
	TargetType TypeExpr
}

func (*TransmuteExpr) exprNode() {}

// PropagateExpr is `e?`.
type PropagateExpr struct {
	Base
	Operand Expr
}

func (*PropagateExpr) exprNode() {}

// FieldInit is one `name: value` entry of a record/enum-record literal.
type FieldInit struct {
	Name  string
	Value Expr
	Sp    source.Span
}

// RecordLiteral is `Type { field: value, ... }`.
type RecordLiteral struct {
	Base
	Type   TypeExpr
	Fields []FieldInit
	Spread Expr // optional `..Base` functional-update source
}

func (*RecordLiteral) exprNode() {}

// EnumLiteral is `Type::Variant(args...)` or `Type::Variant { fields }`.
type EnumLiteral struct {
	Base
	Type         TypeExpr
	Variant      string
	TuplePayload []Expr
	RecordFields []FieldInit
}

func (*EnumLiteral) exprNode() {}

// TupleLiteral is `(e, e, ...)` with 0 or ≥2 elements, or `(e,)`.
type TupleLiteral struct {
	Base
	Elems []Expr
}

func (*TupleLiteral) exprNode() {}

// ArrayLiteral is `[e, e, ...]`.
type ArrayLiteral struct {
	Base
	Elems []Expr
}

func (*ArrayLiteral) exprNode() {}

// ArrayRepeat is `[e; N]`.
type ArrayRepeat struct {
	Base
	Value Expr
	Count Expr
}

func (*ArrayRepeat) exprNode() {}

// SizeofExpr is `sizeof<T>()` or `sizeof(e)`.
type SizeofExpr struct {
	Base
	Type TypeExpr
	Of   Expr
}

func (*SizeofExpr) exprNode() {}

// AlignofExpr is `alignof<T>()` or `alignof(e)`.
type AlignofExpr struct {
	Base
	Type TypeExpr
	Of   Expr
}

func (*AlignofExpr) exprNode() {}

// Block is `{ stmts... [tail_expr] }`.
type Block struct {
	Base
	Stmts []Stmt
	Tail  Expr // optional trailing expression value
}

func (*Block) exprNode() {}

// UnsafeBlockExpr is `unsafe { block }` used in expression position.
type UnsafeBlockExpr struct {
	Base
	Body *Block
}

func (*UnsafeBlockExpr) exprNode() {}

// YieldExpr is `yield e` or `yield release e` (spec.md §4.5, §5).
type YieldExpr struct {
	Base
	Value   Expr
	Release bool
}

func (*YieldExpr) exprNode() {}

// YieldFromExpr is `yield-from source`.
type YieldFromExpr struct {
	Base
	Source Expr
}

func (*YieldFromExpr) exprNode() {}

// SyncExpr is `sync(e)`.
type SyncExpr struct {
	Base
	Operand Expr
}

func (*SyncExpr) exprNode() {}

// RaceArm is one arm of a `race { ... }` block.
type RaceArm struct {
	Name string // optional binder for the arm's async value
	Expr Expr
	Sp   source.Span
}

// RaceExpr is `race { arms }`.
type RaceExpr struct {
	Base
	Arms []RaceArm
}

func (*RaceExpr) exprNode() {}

// AllExpr is `all(asyncs...)`.
type AllExpr struct {
	Base
	Operands []Expr
}

func (*AllExpr) exprNode() {}

// ParallelExpr is `parallel ctx.<domain>() { body }` (spec.md §4.6).
type ParallelExpr struct {
	Base
	Domain string // "cpu" | "inline" (spec.md §9 open question)
	Cancel Expr   // optional cancel-token arg
	Name   string // optional debug name
	Body   *Block
}

func (*ParallelExpr) exprNode() {}

// SpawnExpr is `spawn { body }` or `spawn expr`.
type SpawnExpr struct {
	Base
	Body Expr
}

func (*SpawnExpr) exprNode() {}

// WaitExpr is `wait(h)`.
type WaitExpr struct {
	Base
	Handle Expr
}

func (*WaitExpr) exprNode() {}

// DispatchOptions hold the optional `[reduce: op, ordered, chunk: n]`
// modifiers (spec.md §4.6).
type DispatchOptions struct {
	ReduceOp string
	Ordered  bool
	Chunk    Expr
}

// DispatchExpr is `dispatch i in range { body }`.
type DispatchExpr struct {
	Base
	Binder  string
	Range   Expr
	Opts    DispatchOptions
	Body    *Block
}

func (*DispatchExpr) exprNode() {}

// KeyBlockExpr is `#k { body }`, the key-scoped block of spec.md §5.
type KeyBlockExpr struct {
	Base
	KeyName string
	Perm    string // "const" | "unique" | "shared"
	Body    *Block
}

func (*KeyBlockExpr) exprNode() {}

// WidenExpr is `widen e`.
type WidenExpr struct {
	Base
	Operand Expr
}

func (*WidenExpr) exprNode() {}

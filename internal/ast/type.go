package ast

// ErrorType is the parser's recovery sentinel for types.
type ErrorType struct{ Base }

func (*ErrorType) typeNode() {}

// PrimitiveType names a built-in scalar (spec.md §3.2's primitive list).
type PrimitiveType struct {
	Base
	Name string // "i8".."u128", "isize", "usize", "f16/32/64", "bool", "char", "()", "!"
}

func (*PrimitiveType) typeNode() {}

// StringType is `string@State?` or `bytes@State?`.
type StringType struct {
	Base
	Bytes bool // true = `bytes`, false = `string`
	State string
}

func (*StringType) typeNode() {}

// PtrType is `Ptr<T>@State?`.
type PtrType struct {
	Base
	Elem  TypeExpr
	State string
}

func (*PtrType) typeNode() {}

// RawPtrType is `*imm T` / `*mut T`.
type RawPtrType struct {
	Base
	Elem TypeExpr
	Mut  bool
}

func (*RawPtrType) typeNode() {}

// TupleType is `(T, T, ...)`.
type TupleType struct {
	Base
	Elems []TypeExpr
}

func (*TupleType) typeNode() {}

// ArrayType is `[T; N]` with a constant-expression length.
type ArrayType struct {
	Base
	Elem TypeExpr
	Len  Expr
}

func (*ArrayType) typeNode() {}

// SliceType is `[T]`.
type SliceType struct {
	Base
	Elem TypeExpr
}

func (*SliceType) typeNode() {}

// UnionType is `A | B | ...`, unordered and idempotent at the
// declaration level (normalization happens during interning).
type UnionType struct {
	Base
	Members []TypeExpr
}

func (*UnionType) typeNode() {}

// FuncType is `(T, ...) -> R`.
type FuncType struct {
	Base
	Params []TypeExpr
	Return TypeExpr
}

func (*FuncType) typeNode() {}

// PathType is `M::N<A, ...>`.
type PathType struct {
	Base
	Segments []string
	Args     []TypeExpr
}

func (*PathType) typeNode() {}

// ModalStateType is `M@State<args>`.
type ModalStateType struct {
	Base
	Segments []string
	Args     []TypeExpr
	State    string
}

func (*ModalStateType) typeNode() {}

// PermType is `const/unique/shared T`.
type PermType struct {
	Base
	Perm string // "const" | "unique" | "shared"
	Elem TypeExpr
}

func (*PermType) typeNode() {}

// RefinementType is `T where {predicate}` (predicate refers to `self`).
type RefinementType struct {
	Base
	Underlying TypeExpr
	Predicate  Expr
}

func (*RefinementType) typeNode() {}

// OpaqueType is `opaque P`.
type OpaqueType struct {
	Base
	Path []string
}

func (*OpaqueType) typeNode() {}

// DynType is `$Class`, a dynamically-dispatched capability/class value.
type DynType struct {
	Base
	ClassPath []string
}

func (*DynType) typeNode() {}

// AsyncType is `Async<Out, In, Result, Err>` (spec.md §4.5).
type AsyncType struct {
	Base
	Out, In, Result, Err TypeExpr
}

func (*AsyncType) typeNode() {}

// Package ir implements the typed intermediate representation of
// spec.md §3.4: one node family per construct the checked-and-resolved
// AST lowers to, each carrying the analysis type of the value it
// produces, plus the printer (print.go) the backend collaborator, the
// `cmd/cursive0` lower/repl commands and the pipeline tests use to
// inspect a lowering.
package ir

import (
	"github.com/cursive-lang/cursive0/internal/source"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Node is the base interface every IR node satisfies, mirroring the
// teacher's CoreExpr: a stable ID (assigned by whatever lowering pass
// built the tree, not by this package), the span it lowers from, and
// its analysis type.
type Node interface {
	ID() uint64
	Span() source.Span
	Type() types.Type
	irNode()
}

// Base is the embeddable common state every node carries.
type Base struct {
	NodeID uint64
	Sp     source.Span
	Typ    types.Type
}

func (b Base) ID() uint64        { return b.NodeID }
func (b Base) Span() source.Span { return b.Sp }
func (b Base) Type() types.Type  { return b.Typ }

// ValueInfo is the derived placement metadata spec.md §3.4 says gets
// attached to an opaque value "so the backend emits the right GEPs
// without re-doing analysis" — computed once during lowering, then
// carried on the node rather than recomputed by the backend.
type ValueInfo struct {
	Kind   ValueInfoKind
	Offset uint64 // field-offset, enum-payload-offset
	Index  int    // tuple-index, enum-variant-index
	Name   string // field name, for diagnostics
}

type ValueInfoKind int

const (
	NoInfo ValueInfoKind = iota
	FieldOffset
	TupleIndex
	SliceInfo
	EnumPayloadIndex
	RecordLiteralInfo
	ModalWidenInfo
)

// Opaque wraps Operand with placement metadata the backend needs but
// this IR otherwise treats as a black box (an already-computed
// field/tuple/enum-payload access).
type Opaque struct {
	Base
	Operand Node
	Info    ValueInfo
}

func (*Opaque) irNode() {}

// --- ordering / scoping ---

type Seq struct {
	Base
	Exprs []Node
}

func (*Seq) irNode() {}

type Block struct {
	Base
	Body []Node
	Tail Node
}

func (*Block) irNode() {}

// --- variables ---

type BindVar struct {
	Base
	Name  string
	Value Node
}

func (*BindVar) irNode() {}

type StoreVar struct {
	Base
	Name  string
	Value Node
}

func (*StoreVar) irNode() {}

// StoreVarNoDrop skips running the overwritten value's drop glue, used
// when the lowering has already proven the old value was moved out
// (spec.md §3.5's ownership transfer) rather than discarded live.
type StoreVarNoDrop struct {
	Base
	Name  string
	Value Node
}

func (*StoreVarNoDrop) irNode() {}

type ReadVar struct {
	Base
	Name string
}

func (*ReadVar) irNode() {}

type StoreGlobal struct {
	Base
	Path  string
	Value Node
}

func (*StoreGlobal) irNode() {}

// --- calls ---

// Call is tagged with Symbol, the mangled callee name `internal/symbol`
// produces, so the backend can resolve it without re-running name
// resolution.
type Call struct {
	Base
	Symbol string
	Callee Node
	Args   []Node
}

func (*Call) irNode() {}

// CallVTable is a dyn-dispatch call: Receiver carries both the data
// pointer and the vtable spec.md §3.4 names "data+vtable dyn dispatch".
type CallVTable struct {
	Base
	Receiver Node
	Method   string
	Args     []Node
}

func (*CallVTable) irNode() {}

// --- operators / conversions ---

type UnaryOp struct {
	Base
	Op      string
	Operand Node
}

func (*UnaryOp) irNode() {}

type BinaryOp struct {
	Base
	Op          string
	Left, Right Node
}

func (*BinaryOp) irNode() {}

type Cast struct {
	Base
	Value Node
}

func (*Cast) irNode() {}

type Transmute struct {
	Base
	Value Node
}

func (*Transmute) irNode() {}

// --- pointers ---

type ReadPtr struct {
	Base
	Ptr Node
}

func (*ReadPtr) irNode() {}

type WritePtr struct {
	Base
	Ptr   Node
	Value Node
}

func (*WritePtr) irNode() {}

type AddrOf struct {
	Base
	Operand Node
}

func (*AddrOf) irNode() {}

// --- control flow ---

type If struct {
	Base
	Cond, Then, Else Node
}

func (*If) irNode() {}

// Loop is infinite when Cond is nil, head-conditional otherwise.
type Loop struct {
	Base
	Cond Node
	Body Node
}

func (*Loop) irNode() {}

type MatchArm struct {
	Pattern string // printable pattern form; full structure lives on the AST this lowered from
	Guard   Node
	Body    Node
}

type Match struct {
	Base
	Scrutinee Node
	Arms      []MatchArm
}

func (*Match) irNode() {}

// Branch/Phi are the basic-block-level forms a backend targeting SSA
// can lower Match/If/Loop into; this tree-shaped IR only emits them
// where a lowering pass has explicitly flattened to blocks (the
// default lowering emits If/Match/Loop directly).
type Branch struct {
	Base
	Target string
}

func (*Branch) irNode() {}

type Phi struct {
	Base
	Inputs []Node
}

func (*Phi) irNode() {}

// --- regions / frames ---

type Alloc struct {
	Base
	Value  Node
	Region string // "" when not region-targeted
}

func (*Alloc) irNode() {}

type Region struct {
	Base
	Alias string
	Body  Node
}

func (*Region) irNode() {}

type Frame struct {
	Base
	Body Node
}

func (*Frame) irNode() {}

type Defer struct {
	Base
	Body Node
}

func (*Defer) irNode() {}

// --- panics / poison ---

type ClearPanic struct{ Base }

func (*ClearPanic) irNode() {}

// PanicCheck follows a Call, propagating the callee's panic-out slot
// into the caller's own.
type PanicCheck struct {
	Base
	Call Node
}

func (*PanicCheck) irNode() {}

// LowerPanic stores {true, code} into the current procedure's
// panic-out slot and returns a zero value (spec.md §4.7).
type LowerPanic struct {
	Base
	Code uint32
}

func (*LowerPanic) irNode() {}

type InitPanicHandle struct{ Base }

func (*InitPanicHandle) irNode() {}

type CheckPoison struct {
	Base
	Module string
}

func (*CheckPoison) irNode() {}

type CheckIndex struct {
	Base
	Target, Index Node
}

func (*CheckIndex) irNode() {}

type CheckRange struct {
	Base
	Target, From, To Node
}

func (*CheckRange) irNode() {}

type CheckSliceLen struct {
	Base
	Target Node
}

func (*CheckSliceLen) irNode() {}

type CheckOp struct {
	Base
	Op       string
	Operands []Node
}

func (*CheckOp) irNode() {}

type CheckCast struct {
	Base
	Value Node
}

func (*CheckCast) irNode() {}

// --- modal / async ---

type Yield struct {
	Base
	Value   Node
	Release bool
}

func (*Yield) irNode() {}

type YieldFrom struct {
	Base
	Source Node
}

func (*YieldFrom) irNode() {}

type Sync struct {
	Base
	Operand Node
}

func (*Sync) irNode() {}

type RaceReturn struct {
	Base
	Name  string
	Value Node
}

func (*RaceReturn) irNode() {}

type RaceYield struct {
	Base
	Arms []Node
}

func (*RaceYield) irNode() {}

type All struct {
	Base
	Operands []Node
}

func (*All) irNode() {}

type AsyncComplete struct {
	Base
	Value Node
}

func (*AsyncComplete) irNode() {}

// --- parallelism ---

type Parallel struct {
	Base
	Body Node
}

func (*Parallel) irNode() {}

type Spawn struct {
	Base
	Body Node
}

func (*Spawn) irNode() {}

type Wait struct {
	Base
	Handle Node
}

func (*Wait) irNode() {}

type Dispatch struct {
	Base
	Range    Node
	Body     Node
	ReduceOp string
	Ordered  bool
	Chunk    Node
}

func (*Dispatch) irNode() {}

// --- terminators ---

type Return struct {
	Base
	Value Node
}

func (*Return) irNode() {}

type Result struct {
	Base
	Value Node
}

func (*Result) irNode() {}

type Break struct {
	Base
	Label string
	Value Node
}

func (*Break) irNode() {}

type Continue struct {
	Base
	Label string
}

func (*Continue) irNode() {}

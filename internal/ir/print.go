package ir

import (
	"fmt"
	"strings"
)

// Sprint renders n as an indented S-expression, the tree-shaped
// analogue of the teacher's flat `CoreExpr.String()` methods — flat
// one-liners stop being readable once a node can nest `If`/`Match`/
// `Loop`/`Block` arbitrarily deep, so this is one recursive printer
// keyed by node kind rather than forty-odd near-identical String()
// methods differing only in which fields they interpolate.
func Sprint(n Node) string {
	var b strings.Builder
	print1(&b, n, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func printChild(b *strings.Builder, label string, n Node, depth int) {
	indent(b, depth+1)
	b.WriteString(label)
	b.WriteString(":\n")
	print1(b, n, depth+2)
}

func print1(b *strings.Builder, n Node, depth int) {
	indent(b, depth)
	if n == nil {
		b.WriteString("<nil>\n")
		return
	}
	head := fmt.Sprintf("%T", n)
	head = strings.TrimPrefix(head, "*ir.")
	typ := "?"
	if t := n.Type(); t != nil {
		typ = t.String()
	}
	fmt.Fprintf(b, "(%s :type %s\n", head, typ)

	switch x := n.(type) {
	case *Seq:
		for i, e := range x.Exprs {
			printChild(b, fmt.Sprintf("expr%d", i), e, depth)
		}
	case *Block:
		for i, s := range x.Body {
			printChild(b, fmt.Sprintf("stmt%d", i), s, depth)
		}
		if x.Tail != nil {
			printChild(b, "tail", x.Tail, depth)
		}
	case *BindVar:
		printField(b, depth, "name", x.Name)
		printChild(b, "value", x.Value, depth)
	case *StoreVar:
		printField(b, depth, "name", x.Name)
		printChild(b, "value", x.Value, depth)
	case *StoreVarNoDrop:
		printField(b, depth, "name", x.Name)
		printChild(b, "value", x.Value, depth)
	case *ReadVar:
		printField(b, depth, "name", x.Name)
	case *StoreGlobal:
		printField(b, depth, "path", x.Path)
		printChild(b, "value", x.Value, depth)
	case *Call:
		printField(b, depth, "symbol", x.Symbol)
		printChild(b, "callee", x.Callee, depth)
		for i, a := range x.Args {
			printChild(b, fmt.Sprintf("arg%d", i), a, depth)
		}
	case *CallVTable:
		printField(b, depth, "method", x.Method)
		printChild(b, "receiver", x.Receiver, depth)
		for i, a := range x.Args {
			printChild(b, fmt.Sprintf("arg%d", i), a, depth)
		}
	case *UnaryOp:
		printField(b, depth, "op", x.Op)
		printChild(b, "operand", x.Operand, depth)
	case *BinaryOp:
		printField(b, depth, "op", x.Op)
		printChild(b, "left", x.Left, depth)
		printChild(b, "right", x.Right, depth)
	case *Cast:
		printChild(b, "value", x.Value, depth)
	case *Transmute:
		printChild(b, "value", x.Value, depth)
	case *ReadPtr:
		printChild(b, "ptr", x.Ptr, depth)
	case *WritePtr:
		printChild(b, "ptr", x.Ptr, depth)
		printChild(b, "value", x.Value, depth)
	case *AddrOf:
		printChild(b, "operand", x.Operand, depth)
	case *If:
		printChild(b, "cond", x.Cond, depth)
		printChild(b, "then", x.Then, depth)
		if x.Else != nil {
			printChild(b, "else", x.Else, depth)
		}
	case *Loop:
		if x.Cond != nil {
			printChild(b, "cond", x.Cond, depth)
		}
		printChild(b, "body", x.Body, depth)
	case *Match:
		printChild(b, "scrutinee", x.Scrutinee, depth)
		for i, arm := range x.Arms {
			indent(b, depth+1)
			fmt.Fprintf(b, "arm%d: %s\n", i, arm.Pattern)
			if arm.Guard != nil {
				printChild(b, "guard", arm.Guard, depth+1)
			}
			printChild(b, "body", arm.Body, depth+1)
		}
	case *Branch:
		printField(b, depth, "target", x.Target)
	case *Phi:
		for i, in := range x.Inputs {
			printChild(b, fmt.Sprintf("input%d", i), in, depth)
		}
	case *Alloc:
		printField(b, depth, "region", x.Region)
		printChild(b, "value", x.Value, depth)
	case *Region:
		printField(b, depth, "alias", x.Alias)
		printChild(b, "body", x.Body, depth)
	case *Frame:
		printChild(b, "body", x.Body, depth)
	case *Defer:
		printChild(b, "body", x.Body, depth)
	case *PanicCheck:
		printChild(b, "call", x.Call, depth)
	case *LowerPanic:
		printField(b, depth, "code", fmt.Sprintf("%d", x.Code))
	case *CheckPoison:
		printField(b, depth, "module", x.Module)
	case *CheckIndex:
		printChild(b, "target", x.Target, depth)
		printChild(b, "index", x.Index, depth)
	case *CheckRange:
		printChild(b, "target", x.Target, depth)
		printChild(b, "from", x.From, depth)
		printChild(b, "to", x.To, depth)
	case *CheckSliceLen:
		printChild(b, "target", x.Target, depth)
	case *CheckOp:
		printField(b, depth, "op", x.Op)
		for i, o := range x.Operands {
			printChild(b, fmt.Sprintf("operand%d", i), o, depth)
		}
	case *CheckCast:
		printChild(b, "value", x.Value, depth)
	case *Yield:
		printField(b, depth, "release", fmt.Sprintf("%v", x.Release))
		printChild(b, "value", x.Value, depth)
	case *YieldFrom:
		printChild(b, "source", x.Source, depth)
	case *Sync:
		printChild(b, "operand", x.Operand, depth)
	case *RaceReturn:
		printField(b, depth, "name", x.Name)
		printChild(b, "value", x.Value, depth)
	case *RaceYield:
		for i, a := range x.Arms {
			printChild(b, fmt.Sprintf("arm%d", i), a, depth)
		}
	case *All:
		for i, o := range x.Operands {
			printChild(b, fmt.Sprintf("operand%d", i), o, depth)
		}
	case *AsyncComplete:
		printChild(b, "value", x.Value, depth)
	case *Parallel:
		printChild(b, "body", x.Body, depth)
	case *Spawn:
		printChild(b, "body", x.Body, depth)
	case *Wait:
		printChild(b, "handle", x.Handle, depth)
	case *Dispatch:
		printField(b, depth, "reduce", x.ReduceOp)
		printField(b, depth, "ordered", fmt.Sprintf("%v", x.Ordered))
		printChild(b, "range", x.Range, depth)
		if x.Chunk != nil {
			printChild(b, "chunk", x.Chunk, depth)
		}
		printChild(b, "body", x.Body, depth)
	case *Return:
		if x.Value != nil {
			printChild(b, "value", x.Value, depth)
		}
	case *Result:
		printChild(b, "value", x.Value, depth)
	case *Break:
		printField(b, depth, "label", x.Label)
		if x.Value != nil {
			printChild(b, "value", x.Value, depth)
		}
	case *Continue:
		printField(b, depth, "label", x.Label)
	case *Opaque:
		printField(b, depth, "info-kind", infoKindName(x.Info.Kind))
		printChild(b, "operand", x.Operand, depth)
	case *ClearPanic, *InitPanicHandle:
		// leaf nodes, nothing further to print
	}

	indent(b, depth)
	b.WriteString(")\n")
}

func printField(b *strings.Builder, depth int, name, value string) {
	indent(b, depth+1)
	fmt.Fprintf(b, "%s: %q\n", name, value)
}

func infoKindName(k ValueInfoKind) string {
	switch k {
	case FieldOffset:
		return "field-offset"
	case TupleIndex:
		return "tuple-index"
	case SliceInfo:
		return "slice"
	case EnumPayloadIndex:
		return "enum-payload-index"
	case RecordLiteralInfo:
		return "record-literal"
	case ModalWidenInfo:
		return "modal-widen"
	default:
		return "none"
	}
}

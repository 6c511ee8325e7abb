// Package modal implements the modal layout planner and async
// state-machine synthesizer of spec.md §4.5: computing whether a modal
// declaration's states fold away into a niche-only representation or
// need an explicit discriminant, synthesizing the persistent frame an
// async procedure's suspend/resume points need, and enforcing the
// key-across-yield restriction (`E-CON-0213`).
package modal

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Kind distinguishes a modal's two possible representations.
type Kind int

const (
	Tagged Kind = iota
	Niche
)

// StateLayout is one state's contribution to the overall plan.
type StateLayout struct {
	Name   string
	Layout types.Layout
}

// Plan is a modal declaration's computed representation.
type Plan struct {
	Kind        Kind
	DiscType    string // "" for Niche, else the discriminant's integer primitive
	NicheState  string // the zero-payload state folded into the niche, if Kind == Niche
	States      []StateLayout
	Size, Align uint64
}

// PlanLayout computes decl's representation: niche-only when exactly
// one state carries no payload and the other (exactly one, to keep the
// niche decidable without a full bit-pattern solver) has a
// niche-bearing layout (a pointer, bool, or char somewhere in its
// representation — the same condition `internal/types`'s own two-
// variant union layout already applies to enums); tagged otherwise,
// with a discriminant sized to the state count.
func PlanLayout(tb *types.Table, decl *ast.ModalItem, args []types.Type) (Plan, bool) {
	return planLayout(tb, decl, args, true)
}

// PlanLayoutNoNiche is PlanLayout with niche-representation selection
// disabled (config.Config.NicheOptimization off), always producing a
// tagged layout — useful for debugging a lowering or backend against a
// fixed, uniform representation.
func PlanLayoutNoNiche(tb *types.Table, decl *ast.ModalItem, args []types.Type) (Plan, bool) {
	return planLayout(tb, decl, args, false)
}

func planLayout(tb *types.Table, decl *ast.ModalItem, args []types.Type, allowNiche bool) (Plan, bool) {
	states := make([]StateLayout, 0, len(decl.States))
	var maxSize, maxAlign uint64 = 0, 1
	emptyIdx := -1
	payloadCount := 0
	var solePayloadState string

	for i := range decl.States {
		st := &decl.States[i]
		t := tb.ModalState(decl.Name, args, st.Name)
		layout, ok := tb.LayoutOf(t)
		if !ok {
			return Plan{}, false
		}
		states = append(states, StateLayout{Name: st.Name, Layout: layout})
		if len(st.Fields) == 0 {
			emptyIdx = i
		} else {
			payloadCount++
			solePayloadState = st.Name
		}
		if layout.Size > maxSize {
			maxSize = layout.Size
		}
		if layout.Align > maxAlign {
			maxAlign = layout.Align
		}
	}

	if allowNiche && len(decl.States) == 2 && emptyIdx >= 0 && payloadCount == 1 {
		for _, sl := range states {
			if sl.Name == solePayloadState && sl.Layout.Niche != nil {
				return Plan{
					Kind:       Niche,
					NicheState: decl.States[emptyIdx].Name,
					States:     states,
					Size:       sl.Layout.Size,
					Align:      sl.Layout.Align,
				}, true
			}
		}
	}

	disc := discType(len(decl.States))
	discSize, discAlign := discLayout(disc)
	align := maxAlign
	if discAlign > align {
		align = discAlign
	}
	size := roundUp(discSize, maxAlign) + maxSize
	return Plan{
		Kind:     Tagged,
		DiscType: disc,
		States:   states,
		Size:     roundUp(size, align),
		Align:    align,
	}, true
}

func discType(stateCount int) string {
	switch {
	case stateCount <= 1<<8:
		return "u8"
	case stateCount <= 1<<16:
		return "u16"
	default:
		return "u32"
	}
}

func discLayout(name string) (size, align uint64) {
	switch name {
	case "u8":
		return 1, 1
	case "u16":
		return 2, 2
	default:
		return 4, 4
	}
}

func roundUp(n, align uint64) uint64 {
	if align == 0 {
		return n
	}
	return (n + align - 1) / align * align
}

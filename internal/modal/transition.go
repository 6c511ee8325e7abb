package modal

import (
	"fmt"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
)

// CheckTransitions validates every transition method declared on decl's
// states: its return type must name one of decl's own states, so the
// IR's `MoveState` node always has a statically known target.
func CheckTransitions(sink *diag.Sink, decl *ast.ModalItem) {
	names := make(map[string]bool, len(decl.States))
	for _, st := range decl.States {
		names[st.Name] = true
	}
	for _, st := range decl.States {
		for _, tr := range st.Transitions {
			target, ok := tr.Return.(*ast.ModalStateType)
			if !ok {
				sink.Errorf(diag.ETypMismatch, tr.Span(),
					"transition %q must return %s@<state>, found %s", tr.Name, decl.Name, describe(tr.Return))
				continue
			}
			if len(target.Segments) != 1 || target.Segments[0] != decl.Name {
				sink.Errorf(diag.ETypMismatch, tr.Span(),
					"transition %q must return a state of %s, not %s", tr.Name, decl.Name, target.Segments)
				continue
			}
			if !names[target.State] {
				sink.Errorf(diag.ETypMismatch, tr.Span(),
					"transition %q targets undeclared state %q of %s", tr.Name, target.State, decl.Name)
			}
		}
	}
}

func describe(t ast.TypeExpr) string {
	if t == nil {
		return "()"
	}
	return fmt.Sprintf("%T", t)
}

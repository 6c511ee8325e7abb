package region

import "github.com/cursive-lang/cursive0/internal/ast"

// AnalyzeFile runs the validity dataflow over every procedure body in
// f — top-level procedures, class default methods, and modal state
// transitions — the same set `internal/check.CheckFile` type-checks.
func (a *Analyzer) AnalyzeFile(f *ast.File) {
	for _, item := range f.Items {
		switch x := item.(type) {
		case *ast.ProcedureItem:
			a.AnalyzeProcedure(x)
		case *ast.ClassItem:
			for _, m := range x.Methods {
				if m.Body != nil {
					a.AnalyzeProcedure(m)
				}
			}
		case *ast.ModalItem:
			for _, st := range x.States {
				for _, m := range st.Transitions {
					if m.Body != nil {
						a.AnalyzeProcedure(m)
					}
				}
			}
		}
	}
}

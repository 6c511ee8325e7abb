package modal

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Result collects everything this package computes for one file: a
// layout plan per modal declaration and a frame per async procedure,
// keyed the way `internal/resolve` keys them so a later pipeline stage
// can join against the same symbol.
type Result struct {
	Plans  map[string]Plan  // modal name -> layout plan
	Frames map[string]Frame // procedure path (bare name, or Owner::Name) -> frame
}

// AnalyzeFile computes layout plans for every modal declaration, checks
// every transition's target state, synthesizes a frame for every async
// procedure, and enforces the key-across-yield restriction — the full
// set of checks spec.md §4.5 assigns to this stage. Niche-representation
// selection is enabled; use AnalyzeFileWithNiche(false, ...) to disable
// it module-wide (config.Config.NicheOptimization).
func AnalyzeFile(tb *types.Table, sink *diag.Sink, f *ast.File) Result {
	return AnalyzeFileWithNiche(tb, sink, f, true)
}

// AnalyzeFileWithNiche is AnalyzeFile with explicit control over
// whether modal layout planning may choose a niche representation.
func AnalyzeFileWithNiche(tb *types.Table, sink *diag.Sink, f *ast.File, allowNiche bool) Result {
	res := Result{Plans: make(map[string]Plan), Frames: make(map[string]Frame)}
	for _, item := range f.Items {
		switch x := item.(type) {
		case *ast.ModalItem:
			plan, ok := planLayout(tb, x, nil, allowNiche)
			if ok {
				res.Plans[x.Name] = plan
			}
			CheckTransitions(sink, x)
			for _, st := range x.States {
				for _, tr := range st.Transitions {
					analyzeProcedure(sink, res, x.Name+"::"+tr.Name, tr)
				}
			}
		case *ast.ProcedureItem:
			analyzeProcedure(sink, res, x.Name, x)
		case *ast.ClassItem:
			for _, m := range x.Methods {
				analyzeProcedure(sink, res, x.Name+"::"+m.Name, m)
			}
		}
	}
	return res
}

func analyzeProcedure(sink *diag.Sink, res Result, key string, decl *ast.ProcedureItem) {
	if decl.Body == nil {
		return
	}
	CheckKeyAcrossYield(sink, decl)
	if _, ok := decl.Return.(*ast.AsyncType); ok {
		res.Frames[key] = SynthesizeFrame(decl)
	}
}

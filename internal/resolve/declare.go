package resolve

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
)

// declareFile walks one file's top-level items, registering every type
// declaration (each modal state included, under its Modal::State path)
// into Sigma and every value declaration (statics, procedures, class
// methods, modal transitions) into Values (spec.md §4.2); modal states
// are not entered in Values. Duplicate paths are reported and the
// earlier declaration is kept (arbitrary but deterministic — whichever
// file order Resolve was called with).
func (r *resolver) declareFile(f *ast.File) {
	file := fileName(f)
	for _, item := range f.Items {
		r.declareItem(item, file)
	}
}

func (r *resolver) declareItem(item ast.Item, file string) {
	switch it := item.(type) {
	case *ast.RecordItem:
		r.defineType(&Symbol{Kind: KindRecord, Name: it.Name, Path: []string{it.Name}, Vis: it.Vis, DeclFile: file, Decl: it})
	case *ast.EnumItem:
		r.defineType(&Symbol{Kind: KindEnum, Name: it.Name, Path: []string{it.Name}, Vis: it.Vis, DeclFile: file, Decl: it})
	case *ast.TypeAliasItem:
		r.defineType(&Symbol{Kind: KindAlias, Name: it.Name, Path: []string{it.Name}, Vis: it.Vis, DeclFile: file, Decl: it})
	case *ast.ClassItem:
		r.defineType(&Symbol{Kind: KindClass, Name: it.Name, Path: []string{it.Name}, Vis: it.Vis, DeclFile: file, Decl: it})
		for _, m := range it.Methods {
			r.defineValue(&Symbol{Kind: KindProcedure, Name: m.Name, Path: []string{it.Name, m.Name}, Vis: m.Vis, OwnerType: it.Name, DeclFile: file, Decl: m})
		}
	case *ast.ModalItem:
		r.defineType(&Symbol{Kind: KindModal, Name: it.Name, Path: []string{it.Name}, Vis: it.Vis, DeclFile: file, Decl: it})
		for si := range it.States {
			st := &it.States[si]
			r.defineType(&Symbol{Kind: KindModalState, Name: st.Name, Path: []string{it.Name, st.Name}, Vis: it.Vis, OwnerType: it.Name, DeclFile: file, Decl: it})
			for _, tr := range st.Transitions {
				r.defineValue(&Symbol{Kind: KindModalTransition, Name: tr.Name, Path: []string{it.Name, st.Name, tr.Name}, Vis: tr.Vis, OwnerType: it.Name, DeclFile: file, Decl: tr})
			}
		}
	case *ast.ProcedureItem:
		// A top-level procedure is a free function: spec.md attaches
		// receivers only to transitions declared inside a modal state
		// block (handled in the ModalItem case above).
		r.defineValue(&Symbol{Kind: KindProcedure, Name: it.Name, Path: []string{it.Name}, Vis: it.Vis, DeclFile: file, Decl: it})
	case *ast.StaticItem:
		r.defineValue(&Symbol{Kind: KindStatic, Name: it.Name, Path: []string{it.Name}, Vis: it.Vis, DeclFile: file, Decl: it})
	case *ast.Import, *ast.Using, *ast.ErrorItem:
		// handled in the alias pass, or not a declaration at all.
	}
}

func (r *resolver) defineType(sym *Symbol) {
	key := joinPath(sym.Path)
	if prev, ok := r.result.Sigma[key]; ok {
		r.sink.Errorf(diag.ESemDuplicateDecl, sym.Decl.Span(), "duplicate declaration of type %q (previously declared as a %s)", key, prev.Kind)
		return
	}
	r.result.Sigma[key] = sym
}

func (r *resolver) defineValue(sym *Symbol) {
	key := joinPath(sym.Path)
	if prev, ok := r.result.Values[key]; ok {
		r.sink.Errorf(diag.ESemDuplicateDecl, sym.Decl.Span(), "duplicate declaration of %q (previously declared as a %s)", key, prev.Kind)
		return
	}
	r.result.Values[key] = sym
}

package resolve

import (
	"github.com/cursive-lang/cursive0/internal/ast"
)

// Kind distinguishes what a Symbol names.
type Kind int

const (
	KindRecord Kind = iota
	KindEnum
	KindModal
	KindModalState
	KindClass
	KindAlias
	KindProcedure
	KindModalTransition
	KindStatic
	KindParam
	KindLocal
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindModal:
		return "modal"
	case KindModalState:
		return "modal state"
	case KindClass:
		return "class"
	case KindAlias:
		return "type alias"
	case KindProcedure:
		return "procedure"
	case KindModalTransition:
		return "transition"
	case KindStatic:
		return "static"
	case KindParam:
		return "parameter"
	case KindLocal:
		return "local binding"
	case KindGeneric:
		return "generic parameter"
	default:
		return "symbol"
	}
}

// Symbol is a resolved declaration: a type, a value, or a local binding.
// Sigma (spec.md §2, §4.2) is the subset of Symbols with a type Kind;
// the value table is the subset with a value Kind. Locals never enter
// either table — they only ever live in a Scope.
type Symbol struct {
	Kind Kind
	Name string
	Path []string // qualified path; nil/empty for purely local bindings
	Vis  ast.Visibility

	// OwnerType names the enclosing record/enum/modal/class declaration
	// a member symbol belongs to (its procedures, transitions, fields),
	// used to decide `protected` visibility (spec.md §4.2): a protected
	// member is visible from code declared under the same owner.
	OwnerType string

	// DeclFile is the source file name the symbol was declared in,
	// used to enforce `private` (module-local) visibility: this
	// resolution pass treats every file passed to Resolve together as
	// one module, so `private` is file-scoped and `internal` is
	// batch-scoped (spec.md's crate boundary is an outer driver's
	// concept this single-binary pipeline does not model).
	DeclFile string

	Decl ast.Node // the declaring AST node (Item, Param, or pattern binder)
}

// QualifiedName returns the symbol's qualified name joined with "::", or its
// bare Name if it has no path (a local binding).
func (s *Symbol) QualifiedName() string {
	if len(s.Path) == 0 {
		return s.Name
	}
	joined := s.Path[0]
	for _, seg := range s.Path[1:] {
		joined += "::" + seg
	}
	return joined
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return ""
	}
	out := path[0]
	for _, seg := range path[1:] {
		out += "::" + seg
	}
	return out
}

package check

import (
	"strings"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// capabilityClasses are the distinguished class paths spec.md §4.3
// names: values of these wrapped `$Class` types only ever originate
// from the Context value passed to main, never from static init.
var capabilityClasses = map[string]bool{
	"FileSystem": true, "HeapAllocator": true, "ExecutionDomain": true, "Reactor": true,
}

// IsCapability reports whether t is (or is a $Class wrapping) one of
// the distinguished capability classes.
func IsCapability(t types.Type) bool {
	path, ok := types.AsDyn(types.Deref(t))
	if !ok {
		return false
	}
	return capabilityClasses[lastSegment(path)]
}

// IsImpure reports whether a value of type t makes a procedure
// receiving it impure: a capability, or any `unique`-permissioned
// value (spec.md §4.3 "Capabilities and purity").
func IsImpure(t types.Type) bool {
	if IsCapability(t) {
		return true
	}
	if perm, elem, ok := types.AsPerm(t); ok {
		return perm == types.PermUnique || IsImpure(elem)
	}
	return false
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}

// checkPurity classifies decl.Pure claims and the `extern` capability
// prohibition: an extern procedure may not receive a capability
// parameter (E-CAP-0001), and a procedure declared `pure` may not
// receive an impure one.
func (c *Checker) checkPurity(decl *ast.ProcedureItem, paramTypes []types.Type) {
	for i, pt := range paramTypes {
		if decl.Extern && IsCapability(pt) {
			sp := decl.Span()
			if i < len(decl.Params) {
				sp = decl.Params[i].Sp
			}
			c.sink.Errorf(diag.ECapExternCapability, sp, "extern procedure %q may not receive capability parameter %q", decl.Name, paramName(decl, i))
		}
		if decl.Pure && IsImpure(pt) {
			sp := decl.Span()
			if i < len(decl.Params) {
				sp = decl.Params[i].Sp
			}
			c.sink.Errorf(diag.ETypMismatch, sp, "procedure %q is declared pure but parameter %q is impure", decl.Name, paramName(decl, i))
		}
	}
}

func paramName(decl *ast.ProcedureItem, i int) string {
	if i < len(decl.Params) {
		return decl.Params[i].Name
	}
	return "?"
}

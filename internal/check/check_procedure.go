package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/types"
)

// CheckFile type-checks every procedure declared at the top level of a
// file, plus class default methods and modal state transitions — the
// three places a body with executable statements can occur (spec.md
// §4.2's item forms; records/enums/classes-as-signatures carry no
// bodies of their own to check).
func (c *Checker) CheckFile(f *ast.File) {
	for _, item := range f.Items {
		switch x := item.(type) {
		case *ast.ProcedureItem:
			c.CheckProcedure(x)
		case *ast.ClassItem:
			for _, m := range x.Methods {
				if m.Body != nil {
					c.CheckProcedure(m)
				}
			}
		case *ast.ModalItem:
			for _, st := range x.States {
				for _, m := range st.Transitions {
					if m.Body != nil {
						c.CheckProcedure(m)
					}
				}
			}
		}
	}
}

// CheckProcedure checks one procedure declaration: it builds the
// parameter (and receiver, if any) environment, enforces capability
// purity, types the contract clauses, then checks the body against the
// declared return type. `extern` procedures (Body == nil) only get the
// purity check — there is no body to type.
func (c *Checker) CheckProcedure(decl *ast.ProcedureItem) {
	paramEnv := NewEnv(nil)
	paramTypes := make([]types.Type, 0, len(decl.Params)+1)

	if decl.Receiver != nil {
		rt, err := c.build(decl.Receiver.Type)
		if err != nil {
			rt = c.errorType()
		}
		paramEnv.define(decl.Receiver.Name, rt, types.PermConst, false)
		paramTypes = append(paramTypes, rt)
	}
	for _, p := range decl.Params {
		pt, err := c.build(p.Type)
		if err != nil {
			pt = c.errorType()
		}
		perm := types.PermConst
		if p.Move {
			perm = types.PermUnique
		}
		paramEnv.define(p.Name, pt, perm, false)
		paramTypes = append(paramTypes, pt)
	}

	c.checkPurity(decl, paramTypes)

	var ret types.Type
	if decl.Return != nil {
		t, err := c.build(decl.Return)
		if err == nil {
			ret = t
		}
	}

	c.checkContracts(paramEnv, ret, decl.Contracts)

	if decl.Body == nil {
		return
	}
	if ret != nil {
		c.CheckAgainst(paramEnv, decl.Body, ret)
	} else {
		c.Synth(paramEnv, decl.Body)
	}
}

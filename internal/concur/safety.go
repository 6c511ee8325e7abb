// Package concur implements the parallel-safety checking of
// parallel/spawn/dispatch (spec.md §4.6; it does no desugaring of those
// constructs), plus a small reference
// interpreter (runtime.go) used to exercise the ordering guarantees
// spec.md §5 states the lowering must uphold.
package concur

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// PermissionOf answers a captured name's declared permission, so the
// safety checker can tell a `unique` capture from a `const`/`shared`
// one without reimplementing name resolution itself. The checker
// supplies this from the same environment it already built.
type PermissionOf func(name string) (types.Permission, bool)

// commutative lists the reduce operators spec.md allows `dispatch`
// without `ordered`: these are the ones safe to combine out of
// iteration order. Anything else requires `ordered` to give the
// reduction a defined sequence.
var commutative = map[string]bool{
	"+": true, "*": true, "min": true, "max": true,
	"and": true, "or": true, "xor": true,
}

// CheckSpawn validates a `spawn { body }` expression: any captured
// binding with unique permission must be captured via an explicit
// `move`, since a spawned task's frame outlives the statement that
// created it and a bare reference would alias across tasks.
func CheckSpawn(sink *diag.Sink, perm PermissionOf, x *ast.SpawnExpr) {
	captured := freeVars(nil, x.Body)
	checkUniqueCaptures(sink, perm, x, captured)
}

// CheckDispatch validates a `dispatch i in range { body }`: the same
// unique-capture rule as spawn, plus `reduce: op` without `ordered`
// is rejected unless op is known commutative.
func CheckDispatch(sink *diag.Sink, perm PermissionOf, x *ast.DispatchExpr) {
	bound := map[string]bool{x.Binder: true}
	captured := freeVars(bound, x.Body)
	checkUniqueCaptures(sink, perm, x, captured)

	if x.Opts.ReduceOp != "" && !x.Opts.Ordered && !commutative[x.Opts.ReduceOp] {
		sink.Errorf(diag.EConParallel, x.Span(),
			"dispatch reduce op %q is not known commutative; add `ordered` or use a commutative op", x.Opts.ReduceOp)
	}
}

// CheckParallel validates the spawn/dispatch expressions inside a
// `parallel` block's body, stopping at a nested `parallel` (that one
// gets its own call site, with its own capture environment, when the
// checker visits it directly). The walk descends through let,
// expression and return statements, unsafe and region blocks, if/match
// arms, nested blocks and loop bodies; a spawn or dispatch in any other
// position (a call argument, an operand, a `result` value) is not
// visited.
func CheckParallel(sink *diag.Sink, perm PermissionOf, x *ast.ParallelExpr) {
	if x.Body == nil {
		return
	}
	walkConstructsBlock(sink, perm, x.Body)
}

func walkConstructsBlock(sink *diag.Sink, perm PermissionOf, b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		walkConstructsStmt(sink, perm, s)
	}
	walkConstructsExpr(sink, perm, b.Tail)
}

func walkConstructsStmt(sink *diag.Sink, perm PermissionOf, s ast.Stmt) {
	switch x := s.(type) {
	case *ast.LetStmt:
		walkConstructsExpr(sink, perm, x.Value)
	case *ast.ExprStmt:
		walkConstructsExpr(sink, perm, x.X)
	case *ast.ReturnStmt:
		walkConstructsExpr(sink, perm, x.Value)
	case *ast.UnsafeBlockStmt:
		walkConstructsBlock(sink, perm, x.Body)
	case *ast.RegionStmt:
		walkConstructsExpr(sink, perm, x.Init)
		walkConstructsBlock(sink, perm, x.Body)
	default:
	}
}

func walkConstructsExpr(sink *diag.Sink, perm PermissionOf, e ast.Expr) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.SpawnExpr:
		CheckSpawn(sink, perm, x)
	case *ast.DispatchExpr:
		CheckDispatch(sink, perm, x)
	case *ast.ParallelExpr:
		return
	case *ast.IfExpr:
		walkConstructsExpr(sink, perm, x.Cond)
		walkConstructsBlock(sink, perm, x.Then)
		walkConstructsExpr(sink, perm, x.Else)
	case *ast.MatchExpr:
		for _, arm := range x.Arms {
			walkConstructsExpr(sink, perm, arm.Body)
		}
	case *ast.Block:
		walkConstructsBlock(sink, perm, x)
	case *ast.WhileLoop:
		walkConstructsBlock(sink, perm, x.Body)
	case *ast.ForLoop:
		walkConstructsBlock(sink, perm, x.Body)
	case *ast.LoopExpr:
		walkConstructsBlock(sink, perm, x.Body)
	default:
	}
}

func checkUniqueCaptures(sink *diag.Sink, perm PermissionOf, site ast.Node, captured map[string]bool) {
	if perm == nil {
		return
	}
	for name, bare := range captured {
		if !bare {
			continue
		}
		p, ok := perm(name)
		if !ok || p != types.PermUnique {
			continue
		}
		sink.Errorf(diag.EConParallel, site.Span(),
			"capturing unique binding %q requires an explicit move", name)
	}
}

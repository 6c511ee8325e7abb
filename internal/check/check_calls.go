package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// synthCall types a direct call. A callee that resolves to a declared
// procedure is checked argument-by-argument against its signature
// (picking up move/receiver semantics); anything else must synthesize
// a function type.
func (c *Checker) synthCall(env *Env, x *ast.CallExpr) types.Type {
	if id, ok := x.Callee.(*ast.Ident); ok && id.Name == "entry" {
		return c.synthEntry(x)
	}
	if proc, ok := c.calleeProcedure(x.Callee); ok {
		return c.checkCallAgainstProcedure(env, proc, x.Args, x)
	}
	ft := c.Synth(env, x.Callee)
	params, ret, ok := types.AsFunc(types.Deref(ft))
	if !ok {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s is not callable", ft.String())
		return c.errorType()
	}
	if len(params) != len(x.Args) {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "expected %d arguments, got %d", len(params), len(x.Args))
	}
	for i, a := range x.Args {
		if i < len(params) {
			c.checkArg(env, a, params[i], false)
		} else {
			c.Synth(env, a.Value)
		}
	}
	return ret
}

// synthEntry types `entry(x)`, legal only inside a contract's post
// clause (rejectEntry statically forbids it everywhere else). x must
// name a parameter; its type is looked up against entryEnv, the
// checker's shadow binding for "this procedure's parameters as they
// stood at entry," not whatever env the post clause itself is checked
// under.
func (c *Checker) synthEntry(x *ast.CallExpr) types.Type {
	if c.entryEnv == nil {
		c.sink.Errorf(diag.ESemEntryResult, x.Span(), "entry(...) is only legal in a contract's post clause")
		return c.errorType()
	}
	if len(x.Args) != 1 {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "entry(...) takes exactly one argument")
		return c.errorType()
	}
	id, ok := x.Args[0].Value.(*ast.Ident)
	if !ok {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "entry(...) argument must be a parameter name")
		return c.errorType()
	}
	place, ok := c.TypePlace(c.entryEnv, id)
	if !ok {
		return c.errorType()
	}
	return place.Type
}

func (c *Checker) calleeProcedure(callee ast.Expr) (*ast.ProcedureItem, bool) {
	sym, ok := c.symbolOf(callee)
	if !ok {
		return nil, false
	}
	proc, ok := sym.Decl.(*ast.ProcedureItem)
	return proc, ok
}

// synthMethodCall resolves `recv.method(args)` against the method set
// of the receiver's owner (a class's methods or a modal state's
// transitions — spec.md's surface has no free-standing `impl` block,
// so a record value can only call class methods it was passed as).
func (c *Checker) synthMethodCall(env *Env, x *ast.MethodCallExpr) types.Type {
	var recvType types.Type
	if place, ok := c.TypePlace(env, x.Receiver); ok {
		recvType = place.Type
	} else {
		recvType = c.Synth(env, x.Receiver)
	}
	proc, ok := c.lookupMethod(recvType, x.Method)
	if !ok {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s has no method %q", recvType.String(), x.Method)
		for _, a := range x.Args {
			c.Synth(env, a.Value)
		}
		return c.errorType()
	}
	if proc.Receiver != nil {
		recvDecl, err := c.build(proc.Receiver.Type)
		if err == nil {
			c.CheckAgainst(env, x.Receiver, recvDecl)
		}
	}
	return c.checkCallAgainstProcedure(env, proc, x.Args, x)
}

func (c *Checker) lookupMethod(recv types.Type, name string) (*ast.ProcedureItem, bool) {
	recv = types.Deref(recv)
	var key string
	switch {
	case isDyn(recv):
		classPath, _ := types.AsDyn(recv)
		key = classPath + "::" + name
	case isModalState(recv):
		path, _, state, _ := types.AsModalState(recv)
		key = path + "::" + state + "::" + name
	default:
		path, _, ok := types.AsNamed(recv)
		if !ok {
			return nil, false
		}
		key = path + "::" + name
	}
	if c.res == nil {
		return nil, false
	}
	sym, ok := c.res.Values[key]
	if !ok {
		return nil, false
	}
	proc, ok := sym.Decl.(*ast.ProcedureItem)
	return proc, ok
}

func isDyn(t types.Type) bool         { _, ok := types.AsDyn(t); return ok }
func isModalState(t types.Type) bool  { _, _, _, ok := types.AsModalState(t); return ok }
func isGenericParam(gs []ast.GenericParam, name string) bool {
	for _, g := range gs {
		if g.Name == name {
			return true
		}
	}
	return false
}

// checkCallAgainstProcedure infers any generic arguments a call site
// leaves implicit from the first parameter bound to that name, queues
// the resulting instantiation demand for `internal/generics`, then
// checks every argument against its (possibly substituted) declared
// type.
func (c *Checker) checkCallAgainstProcedure(env *Env, proc *ast.ProcedureItem, args []ast.Arg, sp ast.Node) types.Type {
	genEnv := make(map[string]types.Type)
	bound := make([]bool, len(args))
	for i, p := range proc.Params {
		if i >= len(args) {
			break
		}
		pathT, ok := p.Type.(*ast.PathType)
		if !ok || len(pathT.Segments) != 1 || len(pathT.Args) != 0 {
			continue
		}
		name := pathT.Segments[0]
		if !isGenericParam(proc.Generics, name) {
			continue
		}
		if _, already := genEnv[name]; already {
			continue
		}
		genEnv[name] = c.Synth(env, args[i].Value)
		bound[i] = true
	}
	if len(proc.Generics) > 0 {
		genArgs := make([]types.Type, len(proc.Generics))
		for i, g := range proc.Generics {
			if t, ok := genEnv[g.Name]; ok {
				genArgs[i] = t
			} else {
				genArgs[i] = c.errorType()
			}
		}
		c.demand(proc.Name, genArgs)
	}

	if len(args) != len(proc.Params) {
		c.sink.Errorf(diag.ETypMismatch, sp.Span(), "procedure %q expects %d arguments, got %d", proc.Name, len(proc.Params), len(args))
	}
	for i, p := range proc.Params {
		if i >= len(args) || bound[i] {
			continue
		}
		pt, err := c.tb.Build(p.Type, genEnv)
		if err != nil {
			continue
		}
		c.checkArg(env, args[i], pt, p.Move)
	}
	if proc.Return == nil {
		return c.unitType()
	}
	ret, err := c.tb.Build(proc.Return, genEnv)
	if err != nil {
		return c.errorType()
	}
	return ret
}

// checkArg checks one call argument against its expected type, then
// applies move semantics (spec.md §4.3 "permissions in calls"): a
// `move` parameter (or an explicit `move e` argument) consumes the
// source binding, marking it Moved; otherwise the argument is merely
// borrowed and the source binding is untouched.
func (c *Checker) checkArg(env *Env, a ast.Arg, expected types.Type, paramMove bool) {
	c.CheckAgainst(env, a.Value, expected)
	if !paramMove && !a.Move {
		return
	}
	place, ok := c.TypePlace(env, a.Value)
	if !ok || place.Root == "" {
		return
	}
	b, found := env.lookup(place.Root)
	if !found {
		return
	}
	if b.moved {
		c.sink.Errorf(diag.ETypMoveAfterUse, a.Value.Span(), "moving already-moved binding %q", place.Root)
	}
	b.moved = true
}

// synthQualifiedApply types `Type::method(args)`, UFCS-style static
// dispatch: no receiver value is involved, so arguments line up
// directly against the resolved method's parameter list.
func (c *Checker) synthQualifiedApply(env *Env, x *ast.QualifiedApplyExpr) types.Type {
	qt, err := c.build(x.Qualifier)
	if err != nil {
		c.sink.Errorf(diag.ETypUnresolved, x.Span(), "%v", err)
		return c.errorType()
	}
	proc, ok := c.lookupMethod(qt, x.Method)
	if !ok {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s has no method %q", qt.String(), x.Method)
		for _, a := range x.Args {
			c.Synth(env, a.Value)
		}
		return c.errorType()
	}
	return c.checkCallAgainstProcedure(env, proc, x.Args, x)
}

package concur

import "github.com/cursive-lang/cursive0/internal/ast"

// bscope is a lexical chain of locally-bound names, so a capture walk
// can tell a reference to an outer binding (one the parallel construct
// actually captures) from a reference to something the body itself
// declares.
type bscope struct {
	parent *bscope
	names  map[string]bool
}

func newBscope(parent *bscope) *bscope { return &bscope{parent: parent, names: map[string]bool{}} }

func (s *bscope) define(name string) { s.names[name] = true }

func (s *bscope) has(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.names[name] {
			return true
		}
	}
	return false
}

// freeVars walks e and returns every identifier referenced but not
// bound within e itself, mapped to whether at least one of those
// references was bare (not wrapped in `move`).
func freeVars(initial map[string]bool, e ast.Expr) map[string]bool {
	top := newBscope(nil)
	for name := range initial {
		top.define(name)
	}
	c := &capturer{found: map[string]bool{}}
	c.walkExpr(top, e)
	return c.found
}

type capturer struct {
	found map[string]bool
}

func (c *capturer) record(name string, bare bool) {
	if bare || !c.found[name] {
		c.found[name] = c.found[name] || bare
	}
}

func (c *capturer) walkBlock(env *bscope, b *ast.Block) {
	if b == nil {
		return
	}
	inner := newBscope(env)
	for _, s := range b.Stmts {
		c.walkStmt(inner, s)
	}
	c.walkExpr(inner, b.Tail)
}

func (c *capturer) walkStmt(env *bscope, s ast.Stmt) {
	switch x := s.(type) {
	case *ast.LetStmt:
		c.walkExpr(env, x.Value)
		env.define(x.Name)
	case *ast.AssignStmt:
		c.walkExpr(env, x.Value)
		c.walkExpr(env, x.Target)
	case *ast.CompoundAssignStmt:
		c.walkExpr(env, x.Value)
		c.walkExpr(env, x.Target)
	case *ast.ExprStmt:
		c.walkExpr(env, x.X)
	case *ast.ReturnStmt:
		c.walkExpr(env, x.Value)
	case *ast.ResultStmt:
		c.walkExpr(env, x.Value)
	case *ast.BreakStmt:
		c.walkExpr(env, x.Value)
	case *ast.UnsafeBlockStmt:
		c.walkBlock(env, x.Body)
	case *ast.DeferStmt:
		c.walkExpr(env, x.X)
	case *ast.RegionStmt:
		c.walkExpr(env, x.Init)
		child := newBscope(env)
		if x.Alias != "" {
			child.define(x.Alias)
		}
		c.walkBlock(child, x.Body)
	case *ast.FrameStmt:
		c.walkBlock(env, x.Body)
	default:
	}
}

func (c *capturer) walkExpr(env *bscope, e ast.Expr) {
	switch x := e.(type) {
	case nil, *ast.Literal, *ast.ErrorExpr:
		return
	case *ast.Ident:
		if !env.has(x.Name) {
			c.record(x.Name, true)
		}
	case *ast.PathExpr:
		return
	case *ast.MoveExpr:
		if id, ok := x.Operand.(*ast.Ident); ok {
			if !env.has(id.Name) {
				c.record(id.Name, false)
			}
			return
		}
		c.walkExpr(env, x.Operand)
	case *ast.FieldAccess:
		c.walkExpr(env, x.Target)
	case *ast.TupleAccess:
		c.walkExpr(env, x.Target)
	case *ast.IndexExpr:
		c.walkExpr(env, x.Target)
		c.walkExpr(env, x.Index)
	case *ast.CallExpr:
		c.walkExpr(env, x.Callee)
		for _, a := range x.Args {
			c.walkArg(env, a)
		}
	case *ast.MethodCallExpr:
		c.walkExpr(env, x.Receiver)
		for _, a := range x.Args {
			c.walkArg(env, a)
		}
	case *ast.QualifiedApplyExpr:
		for _, a := range x.Args {
			c.walkArg(env, a)
		}
	case *ast.CastExpr:
		c.walkExpr(env, x.Value)
	case *ast.TransmuteExpr:
		c.walkExpr(env, x.Value)
	case *ast.PropagateExpr:
		c.walkExpr(env, x.Operand)
	case *ast.AddrOfExpr:
		c.walkExpr(env, x.Operand)
	case *ast.AllocExpr:
		c.walkExpr(env, x.Value)
	case *ast.DerefExpr:
		c.walkExpr(env, x.Operand)
	case *ast.WidenExpr:
		c.walkExpr(env, x.Operand)
	case *ast.UnaryOp:
		c.walkExpr(env, x.Operand)
	case *ast.BinaryOp:
		c.walkExpr(env, x.Left)
		c.walkExpr(env, x.Right)
	case *ast.RangeExpr:
		c.walkExpr(env, x.From)
		c.walkExpr(env, x.To)
	case *ast.TupleLiteral:
		for _, el := range x.Elems {
			c.walkExpr(env, el)
		}
	case *ast.ArrayLiteral:
		for _, el := range x.Elems {
			c.walkExpr(env, el)
		}
	case *ast.ArrayRepeat:
		c.walkExpr(env, x.Value)
	case *ast.RecordLiteral:
		for _, f := range x.Fields {
			c.walkExpr(env, f.Value)
		}
		c.walkExpr(env, x.Spread)
	case *ast.EnumLiteral:
		for _, p := range x.TuplePayload {
			c.walkExpr(env, p)
		}
		for _, f := range x.RecordFields {
			c.walkExpr(env, f.Value)
		}
	case *ast.Block:
		c.walkBlock(env, x)
	case *ast.UnsafeBlockExpr:
		c.walkBlock(env, x.Body)
	case *ast.KeyBlockExpr:
		c.walkBlock(env, x.Body)
	case *ast.IfExpr:
		c.walkExpr(env, x.Cond)
		c.walkBlock(env, x.Then)
		c.walkExpr(env, x.Else)
	case *ast.MatchExpr:
		c.walkExpr(env, x.Scrutinee)
		for _, arm := range x.Arms {
			armEnv := newBscope(env)
			bindPatternNames(armEnv, arm.Pattern)
			c.walkExpr(armEnv, arm.Guard)
			c.walkExpr(armEnv, arm.Body)
		}
	case *ast.WhileLoop:
		c.walkExpr(env, x.Cond)
		c.walkBlock(env, x.Body)
	case *ast.ForLoop:
		c.walkExpr(env, x.Iter)
		child := newBscope(env)
		bindPatternNames(child, x.Pattern)
		c.walkBlock(child, x.Body)
	case *ast.LoopExpr:
		c.walkBlock(env, x.Body)
	case *ast.YieldExpr:
		c.walkExpr(env, x.Value)
	case *ast.YieldFromExpr:
		c.walkExpr(env, x.Source)
	case *ast.SyncExpr:
		c.walkExpr(env, x.Operand)
	case *ast.RaceExpr:
		for _, arm := range x.Arms {
			c.walkExpr(env, arm.Expr)
		}
	case *ast.AllExpr:
		for _, op := range x.Operands {
			c.walkExpr(env, op)
		}
	case *ast.ParallelExpr:
		c.walkExpr(env, x.Cancel)
		c.walkBlock(env, x.Body)
	case *ast.SpawnExpr:
		c.walkExpr(env, x.Body)
	case *ast.WaitExpr:
		c.walkExpr(env, x.Handle)
	case *ast.DispatchExpr:
		c.walkExpr(env, x.Range)
		c.walkExpr(env, x.Opts.Chunk)
		child := newBscope(env)
		child.define(x.Binder)
		c.walkBlock(child, x.Body)
	default:
	}
}

func (c *capturer) walkArg(env *bscope, a ast.Arg) {
	if a.Move {
		if id, ok := a.Value.(*ast.Ident); ok {
			if !env.has(id.Name) {
				c.record(id.Name, false)
			}
			return
		}
	}
	c.walkExpr(env, a.Value)
}

func bindPatternNames(env *bscope, p ast.Pattern) {
	switch x := p.(type) {
	case *ast.Ident:
		env.define(x.Name)
	case *ast.TuplePattern:
		for _, sub := range x.Elems {
			bindPatternNames(env, sub)
		}
	default:
	}
}


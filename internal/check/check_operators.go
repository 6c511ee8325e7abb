package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}
var logicalOps = map[string]bool{"&&": true, "||": true}
var shiftOps = map[string]bool{"<<": true, ">>": true}
var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true, "**": true}
var bitwiseOps = map[string]bool{"&": true, "|": true, "^": true}

// synthBinary implements spec.md §4.3's operator rules: arithmetic
// requires both sides to be the same numeric primitive (no implicit
// widening, per the numeric rules paragraph); shifts require an
// integer LHS and an unsigned-integer RHS (the RHS's value is not
// checked against the LHS's bit width here); comparisons yield
// bool; logical operators require bool on both sides and short-
// circuit (a property the checker records for the IR lowering stage,
// not one this pass needs to act on itself); `++` is the one
// non-numeric arithmetic-precedence operator, concatenating string/
// bytes/slice operands of equal type.
func (c *Checker) synthBinary(env *Env, x *ast.BinaryOp) types.Type {
	switch {
	case logicalOps[x.Op]:
		c.CheckAgainst(env, x.Left, c.boolType())
		c.CheckAgainst(env, x.Right, c.boolType())
		return c.boolType()
	case comparisonOps[x.Op]:
		lt := c.Synth(env, x.Left)
		c.CheckAgainst(env, x.Right, lt)
		if x.Op != "==" && x.Op != "!=" {
			if name, ok := types.AsPrimitive(types.Deref(lt)); !ok || !isNumericPrimitive(name) {
				c.sink.Errorf(diag.ETypMismatch, x.Span(), "ordering operator %q requires numeric operands, got %s", x.Op, lt.String())
			}
		}
		return c.boolType()
	case shiftOps[x.Op]:
		lt := c.Synth(env, x.Left)
		rt := c.Synth(env, x.Right)
		lname, lok := types.AsPrimitive(types.Deref(lt))
		rname, rok := types.AsPrimitive(types.Deref(rt))
		if !lok || !isIntegerPrimitive(lname) {
			c.sink.Errorf(diag.ETypMismatch, x.Left.Span(), "shift requires an integer left operand, got %s", lt.String())
		}
		if !rok || !isIntegerPrimitive(rname) || rname[0] != 'u' {
			c.sink.Errorf(diag.ETypMismatch, x.Right.Span(), "shift requires an unsigned right operand, got %s", rt.String())
		}
		return lt
	case x.Op == "++":
		lt := c.Synth(env, x.Left)
		c.CheckAgainst(env, x.Right, lt)
		return lt
	case arithmeticOps[x.Op] || bitwiseOps[x.Op]:
		lt := c.Synth(env, x.Left)
		c.CheckAgainst(env, x.Right, lt)
		if name, ok := types.AsPrimitive(types.Deref(lt)); !ok || !isNumericPrimitive(name) {
			if !bitwiseOps[x.Op] || !ok || name != "bool" {
				c.sink.Errorf(diag.ETypMismatch, x.Span(), "operator %q requires numeric operands, got %s", x.Op, lt.String())
			}
		}
		return lt
	default:
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "unknown operator %q", x.Op)
		return c.errorType()
	}
}

// synthUnary: `-` requires a numeric operand and preserves its type;
// `!` requires bool; `~` is bitwise complement, requiring an integer.
func (c *Checker) synthUnary(env *Env, x *ast.UnaryOp) types.Type {
	switch x.Op {
	case "-":
		t := c.Synth(env, x.Operand)
		if name, ok := types.AsPrimitive(types.Deref(t)); !ok || !isNumericPrimitive(name) {
			c.sink.Errorf(diag.ETypMismatch, x.Span(), "unary %q requires a numeric operand, got %s", x.Op, t.String())
		}
		return t
	case "!":
		c.CheckAgainst(env, x.Operand, c.boolType())
		return c.boolType()
	case "~":
		t := c.Synth(env, x.Operand)
		if name, ok := types.AsPrimitive(types.Deref(t)); !ok || !isIntegerPrimitive(name) {
			c.sink.Errorf(diag.ETypMismatch, x.Span(), "unary %q requires an integer operand, got %s", x.Op, t.String())
		}
		return t
	default:
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "unknown unary operator %q", x.Op)
		return c.errorType()
	}
}

package check

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/types"
)

// synthLiteral types a scalar literal. expected carries the position's
// expected type, if any, so an integer/float literal unifies with it
// rather than always defaulting (spec.md §4.3 "numeric rules": literals
// carry an inference slot, unify with the expected type when
// compatible, fall back to i32/f64 otherwise).
func (c *Checker) synthLiteral(lit *ast.Literal, expected types.Type) types.Type {
	switch lit.Kind {
	case ast.LitInt:
		if name, ok := types.AsPrimitive(types.Deref(expected)); ok && isIntegerPrimitive(name) {
			return expected
		}
		return c.tb.Primitive("i32")
	case ast.LitFloat:
		if name, ok := types.AsPrimitive(types.Deref(expected)); ok && isFloatPrimitive(name) {
			return expected
		}
		return c.tb.Primitive("f64")
	case ast.LitString:
		return c.tb.Str(false, "")
	case ast.LitChar:
		return c.tb.Primitive("char")
	case ast.LitBool:
		return c.boolType()
	case ast.LitNull:
		if _, _, ok := types.AsPtr(types.Deref(expected)); ok {
			return c.tb.Ptr(nullElem(expected), "Null")
		}
		return c.tb.Ptr(c.errorType(), "Null")
	case ast.LitUnit:
		return c.unitType()
	default:
		return c.errorType()
	}
}

func nullElem(expected types.Type) types.Type {
	elem, _, ok := types.AsPtr(types.Deref(expected))
	if !ok {
		return expected
	}
	return elem
}

var integerPrimitives = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
}

var floatPrimitives = map[string]bool{"f16": true, "f32": true, "f64": true}

func isIntegerPrimitive(name string) bool { return integerPrimitives[name] }
func isFloatPrimitive(name string) bool   { return floatPrimitives[name] }
func isNumericPrimitive(name string) bool { return integerPrimitives[name] || floatPrimitives[name] }

func (c *Checker) synthTuple(env *Env, x *ast.TupleLiteral) types.Type {
	elems := make([]types.Type, len(x.Elems))
	for i, e := range x.Elems {
		elems[i] = c.Synth(env, e)
	}
	return c.tb.Tuple(elems)
}

// synthArray requires every element equivalent to the first (spec.md
// §3.2: arrays are homogeneous, fixed-length).
func (c *Checker) synthArray(env *Env, x *ast.ArrayLiteral) types.Type {
	if len(x.Elems) == 0 {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "cannot infer the element type of an empty array literal without an expected type")
		return c.tb.Array(c.errorType(), 0)
	}
	elem := c.Synth(env, x.Elems[0])
	for _, e := range x.Elems[1:] {
		c.CheckAgainst(env, e, elem)
	}
	return c.tb.Array(elem, int64(len(x.Elems)))
}

func (c *Checker) synthArrayRepeat(env *Env, x *ast.ArrayRepeat) types.Type {
	elem := c.Synth(env, x.Value)
	n := constEvalInt(x.Count)
	return c.tb.Array(elem, n)
}

func constEvalInt(e ast.Expr) int64 {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return -1
	}
	n, _ := lit.Value.(int64)
	return n
}

// synthRecordLiteral resolves the named record, checks every declared
// field is supplied exactly once (unless a `..spread` source covers the
// rest), and checks each field's value against its declared type.
func (c *Checker) synthRecordLiteral(env *Env, x *ast.RecordLiteral) types.Type {
	ty, err := c.build(x.Type)
	if err != nil {
		c.sink.Errorf(diag.ETypUnresolved, x.Span(), "%v", err)
		return c.errorType()
	}
	path, args, ok := types.AsNamed(types.Deref(ty))
	if !ok {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s is not a record type", ty.String())
		return ty
	}
	decl, declOK := c.recordDecl(path)
	if !declOK {
		return ty
	}
	env2 := genericEnv(decl.Generics, args)
	seen := make(map[string]bool, len(x.Fields))
	for _, f := range x.Fields {
		if seen[f.Name] {
			c.sink.Errorf(diag.ETypDuplicateField, f.Sp, "field %q is supplied more than once", f.Name)
			continue
		}
		seen[f.Name] = true
		ft, ok := fieldType(c.tb, decl.Fields, f.Name, env2)
		if !ok {
			c.sink.Errorf(diag.ETypMismatch, f.Sp, "record %s has no field %q", decl.Name, f.Name)
			continue
		}
		c.CheckAgainst(env, f.Value, ft)
	}
	if x.Spread == nil {
		for _, f := range decl.Fields {
			if !seen[f.Name] {
				c.sink.Errorf(diag.ETypMismatch, x.Span(), "missing field %q of record %s", f.Name, decl.Name)
			}
		}
	} else {
		c.CheckAgainst(env, x.Spread, ty)
	}
	return ty
}

func (c *Checker) synthEnumLiteral(env *Env, x *ast.EnumLiteral) types.Type {
	ty, err := c.build(x.Type)
	if err != nil {
		c.sink.Errorf(diag.ETypUnresolved, x.Span(), "%v", err)
		return c.errorType()
	}
	path, args, ok := types.AsNamed(types.Deref(ty))
	if !ok {
		c.sink.Errorf(diag.ETypMismatch, x.Span(), "%s is not an enum type", ty.String())
		return ty
	}
	decl, declOK := c.enumDecl(path)
	if !declOK {
		return ty
	}
	env2 := genericEnv(decl.Generics, args)
	for _, v := range decl.Variants {
		if v.Name != x.Variant {
			continue
		}
		for i, t := range v.TuplePayload {
			if i >= len(x.TuplePayload) {
				break
			}
			ft, err := c.tb.Build(t, env2)
			if err == nil {
				c.CheckAgainst(env, x.TuplePayload[i], ft)
			}
		}
		for _, f := range x.RecordFields {
			ft, ok := fieldType(c.tb, v.RecordFields, f.Name, env2)
			if ok {
				c.CheckAgainst(env, f.Value, ft)
			}
		}
		return ty
	}
	c.sink.Errorf(diag.ETypMismatch, x.Span(), "enum %s has no variant %q", decl.Name, x.Variant)
	return ty
}

func fieldType(tb *types.Table, fields []ast.Field, name string, env map[string]types.Type) (types.Type, bool) {
	for _, f := range fields {
		if f.Name == name {
			t, err := tb.Build(f.Type, env)
			return t, err == nil
		}
	}
	return nil, false
}

func genericEnv(params []ast.GenericParam, args []types.Type) map[string]types.Type {
	env := make(map[string]types.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			env[p.Name] = args[i]
		}
	}
	return env
}

func (c *Checker) recordDecl(path string) (*ast.RecordItem, bool) {
	resolved, ok := c.tb.ResolveAlias(path)
	if !ok {
		return nil, false
	}
	sym, ok := c.tb.Lookup(resolved)
	if !ok {
		return nil, false
	}
	decl, ok := sym.Decl.(*ast.RecordItem)
	return decl, ok
}

func (c *Checker) enumDecl(path string) (*ast.EnumItem, bool) {
	resolved, ok := c.tb.ResolveAlias(path)
	if !ok {
		return nil, false
	}
	sym, ok := c.tb.Lookup(resolved)
	if !ok {
		return nil, false
	}
	decl, ok := sym.Decl.(*ast.EnumItem)
	return decl, ok
}

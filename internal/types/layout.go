package types

import (
	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/resolve"
)

const wordSize = 8 // target is a 64-bit machine; spec.md has no 32-bit target open question resolved otherwise

// Niche records a spare bit pattern an enum/modal can reuse instead of
// a separate discriminant tag (spec.md §3.3).
type Niche struct {
	// NoPayloadVariant is the index of the zero-payload variant/state
	// folded into the niche.
	NoPayloadVariant int
}

// Layout is a type's derived size/align/representation data, computed
// once per interned Type and cached on the Table that produced it.
type Layout struct {
	Size, Align uint64
	DiscType    string // "" when there is no discriminant (non-enum, or niched)
	Niche       *Niche
}

func roundUp(n, align uint64) uint64 {
	if align == 0 {
		return n
	}
	return (n + align - 1) / align * align
}

// discTypeFor picks the smallest unsigned discriminant wide enough to
// number n variants (spec.md §3.3: "disc type chosen by variant
// count").
func discTypeFor(n int) string {
	switch {
	case n <= 1<<8:
		return "u8"
	case n <= 1<<16:
		return "u16"
	case n <= 1<<32:
		return "u32"
	default:
		return "u64"
	}
}

var primitiveLayouts = map[string]Layout{
	"i8": {Size: 1, Align: 1}, "u8": {Size: 1, Align: 1}, "bool": {Size: 1, Align: 1},
	"i16": {Size: 2, Align: 2}, "u16": {Size: 2, Align: 2}, "f16": {Size: 2, Align: 2},
	"i32": {Size: 4, Align: 4}, "u32": {Size: 4, Align: 4}, "f32": {Size: 4, Align: 4}, "char": {Size: 4, Align: 4},
	"i64": {Size: 8, Align: 8}, "u64": {Size: 8, Align: 8}, "f64": {Size: 8, Align: 8},
	"isize": {Size: wordSize, Align: wordSize}, "usize": {Size: wordSize, Align: wordSize},
	"i128": {Size: 16, Align: 16}, "u128": {Size: 16, Align: 16},
	"!": {Size: 0, Align: 1},
}

// LayoutOf computes (and caches) t's derived layout. ok is false when
// t cannot be sized here — a bare generic parameter, an Async<...>
// type, an array whose length could not be const-evaluated, a class or
// unknown named type, or a type containing one of these. An opaque
// type is sized as a word-sized handle.
func (tb *Table) LayoutOf(t Type) (Layout, bool) {
	tb.mu.Lock()
	if cached, ok := tb.layouts[t.key()]; ok {
		tb.mu.Unlock()
		return *cached, true
	}
	tb.mu.Unlock()

	l, ok := tb.computeLayout(t)
	if !ok {
		return Layout{}, false
	}
	tb.mu.Lock()
	tb.layouts[t.key()] = &l
	tb.mu.Unlock()
	return l, true
}

func (tb *Table) computeLayout(t Type) (Layout, bool) {
	switch x := t.(type) {
	case *primitiveT:
		l, ok := primitiveLayouts[x.name]
		return l, ok
	case *stringT:
		// Fat view: {ptr, len}; a managed (owning) string/bytes value
		// carries a capacity word on top, which `internal/modal`'s
		// layout planner adds when it knows the binding owns its buffer.
		return Layout{Size: 2 * wordSize, Align: wordSize}, true
	case *ptrT:
		return Layout{Size: wordSize, Align: wordSize}, true
	case *rawPtrT:
		return Layout{Size: wordSize, Align: wordSize}, true
	case *tupleT:
		return tb.sequentialLayout(x.elems)
	case *arrayT:
		if x.len < 0 {
			return Layout{}, false
		}
		el, ok := tb.LayoutOf(x.elem)
		if !ok {
			return Layout{}, false
		}
		return Layout{Size: el.Size * uint64(x.len), Align: el.Align}, true
	case *sliceT:
		return Layout{Size: 2 * wordSize, Align: wordSize}, true
	case *unionT:
		// A surface union without a resolver-assigned tag is laid out
		// like an untagged C union: the widest member's footprint.
		var size, align uint64 = 0, 1
		for _, m := range x.members {
			ml, ok := tb.LayoutOf(m)
			if !ok {
				return Layout{}, false
			}
			if ml.Size > size {
				size = ml.Size
			}
			if ml.Align > align {
				align = ml.Align
			}
		}
		return Layout{Size: roundUp(size, align), Align: align}, true
	case *funcT:
		return Layout{Size: wordSize, Align: wordSize}, true
	case *namedT:
		return tb.namedLayout(x.path, x.args)
	case *modalStateT:
		return tb.modalStateLayout(x)
	case *permT:
		return tb.LayoutOf(x.elem)
	case *refinementT:
		return tb.LayoutOf(x.underlying)
	case *opaqueT:
		// Opaque to this compiler by construction; a word-sized handle
		// is the only representation it can assume without external
		// information.
		return Layout{Size: wordSize, Align: wordSize}, true
	case *dynT:
		return Layout{Size: 2 * wordSize, Align: wordSize}, true // {data, vtable}
	case *asyncT:
		// The resumable-frame size depends on the state machine
		// `internal/modal` synthesizes from the procedure body; this
		// table only ever sees the declared Async<...> shape.
		return Layout{}, false
	case *typeVarT:
		return Layout{}, false
	default:
		return Layout{}, false
	}
}

func (tb *Table) sequentialLayout(elems []Type) (Layout, bool) {
	var size, align uint64 = 0, 1
	for _, e := range elems {
		el, ok := tb.LayoutOf(e)
		if !ok {
			return Layout{}, false
		}
		if el.Align > align {
			align = el.Align
		}
		size = roundUp(size, el.Align) + el.Size
	}
	return Layout{Size: roundUp(size, align), Align: align}, true
}

func (tb *Table) namedLayout(path string, args []Type) (Layout, bool) {
	resolved, ok := tb.ResolveAlias(path)
	if !ok {
		return Layout{}, false
	}
	sym, ok := tb.sigma[resolved]
	if !ok {
		return Layout{}, false
	}
	switch decl := sym.Decl.(type) {
	case *ast.RecordItem:
		env := genericEnv(decl.Generics, args)
		fieldTypes := make([]Type, len(decl.Fields))
		for i, f := range decl.Fields {
			ft, err := tb.Build(f.Type, env)
			if err != nil {
				return Layout{}, false
			}
			fieldTypes[i] = ft
		}
		return tb.sequentialLayout(fieldTypes)
	case *ast.EnumItem:
		env := genericEnv(decl.Generics, args)
		return tb.taggedUnionLayout(len(decl.Variants), func(i int) ([]Type, bool) {
			return tb.variantFieldTypes(decl.Variants[i].TuplePayload, decl.Variants[i].RecordFields, env)
		})
	case *ast.ModalItem:
		env := genericEnv(decl.Generics, args)
		return tb.taggedUnionLayout(len(decl.States), func(i int) ([]Type, bool) {
			st := decl.States[i]
			fields := make([]Type, len(st.Fields))
			for j, f := range st.Fields {
				ft, err := tb.Build(f.Type, env)
				if err != nil {
					return nil, false
				}
				fields[j] = ft
			}
			return fields, true
		})
	case *ast.TypeAliasItem:
		target, err := tb.Build(decl.Target, genericEnv(decl.Generics, args))
		if err != nil {
			return Layout{}, false
		}
		return tb.LayoutOf(target)
	default:
		// A class (or any other non-value Item) has no value
		// representation of its own; it is only ever referenced
		// through `$Class` (dynT), which carries its own layout.
		return Layout{}, false
	}
}

func (tb *Table) variantFieldTypes(tuplePayload []ast.TypeExpr, recordFields []ast.Field, env map[string]Type) ([]Type, bool) {
	var fields []Type
	for _, t := range tuplePayload {
		ft, err := tb.Build(t, env)
		if err != nil {
			return nil, false
		}
		fields = append(fields, ft)
	}
	for _, f := range recordFields {
		ft, err := tb.Build(f.Type, env)
		if err != nil {
			return nil, false
		}
		fields = append(fields, ft)
	}
	return fields, true
}

// taggedUnionLayout lays out a sum type as max(variant layouts) plus a
// discriminant, applying the single-niche optimization spec.md §3.3
// names: exactly one zero-payload variant paired with a payload whose
// own layout has a spare bit pattern folds away the tag entirely.
func (tb *Table) taggedUnionLayout(variantCount int, fieldsOf func(i int) ([]Type, bool)) (Layout, bool) {
	var maxSize, maxAlign uint64 = 0, 1
	emptyVariant := -1
	var solePayload Type
	payloadVariants := 0
	for i := 0; i < variantCount; i++ {
		fields, ok := fieldsOf(i)
		if !ok {
			return Layout{}, false
		}
		if len(fields) == 0 {
			emptyVariant = i
			continue
		}
		payloadVariants++
		if len(fields) == 1 {
			solePayload = fields[0]
		}
		l, ok := tb.sequentialLayout(fields)
		if !ok {
			return Layout{}, false
		}
		if l.Size > maxSize {
			maxSize = l.Size
		}
		if l.Align > maxAlign {
			maxAlign = l.Align
		}
	}
	if variantCount == 2 && emptyVariant >= 0 && payloadVariants == 1 && hasNiche(solePayload) {
		payloadLayout, ok := tb.LayoutOf(solePayload)
		if ok {
			return Layout{Size: payloadLayout.Size, Align: payloadLayout.Align, Niche: &Niche{NoPayloadVariant: emptyVariant}}, true
		}
	}
	disc := discTypeFor(variantCount)
	discLayout := primitiveLayouts[disc]
	align := maxAlign
	if discLayout.Align > align {
		align = discLayout.Align
	}
	size := roundUp(discLayout.Size, maxAlign) + maxSize
	return Layout{Size: roundUp(size, align), Align: align, DiscType: disc}, true
}

// hasNiche reports whether t's representation has at least one spare
// bit pattern a tag-free variant can claim: a Ptr (never null once
// valid), bool, or char (not every u32 is a valid code point).
func hasNiche(t Type) bool {
	switch t.(type) {
	case *ptrT:
		return true
	}
	if p, ok := t.(*primitiveT); ok {
		return p.name == "bool" || p.name == "char"
	}
	return false
}

func (tb *Table) modalStateLayout(st *modalStateT) (Layout, bool) {
	resolved, ok := tb.ResolveAlias(st.path)
	if !ok {
		return Layout{}, false
	}
	sym, ok := tb.sigma[resolved]
	if !ok || sym.Kind != resolve.KindModal {
		return Layout{}, false
	}
	decl, ok := sym.Decl.(*ast.ModalItem)
	if !ok {
		return Layout{}, false
	}
	env := genericEnv(decl.Generics, st.args)
	for _, s := range decl.States {
		if s.Name != st.state {
			continue
		}
		fields := make([]Type, len(s.Fields))
		for i, f := range s.Fields {
			ft, err := tb.Build(f.Type, env)
			if err != nil {
				return Layout{}, false
			}
			fields[i] = ft
		}
		return tb.sequentialLayout(fields)
	}
	return Layout{}, false
}

// Package symbol implements the deterministic mangled-symbol generation
// SPEC_FULL.md §0 assigns its own package to, distinct from
// `internal/generics.Mangle`'s internal dedup key: this is the name a
// `Call` IR node actually tags its callee with (spec.md §3.4), so it
// has to be stable across compiler runs, collision-resistant across
// unrelated declarations, and bounded in length even for a generic
// instantiated with a long or deeply-nested argument list.
package symbol

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cursive-lang/cursive0/internal/types"
	"golang.org/x/crypto/blake2b"
)

// maxInlineArgs bounds how much of a generic instantiation's argument
// list is spelled out verbatim in the symbol; beyond it the encoded
// argument list is replaced by a short content hash, since a symbol
// name linear in argument-list size is a real cost for a deeply nested
// instantiation chain (spec.md §4.3.2's recursion makes these possible).
const maxInlineArgs = 64

// Mangle produces the linker symbol for a declaration at path (module-
// qualified segments, e.g. {"collections", "List"}) named name,
// optionally instantiated at args for a generic. The encoding is
// Itanium-flavored length-prefixed identifiers, not the Itanium ABI
// itself — Cursive0 has its own ABI, not C++'s — but borrows the same
// "length then bytes" trick so no separator character needs escaping.
func Mangle(path []string, name string, args []types.Type) string {
	var b strings.Builder
	b.WriteString("_CV0")
	for _, seg := range path {
		writeIdent(&b, seg)
	}
	writeIdent(&b, name)
	if len(args) > 0 {
		writeArgs(&b, args)
	}
	return b.String()
}

// MangleModalTransition produces the symbol for a transition method on
// one state of a modal declaration: the modal's own path/name, then the
// state name and transition name as two more length-prefixed segments,
// matching `internal/resolve`'s own "Owner::State::Transition" key
// shape but in mangled form.
func MangleModalTransition(path []string, modalName, stateName, transitionName string) string {
	var b strings.Builder
	b.WriteString("_CV0")
	for _, seg := range path {
		writeIdent(&b, seg)
	}
	writeIdent(&b, modalName)
	writeIdent(&b, stateName)
	writeIdent(&b, transitionName)
	return b.String()
}

// MangleMethod produces the symbol for a class method: the class's
// path/name followed by the method name, mirroring `internal/resolve`'s
// "Owner::Method" key shape.
func MangleMethod(path []string, className, methodName string) string {
	var b strings.Builder
	b.WriteString("_CV0")
	for _, seg := range path {
		writeIdent(&b, seg)
	}
	writeIdent(&b, className)
	writeIdent(&b, methodName)
	return b.String()
}

func writeIdent(b *strings.Builder, s string) {
	fmt.Fprintf(b, "%d%s", len(s), s)
}

func writeArgs(b *strings.Builder, args []types.Type) {
	b.WriteByte('I')
	encoded := make([]string, len(args))
	total := 0
	for i, a := range args {
		encoded[i] = mangleType(a)
		total += len(encoded[i])
	}
	if total > maxInlineArgs {
		b.WriteByte('H')
		b.WriteString(hashArgs(encoded))
	} else {
		for _, e := range encoded {
			b.WriteString(e)
		}
	}
	b.WriteByte('E')
}

// hashArgs blake2b-hashes the joined encoded argument list and returns
// a short stable hex tag, so symbols for deeply-nested generic
// instantiations stay a fixed size regardless of how large the
// substituted type actually is.
func hashArgs(encoded []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(encoded, "|")))
	return hex.EncodeToString(sum[:8])
}

// mangleType renders t as a length-prefixed identifier fragment,
// recursing through every type constructor `internal/types` exposes a
// public accessor for.
func mangleType(t types.Type) string {
	if t == nil {
		return "0_"
	}
	if name, ok := types.AsPrimitive(t); ok {
		return letterIdent("p", name)
	}
	if bytesFlag, state, ok := types.AsString(t); ok {
		kind := "str"
		if bytesFlag {
			kind = "bytes"
		}
		return letterIdent("s", kind+"@"+state)
	}
	if elem, state, ok := types.AsPtr(t); ok {
		return "P" + letterIdent("", state) + mangleType(elem)
	}
	if elem, mut, ok := types.AsRawPtr(t); ok {
		tag := "c"
		if mut {
			tag = "m"
		}
		return "R" + tag + mangleType(elem)
	}
	if elems, ok := types.AsTuple(t); ok {
		return "T" + mangleList(elems) + "E"
	}
	if elem, length, ok := types.AsArray(t); ok {
		return fmt.Sprintf("A%d_%s", length, mangleType(elem))
	}
	if elem, ok := types.AsSlice(t); ok {
		return "S" + mangleType(elem)
	}
	if members, ok := types.AsUnion(t); ok {
		return "U" + mangleList(members) + "E"
	}
	if params, ret, ok := types.AsFunc(t); ok {
		return "F" + mangleList(params) + "_" + mangleType(ret)
	}
	if path, args, ok := types.AsNamed(t); ok {
		out := "N" + letterIdent("", path)
		if len(args) > 0 {
			out += "I" + mangleList(args) + "E"
		}
		return out
	}
	if path, args, state, ok := types.AsModalState(t); ok {
		out := "M" + letterIdent("", path)
		if len(args) > 0 {
			out += "I" + mangleList(args) + "E"
		}
		return out + "@" + letterIdent("", state)
	}
	if perm, elem, ok := types.AsPerm(t); ok {
		return permTag(perm) + mangleType(elem)
	}
	if underlying, _, ok := types.AsRefinement(t); ok {
		return "K" + mangleType(underlying)
	}
	if path, ok := types.AsOpaque(t); ok {
		return "O" + letterIdent("", path)
	}
	if classPath, ok := types.AsDyn(t); ok {
		return "D" + letterIdent("", classPath)
	}
	if out, in, result, err, ok := types.AsAsync(t); ok {
		return "Y" + mangleType(out) + mangleType(in) + mangleType(result) + mangleType(err)
	}
	if name, ok := types.AsTypeVar(t); ok {
		return "V" + letterIdent("", name)
	}
	return letterIdent("x", t.String())
}

func mangleList(ts []types.Type) string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(mangleType(t))
	}
	return b.String()
}

func permTag(p types.Permission) string {
	switch p {
	case types.PermUnique:
		return "Gu"
	case types.PermShared:
		return "Gs"
	default:
		return "Gc"
	}
}

func letterIdent(prefix, s string) string {
	return fmt.Sprintf("%s%d%s", prefix, len(s), s)
}

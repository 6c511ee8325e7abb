// Package pipeline wires every analysis stage together: Source ->
// Tokens -> AST -> Resolved AST -> Typed AST -> IR (SPEC_FULL.md §0),
// the same end-to-end driver role the teacher's own internal/pipeline
// plays for ailang, generalized from a single-mode interpreter pipeline
// to a compiler front end with no evaluation step.
package pipeline

import (
	"time"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/check"
	"github.com/cursive-lang/cursive0/internal/config"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/generics"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/modal"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/region"
	"github.com/cursive-lang/cursive0/internal/resolve"
	"github.com/cursive-lang/cursive0/internal/source"
	"github.com/cursive-lang/cursive0/internal/types"
)

// Source is one compilation unit's raw input, mirroring the teacher's
// own pipeline.Source (Code/Filename), minus the REPL-specific fields
// this front end (no evaluator) has no use for.
type Source struct {
	Code     string
	Filename string
}

// Artifacts holds every intermediate representation a caller (a
// `cmd/cursive0` subcommand, a golden test) might want to inspect,
// mirroring the teacher's Artifacts struct's role of exposing each
// phase's output rather than only the final one.
type Artifacts struct {
	File     *ast.File
	Resolved *resolve.Result
	Types    *types.Table
	Generics *generics.Engine
	Modal    modal.Result
	Lowered  map[string]Procedure
}

// Result is what Run returns: the populated artifacts, the diagnostic
// sink every phase reported into, and per-phase wall-clock timings —
// the same three-part shape (payload / diagnostics / timings) the
// teacher's Result carries.
type Result struct {
	Artifacts    Artifacts
	Sink         *diag.Sink
	PhaseTimings map[string]int64 // milliseconds
}

// Run executes the full front end over one source file: lex, parse,
// resolve, build the type table, bidirectionally check, drain the
// monomorphization queue, run the region/modal/concurrency passes (the
// last piggybacks on check's own traversal, so it needs no call here),
// then lower every checked procedure to IR.
func Run(cfg config.Config, src Source) Result {
	res := Result{PhaseTimings: make(map[string]int64)}
	sink := diag.NewSink()
	sink.PushAllow(allowCodes(cfg.Allow))
	res.Sink = sink

	timed(res.PhaseTimings, "lex+parse", func() {
		f := source.NewFile(src.Filename, []byte(src.Code))
		toks, docs, unsafe := lexer.Tokenize(f)
		file := parser.Parse(f, toks, docs, unsafe, sink)
		ast.AttachDocs(file, docs)
		res.Artifacts.File = file
	})
	if res.Artifacts.File == nil {
		return res
	}

	var resolved *resolve.Result
	timed(res.PhaseTimings, "resolve", func() {
		resolved = resolve.Resolve([]*ast.File{res.Artifacts.File}, sink)
		res.Artifacts.Resolved = resolved
	})

	var tb *types.Table
	timed(res.PhaseTimings, "check", func() {
		tb = types.NewTable(resolved.Sigma)
		res.Artifacts.Types = tb
		c := check.New(tb, resolved, sink, types.DefaultProver).WithWidenThreshold(cfg.WidenWarnThresholdBytes)
		c.CheckFile(res.Artifacts.File)

		eng := generics.NewEngine(tb, resolved, sink)
		eng.SetMaxDepth(cfg.MonomorphizationDepth)
		eng.Enqueue(c.Demands()...)
		eng.Run()
		res.Artifacts.Generics = eng
	})

	timed(res.PhaseTimings, "region", func() {
		region.NewAnalyzer(sink).AnalyzeFile(res.Artifacts.File)
	})

	timed(res.PhaseTimings, "modal", func() {
		res.Artifacts.Modal = modal.AnalyzeFileWithNiche(tb, sink, res.Artifacts.File, cfg.NicheOptimization)
	})

	timed(res.PhaseTimings, "lower", func() {
		res.Artifacts.Lowered = LowerFile(tb, resolved, res.Artifacts.File)
	})

	return res
}

func allowCodes(names []string) []diag.Code {
	codes := make([]diag.Code, len(names))
	for i, n := range names {
		codes[i] = diag.Code(n)
	}
	return codes
}

func timed(into map[string]int64, phase string, fn func()) {
	start := time.Now()
	fn()
	into[phase] = time.Since(start).Milliseconds()
}

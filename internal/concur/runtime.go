package concur

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work a reference-interpreted parallel/spawn/
// dispatch construct runs. It is not a language-level value — the
// actual interpreter for Cursive0 expressions lives outside this
// bootstrap stage — but running real goroutines through it is the only
// way to test that the lowering this package describes actually gives
// callers the ordering guarantees spec.md §5 promises: first-panic-wins
// within a parallel block, and a dispatch's result order matching
// iteration order regardless of which goroutine finishes first.
type Task func(ctx context.Context) (any, error)

// RunParallel runs every task to completion inside one `parallel`
// block's scope: all of them happen-after entry and happen-before this
// call returns, and the first one to fail cancels the rest's context
// and is the error this call returns — the fork-join, first-panic-wins
// semantics spec.md §4.6 and §5 describe for `parallel`.
func RunParallel(ctx context.Context, tasks []Task) ([]any, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]any, len(tasks))
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			r, err := t(gctx)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Handle is the reference-interpreter analogue of `Spawned<T>`: a
// task scheduled on a parallel ctx, extracted later by Wait.
type Handle struct {
	done   chan struct{}
	result any
	err    error
}

// Spawn schedules t and returns immediately with a Handle, mirroring
// `spawn { ... }`'s non-blocking scheduling onto the current parallel
// context.
func Spawn(ctx context.Context, t Task) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.result, h.err = t(ctx)
	}()
	return h
}

// Wait blocks until h's task completes and extracts its result,
// mirroring `wait(h)`.
func Wait(h *Handle) (any, error) {
	<-h.done
	return h.result, h.err
}

// DispatchOptions mirrors ast.DispatchOptions at the reference-
// interpreter level: a reduce combinator, whether it must be applied
// in index order, and an optional fixed chunk size.
type DispatchOptions struct {
	Reduce  func(acc, next any) any
	Zero    any
	Ordered bool
	Chunk   int
}

// Dispatch runs body(i) for every i in [0,n) — chunked, if Opts.Chunk
// is set, into contiguous spans run by one goroutine each — and folds
// the results with Opts.Reduce if one is given. Ordered reduction
// folds strictly by index; unordered reduction folds in whatever order
// the index set happens to iterate in, which is only sound for the
// commutative operators the checker already restricted an unordered
// reduce to.
func Dispatch(ctx context.Context, n int, opts DispatchOptions, body func(ctx context.Context, i int) (any, error)) (any, error) {
	chunk := opts.Chunk
	if chunk <= 0 {
		chunk = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	values := make(map[int]any, n)

	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error {
			for i := start; i < end; i++ {
				v, err := body(gctx, i)
				if err != nil {
					return err
				}
				if opts.Reduce != nil {
					mu.Lock()
					values[i] = v
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if opts.Reduce == nil {
		return nil, nil
	}

	indices := make([]int, 0, len(values))
	for i := range values {
		indices = append(indices, i)
	}
	if opts.Ordered {
		sort.Ints(indices)
	}
	acc := opts.Zero
	for _, i := range indices {
		acc = opts.Reduce(acc, values[i])
	}
	return acc, nil
}

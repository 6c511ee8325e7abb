package concur

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/ast"
	"github.com/cursive-lang/cursive0/internal/diag"
	"github.com/cursive-lang/cursive0/internal/lexer"
	"github.com/cursive-lang/cursive0/internal/parser"
	"github.com/cursive-lang/cursive0/internal/source"
	"github.com/cursive-lang/cursive0/internal/types"
)

func TestRunParallelCollectsResultsInOrder(t *testing.T) {
	tasks := []Task{
		func(ctx context.Context) (any, error) { return 1, nil },
		func(ctx context.Context) (any, error) { return 2, nil },
		func(ctx context.Context) (any, error) { return 3, nil },
	}
	results, err := RunParallel(context.Background(), tasks)
	require.NoError(t, err)
	require.Equal(t, []any{1, 2, 3}, results)
}

func TestRunParallelFirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task{
		func(ctx context.Context) (any, error) { return 1, nil },
		func(ctx context.Context) (any, error) { return nil, boom },
	}
	_, err := RunParallel(context.Background(), tasks)
	require.ErrorIs(t, err, boom)
}

func TestSpawnAndWait(t *testing.T) {
	h := Spawn(context.Background(), func(ctx context.Context) (any, error) { return 42, nil })
	v, err := Wait(h)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestDispatchOrderedReduceFoldsByIndex(t *testing.T) {
	got, err := Dispatch(context.Background(), 5, DispatchOptions{
		Ordered: true,
		Reduce:  func(acc, next any) any { return acc.(string) + next.(string) },
		Zero:    "",
	}, func(ctx context.Context, i int) (any, error) {
		return string(rune('a' + i)), nil
	})
	require.NoError(t, err)
	require.Equal(t, "abcde", got)
}

func TestDispatchPropagatesBodyError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Dispatch(context.Background(), 4, DispatchOptions{}, func(ctx context.Context, i int) (any, error) {
		if i == 2 {
			return nil, boom
		}
		return i, nil
	})
	require.ErrorIs(t, err, boom)
}

func TestDispatchNoReduceReturnsNil(t *testing.T) {
	got, err := Dispatch(context.Background(), 3, DispatchOptions{}, func(ctx context.Context, i int) (any, error) {
		return i, nil
	})
	require.NoError(t, err)
	require.Nil(t, got)
}

func parseProcBody(t *testing.T, src string) *ast.Block {
	t.Helper()
	f := source.NewFile("test://unit", []byte(src))
	toks, docs, unsafeSpans := lexer.Tokenize(f)
	sink := diag.NewSink()
	file := parser.Parse(f, toks, docs, unsafeSpans, sink)
	require.False(t, sink.HasErrors(), "unexpected parse errors: %v", sink.All())

	for _, item := range file.Items {
		if p, ok := item.(*ast.ProcedureItem); ok {
			return p.Body
		}
	}
	t.Fatal("no procedure found")
	return nil
}

func TestCheckSpawnRejectsBareUniqueCapture(t *testing.T) {
	body := parseProcBody(t, `procedure f(u: i32) -> i32 {
  result spawn {
    u
  }
}
`)
	spawnExpr, ok := body.Stmts[0].(*ast.ResultStmt).Value.(*ast.SpawnExpr)
	require.True(t, ok)

	sink := diag.NewSink()
	perm := func(name string) (types.Permission, bool) {
		if name == "u" {
			return types.PermUnique, true
		}
		return 0, false
	}
	CheckSpawn(sink, perm, spawnExpr)
	require.True(t, sink.HasErrors())
	require.Equal(t, diag.EConParallel, sink.All()[0].Code)
}

func TestCheckSpawnAcceptsMovedUniqueCapture(t *testing.T) {
	body := parseProcBody(t, `procedure f(u: i32) -> i32 {
  result spawn {
    move u
  }
}
`)
	spawnExpr, ok := body.Stmts[0].(*ast.ResultStmt).Value.(*ast.SpawnExpr)
	require.True(t, ok)

	sink := diag.NewSink()
	perm := func(name string) (types.Permission, bool) {
		if name == "u" {
			return types.PermUnique, true
		}
		return 0, false
	}
	CheckSpawn(sink, perm, spawnExpr)
	require.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.All())
}

func TestCheckSpawnIgnoresNonUniqueCapture(t *testing.T) {
	body := parseProcBody(t, `procedure f(n: i32) -> i32 {
  result spawn {
    n
  }
}
`)
	spawnExpr, ok := body.Stmts[0].(*ast.ResultStmt).Value.(*ast.SpawnExpr)
	require.True(t, ok)

	sink := diag.NewSink()
	perm := func(name string) (types.Permission, bool) {
		return types.PermShared, true
	}
	CheckSpawn(sink, perm, spawnExpr)
	require.False(t, sink.HasErrors())
}

func TestCheckDispatchRejectsNonCommutativeUnorderedReduce(t *testing.T) {
	body := parseProcBody(t, `procedure f(xs: [i32]) -> i32 {
  result dispatch i in 0..10 [reduce: concat] {
    xs[i]
  }
}
`)
	dispatchExpr, ok := body.Stmts[0].(*ast.ResultStmt).Value.(*ast.DispatchExpr)
	require.True(t, ok)

	sink := diag.NewSink()
	CheckDispatch(sink, nil, dispatchExpr)
	require.True(t, sink.HasErrors())
	require.Equal(t, diag.EConParallel, sink.All()[0].Code)
}

func TestCheckDispatchAcceptsCommutativeReduce(t *testing.T) {
	body := parseProcBody(t, `procedure f(xs: [i32]) -> i32 {
  result dispatch i in 0..10 [reduce: min] {
    xs[i]
  }
}
`)
	dispatchExpr, ok := body.Stmts[0].(*ast.ResultStmt).Value.(*ast.DispatchExpr)
	require.True(t, ok)

	sink := diag.NewSink()
	CheckDispatch(sink, nil, dispatchExpr)
	require.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.All())
}

func TestCheckDispatchAcceptsOrderedNonCommutativeReduce(t *testing.T) {
	body := parseProcBody(t, `procedure f(xs: [i32]) -> i32 {
  result dispatch i in 0..10 [reduce: concat, ordered] {
    xs[i]
  }
}
`)
	dispatchExpr, ok := body.Stmts[0].(*ast.ResultStmt).Value.(*ast.DispatchExpr)
	require.True(t, ok)

	sink := diag.NewSink()
	CheckDispatch(sink, nil, dispatchExpr)
	require.False(t, sink.HasErrors(), "ordered exempts a non-commutative reduce op")
}

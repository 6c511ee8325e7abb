package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSprintLeaf(t *testing.T) {
	n := &ReadVar{Name: "x"}
	got := Sprint(n)
	require.True(t, strings.HasPrefix(got, "(ReadVar :type ?\n"))
	require.Contains(t, got, `name: "x"`)
}

func TestSprintNil(t *testing.T) {
	require.Equal(t, "<nil>\n", Sprint(nil))
}

func TestSprintNestedIf(t *testing.T) {
	n := &If{
		Cond: &ReadVar{Name: "cond"},
		Then: &Return{Value: &ReadVar{Name: "a"}},
		Else: &Return{Value: &ReadVar{Name: "b"}},
	}
	got := Sprint(n)
	require.Contains(t, got, "(If :type ?")
	require.Contains(t, got, "cond:")
	require.Contains(t, got, "then:")
	require.Contains(t, got, "else:")
	require.Contains(t, got, `name: "a"`)
	require.Contains(t, got, `name: "b"`)
}

func TestSprintBlockWithTail(t *testing.T) {
	n := &Block{
		Body: []Node{
			&BindVar{Name: "x", Value: &ReadVar{Name: "init"}},
		},
		Tail: &ReadVar{Name: "x"},
	}
	got := Sprint(n)
	require.Contains(t, got, "stmt0:")
	require.Contains(t, got, "tail:")
	require.Contains(t, got, "(BindVar")
}

func TestSprintCallWithArgs(t *testing.T) {
	n := &Call{
		Symbol: "_CV04main",
		Callee: &ReadVar{Name: "f"},
		Args:   []Node{&ReadVar{Name: "a"}, &ReadVar{Name: "b"}},
	}
	got := Sprint(n)
	require.Contains(t, got, `symbol: "_CV04main"`)
	require.Contains(t, got, "arg0:")
	require.Contains(t, got, "arg1:")
}

func TestSprintMatchArms(t *testing.T) {
	n := &Match{
		Scrutinee: &ReadVar{Name: "x"},
		Arms: []MatchArm{
			{Pattern: "Some(v)", Body: &ReadVar{Name: "v"}},
			{Pattern: "None", Guard: &ReadVar{Name: "g"}, Body: &ReadVar{Name: "fallback"}},
		},
	}
	got := Sprint(n)
	require.Contains(t, got, "arm0: Some(v)")
	require.Contains(t, got, "arm1: None")
	require.Contains(t, got, "guard:")
}

func TestSprintIndentationNests(t *testing.T) {
	n := &Block{Body: []Node{&Block{Body: []Node{&ReadVar{Name: "inner"}}}}}
	got := Sprint(n)
	lines := strings.Split(got, "\n")
	var deepest int
	for _, l := range lines {
		if strings.Contains(l, "inner") {
			deepest = len(l) - len(strings.TrimLeft(l, " "))
		}
	}
	require.Greater(t, deepest, 0, "a nested node must be indented deeper than its parent")
}

func TestBaseAccessors(t *testing.T) {
	b := Base{NodeID: 7}
	n := &ReadVar{Base: b, Name: "v"}
	require.Equal(t, uint64(7), n.ID())
	require.Nil(t, n.Type())
}

package diag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursive-lang/cursive0/internal/source"
)

func span(offset int) source.Span {
	f := source.NewFile("test://unit", []byte("0123456789"))
	return f.Span(offset, offset+1)
}

func TestCodeSeverity(t *testing.T) {
	require.Equal(t, Error, ETypMismatch.Severity())
	require.Equal(t, Warning, WImplicitWiden.Severity())
}

func TestSinkReportAndHasErrors(t *testing.T) {
	sink := NewSink()
	require.False(t, sink.HasErrors())

	sink.Warnf(WStaleBinding, span(0), "stale binding %s", "x")
	require.False(t, sink.HasErrors(), "a warning alone must not trip HasErrors")

	sink.Errorf(ETypMismatch, span(1), "mismatch")
	require.True(t, sink.HasErrors())
	require.Len(t, sink.All(), 2)
}

func TestSinkDiscoveryOrder(t *testing.T) {
	sink := NewSink()
	sink.Errorf(ETypMismatch, span(5), "second")
	sink.Errorf(ETypMismatch, span(1), "first")
	all := sink.All()
	require.Equal(t, "second", all[0].Message)
	require.Equal(t, "first", all[1].Message)
}

func TestPushAllowSuppresses(t *testing.T) {
	sink := NewSink()
	sink.PushAllow([]Code{ETypMismatch})
	sink.Errorf(ETypMismatch, span(0), "suppressed")
	sink.Errorf(ETypUnresolved, span(0), "not suppressed")
	require.Len(t, sink.All(), 1)
	require.Equal(t, "not suppressed", sink.All()[0].Message)
}

func TestPopAllowRestoresReporting(t *testing.T) {
	sink := NewSink()
	sink.PushAllow([]Code{ETypMismatch})
	sink.PopAllow()
	sink.Errorf(ETypMismatch, span(0), "reported again")
	require.Len(t, sink.All(), 1)
}

func TestPushAllowNestsAcrossSubtrees(t *testing.T) {
	sink := NewSink()
	sink.PushAllow([]Code{ETypMismatch})
	sink.PushAllow([]Code{ETypUnresolved})
	sink.Errorf(ETypMismatch, span(0), "outer-allowed")
	sink.Errorf(ETypUnresolved, span(0), "inner-allowed")
	sink.PopAllow()
	sink.Errorf(ETypUnresolved, span(0), "no longer allowed")
	require.Len(t, sink.All(), 1)
	require.Equal(t, "no longer allowed", sink.All()[0].Message)
}

func TestMergePreservesAndSortsBySpan(t *testing.T) {
	a := NewSink()
	a.Errorf(ETypMismatch, span(5), "a")
	b := NewSink()
	b.Errorf(ETypMismatch, span(1), "b")

	merged := Merge(a, b)
	all := merged.All()
	require.Len(t, all, 2)
	require.Equal(t, "b", all[0].Message)
	require.Equal(t, "a", all[1].Message)
}

package walk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()

	ts, err := time.Parse("2006-01-02T15:04:05Z", s)
	require.NoError(t, err)

	return ts
}

// S1: single commit, single file.
func TestWalkerSingleCommit(t *testing.T) {
	p := newFakeProvider()
	p.addCommit(1, mustDate(t, "2020-03-15T12:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3", "l4", "l5"},
	})

	w := New(p, Options{SampleDays: 7})

	table, err := w.Run(context.Background())
	require.NoError(t, err)

	out := table.Build()
	require.Equal(t, []string{"2020-03-15"}, out.TS)
	require.Equal(t, []int32{2020}, out.YS)
	require.Equal(t, [][]int64{{5}}, out.Data)
}

// S2: two commits, append only.
func TestWalkerAppend(t *testing.T) {
	p := newFakeProvider()
	p.addCommit(1, mustDate(t, "2020-01-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3"},
	})
	p.addCommit(2, mustDate(t, "2021-01-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3", "l4", "l5"},
	}, 1)

	w := New(p, Options{SampleDays: 1})

	table, err := w.Run(context.Background())
	require.NoError(t, err)

	out := table.Build()
	require.Equal(t, []int32{2020, 2021}, out.YS)
	require.Equal(t, [][]int64{{3, 3}, {0, 2}}, out.Data)
}

// S3: replace middle lines.
func TestWalkerReplaceMiddle(t *testing.T) {
	p := newFakeProvider()
	p.addCommit(1, mustDate(t, "2020-01-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3", "l4", "l5"},
	})
	p.addCommit(2, mustDate(t, "2022-06-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "n1", "n2", "n3", "n4", "l4", "l5"},
	}, 1)

	w := New(p, Options{SampleDays: 1})

	table, err := w.Run(context.Background())
	require.NoError(t, err)

	out := table.Build()

	counts := map[int32]int64{}
	for i, y := range out.YS {
		counts[y] = out.Data[i][len(out.TS)-1]
	}

	require.Equal(t, int64(3), counts[2020])
	require.Equal(t, int64(4), counts[2022])
}

// S4: delete file.
func TestWalkerDeleteFile(t *testing.T) {
	p := newFakeProvider()
	p.addCommit(1, mustDate(t, "2020-01-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3"},
	})
	p.addCommit(2, mustDate(t, "2021-01-01T00:00:00Z"), map[string][]string{}, 1)

	w := New(p, Options{SampleDays: 1})

	table, err := w.Run(context.Background())
	require.NoError(t, err)

	out := table.Build()
	require.Equal(t, int64(0), out.Data[0][len(out.TS)-1])
}

// S5: vendored paths are excluded from tracking by the predicate. Binary
// detection itself lives in gitObjectProvider.isBinary, which this
// in-memory fakeProvider never calls — see TestIsBinary in
// gitprovider_test.go for that half of S5.
func TestWalkerExcludesVendoredPaths(t *testing.T) {
	p := newFakeProvider()
	p.addCommit(1, mustDate(t, "2020-01-01T00:00:00Z"), map[string][]string{
		"a.txt":        {"l1", "l2"},
		"vendor/b.txt": {"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8", "v9", "v10"},
	})

	predicate, err := NewFilter(FilterOptions{BlacklistedPrefixes: []string{"vendor/"}})
	require.NoError(t, err)

	w := New(p, Options{SampleDays: 1, Predicate: predicate})

	table, err := w.Run(context.Background())
	require.NoError(t, err)

	out := table.Build()
	require.Equal(t, int64(2), out.Data[0][0])
}

// S6: merge linearization via first-parent-only propagation. Commit 4's
// second parent (3) contributes nothing: its l4 line is invisible to the
// walk, and the l4 that does show up in commit 4's tree is attributed as a
// fresh addition against commit 4's own first parent (2).
func TestWalkerMergeFirstParentOnly(t *testing.T) {
	p := newFakeProvider()
	p.addCommit(1, mustDate(t, "2020-01-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2"},
	})
	p.addCommit(2, mustDate(t, "2020-06-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3"},
	}, 1)
	p.addCommit(3, mustDate(t, "2020-07-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l4"},
	}, 1)
	p.addCommit(4, mustDate(t, "2021-01-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3", "l4"},
	}, 2, 3)

	w := New(p, Options{SampleDays: 1})

	table, err := w.Run(context.Background())
	require.NoError(t, err)

	out := table.Build()

	counts := map[int32]int64{}
	for i, y := range out.YS {
		counts[y] = out.Data[i][len(out.TS)-1]
	}

	require.Equal(t, int64(3), counts[2020])
	require.Equal(t, int64(1), counts[2021])
}

// recordingMetrics is a test double for Metrics that just counts calls.
type recordingMetrics struct {
	calls int
}

func (m *recordingMetrics) RecordCommit(_ context.Context, _ int64, _ int64) {
	m.calls++
}

func TestWalkerReportsMetricsPerCommit(t *testing.T) {
	p := newFakeProvider()
	p.addCommit(1, mustDate(t, "2020-01-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3"},
	})
	p.addCommit(2, mustDate(t, "2021-01-01T00:00:00Z"), map[string][]string{
		"a.txt": {"l1", "l2", "l3", "l4", "l5"},
	}, 1)

	metrics := &recordingMetrics{}
	w := New(p, Options{SampleDays: 1, Metrics: metrics})

	_, err := w.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, metrics.calls)
}

package cohort

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTableBuildRectangular(t *testing.T) {
	table := NewTable()
	table.Add(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), map[int32]int64{2020: 5})
	table.Add(time.Date(2020, 1, 8, 0, 0, 0, 0, time.UTC), map[int32]int64{2020: 3, 2019: 2})

	out := table.Build()

	require.Equal(t, []string{"2020-01-01", "2020-01-08"}, out.TS)
	require.Equal(t, []int32{2019, 2020}, out.YS)
	require.Equal(t, []string{"2019", "2020"}, out.Labels)
	require.Equal(t, [][]int64{{0, 2}, {5, 3}}, out.Data)
}

func TestTableBuildEmpty(t *testing.T) {
	table := NewTable()
	out := table.Build()

	require.Empty(t, out.TS)
	require.Empty(t, out.YS)
}

func TestTableDensifyCarriesForward(t *testing.T) {
	table := NewTable()
	table.Add(time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC), map[int32]int64{2020: 1})
	table.Add(time.Date(2020, 1, 27, 0, 0, 0, 0, time.UTC), map[int32]int64{2020: 4})

	table.Densify(7)

	out := table.Build()
	require.Len(t, out.TS, 4)
	require.Equal(t, []int64{1, 1, 1, 4}, out.Data[0])
}

func TestTableDensifyNoSamples(t *testing.T) {
	table := NewTable()
	table.Densify(7)

	require.Empty(t, table.samples)
}

func TestWriteJSONAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cohorts.json")

	data := CohortJSON{
		TS:     []string{"2020-01-01"},
		YS:     []int32{2020},
		Labels: []string{"2020"},
		Data:   [][]int64{{5}},
	}

	require.NoError(t, WriteJSON(path, data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no .tmp file should remain after a successful write")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var roundTrip CohortJSON
	require.NoError(t, json.Unmarshal(raw, &roundTrip))
	require.Equal(t, data, roundTrip)
}

func TestWriteJSONRejectsBadDir(t *testing.T) {
	err := WriteJSON(filepath.Join(t.TempDir(), "nonexistent-subdir", "cohorts.json"), CohortJSON{})
	require.ErrorIs(t, err, ErrIO)
}

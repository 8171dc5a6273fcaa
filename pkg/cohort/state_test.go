package cohort

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRootBlameState(t *testing.T) {
	state := NewRootBlameState(2020, map[string]int{"a.txt": 3, "b.txt": 0})

	require.ElementsMatch(t, []string{"a.txt", "b.txt"}, state.Paths())
	require.Equal(t, []int32{2020, 2020, 2020}, state.FileBlame("a.txt").Flatten())
	require.Equal(t, 0, state.FileBlame("b.txt").Len())
	require.Nil(t, state.FileBlame("missing.txt"))
}

func TestDeriveAddedPath(t *testing.T) {
	parent := NewRootBlameState(2020, map[string]int{"a.txt": 2})

	child, err := Derive(parent, []Change{
		{Path: "a.txt", Kind: Unchanged},
		{Path: "b.txt", Kind: Added},
	}, 2021, map[string]int{"b.txt": 3}, 4)
	require.NoError(t, err)

	require.Equal(t, []int32{2020, 2020}, child.FileBlame("a.txt").Flatten())
	require.Equal(t, []int32{2021, 2021, 2021}, child.FileBlame("b.txt").Flatten())

	// Parent must be unaffected.
	require.Nil(t, parent.FileBlame("b.txt"))
}

func TestDeriveRemovedPath(t *testing.T) {
	parent := NewRootBlameState(2020, map[string]int{"a.txt": 2, "b.txt": 1})

	child, err := Derive(parent, []Change{
		{Path: "a.txt", Kind: Unchanged},
		{Path: "b.txt", Kind: Removed},
	}, 2021, map[string]int{}, 2)
	require.NoError(t, err)

	require.Nil(t, child.FileBlame("b.txt"))
	require.NotNil(t, parent.FileBlame("b.txt"), "parent state must still see the removed path")
}

func TestDeriveChangedPathSharesParentUntouched(t *testing.T) {
	parent := NewRootBlameState(2020, map[string]int{"a.txt": 3})

	child, err := Derive(parent, []Change{
		{Path: "a.txt", Kind: Changed, Hunks: []HunkEdit{{OldStart: 3, OldLen: 0, NewLen: 2}}},
	}, 2021, map[string]int{"a.txt": 5}, 1)
	require.NoError(t, err)

	require.Equal(t, []int32{2020, 2020, 2020}, parent.FileBlame("a.txt").Flatten())
	require.Equal(t, []int32{2020, 2020, 2020, 2021, 2021}, child.FileBlame("a.txt").Flatten())
}

func TestDeriveUnchangedSharesFileBlamePointer(t *testing.T) {
	parent := NewRootBlameState(2020, map[string]int{"a.txt": 3})

	child, err := Derive(parent, []Change{
		{Path: "a.txt", Kind: Unchanged},
	}, 2021, map[string]int{}, 3)
	require.NoError(t, err)

	require.Same(t, parent.FileBlame("a.txt"), child.FileBlame("a.txt"))
}

func TestDeriveShardsAcrossManyPaths(t *testing.T) {
	lineCounts := map[string]int{}
	changes := make([]Change, 0, 50)

	for i := range 50 {
		path := "file" + string(rune('a'+i%26)) + string(rune('A'+i/26))
		lineCounts[path] = 1
		changes = append(changes, Change{Path: path, Kind: Added})
	}

	parent := &BlameState{files: map[string]*FileBlame{}}

	child, err := Derive(parent, changes, 2020, lineCounts, 8)
	require.NoError(t, err)
	require.Len(t, child.Paths(), 50)

	for path := range lineCounts {
		require.Equal(t, 1, child.FileBlame(path).Len())
	}
}

func TestDeriveRejectsLengthMismatch(t *testing.T) {
	parent := NewRootBlameState(2020, map[string]int{"a.txt": 3})

	_, err := Derive(parent, []Change{
		{Path: "a.txt", Kind: Changed, Hunks: []HunkEdit{{OldStart: 0, OldLen: 1, NewLen: 1}}},
	}, 2021, map[string]int{"a.txt": 99}, 1)
	require.ErrorIs(t, err, ErrDiff)
}

func TestDeriveChangedWithNoParentFileBlame(t *testing.T) {
	parent := &BlameState{files: map[string]*FileBlame{}}

	_, err := Derive(parent, []Change{
		{Path: "missing.txt", Kind: Changed, Hunks: []HunkEdit{{OldStart: 0, OldLen: 0, NewLen: 1}}},
	}, 2021, map[string]int{"missing.txt": 1}, 1)
	require.Error(t, err)
}

func TestBlameStateRetainRelease(t *testing.T) {
	s := NewRootBlameState(2020, map[string]int{"a.txt": 1})

	s.Retain(2)
	require.False(t, s.Release())
	require.True(t, s.Release())
}

func TestBlameStateAggregate(t *testing.T) {
	state := NewRootBlameState(2020, map[string]int{"a.txt": 2, "b.txt": 3})

	child, err := Derive(state, []Change{
		{Path: "a.txt", Kind: Unchanged},
		{Path: "b.txt", Kind: Unchanged},
		{Path: "c.txt", Kind: Added},
	}, 2021, map[string]int{"c.txt": 4}, 2)
	require.NoError(t, err)

	require.Equal(t, map[int32]int64{2020: 5, 2021: 4}, child.Aggregate())
}

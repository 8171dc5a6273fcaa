package walk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestIsBinary covers the §4.1 NUL-sniff binary exclusion that
// gitObjectProvider.TreeFiles applies before a path ever reaches the
// caller's predicate; TestWalkerExcludesVendoredPaths in walker_test.go
// only exercises the predicate half of S5 against the in-memory
// fakeProvider, which never calls isBinary.
func TestIsBinary(t *testing.T) {
	require.True(t, isBinary([]byte("hello\x00world")))
	require.False(t, isBinary([]byte("hello\nworld\n")))
	require.False(t, isBinary(nil))
}

func TestIsBinaryOnlySniffsFirst8KiB(t *testing.T) {
	text := strings.Repeat("a", 8192) + "\x00" + "trailing"

	require.False(t, isBinary([]byte(text)))
}

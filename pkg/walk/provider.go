// Package walk implements the History Walker: it drives a commit-date
// ordered traversal of a repository's ancestry, derives each commit's
// blame state from its first parent, and emits cohort samples along the
// way.
package walk

import (
	"context"
	"time"

	"github.com/amedeedaboville/gix-of-theseus/pkg/gitlib"
)

// CommitInfo is the minimal per-commit metadata the walker needs to compute
// the commit-date-ordered topological order (§4.3): identity, parents, and
// committer timestamp. It intentionally excludes anything requiring the
// commit object to stay open (author, message), since the walker holds many
// of these at once while the frontier is wide.
type CommitInfo struct {
	Hash      gitlib.Hash
	Parents   []gitlib.Hash
	Committed time.Time
}

// Predicate decides whether a tracked path should be included in blame
// tracking. It is applied after binary and symlink/submodule exclusion.
type Predicate func(path string) bool

// ObjectProvider is the read-only facade over a git object database that the
// walker depends on. gitObjectProvider (gitprovider.go) is the concrete
// libgit2-backed implementation; tests use an in-memory fake
// (fakeprovider_test.go) that implements the same interface without a real
// repository.
type ObjectProvider interface {
	// ListCommits returns every ancestor of head, in any order. The walker
	// does not depend on this order: orderCommits re-sorts the commits from
	// their own timestamps and parent lists.
	ListCommits(ctx context.Context, head string) ([]CommitInfo, error)

	// TreeFiles returns the tracked files at commit's tree: path to blob
	// hash, filtered to non-binary blobs accepted by predicate.
	TreeFiles(ctx context.Context, commit gitlib.Hash, predicate Predicate) (map[string]gitlib.Hash, error)

	// BlobLines returns the number of lines in a blob.
	BlobLines(ctx context.Context, blob gitlib.Hash) (int, error)

	// Diff returns the line-level hunks turning oldBlob into newBlob.
	Diff(ctx context.Context, oldBlob, newBlob gitlib.Hash) ([]gitlib.Hunk, error)
}

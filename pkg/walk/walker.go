package walk

import (
	"context"
	"fmt"
	"runtime"

	"github.com/amedeedaboville/gix-of-theseus/pkg/cohort"
	"github.com/amedeedaboville/gix-of-theseus/pkg/gitlib"
)

// Logger is the small structured-logging surface analyzers depend on
// instead of a concrete *slog.Logger, matching the teacher's analyzer
// convention of accepting an interface.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// Metrics is the small observability surface the walker reports progress
// through, implemented by pkg/observability.WalkMetrics. bytesDiffed is the
// sum of changed-line counts across the commit's hunks plus the line counts
// of newly added files (the engine has no byte-level diff, only line-level);
// activeStatesDelta is the change in the
// number of retained blame states after this commit's derive/release.
type Metrics interface {
	RecordCommit(ctx context.Context, bytesDiffed int64, activeStatesDelta int64)
}

// Options configures a Walker.
type Options struct {
	Head       string
	Predicate  Predicate
	SampleDays int
	Workers    int
	Log        Logger
	Metrics    Metrics
}

// Walker drives the commit-date-ordered topological walk, derives each
// commit's blame state from its first parent, and samples the cohort
// distribution into a cohort.Table.
type Walker struct {
	provider ObjectProvider
	opts     Options
}

// New returns a Walker reading from provider with the given options.
func New(provider ObjectProvider, opts Options) *Walker {
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	if opts.Head == "" {
		opts.Head = "HEAD"
	}

	return &Walker{provider: provider, opts: opts}
}

// Run performs the walk and returns the accumulated cohort table. ctx
// cancellation is honored at commit boundaries and before per-file fan-out
// is dispatched.
func (w *Walker) Run(ctx context.Context) (*cohort.Table, error) {
	commits, err := w.provider.ListCommits(ctx, w.opts.Head)
	if err != nil {
		return nil, err
	}

	if len(commits) == 0 {
		return nil, fmt.Errorf("%w: no commits reachable from %q", cohort.ErrConfig, w.opts.Head)
	}

	ordered := orderCommits(commits)
	childCounts := countFirstParentChildren(ordered)

	if w.opts.Log != nil {
		w.opts.Log.Infof("walking %d commits from %s", len(ordered), w.opts.Head)
	}

	states := make(map[gitlib.Hash]*cohort.BlameState, len(ordered))
	treeFiles := make(map[gitlib.Hash]map[string]gitlib.Hash, len(ordered))

	table := cohort.NewTable()
	sampler := NewSampler(w.opts.SampleDays)
	samples := 0

	for i, c := range ordered {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w", cohort.ErrCancelled)
		default:
		}

		files, filesErr := w.provider.TreeFiles(ctx, c.Hash, w.opts.Predicate)
		if filesErr != nil {
			return nil, filesErr
		}

		treeFiles[c.Hash] = files

		activeBefore := len(states)

		state, changedLines, deriveErr := w.deriveStateTracked(ctx, c, files, states, treeFiles)
		if deriveErr != nil {
			return nil, deriveErr
		}

		if n := childCounts[c.Hash]; n > 0 {
			state.Retain(n)
			states[c.Hash] = state
		} else {
			delete(treeFiles, c.Hash)
		}

		if w.releaseParent(c, states) {
			delete(states, c.Parents[0])
			delete(treeFiles, c.Parents[0])
		}

		if w.opts.Metrics != nil {
			w.opts.Metrics.RecordCommit(ctx, changedLines, int64(len(states)-activeBefore))
		}

		if sampler.ShouldSample(c.Committed, i == len(ordered)-1) {
			table.Add(c.Committed, state.Aggregate())
			samples++
		}
	}

	if w.opts.Log != nil {
		w.opts.Log.Infof("walk complete, %d samples", samples)
	}

	return table, nil
}

// deriveStateTracked wraps deriveState, additionally reporting the number of
// changed lines processed for this commit (for Metrics.RecordCommit).
func (w *Walker) deriveStateTracked(
	ctx context.Context,
	c CommitInfo,
	files map[string]gitlib.Hash,
	states map[gitlib.Hash]*cohort.BlameState,
	treeFiles map[gitlib.Hash]map[string]gitlib.Hash,
) (*cohort.BlameState, int64, error) {
	var parentState *cohort.BlameState
	if len(c.Parents) > 0 {
		parentState = states[c.Parents[0]]
	}

	if parentState == nil {
		root, err := w.buildRoot(ctx, c, files)
		if err != nil {
			return nil, 0, err
		}

		return root, 0, nil
	}

	parentFiles := treeFiles[c.Parents[0]]

	changes, lineCounts, changedLines, changesErr := w.diffTreeFiles(ctx, parentFiles, files)
	if changesErr != nil {
		return nil, 0, changesErr
	}

	state, err := cohort.Derive(parentState, changes, int32(c.Committed.Year()), lineCounts, w.opts.Workers)
	if err != nil {
		return nil, 0, fmt.Errorf("commit %s: %w", c.Hash, err)
	}

	return state, changedLines, nil
}

func (w *Walker) buildRoot(ctx context.Context, c CommitInfo, files map[string]gitlib.Hash) (*cohort.BlameState, error) {
	lineCounts := make(map[string]int, len(files))

	for path, blob := range files {
		n, err := w.provider.BlobLines(ctx, blob)
		if err != nil {
			return nil, err
		}

		lineCounts[path] = n
	}

	return cohort.NewRootBlameState(int32(c.Committed.Year()), lineCounts), nil
}

// diffTreeFiles classifies every path in parentFiles/childFiles as
// Added/Removed/Unchanged/Changed and, for Changed paths, fetches the
// diff hunks and post-edit line count.
func (w *Walker) diffTreeFiles(
	ctx context.Context,
	parentFiles, childFiles map[string]gitlib.Hash,
) ([]cohort.Change, map[string]int, int64, error) {
	changes := make([]cohort.Change, 0, len(childFiles))
	lineCounts := make(map[string]int, len(childFiles))

	var changedLines int64

	for path, newBlob := range childFiles {
		oldBlob, existed := parentFiles[path]

		switch {
		case !existed:
			n, err := w.provider.BlobLines(ctx, newBlob)
			if err != nil {
				return nil, nil, 0, err
			}

			lineCounts[path] = n
			changedLines += int64(n)
			changes = append(changes, cohort.Change{Path: path, Kind: cohort.Added})
		case oldBlob == newBlob:
			changes = append(changes, cohort.Change{Path: path, Kind: cohort.Unchanged})
		default:
			hunks, diffErr := w.provider.Diff(ctx, oldBlob, newBlob)
			if diffErr != nil {
				return nil, nil, 0, diffErr
			}

			n, err := w.provider.BlobLines(ctx, newBlob)
			if err != nil {
				return nil, nil, 0, err
			}

			lineCounts[path] = n

			edits := hunksToEdits(hunks)
			for _, e := range edits {
				changedLines += int64(e.OldLen + e.NewLen)
			}

			changes = append(changes, cohort.Change{
				Path:  path,
				Kind:  cohort.Changed,
				Hunks: edits,
			})
		}
	}

	for path := range parentFiles {
		if _, stillPresent := childFiles[path]; !stillPresent {
			changes = append(changes, cohort.Change{Path: path, Kind: cohort.Removed})
		}
	}

	return changes, lineCounts, changedLines, nil
}

func hunksToEdits(hunks []gitlib.Hunk) []cohort.HunkEdit {
	edits := make([]cohort.HunkEdit, len(hunks))
	for i, h := range hunks {
		edits[i] = cohort.HunkEdit{OldStart: h.OldStart, OldLen: h.OldLen, NewLen: h.NewLen}
	}

	return edits
}

// countFirstParentChildren counts, for each commit, how many other commits
// in the walk use it as their first parent. This is the reference count
// (§4.3, §5) each blame state is seeded with.
func countFirstParentChildren(ordered []CommitInfo) map[gitlib.Hash]int64 {
	counts := make(map[gitlib.Hash]int64, len(ordered))

	for _, c := range ordered {
		if len(c.Parents) > 0 {
			counts[c.Parents[0]]++
		}
	}

	return counts
}

// releaseParent decrements c's first parent's refcount and reports whether
// it has just reached zero, in which case the caller should drop it from
// the retained-state map.
func (w *Walker) releaseParent(c CommitInfo, states map[gitlib.Hash]*cohort.BlameState) bool {
	if len(c.Parents) == 0 {
		return false
	}

	parentState, ok := states[c.Parents[0]]
	if !ok {
		return false
	}

	return parentState.Release()
}

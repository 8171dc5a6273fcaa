package walk

import (
	"context"
	"time"

	"github.com/amedeedaboville/gix-of-theseus/pkg/gitlib"
)

// fakeCommit is one node of a synthetic commit graph: a snapshot of tracked
// file contents plus parent links. fakeProvider implements ObjectProvider
// entirely in memory, in the spirit of the teacher's gitlib.TestCommit mock,
// so engine tests need no real repository.
type fakeCommit struct {
	hash      gitlib.Hash
	parents   []gitlib.Hash
	committed time.Time
	files     map[string][]string // path -> lines
}

type fakeProvider struct {
	commits   map[gitlib.Hash]*fakeCommit
	blobLines map[gitlib.Hash][]string
	head      gitlib.Hash
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		commits:   make(map[gitlib.Hash]*fakeCommit),
		blobLines: make(map[gitlib.Hash][]string),
	}
}

// addCommit registers a commit identified by a single distinguishing byte
// (tests only ever need a handful of distinct hashes).
func (p *fakeProvider) addCommit(id byte, committed time.Time, files map[string][]string, parents ...byte) gitlib.Hash {
	hash := fakeHash(id)

	c := &fakeCommit{hash: hash, committed: committed, files: files}
	for _, parentID := range parents {
		c.parents = append(c.parents, fakeHash(parentID))
	}

	for _, lines := range files {
		p.blobLines[blobHash(lines)] = lines
	}

	p.commits[hash] = c
	p.head = hash

	return hash
}

func fakeHash(id byte) gitlib.Hash {
	var h gitlib.Hash
	h[gitlib.HashSize-1] = id

	return h
}

// blobHash derives a stable fake blob identity from file content, so two
// commits that store identical content for a path compare equal, and
// differing content never collides for the small fixtures these tests use.
func blobHash(lines []string) gitlib.Hash {
	var h gitlib.Hash

	for i, line := range lines {
		for j := 0; j < len(line); j++ {
			h[(i+j)%gitlib.HashSize] ^= line[j]
		}
	}

	h[0] ^= byte(len(lines))

	return h
}

func (p *fakeProvider) ListCommits(_ context.Context, _ string) ([]CommitInfo, error) {
	infos := make([]CommitInfo, 0, len(p.commits))
	for _, c := range p.commits {
		infos = append(infos, CommitInfo{Hash: c.hash, Parents: c.parents, Committed: c.committed})
	}

	return infos, nil
}

func (p *fakeProvider) TreeFiles(_ context.Context, commit gitlib.Hash, predicate Predicate) (map[string]gitlib.Hash, error) {
	c, ok := p.commits[commit]
	if !ok {
		return nil, ErrObject
	}

	out := make(map[string]gitlib.Hash, len(c.files))

	for path, lines := range c.files {
		if predicate != nil && !predicate(path) {
			continue
		}

		out[path] = blobHash(lines)
	}

	return out, nil
}

func (p *fakeProvider) BlobLines(_ context.Context, blob gitlib.Hash) (int, error) {
	lines, ok := p.blobLines[blob]
	if !ok {
		return 0, ErrObject
	}

	return len(lines), nil
}

func (p *fakeProvider) Diff(_ context.Context, oldBlob, newBlob gitlib.Hash) ([]gitlib.Hunk, error) {
	oldLines, ok := p.blobLines[oldBlob]
	if !ok {
		return nil, ErrObject
	}

	newLines, ok := p.blobLines[newBlob]
	if !ok {
		return nil, ErrObject
	}

	return gitlib.HunksFromBlobs([]byte(joinLines(oldLines)), []byte(joinLines(newLines))), nil
}

func joinLines(lines []string) string {
	s := ""
	for _, l := range lines {
		s += l + "\n"
	}

	return s
}

package walk

import (
	"context"
	"fmt"

	"github.com/amedeedaboville/gix-of-theseus/pkg/cohort"
	"github.com/amedeedaboville/gix-of-theseus/pkg/gitlib"
)

// gitObjectProvider is the libgit2-backed ObjectProvider, adapted from the
// Repository/Tree/CachedBlob helpers in pkg/gitlib.
type gitObjectProvider struct {
	repo *gitlib.Repository
}

// NewGitObjectProvider wraps an open repository as an ObjectProvider.
func NewGitObjectProvider(repo *gitlib.Repository) ObjectProvider {
	return &gitObjectProvider{repo: repo}
}

func (p *gitObjectProvider) ListCommits(_ context.Context, head string) ([]CommitInfo, error) {
	headHash, err := p.repo.ResolveRef(head)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve head %q: %v", cohort.ErrConfig, head, err)
	}

	iter, err := p.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cohort.ErrObject, err)
	}
	defer iter.Free()

	if pushErr := iter.Push(headHash); pushErr != nil {
		return nil, fmt.Errorf("%w: %v", cohort.ErrObject, pushErr)
	}

	var infos []CommitInfo

	walkErr := iter.Iterate(func(c *gitlib.Commit) bool {
		info := CommitInfo{
			Hash:      c.Hash(),
			Committed: c.Committer().When.UTC(),
		}

		for i := range c.NumParents() {
			info.Parents = append(info.Parents, c.ParentHash(i))
		}

		infos = append(infos, info)

		return true
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: %v", cohort.ErrObject, walkErr)
	}

	return infos, nil
}

func (p *gitObjectProvider) TreeFiles(_ context.Context, commitHash gitlib.Hash, predicate Predicate) (map[string]gitlib.Hash, error) {
	commit, err := p.repo.LookupCommit(context.Background(), commitHash)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup commit %s: %v", cohort.ErrObject, commitHash, err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("%w: tree for commit %s: %v", cohort.ErrObject, commitHash, err)
	}
	defer tree.Free()

	files, err := gitlib.TreeFiles(p.repo, tree)
	if err != nil {
		return nil, fmt.Errorf("%w: list tree files: %v", cohort.ErrObject, err)
	}

	out := make(map[string]gitlib.Hash, len(files))

	for _, f := range files {
		blob, blobErr := f.Blob()
		if blobErr != nil {
			return nil, fmt.Errorf("%w: load blob for %s: %v", cohort.ErrObject, f.Name, blobErr)
		}

		contents := blob.Contents()
		blob.Free()

		if isBinary(contents) {
			continue
		}

		if predicate != nil && !predicate(f.Name) {
			continue
		}

		out[f.Name] = f.Hash
	}

	return out, nil
}

func (p *gitObjectProvider) BlobLines(_ context.Context, blobHash gitlib.Hash) (int, error) {
	cached, err := gitlib.NewCachedBlobFromRepo(p.repo, blobHash)
	if err != nil {
		return 0, fmt.Errorf("%w: load blob %s: %v", cohort.ErrObject, blobHash, err)
	}

	n, countErr := cached.CountLines()
	if countErr != nil {
		return 0, fmt.Errorf("%w: count lines of %s: %v", cohort.ErrObject, blobHash, countErr)
	}

	return n, nil
}

func (p *gitObjectProvider) Diff(_ context.Context, oldBlob, newBlob gitlib.Hash) ([]gitlib.Hunk, error) {
	oldData, err := blobContents(p.repo, oldBlob)
	if err != nil {
		return nil, err
	}

	newData, err := blobContents(p.repo, newBlob)
	if err != nil {
		return nil, err
	}

	return gitlib.HunksFromBlobs(oldData, newData), nil
}

func blobContents(repo *gitlib.Repository, hash gitlib.Hash) ([]byte, error) {
	if hash.IsZero() {
		return nil, nil
	}

	cached, err := gitlib.NewCachedBlobFromRepo(repo, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: load blob %s: %v", cohort.ErrObject, hash, err)
	}

	return cached.Data, nil
}

// isBinary sniffs the first 8KiB for a NUL byte, matching
// gitlib.CachedBlob.IsBinary without requiring a CachedBlob allocation for
// content we already have loaded for the tree listing.
func isBinary(data []byte) bool {
	const sniffLen = 8192

	sniff := data
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}

	for _, b := range sniff {
		if b == 0 {
			return true
		}
	}

	return false
}

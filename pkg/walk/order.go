package walk

import (
	"bytes"
	"container/heap"

	"github.com/amedeedaboville/gix-of-theseus/pkg/gitlib"
)

// orderCommits performs a commit-date-ordered topological sort of commits:
// non-decreasing committer timestamp, ties broken by commit id byte order,
// with every commit emitted only after all of its parents. This is
// independent of whatever order the object provider happened to return
// commits in; it is recomputed from each commit's own timestamp and parent
// list (Kahn's algorithm driven by a min-heap keyed on (timestamp, id)).
func orderCommits(commits []CommitInfo) []CommitInfo {
	byHash := make(map[gitlib.Hash]*commitNode, len(commits))
	for i := range commits {
		byHash[commits[i].Hash] = &commitNode{info: &commits[i]}
	}

	// children[h] lists commits whose first-seen parent edge is h; indegree
	// counts the number of parents (within the visited set) not yet emitted.
	for _, node := range byHash {
		for _, parent := range node.info.Parents {
			if pnode, ok := byHash[parent]; ok {
				pnode.children = append(pnode.children, node)
				node.indegree++
			}
		}
	}

	pq := make(readyHeap, 0, len(byHash))

	for _, node := range byHash {
		if node.indegree == 0 {
			pq = append(pq, node)
		}
	}

	heap.Init(&pq)

	ordered := make([]CommitInfo, 0, len(commits))

	for pq.Len() > 0 {
		node := heap.Pop(&pq).(*commitNode) //nolint:forcetypeassert // heap.Interface contract.
		ordered = append(ordered, *node.info)

		for _, child := range node.children {
			child.indegree--
			if child.indegree == 0 {
				heap.Push(&pq, child)
			}
		}
	}

	return ordered
}

type commitNode struct {
	info     *CommitInfo
	children []*commitNode
	indegree int
}

type readyHeap []*commitNode

func (h readyHeap) Len() int { return len(h) }

func (h readyHeap) Less(i, j int) bool {
	ti, tj := h[i].info.Committed, h[j].info.Committed
	if !ti.Equal(tj) {
		return ti.Before(tj)
	}

	return bytes.Compare(h[i].info.Hash[:], h[j].info.Hash[:]) < 0
}

func (h readyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *readyHeap) Push(x any) {
	*h = append(*h, x.(*commitNode)) //nolint:forcetypeassert // heap.Interface contract.
}

func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

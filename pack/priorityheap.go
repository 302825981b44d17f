// priorityheap.go implements PriorityHeap (§4.5): a binary max-heap keyed
// by (score, tiebreak) over pool indices, supporting push/peek/pop/remove in
// O(log n) via position back-pointers. The heap never looks at a
// transaction's bytes, only at (poolIdx, score); TxnPool owns the bytes.
//
// This mirrors the teacher's container/heap idiom in priority_queue.go and
// price_heap.go: a node carries its own heap-array index, kept current by
// Swap, so heap.Remove can be called directly instead of scanning.
package pack

import "container/heap"

// heapNode is one entry in the priority heap.
type heapNode struct {
	poolIdx  int
	score    float64
	tiebreak uint64 // monotonically decreasing; lower value loses ties
	index    int    // position in the backing slice, maintained by Swap
}

// nodeHeap implements container/heap.Interface as a max-heap ordered by
// score, with tiebreak breaking exact ties so equal-fee transactions never
// livelock (§3, Priority).
type nodeHeap []*heapNode

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	return h[i].tiebreak > h[j].tiebreak
}

func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x interface{}) {
	n := x.(*heapNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

// PriorityHeap is the max-heap of resident transactions, keyed by pool
// index. It is not safe for concurrent use (§5: the scheduler is
// single-threaded by design).
type PriorityHeap struct {
	h            nodeHeap
	byPoolIdx    map[int]*heapNode
	nextTiebreak uint64
}

// NewPriorityHeap returns an empty PriorityHeap sized for capacity
// resident transactions.
func NewPriorityHeap(capacity int) *PriorityHeap {
	ph := &PriorityHeap{
		h:         make(nodeHeap, 0, capacity),
		byPoolIdx: make(map[int]*heapNode, capacity),
	}
	heap.Init(&ph.h)
	return ph
}

// Len returns the number of resident entries.
func (ph *PriorityHeap) Len() int { return len(ph.h) }

// nextTiebreakValue returns a monotonically decreasing tiebreak so that,
// all else equal, earlier insertions win ties (FIFO among equal scores).
func (ph *PriorityHeap) nextTiebreakValue() uint64 {
	ph.nextTiebreak--
	return ph.nextTiebreak
}

// Push inserts poolIdx with the given score. poolIdx must not already be
// present.
func (ph *PriorityHeap) Push(poolIdx int, score float64) {
	node := &heapNode{poolIdx: poolIdx, score: score, tiebreak: ph.nextTiebreakValue()}
	heap.Push(&ph.h, node)
	ph.byPoolIdx[poolIdx] = node
}

// PeekMax returns the highest-score resident pool index without removing
// it.
func (ph *PriorityHeap) PeekMax() (poolIdx int, ok bool) {
	if len(ph.h) == 0 {
		return 0, false
	}
	return ph.h[0].poolIdx, true
}

// Pop removes and returns the highest-score resident pool index.
func (ph *PriorityHeap) Pop() (poolIdx int, ok bool) {
	if len(ph.h) == 0 {
		return 0, false
	}
	node := heap.Pop(&ph.h).(*heapNode)
	delete(ph.byPoolIdx, node.poolIdx)
	return node.poolIdx, true
}

// Remove removes poolIdx if present, returning whether it was found.
func (ph *PriorityHeap) Remove(poolIdx int) bool {
	node, ok := ph.byPoolIdx[poolIdx]
	if !ok {
		return false
	}
	heap.Remove(&ph.h, node.index)
	delete(ph.byPoolIdx, poolIdx)
	return true
}

// MinScore reports the lowest score currently resident and the pool index
// holding it. Per §4.5 the minimum may be found by a bottom-of-heap scan;
// scanning the whole backing slice is simplest and correctness only
// requires that *some* entry with a strictly lower score than a candidate
// is evicted when one exists, which a full scan trivially satisfies.
func (ph *PriorityHeap) MinScore() (poolIdx int, score float64, ok bool) {
	if len(ph.h) == 0 {
		return 0, 0, false
	}
	min := ph.h[0]
	for _, n := range ph.h[1:] {
		if n.score < min.score {
			min = n
		}
	}
	return min.poolIdx, min.score, true
}

package domtree

import "container/heap"

// BulkExtract is the columnar bulk result described by the specification:
// one row per reachable object, addressable by position across all four
// slices. Unreachable objects are omitted entirely, matching the
// specification's statement that the engine does not dominate objects
// that are not reachable from any root.
//
// ImmediateDominator uses address 0 to mean ⊥ (no dominator, i.e. only the
// synthetic super-root dominates this object) — address 0 is reserved and
// never assigned to a real object by the heap walker contract.
type BulkExtract struct {
	ObjectAddresses     []uint64
	ImmediateDominators []uint64
	DominatedSizes      []uint64
	DominatedCounts     []uint64
}

// BulkExtract returns the columnar result of a completed run. Must be
// called only after Run has returned successfully.
func (e *Engine) BulkExtract() (BulkExtract, error) {
	if err := e.requirePhase(phaseAggregated, "BulkExtract"); err != nil {
		return BulkExtract{}, err
	}

	out := BulkExtract{}
	for idx := 0; idx < len(e.idxToAddr); idx++ {
		if e.dfsOrder[idx] < 0 {
			continue
		}
		out.ObjectAddresses = append(out.ObjectAddresses, e.idxToAddr[idx])
		if dom := e.idom[idx]; dom == noIndex {
			out.ImmediateDominators = append(out.ImmediateDominators, 0)
		} else {
			out.ImmediateDominators = append(out.ImmediateDominators, e.idxToAddr[dom])
		}
		out.DominatedSizes = append(out.DominatedSizes, e.retainedSize[idx])
		out.DominatedCounts = append(out.DominatedCounts, e.retainedCount[idx])
	}
	return out, nil
}

// TopKEntry is one row of the Top-K-by-retained-size enumeration.
type TopKEntry struct {
	ObjectAddress      uint64
	ImmediateDominator uint64 // 0 means ⊥, as in BulkExtract
	DominatedSize      uint64
	DominatedCount     uint64
	ObjectSize         uint64
	TypeName           string // "" if no TypeNameResolver was configured
}

// TopK returns the K reachable objects with the largest dominated
// (retained) size, descending. It uses a bounded min-heap so the cost is
// O(n log k) rather than a full sort of every reachable object, mirroring
// the teacher's BiggestObjectsBuilder.
func (e *Engine) TopK(k int) ([]TopKEntry, error) {
	if err := e.requirePhase(phaseAggregated, "TopK"); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	h := make(topKHeap, 0, k)
	for idx := 0; idx < len(e.idxToAddr); idx++ {
		if e.dfsOrder[idx] < 0 {
			continue
		}
		entry := e.topKEntry(NodeIndex(idx))
		if len(h) < k {
			heap.Push(&h, entry)
		} else if entry.DominatedSize > h[0].DominatedSize {
			h[0] = entry
			heap.Fix(&h, 0)
		}
	}

	result := make([]TopKEntry, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		top := heap.Pop(&h).(TopKEntry)
		result[i] = top
	}
	return result, nil
}

func (e *Engine) topKEntry(idx NodeIndex) TopKEntry {
	entry := TopKEntry{
		ObjectAddress:  e.idxToAddr[idx],
		DominatedSize:  e.retainedSize[idx],
		DominatedCount: e.retainedCount[idx],
		ObjectSize:     e.sizes[idx],
	}
	if dom := e.idom[idx]; dom != noIndex {
		entry.ImmediateDominator = e.idxToAddr[dom]
	}
	if e.typeRes != nil {
		entry.TypeName = e.typeRes.TypeName(entry.ObjectAddress)
	}
	return entry
}

// topKHeap is a min-heap on DominatedSize, giving O(n log k) top-K
// selection instead of an O(n log n) full sort.
type topKHeap []TopKEntry

func (h topKHeap) Len() int            { return len(h) }
func (h topKHeap) Less(i, j int) bool  { return h[i].DominatedSize < h[j].DominatedSize }
func (h topKHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *topKHeap) Push(x interface{}) { *h = append(*h, x.(TopKEntry)) }
func (h *topKHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

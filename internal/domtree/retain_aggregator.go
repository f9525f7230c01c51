package domtree

import "context"

// aggregateRetention runs stage 5: builds the dominator tree's children
// lists by inverting idom, then propagates shallow size and object count
// bottom-up (children before parents) via a Kahn's-algorithm-style queue
// keyed on each node's remaining unprocessed child count, mirroring the
// teacher's computeRetainedSizes. A node is only enqueued once every one
// of its dominator-tree children has contributed its subtotal, which is
// what makes a single linear pass correct without recursion.
func (e *Engine) aggregateRetention(ctx context.Context) error {
	if err := e.requirePhase(phaseDominated, "aggregateRetention"); err != nil {
		return err
	}

	n := len(e.idxToAddr)
	e.retainedSize = make([]uint64, n)
	e.retainedCount = make([]uint64, n)

	children := make([][]NodeIndex, n)
	remaining := make([]int, n)

	for idx := 0; idx < n; idx++ {
		if e.dfsOrder[idx] < 0 {
			continue // unreachable: no retained size, stays zero
		}
		e.retainedSize[idx] = e.sizes[idx]
		e.retainedCount[idx] = 1

		dom := e.idom[idx]
		if dom == noIndex || dom == NodeIndex(idx) {
			continue // a real root under the super-root, or a self-loop root
		}
		children[dom] = append(children[dom], NodeIndex(idx))
		remaining[dom]++
	}

	queue := make([]NodeIndex, 0, n)
	visited := make([]bool, n) // guards against a node being enqueued twice
	for idx := 0; idx < n; idx++ {
		if e.dfsOrder[idx] < 0 {
			continue
		}
		if remaining[idx] == 0 {
			queue = append(queue, NodeIndex(idx))
			visited[idx] = true
		}
	}

	for head := 0; head < len(queue); head++ {
		node := queue[head]
		for _, child := range children[node] {
			e.retainedSize[node] += e.retainedSize[child]
			e.retainedCount[node] += e.retainedCount[child]
		}

		dom := e.idom[node]
		if dom == noIndex || dom == node {
			continue
		}
		remaining[dom]--
		if remaining[dom] == 0 && !visited[dom] {
			visited[dom] = true
			queue = append(queue, dom)
		}
	}

	if len(queue) != countReached(e.dfsOrder) {
		return invariantf("retention aggregation processed %d of %d reachable nodes: the dominator tree is not a forest", len(queue), countReached(e.dfsOrder))
	}

	e.phase = phaseAggregated
	return nil
}

func countReached(dfsOrder []int32) int {
	c := 0
	for _, v := range dfsOrder {
		if v >= 0 {
			c++
		}
	}
	return c
}

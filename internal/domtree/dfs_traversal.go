package domtree

import "context"

// dfsFrame is one stack frame of the iterative DFS: the node being visited
// and the index of the next successor to examine. Keeping resumption state
// explicit (rather than relying on the call stack) is what lets this
// traversal handle chains far deeper than the goroutine stack would allow.
type dfsFrame struct {
	node NodeIndex
	next int
}

// traverse runs stage 3: an iterative, preorder depth-first traversal from
// the (deduplicated) root set over the forward adjacency list. Nodes not
// reached from any root keep dfsOrder == -1 and dfsParent == noIndex, and
// play no further part in dominator computation.
func (e *Engine) traverse(ctx context.Context) error {
	if err := e.requirePhase(phaseGraphBuilt, "traverse"); err != nil {
		return err
	}

	n := len(e.idxToAddr)
	e.dfsOrder = make([]int32, n)
	e.dfsParent = make([]NodeIndex, n)
	e.reached = make([]bool, n)
	for i := range e.dfsOrder {
		e.dfsOrder[i] = -1
		e.dfsParent[i] = noIndex
	}

	var next int32
	stack := make([]dfsFrame, 0, 64)

	for _, root := range e.roots {
		if e.reached[root] {
			continue
		}
		e.reached[root] = true
		e.dfsOrder[root] = next
		next++
		stack = stack[:0]
		stack = append(stack, dfsFrame{node: root, next: 0})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := e.successors(top.node)
			advanced := false
			for top.next < len(succ) {
				child := succ[top.next]
				top.next++
				if e.reached[child] {
					continue
				}
				e.reached[child] = true
				e.dfsParent[child] = top.node
				e.dfsOrder[child] = next
				next++
				stack = append(stack, dfsFrame{node: child, next: 0})
				advanced = true
				break
			}
			if !advanced && top.next >= len(succ) {
				stack = stack[:len(stack)-1]
			}
		}
	}

	e.phase = phaseDFSed
	return nil
}

package domtree

import "context"

// ltState holds the working arrays of the Lengauer-Tarjan algorithm, all
// indexed by DFS preorder number (1-based; index 0 is reserved for the
// synthetic super-root). This mirrors the teacher's dominatorState, with
// object IDs replaced by dense NodeIndex values and the map-based
// objToIdx/idxToObj replaced by the engine's own addrToIdx/idxToAddr.
type ltState struct {
	n int // number of DFS-numbered nodes, including the super-root at 0

	vertex []NodeIndex // dfn -> node, vertex[0] is the super-root
	parent []int       // dfn -> parent's dfn, in the DFS tree
	semi   []int       // dfn -> semidominator's dfn
	idom   []int       // dfn -> immediate dominator's dfn (after fixup)
	bucket [][]int // dfn -> list of dfns whose semidominator is this node

	ancestor []int // union-find forest used by eval/link
	label    []int // the node with the minimal semi on the path to ancestor[v]
}

// computeDominators runs stage 4: Lengauer-Tarjan over the DFS forest built
// in stage 3, through a synthetic super-root that has an edge to every real
// root. This resolves multi-root dominance unambiguously (the Open
// Question the specification leaves explicit): a node reachable from two
// roots with no common dominator among real nodes ends up dominated by the
// super-root, which the engine reports externally as "no dominator" (⊥),
// exactly as a node reachable from only one root would if that root were
// its own dominator.
func (e *Engine) computeDominators(ctx context.Context) error {
	if err := e.requirePhase(phaseDFSed, "computeDominators"); err != nil {
		return err
	}

	n := len(e.idxToAddr)
	e.idom = make([]NodeIndex, n)
	for i := range e.idom {
		e.idom[i] = noIndex
	}

	// dfn[v] is the DFS preorder number of node v, offset by 1 so that 0
	// is free for the super-root; unreached nodes keep dfn 0 and never
	// enter the solver.
	dfn := make([]int, n)
	reachedCount := 0
	for idx := 0; idx < n; idx++ {
		if e.dfsOrder[idx] >= 0 {
			dfn[idx] = int(e.dfsOrder[idx]) + 1
			reachedCount++
		}
	}

	st := &ltState{n: reachedCount + 1}
	st.vertex = make([]NodeIndex, st.n)
	st.parent = make([]int, st.n)
	st.semi = make([]int, st.n)
	st.idom = make([]int, st.n)
	st.bucket = make([][]int, st.n)
	st.ancestor = make([]int, st.n)
	st.label = make([]int, st.n)

	st.vertex[0] = superRoot
	st.parent[0] = 0
	st.semi[0] = 0
	st.label[0] = 0
	st.ancestor[0] = 0

	for idx := 0; idx < n; idx++ {
		if e.dfsOrder[idx] < 0 {
			continue
		}
		d := dfn[idx]
		st.vertex[d] = NodeIndex(idx)
		st.semi[d] = d
		st.label[d] = d
		if e.dfsParent[idx] != noIndex {
			st.parent[d] = dfn[e.dfsParent[idx]]
		} else {
			// A real root: its DFS-tree parent is the super-root.
			st.parent[d] = 0
		}
		st.ancestor[d] = 0
	}

	isRoot := make([]bool, n)
	for _, r := range e.roots {
		isRoot[r] = true
	}

	// predOf returns the dfn-space predecessor list of dfn d: the real
	// predecessors reached by the traversal, plus, for a real root, the
	// synthetic edge from the super-root (dfn 0).
	predOf := func(d int) []int {
		if d == 0 {
			return nil
		}
		node := st.vertex[d]
		preds := e.predecessors(node)
		out := make([]int, 0, len(preds)+1)
		for _, p := range preds {
			if e.dfsOrder[p] >= 0 {
				out = append(out, dfn[p])
			}
		}
		if isRoot[node] {
			out = append(out, 0)
		}
		return out
	}

	link := func(v, w int) {
		st.ancestor[w] = v
	}

	eval := func(v int) int {
		compressPathLT(st, v)
		return st.label[v]
	}

	// Main loop: process nodes in reverse preorder down to dfn 2. The
	// super-root (dfn 0) has no semidominator to compute, and dfn 1 is
	// always the first real root, whose idom is set to 0 below; any
	// bucket[0] entries left undrained already hold idom 0 from the zero
	// initialization.
	for i := st.n - 1; i >= 2; i-- {
		w := i
		for _, v := range predOf(w) {
			u := eval(v)
			if st.semi[u] < st.semi[w] {
				st.semi[w] = st.semi[u]
			}
		}
		st.bucket[st.semi[w]] = append(st.bucket[st.semi[w]], w)
		link(st.parent[w], w)

		for _, v := range st.bucket[st.parent[w]] {
			u := eval(v)
			if st.semi[u] < st.semi[v] {
				st.idom[v] = u
			} else {
				st.idom[v] = st.parent[w]
			}
		}
		st.bucket[st.parent[w]] = nil
	}

	// Real roots other than dfn 1 have parent 0 by construction above, so
	// the loop handles them like any other dfn with parent 0.

	for i := 2; i < st.n; i++ {
		if st.idom[i] != st.semi[i] {
			st.idom[i] = st.idom[st.idom[i]]
		}
	}
	st.idom[1] = 0

	for d := 1; d < st.n; d++ {
		node := st.vertex[d]
		domDfn := st.idom[d]
		if domDfn == 0 {
			e.idom[node] = noIndex // dominated only by the synthetic super-root: ⊥
		} else {
			e.idom[node] = st.vertex[domDfn]
		}
	}

	e.phase = phaseDominated
	return nil
}

// compressPathLT iteratively collapses the ancestor chain from v up to the
// root of its union-find tree, updating label[v] to the ancestor on that
// path with the smallest semi value. Iterative to avoid recursion depth
// proportional to graph depth, mirroring the teacher's compressPath.
func compressPathLT(st *ltState, v int) {
	if st.ancestor[v] == 0 {
		return
	}
	path := make([]int, 0, 32)
	for a := v; st.ancestor[st.ancestor[a]] != 0; a = st.ancestor[a] {
		path = append(path, a)
	}
	for i := len(path) - 1; i >= 0; i-- {
		a := path[i]
		if st.semi[st.label[st.ancestor[a]]] < st.semi[st.label[a]] {
			st.label[a] = st.label[st.ancestor[a]]
		}
		st.ancestor[a] = st.ancestor[st.ancestor[a]]
	}
}

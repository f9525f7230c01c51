package domtree

import (
	"context"
	"sort"

	"github.com/memsnap/heapdom/pkg/parallel"
)

// edge is one resolved reference in index space, used while accumulating
// the CSR (compressed sparse row) adjacency arrays.
type edge struct {
	from NodeIndex
	to   NodeIndex
}

// buildGraph runs stage 2: it resolves every reference edge reported by the
// collaborator to index space and materializes both the forward (succ) and
// reverse (pred) CSR adjacency lists.
//
// Edge resolution is parallelized across chunks of the already-collected
// edge list with pkg/parallel.ChunkProcessor, mirroring the teacher's
// buildSuccessorsParallel: each worker only reads the immutable addrToIdx
// map and produces its own edge slice, so there is no shared mutable state
// to lock during the fan-out; only the final CSR-offset computation (a
// counting sort by `from`) is sequential, since it writes into one shared
// array.
func (e *Engine) buildGraph(ctx context.Context) error {
	if err := e.requirePhase(phaseEnumerated, "buildGraph"); err != nil {
		return err
	}

	rawEdges := make([]Reference, 0)
	err := e.walker.EnumerateReferences(ctx, func(from, to uint64) error {
		rawEdges = append(rawEdges, Reference{FromAddress: from, ToAddress: to})
		return nil
	})
	if err != nil {
		return wrapCollaboratorErr(err, "EnumerateReferences")
	}

	config := parallel.DefaultPoolConfig()
	if e.opts.MaxWorkers > 0 {
		config = config.WithWorkers(e.opts.MaxWorkers)
	}
	chunkSize := e.opts.ChunkSize

	chunks := chunkReferences(rawEdges, chunkSize)
	processor := parallel.NewChunkProcessor[[]Reference, resolveResult](config)

	resolved := processor.ProcessChunks(ctx, chunks,
		func(ctx context.Context, chunk [][]Reference, workerID int) resolveResult {
			var out resolveResult
			for _, refs := range chunk {
				for _, r := range refs {
					// Zero means "null" and unresolved targets are allowed;
					// both are dropped rather than rejected.
					from, ok := e.addrToIdx[r.FromAddress]
					if !ok {
						continue
					}
					to, ok := e.addrToIdx[r.ToAddress]
					if !ok {
						continue
					}
					out.edges = append(out.edges, edge{from: from, to: to})
				}
			}
			return out
		},
		func(results []resolveResult) resolveResult {
			var merged resolveResult
			for _, r := range results {
				if r.err != nil && merged.err == nil {
					merged.err = r.err
				}
				merged.edges = append(merged.edges, r.edges...)
			}
			return merged
		},
	)
	if resolved.err != nil {
		return collaboratorf("%v", resolved.err)
	}

	n := len(e.idxToAddr)
	e.succOffsets, e.succTargets = buildCSR(n, resolved.edges, func(ed edge) NodeIndex { return ed.from }, func(ed edge) NodeIndex { return ed.to })
	e.predOffsets, e.predTargets = buildCSR(n, resolved.edges, func(ed edge) NodeIndex { return ed.to }, func(ed edge) NodeIndex { return ed.from })

	e.phase = phaseGraphBuilt
	return nil
}

type resolveResult struct {
	edges []edge
	err   error
}

// chunkReferences splits refs into slices of roughly chunkSize references
// each, for ChunkProcessor to distribute across workers. ChunkProcessor
// itself re-shards its input across MaxWorkers goroutines, so this just
// bounds how much memory move happens per unit of work.
func chunkReferences(refs []Reference, chunkSize int) [][]Reference {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	if len(refs) == 0 {
		return nil
	}
	chunks := make([][]Reference, 0, (len(refs)+chunkSize-1)/chunkSize)
	for start := 0; start < len(refs); start += chunkSize {
		end := start + chunkSize
		if end > len(refs) {
			end = len(refs)
		}
		chunks = append(chunks, refs[start:end])
	}
	return chunks
}

// buildCSR builds a compressed-sparse-row adjacency representation of size
// n (one offset range per node) from a flat edge list, keyed by the
// supplied accessor functions. It sorts by key to get deterministic,
// contiguous per-node target runs.
func buildCSR(n int, edges []edge, key func(edge) NodeIndex, target func(edge) NodeIndex) ([]int32, []NodeIndex) {
	sorted := make([]edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool { return key(sorted[i]) < key(sorted[j]) })

	offsets := make([]int32, n+1)
	for _, ed := range sorted {
		offsets[key(ed)+1]++
	}
	for i := 1; i <= n; i++ {
		offsets[i] += offsets[i-1]
	}

	targets := make([]NodeIndex, len(sorted))
	cursor := make([]int32, n)
	for _, ed := range sorted {
		k := key(ed)
		pos := offsets[k] + cursor[k]
		targets[pos] = target(ed)
		cursor[k]++
	}
	return offsets, targets
}

// successors returns the forward adjacency slice for node idx.
func (e *Engine) successors(idx NodeIndex) []NodeIndex {
	return e.succTargets[e.succOffsets[idx]:e.succOffsets[idx+1]]
}

// predecessors returns the reverse adjacency slice for node idx.
func (e *Engine) predecessors(idx NodeIndex) []NodeIndex {
	return e.predTargets[e.predOffsets[idx]:e.predOffsets[idx+1]]
}

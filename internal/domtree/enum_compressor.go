package domtree

import (
	"context"
	"fmt"
)

// enumerate runs stage 1: it walks the heap once through the HeapWalker
// collaborator, assigning every distinct object address a dense NodeIndex
// in [0, N), and collects the deduplicated root set in index space, in the
// order EnumerateRoots reports them.
func (e *Engine) enumerate(ctx context.Context) error {
	if e.phase != phaseInit {
		return preconditionf("enumerate called out of order")
	}

	e.addrToIdx = make(map[uint64]NodeIndex)

	err := e.walker.EnumerateObjects(ctx, func(addr uint64, size uint64) error {
		if _, dup := e.addrToIdx[addr]; dup {
			return fmt.Errorf("address %#x reported more than once", addr)
		}
		idx := NodeIndex(len(e.idxToAddr))
		e.addrToIdx[addr] = idx
		e.idxToAddr = append(e.idxToAddr, addr)
		e.sizes = append(e.sizes, size)
		return nil
	})
	if err != nil {
		return wrapCollaboratorErr(err, "EnumerateObjects")
	}

	seen := make(map[NodeIndex]struct{})
	err = e.walker.EnumerateRoots(ctx, func(addr uint64) error {
		idx, ok := e.addrToIdx[addr]
		if !ok {
			// A root whose address never resolves to a known object is
			// silently dropped, not a collaborator failure.
			return nil
		}
		if _, dup := seen[idx]; dup {
			return nil
		}
		seen[idx] = struct{}{}
		e.roots = append(e.roots, idx)
		return nil
	})
	if err != nil {
		return wrapCollaboratorErr(err, "EnumerateRoots")
	}

	e.phase = phaseEnumerated
	return nil
}

// wrapCollaboratorErr wraps an error already returned by the walker (as
// opposed to one synthesized by the engine from a contract violation) so
// every path out of enumerate/buildGraph reports a CollaboratorFailure.
func wrapCollaboratorErr(err error, step string) error {
	if err == nil {
		return nil
	}
	return collaboratorf("%s: %v", step, err)
}

package domtree

// NodeIndex is a dense, zero-based index into the compressed object space.
// noIndex is the sentinel for "no node" (the ⊥ dominator, an unset DFS
// parent, and similar absent-value cases); it is distinct from any real
// index because real indices start at 0 and noIndex is negative.
type NodeIndex int32

const noIndex NodeIndex = -1

// superRoot is a synthetic node outside the compressed object space
// (NodeIndex -2) that dominates every real root. It exists only inside the
// solver; Engine never returns it to a caller. See dom_lengauer_tarjan.go.
const superRoot NodeIndex = -2

// Object holds the per-node data recorded during enumeration.
type Object struct {
	Address uint64 // raw heap address, unique per object
	Size    uint64 // shallow size in bytes
}

// Root identifies one entry point into the heap graph. A single object may
// appear as a root more than once (e.g. referenced by two different thread
// stacks); duplicates are legal and deduplicated internally.
type Root struct {
	Address uint64
}

// Reference is one outbound edge from an object to another, in raw address
// space, as reported by the heap walker.
type Reference struct {
	FromAddress uint64
	ToAddress   uint64
}

package domtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/memsnap/heapdom/pkg/errors"
)

// fixtureWalker is a fully in-memory HeapWalker used only by these tests.
// Real callers go through internal/heapsnapshot instead.
type fixtureWalker struct {
	objects []Object
	edges   []Reference
	roots   []uint64
}

func (f *fixtureWalker) EnumerateObjects(ctx context.Context, fn func(addr uint64, size uint64) error) error {
	for _, o := range f.objects {
		if err := fn(o.Address, o.Size); err != nil {
			return err
		}
	}
	return nil
}

func (f *fixtureWalker) EnumerateReferences(ctx context.Context, fn func(from, to uint64) error) error {
	for _, e := range f.edges {
		if err := fn(e.FromAddress, e.ToAddress); err != nil {
			return err
		}
	}
	return nil
}

func (f *fixtureWalker) EnumerateRoots(ctx context.Context, fn func(addr uint64) error) error {
	for _, r := range f.roots {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func runFixture(t *testing.T, w *fixtureWalker) *Engine {
	t.Helper()
	e := New(w, Options{})
	require.NoError(t, e.Run(context.Background()))
	return e
}

func extractMap(t *testing.T, e *Engine) map[uint64]TopKEntry {
	t.Helper()
	extract, err := e.BulkExtract()
	require.NoError(t, err)

	out := make(map[uint64]TopKEntry, len(extract.ObjectAddresses))
	for i, addr := range extract.ObjectAddresses {
		out[addr] = TopKEntry{
			ObjectAddress:      addr,
			ImmediateDominator: extract.ImmediateDominators[i],
			DominatedSize:      extract.DominatedSizes[i],
			DominatedCount:     extract.DominatedCounts[i],
		}
	}
	return out
}

// Scenario A: linear chain 0x100 -> 0x200 -> 0x300 -> 0x400.
func TestEngine_ScenarioA_LinearChain(t *testing.T) {
	w := &fixtureWalker{
		objects: []Object{{0x100, 10}, {0x200, 20}, {0x300, 30}, {0x400, 40}},
		edges: []Reference{
			{0x100, 0x200}, {0x200, 0x300}, {0x300, 0x400},
		},
		roots: []uint64{0x100},
	}
	e := runFixture(t, w)
	rows := extractMap(t, e)

	require.Len(t, rows, 4)
	assert.EqualValues(t, 0, rows[0x100].ImmediateDominator)
	assert.EqualValues(t, 0x100, rows[0x200].ImmediateDominator)
	assert.EqualValues(t, 0x200, rows[0x300].ImmediateDominator)
	assert.EqualValues(t, 0x300, rows[0x400].ImmediateDominator)

	assert.EqualValues(t, 100, rows[0x100].DominatedSize)
	assert.EqualValues(t, 90, rows[0x200].DominatedSize)
	assert.EqualValues(t, 70, rows[0x300].DominatedSize)
	assert.EqualValues(t, 40, rows[0x400].DominatedSize)

	assert.EqualValues(t, 4, rows[0x100].DominatedCount)
	assert.EqualValues(t, 3, rows[0x200].DominatedCount)
	assert.EqualValues(t, 2, rows[0x300].DominatedCount)
	assert.EqualValues(t, 1, rows[0x400].DominatedCount)
}

// Scenario B: diamond A -> {B, C} -> D.
func TestEngine_ScenarioB_Diamond(t *testing.T) {
	const a, b, c, d = 0xA0, 0xB0, 0xC0, 0xD0
	w := &fixtureWalker{
		objects: []Object{{a, 10}, {b, 20}, {c, 30}, {d, 40}},
		edges: []Reference{
			{a, b}, {a, c}, {b, d}, {c, d},
		},
		roots: []uint64{a},
	}
	e := runFixture(t, w)
	rows := extractMap(t, e)

	require.Len(t, rows, 4)
	assert.EqualValues(t, 0, rows[a].ImmediateDominator)
	assert.EqualValues(t, a, rows[b].ImmediateDominator)
	assert.EqualValues(t, a, rows[c].ImmediateDominator)
	assert.EqualValues(t, a, rows[d].ImmediateDominator, "D is reachable through both B and C, so only A dominates it")

	assert.EqualValues(t, 100, rows[a].DominatedSize)
	assert.EqualValues(t, 20, rows[b].DominatedSize)
	assert.EqualValues(t, 30, rows[c].DominatedSize)
	assert.EqualValues(t, 40, rows[d].DominatedSize)
	assert.EqualValues(t, 4, rows[a].DominatedCount)
}

// Scenario C: cycle reachable only via one entry. A -> B -> C -> B.
func TestEngine_ScenarioC_Cycle(t *testing.T) {
	const a, b, c = 0xA1, 0xB1, 0xC1
	w := &fixtureWalker{
		objects: []Object{{a, 10}, {b, 20}, {c, 30}},
		edges: []Reference{
			{a, b}, {b, c}, {c, b},
		},
		roots: []uint64{a},
	}
	e := runFixture(t, w)
	rows := extractMap(t, e)

	require.Len(t, rows, 3)
	assert.EqualValues(t, a, rows[b].ImmediateDominator)
	assert.EqualValues(t, b, rows[c].ImmediateDominator)
	assert.EqualValues(t, 60, rows[a].DominatedSize)
	assert.EqualValues(t, 50, rows[b].DominatedSize)
	assert.EqualValues(t, 30, rows[c].DominatedSize)
}

// Scenario D: two roots sharing a descendant. R1 -> X, R2 -> X.
func TestEngine_ScenarioD_TwoRootsSharedDescendant(t *testing.T) {
	const r1, r2, x = 0x1000, 0x2000, 0x3000
	w := &fixtureWalker{
		objects: []Object{{r1, 10}, {r2, 20}, {x, 30}},
		edges: []Reference{
			{r1, x}, {r2, x},
		},
		roots: []uint64{r1, r2},
	}
	e := runFixture(t, w)
	rows := extractMap(t, e)

	require.Len(t, rows, 3)
	assert.EqualValues(t, 0, rows[r1].ImmediateDominator)
	assert.EqualValues(t, 0, rows[r2].ImmediateDominator)
	assert.EqualValues(t, 0, rows[x].ImmediateDominator,
		"no single reachable node dominates X across both root entries")
	assert.EqualValues(t, 30, rows[x].DominatedSize)
}

// Scenario E: unreachable island. A -> B; C has no incoming edge and is not a root.
func TestEngine_ScenarioE_UnreachableIsland(t *testing.T) {
	const a, b, c = 0xAA, 0xBB, 0xCC
	w := &fixtureWalker{
		objects: []Object{{a, 10}, {b, 20}, {c, 30}},
		edges: []Reference{
			{a, b},
		},
		roots: []uint64{a},
	}
	e := runFixture(t, w)
	rows := extractMap(t, e)

	require.Len(t, rows, 2)
	_, present := rows[c]
	assert.False(t, present, "unreachable object must be absent from the bulk extract")
}

// Scenario F: a root referring to itself.
func TestEngine_ScenarioF_SelfLoopRoot(t *testing.T) {
	const a = 0xFF
	w := &fixtureWalker{
		objects: []Object{{a, 10}},
		edges: []Reference{
			{a, a},
		},
		roots: []uint64{a},
	}
	e := runFixture(t, w)
	rows := extractMap(t, e)

	require.Len(t, rows, 1)
	assert.EqualValues(t, 0, rows[a].ImmediateDominator)
	assert.EqualValues(t, 10, rows[a].DominatedSize)
	assert.EqualValues(t, 1, rows[a].DominatedCount)
}

func TestEngine_TopK_OrdersByDominatedSizeDescending(t *testing.T) {
	const a, b, c, d = 0x10, 0x20, 0x30, 0x40
	w := &fixtureWalker{
		objects: []Object{{a, 10}, {b, 20}, {c, 30}, {d, 40}},
		edges: []Reference{
			{a, b}, {a, c}, {a, d},
		},
		roots: []uint64{a},
	}
	e := runFixture(t, w)

	top, err := e.TopK(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.EqualValues(t, a, top[0].ObjectAddress)
	assert.EqualValues(t, d, top[1].ObjectAddress)
}

// An unresolved root address is silently dropped rather than aborting the run.
func TestEngine_UnresolvedRoot_SilentlyDropped(t *testing.T) {
	const a, b = 0x500, 0x600
	w := &fixtureWalker{
		objects: []Object{{a, 10}},
		roots:   []uint64{a, b}, // b was never reported by EnumerateObjects
	}
	e := runFixture(t, w)
	rows := extractMap(t, e)

	require.Len(t, rows, 1)
	assert.EqualValues(t, 0, rows[a].ImmediateDominator)
}

// A duplicate root address contributes the node once.
func TestEngine_DuplicateRoot_Deduplicated(t *testing.T) {
	const a = 0x501
	w := &fixtureWalker{
		objects: []Object{{a, 10}},
		roots:   []uint64{a, a},
	}
	e := runFixture(t, w)
	assert.Len(t, e.roots, 1)
}

// An edge whose endpoint is never reported by EnumerateObjects (the "unresolved
// target"/"null reference" case) is dropped instead of failing the run.
func TestEngine_UnresolvedReference_SilentlyDropped(t *testing.T) {
	const a, b = 0x700, 0x800
	w := &fixtureWalker{
		objects: []Object{{a, 10}, {b, 20}},
		edges: []Reference{
			{a, b},
			{a, 0x999}, // dangling: 0x999 was never enumerated as an object
			{0x888, b}, // dangling: 0x888 was never enumerated as an object
		},
		roots: []uint64{a},
	}
	e := runFixture(t, w)
	rows := extractMap(t, e)

	require.Len(t, rows, 2)
	assert.EqualValues(t, a, rows[b].ImmediateDominator)
}

func TestEngine_Run_CalledTwice_ReturnsPreconditionViolation(t *testing.T) {
	w := &fixtureWalker{
		objects: []Object{{0x1, 1}},
		roots:   []uint64{0x1},
	}
	e := New(w, Options{})
	require.NoError(t, e.Run(context.Background()))
	err := e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionViolation(err))
}

func TestEngine_BulkExtract_BeforeRun_ReturnsPreconditionViolation(t *testing.T) {
	w := &fixtureWalker{}
	e := New(w, Options{})
	_, err := e.BulkExtract()
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionViolation(err))
}

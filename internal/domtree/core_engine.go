package domtree

import (
	"context"

	"github.com/memsnap/heapdom/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// HeapWalker is the collaborator the engine reads the heap through. An
// implementation owns the actual dump format; the engine never reads
// object bytes or the raw address space itself.
//
// Every method may be called exactly once per Engine.Run. EnumerateObjects
// must be fully drained (iterated to completion or to its first error)
// before EnumerateReferences is called, since the engine needs the
// complete address-to-index table before it can resolve edges.
type HeapWalker interface {
	// EnumerateObjects calls fn once per heap object with its address and
	// shallow size, in any order. Object addresses are unique. Returning
	// an error from fn stops enumeration and that error is propagated.
	EnumerateObjects(ctx context.Context, fn func(addr uint64, size uint64) error) error

	// EnumerateReferences calls fn once per outbound reference edge, in
	// any order. An edge whose source or target address was not reported
	// by EnumerateObjects (including 0, meaning null) is dropped by the
	// engine; self-references and duplicate edges are legal.
	EnumerateReferences(ctx context.Context, fn func(from, to uint64) error) error

	// EnumerateRoots calls fn once per root. The same address may be
	// reported more than once; duplicates are deduplicated by the engine.
	EnumerateRoots(ctx context.Context, fn func(addr uint64) error) error
}

// TypeNameResolver is an optional collaborator used only to annotate the
// Top-K enumeration (see output.go) with a human-readable type name. The
// engine's dominator computation never depends on it; the spec's stance
// that the engine does not resolve field names or classify roots extends
// to type names, which is why this is a separate, optional interface
// rather than a field on HeapWalker.
type TypeNameResolver interface {
	TypeName(addr uint64) string
}

type phase int

const (
	phaseInit phase = iota
	phaseEnumerated
	phaseGraphBuilt
	phaseDFSed
	phaseDominated
	phaseAggregated
)

// Options configures an Engine.
type Options struct {
	// MaxWorkers bounds the parallel fan-out used while building the
	// adjacency lists. Zero selects parallel.DefaultPoolConfig.
	MaxWorkers int

	// ChunkSize bounds how many objects each worker processes per chunk
	// during edge resolution. Zero selects a built-in default.
	ChunkSize int

	// Logger receives diagnostic output. Defaults to utils.GetGlobalLogger.
	Logger utils.Logger

	// Progress receives one notification per stage boundary. Defaults to
	// a sink that logs through Logger.
	Progress ProgressSink

	// Tracer wraps each stage in a span. Defaults to the global tracer
	// provider's tracer for this package.
	Tracer trace.Tracer
}

func (o Options) withDefaults() Options {
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = 0 // let parallel.DefaultPoolConfig decide
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 4096
	}
	if o.Logger == nil {
		o.Logger = utils.GetGlobalLogger()
	}
	if o.Progress == nil {
		o.Progress = loggingProgressSink{logger: o.Logger}
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer("github.com/memsnap/heapdom/internal/domtree")
	}
	return o
}

// Engine drives the five-stage dominator analysis pipeline over one
// HeapWalker and holds the intermediate and final state. An Engine is used
// once: create it, call Run, then read results off it. It is not safe for
// concurrent use.
type Engine struct {
	walker  HeapWalker
	typeRes TypeNameResolver
	opts    Options
	phase   phase

	// populated by stage 1 (enum_compressor.go)
	idxToAddr []uint64
	addrToIdx map[uint64]NodeIndex
	sizes     []uint64
	roots     []NodeIndex

	// populated by stage 2 (graph_builder.go)
	succOffsets []int32
	succTargets []NodeIndex
	predOffsets []int32
	predTargets []NodeIndex

	// populated by stage 3 (dfs_traversal.go)
	dfsParent []NodeIndex // DFS-tree parent, by node index; noIndex if unreached or a root
	dfsOrder  []int32     // preorder number, by node index; -1 if unreached
	reached   []bool

	// populated by stage 4 (dom_lengauer_tarjan.go)
	idom []NodeIndex // immediate dominator, by node index; noIndex if unreached

	// populated by stage 5 (retain_aggregator.go)
	retainedSize  []uint64
	retainedCount []uint64
}

// New creates an Engine bound to the given heap walker collaborator. If
// walker also implements TypeNameResolver, it is used to annotate Top-K
// output; pass a separate resolver explicitly with NewWithTypeResolver to
// decouple the two.
func New(walker HeapWalker, opts Options) *Engine {
	e := &Engine{walker: walker, opts: opts.withDefaults()}
	if tr, ok := walker.(TypeNameResolver); ok {
		e.typeRes = tr
	}
	return e
}

// NewWithTypeResolver is like New but takes an explicit, possibly distinct,
// TypeNameResolver.
func NewWithTypeResolver(walker HeapWalker, typeRes TypeNameResolver, opts Options) *Engine {
	e := New(walker, opts)
	e.typeRes = typeRes
	return e
}

// Run executes all five stages in order. It must be called exactly once.
func (e *Engine) Run(ctx context.Context) error {
	if e.phase != phaseInit {
		return preconditionf("Run called twice on the same Engine")
	}
	if e.walker == nil {
		return preconditionf("nil HeapWalker")
	}

	ctx, span := e.opts.Tracer.Start(ctx, "domtree.Run")
	defer span.End()

	e.opts.Progress.OnPhase(phaseNameEnumerated)
	if err := e.enumerate(ctx); err != nil {
		return err
	}

	e.opts.Progress.OnPhase(phaseNameGraphBuilt)
	if err := e.buildGraph(ctx); err != nil {
		return err
	}

	e.opts.Progress.OnPhase(phaseNameDFSed)
	if err := e.traverse(ctx); err != nil {
		return err
	}

	e.opts.Progress.OnPhase(phaseNameDominated)
	if err := e.computeDominators(ctx); err != nil {
		return err
	}

	e.opts.Progress.OnPhase(phaseNameAggregated)
	if err := e.aggregateRetention(ctx); err != nil {
		return err
	}

	e.opts.Progress.OnPhase(phaseNameComplete)
	return nil
}

// requirePhase returns ErrPreconditionViolation unless the engine has
// completed at least the named phase.
func (e *Engine) requirePhase(minimum phase, what string) error {
	if e.phase < minimum {
		return preconditionf("%s requires the engine to have completed Run (phase=%d, have=%d)", what, minimum, e.phase)
	}
	return nil
}

// NodeCount returns the number of distinct objects observed during
// enumeration (stage 1), regardless of reachability.
func (e *Engine) NodeCount() int {
	return len(e.idxToAddr)
}

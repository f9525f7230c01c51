package domtree

import "github.com/memsnap/heapdom/pkg/utils"

// ProgressSink receives one notification per pipeline stage boundary. It
// must be safe to call from the goroutine running Engine.Run and must not
// block; a slow sink directly stalls the pipeline.
type ProgressSink interface {
	OnPhase(name string)
}

// NullProgressSink discards every notification.
type NullProgressSink struct{}

// OnPhase implements ProgressSink.
func (NullProgressSink) OnPhase(string) {}

// loggingProgressSink reports phase transitions through a Logger. It is the
// default sink when Options.Progress is nil.
type loggingProgressSink struct {
	logger utils.Logger
}

// OnPhase implements ProgressSink.
func (s loggingProgressSink) OnPhase(name string) {
	s.logger.Info("dominator analysis: entering phase %s", name)
}

const (
	phaseNameEnumerated = "enumerate"
	phaseNameGraphBuilt = "build_graph"
	phaseNameDFSed      = "dfs"
	phaseNameDominated  = "dominators"
	phaseNameAggregated = "retain"
	phaseNameComplete   = "complete"
)

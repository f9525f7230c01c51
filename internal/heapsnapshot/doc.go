// Package heapsnapshot provides a concrete domtree.HeapWalker implementation
// over a line-delimited JSON snapshot format, for local analysis.
//
// The format is one JSON object per line, each tagged with its kind: one
// "object" record per heap object, one "reference" record per outbound
// edge, and one "root" record per GC root. Records of any kind may appear
// in any order within the file; the reader buffers them into three in-memory
// slices on Load and replays them to the engine in the order recorded.
package heapsnapshot

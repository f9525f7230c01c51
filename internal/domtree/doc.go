// Package domtree computes dominator trees and retained-size statistics
// over a heap object reference graph.
//
// # Package Organization
//
// The package is organized into logical groups using file name prefixes:
//
// ## Core (types.go, errors.go, core_engine.go)
//   - types.go: node index types and the object/root/reference records
//   - errors.go: the three error kinds the engine can return
//   - core_engine.go: the Engine phase state machine and its accessors
//
// ## Enumeration (enum_*.go)
//   - enum_compressor.go: dense-index compression of the raw address space
//
// ## Graph (graph_*.go)
//   - graph_builder.go: forward/reverse CSR adjacency construction
//
// ## Traversal (dfs_*.go)
//   - dfs_traversal.go: iterative multi-root depth-first traversal
//
// ## Dominators (dom_*.go)
//   - dom_lengauer_tarjan.go: Lengauer-Tarjan dominator solver with a
//     synthetic super-root for well-defined multi-root dominance
//
// ## Retention (retain_*.go)
//   - retain_aggregator.go: iterative bottom-up retained size/count
//     (a queue of nodes whose dominator-tree children are all summed)
//
// ## Output (output.go, progress.go)
//   - output.go: columnar bulk extract and Top-K enumeration
//   - progress.go: the ProgressSink interface and a logging default
//
// # Usage Example
//
//	eng := domtree.New(walker, domtree.Options{})
//	if err := eng.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	extract, err := eng.BulkExtract()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	top, err := eng.TopK(50)
//
// # Key Types
//
//   - Engine: drives the five-stage pipeline and holds its state
//   - HeapWalker: the collaborator interface the caller must implement
//   - BulkExtract: the columnar result of a completed run
//   - TopKEntry: one row of the Top-K-by-retained-size enumeration
package domtree

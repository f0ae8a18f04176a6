// Package internal wires the lint core together.
//
// The core is made of small packages:
//
// source: byte offsets, line/column positions and spans.
//
// ast: the syntax tree plugins see, with a closed set of node kinds.
//
// sink: the ordered buffer diagnostics are appended to during a run.
//
// plugin: descriptors, the shared Context handed to callbacks and the
// Registry that loads factories in order and builds the dispatch table.
//
// dispatch: the single pre-order walk that routes nodes to callbacks.
//
// nolint: ignore directives found in comments.
//
// Engine ties these together. It is created once from an ordered list of
// plugin entries and reused across files; plugin state lives as long as the
// engine does. An Engine is not safe for concurrent use, so callers that lint
// in parallel create one per worker.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, internal.Entries(names, rules))
//	if err != nil {
//	    // handle error
//	}
//
//	diags, err := engine.RunSource("path/to/file.go", nil)
//	if err != nil {
//	    // handle error
//	}
//
//	for _, d := range diags {
//	    fmt.Printf("%s: %s at %s\n", d.Rule(), d.Message, d.Span.Start)
//	}
//
// This package is intended for internal use within the linting tool and should not be
// imported by external packages.
package internal

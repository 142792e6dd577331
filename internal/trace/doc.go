// Package trace records what the specification pipeline did and how long it
// took.
//
// Every pass (scan, resolve, build, materialize, export, import) opens a span;
// interesting single facts (an artifact written, a dependency skipped) are
// points. Tracing is off by default and costs nothing in that state.
//
// # Usage
//
//	specgraph collect --trace=- --trace-level=detail bank.spec.yaml
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: reserved for crash paths
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-module events
//   - LevelDebug: everything including per-entity records
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "specs.scan", 0)
//	defer span.End("")
package trace

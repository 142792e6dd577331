// Package diag defines the diagnostic model shared by the specification
// passes.
//
// Diagnostic is the central record: a severity, a stable numeric Code, a
// short message, a primary source.Span and optional notes. Whole-pass
// failures (for example an unreadable spec artifact) use the synthetic zero
// Span.
//
// Passes never return diagnostics as Go errors. They emit through a Reporter
// (usually BagReporter) and keep going; the map they produce is simply missing
// the affected entities. Repeats are collapsed afterwards by Bag.Fold, which
// keeps the notes of every repeat. Package diag does no
// formatting; rendering lives in internal/diagfmt.
package diag

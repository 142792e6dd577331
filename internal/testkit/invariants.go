// Package testkit holds checks shared by decoder and pipeline tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"specgraph/internal/hir"
	"specgraph/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a decoded module:
// 1) every named node and dependency has a non-empty span in sf
// 2) all spans lie within the file content
// 3) every child node points back to its parent
func CheckSpanInvariants(mod *hir.Module, sf *source.File) error {
	if mod == nil || sf == nil {
		return fmt.Errorf("nil module or file")
	}
	if mod.Root == nil {
		return fmt.Errorf("module %s has no root", mod.Name)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	check := func(what string, sp source.Span, named bool) error {
		if sp.File != sf.ID {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("inverted %s span: %v", what, sp)
		}
		if named && sp.Empty() {
			return fmt.Errorf("empty %s span: %v", what, sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("%s span end beyond content: %d > %d", what, sp.End, lenContent)
		}
		return nil
	}

	for _, dep := range mod.Deps {
		if err := check("dep "+dep.Name, dep.Span, true); err != nil {
			return err
		}
	}

	var visit func(n *hir.Node) error
	visit = func(n *hir.Node) error {
		for _, c := range n.Children {
			if c.Parent != n {
				return fmt.Errorf("node %q has wrong parent", c.Name)
			}
			if err := check(c.Kind.String()+" "+c.Name, c.Span, c.Name != ""); err != nil {
				return err
			}
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(mod.Root)
}

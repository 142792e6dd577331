package specs

import (
	"context"
	"fmt"

	"specgraph/internal/body"
	"specgraph/internal/trace"
)

// Materialize loads every body the export needs into the cache: all spec
// bodies first, then pure functions that have a body, then predicate bodies.
func Materialize(ctx context.Context, m *DefSpecificationMap, cache *body.Cache) {
	_, span := trace.Start(ctx, trace.ScopePass, "specs.materialize")
	specs, pureFns, predicates := m.ExportSet()
	for _, id := range specs {
		cache.LoadSpecBody(id.ExpectLocal())
	}
	pure := 0
	for _, id := range pureFns {
		local := id.ExpectLocal()
		if !cache.HasBody(local) {
			continue
		}
		cache.LoadPureFnBody(local)
		pure++
	}
	for _, id := range predicates {
		cache.LoadPredicateBody(id.ExpectLocal())
	}
	span.End(fmt.Sprintf("%d spec, %d pure, %d predicate", len(specs), pure, len(predicates)))
}

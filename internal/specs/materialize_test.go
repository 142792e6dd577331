package specs

import (
	"context"
	"slices"
	"testing"

	"specgraph/internal/body"
	"specgraph/internal/defid"
)

func TestExportSetGroups(t *testing.T) {
	pre := specFn("pre", idPre)
	lhs := specFn("lhs", idLhs)
	rhs := specFn("rhs", idPledge)
	pred := specFn("pred", idPred)
	pureWithBody := fnWithBody("pure_body", attrs(TagPure, "", TagPreRef, idPre))
	pureNoBody := fn("pure_stub", attrs(TagPure, ""))
	predicate := fn("is_positive", attrs(TagPredRef, idPred))
	pledged := fn("pledged", attrs(TagAssertPledgeLhs, idLhs, TagAssertPledgeRhs, idPledge))
	mod := module(pre, lhs, rhs, pred, pureWithBody, pureNoBody, predicate, pledged)

	m, _ := build(t, mod, Options{})
	m.ProcSpecs[defid.Foreign(9, 1)] = NewSpecGraph(EmptyProcedureSpecification(defid.Foreign(9, 1)))
	m.ProcSpecs[defid.Foreign(9, 1)].SetKind(Pure())

	specs, pureFns, predicates := m.ExportSet()
	wantSpecs := []defid.DefID{def(pre), def(lhs), def(rhs)}
	if !slices.Equal(specs, wantSpecs) {
		t.Fatalf("specs = %v, want %v", specs, wantSpecs)
	}
	wantPure := []defid.DefID{def(pureWithBody), def(pureNoBody)}
	if !slices.Equal(pureFns, wantPure) {
		t.Fatalf("pure = %v, want %v", pureFns, wantPure)
	}
	if !slices.Equal(predicates, []defid.DefID{def(pred)}) {
		t.Fatalf("predicates = %v", predicates)
	}
}

func TestMaterializeOrder(t *testing.T) {
	pre := specFn("pre", idPre)
	pred := specFn("pred", idPred)
	pureWithBody := fnWithBody("pure_body", attrs(TagPure, "", TagPreRef, idPre))
	pureNoBody := fn("pure_stub", attrs(TagPure, ""))
	predicate := fn("is_positive", attrs(TagPredRef, idPred))
	// the pure function gets the lowest handle, so the load order shows
	// grouping rather than handle order
	mod := module(pureWithBody, pre, pred, pureNoBody, predicate)

	m, _ := build(t, mod, Options{})
	cache := body.NewCache(mod)
	Materialize(context.Background(), m, cache)

	want := []defid.DefID{def(pre), def(pureWithBody), def(pred)}
	if got := cache.LoadOrder(); !slices.Equal(got, want) {
		t.Fatalf("load order = %v, want %v", got, want)
	}
	if e, ok := cache.Get(def(pureWithBody)); !ok || e.Kind != body.KindPureFn {
		t.Fatalf("pure entry = %+v", e)
	}
	if _, ok := cache.Get(def(pureNoBody)); ok {
		t.Fatalf("pure function without body must be skipped")
	}
}

package body

import (
	"testing"

	"specgraph/internal/defid"
	"specgraph/internal/hir"
)

type mapProvider map[defid.LocalID]*hir.Body

func (p mapProvider) HasBody(id defid.LocalID) bool { _, ok := p[id]; return ok }

func (p mapProvider) Body(id defid.LocalID) (*hir.Body, bool) {
	b, ok := p[id]
	return b, ok
}

func body(stmt string) *hir.Body {
	return &hir.Body{Result: "bool", Blocks: []hir.Block{{Stmts: []string{stmt}, Term: "return"}}}
}

func TestLoadIsIdempotentAndOrdered(t *testing.T) {
	c := NewCache(mapProvider{1: body("a"), 2: body("b"), 3: body("c")})
	c.LoadPredicateBody(3)
	c.LoadSpecBody(1)
	first := c.LoadPureFnBody(2)
	again := c.LoadSpecBody(2)
	if first != again || again.Kind != KindPureFn {
		t.Fatalf("second load must return the first entry, got kind %s", again.Kind)
	}
	order := c.LoadOrder()
	want := []defid.DefID{defid.Local(3), defid.Local(1), defid.Local(2)}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	local := c.Local()
	if local[0].Def != defid.Local(1) || local[2].Def != defid.Local(3) {
		t.Fatalf("Local() not sorted: %v", local)
	}
}

func TestLoadedBodyIsACopy(t *testing.T) {
	src := body("x")
	c := NewCache(mapProvider{1: src})
	e := c.LoadSpecBody(1)
	src.Blocks[0].Stmts[0] = "mutated"
	if e.Body.Blocks[0].Stmts[0] != "x" {
		t.Fatalf("cache aliases provider body")
	}
}

func TestMissingSpecBodyPanics(t *testing.T) {
	c := NewCache(mapProvider{})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	c.LoadSpecBody(9)
}

func TestImportExternal(t *testing.T) {
	c := NewCache(mapProvider{1: body("local")})
	c.LoadSpecBody(1)
	foreign := defid.Foreign(0xa, 4)
	n := c.ImportExternal([]Entry{
		{Def: defid.Local(1), Kind: KindSpec, Body: body("ignored")},
		{Def: foreign, Kind: KindSpec, Body: body("first")},
	})
	if n != 1 {
		t.Fatalf("stored = %d", n)
	}
	c.ImportExternal([]Entry{{Def: foreign, Kind: KindPredicate, Body: body("second")}})
	e, ok := c.Get(foreign)
	if !ok || !e.External || e.Body.Blocks[0].Stmts[0] != "second" {
		t.Fatalf("entry = %+v", e)
	}
	if got := c.External(); len(got) != 1 {
		t.Fatalf("external = %d", len(got))
	}
	if got, _ := c.Get(defid.Local(1)); got.Body.Blocks[0].Stmts[0] != "local" {
		t.Fatalf("local entry replaced")
	}
}

package specs

import (
	"context"
	"testing"

	"specgraph/internal/defid"
	"specgraph/internal/diag"
	"specgraph/internal/hir"
)

const (
	idPre    = "0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e01"
	idPost   = "0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e02"
	idPledge = "0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e03"
	idLhs    = "0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e04"
	idPred   = "0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e05"
	idInv    = "0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e06"
	idGhost  = "0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e07"
)

func attrs(kv ...string) hir.Attrs {
	out := make(hir.Attrs, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, hir.Attr{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func stubBody(stmt string) *hir.Body {
	return &hir.Body{Result: "bool", Blocks: []hir.Block{{Stmts: []string{stmt}, Term: "return"}}}
}

func fn(name string, a hir.Attrs) *hir.Node {
	return &hir.Node{Kind: hir.NodeFn, Name: name, Attrs: a}
}

func fnWithBody(name string, a hir.Attrs) *hir.Node {
	n := fn(name, a)
	n.Body = stubBody("_0 = " + name + "()")
	return n
}

func specFn(name, id string, extra ...string) *hir.Node {
	return fnWithBody(name, attrs(append([]string{TagSpecID, id}, extra...)...))
}

func module(children ...*hir.Node) *hir.Module {
	return hir.NewModule("test", &hir.Node{Kind: hir.NodeModule, Children: children})
}

func build(t *testing.T, mod *hir.Module, opts Options) (*DefSpecificationMap, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(100)
	env := &Env{Module: mod, Reporter: diag.BagReporter{Bag: bag}, Options: opts}
	collected := Scan(context.Background(), mod)
	return Build(context.Background(), env, collected), bag
}

func mustPanic(t *testing.T, what string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", what)
		}
	}()
	f()
}

func def(n *hir.Node) defid.DefID { return n.Def.ToDefID() }

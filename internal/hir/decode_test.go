package hir

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"specgraph/internal/defid"
	"specgraph/internal/source"
)

const bankModule = `
module: bank
disambiguator: "0.1.0"
deps: [core]
items:
  - kind: type
    name: Account
  - kind: impl
    self_type: Account
    items:
      - kind: fn
        name: account_invariant
        attrs:
          spec_id: 0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e01
          type_invariant_spec:
        body:
          params: [{name: self, type: "&Account"}]
          result: bool
          blocks:
            - stmts: ["_0 = ge(self.balance, 0)"]
              term: return
  - kind: fn
    name: deposit
    attrs:
      pre_spec_id_ref: [a, b]
      trusted: true
  - kind: fn
    name: len_stub
    attrs:
      extern_spec: method
    calls: ["1f::7"]
`

func decodeString(t *testing.T, text string) *Module {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.AddVirtual("bank.spec.yaml", []byte(text))
	mod, err := Decode(fs, file)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return mod
}

func TestDecodeAssignsHandlesInOrder(t *testing.T) {
	mod := decodeString(t, bankModule)
	if mod.Name != "bank" || mod.Disambiguator != "0.1.0" {
		t.Fatalf("module = %q/%q", mod.Name, mod.Disambiguator)
	}
	if len(mod.Deps) != 1 || mod.Deps[0].Name != "core" {
		t.Fatalf("deps = %+v", mod.Deps)
	}
	want := []string{"Account", "", "account_invariant", "deposit", "len_stub"}
	for i, name := range want {
		n := mod.Node(defid.LocalID(i + 1))
		if n == nil {
			t.Fatalf("node %d missing", i+1)
		}
		if n.Name != name {
			t.Fatalf("node %d = %q, want %q", i+1, n.Name, name)
		}
	}
	if mod.Len() != 5 {
		t.Fatalf("len = %d", mod.Len())
	}
}

func TestDecodeResolvesReferences(t *testing.T) {
	mod := decodeString(t, bankModule)
	impl := mod.ParentImpl(3)
	if impl == nil || !impl.HasSelfType || impl.SelfType != defid.Local(1) {
		t.Fatalf("impl self type = %+v", impl)
	}
	stub := mod.Node(5)
	if len(stub.Calls) != 1 || stub.Calls[0] != defid.Foreign(0x1f, 7) {
		t.Fatalf("calls = %v", stub.Calls)
	}
	if !mod.HasBody(3) || mod.HasBody(4) {
		t.Fatalf("body presence wrong")
	}
}

func TestDecodeAttrs(t *testing.T) {
	mod := decodeString(t, bankModule)
	dep := mod.Node(4)
	if got := dep.Attrs.All("pre_spec_id_ref"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("pre refs = %v", got)
	}
	if !dep.Attrs.Has("trusted") || dep.Attrs.Has("pure") {
		t.Fatalf("flags wrong: %+v", dep.Attrs)
	}
	inv := mod.Node(3)
	if v, ok := inv.Attrs.Get("type_invariant_spec"); !ok || v != "" {
		t.Fatalf("empty flag = %q, %v", v, ok)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"missing name", "items: []", "missing module name"},
		{"bad kind", "module: m\nitems:\n  - kind: struct\n", "unknown item kind"},
		{"unresolved", "module: m\nitems:\n  - kind: impl\n    self_type: Nope\n", "unresolved reference"},
		{"ambiguous", "module: m\nitems:\n  - {kind: fn, name: f}\n  - {kind: fn, name: f}\n  - {kind: fn, name: g, calls: [f]}\n", "ambiguous reference"},
		{"impl without type", "module: m\nitems:\n  - kind: impl\n", "without self_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			file := fs.AddVirtual("m.spec.yaml", []byte(tt.text))
			_, err := Decode(fs, file)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected DecodeError, got %T", err)
			}
			if de.Span.File != file {
				t.Fatalf("span file = %d", de.Span.File)
			}
		})
	}
}

func TestPosOfRejectsNegativePositions(t *testing.T) {
	pos, err := posOf(&yaml.Node{Line: 3, Column: 7})
	if err != nil || pos != (source.LineCol{Line: 3, Col: 7}) {
		t.Fatalf("pos = %+v, err = %v", pos, err)
	}
	if _, err := posOf(&yaml.Node{Line: -1, Column: 1}); err == nil {
		t.Fatalf("negative line accepted")
	}
	if _, err := posOf(&yaml.Node{Line: 1, Column: -4}); err == nil {
		t.Fatalf("negative column accepted")
	}
}

func TestDecodeSpansStayInsideFile(t *testing.T) {
	text := "module: m\nitems:\n  - kind: fn\n    name: f\n"
	fs := source.NewFileSet()
	file := fs.AddVirtual("m.spec.yaml", []byte(text))
	mod, err := Decode(fs, file)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fn := mod.Root.Children[0]
	if fn.Span.End-fn.Span.Start != 1 || int(fn.Span.End) > len(text) {
		t.Fatalf("fn span = %v", fn.Span)
	}

	d := &decoder{fs: fs, file: file}
	sp := d.span(source.LineCol{Line: 4, Col: 11}, 1<<40)
	if sp.End != uint32(len(text)) {
		t.Fatalf("oversized span end = %d, want %d", sp.End, len(text))
	}
}

func TestWalkVisitsChildrenFirst(t *testing.T) {
	text := `
module: m
items:
  - kind: fn
    name: outer
    items:
      - kind: loop
        items:
          - kind: local
            attrs: {closure: ""}
            init: {kind: closure, name: c}
`
	mod := decodeString(t, text)
	var order []string
	Walk(mod.Root, &Dispatch{
		Fn:      func(n *Node) { order = append(order, "fn:"+n.Name) },
		Loop:    func(*Node) { order = append(order, "loop") },
		Local:   func(*Node) { order = append(order, "local") },
		Closure: func(n *Node) { order = append(order, "closure:"+n.Name) },
	})
	got := strings.Join(order, ",")
	if got != "closure:c,local,loop,fn:outer" {
		t.Fatalf("order = %s", got)
	}
}

package hir

import (
	"fmt"

	"specgraph/internal/defid"
	"specgraph/internal/source"
)

// Dep names a dependency module.
type Dep struct {
	Name string
	Span source.Span
}

// Module is one lowered compilation unit.
type Module struct {
	Name          string
	Disambiguator string
	Deps          []Dep
	File          source.FileID
	Span          source.Span
	Root          *Node

	nodes []*Node // index = DefIndex, 0 reserved
}

// NewModule wraps an already built tree and indexes its defining nodes.
// Defining nodes without a handle get one in pre-order.
func NewModule(name string, root *Node) *Module {
	m := &Module{Name: name, Root: root, nodes: []*Node{nil}}
	m.index(root, nil)
	return m
}

func (m *Module) index(n *Node, parent *Node) {
	if n == nil {
		return
	}
	n.Parent = parent
	if n.Kind.Defines() {
		if !n.Def.IsValid() {
			n.Def = defid.LocalID(len(m.nodes)) //nolint:gosec // bounded by decode
		}
		for int(n.Def) >= len(m.nodes) {
			m.nodes = append(m.nodes, nil)
		}
		if prev := m.nodes[n.Def]; prev != nil && prev != n {
			panic(fmt.Sprintf("hir: %s defined twice (%q and %q)", n.Def, prev.Name, n.Name))
		}
		m.nodes[n.Def] = n
	}
	m.index(n.Init, n)
	for _, c := range n.Children {
		m.index(c, n)
	}
}

// Node returns the node defining id, or nil.
func (m *Module) Node(id defid.LocalID) *Node {
	if !id.IsValid() || int(id) >= len(m.nodes) {
		return nil
	}
	return m.nodes[id]
}

// Len reports the number of defining nodes.
func (m *Module) Len() int {
	n := 0
	for _, node := range m.nodes {
		if node != nil {
			n++
		}
	}
	return n
}

// HasBody reports whether the entity has a defined body.
func (m *Module) HasBody(id defid.LocalID) bool {
	n := m.Node(id)
	return n != nil && n.Body != nil
}

// Body returns the executable body of the entity.
func (m *Module) Body(id defid.LocalID) (*Body, bool) {
	n := m.Node(id)
	if n == nil || n.Body == nil {
		return nil, false
	}
	return n.Body, true
}

// SpanOf returns the definition span, or the synthetic span when unknown.
func (m *Module) SpanOf(id defid.LocalID) source.Span {
	if n := m.Node(id); n != nil {
		return n.Span
	}
	return source.Span{}
}

// NameOf returns a printable name for id.
func (m *Module) NameOf(id defid.DefID) string {
	if local, ok := id.AsLocal(); ok {
		if n := m.Node(local); n != nil && n.Name != "" {
			return n.Name
		}
	}
	return id.String()
}

// ParentImpl returns the nearest enclosing impl of id.
func (m *Module) ParentImpl(id defid.LocalID) *Node {
	n := m.Node(id)
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == NodeImpl {
			return p
		}
	}
	return nil
}

// Package hir is the structural tree the specification passes walk.
//
// The tree is a closed set of node kinds produced by the upstream
// annotation-lowering stage. Each defining node carries a local entity handle
// and the raw metadata tags attached to it; the passes never look at anything
// else except the lowered executable Body.
package hir

import (
	"specgraph/internal/defid"
	"specgraph/internal/source"
)

// NodeKind enumerates the node kinds of the tree.
type NodeKind uint8

const (
	NodeModule NodeKind = iota + 1
	NodeFn
	NodeTraitItem
	NodeImpl
	// NodeLocal is a let-statement; its Init holds the bound expression.
	NodeLocal
	NodeClosure
	NodeLoop
	NodeType
)

func (k NodeKind) String() string {
	switch k {
	case NodeModule:
		return "module"
	case NodeFn:
		return "fn"
	case NodeTraitItem:
		return "trait_item"
	case NodeImpl:
		return "impl"
	case NodeLocal:
		return "local"
	case NodeClosure:
		return "closure"
	case NodeLoop:
		return "loop"
	case NodeType:
		return "type"
	default:
		return "unknown"
	}
}

// ParseNodeKind maps the textual kind used in module descriptions.
func ParseNodeKind(s string) (NodeKind, bool) {
	for k := NodeModule; k <= NodeType; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Defines reports whether nodes of this kind introduce an entity.
func (k NodeKind) Defines() bool {
	switch k {
	case NodeFn, NodeTraitItem, NodeImpl, NodeClosure, NodeType:
		return true
	default:
		return false
	}
}

// Param is a body parameter.
type Param struct {
	Name string `yaml:"name" msgpack:"n"`
	Type string `yaml:"type" msgpack:"t"`
}

// Block is one basic block of a lowered body.
type Block struct {
	Stmts []string `yaml:"stmts" msgpack:"s"`
	Term  string   `yaml:"term" msgpack:"t"`
}

// Body is the executable representation of an entity.
type Body struct {
	Params []Param `yaml:"params" msgpack:"p"`
	Result string  `yaml:"result" msgpack:"r"`
	Blocks []Block `yaml:"blocks" msgpack:"b"`
}

// Clone returns a deep copy so cached bodies never alias the tree.
func (b *Body) Clone() *Body {
	if b == nil {
		return nil
	}
	out := &Body{
		Params: append([]Param(nil), b.Params...),
		Result: b.Result,
		Blocks: make([]Block, len(b.Blocks)),
	}
	for i, blk := range b.Blocks {
		out.Blocks[i] = Block{Stmts: append([]string(nil), blk.Stmts...), Term: blk.Term}
	}
	return out
}

// Node is one element of the tree.
type Node struct {
	Kind  NodeKind
	Def   defid.LocalID // NoLocalID for non-defining kinds
	Name  string
	Span  source.Span
	Attrs Attrs

	// SelfType is the type an impl block targets.
	SelfType    defid.DefID
	HasSelfType bool

	// Init is the initializer of a NodeLocal.
	Init *Node

	// Body is nil when the entity has no defined body.
	Body *Body

	// Calls lists the entities the body calls, in order.
	Calls []defid.DefID

	Parent   *Node
	Children []*Node
}

package hir

// Dispatch holds one callback per node kind. Nil callbacks are skipped.
type Dispatch struct {
	Fn        func(n *Node)
	TraitItem func(n *Node)
	Impl      func(n *Node)
	Local     func(n *Node)
	Closure   func(n *Node)
	Loop      func(n *Node)
	Type      func(n *Node)
}

func (d *Dispatch) handler(k NodeKind) func(*Node) {
	switch k {
	case NodeFn:
		return d.Fn
	case NodeTraitItem:
		return d.TraitItem
	case NodeImpl:
		return d.Impl
	case NodeLocal:
		return d.Local
	case NodeClosure:
		return d.Closure
	case NodeLoop:
		return d.Loop
	case NodeType:
		return d.Type
	default:
		return nil
	}
}

// Walk visits every node exactly once, children before their parent.
func Walk(n *Node, d *Dispatch) {
	if n == nil || d == nil {
		return
	}
	Walk(n.Init, d)
	for _, c := range n.Children {
		Walk(c, d)
	}
	if h := d.handler(n.Kind); h != nil {
		h(n)
	}
}

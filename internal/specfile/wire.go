package specfile

import (
	"specgraph/internal/body"
	"specgraph/internal/defid"
	"specgraph/internal/hir"
	"specgraph/internal/specs"
)

// Wire DTOs. Every DefID is rebased before it is written, so a stored id
// never uses defid.LocalModule.

type wireDefID struct {
	Module uint64 `msgpack:"m"`
	Index  uint32 `msgpack:"i"`
}

type wireKind struct {
	Tag       uint8      `msgpack:"t"`
	Predicate *wireDefID `msgpack:"p"`
}

type wirePledge struct {
	Lhs *wireDefID `msgpack:"l"`
	Rhs wireDefID  `msgpack:"r"`
}

type wireProcSpec struct {
	Source  wireDefID    `msgpack:"src"`
	Pres    []wireDefID  `msgpack:"pre"`
	Posts   []wireDefID  `msgpack:"post"`
	Pledges []wirePledge `msgpack:"pledge"`
	Kind    wireKind     `msgpack:"kind"`
	Trusted bool         `msgpack:"trusted"`
}

type wireVariant struct {
	Constraint string       `msgpack:"c"`
	Spec       wireProcSpec `msgpack:"s"`
}

type wireSpecGraph struct {
	Key         wireDefID     `msgpack:"key"`
	Base        wireProcSpec  `msgpack:"base"`
	Constrained []wireVariant `msgpack:"constrained"`
}

type wireTypeSpec struct {
	Key        wireDefID   `msgpack:"key"`
	Source     wireDefID   `msgpack:"src"`
	Invariants []wireDefID `msgpack:"inv"`
	Trusted    bool        `msgpack:"trusted"`
}

type wireBody struct {
	Def  wireDefID `msgpack:"def"`
	Kind uint8     `msgpack:"kind"`
	Body *hir.Body `msgpack:"body"`
}

// codec carries the module id ids are rebased onto or localized from.
type codec struct {
	self defid.ModuleID
}

func (c codec) id(d defid.DefID) wireDefID {
	r := d.Rebase(c.self)
	return wireDefID{Module: uint64(r.Module), Index: uint32(r.Index)}
}

func (c codec) ids(in []defid.DefID) []wireDefID {
	if len(in) == 0 {
		return nil
	}
	out := make([]wireDefID, len(in))
	for i, d := range in {
		out[i] = c.id(d)
	}
	return out
}

func (c codec) optID(d *defid.DefID) *wireDefID {
	if d == nil {
		return nil
	}
	w := c.id(*d)
	return &w
}

func (c codec) procSpec(p *specs.ProcedureSpecification) wireProcSpec {
	out := wireProcSpec{
		Source:  c.id(p.Source),
		Pres:    c.ids(p.Pres),
		Posts:   c.ids(p.Posts),
		Kind:    wireKind{Tag: uint8(p.Kind.Tag), Predicate: c.optID(p.Kind.Predicate)},
		Trusted: p.Trusted,
	}
	for _, pl := range p.Pledges {
		out.Pledges = append(out.Pledges, wirePledge{Lhs: c.optID(pl.Lhs), Rhs: c.id(pl.Rhs)})
	}
	return out
}

func (c codec) specGraph(key defid.DefID, g *specs.SpecGraph) wireSpecGraph {
	out := wireSpecGraph{Key: c.id(key), Base: c.procSpec(&g.Base)}
	for _, constraint := range g.Constraints() {
		out.Constrained = append(out.Constrained, wireVariant{
			Constraint: constraint,
			Spec:       c.procSpec(g.Constrained[constraint]),
		})
	}
	return out
}

func (c codec) typeSpec(key defid.DefID, t *specs.TypeSpecification) wireTypeSpec {
	return wireTypeSpec{
		Key:        c.id(key),
		Source:     c.id(t.Source),
		Invariants: c.ids(t.Invariants),
		Trusted:    t.Trusted,
	}
}

func (c codec) body(e body.Entry) wireBody {
	return wireBody{Def: c.id(e.Def), Kind: uint8(e.Kind), Body: e.Body}
}

// decoding side

func (c codec) defID(w wireDefID) defid.DefID {
	d := defid.DefID{Module: defid.ModuleID(w.Module), Index: defid.DefIndex(w.Index)}
	return d.Localize(c.self)
}

func (c codec) defIDs(in []wireDefID) []defid.DefID {
	if len(in) == 0 {
		return nil
	}
	out := make([]defid.DefID, len(in))
	for i, w := range in {
		out[i] = c.defID(w)
	}
	return out
}

func (c codec) optDefID(w *wireDefID) *defid.DefID {
	if w == nil {
		return nil
	}
	d := c.defID(*w)
	return &d
}

func (c codec) fromProcSpec(w wireProcSpec) specs.ProcedureSpecification {
	out := specs.ProcedureSpecification{
		Source:  c.defID(w.Source),
		Pres:    c.defIDs(w.Pres),
		Posts:   c.defIDs(w.Posts),
		Kind:    specs.ProcedureSpecificationKind{Tag: specs.KindTag(w.Kind.Tag), Predicate: c.optDefID(w.Kind.Predicate)},
		Trusted: w.Trusted,
	}
	for _, pl := range w.Pledges {
		out.Pledges = append(out.Pledges, specs.Pledge{Lhs: c.optDefID(pl.Lhs), Rhs: c.defID(pl.Rhs)})
	}
	return out
}

func (c codec) fromSpecGraph(w wireSpecGraph) (defid.DefID, *specs.SpecGraph) {
	g := specs.NewSpecGraph(c.fromProcSpec(w.Base))
	if len(w.Constrained) > 0 {
		g.Constrained = make(map[string]*specs.ProcedureSpecification, len(w.Constrained))
		for _, v := range w.Constrained {
			spec := c.fromProcSpec(v.Spec)
			g.Constrained[v.Constraint] = &spec
		}
	}
	return c.defID(w.Key), g
}

func (c codec) fromTypeSpec(w wireTypeSpec) (defid.DefID, *specs.TypeSpecification) {
	return c.defID(w.Key), &specs.TypeSpecification{
		Source:     c.defID(w.Source),
		Invariants: c.defIDs(w.Invariants),
		Trusted:    w.Trusted,
	}
}

func (c codec) fromBody(w wireBody) body.Entry {
	return body.Entry{Def: c.defID(w.Def), Kind: body.Kind(w.Kind), Body: w.Body, External: true}
}

package specs

import (
	"maps"
	"slices"

	"specgraph/internal/defid"
)

// KindTag classifies a procedure's verification treatment.
type KindTag uint8

const (
	KindImpure KindTag = iota
	KindPure
	KindPredicate
)

// ProcedureSpecificationKind is Impure, Pure or Predicate(optional body).
type ProcedureSpecificationKind struct {
	Tag KindTag
	// Predicate is the predicate body; nil for abstract predicates.
	Predicate *defid.DefID
}

func Impure() ProcedureSpecificationKind { return ProcedureSpecificationKind{Tag: KindImpure} }

func Pure() ProcedureSpecificationKind { return ProcedureSpecificationKind{Tag: KindPure} }

// Predicate builds a predicate kind; body is nil for abstract predicates.
func Predicate(body *defid.DefID) ProcedureSpecificationKind {
	if body != nil {
		id := *body
		body = &id
	}
	return ProcedureSpecificationKind{Tag: KindPredicate, Predicate: body}
}

func (k ProcedureSpecificationKind) IsPure() bool { return k.Tag == KindPure }

func (k ProcedureSpecificationKind) IsPredicate() bool { return k.Tag == KindPredicate }

func (k ProcedureSpecificationKind) String() string {
	switch k.Tag {
	case KindPure:
		return "pure"
	case KindPredicate:
		if k.Predicate == nil {
			return "predicate(abstract)"
		}
		return "predicate(" + k.Predicate.String() + ")"
	default:
		return "impure"
	}
}

// Pledge is an after-call obligation on the call's result. Lhs is the
// optional "before" side of an assert-pledge.
type Pledge struct {
	Lhs *defid.DefID
	Rhs defid.DefID
}

// ProcedureSpecification is one (base or constrained) contract.
type ProcedureSpecification struct {
	// Source is the entity the contract was written on; for extern specs this
	// stays the local stand-in.
	Source  defid.DefID
	Pres    []defid.DefID
	Posts   []defid.DefID
	Pledges []Pledge
	Kind    ProcedureSpecificationKind
	Trusted bool
}

// EmptyProcedureSpecification returns an impure, untrusted contract.
func EmptyProcedureSpecification(source defid.DefID) ProcedureSpecification {
	return ProcedureSpecification{Source: source, Kind: Impure()}
}

func (p *ProcedureSpecification) clone() *ProcedureSpecification {
	out := *p
	out.Pres = slices.Clone(p.Pres)
	out.Posts = slices.Clone(p.Posts)
	out.Pledges = slices.Clone(p.Pledges)
	return &out
}

// SpecGraph is the resolved contract of one procedure.
type SpecGraph struct {
	Base ProcedureSpecification
	// Constrained holds ghost-constrained variants keyed by constraint.
	Constrained map[string]*ProcedureSpecification
}

// NewSpecGraph creates a graph with the given base contract.
func NewSpecGraph(base ProcedureSpecification) *SpecGraph {
	return &SpecGraph{Base: base}
}

// HasConstraints reports whether any constrained variant exists.
func (g *SpecGraph) HasConstraints() bool { return len(g.Constrained) > 0 }

// Constraints returns the variant keys in sorted order.
func (g *SpecGraph) Constraints() []string {
	return slices.Sorted(maps.Keys(g.Constrained))
}

// Variant returns the constrained contract for c, creating it from the base
// on first use. Preconditions are not inherited by a new variant;
// postconditions and pledges are.
func (g *SpecGraph) Variant(c string) *ProcedureSpecification {
	if v, ok := g.Constrained[c]; ok {
		return v
	}
	v := g.Base.clone()
	v.Pres = nil
	if g.Constrained == nil {
		g.Constrained = make(map[string]*ProcedureSpecification)
	}
	g.Constrained[c] = v
	return v
}

// AddPrecondition attaches pre to the base contract or to one variant.
func (g *SpecGraph) AddPrecondition(pre defid.DefID, constraint string) {
	if constraint == "" {
		g.Base.Pres = append(g.Base.Pres, pre)
		return
	}
	v := g.Variant(constraint)
	v.Pres = append(v.Pres, pre)
}

// AddPostcondition attaches post to one variant, or to the base contract and
// every existing variant.
func (g *SpecGraph) AddPostcondition(post defid.DefID, constraint string) {
	if constraint != "" {
		v := g.Variant(constraint)
		v.Posts = append(v.Posts, post)
		return
	}
	g.Base.Posts = append(g.Base.Posts, post)
	for _, v := range g.Constrained {
		v.Posts = append(v.Posts, post)
	}
}

// AddPledge attaches p to the base contract and every variant.
func (g *SpecGraph) AddPledge(p Pledge) {
	g.Base.Pledges = append(g.Base.Pledges, p)
	for _, v := range g.Constrained {
		v.Pledges = append(v.Pledges, p)
	}
}

// SetTrusted sets the trusted flag everywhere.
func (g *SpecGraph) SetTrusted(trusted bool) {
	g.Base.Trusted = trusted
	for _, v := range g.Constrained {
		v.Trusted = trusted
	}
}

// SetKind sets the kind everywhere.
func (g *SpecGraph) SetKind(kind ProcedureSpecificationKind) {
	g.Base.Kind = kind
	for _, v := range g.Constrained {
		v.Kind = kind
	}
}

// contracts returns the base followed by the variants in key order.
func (g *SpecGraph) contracts() []*ProcedureSpecification {
	out := []*ProcedureSpecification{&g.Base}
	for _, c := range g.Constraints() {
		out = append(out, g.Constrained[c])
	}
	return out
}

// TypeSpecification holds a type's invariants and trusted flag.
type TypeSpecification struct {
	Source     defid.DefID
	Invariants []defid.DefID
	Trusted    bool
}

type LoopSpecification struct{ Invariant defid.LocalID }

type Assertion struct{ Assertion defid.LocalID }

type Assumption struct{ Assumption defid.LocalID }

type GhostBegin struct{ Marker defid.LocalID }

type GhostEnd struct{ Marker defid.LocalID }

package specs

import (
	"iter"
	"maps"
	"slices"

	"specgraph/internal/defid"
)

// DefSpecificationMap maps entities to their resolved specifications.
type DefSpecificationMap struct {
	ProcSpecs   map[defid.DefID]*SpecGraph
	TypeSpecs   map[defid.DefID]*TypeSpecification
	LoopSpecs   map[defid.DefID]LoopSpecification
	Assertions  map[defid.DefID]Assertion
	Assumptions map[defid.DefID]Assumption
	GhostBegin  map[defid.DefID]GhostBegin
	GhostEnd    map[defid.DefID]GhostEnd
}

// NewDefSpecificationMap returns an empty map.
func NewDefSpecificationMap() *DefSpecificationMap {
	return &DefSpecificationMap{
		ProcSpecs:   make(map[defid.DefID]*SpecGraph),
		TypeSpecs:   make(map[defid.DefID]*TypeSpecification),
		LoopSpecs:   make(map[defid.DefID]LoopSpecification),
		Assertions:  make(map[defid.DefID]Assertion),
		Assumptions: make(map[defid.DefID]Assumption),
		GhostBegin:  make(map[defid.DefID]GhostBegin),
		GhostEnd:    make(map[defid.DefID]GhostEnd),
	}
}

func (m *DefSpecificationMap) GetProcSpec(id defid.DefID) (*SpecGraph, bool) {
	g, ok := m.ProcSpecs[id]
	return g, ok
}

func (m *DefSpecificationMap) GetTypeSpec(id defid.DefID) (*TypeSpecification, bool) {
	t, ok := m.TypeSpecs[id]
	return t, ok
}

func (m *DefSpecificationMap) GetLoopSpec(id defid.DefID) (LoopSpecification, bool) {
	l, ok := m.LoopSpecs[id]
	return l, ok
}

func (m *DefSpecificationMap) GetAssertion(id defid.DefID) (Assertion, bool) {
	a, ok := m.Assertions[id]
	return a, ok
}

func (m *DefSpecificationMap) GetAssumption(id defid.DefID) (Assumption, bool) {
	a, ok := m.Assumptions[id]
	return a, ok
}

func (m *DefSpecificationMap) GetGhostBegin(id defid.DefID) (GhostBegin, bool) {
	g, ok := m.GhostBegin[id]
	return g, ok
}

func (m *DefSpecificationMap) GetGhostEnd(id defid.DefID) (GhostEnd, bool) {
	g, ok := m.GhostEnd[id]
	return g, ok
}

// Len reports the total number of entries across all mappings.
func (m *DefSpecificationMap) Len() int {
	return len(m.ProcSpecs) + len(m.TypeSpecs) + len(m.LoopSpecs) + len(m.Assertions) +
		len(m.Assumptions) + len(m.GhostBegin) + len(m.GhostEnd)
}

// SortedProcIDs returns the procedure keys in deterministic order.
func (m *DefSpecificationMap) SortedProcIDs() []defid.DefID {
	return sortedIDs(maps.Keys(m.ProcSpecs))
}

// SortedTypeIDs returns the type keys in deterministic order.
func (m *DefSpecificationMap) SortedTypeIDs() []defid.DefID {
	return sortedIDs(maps.Keys(m.TypeSpecs))
}

func sortedIDs(keys iter.Seq[defid.DefID]) []defid.DefID {
	return slices.SortedFunc(keys, compareIDs)
}

func compareIDs(a, b defid.DefID) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

// ImportExternal merges decoded dependency specifications. Existing keys are
// overwritten: the last imported module wins.
func (m *DefSpecificationMap) ImportExternal(procs map[defid.DefID]*SpecGraph, types map[defid.DefID]*TypeSpecification) {
	maps.Copy(m.ProcSpecs, procs)
	maps.Copy(m.TypeSpecs, types)
}

// ExportSet returns the local entities whose bodies must be materialized
// before export, in three disjoint groups: specification bodies, pure
// functions and predicate bodies. Each group is sorted.
func (m *DefSpecificationMap) ExportSet() (specs, pureFns, predicates []defid.DefID) {
	seen := make(map[defid.DefID]struct{})
	add := func(dst *[]defid.DefID, id defid.DefID) {
		if !id.IsLocal() {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		*dst = append(*dst, id)
	}

	procIDs := m.SortedProcIDs()
	for _, id := range procIDs {
		for _, c := range m.ProcSpecs[id].contracts() {
			for _, pre := range c.Pres {
				add(&specs, pre)
			}
			for _, post := range c.Posts {
				add(&specs, post)
			}
			for _, p := range c.Pledges {
				if p.Lhs != nil {
					add(&specs, *p.Lhs)
				}
				add(&specs, p.Rhs)
			}
		}
	}
	for _, id := range m.SortedTypeIDs() {
		for _, inv := range m.TypeSpecs[id].Invariants {
			add(&specs, inv)
		}
	}
	for _, id := range procIDs {
		if m.ProcSpecs[id].Base.Kind.IsPure() {
			add(&pureFns, id)
		}
	}
	for _, id := range procIDs {
		if kind := m.ProcSpecs[id].Base.Kind; kind.IsPredicate() && kind.Predicate != nil {
			add(&predicates, *kind.Predicate)
		}
	}
	slices.SortFunc(specs, compareIDs)
	slices.SortFunc(pureFns, compareIDs)
	slices.SortFunc(predicates, compareIDs)
	return specs, pureFns, predicates
}

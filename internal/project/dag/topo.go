package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is the build plan of a Graph.
type Topo struct {
	// Order lists present modules with every dependency ahead of its
	// importers; among ready modules the lower id goes first.
	Order []ModuleID
	// Cycles are the modules lying on an import cycle.
	Cycles []ModuleID
	// Blocked are modules outside any cycle that import one, directly or not.
	Blocked []ModuleID
}

// Cyclic reports whether some modules could not be ordered.
func (t *Topo) Cyclic() bool { return len(t.Cycles) > 0 }

func moduleID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}

// Sort orders the present modules of g by counting, for every module, the
// dependencies not yet placed.
func Sort(g Graph) *Topo {
	n := len(g.Edges)
	waiting := make([]int, n)
	importers := make([][]ModuleID, n)
	var ready []ModuleID
	for i := range n {
		if !g.Present[i] {
			continue
		}
		id := moduleID(i)
		for _, dep := range g.Deps(id) {
			waiting[i]++
			importers[int(dep)] = append(importers[int(dep)], id)
		}
		if waiting[i] == 0 {
			ready = append(ready, id)
		}
	}

	topo := &Topo{Order: make([]ModuleID, 0, n)}
	placed := make([]bool, n)
	for len(ready) > 0 {
		slices.Sort(ready)
		id := ready[0]
		ready = ready[1:]
		topo.Order = append(topo.Order, id)
		placed[int(id)] = true
		for _, imp := range importers[int(id)] {
			waiting[int(imp)]--
			if waiting[int(imp)] == 0 {
				ready = append(ready, imp)
			}
		}
	}

	for i := range n {
		if !g.Present[i] || placed[i] {
			continue
		}
		id := moduleID(i)
		if g.reaches(id, id, placed) {
			topo.Cycles = append(topo.Cycles, id)
		} else {
			topo.Blocked = append(topo.Blocked, id)
		}
	}
	return topo
}

// reaches reports whether to is reachable from from through unplaced
// modules, following at least one import.
func (g Graph) reaches(from, to ModuleID, placed []bool) bool {
	seen := make([]bool, len(g.Edges))
	stack := slices.Clone(g.Deps(from))
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		if seen[int(cur)] || placed[int(cur)] {
			continue
		}
		seen[int(cur)] = true
		stack = append(stack, g.Deps(cur)...)
	}
	return false
}

// AllDeps returns every module id depends on, directly or through other
// dependencies, in build order. This is the set of artifacts id imports.
func (t *Topo) AllDeps(g Graph, id ModuleID) []ModuleID {
	reach := make([]bool, len(g.Edges))
	stack := slices.Clone(g.Deps(id))
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == id || reach[int(cur)] {
			continue
		}
		reach[int(cur)] = true
		stack = append(stack, g.Deps(cur)...)
	}
	var out []ModuleID
	for _, m := range t.Order {
		if reach[int(m)] {
			out = append(out, m)
		}
	}
	return out
}

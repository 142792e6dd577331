package dag

import (
	"fmt"
	"slices"
	"strings"

	"specgraph/internal/diag"
	"specgraph/internal/project"
	"specgraph/internal/source"
)

// Graph holds importer -> dependency edges.
type Graph struct {
	Edges   [][]ModuleID // Edges[from] = []to, sorted
	Present []bool       // модуль реально описан, а не только импортирован
}

type ModuleNode struct {
	Meta     project.ModuleMeta
	Reporter diag.Reporter
	Broken   bool
	FirstErr *diag.Diagnostic
}

type ModuleSlot struct {
	Meta     project.ModuleMeta
	Reporter diag.Reporter
	Present  bool
	Broken   bool
	InCycle  bool
	FirstErr *diag.Diagnostic
}

// BuildGraph places every node into its slot and links imports. Duplicate
// modules, self imports and imports of unknown modules are reported to the
// importing module's reporter.
func BuildGraph(idx ModuleIndex, nodes []ModuleNode) (Graph, []ModuleSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]ModuleSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Name = name
	}

	for _, node := range nodes {
		meta := node.Meta
		if meta.Name == "" {
			continue
		}
		id, ok := idx.NameToID[meta.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			if node.Reporter != nil {
				var notes []diag.Note
				if slot.Meta.Span != (source.Span{}) {
					notes = append(notes, diag.Note{
						Span: slot.Meta.Span,
						Msg:  fmt.Sprintf("previous declaration of %q", slot.Meta.Name),
					})
				}
				node.Reporter.Report(
					diag.ProjDuplicateModule,
					diag.SevError,
					meta.Span,
					fmt.Sprintf("duplicate module %q", meta.Name),
					notes,
				)
			}
			continue
		}
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
		slot.Broken = node.Broken
		slot.FirstErr = node.FirstErr
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Imports) == 0 {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			if dep.Name == "" {
				continue
			}
			toID := idx.NameToID[dep.Name]
			if ModuleID(from) == toID {
				report(slot.Reporter, diag.ProjSelfImport, dep.Span,
					fmt.Sprintf("module %q imports itself", slot.Meta.Name))
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}

			g.Edges[from] = append(g.Edges[from], toID)
			if !g.Present[int(toID)] {
				report(slot.Reporter, diag.ProjMissingModule, dep.Span,
					fmt.Sprintf("module %q imports missing module %q", slot.Meta.Name, dep.Name))
			}
		}
		slices.Sort(g.Edges[from])
	}

	return g, slots
}

func report(r diag.Reporter, code diag.Code, sp source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(code, diag.SevError, sp, msg, nil)
}

// Deps returns the present dependencies of id in index order. This is the
// order in which a module imports its dependencies' artifacts.
func (g Graph) Deps(id ModuleID) []ModuleID {
	var out []ModuleID
	for _, to := range g.Edges[int(id)] {
		if g.Present[int(to)] {
			out = append(out, to)
		}
	}
	return out
}

// ReportCycles reports every cycle member and marks it broken, so that
// ReportBrokenDeps reaches the modules blocked behind the cycle.
func ReportCycles(idx ModuleIndex, slots []ModuleSlot, topo *Topo) {
	if !topo.Cyclic() {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := &slots[int(id)]
		slot.Broken = true
		slot.InCycle = true
		if !slot.Present {
			continue
		}
		report(slot.Reporter, diag.ProjImportCycle, slot.Meta.Span,
			fmt.Sprintf("module %q participates in an import cycle: %s", slot.Meta.Name, summary))
	}
}

// ReportBrokenDeps tells every importer of a broken module about it, once
// per import site. Cycle members already carry the cycle diagnostic.
func ReportBrokenDeps(idx ModuleIndex, slots []ModuleSlot) {
	for i := range slots {
		slotFrom := &slots[i]
		if !slotFrom.Present || slotFrom.InCycle || slotFrom.Reporter == nil || len(slotFrom.Meta.Imports) == 0 {
			continue
		}
		emitted := make(map[string]struct{}, len(slotFrom.Meta.Imports))
		for _, imp := range slotFrom.Meta.Imports {
			toID, ok := idx.NameToID[imp.Name]
			if !ok {
				continue
			}
			depSlot := slots[int(toID)]
			if !depSlot.Broken {
				continue
			}
			key := imp.Name + "|" + imp.Span.String()
			if _, seen := emitted[key]; seen {
				continue
			}
			emitted[key] = struct{}{}

			var notes []diag.Note
			if depSlot.FirstErr != nil {
				notes = append(notes, diag.Note{
					Span: depSlot.FirstErr.Primary,
					Msg:  fmt.Sprintf("first error in dependency: %s", depSlot.FirstErr.Message),
				})
			}
			slotFrom.Reporter.Report(diag.ProjDependencyFailed, diag.SevError, imp.Span,
				fmt.Sprintf("dependency module %q has errors", imp.Name), notes)
		}
	}
}

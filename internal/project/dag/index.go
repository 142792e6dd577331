package dag

import (
	"sort"

	"specgraph/internal/project"
)

// ModuleID is the dense position of a module in a ModuleIndex. It has
// nothing to do with the stable defid.ModuleID of the module.
type ModuleID uint32

type ModuleIndex struct {
	NameToID map[string]ModuleID
	IDToName []string
}

// BuildIndex collects every module name mentioned as a module or an import,
// sorts them and hands out ids in that order.
func BuildIndex(metas []project.ModuleMeta) ModuleIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Name != "" {
			uniq[meta.Name] = struct{}{}
		}
		for _, dep := range meta.Imports {
			if dep.Name == "" {
				continue
			}
			uniq[dep.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]ModuleID, len(names))
	for i, name := range names {
		nameToID[name] = ModuleID(i)
	}

	return ModuleIndex{
		NameToID: nameToID,
		IDToName: names,
	}
}

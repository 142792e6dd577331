// Package defid models the identity of program entities across modules.
//
// An entity is either local (defined in the module being compiled) or foreign
// (defined in an already compiled dependency). Local handles are only
// meaningful inside one compilation; anything written to a spec artifact is
// rebased onto the exporting module's stable identity first.
package defid

import (
	"fmt"
	"strconv"
	"strings"
)

// ModuleID is the stable identity of a module.
type ModuleID uint64

// LocalModule marks entities defined in the module being compiled.
const LocalModule ModuleID = 0

func (m ModuleID) String() string {
	return strconv.FormatUint(uint64(m), 16)
}

// DefIndex identifies an entity inside its defining module.
type DefIndex uint32

// LocalID is the provisional handle of an entity of the current module.
type LocalID DefIndex

// NoLocalID marks the absence of a local entity.
const NoLocalID LocalID = 0

// IsValid reports whether the handle refers to an entity.
func (id LocalID) IsValid() bool { return id != NoLocalID }

// ToDefID lifts the handle into a DefID.
func (id LocalID) ToDefID() DefID { return Local(DefIndex(id)) }

func (id LocalID) String() string { return "local#" + strconv.FormatUint(uint64(id), 10) }

// DefID is either Local(index) or Foreign(module, index).
type DefID struct {
	Module ModuleID
	Index  DefIndex
}

// Local builds the identity of a current-module entity.
func Local(idx DefIndex) DefID {
	return DefID{Module: LocalModule, Index: idx}
}

// Foreign builds the identity of an entity defined in module m.
func Foreign(m ModuleID, idx DefIndex) DefID {
	if m == LocalModule {
		panic(fmt.Sprintf("defid.Foreign: module id %v is reserved for local entities", m))
	}
	return DefID{Module: m, Index: idx}
}

// IsLocal reports whether the entity belongs to the current module.
func (d DefID) IsLocal() bool { return d.Module == LocalModule }

// AsLocal returns the local handle when the entity is local.
func (d DefID) AsLocal() (LocalID, bool) {
	if !d.IsLocal() {
		return NoLocalID, false
	}
	return LocalID(d.Index), true
}

// ExpectLocal returns the local handle and panics for foreign entities.
func (d DefID) ExpectLocal() LocalID {
	id, ok := d.AsLocal()
	if !ok {
		panic(fmt.Sprintf("defid: expected local entity, got %s", d))
	}
	return id
}

// Rebase converts the identity into the form seen by other modules: local
// entities become foreign entities of module self.
func (d DefID) Rebase(self ModuleID) DefID {
	if d.IsLocal() {
		return Foreign(self, d.Index)
	}
	return d
}

// Localize is the inverse of Rebase for the importing module self.
func (d DefID) Localize(self ModuleID) DefID {
	if d.Module == self {
		return Local(d.Index)
	}
	return d
}

// Less orders ids by module, then index.
func (d DefID) Less(other DefID) bool {
	if d.Module != other.Module {
		return d.Module < other.Module
	}
	return d.Index < other.Index
}

func (d DefID) String() string {
	if d.IsLocal() {
		return LocalID(d.Index).String()
	}
	return d.Module.String() + "#" + strconv.FormatUint(uint64(d.Index), 10)
}

// ParseDefID parses the foreign reference form "<hex module>::<index>".
func ParseDefID(text string) (DefID, error) {
	modText, idxText, ok := strings.Cut(text, "::")
	if !ok {
		return DefID{}, fmt.Errorf("defid: %q is not of the form module::index", text)
	}
	mod, err := strconv.ParseUint(modText, 16, 64)
	if err != nil {
		return DefID{}, fmt.Errorf("defid: bad module in %q: %w", text, err)
	}
	idx, err := strconv.ParseUint(idxText, 10, 32)
	if err != nil {
		return DefID{}, fmt.Errorf("defid: bad index in %q: %w", text, err)
	}
	if ModuleID(mod) == LocalModule {
		return Local(DefIndex(idx)), nil
	}
	return Foreign(ModuleID(mod), DefIndex(idx)), nil
}

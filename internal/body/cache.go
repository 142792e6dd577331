// Package body caches the executable bodies that exported specifications
// depend on.
//
// Bodies are loaded lazily from a Provider (the lowered module tree). The
// cache is owned by one module session; bodies imported from dependency
// artifacts are spliced in as external entries and are never reloaded.
package body

import (
	"fmt"
	"slices"

	"specgraph/internal/defid"
	"specgraph/internal/hir"
)

// Kind tells why a body was materialized.
type Kind uint8

const (
	KindSpec Kind = iota + 1
	KindPureFn
	KindPredicate
)

func (k Kind) String() string {
	switch k {
	case KindSpec:
		return "spec"
	case KindPureFn:
		return "pure"
	case KindPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// Provider hands out lowered bodies of local entities.
type Provider interface {
	HasBody(id defid.LocalID) bool
	Body(id defid.LocalID) (*hir.Body, bool)
}

// Entry is one materialized body.
type Entry struct {
	Def      defid.DefID
	Kind     Kind
	Body     *hir.Body
	External bool
}

// Cache is the module-wide body cache.
type Cache struct {
	provider Provider
	entries  map[defid.DefID]*Entry
	order    []defid.DefID
}

// NewCache creates an empty cache backed by p.
func NewCache(p Provider) *Cache {
	return &Cache{
		provider: p,
		entries:  make(map[defid.DefID]*Entry),
	}
}

// HasBody reports whether the provider defines a body for id.
func (c *Cache) HasBody(id defid.LocalID) bool {
	return c.provider != nil && c.provider.HasBody(id)
}

// LoadSpecBody materializes the body of a specification function.
func (c *Cache) LoadSpecBody(id defid.LocalID) *Entry { return c.load(id, KindSpec) }

// LoadPureFnBody materializes the body of a pure function.
func (c *Cache) LoadPureFnBody(id defid.LocalID) *Entry { return c.load(id, KindPureFn) }

// LoadPredicateBody materializes the body of a predicate definition.
func (c *Cache) LoadPredicateBody(id defid.LocalID) *Entry { return c.load(id, KindPredicate) }

// load is idempotent: the first kind an entity was loaded with sticks.
func (c *Cache) load(id defid.LocalID, kind Kind) *Entry {
	key := id.ToDefID()
	if e, ok := c.entries[key]; ok {
		return e
	}
	var b *hir.Body
	ok := false
	if c.provider != nil {
		b, ok = c.provider.Body(id)
	}
	if !ok {
		// спецификации и предикаты всегда имеют тело; иначе апстрим сломан
		panic(fmt.Sprintf("body: no %s body for %s", kind, id))
	}
	e := &Entry{Def: key, Kind: kind, Body: b.Clone()}
	c.entries[key] = e
	c.order = append(c.order, key)
	return e
}

// Get returns the cached entry for id.
func (c *Cache) Get(id defid.DefID) (*Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Len reports the number of cached bodies.
func (c *Cache) Len() int { return len(c.entries) }

// LoadOrder returns the ids of local bodies in materialization order.
func (c *Cache) LoadOrder() []defid.DefID {
	return slices.Clone(c.order)
}

// Local returns the locally materialized entries sorted by id.
func (c *Cache) Local() []Entry {
	return c.collect(false)
}

// External returns the imported entries sorted by id.
func (c *Cache) External() []Entry {
	return c.collect(true)
}

func (c *Cache) collect(external bool) []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.External == external {
			out = append(out, *e)
		}
	}
	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.Def.Less(b.Def):
			return -1
		case b.Def.Less(a.Def):
			return 1
		}
		return 0
	})
	return out
}

// ImportExternal splices bodies decoded from a dependency artifact into the
// cache. Local entries are never replaced; a later import of the same foreign
// id replaces the earlier one. It returns the number of entries stored.
func (c *Cache) ImportExternal(entries []Entry) int {
	n := 0
	for i := range entries {
		e := entries[i]
		if e.Def.IsLocal() {
			continue
		}
		if prev, ok := c.entries[e.Def]; ok && !prev.External {
			continue
		}
		e.External = true
		c.entries[e.Def] = &e
		n++
	}
	return n
}

package diag

import (
	"slices"
	"sort"

	"fortio.org/safecast"

	"specgraph/internal/source"
)

type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag creates a bag that keeps at most max diagnostics.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		limit = ^uint16(0)
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(int(limit), 64)),
		max:   limit,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given code.
func (b *Bag) Count(code Code) int {
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag, расширяя лимит при необходимости.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	total := len(b.items) + len(other.items)
	if total > int(b.max) {
		if limit, err := safecast.Conv[uint16](total); err == nil {
			b.max = limit
		} else {
			b.max = ^uint16(0)
		}
	}
	for _, d := range other.items {
		b.Add(d)
	}
}

// Sort orders diagnostics by file, start, end, severity (desc) and code so the
// CLI output is deterministic.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

type foldKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

// Fold collapses repeated diagnostics (same code, severity, primary span and
// message) into the first occurrence. Notes carried only by a repeat are
// appended to the kept diagnostic, so a conflict reported once per stand-in
// still lists every location. Returns the number of dropped repeats.
func (b *Bag) Fold() int {
	first := make(map[foldKey]int, len(b.items))
	out := b.items[:0]
	dropped := 0
	for _, d := range b.items {
		key := foldKey{code: d.Code, sev: d.Severity, span: d.Primary, msg: d.Message}
		idx, ok := first[key]
		if !ok {
			first[key] = len(out)
			out = append(out, d)
			continue
		}
		dropped++
		for _, n := range d.Notes {
			if !slices.Contains(out[idx].Notes, n) {
				out[idx].Notes = append(slices.Clip(out[idx].Notes), n)
			}
		}
	}
	clear(b.items[len(out):])
	b.items = out
	return dropped
}

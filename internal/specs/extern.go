package specs

import (
	"fmt"

	"specgraph/internal/defid"
	"specgraph/internal/diag"
	"specgraph/internal/hir"
	"specgraph/internal/source"
)

// ExternKind is the shape of an extern specification.
type ExternKind uint8

const (
	ExternFunction ExternKind = iota
	ExternMethod
	ExternTrait
	ExternImpl
)

func (k ExternKind) String() string {
	switch k {
	case ExternMethod:
		return "method"
	case ExternTrait:
		return "trait"
	case ExternImpl:
		return "impl"
	default:
		return "function"
	}
}

// ParseExternKind reads the extern_spec tag value; empty means function.
func ParseExternKind(s string) (ExternKind, bool) {
	switch s {
	case "", "function", "fn":
		return ExternFunction, true
	case "method":
		return ExternMethod, true
	case "trait":
		return ExternTrait, true
	case "impl":
		return ExternImpl, true
	}
	return 0, false
}

// ExternSpecDecl is one stand-in declaration.
type ExternSpecDecl struct {
	StandIn defid.LocalID
	Name    string
	Kind    ExternKind
	Target  defid.DefID
	Span    source.Span

	problem string
}

// Valid reports whether the declaration passed the shape checks.
func (d *ExternSpecDecl) Valid() bool { return d.problem == "" }

// ExternResolver maps stand-ins to the entities they describe.
type ExternResolver struct {
	decls    []*ExternSpecDecl
	byTarget map[defid.DefID]*ExternSpecDecl
	dups     []*ExternSpecDecl
}

func NewExternResolver() *ExternResolver {
	return &ExternResolver{byTarget: make(map[defid.DefID]*ExternSpecDecl)}
}

// Add records a stand-in. Shape problems are kept and surface in CheckErrors.
func (r *ExternResolver) Add(n *hir.Node, rawKind string) {
	d := &ExternSpecDecl{StandIn: n.Def, Name: n.Name, Span: n.Span}
	kind, ok := ParseExternKind(rawKind)
	d.Kind = kind
	switch {
	case !ok:
		d.problem = fmt.Sprintf("unknown extern specification kind %q", rawKind)
	case len(n.Calls) != 1:
		d.problem = fmt.Sprintf("extern specification must contain exactly one call, found %d", len(n.Calls))
	case n.Calls[0] == n.Def.ToDefID():
		d.problem = "extern specification cannot target itself"
	case kind == ExternTrait && n.Kind != hir.NodeTraitItem:
		d.problem = "trait extern specification must be a trait item"
	case (kind == ExternMethod || kind == ExternImpl) && !insideImpl(n):
		d.problem = fmt.Sprintf("%s extern specification must be inside an impl block", kind)
	}
	if d.problem == "" {
		d.Target = n.Calls[0]
		if _, dup := r.byTarget[d.Target]; dup {
			r.dups = append(r.dups, d)
			return
		}
		r.byTarget[d.Target] = d
	}
	r.decls = append(r.decls, d)
}

func insideImpl(n *hir.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == hir.NodeImpl {
			return true
		}
	}
	return false
}

// Len reports the number of distinct stand-ins kept.
func (r *ExternResolver) Len() int { return len(r.decls) }

// Decls returns the kept declarations in declaration order.
func (r *ExternResolver) Decls() []*ExternSpecDecl { return r.decls }

// CheckErrors reports invalid and duplicate declarations.
func (r *ExternResolver) CheckErrors(rep diag.Reporter, mod *hir.Module) {
	for _, d := range r.decls {
		if d.Valid() {
			continue
		}
		diag.ReportError(rep, diag.SpecExternInvalid, d.Span, d.problem).Emit()
	}
	for _, d := range r.dups {
		first := r.byTarget[d.Target]
		diag.ReportError(rep, diag.SpecExternDuplicate, d.Span,
			fmt.Sprintf("duplicate extern specification for %s", mod.NameOf(d.Target))).
			WithNote(first.Span, "first declared here").
			Emit()
	}
}

// Resolve moves each valid stand-in's procedure spec onto its target.
// When the target already has a specification the stand-in's one is
// discarded and a conflict is reported. Stand-ins never keep a spec.
func (r *ExternResolver) Resolve(rep diag.Reporter, mod *hir.Module, m *DefSpecificationMap) {
	for _, d := range r.dups {
		delete(m.ProcSpecs, d.StandIn.ToDefID())
	}
	for _, d := range r.decls {
		key := d.StandIn.ToDefID()
		g, ok := m.ProcSpecs[key]
		if !d.Valid() {
			delete(m.ProcSpecs, key)
			continue
		}
		if !ok {
			continue
		}
		delete(m.ProcSpecs, key)
		if _, taken := m.ProcSpecs[d.Target]; taken {
			b := diag.ReportError(rep, diag.SpecExternConflict, d.Span,
				fmt.Sprintf("external specification provided for %s, which already has a specification", mod.NameOf(d.Target)))
			if local, isLocal := d.Target.AsLocal(); isLocal {
				b.WithNote(mod.SpanOf(local), "existing specification here")
			}
			b.Emit()
			continue
		}
		m.ProcSpecs[d.Target] = g
	}
}

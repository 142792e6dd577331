package specs

import (
	"context"
	"fmt"

	"specgraph/internal/defid"
	"specgraph/internal/hir"
	"specgraph/internal/trace"
)

// Metadata tags read by the scanner.
const (
	TagSpecID            = "spec_id"
	TagPreRef            = "pre_spec_id_ref"
	TagPostRef           = "post_spec_id_ref"
	TagPledgeRef         = "pledge_spec_id_ref"
	TagAssertPledgeLhs   = "assert_pledge_spec_id_ref_lhs"
	TagAssertPledgeRhs   = "assert_pledge_spec_id_ref_rhs"
	TagPredRef           = "pred_spec_id_ref"
	TagPure              = "pure"
	TagTrusted           = "trusted"
	TagAbstractPredicate = "abstract_predicate"
	TagLoopInvariant     = "loop_body_invariant_spec"
	TagTypeInvariant     = "type_invariant_spec"
	TagTrustedType       = "trusted_type"
	TagAssertion         = "prusti_assertion"
	TagAssumption        = "prusti_assumption"
	TagGhostBegin        = "ghost_begin"
	TagGhostEnd          = "ghost_end"
	TagGhostConstraint   = "ghost_constraint"
	TagExternSpec        = "extern_spec"
	TagClosure           = "closure"
)

// Collected is everything one scan of a module produced.
type Collected struct {
	// SpecFunctions maps specification ids to their body entities.
	SpecFunctions map[defid.SpecificationID]defid.LocalID
	// Constraints maps constrained specification bodies to their constraint.
	Constraints map[defid.LocalID]string

	ProcedureSpecs map[defid.LocalID]*ProcedureSpecRefs
	TypeSpecs      map[defid.LocalID]*TypeSpecRefs
	LoopSpecs      []defid.LocalID
	Assertions     []defid.LocalID
	Assumptions    []defid.LocalID
	GhostBegin     []defid.LocalID
	GhostEnd       []defid.LocalID

	Extern *ExternResolver
}

func newCollected() *Collected {
	return &Collected{
		SpecFunctions:  make(map[defid.SpecificationID]defid.LocalID),
		Constraints:    make(map[defid.LocalID]string),
		ProcedureSpecs: make(map[defid.LocalID]*ProcedureSpecRefs),
		TypeSpecs:      make(map[defid.LocalID]*TypeSpecRefs),
		Extern:         NewExternResolver(),
	}
}

type scanner struct {
	ctx context.Context
	mod *hir.Module
	out *Collected
}

// Scan walks the module tree once and returns the raw records.
//
// Malformed specification ids, a half-present assert-pledge pair and type
// specifications outside an impl of a local type mean the lowering stage is
// broken; Scan panics on them.
func Scan(ctx context.Context, mod *hir.Module) *Collected {
	ctx, span := trace.Start(ctx, trace.ScopePass, "specs.scan")
	s := &scanner{ctx: ctx, mod: mod, out: newCollected()}
	hir.Walk(mod.Root, &hir.Dispatch{
		Fn:        s.visitFn,
		Closure:   s.visitFn,
		TraitItem: s.visitTraitItem,
		Local:     s.visitLocal,
	})
	span.WithExtra("spec_fns", fmt.Sprint(len(s.out.SpecFunctions))).
		WithExtra("procedures", fmt.Sprint(len(s.out.ProcedureSpecs))).
		End("")
	return s.out
}

func (s *scanner) visitTraitItem(n *hir.Node) {
	if n.Body != nil {
		// trait items with a default body are full functions
		s.visitFn(n)
		return
	}
	s.recordProcedure(n.Def, n, n.Attrs)
}

func (s *scanner) visitFn(n *hir.Node) {
	if raw, ok := n.Attrs.Get(TagSpecID); ok {
		s.recordSpecFunction(n, parseSpecID(raw, n))
		return
	}
	// spec functions never carry specs of their own
	if kind, ok := n.Attrs.Get(TagExternSpec); ok {
		s.out.Extern.Add(n, kind)
	}
	s.recordProcedure(n.Def, n, n.Attrs)
}

func (s *scanner) visitLocal(n *hir.Node) {
	if !n.Attrs.Has(TagClosure) {
		return
	}
	if n.Init == nil || !n.Init.Def.IsValid() {
		panic(fmt.Sprintf("specs: closure annotation on local %q without a closure initializer", n.Name))
	}
	s.recordProcedure(n.Init.Def, n, n.Attrs)
}

func (s *scanner) recordSpecFunction(n *hir.Node, id defid.SpecificationID) {
	if prev, dup := s.out.SpecFunctions[id]; dup && prev != n.Def {
		panic(fmt.Sprintf("specs: specification id %s attached to both %s and %s", id, prev, n.Def))
	}
	s.out.SpecFunctions[id] = n.Def
	if c, ok := n.Attrs.Get(TagGhostConstraint); ok && c != "" {
		s.out.Constraints[n.Def] = c
	}
	if n.Attrs.Has(TagLoopInvariant) {
		s.out.LoopSpecs = append(s.out.LoopSpecs, n.Def)
	}
	if n.Attrs.Has(TagTypeInvariant) {
		ts := s.typeSpecOf(n)
		ts.Invariants = append(ts.Invariants, n.Def)
	}
	if n.Attrs.Has(TagTrustedType) {
		s.typeSpecOf(n).Trusted = true
	}
	if n.Attrs.Has(TagAssertion) {
		s.out.Assertions = append(s.out.Assertions, n.Def)
	}
	if n.Attrs.Has(TagAssumption) {
		s.out.Assumptions = append(s.out.Assumptions, n.Def)
	}
	if n.Attrs.Has(TagGhostBegin) {
		s.out.GhostBegin = append(s.out.GhostBegin, n.Def)
	}
	if n.Attrs.Has(TagGhostEnd) {
		s.out.GhostEnd = append(s.out.GhostEnd, n.Def)
	}
}

// typeSpecOf returns the record of the type whose impl encloses n.
func (s *scanner) typeSpecOf(n *hir.Node) *TypeSpecRefs {
	impl := s.mod.ParentImpl(n.Def)
	if impl == nil || !impl.HasSelfType {
		panic(fmt.Sprintf("specs: type specification %q (%s) is not inside an impl block", n.Name, n.Def))
	}
	typeID, ok := impl.SelfType.AsLocal()
	if !ok {
		panic(fmt.Sprintf("specs: type specification %q targets foreign type %s", n.Name, impl.SelfType))
	}
	ts, ok := s.out.TypeSpecs[typeID]
	if !ok {
		ts = &TypeSpecRefs{}
		s.out.TypeSpecs[typeID] = ts
	}
	return ts
}

// recordProcedure stores the procedure record of id read from attrs; n is
// only used for error messages.
func (s *scanner) recordProcedure(id defid.LocalID, n *hir.Node, attrs hir.Attrs) {
	refs := procedureSpecRefs(n, attrs)
	if refs == nil {
		return
	}
	s.out.ProcedureSpecs[id] = refs
	trace.Point(s.ctx, trace.ScopeNode, "specs.procedure", fmt.Sprintf("%s %d refs", id, len(refs.SpecIDRefs)))
}

func procedureSpecRefs(n *hir.Node, attrs hir.Attrs) *ProcedureSpecRefs {
	var refs []SpecIDRef
	for _, raw := range attrs.All(TagPreRef) {
		refs = append(refs, PreconditionRef(parseSpecID(raw, n)))
	}
	for _, raw := range attrs.All(TagPostRef) {
		refs = append(refs, PostconditionRef(parseSpecID(raw, n)))
	}
	for _, raw := range attrs.All(TagPledgeRef) {
		refs = append(refs, PledgeRef(nil, parseSpecID(raw, n)))
	}
	lhs, hasLhs := attrs.Get(TagAssertPledgeLhs)
	rhs, hasRhs := attrs.Get(TagAssertPledgeRhs)
	switch {
	case hasLhs && hasRhs:
		l := parseSpecID(lhs, n)
		refs = append(refs, PledgeRef(&l, parseSpecID(rhs, n)))
	case hasLhs != hasRhs:
		panic(fmt.Sprintf("specs: %q carries only one side of an assert-pledge", n.Name))
	}
	if raw, ok := attrs.Get(TagPredRef); ok {
		refs = append(refs, PredicateRef(parseSpecID(raw, n)))
	}

	pure := attrs.Has(TagPure)
	trusted := attrs.Has(TagTrusted)
	abstract := attrs.Has(TagAbstractPredicate)
	if !pure && !trusted && !abstract && len(refs) == 0 {
		return nil
	}
	return &ProcedureSpecRefs{
		SpecIDRefs:        refs,
		Pure:              pure,
		AbstractPredicate: abstract,
		Trusted:           trusted,
	}
}

func parseSpecID(raw string, n *hir.Node) defid.SpecificationID {
	id, err := defid.ParseSpecificationID(raw)
	if err != nil {
		panic(fmt.Sprintf("cannot parse the spec_id attached to %q (%s): %v", n.Name, n.Def, err))
	}
	return id
}

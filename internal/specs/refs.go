package specs

import (
	"fmt"

	"specgraph/internal/defid"
)

// RefKind tags a SpecIDRef.
type RefKind uint8

const (
	RefPrecondition RefKind = iota + 1
	RefPostcondition
	RefPledge
	RefPredicate
)

func (k RefKind) String() string {
	switch k {
	case RefPrecondition:
		return "pre"
	case RefPostcondition:
		return "post"
	case RefPledge:
		return "pledge"
	case RefPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// SpecIDRef is a not yet resolved reference from an entity to one of its
// contract clauses. For pledges ID is the right-hand side and Lhs the
// optional left-hand side.
type SpecIDRef struct {
	Kind RefKind
	ID   defid.SpecificationID
	Lhs  *defid.SpecificationID
}

func PreconditionRef(id defid.SpecificationID) SpecIDRef {
	return SpecIDRef{Kind: RefPrecondition, ID: id}
}

func PostconditionRef(id defid.SpecificationID) SpecIDRef {
	return SpecIDRef{Kind: RefPostcondition, ID: id}
}

func PledgeRef(lhs *defid.SpecificationID, rhs defid.SpecificationID) SpecIDRef {
	return SpecIDRef{Kind: RefPledge, ID: rhs, Lhs: lhs}
}

func PredicateRef(id defid.SpecificationID) SpecIDRef {
	return SpecIDRef{Kind: RefPredicate, ID: id}
}

func (r SpecIDRef) String() string {
	if r.Kind == RefPledge && r.Lhs != nil {
		return fmt.Sprintf("pledge(%s => %s)", r.Lhs, r.ID)
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.ID)
}

// ProcedureSpecRefs is the scanner record of one procedure.
type ProcedureSpecRefs struct {
	SpecIDRefs        []SpecIDRef
	Pure              bool
	AbstractPredicate bool
	Trusted           bool
}

// TypeSpecRefs is the scanner record of one type.
type TypeSpecRefs struct {
	Invariants []defid.LocalID
	Trusted    bool
}

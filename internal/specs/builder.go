package specs

import (
	"context"
	"fmt"
	"slices"

	"specgraph/internal/defid"
	"specgraph/internal/diag"
	"specgraph/internal/hir"
	"specgraph/internal/trace"
)

// Options are the feature switches the builder honours.
type Options struct {
	EnableGhostConstraints bool
	EnableTypeInvariants   bool
	// KeepGatedTypeSpecs keeps type specs whose invariants were reported as
	// unsupported instead of dropping them.
	KeepGatedTypeSpecs bool
}

// Env is the input of one build.
type Env struct {
	Module   *hir.Module
	Reporter diag.Reporter
	Options  Options
}

const (
	msgGhostDisabled   = "ghost constraints need to be enabled with the feature flag `enable_ghost_constraints`"
	msgGhostUntrusted  = "ghost constraints can only be used on trusted functions"
	msgInvariantsGated = "type invariants need to be enabled with the feature flag `enable_type_invariants`"
)

type builder struct {
	ctx  context.Context
	env  *Env
	in   *Collected
	out  *DefSpecificationMap
	mod  *hir.Module
	opts Options
}

// Build turns the scanner records into the typed specification map.
// Procedures and types are visited in handle order, so diagnostics are
// stable across runs.
func Build(ctx context.Context, env *Env, in *Collected) *DefSpecificationMap {
	ctx, span := trace.Start(ctx, trace.ScopePass, "specs.build")
	b := &builder{
		ctx:  ctx,
		env:  env,
		in:   in,
		out:  NewDefSpecificationMap(),
		mod:  env.Module,
		opts: env.Options,
	}
	b.determineProcedureSpecs()
	in.Extern.CheckErrors(env.Reporter, env.Module)
	in.Extern.Resolve(env.Reporter, env.Module, b.out)
	b.determineLoopSpecs()
	b.determineTypeSpecs()
	b.determineMarkers()
	span.WithExtra("procedures", fmt.Sprint(len(b.out.ProcSpecs))).
		WithExtra("types", fmt.Sprint(len(b.out.TypeSpecs))).
		End("")
	return b.out
}

func (b *builder) specFunction(id defid.SpecificationID, owner defid.LocalID) defid.LocalID {
	local, ok := b.in.SpecFunctions[id]
	if !ok {
		panic(fmt.Sprintf("specs: %s referenced by %q has no specification function", id, b.mod.NameOf(owner.ToDefID())))
	}
	return local
}

func (b *builder) determineProcedureSpecs() {
	for _, local := range sortedLocals(b.in.ProcedureSpecs) {
		refs := b.in.ProcedureSpecs[local]
		def := local.ToDefID()
		g := NewSpecGraph(EmptyProcedureSpecification(def))

		kind := Impure()
		switch {
		case refs.AbstractPredicate:
			kind = Predicate(nil)
		case refs.Pure:
			kind = Pure()
		}

		for _, ref := range refs.SpecIDRefs {
			switch ref.Kind {
			case RefPrecondition:
				fn := b.specFunction(ref.ID, local)
				g.AddPrecondition(fn.ToDefID(), b.in.Constraints[fn])
			case RefPostcondition:
				fn := b.specFunction(ref.ID, local)
				g.AddPostcondition(fn.ToDefID(), b.in.Constraints[fn])
			case RefPledge:
				p := Pledge{Rhs: b.specFunction(ref.ID, local).ToDefID()}
				if ref.Lhs != nil {
					lhs := b.specFunction(*ref.Lhs, local).ToDefID()
					p.Lhs = &lhs
				}
				g.AddPledge(p)
			case RefPredicate:
				body := b.specFunction(ref.ID, local).ToDefID()
				kind = Predicate(&body)
			}
		}
		g.SetTrusted(refs.Trusted)
		g.SetKind(kind)

		if g.HasConstraints() {
			switch {
			case !b.opts.EnableGhostConstraints:
				b.unsupported(local, msgGhostDisabled)
				continue
			case !refs.Trusted:
				b.unsupported(local, msgGhostUntrusted)
				continue
			}
		}
		b.out.ProcSpecs[def] = g
		trace.Point(b.ctx, trace.ScopeNode, "specs.proc", fmt.Sprintf("%s %s", def, kind))
	}
}

func (b *builder) determineLoopSpecs() {
	for _, l := range b.in.LoopSpecs {
		b.out.LoopSpecs[l.ToDefID()] = LoopSpecification{Invariant: l}
	}
}

func (b *builder) determineTypeSpecs() {
	for _, local := range sortedLocals(b.in.TypeSpecs) {
		refs := b.in.TypeSpecs[local]
		def := local.ToDefID()
		if len(refs.Invariants) > 0 && !b.opts.EnableTypeInvariants {
			b.unsupported(local, msgInvariantsGated)
			if !b.opts.KeepGatedTypeSpecs {
				continue
			}
		}
		ts := &TypeSpecification{Source: def, Trusted: refs.Trusted}
		for _, inv := range refs.Invariants {
			ts.Invariants = append(ts.Invariants, inv.ToDefID())
		}
		b.out.TypeSpecs[def] = ts
	}
}

func (b *builder) determineMarkers() {
	for _, id := range b.in.Assertions {
		b.out.Assertions[id.ToDefID()] = Assertion{Assertion: id}
	}
	for _, id := range b.in.Assumptions {
		b.out.Assumptions[id.ToDefID()] = Assumption{Assumption: id}
	}
	for _, id := range b.in.GhostBegin {
		b.out.GhostBegin[id.ToDefID()] = GhostBegin{Marker: id}
	}
	for _, id := range b.in.GhostEnd {
		b.out.GhostEnd[id.ToDefID()] = GhostEnd{Marker: id}
	}
}

func (b *builder) unsupported(local defid.LocalID, msg string) {
	diag.ReportError(b.env.Reporter, diag.SpecUnsupported, b.mod.SpanOf(local), msg).Emit()
}

func sortedLocals[V any](m map[defid.LocalID]V) []defid.LocalID {
	out := make([]defid.LocalID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

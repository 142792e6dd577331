package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"specgraph/internal/body"
	"specgraph/internal/diag"
	"specgraph/internal/hir"
	"specgraph/internal/project"
	"specgraph/internal/source"
	"specgraph/internal/specfile"
	"specgraph/internal/specs"
	"specgraph/internal/trace"
)

// Result is the outcome of one module pass.
type Result struct {
	Meta  project.ModuleMeta
	Map   *specs.DefSpecificationMap
	Cache *body.Cache
	Bag   *diag.Bag
	// ArtifactPath is empty when export is disabled or failed.
	ArtifactPath string
	// Imported counts the dependency artifacts merged into Map.
	Imported int
}

// CollectModule runs scan, build and materialize over mod, exports the
// module's artifact when an output directory is configured and finally
// imports the dependency artifacts.
func CollectModule(ctx context.Context, mod *hir.Module, meta project.ModuleMeta, opts Options) *Result {
	ctx, span := trace.Start(ctx, trace.ScopeModule, "module "+mod.Name)
	s := NewSession(mod, meta, opts)
	res := s.BuildDefSpecs(ctx, opts.Deps)
	s.Bag.Fold()
	if opts.Timings {
		appendTimingDiagnostic(s.Bag, timingPayload{Kind: "module", Path: meta.Path, Report: s.Timer.Report()})
	}
	span.WithExtra("procedures", fmt.Sprint(len(res.Map.ProcSpecs))).
		WithExtra("imported", fmt.Sprint(res.Imported)).
		End("")
	return res
}

// BuildDefSpecs is the whole pipeline of one session.
func (s *Session) BuildDefSpecs(ctx context.Context, deps []Dependency) *Result {
	done := s.Timer.Track("scan")
	collected := specs.Scan(ctx, s.Module)
	done(fmt.Sprintf("%d spec functions", len(collected.SpecFunctions)))

	done = s.Timer.Track("build")
	env := &specs.Env{Module: s.Module, Reporter: s.Reporter, Options: s.specOptions()}
	defSpecs := specs.Build(ctx, env, collected)
	done(fmt.Sprintf("%d procedures", len(defSpecs.ProcSpecs)))

	done = s.Timer.Track("materialize")
	specs.Materialize(ctx, defSpecs, s.Cache)
	done(fmt.Sprintf("%d bodies", s.Cache.Len()))

	res := &Result{Meta: s.Meta, Map: defSpecs, Cache: s.Cache, Bag: s.Bag}

	done = s.Timer.Track("export")
	res.ArtifactPath = s.ExportSpecs(ctx, defSpecs)
	done(res.ArtifactPath)

	done = s.Timer.Track("import")
	res.Imported = s.ImportFromDependencies(ctx, defSpecs, deps)
	done(fmt.Sprintf("%d artifacts", res.Imported))
	return res
}

// ArtifactPath is where this session's module exports to, or "" when export
// is disabled.
func (s *Session) ArtifactPath() string {
	if s.Config.Build.OutputDir == "" {
		return ""
	}
	return specfile.Path(s.Config.Build.OutputDir, s.Meta.Name, s.Meta.StableID)
}

// ExportSpecs writes the module artifact and returns its path. Failures are
// reported as diagnostics; the pass goes on without an artifact.
func (s *Session) ExportSpecs(ctx context.Context, m *specs.DefSpecificationMap) string {
	path := s.ArtifactPath()
	if path == "" {
		return ""
	}
	_, span := trace.Start(ctx, trace.ScopePass, "specfile.export")
	defer span.End(path)
	emit(s.Progress, Event{File: s.Meta.Path, Stage: StageExport, Status: StatusWorking})
	if err := specfile.Export(path, s.Meta.StableID, m, s.Cache); err != nil {
		diag.ReportError(s.Reporter, diag.SpecInternal, source.Span{},
			fmt.Sprintf("error exporting specs to file %q: %v", path, err)).Emit()
		return ""
	}
	return path
}

// ImportFromDependencies merges dependency artifacts in the given order.
// The module's own artifact and missing files are skipped; any other
// failure is reported and the artifact ignored. It returns the number of
// artifacts merged.
func (s *Session) ImportFromDependencies(ctx context.Context, m *specs.DefSpecificationMap, deps []Dependency) int {
	ctx, span := trace.Start(ctx, trace.ScopePass, "specfile.import")
	own := s.ArtifactPath()
	n := 0
	for _, dep := range deps {
		if dep.Name == s.Meta.Name || (own != "" && dep.Path == own) {
			continue
		}
		art, err := specfile.Import(dep.Path, s.Meta.StableID)
		switch {
		case errors.Is(err, os.ErrNotExist):
			trace.Point(ctx, trace.ScopeModule, "specfile.missing", dep.Path)
			continue
		case err != nil:
			diag.ReportError(s.Reporter, diag.SpecInternal, source.Span{},
				fmt.Sprintf("error importing specs from file %q: %v", dep.Path, err)).Emit()
			continue
		}
		m.ImportExternal(art.ProcSpecs, art.TypeSpecs)
		bodies := s.Cache.ImportExternal(art.Bodies)
		trace.Point(ctx, trace.ScopeModule, "specfile.imported",
			fmt.Sprintf("%s: %d procs, %d types, %d bodies", dep.Path, len(art.ProcSpecs), len(art.TypeSpecs), bodies))
		n++
	}
	span.End(fmt.Sprintf("%d artifacts", n))
	return n
}

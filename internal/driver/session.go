// Package driver runs the specification pipeline over one module or a whole
// workspace of module descriptions.
package driver

import (
	"specgraph/internal/body"
	"specgraph/internal/config"
	"specgraph/internal/diag"
	"specgraph/internal/hir"
	"specgraph/internal/observ"
	"specgraph/internal/project"
	"specgraph/internal/specs"
)

// Dependency names an artifact a module imports.
type Dependency struct {
	Name string
	Path string
}

// Options tune one module pass.
type Options struct {
	Config config.Config
	// Deps are imported in this order; later artifacts win on key clashes.
	Deps  []Dependency
	Timer *observ.Timer
	// Timings adds an ObsTimings diagnostic to the result bag.
	Timings bool
	// Progress receives workspace build events; nil disables reporting.
	Progress ProgressSink
}

// Session is the single owner of everything one module pass touches.
type Session struct {
	Module   *hir.Module
	Meta     project.ModuleMeta
	Config   config.Config
	Bag      *diag.Bag
	Reporter diag.Reporter
	Cache    *body.Cache
	Timer    *observ.Timer
	Progress ProgressSink
}

// NewSession prepares a pass over mod.
func NewSession(mod *hir.Module, meta project.ModuleMeta, opts Options) *Session {
	bag := diag.NewBag(maxDiagnostics(opts.Config))
	return &Session{
		Module:   mod,
		Meta:     meta,
		Config:   opts.Config,
		Bag:      bag,
		Reporter: diag.BagReporter{Bag: bag},
		Cache:    body.NewCache(mod),
		Timer:    opts.Timer,
		Progress: opts.Progress,
	}
}

func maxDiagnostics(cfg config.Config) int {
	if cfg.Build.MaxDiagnostics <= 0 {
		return config.Default().Build.MaxDiagnostics
	}
	return cfg.Build.MaxDiagnostics
}

func (s *Session) specOptions() specs.Options {
	f := s.Config.Features
	return specs.Options{
		EnableGhostConstraints: f.EnableGhostConstraints,
		EnableTypeInvariants:   f.EnableTypeInvariants,
		KeepGatedTypeSpecs:     f.KeepGatedTypeSpecs,
	}
}

// MetaOf describes a decoded module for the workspace planner.
func MetaOf(mod *hir.Module, path string, content project.Digest) project.ModuleMeta {
	meta := project.ModuleMeta{
		Name:          mod.Name,
		Path:          path,
		Disambiguator: mod.Disambiguator,
		Span:          mod.Span,
		ContentHash:   content,
		StableID:      project.StableModuleID(mod.Name, mod.Disambiguator),
	}
	for _, dep := range mod.Deps {
		meta.Imports = append(meta.Imports, project.ImportMeta{Name: dep.Name, Span: dep.Span})
	}
	return meta
}

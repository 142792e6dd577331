package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"specgraph/internal/diag"
	"specgraph/internal/hir"
	"specgraph/internal/project"
	"specgraph/internal/project/dag"
	"specgraph/internal/source"
	"specgraph/internal/specfile"
	"specgraph/internal/trace"
)

// ModulePattern matches module description files inside a workspace.
const ModulePattern = "**/*.spec.yaml"

// DiscoverModules lists the module description files under root, sorted.
func DiscoverModules(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), ModulePattern)
	if err != nil {
		return nil, fmt.Errorf("discover modules in %s: %w", root, err)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	slices.Sort(out)
	return out, nil
}

// ParsedModule is one decoded module description.
type ParsedModule struct {
	Path   string
	File   source.FileID
	Module *hir.Module // nil when decoding failed
	Meta   project.ModuleMeta
	Bag    *diag.Bag
}

// ParseModules loads every file into fs and decodes them concurrently.
// Results keep the order of paths.
func ParseModules(ctx context.Context, fs *source.FileSet, paths []string, maxDiag, jobs int) ([]ParsedModule, error) {
	return parseModules(ctx, fs, paths, maxDiag, jobs, nil)
}

func parseModules(ctx context.Context, fs *source.FileSet, paths []string, maxDiag, jobs int, sink ProgressSink) ([]ParsedModule, error) {
	results := make([]ParsedModule, len(paths))
	// FileSet не потокобезопасен: загружаем последовательно
	for i, path := range paths {
		id, err := fs.Load(path)
		if err != nil {
			return nil, err
		}
		results[i] = ParsedModule{Path: path, File: id, Bag: diag.NewBag(maxDiag)}
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i := range results {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pm := &results[i]
			emit(sink, Event{File: pm.Path, Stage: StageParse, Status: StatusWorking})
			start := time.Now()
			decodeInto(fs, pm)
			status := StatusDone
			if pm.Module == nil {
				status = StatusError
			}
			emit(sink, Event{File: pm.Path, Stage: StageParse, Status: status, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func decodeInto(fs *source.FileSet, pm *ParsedModule) {
	rep := diag.BagReporter{Bag: pm.Bag}
	file := fs.Get(pm.File)
	mod, err := hir.Decode(fs, pm.File)
	if err != nil {
		reportDecodeError(rep, pm.File, err)
		return
	}
	if !project.IsValidModuleName(mod.Name) {
		diag.ReportError(rep, diag.ProjDecode, mod.Span,
			fmt.Sprintf("invalid module name %q", mod.Name)).Emit()
		return
	}
	pm.Module = mod
	pm.Meta = MetaOf(mod, pm.Path, file.Hash)
}

func reportDecodeError(rep diag.Reporter, file source.FileID, err error) {
	var joined interface{ Unwrap() []error }
	errs := []error{err}
	if errors.As(err, &joined) {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		sp := source.Span{File: file}
		var de *hir.DecodeError
		if errors.As(e, &de) && de.Span.File != 0 {
			sp = de.Span
		}
		diag.ReportError(rep, diag.ProjDecode, sp, e.Error()).Emit()
	}
}

// ModuleOutcome is one module of a workspace build.
type ModuleOutcome struct {
	Parsed  ParsedModule
	Result  *Result // nil when the module was not processed
	Skipped bool
}

// WorkspaceResult is the outcome of BuildWorkspace.
type WorkspaceResult struct {
	FileSet *source.FileSet
	Modules []ModuleOutcome // in build order, then unprocessed modules
	Bag     *diag.Bag       // every diagnostic, sorted
}

// BuildWorkspace processes every module under root. Modules are parsed
// concurrently and then processed one at a time, dependencies first, so
// each module can import the artifacts of the modules it depends on.
func BuildWorkspace(ctx context.Context, root string, opts Options, jobs int) (*WorkspaceResult, error) {
	if opts.Config.Build.OutputDir == "" {
		return nil, errors.New("workspace build needs [build].output_dir")
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "workspace")
	defer span.End(root)

	paths, err := DiscoverModules(root)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		emit(opts.Progress, Event{File: p, Stage: StageParse, Status: StatusQueued})
	}
	fs := source.NewFileSet()
	done := opts.Timer.Track("parse")
	parsed, err := parseModules(ctx, fs, paths, maxDiagnostics(opts.Config), jobs, opts.Progress)
	done(fmt.Sprintf("%d files", len(paths)))
	if err != nil {
		return nil, err
	}

	var (
		metas []project.ModuleMeta
		nodes []dag.ModuleNode
		owner = make(map[string]int)
	)
	for i := range parsed {
		pm := &parsed[i]
		if pm.Module == nil {
			continue
		}
		metas = append(metas, pm.Meta)
		nodes = append(nodes, dag.ModuleNode{Meta: pm.Meta, Reporter: diag.BagReporter{Bag: pm.Bag}})
		if _, dup := owner[pm.Meta.Name]; !dup {
			owner[pm.Meta.Name] = i
		}
	}
	idx := dag.BuildIndex(metas)
	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.Sort(graph)
	dag.ReportCycles(idx, slots, topo)

	out := &WorkspaceResult{FileSet: fs}
	processed := make(map[int]bool)
	for _, id := range topo.Order {
		slot := &slots[int(id)]
		i := owner[slot.Meta.Name]
		pm := parsed[i]
		processed[i] = true

		var hashes []project.Digest
		broken := false
		for _, depID := range graph.Deps(id) {
			depSlot := slots[int(depID)]
			broken = broken || depSlot.Broken
			hashes = append(hashes, depSlot.Meta.ModuleHash)
		}
		// артефакты всех зависимостей, включая транзитивные, в порядке сборки
		var deps []Dependency
		for _, depID := range topo.AllDeps(graph, id) {
			depSlot := slots[int(depID)]
			deps = append(deps, Dependency{
				Name: depSlot.Meta.Name,
				Path: specfile.Path(opts.Config.Build.OutputDir, depSlot.Meta.Name, depSlot.Meta.StableID),
			})
		}
		slot.Meta.ModuleHash = project.Combine(slot.Meta.ContentHash, hashes...)
		if broken || pm.Bag.HasErrors() {
			slot.Broken = true
			out.Modules = append(out.Modules, ModuleOutcome{Parsed: pm, Skipped: true})
			emit(opts.Progress, Event{File: pm.Path, Stage: StageCollect, Status: StatusSkipped})
			continue
		}

		emit(opts.Progress, Event{File: pm.Path, Stage: StageCollect, Status: StatusWorking})
		start := time.Now()
		modOpts := opts
		modOpts.Deps = deps
		res := CollectModule(ctx, pm.Module, slot.Meta, modOpts)
		res.Bag.Merge(pm.Bag)
		status := StatusDone
		if res.Bag.HasErrors() {
			slot.Broken = true
			slot.FirstErr = firstError(res.Bag)
			status = StatusError
		}
		emit(opts.Progress, Event{File: pm.Path, Stage: StageCollect, Status: status, Elapsed: time.Since(start)})
		out.Modules = append(out.Modules, ModuleOutcome{Parsed: pm, Result: res})
	}
	dag.ReportBrokenDeps(idx, slots)

	for i := range parsed {
		if !processed[i] {
			out.Modules = append(out.Modules, ModuleOutcome{Parsed: parsed[i], Skipped: true})
			if parsed[i].Module != nil {
				emit(opts.Progress, Event{File: parsed[i].Path, Stage: StageCollect, Status: StatusSkipped})
			}
		}
	}

	out.Bag = diag.NewBag(maxDiagnostics(opts.Config))
	for _, m := range out.Modules {
		if m.Result != nil {
			out.Bag.Merge(m.Result.Bag)
		} else {
			out.Bag.Merge(m.Parsed.Bag)
		}
	}
	out.Bag.Fold()
	out.Bag.Sort()
	return out, nil
}

func firstError(bag *diag.Bag) *diag.Diagnostic {
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			return &d
		}
	}
	return nil
}

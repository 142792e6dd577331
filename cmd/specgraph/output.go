package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"specgraph/internal/diag"
	"specgraph/internal/diagfmt"
	"specgraph/internal/driver"
	"specgraph/internal/observ"
	"specgraph/internal/project"
	"specgraph/internal/source"
	"specgraph/internal/specfile"
)

// renderDiagnostics prints bag in the requested format and returns
// errReported when it holds errors.
func renderDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, format string) error {
	bag.Sort()
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		if err := diagfmt.JSON(cmd.OutOrStdout(), bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		}); err != nil {
			return err
		}
	case "pretty", "":
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{
			Color:     colored,
			ShowNotes: true,
		})
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	if bag.HasErrors() {
		return errReported
	}
	return nil
}

func printTimings(out io.Writer, timer *observ.Timer) {
	if timer == nil || len(timer.Phases()) == 0 {
		return
	}
	fmt.Fprint(out, timer.Summary())
}

// parseDeps reads repeated name[@disambiguator] flags.
func parseDeps(raw []string) ([]depFlag, error) {
	out := make([]depFlag, 0, len(raw))
	for _, r := range raw {
		name, disamb, hasAt := strings.Cut(r, "@")
		if name == "" || (hasAt && disamb == "") || strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf("invalid --dep %q (want name[@disambiguator])", r)
		}
		out = append(out, depFlag{name: name, disambiguator: disamb})
	}
	return out, nil
}

type depFlag struct {
	name          string
	disambiguator string
}

// dependency locates the artifact the dependency exported into outDir.
func (d depFlag) dependency(outDir string) driver.Dependency {
	id := project.StableModuleID(d.name, d.disambiguator)
	return driver.Dependency{Name: d.name, Path: specfile.Path(outDir, d.name, id)}
}

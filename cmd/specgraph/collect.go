package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"specgraph/internal/driver"
	"specgraph/internal/observ"
	"specgraph/internal/source"
)

var collectCmd = &cobra.Command{
	Use:   "collect <module.spec.yaml>",
	Short: "Collect the specifications of one module",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().String("out", "", "output directory for serialized specs (overrides [build].output_dir)")
	collectCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	collectCmd.Flags().Bool("ghost-constraints", false, "enable ghost constraints")
	collectCmd.Flags().Bool("type-invariants", false, "enable type invariants")
	collectCmd.Flags().StringArray("dep", nil, "dependency module as name[@disambiguator], read from the output directory (repeatable, later wins)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Build.OutputDir, _ = flags.GetString("out")
	}
	if flags.Changed("ghost-constraints") {
		cfg.Features.EnableGhostConstraints, _ = flags.GetBool("ghost-constraints")
	}
	if flags.Changed("type-invariants") {
		cfg.Features.EnableTypeInvariants, _ = flags.GetBool("type-invariants")
	}
	format, _ := flags.GetString("format")
	rawDeps, _ := flags.GetStringArray("dep")
	depFlags, err := parseDeps(rawDeps)
	if err != nil {
		return err
	}
	if len(depFlags) > 0 && cfg.Build.OutputDir == "" {
		return errors.New("--dep needs an output directory (--out or [build].output_dir)")
	}

	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	timings := timingsEnabled(cmd)
	var timer *observ.Timer
	if timings {
		timer = observ.NewTimer()
	}

	fs := source.NewFileSet()
	parsed, err := driver.ParseModules(cmd.Context(), fs, args[:1], cfg.Build.MaxDiagnostics, 1)
	if err != nil {
		return err
	}
	pm := parsed[0]
	if pm.Module == nil {
		return renderDiagnostics(cmd, pm.Bag, fs, format)
	}

	deps := make([]driver.Dependency, len(depFlags))
	for i, d := range depFlags {
		deps[i] = d.dependency(cfg.Build.OutputDir)
	}
	res := driver.CollectModule(cmd.Context(), pm.Module, pm.Meta, driver.Options{
		Config:  cfg,
		Deps:    deps,
		Timer:   timer,
		Timings: timings && format == "json",
	})
	res.Bag.Merge(pm.Bag)
	mod := pm.Module

	if format != "json" {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d procedure specs, %d type specs, %d bodies, %d imported artifacts\n",
			mod.Name, len(res.Map.ProcSpecs), len(res.Map.TypeSpecs), res.Cache.Len(), res.Imported)
		if res.ArtifactPath != "" {
			fmt.Fprintf(out, "wrote %s\n", res.ArtifactPath)
		}
		printTimings(cmd.ErrOrStderr(), timer)
	}
	return renderDiagnostics(cmd, res.Bag, fs, format)
}

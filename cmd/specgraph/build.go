package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"specgraph/internal/driver"
	"specgraph/internal/observ"
)

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Collect every module of a workspace in dependency order",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("out", "", "output directory for serialized specs (overrides [build].output_dir)")
	buildCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	buildCmd.Flags().Int("jobs", 0, "max parallel parse jobs (0=auto)")
	buildCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.Build.OutputDir, _ = cmd.Flags().GetString("out")
	}
	if cfg.Build.OutputDir == "" {
		cfg.Build.OutputDir = "target/verify"
	}
	format, _ := cmd.Flags().GetString("format")
	jobs, _ := cmd.Flags().GetInt("jobs")

	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var timer *observ.Timer
	if timingsEnabled(cmd) {
		timer = observ.NewTimer()
	}
	uiMode, _ := cmd.Flags().GetString("ui")
	showUI, err := progressEnabled(uiMode, format)
	if err != nil {
		return err
	}
	opts := driver.Options{Config: cfg, Timer: timer}
	var ws *driver.WorkspaceResult
	if showUI {
		ws, err = runBuildWithUI(cmd.Context(), "build "+root, root, opts, jobs)
	} else {
		ws, err = driver.BuildWorkspace(cmd.Context(), root, opts, jobs)
	}
	if err != nil {
		return err
	}

	if format != "json" {
		out := cmd.OutOrStdout()
		for _, m := range ws.Modules {
			switch {
			case m.Result != nil:
				fmt.Fprintf(out, "%-24s %d specs -> %s\n", m.Result.Meta.Name, len(m.Result.Map.ProcSpecs), m.Result.ArtifactPath)
			default:
				fmt.Fprintf(out, "%-24s skipped\n", m.Parsed.Path)
			}
		}
		printTimings(cmd.ErrOrStderr(), timer)
	}
	return renderDiagnostics(cmd, ws.Bag, ws.FileSet, format)
}

func progressEnabled(mode, format string) (bool, error) {
	switch mode {
	case "auto":
		return format != "json" && isTerminal(os.Stdout), nil
	case "on":
		return format != "json", nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("unsupported ui mode %q (must be auto, on or off)", mode)
	}
}

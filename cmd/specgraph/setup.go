package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"specgraph/internal/config"
	"specgraph/internal/trace"
)

// loadConfig applies, in order: defaults, specgraph.toml, environment and
// explicitly set persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil {
			return config.Config{}, err
		}
		if ok {
			path = found
		}
	}

	cfg := config.Default()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, fmt.Errorf("environment: %w", err)
	}

	if flags.Changed("max-diagnostics") {
		if cfg.Build.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("trace") {
		if cfg.Trace.Output, err = flags.GetString("trace"); err != nil {
			return config.Config{}, err
		}
		if cfg.Trace.Level == "off" && !flags.Changed("trace-level") {
			cfg.Trace.Level = "phase"
		}
	}
	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flags.GetString("trace-level"); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setupTracing attaches the configured tracer to the command context and
// returns its cleanup function.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(), error) {
	tcfg, err := cfg.TraceConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid trace configuration: %w", err)
	}
	if tcfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

// useColor resolves --color and sets the global colour switch accordingly.
func useColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	var on bool
	switch mode {
	case "auto":
		on = isTerminal(os.Stdout)
	case "on":
		on = true
	case "off":
		on = false
	default:
		return false, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	color.NoColor = !on
	return on, nil
}

func timingsEnabled(cmd *cobra.Command) bool {
	on, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && on
}

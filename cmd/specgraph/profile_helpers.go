package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"specgraph/internal/prof"
)

// profiler is started before any command runs and stopped by main.
var profiler *prof.Profiler

func setupProfiling(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	if profiler, err = prof.Start(opts); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"specgraph/internal/version"
)

// errReported means diagnostics with error severity were already printed.
var errReported = errors.New("errors reported")

var rootCmd = &cobra.Command{
	Use:               "specgraph",
	Short:             "Contract collection for verification front-ends",
	Long:              `specgraph collects procedure, type and loop contracts of a lowered module, persists them for dependent modules and imports the contracts of dependencies.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupProfiling,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to keep")
	rootCmd.PersistentFlags().String("config", "", "path to specgraph.toml (default: search upwards)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write runtime trace to file")

	err := rootCmd.Execute()
	if stopErr := profiler.Stop(); stopErr != nil {
		fmt.Fprintf(os.Stderr, "specgraph: profiling: %v\n", stopErr)
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "specgraph: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

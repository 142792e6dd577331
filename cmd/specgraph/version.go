package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"specgraph/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type versionInfo struct {
	Version       string `json:"version"`
	FormatVersion string `json:"format_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildDate     string `json:"build_date,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(versionInfo{
			Version:       version.Version,
			FormatVersion: version.FormatVersion,
			GitCommit:     version.GitCommit,
			BuildDate:     version.BuildDate,
		})
	case "pretty":
		if _, err := useColor(cmd); err != nil {
			return err
		}
		fmt.Fprintf(out, "specgraph %s\n", version.Colored())
		fmt.Fprintf(out, "artifact format %s\n", version.FormatVersion)
		if version.GitCommit != "" {
			fmt.Fprintf(out, "commit %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(out, "built %s\n", version.BuildDate)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"specgraph/internal/body"
	"specgraph/internal/defid"
	"specgraph/internal/specfile"
)

var showCmd = &cobra.Command{
	Use:   "show <artifact.bin>",
	Short: "Print the contents of a serialized specification artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().Bool("bodies", false, "list every stored body")
}

func runShow(cmd *cobra.Command, args []string) error {
	if _, err := useColor(cmd); err != nil {
		return err
	}
	art, err := specfile.Inspect(args[0])
	if err != nil {
		return err
	}
	listBodies, _ := cmd.Flags().GetBool("bodies")

	out := cmd.OutOrStdout()
	header := color.New(color.Bold)
	header.Fprintf(out, "artifact %s\n", args[0])
	fmt.Fprintf(out, "  format version: %d\n", art.Version)
	fmt.Fprintf(out, "  module:         %016x\n\n", uint64(art.Module))

	header.Fprintf(out, "procedure specs (%d)\n", len(art.ProcSpecs))
	rows := [][]string{{"DEF", "KIND", "PRE", "POST", "PLEDGE", "TRUSTED", "VARIANTS"}}
	for _, id := range sortedKeys(art.ProcSpecs) {
		g := art.ProcSpecs[id]
		b := g.Base
		rows = append(rows, []string{
			id.String(), b.Kind.String(),
			fmt.Sprint(len(b.Pres)), fmt.Sprint(len(b.Posts)), fmt.Sprint(len(b.Pledges)),
			yesNo(b.Trusted), strings.Join(g.Constraints(), ","),
		})
	}
	writeTable(out, rows)

	header.Fprintf(out, "\ntype specs (%d)\n", len(art.TypeSpecs))
	rows = [][]string{{"DEF", "INVARIANTS", "TRUSTED"}}
	for _, id := range sortedKeys(art.TypeSpecs) {
		t := art.TypeSpecs[id]
		rows = append(rows, []string{id.String(), fmt.Sprint(len(t.Invariants)), yesNo(t.Trusted)})
	}
	writeTable(out, rows)

	counts := make(map[body.Kind]int)
	for _, e := range art.Bodies {
		counts[e.Kind]++
	}
	header.Fprintf(out, "\nbodies (%d)\n", len(art.Bodies))
	fmt.Fprintf(out, "  spec: %d  pure: %d  predicate: %d\n",
		counts[body.KindSpec], counts[body.KindPureFn], counts[body.KindPredicate])
	if listBodies {
		rows = [][]string{{"DEF", "KIND", "PARAMS", "BLOCKS", "RESULT"}}
		for _, e := range art.Bodies {
			params, blocks, result := "-", "-", "-"
			if e.Body != nil {
				params = fmt.Sprint(len(e.Body.Params))
				blocks = fmt.Sprint(len(e.Body.Blocks))
				if e.Body.Result != "" {
					result = e.Body.Result
				}
			}
			rows = append(rows, []string{e.Def.String(), e.Kind.String(), params, blocks, result})
		}
		writeTable(out, rows)
	}
	return nil
}

func sortedKeys[V any](m map[defid.DefID]V) []defid.DefID {
	return slices.SortedFunc(maps.Keys(m), func(a, b defid.DefID) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// writeTable prints rows with columns padded to their display width.
func writeTable(w io.Writer, rows [][]string) {
	if len(rows) <= 1 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var sb strings.Builder
		sb.WriteString("  ")
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}

package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"specgraph/internal/diag"
	"specgraph/internal/source"
)

// Pretty prints diagnostics in bag order (call bag.Sort first) as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	  note: <path>:<line>:<col>: <message>
//
// Spans of synthetic origin print as "<internal>".
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pathColor := color.New(color.Bold)
	noteColor := color.New(color.FgCyan)
	sevColors := map[diag.Severity]*color.Color{
		diag.SevInfo:    color.New(color.FgBlue, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevError:   color.New(color.FgRed, color.Bold),
	}
	paint := func(c *color.Color, s string) string {
		if !opts.Color || c == nil {
			return s
		}
		c.EnableColor()
		return c.Sprint(s)
	}

	for _, d := range bag.Items() {
		sev := paint(sevColors[d.Severity], d.Severity.String())
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			paint(pathColor, location(fs, d.Primary, opts.PathMode, opts.BaseDir)),
			sev, d.Code.ID(), d.Message)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n",
				paint(noteColor, "note:"),
				location(fs, n.Span, opts.PathMode, opts.BaseDir),
				n.Msg)
		}
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode, baseDir string) string {
	if fs == nil || sp.IsSynthetic() {
		return syntheticPath
	}
	f := fs.Get(sp.File)
	if f == nil {
		return syntheticPath
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, mode, baseDir), start.Line, start.Col)
}

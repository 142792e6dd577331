package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"specgraph/internal/diag"
	"specgraph/internal/source"
)

func sample() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("mods/bank.spec.yaml", []byte("module: bank\nitems:\n  - kind: fn\n"))
	bag := diag.NewBag(10)
	rep := diag.BagReporter{Bag: bag}
	diag.ReportError(rep, diag.SpecExternConflict, source.Span{File: file, Start: 24, End: 26}, "conflict").
		WithNote(source.Span{File: file, Start: 0, End: 6}, "first here").
		Emit()
	diag.ReportError(rep, diag.SpecInternal, source.Span{}, "error exporting specs").Emit()
	return bag, fs
}

func TestPrettyPlain(t *testing.T) {
	bag, fs := sample()
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, PathMode: PathModeBasename})

	want := strings.Join([]string{
		"bank.spec.yaml:3:5: ERROR SPC1002: conflict",
		"  note: bank.spec.yaml:1:1: first here",
		"<internal>: ERROR SPC1005: error exporting specs",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("pretty output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sample()
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	bag, fs := sample()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, Max: 1}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "SPC1002" || d.Location.StartLine != 3 || d.Location.StartCol != 5 || len(d.Notes) != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestJSONSyntheticLocation(t *testing.T) {
	bag, fs := sample()
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true})
	if loc := out.Diagnostics[1].Location; loc.File != "<internal>" || loc.StartLine != 0 {
		t.Fatalf("location = %+v", loc)
	}
}

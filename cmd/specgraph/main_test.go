package main

import (
	"bytes"
	"strings"
	"testing"

	"specgraph/internal/project"
	"specgraph/internal/specfile"
)

func TestParseDeps(t *testing.T) {
	deps, err := parseDeps([]string{"core@1.0.0", "util"})
	if err != nil {
		t.Fatalf("parseDeps: %v", err)
	}
	if len(deps) != 2 || deps[0].name != "core" || deps[0].disambiguator != "1.0.0" || deps[1].disambiguator != "" {
		t.Fatalf("deps = %+v", deps)
	}
	for _, bad := range []string{"", "@1.0.0", "core@", "out/core"} {
		if _, err := parseDeps([]string{bad}); err == nil {
			t.Fatalf("parseDeps(%q): expected error", bad)
		}
	}
}

func TestDependencyMatchesExportedArtifact(t *testing.T) {
	deps, err := parseDeps([]string{"core@1.0.0", "util"})
	if err != nil {
		t.Fatalf("parseDeps: %v", err)
	}
	core := deps[0].dependency("out")
	if want := specfile.Path("out", "core", project.StableModuleID("core", "1.0.0")); core.Path != want || core.Name != "core" {
		t.Fatalf("core = %+v, want path %q", core, want)
	}
	util := deps[1].dependency("out")
	if want := specfile.Path("out", "util", project.StableModuleID("util", "")); util.Path != want {
		t.Fatalf("util path = %q, want %q", util.Path, want)
	}
}

func TestProgressEnabled(t *testing.T) {
	if on, _ := progressEnabled("on", "json"); on {
		t.Fatalf("progress view must stay off for json output")
	}
	if on, _ := progressEnabled("on", "pretty"); !on {
		t.Fatalf("progress view off with --ui=on")
	}
	if _, err := progressEnabled("sometimes", "pretty"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestWriteTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, [][]string{
		{"DEF", "KIND"},
		{"local#1", "pure"},
		{"1f#12", "predicate(abstract)"},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	col := strings.Index(lines[0], "KIND")
	if strings.Index(lines[1], "pure") != col || strings.Index(lines[2], "predicate") != col {
		t.Fatalf("columns not aligned:\n%s", buf.String())
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, [][]string{{"DEF"}})
	if !strings.Contains(buf.String(), "(none)") {
		t.Fatalf("got %q", buf.String())
	}
}

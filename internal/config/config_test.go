package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[features]
enable_ghost_constraints = true

[build]
output_dir = "target/verify"

[trace]
level = "detail"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Features.EnableGhostConstraints || cfg.Features.EnableTypeInvariants {
		t.Fatalf("features = %+v", cfg.Features)
	}
	if cfg.Build.OutputDir != filepath.Join(dir, "target/verify") {
		t.Fatalf("output dir = %q", cfg.Build.OutputDir)
	}
	if cfg.Build.MaxDiagnostics != 100 {
		t.Fatalf("defaults lost: %+v", cfg.Build)
	}
	tc, err := cfg.TraceConfig()
	if err != nil || tc.Level.String() != "detail" {
		t.Fatalf("trace config = %+v, %v", tc, err)
	}
}

func TestLoadRejectsUnknownKeysAndBadValues(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"unknown key", "[features]\nenable_magic = true\n", "unknown keys"},
		{"bad level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"negative limit", "[build]\nmax_diagnostics = -1\n", "max_diagnostics"},
		{"syntax", "[features\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.text)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := Find(nested)
	if err != nil || !ok || got != want {
		t.Fatalf("Find = %q, %v, %v; want %q", got, ok, err, want)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvGhostConstraints: "1",
		EnvTypeInvariants:   "false",
		EnvOutputDir:        "/tmp/out",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	cfg.Features.EnableTypeInvariants = true
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !cfg.Features.EnableGhostConstraints || cfg.Features.EnableTypeInvariants || cfg.Build.OutputDir != "/tmp/out" {
		t.Fatalf("cfg = %+v", cfg)
	}

	env[EnvGhostConstraints] = "maybe"
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Fatalf("expected parse error")
	}
}

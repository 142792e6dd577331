// Package config loads specgraph.toml and the environment overrides that
// toggle optional contract kinds.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"specgraph/internal/trace"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "specgraph.toml"

// Environment overrides.
const (
	EnvGhostConstraints = "SPECGRAPH_ENABLE_GHOST_CONSTRAINTS"
	EnvTypeInvariants   = "SPECGRAPH_ENABLE_TYPE_INVARIANTS"
	EnvOutputDir        = "SPECGRAPH_OUTPUT_DIR"
)

// Features gates optional contract kinds.
type Features struct {
	EnableGhostConstraints bool `toml:"enable_ghost_constraints"`
	EnableTypeInvariants   bool `toml:"enable_type_invariants"`
	// KeepGatedTypeSpecs keeps type specifications whose invariants are
	// feature-gated off instead of dropping them.
	KeepGatedTypeSpecs bool `toml:"keep_gated_type_specs"`
}

type Build struct {
	// OutputDir is where serialized_specs/ lives; empty disables export and
	// import.
	OutputDir      string `toml:"output_dir"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type Trace struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

type Config struct {
	Features Features `toml:"features"`
	Build    Build    `toml:"build"`
	Trace    Trace    `toml:"trace"`

	// Path of the loaded manifest, empty for defaults.
	Path string `toml:"-"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Build: Build{MaxDiagnostics: 100},
		Trace: Trace{Level: "off", Output: "-", Format: "auto"},
	}
}

// Find walks up from startDir looking for specgraph.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load parses the manifest at path on top of Default. Relative output
// directories are resolved against the manifest directory.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("build", "output_dir") && cfg.Build.OutputDir != "" && !filepath.IsAbs(cfg.Build.OutputDir) {
		cfg.Build.OutputDir = filepath.Join(filepath.Dir(path), cfg.Build.OutputDir)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides; lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	flags := []struct {
		name string
		dst  *bool
	}{
		{EnvGhostConstraints, &c.Features.EnableGhostConstraints},
		{EnvTypeInvariants, &c.Features.EnableTypeInvariants},
	}
	for _, f := range flags {
		raw, ok := lookup(f.name)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	if dir, ok := lookup(EnvOutputDir); ok && dir != "" {
		c.Build.OutputDir = dir
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Build.MaxDiagnostics < 0 {
		return fmt.Errorf("[build].max_diagnostics must not be negative")
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		return fmt.Errorf("[trace].format: %w", err)
	}
	return nil
}

// TraceConfig converts the [trace] table for trace.New.
func (c Config) TraceConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Format: format, OutputPath: c.Trace.Output}, nil
}

package diagfmt

import (
	"path/filepath"

	"specgraph/internal/source"
)

const syntheticPath = "<internal>"

func formatPath(f *source.File, mode PathMode, baseDir string) string {
	if f == nil {
		return syntheticPath
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, f.Path); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	case PathModeBasename:
		return filepath.Base(f.Path)
	}
	return f.Path
}

package project

import (
	"crypto/sha256"
	"encoding/binary"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"specgraph/internal/defid"
	"specgraph/internal/source"
)

// ImportMeta is one dependency edge as written in the module description.
type ImportMeta struct {
	Name string
	Span source.Span
}

// ModuleMeta is what the workspace planner needs to know about a module.
type ModuleMeta struct {
	Name          string
	Path          string // module description file
	Disambiguator string
	Span          source.Span
	Imports       []ImportMeta
	ContentHash   Digest // хеш содержимого файла
	ModuleHash    Digest // агрегированный хеш с учётом зависимостей
	StableID      defid.ModuleID
}

// IsValidModuleName reports whether name can be used in artifact file names.
func IsValidModuleName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// StableModuleID derives the identity of a module from its name and
// disambiguator. The result is the same on every run and never equals
// defid.LocalModule.
func StableModuleID(name, disambiguator string) defid.ModuleID {
	h := sha256.New()
	_, _ = h.Write([]byte(norm.NFC.String(name)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(disambiguator))
	sum := h.Sum(nil)
	id := defid.ModuleID(binary.BigEndian.Uint64(sum[:8]))
	if id == defid.LocalModule {
		// вероятность ничтожна, но 0 зарезервирован
		id = 1
	}
	return id
}

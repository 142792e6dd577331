package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet owns the module description files loaded during one run and maps
// spans back to line/column positions.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates a new FileSet. FileID 0 is reserved so that the zero
// Span never points into a real file.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 1, 8),
		index: make(map[string]FileID),
	}
}

// Add stores normalized content and returns a fresh FileID.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	id := FileID(n)
	normalized := normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalized] = id
	return id
}

// Load reads a file from disk, strips BOM, normalizes CRLF and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (tests, stdin).
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for id or nil.
func (fileSet *FileSet) Get(id FileID) *File {
	if id == 0 || int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetLatest returns the newest FileID registered for path.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Offset converts a 1-based line/column into a byte offset of file id.
// Positions past the end clamp to the file length.
func (fileSet *FileSet) Offset(id FileID, pos LineCol) uint32 {
	f := fileSet.Get(id)
	if f == nil || pos.Line == 0 {
		return 0
	}
	var start uint32
	if pos.Line > 1 {
		if int(pos.Line-2) >= len(f.LineIdx) {
			return uint32(len(f.Content)) //nolint:gosec // checked in Add
		}
		start = f.LineIdx[pos.Line-2] + 1
	}
	off := start
	if pos.Col > 1 {
		off += pos.Col - 1
	}
	if limit := uint32(len(f.Content)); off > limit { //nolint:gosec // checked in Add
		off = limit
	}
	return off
}

// SpanAt builds a span of length n starting at the given position, cut at
// the end of the file.
func (fileSet *FileSet) SpanAt(id FileID, pos LineCol, n uint32) Span {
	start := fileSet.Offset(id, pos)
	f := fileSet.Get(id)
	if f == nil {
		return Span{File: id, Start: start, End: start}
	}
	limit := uint32(len(f.Content)) //nolint:gosec // checked in Add
	return Span{File: id, Start: start, End: start + min(n, limit-start)}
}

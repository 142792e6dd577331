// Package specfile persists a module's specifications and the bodies they
// need so that dependent modules can import them.
//
// An artifact is a msgpack stream: the magic string, the format version, the
// exporting module's stable id and three length-prefixed sections (procedure
// specs, type specs, bodies). All ids are rebased onto the exporter's stable
// id; entries are written sorted, so the same input always produces the same
// bytes.
package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"specgraph/internal/body"
	"specgraph/internal/defid"
	"specgraph/internal/specs"
)

const (
	// Magic opens every artifact.
	Magic = "SPECGRAPH"
	// FormatVersion is bumped on any change of the wire DTOs.
	FormatVersion uint16 = 1
	// Dir is the subdirectory of the output dir holding artifacts.
	Dir = "serialized_specs"
	// Ext is the artifact file extension.
	Ext = ".bin"
)

var (
	ErrBadMagic    = errors.New("specfile: not a specification artifact")
	ErrVersionSkew = errors.New("specfile: unsupported format version")
	ErrTruncated   = errors.New("specfile: truncated artifact")
)

// Artifact is a decoded artifact.
type Artifact struct {
	Version   uint16
	Module    defid.ModuleID
	ProcSpecs map[defid.DefID]*specs.SpecGraph
	TypeSpecs map[defid.DefID]*specs.TypeSpecification
	Bodies    []body.Entry
}

// Path returns the artifact location of a module under outDir.
func Path(outDir, name string, id defid.ModuleID) string {
	return filepath.Join(outDir, Dir, fmt.Sprintf("%s-%016x%s", name, uint64(id), Ext))
}

// Encode writes the artifact of module self to w.
func Encode(w io.Writer, self defid.ModuleID, m *specs.DefSpecificationMap, cache *body.Cache) error {
	if self == defid.LocalModule {
		return fmt.Errorf("specfile: cannot export under the local module id")
	}
	c := codec{self: self}

	procIDs := m.SortedProcIDs()
	procs := make([]wireSpecGraph, 0, len(procIDs))
	for _, id := range procIDs {
		procs = append(procs, c.specGraph(id, m.ProcSpecs[id]))
	}
	typeIDs := m.SortedTypeIDs()
	types := make([]wireTypeSpec, 0, len(typeIDs))
	for _, id := range typeIDs {
		types = append(types, c.typeSpec(id, m.TypeSpecs[id]))
	}
	var bodies []wireBody
	if cache != nil {
		for _, e := range cache.Local() {
			bodies = append(bodies, c.body(e))
		}
	}

	enc := msgpack.NewEncoder(w)
	if err := enc.EncodeString(Magic); err != nil {
		return err
	}
	if err := enc.EncodeUint16(FormatVersion); err != nil {
		return err
	}
	if err := enc.EncodeUint64(uint64(self)); err != nil {
		return err
	}
	for _, section := range []any{procs, types, bodies} {
		raw, err := msgpack.Marshal(section)
		if err != nil {
			return fmt.Errorf("specfile: encode section: %w", err)
		}
		if err := enc.EncodeBytes(raw); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads an artifact and localizes every id for the importing module
// self. Pass defid.LocalModule to keep ids exactly as stored.
func Decode(r io.Reader, self defid.ModuleID) (*Artifact, error) {
	dec := msgpack.NewDecoder(r)
	magic, err := dec.DecodeString()
	if err != nil {
		if isEOF(err) {
			return nil, ErrTruncated
		}
		return nil, ErrBadMagic
	}
	if magic != Magic {
		return nil, ErrBadMagic
	}
	version, err := dec.DecodeUint16()
	if err != nil {
		return nil, headerErr(err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrVersionSkew, version, FormatVersion)
	}
	module, err := dec.DecodeUint64()
	if err != nil {
		return nil, headerErr(err)
	}

	var (
		procs  []wireSpecGraph
		types  []wireTypeSpec
		bodies []wireBody
	)
	for i, dst := range []any{&procs, &types, &bodies} {
		raw, err := dec.DecodeBytes()
		if err != nil {
			return nil, headerErr(err)
		}
		if err := msgpack.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("specfile: corrupt section %d: %w", i, err)
		}
	}

	c := codec{self: self}
	art := &Artifact{
		Version:   version,
		Module:    defid.ModuleID(module),
		ProcSpecs: make(map[defid.DefID]*specs.SpecGraph, len(procs)),
		TypeSpecs: make(map[defid.DefID]*specs.TypeSpecification, len(types)),
		Bodies:    make([]body.Entry, 0, len(bodies)),
	}
	for _, w := range procs {
		key, g := c.fromSpecGraph(w)
		art.ProcSpecs[key] = g
	}
	for _, w := range types {
		key, t := c.fromTypeSpec(w)
		art.TypeSpecs[key] = t
	}
	for _, w := range bodies {
		art.Bodies = append(art.Bodies, c.fromBody(w))
	}
	return art, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func headerErr(err error) error {
	if isEOF(err) {
		return ErrTruncated
	}
	return fmt.Errorf("specfile: malformed artifact: %w", err)
}

// Export writes the artifact of module self to path through a temporary
// file that is renamed into place.
func Export(path string, self defid.ModuleID, m *specs.DefSpecificationMap, cache *body.Cache) error {
	var buf bytes.Buffer
	if err := Encode(&buf, self, m, cache); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// атомарная замена
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Import reads the artifact at path for the importing module self.
func Import(path string, self defid.ModuleID) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	art, err := Decode(bytes.NewReader(data), self)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return art, nil
}

// Inspect decodes an artifact without localizing it.
func Inspect(path string) (*Artifact, error) {
	return Import(path, defid.LocalModule)
}

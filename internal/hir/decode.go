package hir

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"fortio.org/safecast"
	"gopkg.in/yaml.v3"

	"specgraph/internal/defid"
	"specgraph/internal/source"
)

// DecodeError is a positioned error in a module description.
type DecodeError struct {
	Span source.Span
	Msg  string
}

func (e *DecodeError) Error() string { return e.Msg }

type rawModule struct {
	Module        string    `yaml:"module"`
	Disambiguator string    `yaml:"disambiguator"`
	Deps          []rawDep  `yaml:"deps"`
	Items         []rawItem `yaml:"items"`
}

type rawDep struct {
	Name string
	pos  source.LineCol
}

func (d *rawDep) UnmarshalYAML(value *yaml.Node) error {
	pos, err := posOf(value)
	if err != nil {
		return err
	}
	d.pos = pos
	return value.Decode(&d.Name)
}

type rawItem struct {
	Kind     string    `yaml:"kind"`
	Name     string    `yaml:"name"`
	Attrs    yaml.Node `yaml:"attrs"`
	SelfType string    `yaml:"self_type"`
	Init     *rawItem  `yaml:"init"`
	Body     *Body     `yaml:"body"`
	Calls    []string  `yaml:"calls"`
	Items    []rawItem `yaml:"items"`

	pos source.LineCol
}

func (r *rawItem) UnmarshalYAML(value *yaml.Node) error {
	type plain rawItem
	if err := value.Decode((*plain)(r)); err != nil {
		return err
	}
	pos, err := posOf(value)
	if err != nil {
		return err
	}
	r.pos = pos
	return nil
}

type decoder struct {
	fs      *source.FileSet
	file    source.FileID
	byName  map[string][]*Node
	pending []func(*Module) error
}

// Decode parses the module description stored in file.
func Decode(fs *source.FileSet, file source.FileID) (*Module, error) {
	f := fs.Get(file)
	if f == nil {
		return nil, fmt.Errorf("hir: unknown file id %d", file)
	}
	var raw rawModule
	if err := yaml.Unmarshal(f.Content, &raw); err != nil {
		return nil, &DecodeError{Span: source.Span{File: file}, Msg: fmt.Sprintf("%s: %v", f.Path, err)}
	}
	d := &decoder{fs: fs, file: file, byName: make(map[string][]*Node)}
	if strings.TrimSpace(raw.Module) == "" {
		return nil, &DecodeError{Span: source.Span{File: file}, Msg: fmt.Sprintf("%s: missing module name", f.Path)}
	}

	root := &Node{Kind: NodeModule, Name: raw.Module, Span: source.Span{File: file}}
	for i := range raw.Items {
		child, err := d.item(&raw.Items[i])
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}

	mod := NewModule(raw.Module, root)
	mod.Disambiguator = raw.Disambiguator
	mod.File = file
	mod.Span = root.Span
	for _, dep := range raw.Deps {
		mod.Deps = append(mod.Deps, Dep{Name: dep.Name, Span: d.span(dep.pos, len(dep.Name))})
	}
	var errs []error
	for _, resolve := range d.pending {
		if err := resolve(mod); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return mod, nil
}

func (d *decoder) span(pos source.LineCol, n int) source.Span {
	if n <= 0 {
		n = 1
	}
	width, err := safecast.Conv[uint32](n)
	if err != nil {
		width = math.MaxUint32 // SpanAt clamps to the file
	}
	return d.fs.SpanAt(d.file, pos, width)
}

// posOf reads the 1-based position yaml.v3 recorded for n.
func posOf(n *yaml.Node) (source.LineCol, error) {
	line, err := safecast.Conv[uint32](n.Line)
	if err != nil {
		return source.LineCol{}, fmt.Errorf("bad yaml line %d: %w", n.Line, err)
	}
	col, err := safecast.Conv[uint32](n.Column)
	if err != nil {
		return source.LineCol{}, fmt.Errorf("bad yaml column %d: %w", n.Column, err)
	}
	return source.LineCol{Line: line, Col: col}, nil
}

func (d *decoder) errorf(pos source.LineCol, format string, args ...any) error {
	return &DecodeError{Span: d.span(pos, 1), Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) item(r *rawItem) (*Node, error) {
	kind, ok := ParseNodeKind(r.Kind)
	if !ok || kind == NodeModule {
		return nil, d.errorf(r.pos, "unknown item kind %q", r.Kind)
	}
	n := &Node{Kind: kind, Name: r.Name, Span: d.span(r.pos, len(r.Name)), Body: r.Body}
	attrs, err := d.attrs(&r.Attrs)
	if err != nil {
		return nil, err
	}
	n.Attrs = attrs
	if kind.Defines() && r.Name != "" {
		d.byName[r.Name] = append(d.byName[r.Name], n)
	}

	switch kind {
	case NodeLocal:
		if r.Init != nil {
			init, err := d.item(r.Init)
			if err != nil {
				return nil, err
			}
			n.Init = init
		}
	case NodeImpl:
		if r.SelfType == "" {
			return nil, d.errorf(r.pos, "impl block without self_type")
		}
		ref, pos := r.SelfType, r.pos
		d.pending = append(d.pending, func(*Module) error {
			id, err := d.resolve(ref, pos)
			if err != nil {
				return err
			}
			n.SelfType, n.HasSelfType = id, true
			return nil
		})
	}
	for _, call := range r.Calls {
		ref, pos := call, r.pos
		d.pending = append(d.pending, func(*Module) error {
			id, err := d.resolve(ref, pos)
			if err != nil {
				return err
			}
			n.Calls = append(n.Calls, id)
			return nil
		})
	}
	for i := range r.Items {
		child, err := d.item(&r.Items[i])
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// resolve turns a reference into a DefID: "module::index" is foreign,
// anything else names a local entity.
func (d *decoder) resolve(ref string, pos source.LineCol) (defid.DefID, error) {
	if strings.Contains(ref, "::") {
		id, err := defid.ParseDefID(ref)
		if err != nil {
			return defid.DefID{}, d.errorf(pos, "%v", err)
		}
		return id, nil
	}
	nodes := d.byName[ref]
	switch len(nodes) {
	case 0:
		return defid.DefID{}, d.errorf(pos, "unresolved reference %q", ref)
	case 1:
		return nodes[0].Def.ToDefID(), nil
	default:
		return defid.DefID{}, d.errorf(pos, "ambiguous reference %q (%d definitions)", ref, len(nodes))
	}
}

func (d *decoder) attrs(node *yaml.Node) (Attrs, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	pos, err := posOf(node)
	if err != nil {
		return nil, err
	}
	if node.Kind != yaml.MappingNode {
		return nil, d.errorf(pos, "attrs must be a mapping")
	}
	var out Attrs
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			v := val.Value
			if val.Tag == "!!null" {
				v = ""
			}
			out = append(out, Attr{Key: key, Value: v})
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, d.errorf(pos, "attr %q: sequence items must be scalars", key)
				}
				out = append(out, Attr{Key: key, Value: item.Value})
			}
		default:
			return nil, d.errorf(pos, "attr %q: unsupported value", key)
		}
	}
	return out, nil
}

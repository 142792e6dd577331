package specfile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"specgraph/internal/body"
	"specgraph/internal/defid"
	"specgraph/internal/hir"
	"specgraph/internal/specs"
)

const (
	exporter defid.ModuleID = 0xa1
	importer defid.ModuleID = 0xb2
)

// fixture builds a module with a precondition body (1), a pure function (2),
// a predicate body (3), a predicate (4) and a type (5).
func fixture() (*specs.DefSpecificationMap, *body.Cache) {
	mk := func(name string) *hir.Node {
		return &hir.Node{Kind: hir.NodeFn, Name: name, Body: &hir.Body{
			Result: "bool",
			Blocks: []hir.Block{{Stmts: []string{"_0 = " + name}, Term: "return"}},
		}}
	}
	mod := hir.NewModule("bank", &hir.Node{Kind: hir.NodeModule, Children: []*hir.Node{
		mk("pre"), mk("pure_fn"), mk("pred_body"), {Kind: hir.NodeFn, Name: "is_valid"}, {Kind: hir.NodeType, Name: "Account"},
	}})

	m := specs.NewDefSpecificationMap()
	pure := specs.NewSpecGraph(specs.EmptyProcedureSpecification(defid.Local(2)))
	pure.AddPrecondition(defid.Local(1), "")
	pure.SetKind(specs.Pure())
	m.ProcSpecs[defid.Local(2)] = pure

	pred := specs.NewSpecGraph(specs.EmptyProcedureSpecification(defid.Local(4)))
	body3 := defid.Local(3)
	pred.SetKind(specs.Predicate(&body3))
	pred.AddPrecondition(defid.Local(1), "T: Copy")
	pred.SetTrusted(true)
	m.ProcSpecs[defid.Local(4)] = pred

	ext := specs.NewSpecGraph(specs.EmptyProcedureSpecification(defid.Local(2)))
	ext.AddPostcondition(defid.Local(1), "")
	m.ProcSpecs[defid.Foreign(0x77, 9)] = ext

	m.TypeSpecs[defid.Local(5)] = &specs.TypeSpecification{
		Source:     defid.Local(5),
		Invariants: []defid.DefID{defid.Local(1)},
		Trusted:    true,
	}

	cache := body.NewCache(mod)
	specs.Materialize(context.Background(), m, cache)
	return m, cache
}

func TestRoundTripRebasesIDs(t *testing.T) {
	m, cache := fixture()
	path := Path(t.TempDir(), "bank", exporter)
	if err := Export(path, exporter, m, cache); err != nil {
		t.Fatalf("export: %v", err)
	}
	art, err := Import(path, importer)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if art.Module != exporter || art.Version != FormatVersion {
		t.Fatalf("header = %x/%d", art.Module, art.Version)
	}
	if len(art.ProcSpecs) != 3 || len(art.TypeSpecs) != 1 || len(art.Bodies) != 3 {
		t.Fatalf("sizes = %d/%d/%d", len(art.ProcSpecs), len(art.TypeSpecs), len(art.Bodies))
	}

	g, ok := art.ProcSpecs[defid.Foreign(exporter, 2)]
	if !ok || !g.Base.Kind.IsPure() || len(g.Base.Pres) != 1 || g.Base.Pres[0] != defid.Foreign(exporter, 1) {
		t.Fatalf("pure spec = %+v", g)
	}
	g = art.ProcSpecs[defid.Foreign(exporter, 4)]
	if g == nil || *g.Base.Kind.Predicate != defid.Foreign(exporter, 3) || !g.Base.Trusted {
		t.Fatalf("predicate spec = %+v", g)
	}
	if v := g.Constrained["T: Copy"]; v == nil || len(v.Pres) != 1 || !v.Trusted {
		t.Fatalf("variant = %+v", v)
	}
	if _, ok := art.ProcSpecs[defid.Foreign(0x77, 9)]; !ok {
		t.Fatalf("foreign key must be kept as is")
	}
	ts := art.TypeSpecs[defid.Foreign(exporter, 5)]
	if ts == nil || !ts.Trusted || ts.Invariants[0] != defid.Foreign(exporter, 1) {
		t.Fatalf("type spec = %+v", ts)
	}
	for _, e := range art.Bodies {
		if e.Def.IsLocal() || !e.External || e.Body == nil || len(e.Body.Blocks) != 1 {
			t.Fatalf("body = %+v", e)
		}
	}
}

func TestImportByExporterRestoresMap(t *testing.T) {
	m, cache := fixture()
	path := Path(t.TempDir(), "bank", exporter)
	if err := Export(path, exporter, m, cache); err != nil {
		t.Fatalf("export: %v", err)
	}
	art, err := Import(path, exporter)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(art.ProcSpecs, m.ProcSpecs) {
		for k, g := range m.ProcSpecs {
			if !reflect.DeepEqual(art.ProcSpecs[k], g) {
				t.Fatalf("proc spec %v: got %+v, want %+v", k, art.ProcSpecs[k], g)
			}
		}
		t.Fatalf("proc specs = %v, want %v", art.ProcSpecs, m.ProcSpecs)
	}
	if !reflect.DeepEqual(art.TypeSpecs, m.TypeSpecs) {
		t.Fatalf("type specs = %v, want %v", art.TypeSpecs, m.TypeSpecs)
	}
	for _, e := range art.Bodies {
		if !e.Def.IsLocal() {
			t.Fatalf("own body %v must come back local", e.Def)
		}
	}
}

func TestEncodingIsDeterministic(t *testing.T) {
	m, cache := fixture()
	var a, b bytes.Buffer
	if err := Encode(&a, exporter, m, cache); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := Encode(&b, exporter, m, cache); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("two encodings differ")
	}
}

func TestDecodeErrors(t *testing.T) {
	m, cache := fixture()
	var good bytes.Buffer
	if err := Encode(&good, exporter, m, cache); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var skew bytes.Buffer
	enc := msgpack.NewEncoder(&skew)
	_ = enc.EncodeString(Magic)
	_ = enc.EncodeUint16(FormatVersion + 1)

	var wrongMagic bytes.Buffer
	_ = msgpack.NewEncoder(&wrongMagic).EncodeString("PRUSTI")

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"garbage", []byte{0xc1, 0x00, 0x01}, ErrBadMagic},
		{"wrong magic", wrongMagic.Bytes(), ErrBadMagic},
		{"version skew", skew.Bytes(), ErrVersionSkew},
		{"truncated", good.Bytes()[:good.Len()-5], ErrTruncated},
	}
	for _, tc := range cases {
		_, err := Decode(bytes.NewReader(tc.data), importer)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestExportRejectsLocalModule(t *testing.T) {
	m, cache := fixture()
	if err := Export(filepath.Join(t.TempDir(), "x.bin"), defid.LocalModule, m, cache); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExportReplacesExistingFile(t *testing.T) {
	m, cache := fixture()
	path := Path(t.TempDir(), "bank", exporter)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Export(path, exporter, m, cache); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := Inspect(path); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestPath(t *testing.T) {
	got := Path("out", "bank", 0xab)
	want := filepath.Join("out", "serialized_specs", "bank-00000000000000ab.bin")
	if got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}
}

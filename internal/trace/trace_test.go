package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "ERROR", "phase", "Detail", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := Start(ctx, ScopePass, "specs.scan")
	Point(ctx, ScopeNode, "proc-record", "hidden at phase level")
	pass.End("3 entries")

	out := buf.String()
	if !strings.Contains(out, "\u2192 specs.scan") || !strings.Contains(out, "\u2190 specs.scan (3 entries)") {
		t.Fatalf("missing span events:\n%s", out)
	}
	if strings.Contains(out, "proc-record") {
		t.Fatalf("node point must be filtered:\n%s", out)
	}
}

func TestNDJSONCarriesParent(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)
	ctx, span := Start(ctx, ScopeModule, "module:bank")
	Point(ctx, ScopeNode, "specfile.export", "out.bin")
	span.WithExtra("procs", "2").End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d:\n%s", len(lines), buf.String())
	}
	var point struct {
		Kind     string `json:"kind"`
		ParentID uint64 `json:"parent_id"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &point); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if point.Kind != "point" || point.ParentID != span.ID() {
		t.Fatalf("point = %+v, span = %d", point, span.ID())
	}
	if !strings.Contains(lines[2], `"procs":"2"`) {
		t.Fatalf("extra missing: %s", lines[2])
	}
}

func TestNopIsFree(t *testing.T) {
	s := Begin(Nop, ScopePass, "x", 0)
	if s.ID() != 0 || s.End("") != 0 {
		t.Fatalf("nop span must be inert")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer must fall back to Nop")
	}
}

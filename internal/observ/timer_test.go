package observ

import (
	"strings"
	"testing"
)

func TestTimerTrack(t *testing.T) {
	tm := NewTimer()
	done := tm.Track("scan")
	done("3 procedures")
	tm.End(tm.Begin("export"), "")

	phases := tm.Phases()
	if len(phases) != 2 || phases[0].Name != "scan" || phases[0].Note != "3 procedures" {
		t.Fatalf("phases = %+v", phases)
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "scan") || !strings.Contains(sum, "// 3 procedures") || !strings.Contains(sum, "total") {
		t.Fatalf("summary = %q", sum)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.Track("x")("")
	if tm.Report().Phases != nil {
		t.Fatalf("nil timer must report nothing")
	}
}

func TestEndIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(5, "nope")
	if len(tm.Phases()) != 0 {
		t.Fatalf("phases = %+v", tm.Phases())
	}
}

package ui

import (
	"errors"
	"strings"
	"testing"

	"specgraph/internal/driver"
)

func newModel() *progressModel {
	return NewProgressModel("build", nil).(*progressModel)
}

func TestApplyEventAddsModulesInArrivalOrder(t *testing.T) {
	m := newModel()
	m.applyEvent(driver.Event{File: "b.spec.yaml", Stage: driver.StageParse, Status: driver.StatusQueued})
	m.applyEvent(driver.Event{File: "a.spec.yaml", Stage: driver.StageParse, Status: driver.StatusQueued})
	m.applyEvent(driver.Event{File: "b.spec.yaml", Stage: driver.StageParse, Status: driver.StatusWorking})

	if len(m.items) != 2 {
		t.Fatalf("items = %d, want 2", len(m.items))
	}
	if m.items[0].path != "b.spec.yaml" || m.items[0].status != "parsing" {
		t.Fatalf("first item = %+v", m.items[0])
	}
	if m.items[1].status != "queued" {
		t.Fatalf("second item status = %q", m.items[1].status)
	}
}

func TestPercentCountsFinishedModules(t *testing.T) {
	m := newModel()
	m.applyEvent(driver.Event{File: "a", Stage: driver.StageParse, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "a", Stage: driver.StageCollect, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b", Stage: driver.StageParse, Status: driver.StatusError, Err: errors.New("bad")})
	m.applyEvent(driver.Event{File: "c", Stage: driver.StageParse, Status: driver.StatusQueued})

	if got := m.percent(); got < 0.66 || got > 0.67 {
		t.Fatalf("percent = %v, want 2/3", got)
	}
}

func TestParsedIsNotFinal(t *testing.T) {
	m := newModel()
	m.applyEvent(driver.Event{File: "a", Stage: driver.StageParse, Status: driver.StatusDone})
	if m.items[0].final {
		t.Fatalf("module marked final after parse")
	}
	if m.items[0].status != "parsed" {
		t.Fatalf("status = %q, want parsed", m.items[0].status)
	}
}

func TestViewListsModules(t *testing.T) {
	m := newModel()
	m.applyEvent(driver.Event{File: "core.spec.yaml", Stage: driver.StageCollect, Status: driver.StatusSkipped})
	m.done = true
	view := m.View()
	if !strings.Contains(view, "core.spec.yaml") || !strings.Contains(view, "skipped") {
		t.Fatalf("view misses module line:\n%s", view)
	}
	if !strings.Contains(view, "done: build") {
		t.Fatalf("view misses header:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Fatalf("truncate short = %q", got)
	}
}

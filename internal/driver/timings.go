package driver

import (
	"encoding/json"
	"fmt"

	"specgraph/internal/diag"
	"specgraph/internal/observ"
	"specgraph/internal/source"
)

type timingPayload struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	observ.Report
}

// appendTimingDiagnostic records the phase timings as an info diagnostic
// whose only note is the JSON payload.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "pipeline"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, payload.Path)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data))
	if bag.Add(entry) {
		return
	}
	// лимит исчерпан, но тайминги всё равно нужны
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}

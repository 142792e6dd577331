package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"specgraph/internal/driver"
	"specgraph/internal/ui"
)

type buildOutcome struct {
	result *driver.WorkspaceResult
	err    error
}

// runBuildWithUI runs a workspace build while a progress view follows its
// events on stdout.
func runBuildWithUI(ctx context.Context, title, root string, opts driver.Options, jobs int) (*driver.WorkspaceResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.BuildWorkspace(ctx, root, optsCopy, jobs)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

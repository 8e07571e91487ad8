package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/swiftsetup/internal/provisioning"
)

// RunDeployTUI runs deployFn under a live progress view of the given plan.
// Events sent to the observer passed to deployFn update the view. Quitting
// the view cancels the deployment and waits for it to stop.
func RunDeployTUI(
	ctx context.Context,
	role string,
	hosts, stages []string,
	deployFn func(ctx context.Context, obs provisioning.Observer) error,
) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewDeployModel(role, hosts, stages)
	p := tea.NewProgram(m, tea.WithAltScreen())

	done := make(chan error, 1)
	go func() {
		err := deployFn(runCtx, NewProgramObserver(p))
		done <- err
		p.Send(DoneMsg{Err: err})
	}()

	_, tuiErr := p.Run()
	cancel()
	deployErr := <-done

	if deployErr != nil {
		return deployErr
	}
	if tuiErr != nil {
		return fmt.Errorf("TUI error: %w", tuiErr)
	}
	return nil
}

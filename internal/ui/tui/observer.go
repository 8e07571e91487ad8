package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/swiftsetup/internal/provisioning"
)

// sender is the part of tea.Program the observer needs.
type sender interface {
	Send(msg tea.Msg)
}

// ProgramObserver is a provisioning.Observer that turns deployment events
// into messages for a running program.
type ProgramObserver struct {
	p sender
}

// NewProgramObserver creates an observer forwarding to p.
func NewProgramObserver(p sender) *ProgramObserver {
	return &ProgramObserver{p: p}
}

// Printf implements provisioning.Observer.
func (o *ProgramObserver) Printf(format string, v ...interface{}) {
	o.p.Send(LogMsg{Text: fmt.Sprintf(format, v...)})
}

// Event implements provisioning.Observer.
func (o *ProgramObserver) Event(event provisioning.Event) {
	switch event.Type {
	case provisioning.EventPhaseStarted:
		o.p.Send(StageMsg{Stage: event.Phase})
	case provisioning.EventPhaseCompleted:
		o.p.Send(StageMsg{Stage: event.Phase, Done: true})
	case provisioning.EventPhaseFailed:
		o.p.Send(StageMsg{Stage: event.Phase, Err: event.Message})
	case provisioning.EventHostSucceeded, provisioning.EventHostFailed:
		o.p.Send(HostMsg{
			Stage:  event.Phase,
			Host:   event.Host,
			OK:     event.Type == provisioning.EventHostSucceeded,
			Output: event.Fields["output"],
		})
	case provisioning.EventStateChanged:
		o.p.Send(StateMsg{State: event.Fields["to"]})
	}
}

// Progress implements provisioning.Observer. Stage events drive the
// progress bar.
func (o *ProgramObserver) Progress(string, int, int) {}

// WithFields implements provisioning.Observer. Fields only annotate log
// lines, so the observer is returned unchanged.
func (o *ProgramObserver) WithFields(map[string]string) provisioning.Observer {
	return o
}

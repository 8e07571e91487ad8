package tui

// StageMsg reports that a stage started, completed or failed.
type StageMsg struct {
	Stage string
	Done  bool
	Err   string
}

// HostMsg reports the outcome of a stage on one host.
type HostMsg struct {
	Stage  string
	Host   string
	OK     bool
	Output string
}

// StateMsg carries the run state after a transition.
type StateMsg struct {
	State string
}

// LogMsg carries a free-form status line.
type LogMsg struct {
	Text string
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// DoneMsg signals that the deployment returned. Err is its error, if any.
type DoneMsg struct {
	Err error
}

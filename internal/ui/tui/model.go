package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StageRow is one stage of the deployment plan as displayed.
type StageRow struct {
	Name      string
	Active    bool
	Done      bool
	Err       string
	Succeeded int
	// Failed maps hosts to the first line of their output.
	Failed map[string]string
}

// HostRow is the live status of one host.
type HostRow struct {
	Host   string
	Stages int
	Failed bool
	Reason string
}

// Model is the Bubble Tea model for a running deployment.
type Model struct {
	Role   string
	Stages []StageRow
	Hosts  []HostRow
	State  string
	Status string

	StartTime    time.Time
	SpinnerFrame int

	// UI state
	Width   int
	Height  int
	Err     error
	Done    bool
	Aborted bool
}

// NewDeployModel creates a model for deploying role to hosts through the
// given stages, in plan order.
func NewDeployModel(role string, hosts, stages []string) Model {
	m := Model{
		Role:      role,
		State:     "NotStarted",
		StartTime: time.Now(),
	}
	for _, s := range stages {
		m.Stages = append(m.Stages, StageRow{Name: s})
	}
	for _, h := range hosts {
		m.Hosts = append(m.Hosts, HostRow{Host: h})
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Aborted = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StageMsg:
		m.updateStage(msg)

	case HostMsg:
		m.updateHost(msg)

	case StateMsg:
		m.State = msg.State

	case LogMsg:
		m.Status = msg.Text

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		m.Err = msg.Err
		for i := range m.Stages {
			m.Stages[i].Active = false
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) stageIndex(name string) int {
	for i, s := range m.Stages {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (m *Model) updateStage(msg StageMsg) {
	idx := m.stageIndex(msg.Stage)
	if idx < 0 {
		return
	}

	// Stages run in plan order
	for i := 0; i < idx; i++ {
		if m.Stages[i].Err == "" {
			m.Stages[i].Done = true
		}
		m.Stages[i].Active = false
	}

	row := &m.Stages[idx]
	switch {
	case msg.Err != "":
		row.Err = msg.Err
		row.Active = false
	case msg.Done:
		row.Done = true
		row.Active = false
	default:
		row.Active = true
	}
}

func (m *Model) updateHost(msg HostMsg) {
	if idx := m.stageIndex(msg.Stage); idx >= 0 {
		row := &m.Stages[idx]
		if msg.OK {
			row.Succeeded++
		} else {
			if row.Failed == nil {
				row.Failed = make(map[string]string)
			}
			row.Failed[msg.Host] = firstLine(msg.Output)
		}
	}

	for i := range m.Hosts {
		if m.Hosts[i].Host != msg.Host {
			continue
		}
		if msg.OK {
			m.Hosts[i].Stages++
		} else {
			m.Hosts[i].Failed = true
			m.Hosts[i].Reason = msg.Stage
		}
	}
}

// progress returns the share of completed stages.
func (m Model) progress() float64 {
	if len(m.Stages) == 0 {
		return 0
	}
	done := 0
	for _, s := range m.Stages {
		if s.Done {
			done++
		}
	}
	return float64(done) / float64(len(m.Stages))
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}

package provisioning

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	// Printf logs a free-form message.
	Printf(format string, v ...interface{})

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "common setup", "sync subtrees")
	Message   string            // Human-readable message
	Host      string            // Host the event concerns, if any
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventHostSucceeded indicates a step completed on one host.
	EventHostSucceeded EventType = "host.succeeded"
	// EventHostFailed indicates a step failed on one host.
	EventHostFailed EventType = "host.failed"

	// EventStateChanged indicates the run moved to a new state.
	EventStateChanged EventType = "state.changed"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// LogrusObserver implements Observer on top of a logrus logger.
type LogrusObserver struct {
	log logrus.FieldLogger
}

// NewObserver creates an observer writing to log. A nil log uses the
// logrus standard logger.
func NewObserver(log logrus.FieldLogger) *LogrusObserver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogrusObserver{log: log}
}

// Printf implements Observer.
func (o *LogrusObserver) Printf(format string, v ...interface{}) {
	o.log.Infof(format, v...)
}

// Event implements Observer.
func (o *LogrusObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	fields := logrus.Fields{"event": string(event.Type)}
	if event.Phase != "" {
		fields["phase"] = event.Phase
	}
	if event.Host != "" {
		fields["host"] = event.Host
	}
	for k, v := range event.Fields {
		fields[k] = v
	}

	entry := o.log.WithFields(fields).WithTime(event.Timestamp)
	switch event.Type {
	case EventPhaseFailed, EventHostFailed:
		entry.Error(event.Message)
	case EventHostSucceeded, EventProgress:
		entry.Debug(event.Message)
	default:
		entry.Info(event.Message)
	}
}

// Progress implements Observer.
func (o *LogrusObserver) Progress(phase string, current, total int) {
	entry := o.log.WithFields(logrus.Fields{
		"event":   string(EventProgress),
		"phase":   phase,
		"current": current,
		"total":   total,
	})
	if total == 0 {
		entry.Infof("[%s] Progress: %d/%d", phase, current, total)
		return
	}
	entry.Infof("[%s] Progress: %d/%d (%d%%)", phase, current, total, (current*100)/total)
}

// WithFields implements Observer.
func (o *LogrusObserver) WithFields(fields map[string]string) Observer {
	lf := make(logrus.Fields, len(fields))
	for k, v := range fields {
		lf[k] = v
	}
	return &LogrusObserver{log: o.log.WithFields(lf)}
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogHostResult logs the outcome of a step on one host.
func LogHostResult(observer Observer, phase, host string, ok bool, output string) {
	ev := Event{
		Type:    EventHostSucceeded,
		Phase:   phase,
		Host:    host,
		Message: "ok",
	}
	if !ok {
		ev.Type = EventHostFailed
		ev.Message = "failed"
		if output != "" {
			ev.Fields = map[string]string{"output": output}
		}
	}
	observer.Event(ev)
}

// LogStateChange logs a transition of the run state.
func LogStateChange(observer Observer, from, to RunState) {
	observer.Event(Event{
		Type:    EventStateChanged,
		Message: fmt.Sprintf("%s -> %s", from, to),
		Fields: map[string]string{
			"from": from.String(),
			"to":   to.String(),
		},
	})
}

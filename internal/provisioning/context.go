package provisioning

import (
	"context"
	"sync"
	"time"

	"github.com/imamik/swiftsetup/internal/remote"
)

// StageResult is the outcome of one stage across all hosts.
type StageResult struct {
	Name     string
	Duration time.Duration
	Results  remote.Results
	Err      error
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Role     string
	Hosts    []string
	Executor remote.Executor
	Observer Observer
	Metrics  *Metrics

	mu         sync.Mutex
	state      RunState
	hostStates map[string]RunState
	stages     []StageResult
}

// NewContext creates a provisioning context for one role run.
func NewContext(ctx context.Context, role string, hosts []string, exec remote.Executor, observer Observer) *Context {
	if observer == nil {
		observer = NewObserver(nil)
	}
	hostStates := make(map[string]RunState, len(hosts))
	for _, h := range hosts {
		hostStates[h] = NotStarted
	}
	return &Context{
		Context:    ctx,
		Role:       role,
		Hosts:      hosts,
		Executor:   exec,
		Observer:   observer.WithFields(map[string]string{"role": role}),
		hostStates: hostStates,
	}
}

// State returns the run state.
func (c *Context) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Advance moves the run and every host that has not failed to state.
// Terminal states are never left.
func (c *Context) Advance(state RunState) {
	c.mu.Lock()
	from := c.state
	if from.Terminal() {
		c.mu.Unlock()
		return
	}
	c.state = state
	for h, s := range c.hostStates {
		if s != Failed {
			c.hostStates[h] = state
		}
	}
	c.mu.Unlock()

	LogStateChange(c.Observer, from, state)
}

// Fail marks the run as failed together with the given hosts.
func (c *Context) Fail(hosts ...string) {
	c.mu.Lock()
	from := c.state
	c.state = Failed
	for _, h := range hosts {
		c.hostStates[h] = Failed
	}
	c.mu.Unlock()

	if from != Failed {
		LogStateChange(c.Observer, from, Failed)
	}
}

// HostStates returns a copy of the per-host states.
func (c *Context) HostStates() map[string]RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]RunState, len(c.hostStates))
	for h, s := range c.hostStates {
		out[h] = s
	}
	return out
}

// Record appends a stage result, logs every host outcome and counts them.
func (c *Context) Record(res StageResult) {
	c.mu.Lock()
	c.stages = append(c.stages, res)
	c.mu.Unlock()

	for _, r := range res.Results {
		LogHostResult(c.Observer, res.Name, r.Host, r.OK, r.Output)
	}
	c.Metrics.RecordHosts(c.Role, res.Name, res.Results)
}

// Stages returns the stage results recorded so far, in execution order.
func (c *Context) Stages() []StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StageResult, len(c.stages))
	copy(out, c.stages)
	return out
}

package testing

import (
	"context"
	"sync"

	"github.com/imamik/swiftsetup/internal/remote"
)

// Call is one executor invocation recorded by MockExecutor.
type Call struct {
	Hosts   []string
	Command remote.Command
	// Upload is set for uploads; Command is zero then.
	Upload *remote.Upload
}

// Intent returns the intent of the recorded operation.
func (c Call) Intent() string {
	if c.Upload != nil {
		return c.Upload.Intent
	}
	return c.Command.Intent
}

// MockExecutor is a remote.Executor that records every call and answers
// with per-host results. Hosts succeed unless a hook says otherwise.
type MockExecutor struct {
	mu     sync.Mutex
	calls  []Call
	closed int

	// RunFunc overrides the result of a command on one host.
	RunFunc func(host string, cmd remote.Command) remote.Result
	// UploadFunc overrides the result of an upload on one host.
	UploadFunc func(host string, up remote.Upload) remote.Result

	failures map[string]map[string]remote.Result
}

// NewMockExecutor creates an executor where every host succeeds.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{failures: make(map[string]map[string]remote.Result)}
}

// FailWhen makes the operation with the given intent fail on hosts.
func (m *MockExecutor) FailWhen(intent string, hosts ...string) *MockExecutor {
	return m.RespondWhen(intent, remote.Result{OK: false, ExitStatus: 1, Output: "simulated failure"}, hosts...)
}

// RespondWhen makes the operation with the given intent return res on hosts.
func (m *MockExecutor) RespondWhen(intent string, res remote.Result, hosts ...string) *MockExecutor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures[intent] == nil {
		m.failures[intent] = make(map[string]remote.Result)
	}
	for _, h := range hosts {
		m.failures[intent][h] = res
	}
	return m
}

// Run implements remote.Executor.
func (m *MockExecutor) Run(_ context.Context, hosts []string, cmd remote.Command) remote.Results {
	m.record(Call{Hosts: append([]string(nil), hosts...), Command: cmd})
	return m.answer(hosts, cmd.Intent, func(h string) *remote.Result {
		if m.RunFunc == nil {
			return nil
		}
		r := m.RunFunc(h, cmd)
		return &r
	})
}

// Upload implements remote.Executor.
func (m *MockExecutor) Upload(_ context.Context, hosts []string, up remote.Upload) remote.Results {
	upCopy := up
	m.record(Call{Hosts: append([]string(nil), hosts...), Upload: &upCopy})
	return m.answer(hosts, up.Intent, func(h string) *remote.Result {
		if m.UploadFunc == nil {
			return nil
		}
		r := m.UploadFunc(h, up)
		return &r
	})
}

// Close implements remote.Executor.
func (m *MockExecutor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// Calls returns the recorded calls in order.
func (m *MockExecutor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Intents returns the intents of the recorded calls in order.
func (m *MockExecutor) Intents() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Intent()
	}
	return out
}

// Closed returns how many times Close was called.
func (m *MockExecutor) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockExecutor) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *MockExecutor) answer(hosts []string, intent string, hook func(string) *remote.Result) remote.Results {
	m.mu.Lock()
	preset := m.failures[intent]
	m.mu.Unlock()

	out := make(remote.Results, len(hosts))
	for i, h := range hosts {
		if r := hook(h); r != nil {
			r.Host = h
			out[i] = *r
			continue
		}
		if r, ok := preset[h]; ok {
			r.Host = h
			out[i] = r
			continue
		}
		out[i] = remote.Result{Host: h, OK: true}
	}
	return out
}

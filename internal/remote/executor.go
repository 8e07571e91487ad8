package remote

import (
	"context"
	"strings"
)

// Command is a shell script run on every host of a batch.
type Command struct {
	// Intent describes the step in operator terms, e.g. "install general tools".
	Intent string
	// Script is passed to the remote shell as-is.
	Script string
	// Sudo runs the script through sudo.
	Sudo bool
}

// Upload copies a local directory tree into RemoteDir on every host.
type Upload struct {
	Intent    string
	LocalDir  string
	RemoteDir string
	// Exclude lists paths relative to LocalDir that are not copied.
	Exclude []string
	Sudo    bool
}

// Result is the outcome of one operation on one host.
type Result struct {
	Host   string
	OK     bool
	Output string
	// ExitStatus is the remote exit code, -1 when the command never ran.
	ExitStatus int
	Err        error
}

// Results holds one Result per host, in the order the hosts were given.
type Results []Result

// OK reports whether every host succeeded.
func (r Results) OK() bool {
	for _, res := range r {
		if !res.OK {
			return false
		}
	}
	return true
}

// Failed returns the results of hosts that did not succeed.
func (r Results) Failed() Results {
	var out Results
	for _, res := range r {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// Hosts returns the hosts in result order.
func (r Results) Hosts() []string {
	out := make([]string, len(r))
	for i, res := range r {
		out[i] = res.Host
	}
	return out
}

// Executor runs operations against a set of hosts.
type Executor interface {
	// Run executes cmd on every host and waits for all of them.
	Run(ctx context.Context, hosts []string, cmd Command) Results
	// Upload copies up.LocalDir to every host and waits for all of them.
	Upload(ctx context.Context, hosts []string, up Upload) Results
	// Close tears down every connection opened by the executor.
	Close() error
}

// ShellQuote quotes s for safe use as a single POSIX shell word.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:=@+,", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// wrapSudo runs script through a non-interactive sudo shell.
func wrapSudo(script string) string {
	return "sudo -n -H sh -c " + ShellQuote(script)
}

package remote

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/imamik/swiftsetup/internal/platform/ssh"
	"github.com/imamik/swiftsetup/internal/util/async"
)

// hostClient is the subset of ssh.Client the executor uses.
type hostClient interface {
	Execute(ctx context.Context, command string) (string, error)
	Upload(ctx context.Context, localDir, command string, skip func(rel string) bool) (string, error)
	Close() error
}

// newHostClient is swapped out in tests.
var newHostClient = func(cfg *ssh.Config) (hostClient, error) {
	return ssh.NewClient(cfg)
}

// SSHExecutor runs operations over SSH, keeping one connection per host for
// the lifetime of the executor.
type SSHExecutor struct {
	session *Session
	log     logrus.FieldLogger

	mu      sync.Mutex
	clients map[string]hostClient
	closed  bool
}

// NewSSHExecutor creates an executor for session. Connections are opened
// lazily on first use.
func NewSSHExecutor(session *Session, log logrus.FieldLogger) *SSHExecutor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &SSHExecutor{
		session: session,
		log:     log,
		clients: make(map[string]hostClient),
	}
}

// Run implements Executor.
func (e *SSHExecutor) Run(ctx context.Context, hosts []string, cmd Command) Results {
	script := cmd.Script
	if cmd.Sudo {
		script = wrapSudo(script)
	}
	return e.fanOut(ctx, hosts, cmd.Intent, func(ctx context.Context, c hostClient) (string, error) {
		return c.Execute(ctx, script)
	})
}

// Upload implements Executor.
func (e *SSHExecutor) Upload(ctx context.Context, hosts []string, up Upload) Results {
	unpack := UnpackCommand(up.RemoteDir)
	if up.Sudo {
		unpack = wrapSudo(unpack)
	}
	skip := excludeFunc(up.Exclude)
	return e.fanOut(ctx, hosts, up.Intent, func(ctx context.Context, c hostClient) (string, error) {
		return c.Upload(ctx, up.LocalDir, unpack, skip)
	})
}

// Close implements Executor.
func (e *SSHExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result *multierror.Error
	for host, c := range e.clients {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", host, err))
		}
	}
	e.clients = make(map[string]hostClient)
	e.closed = true
	return result.ErrorOrNil()
}

func (e *SSHExecutor) fanOut(ctx context.Context, hosts []string, intent string, op func(context.Context, hostClient) (string, error)) Results {
	results := make(Results, len(hosts))
	tasks := make([]async.Task, len(hosts))

	for i, host := range hosts {
		results[i] = Result{Host: host, ExitStatus: -1}
		tasks[i] = async.Task{
			Name: host,
			Func: func(ctx context.Context) error {
				res := e.runOn(ctx, host, intent, op)
				results[i] = res
				return res.Err
			},
		}
	}

	// Per-host failures are already recorded in results.
	if err := async.RunBounded(ctx, e.session.Parallelism, tasks); err != nil {
		for i := range results {
			if results[i].Err == nil && !results[i].OK {
				results[i].Err = ctx.Err()
			}
		}
	}
	return results
}

func (e *SSHExecutor) runOn(ctx context.Context, host, intent string, op func(context.Context, hostClient) (string, error)) Result {
	log := e.log.WithFields(logrus.Fields{"host": host, "intent": intent})

	c, err := e.client(host)
	if err != nil {
		log.WithError(err).Error("failed to prepare connection")
		return Result{Host: host, ExitStatus: -1, Err: err}
	}

	if e.session.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.session.CommandTimeout)
		defer cancel()
	}

	log.Debug("running")
	out, err := op(ctx, c)
	if err != nil {
		log.WithError(err).Warn("failed")
		return Result{Host: host, Output: out, ExitStatus: ssh.ExitStatus(err), Err: err}
	}
	log.Debug("done")
	return Result{Host: host, OK: true, Output: out}
}

func (e *SSHExecutor) client(host string) (hostClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("executor is closed")
	}
	if c, ok := e.clients[host]; ok {
		return c, nil
	}

	c, err := newHostClient(&ssh.Config{
		Host:           host,
		Port:           e.session.Port,
		User:           e.session.User,
		PrivateKey:     e.session.PrivateKey,
		DialTimeout:    e.session.DialTimeout,
		MaxRetries:     e.session.MaxRetries,
		RetryDelay:     e.session.RetryDelay,
		KnownHostsFile: e.session.KnownHostsFile,
	})
	if err != nil {
		return nil, err
	}
	e.clients[host] = c
	return c, nil
}

// UnpackCommand returns the remote command that extracts a tar stream from
// stdin into dir.
func UnpackCommand(dir string) string {
	q := ShellQuote(dir)
	return "mkdir -p " + q + " && tar -xf - -C " + q
}

func excludeFunc(exclude []string) func(rel string) bool {
	if len(exclude) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(exclude))
	for _, p := range exclude {
		set[path.Clean(strings.TrimPrefix(p, "./"))] = struct{}{}
	}
	return func(rel string) bool {
		_, ok := set[rel]
		return ok
	}
}

package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 5
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the number of connection attempts after the first.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// KnownHostsFile enables host key verification against an OpenSSH
	// known_hosts file. Ignored when HostKeyCallback is set.
	KnownHostsFile string

	// HostKeyCallback handles host key verification.
	// If nil and KnownHostsFile is empty, host keys are not verified.
	HostKeyCallback ssh.HostKeyCallback
}

// Client runs commands on one remote host over a shared connection.
type Client struct {
	config *Config
	signer ssh.Signer

	mu   sync.Mutex
	conn *ssh.Client
}

// NewClient validates cfg and parses the private key. No connection is made.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		if configCopy.KnownHostsFile != "" {
			cb, err := knownhosts.New(configCopy.KnownHostsFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load known hosts %s: %w", configCopy.KnownHostsFile, err)
			}
			configCopy.HostKeyCallback = cb
		} else {
			configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in verification via KnownHostsFile
		}
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Host returns the address this client connects to.
func (c *Client) Host() string {
	return c.config.Host
}

// Execute runs command in a new session and returns its combined output.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	return c.run(ctx, command, nil)
}

// Stream runs command with stdin connected to r and returns its combined output.
func (c *Client) Stream(ctx context.Context, command string, r io.Reader) (string, error) {
	return c.run(ctx, command, r)
}

// Close closes the underlying connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) run(ctx context.Context, command string, stdin io.Reader) (string, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return "", err
	}

	session, err := conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	if stdin != nil {
		session.Stdin = stdin
	}

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(command)
		done <- result{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		_ = session.Close()
		return "", fmt.Errorf("command interrupted on %s: %w", c.config.Host, ctx.Err())
	case res := <-done:
		output := string(res.out)
		if res.err != nil {
			return output, &ExitError{Host: c.config.Host, Status: exitStatus(res.err), Output: output, Err: res.err}
		}
		return output, nil
	}
}

// connect returns the cached connection or dials with exponential backoff.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	clientConfig := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}
	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.config.RetryDelay
	policy.MaxInterval = defaultMaxDelay
	policy.MaxElapsedTime = 0

	var conn *ssh.Client
	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		var dialErr error
		conn, dialErr = ssh.Dial("tcp", addr, clientConfig)
		if dialErr != nil && isAuthError(dialErr) {
			return backoff.Permanent(dialErr)
		}
		return dialErr
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.config.MaxRetries)), ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}

	c.conn = conn
	return conn, nil
}

func isAuthError(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate") ||
		strings.Contains(err.Error(), "knownhosts:")
}

// ExitError is returned when a remote command fails.
type ExitError struct {
	Host   string
	Status int
	Output string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Status >= 0 {
		return fmt.Sprintf("command failed on %s with exit status %d", e.Host, e.Status)
	}
	return fmt.Sprintf("command failed on %s: %v", e.Host, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitStatus extracts the remote exit code, or -1 when there is none.
func exitStatus(err error) int {
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus()
	}
	return -1
}

// ExitStatus returns the remote exit code carried by err, or -1.
func ExitStatus(err error) int {
	var e *ExitError
	if errors.As(err, &e) {
		return e.Status
	}
	return -1
}

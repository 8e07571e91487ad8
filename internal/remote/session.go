package remote

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/imamik/swiftsetup/internal/config"
)

// ErrIdentityMissing is returned when the SSH private key cannot be found.
var ErrIdentityMissing = errors.New("SSH private key could not be located")

// Session is the explicit execution context shared by all remote calls of a run.
type Session struct {
	User           string
	PrivateKey     []byte
	Port           int
	Parallelism    int
	KnownHostsFile string

	DialTimeout    time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	CommandTimeout time.Duration
}

// NewSession reads the SSH identity named by settings and combines it with
// the connection timeouts. It never touches the network.
func NewSession(settings *config.DeploySettings, timeouts *config.Timeouts) (*Session, error) {
	// #nosec G304 -- key path is operator configuration
	key, err := os.ReadFile(settings.SSHKeyPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w [%s]", ErrIdentityMissing, settings.SSHKeyPath)
		}
		return nil, fmt.Errorf("failed to read SSH private key %s: %w", settings.SSHKeyPath, err)
	}

	return &Session{
		User:           settings.SSHUser,
		PrivateKey:     key,
		Port:           settings.SSHPort,
		Parallelism:    settings.Parallelism,
		DialTimeout:    timeouts.DialTimeout,
		MaxRetries:     timeouts.DialMaxRetries,
		RetryDelay:     timeouts.DialRetryDelay,
		CommandTimeout: timeouts.CommandTimeout,
	}, nil
}

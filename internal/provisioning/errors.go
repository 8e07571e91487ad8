package provisioning

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/imamik/swiftsetup/internal/remote"
)

// Local precondition failures. These are returned before any host is contacted.
var (
	ErrTemplatesNotReady = errors.New("templates have not been initialised")
	ErrNoHosts           = errors.New("no hosts to deploy")
	ErrInvalidHostCount  = errors.New("invalid number of hosts for role")
)

// Kinds of remote failure. A *RemoteError matches its kind with errors.Is.
var (
	ErrRemoteCommand      = errors.New("remote command failed")
	ErrUpload             = errors.New("upload failed")
	ErrRepositoryInit     = errors.New("repository initialisation failed")
	ErrAlreadyProvisioned = errors.New("admin repository already provisioned")
	ErrServiceRestart     = errors.New("service restart failed")
)

// RemoteError reports a remote step that failed on one host.
type RemoteError struct {
	Kind   error
	Intent string
	Host   string
	// Output is the combined output captured from the host.
	Output string
	Err    error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%v: %s on %s", e.kind(), e.Intent, e.Host)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *RemoteError) Is(target error) bool {
	return target == e.kind()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) kind() error {
	if e.Kind == nil {
		return ErrRemoteCommand
	}
	return e.Kind
}

// ResultsError converts the failed entries of results into a *RemoteError
// each, aggregated in host order. It returns nil when every host succeeded.
func ResultsError(kind error, intent string, results remote.Results) error {
	var result *multierror.Error
	for _, r := range results.Failed() {
		result = multierror.Append(result, &RemoteError{
			Kind:   kind,
			Intent: intent,
			Host:   r.Host,
			Output: r.Output,
			Err:    r.Err,
		})
	}
	return result.ErrorOrNil()
}

// RemoteErrors extracts every *RemoteError carried by err.
func RemoteErrors(err error) []*RemoteError {
	var out []*RemoteError
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			out = append(out, RemoteErrors(e)...)
		}
		return out
	}
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		out = append(out, rerr)
	}
	return out
}

package provisioning

import (
	"time"

	"github.com/imamik/swiftsetup/internal/remote"
)

// RemoteStep is a Phase that runs one command, or one upload, on every host
// of the run.
type RemoteStep struct {
	StageName string
	// Kind classifies failures; ErrRemoteCommand when nil.
	Kind    error
	Command remote.Command
	// Upload replaces Command when set.
	Upload *remote.Upload
	// Check inspects the results before the default failure handling. A
	// non-nil return value becomes the step error.
	Check func(results remote.Results) error
}

// Name implements Phase.
func (s *RemoteStep) Name() string {
	return s.StageName
}

// Intent returns the operator-facing description of the step.
func (s *RemoteStep) Intent() string {
	intent := s.Command.Intent
	if s.Upload != nil {
		intent = s.Upload.Intent
	}
	if intent == "" {
		return s.StageName
	}
	return intent
}

// Provision implements Phase.
func (s *RemoteStep) Provision(ctx *Context) error {
	start := time.Now()

	var results remote.Results
	if s.Upload != nil {
		results = ctx.Executor.Upload(ctx, ctx.Hosts, *s.Upload)
	} else {
		results = ctx.Executor.Run(ctx, ctx.Hosts, s.Command)
	}

	var err error
	if s.Check != nil {
		err = s.Check(results)
	}
	if err == nil {
		err = ResultsError(s.Kind, s.Intent(), results)
	}

	ctx.Record(StageResult{
		Name:     s.StageName,
		Duration: time.Since(start),
		Results:  results,
		Err:      err,
	})
	return err
}

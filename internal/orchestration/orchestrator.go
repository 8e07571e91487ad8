package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/imamik/swiftsetup/internal/config"
	"github.com/imamik/swiftsetup/internal/provisioning"
	"github.com/imamik/swiftsetup/internal/remote"
	"github.com/imamik/swiftsetup/internal/templating"
)

// Outcome summarizes one Deploy call.
type Outcome struct {
	Role Role
	// OK is true only when every stage succeeded on every host.
	OK    bool
	State provisioning.RunState
	// HostStates holds the state each host reached.
	HostStates map[string]provisioning.RunState
	Stages     []provisioning.StageResult
	// Repository is the state of the canonical repository as known after
	// the run.
	Repository templating.RepositoryState
	Duration   time.Duration
}

// Orchestrator deploys roles with a remote executor.
type Orchestrator struct {
	settings    *config.DeploySettings
	baseDir     string
	exec        remote.Executor
	observer    provisioning.Observer
	metrics     *provisioning.Metrics
	rebootGrace time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the observer receiving deployment events.
func WithObserver(o provisioning.Observer) Option {
	return func(orch *Orchestrator) { orch.observer = o }
}

// WithMetrics records stage and host metrics into m.
func WithMetrics(m *provisioning.Metrics) Option {
	return func(orch *Orchestrator) { orch.metrics = m }
}

// WithRebootGrace sets the delay before the admin host reboots.
func WithRebootGrace(d time.Duration) Option {
	return func(orch *Orchestrator) { orch.rebootGrace = d }
}

// New creates an orchestrator for the project rooted at baseDir.
func New(settings *config.DeploySettings, baseDir string, exec remote.Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		settings:    settings,
		baseDir:     baseDir,
		exec:        exec,
		rebootGrace: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.observer == nil {
		o.observer = provisioning.NewObserver(nil)
	}
	return o
}

// Plan returns the stage names Deploy runs for role, in order.
func (o *Orchestrator) Plan(role Role) ([]string, error) {
	phases, err := o.phases(role)
	if err != nil {
		return nil, err
	}
	return append(phaseNames(commonPhases(o.settings)), phaseNames(phases)...), nil
}

// Deploy runs the common setup and the role pipeline on hosts. Preflight
// failures are returned before the executor is used. When the admin
// bootstrap fails, every connection of the executor is closed.
func (o *Orchestrator) Deploy(ctx context.Context, role Role, hosts []string) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{
		Role:       role,
		State:      provisioning.NotStarted,
		HostStates: make(map[string]provisioning.RunState, len(hosts)),
	}
	for _, h := range hosts {
		out.HostStates[h] = provisioning.NotStarted
	}
	out.Repository, _ = templating.Status(o.baseDir)

	rolePhases, err := o.preflight(role, hosts)
	if err != nil {
		out.State = provisioning.Failed
		out.Duration = time.Since(start)
		o.observer.Printf("Preflight for %s failed: %v", role, err)
		return out, err
	}

	pctx := provisioning.NewContext(ctx, role.String(), hosts, o.exec, o.observer)
	pctx.Metrics = o.metrics

	err = o.run(pctx, rolePhases)
	if err != nil && role == Admin {
		if cerr := o.exec.Close(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("closing connections: %w", cerr))
		}
	}

	out.State = pctx.State()
	out.HostStates = pctx.HostStates()
	out.Stages = pctx.Stages()
	out.OK = err == nil && out.State == provisioning.RoleProvisioned
	if role == Admin && out.OK {
		out.Repository = templating.Bootstrapped
	}
	out.Duration = time.Since(start)

	o.metrics.RecordRun(role.String(), out.OK)
	if err != nil {
		return out, fmt.Errorf("deploy %s: %w", role, err)
	}
	return out, nil
}

func (o *Orchestrator) run(pctx *provisioning.Context, rolePhases []provisioning.Phase) error {
	if err := provisioning.RunPhases(pctx, commonPhases(o.settings)); err != nil {
		return err
	}
	pctx.Advance(provisioning.CommonProvisioned)

	if err := provisioning.RunPhases(pctx, rolePhases); err != nil {
		return err
	}
	pctx.Advance(provisioning.RoleProvisioned)
	return nil
}

// preflight performs the local checks every run needs and builds the role
// pipeline. It never contacts a host.
func (o *Orchestrator) preflight(role Role, hosts []string) ([]provisioning.Phase, error) {
	ready, err := templating.Initialized(o.baseDir)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, fmt.Errorf("%w: %s is missing, run the template command first",
			provisioning.ErrTemplatesNotReady, templating.SentinelPath(o.baseDir))
	}
	if len(hosts) == 0 {
		return nil, provisioning.ErrNoHosts
	}
	if role == Admin && len(hosts) != 1 {
		return nil, fmt.Errorf("%w: admin needs exactly one host, got %d", provisioning.ErrInvalidHostCount, len(hosts))
	}
	return o.phases(role)
}

func (o *Orchestrator) phases(role Role) ([]provisioning.Phase, error) {
	if err := role.validate(); err != nil {
		return nil, err
	}
	if role == Admin {
		return adminPhases(o.settings, o.baseDir, o.rebootGrace), nil
	}
	return nodePhases(role, o.settings), nil
}

// IsPrecondition reports whether err was raised before any host was contacted.
func IsPrecondition(err error) bool {
	return errors.Is(err, provisioning.ErrTemplatesNotReady) ||
		errors.Is(err, provisioning.ErrNoHosts) ||
		errors.Is(err, provisioning.ErrInvalidHostCount) ||
		errors.Is(err, ErrUnknownRole)
}

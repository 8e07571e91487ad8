package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/imamik/swiftsetup/internal/config"
	"github.com/imamik/swiftsetup/internal/hosts"
	"github.com/imamik/swiftsetup/internal/orchestration"
	"github.com/imamik/swiftsetup/internal/provisioning"
	"github.com/imamik/swiftsetup/internal/remote"
	"github.com/imamik/swiftsetup/internal/templating"
	"github.com/imamik/swiftsetup/internal/ui/tui"
)

// Output formats accepted by Deploy.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// ErrAborted is returned when the operator declines the admin bootstrap.
var ErrAborted = errors.New("aborted by operator")

// DeployOptions holds the flags of the deploy command.
type DeployOptions struct {
	Role string
	// Group is the host group file; empty means the role name.
	Group       string
	Yes         bool
	DryRun      bool
	Output      string
	MetricsFile string
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newExecutor creates the remote executor for a run.
	newExecutor = func(session *remote.Session, log logrus.FieldLogger) remote.Executor {
		return remote.NewSSHExecutor(session, log)
	}

	// loadTimeouts reads connection timeouts from the environment.
	loadTimeouts = config.LoadTimeouts

	// confirmAdmin asks the operator before bootstrapping the admin host.
	confirmAdmin = func(ctx context.Context, host, location string) (bool, error) {
		confirmed := false
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Bootstrap admin host %s?", host)).
					Description(fmt.Sprintf("Creates the configuration repository %s and reboots the host", location)).
					Affirmative("Bootstrap").
					Negative("Cancel").
					Value(&confirmed),
			),
		).RunWithContext(ctx)
		return confirmed, err
	}

	// interactive reports whether prompts and the live view can be shown.
	interactive = isInteractiveTTY

	// runLive runs a deployment under the live progress view.
	runLive = tui.RunDeployTUI
)

// Deploy provisions the hosts of a group with a role.
//
// Local problems (unknown role, unreadable host list, bad config, missing
// SSH key, templates not rendered) are reported before any host is
// contacted. A failed deployment still prints its report and returns an
// error so the process exits non-zero.
func Deploy(ctx context.Context, opts *Options, dopts DeployOptions) error {
	log, err := newLogger(opts)
	if err != nil {
		return err
	}

	role, err := orchestration.ParseRole(dopts.Role)
	if err != nil {
		return err
	}
	group := dopts.Group
	if group == "" {
		group = role.String()
	}
	if dopts.Output == "" {
		dopts.Output = OutputText
	}
	if dopts.Output != OutputText && dopts.Output != OutputYAML {
		return fmt.Errorf("unsupported output format %q (valid: %s, %s)", dopts.Output, OutputText, OutputYAML)
	}

	hostList, err := hosts.Resolve(opts.baseDir(), group)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath())
	if err != nil {
		return err
	}
	settings, err := config.NewDeploySettings(cfg)
	if err != nil {
		return fmt.Errorf("invalid deploy settings: %w", err)
	}
	timeouts := loadTimeouts()

	metrics := provisioning.NewMetrics()
	observer := provisioning.NewObserver(log)

	if dopts.DryRun {
		orch := orchestration.New(settings, opts.baseDir(), nil, orchestration.WithObserver(observer))
		plan, err := orch.Plan(role)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, tui.RenderPlan(role.String(), hostList, plan))
		return nil
	}

	ready, err := templating.Initialized(opts.baseDir())
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("%w: %s is missing, run the template command first",
			provisioning.ErrTemplatesNotReady, templating.SentinelPath(opts.baseDir()))
	}

	if role == orchestration.Admin && !dopts.Yes && interactive() && len(hostList) == 1 {
		ok, err := confirmAdmin(ctx, hostList[0], settings.Repository.Location)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return ErrAborted
		}
	}

	session, err := remote.NewSession(settings, timeouts)
	if err != nil {
		return err
	}
	exec := newExecutor(session, log)
	defer func() {
		if cerr := exec.Close(); cerr != nil {
			log.WithError(cerr).Warn("failed to close connections")
		}
	}()

	var outcome *orchestration.Outcome
	var deployErr error
	deploy := func(ctx context.Context, obs provisioning.Observer) error {
		orch := orchestration.New(settings, opts.baseDir(), exec,
			orchestration.WithObserver(obs),
			orchestration.WithMetrics(metrics),
			orchestration.WithRebootGrace(timeouts.RebootGraceTime),
		)
		outcome, deployErr = orch.Deploy(ctx, role, hostList)
		return deployErr
	}

	if dopts.Output == OutputText && interactive() {
		plan, err := orchestration.New(settings, opts.baseDir(), nil, orchestration.WithObserver(observer)).Plan(role)
		if err != nil {
			return err
		}
		out := log.Out
		log.SetOutput(io.Discard)
		liveErr := runLive(ctx, role.String(), hostList, plan, deploy)
		log.SetOutput(out)
		if outcome == nil {
			return liveErr
		}
	} else {
		_ = deploy(ctx, observer) // captured in deployErr
	}

	report := newReport(outcome, deployErr)
	if err := printReport(report, dopts.Output); err != nil {
		return err
	}

	if dopts.MetricsFile != "" {
		if err := metrics.WriteTextfile(dopts.MetricsFile); err != nil {
			log.WithError(err).Warn("failed to write metrics file")
		}
	}

	if deployErr != nil {
		return deployErr
	}
	if !outcome.OK {
		return fmt.Errorf("deploy %s did not complete", role)
	}
	return nil
}

func newReport(out *orchestration.Outcome, err error) *tui.DeployReport {
	r := &tui.DeployReport{
		Role:       out.Role.String(),
		OK:         out.OK,
		State:      out.State.String(),
		Repository: out.Repository.String(),
		Duration:   out.Duration,
	}
	if err != nil {
		r.Error = err.Error()
	}

	hostNames := make([]string, 0, len(out.HostStates))
	for h := range out.HostStates {
		hostNames = append(hostNames, h)
	}
	sort.Strings(hostNames)
	for _, h := range hostNames {
		r.Hosts = append(r.Hosts, tui.HostReport{Host: h, State: out.HostStates[h].String()})
	}

	for _, s := range out.Stages {
		sr := tui.StageReport{Name: s.Name, Duration: s.Duration}
		for _, res := range s.Results.Failed() {
			if sr.Failed == nil {
				sr.Failed = make(map[string]string)
			}
			msg := res.Output
			if msg == "" && res.Err != nil {
				msg = res.Err.Error()
			}
			sr.Failed[res.Host] = msg
		}
		r.Stages = append(r.Stages, sr)
	}
	return r
}

func printReport(r *tui.DeployReport, format string) error {
	if format == OutputYAML {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	}
	fmt.Fprint(stdout, tui.RenderDeploy(r))
	return nil
}

// isInteractiveTTY returns true if stdout is connected to an interactive terminal.
func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

package orchestration

import (
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/swiftsetup/internal/config"
	"github.com/imamik/swiftsetup/internal/provisioning"
	"github.com/imamik/swiftsetup/internal/remote"
	"github.com/imamik/swiftsetup/internal/templating"
	testutil "github.com/imamik/swiftsetup/internal/testing"
)

func newOrchestrator(t *testing.T, b *testutil.ProjectBuilder, exec remote.Executor, opts ...Option) (*Orchestrator, string) {
	t.Helper()
	dir := b.Build(t)
	cfg, err := config.Load(filepath.Join(dir, testutil.ConfigFileName))
	require.NoError(t, err)
	settings, err := config.NewDeploySettings(cfg)
	require.NoError(t, err)

	log, _ := logtest.NewNullLogger()
	opts = append([]Option{WithObserver(provisioning.NewObserver(log))}, opts...)
	return New(settings, dir, exec, opts...), dir
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestDeploy_SentinelAbsentMakesNoRemoteCalls(t *testing.T) {
	t.Parallel()
	for _, role := range []Role{Admin, Proxy, Storage, Generic, SAIO} {
		t.Run(role.String(), func(t *testing.T) {
			t.Parallel()
			exec := testutil.NewMockExecutor()
			orch, _ := newOrchestrator(t, testutil.NewProjectBuilder(), exec)

			out, err := orch.Deploy(testutil.TestContext(t), role, []string{"h1"})

			require.Error(t, err)
			assert.ErrorIs(t, err, provisioning.ErrTemplatesNotReady)
			assert.True(t, IsPrecondition(err))
			assert.False(t, out.OK)
			assert.Equal(t, provisioning.Failed, out.State)
			assert.Empty(t, exec.Calls())
			assert.Zero(t, exec.Closed())
		})
	}
}

func TestDeploy_NoHosts(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor()
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	out, err := orch.Deploy(testutil.TestContext(t), Proxy, nil)

	assert.ErrorIs(t, err, provisioning.ErrNoHosts)
	assert.False(t, out.OK)
	assert.Empty(t, exec.Calls())
}

func TestDeploy_AdminNeedsExactlyOneHost(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor()
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	_, err := orch.Deploy(testutil.TestContext(t), Admin, []string{"a1", "a2"})

	assert.ErrorIs(t, err, provisioning.ErrInvalidHostCount)
	assert.Empty(t, exec.Calls())
}

func TestDeploy_NodeRoleSuccess(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor()
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)
	hosts := []string{"p1", "p2"}

	out, err := orch.Deploy(testutil.TestContext(t), Proxy, hosts)

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, provisioning.RoleProvisioned, out.State)
	assert.Equal(t, map[string]provisioning.RunState{
		"p1": provisioning.RoleProvisioned,
		"p2": provisioning.RoleProvisioned,
	}, out.HostStates)
	assert.Equal(t, templating.Templated, out.Repository)

	plan, err := orch.Plan(Proxy)
	require.NoError(t, err)
	assert.Equal(t, plan, exec.Intents())
	require.Len(t, out.Stages, len(plan))
	for _, c := range exec.Calls() {
		assert.Equal(t, hosts, c.Hosts)
		assert.True(t, c.Command.Sudo, c.Intent())
	}
	assert.Zero(t, exec.Closed())
}

func TestDeploy_NodeCommandsCarrySettings(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor()
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	_, err := orch.Deploy(testutil.TestContext(t), Storage, []string{"s1"})
	require.NoError(t, err)

	scripts := make(map[string]string)
	for _, c := range exec.Calls() {
		scripts[c.Intent()] = c.Command.Script
	}
	assert.Equal(t, "export DEBIAN_FRONTEND=noninteractive; apt-get upgrade -y -q", scripts[StageUpgrade])
	assert.Contains(t, scripts[StageFetchCanonical], "git://10.0.0.5/swift-setup.git")
	assert.Contains(t, scripts[StageSyncSubtrees], "cp -a /etc/swift-setup/common/. /")
	assert.Contains(t, scripts[StageSyncSubtrees], "cp -a /etc/swift-setup/storage/. /")
	assert.NotContains(t, scripts[StageSyncSubtrees], "/proxy/")
	assert.Contains(t, scripts[StageInstallPackages], "swift-object xfsprogs htop")
	assert.Contains(t, scripts[StageHoldPackages], "apt-mark hold swift python-swiftclient")
	assert.Contains(t, scripts[StageRuntimeDirs], NodeDir)
	assert.NotContains(t, scripts[StageRuntimeDirs], HourlyStatsDir)
	assert.Equal(t, "swift-init all restart", scripts[StageClusterServices])
}

func TestDeploy_StageFailureStopsLaterStages(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor().FailWhen(StageFetchCanonical, "s2")
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	out, err := orch.Deploy(testutil.TestContext(t), Storage, []string{"s1", "s2", "s3"})

	require.Error(t, err)
	assert.ErrorIs(t, err, provisioning.ErrRemoteCommand)
	assert.False(t, out.OK)
	assert.Equal(t, provisioning.Failed, out.State)

	intents := exec.Intents()
	assert.Equal(t, StageFetchCanonical, intents[len(intents)-1])
	assert.False(t, contains(intents, StageSyncSubtrees))

	rerrs := provisioning.RemoteErrors(err)
	require.Len(t, rerrs, 1)
	assert.Equal(t, "s2", rerrs[0].Host)
	assert.Equal(t, StageFetchCanonical, rerrs[0].Intent)

	assert.Equal(t, provisioning.Failed, out.HostStates["s2"])
	assert.Equal(t, provisioning.CommonProvisioned, out.HostStates["s1"])
	assert.Zero(t, exec.Closed())
}

func TestDeploy_CommonFailure(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor().FailWhen(StageKeyrings, "g1")
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	out, err := orch.Deploy(testutil.TestContext(t), Generic, []string{"g1", "g2"})

	require.Error(t, err)
	assert.Equal(t, []string{StageRefreshIndex, StageUpgrade, StageKeyrings}, exec.Intents())
	assert.Equal(t, provisioning.Failed, out.HostStates["g1"])
	assert.Equal(t, provisioning.NotStarted, out.HostStates["g2"])
}

func TestDeploy_OSServiceRestartFailure(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor().FailWhen(StageOSServices, "x1")
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	_, err := orch.Deploy(testutil.TestContext(t), SAIO, []string{"x1"})

	assert.ErrorIs(t, err, provisioning.ErrServiceRestart)
	assert.False(t, contains(exec.Intents(), StageClusterServices))
}

func TestDeploy_AdminBootstrap(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor()
	orch, dir := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	out, err := orch.Deploy(testutil.TestContext(t), Admin, []string{"10.0.0.5"})

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, templating.Bootstrapped, out.Repository)

	plan, err := orch.Plan(Admin)
	require.NoError(t, err)
	assert.Equal(t, plan, exec.Intents())
	assert.Equal(t, StageReboot, plan[len(plan)-1])

	var push *remote.Upload
	for _, c := range exec.Calls() {
		if c.Upload != nil {
			push = c.Upload
		}
	}
	require.NotNil(t, push)
	assert.Equal(t, filepath.Join(dir, templating.TemplateDir), push.LocalDir)
	assert.Equal(t, "/srv/swift-setup.git", push.RemoteDir)
	assert.Equal(t, []string{templating.SentinelName}, push.Exclude)
}

func TestDeploy_AdminAlreadyProvisioned(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor().RespondWhen(StageCreateRepository,
		remote.Result{ExitStatus: ExitRepositoryExists, Output: "exists"}, "admin1")
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	out, err := orch.Deploy(testutil.TestContext(t), Admin, []string{"admin1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, provisioning.ErrAlreadyProvisioned)
	assert.NotErrorIs(t, err, provisioning.ErrRepositoryInit)
	assert.False(t, out.OK)

	intents := exec.Intents()
	assert.Equal(t, StageCreateRepository, intents[len(intents)-1])
	for _, stage := range []string{StagePushTemplates, StageInitRepository, StageCloneCanonical, StageReboot} {
		assert.False(t, contains(intents, stage), stage)
	}
	assert.Equal(t, 1, exec.Closed())
}

func TestDeploy_AdminCreateFailure(t *testing.T) {
	t.Parallel()
	exec := testutil.NewMockExecutor().FailWhen(StageCreateRepository, "admin1")
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

	_, err := orch.Deploy(testutil.TestContext(t), Admin, []string{"admin1"})

	assert.ErrorIs(t, err, provisioning.ErrRepositoryInit)
	assert.NotErrorIs(t, err, provisioning.ErrAlreadyProvisioned)
	assert.Equal(t, 1, exec.Closed())
}

func TestDeploy_AdminFailureKinds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		stage string
		kind  error
	}{
		{StagePushTemplates, provisioning.ErrUpload},
		{StageInitRepository, provisioning.ErrRepositoryInit},
		{StageVerifyRepository, provisioning.ErrRepositoryInit},
		{StageAdminServices, provisioning.ErrServiceRestart},
		{StageCloneCanonical, provisioning.ErrRemoteCommand},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			t.Parallel()
			exec := testutil.NewMockExecutor().FailWhen(tt.stage, "admin1")
			orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec)

			out, err := orch.Deploy(testutil.TestContext(t), Admin, []string{"admin1"})

			assert.ErrorIs(t, err, tt.kind)
			assert.False(t, out.OK)
			assert.False(t, contains(exec.Intents(), StageReboot))
			assert.Equal(t, 1, exec.Closed())
		})
	}
}

func TestDeploy_RecordsRunMetrics(t *testing.T) {
	t.Parallel()
	metrics := provisioning.NewMetrics()
	exec := testutil.NewMockExecutor()
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder().WithSentinel(), exec, WithMetrics(metrics))

	_, err := orch.Deploy(testutil.TestContext(t), Generic, []string{"g1"})
	require.NoError(t, err)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "swiftsetup_deploy_runs_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.InDelta(t, 1, f.GetMetric()[0].GetCounter().GetValue(), 0)
		}
	}
	assert.True(t, found)
}

func TestPlan(t *testing.T) {
	t.Parallel()
	orch, _ := newOrchestrator(t, testutil.NewProjectBuilder(), testutil.NewMockExecutor())

	for _, role := range []Role{Proxy, Storage, Generic, SAIO} {
		plan, err := orch.Plan(role)
		require.NoError(t, err)
		assert.Equal(t, []string{StageRefreshIndex, StageUpgrade, StageKeyrings, StageGeneralTools}, plan[:4])
		assert.Equal(t, StageClusterServices, plan[len(plan)-1])
	}

	_, err := orch.Plan(Role(99))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

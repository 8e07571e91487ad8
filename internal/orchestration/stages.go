package orchestration

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/imamik/swiftsetup/internal/config"
	"github.com/imamik/swiftsetup/internal/provisioning"
	"github.com/imamik/swiftsetup/internal/remote"
	"github.com/imamik/swiftsetup/internal/templating"
)

// Stage names, as reported in outcomes, logs and metrics.
const (
	StageRefreshIndex     = "refresh package index"
	StageUpgrade          = "upgrade packages"
	StageKeyrings         = "install keyrings"
	StageGeneralTools     = "install general tools"
	StageAdminPackages    = "install admin packages"
	StageCreateRepository = "create repository"
	StagePushTemplates    = "push templates"
	StageOwnRepository    = "fix repository ownership"
	StageInitRepository   = "initialise repository"
	StageVerifyRepository = "verify repository"
	StageCloneCanonical   = "clone canonical tree"
	StageSyncSubtrees     = "sync subtrees"
	StageInstallPackages  = "install packages"
	StageAdminServices    = "restart admin services"
	StageReboot           = "reboot"
	StageServiceAccount   = "ensure service account"
	StageFetchCanonical   = "fetch canonical tree"
	StageHoldPackages     = "hold packages"
	StageRuntimeDirs      = "prepare runtime directories"
	StageOSServices       = "restart OS services"
	StageClusterServices  = "start cluster services"
)

func sudoStep(name string, kind error, script string) *provisioning.RemoteStep {
	return &provisioning.RemoteStep{
		StageName: name,
		Kind:      kind,
		Command:   remote.Command{Intent: name, Script: script, Sudo: true},
	}
}

func userStep(name string, kind error, script string) *provisioning.RemoteStep {
	return &provisioning.RemoteStep{
		StageName: name,
		Kind:      kind,
		Command:   remote.Command{Intent: name, Script: script},
	}
}

// commonPhases refreshes and upgrades the system and installs the tools every
// node carries.
func commonPhases(s *config.DeploySettings) []provisioning.Phase {
	return []provisioning.Phase{
		sudoStep(StageRefreshIndex, nil, RefreshIndexCommand()),
		sudoStep(StageUpgrade, nil, UpgradeCommand(s.AptOptions)),
		sudoStep(StageKeyrings, nil, InstallCommand(s.AptOptions, s.Packages.Keyrings)),
		sudoStep(StageGeneralTools, nil, InstallCommand(s.AptOptions, s.Packages.GeneralTools)),
	}
}

// nodePhases is the pipeline for every role but admin.
func nodePhases(role Role, s *config.DeploySettings) []provisioning.Phase {
	spec := nodeSpecs[role]
	pkgs := Packages(role, s.Packages)
	canonical := s.Repository.CanonicalPath

	return []provisioning.Phase{
		sudoStep(StageServiceAccount, nil, EnsureUserCommand(s.ServiceUser)),
		sudoStep(StageFetchCanonical, nil, CloneOrPullCommand(s.Repository.URL, canonical)),
		sudoStep(StageSyncSubtrees, nil, SyncCommand(canonical, "/", spec.subtrees)),
		sudoStep(StageInstallPackages, nil, InstallCommand(s.AptOptions, pkgs)),
		sudoStep(StageHoldPackages, nil, HoldCommand(pkgs)),
		sudoStep(StageRuntimeDirs, nil, RuntimeDirsCommand(s.ServiceUser, spec.dirs)),
		sudoStep(StageOSServices, provisioning.ErrServiceRestart, RestartServicesCommand(s.OSServices)),
		sudoStep(StageClusterServices, nil, s.SwiftInitCommand),
	}
}

// adminPhases publishes the rendered template tree as the canonical
// repository and converts the host into the admin node. The create step
// stops everything after it when the repository already exists.
func adminPhases(s *config.DeploySettings, baseDir string, rebootGrace time.Duration) []provisioning.Phase {
	repo := s.Repository

	create := sudoStep(StageCreateRepository, provisioning.ErrRepositoryInit, CreateRepositoryCommand(repo.Location))
	create.Check = alreadyProvisioned(StageCreateRepository)

	push := &provisioning.RemoteStep{
		StageName: StagePushTemplates,
		Kind:      provisioning.ErrUpload,
		Upload: &remote.Upload{
			Intent:    StagePushTemplates,
			LocalDir:  filepath.Join(baseDir, templating.TemplateDir),
			RemoteDir: repo.Location,
			Exclude:   []string{templating.SentinelName},
			Sudo:      true,
		},
	}

	return []provisioning.Phase{
		sudoStep(StageAdminPackages, nil, InstallCommand(s.AptOptions, s.Packages.Admin)),
		create,
		push,
		sudoStep(StageOwnRepository, provisioning.ErrRepositoryInit, OwnRepositoryCommand(s.SSHUser, repo.Location)),
		userStep(StageInitRepository, provisioning.ErrRepositoryInit, InitRepositoryCommand(repo.Location)),
		userStep(StageVerifyRepository, provisioning.ErrRepositoryInit, VerifyRepositoryCommand(repo.Location)),
		sudoStep(StageCloneCanonical, nil, CloneOrPullCommand(repo.Location, repo.CanonicalPath)),
		sudoStep(StageSyncSubtrees, nil, SyncCommand(repo.CanonicalPath, "/", Subtrees(Admin))),
		sudoStep(StageInstallPackages, nil, InstallCommand(s.AptOptions, Packages(Admin, s.Packages))),
		sudoStep(StageAdminServices, provisioning.ErrServiceRestart, RestartServicesCommand(s.AdminServices)),
		sudoStep(StageReboot, nil, RebootCommand(rebootGrace)),
	}
}

// alreadyProvisioned turns the exists exit status of the create step into
// ErrAlreadyProvisioned.
func alreadyProvisioned(intent string) func(remote.Results) error {
	return func(results remote.Results) error {
		var result *multierror.Error
		for _, r := range results.Failed() {
			if r.ExitStatus == ExitRepositoryExists {
				result = multierror.Append(result, &provisioning.RemoteError{
					Kind:   provisioning.ErrAlreadyProvisioned,
					Intent: intent,
					Host:   r.Host,
					Output: r.Output,
					Err:    r.Err,
				})
			}
		}
		return result.ErrorOrNil()
	}
}

// phaseNames lists the names of phases in order.
func phaseNames(phases []provisioning.Phase) []string {
	out := make([]string, len(phases))
	for i, p := range phases {
		out[i] = p.Name()
	}
	return out
}

func (r Role) validate() error {
	if r == Admin {
		return nil
	}
	if _, ok := nodeSpecs[r]; !ok {
		return fmt.Errorf("%w %v", ErrUnknownRole, r)
	}
	return nil
}

package orchestration

import (
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/imamik/swiftsetup/internal/remote"
)

// ExitRepositoryExists is the exit status of CreateRepositoryCommand when the
// repository directory is already present.
const ExitRepositoryExists = 3

const gitIdentity = "-c user.name=swiftsetup -c user.email=swiftsetup@localhost"

func quoteAll(words []string) string {
	q := make([]string, len(words))
	for i, w := range words {
		q[i] = remote.ShellQuote(w)
	}
	return strings.Join(q, " ")
}

func joinOpts(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// RefreshIndexCommand refreshes the package index bypassing HTTP caches.
func RefreshIndexCommand() string {
	return "apt-get update -qq -o Acquire::http::No-Cache=True"
}

// UpgradeCommand upgrades installed packages. aptOptions is used verbatim.
func UpgradeCommand(aptOptions string) string {
	return "export DEBIAN_FRONTEND=noninteractive; " + joinOpts("apt-get upgrade", aptOptions)
}

// InstallCommand installs packages. aptOptions is used verbatim.
func InstallCommand(aptOptions string, packages []string) string {
	return "export DEBIAN_FRONTEND=noninteractive; " + joinOpts("apt-get install", aptOptions, quoteAll(packages))
}

// HoldCommand pins packages at their installed version.
func HoldCommand(packages []string) string {
	return joinOpts("apt-mark hold", quoteAll(packages))
}

// EnsureUserCommand creates a system account unless it already exists.
func EnsureUserCommand(user string) string {
	u := remote.ShellQuote(user)
	return fmt.Sprintf("id -u %s >/dev/null 2>&1 || useradd --system --user-group --no-create-home --shell /bin/false %s", u, u)
}

// CloneOrPullCommand clones src into dst, or fast-forwards an existing clone.
func CloneOrPullCommand(src, dst string) string {
	d := remote.ShellQuote(dst)
	return fmt.Sprintf("if [ -d %s/.git ]; then git -C %s pull -q --ff-only; else mkdir -p %s && git -c safe.directory='*' clone -q %s %s; fi",
		d, d, remote.ShellQuote(path.Dir(dst)), remote.ShellQuote(src), d)
}

// SyncCommand copies each subtree of canonical onto root, in order. A path
// present in several subtrees ends up with the content of the last one.
func SyncCommand(canonical, root string, subtrees []string) string {
	lines := []string{"set -e"}
	r := remote.ShellQuote(strings.TrimSuffix(root, "/") + "/")
	for _, s := range subtrees {
		src := remote.ShellQuote(path.Join(canonical, s))
		lines = append(lines,
			fmt.Sprintf("[ -d %s ] || { echo 'missing subtree %s' >&2; exit 1; }", src, s),
			fmt.Sprintf("cp -a %s/. %s", src, r),
		)
	}
	return strings.Join(lines, "\n")
}

// RuntimeDirsCommand creates dirs and hands them to owner.
func RuntimeDirsCommand(owner string, dirs []string) string {
	d := quoteAll(dirs)
	o := remote.ShellQuote(owner)
	return fmt.Sprintf("mkdir -p %s && chown -R %s:%s %s", d, o, o, d)
}

// RestartServicesCommand restarts services one after the other and stops at
// the first failure.
func RestartServicesCommand(services []string) string {
	cmds := make([]string, len(services))
	for i, s := range services {
		cmds[i] = "service " + remote.ShellQuote(s) + " restart"
	}
	return strings.Join(cmds, " && ")
}

// CreateRepositoryCommand atomically creates the repository directory. It
// exits with ExitRepositoryExists when the directory is already there.
func CreateRepositoryCommand(location string) string {
	l := remote.ShellQuote(location)
	return fmt.Sprintf("mkdir -p %s && { mkdir %s 2>/dev/null || { [ -e %s ] && exit %d; exit 1; }; }",
		remote.ShellQuote(path.Dir(location)), l, l, ExitRepositoryExists)
}

// OwnRepositoryCommand hands the repository to owner.
func OwnRepositoryCommand(owner, location string) string {
	return fmt.Sprintf("chown -R %s: %s", remote.ShellQuote(owner), remote.ShellQuote(location))
}

// InitRepositoryCommand commits the pushed tree as the initial snapshot and
// exports it over the git daemon.
func InitRepositoryCommand(location string) string {
	l := remote.ShellQuote(location)
	return fmt.Sprintf("cd %s && git init -q && git add -A && git %s commit -q -m 'Initial configuration snapshot' && touch .git/git-daemon-export-ok",
		l, gitIdentity)
}

// VerifyRepositoryCommand fails unless location holds a committed repository.
func VerifyRepositoryCommand(location string) string {
	return fmt.Sprintf("git -C %s rev-parse -q --verify HEAD >/dev/null", remote.ShellQuote(location))
}

// RebootCommand schedules a reboot after grace and returns immediately.
func RebootCommand(grace time.Duration) string {
	secs := int(math.Ceil(grace.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("nohup sh -c 'sleep %d; reboot' >/dev/null 2>&1 &", secs)
}

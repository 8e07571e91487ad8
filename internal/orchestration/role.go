package orchestration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/swiftsetup/internal/config"
)

// ErrUnknownRole is returned by ParseRole for names outside the role set.
var ErrUnknownRole = errors.New("unknown role")

// Role selects the pipeline and the configuration subtrees of a deployment.
type Role int

// Roles, in the order they are usually deployed.
const (
	Admin Role = iota
	Proxy
	Storage
	Generic
	SAIO
)

var roleNames = [...]string{
	Admin:   "admin",
	Proxy:   "proxy",
	Storage: "storage",
	Generic: "generic",
	SAIO:    "saio",
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseRole converts a role name, case-insensitively.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q (valid: %s)", ErrUnknownRole, s, strings.Join(RoleNames(), ", "))
}

// RoleNames returns every role name.
func RoleNames() []string {
	return append([]string(nil), roleNames[:]...)
}

// Runtime directories created on every node.
const (
	CacheDir       = "/var/cache/swift"
	LogDir         = "/var/log/swift"
	HourlyStatsDir = "/var/log/swift/hourly"
	NodeDir        = "/srv/node"
)

// Canonical tree subtrees.
const (
	SubtreeCommon  = "common"
	SubtreeAdmin   = "admin"
	SubtreeProxy   = "proxy"
	SubtreeStorage = "storage"
)

// nodeSpec describes the node pipeline of one role.
type nodeSpec struct {
	// subtrees are synced onto the root in order; later ones win.
	subtrees []string
	packages func(p config.Packages) [][]string
	dirs     []string
}

var nodeSpecs = map[Role]nodeSpec{
	Generic: {
		subtrees: []string{SubtreeCommon},
		packages: func(p config.Packages) [][]string { return [][]string{p.Generic, p.Others} },
		dirs:     []string{CacheDir, LogDir},
	},
	Proxy: {
		subtrees: []string{SubtreeCommon, SubtreeProxy},
		packages: func(p config.Packages) [][]string { return [][]string{p.Generic, p.Proxy, p.Others} },
		dirs:     []string{CacheDir, LogDir, HourlyStatsDir},
	},
	Storage: {
		subtrees: []string{SubtreeCommon, SubtreeStorage},
		packages: func(p config.Packages) [][]string { return [][]string{p.Generic, p.Storage, p.Others} },
		dirs:     []string{CacheDir, LogDir, NodeDir},
	},
	SAIO: {
		subtrees: []string{SubtreeCommon, SubtreeProxy, SubtreeStorage},
		packages: func(p config.Packages) [][]string { return [][]string{p.Generic, p.Proxy, p.Storage, p.Others} },
		dirs:     []string{CacheDir, LogDir, HourlyStatsDir, NodeDir},
	},
}

// Subtrees returns the canonical subtrees synced for role, in sync order.
func Subtrees(role Role) []string {
	if role == Admin {
		return []string{SubtreeCommon, SubtreeAdmin}
	}
	return append([]string(nil), nodeSpecs[role].subtrees...)
}

// Packages returns the deduplicated package set installed for role.
func Packages(role Role, p config.Packages) []string {
	if role == Admin {
		return dedupe(p.Generic, p.Admin)
	}
	spec, ok := nodeSpecs[role]
	if !ok {
		return nil
	}
	return dedupe(spec.packages(p)...)
}

func dedupe(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, s := range l {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

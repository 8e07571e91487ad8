package config

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// VersioningSection holds the admin repository location and address.
const VersioningSection = "versioning"

// Defaults for deployment settings that the configuration may omit.
const (
	DefaultParallelism      = 5
	DefaultSSHPort          = 22
	DefaultServiceUser      = "swift"
	DefaultCanonicalPath    = "/etc/swift-setup"
	DefaultSwiftInitCommand = "swift-init all restart"
)

var (
	defaultKeyrings = []string{"ubuntu-cloud-keyring"}

	defaultGeneralTools = []string{
		"python-software-properties", "patch", "debconf", "bonnie++",
		"dstat", "ethtool", "python-configobj", "curl", "subversion",
		"git-core", "iptraf", "htop", "syslog-ng", "nmon", "strace",
		"iotop", "debsums", "python-pip", "snmpd", "snmp", "bsd-mailx",
		"xfsprogs", "ntp", "snmp-mibs-downloader", "exim4",
	}

	defaultOSServices    = []string{"syslog-ng", "exim4", "ntp", "snmpd"}
	defaultAdminServices = []string{"git-daemon-sysvinit", "apache2"}
	defaultAdminPackages = []string{"git-core", "git-daemon-sysvinit", "apache2"}
)

// Packages groups the package sets installed on nodes. Names are opaque.
type Packages struct {
	Keyrings     []string
	GeneralTools []string
	Generic      []string
	Proxy        []string
	Storage      []string
	Admin        []string
	Others       []string
}

// Repository locates the canonical configuration repository.
type Repository struct {
	// Location is the repository directory on the admin host.
	Location string
	// AdminHost is the address other nodes clone from.
	AdminHost string
	// URL is the clone URL used by non-admin nodes.
	URL string
	// CanonicalPath is where every node keeps its working clone.
	CanonicalPath string
}

// DeploySettings is the typed view of the keys consumed by deployments.
type DeploySettings struct {
	SSHUser     string
	SSHKeyPath  string
	SSHPort     int
	Parallelism int

	// AptOptions is applied verbatim to every apt-get invocation.
	AptOptions string

	ServiceUser      string
	OSServices       []string
	AdminServices    []string
	SwiftInitCommand string

	Packages   Packages
	Repository Repository
}

// NewDeploySettings extracts deployment settings from the merged common view
// and the versioning section of cfg.
func NewDeploySettings(cfg *Config) (*DeploySettings, error) {
	common, err := cfg.Merged(CommonSection, AllowMissingSection())
	if err != nil {
		return nil, err
	}
	versioning, err := cfg.Merged(VersioningSection)
	if err != nil {
		return nil, err
	}

	s := &DeploySettings{
		AptOptions:       common.Get("apt_options", ""),
		ServiceUser:      common.Get("service_user", DefaultServiceUser),
		OSServices:       listOr(common, "os_services", defaultOSServices),
		AdminServices:    listOr(common, "admin_services", defaultAdminServices),
		SwiftInitCommand: common.Get("swift_init_command", DefaultSwiftInitCommand),
		Packages: Packages{
			Keyrings:     listOr(common, "keyring_packages", defaultKeyrings),
			GeneralTools: listOr(common, "general_tools", defaultGeneralTools),
			Admin:        listOr(common, "swift_admin", defaultAdminPackages),
			Others:       common.List("swift_others"),
		},
	}

	required := []struct {
		key string
		dst *string
	}{
		{"ssh_user", &s.SSHUser},
		{"ssh_key", &s.SSHKeyPath},
	}
	for _, r := range required {
		v, err := requireIn(common, CommonSection, r.key)
		if err != nil {
			return nil, err
		}
		*r.dst = v
	}

	for _, r := range []struct {
		key string
		dst *[]string
	}{
		{"swift_generic", &s.Packages.Generic},
		{"swift_proxy", &s.Packages.Proxy},
		{"swift_storage", &s.Packages.Storage},
	} {
		v, err := requireIn(common, CommonSection, r.key)
		if err != nil {
			return nil, err
		}
		*r.dst = splitList(v)
	}

	if s.SSHPort, err = intOr(common, "ssh_port", DefaultSSHPort); err != nil {
		return nil, err
	}
	if s.Parallelism, err = intOr(common, "parallelism", DefaultParallelism); err != nil {
		return nil, err
	}
	if s.Parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be at least 1, got %d", s.Parallelism)
	}

	if s.Repository, err = newRepository(versioning); err != nil {
		return nil, err
	}
	return s, nil
}

func newRepository(versioning Section) (Repository, error) {
	location, err := requireIn(versioning, VersioningSection, "repo_location")
	if err != nil {
		return Repository{}, err
	}
	adminHost, err := requireIn(versioning, VersioningSection, "admin_ip")
	if err != nil {
		return Repository{}, err
	}
	if !path.IsAbs(location) {
		return Repository{}, fmt.Errorf("repo_location must be an absolute path, got %q", location)
	}

	return Repository{
		Location:      path.Clean(location),
		AdminHost:     adminHost,
		URL:           versioning.Get("repo_url", fmt.Sprintf("git://%s/%s", adminHost, path.Base(location))),
		CanonicalPath: path.Clean(versioning.Get("canonical_path", DefaultCanonicalPath)),
	}, nil
}

func requireIn(s Section, section, key string) (string, error) {
	v, ok := s[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", &LookupError{Section: section, Key: key}
	}
	return strings.TrimSpace(v), nil
}

func listOr(s Section, key string, def []string) []string {
	if v := s.List(key); len(v) > 0 {
		return v
	}
	out := make([]string, len(def))
	copy(out, def)
	return out
}

func intOr(s Section, key string, def int) (int, error) {
	raw := strings.TrimSpace(s.Get(key, ""))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

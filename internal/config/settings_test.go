package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployConfig = `
[common]
ssh_user = deploy
ssh_key = /home/deploy/.ssh/id_rsa
apt_options = -y --force-yes
swift_generic = swift python-swift
swift_proxy = swift-proxy memcached
swift_storage = swift-account swift-container swift-object
swift_admin = git-daemon-sysvinit apache2
swift_others = xfsdump

[versioning]
repo_location = /srv/git/swift-setup
admin_ip = 10.0.0.5
`

func TestNewDeploySettings(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, deployConfig))
	require.NoError(t, err)

	s, err := NewDeploySettings(cfg)
	require.NoError(t, err)

	assert.Equal(t, "deploy", s.SSHUser)
	assert.Equal(t, "/home/deploy/.ssh/id_rsa", s.SSHKeyPath)
	assert.Equal(t, DefaultSSHPort, s.SSHPort)
	assert.Equal(t, DefaultParallelism, s.Parallelism)
	assert.Equal(t, "-y --force-yes", s.AptOptions)
	assert.Equal(t, DefaultServiceUser, s.ServiceUser)

	assert.Equal(t, []string{"swift", "python-swift"}, s.Packages.Generic)
	assert.Equal(t, []string{"swift-proxy", "memcached"}, s.Packages.Proxy)
	assert.Equal(t, []string{"xfsdump"}, s.Packages.Others)
	assert.Equal(t, []string{"ubuntu-cloud-keyring"}, s.Packages.Keyrings)
	assert.Contains(t, s.Packages.GeneralTools, "syslog-ng")

	assert.Equal(t, "/srv/git/swift-setup", s.Repository.Location)
	assert.Equal(t, "10.0.0.5", s.Repository.AdminHost)
	assert.Equal(t, "git://10.0.0.5/swift-setup", s.Repository.URL)
	assert.Equal(t, DefaultCanonicalPath, s.Repository.CanonicalPath)
}

func TestNewDeploySettings_MissingKeys(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		section string
		key     string
	}{
		{
			name:    "no ssh user",
			content: "[common]\nssh_key = k\n[versioning]\nrepo_location = /r\nadmin_ip = a\n",
			section: CommonSection,
			key:     "ssh_user",
		},
		{
			name:    "no storage packages",
			content: "[common]\nssh_user = u\nssh_key = k\nswift_generic = g\nswift_proxy = p\n[versioning]\nrepo_location = /r\nadmin_ip = a\n",
			section: CommonSection,
			key:     "swift_storage",
		},
		{
			name:    "no admin address",
			content: "[common]\nssh_user = u\nssh_key = k\nswift_generic = g\nswift_proxy = p\nswift_storage = s\n[versioning]\nrepo_location = /r\n",
			section: VersioningSection,
			key:     "admin_ip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Load(writeConfig(t, tt.content))
			require.NoError(t, err)

			_, err = NewDeploySettings(cfg)
			require.Error(t, err)

			var lookupErr *LookupError
			require.True(t, errors.As(err, &lookupErr))
			assert.Equal(t, tt.section, lookupErr.Section)
			assert.Equal(t, tt.key, lookupErr.Key)
		})
	}
}

func TestNewDeploySettings_AdminDefaults(t *testing.T) {
	t.Parallel()
	content := "[common]\nssh_user = u\nssh_key = k\nswift_generic = g\nswift_proxy = p\nswift_storage = s\n" +
		"[versioning]\nrepo_location = /r\nadmin_ip = a\n"
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	s, err := NewDeploySettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"git-core", "git-daemon-sysvinit", "apache2"}, s.Packages.Admin)
	assert.Equal(t, []string{"git-daemon-sysvinit", "apache2"}, s.AdminServices)
	assert.Nil(t, s.Packages.Others)

	s.Packages.Admin[0] = "changed"
	again, err := NewDeploySettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, "git-core", again.Packages.Admin[0])
}

func TestNewDeploySettings_MissingVersioningSection(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, "[common]\nssh_user = u\n"))
	require.NoError(t, err)

	_, err = NewDeploySettings(cfg)
	assert.ErrorIs(t, err, ErrConfigLookup)
}

func TestNewDeploySettings_Overrides(t *testing.T) {
	t.Parallel()
	content := deployConfig + "repo_url = git://admin.example/config\ncanonical_path = /opt/swift-config/\n"
	content += "\n[common]\nparallelism = 12\nssh_port = 2222\nos_services = rsyslog\n"
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	s, err := NewDeploySettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, 12, s.Parallelism)
	assert.Equal(t, 2222, s.SSHPort)
	assert.Equal(t, []string{"rsyslog"}, s.OSServices)
	assert.Equal(t, "git://admin.example/config", s.Repository.URL)
	assert.Equal(t, "/opt/swift-config", s.Repository.CanonicalPath)
}

func TestNewDeploySettings_InvalidParallelism(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, deployConfig+"\n[common]\nparallelism = zero\n"))
	require.NoError(t, err)

	_, err = NewDeploySettings(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parallelism")
}

func TestNewDeploySettings_RelativeRepoLocation(t *testing.T) {
	t.Parallel()
	content := "[common]\nssh_user = u\nssh_key = k\nswift_generic = g\nswift_proxy = p\nswift_storage = s\n[versioning]\nrepo_location = repo\nadmin_ip = a\n"
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	_, err = NewDeploySettings(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute path")
}

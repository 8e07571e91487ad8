package templating

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/swiftsetup/internal/config"
)

const fullConfig = `
[common]
ssh_user = deploy
email_addr = ops@example.com
pager_addr = pager@example.com
outgoing_domain = example.com
smarthost = smtp.example.com
relay_net = 10.0.0.0/8
syslog_ip = 10.0.0.9

[swift_common]
swift_hash = 5f3a9c
memcache_maxmem = 1024
sim_connections = 4096
informant_ip = 10.0.0.7

[keystone]
keystone_ip = 10.0.0.2
keystone_port = 35357
keystone_auth_proto = https
keystone_auth_port = 5000
keystone_auth_uri = https://10.0.0.2:5000/v2.0
keystone_admin_tenant = service
keystone_admin_user = swift
keystone_admin_key = s3cret
`

// newTree creates a base dir with a config file and a template tree holding
// every catalog file.
func newTree(t *testing.T, cfg string) (configPath, baseDir string) {
	t.Helper()
	baseDir = t.TempDir()
	configPath = filepath.Join(baseDir, "swift-setup.conf")
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))

	for _, entry := range Catalog {
		path := entry.path(filepath.Join(baseDir, TemplateDir))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

		var body string
		for _, p := range entry.Placeholders {
			body += p + "=$" + p + "\n"
		}
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return configPath, baseDir
}

func TestNew_MissingTemplateDir(t *testing.T) {
	t.Parallel()
	baseDir := t.TempDir()
	configPath := filepath.Join(baseDir, "swift-setup.conf")
	require.NoError(t, os.WriteFile(configPath, []byte(fullConfig), 0o600))

	_, err := New(configPath, baseDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Contains(t, err.Error(), filepath.Join(baseDir, TemplateDir))
}

func TestNew_MissingConfig(t *testing.T) {
	t.Parallel()
	baseDir := t.TempDir()

	_, err := New(filepath.Join(baseDir, "absent.conf"), baseDir)
	assert.ErrorIs(t, err, config.ErrConfigMissing)
}

func TestSubstitute(t *testing.T) {
	t.Parallel()
	values := map[string]string{"SWIFT_HASH": "abc", "SYSLOG_IP": "10.1.1.1"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare token", "hash=$SWIFT_HASH\n", "hash=abc\n"},
		{"braced token", "dst ${SYSLOG_IP}:514", "dst 10.1.1.1:514"},
		{"unrequested token kept", "user=$SWIFT_USER ip=$SYSLOG_IP", "user=$SWIFT_USER ip=10.1.1.1"},
		{"unrequested braced kept", "${HOME}/bin", "${HOME}/bin"},
		{"escape kept", "pid $$ and $$SWIFT_HASH", "pid $$ and $$SWIFT_HASH"},
		{"longer identifier kept", "$SWIFT_HASHES", "$SWIFT_HASHES"},
		{"lowercase differs", "$swift_hash", "$swift_hash"},
		{"lone dollar", "cost: $5", "cost: $5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Substitute(tt.in, values))
		})
	}
}

func TestUpdate_LeavesOtherTokensUnchanged(t *testing.T) {
	t.Parallel()
	configPath, baseDir := newTree(t, fullConfig)
	engine, err := New(configPath, baseDir)
	require.NoError(t, err)

	file := filepath.Join(baseDir, TemplateDir, "common", "etc", "custom.sh")
	body := "#!/bin/sh\necho $SWIFT_HASH ${SMARTHOST} $1 $PATH ${UNKNOWN}\n"
	require.NoError(t, os.WriteFile(file, []byte(body), 0o755))

	require.NoError(t, engine.Update(file, []string{"SWIFT_HASH"}))

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho 5f3a9c ${SMARTHOST} $1 $PATH ${UNKNOWN}\n", string(got))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "file mode is preserved")
}

func TestUpdate_MissingRequestedKey(t *testing.T) {
	t.Parallel()
	configPath, baseDir := newTree(t, fullConfig)
	engine, err := New(configPath, baseDir)
	require.NoError(t, err)

	file := filepath.Join(baseDir, TemplateDir, "common", "etc", "aliases")
	before, err := os.ReadFile(file)
	require.NoError(t, err)

	err = engine.Update(file, []string{"EMAIL_ADDR", "NOT_CONFIGURED"})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigLookup)

	var lookupErr *config.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "not_configured", lookupErr.Key)

	after, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, before, after, "file untouched on lookup failure")
}

func TestUpdate_MissingFile(t *testing.T) {
	t.Parallel()
	configPath, baseDir := newTree(t, fullConfig)
	engine, err := New(configPath, baseDir)
	require.NoError(t, err)

	missing := filepath.Join(baseDir, TemplateDir, "nope.conf")
	err = engine.Update(missing, []string{"SWIFT_HASH"})
	require.Error(t, err)

	var ioErr *TemplateIOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, missing, ioErr.Path)
	assert.Equal(t, "read", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunAll_WritesSentinel(t *testing.T) {
	t.Parallel()
	configPath, baseDir := newTree(t, fullConfig)

	ok, err := Initialized(baseDir)
	require.NoError(t, err)
	assert.False(t, ok, "sentinel absent before RunAll")

	engine, err := New(configPath, baseDir)
	require.NoError(t, err)
	require.NoError(t, engine.RunAll())

	ok, err = Initialized(baseDir)
	require.NoError(t, err)
	assert.True(t, ok, "sentinel present after RunAll")

	info, err := os.Stat(SentinelPath(baseDir))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	proxy, err := os.ReadFile(filepath.Join(baseDir, TemplateDir, "proxy", "etc", "swift", "proxy-server.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(proxy), "KEYSTONE_AUTH_PROTO=https\n")
	assert.Contains(t, string(proxy), "INFORMANT_IP=10.0.0.7\n")
	assert.NotContains(t, string(proxy), "$")
}

func TestRunAll_FailureLeavesSentinelAbsent(t *testing.T) {
	t.Parallel()
	configPath, baseDir := newTree(t, "[common]\nswift_hash = abc\n")

	engine, err := New(configPath, baseDir)
	require.NoError(t, err)

	err = engine.RunAll()
	assert.ErrorIs(t, err, config.ErrConfigLookup)

	ok, err := Initialized(baseDir)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	t.Parallel()
	baseDir := t.TempDir()

	state, err := Status(baseDir)
	require.NoError(t, err)
	assert.Equal(t, Uninitialized, state)

	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, TemplateDir), 0o755))
	require.NoError(t, os.WriteFile(SentinelPath(baseDir), nil, 0o644))

	state, err = Status(baseDir)
	require.NoError(t, err)
	assert.Equal(t, Templated, state)
	assert.Equal(t, "templated", state.String())
}

func TestPlaceholders_Distinct(t *testing.T) {
	t.Parallel()
	names := Placeholders()
	seen := make(map[string]bool)
	for _, n := range names {
		assert.False(t, seen[n], "duplicate placeholder %s", n)
		seen[n] = true
	}
	assert.Contains(t, names, "SWIFT_HASH")
	assert.Len(t, Catalog, 8)
}

package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "swiftsetup", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, expected := range []string{"template", "deploy", "hosts", "status", "version"} {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), 5)
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	for _, name := range []string{"config", "base-dir", "log-level", "log-json"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, ".", cmd.PersistentFlags().Lookup("base-dir").DefValue)
}

func TestDeploy_Flags(t *testing.T) {
	cmd := Deploy(nil)

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"group", "g", ""},
		{"yes", "y", "false"},
		{"dry-run", "", "false"},
		{"output", "o", "text"},
		{"metrics-file", "", ""},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.name)
		require.NotNil(t, f, tt.name)
		assert.Equal(t, tt.shorthand, f.Shorthand, tt.name)
		assert.Equal(t, tt.def, f.DefValue, tt.name)
	}
	assert.Contains(t, cmd.Long, "admin, proxy, storage, generic, saio")
}

func TestDeploy_RequiresRole(t *testing.T) {
	cmd := Root()
	cmd.SetArgs([]string{"deploy", "--base-dir", t.TempDir()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "accepts 1 arg(s), received 0")
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	var buf bytes.Buffer
	cmd := Version()
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	assert.Equal(t, "swiftsetup 1.2.3\n  commit: abc123\n  built:  2026-01-01\n", buf.String())
}

package provisioning

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusObserver_Event(t *testing.T) {
	t.Parallel()
	log, hook := logtest.NewNullLogger()
	obs := NewObserver(log)

	obs.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   "common setup",
		Host:    "h1",
		Message: "starting",
		Fields:  map[string]string{"role": "proxy"},
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "starting", entry.Message)
	assert.Equal(t, "phase.started", entry.Data["event"])
	assert.Equal(t, "common setup", entry.Data["phase"])
	assert.Equal(t, "h1", entry.Data["host"])
	assert.Equal(t, "proxy", entry.Data["role"])
}

func TestLogrusObserver_FailuresLogAtErrorLevel(t *testing.T) {
	t.Parallel()
	log, hook := logtest.NewNullLogger()
	obs := NewObserver(log)

	LogPhaseFailed(obs, "install", errors.New("apt locked"))
	LogHostResult(obs, "install", "h2", false, "E: Could not get lock")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
	assert.Equal(t, "failed: apt locked", entries[0].Message)
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, "E: Could not get lock", entries[1].Data["output"])
}

func TestLogrusObserver_WithFields(t *testing.T) {
	t.Parallel()
	log, hook := logtest.NewNullLogger()
	obs := NewObserver(log).WithFields(map[string]string{"role": "storage"})

	obs.Printf("hello %s", "world")
	LogPhaseComplete(obs, "sync", 1500*time.Millisecond)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello world", entries[0].Message)
	assert.Equal(t, "storage", entries[0].Data["role"])
	assert.Equal(t, "completed in 1.5s", entries[1].Message)
}

func TestLogrusObserver_Progress(t *testing.T) {
	t.Parallel()
	log, hook := logtest.NewNullLogger()
	obs := NewObserver(log)

	obs.Progress("proxy", 1, 4)
	obs.Progress("proxy", 0, 0)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "[proxy] Progress: 1/4 (25%)", entries[0].Message)
	assert.Equal(t, "[proxy] Progress: 0/0", entries[1].Message)
}

func TestLogStateChange(t *testing.T) {
	t.Parallel()
	log, hook := logtest.NewNullLogger()

	LogStateChange(NewObserver(log), NotStarted, CommonProvisioned)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "NotStarted -> CommonProvisioned", entry.Message)
	assert.Equal(t, "CommonProvisioned", entry.Data["to"])
}

package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/pubsub"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.Equal(t,
		"2026-03-01T09:30:00 [WARN] [sim] Key rejected key=x mode=normal\n",
		format(ts, LevelWarn, CatSim, "Key rejected", "key", "x", "mode", "normal"))
	require.Equal(t,
		"2026-03-01T09:30:00 [DEBUG] [db] odd orphan=<missing>\n",
		format(ts, LevelDebug, CatDB, "odd", "orphan"))
}

func TestInitWriter_LevelsAndToggle(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	Debug(CatLesson, "started", "lesson", "hjkl")
	ErrorErr(CatDB, "write failed", errors.New("locked"))
	require.Contains(t, buf.String(), "[DEBUG] [lesson] started lesson=hjkl")
	require.Contains(t, buf.String(), "[ERROR] [db] write failed error=locked")

	buf.Reset()
	SetMinLevel(LevelWarn)
	Info(CatUI, "hidden")
	Warn(CatUI, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatUI, "muted")
	require.Empty(t, buf.String())
}

func TestNotInitializedIsSilent(t *testing.T) {
	install(nil)
	Error(CatSim, "nobody listens")
	require.Nil(t, NewListener(context.Background()))
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)
	Info(CatConfig, "loaded", "path", "config.yaml")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(data), "[INFO] [config] loaded path=config.yaml\n"))
}

func TestNewListener(t *testing.T) {
	cleanup := InitWriter(&bytes.Buffer{})
	defer cleanup()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener(ctx)
	require.NotNil(t, l)
	Warn(CatSession, "autosave slow")

	ev, ok := l.Listen()().(pubsub.Event[string])
	require.True(t, ok)
	require.Contains(t, ev.Payload, "[WARN] [session] autosave slow")
}

func TestEnabledFromEnv(t *testing.T) {
	for val, want := range map[string]bool{"": false, "0": false, "false": false, "1": true, "yes": true} {
		t.Setenv(DebugEnv, val)
		require.Equal(t, want, EnabledFromEnv(), "value %q", val)
	}
}

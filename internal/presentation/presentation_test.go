package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/testutil"
	"github.com/zjrosen/vimgym/internal/vim/command"
)

func TestFromModules(t *testing.T) {
	svc := testutil.Services(t, testutil.DrillCourse(t))
	mods := FromModules(svc.Registry.Modules(), svc.Tracker)
	require.Len(t, mods, 2)
	assert.Equal(t, "drills", mods[0].ID)
	assert.Equal(t, string(progress.StatusAvailable), mods[0].Status)
	assert.Equal(t, string(progress.StatusLocked), mods[1].Status)
	assert.Equal(t, []string{"drills"}, mods[1].Prerequisites)
	require.Len(t, mods[0].Lessons, 2)
	assert.Equal(t, 1, mods[0].Lessons[0].Exercises)
}

func TestFormatModulesText(t *testing.T) {
	svc := testutil.Services(t, testutil.DrillCourse(t))
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, false).FormatModules(FromModules(svc.Registry.Modules(), svc.Tracker)))
	assert.Contains(t, buf.String(), "1. Drills (drills) [available]")
	assert.Contains(t, buf.String(), "   [ ] drills/moves  moves")
}

func TestFromRun(t *testing.T) {
	sim := simulator.New("hello")
	keys, err := command.ParseSequence("x x")
	require.NoError(t, err)
	responses := sim.ExecuteCommandSequence(keys, false)

	run := FromRun(sim, keys, responses)
	assert.Equal(t, "llo", run.Content)
	assert.Equal(t, "normal", run.Mode)
	assert.True(t, run.Completed)
	assert.True(t, run.Modified)
	require.Len(t, run.Steps, 2)
	assert.Equal(t, "x", run.Steps[0].Key)
}

func TestFormatRunJSON(t *testing.T) {
	sim := simulator.New("abc")
	keys := []command.Token{"l"}
	run := FromRun(sim, keys, sim.ExecuteCommandSequence(keys, true))

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, true).FormatRun(run))
	var decoded RunDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, PositionDTO{Line: 0, Col: 1}, decoded.Cursor)
}

func TestFormatProgressText(t *testing.T) {
	svc := testutil.Services(t, testutil.DrillCourse(t))
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, false).FormatProgress(svc.Tracker.Summary()))
	assert.Contains(t, buf.String(), "Lessons:      0/3 (0%)")
}

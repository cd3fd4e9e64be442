package tutor

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/lesson"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/testutil"
	"github.com/zjrosen/vimgym/internal/ui/toaster"
	"github.com/zjrosen/vimgym/internal/vim/buffer"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func ctrl(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

// drain runs cmd and every command batched inside it.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func newTutor(t *testing.T, lessonID string) (Model, mode.Services) {
	t.Helper()
	svc := testutil.Services(t, testutil.DrillCourse(t))
	m, err := New(svc, "drills", lessonID, nil)
	require.NoError(t, err)
	return m, svc
}

func send(t *testing.T, c mode.Controller, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		c, cmd = c.Update(msg)
	}
	m, ok := c.(Model)
	require.True(t, ok)
	return m, cmd
}

func TestNew_UnknownLesson(t *testing.T) {
	svc := testutil.Services(t, testutil.DrillCourse(t))
	_, err := New(svc, "drills", "missing", nil)
	require.Error(t, err)
}

func TestTutor_CompletesLesson(t *testing.T) {
	m, svc := newTutor(t, "moves")

	m, _ = send(t, m, runes("l"))
	assert.False(t, m.Runner().Finished())
	assert.Equal(t, buffer.Position{Line: 0, Col: 1}, m.Runner().Simulator().Cursor())

	m, cmd := send(t, m, runes("l"))
	require.True(t, m.Runner().Finished())
	assert.Contains(t, m.Feedback(), "Lesson complete with 100%")
	assert.True(t, svc.Tracker.LessonCompleted("drills", "moves"))

	var toasts []string
	for _, msg := range drain(cmd) {
		if ts, ok := msg.(mode.ShowToastMsg); ok {
			toasts = append(toasts, ts.Message)
		}
	}
	require.NotEmpty(t, toasts)
	assert.True(t, strings.HasPrefix(toasts[0], "Achievement unlocked: "))
	assert.Contains(t, m.View(), "Lesson complete!")
}

func TestTutor_RecordFailureShowsToast(t *testing.T) {
	m, _ := newTutor(t, "moves")

	_, cmd := m.applied(lesson.Update{
		Response:  simulator.Response{Success: true},
		RecordErr: errors.New("disk full"),
	})
	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	ts, ok := msgs[0].(mode.ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, "Could not save your result: disk full", ts.Message)
	assert.Equal(t, toaster.StyleError, ts.Style)

	_, cmd = m.applied(lesson.Update{Response: simulator.Response{Success: true}})
	assert.Nil(t, cmd)
}

func TestTutor_KeysIgnoredOnceFinished(t *testing.T) {
	m, _ := newTutor(t, "moves")
	m, _ = send(t, m, runes("l"), runes("l"))
	require.True(t, m.Runner().Finished())

	m, cmd := send(t, m, runes("h"))
	assert.Nil(t, cmd)
	assert.Equal(t, 2, m.Runner().Simulator().Cursor().Col)
}

func TestTutor_NextAfterFinishOpensFollowingLesson(t *testing.T) {
	m, _ := newTutor(t, "moves")
	m, _ = send(t, m, runes("l"), runes("l"))

	_, cmd := send(t, m, ctrl(tea.KeyCtrlN))
	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	sw, ok := msgs[0].(mode.SwitchModeMsg)
	require.True(t, ok)
	assert.Equal(t, mode.ModeTutor, sw.Mode)
	assert.Equal(t, "drills", sw.ModuleID)
	assert.Equal(t, "deletes", sw.LessonID)
}

func TestTutor_NextIntoLockedModuleReturnsToMenu(t *testing.T) {
	m, svc := newTutor(t, "deletes")
	m, _ = send(t, m, runes("x"))
	require.True(t, m.Runner().Finished())
	// drills/moves is still open, so advanced stays locked.
	require.False(t, svc.Tracker.ModuleCompleted("drills"))

	_, cmd := send(t, m, ctrl(tea.KeyCtrlN))
	var sw *mode.SwitchModeMsg
	var toast string
	for _, msg := range drain(cmd) {
		switch msg := msg.(type) {
		case mode.SwitchModeMsg:
			sw = &msg
		case mode.ShowToastMsg:
			toast = msg.Message
		}
	}
	require.NotNil(t, sw)
	assert.Equal(t, mode.ModeMenu, sw.Mode)
	assert.Equal(t, "No further lesson is unlocked yet", toast)
}

func TestTutor_NextBeforeCompletion(t *testing.T) {
	m, _ := newTutor(t, "moves")
	m, cmd := send(t, m, ctrl(tea.KeyCtrlN))
	assert.Nil(t, cmd)
	assert.Contains(t, m.Feedback(), "Finish this exercise first")
}

func TestTutor_Hint(t *testing.T) {
	m, _ := newTutor(t, "moves")
	m, _ = send(t, m, ctrl(tea.KeyCtrlT))
	assert.Equal(t, "Hint: l moves right", m.Feedback())
	assert.Equal(t, toneWarn, m.tone)
}

func TestTutor_SkipFinishesWithoutPassing(t *testing.T) {
	m, svc := newTutor(t, "moves")
	m, _ = send(t, m, ctrl(tea.KeyCtrlK))

	o, ok := m.Runner().Outcome()
	require.True(t, ok)
	assert.False(t, o.Passed)
	assert.Equal(t, 1, o.Skipped)
	assert.Contains(t, m.Feedback(), "Lesson finished with 0%")
	assert.False(t, svc.Tracker.LessonCompleted("drills", "moves"))
}

func TestTutor_Restart(t *testing.T) {
	m, _ := newTutor(t, "moves")
	m, _ = send(t, m, runes("l"), ctrl(tea.KeyCtrlO))
	assert.Equal(t, 0, m.Runner().Simulator().Cursor().Col)
	assert.Equal(t, "Exercise restarted.", m.Feedback())
}

func TestTutor_LeaveSwitchesToMenu(t *testing.T) {
	m, _ := newTutor(t, "moves")
	_, cmd := send(t, m, ctrl(tea.KeyCtrlQ))

	var sw *mode.SwitchModeMsg
	var toast string
	for _, msg := range drain(cmd) {
		switch msg := msg.(type) {
		case mode.SwitchModeMsg:
			sw = &msg
		case mode.ShowToastMsg:
			toast = msg.Message
		}
	}
	require.NotNil(t, sw)
	assert.Equal(t, mode.ModeMenu, sw.Mode)
	assert.Contains(t, toast, "exercise 1/1")
}

func TestTutor_ResumeRestoresEditor(t *testing.T) {
	svc := testutil.Services(t, testutil.DrillCourse(t))
	sim := simulator.New("abc")
	sim.ProcessKeyString("l")
	st := sim.State()

	m, err := New(svc, "drills", "moves", &session.State{ExerciseIndex: 0, Simulator: &st})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Runner().Simulator().Cursor().Col)

	m, _ = send(t, m, runes("l"))
	assert.True(t, m.Runner().Finished())
}

func TestTutor_ViewShowsInstructionsAndEditor(t *testing.T) {
	m, _ := newTutor(t, "moves")
	c := m.SetSize(80, 30)
	view := c.View()
	assert.Contains(t, view, "Editor")
	assert.Contains(t, view, "abc")
	assert.Contains(t, view, "Exercise 1/1")
}

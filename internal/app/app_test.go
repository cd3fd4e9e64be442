package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/pubsub"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/testutil"
	"github.com/zjrosen/vimgym/internal/ui/toaster"
	"github.com/zjrosen/vimgym/internal/user"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// withDatabase backs svc with a migrated database and a stored user. The
// session repository is returned for tests that plant earlier sessions.
func withDatabase(t *testing.T, svc mode.Services) (mode.Services, session.Repository) {
	t.Helper()
	db := testutil.NewTestDB(t)
	svc.Users = user.NewManager(db.UserRepository(), svc.Clock)
	u, err := svc.Users.Create(context.Background(), "tester")
	require.NoError(t, err)
	svc.User = u
	svc.Sessions = session.NewManager(db.SessionRepository(), svc.Clock)
	return svc, db.SessionRepository()
}

func newApp(t *testing.T, opts ...Option) (Model, mode.Services) {
	m, svc, _ := newAppWithRepo(t, opts...)
	return m, svc
}

func newAppWithRepo(t *testing.T, opts ...Option) (Model, mode.Services, session.Repository) {
	t.Helper()
	svc, repo := withDatabase(t, testutil.Services(t, testutil.DrillCourse(t)))
	m := New(svc, opts...)
	t.Cleanup(func() { _ = m.Close() })
	return m, svc, repo
}

func TestApp_StartsOnMenu(t *testing.T) {
	m, _ := newApp(t)
	assert.Equal(t, mode.ModeMenu, m.Mode())
	assert.Contains(t, m.View(), "vimgym")
}

func TestApp_StartMode(t *testing.T) {
	m, _ := newApp(t, WithStartMode(mode.ModePractice), WithPracticeText("hello"))
	assert.Equal(t, mode.ModePractice, m.Mode())
	assert.Contains(t, m.View(), "hello")
}

func TestApp_WindowSizeMsg(t *testing.T) {
	m, _ := newApp(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 50})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 50, m.height)
}

func TestApp_SwitchToTutorStartsSession(t *testing.T) {
	m, svc := newApp(t)
	m, _ = update(t, m, mode.SwitchModeMsg{Mode: mode.ModeTutor, ModuleID: "drills", LessonID: "moves"})
	assert.Equal(t, mode.ModeTutor, m.Mode())

	s, ok := svc.Sessions.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "moves", s.State.LessonID)

	// A second switch keeps the same session.
	m, _ = update(t, m, mode.SwitchModeMsg{Mode: mode.ModeMenu})
	_, _ = update(t, m, mode.SwitchModeMsg{Mode: mode.ModePractice})
	again, ok := svc.Sessions.Snapshot()
	require.True(t, ok)
	assert.Equal(t, s.ID, again.ID)
}

func TestApp_UnknownLessonStaysPut(t *testing.T) {
	m, _ := newApp(t)
	m, cmd := update(t, m, mode.SwitchModeMsg{Mode: mode.ModeTutor, ModuleID: "drills", LessonID: "missing"})
	assert.Equal(t, mode.ModeMenu, m.Mode())
	require.NotNil(t, cmd)
	assert.Equal(t, mode.ShowToastMsg{Message: "Could not open drills/missing", Style: toaster.StyleError}, cmd())
}

func TestApp_KeysReachController(t *testing.T) {
	m, _ := newApp(t)
	_, cmd := update(t, m, runes("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, mode.SwitchModeMsg{Mode: mode.ModeStats}, cmd())
}

func TestApp_CtrlCQuits(t *testing.T) {
	m, _ := newApp(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_ToastOverlay(t *testing.T) {
	m, _ := newApp(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, cmd := update(t, m, mode.ShowToastMsg{Message: "Saved!", Style: toaster.StyleSuccess})
	assert.NotNil(t, cmd)
	assert.True(t, m.toaster.Visible())
	assert.Contains(t, m.View(), "Saved!")
}

func TestApp_ReloadNotifies(t *testing.T) {
	m, _ := newApp(t)
	m, _ = update(t, m, pubsub.Event[content.Reload]{
		Type:    pubsub.UpdatedEvent,
		Payload: content.Reload{Modules: []string{"custom"}},
	})
	assert.Equal(t, "Reloaded 1 user modules", m.toaster.Message())

	m, _ = update(t, m, pubsub.Event[content.Reload]{Payload: content.Reload{Err: errors.New("bad yaml")}})
	assert.Equal(t, "Lesson reload failed: bad yaml", m.toaster.Message())
}

func TestApp_AutoSaveFailureToasts(t *testing.T) {
	m, _ := newApp(t)
	m, _ = update(t, m, pubsub.Event[session.SaveNotice]{Payload: session.SaveNotice{Err: errors.New("disk full")}})
	assert.Equal(t, "Auto-save failed: disk full", m.toaster.Message())
}

func TestApp_LogOverlay(t *testing.T) {
	m, _ := newApp(t, WithDebug(true))
	m, _ = update(t, m, pubsub.Event[string]{Payload: "[INFO] [ui] hello"})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.True(t, m.logs.Visible())
	assert.Equal(t, []string{"[INFO] [ui] hello"}, m.logs.Entries())

	// Keys go to the overlay while it is open.
	m, cmd := update(t, m, runes("s"))
	assert.Nil(t, cmd)
	assert.Equal(t, mode.ModeMenu, m.Mode())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.logs.Visible())
}

func TestApp_LogsKeyIgnoredWithoutDebug(t *testing.T) {
	m, _ := newApp(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.False(t, m.logs.Visible())
}

func TestApp_CloseFoldsSessionIntoStatistics(t *testing.T) {
	svc, _ := withDatabase(t, testutil.Services(t, testutil.DrillCourse(t)))
	m := New(svc)
	m, _ = update(t, m, mode.SwitchModeMsg{Mode: mode.ModeTutor, ModuleID: "drills", LessonID: "moves"})
	m, _ = update(t, m, runes("l"))
	m, _ = update(t, m, runes("l"))

	require.NoError(t, m.Close())
	_, ok := svc.Sessions.Snapshot()
	assert.False(t, ok)

	stored, err := svc.Users.Get(context.Background(), svc.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Statistics.SessionsCompleted)
	assert.Equal(t, 2, stored.Statistics.TotalKeystrokes)
	assert.Equal(t, 2, stored.Statistics.FavoriteCommands["l"])
}

func TestApp_ResumeSwitchesSession(t *testing.T) {
	m, svc, repo := newAppWithRepo(t)
	ctx := context.Background()
	m, _ = update(t, m, mode.SwitchModeMsg{Mode: mode.ModePractice})
	first, ok := svc.Sessions.Snapshot()
	require.True(t, ok)

	// A session left behind by an earlier run.
	other := session.NewManager(repo, svc.Clock)
	saved, err := other.Start(ctx, svc.User.ID)
	require.NoError(t, err)

	st := session.State{ModuleID: "drills", LessonID: "deletes"}
	m, _ = update(t, m, mode.SwitchModeMsg{
		Mode: mode.ModeTutor, ModuleID: "drills", LessonID: "deletes",
		SessionID: saved.ID, Resume: &st,
	})
	assert.Equal(t, mode.ModeTutor, m.Mode())

	cur, ok := svc.Sessions.Snapshot()
	require.True(t, ok)
	assert.Equal(t, saved.ID, cur.ID)
	assert.NotEqual(t, first.ID, cur.ID)
	assert.Equal(t, 1, svc.User.Statistics.SessionsCompleted)
}

func TestApp_ResumeEndedSessionToasts(t *testing.T) {
	m, svc, repo := newAppWithRepo(t)
	ctx := context.Background()
	other := session.NewManager(repo, svc.Clock)
	saved, err := other.Start(ctx, svc.User.ID)
	require.NoError(t, err)
	_, err = other.End(ctx)
	require.NoError(t, err)

	m, cmd := update(t, m, mode.SwitchModeMsg{
		Mode: mode.ModeTutor, ModuleID: "drills", LessonID: "moves", SessionID: saved.ID,
	})
	assert.Equal(t, mode.ModeMenu, m.Mode())
	msg, ok := cmd().(mode.ShowToastMsg)
	require.True(t, ok)
	assert.Contains(t, msg.Message, "Could not resume session")
}

func TestApp_Program(t *testing.T) {
	m, _ := newApp(t)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Drills"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}

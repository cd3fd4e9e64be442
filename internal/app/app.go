// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/keys"
	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/mode/menu"
	"github.com/zjrosen/vimgym/internal/mode/practice"
	"github.com/zjrosen/vimgym/internal/mode/stats"
	"github.com/zjrosen/vimgym/internal/mode/tutor"
	"github.com/zjrosen/vimgym/internal/pubsub"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/ui/logoverlay"
	"github.com/zjrosen/vimgym/internal/ui/toaster"
	"github.com/zjrosen/vimgym/internal/user"
	"github.com/zjrosen/vimgym/internal/watcher"
)

// shutdownTimeout bounds the final save and session bookkeeping on Close.
const shutdownTimeout = 5 * time.Second

// Model is the root application state.
type Model struct {
	services   mode.Services
	current    mode.AppMode
	controller mode.Controller

	width  int
	height int

	// Toasts and the log overlay belong to the app, not to screens.
	toaster toaster.Model
	logs    logoverlay.Model
	debug   bool

	practiceText string

	ctx    context.Context
	cancel context.CancelFunc

	logListener    *log.LogListener
	reloadListener *pubsub.ContinuousListener[content.Reload]
	saveListener   *pubsub.ContinuousListener[session.SaveNotice]
	autoSaver      *session.AutoSaver
	watcher        *watcher.Watcher
}

// Option configures the application.
type Option func(*Model)

// WithDebug enables the log overlay (ctrl+x).
func WithDebug(debug bool) Option {
	return func(m *Model) { m.debug = debug }
}

// WithStartMode opens mode instead of the menu.
func WithStartMode(start mode.AppMode) Option {
	return func(m *Model) { m.current = start }
}

// WithPracticeText sets the text loaded by practice mode.
func WithPracticeText(text string) Option {
	return func(m *Model) { m.practiceText = text }
}

// WithAutoSaver saves the session in the background while the app runs.
func WithAutoSaver(a *session.AutoSaver) Option {
	return func(m *Model) { m.autoSaver = a }
}

// New builds the root model. When user lessons are configured with
// watching enabled, their directory is watched and reloaded on change;
// a watcher that cannot start is logged and skipped.
func New(services mode.Services, opts ...Option) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		services: services,
		current:  mode.ModeMenu,
		toaster:  toaster.New(services.Theme),
		logs:     logoverlay.New(services.Theme),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(&m)
	}

	if m.debug {
		m.logListener = log.NewListener(ctx)
	}
	if services.Registry != nil {
		m.reloadListener = pubsub.NewContinuousListener[content.Reload](ctx, services.Registry)
	}
	if m.autoSaver != nil {
		m.saveListener = pubsub.NewContinuousListener[session.SaveNotice](ctx, m.autoSaver.Broker())
		m.autoSaver.Start(ctx)
	}
	if cfg := services.Config; cfg != nil && cfg.Content.Watch && cfg.Content.UserDir != "" {
		m.startWatcher(cfg.Content.UserDir)
	}

	m.controller = m.build(mode.SwitchModeMsg{Mode: m.current})
	if m.controller == nil {
		m.current = mode.ModeMenu
		m.controller = menu.New(services)
	}
	return m
}

func (m *Model) startWatcher(dir string) {
	w, err := watcher.New(watcher.DefaultConfig(dir))
	if err != nil {
		log.Warn(log.CatWatcher, "Lesson watcher unavailable", "error", err)
		return
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		log.Warn(log.CatWatcher, "Lesson watcher unavailable", "dir", dir, "error", err)
		return
	}
	m.watcher = w
	m.services.Registry.WatchUser(m.ctx, changes)
}

// Mode returns the active screen.
func (m Model) Mode() mode.AppMode { return m.current }

// Controller returns the active screen's controller.
func (m Model) Controller() mode.Controller { return m.controller }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.controller.Init(),
		listen(m.logListener),
		listen(m.reloadListener),
		listen(m.saveListener),
	)
}

func listen[T any](l *pubsub.ContinuousListener[T]) tea.Cmd {
	if l == nil {
		return nil
	}
	return l.Listen()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.controller = m.controller.SetSize(msg.Width, msg.Height)
		m.logs.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.App.Quit) {
			return m, tea.Quit
		}
		if m.debug && key.Matches(msg, keys.App.Logs) && !m.logs.Visible() {
			m.logs.Toggle()
			return m, nil
		}
		if m.logs.Visible() {
			var cmd tea.Cmd
			m.logs, cmd = m.logs.Update(msg)
			return m, cmd
		}

	case log.LogEvent:
		m.logs.Append(msg.Payload)
		return m, listen(m.logListener)

	case pubsub.Event[content.Reload]:
		return m.handleReload(msg.Payload)

	case pubsub.Event[session.SaveNotice]:
		var cmd tea.Cmd
		if msg.Payload.Err != nil {
			m.toaster, cmd = m.toaster.Show("Auto-save failed: "+msg.Payload.Err.Error(), toaster.StyleError)
		}
		return m, tea.Batch(cmd, listen(m.saveListener))

	case mode.ShowToastMsg:
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show(msg.Message, msg.Style)
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case mode.SwitchModeMsg:
		return m.switchMode(msg)
	}

	var cmd tea.Cmd
	m.controller, cmd = m.controller.Update(msg)
	return m, cmd
}

func (m Model) handleReload(r content.Reload) (tea.Model, tea.Cmd) {
	var toast tea.Cmd
	if r.Err != nil {
		m.toaster, toast = m.toaster.Show("Lesson reload failed: "+r.Err.Error(), toaster.StyleError)
	} else {
		m.toaster, toast = m.toaster.Show(fmt.Sprintf("Reloaded %d user modules", len(r.Modules)), toaster.StyleInfo)
	}
	var cmd tea.Cmd
	m.controller, cmd = m.controller.Update(r)
	return m, tea.Batch(toast, cmd, listen(m.reloadListener))
}

// switchMode replaces the active screen. Lessons and practice run inside
// a session, started on first entry.
func (m Model) switchMode(msg mode.SwitchModeMsg) (tea.Model, tea.Cmd) {
	if msg.Mode == mode.ModeTutor || msg.Mode == mode.ModePractice {
		if err := m.ensureSession(msg.SessionID); err != nil {
			log.ErrorErr(log.CatSession, "Session unavailable", err, "session", msg.SessionID)
			if msg.SessionID != "" {
				return m, mode.Toast("Could not resume session: "+err.Error(), toaster.StyleError)
			}
		}
	}

	c := m.build(msg)
	if c == nil {
		return m, mode.Toast(fmt.Sprintf("Could not open %s/%s", msg.ModuleID, msg.LessonID), toaster.StyleError)
	}
	log.Info(log.CatUI, "Switching mode", "from", m.current, "to", msg.Mode, "lesson", msg.LessonID)
	m.current = msg.Mode
	m.controller = c.SetSize(m.width, m.height)
	return m, m.controller.Init()
}

// build creates the controller for msg, or nil when it cannot be opened.
func (m Model) build(msg mode.SwitchModeMsg) mode.Controller {
	switch msg.Mode {
	case mode.ModeTutor:
		t, err := tutor.New(m.services, msg.ModuleID, msg.LessonID, msg.Resume)
		if err != nil {
			log.ErrorErr(log.CatUI, "Failed to open lesson", err, "module", msg.ModuleID, "lesson", msg.LessonID)
			return nil
		}
		return t
	case mode.ModePractice:
		return practice.New(m.services, m.practiceText)
	case mode.ModeStats:
		return stats.New(m.services)
	}
	return menu.New(m.services)
}

// ensureSession makes sure a session is current. A non-empty resumeID
// switches to that stored session, ending the current one first.
func (m Model) ensureSession(resumeID string) error {
	sessions := m.services.Sessions
	if sessions == nil || m.services.User == nil {
		return nil
	}
	ctx := m.ctx
	cur, ok := sessions.Snapshot()
	switch {
	case resumeID == "" && ok:
		return nil
	case resumeID == "":
		_, err := sessions.Start(ctx, m.services.User.ID)
		return err
	case ok && cur.ID == resumeID:
		return nil
	case ok:
		m.finishSession(ctx)
	}
	_, err := sessions.Resume(ctx, resumeID)
	return err
}

// finishSession ends the current session and folds it into the user's
// statistics.
func (m Model) finishSession(ctx context.Context) {
	sessions, users, u := m.services.Sessions, m.services.Users, m.services.User
	if sessions == nil {
		return
	}
	snap, ok := sessions.Snapshot()
	if !ok {
		return
	}
	sum, err := sessions.End(ctx)
	if err != nil {
		log.ErrorErr(log.CatSession, "Failed to end session", err, "session", snap.ID)
		return
	}
	if users == nil || u == nil {
		return
	}
	err = users.FinishSession(ctx, u, user.SessionStats{
		Duration:   sum.Duration,
		Keystrokes: sum.Keystrokes,
		Mistakes:   sum.Mistakes,
		Commands:   snap.State.CommandsUsed,
	})
	if err != nil {
		log.ErrorErr(log.CatSession, "Failed to update statistics", err, "user", u.Username)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	view := m.controller.View()
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debug && m.logs.Visible() {
		view = m.logs.Overlay(view)
	}
	return zone.Scan(view)
}

// Close stops background work, makes a final save and ends the session.
// Call it once the program has exited.
func (m *Model) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if m.autoSaver != nil {
		m.autoSaver.Stop(ctx)
	}
	m.finishSession(ctx)
	m.cancel()

	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			return fmt.Errorf("stop lesson watcher: %w", err)
		}
		m.watcher = nil
	}
	return nil
}

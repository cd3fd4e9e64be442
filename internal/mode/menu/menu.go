// Package menu is the start screen: modules, their lessons, and the way
// into practice, stats and saved sessions.
package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/flags"
	"github.com/zjrosen/vimgym/internal/keys"
	"github.com/zjrosen/vimgym/internal/lesson"
	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/mode/shared"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/ui/toaster"
)

type level int

const (
	levelModules level = iota
	levelLessons
)

// resumableMsg carries the sessions that can be picked up again.
type resumableMsg struct {
	sessions []*session.Session
	err      error
}

// Model is the menu controller.
type Model struct {
	services mode.Services
	help     help.Model

	level     level
	moduleIdx int
	lessonIdx int
	resumable []*session.Session

	width  int
	height int
}

// New returns the menu on the module list.
func New(services mode.Services) Model {
	h := help.New()
	h.Styles.ShortKey = services.Theme.Subtitle
	h.Styles.ShortDesc = services.Theme.Muted
	h.Styles.FullKey = services.Theme.Subtitle
	h.Styles.FullDesc = services.Theme.Muted
	return Model{services: services, help: h}
}

// Init loads resumable sessions.
func (m Model) Init() tea.Cmd {
	if m.services.Sessions == nil || m.services.User == nil {
		return nil
	}
	sessions, userID := m.services.Sessions, m.services.User.ID
	return func() tea.Msg {
		list, err := sessions.ResumableSessions(context.Background(), userID)
		return resumableMsg{sessions: list, err: err}
	}
}

// SetSize implements mode.Controller.
func (m Model) SetSize(width, height int) mode.Controller {
	m.width, m.height = width, height
	m.help.Width = width
	return m
}

func (m Model) modules() []content.Module {
	return m.services.Registry.Modules()
}

// Update implements mode.Controller.
func (m Model) Update(msg tea.Msg) (mode.Controller, tea.Cmd) {
	switch msg := msg.(type) {
	case resumableMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatSession, "Failed to list resumable sessions", msg.err)
			return m, nil
		}
		m.resumable = msg.sessions
		return m, nil
	case content.Reload:
		m.moduleIdx = min(m.moduleIdx, max(0, len(m.modules())-1))
		m.level = levelModules
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (mode.Controller, tea.Cmd) {
	k := keys.Menu
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Up):
		m.move(-1)
	case key.Matches(msg, k.Down):
		m.move(1)
	case key.Matches(msg, k.Select):
		return m.open()
	case key.Matches(msg, k.Back):
		m.level = levelModules
	case key.Matches(msg, k.Continue):
		return m.continueCourse()
	case key.Matches(msg, k.Resume) && m.resumeEnabled():
		return m.resume()
	case key.Matches(msg, k.Practice):
		return m, mode.Switch(mode.SwitchModeMsg{Mode: mode.ModePractice})
	case key.Matches(msg, k.Stats):
		return m, mode.Switch(mode.SwitchModeMsg{Mode: mode.ModeStats})
	}
	return m, nil
}

func (m *Model) move(delta int) {
	n := len(m.modules())
	idx := &m.moduleIdx
	if m.level == levelLessons {
		n = len(m.currentModule().Lessons)
		idx = &m.lessonIdx
	}
	if n == 0 {
		return
	}
	*idx = (*idx + delta + n) % n
}

func (m Model) currentModule() content.Module {
	mods := m.modules()
	if m.moduleIdx >= len(mods) {
		return content.Module{}
	}
	return mods[m.moduleIdx]
}

func (m Model) open() (mode.Controller, tea.Cmd) {
	mod := m.currentModule()
	if mod.ID == "" {
		return m, nil
	}
	if m.level == levelModules {
		if !m.services.Registry.Unlocked(mod.ID, m.services.Tracker) {
			return m, mode.Toast(fmt.Sprintf("Finish %s first", strings.Join(mod.Prerequisites, ", ")), toaster.StyleWarn)
		}
		m.level = levelLessons
		m.lessonIdx = 0
		return m, nil
	}
	if m.lessonIdx >= len(mod.Lessons) {
		return m, nil
	}
	return m, mode.Switch(mode.SwitchModeMsg{
		Mode:     mode.ModeTutor,
		ModuleID: mod.ID,
		LessonID: mod.Lessons[m.lessonIdx].ID,
	})
}

func (m Model) continueCourse() (mode.Controller, tea.Cmd) {
	next, ok := lesson.NewNavigator(m.services.Registry, m.services.Tracker).Continue()
	if !ok {
		return m, mode.Toast("Every unlocked lesson is complete", toaster.StyleInfo)
	}
	return m, mode.Switch(mode.SwitchModeMsg{Mode: mode.ModeTutor, ModuleID: next.ModuleID, LessonID: next.ID})
}

func (m Model) resume() (mode.Controller, tea.Cmd) {
	for _, s := range m.resumable {
		if s.State.LessonID == "" {
			continue
		}
		st := s.State
		return m, mode.Switch(mode.SwitchModeMsg{
			Mode:      mode.ModeTutor,
			ModuleID:  st.ModuleID,
			LessonID:  st.LessonID,
			SessionID: s.ID,
			Resume:    &st,
		})
	}
	return m, mode.Toast("No saved session to resume", toaster.StyleInfo)
}

func rowZone(i int) string { return fmt.Sprintf("menu-row-%d", i) }

func (m Model) handleMouse(msg tea.MouseMsg) (mode.Controller, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	n := len(m.modules())
	if m.level == levelLessons {
		n = len(m.currentModule().Lessons)
	}
	for i := range n {
		if z := zone.Get(rowZone(i)); z != nil && z.InBounds(msg) {
			if m.level == levelLessons {
				m.lessonIdx = i
			} else {
				m.moduleIdx = i
			}
			return m.open()
		}
	}
	return m, nil
}

// View implements mode.Controller.
func (m Model) View() string {
	th := m.services.Theme
	var sb strings.Builder
	title := "vimgym"
	if m.services.User != nil {
		title += th.Muted.Render("  " + m.services.User.Username)
	}
	sb.WriteString(th.Title.Render(title) + "\n\n")

	if m.level == levelLessons {
		sb.WriteString(m.lessonList())
	} else {
		sb.WriteString(m.moduleList())
	}

	if s := m.latestResumable(); s != nil && m.resumeEnabled() {
		sb.WriteString("\n" + th.Hint.Render(fmt.Sprintf("r: resume %s/%s, exercise %d (%s)",
			s.State.ModuleID, s.State.LessonID, s.State.ExerciseIndex+1,
			shared.RelativeTime(s.LastSaved, m.services.Now()))) + "\n")
	}

	body := sb.String()
	footer := m.help.View(keys.Menu)
	gap := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + "\n" + footer
}

func (m Model) resumeEnabled() bool {
	return m.services.Flags.Enabled(flags.FlagSessionResume)
}

func (m Model) latestResumable() *session.Session {
	for _, s := range m.resumable {
		if s.State.LessonID != "" {
			return s
		}
	}
	return nil
}

func (m Model) moduleList() string {
	th := m.services.Theme
	barWidth := 12
	var rows []string
	for i, mod := range m.modules() {
		status := m.services.Tracker.Status(mod.ID)
		label := fmt.Sprintf("%d. %s", i+1, mod.Title)
		marker := "  "
		style := th.Text
		if i == m.moduleIdx {
			marker = th.Selected.Render("▸ ")
			style = th.Selected
		}
		var tail string
		switch status {
		case progress.StatusLocked:
			style = th.Locked
			tail = th.Locked.Render("locked")
		case progress.StatusCompleted:
			tail = th.Success.Render("✓ complete")
		default:
			done := 0
			for _, l := range mod.Lessons {
				if m.services.Tracker.LessonCompleted(mod.ID, l.ID) {
					done++
				}
			}
			tail = th.ProgressBar(done, len(mod.Lessons), barWidth)
		}
		row := marker + style.Render(fmt.Sprintf("%-32s", label)) + " " + tail
		rows = append(rows, zone.Mark(rowZone(i), row))
	}
	if mod := m.currentModule(); mod.Description != "" {
		rows = append(rows, "", th.Muted.Render(mod.Description))
	}
	return strings.Join(rows, "\n") + "\n"
}

func (m Model) lessonList() string {
	th := m.services.Theme
	mod := m.currentModule()
	rows := []string{th.Subtitle.Render(mod.Title), ""}
	for i, l := range mod.Lessons {
		marker := "  "
		style := th.Text
		if i == m.lessonIdx {
			marker = th.Selected.Render("▸ ")
			style = th.Selected
		}
		check := th.Muted.Render("○")
		if m.services.Tracker.LessonCompleted(mod.ID, l.ID) {
			check = th.Success.Render("✓")
		}
		rows = append(rows, zone.Mark(rowZone(i), marker+check+" "+style.Render(l.Title)))
	}
	if mod.Lessons != nil && m.lessonIdx < len(mod.Lessons) {
		if d := mod.Lessons[m.lessonIdx].Description; d != "" {
			rows = append(rows, "", th.Muted.Render(d))
		}
	}
	return strings.Join(rows, "\n") + "\n"
}

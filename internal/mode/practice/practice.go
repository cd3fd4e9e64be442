// Package practice is a free editor with no exercise attached. The side
// panel shows coaching from the simulator.
package practice

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/vimgym/internal/keys"
	"github.com/zjrosen/vimgym/internal/flags"
	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/ui/editor"
	"github.com/zjrosen/vimgym/internal/ui/styles"
	"github.com/zjrosen/vimgym/internal/ui/toaster"
)

// SavePointName is the session checkpoint the practice editor uses.
const SavePointName = "practice"

// savePointMsg carries the checkpoint read back for ctrl+g.
type savePointMsg struct {
	state session.State
	err   error
}

// SampleText is loaded when no text is given.
const SampleText = `The quick brown fox jumps over the lazy dog.
Vim has a steep learning curve, but it is worth the climb.
Practice makes permanent.

func greet(name string) string {
	return "hello, " + name
}`

// Model is the practice controller.
type Model struct {
	services mode.Services
	sim      *simulator.Simulator
	text     string
	message  string
	help     help.Model

	width  int
	height int
}

// New opens the practice editor on text, or SampleText when empty.
func New(services mode.Services, text string) Model {
	if text == "" {
		text = SampleText
	}
	hints := services.Config.UI.ShowHints && services.Flags.Enabled(flags.FlagLearningHints)
	h := help.New()
	h.Styles.ShortKey = services.Theme.Subtitle
	h.Styles.ShortDesc = services.Theme.Muted
	return Model{
		services: services,
		sim:      simulator.New(text, simulator.WithHints(hints)),
		text:     text,
		help:     h,
	}
}

// Simulator exposes the editor.
func (m Model) Simulator() *simulator.Simulator { return m.sim }

// Init implements mode.Controller.
func (m Model) Init() tea.Cmd { return nil }

// SetSize implements mode.Controller.
func (m Model) SetSize(width, height int) mode.Controller {
	m.width, m.height = width, height
	m.help.Width = width
	return m
}

// Update implements mode.Controller.
func (m Model) Update(msg tea.Msg) (mode.Controller, tea.Cmd) {
	if sp, ok := msg.(savePointMsg); ok {
		return m.restoreSavePoint(sp), nil
	}
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, keys.Practice.Leave):
		return m, mode.Switch(mode.SwitchModeMsg{Mode: mode.ModeMenu})
	case key.Matches(k, keys.Practice.Reset):
		m.sim.Reset(m.text)
		m.message = "Text reset."
		return m, nil
	case key.Matches(k, keys.Practice.SavePoint):
		return m, m.setSavePoint()
	case key.Matches(k, keys.Practice.ToSavePoint):
		return m, m.loadSavePoint()
	}

	for _, tok := range keys.EditorTokens(k) {
		before := m.sim.CommandCount()
		resp := m.sim.ProcessInput(tok)
		m.message = resp.ErrorText()
		if m.services.Sessions != nil {
			cmd := ""
			if m.sim.CommandCount() > before {
				cmd = m.sim.LastCommand()
			}
			m.services.Sessions.RecordCommand(cmd)
			if !resp.Success {
				m.services.Sessions.RecordMistake()
			}
		}
	}
	return m, nil
}

// setSavePoint copies the editor into the session and checkpoints it.
func (m Model) setSavePoint() tea.Cmd {
	sessions := m.services.Sessions
	if sessions == nil {
		return mode.Toast("Save points need an active session", toaster.StyleWarn)
	}
	sessions.UpdateSimulatorState(m.sim.State())
	return func() tea.Msg {
		if err := sessions.Checkpoint(context.Background(), SavePointName); err != nil {
			log.ErrorErr(log.CatSession, "Failed to set save point", err)
			return mode.ShowToastMsg{Message: "Could not set save point: " + err.Error(), Style: toaster.StyleError}
		}
		return mode.ShowToastMsg{Message: "Save point set", Style: toaster.StyleSuccess}
	}
}

func (m Model) loadSavePoint() tea.Cmd {
	sessions := m.services.Sessions
	if sessions == nil {
		return mode.Toast("Save points need an active session", toaster.StyleWarn)
	}
	return func() tea.Msg {
		st, err := sessions.RestoreCheckpoint(context.Background(), SavePointName)
		return savePointMsg{state: st, err: err}
	}
}

func (m Model) restoreSavePoint(sp savePointMsg) Model {
	var nf *session.NotFoundError
	switch {
	case errors.As(sp.err, &nf):
		m.message = "No save point yet. Press ctrl+s to set one."
		return m
	case sp.err != nil:
		m.message = "Could not restore save point: " + sp.err.Error()
		return m
	case sp.state.Simulator == nil:
		m.message = "The save point holds no text."
		return m
	}
	if err := m.sim.Restore(*sp.state.Simulator); err != nil {
		m.message = "Save point was unreadable; text reset."
		return m
	}
	m.message = "Back at save point."
	return m
}

// View implements mode.Controller.
func (m Model) View() string {
	th := m.services.Theme
	width := max(m.width, 40)
	side := min(36, width/3)
	main := width - side - 1

	footer := m.help.View(keys.Practice)
	rows := max(3, m.height-lipgloss.Height(footer)-5)
	if m.height == 0 {
		rows = 10
	}
	ed := th.Panel(editor.Render(m.sim, th, editor.Options{
		LineNumbers:     m.services.Config.Display.LineNumbers,
		HighlightCursor: true,
	}, main-2, rows), "Practice", main, rows+2, true)
	coach := th.Panel(m.coaching(side-2), "Coach", side, rows+2, false)

	body := lipgloss.JoinHorizontal(lipgloss.Top, ed, " ", coach)
	status := editor.StatusLine(m.sim, th, width)
	msg := th.Error.Render(styles.Truncate(m.message, width))
	return strings.Join([]string{body, status, msg, footer}, "\n")
}

func (m Model) coaching(width int) string {
	th := m.services.Theme
	fb := m.sim.Feedback()
	var sb strings.Builder
	sb.WriteString(th.Subtitle.Render(m.sim.ModeHelp()) + "\n")
	for _, s := range fb.Suggestions {
		sb.WriteString(wordwrap.String("• "+s, width) + "\n")
	}
	if len(fb.EfficiencyTips) > 0 {
		sb.WriteString("\n" + th.Hint.Render("Tips") + "\n")
		for _, tip := range fb.EfficiencyTips {
			sb.WriteString(th.Hint.Render(wordwrap.String("• "+tip, width)) + "\n")
		}
	}
	if h := m.sim.History(); len(h) > 0 {
		recent := h[max(0, len(h)-8):]
		sb.WriteString("\n" + th.Muted.Render("Recent: "+strings.Join(recent, " ")))
	}
	return sb.String()
}

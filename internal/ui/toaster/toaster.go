// Package toaster shows a short notification at the bottom of the screen.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/vimgym/internal/ui/overlay"
	"github.com/zjrosen/vimgym/internal/ui/styles"
)

// Style picks the icon and border color.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

// Model is a single toast. Showing a new one replaces the old.
type Model struct {
	theme   *styles.Theme
	message string
	style   Style
	visible bool
	// seq tags each toast so a stale dismiss timer cannot hide a newer one.
	seq int
}

// New returns a hidden toaster.
func New(theme *styles.Theme) Model {
	return Model{theme: theme}
}

// Show displays message and returns the command that dismisses it after
// DefaultDuration.
func (m Model) Show(message string, style Style) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.visible = true
	m.seq++
	seq := m.seq
	return m, tea.Tick(DefaultDuration, func(time.Time) tea.Msg {
		return DismissMsg{seq: seq}
	})
}

// Update handles DismissMsg.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.seq == m.seq {
		m.visible = false
		m.message = ""
	}
	return m
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool {
	return m.visible && m.message != ""
}

// Message returns the text of the showing toast.
func (m Model) Message() string { return m.message }

// View renders the toast box, or "" when hidden.
func (m Model) View() string {
	if !m.Visible() {
		return ""
	}
	icon, tok := "✅", styles.TokenToastSuccess
	switch m.style {
	case StyleError:
		icon, tok = "❌", styles.TokenToastError
	case StyleInfo:
		icon, tok = "ℹ️", styles.TokenToastInfo
	case StyleWarn:
		icon, tok = "⚠️", styles.TokenToastWarn
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Color(tok)).
		Render(icon + " " + m.message)
}

// Overlay draws the toast over bg, one row above the bottom edge.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.Visible() {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}

// DismissMsg hides the toast it was scheduled for.
type DismissMsg struct {
	seq int
}

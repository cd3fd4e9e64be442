// Package logoverlay shows recent debug log entries on top of the TUI.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/ui/overlay"
	"github.com/zjrosen/vimgym/internal/ui/styles"
)

const (
	// MaxEntries bounds the retained history.
	MaxEntries = 500

	maxRows  = 25
	minRows  = 5
	maxWidth = 160
	minWidth = 40
)

// Model keeps the entries it has been given and shows them filtered by
// level.
type Model struct {
	theme    *styles.Theme
	entries  []string
	minLevel log.Level
	visible  bool
	width    int
	height   int
	viewport viewport.Model
}

// New returns a hidden overlay.
func New(theme *styles.Theme) Model {
	return Model{theme: theme, minLevel: log.LevelDebug}
}

// Append records one log line, dropping the oldest past MaxEntries.
func (m *Model) Append(entry string) {
	m.entries = append(m.entries, strings.TrimSuffix(entry, "\n"))
	if over := len(m.entries) - MaxEntries; over > 0 {
		m.entries = m.entries[over:]
	}
	if m.visible {
		m.refresh()
	}
}

// Entries returns the lines that pass the current filter.
func (m Model) Entries() []string {
	var out []string
	for _, e := range m.entries {
		if levelOf(e) >= m.minLevel {
			out = append(out, e)
		}
	}
	return out
}

// Visible reports whether the overlay is open.
func (m Model) Visible() bool { return m.visible }

// Toggle opens or closes the overlay.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refresh()
	}
}

// SetSize records the screen size.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.refresh()
}

// Update handles keys while the overlay is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "c":
		m.entries = nil
	case "d":
		m.minLevel = log.LevelDebug
	case "i":
		m.minLevel = log.LevelInfo
	case "w":
		m.minLevel = log.LevelWarn
	case "e":
		m.minLevel = log.LevelError
	case "j", "down":
		m.viewport.ScrollDown(1)
		return m, nil
	case "k", "up":
		m.viewport.ScrollUp(1)
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	case "esc", "ctrl+x":
		m.visible = false
		return m, nil
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m *Model) refresh() {
	if m.width == 0 || m.height == 0 || m.theme == nil {
		return
	}
	rows := max(min(maxRows, m.height-6), minRows)
	m.viewport = viewport.New(m.boxWidth()-2, rows)
	m.viewport.SetContent(m.content())
	m.viewport.GotoBottom()
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, maxWidth), minWidth)
}

func (m Model) content() string {
	lines := m.Entries()
	if len(lines) == 0 {
		return m.theme.Muted.Italic(true).Render("No logs to display")
	}
	w := m.boxWidth() - 2
	for i, l := range lines {
		lines[i] = m.styleFor(l).Render(styles.Truncate(l, w))
	}
	return strings.Join(lines, "\n")
}

func (m Model) styleFor(entry string) lipgloss.Style {
	switch levelOf(entry) {
	case log.LevelError:
		return m.theme.Error
	case log.LevelWarn:
		return m.theme.Warning
	case log.LevelInfo:
		return m.theme.Text
	}
	return m.theme.Muted
}

// View renders the box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	w := m.boxWidth()
	rule := lipgloss.NewStyle().Foreground(m.theme.Color(styles.TokenOverlayBorder)).Render(strings.Repeat("─", w))

	hints := make([]string, 0, 5)
	hints = append(hints, m.theme.Muted.Render("[c] Clear"))
	for _, f := range []struct {
		key   string
		level log.Level
	}{{"d", log.LevelDebug}, {"i", log.LevelInfo}, {"w", log.LevelWarn}, {"e", log.LevelError}} {
		label := "[" + f.key + "] " + f.level.String()
		if f.level == m.minLevel {
			hints = append(hints, m.theme.Title.Render(label))
		} else {
			hints = append(hints, m.theme.Muted.Render(label))
		}
	}

	body := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Foreground(m.theme.Color(styles.TokenOverlayTitle)).PaddingLeft(1).Render("Logs"),
		rule,
		m.viewport.View(),
		rule,
		strings.Join(hints, "  "),
	}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Color(styles.TokenOverlayBorder)).
		Width(w).
		Render(body)
}

// Overlay centers the box on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height}, m.View(), bg)
}

// levelOf reads the "[LEVEL]" tag written by the log package. Untagged
// lines count as errors so they are never filtered away.
func levelOf(entry string) log.Level {
	for _, l := range []log.Level{log.LevelDebug, log.LevelInfo, log.LevelWarn, log.LevelError} {
		if strings.Contains(entry, "["+l.String()+"]") {
			return l
		}
	}
	return log.LevelError
}

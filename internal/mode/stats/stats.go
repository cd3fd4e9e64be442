// Package stats shows course progress and the learner's long-term
// statistics.
package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/vimgym/internal/keys"
	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/mode/shared"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/ui/styles"
	"github.com/zjrosen/vimgym/internal/ui/toaster"
)

// topCommands is how many favorite commands are listed.
const topCommands = 5

// Model is the statistics controller.
type Model struct {
	services  mode.Services
	clipboard shared.Clipboard
	help      help.Model

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithClipboard replaces the system clipboard.
func WithClipboard(c shared.Clipboard) Option {
	return func(m *Model) { m.clipboard = c }
}

// New returns the statistics screen.
func New(services mode.Services, opts ...Option) Model {
	h := help.New()
	h.Styles.ShortKey = services.Theme.Subtitle
	h.Styles.ShortDesc = services.Theme.Muted
	m := Model{services: services, clipboard: shared.SystemClipboard{}, help: h}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

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
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, keys.Stats.Back):
		return m, mode.Switch(mode.SwitchModeMsg{Mode: mode.ModeMenu})
	case key.Matches(k, keys.Stats.Copy):
		if err := m.clipboard.Copy(m.Report()); err != nil {
			log.ErrorErr(log.CatUI, "Clipboard copy failed", err)
			return m, mode.Toast("Could not copy: "+err.Error(), toaster.StyleError)
		}
		return m, mode.Toast("Summary copied", toaster.StyleSuccess)
	}
	return m, nil
}

// Report is a plain text summary suitable for pasting.
func (m Model) Report() string {
	var sb strings.Builder
	if u := m.services.User; u != nil {
		fmt.Fprintf(&sb, "vimgym progress for %s\n", u.Username)
	}
	if m.services.Tracker != nil {
		s := m.services.Tracker.Summary()
		fmt.Fprintf(&sb, "Lessons: %d/%d (%.0f%%)\n", s.CompletedLessons, s.TotalLessons, s.OverallCompletion)
		fmt.Fprintf(&sb, "Modules: %d/%d\n", s.CompletedModules, s.TotalModules)
		fmt.Fprintf(&sb, "Achievements: %d\n", s.Achievements)
		fmt.Fprintf(&sb, "Time: %s\n", styles.FormatDuration(int(s.TotalTime/time.Second)))
	}
	if u := m.services.User; u != nil {
		st := u.Statistics
		fmt.Fprintf(&sb, "Sessions: %d, streak %d days, accuracy %.0f%%\n",
			st.SessionsCompleted, st.Streak, st.Accuracy*100)
	}
	return sb.String()
}

// View implements mode.Controller.
func (m Model) View() string {
	th := m.services.Theme
	width := max(m.width, 40)
	half := width/2 - 1

	left, right := m.courseView(half-2), m.learnerView(half-2)
	rows := max(lipgloss.Height(left), lipgloss.Height(right)) + 2
	course := th.Panel(left, "Course", half, rows, true)
	learner := th.Panel(right, "You", half, rows, false)
	body := lipgloss.JoinHorizontal(lipgloss.Top, course, " ", learner)

	return strings.Join([]string{
		th.Title.Render("Statistics"),
		body,
		m.help.View(keys.Stats),
	}, "\n")
}

func (m Model) courseView(width int) string {
	th := m.services.Theme
	t := m.services.Tracker
	if t == nil {
		return th.Muted.Render("No progress yet.")
	}
	s := t.Summary()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Lessons  %s\n", th.ProgressBar(s.CompletedLessons, s.TotalLessons, max(10, width-16)))
	fmt.Fprintf(&sb, "Modules  %d/%d complete\n", s.CompletedModules, s.TotalModules)
	fmt.Fprintf(&sb, "Time     %s\n\n", styles.FormatDuration(int(s.TotalTime/time.Second)))

	for _, row := range s.Modules {
		title := styles.Truncate(row.Title, max(8, width-14))
		switch row.Status {
		case progress.StatusLocked:
			sb.WriteString(th.Locked.Render("🔒 "+title) + "\n")
		case progress.StatusCompleted:
			sb.WriteString(th.Success.Render("✓ "+title) + "\n")
		default:
			fmt.Fprintf(&sb, "  %s %s\n", title, th.Muted.Render(fmt.Sprintf("%d/%d", row.LessonsCompleted, row.Lessons)))
		}
	}

	if ach := t.Progress().Achievements; len(ach) > 0 {
		sb.WriteString("\n" + th.Subtitle.Render("Achievements") + "\n")
		for _, a := range ach {
			sb.WriteString(th.Warning.Render("★ ") + progress.AchievementTitle(a.ID) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) learnerView(width int) string {
	th := m.services.Theme
	u := m.services.User
	if u == nil {
		return th.Muted.Render("Not logged in.")
	}
	st := u.Statistics
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", th.Subtitle.Render(u.Username))
	fmt.Fprintf(&sb, "Sessions    %d\n", st.SessionsCompleted)
	fmt.Fprintf(&sb, "Average     %s\n", styles.FormatDuration(int(st.AverageSession()/time.Second)))
	fmt.Fprintf(&sb, "Keystrokes  %d\n", st.TotalKeystrokes)
	fmt.Fprintf(&sb, "Accuracy    %.0f%%\n", st.Accuracy*100)
	fmt.Fprintf(&sb, "Streak      %d days\n", st.Streak)
	fmt.Fprintf(&sb, "Last active %s\n", shared.RelativeTime(st.LastActive, m.services.Now()))

	if top := st.TopCommands(topCommands); len(top) > 0 {
		sb.WriteString("\n" + th.Subtitle.Render("Favorite commands") + "\n")
		for _, c := range top {
			fmt.Fprintf(&sb, "  %-8s %d\n", styles.Truncate(c.Command, 8), c.Count)
		}
	}

	in := u.Insights()
	section := func(title string, items []string, style lipgloss.Style) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n" + th.Subtitle.Render(title) + "\n")
		for _, it := range items {
			sb.WriteString(style.Render(styles.Truncate("• "+it, width)) + "\n")
		}
	}
	section("Strengths", in.Strengths, th.Success)
	section("Work on", in.Weaknesses, th.Warning)
	section("Try next", in.Recommendations, th.Hint)
	return strings.TrimRight(sb.String(), "\n")
}

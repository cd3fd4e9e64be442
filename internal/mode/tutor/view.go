package tutor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/vimgym/internal/flags"
	"github.com/zjrosen/vimgym/internal/lesson"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/ui/editor"
	"github.com/zjrosen/vimgym/internal/ui/styles"
)

const (
	maxInstructionRows = 12
	minEditorRows      = 3
)

// View implements mode.Controller.
func (m Model) View() string {
	th := m.services.Theme
	width := max(m.width, 40)

	header := m.header(width)
	var top string
	if o, ok := m.runner.Outcome(); ok {
		top = m.outcomePanel(o, width)
	} else {
		top = m.instructionsPanel(width)
	}

	status := editor.StatusLine(m.runner.Simulator(), th, width)
	feedback := m.feedbackLine(width)
	footer := ""
	if m.services.Config.UI.ShowStatusBar {
		footer = m.help.View(m.keyMap())
	}

	used := lipgloss.Height(header) + lipgloss.Height(top) + 2 + lipgloss.Height(footer) + 2
	rows := max(minEditorRows, m.height-used-2)
	if m.height == 0 {
		rows = m.services.Config.Display.Height
	}
	ed := th.Panel(editor.Render(m.runner.Simulator(), th, editor.Options{
		LineNumbers:     m.services.Config.Display.LineNumbers,
		HighlightCursor: m.services.Config.Display.HighlightCursor,
	}, width-2, rows), "Editor", width, rows+2, true)

	parts := []string{header, top, ed, status, feedback}
	if footer != "" {
		parts = append(parts, footer)
	}
	return strings.Join(parts, "\n")
}

func (m Model) header(width int) string {
	th := m.services.Theme
	sum := m.runner.Summary()
	left := th.Title.Render(m.lesson.Title) + th.Muted.Render("  "+m.lesson.ModuleID)
	right := th.Subtitle.Render(fmt.Sprintf("Exercise %d/%d ", sum.Current, sum.Total)) +
		th.ProgressBar(sum.Completed, sum.Total, 10)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) instructionsPanel(width int) string {
	th := m.services.Theme
	ex, _ := m.runner.Exercise()
	var md strings.Builder
	if m.runner.Index() == 0 && m.lesson.Instructions != "" {
		md.WriteString(m.lesson.Instructions + "\n\n")
	}
	fmt.Fprintf(&md, "**%s**\n\n", ex.Title)
	if ex.Instructions != "" {
		md.WriteString(ex.Instructions)
	} else {
		md.WriteString(ex.Description)
	}

	body := md.String()
	if m.services.Markdown != nil {
		if out, err := m.services.Markdown.Render(body, width-2); err == nil {
			body = out
		}
	}
	lines := strings.Split(body, "\n")
	if len(lines) > maxInstructionRows {
		lines = append(lines[:maxInstructionRows-1], th.Muted.Render("…"))
	}
	return th.Panel(strings.Join(lines, "\n"), "Instructions", width, len(lines)+2, false)
}

func (m Model) outcomePanel(o lesson.Outcome, width int) string {
	th := m.services.Theme
	title := th.Success.Bold(true).Render("Lesson complete!")
	if !o.Passed {
		title = th.Warning.Bold(true).Render("Lesson finished")
	}
	rows := []string{
		title,
		fmt.Sprintf("Score    %s", th.ProgressBar(o.Score, 100, 20)),
		fmt.Sprintf("Time     %s", styles.FormatDuration(int(o.Duration.Seconds()))),
		fmt.Sprintf("Mistakes %d   Hints %d   Skipped %d", o.Mistakes, o.HintsUsed, o.Skipped),
	}
	for _, a := range o.Achievements {
		rows = append(rows, th.Success.Render("★ "+progress.AchievementTitle(a.ID)))
	}
	if m.lesson.Summary != "" {
		rows = append(rows, "", th.Muted.Render(m.lesson.Summary))
	}
	return th.Panel(strings.Join(rows, "\n"), "Summary", width, len(rows)+2, true)
}

func (m Model) feedbackLine(width int) string {
	th := m.services.Theme
	style := th.Muted
	switch m.tone {
	case toneSuccess:
		style = th.Success
	case toneWarn:
		style = th.Hint
	case toneError:
		style = th.Error
	}
	if m.feedback == "" && m.services.Flags.Enabled(flags.FlagLearningHints) {
		if help := m.runner.Simulator().CommandHelp(); len(help) > 0 {
			return th.Hint.Render(styles.Truncate(fmt.Sprintf("Tip: %s - %s", help[0].Key, help[0].Description), width))
		}
	}
	return style.Render(styles.Truncate(m.feedback, width))
}

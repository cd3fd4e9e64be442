// Package editor draws a simulator's buffer with the theme: line numbers,
// a block cursor, the visual selection and a status line underneath.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/ui/styles"
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/mode"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

// Options mirror the display section of the config.
type Options struct {
	LineNumbers     bool
	HighlightCursor bool
}

// Render draws height rows of sim's buffer, each at most width cells, and
// scrolls so the cursor row is visible. Rows past the end show "~".
func Render(sim *simulator.Simulator, theme *styles.Theme, opts Options, width, height int) string {
	if height < 1 || width < 1 {
		return ""
	}
	buf := sim.Buffer()
	cur := buf.Cursor()
	cursor := cursorStyle(theme, sim.Mode())
	sel, selecting := sim.Selection()
	top := max(0, cur.Line-height+1)

	gutter := 0
	if opts.LineNumbers {
		gutter = max(3, len(fmt.Sprint(buf.LineCount()))) + 1
	}

	rows := make([]string, 0, height)
	for i := top; i < buf.LineCount() && len(rows) < height; i++ {
		var sb strings.Builder
		if opts.LineNumbers {
			sb.WriteString(theme.LineNumber.Render(fmt.Sprintf("%*d ", gutter-1, i+1)))
		}
		graphemes := text.Split(buf.Line(i))
		limit := width - gutter
		for col, g := range graphemes {
			if col >= limit {
				break
			}
			p := buffer.Position{Line: i, Col: col}
			switch {
			case opts.HighlightCursor && p == cur:
				sb.WriteString(cursor.Render(g))
			case selecting && sel.Contains(p):
				sb.WriteString(theme.Selection.Render(g))
			default:
				sb.WriteString(theme.Text.Render(g))
			}
		}
		// A cursor past the last grapheme (empty line, insert at end).
		if opts.HighlightCursor && i == cur.Line && cur.Col >= len(graphemes) && len(graphemes) < limit {
			sb.WriteString(cursor.Render(" "))
		}
		rows = append(rows, sb.String())
	}
	for len(rows) < height {
		rows = append(rows, theme.Muted.Render(strings.Repeat(" ", gutter)+"~"))
	}
	return strings.Join(rows, "\n")
}

// cursorStyle is a block in Normal and visual modes and an underline
// while keys insert or overwrite text.
func cursorStyle(theme *styles.Theme, m mode.Mode) lipgloss.Style {
	if m.IsInsertLike() {
		return theme.InsertCursor
	}
	return theme.Cursor
}

// StatusLine renders the mode badge, pending keys or the command line, and
// the cursor position, padded to width.
func StatusLine(sim *simulator.Simulator, theme *styles.Theme, width int) string {
	left := theme.ModeBadge(sim.Mode())
	if prompt, cmd, active := sim.CommandLine(); active {
		left += " " + theme.Text.Render(prompt+cmd)
	} else if p := sim.PendingKeys(); p != "" {
		left += " " + theme.Warning.Render(p)
	}
	cur := sim.Cursor()
	right := theme.StatusLine.Render(fmt.Sprintf("%d:%d", cur.Line+1, cur.Col+1))
	if sim.Buffer().Modified() {
		right = theme.Muted.Render("[+] ") + right
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left+" "+right, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

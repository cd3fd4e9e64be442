package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	cornerTL = "╭"
	cornerTR = "╮"
	cornerBL = "╰"
	cornerBR = "╯"
	lineH    = "─"
	lineV    = "│"
)

// Panel draws content inside a rounded border with title set into the top
// edge:
//
//	╭─ Editor ─────╮
//	│ content      │
//	╰──────────────╯
//
// Content is clipped to the inner box. A focused panel uses the focus
// border color.
func (t *Theme) Panel(content, title string, width, height int, focused bool) string {
	border := t.colors[TokenBorderDefault]
	if focused {
		border = t.colors[TokenBorderFocus]
	}
	edge := lipgloss.NewStyle().Foreground(border)
	inner := max(width-2, 1)
	rows := max(height-2, 1)

	body := lipgloss.NewStyle().Width(inner).Height(rows).MaxHeight(rows).Render(content)
	lines := strings.Split(body, "\n")

	var sb strings.Builder
	sb.WriteString(t.topEdge(title, inner, edge))
	for i := range rows {
		line := ""
		if i < len(lines) {
			line = Truncate(lines[i], inner)
		}
		if w := lipgloss.Width(line); w < inner {
			line += strings.Repeat(" ", inner-w)
		}
		sb.WriteString("\n" + edge.Render(lineV) + line + edge.Render(lineV))
	}
	sb.WriteString("\n" + edge.Render(cornerBL+strings.Repeat(lineH, inner)+cornerBR))
	return sb.String()
}

func (t *Theme) topEdge(title string, inner int, edge lipgloss.Style) string {
	if title == "" || inner < 5 {
		return edge.Render(cornerTL + strings.Repeat(lineH, inner) + cornerTR)
	}
	title = Truncate(title, inner-4)
	rest := max(inner-3-lipgloss.Width(title), 0)
	return edge.Render(cornerTL+lineH+" ") +
		t.Title.Render(title) +
		edge.Render(" "+strings.Repeat(lineH, rest)+cornerTR)
}

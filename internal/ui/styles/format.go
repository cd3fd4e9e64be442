package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Truncate shortens s to maxWidth cells, ending in "..." when it had to
// cut. It is ANSI-aware.
func Truncate(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// ProgressBar renders done out of total as a bar width cells wide followed
// by a percentage.
func (t *Theme) ProgressBar(done, total, width int) string {
	if width < 1 {
		width = 1
	}
	pct := 0
	if total > 0 {
		pct = min(100, done*100/total)
	}
	filled := pct * width / 100
	fill := lipgloss.NewStyle().Foreground(t.colors[TokenProgressFill])
	track := lipgloss.NewStyle().Foreground(t.colors[TokenProgressTrack])
	return fill.Render(strings.Repeat("█", filled)) +
		track.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %3d%%", pct)
}

// FormatDuration renders a number of seconds as "45s", "1m05s" or "2h03m".
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh%02dm", seconds/3600, (seconds%3600)/60)
}

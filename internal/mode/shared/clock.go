// Package shared holds helpers used by more than one screen.
package shared

import (
	"fmt"
	"time"
)

// RelativeTime renders how long before now t was: "now", "5m ago",
// "3h ago", "2d ago", "1w ago", "3mo ago" or "1y ago". Future times and
// the zero time read "now" and "never".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	const day = 24 * time.Hour
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < day:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*day:
		return fmt.Sprintf("%dd ago", int(d/day))
	case d < 28*day:
		return fmt.Sprintf("%dw ago", int(d/(7*day)))
	case d < 365*day:
		return fmt.Sprintf("%dmo ago", int(d/(30*day)))
	}
	return fmt.Sprintf("%dy ago", int(d/(365*day)))
}

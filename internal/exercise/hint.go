package exercise

import (
	"fmt"
	"strings"

	"github.com/zjrosen/vimgym/internal/vim/command"
)

var (
	caseHints = []string{
		"Vim commands are case-sensitive. Check your capitalization.",
		"Uppercase and lowercase commands often do different things.",
		"Make sure you're using the right case for each command.",
	}
	directionHints = []string{
		"Try moving in a different direction.",
		"Remember: h=left, j=down, k=up, l=right",
		"Double-check which direction you need to go.",
	}
)

// ContextualHint looks at the last executed key and explains how it
// differs from the expected one. It returns false when there is nothing to
// say, either because the learner is on track or has gone past the
// expected sequence. Hints rotate with the number of keys typed so the
// same state always gets the same hint.
func ContextualHint(expected, executed []command.Token) (string, bool) {
	if len(executed) == 0 {
		return "Start by pressing the first command in the sequence.", true
	}
	n := len(executed)
	if n > len(expected) {
		return "", false
	}
	want, got := expected[n-1], executed[n-1]
	if want == got {
		return "", false
	}
	switch {
	case strings.EqualFold(string(want), string(got)):
		return caseHints[(n-1)%len(caseHints)], true
	case isDirection(want) && isDirection(got):
		return directionHints[(n-1)%len(directionHints)], true
	}
	return fmt.Sprintf("Expected '%s' but got '%s'. Try again!", want, got), true
}

func isDirection(t command.Token) bool {
	return len(t) == 1 && strings.ContainsRune("hjkl", rune(t[0]))
}

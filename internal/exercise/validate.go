package exercise

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/vim/command"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

// TextPassThreshold is the similarity score at which TextContent passes
// without an exact match.
const TextPassThreshold = 80

func checkCommands(expected, executed []command.Token) (bool, int, string) {
	if slices.Equal(expected, executed) {
		return true, 100, "Perfect! Commands executed correctly."
	}
	if len(expected) == 0 {
		return false, 0, "Command sequence doesn't match expected pattern"
	}
	correct := correctPrefix(expected, executed)
	score := int(math.Round(float64(correct) / float64(len(expected)) * 100))
	if correct == len(executed) {
		return false, score, fmt.Sprintf("Good progress: %d/%d commands correct", correct, len(expected))
	}
	return false, score, "Command sequence doesn't match expected pattern"
}

func checkCursor(v CursorPosition, sim *simulator.Simulator) (bool, int, string) {
	actual := sim.Cursor()
	if actual == v.Expected {
		return true, 100, fmt.Sprintf("Excellent! Cursor positioned correctly at %s", actual)
	}
	dist := abs(actual.Line-v.Expected.Line) + abs(actual.Col-v.Expected.Col)
	return false, max(0, 100-10*dist), fmt.Sprintf("Cursor at %s, expected %s", actual, v.Expected)
}

func checkText(v TextContent, sim *simulator.Simulator) (bool, int, string) {
	expected := strings.TrimSpace(v.Expected)
	actual := strings.TrimSpace(sim.Content())
	if expected == actual {
		return true, 100, "Perfect! Text content matches expected result."
	}
	score := int(Similarity(expected, actual) * 100)
	feedback := fmt.Sprintf("Text similarity: %d%%. Expected: '%s', Got: '%s'", score, expected, actual)
	if d := textDiff(expected, actual); d != "" {
		feedback += "\nDiff: " + d
	}
	return score >= TextPassThreshold, score, feedback
}

func checkMode(v ModeState, sim *simulator.Simulator) (bool, int, string) {
	actual := sim.Mode()
	if strings.EqualFold(v.Expected, actual.String()) || strings.EqualFold(v.Expected, actual.DisplayName()) {
		return true, 100, fmt.Sprintf("Correct! You're in %s mode.", actual)
	}
	return false, 0, fmt.Sprintf("Wrong mode. Expected %s, but you're in %s", v.Expected, actual)
}

func checkCustom(v Custom, sim *simulator.Simulator) (bool, int, string) {
	if v.Check == nil {
		return true, 100, "Custom validation passed"
	}
	passed, feedback := v.Check(sim)
	if passed {
		return true, 100, feedback
	}
	return false, 0, feedback
}

// Similarity is the fraction of grapheme positions where a and b agree,
// measured against the longer of the two. Two empty strings are identical.
func Similarity(a, b string) float64 {
	ga, gb := text.Split(a), text.Split(b)
	if len(ga) == 0 && len(gb) == 0 {
		return 1
	}
	if len(ga) == 0 || len(gb) == 0 {
		return 0
	}
	same := 0
	for i := 0; i < len(ga) && i < len(gb); i++ {
		if ga[i] == gb[i] {
			same++
		}
	}
	return float64(same) / float64(max(len(ga), len(gb)))
}

// textDiff renders a character diff with [-removed-] and {+added+} markers.
func textDiff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(expected, actual, false))
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		}
	}
	return sb.String()
}

func correctPrefix(expected, executed []command.Token) int {
	n := 0
	for n < len(expected) && n < len(executed) && expected[n] == executed[n] {
		n++
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

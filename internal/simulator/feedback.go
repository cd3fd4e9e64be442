package simulator

import "github.com/zjrosen/vimgym/internal/vim/mode"

// Feedback is coaching derived from the current mode and recent commands.
type Feedback struct {
	CommandsUsed   int      `json:"commands_used"`
	CurrentMode    string   `json:"current_mode"`
	Suggestions    []string `json:"suggestions"`
	EfficiencyTips []string `json:"efficiency_tips"`
}

const recentWindow = 10

// repeatTips fire when a single command dominates the recent window.
var repeatTips = []struct {
	command string
	limit   int
	tip     string
}{
	{"h", 3, "Consider using 'w' or 'b' for word movement"},
	{"l", 3, "Consider using 'w' or 'e' to jump along the line"},
	{"j", 3, "Prefix a motion with a count, like 5j"},
	{"k", 3, "Prefix a motion with a count, like 5k"},
	{"x", 3, "Delete whole words with dw instead of repeated x"},
	{"dd", 2, "Delete several lines at once with a count, like 3dd"},
}

// Feedback returns suggestions for the active mode and tips for habits in
// the last few commands.
func (s *Simulator) Feedback() Feedback {
	fb := Feedback{
		CommandsUsed:   s.commandCount,
		CurrentMode:    s.modes.Current().DisplayName(),
		Suggestions:    []string{},
		EfficiencyTips: []string{},
	}
	switch s.modes.Current() {
	case mode.Normal:
		fb.Suggestions = append(fb.Suggestions,
			"Try movement commands: h, j, k, l",
			"Enter insert mode with: i, a, o")
	case mode.Insert, mode.Replace:
		fb.Suggestions = append(fb.Suggestions, "Press Esc to return to normal mode")
	case mode.Visual, mode.VisualLine, mode.VisualBlock:
		fb.Suggestions = append(fb.Suggestions, "Operate on the selection with d, y or c")
	case mode.Command:
		fb.Suggestions = append(fb.Suggestions, "Press Enter to run the command or Esc to cancel")
	}

	history := s.interp.History()
	if len(history) > recentWindow {
		history = history[len(history)-recentWindow:]
	}
	counts := make(map[string]int, len(history))
	for _, c := range history {
		counts[c]++
	}
	for _, rt := range repeatTips {
		if counts[rt.command] > rt.limit {
			fb.EfficiencyTips = append(fb.EfficiencyTips, rt.tip)
		}
	}
	return fb
}

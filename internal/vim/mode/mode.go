// Package mode implements the modal state machine of the simulated editor.
//
// A Manager holds the active mode, the previously active mode and a bounded
// history of visited modes. Every transition is looked up in a static table;
// transitions outside the table are rejected without touching state.
package mode

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is an exclusive editing state.
type Mode int

const (
	Normal Mode = iota
	Insert
	Visual
	VisualLine
	VisualBlock
	Command
	Replace
)

// All lists every mode in declaration order.
var All = []Mode{Normal, Insert, Visual, VisualLine, VisualBlock, Command, Replace}

// String returns the lowercase tag used for persistence.
func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Insert:
		return "insert"
	case Visual:
		return "visual"
	case VisualLine:
		return "visual_line"
	case VisualBlock:
		return "visual_block"
	case Command:
		return "command"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// DisplayName returns the label shown in the status line.
func (m Mode) DisplayName() string {
	switch m {
	case VisualLine:
		return "VISUAL LINE"
	case VisualBlock:
		return "VISUAL BLOCK"
	default:
		return strings.ToUpper(m.String())
	}
}

// IsVisual reports whether m is one of the three visual modes.
func (m Mode) IsVisual() bool {
	return m == Visual || m == VisualLine || m == VisualBlock
}

// IsInsertLike reports whether typed characters land in the buffer.
func (m Mode) IsInsertLike() bool {
	return m == Insert || m == Replace
}

// Parse resolves a persisted tag or display name (case-insensitive).
func Parse(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	for _, m := range All {
		if m.String() == key {
			return m, nil
		}
	}
	return Normal, fmt.Errorf("unknown mode %q", s)
}

// transitions is the static adjacency table. Self transitions are absent.
var transitions = map[Mode][]Mode{
	Normal:      {Insert, Visual, VisualLine, VisualBlock, Command, Replace},
	Insert:      {Normal},
	Visual:      {Normal, Insert, VisualLine, VisualBlock},
	VisualLine:  {Normal, Insert, Visual, VisualBlock},
	VisualBlock: {Normal, Insert, Visual, VisualLine},
	Command:     {Normal},
	Replace:     {Normal},
}

// Targets returns the modes reachable from m.
func Targets(m Mode) []Mode {
	out := make([]Mode, len(transitions[m]))
	copy(out, transitions[m])
	return out
}

// commandTargets maps mode-switching keys to their destination.
var commandTargets = map[string]Mode{
	"i":     Insert,
	"I":     Insert,
	"a":     Insert,
	"A":     Insert,
	"o":     Insert,
	"O":     Insert,
	"c":     Insert,
	"C":     Insert,
	"s":     Insert,
	"S":     Insert,
	"v":     Visual,
	"V":     VisualLine,
	"<C-v>": VisualBlock,
	":":     Command,
	"/":     Command,
	"?":     Command,
	"R":     Replace,
	"<Esc>": Normal,
	"<C-c>": Normal,
}

// CommandTarget returns the mode a key switches to, if any.
func CommandTarget(token string) (Mode, bool) {
	m, ok := commandTargets[token]
	return m, ok
}

const (
	maxHistory     = 100
	trimmedHistory = 50
	stateHistory   = 10
)

// ErrInvalidState is returned by Restore when persisted state cannot be used.
var ErrInvalidState = errors.New("invalid mode state")

// Manager tracks the active mode and its history.
type Manager struct {
	current  Mode
	previous Mode
	history  []Mode
}

// NewManager returns a manager in Normal mode.
func NewManager() *Manager {
	m := &Manager{}
	m.Reset()
	return m
}

// Current returns the active mode.
func (m *Manager) Current() Mode { return m.current }

// Previous returns the mode active before the last successful transition.
func (m *Manager) Previous() Mode { return m.previous }

// History returns a copy of the visited modes, newest last.
func (m *Manager) History() []Mode {
	out := make([]Mode, len(m.history))
	copy(out, m.history)
	return out
}

// CanTransition reports whether target is reachable from the active mode.
func (m *Manager) CanTransition(target Mode) bool {
	for _, allowed := range transitions[m.current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// SwitchMode moves to target when the transition is legal.
func (m *Manager) SwitchMode(target Mode) bool {
	if !m.CanTransition(target) {
		return false
	}
	m.previous = m.current
	m.current = target
	m.history = append(m.history, target)
	if len(m.history) > maxHistory {
		m.history = append([]Mode(nil), m.history[len(m.history)-trimmedHistory:]...)
	}
	return true
}

// ProcessCommand switches mode for a mode-changing key. Keys outside the
// command table and illegal transitions return false.
func (m *Manager) ProcessCommand(token string) bool {
	target, ok := CommandTarget(token)
	if !ok {
		return false
	}
	return m.SwitchMode(target)
}

// Reset returns to Normal with a single-entry history.
func (m *Manager) Reset() {
	m.current = Normal
	m.previous = Normal
	m.history = []Mode{Normal}
}

// State is the persisted form of a Manager.
type State struct {
	Current  string   `json:"current_mode"`
	Previous string   `json:"previous_mode"`
	History  []string `json:"mode_history"`
}

// State captures the manager, keeping the ten newest history entries.
func (m *Manager) State() State {
	h := m.history
	if len(h) > stateHistory {
		h = h[len(h)-stateHistory:]
	}
	tags := make([]string, len(h))
	for i, mode := range h {
		tags[i] = mode.String()
	}
	return State{
		Current:  m.current.String(),
		Previous: m.previous.String(),
		History:  tags,
	}
}

// Restore loads persisted state. Any unparseable value resets the manager
// and returns ErrInvalidState.
func (m *Manager) Restore(s State) error {
	current, err := Parse(s.Current)
	if err != nil {
		m.Reset()
		return fmt.Errorf("%w: current: %v", ErrInvalidState, err)
	}
	previous, err := Parse(s.Previous)
	if err != nil {
		m.Reset()
		return fmt.Errorf("%w: previous: %v", ErrInvalidState, err)
	}
	history := make([]Mode, 0, len(s.History))
	for _, tag := range s.History {
		h, err := Parse(tag)
		if err != nil {
			m.Reset()
			return fmt.Errorf("%w: history: %v", ErrInvalidState, err)
		}
		history = append(history, h)
	}
	if len(history) == 0 {
		history = []Mode{current}
	}
	m.current = current
	m.previous = previous
	m.history = history
	return nil
}

// Clone returns an independent copy.
func (m *Manager) Clone() *Manager {
	c := *m
	c.history = append([]Mode(nil), m.history...)
	return &c
}

package simulator

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/mode"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

// CursorBlock replaces the grapheme under the cursor in DisplayLines.
const CursorBlock = "█"

// Display controls the plain-text rendering.
type Display struct {
	Width           int  `json:"width"`
	Height          int  `json:"height"`
	LineNumbers     bool `json:"line_numbers"`
	HighlightCursor bool `json:"highlight_cursor"`
}

// DefaultDisplay is an 80x24 screen with line numbers and a cursor block.
func DefaultDisplay() Display {
	return Display{Width: 80, Height: 24, LineNumbers: true, HighlightCursor: true}
}

func (d Display) valid() bool { return d.Width > 0 && d.Height > 0 }

// Option configures a Simulator.
type Option func(*Simulator)

// WithDisplay overrides the display settings. Non-positive sizes are ignored.
func WithDisplay(d Display) Option {
	return func(s *Simulator) {
		if d.valid() {
			s.display = d
		}
	}
}

// WithHints toggles the key hint at the end of the status line.
func WithHints(enabled bool) Option {
	return func(s *Simulator) { s.hints = enabled }
}

// SetDisplay changes display settings after construction.
func (s *Simulator) SetDisplay(d Display) {
	if d.valid() {
		s.display = d
	}
}

// Display returns the display settings.
func (s *Simulator) Display() Display { return s.display }

// SetHints toggles the status line hint.
func (s *Simulator) SetHints(enabled bool) { s.hints = enabled }

// DisplayLines renders the visible window: numbered lines, the cursor as a
// block and "~" filler rows up to the display height. The window scrolls so
// the cursor line is always visible.
func (s *Simulator) DisplayLines() []string {
	d := s.display
	cur := s.buf.Cursor()
	top := max(0, cur.Line-d.Height+1)
	out := make([]string, 0, d.Height)
	for i := top; i < s.buf.LineCount() && len(out) < d.Height; i++ {
		line := s.buf.Line(i)
		if d.HighlightCursor && i == cur.Line {
			line = withCursor(line, cur.Col)
		}
		if d.LineNumbers {
			line = fmt.Sprintf("%4d ", i+1) + line
		}
		out = append(out, ansi.Truncate(line, d.Width, ""))
	}
	for len(out) < d.Height {
		if d.LineNumbers {
			out = append(out, "    ~")
		} else {
			out = append(out, "~")
		}
	}
	return out
}

func withCursor(line string, col int) string {
	if col >= text.Len(line) {
		return line + CursorBlock
	}
	return text.Replace(line, col, CursorBlock)
}

// StatusLine summarizes mode, position and recent activity:
//
//	Mode: NORMAL | Line: 1/3 | Col: 1 | Last: 'j' | Commands: 1 | Hint: i - insert before cursor
func (s *Simulator) StatusLine() string {
	cur := s.buf.Cursor()
	parts := []string{
		"Mode: " + s.modes.Current().DisplayName(),
		fmt.Sprintf("Line: %d/%d", cur.Line+1, s.buf.LineCount()),
		fmt.Sprintf("Col: %d", cur.Col+1),
	}
	if s.lastCommand != "" {
		parts = append(parts, "Last: '"+s.lastCommand+"'")
	}
	if s.commandCount > 0 {
		parts = append(parts, fmt.Sprintf("Commands: %d", s.commandCount))
	}
	if s.errorMessage != "" {
		parts = append(parts, "Error: "+s.errorMessage)
	}
	if s.hints {
		if help := mode.AvailableCommands(s.modes.Current()); len(help) > 0 {
			parts = append(parts, fmt.Sprintf("Hint: %s - %s", help[0].Key, help[0].Description))
		}
	}
	return strings.Join(parts, " | ")
}

// Selection is the active visual selection.
type Selection struct {
	Mode  mode.Mode
	Start buffer.Position
	End   buffer.Position
}

// Selection returns the visual selection for highlighting. Start and End
// are ordered and inclusive; for VisualBlock they are the top-left and
// bottom-right corners.
func (s *Simulator) Selection() (Selection, bool) {
	m := s.modes.Current()
	if !m.IsVisual() {
		return Selection{}, false
	}
	switch m {
	case mode.VisualBlock:
		top, bottom, left, right, ok := s.buf.VisualBlock()
		if !ok {
			return Selection{}, false
		}
		return Selection{Mode: m, Start: buffer.Position{Line: top, Col: left}, End: buffer.Position{Line: bottom, Col: right}}, true
	case mode.VisualLine:
		from, to, ok := s.buf.VisualLines()
		if !ok {
			return Selection{}, false
		}
		end := max(0, s.buf.LineLen(to)-1)
		return Selection{Mode: m, Start: buffer.Position{Line: from}, End: buffer.Position{Line: to, Col: end}}, true
	}
	start, end, ok := s.buf.VisualBounds()
	if !ok {
		return Selection{}, false
	}
	return Selection{Mode: m, Start: start, End: end}, true
}

// Contains reports whether the grapheme at p is selected.
func (sel Selection) Contains(p buffer.Position) bool {
	if p.Line < sel.Start.Line || p.Line > sel.End.Line {
		return false
	}
	switch sel.Mode {
	case mode.VisualLine:
		return true
	case mode.VisualBlock:
		return p.Col >= sel.Start.Col && p.Col <= sel.End.Col
	}
	return !p.Before(sel.Start) && !sel.End.Before(p)
}

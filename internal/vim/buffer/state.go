package buffer

import "fmt"

// State is the persisted form of a Buffer. Undo history is not persisted;
// a restored buffer starts a fresh history with the restored text as its
// initial content.
type State struct {
	Lines       []string  `json:"lines"`
	Cursor      Position  `json:"cursor"`
	VisualStart *Position `json:"visual_start,omitempty"`
	VisualEnd   *Position `json:"visual_end,omitempty"`
	Modified    bool      `json:"modified"`
}

// State captures the buffer.
func (b *Buffer) State() State {
	s := State{
		Lines:    b.Lines(),
		Cursor:   b.cursor,
		Modified: b.modified,
	}
	if b.visualStart != nil && b.visualEnd != nil {
		vs, ve := *b.visualStart, *b.visualEnd
		s.VisualStart, s.VisualEnd = &vs, &ve
	}
	return s
}

// Restore replaces the buffer with s. An empty line list is rejected; the
// cursor and anchors are clamped into range.
func (b *Buffer) Restore(s State) error {
	if len(s.Lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInvalidState)
	}
	b.lines = append([]string(nil), s.Lines...)
	b.initial = b.capture("initial")
	b.undo, b.redo = nil, nil
	b.group, b.hasPending = 0, false
	b.cursor = b.clampPos(s.Cursor, true)
	b.ClearVisual()
	if s.VisualStart != nil && s.VisualEnd != nil {
		vs := b.clampPos(*s.VisualStart, true)
		ve := b.clampPos(*s.VisualEnd, true)
		b.visualStart, b.visualEnd = &vs, &ve
	}
	b.initial.cursor = b.cursor
	b.modified = s.Modified
	return nil
}

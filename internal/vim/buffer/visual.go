package buffer

import (
	"strings"

	"github.com/zjrosen/vimgym/internal/vim/text"
)

// StartVisual anchors both ends of the selection at the cursor.
func (b *Buffer) StartVisual() {
	start, end := b.cursor, b.cursor
	b.visualStart = &start
	b.visualEnd = &end
}

// UpdateVisual moves the free end of the selection to the cursor.
func (b *Buffer) UpdateVisual() {
	if b.visualStart == nil {
		b.StartVisual()
		return
	}
	end := b.cursor
	b.visualEnd = &end
}

// SwapVisualAnchor exchanges the fixed and free ends and moves the cursor to
// the new free end.
func (b *Buffer) SwapVisualAnchor() bool {
	if b.visualStart == nil || b.visualEnd == nil {
		return false
	}
	b.visualStart, b.visualEnd = b.visualEnd, b.visualStart
	b.cursor = *b.visualEnd
	return true
}

// ClearVisual drops the selection.
func (b *Buffer) ClearVisual() {
	b.visualStart = nil
	b.visualEnd = nil
}

// VisualActive reports whether a selection exists.
func (b *Buffer) VisualActive() bool {
	return b.visualStart != nil && b.visualEnd != nil
}

// VisualBounds returns the selection ordered so start comes first. The end
// column is inclusive.
func (b *Buffer) VisualBounds() (start, end Position, ok bool) {
	if !b.VisualActive() {
		return Position{}, Position{}, false
	}
	start, end = *b.visualStart, *b.visualEnd
	if end.Before(start) {
		start, end = end, start
	}
	return start, end, true
}

// VisualSelection returns the selected text for a characterwise selection.
// Partial first and last lines are joined with whole interior lines.
func (b *Buffer) VisualSelection() (string, bool) {
	start, end, ok := b.VisualBounds()
	if !ok {
		return "", false
	}
	start = b.clampPos(start, true)
	end = b.clampPos(end, true)
	if start.Line == end.Line {
		return text.Slice(b.lines[start.Line], start.Col, end.Col+1), true
	}
	parts := make([]string, 0, end.Line-start.Line+1)
	first := b.lines[start.Line]
	parts = append(parts, text.Slice(first, start.Col, text.Len(first)))
	parts = append(parts, b.lines[start.Line+1:end.Line]...)
	parts = append(parts, text.Slice(b.lines[end.Line], 0, end.Col+1))
	return strings.Join(parts, "\n"), true
}

// VisualLines returns the line range covered by the selection.
func (b *Buffer) VisualLines() (from, to int, ok bool) {
	start, end, ok := b.VisualBounds()
	if !ok {
		return 0, 0, false
	}
	return start.Line, end.Line, true
}

// VisualBlock returns the rectangle covered by the selection with inclusive
// column bounds.
func (b *Buffer) VisualBlock() (top, bottom, left, right int, ok bool) {
	if !b.VisualActive() {
		return 0, 0, 0, 0, false
	}
	s, e := *b.visualStart, *b.visualEnd
	top, bottom = min(s.Line, e.Line), max(s.Line, e.Line)
	left, right = min(s.Col, e.Col), max(s.Col, e.Col)
	return top, bottom, left, right, true
}

// Contains reports whether p falls inside a characterwise selection.
func (b *Buffer) Contains(p Position) bool {
	start, end, ok := b.VisualBounds()
	if !ok {
		return false
	}
	return !p.Before(start) && !end.Before(p)
}

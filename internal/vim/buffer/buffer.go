// Package buffer implements the text model of the simulated editor: a list
// of lines that is never empty, a cursor, optional visual selection anchors
// and a bounded snapshot-based undo history.
//
// Columns are grapheme indexes (see package text). A cursor column may sit
// one past the last grapheme so Insert mode can append; Normal-mode clamping
// is the interpreter's concern.
package buffer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/vimgym/internal/vim/text"
)

// MaxUndoLevels bounds the undo stack. The oldest snapshot is evicted first.
const MaxUndoLevels = 100

// ErrInvalidState is returned by Restore for unusable persisted state.
var ErrInvalidState = errors.New("invalid buffer state")

// Position is a zero-based line and grapheme column.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Line, p.Col)
}

// Before reports whether p sorts before q in reading order.
func (p Position) Before(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

// Direction is a single-step cursor movement.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

type snapshot struct {
	lines  []string
	cursor Position
	desc   string
}

// Buffer holds editable text.
type Buffer struct {
	lines       []string
	cursor      Position
	visualStart *Position
	visualEnd   *Position
	modified    bool
	version     uint64

	initial    snapshot
	undo       []snapshot
	redo       []snapshot
	maxUndo    int
	group      int
	pending    snapshot
	hasPending bool
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithMaxUndo overrides MaxUndoLevels.
func WithMaxUndo(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.maxUndo = n
		}
	}
}

// New splits content on newlines. An empty string yields one empty line.
func New(content string, opts ...Option) *Buffer {
	b := &Buffer{maxUndo: MaxUndoLevels}
	for _, opt := range opts {
		opt(b)
	}
	b.lines = splitLines(content)
	b.initial = b.capture("initial")
	return b
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(content, "\n")
}

// Lines returns a copy of the buffer lines.
func (b *Buffer) Lines() []string {
	return append([]string(nil), b.lines...)
}

// Line returns line n, or "" when out of range.
func (b *Buffer) Line(n int) string {
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return b.lines[n]
}

// LineCount is always at least 1.
func (b *Buffer) LineCount() int { return len(b.lines) }

// LineLen returns the grapheme length of line n.
func (b *Buffer) LineLen(n int) int { return text.Len(b.Line(n)) }

// CurrentLine returns the line under the cursor.
func (b *Buffer) CurrentLine() string { return b.lines[b.cursor.Line] }

// Content joins all lines with newlines.
func (b *Buffer) Content() string { return strings.Join(b.lines, "\n") }

// Cursor returns the cursor position.
func (b *Buffer) Cursor() Position { return b.cursor }

// Modified reports whether the content differs from the initial content.
func (b *Buffer) Modified() bool { return b.modified }

// InsertText inserts at the cursor and leaves the cursor after the text.
// Embedded newlines split the line; the remainder of the original line is
// re-attached after the last inserted line.
func (b *Buffer) InsertText(s string) bool {
	if s == "" {
		return false
	}
	b.save("insert text")

	line := b.lines[b.cursor.Line]
	cut := text.ByteOffset(line, b.cursor.Col)
	head, tail := line[:cut], line[cut:]
	parts := splitLines(s)

	if len(parts) == 1 {
		b.lines[b.cursor.Line] = head + s + tail
		b.cursor.Col = colBeforeTail(b.lines[b.cursor.Line], tail)
		b.touch()
		return true
	}

	inserted := make([]string, len(parts))
	inserted[0] = head + parts[0]
	copy(inserted[1:], parts[1:])
	last := len(parts) - 1
	inserted[last] = parts[last] + tail

	b.lines = splice(b.lines, b.cursor.Line, 1, inserted)
	b.cursor = Position{Line: b.cursor.Line + last, Col: colBeforeTail(inserted[last], tail)}
	b.touch()
	return true
}

// colBeforeTail is the column just past the inserted text in line, which
// ends with tail. It is measured on the joined line since combining marks
// merge with the grapheme before them.
func colBeforeTail(line, tail string) int {
	return max(0, text.Len(line)-text.Len(tail))
}

// DeleteCharAtCursor deletes the grapheme under the cursor. At end of line
// the next line is joined; at the end of the buffer nothing happens.
func (b *Buffer) DeleteCharAtCursor() bool {
	line := b.lines[b.cursor.Line]
	n := text.Len(line)
	if b.cursor.Col < n {
		b.save("delete char")
		b.lines[b.cursor.Line] = text.Delete(line, b.cursor.Col, b.cursor.Col+1)
		b.touch()
		return true
	}
	if b.cursor.Line+1 >= len(b.lines) {
		return false
	}
	b.save("join lines")
	b.lines[b.cursor.Line] = line + b.lines[b.cursor.Line+1]
	b.lines = splice(b.lines, b.cursor.Line+1, 1, nil)
	b.touch()
	return true
}

// DeleteCharBeforeCursor is backspace. At column 0 the current line is
// merged onto the previous one and the cursor moves to the join point.
func (b *Buffer) DeleteCharBeforeCursor() bool {
	if b.cursor.Col > 0 {
		b.save("backspace")
		line := b.lines[b.cursor.Line]
		b.lines[b.cursor.Line] = text.Delete(line, b.cursor.Col-1, b.cursor.Col)
		b.cursor.Col--
		b.touch()
		return true
	}
	if b.cursor.Line == 0 {
		return false
	}
	b.save("join with previous line")
	prev := b.lines[b.cursor.Line-1]
	joinCol := text.Len(prev)
	b.lines[b.cursor.Line-1] = prev + b.lines[b.cursor.Line]
	b.lines = splice(b.lines, b.cursor.Line, 1, nil)
	b.cursor = Position{Line: b.cursor.Line - 1, Col: joinCol}
	b.touch()
	return true
}

// DeleteLine removes line n. The last remaining line is cleared instead.
func (b *Buffer) DeleteLine(n int) bool {
	_, ok := b.DeleteLines(n, n)
	return ok
}

// DeleteCurrentLine removes the cursor line.
func (b *Buffer) DeleteCurrentLine() bool {
	return b.DeleteLine(b.cursor.Line)
}

// DeleteLines removes lines from..to inclusive and returns them. When every
// line is removed a single empty line remains. The cursor stays on the same
// index, clamped, at column 0.
func (b *Buffer) DeleteLines(from, to int) ([]string, bool) {
	if from > to {
		from, to = to, from
	}
	if from < 0 || from >= len(b.lines) {
		return nil, false
	}
	if to >= len(b.lines) {
		to = len(b.lines) - 1
	}
	b.save("delete lines")
	removed := append([]string(nil), b.lines[from:to+1]...)
	if to-from+1 == len(b.lines) {
		b.lines = []string{""}
	} else {
		b.lines = splice(b.lines, from, to-from+1, nil)
	}
	line := from
	if line >= len(b.lines) {
		line = len(b.lines) - 1
	}
	b.cursor = Position{Line: line, Col: 0}
	b.touch()
	return removed, true
}

// InsertLineBelow adds a line after the cursor line; the cursor moves to
// its end.
func (b *Buffer) InsertLineBelow(content string) {
	b.save("insert line below")
	at := b.cursor.Line + 1
	b.lines = splice(b.lines, at, 0, []string{content})
	b.cursor = Position{Line: at, Col: text.Len(content)}
	b.touch()
}

// InsertLineAbove adds a line before the cursor line; the cursor moves to
// its end.
func (b *Buffer) InsertLineAbove(content string) {
	b.save("insert line above")
	at := b.cursor.Line
	b.lines = splice(b.lines, at, 0, []string{content})
	b.cursor = Position{Line: at, Col: text.Len(content)}
	b.touch()
}

// InsertLines splices whole lines before index at (len(lines) appends).
// The cursor moves to column 0 of the first inserted line.
func (b *Buffer) InsertLines(at int, lines []string) bool {
	if len(lines) == 0 || at < 0 || at > len(b.lines) {
		return false
	}
	b.save("insert lines")
	b.lines = splice(b.lines, at, 0, append([]string(nil), lines...))
	b.cursor = Position{Line: at, Col: 0}
	b.touch()
	return true
}

// ReplaceLine overwrites line n.
func (b *Buffer) ReplaceLine(n int, content string) bool {
	if n < 0 || n >= len(b.lines) {
		return false
	}
	if b.lines[n] == content {
		return false
	}
	b.save("replace line")
	b.lines[n] = content
	if b.cursor.Line == n && b.cursor.Col > text.Len(content) {
		b.cursor.Col = text.Len(content)
	}
	b.touch()
	return true
}

// ReplaceCharAt overwrites the grapheme at p. At end of line s is appended.
func (b *Buffer) ReplaceCharAt(p Position, s string) bool {
	if p.Line < 0 || p.Line >= len(b.lines) || s == "" {
		return false
	}
	line := b.lines[p.Line]
	n := text.Len(line)
	if p.Col < 0 || p.Col > n {
		return false
	}
	b.save("replace char")
	if p.Col == n {
		b.lines[p.Line] = line + s
	} else {
		b.lines[p.Line] = text.Replace(line, p.Col, s)
	}
	b.touch()
	return true
}

// DeleteRange removes text from start (inclusive) to end (exclusive) in
// reading order, joining lines as needed, and returns the removed text. The
// cursor moves to start.
func (b *Buffer) DeleteRange(start, end Position) (string, bool) {
	if end.Before(start) {
		start, end = end, start
	}
	start = b.clampPos(start, true)
	end = b.clampPos(end, true)
	if start == end {
		return "", false
	}
	b.save("delete range")

	removed := b.textBetween(start, end)
	first := b.lines[start.Line]
	last := b.lines[end.Line]
	joined := text.Slice(first, 0, start.Col) + text.Slice(last, end.Col, text.Len(last))
	b.lines = splice(b.lines, start.Line, end.Line-start.Line+1, []string{joined})
	b.cursor = start
	b.touch()
	return removed, true
}

// TextBetween returns text from start (inclusive) to end (exclusive).
func (b *Buffer) TextBetween(start, end Position) string {
	if end.Before(start) {
		start, end = end, start
	}
	return b.textBetween(b.clampPos(start, true), b.clampPos(end, true))
}

func (b *Buffer) textBetween(start, end Position) string {
	if start.Line == end.Line {
		return text.Slice(b.lines[start.Line], start.Col, end.Col)
	}
	var sb strings.Builder
	first := b.lines[start.Line]
	sb.WriteString(text.Slice(first, start.Col, text.Len(first)))
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[i])
	}
	sb.WriteByte('\n')
	sb.WriteString(text.Slice(b.lines[end.Line], 0, end.Col))
	return sb.String()
}

// SetContent replaces the whole buffer as one undoable change.
func (b *Buffer) SetContent(content string) {
	b.save("set content")
	b.lines = splitLines(content)
	b.cursor = b.clampPos(b.cursor, false)
	b.touch()
}

// RevertToInitial restores the content the buffer was created with. The
// revert itself is undoable.
func (b *Buffer) RevertToInitial() {
	b.save("revert")
	b.lines = append([]string(nil), b.initial.lines...)
	b.cursor = b.initial.cursor
	b.ClearVisual()
	b.touch()
}

// MoveCursor moves count steps, clamping the column on vertical moves and
// stopping at buffer edges. It reports whether any step was taken.
func (b *Buffer) MoveCursor(dir Direction, count int) bool {
	if count < 1 {
		count = 1
	}
	moved := false
	for i := 0; i < count; i++ {
		switch dir {
		case Up:
			if b.cursor.Line == 0 {
				return moved
			}
			b.cursor.Line--
		case Down:
			if b.cursor.Line >= len(b.lines)-1 {
				return moved
			}
			b.cursor.Line++
		case Left:
			if b.cursor.Col == 0 {
				return moved
			}
			b.cursor.Col--
		case Right:
			if b.cursor.Col >= b.LineLen(b.cursor.Line) {
				return moved
			}
			b.cursor.Col++
		default:
			return moved
		}
		if n := b.LineLen(b.cursor.Line); b.cursor.Col > n {
			b.cursor.Col = n
		}
		moved = true
	}
	return moved
}

// MoveTo sets the cursor if the position is inside the buffer.
func (b *Buffer) MoveTo(line, col int) bool {
	if line < 0 || line >= len(b.lines) {
		return false
	}
	if col < 0 || col > b.LineLen(line) {
		return false
	}
	b.cursor = Position{Line: line, Col: col}
	return true
}

// ClampCursor keeps the cursor on a grapheme. Normal mode calls it so the
// cursor never rests past the last character of a non-empty line.
func (b *Buffer) ClampCursor() {
	b.cursor = b.clampPos(b.cursor, false)
}

func (b *Buffer) clampPos(p Position, allowEnd bool) Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(b.lines) {
		p.Line = len(b.lines) - 1
	}
	maxCol := b.LineLen(p.Line)
	if !allowEnd && maxCol > 0 {
		maxCol--
	}
	if p.Col > maxCol {
		p.Col = maxCol
	}
	if p.Col < 0 {
		p.Col = 0
	}
	return p
}

func (b *Buffer) touch() {
	b.version++
	b.modified = !equalLines(b.lines, b.initial.lines)
}

// Version increases on every content change, including undo and redo.
func (b *Buffer) Version() uint64 { return b.version }

// MarkSaved makes the current content the baseline for Modified and for
// RevertToInitial, as writing a file would.
func (b *Buffer) MarkSaved() {
	b.initial = b.capture("saved")
	b.modified = false
}

func splice(lines []string, at, remove int, insert []string) []string {
	out := make([]string, 0, len(lines)-remove+len(insert))
	out = append(out, lines[:at]...)
	out = append(out, insert...)
	return append(out, lines[at+remove:]...)
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

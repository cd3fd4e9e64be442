package command

import (
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

// Word motions walk the buffer as if every line ended in a newline, which
// counts as blank. An empty line is its own word, so w and b stop on it.

type walker struct {
	buf *buffer.Buffer
	big bool
}

func (w walker) class(p buffer.Position) text.Class {
	line := w.buf.Line(p.Line)
	if p.Col >= text.Len(line) {
		return text.Space
	}
	c := text.Classify(text.At(line, p.Col))
	if w.big && c == text.Punct {
		return text.Word
	}
	return c
}

func (w walker) emptyLine(p buffer.Position) bool {
	return p.Col == 0 && w.buf.LineLen(p.Line) == 0
}

func (w walker) next(p buffer.Position) (buffer.Position, bool) {
	if p.Col < w.buf.LineLen(p.Line) {
		return buffer.Position{Line: p.Line, Col: p.Col + 1}, true
	}
	if p.Line+1 < w.buf.LineCount() {
		return buffer.Position{Line: p.Line + 1}, true
	}
	return p, false
}

func (w walker) prev(p buffer.Position) (buffer.Position, bool) {
	if p.Col > 0 {
		return buffer.Position{Line: p.Line, Col: p.Col - 1}, true
	}
	if p.Line > 0 {
		return buffer.Position{Line: p.Line - 1, Col: w.buf.LineLen(p.Line - 1)}, true
	}
	return p, false
}

// lastChar is the position of the final grapheme in the buffer.
func (w walker) lastChar() buffer.Position {
	last := w.buf.LineCount() - 1
	return buffer.Position{Line: last, Col: max(0, w.buf.LineLen(last)-1)}
}

// wordForward finds the start of the next word (w, W), or the last
// character of the buffer when there is none.
func (w walker) wordForward(start buffer.Position) buffer.Position {
	p, found := w.nextWordStart(start)
	if !found {
		return w.lastChar()
	}
	return p
}

// nextWordStart reports false when the walk runs off the end of the buffer.
func (w walker) nextWordStart(start buffer.Position) (buffer.Position, bool) {
	p, ok := start, true
	if c := w.class(p); c != text.Space {
		for ok && w.class(p) == c {
			p, ok = w.next(p)
		}
	}
	for ok && w.class(p) == text.Space {
		if p != start && w.emptyLine(p) {
			return p, true
		}
		p, ok = w.next(p)
	}
	return p, ok
}

// wordBackward finds the start of the current or previous word (b, B).
func (w walker) wordBackward(start buffer.Position) buffer.Position {
	p, ok := w.prev(start)
	if !ok {
		return start
	}
	for w.class(p) == text.Space {
		if w.emptyLine(p) {
			return p
		}
		q, ok := w.prev(p)
		if !ok {
			return p
		}
		p = q
	}
	c := w.class(p)
	for {
		q, ok := w.prev(p)
		if !ok || w.class(q) != c {
			return p
		}
		p = q
	}
}

// wordEnd finds the end of the current or next word (e, E).
func (w walker) wordEnd(start buffer.Position) buffer.Position {
	p, ok := w.next(start)
	for ok && w.class(p) == text.Space {
		p, ok = w.next(p)
	}
	if !ok {
		return w.lastChar()
	}
	c := w.class(p)
	for {
		q, ok := w.next(p)
		if !ok || w.class(q) != c {
			return p
		}
		p = q
	}
}

// motionTarget computes where a motion lands from the cursor. ok is false
// when the motion cannot move at all.
func (in *Interpreter) motionTarget(id ID, count int, explicitCount bool) (buffer.Position, bool) {
	b := in.buf
	cur := b.Cursor()
	last := b.LineCount() - 1

	switch id {
	case MoveLeft:
		if cur.Col == 0 {
			return cur, false
		}
		return buffer.Position{Line: cur.Line, Col: max(0, cur.Col-count)}, true
	case MoveRight:
		limit := in.maxCol(cur.Line)
		if cur.Col >= limit {
			return cur, false
		}
		return buffer.Position{Line: cur.Line, Col: min(limit, cur.Col+count)}, true
	case MoveDown, NextLineStart:
		if cur.Line >= last {
			return cur, false
		}
		line := min(last, cur.Line+count)
		if id == NextLineStart {
			return buffer.Position{Line: line, Col: in.firstNonBlank(line)}, true
		}
		return buffer.Position{Line: line, Col: min(cur.Col, in.maxCol(line))}, true
	case MoveUp:
		if cur.Line == 0 {
			return cur, false
		}
		line := max(0, cur.Line-count)
		return buffer.Position{Line: line, Col: min(cur.Col, in.maxCol(line))}, true
	case WordForward, BigWordForward, WordBackward, BigWordBackward, WordEnd, BigWordEnd:
		w := walker{buf: b, big: id == BigWordForward || id == BigWordBackward || id == BigWordEnd}
		p := cur
		for i := 0; i < count; i++ {
			switch id {
			case WordForward, BigWordForward:
				p = w.wordForward(p)
			case WordBackward, BigWordBackward:
				p = w.wordBackward(p)
			default:
				p = w.wordEnd(p)
			}
		}
		return p, p != cur
	case LineStart:
		return buffer.Position{Line: cur.Line}, true
	case LineFirstNonBlank:
		return buffer.Position{Line: cur.Line, Col: in.firstNonBlank(cur.Line)}, true
	case LineEnd:
		line := min(last, cur.Line+count-1)
		return buffer.Position{Line: line, Col: in.maxCol(line)}, true
	case LineLastNonBlank:
		line := min(last, cur.Line+count-1)
		return buffer.Position{Line: line, Col: text.LastNonBlank(b.Line(line))}, true
	case FileStart:
		line := 0
		if explicitCount {
			line = min(last, count-1)
		}
		return buffer.Position{Line: line, Col: in.firstNonBlank(line)}, true
	case FileEnd:
		line := last
		if explicitCount {
			line = min(last, count-1)
		}
		return buffer.Position{Line: line, Col: in.firstNonBlank(line)}, true
	}
	return cur, false
}

// maxCol is the furthest column Normal mode allows on line n.
func (in *Interpreter) maxCol(n int) int {
	return max(0, in.buf.LineLen(n)-1)
}

func (in *Interpreter) firstNonBlank(n int) int {
	return min(text.FirstNonBlank(in.buf.Line(n)), in.maxCol(n))
}

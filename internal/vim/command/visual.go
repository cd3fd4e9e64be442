package command

import (
	"strings"

	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/mode"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

// visualKeys are handled before the motion trie in Visual modes.
var visualKeys = map[Token]bool{
	"d": true, "x": true, Delete: true, "y": true, "c": true, "s": true,
	"o": true, "v": true, "V": true, CtrlV: true, "~": true, "J": true,
	Esc: true, CtrlC: true,
}

func (in *Interpreter) processVisual(t Token) Result {
	if len(in.pending) == 0 && visualKeys[t] {
		in.count.Reset()
		return in.visualOperator(t)
	}
	if len(in.pending) == 0 && in.count.Accumulate(t) {
		return Result{Success: true, Pending: true, Message: in.PendingKeys()}
	}

	in.pending = append(in.pending, t)
	id, status := in.trie.Lookup(in.pending)
	switch status {
	case Partial:
		return Result{Success: true, Pending: true, Message: in.PendingKeys()}
	case NoMatch:
		keys := in.PendingKeys()
		in.resetPending()
		return failf(ErrUnknownCommand, "%s", keys)
	}
	keys := in.PendingKeys()
	count, explicit := in.count.Get(), in.count.Active
	in.resetPending()
	if !id.IsMotion() {
		return failf(ErrUnsupportedKey, "%s in %s mode", keys, in.modes.Current().DisplayName())
	}
	target, moved := in.motionTarget(id, count, explicit)
	if !moved {
		return failf(ErrNotApplicable, "cannot %s", id)
	}
	in.buf.MoveTo(target.Line, target.Col)
	in.buf.UpdateVisual()
	return ok("")
}

func (in *Interpreter) visualOperator(t Token) Result {
	b := in.buf
	current := in.modes.Current()
	switch t {
	case Esc, CtrlC:
		return in.leaveVisual()

	case "o":
		b.SwapVisualAnchor()
		return ok("")

	case "v", "V", CtrlV:
		target := map[Token]mode.Mode{"v": mode.Visual, "V": mode.VisualLine, CtrlV: mode.VisualBlock}[t]
		if target == current {
			return in.leaveVisual()
		}
		in.modes.SwitchMode(target)
		return ok("")

	case "y":
		in.yankSelection(current)
		start, _, _ := b.VisualBounds()
		if current == mode.VisualLine {
			start.Col = 0
		}
		if current == mode.VisualBlock {
			top, _, left, _, _ := b.VisualBlock()
			start = buffer.Position{Line: top, Col: left}
		}
		in.leaveVisual()
		b.MoveTo(start.Line, min(start.Col, in.maxCol(start.Line)))
		in.record("v" + string(t))
		return ok("")

	case "d", "x", Delete:
		deleted := false
		in.groupResult("delete selection", func() Result {
			deleted = in.deleteSelection(current, false)
			return ok("")
		})
		in.leaveVisual()
		if !deleted {
			return failf(ErrNotApplicable, "nothing to delete")
		}
		in.record("v" + string(t))
		return ok("")

	case "c", "s":
		b.BeginGroup("change selection")
		in.deleteSelection(current, true)
		b.ClearVisual()
		if !in.modes.ProcessCommand("c") {
			b.EndGroup()
			return failf(ErrNotApplicable, "cannot enter insert mode")
		}
		in.record("v" + string(t))
		return ok("")

	case "~":
		in.groupResult("toggle case", func() Result {
			in.mapSelection(current, text.ToggleCase)
			return ok("")
		})
		start, _, _ := b.VisualBounds()
		in.leaveVisual()
		b.MoveTo(start.Line, min(start.Col, in.maxCol(start.Line)))
		in.record("v~")
		return ok("")

	case "J":
		from, to, _ := b.VisualLines()
		in.leaveVisual()
		b.MoveTo(from, 0)
		return in.joinLines(max(2, to-from+1))
	}
	return failf(ErrUnsupportedKey, "%s", t)
}

func (in *Interpreter) leaveVisual() Result {
	in.buf.ClearVisual()
	in.modes.SwitchMode(mode.Normal)
	in.resetPending()
	return ok("")
}

func (in *Interpreter) yankSelection(m mode.Mode) {
	b := in.buf
	switch m {
	case mode.VisualLine:
		from, to, _ := b.VisualLines()
		in.register.storeLines(b.Lines()[from : to+1])
	case mode.VisualBlock:
		top, bottom, left, right, _ := b.VisualBlock()
		var rows []string
		for i := top; i <= bottom; i++ {
			rows = append(rows, text.Slice(b.Line(i), left, right+1))
		}
		in.register.storeChars(strings.Join(rows, "\n"))
	default:
		sel, _ := b.VisualSelection()
		in.register.storeChars(sel)
	}
}

// deleteSelection removes the selection into the register. forChange keeps
// an empty line in place of deleted whole lines so Insert has somewhere to
// type. A charwise selection that reaches the end of its last line takes
// the line break with it. It reports whether anything was removed.
func (in *Interpreter) deleteSelection(m mode.Mode, forChange bool) bool {
	b := in.buf
	in.yankSelection(m)
	switch m {
	case mode.VisualLine:
		from, to, _ := b.VisualLines()
		whole := to-from+1 == b.LineCount()
		b.ClearVisual()
		b.DeleteLines(from, to)
		if forChange && !whole {
			b.InsertLines(from, []string{""})
		}
		if line := min(from, b.LineCount()-1); !forChange {
			b.MoveTo(line, in.firstNonBlank(line))
		}
		return true
	case mode.VisualBlock:
		top, bottom, left, right, _ := b.VisualBlock()
		b.ClearVisual()
		removed := false
		for i := top; i <= bottom; i++ {
			line := b.Line(i)
			if left < text.Len(line) {
				removed = b.ReplaceLine(i, text.Delete(line, left, min(right+1, text.Len(line)))) || removed
			}
		}
		b.MoveTo(top, min(left, b.LineLen(top)))
		return removed
	}

	start, end, _ := b.VisualBounds()
	b.ClearVisual()
	stop := buffer.Position{Line: end.Line, Col: end.Col + 1}
	if !forChange && end.Col >= b.LineLen(end.Line) {
		switch {
		case end.Line+1 < b.LineCount():
			stop = buffer.Position{Line: end.Line + 1}
		case start.Col == 0 && start.Line > 0:
			start = buffer.Position{Line: start.Line - 1, Col: b.LineLen(start.Line - 1)}
			stop = buffer.Position{Line: end.Line, Col: b.LineLen(end.Line)}
		}
	}
	removed, deleted := b.DeleteRange(start, stop)
	if deleted {
		in.register.storeChars(removed)
	}
	b.MoveTo(start.Line, min(start.Col, b.LineLen(start.Line)))
	return deleted
}

// mapSelection rewrites every selected grapheme with fn.
func (in *Interpreter) mapSelection(m mode.Mode, fn func(string) string) {
	b := in.buf
	start, end, _ := b.VisualBounds()
	top, bottom, left, right, _ := b.VisualBlock()
	for i := start.Line; i <= end.Line; i++ {
		gs := text.Split(b.Line(i))
		from, to := 0, len(gs)
		switch m {
		case mode.Visual:
			if i == start.Line {
				from = start.Col
			}
			if i == end.Line {
				to = min(to, end.Col+1)
			}
		case mode.VisualBlock:
			if i < top || i > bottom {
				continue
			}
			from, to = left, min(to, right+1)
		}
		for c := from; c < to; c++ {
			gs[c] = fn(gs[c])
		}
		b.ReplaceLine(i, strings.Join(gs, ""))
	}
}

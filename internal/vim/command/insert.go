package command

import (
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

// replacedChar remembers what Replace mode overwrote so backspace can put
// it back. An empty original means the character was appended.
type replacedChar struct {
	pos      buffer.Position
	original string
}

// leaveInsert returns to Normal. Like the real editor, the cursor steps
// back onto the last inserted character.
func (in *Interpreter) leaveInsert(t Token) Result {
	if !in.modes.ProcessCommand(string(t)) {
		return failf(ErrNotApplicable, "cannot leave insert mode")
	}
	in.buf.EndGroup()
	in.replaced = nil
	in.buf.MoveCursor(buffer.Left, 1)
	return ok("")
}

func (in *Interpreter) processInsert(t Token) Result {
	b := in.buf
	switch t {
	case Esc, CtrlC:
		return in.leaveInsert(t)
	case Enter:
		b.InsertText("\n")
		return ok("")
	case Backspace:
		if !b.DeleteCharBeforeCursor() {
			return failf(ErrNotApplicable, "at start of buffer")
		}
		return ok("")
	case Delete:
		if !b.DeleteCharAtCursor() {
			return failf(ErrNotApplicable, "at end of buffer")
		}
		return ok("")
	case Tab:
		b.InsertText("\t")
		return ok("")
	case Up, Down, Left, Right:
		if !b.MoveCursor(arrowDirection(t), 1) {
			return failf(ErrNotApplicable, "cannot move %s", t)
		}
		return ok("")
	case Home:
		b.MoveTo(b.Cursor().Line, 0)
		return ok("")
	case End:
		b.MoveTo(b.Cursor().Line, b.LineLen(b.Cursor().Line))
		return ok("")
	}
	if !t.Printable() {
		return failf(ErrUnsupportedKey, "%s in Insert mode", t)
	}
	b.InsertText(string(t))
	return ok("")
}

func (in *Interpreter) processReplace(t Token) Result {
	b := in.buf
	switch t {
	case Esc, CtrlC:
		return in.leaveInsert(t)
	case Backspace:
		cur := b.Cursor()
		if n := len(in.replaced); n > 0 && in.replaced[n-1].pos.Line == cur.Line && in.replaced[n-1].pos.Col == cur.Col-1 {
			last := in.replaced[n-1]
			in.replaced = in.replaced[:n-1]
			if last.original == "" {
				b.DeleteCharBeforeCursor()
			} else {
				b.ReplaceCharAt(last.pos, last.original)
				b.MoveTo(last.pos.Line, last.pos.Col)
			}
			return ok("")
		}
		if !b.MoveCursor(buffer.Left, 1) {
			return failf(ErrNotApplicable, "at start of line")
		}
		return ok("")
	case Enter:
		b.InsertText("\n")
		in.replaced = nil
		return ok("")
	case Up, Down, Left, Right:
		in.replaced = nil
		if !b.MoveCursor(arrowDirection(t), 1) {
			return failf(ErrNotApplicable, "cannot move %s", t)
		}
		return ok("")
	}
	repl := string(t)
	if t == Tab {
		repl = "\t"
	} else if !t.Printable() {
		return failf(ErrUnsupportedKey, "%s in Replace mode", t)
	}
	cur := b.Cursor()
	original := text.At(b.CurrentLine(), cur.Col)
	b.ReplaceCharAt(cur, repl)
	in.replaced = append(in.replaced, replacedChar{pos: cur, original: original})
	b.MoveTo(cur.Line, cur.Col+1)
	return ok("")
}

func arrowDirection(t Token) buffer.Direction {
	switch t {
	case Up:
		return buffer.Up
	case Down:
		return buffer.Down
	case Left:
		return buffer.Left
	default:
		return buffer.Right
	}
}

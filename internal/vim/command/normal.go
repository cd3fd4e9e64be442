package command

import (
	"fmt"
	"strings"

	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

func (in *Interpreter) processNormal(t Token) Result {
	if in.awaitingChar {
		return in.finishReplaceChar(t)
	}
	if len(in.pending) == 0 && in.count.Accumulate(t) {
		return Result{Success: true, Pending: true, Message: in.PendingKeys()}
	}
	if (t == Esc || t == CtrlC) && (len(in.pending) > 0 || in.count.Active) {
		in.resetPending()
		return ok("")
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
	count := in.count.Get()
	explicit := in.count.Active
	in.pending = nil

	if id == ReplaceChar {
		// Keep the count; r waits for the character to write.
		in.awaitingChar = true
		return Result{Success: true, Pending: true, Message: keys}
	}
	in.count.Reset()

	r := in.execute(id, count, explicit)
	if r.Success && id != Cancel {
		in.record(keys)
	}
	return r
}

// execute runs a resolved Normal-mode command.
func (in *Interpreter) execute(id ID, count int, explicit bool) Result {
	b := in.buf
	cur := b.Cursor()

	if id.IsMotion() {
		target, moved := in.motionTarget(id, count, explicit)
		if !moved || target == cur {
			if moved {
				return ok("")
			}
			return failf(ErrNotApplicable, "cannot %s", id)
		}
		b.MoveTo(target.Line, target.Col)
		return ok("")
	}

	switch id {
	case Cancel:
		return ok("")

	case DeleteChar:
		n := b.LineLen(cur.Line)
		if n == 0 {
			return failf(ErrNotApplicable, "nothing to delete")
		}
		end := min(n, cur.Col+count)
		removed, _ := b.DeleteRange(cur, buffer.Position{Line: cur.Line, Col: end})
		in.register.storeChars(removed)
		return ok("")

	case DeleteCharBefore:
		if cur.Col == 0 {
			return failf(ErrNotApplicable, "nothing to delete before cursor")
		}
		start := buffer.Position{Line: cur.Line, Col: max(0, cur.Col-count)}
		removed, _ := b.DeleteRange(start, cur)
		in.register.storeChars(removed)
		return ok("")

	case DeleteLine:
		removed, _ := b.DeleteLines(cur.Line, cur.Line+count-1)
		in.register.storeLines(removed)
		line := b.Cursor().Line
		b.MoveTo(line, in.firstNonBlank(line))
		return ok(linesMessage(len(removed), "fewer"))

	case DeleteToLineEnd:
		return in.deleteToLineEnd(count)

	case DeleteWord, DeleteWordEnd, DeleteWordBackward, DeleteToLineStart:
		start, end, applies := in.operatorRange(id, count)
		if !applies {
			return failf(ErrNotApplicable, "nothing to delete")
		}
		removed, changed := b.DeleteRange(start, end)
		if !changed {
			return failf(ErrNotApplicable, "nothing to delete")
		}
		in.register.storeChars(removed)
		return ok("")

	case JoinLines:
		return in.joinLines(max(2, count))

	case ToggleCase:
		line := b.CurrentLine()
		n := text.Len(line)
		if n == 0 {
			return failf(ErrNotApplicable, "nothing to change")
		}
		end := min(n, cur.Col+count)
		gs := text.Split(line)
		for i := cur.Col; i < end; i++ {
			gs[i] = text.ToggleCase(gs[i])
		}
		b.ReplaceLine(cur.Line, strings.Join(gs, ""))
		b.MoveTo(cur.Line, min(end, n-1))
		return ok("")

	case YankLine:
		last := min(b.LineCount()-1, cur.Line+count-1)
		lines := b.Lines()[cur.Line : last+1]
		in.register.storeLines(lines)
		return ok(linesMessage(len(lines), "yanked"))

	case YankWord, YankToLineEnd:
		var start, end buffer.Position
		if id == YankWord {
			var applies bool
			start, end, applies = in.operatorRange(DeleteWord, count)
			if !applies {
				return failf(ErrNotApplicable, "nothing to yank")
			}
		} else {
			start, end = cur, buffer.Position{Line: cur.Line, Col: b.LineLen(cur.Line)}
		}
		in.register.storeChars(b.TextBetween(start, end))
		return ok("")

	case PutAfter, PutBefore:
		return in.put(id == PutAfter, count)

	case ChangeLine, SubstituteLine:
		b.BeginGroup("change line")
		last := min(b.LineCount()-1, cur.Line+count-1)
		removed := b.Lines()[cur.Line : last+1]
		indent := leadingBlank(b.Line(cur.Line))
		if last > cur.Line {
			b.DeleteLines(cur.Line+1, last)
		}
		b.ReplaceLine(cur.Line, indent)
		b.MoveTo(cur.Line, text.Len(indent))
		in.register.storeLines(removed)
		return in.enterInsert("c", true)

	case ChangeToLineEnd:
		b.BeginGroup("change to end of line")
		if cur.Col < b.LineLen(cur.Line) {
			in.deleteToLineEnd(count)
		}
		b.MoveTo(cur.Line, b.LineLen(cur.Line))
		return in.enterInsert("C", true)

	case ChangeWord, ChangeWordEnd:
		start, end, applies := in.changeWordRange(count)
		if !applies {
			return failf(ErrNotApplicable, "nothing to change")
		}
		b.BeginGroup("change word")
		removed, _ := b.DeleteRange(start, end)
		in.register.storeChars(removed)
		return in.enterInsert("c", true)

	case SubstituteChar:
		b.BeginGroup("substitute")
		if n := b.LineLen(cur.Line); n > 0 {
			removed, _ := b.DeleteRange(cur, buffer.Position{Line: cur.Line, Col: min(n, cur.Col+count)})
			in.register.storeChars(removed)
		}
		return in.enterInsert("s", true)

	case EnterReplace:
		b.BeginGroup("replace")
		in.replaced = nil
		return in.enterInsert("R", true)

	case Undo:
		undone := 0
		for i := 0; i < count && b.Undo(); i++ {
			undone++
		}
		if undone == 0 {
			return failf(ErrNotApplicable, "already at oldest change")
		}
		return ok(changesMessage(undone, "undone"))

	case Redo:
		redone := 0
		for i := 0; i < count && b.Redo(); i++ {
			redone++
		}
		if redone == 0 {
			return failf(ErrNotApplicable, "already at newest change")
		}
		return ok(changesMessage(redone, "redone"))

	case InsertBefore:
		b.BeginGroup("insert")
		return in.enterInsert("i", true)

	case InsertLineStart:
		b.BeginGroup("insert")
		b.MoveTo(cur.Line, text.FirstNonBlank(b.CurrentLine()))
		return in.enterInsert("I", true)

	case Append:
		b.BeginGroup("append")
		if b.LineLen(cur.Line) > 0 {
			b.MoveTo(cur.Line, cur.Col+1)
		}
		return in.enterInsert("a", true)

	case AppendLineEnd:
		b.BeginGroup("append")
		b.MoveTo(cur.Line, b.LineLen(cur.Line))
		return in.enterInsert("A", true)

	case OpenBelow:
		b.BeginGroup("open line")
		b.InsertLineBelow(leadingBlank(b.CurrentLine()))
		return in.enterInsert("o", true)

	case OpenAbove:
		b.BeginGroup("open line")
		b.InsertLineAbove(leadingBlank(b.CurrentLine()))
		return in.enterInsert("O", true)

	case VisualChar, VisualLineMode, VisualBlockMode:
		key := map[ID]string{VisualChar: "v", VisualLineMode: "V", VisualBlockMode: string(CtrlV)}[id]
		if !in.modes.ProcessCommand(key) {
			return failf(ErrNotApplicable, "cannot enter visual mode")
		}
		b.StartVisual()
		return ok("")

	case CommandLine, SearchForward, SearchBackward:
		prompt := map[ID]rune{CommandLine: ':', SearchForward: '/', SearchBackward: '?'}[id]
		if !in.modes.ProcessCommand(string(prompt)) {
			return failf(ErrNotApplicable, "cannot enter command mode")
		}
		in.cmdline = cmdline{prompt: prompt}
		return ok("")

	case SearchNext, SearchPrev:
		if in.search.pattern == "" {
			return fail(ErrNoPrevSearch)
		}
		forward := in.search.forward
		if id == SearchPrev {
			forward = !forward
		}
		return in.searchRepeat(forward, count)

	case SearchWordForward, SearchWordBackward:
		word := in.wordUnderCursor()
		if word == "" {
			return failf(ErrNotApplicable, "no string under cursor")
		}
		in.search = searchState{pattern: `\<` + escapePattern(word) + `\>`, forward: id == SearchWordForward}
		return in.searchRepeat(in.search.forward, count)

	case WriteQuit:
		b.MarkSaved()
		return Result{Success: true, Quit: true, Message: "written, quitting"}

	case QuitDiscard:
		return Result{Success: true, Quit: true, Message: "quitting without saving"}
	}

	return failf(ErrUnknownCommand, "%s", id)
}

// enterInsert switches into Insert (or Replace) for key. groupOpen means
// the caller opened an undo group that the Insert session now owns.
func (in *Interpreter) enterInsert(key string, groupOpen bool) Result {
	if !in.modes.ProcessCommand(key) {
		if groupOpen {
			in.buf.EndGroup()
		}
		return failf(ErrNotApplicable, "cannot enter insert mode")
	}
	return ok("")
}

func (in *Interpreter) deleteToLineEnd(count int) Result {
	b := in.buf
	cur := b.Cursor()
	last := min(b.LineCount()-1, cur.Line+count-1)
	end := buffer.Position{Line: last, Col: b.LineLen(last)}
	if cur == end {
		return failf(ErrNotApplicable, "nothing to delete")
	}
	removed, _ := b.DeleteRange(cur, end)
	in.register.storeChars(removed)
	return ok("")
}

// operatorRange resolves the exclusive range covered by a d{motion}
// command. A forward word motion never crosses the end of the line.
func (in *Interpreter) operatorRange(id ID, count int) (start, end buffer.Position, applies bool) {
	b := in.buf
	cur := b.Cursor()
	w := walker{buf: b}
	switch id {
	case DeleteWord:
		p := cur
		for i := 0; i < count; i++ {
			next, found := w.nextWordStart(p)
			if !found || next.Line != p.Line {
				p = buffer.Position{Line: p.Line, Col: b.LineLen(p.Line)}
				break
			}
			p = next
		}
		if p == cur {
			return cur, cur, false
		}
		return cur, p, true
	case DeleteWordEnd:
		p := cur
		for i := 0; i < count; i++ {
			p = w.wordEnd(p)
		}
		if p.Before(cur) || b.LineLen(p.Line) == 0 {
			return cur, cur, false
		}
		return cur, buffer.Position{Line: p.Line, Col: p.Col + 1}, true
	case DeleteWordBackward:
		p := cur
		for i := 0; i < count; i++ {
			p = w.wordBackward(p)
		}
		if p == cur {
			return cur, cur, false
		}
		return p, cur, true
	case DeleteToLineStart:
		if cur.Col == 0 {
			return cur, cur, false
		}
		return buffer.Position{Line: cur.Line}, cur, true
	}
	return cur, cur, false
}

// changeWordRange implements cw and ce: on a word they change to the end
// of the word without the following blanks; on blanks they change the run
// of blanks.
func (in *Interpreter) changeWordRange(count int) (start, end buffer.Position, applies bool) {
	b := in.buf
	cur := b.Cursor()
	gs := text.Split(b.CurrentLine())
	n := len(gs)
	if n == 0 {
		return cur, cur, false
	}
	class := text.Classify(gs[cur.Col])
	e := cur.Col
	for e < n && text.Classify(gs[e]) == class {
		e++
	}
	if class == text.Space {
		return cur, buffer.Position{Line: cur.Line, Col: e}, true
	}
	w := walker{buf: b}
	p := buffer.Position{Line: cur.Line, Col: e - 1}
	for i := 1; i < count; i++ {
		p = w.wordEnd(p)
	}
	return cur, buffer.Position{Line: p.Line, Col: p.Col + 1}, true
}

func (in *Interpreter) joinLines(count int) Result {
	b := in.buf
	cur := b.Cursor()
	if cur.Line >= b.LineCount()-1 {
		return failf(ErrNotApplicable, "cannot join the last line")
	}
	last := min(b.LineCount()-1, cur.Line+count-1)
	return in.groupResult("join lines", func() Result {
		joined := b.Line(cur.Line)
		joinCol := 0
		for i := cur.Line + 1; i <= last; i++ {
			next := strings.TrimLeft(b.Line(i), " \t")
			sep := " "
			if joined == "" || strings.HasSuffix(joined, " ") || next == "" || strings.HasPrefix(next, ")") {
				sep = ""
			}
			joinCol = text.Len(joined)
			joined += sep + next
		}
		b.DeleteLines(cur.Line+1, last)
		b.ReplaceLine(cur.Line, joined)
		b.MoveTo(cur.Line, min(joinCol, max(0, text.Len(joined)-1)))
		return ok("")
	})
}

// maxPutSize bounds the text a single counted put may insert.
const maxPutSize = 1 << 20

func (in *Interpreter) put(after bool, count int) Result {
	if !in.register.Set {
		return failf(ErrNotApplicable, "nothing in register")
	}
	if size := (len(in.register.Text) + 1) * count; size > maxPutSize {
		return failf(ErrNotApplicable, "put of %d bytes is too large", size)
	}
	b := in.buf
	cur := b.Cursor()
	return in.groupResult("put", func() Result {
		if in.register.Linewise {
			var lines []string
			for i := 0; i < count; i++ {
				lines = append(lines, in.register.Lines()...)
			}
			at := cur.Line
			if after {
				at++
			}
			b.InsertLines(at, lines)
			b.MoveTo(at, in.firstNonBlank(at))
			return ok(linesMessage(len(lines), "more"))
		}
		s := strings.Repeat(in.register.Text, count)
		col := cur.Col
		if after && b.LineLen(cur.Line) > 0 {
			col++
		}
		b.MoveTo(cur.Line, col)
		b.InsertText(s)
		if strings.Contains(s, "\n") {
			b.MoveTo(cur.Line, col)
		} else {
			b.MoveTo(cur.Line, col+text.Len(s)-1)
		}
		return ok("")
	})
}

func (in *Interpreter) wordUnderCursor() string {
	line := in.buf.CurrentLine()
	gs := text.Split(line)
	col := in.buf.Cursor().Col
	for col < len(gs) && text.Classify(gs[col]) != text.Word {
		col++
	}
	if col >= len(gs) {
		return ""
	}
	start, end := col, col
	for start > 0 && text.Classify(gs[start-1]) == text.Word {
		start--
	}
	for end < len(gs) && text.Classify(gs[end]) == text.Word {
		end++
	}
	return strings.Join(gs[start:end], "")
}

// groupResult runs fn as a single undo step.
func (in *Interpreter) groupResult(desc string, fn func() Result) Result {
	in.buf.BeginGroup(desc)
	defer in.buf.EndGroup()
	return fn()
}

// finishReplaceChar completes r{char}.
func (in *Interpreter) finishReplaceChar(t Token) Result {
	count := in.count.Get()
	in.resetPending()
	if t == Esc || t == CtrlC {
		return ok("")
	}
	repl := string(t)
	switch {
	case t == Tab:
		repl = "\t"
	case !t.Printable():
		return failf(ErrUnsupportedKey, "r%s", t)
	}
	b := in.buf
	cur := b.Cursor()
	if cur.Col+count > b.LineLen(cur.Line) {
		return failf(ErrNotApplicable, "not enough characters to replace")
	}
	in.groupResult("replace char", func() Result {
		for i := 0; i < count; i++ {
			b.ReplaceCharAt(buffer.Position{Line: cur.Line, Col: cur.Col + i}, repl)
		}
		return ok("")
	})
	b.MoveTo(cur.Line, cur.Col+count-1)
	keys := "r" + repl
	if count > 1 {
		keys = fmt.Sprint(count) + keys
	}
	in.record(keys)
	return ok("")
}

func leadingBlank(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func linesMessage(n int, what string) string {
	if n < 3 {
		return ""
	}
	return fmt.Sprintf("%d %s lines", n, what)
}

func changesMessage(n int, what string) string {
	if n == 1 {
		return "1 change " + what
	}
	return fmt.Sprintf("%d changes %s", n, what)
}

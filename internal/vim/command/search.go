package command

import (
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

type searchState struct {
	pattern string
	forward bool
}

// matches lists the start of every match in reading order.
func (in *Interpreter) matches(p pattern) []buffer.Position {
	var out []buffer.Position
	for line, s := range in.buf.Lines() {
		gs := text.Split(s)
		for col := 0; col <= len(gs); {
			start, _, found := p.find(gs, col)
			if !found || start >= max(1, len(gs)) {
				break
			}
			out = append(out, buffer.Position{Line: line, Col: start})
			col = start + 1
		}
	}
	return out
}

// searchRepeat jumps count matches of the last pattern away from the
// cursor, wrapping around the buffer.
func (in *Interpreter) searchRepeat(forward bool, count int) Result {
	p, err := compilePattern(in.search.pattern, false)
	if err != nil {
		return failf(ErrPatternMissing, "%v", err)
	}
	all := in.matches(p)
	if len(all) == 0 {
		return failf(ErrPatternMissing, "%s", in.search.pattern)
	}
	cur := in.buf.Cursor()
	wrapped := false
	for i := 0; i < max(1, count); i++ {
		next, w := step(all, cur, forward)
		cur = next
		wrapped = wrapped || w
	}
	in.buf.MoveTo(cur.Line, cur.Col)
	switch {
	case wrapped && forward:
		return ok("search hit BOTTOM, continuing at TOP")
	case wrapped:
		return ok("search hit TOP, continuing at BOTTOM")
	}
	return ok("")
}

func step(all []buffer.Position, from buffer.Position, forward bool) (buffer.Position, bool) {
	if forward {
		for _, p := range all {
			if from.Before(p) {
				return p, false
			}
		}
		return all[0], true
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Before(from) {
			return all[i], false
		}
	}
	return all[len(all)-1], true
}

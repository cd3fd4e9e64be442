package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zjrosen/vimgym/internal/vim/mode"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

// cmdline is the text typed after ":", "/" or "?".
type cmdline struct {
	prompt rune
	text   string
}

func (in *Interpreter) processCmdline(t Token) Result {
	switch t {
	case Esc, CtrlC:
		return in.leaveCmdline()
	case Enter:
		line := in.cmdline
		in.leaveCmdline()
		var r Result
		if line.prompt == ':' {
			r = in.executeEx(strings.TrimSpace(line.text))
		} else {
			r = in.executeSearch(line)
		}
		if r.Success {
			in.record(string(line.prompt) + line.text)
		}
		return r
	case Backspace:
		n := text.Len(in.cmdline.text)
		if n == 0 {
			return in.leaveCmdline()
		}
		in.cmdline.text = text.Slice(in.cmdline.text, 0, n-1)
		return ok("")
	case Tab:
		in.cmdline.text += "\t"
		return ok("")
	}
	if !t.Printable() {
		return failf(ErrUnsupportedKey, "%s in Command mode", t)
	}
	in.cmdline.text += string(t)
	return ok("")
}

func (in *Interpreter) leaveCmdline() Result {
	in.cmdline = cmdline{}
	in.modes.SwitchMode(mode.Normal)
	return ok("")
}

func (in *Interpreter) executeSearch(line cmdline) Result {
	pat := line.text
	if pat == "" {
		if in.search.pattern == "" {
			return fail(ErrNoPrevSearch)
		}
		pat = in.search.pattern
	}
	if _, err := compilePattern(pat, false); err != nil {
		return failf(ErrPatternMissing, "%v", err)
	}
	in.search = searchState{pattern: pat, forward: line.prompt == '/'}
	return in.searchRepeat(in.search.forward, 1)
}

// lineRange is an inclusive, zero-based range of lines.
type lineRange struct {
	from, to int
	given    bool
}

func (in *Interpreter) executeEx(cmd string) Result {
	b := in.buf
	if cmd == "" {
		return ok("")
	}
	rng, rest, err := in.parseRange(cmd)
	if err != nil {
		return failf(ErrNotEditorCmd, "%s", cmd)
	}

	switch {
	case rest == "" && rng.given:
		b.MoveTo(rng.to, in.firstNonBlank(rng.to))
		return ok("")
	case isSubstitute(rest):
		return in.substitute(rng, rest[1:])
	case rest == "d" || rest == "delete":
		removed, _ := b.DeleteLines(rng.from, rng.to)
		in.register.storeLines(removed)
		line := b.Cursor().Line
		b.MoveTo(line, in.firstNonBlank(line))
		return ok(linesMessage(len(removed), "fewer"))
	case rest == "y" || rest == "yank":
		lines := b.Lines()[rng.from : rng.to+1]
		in.register.storeLines(lines)
		return ok(linesMessage(len(lines), "yanked"))
	case rng.given:
		return failf(ErrNotEditorCmd, "%s", cmd)
	}

	switch rest {
	case "q", "quit":
		if b.Modified() {
			return failf(ErrNotApplicable, "no write since last change (add ! to override)")
		}
		return Result{Success: true, Quit: true}
	case "q!", "quit!", "qa!":
		return Result{Success: true, Quit: true, Message: "quitting without saving"}
	case "w", "write":
		b.MarkSaved()
		return ok(fmt.Sprintf("%d lines written", b.LineCount()))
	case "wq", "x", "xit":
		b.MarkSaved()
		return Result{Success: true, Quit: true, Message: "written, quitting"}
	case "e!", "edit!":
		if !b.Modified() {
			return ok("")
		}
		b.RevertToInitial()
		return ok("reverted to last saved text")
	case "noh", "nohlsearch":
		return ok("")
	case "u", "undo":
		return in.execute(Undo, 1, false)
	case "red", "redo":
		return in.execute(Redo, 1, false)
	}
	return failf(ErrNotEditorCmd, "%s", cmd)
}

// parseRange consumes a leading "%", "N", "N,M", "." or "$" address.
func (in *Interpreter) parseRange(cmd string) (lineRange, string, error) {
	cur := in.buf.Cursor().Line
	last := in.buf.LineCount() - 1
	if strings.HasPrefix(cmd, "%") {
		return lineRange{from: 0, to: last, given: true}, strings.TrimSpace(cmd[1:]), nil
	}
	from, rest, ok, err := parseAddress(cmd, cur, last)
	if err != nil {
		return lineRange{}, "", err
	}
	if !ok {
		return lineRange{from: cur, to: cur}, cmd, nil
	}
	to := from
	if strings.HasPrefix(rest, ",") {
		var found bool
		to, rest, found, err = parseAddress(rest[1:], cur, last)
		if err != nil || !found {
			return lineRange{}, "", fmt.Errorf("bad range %q", cmd)
		}
	}
	if to < from {
		from, to = to, from
	}
	return lineRange{from: from, to: to, given: true}, strings.TrimSpace(rest), nil
}

func parseAddress(s string, cur, last int) (line int, rest string, found bool, err error) {
	switch {
	case strings.HasPrefix(s, "."):
		return cur, s[1:], true, nil
	case strings.HasPrefix(s, "$"):
		return last, s[1:], true, nil
	}
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, s, false, nil
	}
	v, err := strconv.Atoi(s[:n])
	if err != nil {
		return 0, "", false, err
	}
	return min(max(v, 1), last+1) - 1, s[n:], true, nil
}

func isSubstitute(rest string) bool {
	if len(rest) < 2 || rest[0] != 's' {
		return false
	}
	d := rest[1]
	return !(d >= 'a' && d <= 'z' || d >= 'A' && d <= 'Z' || d >= '0' && d <= '9' || d == ' ' || d == '\\')
}

// substitute runs s/pat/rep/flags, where body starts at the delimiter.
func (in *Interpreter) substitute(rng lineRange, body string) Result {
	delim := text.At(body, 0)
	parts := splitUnescaped(body[len(delim):], delim)
	pat := parts[0]
	rep := ""
	if len(parts) > 1 {
		rep = parts[1]
	}
	flags := ""
	if len(parts) > 2 {
		flags = parts[2]
	}
	global := strings.Contains(flags, "g")
	ignore := strings.Contains(flags, "i")
	if strings.Trim(flags, "giI") != "" {
		return failf(ErrNotEditorCmd, "unsupported flags %q", flags)
	}

	if pat == "" {
		if in.search.pattern == "" {
			return fail(ErrNoPrevSearch)
		}
		pat = in.search.pattern
	}
	p, err := compilePattern(pat, ignore)
	if err != nil {
		return failf(ErrPatternMissing, "%v", err)
	}
	in.search = searchState{pattern: pat, forward: true}

	b := in.buf
	total, lines, lastLine := 0, 0, -1
	b.BeginGroup("substitute")
	for i := rng.from; i <= rng.to; i++ {
		out, n := replaceMatches(p, b.Line(i), rep, global)
		if n == 0 {
			continue
		}
		b.ReplaceLine(i, out)
		total += n
		lines++
		lastLine = i
	}
	b.EndGroup()
	if total == 0 {
		return failf(ErrPatternMissing, "%s", pat)
	}
	b.MoveTo(lastLine, in.firstNonBlank(lastLine))
	return ok(substituteMessage(total, lines))
}

func replaceMatches(p pattern, line, rep string, global bool) (string, int) {
	gs := text.Split(line)
	var out strings.Builder
	n, pos := 0, 0
	for pos <= len(gs) {
		start, end, found := p.find(gs, pos)
		if !found {
			break
		}
		out.WriteString(strings.Join(gs[pos:start], ""))
		out.WriteString(expandReplacement(rep, strings.Join(gs[start:end], "")))
		n++
		pos = end
		if end == start {
			// Empty match: copy one grapheme so the scan advances.
			if end < len(gs) {
				out.WriteString(gs[end])
			}
			pos = end + 1
		}
		if !global {
			break
		}
	}
	if pos < len(gs) {
		out.WriteString(strings.Join(gs[pos:], ""))
	}
	return out.String(), n
}

// expandReplacement handles & (whole match) and backslash escapes.
func expandReplacement(rep, match string) string {
	var b strings.Builder
	for i := 0; i < len(rep); i++ {
		c := rep[i]
		switch {
		case c == '&':
			b.WriteString(match)
		case c == '\\' && i+1 < len(rep):
			i++
			switch rep[i] {
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(rep[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// splitUnescaped splits s on delim, leaving "\"+delim as a literal delim
// and every other escape intact.
func splitUnescaped(s, delim string) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && strings.HasPrefix(s[i+1:], delim):
			cur.WriteString(delim)
			i += len(delim)
		case s[i] == '\\' && i+1 < len(s):
			cur.WriteString(s[i : i+2])
			i++
		case strings.HasPrefix(s[i:], delim):
			parts = append(parts, cur.String())
			cur.Reset()
			i += len(delim) - 1
		default:
			cur.WriteByte(s[i])
		}
	}
	return append(parts, cur.String())
}

func substituteMessage(n, lines int) string {
	switch {
	case n == 1:
		return "1 substitution on 1 line"
	case lines == 1:
		return fmt.Sprintf("%d substitutions on 1 line", n)
	}
	return fmt.Sprintf("%d substitutions on %d lines", n, lines)
}

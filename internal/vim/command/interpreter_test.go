package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/mode"
)

func newTestInterpreter(content string) *Interpreter {
	return New(buffer.New(content), mode.NewManager())
}

// feed sends a compact key string and returns the last result.
func feed(t *testing.T, in *Interpreter, keys string) Result {
	t.Helper()
	tokens, err := ParseKeys(keys)
	require.NoError(t, err)
	var r Result
	for _, tok := range tokens {
		r = in.ProcessKey(tok)
	}
	return r
}

func pos(line, col int) buffer.Position { return buffer.Position{Line: line, Col: col} }

func TestWordMotionStopsAtPunctuation(t *testing.T) {
	in := newTestInterpreter("hello.world")

	r := feed(t, in, "w")
	require.True(t, r.Success)
	require.True(t, r.CursorMoved)
	require.Equal(t, pos(0, 5), in.Buffer().Cursor())

	in = newTestInterpreter("hello.world")
	feed(t, in, "W")
	require.Equal(t, pos(0, 10), in.Buffer().Cursor(), "W treats the line as one WORD")
}

func TestWordMotionsAcrossLines(t *testing.T) {
	in := newTestInterpreter("one two\n\nthree")

	feed(t, in, "w")
	require.Equal(t, pos(0, 4), in.Buffer().Cursor())
	feed(t, in, "w")
	require.Equal(t, pos(1, 0), in.Buffer().Cursor(), "empty line counts as a word")
	feed(t, in, "w")
	require.Equal(t, pos(2, 0), in.Buffer().Cursor())
	feed(t, in, "b")
	require.Equal(t, pos(1, 0), in.Buffer().Cursor())
	feed(t, in, "gge")
	require.Equal(t, pos(0, 2), in.Buffer().Cursor())
}

func TestCountsAndCommandTracking(t *testing.T) {
	in := newTestInterpreter("abcdef")

	feed(t, in, "lll")
	require.Equal(t, pos(0, 3), in.Buffer().Cursor())
	require.Equal(t, 3, in.CommandCount())
	require.Equal(t, "l", in.LastCommand())

	feed(t, in, "0")
	feed(t, in, "3l")
	require.Equal(t, pos(0, 3), in.Buffer().Cursor())
	require.Equal(t, "3l", in.LastCommand())

	feed(t, in, "99l")
	require.Equal(t, pos(0, 5), in.Buffer().Cursor(), "count clamps at line end")
}

func TestLineMotions(t *testing.T) {
	in := newTestInterpreter("    print('Hello, World!')")
	feed(t, in, "$")
	require.Equal(t, pos(0, 25), in.Buffer().Cursor())
	feed(t, in, "^")
	require.Equal(t, pos(0, 4), in.Buffer().Cursor())
	feed(t, in, "0")
	require.Equal(t, pos(0, 0), in.Buffer().Cursor())

	in = newTestInterpreter("    return True    ")
	feed(t, in, "g_")
	require.Equal(t, pos(0, 14), in.Buffer().Cursor())
}

func TestFileMotions(t *testing.T) {
	in := newTestInterpreter("a\n  b\nc\nd")
	feed(t, in, "G")
	require.Equal(t, pos(3, 0), in.Buffer().Cursor())
	feed(t, in, "2G")
	require.Equal(t, pos(1, 2), in.Buffer().Cursor())
	feed(t, in, "gg")
	require.Equal(t, pos(0, 0), in.Buffer().Cursor())
	feed(t, in, "3gg")
	require.Equal(t, pos(2, 0), in.Buffer().Cursor())
}

func TestMotionAtEdgeFails(t *testing.T) {
	in := newTestInterpreter("abc")
	r := feed(t, in, "h")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrNotApplicable)
	require.Equal(t, 0, in.CommandCount())
}

func TestDeleteLineAndPut(t *testing.T) {
	in := newTestInterpreter("one\ntwo\nthree")

	r := feed(t, in, "dd")
	require.True(t, r.BufferModified)
	require.Equal(t, []string{"two", "three"}, in.Buffer().Lines())
	require.True(t, in.Register().Linewise)
	require.Equal(t, "one", in.Register().Text)

	feed(t, in, "p")
	require.Equal(t, []string{"two", "one", "three"}, in.Buffer().Lines())
	require.Equal(t, pos(1, 0), in.Buffer().Cursor())

	feed(t, in, "P")
	require.Equal(t, []string{"two", "one", "one", "three"}, in.Buffer().Lines())
}

func TestHugeCountsStayBounded(t *testing.T) {
	in := newTestInterpreter("abcdefghij")
	feed(t, in, "yw")
	r := feed(t, in, "99999999P")
	require.True(t, r.Success)
	require.Equal(t, 10+10*maxCount, in.Buffer().LineLen(0), "count is capped")

	in = newTestInterpreter(strings.Repeat("x", 200))
	feed(t, in, "yy")
	r = feed(t, in, "9999999p")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrNotApplicable)
	require.Equal(t, 1, in.Buffer().LineCount())

	in = newTestInterpreter("a b a b")
	feed(t, in, "/b<Enter>")
	r = feed(t, in, "99999999n")
	require.True(t, r.Success)
	require.Equal(t, 0, in.Buffer().Cursor().Line)
}

func TestCountedDeleteIsOneUndo(t *testing.T) {
	in := newTestInterpreter("1\n2\n3\n4\n5")
	r := feed(t, in, "3dd")
	require.Equal(t, "3 fewer lines", r.Message)
	require.Equal(t, []string{"4", "5"}, in.Buffer().Lines())

	feed(t, in, "u")
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, in.Buffer().Lines())
}

func TestDeleteCharAndRegister(t *testing.T) {
	in := newTestInterpreter("hello")
	feed(t, in, "x")
	require.Equal(t, "ello", in.Buffer().Content())
	require.Equal(t, "h", in.Register().Text)

	feed(t, in, "$X")
	require.Equal(t, "elo", in.Buffer().Content())

	feed(t, in, "3x")
	require.Equal(t, "el", in.Buffer().Content())
	require.Equal(t, pos(0, 1), in.Buffer().Cursor(), "cursor clamps after deleting the tail")
}

func TestDeleteWordStopsAtLineEnd(t *testing.T) {
	in := newTestInterpreter("foo bar\nbaz")
	feed(t, in, "dw")
	require.Equal(t, "bar\nbaz", in.Buffer().Content())

	feed(t, in, "dw")
	require.Equal(t, "\nbaz", in.Buffer().Content())
}

func TestInsertSessionIsOneUndoStep(t *testing.T) {
	in := newTestInterpreter("hello")

	r := feed(t, in, "i")
	require.True(t, r.ModeChanged)
	require.Equal(t, mode.Insert, r.NewMode)

	feed(t, in, "foo<Esc>")
	require.Equal(t, "foohello", in.Buffer().Content())
	require.Equal(t, pos(0, 2), in.Buffer().Cursor(), "Esc steps back onto the last inserted character")
	require.Equal(t, mode.Normal, in.Modes().Current())

	feed(t, in, "u")
	require.Equal(t, "hello", in.Buffer().Content())
	require.Equal(t, 0, in.Buffer().UndoDepth())

	feed(t, in, "<C-r>")
	require.Equal(t, "foohello", in.Buffer().Content())
}

func TestInsertEditingKeys(t *testing.T) {
	in := newTestInterpreter("ab")
	feed(t, in, "A<Enter>cd<BS>e<Esc>")
	require.Equal(t, []string{"ab", "ce"}, in.Buffer().Lines())

	feed(t, in, "Ox<Esc>")
	require.Equal(t, []string{"ab", "x", "ce"}, in.Buffer().Lines())
}

func TestOpenLineKeepsIndent(t *testing.T) {
	in := newTestInterpreter("    def f():")
	feed(t, in, "opass<Esc>")
	require.Equal(t, []string{"    def f():", "    pass"}, in.Buffer().Lines())
}

func TestChangeWord(t *testing.T) {
	in := newTestInterpreter("hello world")
	feed(t, in, "cwbye<Esc>")
	require.Equal(t, "bye world", in.Buffer().Content())

	feed(t, in, "u")
	require.Equal(t, "hello world", in.Buffer().Content(), "change and typing undo together")
}

func TestChangeLineAndToEnd(t *testing.T) {
	in := newTestInterpreter("  old text")
	feed(t, in, "ccnew<Esc>")
	require.Equal(t, "  new", in.Buffer().Content())

	in = newTestInterpreter("keep this")
	feed(t, in, "wCthat<Esc>")
	require.Equal(t, "keep that", in.Buffer().Content())
}

func TestReplaceChar(t *testing.T) {
	in := newTestInterpreter("cat")
	r := feed(t, in, "r")
	require.True(t, r.Pending)
	require.Equal(t, "r", in.PendingKeys())

	feed(t, in, "b")
	require.Equal(t, "bat", in.Buffer().Content())
	require.Equal(t, "rb", in.LastCommand())

	r = feed(t, in, "5rx")
	require.False(t, r.Success)
	require.Equal(t, "bat", in.Buffer().Content())
}

func TestReplaceModeBackspaceRestores(t *testing.T) {
	in := newTestInterpreter("abc")
	feed(t, in, "Rxyz")
	require.Equal(t, mode.Replace, in.Modes().Current())
	require.Equal(t, "xyz", in.Buffer().Content())

	feed(t, in, "w")
	require.Equal(t, "xyzw", in.Buffer().Content())

	feed(t, in, "<BS><BS>")
	require.Equal(t, "xyc", in.Buffer().Content())

	feed(t, in, "<Esc>")
	require.Equal(t, mode.Normal, in.Modes().Current())
	feed(t, in, "u")
	require.Equal(t, "abc", in.Buffer().Content())
}

func TestJoinAndToggleCase(t *testing.T) {
	in := newTestInterpreter("foo\n   bar")
	feed(t, in, "J")
	require.Equal(t, "foo bar", in.Buffer().Content())
	require.Equal(t, pos(0, 3), in.Buffer().Cursor())

	feed(t, in, "0~~")
	require.Equal(t, "FOo bar", in.Buffer().Content())
}

func TestPendingAndCancel(t *testing.T) {
	in := newTestInterpreter("abc")

	r := feed(t, in, "2d")
	require.True(t, r.Success)
	require.True(t, r.Pending)
	require.Equal(t, "2d", in.PendingKeys())

	r = feed(t, in, "<Esc>")
	require.True(t, r.Success)
	require.Empty(t, in.PendingKeys())
	require.Equal(t, "abc", in.Buffer().Content())

	r = feed(t, in, "g")
	require.True(t, r.Pending)
	r = feed(t, in, "x")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrUnknownCommand)
	require.Empty(t, in.PendingKeys())
}

func TestUnknownCommand(t *testing.T) {
	in := newTestInterpreter("abc")
	r := feed(t, in, "z")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrUnknownCommand)
	require.Contains(t, r.ErrorText(), "z")
	require.False(t, r.BufferModified)
}

func TestUndoWithNothingToUndo(t *testing.T) {
	in := newTestInterpreter("abc")
	r := feed(t, in, "u")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrNotApplicable)
}

func TestVisualDelete(t *testing.T) {
	in := newTestInterpreter("hello world")

	r := feed(t, in, "v")
	require.Equal(t, mode.Visual, r.NewMode)
	feed(t, in, "ll")
	sel, ok := in.Buffer().VisualSelection()
	require.True(t, ok)
	require.Equal(t, "hel", sel)

	feed(t, in, "d")
	require.Equal(t, "lo world", in.Buffer().Content())
	require.Equal(t, mode.Normal, in.Modes().Current())
	require.Equal(t, "hel", in.Register().Text)
	require.False(t, in.Buffer().VisualActive())
}

func TestVisualDeleteEmptyLine(t *testing.T) {
	in := newTestInterpreter("one\n\ntwo")
	feed(t, in, "j")
	r := feed(t, in, "vd")
	require.True(t, r.Success)
	require.Equal(t, []string{"one", "two"}, in.Buffer().Lines(), "the line break goes with the empty line")
	require.Equal(t, "\n", in.Register().Text)
	require.Equal(t, "vd", in.LastCommand())

	in = newTestInterpreter("one\n")
	feed(t, in, "j")
	r = feed(t, in, "vd")
	require.True(t, r.Success)
	require.Equal(t, []string{"one"}, in.Buffer().Lines(), "an empty last line joins the line above")

	in = newTestInterpreter("")
	r = feed(t, in, "vd")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrNotApplicable)
	require.Equal(t, mode.Normal, in.Modes().Current())
	require.Equal(t, "v", in.LastCommand(), "the failed delete is not recorded")
}

func TestVisualLineAndBlock(t *testing.T) {
	in := newTestInterpreter("a\nb\nc")
	feed(t, in, "Vjd")
	require.Equal(t, []string{"c"}, in.Buffer().Lines())
	require.True(t, in.Register().Linewise)

	in = newTestInterpreter("abcd\nefgh\nijkl")
	feed(t, in, "l<C-v>jld")
	require.Equal(t, []string{"ad", "eh", "ijkl"}, in.Buffer().Lines())

	feed(t, in, "u")
	require.Equal(t, []string{"abcd", "efgh", "ijkl"}, in.Buffer().Lines(), "block delete is one undo step")
}

func TestVisualSwitchAndCancel(t *testing.T) {
	in := newTestInterpreter("abc")
	feed(t, in, "v")
	feed(t, in, "V")
	require.Equal(t, mode.VisualLine, in.Modes().Current())
	feed(t, in, "V")
	require.Equal(t, mode.Normal, in.Modes().Current())

	feed(t, in, "vl<Esc>")
	require.Equal(t, mode.Normal, in.Modes().Current())
	require.Equal(t, "abc", in.Buffer().Content())
}

func TestVisualYankAndChange(t *testing.T) {
	in := newTestInterpreter("one two")
	feed(t, in, "wvey")
	require.Equal(t, "two", in.Register().Text)
	require.Equal(t, pos(0, 4), in.Buffer().Cursor())

	feed(t, in, "vecTWO<Esc>")
	require.Equal(t, "one TWO", in.Buffer().Content())
}

func TestSubstitute(t *testing.T) {
	in := newTestInterpreter("foo foo\nfoo")

	r := feed(t, in, ":s/foo/bar/<Enter>")
	require.True(t, r.Success)
	require.Equal(t, "bar foo\nfoo", in.Buffer().Content())
	require.Equal(t, mode.Normal, in.Modes().Current())
	require.Equal(t, ":s/foo/bar/", in.LastCommand())

	in = newTestInterpreter("foo foo\nfoo")
	r = feed(t, in, ":%s/foo/bar/g<Enter>")
	require.True(t, r.Success)
	require.Equal(t, "bar bar\nbar", in.Buffer().Content())
	require.Equal(t, "3 substitutions on 2 lines", r.Message)

	feed(t, in, "u")
	require.Equal(t, "foo foo\nfoo", in.Buffer().Content())
}

func TestSubstituteReplacementEscapes(t *testing.T) {
	in := newTestInterpreter("a/b cat")
	feed(t, in, `:s/\//\&/<Enter>`)
	require.Equal(t, "a&b cat", in.Buffer().Content())

	feed(t, in, ":s/cat/[&]/<Enter>")
	require.Equal(t, "a&b [cat]", in.Buffer().Content())

	feed(t, in, ":s/DOG/x/i<Enter>")
	r := feed(t, in, ":s/dog/x/<Enter>")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrPatternMissing)
}

func TestSubstituteMultiByteDelimiter(t *testing.T) {
	in := newTestInterpreter("a/b é")
	r := feed(t, in, ":s·/·é·<Enter>")
	require.True(t, r.Success)
	require.Equal(t, "aéb é", in.Buffer().Content())

	r = feed(t, in, `:s·é\·b·x·<Enter>`)
	require.False(t, r.Success, "escaped delimiter is part of the pattern")
	require.ErrorIs(t, r.Err, ErrPatternMissing)
}

func TestExCommands(t *testing.T) {
	in := newTestInterpreter("a\nb\nc")

	feed(t, in, ":3<Enter>")
	require.Equal(t, pos(2, 0), in.Buffer().Cursor())
	feed(t, in, ":1<Enter>")
	require.Equal(t, pos(0, 0), in.Buffer().Cursor())

	feed(t, in, "dd")
	r := feed(t, in, ":q<Enter>")
	require.False(t, r.Success, "quit refuses with unsaved changes")

	feed(t, in, ":e!<Enter>")
	require.Equal(t, "a\nb\nc", in.Buffer().Content())
	require.False(t, in.Buffer().Modified())

	r = feed(t, in, ":wq<Enter>")
	require.True(t, r.Success)
	require.True(t, r.Quit)

	r = feed(t, in, ":frobnicate<Enter>")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrNotEditorCmd)
	require.Equal(t, mode.Normal, in.Modes().Current())
}

func TestCommandLineEditing(t *testing.T) {
	in := newTestInterpreter("abc")
	feed(t, in, ":wx")
	prompt, line, active := in.CommandLine()
	require.True(t, active)
	require.Equal(t, ":", prompt)
	require.Equal(t, "wx", line)

	feed(t, in, "<BS><BS>")
	require.Equal(t, mode.Command, in.Modes().Current())
	feed(t, in, "<BS>")
	require.Equal(t, mode.Normal, in.Modes().Current(), "backspace on an empty line cancels")
}

func TestSearch(t *testing.T) {
	in := newTestInterpreter("alpha beta\ngamma beta")

	r := feed(t, in, "/beta<Enter>")
	require.True(t, r.Success)
	require.Equal(t, pos(0, 6), in.Buffer().Cursor())

	feed(t, in, "n")
	require.Equal(t, pos(1, 6), in.Buffer().Cursor())

	r = feed(t, in, "n")
	require.Equal(t, pos(0, 6), in.Buffer().Cursor())
	require.Equal(t, "search hit BOTTOM, continuing at TOP", r.Message)

	feed(t, in, "N")
	require.Equal(t, pos(1, 6), in.Buffer().Cursor())

	r = feed(t, in, "/zeta<Enter>")
	require.False(t, r.Success)
	require.ErrorIs(t, r.Err, ErrPatternMissing)
}

func TestSearchWordUnderCursor(t *testing.T) {
	in := newTestInterpreter("foo bar foobar foo")
	feed(t, in, "*")
	require.Equal(t, pos(0, 15), in.Buffer().Cursor(), "whole-word match skips foobar")
	feed(t, in, "#")
	require.Equal(t, pos(0, 0), in.Buffer().Cursor())
}

func TestSearchNextWithoutPattern(t *testing.T) {
	in := newTestInterpreter("abc")
	r := feed(t, in, "n")
	require.ErrorIs(t, r.Err, ErrNoPrevSearch)
}

func TestStateRestore(t *testing.T) {
	in := newTestInterpreter("one\ntwo")
	feed(t, in, "yyj/two<Enter>")
	st := in.State()

	other := newTestInterpreter("x")
	other.Restore(st)
	require.Equal(t, in.LastCommand(), other.LastCommand())
	require.Equal(t, in.CommandCount(), other.CommandCount())
	require.Equal(t, "one", other.Register().Text)
	pat, fwd := other.LastSearch()
	assert.Equal(t, "two", pat)
	assert.True(t, fwd)
}

func TestCloneIsIndependent(t *testing.T) {
	in := newTestInterpreter("abc")
	feed(t, in, "2")

	buf := in.Buffer().Clone()
	modes := in.Modes().Clone()
	c := in.Clone(buf, modes)
	feed(t, c, "x")

	require.Equal(t, "c", c.Buffer().Content())
	require.Equal(t, "abc", in.Buffer().Content())
	require.Equal(t, "2", in.PendingKeys())
}

var rapidKeys = []string{
	"h", "j", "k", "l", "w", "b", "e", "W", "0", "$", "^", "G", "g", "x", "X",
	"d", "y", "p", "P", "u", "<C-r>", "J", "~", "r", "i", "a", "A", "o", "O",
	"c", "C", "s", "R", "v", "V", "<C-v>", "<Esc>", "<Enter>", "<BS>", "1",
	"3", "z", " ", ":", "/", "n", "q", "!", "%",
}

func TestCursorStaysInBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(rapid.StringMatching(`[a-c ]{0,6}`), 1, 4).Draw(t, "lines")
		content := ""
		for i, l := range lines {
			if i > 0 {
				content += "\n"
			}
			content += l
		}
		in := New(buffer.New(content), mode.NewManager())
		keys := rapid.SliceOfN(rapid.SampledFrom(rapidKeys), 1, 60).Draw(t, "keys")
		for _, k := range keys {
			tok, err := ParseToken(k)
			if err != nil {
				t.Fatalf("parse %q: %v", k, err)
			}
			r := in.ProcessKey(tok)
			if !r.Success && r.Err == nil {
				t.Fatalf("failure without error for %q", k)
			}
			b := in.Buffer()
			cur := b.Cursor()
			if b.LineCount() < 1 {
				t.Fatalf("buffer lost its last line")
			}
			if cur.Line < 0 || cur.Line >= b.LineCount() || cur.Col < 0 || cur.Col > b.LineLen(cur.Line) {
				t.Fatalf("cursor %v out of bounds after %q", cur, k)
			}
			if in.Modes().Current() == mode.Normal && b.LineLen(cur.Line) > 0 && cur.Col >= b.LineLen(cur.Line) {
				t.Fatalf("normal-mode cursor %v past last character after %q", cur, k)
			}
		}
	})
}

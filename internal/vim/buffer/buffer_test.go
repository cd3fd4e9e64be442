package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew(t *testing.T) {
	b := New("")
	require.Equal(t, []string{""}, b.Lines())
	require.Equal(t, Position{}, b.Cursor())

	b = New("one\ntwo\r\nthree")
	require.Equal(t, []string{"one", "two", "three"}, b.Lines())
	require.False(t, b.Modified())
}

func TestInsertText(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		b := New("World")
		require.True(t, b.InsertText("Hello "))
		require.Equal(t, "Hello World", b.Content())
		require.Equal(t, Position{0, 6}, b.Cursor())
		require.True(t, b.Modified())
	})

	t.Run("embedded newlines re-attach the tail", func(t *testing.T) {
		b := New("abcdef")
		require.True(t, b.MoveTo(0, 3))
		require.True(t, b.InsertText("X\nY\nZ"))
		require.Equal(t, []string{"abcX", "Y", "Zdef"}, b.Lines())
		require.Equal(t, Position{2, 1}, b.Cursor())
	})

	t.Run("combining mark joins the previous grapheme", func(t *testing.T) {
		b := New("")
		require.True(t, b.InsertText("e"))
		require.True(t, b.InsertText("\u0301"))
		require.Equal(t, "e\u0301", b.Content())
		require.Equal(t, 1, b.LineLen(0))
		require.Equal(t, Position{0, 1}, b.Cursor())
	})

	t.Run("multi-line insert before a combined grapheme", func(t *testing.T) {
		b := New("a\u0301b")
		require.True(t, b.MoveTo(0, 0))
		require.True(t, b.InsertText("x\ny"))
		require.Equal(t, []string{"x", "ya\u0301b"}, b.Lines())
		require.LessOrEqual(t, b.Cursor().Col, b.LineLen(1))
		require.Equal(t, Position{1, 1}, b.Cursor())
	})

	t.Run("trailing newline", func(t *testing.T) {
		b := New("ab")
		require.True(t, b.MoveTo(0, 1))
		require.True(t, b.InsertText("\n"))
		require.Equal(t, []string{"a", "b"}, b.Lines())
		require.Equal(t, Position{1, 0}, b.Cursor())
	})

	t.Run("empty is a no-op", func(t *testing.T) {
		b := New("ab")
		require.False(t, b.InsertText(""))
		require.Equal(t, 0, b.UndoDepth())
	})
}

func TestDeleteCharAtCursor(t *testing.T) {
	b := New("ab\ncd")
	require.True(t, b.DeleteCharAtCursor())
	require.Equal(t, "b\ncd", b.Content())

	require.True(t, b.MoveTo(0, 1))
	require.True(t, b.DeleteCharAtCursor(), "end of line joins next line")
	require.Equal(t, []string{"bcd"}, b.Lines())

	require.True(t, b.MoveTo(0, 3))
	require.False(t, b.DeleteCharAtCursor(), "true end of buffer")
	require.Equal(t, "bcd", b.Content())
}

func TestDeleteCharBeforeCursor(t *testing.T) {
	b := New("ab\ncd")
	require.False(t, b.DeleteCharBeforeCursor(), "start of buffer")

	require.True(t, b.MoveTo(1, 0))
	require.True(t, b.DeleteCharBeforeCursor())
	require.Equal(t, []string{"abcd"}, b.Lines())
	require.Equal(t, Position{0, 2}, b.Cursor())

	require.True(t, b.DeleteCharBeforeCursor())
	require.Equal(t, "acd", b.Content())
	require.Equal(t, Position{0, 1}, b.Cursor())
}

func TestDeleteLine(t *testing.T) {
	b := New("one\ntwo\nthree")
	require.True(t, b.MoveTo(2, 3))
	require.True(t, b.DeleteCurrentLine())
	require.Equal(t, []string{"one", "two"}, b.Lines())
	require.Equal(t, Position{1, 0}, b.Cursor())

	b = New("only")
	require.True(t, b.DeleteCurrentLine())
	require.Equal(t, []string{""}, b.Lines(), "last line is cleared, not removed")

	require.False(t, b.DeleteLine(5))
}

func TestInsertLineBelowAbove(t *testing.T) {
	b := New("a\nc")
	b.InsertLineBelow("b")
	require.Equal(t, []string{"a", "b", "c"}, b.Lines())
	require.Equal(t, Position{1, 1}, b.Cursor())

	b.InsertLineAbove("top")
	require.Equal(t, []string{"a", "top", "b", "c"}, b.Lines())
	require.Equal(t, Position{1, 3}, b.Cursor())
}

func TestMoveCursor(t *testing.T) {
	b := New("long line\nab\nxyz")
	require.True(t, b.MoveTo(0, 8))
	require.True(t, b.MoveCursor(Down, 1))
	require.Equal(t, Position{1, 2}, b.Cursor(), "column clamps to shorter line")

	require.True(t, b.MoveCursor(Down, 5))
	require.Equal(t, 2, b.Cursor().Line)
	require.False(t, b.MoveCursor(Down, 1))

	require.True(t, b.MoveTo(2, 0))
	require.False(t, b.MoveCursor(Left, 1))
	require.True(t, b.MoveCursor(Right, 10))
	require.Equal(t, Position{2, 3}, b.Cursor())
	require.False(t, b.MoveCursor(Right, 1))

	require.False(t, b.MoveTo(9, 0))
	require.False(t, b.MoveTo(0, 99))
	require.Equal(t, Position{2, 3}, b.Cursor())
}

func TestDeleteRange(t *testing.T) {
	b := New("hello world\nsecond line")
	removed, ok := b.DeleteRange(Position{0, 6}, Position{1, 7})
	require.True(t, ok)
	require.Equal(t, "world\nsecond ", removed)
	require.Equal(t, []string{"hello line"}, b.Lines())
	require.Equal(t, Position{0, 6}, b.Cursor())

	_, ok = b.DeleteRange(Position{0, 2}, Position{0, 2})
	require.False(t, ok)
}

func TestReplaceCharAt(t *testing.T) {
	b := New("cat")
	require.True(t, b.ReplaceCharAt(Position{0, 0}, "b"))
	require.Equal(t, "bat", b.Content())
	require.True(t, b.ReplaceCharAt(Position{0, 3}, "s"))
	require.Equal(t, "bats", b.Content())
	require.False(t, b.ReplaceCharAt(Position{0, 9}, "x"))
}

func TestUndoRedo(t *testing.T) {
	b := New("abc")
	require.False(t, b.Undo(), "nothing to undo on a fresh buffer")

	require.True(t, b.DeleteCharAtCursor())
	require.Equal(t, "bc", b.Content())
	require.True(t, b.Undo())
	require.Equal(t, "abc", b.Content())
	require.False(t, b.Modified())

	require.True(t, b.Redo())
	require.Equal(t, "bc", b.Content())
	require.True(t, b.Undo())

	require.True(t, b.InsertText("X"))
	require.False(t, b.Redo(), "a new change clears redo")
}

func TestUndoAtLimit(t *testing.T) {
	b := New("")
	for i := 0; i < MaxUndoLevels+5; i++ {
		require.True(t, b.InsertText("x"))
	}
	undos := 0
	for b.Undo() {
		undos++
	}
	require.Equal(t, MaxUndoLevels, undos)
	require.Equal(t, "xxxxx", b.Content(), "the five oldest snapshots were evicted")
}

func TestWithMaxUndo(t *testing.T) {
	b := New("", WithMaxUndo(3))
	for i := 0; i < 5; i++ {
		require.True(t, b.InsertText("x"))
	}
	require.Equal(t, 3, b.UndoDepth())
	require.True(t, b.Undo())
	require.True(t, b.Undo())
	require.Equal(t, 2, b.RedoDepth())
	require.Equal(t, "xxx", b.Content())

	require.True(t, b.InsertText("y"))
	require.Zero(t, b.RedoDepth())

	require.Equal(t, MaxUndoLevels, New("", WithMaxUndo(0)).maxUndo, "non-positive limits are ignored")
}

func TestGroup(t *testing.T) {
	b := New("abc")
	b.BeginGroup("insert")
	require.True(t, b.InGroup())
	require.True(t, b.InsertText("1"))
	require.True(t, b.InsertText("2"))
	require.True(t, b.InsertText("3"))
	b.EndGroup()
	require.False(t, b.InGroup())
	require.Equal(t, 1, b.UndoDepth())
	require.Equal(t, "123abc", b.Content())
	require.True(t, b.Undo())
	require.Equal(t, "abc", b.Content())

	changed := b.Group("noop", func() bool { return false })
	require.False(t, changed)
	require.Equal(t, 0, b.UndoDepth(), "an empty group records nothing")
}

func TestVisualSelection(t *testing.T) {
	b := New("first line\nmiddle\nlast line")
	require.True(t, b.MoveTo(2, 3))
	b.StartVisual()
	require.True(t, b.MoveTo(0, 6))
	b.UpdateVisual()

	sel, ok := b.VisualSelection()
	require.True(t, ok)
	require.Equal(t, "line\nmiddle\nlast", sel, "reversed anchors are normalized, end is inclusive")

	require.True(t, b.SwapVisualAnchor())
	require.Equal(t, Position{2, 3}, b.Cursor())

	b.ClearVisual()
	_, ok = b.VisualSelection()
	require.False(t, ok)
}

func TestStateRestore(t *testing.T) {
	b := New("one\ntwo")
	require.True(t, b.MoveTo(1, 2))
	b.StartVisual()
	s := b.State()

	other := New("x")
	require.NoError(t, other.Restore(s))
	require.Equal(t, s, other.State())

	require.ErrorIs(t, other.Restore(State{}), ErrInvalidState)

	require.NoError(t, other.Restore(State{Lines: []string{"ab"}, Cursor: Position{5, 9}}))
	require.Equal(t, Position{0, 2}, other.Cursor())
}

func TestClone(t *testing.T) {
	b := New("abc")
	require.True(t, b.InsertText("x"))
	c := b.Clone()
	require.True(t, c.InsertText("y"))
	require.Equal(t, "xabc", b.Content())
	require.Equal(t, 1, b.UndoDepth())
	require.Equal(t, 2, c.UndoDepth())
}

func TestInsertThenBackspaceRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(rapid.StringMatching(`[a-z ]{0,12}`), 1, 4).Draw(t, "lines")
		b := New(joinLines(lines))
		line := rapid.IntRange(0, len(lines)-1).Draw(t, "line")
		col := rapid.IntRange(0, len(lines[line])).Draw(t, "col")
		if !b.MoveTo(line, col) {
			t.Fatalf("MoveTo(%d, %d) rejected", line, col)
		}
		before := b.Content()
		ins := rapid.StringMatching(`[a-zA-Z0-9.\n]{1,10}`).Draw(t, "insert")

		b.InsertText(ins)
		for range []rune(ins) {
			b.DeleteCharBeforeCursor()
		}
		if got := b.Content(); got != before {
			t.Fatalf("round trip changed content: %q -> %q", before, got)
		}
		if b.Cursor() != (Position{line, col}) {
			t.Fatalf("cursor %v, want (%d, %d)", b.Cursor(), line, col)
		}
	})
}

func TestUndoInvertsMutation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(rapid.StringMatching(`[a-z]{0,8}`), 1, 5).Draw(t, "lines")
		b := New(joinLines(lines))
		line := rapid.IntRange(0, len(lines)-1).Draw(t, "line")
		b.MoveTo(line, rapid.IntRange(0, len(lines[line])).Draw(t, "col"))

		before := b.State()
		depth := b.UndoDepth()
		op := rapid.IntRange(0, 5).Draw(t, "op")
		var changed bool
		switch op {
		case 0:
			changed = b.InsertText("zz")
		case 1:
			changed = b.DeleteCharAtCursor()
		case 2:
			changed = b.DeleteCharBeforeCursor()
		case 3:
			changed = b.DeleteCurrentLine()
		case 4:
			b.InsertLineBelow("new")
			changed = true
		case 5:
			b.InsertLineAbove("new")
			changed = true
		}
		if !changed {
			if b.UndoDepth() != depth {
				t.Fatalf("failed op %d recorded an undo step", op)
			}
			return
		}
		if !b.Undo() {
			t.Fatalf("undo after op %d failed", op)
		}
		after := b.State()
		if after.Cursor != before.Cursor || joinLines(after.Lines) != joinLines(before.Lines) {
			t.Fatalf("undo of op %d: got %v %q, want %v %q", op, after.Cursor, after.Lines, before.Cursor, before.Lines)
		}
	})
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

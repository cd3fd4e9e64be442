package testutil

import (
	"testing"

	"github.com/zjrosen/vimgym/internal/content"
)

// DrillCourse is a small two module course:
//
//	drills/moves:    "abc", l l          -> cursor 0:2
//	drills/deletes:  "aabc", x           -> "abc"
//	advanced/insert: "", i               -> insert mode
//
// advanced requires drills.
func DrillCourse(t *testing.T) *content.Registry {
	t.Helper()
	return NewCourse(t).
		Module("drills", Title("Drills")).
		Lesson("moves", CursorExercise("move-right", "abc", "l l", 0, 2, "l moves right")).
		Lesson("deletes", TextExercise("delete-char", "aabc", "x", "abc")).
		Module("advanced", Title("Advanced"), Requires("drills")).
		Lesson("insert", ModeExercise("enter-insert", "", "i", "insert")).
		Build()
}

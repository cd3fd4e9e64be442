// Package content holds the lesson catalogue: the modules shipped inside
// the binary plus any the user drops into their lessons directory.
package content

import (
	"embed"
	"io/fs"

	"github.com/zjrosen/vimgym/internal/exercise"
)

//go:embed lessons/*.yaml
var lessonsFS embed.FS

// Builtin returns the embedded lesson files, rooted at lessons/.
func Builtin() fs.FS {
	sub, err := fs.Sub(lessonsFS, "lessons")
	if err != nil {
		// Only possible if the embed pattern above changes.
		panic(err)
	}
	return sub
}

// Source records where a module came from.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceUser    Source = "user"
)

// Module is an ordered group of lessons.
type Module struct {
	ID               string
	Title            string
	Description      string
	EstimatedMinutes int
	Prerequisites    []string
	Lessons          []Lesson
	Source           Source
	// Path is the file the module was loaded from, relative to its source.
	Path string
}

// Lesson returns the lesson with the given id.
func (m Module) Lesson(id string) (Lesson, bool) {
	if i := m.LessonIndex(id); i >= 0 {
		return m.Lessons[i], true
	}
	return Lesson{}, false
}

// LessonIndex returns the position of lesson id, or -1.
func (m Module) LessonIndex(id string) int {
	for i, l := range m.Lessons {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Lesson is a short piece of teaching followed by exercises.
type Lesson struct {
	ID             string
	ModuleID       string
	Title          string
	Description    string
	Objectives     []string
	Introduction   string // markdown
	Instructions   string // markdown
	Summary        string // markdown
	Tips           []string
	CommonMistakes []string
	Exercises      []exercise.Exercise
}

// Exercise returns exercise i.
func (l Lesson) Exercise(i int) (exercise.Exercise, bool) {
	if i < 0 || i >= len(l.Exercises) {
		return exercise.Exercise{}, false
	}
	return l.Exercises[i], true
}

// Key identifies the lesson across modules.
func (l Lesson) Key() string { return l.ModuleID + "/" + l.ID }

package lesson

import "github.com/zjrosen/vimgym/internal/content"

// Course is the part of content.Registry the navigator walks.
type Course interface {
	LessonAfter(moduleID, lessonID string) (content.Lesson, bool)
	NextLesson(done content.Completion) (content.Lesson, bool)
	Unlocked(moduleID string, done content.Completion) bool
}

// Navigator picks lessons in catalogue order, never entering a locked
// module.
type Navigator struct {
	course Course
	done   content.Completion
}

// NewNavigator returns a navigator judging locks by done.
func NewNavigator(course Course, done content.Completion) *Navigator {
	return &Navigator{course: course, done: done}
}

// After returns the lesson following moduleID/lessonID. It reports false
// at the end of the catalogue or when the next module is still locked.
func (n *Navigator) After(moduleID, lessonID string) (content.Lesson, bool) {
	l, ok := n.course.LessonAfter(moduleID, lessonID)
	if !ok || !n.course.Unlocked(l.ModuleID, n.done) {
		return content.Lesson{}, false
	}
	return l, true
}

// Continue returns the first unfinished lesson the learner may take.
func (n *Navigator) Continue() (content.Lesson, bool) {
	return n.course.NextLesson(n.done)
}

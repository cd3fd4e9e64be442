// Package progress tracks what each learner has completed and the
// achievements they have earned.
package progress

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// PassingScore is the lesson score at which a lesson counts as completed.
const PassingScore = 80

// ModuleStatus is a module's place in the learning path.
type ModuleStatus string

const (
	StatusLocked     ModuleStatus = "locked"
	StatusAvailable  ModuleStatus = "available"
	StatusInProgress ModuleStatus = "in_progress"
	StatusCompleted  ModuleStatus = "completed"
)

// NotFoundError is returned by repositories when a user has no progress
// document yet.
type NotFoundError struct {
	UserID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no progress recorded for user %s", e.UserID)
}

// LessonProgress is the record of one lesson.
type LessonProgress struct {
	LessonID          string        `json:"lesson_id"`
	Attempts          int           `json:"attempts"`
	BestScore         int           `json:"best_score"`
	LastTime          time.Duration `json:"last_time"`
	Mistakes          int           `json:"mistakes"`
	HintsUsed         int           `json:"hints_used"`
	CommandsPracticed []string      `json:"commands_practiced,omitempty"`
	FirstAttempted    time.Time     `json:"first_attempted"`
	LastAccessed      time.Time     `json:"last_accessed"`
	Completed         bool          `json:"completed"`
}

// ModuleProgress is the record of one module.
type ModuleProgress struct {
	ModuleID         string                     `json:"module_id"`
	Status           ModuleStatus               `json:"status"`
	Completion       float64                    `json:"completion_percentage"`
	LessonsCompleted []string                   `json:"lessons_completed,omitempty"`
	TimeSpent        time.Duration              `json:"time_spent"`
	FirstStarted     time.Time                  `json:"first_started,omitzero"`
	LastAccessed     time.Time                  `json:"last_accessed,omitzero"`
	Lessons          map[string]*LessonProgress `json:"lessons,omitempty"`
}

// Achievement is an unlocked badge.
type Achievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Achievement ids.
const (
	AchievementFirstLesson  = "first-lesson"
	AchievementPerfectScore = "perfect-score"
	AchievementNoHints      = "no-hints"
)

// ModuleAchievement is the id awarded for finishing a module.
func ModuleAchievement(moduleID string) string { return "module-complete:" + moduleID }

// AchievementTitle is the human name of an achievement id.
func AchievementTitle(id string) string {
	switch id {
	case AchievementFirstLesson:
		return "First Steps"
	case AchievementPerfectScore:
		return "Flawless"
	case AchievementNoHints:
		return "No Help Needed"
	}
	if m, ok := strings.CutPrefix(id, "module-complete:"); ok {
		return "Completed " + m
	}
	return id
}

// Progress is one user's whole record. It is stored as a single JSON
// document.
type Progress struct {
	UserID       string                     `json:"user_id"`
	Modules      map[string]*ModuleProgress `json:"modules"`
	Achievements []Achievement              `json:"achievements,omitempty"`
	TotalTime    time.Duration              `json:"total_time"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// New returns an empty record.
func New(userID string) *Progress {
	return &Progress{UserID: userID, Modules: make(map[string]*ModuleProgress)}
}

// ModuleCompleted reports whether every lesson of the module was passed.
func (p *Progress) ModuleCompleted(moduleID string) bool {
	m, ok := p.Modules[moduleID]
	return ok && m.Status == StatusCompleted
}

// LessonCompleted reports whether the lesson was passed.
func (p *Progress) LessonCompleted(moduleID, lessonID string) bool {
	m, ok := p.Modules[moduleID]
	if !ok {
		return false
	}
	l, ok := m.Lessons[lessonID]
	return ok && l.Completed
}

// HasAchievement reports whether id is unlocked.
func (p *Progress) HasAchievement(id string) bool {
	return slices.ContainsFunc(p.Achievements, func(a Achievement) bool { return a.ID == id })
}

func (p *Progress) module(id string) *ModuleProgress {
	if p.Modules == nil {
		p.Modules = make(map[string]*ModuleProgress)
	}
	m, ok := p.Modules[id]
	if !ok {
		m = &ModuleProgress{ModuleID: id, Status: StatusAvailable, Lessons: make(map[string]*LessonProgress)}
		p.Modules[id] = m
	}
	if m.Lessons == nil {
		m.Lessons = make(map[string]*LessonProgress)
	}
	return m
}

// Clone returns a deep copy.
func (p *Progress) Clone() *Progress {
	out := *p
	out.Achievements = slices.Clone(p.Achievements)
	out.Modules = make(map[string]*ModuleProgress, len(p.Modules))
	for id, m := range p.Modules {
		mc := *m
		mc.LessonsCompleted = slices.Clone(m.LessonsCompleted)
		mc.Lessons = make(map[string]*LessonProgress, len(m.Lessons))
		for lid, l := range m.Lessons {
			lc := *l
			lc.CommandsPracticed = slices.Clone(l.CommandsPracticed)
			mc.Lessons[lid] = &lc
		}
		out.Modules[id] = &mc
	}
	return &out
}

package progress

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/log"
)

// Repository persists progress documents.
type Repository interface {
	// Load returns a *NotFoundError when the user has no document yet.
	Load(ctx context.Context, userID string) (*Progress, error)
	Save(ctx context.Context, p *Progress) error
}

// Catalog is the part of content.Registry the tracker needs.
type Catalog interface {
	Modules() []content.Module
	LessonCount(moduleID string) int
	Unlocked(moduleID string, done content.Completion) bool
}

// Attempt is one finished run through a lesson.
type Attempt struct {
	ModuleID  string
	LessonID  string
	Score     int
	Duration  time.Duration
	Mistakes  int
	HintsUsed int
	Commands  []string
}

// Tracker owns one user's progress and saves every change.
type Tracker struct {
	mu      sync.Mutex
	repo    Repository
	catalog Catalog
	clock   func() time.Time
	p       *Progress
}

// Load reads the user's progress, starting an empty record on first use.
func Load(ctx context.Context, repo Repository, catalog Catalog, userID string, clock func() time.Time) (*Tracker, error) {
	if clock == nil {
		clock = time.Now
	}
	p, err := repo.Load(ctx, userID)
	var nf *NotFoundError
	switch {
	case errors.As(err, &nf):
		p = New(userID)
	case err != nil:
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return &Tracker{repo: repo, catalog: catalog, clock: clock, p: p}, nil
}

// Progress returns a copy of the current record.
func (t *Tracker) Progress() *Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p.Clone()
}

// ModuleCompleted implements content.Completion.
func (t *Tracker) ModuleCompleted(moduleID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p.ModuleCompleted(moduleID)
}

// LessonCompleted implements content.Completion.
func (t *Tracker) LessonCompleted(moduleID, lessonID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p.LessonCompleted(moduleID, lessonID)
}

// Status combines stored progress with prerequisite locks.
func (t *Tracker) Status(moduleID string) ModuleStatus {
	t.mu.Lock()
	p := t.p.Clone()
	t.mu.Unlock()
	if !t.catalog.Unlocked(moduleID, p) {
		return StatusLocked
	}
	if m, ok := p.Modules[moduleID]; ok {
		return m.Status
	}
	return StatusAvailable
}

// StartModule marks the module in progress.
func (t *Tracker) StartModule(ctx context.Context, moduleID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	m := t.p.module(moduleID)
	if m.Status != StatusCompleted && m.Status != StatusInProgress {
		m.Status = StatusInProgress
	}
	if m.FirstStarted.IsZero() {
		m.FirstStarted = now
	}
	m.LastAccessed = now
	return t.save(ctx)
}

// RecordLesson stores an attempt and returns any achievements it unlocked.
func (t *Tracker) RecordLesson(ctx context.Context, a Attempt) ([]Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()

	m := t.p.module(a.ModuleID)
	l, ok := m.Lessons[a.LessonID]
	if !ok {
		l = &LessonProgress{LessonID: a.LessonID, FirstAttempted: now}
		m.Lessons[a.LessonID] = l
	}
	l.Attempts++
	l.BestScore = max(l.BestScore, a.Score)
	l.LastTime = a.Duration
	l.Mistakes = a.Mistakes
	l.HintsUsed = a.HintsUsed
	l.LastAccessed = now
	for _, c := range a.Commands {
		if !slices.Contains(l.CommandsPracticed, c) {
			l.CommandsPracticed = append(l.CommandsPracticed, c)
		}
	}
	slices.Sort(l.CommandsPracticed)

	passed := a.Score >= PassingScore
	if passed {
		l.Completed = true
		if !slices.Contains(m.LessonsCompleted, a.LessonID) {
			m.LessonsCompleted = append(m.LessonsCompleted, a.LessonID)
		}
	}
	m.TimeSpent += a.Duration
	m.LastAccessed = now
	if m.FirstStarted.IsZero() {
		m.FirstStarted = now
	}
	t.p.TotalTime += a.Duration
	t.updateCompletion(m)

	var unlocked []Achievement
	award := func(id string) {
		if t.p.HasAchievement(id) {
			return
		}
		ach := Achievement{ID: id, UnlockedAt: now}
		t.p.Achievements = append(t.p.Achievements, ach)
		unlocked = append(unlocked, ach)
	}
	if passed {
		award(AchievementFirstLesson)
		if a.Score == 100 && a.Mistakes == 0 {
			award(AchievementPerfectScore)
		}
		if a.HintsUsed == 0 {
			award(AchievementNoHints)
		}
	}
	if m.Status == StatusCompleted {
		award(ModuleAchievement(a.ModuleID))
	}

	if err := t.save(ctx); err != nil {
		return nil, err
	}
	for _, ach := range unlocked {
		log.Info(log.CatLesson, "Achievement unlocked", "user", t.p.UserID, "achievement", ach.ID)
	}
	return unlocked, nil
}

// updateCompletion uses the real lesson count of the module.
func (t *Tracker) updateCompletion(m *ModuleProgress) {
	total := t.catalog.LessonCount(m.ModuleID)
	if total == 0 {
		return
	}
	m.Completion = min(100, float64(len(m.LessonsCompleted))/float64(total)*100)
	switch {
	case m.Completion >= 100:
		m.Status = StatusCompleted
	case m.Completion > 0:
		m.Status = StatusInProgress
	}
}

func (t *Tracker) save(ctx context.Context) error {
	t.p.UpdatedAt = t.clock()
	if err := t.repo.Save(ctx, t.p); err != nil {
		log.ErrorErr(log.CatDB, "Failed to save progress", err, "user", t.p.UserID)
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Summary is the overall picture for the progress command and stats
// screen.
type Summary struct {
	TotalModules      int           `json:"total_modules"`
	CompletedModules  int           `json:"completed_modules"`
	TotalLessons      int           `json:"total_lessons"`
	CompletedLessons  int           `json:"completed_lessons"`
	TotalTime         time.Duration `json:"total_time"`
	Achievements      int           `json:"achievements"`
	OverallCompletion float64       `json:"overall_completion"` // percent of lessons
	Modules           []ModuleRow   `json:"modules"`
}

// ModuleRow is one module in a Summary.
type ModuleRow struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Status           ModuleStatus `json:"status"`
	Completion       float64      `json:"completion_percentage"`
	LessonsCompleted int          `json:"lessons_completed"`
	Lessons          int          `json:"lessons"`
}

// Summary reports progress against the whole catalogue.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	p := t.p.Clone()
	t.mu.Unlock()

	var s Summary
	for _, cm := range t.catalog.Modules() {
		row := ModuleRow{ID: cm.ID, Title: cm.Title, Lessons: len(cm.Lessons), Status: StatusAvailable}
		if !t.catalog.Unlocked(cm.ID, p) {
			row.Status = StatusLocked
		}
		if m, ok := p.Modules[cm.ID]; ok {
			if row.Status != StatusLocked {
				row.Status = m.Status
			}
			row.Completion = m.Completion
			row.LessonsCompleted = len(m.LessonsCompleted)
		}
		s.TotalModules++
		s.TotalLessons += row.Lessons
		s.CompletedLessons += row.LessonsCompleted
		if row.Status == StatusCompleted {
			s.CompletedModules++
		}
		s.Modules = append(s.Modules, row)
	}
	s.TotalTime = p.TotalTime
	s.Achievements = len(p.Achievements)
	if s.TotalLessons > 0 {
		s.OverallCompletion = float64(s.CompletedLessons) / float64(s.TotalLessons) * 100
	}
	return s
}

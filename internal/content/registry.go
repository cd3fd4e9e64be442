package content

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/pubsub"
)

// NotFoundError is returned for unknown module or lesson ids.
type NotFoundError struct {
	Kind string // "module" or "lesson"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Completion answers what a learner has finished. progress.Progress
// implements it.
type Completion interface {
	ModuleCompleted(moduleID string) bool
	LessonCompleted(moduleID, lessonID string) bool
}

// Reload is published after the user lesson directory has been re-read.
type Reload struct {
	Modules []string
	Err     error
}

// Registry is the ordered catalogue of modules. Built-in modules come
// first, in file order, followed by user modules. It is safe for
// concurrent use; reloads swap the user modules atomically.
type Registry struct {
	mu      sync.RWMutex
	builtin []Module
	user    []Module

	userDir string
	loader  *userLoader
	reloads *pubsub.Broker[Reload]
}

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	builtin fs.FS
	userDir string
}

// WithBuiltin replaces the embedded lessons.
func WithBuiltin(fsys fs.FS) Option {
	return func(c *registryConfig) { c.builtin = fsys }
}

// WithUserDir merges modules from dir. A missing directory is not an error.
func WithUserDir(dir string) Option {
	return func(c *registryConfig) { c.userDir = dir }
}

// NewRegistry loads the built-in modules and, if configured, the user
// directory. Broken user files are logged and skipped; broken built-in
// files are an error.
func NewRegistry(opts ...Option) (*Registry, error) {
	cfg := registryConfig{builtin: Builtin()}
	for _, opt := range opts {
		opt(&cfg)
	}
	builtin, err := LoadModules(cfg.builtin, SourceBuiltin)
	if err != nil {
		return nil, fmt.Errorf("load built-in lessons: %w", err)
	}
	if err := checkGraph(builtin); err != nil {
		return nil, fmt.Errorf("load built-in lessons: %w", err)
	}
	r := &Registry{
		builtin: builtin,
		userDir: cfg.userDir,
		loader:  newUserLoader(),
		reloads: pubsub.NewBroker[Reload](),
	}
	if cfg.userDir != "" {
		if _, err := r.ReloadUser(context.Background()); err != nil {
			log.Warn(log.CatContent, "Skipping user lessons", "dir", cfg.userDir, "error", err)
		}
	}
	log.Info(log.CatContent, "Lessons loaded", "builtin", len(builtin), "user", len(r.user))
	return r, nil
}

// checkGraph makes sure prerequisites refer to earlier modules and ids are
// unique.
func checkGraph(modules []Module) error {
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if seen[m.ID] {
			return fmt.Errorf("duplicate module %s", m.ID)
		}
		for _, p := range m.Prerequisites {
			if !seen[p] {
				return fmt.Errorf("module %s: prerequisite %s must be defined before it", m.ID, p)
			}
		}
		seen[m.ID] = true
	}
	return nil
}

// Modules returns all modules in order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Concat(r.builtin, r.user)
}

// Module looks up a module by id.
func (r *Registry) Module(id string) (Module, error) {
	for _, m := range r.Modules() {
		if m.ID == id {
			return m, nil
		}
	}
	return Module{}, &NotFoundError{Kind: "module", ID: id}
}

// Lesson looks up a lesson inside a module.
func (r *Registry) Lesson(moduleID, lessonID string) (Lesson, error) {
	m, err := r.Module(moduleID)
	if err != nil {
		return Lesson{}, err
	}
	l, ok := m.Lesson(lessonID)
	if !ok {
		return Lesson{}, &NotFoundError{Kind: "lesson", ID: moduleID + "/" + lessonID}
	}
	return l, nil
}

// LessonCount returns the number of lessons in a module, or 0.
func (r *Registry) LessonCount(moduleID string) int {
	m, err := r.Module(moduleID)
	if err != nil {
		return 0
	}
	return len(m.Lessons)
}

// Unlocked reports whether every prerequisite of the module is complete.
func (r *Registry) Unlocked(moduleID string, done Completion) bool {
	m, err := r.Module(moduleID)
	if err != nil {
		return false
	}
	return prerequisitesMet(m, done)
}

func prerequisitesMet(m Module, done Completion) bool {
	for _, p := range m.Prerequisites {
		if done == nil || !done.ModuleCompleted(p) {
			return false
		}
	}
	return true
}

// UnlockedModules returns the modules the learner may start.
func (r *Registry) UnlockedModules(done Completion) []Module {
	var out []Module
	for _, m := range r.Modules() {
		if prerequisitesMet(m, done) {
			out = append(out, m)
		}
	}
	return out
}

// NextLesson returns the first unfinished lesson of the first unlocked
// module that still has one.
func (r *Registry) NextLesson(done Completion) (Lesson, bool) {
	for _, m := range r.UnlockedModules(done) {
		for _, l := range m.Lessons {
			if done == nil || !done.LessonCompleted(m.ID, l.ID) {
				return l, true
			}
		}
	}
	return Lesson{}, false
}

// LessonAfter returns the lesson that follows moduleID/lessonID in
// catalogue order, crossing into the next module when needed.
func (r *Registry) LessonAfter(moduleID, lessonID string) (Lesson, bool) {
	found := false
	for _, m := range r.Modules() {
		for _, l := range m.Lessons {
			if found {
				return l, true
			}
			if m.ID == moduleID && l.ID == lessonID {
				found = true
			}
		}
	}
	return Lesson{}, false
}

var _ pubsub.Subscriber[Reload] = (*Registry)(nil)

// Subscribe delivers a Reload after every user directory reload.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[Reload] {
	return r.reloads.Subscribe(ctx)
}

// Close releases subscribers.
func (r *Registry) Close() {
	r.reloads.Close()
}

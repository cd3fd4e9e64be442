// Package lesson runs a learner through the exercises of one lesson and
// reports the attempt to progress tracking once every exercise is done.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/exercise"
	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/tracing"
	"github.com/zjrosen/vimgym/internal/vim/command"
	"github.com/zjrosen/vimgym/internal/vim/mode"
)

var (
	// ErrNotStarted is returned before Start.
	ErrNotStarted = errors.New("no lesson in progress")
	// ErrNoExercises is returned for lessons without exercises.
	ErrNoExercises = errors.New("lesson has no exercises")
	// ErrNotCompleted is returned by Next while the exercise is unfinished.
	ErrNotCompleted = errors.New("exercise not completed")
)

// Catalog looks lessons up.
type Catalog interface {
	Lesson(moduleID, lessonID string) (content.Lesson, error)
}

// Recorder stores finished attempts. *progress.Tracker implements it.
type Recorder interface {
	StartModule(ctx context.Context, moduleID string) error
	RecordLesson(ctx context.Context, a progress.Attempt) ([]progress.Achievement, error)
}

// Update is the outcome of one key or skip.
type Update struct {
	Response          simulator.Response
	Result            exercise.Result
	ExerciseCompleted bool
	// RecordErr reports a completion that could not be recorded.
	RecordErr error
	// Outcome is set on the update that finished the lesson.
	Outcome *Outcome
}

// Outcome describes a finished lesson.
type Outcome struct {
	ModuleID     string
	LessonID     string
	Score        int
	Passed       bool
	Duration     time.Duration
	Mistakes     int
	HintsUsed    int
	Skipped      int
	Achievements []progress.Achievement
}

// Runner drives one lesson at a time on a shared simulator.
type Runner struct {
	catalog  Catalog
	recorder Recorder
	sessions *session.Manager
	engine   *exercise.Engine
	sim      *simulator.Simulator
	clock    func() time.Time
	tracer   trace.Tracer

	lesson   *content.Lesson
	index    int
	first    int // exercises before first were finished in an earlier run
	results  []*exercise.Result
	skipped  int
	hints    int
	mistakes int
	commands []string
	started  time.Time
	outcome  *Outcome
}

// Option configures a Runner.
type Option func(*Runner)

// WithSessions mirrors every key and position change into m.
func WithSessions(m *session.Manager) Option {
	return func(r *Runner) { r.sessions = m }
}

// WithClock replaces time.Now.
func WithClock(c func() time.Time) Option {
	return func(r *Runner) { r.clock = c }
}

// WithTracer records lesson spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// NewRunner returns an idle runner. The recorder may be nil for
// throwaway runs.
func NewRunner(catalog Catalog, recorder Recorder, sim *simulator.Simulator, opts ...Option) *Runner {
	r := &Runner{
		catalog:  catalog,
		recorder: recorder,
		sim:      sim,
		clock:    time.Now,
		tracer:   tracing.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.engine = exercise.NewEngine(sim,
		exercise.WithClock(r.clock),
		exercise.WithRecorder(r),
		exercise.WithTracer(r.tracer),
	)
	return r
}

// Start opens lessonID and its first exercise.
func (r *Runner) Start(ctx context.Context, moduleID, lessonID string) (exercise.Exercise, error) {
	l, err := r.catalog.Lesson(moduleID, lessonID)
	if err != nil {
		return exercise.Exercise{}, err
	}
	if len(l.Exercises) == 0 {
		return exercise.Exercise{}, fmt.Errorf("%w: %s", ErrNoExercises, l.Key())
	}
	_, span := tracing.Start(ctx, r.tracer, tracing.SpanLessonStart,
		attribute.String(tracing.AttrModuleID, moduleID),
		attribute.String(tracing.AttrLessonID, lessonID),
	)
	defer tracing.End(span, nil)

	r.lesson = &l
	r.first = 0
	r.results = make([]*exercise.Result, len(l.Exercises))
	r.skipped, r.hints, r.mistakes = 0, 0, 0
	r.commands = nil
	r.started = r.clock()
	r.outcome = nil

	if r.recorder != nil {
		if err := r.recorder.StartModule(ctx, moduleID); err != nil {
			log.ErrorErr(log.CatLesson, "Failed to mark module started", err, "module", moduleID)
		}
	}
	log.Info(log.CatLesson, "Lesson started", "lesson", l.Key(), "exercises", len(l.Exercises))
	return r.open(0), nil
}

// Resume reopens a lesson at exercise index with the simulator restored
// from st. A nil st starts the exercise fresh.
func (r *Runner) Resume(ctx context.Context, moduleID, lessonID string, index int, st *simulator.State) (exercise.Exercise, error) {
	if _, err := r.Start(ctx, moduleID, lessonID); err != nil {
		return exercise.Exercise{}, err
	}
	index = min(max(index, 0), len(r.lesson.Exercises)-1)
	r.first = index
	ex := r.open(index)
	if st != nil {
		if err := r.sim.Restore(*st); err != nil {
			log.Warn(log.CatLesson, "Discarding saved editor state", "lesson", r.lesson.Key(), "error", err)
			r.engine.Start(ex)
		}
	}
	return ex, nil
}

func (r *Runner) open(i int) exercise.Exercise {
	r.index = i
	ex := r.lesson.Exercises[i]
	r.engine.Start(ex)
	if r.sessions != nil {
		r.sessions.Advance(r.lesson.ModuleID, r.lesson.ID, i)
		r.sessions.UpdateSimulatorState(r.sim.State())
	}
	return ex
}

// Active reports whether a lesson is open.
func (r *Runner) Active() bool { return r.lesson != nil }

// Lesson returns the open lesson.
func (r *Runner) Lesson() (content.Lesson, bool) {
	if r.lesson == nil {
		return content.Lesson{}, false
	}
	return *r.lesson, true
}

// Index returns the position of the current exercise.
func (r *Runner) Index() int { return r.index }

// Exercise returns the current exercise.
func (r *Runner) Exercise() (exercise.Exercise, bool) { return r.engine.Current() }

// Engine exposes the exercise engine for stats and contextual hints.
func (r *Runner) Engine() *exercise.Engine { return r.engine }

// Simulator returns the shared simulator.
func (r *Runner) Simulator() *simulator.Simulator { return r.sim }

// Finished reports whether every exercise has been passed or skipped.
func (r *Runner) Finished() bool { return r.outcome != nil }

// ProcessInput forwards one key to the current exercise. Keys keep flowing
// to a completed exercise until Next is called.
func (r *Runner) ProcessInput(ctx context.Context, t command.Token) (Update, error) {
	if r.lesson == nil {
		return Update{}, ErrNotStarted
	}
	before, _ := r.engine.Stats()
	pending := r.sim.PendingKeys()
	modeBefore := r.sim.Mode()

	step, err := r.engine.ExecuteCommand(ctx, t)
	if err != nil {
		return Update{}, err
	}
	after, _ := r.engine.Stats()

	cmd := ""
	if !step.Response.Pending && step.Response.Success && commandMode(modeBefore) {
		cmd = pending + string(t)
		r.commands = append(r.commands, cmd)
	}
	mistake := after.Mistakes > before.Mistakes
	if mistake {
		r.mistakes++
	}
	if r.sessions != nil {
		r.sessions.RecordCommand(cmd)
		if mistake {
			r.sessions.RecordMistake()
		}
		r.sessions.UpdateSimulatorState(r.sim.State())
	}

	u := Update{Response: step.Response, Result: step.Result, ExerciseCompleted: step.Completed, RecordErr: step.RecordErr}
	if step.Completed {
		u.Outcome = r.finishIfDone(ctx)
	}
	return u, nil
}

func commandMode(m mode.Mode) bool {
	switch m {
	case mode.Normal, mode.Visual, mode.VisualLine, mode.VisualBlock:
		return true
	}
	return false
}

// RecordCompletion implements exercise.CompletionRecorder.
func (r *Runner) RecordCompletion(_ context.Context, ex exercise.Exercise, res exercise.Result) error {
	if r.lesson == nil {
		return ErrNotStarted
	}
	r.results[r.index] = &res
	log.Debug(log.CatLesson, "Exercise finished", "exercise", ex.ID, "score", res.Score, "passed", res.Passed)
	return nil
}

// Next moves to the following exercise. It reports false when the current
// exercise is the last one.
func (r *Runner) Next() (exercise.Exercise, bool, error) {
	if r.lesson == nil {
		return exercise.Exercise{}, false, ErrNotStarted
	}
	if !r.engine.Completed() {
		return exercise.Exercise{}, false, ErrNotCompleted
	}
	if r.index+1 >= len(r.lesson.Exercises) {
		return exercise.Exercise{}, false, nil
	}
	return r.open(r.index + 1), true, nil
}

// Hint returns the next authored hint and then falls back to an
// explanation of the latest wrong key.
func (r *Runner) Hint() (string, bool) {
	if r.lesson == nil {
		return "", false
	}
	h, ok := r.engine.Hint()
	if !ok {
		h, ok = r.engine.ContextualHint()
	}
	if !ok {
		return "", false
	}
	r.hints++
	if r.sessions != nil {
		r.sessions.RecordHint()
	}
	return h, true
}

// Skip gives up on the current exercise with a score of zero.
func (r *Runner) Skip(ctx context.Context) (Update, error) {
	if r.lesson == nil {
		return Update{}, ErrNotStarted
	}
	if r.engine.Completed() {
		return Update{}, fmt.Errorf("exercise %d already completed", r.index+1)
	}
	res, err := r.engine.Skip(ctx, "skipped by user")
	if err != nil {
		return Update{}, err
	}
	r.skipped++
	u := Update{Response: r.sim.Snapshot(), Result: res, ExerciseCompleted: true}
	u.Outcome = r.finishIfDone(ctx)
	return u, nil
}

// Restart resets the current exercise. Lesson-wide counters are kept.
func (r *Runner) Restart() (exercise.Exercise, error) {
	if r.lesson == nil {
		return exercise.Exercise{}, ErrNotStarted
	}
	if r.results[r.index] != nil && r.outcome == nil {
		r.results[r.index] = nil
	}
	return r.open(r.index), nil
}

// Quit abandons the lesson without recording an attempt.
func (r *Runner) Quit() Summary {
	sum := r.Summary()
	if r.lesson != nil {
		log.Info(log.CatLesson, "Lesson left", "lesson", r.lesson.Key(), "completed", sum.Completed, "of", sum.Total)
	}
	r.lesson = nil
	r.results = nil
	return sum
}

func (r *Runner) finishIfDone(ctx context.Context) *Outcome {
	if r.outcome != nil {
		return nil
	}
	for _, res := range r.results[r.first:] {
		if res == nil {
			return nil
		}
	}

	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanLessonFinish,
		attribute.String(tracing.AttrModuleID, r.lesson.ModuleID),
		attribute.String(tracing.AttrLessonID, r.lesson.ID),
	)
	out := &Outcome{
		ModuleID:  r.lesson.ModuleID,
		LessonID:  r.lesson.ID,
		Score:     r.score(),
		Duration:  r.clock().Sub(r.started).Truncate(time.Second),
		Mistakes:  r.mistakes,
		HintsUsed: r.hints,
		Skipped:   r.skipped,
	}
	out.Passed = out.Score >= progress.PassingScore
	span.SetAttributes(
		attribute.Int(tracing.AttrScore, out.Score),
		attribute.Bool(tracing.AttrPassed, out.Passed),
	)

	var err error
	if r.recorder != nil {
		out.Achievements, err = r.recorder.RecordLesson(ctx, progress.Attempt{
			ModuleID:  out.ModuleID,
			LessonID:  out.LessonID,
			Score:     out.Score,
			Duration:  out.Duration,
			Mistakes:  out.Mistakes,
			HintsUsed: out.HintsUsed,
			Commands:  r.commands,
		})
		if err != nil {
			log.ErrorErr(log.CatLesson, "Failed to record lesson", err, "lesson", r.lesson.Key())
		}
	}
	tracing.End(span, err)
	r.outcome = out
	log.Info(log.CatLesson, "Lesson finished", "lesson", r.lesson.Key(), "score", out.Score, "passed", out.Passed)
	return out
}

func (r *Runner) score() int {
	done := r.results[r.first:]
	total := 0
	for _, res := range done {
		total += res.Score
	}
	return int(math.Round(float64(total) / float64(len(done))))
}

// Outcome returns the result of the finished lesson.
func (r *Runner) Outcome() (Outcome, bool) {
	if r.outcome == nil {
		return Outcome{}, false
	}
	return *r.outcome, true
}

// Summary describes how far the learner got in the open lesson.
type Summary struct {
	ModuleID  string
	LessonID  string
	Title     string
	Current   int // 1-based
	Total     int
	Completed int
	Skipped   int
	Mistakes  int
	HintsUsed int
	Elapsed   time.Duration
}

// Progress is the share of exercises completed, 0..1.
func (s Summary) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total)
}

// Summary returns counters for the open lesson.
func (r *Runner) Summary() Summary {
	if r.lesson == nil {
		return Summary{}
	}
	s := Summary{
		ModuleID:  r.lesson.ModuleID,
		LessonID:  r.lesson.ID,
		Title:     r.lesson.Title,
		Current:   r.index + 1,
		Total:     len(r.lesson.Exercises),
		Skipped:   r.skipped,
		Mistakes:  r.mistakes,
		HintsUsed: r.hints,
		Elapsed:   r.clock().Sub(r.started).Truncate(time.Second),
		Completed: r.first,
	}
	for _, res := range r.results[r.first:] {
		if res != nil {
			s.Completed++
		}
	}
	return s
}

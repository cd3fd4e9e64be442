package exercise

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/tracing"
	"github.com/zjrosen/vimgym/internal/vim/command"
)

// ErrNoActiveExercise is returned when the engine is used before Start.
var ErrNoActiveExercise = errors.New("no active exercise")

// Clock returns the current time.
type Clock func() time.Time

// CompletionRecorder receives every passed or skipped exercise.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, ex Exercise, r Result) error
}

// Step is the outcome of one key inside an exercise.
type Step struct {
	Response  simulator.Response
	Result    Result
	Completed bool
	// RecordErr is set when the completion could not be recorded. The key
	// itself still went through.
	RecordErr error
}

// Engine runs exercises on a simulator it does not own.
type Engine struct {
	sim      *simulator.Simulator
	clock    Clock
	recorder CompletionRecorder
	tracer   trace.Tracer

	current   *Exercise
	executed  []command.Token
	started   time.Time
	mistakes  int
	hintsUsed int
	completed bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces time.Now.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithRecorder receives completions.
func WithRecorder(r CompletionRecorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithTracer records a span per completion check.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine returns an engine driving sim.
func NewEngine(sim *simulator.Simulator, opts ...EngineOption) *Engine {
	e := &Engine{sim: sim, clock: time.Now, tracer: tracing.Noop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulator returns the driven simulator.
func (e *Engine) Simulator() *simulator.Simulator { return e.sim }

// Current returns the active exercise.
func (e *Engine) Current() (Exercise, bool) {
	if e.current == nil {
		return Exercise{}, false
	}
	return *e.current, true
}

// Completed reports whether the active exercise has passed or been skipped.
func (e *Engine) Completed() bool { return e.completed }

// Executed returns the keys sent since Start.
func (e *Engine) Executed() []command.Token {
	return append([]command.Token(nil), e.executed...)
}

// Start resets the simulator to the exercise text and zeroes all counters.
func (e *Engine) Start(ex Exercise) simulator.Response {
	e.current = &ex
	e.executed = nil
	e.mistakes = 0
	e.hintsUsed = 0
	e.completed = false
	e.started = e.clock()
	log.Debug(log.CatExercise, "Exercise started", "id", ex.ID, "validation", kindOf(ex.Validation))
	return e.sim.Reset(ex.InitialText)
}

// ExecuteCommand forwards t to the simulator and checks completion. Keys
// that leave the executed log off the expected prefix count as mistakes;
// exercises without expected commands never count mistakes.
func (e *Engine) ExecuteCommand(ctx context.Context, t command.Token) (Step, error) {
	if e.current == nil {
		return Step{}, ErrNoActiveExercise
	}
	resp := e.sim.ProcessInput(t)
	e.executed = append(e.executed, t)
	if !e.onTrack() {
		e.mistakes++
	}

	res, err := e.CheckCompletion(ctx)
	if err != nil {
		return Step{}, err
	}
	step := Step{Response: resp, Result: res}
	if res.Passed && !e.completed {
		e.completed = true
		step.Completed = true
		step.RecordErr = e.record(ctx, res)
	}
	return step, nil
}

func (e *Engine) onTrack() bool {
	expected := e.current.ExpectedCommands
	if len(expected) == 0 {
		return true
	}
	if len(e.executed) > len(expected) {
		return false
	}
	return correctPrefix(expected, e.executed) == len(e.executed)
}

// CheckCompletion scores the current simulator state against the
// exercise's validation. It never changes engine state.
func (e *Engine) CheckCompletion(ctx context.Context) (Result, error) {
	if e.current == nil {
		return Result{}, ErrNoActiveExercise
	}
	_, span := tracing.Start(ctx, e.tracer, tracing.SpanExerciseCheck,
		attribute.String(tracing.AttrExerciseID, e.current.ID),
		attribute.String(tracing.AttrValidationKind, kindOf(e.current.Validation)),
	)

	var (
		passed   bool
		score    int
		feedback string
	)
	switch v := e.current.Validation.(type) {
	case Commands:
		passed, score, feedback = checkCommands(e.current.ExpectedCommands, e.executed)
	case CursorPosition:
		passed, score, feedback = checkCursor(v, e.sim)
	case TextContent:
		passed, score, feedback = checkText(v, e.sim)
	case ModeState:
		passed, score, feedback = checkMode(v, e.sim)
	case Custom:
		passed, score, feedback = checkCustom(v, e.sim)
	case nil:
		passed, score, feedback = checkCommands(e.current.ExpectedCommands, e.executed)
	default:
		err := fmt.Errorf("%w: %T", ErrUnknownValidation, v)
		tracing.End(span, err)
		return Result{}, err
	}

	res := e.result(passed, score, feedback)
	span.SetAttributes(
		attribute.Bool(tracing.AttrPassed, res.Passed),
		attribute.Int(tracing.AttrScore, res.Score),
		attribute.Int(tracing.AttrMistakes, res.Mistakes),
	)
	tracing.End(span, nil)
	return res, nil
}

func (e *Engine) result(passed bool, score int, feedback string) Result {
	return Result{
		Passed:    passed,
		Score:     score,
		Feedback:  feedback,
		TimeTaken: e.elapsed(),
		HintsUsed: e.hintsUsed,
		Mistakes:  e.mistakes,
	}
}

func (e *Engine) elapsed() time.Duration {
	return e.clock().Sub(e.started).Truncate(time.Second)
}

// Hint returns the next unused hint. It reports false once all hints are
// spent.
func (e *Engine) Hint() (string, bool) {
	if e.current == nil || e.hintsUsed >= len(e.current.Hints) {
		return "", false
	}
	h := e.current.Hints[e.hintsUsed]
	e.hintsUsed++
	return h, true
}

// Skip abandons the exercise with a score of zero. The skip is still
// recorded as a completion.
func (e *Engine) Skip(ctx context.Context, reason string) (Result, error) {
	if e.current == nil {
		return Result{}, ErrNoActiveExercise
	}
	ctx, span := tracing.Start(ctx, e.tracer, tracing.SpanExerciseSkip,
		attribute.String(tracing.AttrExerciseID, e.current.ID))
	res := e.result(false, 0, "Exercise skipped: "+reason)
	e.completed = true
	err := e.record(ctx, res)
	tracing.End(span, err)
	return res, err
}

func (e *Engine) record(ctx context.Context, r Result) error {
	if e.recorder == nil {
		return nil
	}
	if err := e.recorder.RecordCompletion(ctx, *e.current, r); err != nil {
		log.ErrorErr(log.CatExercise, "Failed to record exercise completion", err, "id", e.current.ID)
		return fmt.Errorf("record completion of %s: %w", e.current.ID, err)
	}
	return nil
}

// Stats summarizes the active exercise.
type Stats struct {
	ExerciseID       string        `json:"exercise_id"`
	Elapsed          time.Duration `json:"elapsed_time"`
	CommandsExecuted int           `json:"commands_executed"`
	ExpectedCommands int           `json:"expected_commands"`
	HintsUsed        int           `json:"hints_used"`
	HintsAvailable   int           `json:"hints_available"`
	Mistakes         int           `json:"mistakes_made"`
	Progress         float64       `json:"progress"`
	TimeLimit        time.Duration `json:"time_limit,omitempty"`
}

// Overtime reports whether a time limit exists and has passed.
func (s Stats) Overtime() bool {
	return s.TimeLimit > 0 && s.Elapsed > s.TimeLimit
}

// Stats returns counters for the active exercise. Progress is the share
// of expected keys typed so far, capped at 1.
func (e *Engine) Stats() (Stats, error) {
	if e.current == nil {
		return Stats{}, ErrNoActiveExercise
	}
	s := Stats{
		ExerciseID:       e.current.ID,
		Elapsed:          e.elapsed(),
		CommandsExecuted: len(e.executed),
		ExpectedCommands: len(e.current.ExpectedCommands),
		HintsUsed:        e.hintsUsed,
		HintsAvailable:   len(e.current.Hints),
		Mistakes:         e.mistakes,
		TimeLimit:        e.current.TimeLimit,
	}
	if s.ExpectedCommands > 0 {
		s.Progress = min(1, float64(s.CommandsExecuted)/float64(s.ExpectedCommands))
	}
	return s, nil
}

// ContextualHint explains the most recent wrong key, if any.
func (e *Engine) ContextualHint() (string, bool) {
	if e.current == nil {
		return "", false
	}
	return ContextualHint(e.current.ExpectedCommands, e.executed)
}

func kindOf(v Validation) string {
	if v == nil {
		return KindCommands
	}
	return v.Kind()
}

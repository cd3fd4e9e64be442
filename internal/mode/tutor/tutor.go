// Package tutor is the lesson screen: instructions on top, the editor in
// the middle, feedback and keys at the bottom.
package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/flags"
	"github.com/zjrosen/vimgym/internal/keys"
	"github.com/zjrosen/vimgym/internal/lesson"
	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/ui/toaster"
)

type tone int

const (
	toneInfo tone = iota
	toneSuccess
	toneWarn
	toneError
)

// Model is the tutor controller.
type Model struct {
	services mode.Services
	runner   *lesson.Runner
	lesson   content.Lesson
	help     help.Model

	feedback string
	tone     tone

	width  int
	height int
}

// New opens moduleID/lessonID. With resume set it continues at the saved
// exercise and editor state.
func New(services mode.Services, moduleID, lessonID string, resume *session.State) (Model, error) {
	cfg := services.Config
	sim := simulator.New("",
		simulator.WithDisplay(simulator.Display{
			Width:           cfg.Display.Width,
			Height:          cfg.Display.Height,
			LineNumbers:     cfg.Display.LineNumbers,
			HighlightCursor: cfg.Display.HighlightCursor,
		}),
		simulator.WithHints(cfg.UI.ShowHints && services.Flags.Enabled(flags.FlagLearningHints)),
	)
	opts := []lesson.Option{lesson.WithClock(services.Now)}
	if services.Sessions != nil {
		opts = append(opts, lesson.WithSessions(services.Sessions))
	}
	if services.Tracer != nil {
		opts = append(opts, lesson.WithTracer(services.Tracer))
	}
	runner := lesson.NewRunner(services.Registry, services.Tracker, sim, opts...)

	ctx := context.Background()
	var err error
	if resume != nil {
		_, err = runner.Resume(ctx, moduleID, lessonID, resume.ExerciseIndex, resume.Simulator)
	} else {
		_, err = runner.Start(ctx, moduleID, lessonID)
	}
	if err != nil {
		return Model{}, err
	}
	l, _ := runner.Lesson()

	h := help.New()
	h.Styles.ShortKey = services.Theme.Subtitle
	h.Styles.ShortDesc = services.Theme.Muted
	return Model{services: services, runner: runner, lesson: l, help: h}, nil
}

// Runner exposes the lesson runner.
func (m Model) Runner() *lesson.Runner { return m.runner }

// Feedback returns the message under the editor.
func (m Model) Feedback() string { return m.feedback }

// Init implements mode.Controller.
func (m Model) Init() tea.Cmd { return nil }

// SetSize implements mode.Controller.
func (m Model) SetSize(width, height int) mode.Controller {
	m.width, m.height = width, height
	m.help.Width = width
	return m
}

func (m *Model) say(t tone, format string, args ...any) {
	m.tone = t
	m.feedback = fmt.Sprintf(format, args...)
}

// Update implements mode.Controller.
func (m Model) Update(msg tea.Msg) (mode.Controller, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	ctx := context.Background()
	t := keys.Tutor
	switch {
	case key.Matches(k, t.Leave):
		sum := m.runner.Quit()
		return m, tea.Batch(
			mode.Switch(mode.SwitchModeMsg{Mode: mode.ModeMenu}),
			mode.Toast(fmt.Sprintf("Left %s at exercise %d/%d", sum.Title, sum.Current, sum.Total), toaster.StyleInfo),
		)
	case key.Matches(k, t.Next):
		return m.next()
	case m.runner.Finished():
		return m, nil
	case key.Matches(k, t.Hint):
		if h, ok := m.runner.Hint(); ok {
			m.say(toneWarn, "Hint: %s", h)
		} else {
			m.say(toneInfo, "No more hints for this exercise.")
		}
		return m, nil
	case key.Matches(k, t.Skip):
		u, err := m.runner.Skip(ctx)
		if err != nil {
			m.say(toneInfo, "Already complete. Press %s to continue.", t.Next.Help().Key)
			return m, nil
		}
		return m.applied(u)
	case key.Matches(k, t.Restart):
		if _, err := m.runner.Restart(); err != nil {
			cmd := m.fail(err)
			return m, cmd
		}
		m.say(toneInfo, "Exercise restarted.")
		return m, nil
	}

	var cmds []tea.Cmd
	for _, tok := range keys.EditorTokens(k) {
		u, err := m.runner.ProcessInput(ctx, tok)
		if err != nil {
			cmds = append(cmds, m.fail(err))
			break
		}
		var cmd tea.Cmd
		m, cmd = m.applied(u)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// applied turns a runner update into feedback.
func (m Model) applied(u lesson.Update) (Model, tea.Cmd) {
	var saveErr tea.Cmd
	if u.RecordErr != nil {
		saveErr = mode.Toast("Could not save your result: "+u.RecordErr.Error(), toaster.StyleError)
	}
	switch {
	case u.Outcome != nil:
		cmd := m.finished(*u.Outcome)
		return m, tea.Batch(saveErr, cmd)
	case u.ExerciseCompleted && u.Result.Passed:
		m.say(toneSuccess, "✓ %s Press %s for the next exercise.", u.Result.Feedback, keys.Tutor.Next.Help().Key)
	case u.ExerciseCompleted:
		m.say(toneWarn, "Skipped. Press %s for the next exercise.", keys.Tutor.Next.Help().Key)
	case !u.Response.Success && u.Response.Err != nil:
		m.say(toneError, "%s", u.Response.ErrorText())
	case m.runner.Engine().Completed():
	default:
		m.feedback = ""
	}
	return m, saveErr
}

func (m *Model) finished(o lesson.Outcome) tea.Cmd {
	if o.Passed {
		m.say(toneSuccess, "Lesson complete with %d%%. Press %s for the next lesson.", o.Score, keys.Tutor.Next.Help().Key)
	} else {
		m.say(toneWarn, "Lesson finished with %d%%; %d%% passes. Press %s to move on or %s for the menu.",
			o.Score, progress.PassingScore, keys.Tutor.Next.Help().Key, keys.Tutor.Leave.Help().Key)
	}
	var cmds []tea.Cmd
	for _, a := range o.Achievements {
		cmds = append(cmds, mode.Toast("Achievement unlocked: "+progress.AchievementTitle(a.ID), toaster.StyleSuccess))
	}
	return tea.Batch(cmds...)
}

func (m Model) next() (mode.Controller, tea.Cmd) {
	if m.runner.Finished() {
		nav := lesson.NewNavigator(m.services.Registry, m.services.Tracker)
		if l, ok := nav.After(m.lesson.ModuleID, m.lesson.ID); ok {
			return m, mode.Switch(mode.SwitchModeMsg{Mode: mode.ModeTutor, ModuleID: l.ModuleID, LessonID: l.ID})
		}
		return m, tea.Batch(
			mode.Switch(mode.SwitchModeMsg{Mode: mode.ModeMenu}),
			mode.Toast("No further lesson is unlocked yet", toaster.StyleInfo),
		)
	}
	_, _, err := m.runner.Next()
	if errors.Is(err, lesson.ErrNotCompleted) {
		m.say(toneInfo, "Finish this exercise first, or press %s to skip it.", keys.Tutor.Skip.Help().Key)
		return m, nil
	}
	if err != nil {
		cmd := m.fail(err)
		return m, cmd
	}
	m.feedback = ""
	return m, nil
}

func (m *Model) fail(err error) tea.Cmd {
	log.ErrorErr(log.CatUI, "Lesson action failed", err, "lesson", m.lesson.Key())
	m.say(toneError, "%v", err)
	return mode.Toast(err.Error(), toaster.StyleError)
}

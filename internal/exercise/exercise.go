// Package exercise scores a learner's keystrokes against an exercise.
//
// An Exercise is immutable once loaded. The Engine drives a simulator
// through one exercise at a time and produces a fresh Result on every
// check.
package exercise

import (
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/command"
	"github.com/zjrosen/vimgym/internal/vim/mode"
)

// Validation kinds as they appear in lesson files.
const (
	KindCommands       = "commands"
	KindCursorPosition = "cursor_position"
	KindTextContent    = "text_content"
	KindModeState      = "mode_state"
	KindCustom         = "custom"
)

// ErrUnknownValidation is returned by ParseValidation for an unrecognized kind.
var ErrUnknownValidation = errors.New("unknown validation type")

// Exercise is a single task inside a lesson.
type Exercise struct {
	ID               string
	Title            string
	Description      string
	Instructions     string
	ExpectedCommands []command.Token
	InitialText      string
	Validation       Validation
	Hints            []string
	TimeLimit        time.Duration
}

// Validation decides when an exercise is complete. The set of
// implementations is closed: Commands, CursorPosition, TextContent,
// ModeState and Custom.
type Validation interface {
	Kind() string
	validation()
}

// Commands passes when the executed keys equal the expected keys exactly.
type Commands struct{}

// CursorPosition passes when the cursor sits on Expected.
type CursorPosition struct {
	Expected buffer.Position
}

// TextContent passes when the buffer text is close enough to Expected.
type TextContent struct {
	Expected string
}

// ModeState passes when the active mode is Expected, compared without case.
type ModeState struct {
	Expected string
}

// CheckFunc inspects the simulator for a Custom validation.
type CheckFunc func(sim *simulator.Simulator) (passed bool, feedback string)

// Custom delegates to Check. A nil Check always passes. Lesson files
// supply Check as a Lua script, see CompileScript.
type Custom struct {
	Check CheckFunc
}

func (Commands) Kind() string       { return KindCommands }
func (CursorPosition) Kind() string { return KindCursorPosition }
func (TextContent) Kind() string    { return KindTextContent }
func (ModeState) Kind() string      { return KindModeState }
func (Custom) Kind() string         { return KindCustom }

func (Commands) validation()       {}
func (CursorPosition) validation() {}
func (TextContent) validation()    {}
func (ModeState) validation()      {}
func (Custom) validation()         {}

// Params carries the kind-specific settings of a validation.
type Params struct {
	ExpectedPosition *buffer.Position
	ExpectedText     string
	ExpectedMode     string
	Script           string
}

// ParseValidation builds the validation named by kind.
func ParseValidation(kind string, p Params) (Validation, error) {
	switch kind {
	case KindCommands:
		return Commands{}, nil
	case KindCursorPosition:
		if p.ExpectedPosition == nil {
			return nil, fmt.Errorf("%s validation requires expected_position", kind)
		}
		if p.ExpectedPosition.Line < 0 || p.ExpectedPosition.Col < 0 {
			return nil, fmt.Errorf("%s validation: negative position %s", kind, p.ExpectedPosition)
		}
		return CursorPosition{Expected: *p.ExpectedPosition}, nil
	case KindTextContent:
		return TextContent{Expected: p.ExpectedText}, nil
	case KindModeState:
		if p.ExpectedMode == "" {
			return ModeState{Expected: mode.Normal.String()}, nil
		}
		if _, err := mode.Parse(p.ExpectedMode); err != nil {
			return nil, fmt.Errorf("%s validation: %w", kind, err)
		}
		return ModeState{Expected: p.ExpectedMode}, nil
	case KindCustom:
		if p.Script == "" {
			return Custom{}, nil
		}
		check, err := CompileScript(p.Script)
		if err != nil {
			return nil, fmt.Errorf("%s validation: %w", kind, err)
		}
		return Custom{Check: check}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownValidation, kind)
}

// Result is the outcome of one completion check.
type Result struct {
	Passed    bool          `json:"passed"`
	Score     int           `json:"score"`
	Feedback  string        `json:"feedback"`
	TimeTaken time.Duration `json:"time_taken"`
	HintsUsed int           `json:"hints_used"`
	Mistakes  int           `json:"mistakes_made"`
}

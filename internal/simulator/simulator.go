// Package simulator composes the buffer, mode manager and interpreter into
// a single editor that lessons and the UI drive one key at a time.
//
// Every call returns a Response carrying the full visible state, so callers
// never reach into the components. A Simulator is not safe for concurrent
// use; callers that persist it in the background copy State() first.
package simulator

import (
	"errors"
	"fmt"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/command"
	"github.com/zjrosen/vimgym/internal/vim/mode"
)

// ErrInvalidState is returned by Restore when persisted state is unusable.
var ErrInvalidState = errors.New("invalid simulator state")

// Response is the outcome of one input plus a snapshot of visible state.
type Response struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message,omitempty"`
	Cursor         buffer.Position `json:"cursor_position"`
	Mode           mode.Mode       `json:"-"`
	BufferContent  []string        `json:"buffer_content"`
	DisplayLines   []string        `json:"display_lines"`
	StatusLine     string          `json:"status_line"`
	Pending        bool            `json:"pending,omitempty"`
	ModeChanged    bool            `json:"mode_changed,omitempty"`
	BufferModified bool            `json:"buffer_modified,omitempty"`
	Quit           bool            `json:"quit,omitempty"`
	Err            error           `json:"-"`
}

// ErrorText returns Err as a string, or "" when nil.
func (r Response) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Simulator is one editor instance.
type Simulator struct {
	buf    *buffer.Buffer
	modes  *mode.Manager
	interp *command.Interpreter

	display Display
	hints   bool

	lastCommand  string
	commandCount int
	errorMessage string

	// beforeKey runs ahead of the interpreter on every key. Tests use it
	// to inject faults.
	beforeKey func(command.Token)
}

// New returns a simulator editing content.
func New(content string, opts ...Option) *Simulator {
	s := &Simulator{display: DefaultDisplay(), hints: true}
	for _, opt := range opts {
		opt(s)
	}
	s.rebuild(content)
	return s
}

func (s *Simulator) rebuild(content string) {
	s.buf = buffer.New(content)
	s.modes = mode.NewManager()
	s.interp = command.New(s.buf, s.modes)
	s.lastCommand = ""
	s.commandCount = 0
	s.errorMessage = ""
}

// Buffer exposes the buffer for read-only inspection by validators.
func (s *Simulator) Buffer() *buffer.Buffer { return s.buf }

// Mode returns the active mode.
func (s *Simulator) Mode() mode.Mode { return s.modes.Current() }

// Cursor returns the cursor position.
func (s *Simulator) Cursor() buffer.Position { return s.buf.Cursor() }

// Content returns the buffer text joined with newlines.
func (s *Simulator) Content() string { return s.buf.Content() }

// LastCommand is the last key that succeeded.
func (s *Simulator) LastCommand() string { return s.lastCommand }

// CommandCount is the number of keys that succeeded.
func (s *Simulator) CommandCount() int { return s.commandCount }

// History returns the interpreter's recently completed commands.
func (s *Simulator) History() []string { return s.interp.History() }

// PendingKeys returns keys typed toward an unfinished command.
func (s *Simulator) PendingKeys() string { return s.interp.PendingKeys() }

// CommandLine returns the Command-mode prompt and text.
func (s *Simulator) CommandLine() (prompt, text string, active bool) {
	return s.interp.CommandLine()
}

// ProcessInput applies one key. Unexpected faults inside the interpreter are
// recovered into a failed Response that still carries the current state.
func (s *Simulator) ProcessInput(t command.Token) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("simulator error: %v", r)
			log.Error(log.CatSim, "Recovered from interpreter panic", "key", t, "panic", r)
			s.interp.Abort()
			s.errorMessage = err.Error()
			resp = s.respond(command.Result{Success: false, Err: err})
		}
	}()

	if s.beforeKey != nil {
		s.beforeKey(t)
	}
	r := s.interp.ProcessKey(t)
	if r.Success {
		s.lastCommand = string(t)
		s.commandCount++
		s.errorMessage = ""
	} else {
		s.errorMessage = r.ErrorText()
		if s.errorMessage == "" {
			s.errorMessage = "command failed"
		}
		log.Debug(log.CatSim, "Key rejected", "key", t, "mode", s.modes.Current(), "error", s.errorMessage)
	}
	return s.respond(r)
}

// ProcessKeyString parses a raw key name before applying it.
func (s *Simulator) ProcessKeyString(key string) Response {
	t, err := command.ParseToken(key)
	if err != nil {
		s.errorMessage = err.Error()
		return s.respond(command.Result{Success: false, Err: err})
	}
	return s.ProcessInput(t)
}

func (s *Simulator) respond(r command.Result) Response {
	return Response{
		Success:        r.Success,
		Message:        r.Message,
		Cursor:         s.buf.Cursor(),
		Mode:           s.modes.Current(),
		BufferContent:  s.buf.Lines(),
		DisplayLines:   s.DisplayLines(),
		StatusLine:     s.StatusLine(),
		Pending:        r.Pending,
		ModeChanged:    r.ModeChanged,
		BufferModified: r.BufferModified,
		Quit:           r.Quit,
		Err:            r.Err,
	}
}

// Snapshot returns the current state as a Response without applying input.
func (s *Simulator) Snapshot() Response {
	return s.respond(command.Result{Success: true})
}

// Reset replaces the buffer with content and clears all bookkeeping.
func (s *Simulator) Reset(content string) Response {
	s.rebuild(content)
	log.Debug(log.CatSim, "Simulator reset", "lines", s.buf.LineCount())
	return s.respond(command.Result{Success: true, Message: "simulator reset"})
}

// ExecuteCommandSequence applies tokens in order. When strict is set it
// stops after the first failure.
func (s *Simulator) ExecuteCommandSequence(tokens []command.Token, strict bool) []Response {
	out := make([]Response, 0, len(tokens))
	for _, t := range tokens {
		r := s.ProcessInput(t)
		out = append(out, r)
		if strict && !r.Success {
			break
		}
	}
	return out
}

// ValidateCommandSequence reports whether every token would succeed,
// without changing the simulator.
func (s *Simulator) ValidateCommandSequence(tokens []command.Token) (bool, string) {
	buf := s.buf.Clone()
	modes := s.modes.Clone()
	interp := s.interp.Clone(buf, modes)
	for _, t := range tokens {
		r := interp.ProcessKey(t)
		if !r.Success {
			return false, fmt.Sprintf("invalid command '%s': %s", t, r.ErrorText())
		}
	}
	return true, "command sequence is valid"
}

// ModeHelp describes the active mode for learners.
func (s *Simulator) ModeHelp() string { return mode.HelpText(s.modes.Current()) }

// CommandHelp lists keys worth knowing in the active mode.
func (s *Simulator) CommandHelp() []mode.KeyHelp {
	return mode.AvailableCommands(s.modes.Current())
}

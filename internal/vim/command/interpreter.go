// Package command turns key tokens into buffer and mode operations.
//
// The Interpreter owns no text itself; it drives a buffer.Buffer and a
// mode.Manager created alongside it. Normal-mode key sequences resolve
// through a static trie into a closed set of command IDs, so an incomplete
// sequence such as "d" or "g" is an explicit pending state.
package command

import (
	"errors"
	"fmt"

	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/mode"
)

const historyLimit = 50

// Errors reported through Result.Err.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotApplicable  = errors.New("command not applicable")
	ErrUnsupportedKey = errors.New("key not supported in this mode")
	ErrPatternMissing = errors.New("pattern not found")
	ErrNoPrevSearch   = errors.New("no previous search pattern")
	ErrNotEditorCmd   = errors.New("not an editor command")
)

// Result describes the effect of one key.
type Result struct {
	Success        bool
	Message        string
	ModeChanged    bool
	NewMode        mode.Mode
	CursorMoved    bool
	BufferModified bool
	Pending        bool
	Quit           bool
	Err            error
}

// ErrorText returns Err as a string, or "" when nil.
func (r Result) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Interpreter processes keys for one buffer and mode manager.
type Interpreter struct {
	buf   *buffer.Buffer
	modes *mode.Manager
	trie  *Trie

	count        CountState
	pending      []Token
	awaitingChar bool
	replaced     []replacedChar
	cmdline      cmdline
	register     Register
	search       searchState
	history      []string
	lastCommand  string
	commandCount int
}

// New returns an interpreter driving buf and modes.
func New(buf *buffer.Buffer, modes *mode.Manager) *Interpreter {
	return &Interpreter{buf: buf, modes: modes, trie: defaultTrie}
}

// Buffer returns the driven buffer.
func (in *Interpreter) Buffer() *buffer.Buffer { return in.buf }

// Modes returns the driven mode manager.
func (in *Interpreter) Modes() *mode.Manager { return in.modes }

// LastCommand is the most recently completed command, e.g. "3dd".
func (in *Interpreter) LastCommand() string { return in.lastCommand }

// CommandCount is the number of completed commands.
func (in *Interpreter) CommandCount() int { return in.commandCount }

// History returns recently completed commands, oldest first.
func (in *Interpreter) History() []string {
	return append([]string(nil), in.history...)
}

// PendingKeys renders the keys typed toward an unfinished command,
// including any count, e.g. "2d".
func (in *Interpreter) PendingKeys() string {
	s := ""
	if in.count.Active {
		s = fmt.Sprint(in.count.Value)
	}
	if in.awaitingChar {
		return s + "r"
	}
	return s + Join(in.pending)
}

// CommandLine returns the prompt and text being typed in Command mode.
func (in *Interpreter) CommandLine() (prompt string, line string, active bool) {
	if in.modes.Current() != mode.Command {
		return "", "", false
	}
	return string(in.cmdline.prompt), in.cmdline.text, true
}

// Register returns the clipboard contents.
func (in *Interpreter) Register() Register { return in.register }

// LastSearch returns the last search pattern and direction.
func (in *Interpreter) LastSearch() (pattern string, forward bool) {
	return in.search.pattern, in.search.forward
}

// ProcessKey applies one key. It never panics on user input; failures are
// reported with Success false and a non-nil Err, leaving state untouched.
func (in *Interpreter) ProcessKey(t Token) Result {
	beforeMode := in.modes.Current()
	beforeCursor := in.buf.Cursor()
	beforeVersion := in.buf.Version()

	var r Result
	switch m := in.modes.Current(); {
	case m == mode.Insert:
		r = in.processInsert(t)
	case m == mode.Replace:
		r = in.processReplace(t)
	case m.IsVisual():
		r = in.processVisual(t)
	case m == mode.Command:
		r = in.processCmdline(t)
	default:
		r = in.processNormal(t)
	}

	if in.modes.Current() == mode.Normal {
		in.buf.ClampCursor()
	}
	r.NewMode = in.modes.Current()
	r.ModeChanged = r.NewMode != beforeMode
	r.CursorMoved = in.buf.Cursor() != beforeCursor
	r.BufferModified = in.buf.Version() != beforeVersion
	return r
}

// Reset clears pending input and bookkeeping but keeps the register and
// last search.
func (in *Interpreter) Reset() {
	in.resetPending()
	in.cmdline = cmdline{}
	in.replaced = nil
	in.history = nil
	in.lastCommand = ""
	in.commandCount = 0
}

// Abort drops pending keys, the command line and any open undo group, and
// returns to Normal mode with the cursor clamped.
func (in *Interpreter) Abort() {
	in.resetPending()
	in.cmdline = cmdline{}
	in.replaced = nil
	in.buf.CloseGroups()
	in.buf.ClearVisual()
	if in.modes.Current() != mode.Normal {
		in.modes.SwitchMode(mode.Normal)
	}
	in.buf.ClampCursor()
}

func (in *Interpreter) resetPending() {
	in.count.Reset()
	in.pending = nil
	in.awaitingChar = false
}

// record notes a completed command for history and status display.
func (in *Interpreter) record(keys string) {
	in.lastCommand = keys
	in.commandCount++
	in.history = append(in.history, keys)
	if len(in.history) > historyLimit {
		in.history = in.history[len(in.history)-historyLimit:]
	}
}

func ok(msg string) Result { return Result{Success: true, Message: msg} }

func fail(err error) Result { return Result{Success: false, Message: err.Error(), Err: err} }

func failf(base error, format string, args ...any) Result {
	return fail(fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...)))
}

// State is the serializable bookkeeping of an interpreter.
type State struct {
	LastCommand   string   `json:"last_command"`
	CommandCount  int      `json:"command_count"`
	History       []string `json:"history,omitempty"`
	Register      Register `json:"register"`
	SearchPattern string   `json:"search_pattern,omitempty"`
	SearchForward bool     `json:"search_forward"`
}

// State captures bookkeeping. Pending keys are not persisted.
func (in *Interpreter) State() State {
	return State{
		LastCommand:   in.lastCommand,
		CommandCount:  in.commandCount,
		History:       in.History(),
		Register:      in.register,
		SearchPattern: in.search.pattern,
		SearchForward: in.search.forward,
	}
}

// Restore loads bookkeeping and drops any pending input.
func (in *Interpreter) Restore(s State) {
	in.resetPending()
	in.cmdline = cmdline{}
	in.replaced = nil
	in.lastCommand = s.LastCommand
	in.commandCount = max(0, s.CommandCount)
	in.history = append([]string(nil), s.History...)
	in.register = s.Register
	in.search = searchState{pattern: s.SearchPattern, forward: s.SearchForward}
}

// Clone copies the interpreter onto buf and modes, which should be clones
// of the originals.
func (in *Interpreter) Clone(buf *buffer.Buffer, modes *mode.Manager) *Interpreter {
	c := *in
	c.buf = buf
	c.modes = modes
	c.pending = append([]Token(nil), in.pending...)
	c.replaced = append([]replacedChar(nil), in.replaced...)
	c.history = append([]string(nil), in.history...)
	return &c
}

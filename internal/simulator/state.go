package simulator

import (
	"fmt"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/command"
	"github.com/zjrosen/vimgym/internal/vim/mode"
)

// State is the JSON-serializable form of a Simulator. Undo history and
// half-typed commands are not part of it.
type State struct {
	Buffer       buffer.State    `json:"buffer_state"`
	Mode         mode.State      `json:"mode_state"`
	Cursor       buffer.Position `json:"cursor_position"`
	LastCommand  string          `json:"last_command"`
	CommandCount int             `json:"command_count"`
	Interpreter  command.State   `json:"interpreter"`
	Display      Display         `json:"display_settings"`
}

// State captures everything needed to resume editing.
func (s *Simulator) State() State {
	return State{
		Buffer:       s.buf.State(),
		Mode:         s.modes.State(),
		Cursor:       s.buf.Cursor(),
		LastCommand:  s.lastCommand,
		CommandCount: s.commandCount,
		Interpreter:  s.interp.State(),
		Display:      s.display,
	}
}

// Restore replaces the simulator with st. On malformed input the simulator
// is reset to an empty buffer and an error wrapping ErrInvalidState is
// returned.
func (s *Simulator) Restore(st State) error {
	buf := buffer.New("")
	if err := buf.Restore(st.Buffer); err != nil {
		return s.restoreFailed(err)
	}
	modes := mode.NewManager()
	if err := modes.Restore(st.Mode); err != nil {
		return s.restoreFailed(err)
	}
	if st.CommandCount < 0 {
		return s.restoreFailed(fmt.Errorf("negative command count %d", st.CommandCount))
	}

	// Anchors only make sense while a visual mode is active.
	switch {
	case !modes.Current().IsVisual():
		buf.ClearVisual()
	case !buf.VisualActive():
		buf.StartVisual()
	}
	if modes.Current() == mode.Normal {
		buf.ClampCursor()
	}

	s.buf = buf
	s.modes = modes
	s.interp = command.New(buf, modes)
	s.interp.Restore(st.Interpreter)
	s.lastCommand = st.LastCommand
	s.commandCount = st.CommandCount
	s.errorMessage = ""
	if st.Display.valid() {
		s.display = st.Display
	}
	return nil
}

func (s *Simulator) restoreFailed(err error) error {
	log.ErrorErr(log.CatSim, "Discarding unusable simulator state", err)
	s.rebuild("")
	return fmt.Errorf("%w: %w", ErrInvalidState, err)
}

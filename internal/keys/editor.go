package keys

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/vimgym/internal/vim/command"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

var special = map[tea.KeyType]command.Token{
	tea.KeyEsc:       command.Esc,
	tea.KeyEnter:     command.Enter,
	tea.KeyBackspace: command.Backspace,
	tea.KeyDelete:    command.Delete,
	tea.KeyTab:       command.Tab,
	tea.KeyUp:        command.Up,
	tea.KeyDown:      command.Down,
	tea.KeyLeft:      command.Left,
	tea.KeyRight:     command.Right,
	tea.KeyHome:      command.Home,
	tea.KeyEnd:       command.End,
	tea.KeySpace:     " ",
	tea.KeyCtrlC:     command.CtrlC,
	tea.KeyCtrlR:     command.CtrlR,
	tea.KeyCtrlV:     command.CtrlV,
}

// EditorTokens converts a terminal key event into editor keys. Pasted
// text arrives as one event and becomes one token per grapheme. Keys the
// editor has no use for, and alt combinations, yield nothing.
func EditorTokens(msg tea.KeyMsg) []command.Token {
	if msg.Alt {
		return nil
	}
	if t, ok := special[msg.Type]; ok {
		return []command.Token{t}
	}
	if msg.Type != tea.KeyRunes {
		return nil
	}
	var out []command.Token
	for _, g := range text.Split(string(msg.Runes)) {
		if t, err := command.ParseToken(g); err == nil {
			out = append(out, t)
		}
	}
	return out
}

package tutor

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/zjrosen/vimgym/internal/keys"
)

type keyMap []key.Binding

func (k keyMap) ShortHelp() []key.Binding  { return k }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k} }

// keyMap shows only the bindings that do something right now.
func (m Model) keyMap() keyMap {
	t := keys.Tutor
	if m.runner.Finished() {
		return keyMap{t.Next, t.Leave}
	}
	if m.runner.Engine().Completed() {
		return keyMap{t.Next, t.Restart, t.Leave}
	}
	return keyMap{t.Hint, t.Skip, t.Restart, t.Leave}
}

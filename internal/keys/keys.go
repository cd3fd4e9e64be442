// Package keys holds the keybindings of the TUI and the translation from
// terminal key events to editor keys.
package keys

import "github.com/charmbracelet/bubbles/key"

// App bindings work in every view.
var App = struct {
	Quit key.Binding
	Logs key.Binding
}{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Logs: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "toggle logs"),
	),
}

// MenuKeyMap drives the module and lesson lists.
type MenuKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Back     key.Binding
	Continue key.Binding
	Resume   key.Binding
	Practice key.Binding
	Stats    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// Menu is the default menu keymap.
var Menu = MenuKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", "l"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "h", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Continue: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "continue"),
	),
	Resume: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resume session"),
	),
	Practice: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "practice"),
	),
	Stats: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stats"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Back, k.Continue, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.Continue, k.Resume, k.Practice, k.Stats},
		{k.Help, k.Quit, App.Logs},
	}
}

// TutorKeyMap controls a running lesson. Every binding is a control key
// the editor itself leaves alone, since plain keys go to the editor.
type TutorKeyMap struct {
	Hint    key.Binding
	Next    key.Binding
	Skip    key.Binding
	Restart key.Binding
	Leave   key.Binding
}

// Tutor is the default lesson keymap.
var Tutor = TutorKeyMap{
	Hint: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "hint"),
	),
	Next: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "next"),
	),
	Skip: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "skip"),
	),
	Restart: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "restart"),
	),
	Leave: key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("ctrl+q", "menu"),
	),
}

// ShortHelp implements help.KeyMap.
func (k TutorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Hint, k.Next, k.Skip, k.Restart, k.Leave}
}

// FullHelp implements help.KeyMap.
func (k TutorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {App.Logs, App.Quit}}
}

// PracticeKeyMap controls the free practice editor.
type PracticeKeyMap struct {
	Reset       key.Binding
	SavePoint   key.Binding
	ToSavePoint key.Binding
	Leave       key.Binding
}

// Practice is the default practice keymap.
var Practice = PracticeKeyMap{
	Reset: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "reset text"),
	),
	SavePoint: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save point"),
	),
	ToSavePoint: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "back to save point"),
	),
	Leave: key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("ctrl+q", "menu"),
	),
}

// ShortHelp implements help.KeyMap.
func (k PracticeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reset, k.SavePoint, k.ToSavePoint, k.Leave}
}

// FullHelp implements help.KeyMap.
func (k PracticeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {App.Logs, App.Quit}}
}

// StatsKeyMap controls the statistics screen.
type StatsKeyMap struct {
	Copy key.Binding
	Back key.Binding
}

// Stats is the default statistics keymap.
var Stats = StatsKeyMap{
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy summary"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "q", "h"),
		key.WithHelp("esc", "back"),
	),
}

// ShortHelp implements help.KeyMap.
func (k StatsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Back}
}

// FullHelp implements help.KeyMap.
func (k StatsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {App.Logs, App.Quit}}
}

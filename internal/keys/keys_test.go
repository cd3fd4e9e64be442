package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/vim/command"
)

func TestTutorBindingsAvoidEditorKeys(t *testing.T) {
	for _, b := range Tutor.ShortHelp() {
		for _, k := range b.Keys() {
			require.NotContains(t, []string{"ctrl+r", "ctrl+v", "esc"}, k)
			require.Len(t, EditorTokens(tea.KeyMsg(keyFor(k))), 0, "%s would reach the editor", k)
		}
	}
}

func keyFor(s string) tea.Key {
	for kt, name := range map[tea.KeyType]string{
		tea.KeyCtrlT: "ctrl+t", tea.KeyCtrlN: "ctrl+n", tea.KeyCtrlK: "ctrl+k",
		tea.KeyCtrlO: "ctrl+o", tea.KeyCtrlQ: "ctrl+q",
	} {
		if name == s {
			return tea.Key{Type: kt}
		}
	}
	return tea.Key{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestHelpTextDefined(t *testing.T) {
	groups := [][]key.Binding{Menu.ShortHelp(), Tutor.ShortHelp(), Practice.ShortHelp()}
	for _, g := range groups {
		for _, b := range g {
			require.NotEmpty(t, b.Help().Key)
			require.NotEmpty(t, b.Help().Desc)
		}
	}
	require.Len(t, Menu.FullHelp(), 3)
}

func TestEditorTokens(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []command.Token
	}{
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, []command.Token{"x"}},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("dw")}, []command.Token{"d", "w"}},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, []command.Token{command.Esc}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, []command.Token{command.Enter}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, []command.Token{" "}},
		{"redo", tea.KeyMsg{Type: tea.KeyCtrlR}, []command.Token{command.CtrlR}},
		{"arrow", tea.KeyMsg{Type: tea.KeyLeft}, []command.Token{command.Left}},
		{"alt", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}, nil},
		{"unmapped", tea.KeyMsg{Type: tea.KeyF5}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, EditorTokens(tt.msg))
		})
	}
}

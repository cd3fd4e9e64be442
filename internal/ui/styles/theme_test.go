package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/vim/mode"
)

func TestPresetsOnlyUseKnownTokens(t *testing.T) {
	for name, p := range Presets {
		require.Equal(t, name, p.Name)
		for tok, hex := range p.Colors {
			require.True(t, isValidToken(tok), "%s: %s", name, tok)
			require.Regexp(t, hexColorPattern, hex, "%s: %s", name, tok)
		}
	}
}

func TestDefaultPresetDefinesEveryToken(t *testing.T) {
	for _, tok := range AllTokens {
		require.Contains(t, DefaultPreset.Colors, tok)
	}
}

func TestNewTheme_Overrides(t *testing.T) {
	th, err := NewTheme(ThemeConfig{
		Preset: "dracula",
		Mode:   "dark",
		Colors: map[string]string{"editor.cursor": "#FF0000"},
	})
	require.NoError(t, err)
	require.Equal(t, "dracula", th.Name)
	require.Equal(t, lipgloss.Color("#FF0000"), th.Color(TokenEditorCursor))
	require.Equal(t, lipgloss.Color("#50FA7B"), th.Color(TokenStatusSuccess))
	// Falls back to the default preset for tokens dracula leaves out.
	require.Equal(t, lipgloss.Color(DefaultPreset.Colors[TokenLocked]), th.Color(TokenLocked))
}

func TestNewTheme_LightModeDefaultsToLatte(t *testing.T) {
	th, err := NewTheme(ThemeConfig{Mode: "light"})
	require.NoError(t, err)
	require.Equal(t, "catppuccin-latte", th.Name)
	require.False(t, th.Dark)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  ThemeConfig
		want string
	}{
		{"unknown preset", ThemeConfig{Preset: "solarized"}, "unknown theme preset"},
		{"unknown token", ThemeConfig{Colors: map[string]string{"editor.caret": "#FFFFFF"}}, "unknown color token"},
		{"bad hex", ThemeConfig{Colors: map[string]string{"editor.cursor": "red"}}, "invalid color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			require.ErrorContains(t, err, tt.want)
		})
	}
	require.NoError(t, Validate(ThemeConfig{Preset: "nord"}))
}

func TestPanel(t *testing.T) {
	th := DefaultTheme()
	out := ansi.Strip(th.Panel("hello\nworld", "Editor", 20, 5, true))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[0], "╭─ Editor "))
	require.Contains(t, lines[1], "hello")
	require.Contains(t, lines[2], "world")
	for _, l := range lines {
		require.Equal(t, 20, ansi.StringWidth(l))
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "hello", Truncate("hello", 10))
	require.Equal(t, "hell...", Truncate("hello world", 7))
	require.Equal(t, "..", Truncate("hello", 2))
	require.Empty(t, Truncate("hello", 0))
}

func TestProgressBar(t *testing.T) {
	th := DefaultTheme()
	out := ansi.Strip(th.ProgressBar(1, 4, 8))
	require.Equal(t, "██░░░░░░  25%", out)
	require.Equal(t, "░░░░   0%", ansi.Strip(th.ProgressBar(0, 0, 4)))
}

func TestModeBadge(t *testing.T) {
	th := DefaultTheme()
	require.Contains(t, ansi.Strip(th.ModeBadge(mode.Insert)), "INSERT")
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "45s", FormatDuration(45))
	require.Equal(t, "1m05s", FormatDuration(65))
	require.Equal(t, "2h03m", FormatDuration(2*3600+3*60))
}

package styles

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/zjrosen/vimgym/internal/vim/mode"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ThemeConfig selects a preset and overrides individual tokens. Colors is
// keyed by dotted token name, e.g. "editor.cursor".
type ThemeConfig struct {
	Preset string
	Mode   string
	Colors map[string]string
}

// Theme is the resolved set of styles the views render with.
type Theme struct {
	Name   string
	Dark   bool
	colors map[ColorToken]lipgloss.Color

	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Text         lipgloss.Style
	Muted        lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Selected     lipgloss.Style
	Locked       lipgloss.Style
	LineNumber   lipgloss.Style
	Cursor       lipgloss.Style
	InsertCursor lipgloss.Style
	Selection    lipgloss.Style
	StatusLine   lipgloss.Style
	Hint         lipgloss.Style
}

// Validate checks that the preset exists, every override names a known
// token and every color is #RRGGBB.
func Validate(cfg ThemeConfig) error {
	if cfg.Preset != "" {
		if _, ok := Presets[cfg.Preset]; !ok {
			return fmt.Errorf("unknown theme preset %q (available: %s)", cfg.Preset, strings.Join(PresetNames(), ", "))
		}
	}
	for k, v := range cfg.Colors {
		if !isValidToken(ColorToken(k)) {
			return fmt.Errorf("unknown color token %q", k)
		}
		if !hexColorPattern.MatchString(v) {
			return fmt.Errorf("invalid color %q for %s: expected #RRGGBB", v, k)
		}
	}
	return nil
}

// NewTheme resolves cfg on top of the default preset. An empty preset on a
// light terminal starts from catppuccin-latte instead.
func NewTheme(cfg ThemeConfig) (*Theme, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	dark := isDark(cfg.Mode)
	name := cfg.Preset
	if name == "" {
		name = "default"
		if !dark {
			name = "catppuccin-latte"
		}
	}

	colors := make(map[ColorToken]lipgloss.Color, len(AllTokens))
	for tok, hex := range DefaultPreset.Colors {
		colors[tok] = lipgloss.Color(hex)
	}
	for tok, hex := range Presets[name].Colors {
		colors[tok] = lipgloss.Color(hex)
	}
	for k, hex := range cfg.Colors {
		colors[ColorToken(k)] = lipgloss.Color(hex)
	}

	t := &Theme{Name: name, Dark: dark, colors: colors}
	t.build()
	return t, nil
}

// DefaultTheme is the default preset with no overrides.
func DefaultTheme() *Theme {
	t, _ := NewTheme(ThemeConfig{Preset: "default", Mode: "dark"})
	return t
}

func isDark(forced string) bool {
	switch forced {
	case "dark":
		return true
	case "light":
		return false
	}
	return termenv.NewOutput(os.Stdout).HasDarkBackground()
}

func (t *Theme) build() {
	fg := func(tok ColorToken) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(t.colors[tok])
	}
	t.Title = fg(TokenTextPrimary).Bold(true)
	t.Subtitle = fg(TokenTextSecondary)
	t.Text = fg(TokenTextPrimary)
	t.Muted = fg(TokenTextMuted)
	t.Success = fg(TokenStatusSuccess)
	t.Warning = fg(TokenStatusWarning)
	t.Error = fg(TokenStatusError)
	t.Selected = fg(TokenSelectionIndicator).Bold(true)
	t.Locked = fg(TokenLocked).Faint(true)
	t.LineNumber = fg(TokenEditorLineNumber)
	t.Cursor = lipgloss.NewStyle().Reverse(true).Foreground(t.colors[TokenEditorCursor])
	t.InsertCursor = lipgloss.NewStyle().Underline(true).Foreground(t.colors[TokenEditorCursor])
	t.Selection = lipgloss.NewStyle().Background(t.colors[TokenEditorSelection])
	t.StatusLine = fg(TokenTextSecondary)
	t.Hint = fg(TokenStatusWarning).Italic(true)
}

// Color returns the resolved color of tok.
func (t *Theme) Color(tok ColorToken) lipgloss.Color {
	return t.colors[tok]
}

// ModeBadge renders the mode name the way the status line shows it.
func (t *Theme) ModeBadge(m mode.Mode) string {
	tok := TokenModeNormal
	switch m {
	case mode.Insert:
		tok = TokenModeInsert
	case mode.Visual, mode.VisualLine, mode.VisualBlock:
		tok = TokenModeVisual
	case mode.Command:
		tok = TokenModeCommand
	case mode.Replace:
		tok = TokenModeReplace
	}
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("#000000")).
		Background(t.colors[tok]).
		Render(strings.ToUpper(m.DisplayName()))
}

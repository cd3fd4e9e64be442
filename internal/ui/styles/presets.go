package styles

import (
	"maps"
	"slices"
)

// Preset is a complete named color theme.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets holds the built-in themes by name.
var Presets = map[string]Preset{
	"default":          DefaultPreset,
	"catppuccin-mocha": CatppuccinMochaPreset,
	"catppuccin-latte": CatppuccinLattePreset,
	"dracula":          DraculaPreset,
	"nord":             NordPreset,
	"high-contrast":    HighContrastPreset,
}

// PresetNames returns the built-in theme names, sorted.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(Presets))
}

// DefaultPreset defines every token; other presets only list what they
// change.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Default vimgym theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:   "#CCCCCC",
		TokenTextSecondary: "#BBBBBB",
		TokenTextMuted:     "#696969",

		TokenBorderDefault: "#696969",
		TokenBorderFocus:   "#54A0FF",

		TokenStatusSuccess: "#73F59F",
		TokenStatusWarning: "#FECA57",
		TokenStatusError:   "#FF8787",

		TokenSelectionIndicator: "#FFFFFF",

		TokenEditorCursor:     "#54A0FF",
		TokenEditorSelection:  "#3D4F6B",
		TokenEditorLineNumber: "#5C5C5C",

		TokenModeNormal:  "#54A0FF",
		TokenModeInsert:  "#73F59F",
		TokenModeVisual:  "#FF9F43",
		TokenModeCommand: "#FECA57",
		TokenModeReplace: "#FF8787",

		TokenOverlayTitle:  "#C9C9C9",
		TokenOverlayBorder: "#8C8C8C",

		TokenToastSuccess: "#73F59F",
		TokenToastError:   "#FF8787",
		TokenToastInfo:    "#54A0FF",
		TokenToastWarn:    "#FECA57",

		TokenProgressFill:  "#73F59F",
		TokenProgressTrack: "#3A3A3A",
		TokenLocked:        "#5C5C5C",
	},
}

// CatppuccinMochaPreset is the dark Catppuccin flavor.
var CatppuccinMochaPreset = Preset{
	Name:        "catppuccin-mocha",
	Description: "Soothing pastel theme for dark terminals",
	Colors: map[ColorToken]string{
		TokenTextPrimary:      "#CDD6F4",
		TokenTextSecondary:    "#BAC2DE",
		TokenTextMuted:        "#6C7086",
		TokenBorderDefault:    "#45475A",
		TokenBorderFocus:      "#89B4FA",
		TokenStatusSuccess:    "#A6E3A1",
		TokenStatusWarning:    "#F9E2AF",
		TokenStatusError:      "#F38BA8",
		TokenEditorCursor:     "#F5E0DC",
		TokenEditorSelection:  "#45475A",
		TokenEditorLineNumber: "#585B70",
		TokenModeNormal:       "#89B4FA",
		TokenModeInsert:       "#A6E3A1",
		TokenModeVisual:       "#CBA6F7",
		TokenModeCommand:      "#F9E2AF",
		TokenModeReplace:      "#F38BA8",
		TokenOverlayTitle:     "#CDD6F4",
		TokenOverlayBorder:    "#6C7086",
		TokenToastSuccess:     "#A6E3A1",
		TokenToastError:       "#F38BA8",
		TokenToastInfo:        "#89B4FA",
		TokenToastWarn:        "#F9E2AF",
		TokenProgressFill:     "#A6E3A1",
		TokenProgressTrack:    "#313244",
		TokenLocked:           "#585B70",
	},
}

// CatppuccinLattePreset is the light Catppuccin flavor.
var CatppuccinLattePreset = Preset{
	Name:        "catppuccin-latte",
	Description: "Soothing pastel theme for light terminals",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#4C4F69",
		TokenTextSecondary:      "#5C5F77",
		TokenTextMuted:          "#9CA0B0",
		TokenBorderDefault:      "#BCC0CC",
		TokenBorderFocus:        "#1E66F5",
		TokenStatusSuccess:      "#40A02B",
		TokenStatusWarning:      "#DF8E1D",
		TokenStatusError:        "#D20F39",
		TokenSelectionIndicator: "#4C4F69",
		TokenEditorCursor:       "#DC8A78",
		TokenEditorSelection:    "#CCD0DA",
		TokenEditorLineNumber:   "#ACB0BE",
		TokenModeNormal:         "#1E66F5",
		TokenModeInsert:         "#40A02B",
		TokenModeVisual:         "#8839EF",
		TokenModeCommand:        "#DF8E1D",
		TokenModeReplace:        "#D20F39",
		TokenOverlayTitle:       "#4C4F69",
		TokenOverlayBorder:      "#9CA0B0",
		TokenToastSuccess:       "#40A02B",
		TokenToastError:         "#D20F39",
		TokenToastInfo:          "#1E66F5",
		TokenToastWarn:          "#DF8E1D",
		TokenProgressFill:       "#40A02B",
		TokenProgressTrack:      "#E6E9EF",
		TokenLocked:             "#ACB0BE",
	},
}

// DraculaPreset follows the Dracula palette.
var DraculaPreset = Preset{
	Name:        "dracula",
	Description: "Dark theme with vibrant colors",
	Colors: map[ColorToken]string{
		TokenTextPrimary:      "#F8F8F2",
		TokenTextSecondary:    "#E2E2DC",
		TokenTextMuted:        "#6272A4",
		TokenBorderDefault:    "#44475A",
		TokenBorderFocus:      "#BD93F9",
		TokenStatusSuccess:    "#50FA7B",
		TokenStatusWarning:    "#F1FA8C",
		TokenStatusError:      "#FF5555",
		TokenEditorCursor:     "#FF79C6",
		TokenEditorSelection:  "#44475A",
		TokenEditorLineNumber: "#6272A4",
		TokenModeNormal:       "#BD93F9",
		TokenModeInsert:       "#50FA7B",
		TokenModeVisual:       "#FFB86C",
		TokenModeCommand:      "#F1FA8C",
		TokenModeReplace:      "#FF5555",
		TokenToastSuccess:     "#50FA7B",
		TokenToastError:       "#FF5555",
		TokenToastInfo:        "#8BE9FD",
		TokenToastWarn:        "#F1FA8C",
		TokenProgressFill:     "#50FA7B",
		TokenProgressTrack:    "#282A36",
	},
}

// NordPreset follows the Nord palette.
var NordPreset = Preset{
	Name:        "nord",
	Description: "Arctic, north-bluish color palette",
	Colors: map[ColorToken]string{
		TokenTextPrimary:      "#ECEFF4",
		TokenTextSecondary:    "#E5E9F0",
		TokenTextMuted:        "#4C566A",
		TokenBorderDefault:    "#434C5E",
		TokenBorderFocus:      "#88C0D0",
		TokenStatusSuccess:    "#A3BE8C",
		TokenStatusWarning:    "#EBCB8B",
		TokenStatusError:      "#BF616A",
		TokenEditorCursor:     "#88C0D0",
		TokenEditorSelection:  "#434C5E",
		TokenEditorLineNumber: "#4C566A",
		TokenModeNormal:       "#81A1C1",
		TokenModeInsert:       "#A3BE8C",
		TokenModeVisual:       "#B48EAD",
		TokenModeCommand:      "#EBCB8B",
		TokenModeReplace:      "#BF616A",
		TokenToastSuccess:     "#A3BE8C",
		TokenToastError:       "#BF616A",
		TokenToastInfo:        "#88C0D0",
		TokenToastWarn:        "#EBCB8B",
		TokenProgressFill:     "#A3BE8C",
		TokenProgressTrack:    "#3B4252",
	},
}

// HighContrastPreset maximizes contrast for accessibility.
var HighContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "Maximum contrast for accessibility",
	Colors: map[ColorToken]string{
		TokenTextPrimary:      "#FFFFFF",
		TokenTextSecondary:    "#FFFFFF",
		TokenTextMuted:        "#BBBBBB",
		TokenBorderDefault:    "#FFFFFF",
		TokenBorderFocus:      "#FFFF00",
		TokenStatusSuccess:    "#00FF00",
		TokenStatusWarning:    "#FFFF00",
		TokenStatusError:      "#FF0000",
		TokenEditorCursor:     "#FFFF00",
		TokenEditorSelection:  "#0000AA",
		TokenEditorLineNumber: "#BBBBBB",
		TokenModeNormal:       "#00FFFF",
		TokenModeInsert:       "#00FF00",
		TokenModeVisual:       "#FF00FF",
		TokenModeCommand:      "#FFFF00",
		TokenModeReplace:      "#FF0000",
		TokenToastSuccess:     "#00FF00",
		TokenToastError:       "#FF0000",
		TokenToastInfo:        "#00FFFF",
		TokenToastWarn:        "#FFFF00",
		TokenProgressFill:     "#00FF00",
		TokenProgressTrack:    "#444444",
		TokenLocked:           "#BBBBBB",
	},
}

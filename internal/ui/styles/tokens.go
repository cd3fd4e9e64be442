// Package styles builds the Lip Gloss styles of the terminal UI from a
// color theme.
package styles

import "slices"

// ColorToken names a themeable color. Users override tokens in the
// theme.colors section of the config.
type ColorToken string

const (
	// Text hierarchy
	TokenTextPrimary   ColorToken = "text.primary"
	TokenTextSecondary ColorToken = "text.secondary"
	TokenTextMuted     ColorToken = "text.muted"

	// Borders
	TokenBorderDefault ColorToken = "border.default"
	TokenBorderFocus   ColorToken = "border.focus"

	// Status indicators
	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusWarning ColorToken = "status.warning"
	TokenStatusError   ColorToken = "status.error"

	TokenSelectionIndicator ColorToken = "selection.indicator"

	// Editor pane
	TokenEditorCursor     ColorToken = "editor.cursor"
	TokenEditorSelection  ColorToken = "editor.selection"
	TokenEditorLineNumber ColorToken = "editor.line_number"

	// Mode badges in the status line
	TokenModeNormal  ColorToken = "mode.normal"
	TokenModeInsert  ColorToken = "mode.insert"
	TokenModeVisual  ColorToken = "mode.visual"
	TokenModeCommand ColorToken = "mode.command"
	TokenModeReplace ColorToken = "mode.replace"

	// Overlays
	TokenOverlayTitle  ColorToken = "overlay.title"
	TokenOverlayBorder ColorToken = "overlay.border"

	// Toast notifications
	TokenToastSuccess ColorToken = "toast.success"
	TokenToastError   ColorToken = "toast.error"
	TokenToastInfo    ColorToken = "toast.info"
	TokenToastWarn    ColorToken = "toast.warn"

	// Progress bars and lock markers
	TokenProgressFill  ColorToken = "progress.fill"
	TokenProgressTrack ColorToken = "progress.track"
	TokenLocked        ColorToken = "menu.locked"
)

// AllTokens lists every token in display order.
var AllTokens = []ColorToken{
	TokenTextPrimary, TokenTextSecondary, TokenTextMuted,
	TokenBorderDefault, TokenBorderFocus,
	TokenStatusSuccess, TokenStatusWarning, TokenStatusError,
	TokenSelectionIndicator,
	TokenEditorCursor, TokenEditorSelection, TokenEditorLineNumber,
	TokenModeNormal, TokenModeInsert, TokenModeVisual, TokenModeCommand, TokenModeReplace,
	TokenOverlayTitle, TokenOverlayBorder,
	TokenToastSuccess, TokenToastError, TokenToastInfo, TokenToastWarn,
	TokenProgressFill, TokenProgressTrack, TokenLocked,
}

func isValidToken(t ColorToken) bool {
	return slices.Contains(AllTokens, t)
}

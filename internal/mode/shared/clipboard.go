package shared

import "github.com/atotto/clipboard"

// Clipboard copies text out of the TUI.
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard uses the platform clipboard.
type SystemClipboard struct{}

// Copy writes text to the system clipboard.
func (SystemClipboard) Copy(text string) error {
	return clipboard.WriteAll(text)
}

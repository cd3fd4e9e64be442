package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// errNoTerminal is returned when the TUI is started without a terminal.
var errNoTerminal = fmt.Errorf("vimgym needs a terminal; use %q for scripted runs", "vimgym run")

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// pipedInput returns the command's input when it is a pipe or redirect.
// It reports false for an interactive terminal. A single trailing newline
// is dropped.
func pipedInput(cmd *cobra.Command) (string, bool, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return "", false, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", false, fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), true, nil
}

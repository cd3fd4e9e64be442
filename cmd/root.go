// Package cmd holds the vimgym command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/vimgym/internal/app"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/session"
)

func init() {
	// Query the terminal background before Bubble Tea owns stdin, so the
	// OSC 11 reply cannot leak into the input stream.
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "vimgym",
	Short: "Learn Vim in your terminal",
	Long: `vimgym teaches Vim with short interactive lessons run inside a
built-in editor. Progress is saved per learner.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	// RunE is assigned here rather than in the composite literal to break
	// the rootCmd -> runTUI -> newViper -> rootCmd initialization cycle.
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runTUI(cmd.Context(), mode.ModeMenu, "")
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .vimgym/config.yaml, then ~/.config/vimgym/config.yaml)")
	rootCmd.PersistentFlags().StringP("user", "u", "",
		"learner to log in as (default: the configured user)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write a debug log and enable the log overlay (ctrl+x)")
}

// runTUI opens the environment and runs the full screen app starting at
// start.
func runTUI(ctx context.Context, start mode.AppMode, practiceText string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !isTerminal(os.Stdout) {
		return errNoTerminal
	}
	env, err := openEnvironment(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	services, err := env.services()
	if err != nil {
		return err
	}

	zone.NewGlobal()
	model := app.New(services,
		app.WithDebug(debug),
		app.WithStartMode(start),
		app.WithPracticeText(practiceText),
		app.WithAutoSaver(session.NewAutoSaver(env.sessions, env.cfg.Session.AutoSaveInterval)),
	)
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

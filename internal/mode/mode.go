// Package mode defines the screens of the TUI and the services they share.
package mode

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimgym/internal/config"
	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/flags"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/ui/markdown"
	"github.com/zjrosen/vimgym/internal/ui/styles"
	"github.com/zjrosen/vimgym/internal/ui/toaster"
	"github.com/zjrosen/vimgym/internal/user"
)

// AppMode identifies a screen.
type AppMode int

const (
	ModeMenu AppMode = iota
	ModeTutor
	ModePractice
	ModeStats
)

func (m AppMode) String() string {
	switch m {
	case ModeTutor:
		return "tutor"
	case ModePractice:
		return "practice"
	case ModeStats:
		return "stats"
	}
	return "menu"
}

// Controller is one screen.
type Controller interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Controller, tea.Cmd)
	View() string
	SetSize(width, height int) Controller
}

// Services are the dependencies every screen may use. Sessions and Users
// are nil when running without a database.
type Services struct {
	Config   *config.Config
	Flags    *flags.Registry
	Theme    *styles.Theme
	Markdown *markdown.Renderer
	Registry *content.Registry
	Tracker  *progress.Tracker
	Sessions *session.Manager
	Users    *user.Manager
	User     *user.User
	Tracer   trace.Tracer
	Clock    func() time.Time
}

// Now returns the current time from Clock, or time.Now.
func (s Services) Now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// SwitchModeMsg asks the app to change screens. ModuleID and LessonID
// name the lesson for ModeTutor. SessionID and Resume pick up a saved
// session at its recorded position.
type SwitchModeMsg struct {
	Mode      AppMode
	ModuleID  string
	LessonID  string
	SessionID string
	Resume    *session.State
}

// Switch returns a command that emits SwitchModeMsg.
func Switch(msg SwitchModeMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// ShowToastMsg asks the app to show a toast.
type ShowToastMsg struct {
	Message string
	Style   toaster.Style
}

// Toast returns a command that emits ShowToastMsg.
func Toast(message string, style toaster.Style) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message, Style: style} }
}

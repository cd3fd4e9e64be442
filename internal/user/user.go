// Package user holds learner profiles and their lifetime statistics.
//
// The package is pure domain code: persistence sits behind Repository and
// time comes from the caller, so every rule here is testable without a
// database.
package user

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxUsernameLength bounds usernames.
const MaxUsernameLength = 32

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

var (
	// ErrInvalidUsername is returned for empty, too long or oddly shaped names.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrUsernameTaken is returned when creating a duplicate user.
	ErrUsernameTaken = errors.New("username already taken")
)

// NotFoundError is returned by repositories for unknown users.
type NotFoundError struct {
	ID       string
	Username string
}

func (e *NotFoundError) Error() string {
	if e.Username != "" {
		return fmt.Sprintf("user %q not found", e.Username)
	}
	return fmt.Sprintf("user %s not found", e.ID)
}

// Preferences are per-user settings that override config defaults.
type Preferences struct {
	Theme           string `json:"theme"`
	ShowHints       bool   `json:"show_hints"`
	ShowLineNumbers bool   `json:"show_line_numbers"`
	ModeIndicators  bool   `json:"mode_indicators"`
}

// DefaultPreferences matches a new install.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "dark", ShowHints: true, ShowLineNumbers: true, ModeIndicators: true}
}

// Statistics accumulate across sessions.
type Statistics struct {
	TotalTime         time.Duration  `json:"total_time"`
	SessionsCompleted int            `json:"sessions_completed"`
	LessonsCompleted  int            `json:"lessons_completed"`
	ModulesCompleted  int            `json:"modules_completed"`
	TotalKeystrokes   int            `json:"total_keystrokes"`
	Accuracy          float64        `json:"accuracy"` // 0..1
	FavoriteCommands  map[string]int `json:"favorite_commands,omitempty"`
	Streak            int            `json:"streak"` // consecutive days
	LastActive        time.Time      `json:"last_active,omitzero"`
}

// AverageSession is the mean session length.
func (s Statistics) AverageSession() time.Duration {
	if s.SessionsCompleted == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.SessionsCompleted)
}

// CommandCount pairs a command with how often it was used.
type CommandCount struct {
	Command string
	Count   int
}

// TopCommands returns the n most used commands, most used first. Ties sort
// by command.
func (s Statistics) TopCommands(n int) []CommandCount {
	out := make([]CommandCount, 0, len(s.FavoriteCommands))
	for _, k := range slices.Sorted(maps.Keys(s.FavoriteCommands)) {
		out = append(out, CommandCount{Command: k, Count: s.FavoriteCommands[k]})
	}
	slices.SortStableFunc(out, func(a, b CommandCount) int { return b.Count - a.Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// User is one learner.
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	CreatedAt   time.Time   `json:"created_at"`
	LastLogin   time.Time   `json:"last_login"`
	Preferences Preferences `json:"preferences"`
	Statistics  Statistics  `json:"statistics"`
}

// ValidateUsername checks the shape of a username.
func ValidateUsername(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	case len(name) > MaxUsernameLength:
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidUsername, MaxUsernameLength)
	case !usernamePattern.MatchString(name):
		return fmt.Errorf("%w: %q may only contain letters, digits, '.', '_' and '-'", ErrInvalidUsername, name)
	}
	return nil
}

// New returns a user with a fresh id.
func New(username string, now time.Time) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	return &User{
		ID:          uuid.NewString(),
		Username:    username,
		CreatedAt:   now,
		LastLogin:   now,
		Preferences: DefaultPreferences(),
	}, nil
}

// SessionStats is what one finished session contributes.
type SessionStats struct {
	Duration   time.Duration
	Keystrokes int
	Mistakes   int
	Commands   []string
}

// RecordSession folds a finished session into the statistics. Accuracy is
// a running mean of per-session accuracy; the streak counts calendar days
// in now's location.
func (u *User) RecordSession(s SessionStats, now time.Time) {
	st := &u.Statistics
	st.SessionsCompleted++
	st.TotalTime += s.Duration
	st.TotalKeystrokes += s.Keystrokes

	if s.Keystrokes > 0 {
		acc := max(0, 1-float64(s.Mistakes)/float64(s.Keystrokes))
		n := float64(st.SessionsCompleted)
		st.Accuracy = (st.Accuracy*(n-1) + acc) / n
	}
	if len(s.Commands) > 0 && st.FavoriteCommands == nil {
		st.FavoriteCommands = make(map[string]int)
	}
	for _, c := range s.Commands {
		st.FavoriteCommands[c]++
	}

	switch days := daysBetween(st.LastActive, now); {
	case st.LastActive.IsZero():
		st.Streak = 1
	case days == 0:
	case days == 1:
		st.Streak++
	default:
		st.Streak = 1
	}
	st.LastActive = now
}

func daysBetween(a, b time.Time) int {
	if a.IsZero() {
		return 0
	}
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// Insights are short observations for the stats screen.
type Insights struct {
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
}

// Insights derives feedback from the statistics.
func (u *User) Insights() Insights {
	var in Insights
	st := u.Statistics
	if st.SessionsCompleted == 0 {
		in.Recommendations = append(in.Recommendations, "Finish a first session to see your statistics")
		return in
	}
	switch {
	case st.Accuracy > 0.9:
		in.Strengths = append(in.Strengths, "High accuracy")
	case st.Accuracy < 0.7:
		in.Weaknesses = append(in.Weaknesses, "Low accuracy")
		in.Recommendations = append(in.Recommendations, "Slow down and practice the basic commands")
	}
	if st.Streak > 7 {
		in.Strengths = append(in.Strengths, "Great consistency")
	} else if st.Streak < 3 {
		in.Recommendations = append(in.Recommendations, "Practice a little every day")
	}
	if top := st.TopCommands(1); len(top) == 1 {
		in.Strengths = append(in.Strengths, fmt.Sprintf("Comfortable with '%s'", top[0].Command))
	}
	return in
}

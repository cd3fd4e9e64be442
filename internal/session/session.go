// Package session tracks one sitting at the keyboard: where the learner
// is, what they typed, and enough simulator state to resume later.
package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/zjrosen/vimgym/internal/simulator"
)

// NotFoundError is returned for unknown sessions or checkpoints.
type NotFoundError struct {
	ID         string
	Checkpoint string
}

func (e *NotFoundError) Error() string {
	if e.Checkpoint != "" {
		return fmt.Sprintf("checkpoint %q of session %s not found", e.Checkpoint, e.ID)
	}
	return fmt.Sprintf("session %s not found", e.ID)
}

// State is the resumable part of a session.
type State struct {
	ModuleID      string           `json:"module_id,omitempty"`
	LessonID      string           `json:"lesson_id,omitempty"`
	ExerciseIndex int              `json:"exercise_index"`
	Simulator     *simulator.State `json:"simulator_state,omitempty"`
	LessonStarted time.Time        `json:"lesson_started,omitzero"`
	CommandsUsed  []string         `json:"commands_used,omitempty"`
	Mistakes      int              `json:"mistakes"`
	HintsUsed     int              `json:"hints_used"`
	Keystrokes    int              `json:"keystrokes"`
}

func (s State) clone() State {
	s.CommandsUsed = slices.Clone(s.CommandsUsed)
	if s.Simulator != nil {
		st := *s.Simulator
		s.Simulator = &st
	}
	return s
}

// Session is one sitting.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	StartedAt time.Time  `json:"started_at"`
	LastSaved time.Time  `json:"last_saved"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Active    bool       `json:"active"`
	State     State      `json:"state"`
}

// Clone returns a copy that shares no mutable memory with s.
func (s *Session) Clone() *Session {
	out := *s
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	out.State = s.State.clone()
	return &out
}

// Checkpoint is a named copy of a session's state.
type Checkpoint struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	State     State     `json:"state"`
}

// Summary describes a finished session.
type Summary struct {
	SessionID      string        `json:"session_id"`
	Duration       time.Duration `json:"duration"`
	Keystrokes     int           `json:"keystrokes"`
	CommandsUsed   int           `json:"commands_used"`
	UniqueCommands []string      `json:"unique_commands"`
	Mistakes       int           `json:"mistakes"`
	HintsUsed      int           `json:"hints_used"`
	Accuracy       float64       `json:"accuracy"` // 0..1
}

func summarize(s *Session, end time.Time) Summary {
	unique := slices.Clone(s.State.CommandsUsed)
	slices.Sort(unique)
	unique = slices.Compact(unique)
	sum := Summary{
		SessionID:      s.ID,
		Duration:       end.Sub(s.StartedAt).Truncate(time.Second),
		Keystrokes:     s.State.Keystrokes,
		CommandsUsed:   len(s.State.CommandsUsed),
		UniqueCommands: unique,
		Mistakes:       s.State.Mistakes,
		HintsUsed:      s.State.HintsUsed,
		Accuracy:       1,
	}
	if sum.Keystrokes > 0 {
		sum.Accuracy = max(0, 1-float64(sum.Mistakes)/float64(sum.Keystrokes))
	}
	return sum
}

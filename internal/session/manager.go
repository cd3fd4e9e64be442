package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/simulator"
)

// ErrNoSession is returned when an operation needs a current session.
var ErrNoSession = errors.New("no active session")

// Manager owns the current session. All methods are safe for concurrent
// use; the UI records keys while the auto-saver persists snapshots.
type Manager struct {
	mu      sync.Mutex
	repo    Repository
	clock   func() time.Time
	current *Session
}

// NewManager returns a manager over repo. A nil clock means time.Now.
func NewManager(repo Repository, clock func() time.Time) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{repo: repo, clock: clock}
}

// Start begins a new session for userID, replacing any current one
// without ending it. The session is saved immediately.
func (m *Manager) Start(ctx context.Context, userID string) (*Session, error) {
	now := m.clock()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartedAt: now,
		LastSaved: now,
		Active:    true,
	}
	if err := m.repo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	log.Info(log.CatSession, "Session started", "id", s.ID, "user", userID)
	return s.Clone(), nil
}

// Resume makes a stored active session current.
func (m *Manager) Resume(ctx context.Context, id string) (*Session, error) {
	s, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Active {
		return nil, fmt.Errorf("session %s has ended", id)
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	log.Info(log.CatSession, "Session resumed", "id", s.ID, "lesson", s.State.LessonID)
	return s.Clone(), nil
}

// End closes the current session, saves it and returns its summary.
func (m *Manager) End(ctx context.Context) (Summary, error) {
	m.mu.Lock()
	s := m.current
	if s == nil {
		m.mu.Unlock()
		return Summary{}, ErrNoSession
	}
	now := m.clock()
	s.Active = false
	s.EndedAt = &now
	s.LastSaved = now
	snap := s.Clone()
	m.current = nil
	m.mu.Unlock()

	if err := m.repo.Save(ctx, snap); err != nil {
		return Summary{}, fmt.Errorf("end session: %w", err)
	}
	sum := summarize(snap, now)
	log.Info(log.CatSession, "Session ended", "id", snap.ID, "duration", sum.Duration, "keystrokes", sum.Keystrokes)
	return sum, nil
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	return m.current.Clone(), true
}

func (m *Manager) update(fn func(s *State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		fn(&m.current.State)
	}
}

// RecordCommand counts one key and remembers the command it completed.
// Pass an empty command for keys that only extend a pending sequence.
func (m *Manager) RecordCommand(command string) {
	m.update(func(s *State) {
		s.Keystrokes++
		if command != "" {
			s.CommandsUsed = append(s.CommandsUsed, command)
		}
	})
}

// RecordMistake counts a wrong key.
func (m *Manager) RecordMistake() {
	m.update(func(s *State) { s.Mistakes++ })
}

// RecordHint counts a hint shown.
func (m *Manager) RecordHint() {
	m.update(func(s *State) { s.HintsUsed++ })
}

// Advance moves to an exercise. Entering a different lesson resets the
// lesson clock and drops the saved simulator state.
func (m *Manager) Advance(moduleID, lessonID string, exerciseIndex int) {
	now := m.clock()
	m.update(func(s *State) {
		if s.ModuleID != moduleID || s.LessonID != lessonID {
			s.LessonStarted = now
			s.Simulator = nil
		}
		s.ModuleID = moduleID
		s.LessonID = lessonID
		s.ExerciseIndex = exerciseIndex
	})
}

// UpdateSimulatorState stores a copy of st for the next save. Callers
// pass a freshly captured simulator.State; it is never read from the live
// simulator here.
func (m *Manager) UpdateSimulatorState(st simulator.State) {
	m.update(func(s *State) { s.Simulator = &st })
}

// Save persists the current session. It is a no-op without one.
func (m *Manager) Save(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil, nil
	}
	m.current.LastSaved = m.clock()
	snap := m.current.Clone()
	m.mu.Unlock()

	if err := m.repo.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save session %s: %w", snap.ID, err)
	}
	return snap, nil
}

// Checkpoint stores the current state under name.
func (m *Manager) Checkpoint(ctx context.Context, name string) error {
	snap, ok := m.Snapshot()
	if !ok {
		return ErrNoSession
	}
	c := Checkpoint{SessionID: snap.ID, Name: name, CreatedAt: m.clock(), State: snap.State}
	if err := m.repo.SaveCheckpoint(ctx, c); err != nil {
		return fmt.Errorf("checkpoint %s: %w", name, err)
	}
	log.Debug(log.CatSession, "Checkpoint saved", "session", snap.ID, "name", name)
	return nil
}

// RestoreCheckpoint replaces the current state with the newest checkpoint
// called name and returns it.
func (m *Manager) RestoreCheckpoint(ctx context.Context, name string) (State, error) {
	snap, ok := m.Snapshot()
	if !ok {
		return State{}, ErrNoSession
	}
	c, err := m.repo.LatestCheckpoint(ctx, snap.ID, name)
	if err != nil {
		return State{}, err
	}
	m.mu.Lock()
	if m.current != nil && m.current.ID == snap.ID {
		m.current.State = c.State.clone()
	}
	m.mu.Unlock()
	return c.State.clone(), nil
}

// ResumableSessions lists the user's unfinished sessions, newest first.
func (m *Manager) ResumableSessions(ctx context.Context, userID string) ([]*Session, error) {
	return m.repo.ListResumable(ctx, userID)
}

// CleanupOld deletes ended sessions older than maxAge.
func (m *Manager) CleanupOld(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := m.repo.DeleteEndedBefore(ctx, m.clock().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("clean up sessions: %w", err)
	}
	if n > 0 {
		log.Info(log.CatSession, "Removed old sessions", "count", n)
	}
	return n, nil
}

package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/user"
)

// Rows store times as Unix seconds and nested values as JSON text.

type userModel struct {
	ID          string
	Username    string
	CreatedAt   int64
	LastLogin   int64
	Preferences string
	Statistics  string
}

func toUserModel(u *user.User) (*userModel, error) {
	prefs, err := json.Marshal(u.Preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	stats, err := json.Marshal(u.Statistics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode statistics: %w", err)
	}
	return &userModel{
		ID:          u.ID,
		Username:    u.Username,
		CreatedAt:   u.CreatedAt.Unix(),
		LastLogin:   u.LastLogin.Unix(),
		Preferences: string(prefs),
		Statistics:  string(stats),
	}, nil
}

func (m *userModel) toDomain() (*user.User, error) {
	u := &user.User{
		ID:        m.ID,
		Username:  m.Username,
		CreatedAt: unixTime(m.CreatedAt),
		LastLogin: unixTime(m.LastLogin),
	}
	if err := json.Unmarshal([]byte(m.Preferences), &u.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences of %s: %w", m.Username, err)
	}
	if err := json.Unmarshal([]byte(m.Statistics), &u.Statistics); err != nil {
		return nil, fmt.Errorf("failed to decode statistics of %s: %w", m.Username, err)
	}
	return u, nil
}

type sessionModel struct {
	ID        string
	UserID    string
	StartedAt int64
	LastSaved int64
	EndedAt   *int64 // nullable
	Active    bool
	State     string
}

func toSessionModel(s *session.Session) (*sessionModel, error) {
	state, err := json.Marshal(s.State)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	m := &sessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		StartedAt: s.StartedAt.Unix(),
		LastSaved: s.LastSaved.Unix(),
		Active:    s.Active,
		State:     string(state),
	}
	if s.EndedAt != nil {
		endedAt := s.EndedAt.Unix()
		m.EndedAt = &endedAt
	}
	return m, nil
}

func (m *sessionModel) toDomain() (*session.Session, error) {
	s := &session.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		StartedAt: unixTime(m.StartedAt),
		LastSaved: unixTime(m.LastSaved),
		Active:    m.Active,
	}
	if m.EndedAt != nil {
		t := unixTime(*m.EndedAt)
		s.EndedAt = &t
	}
	if err := json.Unmarshal([]byte(m.State), &s.State); err != nil {
		return nil, fmt.Errorf("failed to decode state of session %s: %w", m.ID, err)
	}
	return s, nil
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

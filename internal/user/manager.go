package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/vimgym/internal/log"
)

// Manager creates and signs in users.
type Manager struct {
	repo  Repository
	clock func() time.Time
}

// NewManager returns a manager over repo. A nil clock means time.Now.
func NewManager(repo Repository, clock func() time.Time) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{repo: repo, clock: clock}
}

// Create registers a new user.
func (m *Manager) Create(ctx context.Context, username string) (*User, error) {
	u, err := New(username, m.clock())
	if err != nil {
		return nil, err
	}
	_, err = m.repo.FindByUsername(ctx, username)
	var nf *NotFoundError
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	case !errors.As(err, &nf):
		return nil, fmt.Errorf("check username: %w", err)
	}
	if err := m.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Info(log.CatSession, "User created", "user", u.Username, "id", u.ID)
	return u, nil
}

// Login looks up a user by name and stamps the login time.
func (m *Manager) Login(ctx context.Context, username string) (*User, error) {
	u, err := m.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	u.LastLogin = m.clock()
	if err := m.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	return u, nil
}

// LoginOrCreate signs in username, creating the user on first use.
func (m *Manager) LoginOrCreate(ctx context.Context, username string) (*User, bool, error) {
	u, err := m.Login(ctx, username)
	var nf *NotFoundError
	if errors.As(err, &nf) {
		u, err = m.Create(ctx, username)
		return u, err == nil, err
	}
	return u, false, err
}

// Get returns a user by id.
func (m *Manager) Get(ctx context.Context, id string) (*User, error) {
	return m.repo.FindByID(ctx, id)
}

// List returns all users.
func (m *Manager) List(ctx context.Context) ([]*User, error) {
	return m.repo.List(ctx)
}

// FinishSession folds a finished session into the user's statistics and
// saves the user.
func (m *Manager) FinishSession(ctx context.Context, u *User, s SessionStats) error {
	u.RecordSession(s, m.clock())
	if err := m.repo.Save(ctx, u); err != nil {
		return fmt.Errorf("save session statistics: %w", err)
	}
	return nil
}

package testutil

import (
	"context"
	"sync"

	"github.com/zjrosen/vimgym/internal/progress"
)

// ProgressStore keeps progress documents in memory.
type ProgressStore struct {
	mu    sync.Mutex
	docs  map[string]*progress.Progress
	Saves int
}

// NewProgressStore returns an empty store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{docs: make(map[string]*progress.Progress)}
}

// Load implements progress.Repository.
func (s *ProgressStore) Load(_ context.Context, userID string) (*progress.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.docs[userID]
	if !ok {
		return nil, &progress.NotFoundError{UserID: userID}
	}
	return p.Clone(), nil
}

// Save implements progress.Repository.
func (s *ProgressStore) Save(_ context.Context, p *progress.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[p.UserID] = p.Clone()
	s.Saves++
	return nil
}

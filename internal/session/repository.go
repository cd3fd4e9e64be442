package session

import (
	"context"
	"time"
)

// Repository persists sessions and their checkpoints.
type Repository interface {
	// Save inserts or replaces s.
	Save(ctx context.Context, s *Session) error
	// FindByID returns a *NotFoundError for unknown ids.
	FindByID(ctx context.Context, id string) (*Session, error)
	// ListResumable returns the user's active sessions, most recently saved
	// first.
	ListResumable(ctx context.Context, userID string) ([]*Session, error)
	// DeleteEndedBefore removes inactive sessions last saved before cutoff
	// and returns how many were removed.
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	SaveCheckpoint(ctx context.Context, c Checkpoint) error
	// LatestCheckpoint returns a *NotFoundError when no checkpoint has name.
	LatestCheckpoint(ctx context.Context, sessionID, name string) (Checkpoint, error)
	ListCheckpoints(ctx context.Context, sessionID string) ([]Checkpoint, error)
}

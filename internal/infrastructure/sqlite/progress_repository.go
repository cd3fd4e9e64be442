package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/tracing"
)

// ProgressRepository implements progress.Repository. Each user's progress
// is one JSON document.
type ProgressRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

var _ progress.Repository = (*ProgressRepository)(nil)

// Load returns a *progress.NotFoundError when the user has no document.
func (r *ProgressRepository) Load(ctx context.Context, userID string) (_ *progress.Progress, err error) {
	ctx, sp := span(ctx, r.tracer, "progress.load", attribute.String(tracing.AttrUserID, userID))
	defer func() { tracing.End(sp, err) }()

	var data string
	err = r.db.QueryRowContext(ctx, `SELECT data FROM progress WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &progress.NotFoundError{UserID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	p := progress.New(userID)
	if err := json.Unmarshal([]byte(data), p); err != nil {
		return nil, fmt.Errorf("failed to decode progress of %s: %w", userID, err)
	}
	if p.Modules == nil {
		p.Modules = map[string]*progress.ModuleProgress{}
	}
	return p, nil
}

// Save replaces the user's document.
func (r *ProgressRepository) Save(ctx context.Context, p *progress.Progress) (err error) {
	ctx, sp := span(ctx, r.tracer, "progress.save", attribute.String(tracing.AttrUserID, p.UserID))
	defer func() { tracing.End(sp, err) }()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO progress (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		p.UserID, string(data), p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

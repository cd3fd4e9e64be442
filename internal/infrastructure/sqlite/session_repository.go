package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/tracing"
)

const sessionColumns = `id, user_id, started_at, last_saved, ended_at, active, state`

// SessionRepository implements session.Repository.
type SessionRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

var _ session.Repository = (*SessionRepository)(nil)

func scanSession(scanner interface{ Scan(...any) error }) (*sessionModel, error) {
	var m sessionModel
	err := scanner.Scan(&m.ID, &m.UserID, &m.StartedAt, &m.LastSaved, &m.EndedAt, &m.Active, &m.State)
	return &m, err
}

// Save inserts s or replaces the stored row with the same id.
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) (err error) {
	ctx, sp := span(ctx, r.tracer, "session.save", attribute.String(tracing.AttrSessionID, s.ID))
	defer func() { tracing.End(sp, err) }()

	m, err := toSessionModel(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_saved = excluded.last_saved,
			ended_at = excluded.ended_at,
			active = excluded.active,
			state = excluded.state`,
		m.ID, m.UserID, m.StartedAt, m.LastSaved, m.EndedAt, m.Active, m.State,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindByID returns a *session.NotFoundError for unknown ids.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (_ *session.Session, err error) {
	ctx, sp := span(ctx, r.tracer, "session.find_by_id", attribute.String(tracing.AttrSessionID, id))
	defer func() { tracing.End(sp, err) }()

	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	m, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &session.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session by id: %w", err)
	}
	return m.toDomain()
}

// ListResumable returns the user's active sessions, most recently saved
// first.
func (r *SessionRepository) ListResumable(ctx context.Context, userID string) (_ []*session.Session, err error) {
	ctx, sp := span(ctx, r.tracer, "session.list_resumable", attribute.String(tracing.AttrUserID, userID))
	defer func() { tracing.End(sp, err) }()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = ? AND active = 1
		ORDER BY last_saved DESC, started_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*session.Session
	for rows.Next() {
		m, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		s, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}

// DeleteEndedBefore hard-deletes inactive sessions last saved before
// cutoff. Their checkpoints go with them.
func (r *SessionRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	ctx, sp := span(ctx, r.tracer, "session.delete_ended")
	defer func() { tracing.End(sp, err) }()

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE active = 0 AND last_saved < ?`,
		cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// SaveCheckpoint appends c. Older checkpoints with the same name are kept.
func (r *SessionRepository) SaveCheckpoint(ctx context.Context, c session.Checkpoint) (err error) {
	ctx, sp := span(ctx, r.tracer, "session.save_checkpoint", attribute.String(tracing.AttrSessionID, c.SessionID))
	defer func() { tracing.End(sp, err) }()

	state, err := json.Marshal(c.State)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint state: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO checkpoints (session_id, name, created_at, state) VALUES (?, ?, ?, ?)`,
		c.SessionID, c.Name, c.CreatedAt.Unix(), string(state),
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LatestCheckpoint returns a *session.NotFoundError when the session has
// no checkpoint called name.
func (r *SessionRepository) LatestCheckpoint(ctx context.Context, sessionID, name string) (_ session.Checkpoint, err error) {
	ctx, sp := span(ctx, r.tracer, "session.latest_checkpoint", attribute.String(tracing.AttrSessionID, sessionID))
	defer func() { tracing.End(sp, err) }()

	row := r.db.QueryRowContext(ctx,
		`SELECT session_id, name, created_at, state FROM checkpoints
		WHERE session_id = ? AND name = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		sessionID, name,
	)
	c, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Checkpoint{}, &session.NotFoundError{ID: sessionID, Checkpoint: name}
	}
	if err != nil {
		return session.Checkpoint{}, fmt.Errorf("failed to find checkpoint: %w", err)
	}
	return c, nil
}

// ListCheckpoints returns the session's checkpoints, oldest first.
func (r *SessionRepository) ListCheckpoints(ctx context.Context, sessionID string) (_ []session.Checkpoint, err error) {
	ctx, sp := span(ctx, r.tracer, "session.list_checkpoints", attribute.String(tracing.AttrSessionID, sessionID))
	defer func() { tracing.End(sp, err) }()

	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, name, created_at, state FROM checkpoints
		WHERE session_id = ? ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []session.Checkpoint
	for rows.Next() {
		c, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoint rows: %w", err)
	}
	return out, nil
}

func scanCheckpoint(scanner interface{ Scan(...any) error }) (session.Checkpoint, error) {
	var (
		c         session.Checkpoint
		createdAt int64
		state     string
	)
	if err := scanner.Scan(&c.SessionID, &c.Name, &createdAt, &state); err != nil {
		return c, err
	}
	c.CreatedAt = unixTime(createdAt)
	if err := json.Unmarshal([]byte(state), &c.State); err != nil {
		return c, fmt.Errorf("failed to decode checkpoint %s: %w", c.Name, err)
	}
	return c, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ncruces/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimgym/internal/tracing"
	"github.com/zjrosen/vimgym/internal/user"
)

const userColumns = `id, username, created_at, last_login, preferences, statistics`

// UserRepository implements user.Repository.
type UserRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

var _ user.Repository = (*UserRepository)(nil)

func scanUser(scanner interface{ Scan(...any) error }) (*userModel, error) {
	var m userModel
	err := scanner.Scan(&m.ID, &m.Username, &m.CreatedAt, &m.LastLogin, &m.Preferences, &m.Statistics)
	return &m, err
}

// span starts a repo.<op> span. Every repository method ends it with the
// error it returns.
func span(ctx context.Context, tracer trace.Tracer, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(tracing.AttrRepoOperation, op))
	return tracing.Start(ctx, tracer, tracing.SpanPrefixRepo+op, attrs...)
}

// Save inserts u or replaces the stored row with the same id.
func (r *UserRepository) Save(ctx context.Context, u *user.User) (err error) {
	ctx, sp := span(ctx, r.tracer, "user.save", attribute.String(tracing.AttrUserID, u.ID))
	defer func() { tracing.End(sp, err) }()

	m, err := toUserModel(u)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			last_login = excluded.last_login,
			preferences = excluded.preferences,
			statistics = excluded.statistics`,
		m.ID, m.Username, m.CreatedAt, m.LastLogin, m.Preferences, m.Statistics,
	)
	if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) {
		return fmt.Errorf("%w: %s", user.ErrUsernameTaken, u.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// FindByID returns a *user.NotFoundError for unknown ids.
func (r *UserRepository) FindByID(ctx context.Context, id string) (_ *user.User, err error) {
	ctx, sp := span(ctx, r.tracer, "user.find_by_id", attribute.String(tracing.AttrUserID, id))
	defer func() { tracing.End(sp, err) }()

	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	m, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &user.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return m.toDomain()
}

// FindByUsername returns a *user.NotFoundError for unknown names.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (_ *user.User, err error) {
	ctx, sp := span(ctx, r.tracer, "user.find_by_username")
	defer func() { tracing.End(sp, err) }()

	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	m, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &user.NotFoundError{Username: username}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return m.toDomain()
}

// List returns every user ordered by username.
func (r *UserRepository) List(ctx context.Context) (_ []*user.User, err error) {
	ctx, sp := span(ctx, r.tracer, "user.list")
	defer func() { tracing.End(sp, err) }()

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*user.User
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Package sqlite stores users, progress and sessions in a single SQLite
// file using the ncruces driver. The schema is versioned with
// golang-migrate and the migrations are embedded in the binary.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/tracing"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB owns the connection and hands out repositories sharing it.
type DB struct {
	conn   *sql.DB
	path   string
	tracer trace.Tracer
}

// Option configures a DB.
type Option func(*DB)

// WithTracer records a span per repository call.
func WithTracer(t trace.Tracer) Option {
	return func(db *DB) { db.tracer = t }
}

// NewDB opens the database at path, creating its directory (mode 0700) when
// needed. An existing file is copied to path+".bak" before migrations run.
func NewDB(path string, opts ...Option) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := backup(path); err != nil {
		return nil, fmt.Errorf("failed to back up database: %w", err)
	}

	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrateUp(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, path: path, tracer: tracing.Noop()}
	for _, opt := range opts {
		opt(db)
	}
	log.Info(log.CatDB, "Opened database", "path", path)
	return db, nil
}

func backup(path string) error {
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func migrateUp(conn *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Debug(log.CatDB, "Schema ready", "version", version, "dirty", dirty)
	return nil
}

// Close closes the connection. Repositories become unusable.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// UserRepository returns the user store.
func (db *DB) UserRepository() *UserRepository {
	return &UserRepository{db: db.conn, tracer: db.tracer}
}

// ProgressRepository returns the progress store.
func (db *DB) ProgressRepository() *ProgressRepository {
	return &ProgressRepository{db: db.conn, tracer: db.tracer}
}

// SessionRepository returns the session store.
func (db *DB) SessionRepository() *SessionRepository {
	return &SessionRepository{db: db.conn, tracer: db.tracer}
}

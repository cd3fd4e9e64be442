package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/session"
	"github.com/zjrosen/vimgym/internal/user"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_CreatesPrivateDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "vimgym.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
	require.FileExists(t, dbPath)
	require.Equal(t, dbPath, db.Path())
}

func TestNewDB_RunsMigrations(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"users", "progress", "sessions", "checkpoints"} {
		var name string
		err := db.conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}

	var version int
	require.NoError(t, db.conn.QueryRow("SELECT version FROM schema_migrations").Scan(&version))
	require.Equal(t, 2, version)
}

func TestNewDB_BacksUpExistingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vimgym.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err)
	_, err = db1.conn.Exec(
		"INSERT INTO users (id, username, created_at, last_login) VALUES (?, ?, ?, ?)",
		"u1", "alice", 1000, 1000,
	)
	require.NoError(t, err)
	require.NoFileExists(t, dbPath+".bak")
	require.NoError(t, db1.Close())

	db2, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	info, err := os.Stat(dbPath + ".bak")
	require.NoError(t, err)
	require.Positive(t, info.Size())
}

func TestNewDB_Pragmas(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	require.NoError(t, db.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)

	var busyTimeout int
	require.NoError(t, db.conn.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)
}

func TestDB_CloseStopsConnection(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.Error(t, db.Connection().Ping())
}

func TestDB_RepositoriesSatisfyDomainInterfaces(t *testing.T) {
	db := openTestDB(t)

	var _ user.Repository = db.UserRepository()
	var _ progress.Repository = db.ProgressRepository()
	var _ session.Repository = db.SessionRepository()
	require.NoError(t, db.Connection().PingContext(context.Background()))
}

func TestNewDB_SecondConnectionSharesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db1, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db1.Close()
	db2, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	_, err = db1.conn.Exec(
		"INSERT INTO users (id, username, created_at, last_login) VALUES ('u1', 'alice', 1, 1)",
	)
	require.NoError(t, err)

	var n int
	require.NoError(t, db2.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	require.Equal(t, 1, n)
}

func TestNewDB_InvalidPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix-specific restricted path test")
	}
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := NewDB(filepath.Join(file, "vimgym.db"))
	require.Error(t, err)
}

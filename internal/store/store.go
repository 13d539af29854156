// Package store persists credentials, preferences and generation history
// in a local SQLite database.
//
// Credentials are sealed with a secret.Sealer before they reach disk and
// are never returned by listing queries. Removal is a soft delete.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alnah/go-promptforge/internal/secret"
)

var (
	// ErrNotFound indicates the requested row does not exist or is inactive.
	ErrNotFound = errors.New("not found")

	// ErrSealerMissing indicates a credential operation on a store opened
	// without a sealer (no secret passphrase configured).
	ErrSealerMissing = errors.New("credential passphrase not configured")
)

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	sealer *secret.Sealer
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for timestamps (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (and creates/migrates) the database at dbPath.
// sealer may be nil; credential methods then return ErrSealerMissing.
func Open(ctx context.Context, dbPath string, sealer *secret.Sealer, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	// Create the file up front so it gets strict permissions.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		f, err := os.OpenFile(dbPath, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return nil, fmt.Errorf("create database file: %w", err)
		}
		_ = f.Close()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	s := &Store{db: db, sealer: sealer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrations are applied in order; PRAGMA user_version records progress.
var migrations = []string{
	// v1: credentials, preferences, history
	`
CREATE TABLE IF NOT EXISTS credentials (
  user_name  TEXT    NOT NULL,
  provider   TEXT    NOT NULL,
  sealed     TEXT    NOT NULL,
  active     INTEGER NOT NULL DEFAULT 1,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (user_name, provider)
);
CREATE TABLE IF NOT EXISTS preferences (
  user_name    TEXT PRIMARY KEY,
  provider     TEXT NOT NULL DEFAULT '',
  model        TEXT NOT NULL DEFAULT '',
  framework_id TEXT NOT NULL DEFAULT '',
  updated_at   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
  id           TEXT PRIMARY KEY,
  user_name    TEXT NOT NULL,
  framework_id TEXT NOT NULL,
  provider     TEXT NOT NULL,
  model        TEXT NOT NULL DEFAULT '',
  input        TEXT NOT NULL,
  output       TEXT NOT NULL DEFAULT '',
  status       TEXT NOT NULL,
  error        TEXT NOT NULL DEFAULT '',
  created_at   INTEGER NOT NULL,
  updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS history_user_created ON history(user_name, created_at DESC);
`,
}

func (s *Store) migrate(ctx context.Context) error {
	var ver int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&ver); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for ; ver < len(migrations); ver++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, migrations[ver])
		if err == nil {
			_, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version=%d;", ver+1))
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate v%d: %w", ver+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) timestamp() int64 {
	return s.now().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func validUser(user string) error {
	if strings.TrimSpace(user) == "" {
		return fmt.Errorf("empty user")
	}
	return nil
}

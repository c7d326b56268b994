package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Store is the local SQLite backend.
type Store struct {
	db *sql.DB
}

var _ Backend = (*Store)(nil)

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the whole document for userID. A user with no rows gets an
// empty snapshot.
func (s *Store) Load(ctx context.Context, userID string) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error
	if snap.Tasks, err = s.loadTasks(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Progress, err = s.loadProgress(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Streak, err = s.loadStreak(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Tags, err = s.loadTags(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Bookmarks, err = s.loadBookmarks(ctx, userID); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save replaces the selected parts of userID's document in one transaction.
func (s *Store) Save(ctx context.Context, userID string, snap Snapshot, fields Field) error {
	if fields == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if fields.Has(FieldTasks) {
		if err := saveTasks(ctx, tx, userID, snap.Tasks); err != nil {
			return err
		}
	}
	if fields.Has(FieldProgress) {
		if err := saveProgress(ctx, tx, userID, snap.Progress); err != nil {
			return err
		}
	}
	if fields.Has(FieldStreak) {
		if err := saveStreak(ctx, tx, userID, snap.Streak); err != nil {
			return err
		}
	}
	if fields.Has(FieldTags) {
		if err := saveTags(ctx, tx, userID, snap.Tags); err != nil {
			return err
		}
	}
	if fields.Has(FieldBookmarks) {
		if err := saveBookmarks(ctx, tx, userID, snap.Bookmarks); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		user_id          TEXT NOT NULL,
		id               TEXT NOT NULL,
		position         INTEGER NOT NULL DEFAULT 0,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		due_date         TEXT NOT NULL,
		estimate_minutes INTEGER NOT NULL DEFAULT 0,
		status           TEXT NOT NULL DEFAULT 'pending',
		pattern          TEXT,
		week_days        TEXT NOT NULL DEFAULT '',
		end_date         TEXT,
		PRIMARY KEY (user_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(user_id, due_date);

	CREATE TABLE IF NOT EXISTS task_tags (
		user_id   TEXT NOT NULL,
		task_id   TEXT NOT NULL,
		position  INTEGER NOT NULL DEFAULT 0,
		tag_id    TEXT NOT NULL,
		name      TEXT NOT NULL,
		color     TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, task_id, tag_id),
		FOREIGN KEY (user_id, task_id) REFERENCES tasks(user_id, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS tags (
		user_id   TEXT NOT NULL,
		id        TEXT NOT NULL,
		position  INTEGER NOT NULL DEFAULT 0,
		name      TEXT NOT NULL,
		color     TEXT NOT NULL DEFAULT '#6C63FF',
		PRIMARY KEY (user_id, id),
		UNIQUE (user_id, name)
	);

	CREATE TABLE IF NOT EXISTS daily_progress (
		user_id         TEXT NOT NULL,
		date            TEXT NOT NULL,
		tasks_completed INTEGER NOT NULL DEFAULT 0,
		tasks_planned   INTEGER NOT NULL DEFAULT 0,
		completion      REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, date)
	);

	CREATE TABLE IF NOT EXISTS streaks (
		user_id              TEXT PRIMARY KEY,
		current_streak       INTEGER NOT NULL DEFAULT 0,
		longest_streak       INTEGER NOT NULL DEFAULT 0,
		last_completion_date TEXT
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		user_id    TEXT NOT NULL,
		id         TEXT NOT NULL,
		position   INTEGER NOT NULL DEFAULT 0,
		title      TEXT NOT NULL,
		url        TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		PRIMARY KEY (user_id, id)
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/streakr/streakr.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "streakr", "streakr.db"), nil
}

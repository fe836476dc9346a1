// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides persistence with automatic schema creation and WAL mode

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Wait for locks instead of failing when writers overlap
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_id       TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			display_name  TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS capabilities (
			capability_id   TEXT NOT NULL,
			version         TEXT NOT NULL,
			status          TEXT NOT NULL,
			definition_json TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL,

			PRIMARY KEY (capability_id, version),
			CHECK (status IN ('draft', 'published', 'deprecated'))
		);

		CREATE INDEX IF NOT EXISTS idx_capabilities_status
			ON capabilities(capability_id, status, created_at);

		CREATE TABLE IF NOT EXISTS approvals (
			approval_id TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			tool_name   TEXT NOT NULL,
			tool_args   TEXT NOT NULL,
			status      TEXT NOT NULL,
			preview     TEXT,
			created_at  TEXT NOT NULL,
			approved_at TEXT,
			approved_by TEXT,

			CHECK (status IN ('pending', 'approved', 'denied'))
		);

		CREATE INDEX IF NOT EXISTS idx_approvals_user_status
			ON approvals(user_id, status, created_at);

		CREATE TABLE IF NOT EXISTS weight_entries (
			entry_id    TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			measured_at TEXT NOT NULL,
			weight_lbs  REAL NOT NULL,
			notes       TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,

			CHECK (weight_lbs > 0)
		);

		CREATE INDEX IF NOT EXISTS idx_weight_entries_user_measured
			ON weight_entries(user_id, measured_at DESC);

		CREATE TABLE IF NOT EXISTS tool_audit_log (
			audit_id   TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			tool_name  TEXT NOT NULL,
			args_json  TEXT,
			outcome    TEXT NOT NULL,
			error_code TEXT,
			created_at TEXT NOT NULL,

			CHECK (outcome IN ('executed', 'failed', 'pending_approval'))
		);

		CREATE INDEX IF NOT EXISTS idx_tool_audit_user
			ON tool_audit_log(user_id, created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

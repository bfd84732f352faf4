package tokenstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the auth token in a single-row SQLite table. The
// pure-Go driver keeps the CLI free of cgo.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the token database at path and
// ensures its schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create token store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	// Single writer keeps SQLite happy under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS pillar_token (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create token table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the stored token, or "" when none is stored.
func (s *SQLiteStore) Load(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM pillar_token WHERE id = 1`).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// Save replaces the stored token.
func (s *SQLiteStore) Save(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO pillar_token (id, token, updated_at)
		VALUES (1, ?, datetime('now'))
	`, token)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pillar_token WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package history persists evaluated expressions in a SQLite database so
// past results survive across sessions and can be browsed from the TUI
// and the HTTP API.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codefionn/rechenwerk/internal/engine"
)

// Entry is one evaluated expression.
type Entry struct {
	ID         int64     `json:"id"`
	Expression string    `json:"expression"`
	Value      float64   `json:"value"`
	Display    string    `json:"display"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store handles SQLite operations for the evaluation history
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens the history database at dbPath, creating the file and its
// directory as needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate ensures the database schema is up to date
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		expression TEXT NOT NULL,
		value REAL NOT NULL,
		display TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create initial schema: %w", err)
	}
	return nil
}

// Add records one evaluation and returns the stored entry.
func (s *Store) Add(res engine.Result) (*Entry, error) {
	now := time.Now()

	result, err := s.db.Exec(`
		INSERT INTO entries (expression, value, display, created_at)
		VALUES (?, ?, ?, ?)
	`, res.Expression, res.Value, res.Display, now)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Entry{
		ID:         id,
		Expression: res.Expression,
		Value:      res.Value,
		Display:    res.Display,
		CreatedAt:  now,
	}, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]*Entry, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, expression, value, display, created_at
		FROM entries ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.Expression, &e.Value, &e.Display, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Clear removes all entries.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM entries`)
	return err
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}

package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/logfields"
)

// SQLiteStore persists the record in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS last_values (
		name  TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`)
	return err
}

// Location returns the database path.
func (s *SQLiteStore) Location() string { return s.path }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load reads every row. Query failures yield an empty record.
func (s *SQLiteStore) Load(ctx context.Context) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := NewRecord()
	rows, err := s.db.QueryContext(ctx, "SELECT name, value FROM last_values")
	if err != nil {
		slog.Warn("Failed to read state database, starting fresh", logfields.Path(s.path), logfields.Error(err))
		return rec
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			slog.Warn("Failed to scan state row, starting fresh", logfields.Path(s.path), logfields.Error(err))
			return NewRecord()
		}
		rec[name] = value
	}
	if err := rows.Err(); err != nil {
		slog.Warn("Failed to iterate state rows, starting fresh", logfields.Path(s.path), logfields.Error(err))
		return NewRecord()
	}

	slog.Info("State loaded from database", logfields.Path(s.path), logfields.Count(len(rec)))
	return rec
}

// Save replaces the table content in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StateError(err, "begin state transaction").Build()
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM last_values"); err != nil {
		return errors.StateError(err, "clear state table").Build()
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO last_values (name, value) VALUES (?, ?)")
	if err != nil {
		return errors.StateError(err, "prepare state insert").Build()
	}
	defer stmt.Close()

	for _, name := range r.Names() {
		if _, err := stmt.ExecContext(ctx, name, r[name]); err != nil {
			return errors.StateError(err, "insert state row").
				WithContext("target", name).
				Build()
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.StateError(err, "commit state transaction").Build()
	}
	return nil
}

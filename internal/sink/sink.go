// Package sink persists a match stream into a SQLite database so downstream
// generators can consume evaluation results without re-running the engine.
// Each evaluation gets a fresh run ID; rows keep the stream's order.
package sink

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/typescan/pkg/query"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	run_id     TEXT    NOT NULL,
	ordinal    INTEGER NOT NULL,
	type_name  TEXT    NOT NULL,
	generalization TEXT,
	binding    TEXT,
	created_at TEXT    NOT NULL,
	PRIMARY KEY (run_id, ordinal)
);`

// Store writes match records for one run.
type Store struct {
	db    *sql.DB
	runID string
}

// Open creates or opens the database at path and prepares the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sink: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: prepare schema: %w", err)
	}
	return &Store{db: db, runID: uuid.NewString()}, nil
}

// RunID identifies this store's evaluation run.
func (s *Store) RunID() string { return s.runID }

// WriteAll drains it into the database and returns the number of rows
// written. The stream is consumed; it cannot be replayed afterwards.
func (s *Store) WriteAll(it *query.Iterator) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("sink: begin: %w", err)
	}
	stmt, err := tx.Prepare(
		"INSERT INTO matches (run_id, ordinal, type_name, generalization, binding, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("sink: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	n := 0
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		var gen, binding any
		if m.Generalization != nil {
			gen = m.Generalization.Target.String()
		}
		if m.Binding != nil {
			binding = m.Binding.String()
		}
		if _, err := stmt.Exec(s.runID, n, m.Type.Name, gen, binding, now); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("sink: insert: %w", err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sink: commit: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

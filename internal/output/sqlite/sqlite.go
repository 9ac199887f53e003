// Package sqlite keeps a queryable history of analyses in an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crimson-sun/attune/internal/model"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id                   TEXT PRIMARY KEY,
	created_at           INTEGER NOT NULL,
	final_emotion        TEXT NOT NULL,
	final_confidence     REAL NOT NULL,
	recommendation_level TEXT NOT NULL,
	used_face            INTEGER NOT NULL,
	payload              TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS analyses_created_at ON analyses (created_at);
`

// Store is an output that also answers history queries.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// The parent directory is created when missing.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite output: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: open: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite output: apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite output: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Write stores a. The full analysis is kept as JSON next to the columns
// used for filtering.
func (s *Store) Write(ctx context.Context, a model.Analysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("sqlite output: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, final_emotion, final_confidence, recommendation_level, used_face, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Timestamp.UnixNano(), string(a.Final.Label), a.Final.Confidence,
		string(a.Recommendation.Level), a.UsedFace, string(payload))
	if err != nil {
		return fmt.Errorf("sqlite output: insert %s: %w", a.ID, err)
	}
	return nil
}

// Recent returns up to n analyses, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]model.Analysis, error) {
	if n <= 0 {
		return []model.Analysis{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: query recent: %w", err)
	}
	defer rows.Close()

	out := make([]model.Analysis, 0, n)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("sqlite output: scan: %w", err)
		}
		var a model.Analysis
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("sqlite output: decode: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Counts returns the number of stored analyses per final emotion since t.
// A zero t counts everything.
func (s *Store) Counts(ctx context.Context, since time.Time) (map[model.Emotion]int, error) {
	var from int64
	if !since.IsZero() {
		from = since.UnixNano()
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT final_emotion, COUNT(*) FROM analyses WHERE created_at >= ? GROUP BY final_emotion`, from)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Emotion]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("sqlite output: scan: %w", err)
		}
		counts[model.Emotion(label)] = n
	}
	return counts, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Package history keeps a durable log of batch conversions in SQLite.
//
//	store, _ := history.Open("history.db")
//	defer store.Close()
//	store.Record(ctx, history.Entry{BatchID: id, Files: names, Records: n})
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id    TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	files       TEXT NOT NULL,
	records     INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_conversions_created ON conversions(created_at);
`

// DefaultLimit bounds Recent when the caller passes no limit.
const DefaultLimit = 50

// Entry is one finished conversion.
type Entry struct {
	BatchID    string    `json:"batch_id"`
	CreatedAt  time.Time `json:"created_at"`
	Files      []string  `json:"files"`
	Records    int       `json:"records"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Store persists entries. A nil *Store ignores writes and reads nothing.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path. ":memory:" gives a
// private in-process database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One connection: SQLite has a single writer, and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the schema if needed.
func (s *Store) Init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Record appends an entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil {
		return nil
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Files == nil {
		e.Files = []string{}
	}
	files, err := json.Marshal(e.Files)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversions (batch_id, created_at, files, records, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.BatchID, e.CreatedAt.UnixMilli(), string(files), e.Records, e.DurationMs, e.Error)
	if err != nil {
		return fmt.Errorf("record conversion %s: %w", e.BatchID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil {
		return []Entry{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, created_at, files, records, duration_ms, error
		 FROM conversions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			created int64
			files   string
		)
		if err := rows.Scan(&e.BatchID, &created, &files, &e.Records, &e.DurationMs, &e.Error); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(created)
		if err := json.Unmarshal([]byte(files), &e.Files); err != nil {
			return nil, fmt.Errorf("decode files for %s: %w", e.BatchID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than maxAge and reports how many went.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	if s == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

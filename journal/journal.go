// Package journal keeps a sqlite transcript of evaluated input. It is a
// record for people, not state: nothing in a journal is replayed into an
// environment.
package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	skate "github.com/rphilander/skate/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	input   TEXT NOT NULL,
	kind    TEXT NOT NULL DEFAULT '',
	value   TEXT NOT NULL DEFAULT '',
	output  TEXT NOT NULL DEFAULT '',
	error   TEXT NOT NULL DEFAULT '',
	at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_session ON entries(session, id);
`

// Entry is one recorded evaluation.
type Entry struct {
	ID      int64
	Session string
	Input   string
	Kind    string // result kind tag, empty on error
	Value   string // rendered result value, empty on error
	Output  string
	Error   string
	At      time.Time
}

// Journal writes traces to a sqlite database. It implements skate.Recorder.
type Journal struct {
	db *sql.DB
	mu sync.Mutex // serializes writes
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal: empty path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends one trace for the given session.
func (j *Journal) Record(sessionID string, t skate.Trace) error {
	var kind, value string
	if !t.Failed() {
		kind = t.Result.Kind.String()
		value = t.Result.Render()
	}
	at := t.Timestamp
	if at == "" {
		at = time.Now().UTC().Format(time.RFC3339)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(
		`INSERT INTO entries (session, input, kind, value, output, error, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, t.Input, kind, value, t.Output, t.Error, at,
	)
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Entries returns the most recent entries for a session, oldest first.
// limit <= 0 returns every entry.
func (j *Journal) Entries(sessionID string, limit int) ([]Entry, error) {
	query := `SELECT id, session, input, kind, value, output, error, at FROM entries
		WHERE session = ? ORDER BY id DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.ID, &e.Session, &e.Input, &e.Kind, &e.Value, &e.Output, &e.Error, &at); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("journal: scan: entry %d: %w", e.ID, err)
		}
		e.At = parsed
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}

	for i, k := 0, len(entries)-1; i < k; i, k = i+1, k-1 {
		entries[i], entries[k] = entries[k], entries[i]
	}
	return entries, nil
}

// Sessions lists every session id in the journal, in order of first entry.
func (j *Journal) Sessions() ([]string, error) {
	rows, err := j.db.Query(`SELECT session FROM entries GROUP BY session ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Package journal tracks remote objects that should no longer exist but whose
// cleanup failed or was skipped: background deletions that errored, and
// uploads orphaned when a sibling upload failed the save.
//
// Entries never affect a save's outcome; a separate sweep retries them.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var journalLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	journalLogger = l
}

type Entry struct {
	URL       string
	Reason    string
	Attempts  int
	CreatedAt time.Time
}

type Journal struct {
	conn *sql.DB
}

func Open(path string) (*Journal, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cleanup journal: %w", err)
	}

	_, err = conn.Exec(`
CREATE TABLE IF NOT EXISTS orphaned_objects (
    url TEXT PRIMARY KEY,
    reason TEXT,
    attempts INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize cleanup journal: %w", err)
	}

	journalLogger.Info().Str("path", path).Msg("Cleanup journal ready")
	return &Journal{conn: conn}, nil
}

// Record notes that url leaked. Recording the same url again bumps the attempt
// counter instead of duplicating the row.
func (j *Journal) Record(ctx context.Context, url, reason string) error {
	_, err := j.conn.ExecContext(ctx, `
INSERT INTO orphaned_objects (url, reason, attempts) VALUES (?, ?, 1)
ON CONFLICT(url) DO UPDATE SET attempts = attempts + 1, reason = excluded.reason;`,
		url, reason)
	if err != nil {
		journalLogger.Error().Err(err).Str("url", url).Msg("Failed to record orphaned object")
	}
	return err
}

func (j *Journal) Pending(ctx context.Context) ([]Entry, error) {
	rows, err := j.conn.QueryContext(ctx,
		`SELECT url, reason, attempts, created_at FROM orphaned_objects ORDER BY created_at;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.URL, &e.Reason, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove drops url from the journal once its cleanup finally succeeded.
func (j *Journal) Remove(ctx context.Context, url string) error {
	_, err := j.conn.ExecContext(ctx, `DELETE FROM orphaned_objects WHERE url = ?;`, url)
	return err
}

func (j *Journal) Close() error {
	return j.conn.Close()
}

// Package cache persists raw build payloads in a local SQLite database, one
// blob per org+pipeline. Only one process is expected to use a given cache
// path at a time; concurrent writers race last-writer-wins.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the on-disk build cache.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS raw_builds (
			org TEXT NOT NULL,
			pipeline TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (org, pipeline)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Load returns the cached payload for the pipeline and when it was fetched.
// A missing row yields a nil payload, a zero time and no error.
func (s *Store) Load(ctx context.Context, org, pipeline string) ([]byte, time.Time, error) {
	var payload []byte
	var fetchedAtStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT payload, fetched_at FROM raw_builds
		WHERE org = ? AND pipeline = ?
	`, org, pipeline).Scan(&payload, &fetchedAtStr)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query build cache: %w", err)
	}

	fetchedAt, err := time.Parse(time.RFC3339, fetchedAtStr)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse fetched_at timestamp: %w", err)
	}
	return payload, fetchedAt, nil
}

// Save stores the payload for the pipeline, replacing any previous blob.
func (s *Store) Save(ctx context.Context, org, pipeline string, payload []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_builds (org, pipeline, fetched_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (org, pipeline) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload
	`, org, pipeline, now, payload)
	if err != nil {
		return fmt.Errorf("failed to write build cache: %w", err)
	}
	return nil
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
PRAGMA journal_mode=WAL;
PRAGMA busy_timeout=5000;
CREATE TABLE IF NOT EXISTS api_cache (
	key       TEXT PRIMARY KEY,
	body      BLOB NOT NULL,
	stored_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS api_cache_stored_at ON api_cache (stored_at);
`

// SQLiteStore keeps responses in a SQLite database. Fetch times are stored
// as Unix milliseconds.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(ctx context.Context, path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; the pragmas above are per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, ttl: ttl, now: time.Now}
	s.prune(ctx)
	sweep(ctx, ttl, s.prune)
	return s, nil
}

func (s *SQLiteStore) prune(ctx context.Context) {
	s.db.ExecContext(ctx, `DELETE FROM api_cache WHERE stored_at <= ?`, cutoff(s.now(), s.ttl).UnixMilli())
}

// Get implements [Store].
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM api_cache WHERE key = ? AND stored_at > ?`,
		key, cutoff(s.now(), s.ttl).UnixMilli(),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return body, err
}

// Set implements [Store].
func (s *SQLiteStore) Set(ctx context.Context, key string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_cache (key, body, stored_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET body = excluded.body, stored_at = excluded.stored_at`,
		key, body, s.now().UnixMilli(),
	)
	return err
}

// Close implements [Store].
func (s *SQLiteStore) Close() error { return s.db.Close() }

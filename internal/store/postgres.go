// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS api_cache (
	key       TEXT PRIMARY KEY,
	body      BYTEA NOT NULL,
	stored_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS api_cache_stored_at ON api_cache (stored_at);
`

// PostgresStore keeps responses in PostgreSQL, for a cache shared by several
// machines running the pipeline.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

// NewPostgresStore connects to databaseURL and creates the cache table if
// needed.
func NewPostgresStore(ctx context.Context, databaseURL string, ttl time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}

	s := &PostgresStore{pool: pool, ttl: ttl, now: time.Now}
	sweep(ctx, ttl, s.prune)
	return s, nil
}

func (s *PostgresStore) prune(ctx context.Context) {
	s.pool.Exec(ctx, `DELETE FROM api_cache WHERE stored_at <= $1`, cutoff(s.now(), s.ttl))
}

// Get implements [Store].
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM api_cache WHERE key = $1 AND stored_at > $2`,
		key, cutoff(s.now(), s.ttl),
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return body, err
}

// Set implements [Store].
func (s *PostgresStore) Set(ctx context.Context, key string, body []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO api_cache (key, body, stored_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, stored_at = EXCLUDED.stored_at`,
		key, body, s.now(),
	)
	return err
}

// Close implements [Store].
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

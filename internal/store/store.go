// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package store caches upstream API responses between drafter runs.
//
// Entries expire a fixed time after they were fetched. Reading an entry does
// not extend it, so a show's TMDB or AniList data is refreshed at least once
// per TTL no matter how often drafts are regenerated.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store holds response bodies by key.
type Store interface {
	// Get returns the body stored under key, or (nil, nil) when there is
	// none or it has expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores body under key, restarting its TTL.
	Set(ctx context.Context, key string, body []byte) error
	// Close releases the backend.
	Close() error
}

// Open opens the cache described by dsn:
//
//   - "" or "mem:" keeps entries in memory for the life of the process;
//   - "file:PATH" keeps them in a JSON file;
//   - "sqlite:PATH" keeps them in a SQLite database;
//   - "postgres://..." or "postgresql://..." keeps them in PostgreSQL.
//
// A non-positive ttl never expires entries. Expired entries are swept in the
// background until ctx is done.
func Open(ctx context.Context, dsn string, ttl time.Duration) (Store, error) {
	switch {
	case dsn == "", dsn == "mem:":
		return NewMemStore(ctx, ttl), nil
	case strings.HasPrefix(dsn, "file:"):
		return NewFileStore(ctx, strings.TrimPrefix(dsn, "file:"), ttl)
	case strings.HasPrefix(dsn, "sqlite:"):
		return NewSQLiteStore(ctx, strings.TrimPrefix(dsn, "sqlite:"), ttl)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresStore(ctx, dsn, ttl)
	}
	return nil, fmt.Errorf("store: unknown cache DSN %q", dsn)
}

// cutoff returns the oldest fetch time still served at now. Entries stored at
// or before it are stale.
func cutoff(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(-ttl)
}

// sweep runs prune in the background every ttl, at most hourly, until ctx is
// done.
func sweep(ctx context.Context, ttl time.Duration, prune func(context.Context)) {
	if ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(min(ttl, time.Hour))
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				prune(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.geekbrox.name/autoblog/internal/atomicio"
)

// FileStore keeps responses in a JSON file next to the drafts, so repeated
// postgen runs on one machine share a cache without a database. The file is
// rewritten atomically on every Set.
type FileStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]fileEntry
}

type fileEntry struct {
	Body     []byte    `json:"body"`
	StoredAt time.Time `json:"stored_at"`
}

// NewFileStore loads the cache file at path, dropping stale entries. A
// missing file starts an empty cache.
func NewFileStore(ctx context.Context, path string, ttl time.Duration) (*FileStore, error) {
	s := &FileStore{path: path, ttl: ttl, now: time.Now, entries: make(map[string]fileEntry)}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(b, &s.entries); err != nil {
			return nil, err
		}
	}

	s.prune(ctx)
	sweep(ctx, ttl, s.prune)
	return s, nil
}

func (s *FileStore) prune(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oldest := cutoff(s.now(), s.ttl)
	n := len(s.entries)
	for key, e := range s.entries {
		if !e.StoredAt.After(oldest) {
			delete(s.entries, key)
		}
	}
	if len(s.entries) != n {
		// Best effort; the next Set rewrites the file anyway.
		s.flushLocked()
	}
}

func (s *FileStore) flushLocked() error {
	b, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}
	return atomicio.WriteFile(s.path, b, 0o644)
}

// Get implements [Store].
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.StoredAt.After(cutoff(s.now(), s.ttl)) {
		return nil, nil
	}
	return e.Body, nil
}

// Set implements [Store].
func (s *FileStore) Set(_ context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = fileEntry{Body: body, StoredAt: s.now()}
	return s.flushLocked()
}

// Close implements [Store].
func (s *FileStore) Close() error { return nil }

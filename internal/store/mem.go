// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package store

import (
	"context"
	"sync"
	"time"
)

// MemStore keeps responses in memory. It is the default cache, so a single
// postgen run never asks the same question twice.
type MemStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	body     []byte
	storedAt time.Time
}

// NewMemStore returns an empty MemStore.
func NewMemStore(ctx context.Context, ttl time.Duration) *MemStore {
	s := &MemStore{ttl: ttl, now: time.Now, entries: make(map[string]memEntry)}
	sweep(ctx, ttl, s.prune)
	return s
}

func (s *MemStore) prune(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oldest := cutoff(s.now(), s.ttl)
	for key, e := range s.entries {
		if !e.storedAt.After(oldest) {
			delete(s.entries, key)
		}
	}
}

// Get implements [Store].
func (s *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.storedAt.After(cutoff(s.now(), s.ttl)) {
		return nil, nil
	}
	return append([]byte(nil), e.body...), nil
}

// Set implements [Store].
func (s *MemStore) Set(_ context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{body: append([]byte(nil), body...), storedAt: s.now()}
	return nil
}

// Close implements [Store].
func (s *MemStore) Close() error { return nil }

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package filelock serializes updates to the shared state files between the
// bot, the sharedstate command and editor integrations running as separate
// processes. Locks are advisory flock(2) locks; the lock file records who
// holds it.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"
)

// ErrLocked is returned by [TryLock] when another process holds the lock.
var ErrLocked = errors.New("filelock: held by another process")

// pollInterval is how often [Wait] retries a held lock.
const pollInterval = 20 * time.Millisecond

// Lock is a held lock.
type Lock struct{ f *os.File }

// TryLock takes the exclusive lock on path without blocking and records
// holder in the file.
func TryLock(path, holder string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, err
	}
	l := &Lock{f: f}
	if err := l.record(holder); err != nil {
		l.Release()
		return nil, err
	}
	return l, nil
}

func (l *Lock) record(holder string) error {
	if err := l.f.Truncate(0); err != nil {
		return err
	}
	_, err := l.f.WriteAt([]byte(holder), 0)
	return err
}

// Wait retries [TryLock] until it succeeds or ctx is done. The context error
// names the holder that kept the lock.
func Wait(ctx context.Context, path, holder string) (*Lock, error) {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		l, err := TryLock(path, holder)
		if !errors.Is(err, ErrLocked) {
			return l, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (held by %s)", ctx.Err(), Holder(path))
		case <-t.C:
		}
	}
}

// Holder returns who last took the lock on path, or "unknown".
func Holder(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "unknown"
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, 256))
	if h := strings.TrimSpace(string(b)); err == nil && h != "" {
		return h
	}
	return "unknown"
}

// Release unlocks and closes the lock file. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	return errors.Join(err, l.f.Close())
}

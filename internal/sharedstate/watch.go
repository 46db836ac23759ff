// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sharedstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long Watch waits for a burst of events to settle.
const debounce = 100 * time.Millisecond

// Watch calls fn with a freshly loaded state every time the state file
// changes, until ctx is done. The directory is watched rather than the file
// because saves replace the file by renaming.
func (s *Store) Watch(ctx context.Context, fn func(*State)) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("sharedstate: creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("sharedstate: watching %s: %w", s.dir, err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != StateFile || !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logf("sharedstate: watcher: %v", err)
		case <-timer.C:
			fn(s.Load())
		}
	}
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sharedstate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.geekbrox.name/autoblog/internal/filelock"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/version"
)

// Notifier delivers alerts to a human.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Store reads and updates the state files in a directory. Every update is a
// read-modify-write done under an advisory file lock, so several processes
// may share a directory.
type Store struct {
	dir    string
	notify Notifier
	now    func() time.Time
	logf   logger.Logf
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets where conflicts and notes are reported.
func WithNotifier(n Notifier) Option { return func(s *Store) { s.notify = n } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithLogf sets the logger for notification failures.
func WithLogf(logf logger.Logf) Option { return func(s *Store) { s.logf = logf } }

// New returns a Store for the state files in dir.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, now: time.Now, logf: func(string, ...any) {}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the state directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

func (s *Store) stamp() string { return timestamp(s.now()) }

func checkActor(a Actor) error {
	if !a.Valid() {
		return fmt.Errorf("sharedstate: unknown actor %q", a)
	}
	return nil
}

// Load returns the current state, or the default state if the file is
// missing or unreadable.
func (s *Store) Load() *State {
	st := readJSON[*State](s.path(StateFile), nil)
	if st == nil {
		return defaultState(s.stamp())
	}
	st.normalize()
	return st
}

// Save writes st, stamping it with the current time.
func (s *Store) Save(ctx context.Context, st *State) error {
	return s.locked(ctx, func() error { return s.save(st, s.stamp()) })
}

func (s *Store) save(st *State, now string) error {
	st.LastUpdated = now
	return writeJSON(s.path(StateFile), st)
}

// ActivityLog returns the activity log, oldest first.
func (s *Store) ActivityLog() []LogEntry {
	return readJSON[[]LogEntry](s.path(LogFile), nil)
}

// Conflicts returns the conflict history, oldest first.
func (s *Store) Conflicts() []Conflict {
	return readJSON[[]Conflict](s.path(ConflictFile), nil)
}

func (s *Store) locked(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	holder := fmt.Sprintf("%s pid %d", version.CmdName(), os.Getpid())
	lock, err := filelock.Wait(ctx, s.path(lockFile), holder)
	if err != nil {
		return fmt.Errorf("sharedstate: locking: %w", err)
	}
	defer lock.Release()
	return fn()
}

// update runs fn on the current state under the lock and saves the result.
func (s *Store) update(ctx context.Context, fn func(st *State, now string) error) error {
	return s.locked(ctx, func() error {
		st, now := s.Load(), s.stamp()
		if err := fn(st, now); err != nil {
			return err
		}
		return s.save(st, now)
	})
}

// appendLog must be called with the lock held.
func (s *Store) appendLog(e LogEntry) error {
	if e.At == "" {
		e.At = s.stamp()
	}
	logs := append(s.ActivityLog(), e)
	return writeJSON(s.path(LogFile), lastN(logs, maxLog))
}

// Log appends e to the activity log.
func (s *Store) Log(ctx context.Context, e LogEntry) error {
	return s.locked(ctx, func() error { return s.appendLog(e) })
}

func (s *Store) notifyf(ctx context.Context, text string) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Notify(ctx, text); err != nil {
		s.logf("sharedstate: notification failed: %v", err)
	}
}

// RegisterTask marks actor as running action on files. Conflicts with other
// busy actors are recorded, reported and returned; they do not prevent the
// registration.
func (s *Store) RegisterTask(ctx context.Context, actor Actor, action string, files []string, progress, detail string) ([]Conflict, error) {
	if err := checkActor(actor); err != nil {
		return nil, err
	}
	if files == nil {
		files = []string{}
	}

	var conflicts []Conflict
	err := s.update(ctx, func(st *State, now string) error {
		conflicts = DetectConflicts(st, actor, files, now)
		if len(conflicts) > 0 {
			st.UnresolvedConflicts = append(st.UnresolvedConflicts, conflicts...)
			history := append(s.Conflicts(), conflicts...)
			if err := writeJSON(s.path(ConflictFile), lastN(history, maxConflicts)); err != nil {
				return err
			}
		}

		a := st.Actor(actor)
		a.Status = Running
		a.Action = action
		a.TargetFiles = slices.Clone(files)
		a.Progress = progress
		a.Detail = detail
		a.StartedAt = now
		a.LastActive = now

		return s.appendLog(LogEntry{At: now, Actor: actor, Action: action, Status: Running, Files: files, Detail: detail})
	})
	if err != nil {
		return nil, err
	}

	for _, c := range conflicts {
		s.notifyf(ctx, c.NotifyText())
	}
	return conflicts, nil
}

// UpdateProgress updates the progress of actor. An empty detail keeps the
// previous one.
func (s *Store) UpdateProgress(ctx context.Context, actor Actor, progress, detail string) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	return s.update(ctx, func(st *State, now string) error {
		a := st.Actor(actor)
		a.Progress = progress
		if detail != "" {
			a.Detail = detail
		}
		a.LastActive = now
		return nil
	})
}

// SetWaiting marks actor as waiting for waitSec seconds because of reason.
func (s *Store) SetWaiting(ctx context.Context, actor Actor, reason string, waitSec int) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	return s.update(ctx, func(st *State, now string) error {
		a := st.Actor(actor)
		a.Status = Waiting
		a.Detail = fmt.Sprintf("%s (%d초 대기)", reason, waitSec)
		a.LastActive = now
		return s.appendLog(LogEntry{At: now, Actor: actor, Status: Waiting, Reason: reason, WaitSec: waitSec})
	})
}

// MarkDone marks the task of actor as finished and releases its files.
func (s *Store) MarkDone(ctx context.Context, actor Actor, result string) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	return s.update(ctx, func(st *State, now string) error {
		a := st.Actor(actor)
		action := a.Action
		if action == "" {
			action = "unknown"
		}
		a.Status = Done
		a.Detail = result
		if a.Detail == "" {
			a.Detail = "완료"
		}
		a.TargetFiles = []string{}
		a.LastActive = now
		st.LastCompleted = Completion{Actor: actor, Action: action, Result: result, At: now}
		return s.appendLog(LogEntry{At: now, Actor: actor, Action: action, Status: Done, Result: result})
	})
}

// MarkError marks the task of actor as failed.
func (s *Store) MarkError(ctx context.Context, actor Actor, msg string) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	return s.update(ctx, func(st *State, now string) error {
		a := st.Actor(actor)
		a.Status = Error
		a.Detail = msg
		a.LastActive = now
		return s.appendLog(LogEntry{At: now, Actor: actor, Status: Error, Error: msg})
	})
}

// SetIdle clears the task of actor.
func (s *Store) SetIdle(ctx context.Context, actor Actor) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	return s.update(ctx, func(st *State, _ string) error {
		a := st.Actor(actor)
		a.Status = Idle
		a.Action = ""
		a.TargetFiles = []string{}
		a.Progress = ""
		a.Detail = ""
		return nil
	})
}

// FileModified adds path to the files of actor, keeping the last ten.
func (s *Store) FileModified(ctx context.Context, actor Actor, path string) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	return s.update(ctx, func(st *State, now string) error {
		a := st.Actor(actor)
		if !slices.Contains(a.TargetFiles, path) {
			a.TargetFiles = append(a.TargetFiles, path)
		}
		a.TargetFiles = lastN(a.TargetFiles, maxModified)
		a.LastActive = now
		return nil
	})
}

// AddNote adds a shared note from actor. Notes of the assistants also become
// their session note and are forwarded to Telegram.
func (s *Store) AddNote(ctx context.Context, actor Actor, note string) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	err := s.update(ctx, func(st *State, now string) error {
		if actor != TelegramBot {
			st.Actor(actor).SessionNote = note
		}
		st.SharedNotes = lastN(append(st.SharedNotes, Note{From: actor, Msg: note, At: now}), maxNotes)
		return nil
	})
	if err != nil {
		return err
	}
	switch actor {
	case ClaudeCode:
		s.notifyf(ctx, "📝 *Claude Code 메모*\n_"+note+"_")
	case CursorAI:
		s.notifyf(ctx, "🎯 *Cursor AI 메모*\n_"+note+"_")
	}
	return nil
}

// CheckMessages returns and clears the messages addressed to actor.
func (s *Store) CheckMessages(ctx context.Context, actor Actor) ([]Message, error) {
	if err := checkActor(actor); err != nil {
		return nil, err
	}
	var msgs []Message
	err := s.update(ctx, func(st *State, _ string) error {
		msgs = st.Messages[actor]
		st.Messages[actor] = []Message{}
		return nil
	})
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, err
}

// SendMessage leaves a message from the bot for actor, keeping the last ten.
func (s *Store) SendMessage(ctx context.Context, to Actor, msg string) error {
	if err := checkActor(to); err != nil {
		return err
	}
	return s.update(ctx, func(st *State, now string) error {
		st.Messages[to] = lastN(append(st.Messages[to], Message{From: TelegramBot, Msg: msg, At: now}), maxMessages)
		return nil
	})
}

// ResolveConflicts marks every unresolved conflict as resolved and returns
// a confirmation for Telegram.
func (s *Store) ResolveConflicts(ctx context.Context) (string, error) {
	var count int
	err := s.update(ctx, func(st *State, now string) error {
		for _, c := range st.UnresolvedConflicts {
			if !c.Resolved {
				count++
			}
		}
		st.UnresolvedConflicts = []Conflict{}

		history := s.Conflicts()
		for i := range history {
			if !history[i].Resolved {
				history[i].Resolved = true
				history[i].ResolvedAt = now
			}
		}
		if history != nil {
			if err := writeJSON(s.path(ConflictFile), history); err != nil {
				return err
			}
		}
		return s.appendLog(LogEntry{At: now, Actor: TelegramBot, Action: "충돌 해제", Count: count})
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ %d건의 충돌이 해제되었습니다.", count), nil
}

// Reset removes all state files.
func (s *Store) Reset(ctx context.Context) error {
	return s.locked(ctx, func() error {
		var errs []error
		for _, name := range []string{StateFile, LogFile, ConflictFile} {
			if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package sharedstate coordinates the actors that work on the blog at the
// same time: the coding assistant, the IDE assistant and the Telegram bot.
//
// Each actor registers what it is doing and which files it touches in a JSON
// file. Registering a task that touches files another actor is editing
// raises a conflict, which is recorded and reported to Telegram.
package sharedstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.geekbrox.name/autoblog/internal/atomicio"
)

// File names inside the state directory.
const (
	StateFile    = "shared_state.json"
	LogFile      = "activity_log.json"
	ConflictFile = "conflicts.json"

	lockFile = ".shared_state.lock"
)

// Version is the state file format version.
const Version = "2.0"

// TimeLayout is the layout of every timestamp in the state files.
const TimeLayout = "2006-01-02 15:04:05"

const (
	maxLog       = 200
	maxConflicts = 100
	maxNotes     = 30
	maxMessages  = 10
	maxModified  = 10
)

// Actor identifies a participant.
type Actor string

// Known actors.
const (
	ClaudeCode  Actor = "claude_code"
	CursorAI    Actor = "cursor_ai"
	TelegramBot Actor = "telegram_bot"
	// Script only appears in the activity log.
	Script Actor = "script"
)

// Actors lists the actors that have a state entry, in display order.
var Actors = []Actor{ClaudeCode, CursorAI, TelegramBot}

// Valid reports whether a has a state entry.
func (a Actor) Valid() bool {
	switch a {
	case ClaudeCode, CursorAI, TelegramBot:
		return true
	}
	return false
}

// Icon returns the emoji used for a in messages.
func (a Actor) Icon() string {
	switch a {
	case ClaudeCode:
		return "🖥"
	case CursorAI:
		return "🎯"
	case TelegramBot:
		return "📱"
	case Script:
		return "⚙️"
	}
	return "•"
}

// Label returns the display name of a.
func (a Actor) Label() string {
	switch a {
	case ClaudeCode:
		return "Claude Code"
	case CursorAI:
		return "Cursor AI"
	case TelegramBot:
		return "Telegram Bot"
	}
	return string(a)
}

// Status is the state of an actor.
type Status string

// Actor statuses.
const (
	Idle    Status = "idle"
	Running Status = "running"
	Waiting Status = "waiting"
	Done    Status = "done"
	Error   Status = "error"
)

// Busy reports whether s denotes work in flight.
func (s Status) Busy() bool { return s == Running || s == Waiting }

// ActorState is what an actor is currently doing.
type ActorState struct {
	Status      Status   `json:"status"`
	Action      string   `json:"action"`
	TargetFiles []string `json:"target_files"`
	Progress    string   `json:"progress"`
	Detail      string   `json:"detail"`
	StartedAt   string   `json:"started_at"`
	LastActive  string   `json:"last_active"`
	SessionNote string   `json:"session_note"`
}

// Message is a message addressed to an actor.
type Message struct {
	From Actor  `json:"from"`
	Msg  string `json:"msg"`
	At   string `json:"at"`
	Read bool   `json:"read"`
}

// Note is a shared note.
type Note struct {
	From Actor  `json:"from"`
	Msg  string `json:"msg"`
	At   string `json:"at"`
}

// Completion records the last finished task.
type Completion struct {
	Actor  Actor  `json:"actor"`
	Action string `json:"action"`
	Result string `json:"result"`
	At     string `json:"at"`
}

// State is the content of the state file.
type State struct {
	Version             string                `json:"version"`
	LastUpdated         string                `json:"last_updated"`
	Actors              map[Actor]*ActorState `json:"actors"`
	UnresolvedConflicts []Conflict            `json:"unresolved_conflicts"`
	Messages            map[Actor][]Message   `json:"messages"`
	LastCompleted       Completion            `json:"last_completed"`
	SharedNotes         []Note                `json:"shared_notes"`
}

// Actor returns the state of a, creating it if needed.
func (s *State) Actor(a Actor) *ActorState {
	if s.Actors == nil {
		s.Actors = make(map[Actor]*ActorState)
	}
	st, ok := s.Actors[a]
	if !ok || st == nil {
		st = &ActorState{Status: Idle, TargetFiles: []string{}}
		s.Actors[a] = st
	}
	return st
}

func defaultState(now string) *State {
	s := &State{Version: Version, LastUpdated: now}
	s.normalize()
	return s
}

// normalize fills in whatever an older or hand-edited file lacks.
func (s *State) normalize() {
	if s.Version == "" {
		s.Version = Version
	}
	for _, a := range Actors {
		st := s.Actor(a)
		if st.Status == "" {
			st.Status = Idle
		}
		if st.TargetFiles == nil {
			st.TargetFiles = []string{}
		}
	}
	if s.Messages == nil {
		s.Messages = make(map[Actor][]Message)
	}
	for _, a := range Actors {
		if s.Messages[a] == nil {
			s.Messages[a] = []Message{}
		}
	}
	if s.UnresolvedConflicts == nil {
		s.UnresolvedConflicts = []Conflict{}
	}
	if s.SharedNotes == nil {
		s.SharedNotes = []Note{}
	}
}

// LogEntry is an activity log record. Fields that do not apply are omitted.
type LogEntry struct {
	At      string   `json:"at"`
	Actor   Actor    `json:"actor,omitempty"`
	Action  string   `json:"action,omitempty"`
	Cmd     string   `json:"cmd,omitempty"`
	Status  Status   `json:"status,omitempty"`
	Files   []string `json:"files,omitempty"`
	Detail  string   `json:"detail,omitempty"`
	Result  string   `json:"result,omitempty"`
	Error   string   `json:"error,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	WaitSec int      `json:"wait_sec,omitempty"`
	Count   int      `json:"count,omitempty"`
}

// readJSON decodes path, or returns def if it is missing or unreadable.
func readJSON[T any](path string, def T) T {
	b, err := os.ReadFile(path)
	if err != nil {
		return def
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return def
	}
	return v
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return atomicio.WriteFile(path, b, 0o644)
}

func lastN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return append([]T(nil), s[len(s)-n:]...)
}

func timestamp(t time.Time) string { return t.Format(TimeLayout) }

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sharedstate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ConflictType classifies a conflict.
type ConflictType string

// Conflict types.
const (
	// FileOverlap means both actors edit at least one common file.
	FileOverlap ConflictType = "file_overlap"
	// ConcurrentEdit means both actors edit different files at once.
	ConcurrentEdit ConflictType = "concurrent_edit"
)

// Severity is how bad a conflict is.
type Severity string

// Severities.
const (
	Info     Severity = "info"
	Warning  Severity = "warning"
	Critical Severity = "critical"
)

// Icon returns the emoji used for s in messages.
func (s Severity) Icon() string {
	switch s {
	case Critical:
		return "🚨"
	case Warning:
		return "⚠️"
	case Info:
		return "ℹ️"
	}
	return "❓"
}

// Conflict is a detected clash between two actors. ActorA is the actor that
// was already working, ActorB the one that registered.
type Conflict struct {
	ID               string       `json:"id"`
	Type             ConflictType `json:"type"`
	Severity         Severity     `json:"severity"`
	ActorA           Actor        `json:"actor_a"`
	ActorB           Actor        `json:"actor_b"`
	OverlappingFiles []string     `json:"overlapping_files,omitempty"`
	ActorAFiles      []string     `json:"actor_a_files,omitempty"`
	ActorBFiles      []string     `json:"actor_b_files,omitempty"`
	ActorAAction     string       `json:"actor_a_action"`
	DetectedAt       string       `json:"detected_at"`
	Resolved         bool         `json:"resolved"`
	ResolvedAt       string       `json:"resolved_at,omitempty"`
}

// mayConflict reports whether a and b may edit the same files. Only the two
// assistants edit files.
func mayConflict(a, b Actor) bool {
	return (a == ClaudeCode && b == CursorAI) || (a == CursorAI && b == ClaudeCode)
}

// DetectConflicts compares files that actor is about to edit with the files
// of every other busy actor in s. now is the detection timestamp.
func DetectConflicts(s *State, actor Actor, files []string, now string) []Conflict {
	var conflicts []Conflict
	for _, other := range Actors {
		if other == actor {
			continue
		}
		st, ok := s.Actors[other]
		if !ok || st == nil || !st.Status.Busy() || !mayConflict(actor, other) {
			continue
		}

		existing := uniqueSorted(st.TargetFiles)
		incoming := uniqueSorted(files)
		overlap := intersect(existing, incoming)

		c := Conflict{
			ID:           uuid.NewString(),
			ActorA:       other,
			ActorB:       actor,
			ActorAAction: st.Action,
			DetectedAt:   now,
		}
		switch {
		case len(overlap) > 0:
			c.Type = FileOverlap
			c.Severity = Critical
			c.OverlappingFiles = overlap
		case len(existing) > 0 && len(incoming) > 0:
			c.Type = ConcurrentEdit
			c.Severity = Warning
			c.ActorAFiles = existing
			c.ActorBFiles = incoming
		default:
			continue
		}
		conflicts = append(conflicts, c)
	}
	return conflicts
}

func uniqueSorted(files []string) []string {
	out := slices.Clone(files)
	slices.Sort(out)
	return slices.Compact(out)
}

func intersect(a, b []string) []string {
	var out []string
	for _, f := range a {
		if _, found := slices.BinarySearch(b, f); found {
			out = append(out, f)
		}
	}
	return out
}

// NotifyText renders the Telegram alert for c.
func (c Conflict) NotifyText() string {
	var sb strings.Builder
	sev := strings.ToUpper(string(c.Severity))
	if c.Type == FileOverlap {
		action := c.ActorAAction
		if action == "" {
			action = "알 수 없음"
		}
		fmt.Fprintf(&sb, "%s *충돌 감지!* [%s]\n\n", c.Severity.Icon(), sev)
		fmt.Fprintf(&sb, "*%s %s* 작업 중:\n", c.ActorA.Icon(), c.ActorA)
		fmt.Fprintf(&sb, "  → %s\n\n", action)
		fmt.Fprintf(&sb, "*%s %s* 가 같은 파일 수정 시도!\n\n", c.ActorB.Icon(), c.ActorB)
		sb.WriteString("🗂 *겹치는 파일:*\n")
		for i, f := range c.OverlappingFiles {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "  • `%s`", f)
		}
		sb.WriteString("\n\n⚡ 한 작업이 완료된 후 다른 작업을 시작하세요.\n")
		sb.WriteString("텔레그램에서 `충돌 해제`를 입력하면 강제 진행합니다.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s *동시 편집 경고!* [%s]\n\n", c.Severity.Icon(), sev)
	fmt.Fprintf(&sb, "*%s %s* 과 *%s %s* 가 동시에 다른 파일을 수정 중입니다.\n", c.ActorA.Icon(), c.ActorA, c.ActorB.Icon(), c.ActorB)
	sb.WriteString("⚠️ git 충돌 위험이 있습니다.")
	return sb.String()
}

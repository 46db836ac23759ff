// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sharedstate

import (
	"cmp"
	"fmt"
	"path/filepath"
	"strings"

	"go.geekbrox.name/autoblog/internal/textutil"
)

// Label returns the Telegram label of s.
func (s Status) Label() string {
	switch s {
	case Idle:
		return "⚪️ 대기"
	case Running:
		return "🟢 실행 중"
	case Waiting:
		return "🟡 대기 중"
	case Done:
		return "✅ 완료"
	case Error:
		return "🔴 오류"
	}
	return "❓"
}

func (s Status) logIcon() string {
	switch s {
	case Running:
		return "▶️"
	case Done:
		return "✅"
	case Error:
		return "❌"
	case Waiting:
		return "⏳"
	}
	return ""
}

// clock returns the time part of a timestamp.
func clock(ts string) string {
	r := []rune(ts)
	if len(r) <= 8 {
		return ts
	}
	return string(r[len(r)-8:])
}

func baseNames(files []string, n int) string {
	names := make([]string, 0, n)
	for i, f := range files {
		if i == n {
			break
		}
		names = append(names, filepath.Base(f))
	}
	return strings.Join(names, ", ")
}

// FormatStatus renders st as a Telegram Markdown status board.
func FormatStatus(st *State) string {
	lines := []string{"🔗 *3-way 공유 현황*\n"}

	var unresolved []Conflict
	for _, c := range st.UnresolvedConflicts {
		if !c.Resolved {
			unresolved = append(unresolved, c)
		}
	}
	if len(unresolved) > 0 {
		lines = append(lines, fmt.Sprintf("🚨 *미해결 충돌: %d건*", len(unresolved)))
		for i, c := range unresolved {
			if i == 3 {
				break
			}
			lines = append(lines, fmt.Sprintf("  • %s ↔ %s: %s", c.ActorA, c.ActorB, c.Type))
		}
		lines = append(lines, "")
	}

	for _, actor := range Actors {
		a := &ActorState{Status: Idle}
		if got, ok := st.Actors[actor]; ok && got != nil {
			a = got
		}
		status := a.Status
		if status == "" {
			status = Idle
		}
		lines = append(lines, fmt.Sprintf("*%s %s*: %s", actor.Icon(), actor.Label(), status.Label()))
		if a.Action != "" {
			lines = append(lines, "  작업: "+a.Action)
		}
		if a.Progress != "" {
			lines = append(lines, "  진행: "+a.Progress)
		}
		if a.Detail != "" {
			lines = append(lines, "  상세: _"+textutil.Truncate(a.Detail, 60)+"_")
		}
		if len(a.TargetFiles) > 0 {
			lines = append(lines, "  파일: `"+baseNames(a.TargetFiles, 3)+"`")
		}
		if a.LastActive != "" {
			lines = append(lines, "  활동: "+a.LastActive)
		}
		if a.SessionNote != "" {
			lines = append(lines, "  📝 _"+textutil.Truncate(a.SessionNote, 50)+"_")
		}
		lines = append(lines, "")
	}

	if last := st.LastCompleted; last.Action != "" {
		result := last.Result
		if result == "" {
			result = "완료"
		}
		lines = append(lines,
			fmt.Sprintf("✅ *최근 완료:* [%s] %s", last.Actor, last.Action),
			fmt.Sprintf("  → %s _%s_", result, last.At),
			"",
		)
	}

	if notes := lastN(st.SharedNotes, 3); len(notes) > 0 {
		lines = append(lines, "*📝 최근 메모:*")
		for i := len(notes) - 1; i >= 0; i-- {
			n := notes[i]
			lines = append(lines, fmt.Sprintf("  %s %s _(%s)_", n.From.Icon(), textutil.Truncate(n.Msg, 50), clock(n.At)))
		}
	}

	updated := st.LastUpdated
	if updated == "" {
		updated = "-"
	}
	lines = append(lines, "\n_업데이트: "+updated+"_")
	return strings.Join(lines, "\n")
}

// FormatLog renders the newest limit entries of logs, newest first. A
// non-positive limit renders everything.
func FormatLog(logs []LogEntry, limit int) string {
	recent := logs
	if limit > 0 {
		recent = lastN(logs, limit)
	}

	lines := []string{fmt.Sprintf("📋 *활동 로그* (최신 %d개)\n", len(recent))}
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		action := cmp.Or(e.Action, e.Cmd, e.Reason)
		detail := cmp.Or(e.Result, e.Detail, e.Error)
		line := fmt.Sprintf("%s%s `%s` %s", e.Actor.Icon(), e.Status.logIcon(), clock(e.At), textutil.Truncate(action, 40))
		if detail != "" {
			line += " — _" + textutil.Truncate(detail, 40) + "_"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatConflicts renders the unresolved conflicts in history, showing the
// ten most recent.
func FormatConflicts(history []Conflict) string {
	var unresolved []Conflict
	for _, c := range history {
		if !c.Resolved {
			unresolved = append(unresolved, c)
		}
	}
	if len(unresolved) == 0 {
		return "✅ *감지된 충돌 없음*"
	}

	lines := []string{fmt.Sprintf("🚨 *충돌 목록* (%d건)\n", len(unresolved))}
	for i, c := range lastN(unresolved, 10) {
		lines = append(lines, fmt.Sprintf("%d. %s `%s` %s ↔ %s\n   타입: %s | 미해결",
			i+1, c.Severity.Icon(), clock(c.DetectedAt), c.ActorA, c.ActorB, c.Type))
		if len(c.OverlappingFiles) > 0 {
			lines = append(lines, "   파일: "+baseNames(c.OverlappingFiles, 3))
		}
	}
	return strings.Join(lines, "\n")
}

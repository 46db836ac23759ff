// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sharedstate

import (
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestFormatStatus(t *testing.T) {
	t.Parallel()

	st := defaultState("2026-02-03 14:05:09")
	claude := st.Actor(ClaudeCode)
	claude.Status = Running
	claude.Action = "글 생성"
	claude.Progress = "1/3"
	claude.TargetFiles = []string{"/geekbrox/posts/x.md"}
	claude.LastActive = "2026-02-03 14:00:00"
	st.UnresolvedConflicts = []Conflict{{ActorA: ClaudeCode, ActorB: CursorAI, Type: FileOverlap}}
	st.LastCompleted = Completion{Actor: CursorAI, Action: "draft", At: "2026-02-03 13:00:00"}
	st.SharedNotes = []Note{
		{From: ClaudeCode, Msg: "hello", At: "2026-02-03 12:00:01"},
		{From: TelegramBot, Msg: "hi", At: "2026-02-03 12:30:00"},
	}

	want := strings.Join([]string{
		"🔗 *3-way 공유 현황*\n",
		"🚨 *미해결 충돌: 1건*",
		"  • claude_code ↔ cursor_ai: file_overlap",
		"",
		"*🖥 Claude Code*: 🟢 실행 중",
		"  작업: 글 생성",
		"  진행: 1/3",
		"  파일: `x.md`",
		"  활동: 2026-02-03 14:00:00",
		"",
		"*🎯 Cursor AI*: ⚪️ 대기",
		"",
		"*📱 Telegram Bot*: ⚪️ 대기",
		"",
		"✅ *최근 완료:* [cursor_ai] draft",
		"  → 완료 _2026-02-03 13:00:00_",
		"",
		"*📝 최근 메모:*",
		"  📱 hi _(12:30:00)_",
		"  🖥 hello _(12:00:01)_",
		"\n_업데이트: 2026-02-03 14:05:09_",
	}, "\n")
	testutil.AssertEqual(t, FormatStatus(st), want)
}

func TestFormatStatusTruncates(t *testing.T) {
	t.Parallel()

	st := defaultState("now")
	a := st.Actor(CursorAI)
	a.Detail = strings.Repeat("가", 70)
	a.SessionNote = strings.Repeat("나", 70)
	got := FormatStatus(st)
	if !strings.Contains(got, "  상세: _"+strings.Repeat("가", 60)+"_\n") {
		t.Fatalf("detail not truncated:\n%s", got)
	}
	if !strings.Contains(got, "  📝 _"+strings.Repeat("나", 50)+"_\n") {
		t.Fatalf("note not truncated:\n%s", got)
	}
}

func TestFormatLog(t *testing.T) {
	t.Parallel()

	logs := []LogEntry{
		{At: "2026-02-03 09:00:00", Actor: CursorAI, Status: Error, Error: "dropped by limit"},
		{At: "2026-02-03 10:00:00", Actor: ClaudeCode, Action: "글 생성", Status: Running},
		{At: "2026-02-03 10:05:00", Actor: Script, Cmd: "animefetch", Status: Done, Result: "ok"},
	}
	want := strings.Join([]string{
		"📋 *활동 로그* (최신 2개)\n",
		"⚙️✅ `10:05:00` animefetch — _ok_",
		"🖥▶️ `10:00:00` 글 생성",
	}, "\n")
	testutil.AssertEqual(t, FormatLog(logs, 2), want)
	testutil.AssertEqual(t, FormatLog(nil, 20), "📋 *활동 로그* (최신 0개)\n")
}

func TestFormatConflicts(t *testing.T) {
	t.Parallel()

	history := []Conflict{
		{ActorA: CursorAI, ActorB: ClaudeCode, Type: ConcurrentEdit, Severity: Warning, Resolved: true},
		{
			ActorA:           ClaudeCode,
			ActorB:           CursorAI,
			Type:             FileOverlap,
			Severity:         Critical,
			OverlappingFiles: []string{"/x/a.md", "b.md"},
			DetectedAt:       "2026-02-03 09:08:07",
		},
	}
	want := strings.Join([]string{
		"🚨 *충돌 목록* (1건)\n",
		"1. 🚨 `09:08:07` claude_code ↔ cursor_ai\n   타입: file_overlap | 미해결",
		"   파일: a.md, b.md",
	}, "\n")
	testutil.AssertEqual(t, FormatConflicts(history), want)
}

func TestNotifyText(t *testing.T) {
	t.Parallel()

	overlap := Conflict{
		Type:             FileOverlap,
		Severity:         Critical,
		ActorA:           ClaudeCode,
		ActorB:           CursorAI,
		OverlappingFiles: []string{"a.go", "b.go"},
	}
	want := strings.Join([]string{
		"🚨 *충돌 감지!* [CRITICAL]",
		"",
		"*🖥 claude_code* 작업 중:",
		"  → 알 수 없음",
		"",
		"*🎯 cursor_ai* 가 같은 파일 수정 시도!",
		"",
		"🗂 *겹치는 파일:*",
		"  • `a.go`",
		"  • `b.go`",
		"",
		"⚡ 한 작업이 완료된 후 다른 작업을 시작하세요.",
		"텔레그램에서 `충돌 해제`를 입력하면 강제 진행합니다.",
	}, "\n")
	testutil.AssertEqual(t, overlap.NotifyText(), want)

	concurrent := Conflict{Type: ConcurrentEdit, Severity: Warning, ActorA: CursorAI, ActorB: ClaudeCode}
	testutil.AssertEqual(t, concurrent.NotifyText(), "⚠️ *동시 편집 경고!* [WARNING]\n\n"+
		"*🎯 cursor_ai* 과 *🖥 claude_code* 가 동시에 다른 파일을 수정 중입니다.\n"+
		"⚠️ git 충돌 위험이 있습니다.")
}

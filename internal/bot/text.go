// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tg "go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/sharedstate"
	"go.geekbrox.name/autoblog/internal/textutil"
)

// Keywords of the free text routes. A message matches a route when it
// contains one of them.
var (
	helpKeywords         = []string{"명령어", "도움말", "help", "사용법", "사용 방법"}
	resolveKeywords      = []string{"충돌 해제", "conflict resolve", "충돌해제", "강제 진행"}
	conflictKeywords     = []string{"충돌", "conflict"}
	sharedStatusKeywords = []string{"공유 현황", "클로드 상태", "claude 상태", "코드 현황", "지금 뭐해", "뭐하고 있어"}
	activityLogKeywords  = []string{"활동 로그", "activity log", "로그", "작업 내역"}
	queueCancelKeywords  = []string{"큐 취소", "queue cancel", "작업 취소", "취소"}
	queueStatusKeywords  = []string{"큐", "queue", "rate limit", "rate", "리밋", "limit", "대기 현황", "api 상태"}
	summaryKeywords      = []string{"목록", "리스트", "list", "발행", "게시", "published", "post", "요약", "summary", "상태", "status", "현황", "어떤", "몇 개", "오늘", "today", "완료", "대기", "초안"}
	publisherAckKeywords = []string{"인증완료", "포스팅"}
	notePrefixes         = []string{"메모:", "note:"}
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// wantsSummary reports whether text asks about published or waiting posts.
func wantsSummary(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return containsAny(t, summaryKeywords) ||
		strings.Contains(t, "tell me") ||
		(strings.Contains(t, "what") && strings.Contains(t, "post"))
}

// handleText routes a free text message by keywords. Earlier routes win, so
// "큐 취소" cancels the queue instead of showing it.
func (b *Bot) handleText(ctx context.Context, chat int64, text string) {
	chatID := strconv.FormatInt(chat, 10)

	var awaiting string
	b.withSession(chat, func(sess *session) { awaiting = sess.awaiting })

	switch {
	case text == "/?" || text == "/help" || text == "?" || containsAny(text, helpKeywords):
		b.send(ctx, chatID, helpIndex, helpIndexKeyboard())

	case containsAny(text, resolveKeywords):
		b.send(ctx, chatID, b.resolveConflicts(ctx), tg.Keyboard{tg.Row(
			tg.Callback("🚨 충돌 확인", cbConflicts),
			tg.Callback("🔗 공유 현황", cbSharedStatus),
			btnMenu,
		)})

	case containsAny(text, conflictKeywords):
		b.send(ctx, chatID, sharedstate.FormatConflicts(b.state.Conflicts()), tg.Keyboard{
			tg.Row(tg.Callback("✅ 충돌 해제", cbResolveConflicts), btnRefresh(cbConflicts)),
			tg.Row(btnMenu),
		})

	case containsAny(text, sharedStatusKeywords):
		b.send(ctx, chatID, sharedstate.FormatStatus(b.state.Load()), tg.Keyboard{tg.Row(
			btnRefresh(cbSharedStatus),
			tg.Callback("📋 활동 로그", cbActivityLog),
			btnMenu,
		)})

	case hasNotePrefix(text):
		b.note(ctx, chatID, text)

	case containsAny(text, activityLogKeywords):
		b.send(ctx, chatID, sharedstate.FormatLog(b.state.ActivityLog(), 15), tg.Keyboard{tg.Row(
			tg.Callback("🔗 공유 현황", cbSharedStatus),
			btnMenu,
		)})

	case containsAny(text, queueCancelKeywords):
		n := b.queue.clear()
		b.send(ctx, chatID, fmt.Sprintf("🗑️ 대기 큐 초기화 완료 — %d개 작업이 취소되었습니다.", n), mainMenu())

	case containsAny(strings.ToLower(text), queueStatusKeywords):
		b.send(ctx, chatID, b.rateStatusText(), rateStatusKeyboard())

	case containsExact(text, publisherAckKeywords):
		// The publisher polls for these itself.
		b.send(ctx, chatID, fmt.Sprintf("✅ '%s' 메시지를 받았습니다.\n"+
			"포스팅 프로세스가 실행 중이라면 자동으로 반응합니다.", text), nil)

	case awaiting == awaitRevise:
		b.revise(ctx, chat, text)

	case strings.HasPrefix(awaiting, prefixMsgTo):
		b.withSession(chat, func(sess *session) { sess.awaiting = "" })
		b.messageActor(ctx, chatID, sharedstate.Actor(strings.TrimPrefix(awaiting, prefixMsgTo)), text)

	case wantsSummary(text):
		b.send(ctx, chatID, b.summaryText(), mainMenu())

	default:
		b.send(ctx, chatID, "메시지 받았습니다. 👋\n\n"+
			"블로그 자동화는 아래 버튼으로 이용하세요. "+
			"목록·발행 현황이 궁금하면 \"목록 알려줘\" 또는 \"오늘 발행한 글\"이라고 보내도 됩니다.", mainMenu())
	}
}

func containsExact(s string, vals []string) bool {
	for _, v := range vals {
		if s == v {
			return true
		}
	}
	return false
}

func hasNotePrefix(text string) bool {
	for _, p := range notePrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func (b *Bot) note(ctx context.Context, chatID, text string) {
	_, note, _ := strings.Cut(text, ":")
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if err := b.state.AddNote(ctx, sharedstate.TelegramBot, note); err != nil {
		b.send(ctx, chatID, fmt.Sprintf("⚠️ 메모 전달 실패: %v", err), nil)
		return
	}
	b.send(ctx, chatID, fmt.Sprintf("📝 *Claude Code에 메모 전달 완료*\n\n_%s_\n\n"+
		"Claude Code가 다음 작업 시 확인합니다.", note), nil)
}

// revise regenerates the draft chosen in the session following instruction.
func (b *Bot) revise(ctx context.Context, chat int64, instruction string) {
	chatID := strconv.FormatInt(chat, 10)

	var (
		path string
		ok   bool
	)
	b.withSession(chat, func(sess *session) {
		sess.awaiting = ""
		if sess.reviseIdx < len(sess.mdFiles) {
			path, ok = sess.mdFiles[sess.reviseIdx], true
		}
	})
	if !ok {
		b.send(ctx, chatID, "❌ 수정할 파일을 찾을 수 없습니다.", nil)
		return
	}
	if _, err := os.Stat(path); err != nil {
		b.send(ctx, chatID, "❌ 파일이 삭제되었습니다.", nil)
		return
	}

	b.send(ctx, chatID, fmt.Sprintf("🔄 수정 요청 접수: *%s*\n\n지시: %s\n\n%s로 재생성 중...", stem(path), instruction, CmdGenerate), nil)
	b.tracker.Record()
	res := b.runTracked(ctx, Task{
		Label: "초안 수정: " + stem(path),
		Cmd:   CmdGenerate,
		Args:  []string{"-revise", path, "-instruction", instruction},
		Files: []string{path},
	})
	status := "✅ 수정 완료"
	if !res.OK {
		status = "⚠️ 수정 중 오류"
	}
	b.send(ctx, chatID, fmt.Sprintf("%s\n\n```\n%s\n```", status, textutil.Truncate(res.Output, 800)), mainMenu())
}

func (b *Bot) messageActor(ctx context.Context, chatID string, to sharedstate.Actor, msg string) {
	if err := b.state.SendMessage(ctx, to, msg); err != nil {
		b.send(ctx, chatID, fmt.Sprintf("⚠️ 메시지 전달 실패: %v", err), mainMenu())
		return
	}
	b.send(ctx, chatID, fmt.Sprintf("💬 *%s %s* 에 메시지를 남겼습니다.\n\n_%s_\n\n"+
		"다음 작업 시작 시 확인합니다.", to.Icon(), to.Label(), msg), tg.Keyboard{tg.Row(
		tg.Callback("🔗 공유 현황", cbSharedStatus),
		btnMenu,
	)})
}

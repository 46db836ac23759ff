// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	tg "go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/sharedstate"
	"go.geekbrox.name/autoblog/internal/textutil"
)

// screen is where a callback query is answered: the message with the
// pressed button.
type screen struct {
	chatID    string
	chat      int64
	messageID int64
}

func (b *Bot) show(ctx context.Context, s screen, text string, kb tg.Keyboard) {
	b.edit(ctx, s.chatID, s.messageID, text, kb)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, q *tg.CallbackQuery) {
	if q.Message == nil {
		b.answer(ctx, q.ID, "")
		return
	}
	s := screen{
		chatID:    strconv.FormatInt(q.Message.Chat.ID, 10),
		chat:      q.Message.Chat.ID,
		messageID: q.Message.MessageID,
	}
	if !b.allowedChat(s.chat) {
		b.answer(ctx, q.ID, "권한 없음")
		return
	}

	data := q.Data
	// Deletion answers with the name of the deleted draft.
	if !strings.HasPrefix(data, prefixDelete) {
		b.answer(ctx, q.ID, "")
	}

	switch {
	case data == cbMenu:
		b.show(ctx, s, "🏠 *메인 메뉴*", mainMenu())
	case data == cbHelp || strings.HasPrefix(data, prefixHelp):
		text, ok := b.helpPage(data)
		if !ok {
			text, data = helpIndex, cbHelp
		}
		kb := helpPageKeyboard(data)
		if data == cbHelp {
			kb = helpIndexKeyboard()
		}
		b.show(ctx, s, text, kb)
	case data == cbStatus:
		b.show(ctx, s, b.statusText(), tg.Keyboard{tg.Row(
			btnRefresh(cbStatus),
			tg.Callback("📊 API 상태", cbRateStatus),
			btnMenu,
		)})
	case data == cbRateStatus:
		b.show(ctx, s, b.rateStatusText(), rateStatusKeyboard())
	case data == cbSharedStatus:
		b.show(ctx, s, sharedstate.FormatStatus(b.state.Load()), sharedStatusKeyboard())
	case data == cbActivityLog:
		b.show(ctx, s, sharedstate.FormatLog(b.state.ActivityLog(), 15), activityLogKeyboard())
	case data == cbConflicts:
		b.show(ctx, s, sharedstate.FormatConflicts(b.state.Conflicts()), conflictsKeyboard())
	case data == cbResolveConflicts:
		b.show(ctx, s, b.resolveConflicts(ctx), tg.Keyboard{tg.Row(
			tg.Callback("🚨 충돌 확인", cbConflicts),
			btnMenu,
		)})
	case strings.HasPrefix(data, prefixMsgTo):
		b.askActorMessage(ctx, s, sharedstate.Actor(strings.TrimPrefix(data, prefixMsgTo)))
	case data == cbFetch:
		b.fetch(ctx, s)
	case data == cbGenerate:
		b.generate(ctx, s, false)
	case data == cbGenerateConfirm:
		b.generate(ctx, s, true)
	case data == cbListDrafts:
		b.listDrafts(ctx, s, "\n\n확인할 초안을 선택하세요:")
	case strings.HasPrefix(data, prefixView):
		b.viewDraft(ctx, s, index(data, prefixView))
	case strings.HasPrefix(data, prefixDelete):
		b.deleteDraft(ctx, s, q.ID, index(data, prefixDelete))
	case data == cbRevise:
		b.askRevision(ctx, s, 0)
	case strings.HasPrefix(data, prefixRevise):
		b.askRevision(ctx, s, index(data, prefixRevise))
	case data == cbPost:
		b.confirmPost(ctx, s)
	case data == cbPostConfirm:
		b.post(ctx, s)
	case data == cbDoneList:
		b.show(ctx, s, b.doneListText(ctx), menuOnly)
	default:
		b.logf("bot: unknown callback data %q", data)
	}
}

func (b *Bot) answer(ctx context.Context, id, text string) {
	if err := b.tg.AnswerCallbackQuery(ctx, id, text); err != nil {
		b.logf("bot: answering callback query: %v", err)
	}
}

// index parses the draft index after prefix. Malformed data gives -1.
func index(data, prefix string) int {
	i, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || i < 0 {
		return -1
	}
	return i
}

func (b *Bot) resolveConflicts(ctx context.Context) string {
	text, err := b.state.ResolveConflicts(ctx)
	if err != nil {
		return fmt.Sprintf("⚠️ 충돌 해제 실패: %v", err)
	}
	return text
}

func (b *Bot) askActorMessage(ctx context.Context, s screen, to sharedstate.Actor) {
	b.withSession(s.chat, func(sess *session) { sess.awaiting = prefixMsgTo + string(to) })
	b.show(ctx, s, fmt.Sprintf("💬 *%s %s* 에 전달할 메시지를 입력하세요:\n\n"+
		"다음 작업 시작 시 해당 도구가 메시지를 확인합니다.", to.Icon(), to.Label()), cancelToMenu)
}

func (b *Bot) fetch(ctx context.Context, s screen) {
	b.show(ctx, s, "🔍 AniList 자료조사 중... (30초~1분 소요)", nil)
	res := b.runTracked(ctx, Task{Label: "자료조사", Cmd: CmdFetch})
	status := "✅ 자료조사 완료"
	if !res.OK {
		status = "❌ 자료조사 실패"
	}
	b.show(ctx, s, fmt.Sprintf("%s\n\n```\n%s\n```", status, textutil.Truncate(res.Output, 1000)), tg.Keyboard{tg.Row(
		tg.Callback("✍️ 글 생성으로 이동", cbGenerate),
		btnMenu,
	)})
}

// generate starts drafting posts. Unless confirmed, pending drafts are
// pointed out first. When the language model API was called too often the
// run goes to the queue.
func (b *Bot) generate(ctx context.Context, s screen, confirmed bool) {
	rl := b.tracker.Status()
	var warn string
	if !rl.Safe {
		warn = fmt.Sprintf("\n⚠️ *최근 60초 내 API 호출 %d회* — 큐 모드 권장", rl.Recent)
	}

	if pending := mdFiles(b.dirs.Posts); !confirmed && len(pending) > 0 {
		b.show(ctx, s, fmt.Sprintf("⚠️ 현재 *%d개*의 미발행 초안이 있습니다.\n"+
			"기존 초안을 먼저 처리하거나, 계속 생성하겠습니까?%s", len(pending), warn), tg.Keyboard{
			tg.Row(tg.Callback("▶️ 계속 생성", cbGenerateConfirm), tg.Callback("📋 초안 확인", cbListDrafts)),
			tg.Row(btnMenu),
		})
		return
	}

	task := Task{Label: "글 생성", Cmd: CmdGenerate}
	if !rl.Safe {
		n := b.enqueue(ctx, s.chatID, task)
		b.show(ctx, s, fmt.Sprintf("📋 *대기 큐에 등록되었습니다* (%d번째)\n\n"+
			"최근 API 호출이 많아 %d초 간격으로 순서대로 처리합니다.%s", n, b.delaySeconds(), warn), tg.Keyboard{tg.Row(
			tg.Callback("📊 큐 현황", cbRateStatus),
			btnMenu,
		)})
		return
	}

	b.show(ctx, s, fmt.Sprintf("✍️ 블로그 글 생성을 시작합니다.\n"+
		"⏳ 글 간 %d초 딜레이로 Rate Limit을 방지합니다.\n"+
		"📊 최근 60초 API 호출: %d회", b.delaySeconds(), rl.Recent), nil)
	b.tracker.Record()
	res := b.runTracked(ctx, task)
	status := "✅ 글 생성 완료"
	if !res.OK {
		status = "❌ 글 생성 실패"
	}
	b.show(ctx, s, fmt.Sprintf("%s\n\n```\n%s\n```", status, textutil.Truncate(res.Output, 1000)), tg.Keyboard{tg.Row(
		tg.Callback("📋 초안 확인", cbListDrafts),
		btnMenu,
	)})
}

// listDrafts remembers the current drafts in the session so the numbered
// buttons keep pointing at the same files.
func (b *Bot) listDrafts(ctx context.Context, s screen, suffix string) {
	files := mdFiles(b.dirs.Posts)
	b.withSession(s.chat, func(sess *session) { sess.mdFiles = files })
	if len(files) == 0 {
		b.show(ctx, s, "📭 대기 중인 초안이 없습니다.\n먼저 자료조사 → 글 생성을 진행하세요.", tg.Keyboard{tg.Row(
			tg.Callback("🔍 자료조사", cbFetch),
			btnMenu,
		)})
		return
	}
	b.show(ctx, s, fmt.Sprintf("📋 *초안 목록* (%d개)%s", len(files), suffix), draftList(files))
}

// draft returns the i-th file listed in the session.
func (b *Bot) draft(chat int64, i int) (path string, ok bool) {
	b.withSession(chat, func(sess *session) {
		if i >= 0 && i < len(sess.mdFiles) {
			path, ok = sess.mdFiles[i], true
		}
	})
	return path, ok
}

const previewLen = 1800

func (b *Bot) viewDraft(ctx context.Context, s screen, i int) {
	path, ok := b.draft(s.chat, i)
	if !ok {
		b.show(ctx, s, "오류: 파일을 찾을 수 없습니다.", nil)
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		b.show(ctx, s, "파일이 삭제되었습니다.", nil)
		return
	}
	preview := textutil.Truncate(string(content), previewLen)
	if utf8.RuneCount(content) > previewLen {
		preview += "...\n\n[이하 생략]"
	}
	b.show(ctx, s, fmt.Sprintf("📄 *%s*\n\n%s", stem(path), preview), tg.Keyboard{
		tg.Row(
			tg.Callback("🔄 수정 요청", fmt.Sprintf("%s%d", prefixRevise, i)),
			tg.Callback("🚀 바로 포스팅", cbPost),
		),
		tg.Row(tg.Callback("◀️ 목록으로", cbListDrafts)),
	})
}

func (b *Bot) deleteDraft(ctx context.Context, s screen, queryID string, i int) {
	var answer string
	if path, ok := b.draft(s.chat, i); ok {
		if err := os.Remove(path); err == nil {
			answer = "🗑️ 삭제 완료: " + stem(path)
		} else if !os.IsNotExist(err) {
			b.logf("bot: deleting draft: %v", err)
		}
	}
	b.answer(ctx, queryID, answer)

	if len(mdFiles(b.dirs.Posts)) == 0 {
		b.withSession(s.chat, func(sess *session) { sess.mdFiles = nil })
		b.show(ctx, s, "📭 모든 초안이 삭제되었습니다.", menuOnly)
		return
	}
	b.listDrafts(ctx, s, "")
}

func (b *Bot) askRevision(ctx context.Context, s screen, i int) {
	name := "초안"
	b.withSession(s.chat, func(sess *session) {
		sess.reviseIdx = max(i, 0)
		sess.awaiting = awaitRevise
		if i >= 0 && i < len(sess.mdFiles) {
			name = stem(sess.mdFiles[i])
		}
	})
	b.show(ctx, s, fmt.Sprintf("🔄 *'%s' 수정 요청*\n\n"+
		"수정할 내용을 메시지로 입력해주세요.\n\n"+
		"예시:\n"+
		"• 줄거리 부분을 더 자세하게\n"+
		"• 제목을 더 흥미롭게 수정\n"+
		"• 총평 섹션 추가\n"+
		"• 전체 톤을 더 밝게", name), tg.Keyboard{tg.Row(tg.Callback("❌ 취소", cbListDrafts))})
}

func (b *Bot) confirmPost(ctx context.Context, s screen) {
	files := mdFiles(b.dirs.Posts)
	if len(files) == 0 {
		b.show(ctx, s, "📭 포스팅할 초안이 없습니다.", menuOnly)
		return
	}
	first := files[0]
	b.show(ctx, s, fmt.Sprintf("🚀 *포스팅 실행 확인*\n\n"+
		"제목: *%s*\n"+
		"파일: `%s`\n\n"+
		"Tistory에 자동 게시를 시작하겠습니까?\n"+
		"⚠️ 카카오 추가인증이 필요할 수 있으며,\n"+
		"   인증 완료 후 '인증완료'를 입력해야 합니다.", postTitle(first), filepath.Base(first)), tg.Keyboard{tg.Row(
		tg.Callback("▶️ 포스팅 시작", cbPostConfirm),
		tg.Callback("❌ 취소", cbMenu),
	)})
}

func (b *Bot) post(ctx context.Context, s screen) {
	b.show(ctx, s, "🚀 포스팅 실행 중...\n\n"+
		"브라우저를 자동으로 제어합니다.\n"+
		"추가 인증이 필요하면 별도 메시지로 안내드립니다.\n\n"+
		"⏳ 완료까지 2~5분 소요될 수 있습니다.", nil)

	var files []string
	if pending := mdFiles(b.dirs.Posts); len(pending) > 0 {
		files = pending[:1]
	}
	res := b.runTracked(ctx, Task{Label: "포스팅", Cmd: CmdPost, Files: files})
	status := "✅ 포스팅 완료!"
	if !res.OK {
		status = "❌ 포스팅 실패"
	}
	b.show(ctx, s, fmt.Sprintf("%s\n\n```\n%s\n```", status, textutil.Tail(res.Output, 1200)), tg.Keyboard{tg.Row(
		tg.Callback("📊 게시 현황", cbDoneList),
		btnMenu,
	)})
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"fmt"
	"strings"
	"time"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━"

// helpPage returns the text of a help page and whether page exists.
func (b *Bot) helpPage(page string) (string, bool) {
	switch page {
	case cbHelp:
		return helpIndex, true
	case "help_blog":
		return b.helpBlog(), true
	case "help_shared":
		return helpShared, true
	case "help_text":
		return helpText, true
	case "help_api":
		return b.helpAPI(), true
	case "help_slash":
		return helpSlash, true
	case "help_tips":
		return b.helpTips(), true
	case "help_all":
		return helpAll, true
	}
	return "", false
}

func (b *Bot) delaySeconds() int { return int(b.queueDelay / time.Second) }

const helpIndex = "📖 *명령어 가이드 — 카테고리 선택*\n" + rule + "\n\n" +
	"아래 버튼을 눌러 원하는 항목을 확인하세요.\n\n" +
	"📝 *블로그 제작* — 자료조사 · 글 생성 · 초안 · 포스팅\n" +
	"🔗 *공유·충돌 관리* — Claude / Cursor / 봇 3-way 상태\n" +
	"⌨️ *텍스트 명령어* — 키워드로 제어하는 단축 명령\n" +
	"📊 *API·큐 관리* — Rate Limit & 대기 큐 현황\n" +
	"🔘 *슬래시 명령어* — /start /menu /help /?\n" +
	"💡 *팁 & 설정* — 딜레이 · 알림 · 환경변수\n" +
	"📋 *전체 보기* — 모든 명령어 한 번에\n\n" +
	"_언제든 `/?` 또는 `/help` 를 입력하면 이 화면으로 돌아옵니다._"

func (b *Bot) helpBlog() string {
	return "📝 *블로그 제작 명령어*\n" + rule + "\n\n" +
		"🔍 *자료조사*\nAniList에서 최신 애니 데이터를 수집합니다.\n소요시간: 약 30초~1분\n\n" +
		"✍️ *글 생성*\nClaude API로 블로그 초안을 자동 작성합니다.\n" +
		"• 미발행 초안이 있으면 확인 후 진행\n" +
		"• Rate Limit 상황이면 대기 큐에 등록\n" +
		fmt.Sprintf("• 글 간 딜레이: *%d초* (Rate Limit 방지)\n\n", b.delaySeconds()) +
		"📋 *초안 확인*\n대기 중인 초안 목록을 보여줍니다.\n" +
		"• 📄 파일명 버튼 → 내용 미리보기\n" +
		"• 🗑️ 삭제 버튼 → 해당 초안 삭제\n" +
		"• 미리보기에서 수정 요청 · 바로 포스팅 가능\n\n" +
		"🔄 *초안 수정*\n수정 지시 메시지를 입력하면 해당 초안을 재생성합니다.\n" +
		"예시: `줄거리를 더 자세하게`, `제목을 더 흥미롭게`\n\n" +
		"🚀 *포스팅 실행*\nTistory에 자동 게시합니다.\n" +
		"• 제목·파일명 확인 후 [포스팅 시작] 버튼으로 진행\n" +
		"• 카카오 추가 인증 필요 시 봇이 알림\n" +
		"• 인증 완료 후 `인증완료` 입력\n\n" +
		"📊 *게시 현황*\n완료된 게시글 목록을 최근 15개까지 보여줍니다."
}

const helpShared = "🔗 *공유·충돌 관리 명령어*\n" + rule + "\n\n" +
	"3개 도구 *(Claude Code / Cursor AI / 텔레그램 봇)*가\n" +
	"`shared_state.json` 파일로 실시간 상태를 공유합니다.\n\n" +
	"🔗 *공유 현황 버튼*\nClaude Code와 Cursor AI의 현재 작업 상태 확인\n" +
	"• 어떤 파일을 편집 중인지\n• 마지막 작업 시간 · 진행률\n• 대기 중인 메시지 여부\n\n" +
	"📋 *활동 로그 버튼*\n세 도구의 최근 15개 작업 내역을 시간순으로 표시\n\n" +
	"🚨 *충돌 확인 버튼*\n동일 파일을 동시에 수정하는 충돌 감지 목록\n" +
	"• 🚨 CRITICAL: 즉시 중단 필요 (같은 파일 동시 편집)\n" +
	"• ⚠️ WARNING: 주의 필요 (동시 작업)\n\n" +
	"✅ *충돌 해제 버튼*\n감지된 충돌을 해제하고 작업을 계속 진행\n\n" +
	"⌨️ *텍스트 키워드*\n" +
	"`공유 현황` · `클로드 상태` · `지금 뭐해` · `뭐하고 있어`\n  → Claude Code / Cursor AI 작업 현황\n\n" +
	"`충돌` · `충돌 확인`  → 충돌 목록 조회\n" +
	"`충돌 해제` · `강제 진행`  → 충돌 해제\n\n" +
	"`활동 로그` · `로그` · `작업 내역`  → 로그 확인\n\n" +
	"📝 *메모 전달*\n`메모: [내용]` 또는 `note: [내용]`\n  → Claude Code가 다음 작업 시 확인하는 메모"

const helpText = "⌨️ *텍스트 키워드 명령어*\n" + rule + "\n" +
	"_버튼 없이 텍스트만 입력해도 작동합니다._\n\n" +
	"📊 *현황 조회*\n┌ `목록` `리스트` `list`\n├ `발행` `게시` `현황` `상태`\n├ `오늘` `today` `완료` `대기` `초안`\n└ → 발행 완료 & 대기 초안 목록 요약\n\n" +
	"🔗 *공유 상태*\n┌ `공유 현황` `클로드 상태` `claude 상태`\n├ `코드 현황` `지금 뭐해` `뭐하고 있어`\n└ → Claude Code / Cursor AI 작업 현황\n\n" +
	"📋 *활동 로그*\n┌ `활동 로그` `activity log`\n├ `로그` `작업 내역`\n└ → 최근 15개 작업 내역\n\n" +
	"🚨 *충돌 관리*\n┌ `충돌` `conflict` `충돌 확인`  → 충돌 목록\n└ `충돌 해제` `강제 진행` `충돌해제`  → 충돌 해제\n\n" +
	"📊 *API & 큐*\n┌ `큐` `queue` `rate limit`\n├ `리밋` `limit` `대기 현황` `api 상태`\n└ → Rate Limit & 큐 현황\n" +
	"  `큐 취소` `작업 취소` `취소`  → 대기 큐 전체 취소\n\n" +
	"📝 *메모 전달*\n┌ `메모: [내용]`  → Claude Code에 메모 전달\n└ `note: [내용]`  → 동일 (영문)\n\n" +
	"✅ *포스팅 인증*\n└ `인증완료`  → 카카오 추가 인증 완료 알림\n\n" +
	"❓ *도움말*\n┌ `/?` `/help` `?`\n├ `명령어` `도움말` `사용법`\n└ `help` `사용 방법`  → 이 가이드"

func (b *Bot) helpAPI() string {
	rl := b.tracker.Status()
	processing := "⏸ 대기"
	if b.queue.isRunning() {
		processing = "🔄 처리 중"
	}
	var sb strings.Builder
	sb.WriteString("📊 *API·큐 관리*\n" + rule + "\n\n")
	sb.WriteString("📈 *현재 API 상태*\n")
	fmt.Fprintf(&sb, "%s 상태: %s\n", safeIcon(rl), safeLabel(rl))
	fmt.Fprintf(&sb, "🕐 최근 60초 호출: *%d회*\n", rl.Recent)
	fmt.Fprintf(&sb, "⚡ 최근 5초 burst: *%d회*\n", rl.Burst)
	fmt.Fprintf(&sb, "⏳ 권장 딜레이: *%d초*\n\n", int(rl.Delay/time.Second))
	sb.WriteString("🔄 *Rate Limit 방지 시스템*\n")
	fmt.Fprintf(&sb, "• 글 간 자동 딜레이: *%d초*\n", b.delaySeconds())
	sb.WriteString("• Claude가 막히면 Gemini로 자동 전환\n• 호출이 잦으면 글 생성을 큐에 등록\n\n")
	sb.WriteString("📋 *작업 큐 시스템*\n")
	fmt.Fprintf(&sb, "• 현재 대기 중: *%d개*\n", b.queue.len())
	fmt.Fprintf(&sb, "• 처리 상태: %s\n", processing)
	sb.WriteString("• 여러 글 생성 시 순차 처리로 Rate Limit 방지\n\n")
	sb.WriteString("⌨️ *텍스트 키워드*\n`큐` · `queue` · `rate limit` · `api 상태`  → 현황 조회\n`큐 취소` · `작업 취소`  → 대기 작업 전체 취소\n\n")
	sb.WriteString("⚙️ *환경변수 설정 (.env)*\n`INTER_POST_DELAY=30`  글 간 딜레이(초)")
	return sb.String()
}

const helpSlash = "🔘 *슬래시 명령어*\n" + rule + "\n\n" +
	"/start\n  봇을 시작하고 메인 메뉴를 엽니다.\n  봇 재시작 후 첫 번째로 실행하세요.\n\n" +
	"/menu\n  메인 메뉴를 바로 엽니다.\n  언제든 메인 화면으로 돌아갈 때 사용.\n\n" +
	"/help\n  이 명령어 가이드를 엽니다.\n\n" +
	"/?\n  `/help`와 동일. 명령어 가이드 열기.\n\n" +
	rule + "\n" +
	"💡 텍스트 입력으로도 같은 기능을 사용할 수 있습니다:\n" +
	"`/?` · `명령어` · `도움말` · `help` → 가이드\n" +
	"`목록` · `현황` · `상태` → 발행 현황 요약"

func (b *Bot) helpTips() string {
	d := b.delaySeconds()
	return "💡 *팁 & 설정*\n" + rule + "\n\n" +
		"🚀 *빠른 워크플로우*\n① 🔍 자료조사 → ② ✍️ 글 생성 → ③ 📋 초안 확인\n→ ④ 🔄 수정 (필요 시) → ⑤ 🚀 포스팅 실행\n\n" +
		"⏱️ *작업 소요 시간 기준*\n• 자료조사: 30초~1분\n• 글 1편 생성: 1~3분\n• 포스팅: 2~5분\n" +
		fmt.Sprintf("• 글 간 딜레이: %d초 (Rate Limit 방지)\n\n", d) +
		"🔔 *자동 알림 목록*\n• 글 생성 시작 / 완료 / 오류\n• 충돌 감지 (CRITICAL / WARNING)\n• 포스팅 완료\n\n" +
		"⚙️ *환경변수 (.env 파일)*\n" +
		"`TELEGRAM_BOT_TOKEN`  봇 토큰 (필수)\n" +
		"`TELEGRAM_CHAT_ID`  허용 chat ID (보안)\n" +
		fmt.Sprintf("`INTER_POST_DELAY`  글 간 딜레이 (현재: %d초)\n\n", d) +
		"🛡️ *3-Way 공유 상태 시스템*\nClaude Code · Cursor AI · 텔레그램 봇이\n" +
		"`shared_state.json` 파일을 통해 실시간 연동\n" +
		"• 충돌 발생 시 텔레그램 자동 알림\n" +
		"• Cursor AI: CLI로 상태 업데이트\n  `sharedstate cursor start`\n\n" +
		"❓ *언제든 도움말로*\n`/?` 또는 `/help` 를 입력하면 이 가이드로 돌아옵니다."
}

const helpAll = "📋 *전체 명령어 목록*\n" + rule + "\n\n" +
	"🔘 *슬래시* — `/start` `/menu` `/help` `/?`\n\n" +
	"🔲 *버튼 메뉴*\n🔍 자료조사  ✍️ 글 생성  📋 초안 확인\n🔄 초안 수정  🚀 포스팅 실행  📊 게시 현황\n⚙️ 상태 조회  🔗 공유 현황  📋 활동 로그\n🚨 충돌 확인  ❓ 도움말\n\n" +
	"⌨️ *텍스트 키워드*\n" +
	"• `목록` `발행` `게시` `현황` `상태`  → 현황 조회\n" +
	"• `공유 현황` `클로드 상태` `지금 뭐해`  → 공유 상태\n" +
	"• `활동 로그` `로그` `작업 내역`  → 로그\n" +
	"• `충돌` `충돌 확인`  → 충돌 목록\n" +
	"• `충돌 해제` `강제 진행`  → 충돌 해제\n" +
	"• `큐` `queue` `rate limit` `api 상태`  → API 현황\n" +
	"• `큐 취소` `작업 취소`  → 큐 초기화\n" +
	"• `메모: [내용]` `note: [내용]`  → 메모 전달\n" +
	"• `인증완료`  → 카카오 인증 완료\n" +
	"• `/?` `명령어` `도움말` `help`  → 이 가이드\n\n" +
	rule + "\n📂 *카테고리별 상세 안내*\n아래 [도움말 목록]으로 돌아가서 카테고리를 선택하세요."

func safeIcon(rl RateStatus) string {
	if rl.Safe {
		return "🟢"
	}
	return "🟡"
}

func safeLabel(rl RateStatus) string {
	if rl.Safe {
		return "안전"
	}
	return "주의 (호출 빈번)"
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"fmt"
	"path/filepath"
	"strings"

	tg "go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/sharedstate"
	"go.geekbrox.name/autoblog/internal/textutil"
)

// Callback data of the inline buttons.
const (
	cbMenu             = "menu"
	cbHelp             = "help"
	cbStatus           = "status"
	cbRateStatus       = "rl_status"
	cbSharedStatus     = "shared_status"
	cbActivityLog      = "activity_log"
	cbConflicts        = "conflicts"
	cbResolveConflicts = "resolve_conflicts"
	cbFetch            = "fetch"
	cbGenerate         = "generate"
	cbGenerateConfirm  = "generate_confirm"
	cbListDrafts       = "list_drafts"
	cbRevise           = "revise"
	cbPost             = "post"
	cbPostConfirm      = "post_confirm"
	cbDoneList         = "done_list"

	prefixView    = "view_"
	prefixDelete  = "del_"
	prefixRevise  = "revise_"
	prefixMsgTo   = "msg_to_"
	prefixHelp    = "help_"
	maxListDrafts = 8
)

var (
	btnMenu      = tg.Callback("🏠 메인 메뉴", cbMenu)
	menuOnly     = tg.Keyboard{tg.Row(btnMenu)}
	cancelToMenu = tg.Keyboard{tg.Row(tg.Callback("❌ 취소", cbMenu))}
)

func btnRefresh(data string) tg.Button { return tg.Callback("🔄 새로고침", data) }

func mainMenu() tg.Keyboard {
	return tg.Keyboard{
		tg.Row(tg.Callback("🔍 자료조사", cbFetch), tg.Callback("✍️ 글 생성", cbGenerate)),
		tg.Row(tg.Callback("📋 초안 확인", cbListDrafts), tg.Callback("🔄 초안 수정", cbRevise)),
		tg.Row(tg.Callback("🚀 포스팅 실행", cbPost), tg.Callback("📊 게시 현황", cbDoneList)),
		tg.Row(tg.Callback("⚙️ 상태 조회", cbStatus), tg.Callback("🔗 공유 현황", cbSharedStatus)),
		tg.Row(tg.Callback("📋 활동 로그", cbActivityLog), tg.Callback("🚨 충돌 확인", cbConflicts)),
		tg.Row(tg.Callback("❓ 도움말", cbHelp)),
	}
}

// draftList has a view and a delete button for each of the first drafts.
func draftList(files []string) tg.Keyboard {
	var kb tg.Keyboard
	for i, f := range files[:min(len(files), maxListDrafts)] {
		stem := strings.TrimSuffix(filepath.Base(f), ".md")
		kb = append(kb, tg.Row(
			tg.Callback("📄 "+textutil.Truncate(stem, 28), fmt.Sprintf("%s%d", prefixView, i)),
			tg.Callback("🗑️ 삭제", fmt.Sprintf("%s%d", prefixDelete, i)),
		))
	}
	return append(kb, tg.Row(btnMenu))
}

func sharedStatusKeyboard() tg.Keyboard {
	return tg.Keyboard{
		tg.Row(btnRefresh(cbSharedStatus), tg.Callback("📋 활동 로그", cbActivityLog)),
		tg.Row(
			tg.Callback("💬 Claude에 메시지", prefixMsgTo+string(sharedstate.ClaudeCode)),
			tg.Callback("💬 Cursor에 메시지", prefixMsgTo+string(sharedstate.CursorAI)),
		),
		tg.Row(btnMenu),
	}
}

func activityLogKeyboard() tg.Keyboard {
	return tg.Keyboard{
		tg.Row(btnRefresh(cbActivityLog), tg.Callback("🔗 공유 현황", cbSharedStatus)),
		tg.Row(btnMenu),
	}
}

func conflictsKeyboard() tg.Keyboard {
	return tg.Keyboard{
		tg.Row(tg.Callback("✅ 충돌 해제", cbResolveConflicts), btnRefresh(cbConflicts)),
		tg.Row(tg.Callback("🔗 공유 현황", cbSharedStatus), btnMenu),
	}
}

func rateStatusKeyboard() tg.Keyboard {
	return tg.Keyboard{tg.Row(btnRefresh(cbRateStatus), btnMenu)}
}

func helpIndexKeyboard() tg.Keyboard {
	return tg.Keyboard{
		tg.Row(tg.Callback("📝 블로그 제작", "help_blog"), tg.Callback("🔗 공유·충돌 관리", "help_shared")),
		tg.Row(tg.Callback("⌨️ 텍스트 명령어", "help_text"), tg.Callback("📊 API·큐 관리", "help_api")),
		tg.Row(tg.Callback("🔘 슬래시 명령어", "help_slash"), tg.Callback("💡 팁 & 설정", "help_tips")),
		tg.Row(tg.Callback("📋 전체 보기", "help_all"), btnMenu),
	}
}

// helpShortcuts are the buttons that run the commands a help page describes.
var helpShortcuts = map[string][]tg.Button{
	"help_blog":   {tg.Callback("🔍 자료조사", cbFetch), tg.Callback("✍️ 글 생성", cbGenerate)},
	"help_shared": {tg.Callback("🔗 공유 현황", cbSharedStatus), tg.Callback("🚨 충돌 확인", cbConflicts)},
	"help_api":    {tg.Callback("📊 API 상태", cbRateStatus)},
}

func helpPageKeyboard(page string) tg.Keyboard {
	var kb tg.Keyboard
	if sc, ok := helpShortcuts[page]; ok {
		kb = append(kb, sc)
	}
	return append(kb, tg.Row(tg.Callback("◀️ 도움말 목록", cbHelp), btnMenu))
}

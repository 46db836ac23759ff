// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Tistorypost publishes the first draft of the posts directory to a Tistory
blog.

It drives Chrome: saved cookies are replayed first, then it falls back to a
Kakao login. Two-factor approval and the final go-ahead are confirmed by
sending 인증완료 or 포스팅 to the Telegram chat, or by pressing Enter when
Telegram is not configured. A draft whose title is already in the blog feed is
not published again. Published drafts are moved to the published directory.

# Usage

	$ tistorypost [-dir DIR] [-headless]
	$ tistorypost -dump-dom

-dump-dom logs in, opens the editor and saves its clickable elements to
publish_button_dump.json for selector debugging.

# Environment

	TISTORY_BLOG_NAME   blog name, as in https://NAME.tistory.com
	TISTORY_EMAIL       Kakao account
	TISTORY_PASSWORD
	TISTORY_CATEGORY    post category (default 애니소개 및 리뷰)
	TELEGRAM_BOT_TOKEN  confirmations and failure reports
	TELEGRAM_CHAT_ID
*/
package main

import (
	_ "embed"

	"go.geekbrox.name/autoblog/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }

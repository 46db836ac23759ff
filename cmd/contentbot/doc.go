// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Contentbot is the Telegram remote control of the blog pipeline.

It long-polls the Bot API, shows a button menu, runs animefetch, postgen and
tistorypost as subprocesses and reports drafts, the language model call rate
and the shared state of the actors working on the blog.

# Usage

	$ contentbot [-addr ADDR] [-dir DIR] [-bin DIR]

When -addr is set, an HTTP server is started with these endpoints:

	/health       health checks
	/metrics      Prometheus metrics
	/debug/logs   recent log lines, or a live stream for text/event-stream
	/api/status   shared state and bot queue as JSON
	/api/log      last activity log entries (?n=20)
	/api/conflicts

# Environment

	TELEGRAM_BOT_TOKEN  required
	TELEGRAM_CHAT_ID    restricts the bot to one chat and receives notifications
	TISTORY_BLOG_NAME   counts live posts in the published list
*/
package main

import (
	_ "embed"

	"go.geekbrox.name/autoblog/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }

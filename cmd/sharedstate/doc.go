// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Sharedstate reads and updates the state shared by the actors working on the
blog: Claude Code, Cursor AI and the Telegram bot.

Every actor registers the task it works on and the files it touches. When two
assistants touch the same files, the conflict is recorded and reported to
Telegram.

# Usage

	$ sharedstate [-dir DIR] status
	$ sharedstate log [N]
	$ sharedstate conflicts
	$ sharedstate resolve
	$ sharedstate note <memo>
	$ sharedstate idle
	$ sharedstate reset
	$ sharedstate watch

Commands for Cursor AI print JSON:

	$ sharedstate cursor start <action> [file ...]
	$ sharedstate cursor done [result]
	$ sharedstate cursor error <message>
	$ sharedstate cursor idle
	$ sharedstate cursor note <memo>
	$ sharedstate cursor messages

note and idle act for Claude Code.

# Environment

	TELEGRAM_BOT_TOKEN  conflict and note notifications
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

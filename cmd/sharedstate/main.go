// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/cli"
	"go.geekbrox.name/autoblog/internal/layout"
	"go.geekbrox.name/autoblog/internal/sharedstate"
)

const defaultLogEntries = 20

const usage = `사용법:
  sharedstate status
  sharedstate log [N]
  sharedstate conflicts
  sharedstate resolve
  sharedstate note <메모>
  sharedstate cursor start <action> [file1 file2 ...]
  sharedstate cursor done [result]
  sharedstate cursor error <메시지>
  sharedstate cursor idle
  sharedstate cursor note <메모>
  sharedstate cursor messages
  sharedstate idle
  sharedstate reset
  sharedstate watch
`

func main() { cli.Main(new(app)) }

type app struct {
	dir string

	// overridden in tests
	notifier sharedstate.Notifier
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.dir, "dir", "", "Data `directory`.")
}

func (a *app) Run(ctx context.Context, env *cli.Env) error {
	notifier := a.notifier
	if notifier == nil {
		notifier = telegram.New(telegram.Config{
			Token:  env.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID: env.Getenv("TELEGRAM_CHAT_ID"),
			Logf:   env.Logf,
		})
	}
	l := layout.FromEnv(a.dir, env.Getenv)
	s := sharedstate.New(l.State(), sharedstate.WithNotifier(notifier), sharedstate.WithLogf(env.Logf))

	args := env.Args
	if len(args) == 0 {
		args = []string{"status"}
	}
	cmd, rest := args[0], args[1:]

	switch {
	case cmd == "status":
		fmt.Fprintln(env.Stdout, sharedstate.FormatStatus(s.Load()))
	case cmd == "log":
		n := defaultLogEntries
		if len(rest) > 0 {
			var err error
			if n, err = strconv.Atoi(rest[0]); err != nil || n <= 0 {
				return fmt.Errorf("%w: bad log size %q", cli.ErrInvalidArgs, rest[0])
			}
		}
		fmt.Fprintln(env.Stdout, sharedstate.FormatLog(s.ActivityLog(), n))
	case cmd == "conflicts":
		fmt.Fprintln(env.Stdout, sharedstate.FormatConflicts(s.Conflicts()))
	case cmd == "resolve":
		msg, err := s.ResolveConflicts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, msg)
	case cmd == "note" && len(rest) > 0:
		note := strings.Join(rest, " ")
		if err := s.AddNote(ctx, sharedstate.ClaudeCode, note); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "✅ 메모 추가: %s\n", note)
	case cmd == "cursor" && len(rest) > 0:
		return cursor(ctx, env, s, rest[0], rest[1:])
	case cmd == "idle":
		if err := s.SetIdle(ctx, sharedstate.ClaudeCode); err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, "✅ Claude Code 상태를 idle로 초기화했습니다.")
	case cmd == "reset":
		if err := s.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, "✅ 모든 상태 파일 초기화 완료")
	case cmd == "watch":
		env.Logf("%s 감시 중... (Ctrl+C로 종료)", l.State())
		return s.Watch(ctx, func(st *sharedstate.State) {
			fmt.Fprintf(env.Stdout, "%s\n\n", sharedstate.FormatStatus(st))
		})
	default:
		io.WriteString(env.Stderr, usage)
		return fmt.Errorf("%w: unknown command %q", cli.ErrInvalidArgs, strings.Join(args, " "))
	}
	return nil
}

type okResponse struct {
	Status string `json:"status"`
}

type startResponse struct {
	Status    string                 `json:"status"`
	Conflicts []sharedstate.Conflict `json:"conflicts"`
}

// cursor runs a command on behalf of Cursor AI and prints its result as JSON.
func cursor(ctx context.Context, env *cli.Env, s *sharedstate.Store, sub string, args []string) error {
	text := strings.Join(args, " ")
	var err error
	switch sub {
	case "start":
		if len(args) == 0 {
			return fmt.Errorf("%w: cursor start needs an action", cli.ErrInvalidArgs)
		}
		conflicts, err := s.RegisterTask(ctx, sharedstate.CursorAI, args[0], args[1:], "", "")
		if err != nil {
			return err
		}
		if conflicts == nil {
			conflicts = []sharedstate.Conflict{}
		}
		return printJSON(env.Stdout, startResponse{Status: "ok", Conflicts: conflicts})
	case "done":
		err = s.MarkDone(ctx, sharedstate.CursorAI, text)
	case "error":
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: cursor error needs a message", cli.ErrInvalidArgs)
		}
		err = s.MarkError(ctx, sharedstate.CursorAI, text)
	case "idle":
		err = s.SetIdle(ctx, sharedstate.CursorAI)
	case "note":
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: cursor note needs a memo", cli.ErrInvalidArgs)
		}
		err = s.AddNote(ctx, sharedstate.CursorAI, text)
	case "messages":
		msgs, err := s.CheckMessages(ctx, sharedstate.CursorAI)
		if err != nil {
			return err
		}
		if msgs == nil {
			msgs = []sharedstate.Message{}
		}
		return printJSON(env.Stdout, msgs)
	default:
		io.WriteString(env.Stderr, usage)
		return fmt.Errorf("%w: unknown cursor command %q", cli.ErrInvalidArgs, sub)
	}
	if err != nil {
		return err
	}
	return printJSON(env.Stdout, okResponse{Status: "ok"})
}

func printJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

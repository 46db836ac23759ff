// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package bot implements the Telegram remote control of the blog pipeline.
//
// The bot shows an inline keyboard menu, runs the pipeline commands as
// subprocesses and reports the shared state of the actors working on the
// blog. Free text is routed by keywords, so most features also work without
// the buttons.
package bot

import (
	"cmp"
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	tg "go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/ctxutil"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/metrics"
	"go.geekbrox.name/autoblog/internal/sharedstate"
	"go.geekbrox.name/autoblog/internal/textutil"
)

const (
	pollTimeout  = 25 * time.Second
	pollLimit    = 100
	errorBackoff = 5 * time.Second

	notAllowed = "⚠️ 이 봇은 허용된 사용자만 사용할 수 있습니다. TELEGRAM_CHAT_ID를 확인해 주세요."
)

// Messenger is the part of the Bot API the bot uses. It is implemented by
// *telegram.Client.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string, kb tg.Keyboard) (*tg.Message, error)
	EditMessageText(ctx context.Context, chatID string, messageID int64, text string, kb tg.Keyboard) error
	AnswerCallbackQuery(ctx context.Context, id, text string) error
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration, limit int) ([]tg.Update, error)
}

// FeedReader lists the posts that are live on the blog.
type FeedReader interface {
	Titles(ctx context.Context) ([]string, error)
}

// Config configures a Bot.
type Config struct {
	Telegram Messenger
	Runner   Runner
	State    *sharedstate.Store
	// Feed is optional.
	Feed FeedReader
	Dirs Dirs
	// AllowedChatID restricts the bot to one chat. Empty allows everyone.
	AllowedChatID string
	// QueueDelay defaults to DefaultQueueDelay.
	QueueDelay time.Duration
	Logf       logger.Logf
}

// Bot handles Telegram updates.
type Bot struct {
	tg         Messenger
	runner     Runner
	state      *sharedstate.Store
	feed       FeedReader
	dirs       Dirs
	allowed    string
	queueDelay time.Duration
	logf       logger.Logf

	now   func() time.Time
	sleep func(context.Context, time.Duration) bool

	tracker *Tracker
	queue   queue

	mu       sync.Mutex
	sessions map[int64]*session

	// lanes holds the pending updates of each chat that is being handled.
	lanesMu sync.Mutex
	lanes   map[int64][]tg.Update

	seenMu    sync.Mutex
	seen      map[string]bool
	seenReady bool

	wg sync.WaitGroup
}

// session is what the bot remembers about a chat between updates.
type session struct {
	mdFiles   []string
	reviseIdx int
	// awaiting is what the next free text message means: a revision
	// instruction or a message for an actor.
	awaiting string
}

const awaitRevise = "revise_instruction"

// New returns a new Bot.
func New(cfg Config) *Bot {
	b := &Bot{
		tg:         cfg.Telegram,
		runner:     cfg.Runner,
		state:      cfg.State,
		feed:       cfg.Feed,
		dirs:       cfg.Dirs,
		allowed:    strings.TrimSpace(cfg.AllowedChatID),
		queueDelay: cfg.QueueDelay,
		logf:       cfg.Logf,
		now:        time.Now,
		sleep:      ctxutil.Sleep,
		sessions:   make(map[int64]*session),
		lanes:      make(map[int64][]tg.Update),
		seen:       make(map[string]bool),
	}
	if b.queueDelay == 0 {
		b.queueDelay = DefaultQueueDelay
	}
	if b.logf == nil {
		b.logf = func(string, ...any) {}
	}
	b.tracker = NewTracker(b.queueDelay, func() time.Time { return b.now() })
	return b
}

// Run long-polls for updates and handles them until ctx is done. Updates of
// one chat are handled in order, one at a time; different chats are handled
// concurrently.
func (b *Bot) Run(ctx context.Context) error {
	defer b.wg.Wait()

	b.logf("bot: polling started (chat restriction: %s)", cmp.Or(b.allowed, "없음"))
	var offset int64
	for {
		updates, err := b.tg.GetUpdates(ctx, offset, pollTimeout, pollLimit)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logf("bot: getUpdates: %v", err)
			if !b.sleep(ctx, errorBackoff) {
				return nil
			}
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			b.dispatch(ctx, u)
		}
	}
}

// dispatch queues u behind the updates of its chat that are still being
// handled, starting a worker for the chat if there is none.
func (b *Bot) dispatch(ctx context.Context, u tg.Update) {
	chat, ok := updateChat(u)
	if !ok {
		b.goroutine(func() { b.HandleUpdate(ctx, u) })
		return
	}
	b.lanesMu.Lock()
	pending, busy := b.lanes[chat]
	b.lanes[chat] = append(pending, u)
	b.lanesMu.Unlock()
	if !busy {
		b.goroutine(func() { b.work(ctx, chat) })
	}
}

// work handles the updates of chat until none are left.
func (b *Bot) work(ctx context.Context, chat int64) {
	for {
		b.lanesMu.Lock()
		pending := b.lanes[chat]
		if len(pending) == 0 {
			delete(b.lanes, chat)
			b.lanesMu.Unlock()
			return
		}
		u := pending[0]
		b.lanes[chat] = pending[1:]
		b.lanesMu.Unlock()

		b.HandleUpdate(ctx, u)
	}
}

func updateChat(u tg.Update) (int64, bool) {
	switch {
	case u.Message != nil:
		return u.Message.Chat.ID, true
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		return u.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

// Wait blocks until every goroutine started by the bot has returned.
func (b *Bot) Wait() { b.wg.Wait() }

// Stats is a snapshot of the bot's work, served by the status API.
type Stats struct {
	Queued       int        `json:"queued"`
	QueueRunning bool       `json:"queue_running"`
	Rate         RateStatus `json:"rate"`
	Drafts       int        `json:"drafts"`
	Published    int        `json:"published"`
}

// Stats returns the current queue, rate and directory counts.
func (b *Bot) Stats() Stats {
	return Stats{
		Queued:       b.queue.len(),
		QueueRunning: b.queue.isRunning(),
		Rate:         b.tracker.Status(),
		Drafts:       len(mdFiles(b.dirs.Posts)),
		Published:    len(mdFiles(b.dirs.Published)),
	}
}

func (b *Bot) goroutine(f func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		f()
	}()
}

// HandleUpdate handles a single update.
func (b *Bot) HandleUpdate(ctx context.Context, u tg.Update) {
	switch {
	case u.CallbackQuery != nil:
		metrics.ObserveUpdate("callback")
		b.handleCallbackQuery(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.Text != "":
		metrics.ObserveUpdate("message")
		b.handleMessage(ctx, u.Message)
	default:
		metrics.ObserveUpdate("other")
	}
}

func (b *Bot) allowedChat(id int64) bool {
	return b.allowed == "" || strconv.FormatInt(id, 10) == b.allowed
}

// withSession calls fn with the session of chatID locked.
func (b *Bot) withSession(chatID int64, fn func(s *session)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	fn(s)
}

func (b *Bot) handleMessage(ctx context.Context, m *tg.Message) {
	chatID := strconv.FormatInt(m.Chat.ID, 10)
	if !b.allowedChat(m.Chat.ID) {
		b.send(ctx, chatID, notAllowed, nil)
		return
	}

	text := strings.TrimSpace(m.Text)
	switch command(text) {
	case "/start":
		b.send(ctx, chatID, "👋 *GeekBrox 콘텐츠팀장 봇*에 오신 것을 환영합니다!\n\n"+
			"📝 블로그 자동화 작업을 아래 버튼으로 제어하세요.", mainMenu())
	case "/menu":
		b.send(ctx, chatID, "🏠 *메인 메뉴*", mainMenu())
	case "/help", "/?":
		b.send(ctx, chatID, helpIndex, helpIndexKeyboard())
	default:
		b.handleText(ctx, m.Chat.ID, text)
	}
}

// command returns the slash command of text without a bot name suffix, or
// an empty string.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

func (b *Bot) send(ctx context.Context, chatID, text string, kb tg.Keyboard) {
	if _, err := b.tg.SendMessage(ctx, chatID, text, kb); err != nil {
		b.logf("bot: sending message: %v", err)
	}
}

func (b *Bot) edit(ctx context.Context, chatID string, messageID int64, text string, kb tg.Keyboard) {
	if err := b.tg.EditMessageText(ctx, chatID, messageID, text, kb); err != nil {
		b.logf("bot: editing message: %v", err)
	}
}

// runTracked runs t and records it in the shared state as work of the bot.
func (b *Bot) runTracked(ctx context.Context, t Task) Result {
	if b.state != nil {
		if _, err := b.state.RegisterTask(ctx, sharedstate.TelegramBot, t.Label, t.Files, "", t.Cmd); err != nil {
			b.logf("bot: registering task: %v", err)
		}
	}

	res := b.runner.Run(ctx, t.Cmd, t.Args...)

	if b.state != nil {
		var err error
		if res.OK {
			err = b.state.MarkDone(ctx, sharedstate.TelegramBot, t.Label+" 완료")
		} else {
			err = b.state.MarkError(ctx, sharedstate.TelegramBot, textutil.Truncate(res.Output, 200))
		}
		if err != nil {
			b.logf("bot: updating shared state: %v", err)
		}
	}
	return res
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/blogfeed"
	"go.geekbrox.name/autoblog/internal/bot"
	"go.geekbrox.name/autoblog/internal/cli"
	"go.geekbrox.name/autoblog/internal/ctxutil"
	"go.geekbrox.name/autoblog/internal/layout"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/sharedstate"
	"go.geekbrox.name/autoblog/internal/systemd"
	"go.geekbrox.name/autoblog/internal/tistory"
	"go.geekbrox.name/autoblog/internal/version"
	"go.geekbrox.name/autoblog/internal/web"
)

const logLines = 500

var errNoToken = errors.New("TELEGRAM_BOT_TOKEN이 설정되지 않았습니다")

func main() { cli.Main(new(server)) }

type server struct {
	addr       string
	dir        string
	bin        string
	queueDelay time.Duration
	debug      bool

	// overridden in tests
	messenger  bot.Messenger
	watcher    stateWatcher
	watchRetry time.Duration
}

// stateWatcher is implemented by *sharedstate.Store.
type stateWatcher interface {
	Watch(ctx context.Context, fn func(*sharedstate.State)) error
}

const defaultWatchRetry = 30 * time.Second

func (s *server) Flags(fs *flag.FlagSet) {
	fs.StringVar(&s.addr, "addr", "", "Serve status, metrics and logs on `host:port`.")
	fs.StringVar(&s.dir, "dir", "", "Data `directory`.")
	fs.StringVar(&s.bin, "bin", "", "`Directory` of the pipeline commands (default: next to contentbot, then PATH).")
	fs.DurationVar(&s.queueDelay, "queue-delay", bot.DefaultQueueDelay, "Pause between queued tasks.")
	fs.BoolVar(&s.debug, "debug", false, "Log at debug level.")
}

func (s *server) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", cli.ErrInvalidArgs, env.Args)
	}
	token := env.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" && s.messenger == nil {
		return errNoToken
	}

	level := zapcore.InfoLevel
	if s.debug {
		level = zapcore.DebugLevel
	}
	streamer := logger.NewStreamer(logLines)
	zl := logger.NewZap(env.Stderr, level, streamer)
	defer zl.Sync()
	logf := logger.FromZap(zl)

	l := layout.FromEnv(s.dir, env.Getenv)
	if err := l.Create(); err != nil {
		return err
	}
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return err
	}

	chatID := env.Getenv("TELEGRAM_CHAT_ID")
	tg := telegram.New(telegram.Config{Token: token, ChatID: chatID, Logf: logf})
	messenger := s.messenger
	if messenger == nil {
		messenger = tg
	}
	state := sharedstate.New(l.State(), sharedstate.WithNotifier(tg), sharedstate.WithLogf(logf))

	var feed bot.FeedReader
	if blog := env.Getenv("TISTORY_BLOG_NAME"); blog != "" {
		feed = &blogfeed.Reader{Blog: blog}
	}

	b := bot.New(bot.Config{
		Telegram: messenger,
		Runner:   newRunner(s.binDir(), root),
		State:    state,
		Feed:     feed,
		Dirs: bot.Dirs{
			Posts:     l.Posts(),
			Published: l.Published(),
			Images:    l.Images(),
		},
		AllowedChatID: chatID,
		QueueDelay:    s.queueDelay,
		Logf:          logf,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 2)
	run := func(fn func() error) {
		go func() { errCh <- fn() }()
	}

	watcher := s.watcher
	if watcher == nil {
		watcher = state
	}
	b.StateChanged(ctx, state.Load())
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		watchState(ctx, watcher, cmp.Or(s.watchRetry, defaultWatchRetry), logf, func(st *sharedstate.State) {
			zl.Debug("shared state changed",
				zap.String("last_updated", st.LastUpdated),
				zap.Int("unresolved_conflicts", len(st.UnresolvedConflicts)),
			)
			b.StateChanged(ctx, st)
		})
	}()

	run(func() error { return b.Run(ctx) })
	pending := 1
	if s.addr != "" {
		pending++
		run(func() error {
			return web.ListenAndServe(ctx, &web.ListenAndServeConfig{
				Addr:    s.addr,
				Handler: newRouter(b, state, streamer, logf),
				Logf:    logf,
				Ready: func(addr net.Addr) {
					systemd.Notify(env.Getenv, logf, systemd.Status("상태 서버 "+addr.String()))
				},
			})
		})
	}

	go systemd.WatchdogLoop(ctx, env.Getenv, logf)
	systemd.Notify(env.Getenv, logf, systemd.Ready)
	logf("%s 시작: %s", version.Short(), root)

	// The first component to stop takes the others down.
	var first error
	for i := range pending {
		if err := <-errCh; err != nil && first == nil {
			first = err
		}
		if i == 0 {
			systemd.Notify(env.Getenv, logf, systemd.Stopping)
		}
		cancel()
	}
	<-watchDone
	return first
}

// watchState passes every shared state change to fn until ctx is done. The
// watcher is restarted after retry when it fails, for example when the state
// directory is removed; the bot keeps serving in between.
func watchState(ctx context.Context, w stateWatcher, retry time.Duration, logf logger.Logf, fn func(*sharedstate.State)) {
	for {
		err := w.Watch(ctx, fn)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("watcher stopped")
		}
		logf("공유 상태 감시 중단: %v (%s 후 재시작)", err, retry)
		if !ctxutil.Sleep(ctx, retry) {
			return
		}
	}
}

// newRunner returns the runner of the pipeline commands. The publisher gets
// enough time for both of its chat confirmations.
func newRunner(binDir, root string) *bot.ExecRunner {
	return &bot.ExecRunner{
		BinDir:   binDir,
		Env:      []string{"AUTOBLOG_DIR=" + root},
		Timeouts: map[string]time.Duration{bot.CmdPost: tistory.MaxRunTime},
	}
}

// binDir returns where the pipeline commands live: the -bin flag, or the
// directory of this executable when they were installed next to it.
func (s *server) binDir() string {
	if s.bin != "" {
		return s.bin
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	dir := filepath.Dir(exe)
	if _, err := os.Stat(filepath.Join(dir, bot.CmdFetch)); err != nil {
		return ""
	}
	return dir
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"

	"go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/blogfeed"
	"go.geekbrox.name/autoblog/internal/cli"
	"go.geekbrox.name/autoblog/internal/layout"
	"go.geekbrox.name/autoblog/internal/tistory"
)

var errNoBlog = errors.New("TISTORY_BLOG_NAME이 설정되지 않았습니다")

func main() { cli.Main(new(poster)) }

type poster struct {
	dir      string
	dumpDOM  bool
	headless bool

	// overridden in tests
	publish func(context.Context, *tistory.Publisher, *tistory.Post) (string, error)
	feedURL string
	httpc   *http.Client
}

func (p *poster) Flags(fs *flag.FlagSet) {
	fs.StringVar(&p.dir, "dir", "", "Data `directory`.")
	fs.BoolVar(&p.dumpDOM, "dump-dom", false, "Save the clickable elements of the editor and exit.")
	fs.BoolVar(&p.headless, "headless", false, "Run Chrome without a window.")
}

func (p *poster) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", cli.ErrInvalidArgs, env.Args)
	}
	l := layout.FromEnv(p.dir, env.Getenv)

	blog := env.Getenv("TISTORY_BLOG_NAME")
	if blog == "" {
		return errNoBlog
	}
	tg := telegram.New(telegram.Config{
		Token:  env.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID: env.Getenv("TELEGRAM_CHAT_ID"),
		Logf:   env.Logf,
	})
	pub := &tistory.Publisher{
		BlogName:    blog,
		Email:       env.Getenv("TISTORY_EMAIL"),
		Password:    env.Getenv("TISTORY_PASSWORD"),
		CookiesFile: l.Cookies(),
		DumpDir:     l.Root,
		Category:    env.Lookup("TISTORY_CATEGORY", tistory.DefaultCategory),
		Headless:    p.headless,
		Notifier:    tg,
		Confirmer:   &tistory.Confirmer{Telegram: tg, Stdin: env.Stdin, Logf: env.Logf},
		Logf:        env.Logf,
	}

	if p.dumpDOM {
		env.Logf("  [-dump-dom] DOM 덤프 모드: 로그인 → newpost → DOM 저장 → 종료")
		path, err := pub.DumpDOM(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "DOM 덤프 저장: %s\n", path)
		return nil
	}

	post, err := tistory.ReadFirstPost(l.Posts(), l.Images())
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "포스팅 대상: %s (%s)\n", post.Path, post.Title)
	if post.Image != "" {
		env.Logf("  [이미지] %s", post.Image)
	}

	feed := &blogfeed.Reader{Blog: blog, URL: p.feedURL, HTTPClient: p.httpc}
	live, err := feed.Has(ctx, post.Title)
	switch {
	case err != nil:
		env.Logf("  RSS 확인 실패, 계속 진행: %v", err)
	case live:
		if err := post.MoveTo(l.Published()); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "이미 발행된 글입니다. %s로 이동했습니다.\n", post.Path)
		return nil
	}

	publish := p.publish
	if publish == nil {
		publish = func(ctx context.Context, pub *tistory.Publisher, post *tistory.Post) (string, error) {
			return pub.Publish(ctx, post)
		}
	}
	url, err := publish(ctx, pub, post)
	if err != nil {
		env.Logf("포스팅 실패 → 파일 이동하지 않음 (재시도 가능)")
		return err
	}
	if err := post.MoveTo(l.Published()); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "완료: %s\n", url)
	return nil
}

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
	"os"
	"time"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/api/anilist"
	"go.geekbrox.name/autoblog/internal/api/mal"
	"go.geekbrox.name/autoblog/internal/cli"
	"go.geekbrox.name/autoblog/internal/httplogger"
	"go.geekbrox.name/autoblog/internal/layout"
)

func main() { cli.Main(new(fetcher)) }

type fetcher struct {
	dir     string
	count   int
	verbose bool

	// overridden in tests
	now         func() time.Time
	anilistURL  string
	malURL      string
	malInterval time.Duration
	httpc       *http.Client
}

func (f *fetcher) Flags(fs *flag.FlagSet) {
	fs.StringVar(&f.dir, "dir", "", "Data `directory`.")
	fs.IntVar(&f.count, "n", 10, "Number of anime to fetch.")
	fs.BoolVar(&f.verbose, "v", false, "Log every API request.")
}

func (f *fetcher) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", cli.ErrInvalidArgs, env.Args)
	}
	if f.count <= 0 {
		return fmt.Errorf("%w: -n must be positive", cli.ErrInvalidArgs)
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.verbose {
		f.httpc = traced(f.httpc, env.Logf)
	}
	l := layout.FromEnv(f.dir, env.Getenv)

	now := f.now()
	season, year := anime.CurrentSeason(now)
	env.Logf("📡 AniList 조회 중... (%d %s)", year, season)

	al := &anilist.Client{URL: f.anilistURL, HTTPClient: f.httpc}
	records, err := al.Seasonal(ctx, season, year, f.count)
	if err != nil {
		return err
	}
	env.Logf("  ✅ AniList: %d편 수집", len(records))

	if err := f.enrich(ctx, env, records); err != nil {
		return err
	}

	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return err
	}
	out := &anime.Seasonal{
		Season:     season,
		SeasonYear: year,
		FetchedAt:  anime.FormatFetchedAt(now),
		Anime:      records,
	}
	if err := anime.WriteSeasonal(l.Seasonal(), out); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "✅ 저장 완료: %s (총 %d편)\n", l.Seasonal(), len(records))
	return nil
}

// enrich merges MyAnimeList data into records. Lookup failures only skip the
// record.
func (f *fetcher) enrich(ctx context.Context, env *cli.Env, records []anime.Record) error {
	clientID := env.Getenv("MAL_CLIENT_ID")
	if clientID == "" {
		env.Logf("  ⚠️  MAL_CLIENT_ID 없음 — MAL 데이터 스킵")
		return nil
	}

	opts := []mal.Option{mal.WithHTTPClient(f.httpc)}
	if f.malURL != "" {
		opts = append(opts, mal.WithBaseURL(f.malURL))
	}
	if f.malInterval > 0 {
		opts = append(opts, mal.WithInterval(f.malInterval))
	}
	client := mal.New(clientID, opts...)

	env.Logf("  🔗 MAL API 병합 시작 (%d편)...", len(records))
	for i := range records {
		rec := &records[i]
		title := rec.DisplayTitle()
		if rec.MALID == nil {
			env.Logf("  [%d] %s: MAL ID 없음 — 스킵", i+1, title)
			continue
		}
		a, err := client.Anime(ctx, *rec.MALID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !errors.Is(err, mal.ErrNotFound) {
				env.Logf("  [%d] %s: %v", i+1, title, err)
			}
			env.Logf("  [%d] %s: MAL 데이터 없음", i+1, title)
			continue
		}
		a.Merge(rec)

		score, rank := "점수 없음", "순위 없음"
		if rec.MALScore != nil {
			score = fmt.Sprintf("%.2f/10", *rec.MALScore)
		}
		if rec.MALRank != nil {
			rank = fmt.Sprintf("#%d", *rec.MALRank)
		}
		env.Logf("  [%d] %s: MAL %s, 순위 %s", i+1, title, score, rank)
	}
	return nil
}

// traced returns a copy of c (or of the default client) whose requests are
// logged to logf.
func traced(c *http.Client, logf func(string, ...any)) *http.Client {
	if c == nil {
		c = http.DefaultClient
	}
	t := *c
	t.Transport = httplogger.New(c.Transport, logf)
	return &t
}

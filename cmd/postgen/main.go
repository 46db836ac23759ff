// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/api/anilist"
	"go.geekbrox.name/autoblog/internal/api/anthropic"
	"go.geekbrox.name/autoblog/internal/api/reddit"
	"go.geekbrox.name/autoblog/internal/api/tmdb"
	"go.geekbrox.name/autoblog/internal/api/youtube"
	"go.geekbrox.name/autoblog/internal/cli"
	"go.geekbrox.name/autoblog/internal/draft"
	"go.geekbrox.name/autoblog/internal/httplogger"
	"go.geekbrox.name/autoblog/internal/layout"
	"go.geekbrox.name/autoblog/internal/llm"
	"go.geekbrox.name/autoblog/internal/request"
	"go.geekbrox.name/autoblog/internal/store"
)

var (
	errNoSeasonal = errors.New("애니 목록 파일이 없습니다. 먼저 animefetch를 실행하세요")
	errEmptyList  = errors.New("애니 목록이 비어 있습니다")
	errNoPosts    = errors.New("생성된 글이 없습니다")
)

const (
	cacheTTL   = 24 * time.Hour
	apiTimeout = 30 * time.Second
)

func main() { cli.Main(new(generator)) }

type generator struct {
	dir         string
	revise      string
	instruction string
	verbose     bool

	// overridden in tests
	llm     llm.Generator
	sources *draft.Sources
}

func (g *generator) Flags(fs *flag.FlagSet) {
	fs.StringVar(&g.dir, "dir", "", "Data `directory`.")
	fs.StringVar(&g.revise, "revise", "", "Revise the draft at `path` instead of generating new ones.")
	fs.StringVar(&g.instruction, "instruction", "", "Revision instruction, used with -revise.")
	fs.BoolVar(&g.verbose, "v", false, "Log every research API request.")
}

func (g *generator) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", cli.ErrInvalidArgs, env.Args)
	}
	if g.instruction != "" && g.revise == "" {
		return fmt.Errorf("%w: -instruction requires -revise", cli.ErrInvalidArgs)
	}
	l := layout.FromEnv(g.dir, env.Getenv)

	gen := g.llm
	if gen == nil {
		gen = &llm.Fallback{
			Primary:   llm.NewClaude(&anthropic.Client{APIKey: env.Getenv("ANTHROPIC_API_KEY")}, env.Logf),
			Secondary: &llm.Gemini{APIKey: env.Getenv("GOOGLE_API_KEY")},
			Logf:      env.Logf,
		}
	}

	if g.revise != "" {
		d := &draft.Drafter{LLM: gen, Logf: env.Logf}
		if err := d.Revise(ctx, g.revise, g.instruction); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "✅ 수정 완료: %s\n", g.revise)
		return nil
	}

	seasonal, err := anime.ReadSeasonal(l.Seasonal())
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", errNoSeasonal, l.Seasonal())
	}
	if err != nil {
		return err
	}
	if len(seasonal.Anime) == 0 {
		return errEmptyList
	}

	sources := g.sources
	if sources == nil {
		cache, err := store.Open(ctx, env.Lookup("AUTOBLOG_CACHE", "mem:"), cacheTTL)
		if err != nil {
			return err
		}
		defer cache.Close()
		var base http.RoundTripper
		if g.verbose {
			// Traced below the cache so only real network calls are logged.
			base = httplogger.New(nil, env.Logf)
		}
		sources = newSources(env, &http.Client{
			Timeout:   apiTimeout,
			Transport: &request.CacheTransport{Cache: cache, Base: base},
		})
	}

	d := &draft.Drafter{
		Sources:  sources,
		Images:   &draft.Images{Dir: l.Images()},
		LLM:      gen,
		PostsDir: l.Posts(),
		Logf:     env.Logf,
	}
	written, err := d.Generate(ctx, seasonal)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintln(env.Stdout, path)
	}
	if len(written) == 0 {
		return errNoPosts
	}
	return nil
}

// newSources configures the research APIs. All of them share httpc, so
// repeated runs are served from the cache.
func newSources(env *cli.Env, httpc *http.Client) *draft.Sources {
	tmdbKey, youtubeKey := env.Getenv("TMDB_API_KEY"), env.Getenv("YOUTUBE_API_KEY")
	env.Logf("📡 API 현황: TMDB=%s | YouTube=%s | Reddit=✅(공개API사용)", check(tmdbKey != ""), check(youtubeKey != ""))
	return &draft.Sources{
		AniList: &anilist.Client{HTTPClient: httpc},
		TMDB:    &tmdb.Client{APIKey: tmdbKey, HTTPClient: httpc},
		YouTube: &youtube.Client{APIKey: youtubeKey, HTTPClient: httpc},
		Reddit:  &reddit.Client{HTTPClient: httpc},
	}
}

func check(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

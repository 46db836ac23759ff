// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/cli"
	"go.geekbrox.name/autoblog/internal/cli/clitest"
	"go.geekbrox.name/autoblog/internal/tistory"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>geekbrox</title>
	<item><title>Already Live</title><link>https://geekbrox.tistory.com/1</link></item>
</channel>
</rss>`

func testPoster(t *testing.T) *poster {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss" {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, rss)
	}))
	t.Cleanup(ts.Close)
	return &poster{
		feedURL: ts.URL + "/rss",
		httpc:   ts.Client(),
		publish: func(_ context.Context, pub *tistory.Publisher, post *tistory.Post) (string, error) {
			if pub.BlogName != "geekbrox" {
				return "", fmt.Errorf("unexpected blog %q", pub.BlogName)
			}
			if strings.HasPrefix(post.Title, "Fail") || post.Title == "Already Live" {
				return "", tistory.ErrPublish
			}
			return "https://geekbrox.tistory.com/2", nil
		},
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	blog := map[string]string{"TISTORY_BLOG_NAME": "geekbrox"}
	twoDrafts := map[string]string{
		"posts/a.md": "# First\n\nbody",
		"posts/b.md": "# Second\n\nbody",
	}

	clitest.Run(t, testPoster, map[string]clitest.Case[*poster]{
		"no blog name": {
			Files:   twoDrafts,
			WantErr: errNoBlog,
		},
		"no drafts": {
			Env:     blog,
			WantErr: tistory.ErrNoDrafts,
		},
		"publishes first draft": {
			Env:          blog,
			Files:        twoDrafts,
			WantInStdout: "완료: https://geekbrox.tistory.com/2",
			WantFiles: map[string]string{
				"published/a.md": "# First",
				"posts/b.md":     "# Second",
			},
			WantNoFiles: []string{"posts/a.md"},
		},
		"already live": {
			Env:          blog,
			Files:        map[string]string{"posts/a.md": "# Already Live\n\nbody"},
			WantInStdout: "이미 발행된 글입니다",
			WantFiles:    map[string]string{"published/a.md": "Already Live"},
		},
		"publish failure keeps draft": {
			Env:          blog,
			Files:        map[string]string{"posts/a.md": "# Fail\n\nbody"},
			WantErr:      tistory.ErrPublish,
			WantInStderr: "파일 이동하지 않음",
			WantFiles:    map[string]string{"posts/a.md": "# Fail"},
		},
		"feed down": {
			Env:          blog,
			Files:        map[string]string{"posts/a.md": "# First\n\nbody"},
			WantInStderr: "RSS 확인 실패",
			WantInStdout: "완료:",
			Prepare: func(_ *testing.T, p *poster) {
				p.feedURL = strings.TrimSuffix(p.feedURL, "/rss") + "/down"
			},
		},
		"extra arguments": {
			Args:    []string{"now"},
			WantErr: cli.ErrInvalidArgs,
		},
	})
}

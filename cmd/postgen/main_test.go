// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/cli"
	"go.geekbrox.name/autoblog/internal/cli/clitest"
	"go.geekbrox.name/autoblog/internal/draft"
	"go.geekbrox.name/autoblog/internal/llm"
	"go.geekbrox.name/autoblog/internal/testutil"
)

// seasonal returns the contents of a fetched seasonal list.
func seasonal(t *testing.T, records ...anime.Record) string {
	t.Helper()
	b, err := json.Marshal(&anime.Seasonal{Season: anime.Winter, SeasonYear: 2026, Anime: records})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func testGenerator(*testing.T) *generator {
	return &generator{
		llm: llm.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "사용자 지시") {
				return "  # 수정된 글\n", nil
			}
			if strings.Contains(prompt, "Broken") {
				return "", errors.New("model failed")
			}
			return "# 초안\n\n본문", nil
		}),
		sources: &draft.Sources{},
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	revisePath := filepath.Join(dir, "revise.md")
	if err := os.WriteFile(revisePath, []byte("# 원본"), 0o644); err != nil {
		t.Fatal(err)
	}

	clitest.Run(t, testGenerator, map[string]clitest.Case[*generator]{
		"generates drafts": {
			Files: map[string]string{
				"seasonal_top_anime.json": seasonal(t,
					anime.Record{AniListID: 1, TitleEnglish: "Frieren"},
					anime.Record{AniListID: 2, TitleEnglish: "Broken"},
				),
			},
			WantInStdout: filepath.Join("posts", "Frieren.md"),
			WantInStderr: "실패: model failed",
			WantFiles:    map[string]string{"posts/Frieren.md": "# 초안\n\n본문"},
			WantNoFiles:  []string{"posts/Broken.md"},
		},
		"explicit data directory": {
			Args: []string{"-dir", filepath.Join(dir, "other")},
			Files: map[string]string{
				"seasonal_top_anime.json": seasonal(t, anime.Record{AniListID: 1, TitleEnglish: "Frieren"}),
			},
			WantErr: errNoSeasonal,
		},
		"no fetched anime": {
			WantErr: errNoSeasonal,
		},
		"empty list": {
			Files:   map[string]string{"seasonal_top_anime.json": seasonal(t)},
			WantErr: errEmptyList,
		},
		"revise": {
			Args:         []string{"-revise", revisePath, "-instruction", "더 짧게"},
			WantInStdout: "수정 완료",
			CheckFunc: func(t *testing.T, _ *generator) {
				b, err := os.ReadFile(revisePath)
				if err != nil {
					t.Fatal(err)
				}
				testutil.AssertEqual(t, string(b), "# 수정된 글")
			},
		},
		"revise missing draft": {
			Args:    []string{"-revise", filepath.Join(dir, "nope.md"), "-instruction", "x"},
			WantErr: draft.ErrNoDraft,
		},
		"revise without instruction": {
			Args:    []string{"-revise", revisePath},
			WantErr: draft.ErrEmptyInstruction,
		},
		"instruction without revise": {
			Args:    []string{"-instruction", "더 짧게"},
			WantErr: cli.ErrInvalidArgs,
		},
		"extra arguments": {
			Args:    []string{"now"},
			WantErr: cli.ErrInvalidArgs,
		},
	})
}

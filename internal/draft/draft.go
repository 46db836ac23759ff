// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package draft turns fetched anime records into Korean blog post drafts.
//
// For every record the [Drafter] gathers extra information from AniList, TMDB,
// YouTube and Reddit, downloads up to five images, asks a language model to
// write the post and saves it as Markdown. Images are referenced from posts
// relative to the posts directory, so posts and images must be siblings.
package draft

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/atomicio"
	"go.geekbrox.name/autoblog/internal/llm"
	"go.geekbrox.name/autoblog/internal/logger"
)

// ErrEmptyInstruction is returned by [Drafter.Revise] when there is nothing to
// do.
var ErrEmptyInstruction = errors.New("--instruction 내용이 비어 있습니다.")

// ErrNoDraft is returned by [Drafter.Revise] when the post does not exist.
var ErrNoDraft = errors.New("파일이 없습니다")

// Drafter writes and revises posts.
type Drafter struct {
	Sources  *Sources
	Images   *Images
	LLM      llm.Generator
	PostsDir string
	Logf     logger.Logf
}

func (d *Drafter) logf(format string, args ...any) {
	if d.Logf != nil {
		d.Logf(format, args...)
	}
}

// Generate drafts a post for every record of s and returns the paths of the
// written files. A record that fails is logged and skipped; only a cancelled
// context stops the run.
func (d *Drafter) Generate(ctx context.Context, s *anime.Seasonal) ([]string, error) {
	if err := os.MkdirAll(d.PostsDir, 0o755); err != nil {
		return nil, err
	}
	label := s.Label()

	var written []string
	for i, rec := range s.Anime {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		d.logf("[%d/%d] %s", i+1, len(s.Anime), rec.DisplayTitle())

		path, err := d.generate(ctx, i+1, rec, label)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return written, ctxErr
			}
			d.logf("  ❌ 실패: %v", err)
			continue
		}
		written = append(written, path)
	}

	d.logf("🎉 완료: %d개 글 생성", len(written))
	d.logf("   글: %s", d.PostsDir)
	return written, nil
}

func (d *Drafter) generate(ctx context.Context, n int, rec anime.Record, label string) (string, error) {
	slug := anime.Slugify(rec.DisplayTitle())
	if slug == "untitled" {
		slug = fmt.Sprintf("anime_%d", n)
	}
	indent := func(format string, args ...any) { d.logf("  "+format, args...) }

	indent("🔍 다중 API 데이터 수집 중...")
	sources := d.Sources
	if sources == nil {
		sources = &Sources{}
	}
	extra, err := sources.Collect(ctx, rec, indent)
	if err != nil {
		return "", err
	}

	var images ImageSet
	if d.Images != nil {
		indent("🖼️  이미지 수집 중 (최대 5개)...")
		im := *d.Images
		if im.Logf == nil {
			im.Logf = indent
		}
		images = im.Download(ctx, slug, rec.CoverImageURL, extra.Show)
		indent("✅ 이미지: %d개 수집", images.Count())
	}

	indent("✍️  블로그 글 생성 중...")
	body, err := d.LLM.Generate(ctx, BuildPrompt(rec, extra, label, images))
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)

	path := filepath.Join(d.PostsDir, slug+".md")
	if err := atomicio.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	indent("✅ 저장 완료: %s (%s자)", path, charCount(body))
	return path, nil
}

// Revise rewrites the post at path following instruction. The previous
// version is kept as a backup.
func (d *Drafter) Revise(ctx context.Context, path, instruction string) error {
	current, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNoDraft, path)
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(instruction) == "" {
		return ErrEmptyInstruction
	}

	revised, err := d.LLM.Generate(ctx, BuildRevisionPrompt(string(current), instruction))
	if err != nil {
		return err
	}
	if err := atomicio.WriteFileBackup(path, []byte(strings.TrimSpace(revised)), 0o644); err != nil {
		return err
	}
	d.logf("수정 완료: %s", path)
	return nil
}

// charCount counts the characters of s except spaces, with thousands
// separators.
func charCount(s string) string {
	n := utf8.RuneCountInString(strings.ReplaceAll(s, " ", ""))
	return humanize.Comma(int64(n))
}

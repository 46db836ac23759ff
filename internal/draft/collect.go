// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package draft

import (
	"context"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/api/anilist"
	"go.geekbrox.name/autoblog/internal/api/reddit"
	"go.geekbrox.name/autoblog/internal/api/tmdb"
	"go.geekbrox.name/autoblog/internal/api/youtube"
	"go.geekbrox.name/autoblog/internal/logger"
)

// Sources are the upstream APIs consulted for every record. A nil source is
// skipped.
type Sources struct {
	AniList *anilist.Client
	TMDB    *tmdb.Client
	YouTube *youtube.Client
	Reddit  *reddit.Client
}

// Extra is what Collect found about a record beyond the fetched metadata.
type Extra struct {
	Detail *anilist.Detail
	Show   *tmdb.Show
	Videos []youtube.Video
	Posts  []reddit.Post
}

// Collect queries every source about rec. Failing sources are logged and
// left empty; only a cancelled context is an error.
func (s *Sources) Collect(ctx context.Context, rec anime.Record, logf logger.Logf) (*Extra, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	titleEN := rec.TitleEnglish
	if titleEN == "" {
		titleEN = rec.TitleNative
	}
	extra := &Extra{}

	if s.TMDB != nil {
		logf("📽️  TMDB 조회 중...")
		show, err := s.TMDB.Lookup(ctx, logf, titleEN, rec.TitleNative)
		if err != nil {
			return nil, err
		}
		if show != nil {
			logf("✅ TMDB: 포스터 %d개, 스틸컷 %d개", len(show.PosterPaths), len(show.BackdropPaths))
		} else {
			logf("⚠️  TMDB: 결과 없음")
		}
		extra.Show = show
	}

	switch {
	case s.AniList == nil:
	case rec.AniListID == 0:
		logf("⚠️  AniList ID 없음, 기본 정보만 사용")
	default:
		logf("🎌 AniList 상세 조회 중...")
		detail, err := s.AniList.Detail(ctx, rec.AniListID)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err != nil {
			logf("⚠️  AniList 상세 조회 실패: %v", err)
		}
		if detail != nil {
			logf("✅ AniList: 캐릭터 %d명, 태그 %d개", len(detail.Characters), len(detail.Tags))
		}
		extra.Detail = detail
	}
	if extra.Detail == nil {
		extra.Detail = &anilist.Detail{}
	}

	if s.YouTube != nil {
		logf("🎬 YouTube PV 검색 중...")
		videos, err := s.YouTube.Trailers(ctx, titleEN, rec.TitleNative)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err != nil {
			logf("⚠️  YouTube 검색 실패: %v", err)
		}
		if len(videos) > 0 {
			logf("✅ YouTube: PV %d개 발견", len(videos))
		} else {
			logf("⚠️  YouTube: 결과 없음")
		}
		extra.Videos = videos
	}

	if s.Reddit != nil {
		logf("💬 Reddit 반응 수집 중...")
		posts, err := s.Reddit.Discussions(ctx, titleEN)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err != nil {
			logf("⚠️  Reddit 검색 실패: %v", err)
		}
		if len(posts) > 0 {
			logf("✅ Reddit: 인기 글 %d개", len(posts))
		} else {
			logf("⚠️  Reddit: 결과 없음")
		}
		extra.Posts = posts
	}

	return extra, nil
}

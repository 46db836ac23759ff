// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package anilist implements a client for the AniList GraphQL API.
package anilist

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/request"
)

// DefaultURL is the AniList GraphQL endpoint.
const DefaultURL = "https://graphql.anilist.co"

// Client queries AniList. The zero value uses [DefaultURL] and
// [request.DefaultClient].
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// ErrNoPage is returned when a seasonal query response has no Page.
var ErrNoPage = errors.New("AniList 응답에 Page 데이터가 없습니다")

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func query[T any](ctx context.Context, c *Client, q string, vars map[string]any) (T, error) {
	u := c.URL
	if u == "" {
		u = DefaultURL
	}
	resp, err := request.Make[graphQLResponse[T]](ctx, request.Params{
		Method:     http.MethodPost,
		URL:        u,
		Body:       graphQLRequest{Query: q, Variables: vars},
		HTTPClient: c.HTTPClient,
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("AniList API 요청 실패: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		var zero T
		return zero, fmt.Errorf("AniList GraphQL 오류: %s", strings.Join(msgs, "; "))
	}
	return resp.Data, nil
}

const seasonalQuery = `
query ($season: MediaSeason!, $seasonYear: Int!, $perPage: Int!) {
  Page(page: 1, perPage: $perPage) {
    media(season: $season, seasonYear: $seasonYear, type: ANIME, sort: [POPULARITY_DESC]) {
      id
      idMal
      title { romaji english native }
      synonyms
      description
      genres
      averageScore
      coverImage { extraLarge large medium }
    }
  }
}`

type title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

type media struct {
	ID           int      `json:"id"`
	IDMal        *int     `json:"idMal"`
	Title        title    `json:"title"`
	Synonyms     []string `json:"synonyms"`
	Description  string   `json:"description"`
	Genres       []string `json:"genres"`
	AverageScore *int     `json:"averageScore"`
	CoverImage   struct {
		ExtraLarge string `json:"extraLarge"`
		Large      string `json:"large"`
		Medium     string `json:"medium"`
	} `json:"coverImage"`
}

type seasonalData struct {
	Page *struct {
		Media []media `json:"media"`
	} `json:"Page"`
}

// Seasonal returns the most popular anime of a season, normalized into
// records without MAL data.
func (c *Client) Seasonal(ctx context.Context, season anime.Season, year, perPage int) ([]anime.Record, error) {
	data, err := query[seasonalData](ctx, c, seasonalQuery, map[string]any{
		"season":     season,
		"seasonYear": year,
		"perPage":    perPage,
	})
	if err != nil {
		return nil, err
	}
	if data.Page == nil {
		return nil, ErrNoPage
	}

	records := make([]anime.Record, 0, len(data.Page.Media))
	for _, m := range data.Page.Media {
		rec := anime.Record{
			AniListID:     m.ID,
			MALID:         m.IDMal,
			TitleKorean:   anime.KoreanTitle(m.Synonyms),
			TitleEnglish:  cmp.Or(m.Title.English, m.Title.Romaji),
			TitleNative:   m.Title.Native,
			Genres:        m.Genres,
			Synopsis:      anime.StripHTML(m.Description),
			AverageScore:  m.AverageScore,
			CoverImageURL: cmp.Or(m.CoverImage.ExtraLarge, m.CoverImage.Large, m.CoverImage.Medium),
		}
		if rec.Genres == nil {
			rec.Genres = []string{}
		}
		records = append(records, rec)
	}
	return records, nil
}

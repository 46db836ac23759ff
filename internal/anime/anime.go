// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package anime defines the seasonal anime records shared by the fetcher, the
// drafter and the publisher.
package anime

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.geekbrox.name/autoblog/internal/atomicio"
)

// SeasonalFile is the name of the file written by the fetcher.
const SeasonalFile = "seasonal_top_anime.json"

// Season is an AniList media season.
type Season string

// Known seasons.
const (
	Winter Season = "WINTER"
	Spring Season = "SPRING"
	Summer Season = "SUMMER"
	Fall   Season = "FALL"
)

var seasonLabels = map[Season]string{
	Winter: "겨울",
	Spring: "봄",
	Summer: "여름",
	Fall:   "가을",
}

// Label returns the Korean name of the season, or the season itself if it is
// unknown.
func (s Season) Label() string {
	if l, ok := seasonLabels[s]; ok {
		return l
	}
	return string(s)
}

// CurrentSeason returns the season and season year that t falls into.
// December belongs to the winter season of the next year.
func CurrentSeason(t time.Time) (Season, int) {
	year := t.Year()
	switch t.Month() {
	case time.December:
		return Winter, year + 1
	case time.January, time.February:
		return Winter, year
	case time.March, time.April, time.May:
		return Spring, year
	case time.June, time.July, time.August:
		return Summer, year
	}
	return Fall, year
}

// SeasonLabel formats a season for post titles, like "2026 겨울".
func SeasonLabel(s Season, year int) string {
	return fmt.Sprintf("%d %s", year, s.Label())
}

// Record is a single anime as written by the fetcher. Numeric fields that
// upstream APIs may omit are pointers and encode as null.
type Record struct {
	AniListID     int      `json:"anilist_id"`
	MALID         *int     `json:"mal_id"`
	TitleKorean   string   `json:"title_korean,omitempty"`
	TitleEnglish  string   `json:"title_english,omitempty"`
	TitleNative   string   `json:"title_native,omitempty"`
	Genres        []string `json:"genres"`
	Synopsis      string   `json:"synopsis,omitempty"`
	AverageScore  *int     `json:"average_score"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`

	MALScore      *float64 `json:"mal_score"`
	MALRank       *int     `json:"mal_rank"`
	MALPopularity *int     `json:"mal_popularity"`
	MALMembers    *int     `json:"mal_members"`
	MALSynopsis   string   `json:"mal_synopsis,omitempty"`
	MALEpisodes   *int     `json:"mal_episodes,omitempty"`
	MALStatus     string   `json:"mal_status,omitempty"`
}

// DisplayTitle returns the best title for Korean readers.
func (r Record) DisplayTitle() string {
	for _, t := range []string{r.TitleKorean, r.TitleEnglish, r.TitleNative} {
		if t != "" {
			return t
		}
	}
	return "제목 없음"
}

// Seasonal is the fetcher output.
type Seasonal struct {
	Season     Season   `json:"season"`
	SeasonYear int      `json:"season_year"`
	FetchedAt  string   `json:"fetched_at"`
	Count      int      `json:"count"`
	Anime      []Record `json:"anime"`
}

// FetchedAtLayout is the layout of Seasonal.FetchedAt: local wall time
// without a zone. Fractional seconds are written in microseconds and left out
// when zero.
const FetchedAtLayout = "2006-01-02T15:04:05"

// FormatFetchedAt formats t for Seasonal.FetchedAt.
func FormatFetchedAt(t time.Time) string {
	if t.Nanosecond()/1000 == 0 {
		return t.Format(FetchedAtLayout)
	}
	return t.Format(FetchedAtLayout + ".000000")
}

// Label returns the season label of s.
func (s *Seasonal) Label() string { return SeasonLabel(s.Season, s.SeasonYear) }

// ReadSeasonal reads the fetcher output from path. Missing season fields
// default to the winter 2026 season.
func ReadSeasonal(path string) (*Seasonal, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Seasonal
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if s.Season == "" {
		s.Season = Winter
	}
	if s.SeasonYear == 0 {
		s.SeasonYear = 2026
	}
	return &s, nil
}

// WriteSeasonal atomically writes s to path as indented JSON.
func WriteSeasonal(path string, s *Seasonal) error {
	s.Count = len(s.Anime)
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return atomicio.WriteFile(path, append(b, '\n'), 0o644)
}

// KoreanTitle returns the first synonym that contains Hangul, trimmed.
func KoreanTitle(synonyms []string) string {
	for _, s := range synonyms {
		if strings.IndexFunc(s, isHangul) >= 0 {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func isHangul(r rune) bool { return r >= 0xAC00 && r <= 0xD7A3 }

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// StripHTML removes HTML tags from s.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(s, ""))
}

const maxSlugLen = 80

var dashes = regexp.MustCompile(`-+`)

// Slugify turns a title into a file name: word characters and dashes survive,
// every kind of whitespace becomes a dash and runs of dashes collapse into
// one.
func Slugify(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			return r
		case unicode.IsSpace(r):
			return '-'
		}
		return -1
	}, s)
	s = strings.Trim(dashes.ReplaceAllString(s, "-"), "-")
	if utf8.RuneCountInString(s) > maxSlugLen {
		s = string([]rune(s)[:maxSlugLen])
	}
	if s == "" {
		return "untitled"
	}
	return s
}

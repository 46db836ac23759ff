// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package anime

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestCurrentSeason(t *testing.T) {
	t.Parallel()

	cases := map[time.Month]struct {
		season Season
		year   int
	}{
		time.January:   {Winter, 2026},
		time.February:  {Winter, 2026},
		time.March:     {Spring, 2026},
		time.May:       {Spring, 2026},
		time.June:      {Summer, 2026},
		time.August:    {Summer, 2026},
		time.September: {Fall, 2026},
		time.November:  {Fall, 2026},
		time.December:  {Winter, 2027},
	}
	for month, want := range cases {
		t.Run(month.String(), func(t *testing.T) {
			season, year := CurrentSeason(time.Date(2026, month, 15, 12, 0, 0, 0, time.UTC))
			testutil.AssertEqual(t, season, want.season)
			testutil.AssertEqual(t, year, want.year)
		})
	}
}

func TestSeasonLabel(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, SeasonLabel(Winter, 2026), "2026 겨울")
	testutil.AssertEqual(t, SeasonLabel(Fall, 2025), "2025 가을")
	testutil.AssertEqual(t, Season("UNKNOWN").Label(), "UNKNOWN")
}

func TestKoreanTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in   []string
		want string
	}{
		"nil":        {in: nil, want: ""},
		"no hangul":  {in: []string{"Frieren", "葬送のフリーレン"}, want: ""},
		"first wins": {in: []string{"Sousou no Frieren", " 장송의 프리렌 ", "프리렌"}, want: "장송의 프리렌"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, KoreanTitle(tc.in), tc.want)
		})
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, StripHTML("<p>An elf <i>mage</i>.<br></p> "), "An elf mage.")
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"장송의 프리렌 2기":             "장송의-프리렌-2기",
		"Re:Zero - Season 3":     "ReZero-Season-3",
		"  --hello   world--  ":  "hello-world",
		"!!!":                    "untitled",
		"":                       "untitled",
		"snake_case stays":       "snake_case-stays",
		"葬送の\u3000フリーレン":         "葬送の-フリーレン",
		"A\u00a0B":               "A-B",
		"a\u3000-\u3000b":        "a-b",
		"tab\tand\nnewline":      "tab-and-newline",
		strings.Repeat("가", 100): strings.Repeat("가", 80),
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			testutil.AssertEqual(t, Slugify(in), want)
		})
	}
}

func TestFormatFetchedAt(t *testing.T) {
	t.Parallel()

	kst := time.FixedZone("KST", 9*60*60)
	cases := map[string]struct {
		in   time.Time
		want string
	}{
		"whole second":      {time.Date(2026, time.January, 10, 9, 0, 0, 0, kst), "2026-01-10T09:00:00"},
		"microseconds":      {time.Date(2026, time.January, 10, 9, 0, 0, 123456789, kst), "2026-01-10T09:00:00.123456"},
		"leading zeros":     {time.Date(2026, time.April, 1, 10, 0, 5, 7000, time.UTC), "2026-04-01T10:00:05.000007"},
		"below microsecond": {time.Date(2026, time.April, 1, 10, 0, 5, 999, time.UTC), "2026-04-01T10:00:05"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, FormatFetchedAt(tc.in), tc.want)
		})
	}
}

func TestDisplayTitle(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, Record{TitleKorean: "프리렌", TitleEnglish: "Frieren"}.DisplayTitle(), "프리렌")
	testutil.AssertEqual(t, Record{TitleEnglish: "Frieren", TitleNative: "フリーレン"}.DisplayTitle(), "Frieren")
	testutil.AssertEqual(t, Record{TitleNative: "フリーレン"}.DisplayTitle(), "フリーレン")
	testutil.AssertEqual(t, Record{}.DisplayTitle(), "제목 없음")
}

func TestSeasonalRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), SeasonalFile)
	score := 8.9
	in := &Seasonal{
		Season:     Spring,
		SeasonYear: 2026,
		FetchedAt:  "2026-04-01T10:00:00",
		Anime: []Record{
			{AniListID: 1, TitleEnglish: "Frieren", Genres: []string{"Fantasy"}, MALScore: &score},
			{AniListID: 2, TitleNative: "ダンダダン", Genres: []string{}},
		},
	}
	if err := WriteSeasonal(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadSeasonal(path)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, out, in)
	testutil.AssertEqual(t, out.Count, 2)
	testutil.AssertEqual(t, out.Label(), "2026 봄")

	// Null MAL fields stay null in the file.
	if raw := string(testutil.ReadFile(t, path)); !strings.Contains(raw, `"mal_rank": null`) {
		t.Errorf("mal_rank must be encoded as null:\n%s", raw)
	}
}

func TestReadSeasonalDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), SeasonalFile)
	testutil.WriteFile(t, path, []byte(`{"anime": []}`))
	s, err := ReadSeasonal(path)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, s.Season, Winter)
	testutil.AssertEqual(t, s.SeasonYear, 2026)
}

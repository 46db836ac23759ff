// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/cli"
	"go.geekbrox.name/autoblog/internal/cli/clitest"
	"go.geekbrox.name/autoblog/internal/testutil"
)

const seasonalResponse = `{"data": {"Page": {"media": [
	{
		"id": 154587, "idMal": 52991,
		"title": {"romaji": "Sousou no Frieren", "english": "Frieren: Beyond Journey's End", "native": "葬送のフリーレン"},
		"synonyms": ["장송의 프리렌"],
		"description": "An elf mage.",
		"genres": ["Adventure", "Fantasy"],
		"averageScore": 91,
		"coverImage": {"extraLarge": "https://img/xl.jpg"}
	},
	{
		"id": 2, "idMal": 404,
		"title": {"romaji": "Missing On MAL"},
		"synonyms": [], "genres": [], "coverImage": {}
	},
	{
		"id": 3, "idMal": null,
		"title": {"romaji": "No MAL ID"},
		"synonyms": [], "genres": [], "coverImage": {}
	}
]}}}`

func testFetcher(t *testing.T) *fetcher {
	t.Helper()
	anilistSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, seasonalResponse)
	}))
	t.Cleanup(anilistSrv.Close)
	malSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/anime/52991" {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		io.WriteString(w, `{"id":52991,"mean":9.3,"rank":1,"popularity":120,"num_list_users":1000000,"status":"finished_airing","num_episodes":28}`)
	}))
	t.Cleanup(malSrv.Close)

	return &fetcher{
		now:         func() time.Time { return time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC) },
		anilistURL:  anilistSrv.URL,
		malURL:      malSrv.URL,
		malInterval: time.Millisecond,
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	clitest.Run(t, testFetcher, map[string]clitest.Case[*fetcher]{
		"no MAL client": {
			Args:         []string{"-dir", filepath.Join(dir, "a")},
			WantInStdout: "총 3편",
			WantInStderr: "MAL_CLIENT_ID 없음",
			CheckFunc: func(t *testing.T, _ *fetcher) {
				s, err := anime.ReadSeasonal(filepath.Join(dir, "a", "seasonal_top_anime.json"))
				if err != nil {
					t.Fatal(err)
				}
				testutil.AssertEqual(t, s.Season, anime.Winter)
				testutil.AssertEqual(t, s.SeasonYear, 2026)
				testutil.AssertEqual(t, s.Count, 3)
				testutil.AssertEqual(t, s.FetchedAt, "2026-01-10T09:00:00")
				testutil.AssertEqual(t, s.Anime[0].TitleKorean, "장송의 프리렌")
				if s.Anime[0].MALScore != nil {
					t.Error("MAL data merged without a client id")
				}
			},
		},
		"MAL merge": {
			Args:         []string{"-dir", filepath.Join(dir, "b")},
			Env:          map[string]string{"MAL_CLIENT_ID": "id"},
			WantInStderr: "MAL 9.30/10, 순위 #1",
			CheckFunc: func(t *testing.T, _ *fetcher) {
				s, err := anime.ReadSeasonal(filepath.Join(dir, "b", "seasonal_top_anime.json"))
				if err != nil {
					t.Fatal(err)
				}
				if s.Anime[0].MALScore == nil || *s.Anime[0].MALScore != 9.3 {
					t.Errorf("MAL score not merged: %v", s.Anime[0].MALScore)
				}
				testutil.AssertEqual(t, s.Anime[0].MALStatus, "finished_airing")
				testutil.AssertEqual(t, s.Anime[1].MALScore, (*float64)(nil))
			},
		},
		"data directory from environment": {
			Env:          map[string]string{"AUTOBLOG_DIR": filepath.Join(dir, "c")},
			WantInStdout: filepath.Join(dir, "c", "seasonal_top_anime.json"),
		},
		"verbose": {
			Args:         []string{"-dir", filepath.Join(dir, "d"), "-v"},
			WantInStderr: "+ POST",
		},
		"bad count": {
			Args:    []string{"-n", "0"},
			WantErr: cli.ErrInvalidArgs,
		},
		"extra arguments": {
			Args:    []string{"now"},
			WantErr: cli.ErrInvalidArgs,
		},
	})
}

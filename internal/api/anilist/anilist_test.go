// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package anilist

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/testutil"
)

func testServer(t *testing.T, response string, check func(*testing.T, graphQLRequest)) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Error(err)
		}
		var req graphQLRequest
		if err := json.Unmarshal(b, &req); err != nil {
			t.Error(err)
		}
		if check != nil {
			check(t, req)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, response)
	}))
	t.Cleanup(ts.Close)
	return &Client{URL: ts.URL, HTTPClient: ts.Client()}
}

func TestSeasonal(t *testing.T) {
	t.Parallel()

	c := testServer(t, `{"data": {"Page": {"media": [
		{
			"id": 154587, "idMal": 52991,
			"title": {"romaji": "Sousou no Frieren", "english": "Frieren: Beyond Journey's End", "native": "葬送のフリーレン"},
			"synonyms": ["Frieren at the Funeral", "장송의 프리렌"],
			"description": "An elf <i>mage</i>.<br>",
			"genres": ["Adventure", "Fantasy"],
			"averageScore": 91,
			"coverImage": {"extraLarge": "", "large": "https://img/large.jpg", "medium": "https://img/medium.jpg"}
		},
		{
			"id": 2, "idMal": null,
			"title": {"romaji": "Romaji Only", "english": null, "native": null},
			"synonyms": [], "description": null, "genres": null, "averageScore": null,
			"coverImage": {}
		}
	]}}}`, func(t *testing.T, req graphQLRequest) {
		if req.Variables["season"] != "WINTER" || req.Variables["perPage"] != float64(10) || req.Variables["seasonYear"] != float64(2026) {
			t.Errorf("unexpected variables: %v", req.Variables)
		}
		if !strings.Contains(req.Query, "POPULARITY_DESC") {
			t.Error("query must sort by popularity")
		}
	})

	got, err := c.Seasonal(t.Context(), anime.Winter, 2026, 10)
	if err != nil {
		t.Fatal(err)
	}
	malID, score := 52991, 91
	testutil.AssertEqual(t, got, []anime.Record{
		{
			AniListID:     154587,
			MALID:         &malID,
			TitleKorean:   "장송의 프리렌",
			TitleEnglish:  "Frieren: Beyond Journey's End",
			TitleNative:   "葬送のフリーレン",
			Genres:        []string{"Adventure", "Fantasy"},
			Synopsis:      "An elf mage.",
			AverageScore:  &score,
			CoverImageURL: "https://img/large.jpg",
		},
		{
			AniListID:    2,
			TitleEnglish: "Romaji Only",
			Genres:       []string{},
		},
	})
}

func TestSeasonalErrors(t *testing.T) {
	t.Parallel()

	t.Run("graphql errors", func(t *testing.T) {
		c := testServer(t, `{"errors": [{"message": "Invalid season"}, {"message": "Rate limited"}]}`, nil)
		_, err := c.Seasonal(t.Context(), anime.Winter, 2026, 10)
		if err == nil || !strings.Contains(err.Error(), "Invalid season; Rate limited") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("no page", func(t *testing.T) {
		c := testServer(t, `{"data": {}}`, nil)
		_, err := c.Seasonal(t.Context(), anime.Winter, 2026, 10)
		if !errors.Is(err, ErrNoPage) {
			t.Fatalf("want ErrNoPage, got %v", err)
		}
	})
}

func TestDetail(t *testing.T) {
	t.Parallel()

	c := testServer(t, `{"data": {"Media": {
		"studios": {"nodes": [{"name": "Madhouse"}]},
		"staff": {"nodes": [{"name": {"full": "Keiichirou Saitou"}, "primaryOccupations": ["Director", "Storyboard", "Animator"]}]},
		"characters": {
			"nodes": [{"name": {"full": "Frieren", "native": "フリーレン"}, "image": {"medium": "https://img/f.jpg"}}, {"name": {"full": "Fern"}}],
			"edges": [{"role": "MAIN", "voiceActors": [{"name": {"full": "Atsumi Tanezaki"}}]}, {"role": "MAIN", "voiceActors": []}]
		},
		"relations": {"nodes": [{"title": {"romaji": "Sousou no Frieren (manga)"}, "format": "MANGA"}], "edges": [{"relationType": "SOURCE"}]},
		"recommendations": {"nodes": [{"mediaRecommendation": {"title": {"romaji": "Mushishi"}, "averageScore": 86}}, {"mediaRecommendation": null}]},
		"tags": [
			{"name": "Elf", "rank": 95, "isMediaSpoiler": false},
			{"name": "Death", "rank": 90, "isMediaSpoiler": true},
			{"name": "Travel", "rank": 59, "isMediaSpoiler": false},
			{"name": "Magic", "rank": 60, "isMediaSpoiler": false}
		],
		"trailer": {"id": "qgQNyQ4TvEA", "site": "youtube"},
		"externalLinks": [{"site": "Crunchyroll", "url": "https://cr/frieren"}, {"site": "Twitter", "url": "https://x/frieren"}]
	}}}`, nil)

	got, err := c.Detail(t.Context(), 154587)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, &Detail{
		Studios: []string{"Madhouse"},
		Staff:   []Staff{{Name: "Keiichirou Saitou", Role: "Director, Storyboard"}},
		Characters: []Character{
			{Name: "Frieren", NameNative: "フリーレン", Role: "MAIN", VoiceActor: "Atsumi Tanezaki", Image: "https://img/f.jpg"},
			{Name: "Fern", Role: "MAIN"},
		},
		Relations:       []Relation{{Title: "Sousou no Frieren (manga)", Relation: "SOURCE", Format: "MANGA"}},
		Recommendations: []Recommendation{{Title: "Mushishi", Score: 86}},
		Tags:            []string{"Elf", "Magic"},
		TrailerURL:      "https://www.youtube.com/watch?v=qgQNyQ4TvEA",
		Streaming:       map[string]string{"Crunchyroll": "https://cr/frieren"},
	})
}

func TestDetailMissingMedia(t *testing.T) {
	t.Parallel()

	c := testServer(t, `{"data": {"Media": null}}`, nil)
	got, err := c.Detail(t.Context(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("want nil detail, got %+v", got)
	}
}

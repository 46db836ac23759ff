// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tmdb

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "key" || r.URL.Query().Get("language") != "ko-KR" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/search/tv":
			q := r.URL.Query().Get("query")
			queries = append(queries, q)
			if q == "葬送のフリーレン" {
				io.WriteString(w, `{"results": [{"id": 209867}, {"id": 1}]}`)
				return
			}
			io.WriteString(w, `{"results": []}`)
		case "/tv/209867":
			if r.URL.Query().Get("append_to_response") != "images,videos" {
				t.Errorf("missing append_to_response")
			}
			io.WriteString(w, `{
				"overview": "마왕을 쓰러뜨린 용사 일행의 마법사 프리렌.",
				"vote_average": 8.8, "vote_count": 512, "first_air_date": "2023-09-29",
				"poster_path": "/p0.jpg",
				"networks": [{"name": "Nippon TV"}],
				"images": {
					"posters": [{"file_path": "/p1.jpg"}, {"file_path": ""}, {"file_path": "/p2.jpg"}, {"file_path": "/p3.jpg"}, {"file_path": "/p4.jpg"}, {"file_path": "/p5.jpg"}],
					"backdrops": [{"file_path": "/b1.jpg"}, {"file_path": "/b2.jpg"}]
				},
				"videos": {"results": [
					{"key": "a", "name": "Clip", "site": "YouTube", "type": "Clip"},
					{"key": "b", "name": "PV", "site": "YouTube", "type": "Trailer"},
					{"key": "c", "name": "Teaser", "site": "Vimeo", "type": "Teaser"},
					{"key": "d", "name": "PV2", "site": "YouTube", "type": "Trailer"},
					{"key": "e", "name": "PV3", "site": "YouTube", "type": "Trailer"}
				]}
			}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	c := &Client{APIKey: "key", BaseURL: ts.URL, HTTPClient: ts.Client()}
	got, err := c.Lookup(t.Context(), t.Logf, "Frieren", "", "葬送のフリーレン")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, queries, []string{"Frieren", "葬送のフリーレン"})
	testutil.AssertEqual(t, got, &Show{
		ID:            209867,
		Overview:      "마왕을 쓰러뜨린 용사 일행의 마법사 프리렌.",
		VoteAverage:   8.8,
		VoteCount:     512,
		FirstAirDate:  "2023-09-29",
		Networks:      []string{"Nippon TV"},
		PosterPath:    "/p0.jpg",
		PosterPaths:   []string{"/p1.jpg", "/p2.jpg", "/p3.jpg", "/p4.jpg"},
		BackdropPaths: []string{"/b1.jpg", "/b2.jpg"},
		Trailers: []Trailer{
			{Key: "b", Name: "PV", Site: "YouTube"},
			{Key: "c", Name: "Teaser", Site: "Vimeo"},
			{Key: "d", Name: "PV2", Site: "YouTube"},
		},
	})
	testutil.AssertEqual(t, got.YouTubeURL(), "https://www.youtube.com/watch?v=b")
}

func TestLookupNoKey(t *testing.T) {
	t.Parallel()

	got, err := (&Client{}).Lookup(t.Context(), t.Logf, "Frieren")
	if err != nil || got != nil {
		t.Fatalf("want nil, nil; got %v, %v", got, err)
	}
}

func TestLookupErrorsAreSkipped(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "api_key=key is invalid", http.StatusUnauthorized)
	}))
	t.Cleanup(ts.Close)

	var logged []string
	logf := func(format string, args ...any) { logged = append(logged, format) }

	c := &Client{APIKey: "key", BaseURL: ts.URL}
	got, err := c.Lookup(t.Context(), logf, "Frieren")
	if err != nil || got != nil {
		t.Fatalf("want nil, nil; got %v, %v", got, err)
	}
	if len(logged) != 1 || !strings.HasPrefix(logged[0], "TMDB 검색 실패") {
		t.Fatalf("unexpected log: %v", logged)
	}
}

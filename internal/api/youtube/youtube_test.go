// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package youtube

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestTrailers(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		testutil.AssertEqual(t, q.Get("q"), "Frieren official trailer PV")
		testutil.AssertEqual(t, q.Get("videoDuration"), "short")
		testutil.AssertEqual(t, q.Get("maxResults"), "3")
		io.WriteString(w, `{"items": [
			{"id": {"videoId": "qgQNyQ4TvEA"}, "snippet": {"title": "Frieren PV", "channelTitle": "TOHO animation", "thumbnails": {"high": {"url": "https://i.ytimg.com/hq.jpg"}}}},
			{"id": {"channelId": "UC123"}, "snippet": {"title": "A channel"}}
		]}`)
	}))
	t.Cleanup(ts.Close)

	c := &Client{APIKey: "key", URL: ts.URL, HTTPClient: ts.Client()}
	got, err := c.Trailers(t.Context(), "Frieren", "葬送のフリーレン")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, []Video{{
		VideoID:   "qgQNyQ4TvEA",
		Title:     "Frieren PV",
		Channel:   "TOHO animation",
		URL:       "https://www.youtube.com/watch?v=qgQNyQ4TvEA",
		Thumbnail: "https://i.ytimg.com/hq.jpg",
	}})
}

func TestTrailersNoKey(t *testing.T) {
	t.Parallel()

	got, err := (&Client{}).Trailers(t.Context(), "Frieren", "")
	if err != nil || got != nil {
		t.Fatalf("want nil, nil; got %v, %v", got, err)
	}
}

func TestTrailersNativeQuery(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Query().Get("q"), "葬送のフリーレン PV 公式")
		io.WriteString(w, `{"items": []}`)
	}))
	t.Cleanup(ts.Close)

	c := &Client{APIKey: "key", URL: ts.URL, HTTPClient: ts.Client()}
	got, err := c.Trailers(t.Context(), "", "葬送のフリーレン")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, len(got), 0)
}

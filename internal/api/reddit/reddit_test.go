// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package reddit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestDiscussions(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("가", 400)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Header.Get("User-Agent"), UserAgent)
		testutil.AssertEqual(t, r.URL.Query().Get("restrict_sr"), "1")
		io.WriteString(w, `{"data": {"children": [
			{"data": {"title": "Frieren Episode 1 Discussion", "score": 5400, "permalink": "/r/anime/comments/a/", "num_comments": 900, "selftext": "`+long+`"}},
			{"data": {"title": "Low effort", "score": 40, "permalink": "/r/anime/comments/b/"}},
			{"data": {"title": "Rewatch", "score": 100, "permalink": "/r/anime/comments/c/", "num_comments": 12}},
			{"data": {"title": "Fourth is ignored", "score": 9000, "permalink": "/r/anime/comments/d/"}}
		]}}`)
	}))
	t.Cleanup(ts.Close)

	c := &Client{URL: ts.URL, HTTPClient: ts.Client()}
	got, err := c.Discussions(t.Context(), "Frieren")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, []Post{
		{Title: "Frieren Episode 1 Discussion", Score: 5400, URL: "https://reddit.com/r/anime/comments/a/", NumComments: 900, Selftext: strings.Repeat("가", 300)},
		{Title: "Rewatch", Score: 100, URL: "https://reddit.com/r/anime/comments/c/", NumComments: 12},
	})
}

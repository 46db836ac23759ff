// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package blogfeed

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.geekbrox.name/autoblog/internal/testutil"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>geekbrox</title>
	<link>https://geekbrox.tistory.com/</link>
	<item>
		<title>[2026 겨울 애니] 장송의 프리렌 - 정보 &amp; 리뷰</title>
		<link>https://geekbrox.tistory.com/12</link>
	</item>
	<item>
		<title> </title>
		<link>https://geekbrox.tistory.com/11</link>
	</item>
	<item>
		<title>[2026 겨울 애니] 약사의 혼잣말 - 정보 &amp; 리뷰</title>
		<link>https://geekbrox.tistory.com/10</link>
	</item>
</channel>
</rss>`

func newReader(t *testing.T, status int) *Reader {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		io.WriteString(w, rss)
	}))
	t.Cleanup(ts.Close)
	return &Reader{URL: ts.URL + "/rss", HTTPClient: ts.Client()}
}

func TestFeedURL(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, (&Reader{Blog: "geekbrox"}).FeedURL(), "https://geekbrox.tistory.com/rss")
	testutil.AssertEqual(t, (&Reader{Blog: "geekbrox", URL: "http://localhost/rss"}).FeedURL(), "http://localhost/rss")
}

func TestTitles(t *testing.T) {
	t.Parallel()

	got, err := newReader(t, http.StatusOK).Titles(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, []string{
		"[2026 겨울 애니] 장송의 프리렌 - 정보 & 리뷰",
		"[2026 겨울 애니] 약사의 혼잣말 - 정보 & 리뷰",
	})
}

func TestHas(t *testing.T) {
	t.Parallel()

	r := newReader(t, http.StatusOK)
	for _, tc := range []struct {
		title string
		want  bool
	}{
		{"[2026 겨울 애니] 장송의 프리렌 - 정보 & 리뷰 ", true},
		{"[2026 겨울 애니] 던전밥 - 정보 & 리뷰", false},
	} {
		got, err := r.Has(t.Context(), tc.title)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, got, tc.want)
	}
}

func TestTitlesError(t *testing.T) {
	t.Parallel()

	if _, err := newReader(t, http.StatusInternalServerError).Titles(t.Context()); err == nil {
		t.Fatal("want error")
	}
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package request_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.geekbrox.name/autoblog/internal/request"
	"go.geekbrox.name/autoblog/internal/store"
	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestCacheTransport(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/fail" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		b, _ := io.ReadAll(r.Body)
		io.WriteString(w, `{"echo": "`+string(b)+r.URL.Query().Get("q")+`"}`)
	}))
	t.Cleanup(ts.Close)

	httpc := &http.Client{Transport: &request.CacheTransport{
		Cache: store.NewMemStore(t.Context(), time.Hour),
		Base:  ts.Client().Transport,
	}}

	type echo struct {
		Echo string `json:"echo"`
	}
	get := func(q string) string {
		t.Helper()
		resp, err := request.Make[echo](t.Context(), request.Params{
			URL:        ts.URL + "/?q=" + q,
			HTTPClient: httpc,
		})
		if err != nil {
			t.Fatal(err)
		}
		return resp.Echo
	}

	testutil.AssertEqual(t, get("a"), "a")
	testutil.AssertEqual(t, get("a"), "a")
	testutil.AssertEqual(t, hits.Load(), int32(1))

	testutil.AssertEqual(t, get("b"), "b")
	testutil.AssertEqual(t, hits.Load(), int32(2))

	post := func() string {
		t.Helper()
		resp, err := request.Make[echo](t.Context(), request.Params{
			Method:     http.MethodPost,
			URL:        ts.URL + "/",
			Body:       1,
			HTTPClient: httpc,
		})
		if err != nil {
			t.Fatal(err)
		}
		return resp.Echo
	}
	testutil.AssertEqual(t, post(), "1")
	testutil.AssertEqual(t, post(), "1")
	testutil.AssertEqual(t, hits.Load(), int32(3))

	for range 2 {
		if _, err := request.Bytes(t.Context(), request.Params{URL: ts.URL + "/fail", HTTPClient: httpc}); err == nil {
			t.Fatal("want error")
		}
	}
	testutil.AssertEqual(t, hits.Load(), int32(5))
}

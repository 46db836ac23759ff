// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package request_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/request"
	"go.geekbrox.name/autoblog/internal/testutil"
)

func TestMake(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/test":
			if r.Method != http.MethodPost || r.Body == nil {
				http.Error(w, "invalid request", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message": "success"}`))
		case "/query":
			w.Write([]byte(`"` + r.URL.Query().Get("q") + `"`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)

	cases := map[string]struct {
		params  request.Params
		want    string
		wantErr bool
	}{
		"successful request": {
			params: request.Params{
				Method: http.MethodPost,
				URL:    ts.URL + "/test",
				Body:   map[string]string{"key": "value"},
			},
			want: `{"message": "success"}`,
		},
		"custom HTTP client with headers": {
			params: request.Params{
				Method:     http.MethodPost,
				URL:        ts.URL + "/test",
				Headers:    map[string]string{"X-Test": "test"},
				HTTPClient: &http.Client{},
				Body:       map[string]string{"key": "value"},
			},
			want: `{"message": "success"}`,
		},
		"query string": {
			params: request.Params{
				URL:   ts.URL + "/query",
				Query: url.Values{"q": {"프리렌"}},
			},
			want: `"프리렌"`,
		},
		"invalid request method": {
			params: request.Params{
				Method: http.MethodGet,
				URL:    ts.URL + "/test",
			},
			wantErr: true,
		},
		"invalid value for JSON": {
			params: request.Params{
				Method: http.MethodPost,
				URL:    ts.URL + "/test",
				Body:   make(chan int),
			},
			wantErr: true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := request.Make[json.RawMessage](context.Background(), tc.params)
			if err != nil {
				if !tc.wantErr {
					t.Errorf("Make() error = %v, wantErr %v", err, tc.wantErr)
				}
				return
			}
			if tc.wantErr {
				t.Errorf("Make() expected error, got none")
			} else if string(resp) != tc.want {
				t.Errorf("Make() got = %s, want %v", resp, tc.want)
			}
		})
	}
}

func TestStatusErrorScrubbed(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"parameters":{"retry_after":3}}`))
	}))
	t.Cleanup(ts.Close)

	_, err := request.Make[request.IgnoreResponse](context.Background(), request.Params{
		Method:   http.MethodPost,
		URL:      ts.URL + "/botsecret/sendMessage",
		Scrubber: strings.NewReplacer("secret", "[EXPUNGED]"),
	})
	if err == nil {
		t.Fatal("want error")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("token leaked into error: %v", err)
	}

	var se *request.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("want *request.StatusError, got %T", err)
	}
	testutil.AssertEqual(t, se.StatusCode, http.StatusTooManyRequests)
	testutil.AssertEqual(t, string(se.Body), `{"parameters":{"retry_after":3}}`)
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tistory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.geekbrox.name/autoblog/internal/api/telegram"
	"go.geekbrox.name/autoblog/internal/testutil"
)

// fakeBot serves getUpdates from a queue of canned responses and records
// everything else that is sent.
type fakeBot struct {
	mu      sync.Mutex
	updates []string
	offsets []float64
	sent    []string
}

func (f *fakeBot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	var args map[string]any
	json.NewDecoder(r.Body).Decode(&args)

	f.mu.Lock()
	defer f.mu.Unlock()
	switch method {
	case "getUpdates":
		f.offsets = append(f.offsets, args["offset"].(float64))
		result := "[]"
		if len(f.updates) > 0 {
			result, f.updates = f.updates[0], f.updates[1:]
		}
		io.WriteString(w, `{"ok": true, "result": `+result+`}`)
	default:
		f.sent = append(f.sent, args["text"].(string))
		io.WriteString(w, `{"ok": true, "result": {"message_id": 1}}`)
	}
}

func newConfirmer(t *testing.T, f *fakeBot) *Confirmer {
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	return &Confirmer{
		Telegram:     telegram.New(telegram.Config{Token: "secret", ChatID: "42", URL: ts.URL, HTTPClient: ts.Client()}),
		Logf:         t.Logf,
		PollTimeout:  time.Millisecond,
		PollInterval: time.Millisecond,
	}
}

func TestWaitKeyword(t *testing.T) {
	t.Parallel()

	f := &fakeBot{updates: []string{
		`[{"update_id": 5, "message": {"chat": {"id": 42}, "text": "포스팅"}}]`,
		`[
			{"update_id": 6, "message": {"chat": {"id": 99}, "text": "포스팅"}},
			{"update_id": 7, "message": {"chat": {"id": 42}, "text": "아직"}}
		]`,
		`[{"update_id": 8, "message": {"chat": {"id": 42}, "text": " 네 포스팅 해주세요 "}}]`,
	}}
	c := newConfirmer(t, f)

	ok, err := c.WaitKeyword(t.Context(), "포스팅", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, f.offsets, []float64{0, 6, 8})
	testutil.AssertEqual(t, f.sent, []string{"✅ '포스팅' 수신했습니다. 진행합니다."})
}

func TestWaitKeywordTimeout(t *testing.T) {
	t.Parallel()

	f := &fakeBot{}
	c := newConfirmer(t, f)

	ok, err := c.WaitKeyword(t.Context(), "인증완료", 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, ok, false)
	testutil.AssertEqual(t, len(f.sent), 0)
}

func TestWaitKeywordCanceled(t *testing.T) {
	t.Parallel()

	c := newConfirmer(t, &fakeBot{})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := c.WaitKeyword(ctx, "인증완료", time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestWaitKeywordStdin(t *testing.T) {
	t.Parallel()

	c := &Confirmer{Stdin: strings.NewReader("\n"), Logf: t.Logf}
	ok, err := c.WaitKeyword(t.Context(), "포스팅", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, ok, true)

	c = &Confirmer{Telegram: telegram.New(telegram.Config{}), Logf: t.Logf}
	if _, err := c.WaitKeyword(t.Context(), "포스팅", time.Minute); err == nil {
		t.Fatal("want error without Telegram and stdin")
	}
}

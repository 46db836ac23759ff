// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker/v2"

	"go.geekbrox.name/autoblog/internal/api/anthropic"
	"go.geekbrox.name/autoblog/internal/testutil"
)

func static(text string, err error) GeneratorFunc {
	return func(context.Context, string) (string, error) { return text, err }
}

func TestFallback(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		primary   Generator
		want      string
		wantErr   string
		secondary bool
	}{
		"primary succeeds": {
			primary: static("claude", nil),
			want:    "claude",
		},
		"not configured": {
			primary:   static("", ErrNotConfigured),
			want:      "gemini",
			secondary: true,
		},
		"rate limited": {
			primary:   static("", errors.New(`POST "https://api.anthropic.com/v1/messages": want 200, got 429`)),
			want:      "gemini",
			secondary: true,
		},
		"overloaded": {
			primary:   static("", errors.New("Overloaded")),
			want:      "gemini",
			secondary: true,
		},
		"breaker open": {
			primary:   static("", gobreaker.ErrOpenState),
			want:      "gemini",
			secondary: true,
		},
		"other error": {
			primary: static("", errors.New("Claude API 호출 실패: invalid x-api-key")),
			wantErr: "invalid x-api-key",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var used bool
			f := &Fallback{
				Primary: tc.primary,
				Secondary: GeneratorFunc(func(context.Context, string) (string, error) {
					used = true
					return "gemini", nil
				}),
			}
			got, err := f.Generate(t.Context(), "prompt")
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("want error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, got, tc.want)
			testutil.AssertEqual(t, used, tc.secondary)
		})
	}
}

func TestIsRateLimit(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, IsRateLimit(nil), false)
	testutil.AssertEqual(t, IsRateLimit(errors.New("rate_limit_error")), true)
	testutil.AssertEqual(t, IsRateLimit(errors.New("Too Many Requests")), true)
	testutil.AssertEqual(t, IsRateLimit(errors.New("invalid request")), false)
}

func TestClaude(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	fail := atomic.Bool{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail.Load() {
			http.Error(w, `{"error": {"type": "api_error"}}`, http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"content": [{"type": "text", "text": "본문"}]}`)
	}))
	t.Cleanup(ts.Close)

	c := NewClaude(&anthropic.Client{APIKey: "key", URL: ts.URL, HTTPClient: ts.Client()}, t.Logf)

	got, err := c.Generate(t.Context(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, "본문")

	fail.Store(true)
	for range 3 {
		_, err := c.Generate(t.Context(), "prompt")
		if err == nil || !strings.HasPrefix(err.Error(), "Claude API 호출 실패: ") {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	testutil.AssertEqual(t, calls.Load(), int32(4))

	_, err = c.Generate(t.Context(), "prompt")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("want open breaker, got %v", err)
	}
	testutil.AssertEqual(t, calls.Load(), int32(4))
}

func TestClaudeNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewClaude(&anthropic.Client{}, nil).Generate(t.Context(), "prompt")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}

func TestGeminiNoKey(t *testing.T) {
	t.Parallel()

	_, err := (&Gemini{}).Generate(t.Context(), "prompt")
	if err == nil || !strings.HasPrefix(err.Error(), "GOOGLE_API_KEY 환경변수가 없습니다.") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResponseText(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("# 제목\n"), genai.Text("본문")}}},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
	}}
	testutil.AssertEqual(t, responseText(resp), "# 제목\n본문")
	testutil.AssertEqual(t, responseText(nil), "")
}

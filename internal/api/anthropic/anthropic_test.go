// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package anthropic

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.geekbrox.name/autoblog/internal/request"
)

func TestMessages(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, Version, r.Header.Get("anthropic-version"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 8192, req.MaxTokens)
		assert.Equal(t, "user", req.Messages[0].Role)

		io.WriteString(w, `{"id": "msg_1", "content": [{"type": "text", "text": "# 안녕"}], "usage": {"input_tokens": 3, "output_tokens": 5}}`)
	}))
	t.Cleanup(ts.Close)

	c := &Client{APIKey: "key", URL: ts.URL, HTTPClient: ts.Client()}
	resp, err := c.Messages(t.Context(), Request{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 8192,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "# 안녕", text)
	assert.Equal(t, 5, resp.Usage.OutputTokens)
}

func TestMessagesError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"type": "error", "error": {"type": "rate_limit_error", "message": "key is rate limited"}}`)
	}))
	t.Cleanup(ts.Close)

	c := &Client{APIKey: "key", URL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.Messages(t.Context(), Request{})
	var statusErr *request.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "rate_limit_error")
}

func TestMessagesNoKey(t *testing.T) {
	t.Parallel()

	_, err := (&Client{}).Messages(t.Context(), Request{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestTextNonTextBlock(t *testing.T) {
	t.Parallel()

	r := &Response{Content: []Block{{Type: "tool_use"}}}
	_, err := r.Text()
	assert.ErrorIs(t, err, ErrNoText)
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package anthropic calls the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.geekbrox.name/autoblog/internal/request"
)

const (
	// DefaultURL is the API base URL.
	DefaultURL = "https://api.anthropic.com"
	// Version is the value of the anthropic-version header.
	Version = "2023-06-01"
)

var (
	// ErrNoAPIKey is returned when the client has no API key.
	ErrNoAPIKey = errors.New("anthropic: API key is not set")
	// ErrNoText is returned when the first content block of a response is
	// not text.
	ErrNoText = errors.New("anthropic: response has no text content")
)

// Client is an Anthropic API client.
type Client struct {
	APIKey     string
	URL        string
	HTTPClient *http.Client
}

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a Messages API request.
type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// Response is a Messages API response.
type Response struct {
	ID         string  `json:"id"`
	Model      string  `json:"model"`
	StopReason string  `json:"stop_reason"`
	Content    []Block `json:"content"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Block is a content block.
type Block struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Text returns the text of the first content block.
func (r *Response) Text() (string, error) {
	if len(r.Content) == 0 || r.Content[0].Type != "text" {
		return "", ErrNoText
	}
	return r.Content[0].Text, nil
}

// Messages sends req and returns the model response.
func (c *Client) Messages(ctx context.Context, req Request) (*Response, error) {
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	u := c.URL
	if u == "" {
		u = DefaultURL
	}
	resp, err := request.Make[Response](ctx, request.Params{
		Method: http.MethodPost,
		URL:    u + "/v1/messages",
		Headers: map[string]string{
			"x-api-key":         c.APIKey,
			"anthropic-version": Version,
		},
		Body:       req,
		HTTPClient: c.HTTPClient,
		Scrubber:   strings.NewReplacer(c.APIKey, "[EXPUNGED]"),
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

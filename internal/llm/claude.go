// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"go.geekbrox.name/autoblog/internal/api/anthropic"
	"go.geekbrox.name/autoblog/internal/logger"
)

// ClaudeModel is the model used by Claude.
const ClaudeModel = "claude-sonnet-4-5-20250929"

// Claude generates text with the Anthropic Messages API. Calls go through a
// circuit breaker that opens after three consecutive failures.
type Claude struct {
	client *anthropic.Client
	cb     *gobreaker.CircuitBreaker[string]
}

// NewClaude returns a Claude generator. logf receives breaker state changes
// and may be nil.
func NewClaude(client *anthropic.Client, logf logger.Logf) *Claude {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Claude{
		client: client,
		cb: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        "claude",
			MaxRequests: 1,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				// Missing credentials and cancellations are not failures.
				return err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logf("circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// Generate implements Generator.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	if c.client == nil || c.client.APIKey == "" {
		return "", ErrNotConfigured
	}
	text, err := c.cb.Execute(func() (string, error) {
		resp, err := c.client.Messages(ctx, anthropic.Request{
			Model:     ClaudeModel,
			MaxTokens: MaxTokens,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
		if err != nil {
			return "", err
		}
		return resp.Text()
	})
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "", err
	}
	return "", wrap("Claude API 호출 실패", err)
}

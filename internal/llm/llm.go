// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package llm generates text with a primary language model and falls back to
// a secondary one when the primary is unavailable.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sony/gobreaker/v2"

	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/metrics"
)

// MaxTokens is the output token limit used for every generation.
const MaxTokens = 8192

// ErrNotConfigured is returned by a Generator that lacks credentials.
var ErrNotConfigured = errors.New("llm: not configured")

// Generator generates text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Fallback tries Primary first and switches to Secondary when Primary is not
// configured, is rate limited or its circuit breaker is open. Other Primary
// errors are returned as is.
type Fallback struct {
	Primary   Generator
	Secondary Generator
	Logf      logger.Logf
}

// Generate implements Generator.
func (f *Fallback) Generate(ctx context.Context, prompt string) (string, error) {
	logf := f.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	text, err := f.Primary.Generate(ctx, prompt)
	metrics.ObserveLLM("claude", err)
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, ErrNotConfigured):
		logf("⚠️  ANTHROPIC_API_KEY 없음 → Gemini fallback으로 전환합니다.")
	case IsRateLimit(err), errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		logf("⚠️  Claude rate limit → Gemini fallback으로 전환합니다.")
	default:
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	logf("🤖 Gemini 2.5 Flash 호출 중...")
	text, err = f.Secondary.Generate(ctx, prompt)
	metrics.ObserveLLM("gemini", err)
	if err != nil {
		return "", err
	}
	logf("✅ Gemini fallback 성공")
	return text, nil
}

var rateLimitMarkers = []string{"rate_limit", "rate limit", "429", "too many requests", "overloaded"}

// IsRateLimit reports whether err looks like a rate limit or overload error.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range rateLimitMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func wrap(prefix string, err error) error {
	return fmt.Errorf("%s: %w", prefix, err)
}

// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel is the model used by Gemini.
const GeminiModel = "gemini-2.5-flash"

var errNoGoogleKey = errors.New("GOOGLE_API_KEY 환경변수가 없습니다. .env에 추가하거나 Google AI Studio에서 발급하세요.\n발급: https://aistudio.google.com/apikey")

// Gemini generates text with the Gemini API.
type Gemini struct {
	APIKey string
	// Options are extra client options, such as an endpoint override.
	Options []option.ClientOption
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.APIKey == "" {
		return "", errNoGoogleKey
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(g.APIKey)}, g.Options...)...)
	if err != nil {
		return "", wrap("Gemini API 호출 실패", err)
	}
	defer client.Close()

	model := client.GenerativeModel(GeminiModel)
	model.SetMaxOutputTokens(MaxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrap("Gemini API 호출 실패", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", wrap("Gemini API 호출 실패", errors.New("empty response"))
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	return sb.String()
}

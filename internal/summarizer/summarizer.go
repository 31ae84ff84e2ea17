package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	temperature          = 0.7
	shortMaxOutputTokens = 1024
	// Detailed summaries of long videos need room; Gemini counts
	// reasoning tokens against this limit too.
	detailedMaxOutputTokens = 20000

	blockedSentinel = "Content was blocked by Gemini: %s"
	emptySentinel   = "No summary could be generated. The response was empty."
)

func (s *implSummarizer) Short(ctx context.Context, caption, lang string) (string, error) {
	prompt := fmt.Sprintf(shortPrompt, languageName(lang), caption)
	return s.generate(ctx, prompt, shortMaxOutputTokens)
}

func (s *implSummarizer) Detailed(ctx context.Context, caption, lang string) (string, error) {
	prompt := fmt.Sprintf(detailedPrompt, languageName(lang), caption)
	return s.generate(ctx, prompt, detailedMaxOutputTokens)
}

func (s *implSummarizer) generate(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return extractText(result), nil
}

// extractText normalizes a Gemini response into summary text. Safety
// blocks and empty responses map to human-readable sentinel strings
// rather than errors, so a degraded summary is still stored and the
// video completes.
func extractText(result *genai.GenerateContentResponse) string {
	if result == nil {
		return emptySentinel
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return fmt.Sprintf(blockedSentinel, result.PromptFeedback.BlockReason)
	}

	var sb strings.Builder
	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
		break
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return emptySentinel
	}
	return text
}

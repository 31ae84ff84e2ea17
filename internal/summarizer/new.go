package summarizer

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var ErrAPIKeyMissing = errors.New("summarizer: Gemini API key is not set")

type implSummarizer struct {
	client *genai.Client
	model  string
}

// New creates a Summarizer backed by an existing Gemini client. Tests
// and callers that manage client lifetime themselves go through here.
func New(client *genai.Client, model string) Summarizer {
	return &implSummarizer{
		client: client,
		model:  model,
	}
}

// NewFromAPIKey constructs the Gemini client from an API key and wraps
// it in a Summarizer. It fails fast on a missing key so misconfiguration
// surfaces at startup, not on the first video.
func NewFromAPIKey(ctx context.Context, apiKey, model string) (Summarizer, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return New(client, model), nil
}

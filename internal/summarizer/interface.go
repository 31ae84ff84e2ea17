package summarizer

import "context"

// Summarizer turns a video transcript into LLM-generated summaries.
// The two variants are generated independently so one failing does not
// take the other down with it.
type Summarizer interface {
	Short(ctx context.Context, caption, lang string) (string, error)
	Detailed(ctx context.Context, caption, lang string) (string, error)
}

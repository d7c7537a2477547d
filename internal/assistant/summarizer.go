package assistant

import (
	"context"
	"strings"

	"content-assistant/internal/llm"
)

// Summarizer produces one summary for a whole chunked text.
type Summarizer struct {
	llm llm.Completer
}

func NewSummarizer(c llm.Completer) *Summarizer {
	return &Summarizer{llm: c}
}

// Summarize sends every chunk in a single request, separated by blank lines.
// Completion failures are returned as *llm.ExternalServiceError and never retried.
func (s *Summarizer) Summarize(ctx context.Context, chunks []string) (string, error) {
	prompt := render(summaryTemplate, map[string]string{"text": strings.Join(chunks, "\n\n")})
	out, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", llm.AsExternal("llm", err)
	}
	return strings.TrimSpace(out), nil
}

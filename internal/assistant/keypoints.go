package assistant

import (
	"context"
	"strings"

	"content-assistant/internal/llm"
)

// KeyPointExtractor asks for the most important points of a chunked text.
type KeyPointExtractor struct {
	llm llm.Completer
}

func NewKeyPointExtractor(c llm.Completer) *KeyPointExtractor {
	return &KeyPointExtractor{llm: c}
}

// Extract returns one entry per non-empty response line. The prompt asks for
// five points but the count is not enforced.
func (e *KeyPointExtractor) Extract(ctx context.Context, chunks []string) ([]string, error) {
	prompt := render(keyPointsTemplate, map[string]string{"text": strings.Join(chunks, " ")})
	out, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, llm.AsExternal("llm", err)
	}
	return splitLines(out), nil
}

func splitLines(s string) []string {
	points := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			points = append(points, line)
		}
	}
	return points
}

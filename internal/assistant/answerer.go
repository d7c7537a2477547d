package assistant

import (
	"context"
	"strings"

	"content-assistant/internal/llm"
)

// Answerer answers a question using only caller-supplied context.
type Answerer struct {
	llm llm.Completer
}

func NewAnswerer(c llm.Completer) *Answerer {
	return &Answerer{llm: c}
}

// Answer returns the trimmed model response. An abstention is returned like
// any other answer.
func (a *Answerer) Answer(ctx context.Context, question, context string) (string, error) {
	prompt := render(answerTemplate, map[string]string{"context": context, "question": question})
	out, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", llm.AsExternal("llm", err)
	}
	return strings.TrimSpace(out), nil
}

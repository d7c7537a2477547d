package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

const providerCompatible = "compatible"

// LangChainClient talks to any OpenAI-compatible server (Ollama, vLLM, LocalAI)
// through langchaingo.
type LangChainClient struct {
	model   llms.Model
	timeout time.Duration
}

// NewLangChainClient connects to baseURL. Local servers usually ignore the
// token, so an empty one is replaced with "none".
func NewLangChainClient(baseURL, token, model string, timeout time.Duration) (*LangChainClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if model == "" {
		return nil, fmt.Errorf("model required")
	}
	if token == "" {
		token = "none"
	}
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	client, err := lcopenai.New(
		lcopenai.WithBaseURL(baseURL),
		lcopenai.WithToken(token),
		lcopenai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &LangChainClient{model: client, timeout: timeout}, nil
}

func (c *LangChainClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := llms.GenerateFromSinglePrompt(reqCtx, c.model, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", langchainError(reqCtx, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", AsExternal(providerCompatible, ErrEmptyResponse)
	}
	return out, nil
}

// langchainError maps langchaingo's error codes onto Kind. langchaingo does
// not wrap context errors, so an expired request context is checked directly.
func langchainError(ctx context.Context, err error) error {
	var lerr *llms.Error
	if errors.As(err, &lerr) {
		if kind, ok := kindForCode(lerr.Code); ok {
			return &ExternalServiceError{Provider: providerCompatible, Kind: kind, Err: err}
		}
	}
	if status, ok := statusFromMessage(err); ok {
		if kind := kindForStatus(status); kind != KindUnknown {
			return &ExternalServiceError{Provider: providerCompatible, Kind: kind, Err: err}
		}
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &ExternalServiceError{Provider: providerCompatible, Kind: KindTimeout, Err: err}
	case errors.Is(ctx.Err(), context.Canceled):
		return &ExternalServiceError{Provider: providerCompatible, Kind: KindCanceled, Err: err}
	}
	return AsExternal(providerCompatible, err)
}

func kindForCode(code llms.ErrorCode) (Kind, bool) {
	switch code {
	case llms.ErrCodeTimeout:
		return KindTimeout, true
	case llms.ErrCodeCanceled:
		return KindCanceled, true
	case llms.ErrCodeAuthentication:
		return KindAuth, true
	case llms.ErrCodeRateLimit, llms.ErrCodeQuotaExceeded:
		return KindQuota, true
	default:
		return "", false
	}
}

var statusPattern = regexp.MustCompile(`status code: (\d{3})`)

// statusFromMessage recovers the HTTP status that langchaingo's OpenAI client
// only reports inside the error text.
func statusFromMessage(err error) (int, bool) {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	status, err := strconv.Atoi(m[1])
	return status, err == nil
}

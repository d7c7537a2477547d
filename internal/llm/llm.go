package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Completer is the single entry point to a text-completion backend. It always
// returns plain text; provider response objects never leave the adapter.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Kind classifies why a completion call failed.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindCanceled    Kind = "canceled"
	KindNetwork     Kind = "network"
	KindAuth        Kind = "auth"
	KindQuota       Kind = "quota"
	KindMalformed   Kind = "malformed"
	KindUnavailable Kind = "unavailable"
	KindUnknown     Kind = "unknown"
)

// ErrEmptyResponse is returned when the provider answers without any content.
var ErrEmptyResponse = errors.New("completion response has no content")

// ExternalServiceError wraps any failure of the completion service.
type ExternalServiceError struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s completion failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// AsExternal converts err into an *ExternalServiceError, leaving errors that
// already are one untouched.
func AsExternal(provider string, err error) error {
	if err == nil {
		return nil
	}
	var ext *ExternalServiceError
	if errors.As(err, &ext) {
		return err
	}
	return &ExternalServiceError{Provider: provider, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrEmptyResponse):
		return KindMalformed
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindUnknown
}

// kindForStatus maps an HTTP status returned by a provider API.
func kindForStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindQuota
	case status == 408 || status == 504:
		return KindTimeout
	case status >= 500:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// Observer receives the outcome of each completion call.
type Observer interface {
	ObserveCompletion(provider string, outcome string, elapsed time.Duration)
}

// Instrumented reports every call made through c to obs.
func Instrumented(provider string, c Completer, obs Observer) Completer {
	if obs == nil {
		return c
	}
	return &instrumented{provider: provider, next: c, obs: obs}
}

type instrumented struct {
	provider string
	next     Completer
	obs      Observer
}

func (i *instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := i.next.Complete(ctx, prompt)
	outcome := "success"
	if err != nil {
		outcome = string(KindUnknown)
		var ext *ExternalServiceError
		if errors.As(err, &ext) {
			outcome = string(ext.Kind)
		}
	}
	i.obs.ObserveCompletion(i.provider, outcome, time.Since(start))
	return out, err
}

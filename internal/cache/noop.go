package cache

import (
	"context"
	"time"

	"content-assistant/internal/assistant"
)

// NoOpCache is used when CACHE_PROVIDER=none or Redis is unreachable.
// Every lookup is a miss.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetResult(context.Context, string) (*assistant.ProcessingResult, error) {
	return nil, nil
}

func (c *NoOpCache) SetResult(context.Context, string, *assistant.ProcessingResult, time.Duration) error {
	return nil
}

func (c *NoOpCache) Purge(context.Context) (int, error) { return 0, nil }

func (c *NoOpCache) Close() error { return nil }

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"content-assistant/internal/assistant"
)

// Cache stores successful processing results keyed by content hash.
type Cache interface {
	// GetResult returns nil, nil on a miss.
	GetResult(ctx context.Context, key string) (*assistant.ProcessingResult, error)

	SetResult(ctx context.Context, key string, result *assistant.ProcessingResult, ttl time.Duration) error

	// Purge drops every cached result and reports how many were removed.
	Purge(ctx context.Context) (int, error)

	Close() error
}

// Key derives a cache key from the operation kind and the processed content.
func Key(kind string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(content)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

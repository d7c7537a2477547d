package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"content-assistant/internal/retry"
)

// Type names an event; it doubles as the NATS subject suffix.
type Type string

const (
	TypeMessageCreated Type = "chat.message.created"
	TypeChatDeleted    Type = "chat.deleted"
)

// Event is a notification about a change to chat data.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New builds an event with a fresh ID and the payload marshaled as JSON.
func New(t Type, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: uuid.New(), Type: t, OccurredAt: time.Now().UTC(), Payload: body}, nil
}

// MessageCreated is the payload of TypeMessageCreated.
type MessageCreated struct {
	ChatID    uuid.UUID `json:"chat_id"`
	MessageID uuid.UUID `json:"message_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
}

// ChatDeleted is the payload of TypeChatDeleted.
type ChatDeleted struct {
	ChatID uuid.UUID `json:"chat_id"`
	UserID uuid.UUID `json:"user_id"`
}

type Handler func(context.Context, Event) error

// ErrDisabled is returned by Subscribe when no broker is configured.
var ErrDisabled = errors.New("events are disabled")

// Publisher announces chat activity to other systems.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe delivers events of type t until ctx is done.
	Subscribe(ctx context.Context, t Type, handler Handler) error
	Close() error
}

const maxPublishBackoff = 5 * time.Second

// PublishWithRetry attempts to publish with retries and exponential backoff.
func PublishWithRetry(ctx context.Context, p Publisher, ev Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := p.Publish(ctx, ev); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.CappedBackoff(attempt, base, maxPublishBackoff)):
		}
	}
	return nil
}

// NoOp drops every event.
type NoOp struct{}

func (NoOp) Publish(context.Context, Event) error { return nil }

func (NoOp) Subscribe(context.Context, Type, Handler) error { return ErrDisabled }

func (NoOp) Close() error { return nil }

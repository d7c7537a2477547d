package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subjectPrefix = "events."

// NewNATS publishes events on core NATS subjects "events.<type>".
func NewNATS(log *slog.Logger, nc *nats.Conn) Publisher {
	return &natsPublisher{log: log, nc: nc}
}

type natsPublisher struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (p *natsPublisher) Publish(_ context.Context, ev Event) error {
	if ev.Type == "" {
		return errors.New("event type required")
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(subjectPrefix+string(ev.Type), body)
}

func (p *natsPublisher) Subscribe(ctx context.Context, t Type, handler Handler) error {
	sub, err := p.nc.Subscribe(subjectPrefix+string(t), func(msg *nats.Msg) {
		p.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (p *natsPublisher) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		p.log.Error("failed to decode event", "subject", msg.Subject, "err", err)
		return
	}
	if err := handler(ctx, ev); err != nil {
		p.log.Warn("event handler failed", "id", ev.ID, "type", ev.Type, "err", err)
	}
}

func (p *natsPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}

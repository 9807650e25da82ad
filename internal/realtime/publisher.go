package realtime

import (
	"context"

	"github.com/google/uuid"

	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

// Publisher delivers store events to listeners.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage)
}

// Forwarder ships messages to other instances; the bus package implements it.
type Forwarder interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

type hubPublisher struct {
	hub *SSEHub
	fwd Forwarder
	log *logger.Logger
}

// NewPublisher broadcasts on hub directly, or through fwd when one is
// configured (the forwarder's subscriber then feeds the hub).
func NewPublisher(hub *SSEHub, fwd Forwarder, log *logger.Logger) Publisher {
	return &hubPublisher{hub: hub, fwd: fwd, log: log.With("component", "Publisher")}
}

func (p *hubPublisher) Publish(ctx context.Context, msg SSEMessage) {
	if p.fwd != nil {
		err := p.fwd.Publish(ctx, msg)
		if err == nil {
			return
		}
		p.log.Warn("bus publish failed; delivering locally", "event", msg.Event, "error", err)
	}
	if p.hub != nil {
		p.hub.Broadcast(msg)
	}
}

// StoreEvent builds a message on a store's channel.
func StoreEvent(storeID uuid.UUID, event SSEEvent, data any) SSEMessage {
	return SSEMessage{Channel: StoreChannel(storeID), Event: event, Data: data}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, SSEMessage) {}

// NopPublisher discards everything.
func NopPublisher() Publisher { return nopPublisher{} }

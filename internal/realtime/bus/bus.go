package bus

import (
	"context"

	"github.com/betoojeda/tienda-facil/internal/realtime"
)

// Bus fans store events out across server instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

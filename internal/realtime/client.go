package realtime

import (
	"github.com/google/uuid"

	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

const outboundBuffer = 32

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger
}

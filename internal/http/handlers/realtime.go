package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/pkg/ctxutil"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/realtime"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type RealtimeHandler struct {
	log    *logger.Logger
	hub    *realtime.SSEHub
	stores services.StoreService
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, stores services.StoreService) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub, stores: stores}
}

// GET /api/stores/:storeId/events?token=
// Streams the store's events to anyone who may read the store.
func (h *RealtimeHandler) StoreStream(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	if _, err := h.stores.GetStore(c.Request.Context(), storeID); err != nil {
		response.RespondAPIError(c, err, "stream_failed")
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())

	client := h.hub.NewSSEClient(rd.UserID)
	h.hub.AddChannel(client, realtime.StoreChannel(storeID))
	h.log.Info("SSE stream open", "user_id", rd.UserID, "session_id", rd.SessionID, "store_id", storeID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "client_id", client.ID, "store_id", storeID)
}

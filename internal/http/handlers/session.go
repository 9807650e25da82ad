package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/navigation"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GET /api/session?view=POS
func (h *SessionHandler) Current(c *gin.Context) {
	requested := navigation.View(strings.ToUpper(strings.TrimSpace(c.Query("view"))))
	sv, err := h.sessions.Current(c.Request.Context(), requested)
	if err != nil {
		response.RespondAPIError(c, err, "session_failed")
		return
	}
	response.RespondOK(c, sv)
}

// POST /api/session/store
func (h *SessionHandler) SelectStore(c *gin.Context) {
	var req struct {
		StoreID uuid.UUID `json:"store_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sv, err := h.sessions.SelectStore(c.Request.Context(), req.StoreID)
	if err != nil {
		response.RespondAPIError(c, err, "select_store_failed")
		return
	}
	response.RespondOK(c, sv)
}

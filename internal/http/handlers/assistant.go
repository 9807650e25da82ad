package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type AssistantHandler struct {
	assistant services.AssistantService
}

func NewAssistantHandler(assistant services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// POST /api/stores/:storeId/assistant
func (h *AssistantHandler) Ask(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if !bindJSON(c, &req) {
		return
	}
	answer, err := h.assistant.Ask(c.Request.Context(), storeID, req.Query)
	if err != nil {
		response.RespondAPIError(c, err, "assistant_failed")
		return
	}
	response.RespondOK(c, gin.H{"answer": answer})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/services"
)

// AdminHandler serves the super admin console. The router mounts it behind
// RequireRole(super_admin).
type AdminHandler struct {
	admin services.AdminService
}

func NewAdminHandler(admin services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.GlobalStats(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "load_stats_failed")
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "load_users_failed")
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// PUT /api/admin/users/:userId/password
func (h *AdminHandler) SetPassword(c *gin.Context) {
	userID, ok := uuidParam(c, "userId", "invalid_user_id")
	if !ok {
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.SetUserPassword(c.Request.Context(), userID, req.Password); err != nil {
		response.RespondAPIError(c, err, "set_password_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/admin/config
func (h *AdminHandler) Config(c *gin.Context) {
	cfg, err := h.admin.GetConfig(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "load_config_failed")
		return
	}
	response.RespondOK(c, cfg)
}

// PATCH /api/admin/config
func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	var patch services.ConfigPatch
	if !bindJSON(c, &patch) {
		return
	}
	cfg, err := h.admin.UpdateConfig(c.Request.Context(), patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_config_failed")
		return
	}
	response.RespondOK(c, cfg)
}

// PATCH /api/admin/stores/:storeId
func (h *AdminHandler) UpdateStore(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	var patch services.StorePatch
	if !bindJSON(c, &patch) {
		return
	}
	st, err := h.admin.UpdateStore(c.Request.Context(), storeID, patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_store_failed")
		return
	}
	response.RespondOK(c, gin.H{"store": st})
}

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type StoreHandler struct {
	stores    services.StoreService
	dashboard services.DashboardService
}

func NewStoreHandler(stores services.StoreService, dashboard services.DashboardService) *StoreHandler {
	return &StoreHandler{stores: stores, dashboard: dashboard}
}

// GET /api/stores
func (h *StoreHandler) List(c *gin.Context) {
	stores, err := h.stores.ListUserStores(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "load_stores_failed")
		return
	}
	response.RespondOK(c, gin.H{"stores": stores})
}

// POST /api/stores
func (h *StoreHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sv, err := h.stores.CreateStore(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondAPIError(c, err, "create_store_failed")
		return
	}
	response.RespondCreated(c, gin.H{"store": sv})
}

// GET /api/stores/:storeId
func (h *StoreHandler) Get(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	sv, err := h.stores.GetStore(c.Request.Context(), storeID)
	if err != nil {
		response.RespondAPIError(c, err, "load_store_failed")
		return
	}
	response.RespondOK(c, gin.H{"store": sv})
}

// POST /api/stores/:storeId/upgrade
// An empty plan_id picks the default paid plan.
func (h *StoreHandler) Upgrade(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sv, err := h.stores.UpgradeSubscription(c.Request.Context(), storeID, req.PlanID)
	if err != nil {
		response.RespondAPIError(c, err, "upgrade_failed")
		return
	}
	response.RespondOK(c, gin.H{"store": sv})
}

// GET /api/stores/:storeId/usage
func (h *StoreHandler) Usage(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	usage, err := h.stores.Usage(c.Request.Context(), storeID)
	if err != nil {
		response.RespondAPIError(c, err, "load_usage_failed")
		return
	}
	response.RespondOK(c, usage)
}

// POST /api/stores/:storeId/staff
func (h *StoreHandler) AddStaff(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sv, err := h.stores.AddStaff(c.Request.Context(), storeID, req.Username)
	if err != nil {
		response.RespondAPIError(c, err, "add_staff_failed")
		return
	}
	response.RespondOK(c, gin.H{"store": sv})
}

// POST /api/stores/:storeId/staff/accounts
func (h *StoreHandler) CreateStaffAccount(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	sv, err := h.stores.CreateStaffAccount(c.Request.Context(), storeID, req)
	if err != nil {
		response.RespondAPIError(c, err, "create_staff_failed")
		return
	}
	response.RespondCreated(c, gin.H{"store": sv})
}

// DELETE /api/stores/:storeId/staff/:username
func (h *StoreHandler) RemoveStaff(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	sv, err := h.stores.RemoveStaff(c.Request.Context(), storeID, c.Param("username"))
	if err != nil {
		response.RespondAPIError(c, err, "remove_staff_failed")
		return
	}
	response.RespondOK(c, gin.H{"store": sv})
}

// GET /api/stores/:storeId/dashboard
func (h *StoreHandler) Dashboard(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	d, err := h.dashboard.Summary(c.Request.Context(), storeID)
	if err != nil {
		response.RespondAPIError(c, err, "load_dashboard_failed")
		return
	}
	response.RespondOK(c, d)
}

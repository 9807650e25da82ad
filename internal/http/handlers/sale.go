package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type SaleHandler struct {
	sales services.SaleService
}

func NewSaleHandler(sales services.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// POST /api/stores/:storeId/sales
func (h *SaleHandler) Record(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	var in services.SaleInput
	if !bindJSON(c, &in) {
		return
	}
	sale, err := h.sales.Record(c.Request.Context(), storeID, in)
	if err != nil {
		response.RespondAPIError(c, err, "record_sale_failed")
		return
	}
	response.RespondCreated(c, gin.H{"sale": sale})
}

// GET /api/stores/:storeId/sales?limit=
func (h *SaleHandler) List(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", services.DefaultSalesPageSize)
	if !ok {
		return
	}
	list, err := h.sales.List(c.Request.Context(), storeID, limit)
	if err != nil {
		response.RespondAPIError(c, err, "load_sales_failed")
		return
	}
	response.RespondOK(c, gin.H{"sales": list})
}

// GET /api/stores/:storeId/sales/:saleId
func (h *SaleHandler) Get(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	saleID, ok := uuidParam(c, "saleId", "invalid_sale_id")
	if !ok {
		return
	}
	sale, err := h.sales.Get(c.Request.Context(), storeID, saleID)
	if err != nil {
		response.RespondAPIError(c, err, "load_sale_failed")
		return
	}
	response.RespondOK(c, gin.H{"sale": sale})
}

// GET /api/stores/:storeId/sales/:saleId/receipt
func (h *SaleHandler) Receipt(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	saleID, ok := uuidParam(c, "saleId", "invalid_sale_id")
	if !ok {
		return
	}
	png, err := h.sales.Receipt(c.Request.Context(), storeID, saleID)
	if err != nil {
		response.RespondAPIError(c, err, "render_receipt_failed")
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

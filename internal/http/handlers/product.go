package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/inventory"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type ProductHandler struct {
	products services.ProductService
}

func NewProductHandler(products services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// GET /api/stores/:storeId/products?category=&search=&sort=&desc=&page=&page_size=
// all=1 returns the whole catalog unpaged, as the POS grid needs.
func (h *ProductHandler) List(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	if boolQuery(c, "all") {
		items, err := h.products.All(c.Request.Context(), storeID)
		if err != nil {
			response.RespondAPIError(c, err, "load_products_failed")
			return
		}
		response.RespondOK(c, gin.H{"items": items})
		return
	}
	page, ok := intQuery(c, "page", 1)
	if !ok {
		return
	}
	size, ok := intQuery(c, "page_size", inventory.DefaultPageSize)
	if !ok {
		return
	}
	q := inventory.Query{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     inventory.SortField(c.Query("sort")),
		Desc:     boolQuery(c, "desc"),
		Page:     page,
		PageSize: size,
	}
	res, err := h.products.List(c.Request.Context(), storeID, q)
	if err != nil {
		response.RespondAPIError(c, err, "load_products_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/stores/:storeId/products/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	cats, err := h.products.Categories(c.Request.Context(), storeID)
	if err != nil {
		response.RespondAPIError(c, err, "load_categories_failed")
		return
	}
	response.RespondOK(c, gin.H{"categories": cats})
}

// GET /api/stores/:storeId/products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	items, err := h.products.LowStock(c.Request.Context(), storeID)
	if err != nil {
		response.RespondAPIError(c, err, "load_products_failed")
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

// GET /api/stores/:storeId/products/:productId
func (h *ProductHandler) Get(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId", "invalid_product_id")
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), storeID, productID)
	if err != nil {
		response.RespondAPIError(c, err, "load_product_failed")
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// POST /api/stores/:storeId/products
func (h *ProductHandler) Create(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	in.ID = nil
	p, err := h.products.Save(c.Request.Context(), storeID, in)
	if err != nil {
		response.RespondAPIError(c, err, "save_product_failed")
		return
	}
	response.RespondCreated(c, gin.H{"product": p})
}

// PUT /api/stores/:storeId/products/:productId
func (h *ProductHandler) Update(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId", "invalid_product_id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	in.ID = &productID
	p, err := h.products.Save(c.Request.Context(), storeID, in)
	if err != nil {
		response.RespondAPIError(c, err, "save_product_failed")
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// DELETE /api/stores/:storeId/products/:productId
func (h *ProductHandler) Delete(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId", "invalid_product_id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), storeID, productID); err != nil {
		response.RespondAPIError(c, err, "delete_product_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/stores/:storeId/products/:productId/image (multipart/form-data)
// field: "file"
func (h *ProductHandler) UploadImage(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId", "invalid_product_id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes+(1<<16))
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fh.Size > maxImageBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "open_file_failed", err)
		return
	}
	defer f.Close()

	p, err := h.products.UploadImage(c.Request.Context(), storeID, productID, fh.Filename, f)
	if err != nil {
		response.RespondAPIError(c, err, "upload_image_failed")
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

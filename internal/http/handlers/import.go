package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type ImportHandler struct {
	imports services.ImportService
}

func NewImportHandler(imports services.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// POST /api/stores/:storeId/import (multipart/form-data)
// field: "file" (.csv, .xlsx or .xls)
func (h *ImportHandler) Import(c *gin.Context) {
	storeID, ok := storeIDParam(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes+(1<<16))
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fh.Size > maxImportBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "open_file_failed", err)
		return
	}
	defer f.Close()

	res, err := h.imports.Import(c.Request.Context(), storeID, fh.Filename, f)
	if err != nil {
		response.RespondAPIError(c, err, "import_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/import/template
func (h *ImportHandler) Template(c *gin.Context) {
	name, body := h.imports.Template()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"feldbeleg/internal/service"
)

// ExportHandler handles monthly export endpoints.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportMonth handles POST /api/v1/exports/:year/:month
func (h *ExportHandler) ExportMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2200 {
		RespondError(c, http.StatusBadRequest, "INVALID_YEAR", "year must be a four digit number")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		RespondError(c, http.StatusBadRequest, "INVALID_MONTH", "month must be between 1 and 12")
		return
	}

	emailTo := c.Query("email_to")

	result, err := h.exportService.ExportMonth(c.Request.Context(), year, time.Month(month), emailTo)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

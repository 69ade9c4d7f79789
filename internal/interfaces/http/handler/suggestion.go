package handler

import (
	"context"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SuggestionScanner runs the batch FIFO suggestion pass
type SuggestionScanner interface {
	Scan(ctx context.Context, opts appreceivable.ScanOptions) (*appreceivable.ScanResult, error)
}

// SuggestionHandler triggers suggestion scans on demand
type SuggestionHandler struct {
	BaseHandler
	scanner SuggestionScanner
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(scanner SuggestionScanner) *SuggestionHandler {
	return &SuggestionHandler{scanner: scanner}
}

// Scan godoc
// @ID           scanSuggestions
// @Summary      Suggest FIFO allocations for unallocated draft receipts
// @Description  Runs the same pass as the scheduled job. Answers 409 while another scan holds the run lock.
// @Tags         suggestions
// @Accept       json
// @Produce      json
// @Param        request body dto.ScanRequest false "Scope"
// @Success      200 {object} APIResponse[appreceivable.ScanResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/suggestions/scan [post]
func (h *SuggestionHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.scanner.Scan(c.Request.Context(), req.ToOptions())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

package handler

import (
	"context"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// OutboxCounter counts outbox entries per delivery status
type OutboxCounter interface {
	CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error)
}

// OutboxHandler exposes delivery state of the event outbox
type OutboxHandler struct {
	BaseHandler
	outbox OutboxCounter
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outbox OutboxCounter) *OutboxHandler {
	return &OutboxHandler{outbox: outbox}
}

// OutboxStatsResponse represents outbox statistics response
type OutboxStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// GetStats godoc
// @ID           getOutboxStats
// @Summary      Get outbox statistics
// @Description  Counts of outbox entries by delivery status. Admin only.
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[OutboxStatsResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/system/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	counts, err := h.outbox.CountByStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	stats := OutboxStatsResponse{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		stats.Total += n
	}
	h.Success(c, stats)
}

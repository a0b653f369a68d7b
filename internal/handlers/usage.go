package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/repos"
	"github.com/skyvolt/aeroscope-backend/internal/requestdata"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

type UsageHandler struct {
	log   *logger.Logger
	usage repos.UsageMetricRepo
}

func NewUsageHandler(log *logger.Logger, usage repos.UsageMetricRepo) *UsageHandler {
	return &UsageHandler{
		log:   log.With("handler", "UsageHandler"),
		usage: usage,
	}
}

// GET /api/usage?from=2026-08-01&to=2026-08-31
func (h *UsageHandler) GetUsage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	now := time.Now()
	from := c.DefaultQuery("from", types.UsageDate(now.AddDate(0, 0, -30)))
	to := c.DefaultQuery("to", types.UsageDate(now))
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}

	rows, err := h.usage.ListForUserRange(c.Request.Context(), nil, rd.UserID, from, to)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}

	var totalRequests, totalTokens, totalProcessingMs int64
	for _, row := range rows {
		totalRequests += row.RequestCount
		totalTokens += row.TotalTokens
		totalProcessingMs += row.TotalProcessingTimeMs
	}

	RespondData(c, http.StatusOK, gin.H{
		"from":    from,
		"to":      to,
		"metrics": rows,
		"totals": gin.H{
			"requestCount":          totalRequests,
			"totalTokens":           totalTokens,
			"totalProcessingTimeMs": totalProcessingMs,
		},
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/requestdata"
	"github.com/skyvolt/aeroscope-backend/internal/services"
)

type DecisionHandler struct {
	log    *logger.Logger
	review services.ReviewService
}

func NewDecisionHandler(log *logger.Logger, review services.ReviewService) *DecisionHandler {
	return &DecisionHandler{
		log:    log.With("handler", "DecisionHandler"),
		review: review,
	}
}

// GET /api/decisions/:id
func (h *DecisionHandler) GetDecision(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	detail, err := h.review.GetDecision(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	if detail == nil {
		RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	RespondData(c, http.StatusOK, detail)
}

// GET /api/decisions
func (h *DecisionHandler) ListDecisions(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	limit := 50
	rows, err := h.review.ListDecisions(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondData(c, http.StatusOK, gin.H{"decisions": rows})
}

type OverrideRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /api/results/:id/override
func (h *DecisionHandler) OverrideResult(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.review.Override(c.Request.Context(), id, rd.UserID, req.Reason)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondData(c, http.StatusOK, gin.H{"result": row})
}

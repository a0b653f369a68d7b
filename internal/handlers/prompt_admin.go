package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/prompts"
	"github.com/skyvolt/aeroscope-backend/internal/services"
)

// PromptAdminHandler lets operators evolve prompt templates without a
// deploy. Versions are immutable; publishing means inserting a new version
// and activating it.
type PromptAdminHandler struct {
	log      *logger.Logger
	registry services.PromptRegistry
}

func NewPromptAdminHandler(log *logger.Logger, registry services.PromptRegistry) *PromptAdminHandler {
	return &PromptAdminHandler{
		log:      log.With("handler", "PromptAdminHandler"),
		registry: registry,
	}
}

type CreatePromptVersionRequest struct {
	Name     string `json:"name" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Activate bool   `json:"activate"`
}

// POST /api/admin/prompts
func (h *PromptAdminHandler) CreateVersion(c *gin.Context) {
	var req CreatePromptVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if !isKnownPrompt(req.Name) {
		RespondError(c, http.StatusBadRequest, "unknown_prompt", nil)
		return
	}
	row, err := h.registry.CreateVersion(c.Request.Context(), prompts.PromptName(req.Name), req.Body, req.Activate)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondData(c, http.StatusCreated, gin.H{"template": row})
}

// GET /api/admin/prompts/:name
func (h *PromptAdminHandler) History(c *gin.Context) {
	name := c.Param("name")
	if !isKnownPrompt(name) {
		RespondError(c, http.StatusNotFound, "unknown_prompt", nil)
		return
	}
	rows, err := h.registry.History(c.Request.Context(), prompts.PromptName(name))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondData(c, http.StatusOK, gin.H{"name": name, "versions": rows})
}

func isKnownPrompt(name string) bool {
	for _, p := range prompts.All() {
		if string(p) == name {
			return true
		}
	}
	return false
}

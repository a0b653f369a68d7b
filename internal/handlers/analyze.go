package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/requestdata"
	"github.com/skyvolt/aeroscope-backend/internal/services"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

// AnalyzeHandler exposes the four governed AI endpoints. Each one is a thin
// shell around the pipeline: bind the request, build the prompt variables,
// run, map the gate to 200/202.
type AnalyzeHandler struct {
	log      *logger.Logger
	pipeline services.PipelineService
}

func NewAnalyzeHandler(log *logger.Logger, pipeline services.PipelineService) *AnalyzeHandler {
	return &AnalyzeHandler{
		log:      log.With("handler", "AnalyzeHandler"),
		pipeline: pipeline,
	}
}

type AnalyzeReportRequest struct {
	ReportID       string         `json:"report_id" binding:"required"`
	InspectionType string         `json:"inspection_type"`
	StructureType  string         `json:"structure_type"`
	Notes          string         `json:"notes"`
	Data           map[string]any `json:"data" binding:"required"`
}

// POST /api/analyze/report
func (h *AnalyzeHandler) AnalyzeReport(c *gin.Context) {
	var req AnalyzeReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	input := map[string]any{
		"report_id":       req.ReportID,
		"inspection_type": req.InspectionType,
		"structure_type":  req.StructureType,
		"notes":           req.Notes,
		"data":            req.Data,
	}
	vars := map[string]any{
		"inspection_type": req.InspectionType,
		"structure_type":  req.StructureType,
		"notes":           req.Notes,
		"input":           compactJSON(req.Data),
	}
	h.run(c, services.EndpointInspectionAnalysis, input, vars)
}

type DetectAnomaliesRequest struct {
	MissionID     string         `json:"mission_id" binding:"required"`
	SensorSummary string         `json:"sensor_summary"`
	Telemetry     map[string]any `json:"telemetry" binding:"required"`
}

// POST /api/analyze/anomalies
func (h *AnalyzeHandler) DetectAnomalies(c *gin.Context) {
	var req DetectAnomaliesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	input := map[string]any{
		"mission_id":     req.MissionID,
		"sensor_summary": req.SensorSummary,
		"telemetry":      req.Telemetry,
	}
	vars := map[string]any{
		"mission_id":     req.MissionID,
		"sensor_summary": req.SensorSummary,
		"input":          compactJSON(req.Telemetry),
	}
	h.run(c, services.EndpointAnomalyDetection, input, vars)
}

type MissionReadinessRequest struct {
	MissionID string         `json:"mission_id" binding:"required"`
	Pilot     string         `json:"pilot"`
	Aircraft  string         `json:"aircraft"`
	Context   map[string]any `json:"context" binding:"required"`
}

// POST /api/missions/readiness
func (h *AnalyzeHandler) AssessMissionReadiness(c *gin.Context) {
	var req MissionReadinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	input := map[string]any{
		"mission_id": req.MissionID,
		"pilot":      req.Pilot,
		"aircraft":   req.Aircraft,
		"context":    req.Context,
	}
	vars := map[string]any{
		"mission_id": req.MissionID,
		"pilot":      req.Pilot,
		"aircraft":   req.Aircraft,
		"input":      compactJSON(req.Context),
	}
	h.run(c, services.EndpointMissionReadiness, input, vars)
}

type DailySummaryRequest struct {
	Date   string         `json:"date" binding:"required"`
	Events []string       `json:"events" binding:"required"`
	Stats  map[string]any `json:"stats"`
}

// POST /api/summary/daily
func (h *AnalyzeHandler) GenerateDailySummary(c *gin.Context) {
	var req DailySummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	input := map[string]any{
		"date":   req.Date,
		"events": req.Events,
		"stats":  req.Stats,
	}
	vars := map[string]any{
		"date": req.Date,
		"input": compactJSON(map[string]any{
			"events": req.Events,
			"stats":  req.Stats,
		}),
	}
	h.run(c, services.EndpointDailySummary, input, vars)
}

func (h *AnalyzeHandler) run(c *gin.Context, cfg services.EndpointConfig, input, vars map[string]any) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	res, err := h.pipeline.Run(c.Request.Context(), cfg, rd.UserID, input, vars)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}

	// NEEDS_REVIEW is a successful run pending human sign-off, not an error.
	status := http.StatusOK
	if res.Status != types.StatusAutoApproved {
		status = http.StatusAccepted
	}

	data := gin.H{
		"status":     res.Status,
		"decisionId": res.DecisionID,
		"requestId":  res.RequestID,
		"result":     res.Output,
		"confidence": res.Confidence,
		"metadata": gin.H{
			"modelVersion":     res.ModelVersion,
			"tokenCount":       res.TokenCount,
			"processingTimeMs": res.ProcessingMs,
		},
		"prompt": gin.H{
			"name":    res.PromptName,
			"version": res.PromptVersion,
		},
	}
	if res.ResultID != nil {
		data["resultId"] = *res.ResultID
	}
	RespondData(c, status, data)
}

func compactJSON(v any) string {
	if v == nil {
		return "{}"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

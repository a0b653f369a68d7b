package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/skyvolt/aeroscope-backend/internal/confidence"
	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/prompts"
	"github.com/skyvolt/aeroscope-backend/internal/repos"
	"github.com/skyvolt/aeroscope-backend/internal/schema"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

// EndpointConfig describes one governed endpoint. All four categories run
// through the same orchestrator; only the config differs.
type EndpointConfig struct {
	// Endpoint is the usage-accounting key, e.g. "/analyze/report".
	Endpoint string
	Prompt   prompts.PromptName
	Schema   string
	Score    func(data map[string]any, elapsed time.Duration) confidence.Score
	// MaterializeResult controls whether a domain AnalysisResult row is
	// derived from the decision. Readiness and summary endpoints keep the
	// Decision row only.
	MaterializeResult bool
	// FindingsKey names the output array projected into AnalysisResult
	// findings ("findings" or "anomalies").
	FindingsKey string
}

// The four governed endpoints.
var (
	EndpointInspectionAnalysis = EndpointConfig{
		Endpoint:          "/analyze/report",
		Prompt:            prompts.PromptInspectionAnalysis,
		Schema:            schema.InspectionAnalysis,
		Score:             confidence.ScoreInspectionAnalysis,
		MaterializeResult: true,
		FindingsKey:       "findings",
	}
	EndpointAnomalyDetection = EndpointConfig{
		Endpoint:          "/analyze/anomalies",
		Prompt:            prompts.PromptAnomalyDetection,
		Schema:            schema.AnomalyDetection,
		Score:             confidence.ScoreAnomalyDetection,
		MaterializeResult: true,
		FindingsKey:       "anomalies",
	}
	EndpointMissionReadiness = EndpointConfig{
		Endpoint: "/missions/readiness",
		Prompt:   prompts.PromptMissionReadiness,
		Schema:   schema.MissionReadiness,
		Score:    confidence.ScoreMissionReadiness,
	}
	EndpointDailySummary = EndpointConfig{
		Endpoint: "/summary/daily",
		Prompt:   prompts.PromptDailySummary,
		Schema:   schema.DailySummary,
		Score:    confidence.ScoreDailySummary,
	}
)

// PipelineResult is what a governed endpoint hands back to its handler.
type PipelineResult struct {
	Status        string
	RequestID     uuid.UUID
	DecisionID    uuid.UUID
	ResultID      *uuid.UUID
	Output        map[string]any
	Confidence    confidence.Score
	PromptName    string
	PromptVersion int
	ModelVersion  string
	TokenCount    int
	ProcessingMs  int64
}

type PipelineService interface {
	// Run executes the full governed chain for one request: resolve prompt,
	// render, call with retry, parse, validate, score, gate, persist, account.
	Run(ctx context.Context, cfg EndpointConfig, userID uuid.UUID, input map[string]any, vars map[string]any) (*PipelineResult, error)
}

type pipelineService struct {
	log       *logger.Logger
	registry  PromptRegistry
	llm       LLMClient
	retrier   *CallRetrier
	decisions repos.DecisionRepo
	results   repos.AnalysisResultRepo
	usage     repos.UsageMetricRepo
}

func NewPipelineService(
	log *logger.Logger,
	registry PromptRegistry,
	llm LLMClient,
	retrier *CallRetrier,
	decisions repos.DecisionRepo,
	results repos.AnalysisResultRepo,
	usage repos.UsageMetricRepo,
) PipelineService {
	return &pipelineService{
		log:       log.With("service", "PipelineService"),
		registry:  registry,
		llm:       llm,
		retrier:   retrier,
		decisions: decisions,
		results:   results,
		usage:     usage,
	}
}

const systemPrompt = "You are the AeroScope analysis engine for drone inspection operations. Always respond with a single JSON object and nothing else."

func (s *pipelineService) Run(ctx context.Context, cfg EndpointConfig, userID uuid.UUID, input map[string]any, vars map[string]any) (*PipelineResult, error) {
	runLog := s.log.With("endpoint", cfg.Endpoint, "prompt", string(cfg.Prompt))

	tpl, err := s.registry.GetActiveTemplate(ctx, cfg.Prompt)
	if err != nil {
		return nil, err
	}

	rendered := prompts.Render(tpl.Body, vars)
	requestID := uuid.New()

	start := time.Now()
	var completion *LLMCompletion
	err = s.retrier.Do(ctx, "llm_generate", func(ctx context.Context) error {
		c, genErr := s.llm.Generate(ctx, systemPrompt, rendered)
		if genErr != nil {
			return genErr
		}
		completion = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	processingMs := elapsed.Milliseconds()

	payload, err := ParseModelOutput(completion.Text)
	if err != nil {
		runLog.Warn("Model output unparseable", "request_id", requestID.String(), "error", err)
		return nil, err
	}

	// An invalid shape cannot be meaningfully scored, so validation failures
	// abort before anything is persisted.
	if err := schema.MustValidate(cfg.Schema, payload); err != nil {
		runLog.Warn("Model output failed schema validation", "request_id", requestID.String(), "error", err)
		return nil, err
	}

	score := cfg.Score(payload, elapsed)
	status := types.StatusNeedsReview
	if score.MeetsMinimum {
		status = types.StatusAutoApproved
	}

	out := &PipelineResult{
		Status:        status,
		RequestID:     requestID,
		Output:        payload,
		Confidence:    score,
		PromptName:    tpl.Name,
		PromptVersion: tpl.Version,
		ModelVersion:  completion.Model,
		TokenCount:    completion.TokensUsed,
		ProcessingMs:  processingMs,
	}

	// The audit trail is best effort: a ledger write failure is logged and
	// the primary response still goes out.
	decision := buildDecision(cfg, tpl, userID, requestID, input, payload, completion, score, status, processingMs)
	persisted, perErr := s.decisions.Create(ctx, nil, decision)
	if perErr != nil {
		runLog.Error("Decision ledger write failed", "request_id", requestID.String(), "error", perErr)
	} else {
		out.DecisionID = persisted.ID
		if cfg.MaterializeResult {
			result, resErr := s.results.Create(ctx, nil, buildResult(cfg, userID, persisted.ID, payload, score, status))
			if resErr != nil {
				runLog.Error("Analysis result write failed", "request_id", requestID.String(), "error", resErr)
			} else {
				out.ResultID = &result.ID
			}
		}
	}

	date := types.UsageDate(time.Now())
	if accErr := s.usage.Increment(ctx, nil, userID, date, cfg.Endpoint, completion.TokensUsed, processingMs); accErr != nil {
		runLog.Error("Usage accounting failed", "request_id", requestID.String(), "error", accErr)
	}

	runLog.Info("Pipeline run complete",
		"request_id", requestID.String(),
		"status", status,
		"confidence", score.Overall,
		"level", string(score.Level),
		"tokens", completion.TokensUsed,
		"processing_ms", processingMs,
	)
	return out, nil
}

func buildDecision(
	cfg EndpointConfig,
	tpl *types.PromptTemplate,
	userID, requestID uuid.UUID,
	input, payload map[string]any,
	completion *LLMCompletion,
	score confidence.Score,
	status string,
	processingMs int64,
) *types.Decision {
	metadata := map[string]any{
		"confidence": score,
		"schema":     cfg.Schema,
	}
	return &types.Decision{
		ID:               uuid.New(),
		RequestID:        requestID,
		UserID:           userID,
		Endpoint:         cfg.Endpoint,
		InputData:        mustJSON(input),
		OutputData:       mustJSON(payload),
		ModelVersion:     completion.Model,
		PromptName:       tpl.Name,
		PromptVersion:    tpl.Version,
		ConfidenceScore:  score.Overall,
		Status:           status,
		ProcessingTimeMs: processingMs,
		TokenCount:       completion.TokensUsed,
		Metadata:         mustJSON(metadata),
		CreatedAt:        time.Now().UTC(),
	}
}

func buildResult(
	cfg EndpointConfig,
	userID, decisionID uuid.UUID,
	payload map[string]any,
	score confidence.Score,
	status string,
) *types.AnalysisResult {
	severity, _ := payload["severity"].(string)
	riskScore := 0.0
	if v, ok := payload["riskScore"].(float64); ok {
		riskScore = v
	}
	return &types.AnalysisResult{
		ID:               uuid.New(),
		DecisionID:       decisionID,
		UserID:           userID,
		Category:         string(cfg.Prompt),
		Findings:         mustJSON(payload[cfg.FindingsKey]),
		Severity:         severity,
		RiskScore:        riskScore,
		Recommendations:  mustJSON(payload["recommendations"]),
		ConfidenceDetail: mustJSON(score),
		Status:           status,
	}
}

func mustJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

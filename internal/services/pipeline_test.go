package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/prompts"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

type fakeRegistry struct {
	templates map[prompts.PromptName]*types.PromptTemplate
}

func (f *fakeRegistry) GetActiveTemplate(ctx context.Context, name prompts.PromptName) (*types.PromptTemplate, error) {
	tpl, ok := f.templates[name]
	if !ok {
		return nil, &aierr.ConfigurationError{PromptName: string(name)}
	}
	return tpl, nil
}

func (f *fakeRegistry) CreateVersion(ctx context.Context, name prompts.PromptName, body string, activate bool) (*types.PromptTemplate, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeRegistry) History(ctx context.Context, name prompts.PromptName) ([]*types.PromptTemplate, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeRegistry) EnsureSeeds(ctx context.Context) error { return nil }

type fakeLLM struct {
	text     string
	err      error
	lastUser string
}

func (f *fakeLLM) Generate(ctx context.Context, system, user string) (*LLMCompletion, error) {
	f.lastUser = user
	if f.err != nil {
		return nil, f.err
	}
	return &LLMCompletion{Text: f.text, TokensUsed: 120, Model: "gpt-4o-mini"}, nil
}

func (f *fakeLLM) ModelVersion() string { return "gpt-4o-mini" }

type fakeDecisionRepo struct {
	created []*types.Decision
	err     error
}

func (f *fakeDecisionRepo) Create(ctx context.Context, tx *gorm.DB, d *types.Decision) (*types.Decision, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, d)
	return d, nil
}

func (f *fakeDecisionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Decision, error) {
	return nil, nil
}

func (f *fakeDecisionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Decision, error) {
	return nil, nil
}

type fakeResultRepo struct {
	created []*types.AnalysisResult
	err     error
}

func (f *fakeResultRepo) Create(ctx context.Context, tx *gorm.DB, r *types.AnalysisResult) (*types.AnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeResultRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AnalysisResult, error) {
	return nil, nil
}

func (f *fakeResultRepo) GetByDecisionID(ctx context.Context, tx *gorm.DB, decisionID uuid.UUID) (*types.AnalysisResult, error) {
	return nil, nil
}

func (f *fakeResultRepo) ApplyOverride(ctx context.Context, tx *gorm.DB, id uuid.UUID, reason string, reviewerID uuid.UUID) error {
	return nil
}

type fakeUsageRepo struct {
	increments int
	lastTokens int
}

func (f *fakeUsageRepo) Increment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, endpoint string, tokens int, processingTimeMs int64) error {
	f.increments++
	f.lastTokens = tokens
	return nil
}

func (f *fakeUsageRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, endpoint string) (*types.UsageMetric, error) {
	return nil, nil
}

func (f *fakeUsageRepo) ListForUserRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fromDate, toDate string) ([]*types.UsageMetric, error) {
	return nil, nil
}

const validInspectionJSON = `{
	"findings": [{"id": "f1", "type": "crack", "severity": "HIGH", "description": "hairline crack on blade root", "confidence": 0.9}],
	"severity": "HIGH",
	"riskScore": 70,
	"recommendations": [{"priority": "HIGH", "action": "ground aircraft for inspection", "rationale": "crack may propagate"}]
}`

type pipelineFixture struct {
	svc       PipelineService
	llm       *fakeLLM
	decisions *fakeDecisionRepo
	results   *fakeResultRepo
	usage     *fakeUsageRepo
}

func newPipelineFixture(llmText string, llmErr error) *pipelineFixture {
	log := logger.NewNop()
	registry := &fakeRegistry{templates: map[prompts.PromptName]*types.PromptTemplate{
		prompts.PromptInspectionAnalysis: {
			ID:      uuid.New(),
			Name:    string(prompts.PromptInspectionAnalysis),
			Version: 2,
			Body:    "Analyze {{input}} for structure {{structure_type}}.",
		},
	}}
	llm := &fakeLLM{text: llmText, err: llmErr}
	retrier := NewCallRetrier(DefaultRetryConfig(), log).WithSleep(func(ctx context.Context, d time.Duration) error { return nil })
	decisions := &fakeDecisionRepo{}
	results := &fakeResultRepo{}
	usage := &fakeUsageRepo{}
	return &pipelineFixture{
		svc:       NewPipelineService(log, registry, llm, retrier, decisions, results, usage),
		llm:       llm,
		decisions: decisions,
		results:   results,
		usage:     usage,
	}
}

func TestPipelineRun_HappyPathAutoApproves(t *testing.T) {
	fx := newPipelineFixture(validInspectionJSON, nil)
	userID := uuid.New()

	res, err := fx.svc.Run(context.Background(), EndpointInspectionAnalysis, userID,
		map[string]any{"report_id": "R-1"},
		map[string]any{"input": "{}", "structure_type": "turbine"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != types.StatusAutoApproved {
		t.Fatalf("expected AUTO_APPROVED, got %s (confidence %v)", res.Status, res.Confidence.Overall)
	}
	if res.RequestID == uuid.Nil {
		t.Fatalf("expected server-assigned request id")
	}
	if res.PromptName != string(prompts.PromptInspectionAnalysis) || res.PromptVersion != 2 {
		t.Fatalf("prompt provenance missing: %s v%d", res.PromptName, res.PromptVersion)
	}
	if len(fx.decisions.created) != 1 {
		t.Fatalf("expected one decision row, got %d", len(fx.decisions.created))
	}
	if len(fx.results.created) != 1 {
		t.Fatalf("expected one analysis result row, got %d", len(fx.results.created))
	}
	if res.ResultID == nil || *res.ResultID != fx.results.created[0].ID {
		t.Fatalf("result id not surfaced")
	}
	if fx.usage.increments != 1 || fx.usage.lastTokens != 120 {
		t.Fatalf("usage not accounted: %+v", fx.usage)
	}
	d := fx.decisions.created[0]
	if d.UserID != userID || d.Endpoint != "/analyze/report" || d.Status != types.StatusAutoApproved {
		t.Fatalf("decision row misrecorded: %+v", d)
	}
}

func TestPipelineRun_RendersTemplateVariables(t *testing.T) {
	fx := newPipelineFixture(validInspectionJSON, nil)

	_, err := fx.svc.Run(context.Background(), EndpointInspectionAnalysis, uuid.New(),
		map[string]any{},
		map[string]any{"input": `{"k":1}`, "structure_type": "bridge"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fx.llm.lastUser != `Analyze {"k":1} for structure bridge.` {
		t.Fatalf("rendered prompt wrong: %q", fx.llm.lastUser)
	}
}

func TestPipelineRun_MissingTemplateIsConfigurationError(t *testing.T) {
	fx := newPipelineFixture(validInspectionJSON, nil)

	_, err := fx.svc.Run(context.Background(), EndpointAnomalyDetection, uuid.New(), nil, nil)
	if !aierr.IsConfiguration(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if len(fx.decisions.created) != 0 || fx.usage.increments != 0 {
		t.Fatalf("no side effects expected on configuration failure")
	}
}

func TestPipelineRun_MalformedOutputLeavesNoDecisionRow(t *testing.T) {
	fx := newPipelineFixture("sorry, I cannot help with that", nil)

	_, err := fx.svc.Run(context.Background(), EndpointInspectionAnalysis, uuid.New(), nil, map[string]any{"input": "{}"})
	if !aierr.IsMalformedOutput(err) {
		t.Fatalf("expected MalformedOutputError, got %v", err)
	}
	if len(fx.decisions.created) != 0 {
		t.Fatalf("malformed output must not be persisted")
	}
}

func TestPipelineRun_SchemaViolationAbortsBeforePersistence(t *testing.T) {
	fx := newPipelineFixture(`{"findings": [], "severity": "HIGH"}`, nil)

	_, err := fx.svc.Run(context.Background(), EndpointInspectionAnalysis, uuid.New(), nil, map[string]any{"input": "{}"})
	if !aierr.IsSchemaValidation(err) {
		t.Fatalf("expected SchemaValidationError, got %v", err)
	}
	if len(fx.decisions.created) != 0 || len(fx.results.created) != 0 || fx.usage.increments != 0 {
		t.Fatalf("no persistence expected on validation failure")
	}
}

func TestPipelineRun_ProviderExhaustionSurfacesProviderError(t *testing.T) {
	fx := newPipelineFixture("", fmt.Errorf("connection refused"))

	_, err := fx.svc.Run(context.Background(), EndpointInspectionAnalysis, uuid.New(), nil, map[string]any{"input": "{}"})
	if !aierr.IsProvider(err) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if len(fx.decisions.created) != 0 {
		t.Fatalf("no decision row expected when provider never produced output")
	}
}

func TestPipelineRun_DecisionWriteFailureStillReturnsResult(t *testing.T) {
	fx := newPipelineFixture(validInspectionJSON, nil)
	fx.decisions.err = fmt.Errorf("connection reset by peer")

	res, err := fx.svc.Run(context.Background(), EndpointInspectionAnalysis, uuid.New(), nil, map[string]any{"input": "{}"})
	if err != nil {
		t.Fatalf("ledger failure must not fail the request: %v", err)
	}
	if res.Status != types.StatusAutoApproved {
		t.Fatalf("unexpected status %s", res.Status)
	}
	if res.DecisionID != uuid.Nil {
		t.Fatalf("decision id should be unset when write failed")
	}
	if len(fx.results.created) != 0 {
		t.Fatalf("result row must not exist without its decision")
	}
	if fx.usage.increments != 1 {
		t.Fatalf("usage accounting should still run")
	}
}

func TestPipelineRun_ReadinessEndpointSkipsAnalysisResult(t *testing.T) {
	log := logger.NewNop()
	registry := &fakeRegistry{templates: map[prompts.PromptName]*types.PromptTemplate{
		prompts.PromptMissionReadiness: {ID: uuid.New(), Name: string(prompts.PromptMissionReadiness), Version: 1, Body: "{{input}}"},
	}}
	llm := &fakeLLM{text: `{"ready": true, "score": 92, "riskFlags": [], "recommendation": "go"}`}
	retrier := NewCallRetrier(DefaultRetryConfig(), log)
	decisions := &fakeDecisionRepo{}
	results := &fakeResultRepo{}
	usage := &fakeUsageRepo{}
	svc := NewPipelineService(log, registry, llm, retrier, decisions, results, usage)

	res, err := svc.Run(context.Background(), EndpointMissionReadiness, uuid.New(), nil, map[string]any{"input": "{}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decisions.created) != 1 {
		t.Fatalf("decision row always written on success")
	}
	if len(results.created) != 0 || res.ResultID != nil {
		t.Fatalf("readiness endpoint must not materialize an analysis result")
	}
}

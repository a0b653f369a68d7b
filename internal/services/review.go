package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/repos"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

// DecisionDetail joins a decision with its materialized result, when one
// exists. Reporting and export code reads these rows; it never reaches into
// pipeline internals.
type DecisionDetail struct {
	Decision *types.Decision       `json:"decision"`
	Result   *types.AnalysisResult `json:"result,omitempty"`
}

type ReviewService interface {
	GetDecision(ctx context.Context, id uuid.UUID) (*DecisionDetail, error)
	ListDecisions(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Decision, error)
	// Override attaches a human correction to an analysis result. The
	// underlying Decision is untouched; the audit trail stays immutable.
	Override(ctx context.Context, resultID, reviewerID uuid.UUID, reason string) (*types.AnalysisResult, error)
}

type reviewService struct {
	log       *logger.Logger
	decisions repos.DecisionRepo
	results   repos.AnalysisResultRepo
}

func NewReviewService(log *logger.Logger, decisions repos.DecisionRepo, results repos.AnalysisResultRepo) ReviewService {
	return &reviewService{
		log:       log.With("service", "ReviewService"),
		decisions: decisions,
		results:   results,
	}
}

func (s *reviewService) GetDecision(ctx context.Context, id uuid.UUID) (*DecisionDetail, error) {
	var detail DecisionDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.decisions.GetByID(gctx, nil, id)
		if err != nil {
			return err
		}
		detail.Decision = d
		return nil
	})
	g.Go(func() error {
		r, err := s.results.GetByDecisionID(gctx, nil, id)
		if err != nil {
			return err
		}
		detail.Result = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if detail.Decision == nil {
		return nil, nil
	}
	return &detail, nil
}

func (s *reviewService) ListDecisions(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Decision, error) {
	return s.decisions.ListByUser(ctx, nil, userID, limit)
}

func (s *reviewService) Override(ctx context.Context, resultID, reviewerID uuid.UUID, reason string) (*types.AnalysisResult, error) {
	row, err := s.results.GetByID(ctx, nil, resultID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("analysis result %s not found", resultID)
	}
	if err := s.results.ApplyOverride(ctx, nil, resultID, reason, reviewerID); err != nil {
		return nil, err
	}
	s.log.Info("Human override applied",
		"result_id", resultID.String(),
		"decision_id", row.DecisionID.String(),
		"reviewer_id", reviewerID.String(),
	)
	return s.results.GetByID(ctx, nil, resultID)
}

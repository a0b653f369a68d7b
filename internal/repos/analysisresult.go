package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

type AnalysisResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, result *types.AnalysisResult) (*types.AnalysisResult, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AnalysisResult, error)
	GetByDecisionID(ctx context.Context, tx *gorm.DB, decisionID uuid.UUID) (*types.AnalysisResult, error)
	// ApplyOverride is the only mutation path on an analysis result. It never
	// touches the linked Decision row.
	ApplyOverride(ctx context.Context, tx *gorm.DB, id uuid.UUID, reason string, reviewerID uuid.UUID) error
}

type analysisResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisResultRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisResultRepo {
	return &analysisResultRepo{
		db:  db,
		log: baseLog.With("repo", "AnalysisResultRepo"),
	}
}

func (r *analysisResultRepo) Create(ctx context.Context, tx *gorm.DB, result *types.AnalysisResult) (*types.AnalysisResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
	if err := transaction.WithContext(ctx).Create(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *analysisResultRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AnalysisResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.AnalysisResult
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *analysisResultRepo) GetByDecisionID(ctx context.Context, tx *gorm.DB, decisionID uuid.UUID) (*types.AnalysisResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.AnalysisResult
	err := transaction.WithContext(ctx).
		Where("decision_id = ?", decisionID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *analysisResultRepo) ApplyOverride(ctx context.Context, tx *gorm.DB, id uuid.UUID, reason string, reviewerID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.AnalysisResult{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"human_override":  true,
			"override_reason": reason,
			"override_by":     reviewerID,
			"override_at":     now,
			"updated_at":      now,
		}).Error
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

// DecisionRepo is append-only. There is deliberately no update or delete:
// decisions are the audit trail.
type DecisionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, decision *types.Decision) (*types.Decision, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Decision, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Decision, error)
}

type decisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDecisionRepo(db *gorm.DB, baseLog *logger.Logger) DecisionRepo {
	return &decisionRepo{
		db:  db,
		log: baseLog.With("repo", "DecisionRepo"),
	}
}

func (r *decisionRepo) Create(ctx context.Context, tx *gorm.DB, decision *types.Decision) (*types.Decision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if decision.ID == uuid.Nil {
		decision.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(decision).Error; err != nil {
		return nil, err
	}
	return decision, nil
}

func (r *decisionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Decision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Decision
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

func (r *decisionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Decision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []*types.Decision
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

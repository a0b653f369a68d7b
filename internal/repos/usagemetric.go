package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

type UsageMetricRepo interface {
	// Increment adds one request plus its tokens and latency to the
	// (user, date, endpoint) row. The add happens inside the upsert, so two
	// concurrent completions for the same key cannot lose an update.
	Increment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, endpoint string, tokens int, processingTimeMs int64) error
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, endpoint string) (*types.UsageMetric, error)
	ListForUserRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fromDate, toDate string) ([]*types.UsageMetric, error)
}

type usageMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageMetricRepo(db *gorm.DB, baseLog *logger.Logger) UsageMetricRepo {
	return &usageMetricRepo{
		db:  db,
		log: baseLog.With("repo", "UsageMetricRepo"),
	}
}

func (r *usageMetricRepo) Increment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, endpoint string, tokens int, processingTimeMs int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := &types.UsageMetric{
		ID:                    uuid.New(),
		UserID:                userID,
		Date:                  date,
		Endpoint:              endpoint,
		RequestCount:          1,
		TotalTokens:           int64(tokens),
		TotalProcessingTimeMs: processingTimeMs,
		UpdatedAt:             now,
	}
	// Unqualified column references in DO UPDATE resolve to the existing row
	// on both Postgres and SQLite, so the increment is atomic at the store.
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "endpoint"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"request_count":            gorm.Expr("request_count + ?", 1),
				"total_tokens":             gorm.Expr("total_tokens + ?", int64(tokens)),
				"total_processing_time_ms": gorm.Expr("total_processing_time_ms + ?", processingTimeMs),
				"updated_at":               now,
			}),
		}).
		Create(row).Error
}

func (r *usageMetricRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, endpoint string) (*types.UsageMetric, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.UsageMetric
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND date = ? AND endpoint = ?", userID, date, endpoint).
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

func (r *usageMetricRepo) ListForUserRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fromDate, toDate string) ([]*types.UsageMetric, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.UsageMetric
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, fromDate, toDate).
		Order("date ASC").
		Order("endpoint ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

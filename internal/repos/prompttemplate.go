package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

type PromptTemplateRepo interface {
	// GetLatestActive returns the most recently created active row for name,
	// or nil when no active version exists.
	GetLatestActive(ctx context.Context, tx *gorm.DB, name string) (*types.PromptTemplate, error)
	// CreateVersion inserts a new immutable version. When activate is true the
	// insert and the deactivation of older rows happen in one transaction.
	CreateVersion(ctx context.Context, tx *gorm.DB, name, body string, activate bool) (*types.PromptTemplate, error)
	ListVersions(ctx context.Context, tx *gorm.DB, name string) ([]*types.PromptTemplate, error)
	CountByName(ctx context.Context, tx *gorm.DB, name string) (int64, error)
}

type promptTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptTemplateRepo(db *gorm.DB, baseLog *logger.Logger) PromptTemplateRepo {
	return &promptTemplateRepo{
		db:  db,
		log: baseLog.With("repo", "PromptTemplateRepo"),
	}
}

func (r *promptTemplateRepo) GetLatestActive(ctx context.Context, tx *gorm.DB, name string) (*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.PromptTemplate
	err := transaction.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		Order("created_at DESC").
		Order("version DESC").
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

func (r *promptTemplateRepo) CreateVersion(ctx context.Context, tx *gorm.DB, name, body string, activate bool) (*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var created *types.PromptTemplate
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var maxVersion int
		if err := inner.Model(&types.PromptTemplate{}).
			Where("name = ?", name).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}
		if activate {
			if err := inner.Model(&types.PromptTemplate{}).
				Where("name = ? AND is_active = ?", name, true).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		row := &types.PromptTemplate{
			ID:        uuid.New(),
			Name:      name,
			Version:   maxVersion + 1,
			Body:      body,
			IsActive:  activate,
			CreatedAt: time.Now().UTC(),
		}
		if err := inner.Create(row).Error; err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *promptTemplateRepo) ListVersions(ctx context.Context, tx *gorm.DB, name string) ([]*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.PromptTemplate
	err := transaction.WithContext(ctx).
		Where("name = ?", name).
		Order("version DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *promptTemplateRepo) CountByName(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.PromptTemplate{}).
		Where("name = ?", name).
		Count(&count).Error
	return count, err
}

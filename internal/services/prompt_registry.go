package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/prompts"
	"github.com/skyvolt/aeroscope-backend/internal/repos"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

// PromptRegistry resolves named, versioned prompt templates from the store.
type PromptRegistry interface {
	// GetActiveTemplate resolves the latest active version of name. A missing
	// active template is an operational misconfiguration: the pipeline must
	// never silently proceed without one, so this fails with a
	// ConfigurationError rather than a nil template.
	GetActiveTemplate(ctx context.Context, name prompts.PromptName) (*types.PromptTemplate, error)
	CreateVersion(ctx context.Context, name prompts.PromptName, body string, activate bool) (*types.PromptTemplate, error)
	History(ctx context.Context, name prompts.PromptName) ([]*types.PromptTemplate, error)
	// EnsureSeeds installs the default template bodies for any prompt name
	// that has no versions yet.
	EnsureSeeds(ctx context.Context) error
}

type promptRegistry struct {
	db        *gorm.DB
	log       *logger.Logger
	templates repos.PromptTemplateRepo
}

func NewPromptRegistry(db *gorm.DB, log *logger.Logger, templates repos.PromptTemplateRepo) PromptRegistry {
	return &promptRegistry{
		db:        db,
		log:       log.With("service", "PromptRegistry"),
		templates: templates,
	}
}

func (s *promptRegistry) GetActiveTemplate(ctx context.Context, name prompts.PromptName) (*types.PromptTemplate, error) {
	row, err := s.templates.GetLatestActive(ctx, nil, string(name))
	if err != nil {
		return nil, &aierr.ConfigurationError{PromptName: string(name), Err: err}
	}
	if row == nil {
		return nil, &aierr.ConfigurationError{PromptName: string(name)}
	}
	return row, nil
}

func (s *promptRegistry) CreateVersion(ctx context.Context, name prompts.PromptName, body string, activate bool) (*types.PromptTemplate, error) {
	row, err := s.templates.CreateVersion(ctx, nil, string(name), body, activate)
	if err != nil {
		return nil, err
	}
	s.log.Info("Prompt version created",
		"prompt", string(name),
		"version", row.Version,
		"active", row.IsActive,
	)
	return row, nil
}

func (s *promptRegistry) History(ctx context.Context, name prompts.PromptName) ([]*types.PromptTemplate, error) {
	return s.templates.ListVersions(ctx, nil, string(name))
}

func (s *promptRegistry) EnsureSeeds(ctx context.Context) error {
	for _, seed := range prompts.Seeds() {
		count, err := s.templates.CountByName(ctx, nil, string(seed.Name))
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if _, err := s.templates.CreateVersion(ctx, nil, string(seed.Name), seed.Body, true); err != nil {
			return err
		}
		s.log.Info("Seeded default prompt template", "prompt", string(seed.Name))
	}
	return nil
}

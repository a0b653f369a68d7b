package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Gate statuses recorded on decisions and analysis results.
const (
	StatusAutoApproved = "AUTO_APPROVED"
	StatusNeedsReview  = "NEEDS_REVIEW"
)

// Decision is the immutable audit record of a single model invocation.
// One row per pipeline run, never updated, never deleted. RequestID is
// assigned server side so client retries cannot collide.
type Decision struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_decision_request_id" json:"request_id"`
	UserID           uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Endpoint         string         `gorm:"column:endpoint;not null;index" json:"endpoint"`
	InputData        datatypes.JSON `gorm:"type:jsonb;column:input_data" json:"input_data"`
	OutputData       datatypes.JSON `gorm:"type:jsonb;column:output_data" json:"output_data"`
	ModelVersion     string         `gorm:"column:model_version;not null" json:"model_version"`
	PromptName       string         `gorm:"column:prompt_name;not null" json:"prompt_name"`
	PromptVersion    int            `gorm:"column:prompt_version;not null" json:"prompt_version"`
	ConfidenceScore  float64        `gorm:"column:confidence_score;not null" json:"confidence_score"`
	Status           string         `gorm:"column:status;not null" json:"status"`
	ProcessingTimeMs int64          `gorm:"column:processing_time_ms;not null" json:"processing_time_ms"`
	TokenCount       int            `gorm:"column:token_count;not null" json:"token_count"`
	Metadata         datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
}

func (Decision) TableName() string {
	return "decision"
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisResult is the domain projection of a decision's output. The
// override fields are the only mutable surface: a human reviewer may attach
// a correction after the fact without touching the underlying Decision.
type AnalysisResult struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DecisionID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_analysis_result_decision_id" json:"decision_id"`
	UserID           uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Category         string         `gorm:"column:category;not null" json:"category"`
	Findings         datatypes.JSON `gorm:"type:jsonb;column:findings" json:"findings"`
	Severity         string         `gorm:"column:severity" json:"severity"`
	RiskScore        float64        `gorm:"column:risk_score" json:"risk_score"`
	Recommendations  datatypes.JSON `gorm:"type:jsonb;column:recommendations" json:"recommendations"`
	ConfidenceDetail datatypes.JSON `gorm:"type:jsonb;column:confidence_detail" json:"confidence_detail"`
	Status           string         `gorm:"column:status;not null" json:"status"`
	HumanOverride    bool           `gorm:"column:human_override;not null;default:false" json:"human_override"`
	OverrideReason   string         `gorm:"column:override_reason" json:"override_reason,omitempty"`
	OverrideBy       *uuid.UUID     `gorm:"type:uuid;column:override_by" json:"override_by,omitempty"`
	OverrideAt       *time.Time     `gorm:"column:override_at" json:"override_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (AnalysisResult) TableName() string {
	return "analysis_result"
}

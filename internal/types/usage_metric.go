package types

import (
	"time"

	"github.com/google/uuid"
)

// UsageMetric aggregates request/token/latency counters per user, day and
// endpoint. Counters only ever go up; writes are atomic increments at the
// store, so concurrent pipeline completions cannot lose updates.
type UsageMetric struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_metric_user_date_endpoint" json:"user_id"`
	Date                  string    `gorm:"column:date;size:10;not null;uniqueIndex:idx_usage_metric_user_date_endpoint" json:"date"`
	Endpoint              string    `gorm:"column:endpoint;not null;uniqueIndex:idx_usage_metric_user_date_endpoint" json:"endpoint"`
	RequestCount          int64     `gorm:"column:request_count;not null;default:0" json:"request_count"`
	TotalTokens           int64     `gorm:"column:total_tokens;not null;default:0" json:"total_tokens"`
	TotalProcessingTimeMs int64     `gorm:"column:total_processing_time_ms;not null;default:0" json:"total_processing_time_ms"`
	UpdatedAt             time.Time `gorm:"not null" json:"updated_at"`
}

func (UsageMetric) TableName() string {
	return "usage_metric"
}

// UsageDate formats a timestamp as the day key used by usage rows.
func UsageDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

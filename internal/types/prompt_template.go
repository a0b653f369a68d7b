package types

import (
	"time"

	"github.com/google/uuid"
)

// PromptTemplate is one immutable version of a named prompt. New behavior
// ships as a new row with a bumped version; rows referenced by decisions are
// never edited in place.
type PromptTemplate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;index:idx_prompt_template_name;uniqueIndex:idx_prompt_template_name_version" json:"name"`
	Version   int       `gorm:"column:version;not null;uniqueIndex:idx_prompt_template_name_version" json:"version"`
	Body      string    `gorm:"column:body;type:text;not null" json:"body"`
	IsActive  bool      `gorm:"column:is_active;not null;default:false" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PromptTemplate) TableName() string {
	return "prompt_template"
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaterialStatusUploaded   = "uploaded"
	MaterialStatusProcessing = "processing"
	MaterialStatusReady      = "ready"
	MaterialStatusFailed     = "failed"
)

// Material is the source document a set of concepts was extracted from.
// Extraction itself happens upstream; the engine only reads the rows.
type Material struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Title                string `gorm:"not null;column:title" json:"title"`
	Status               string `gorm:"column:status;not null;default:'uploaded'" json:"status"`
	EstimatedTimeMinutes int    `gorm:"column:estimated_time_minutes;not null;default:0" json:"estimated_time_minutes"`
	ErrorMessage         string `gorm:"column:error_message;type:text" json:"error_message,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Material) TableName() string { return "material" }

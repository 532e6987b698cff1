package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email string    `gorm:"uniqueIndex;not null;column:email" json:"email"`

	TotalConceptsMastered   int `gorm:"column:total_concepts_mastered;not null;default:0" json:"total_concepts_mastered"`
	TotalSessionTimeMinutes int `gorm:"column:total_session_time_minutes;not null;default:0" json:"total_session_time_minutes"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

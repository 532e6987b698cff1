package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusAbandoned = "abandoned"
)

type Session struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_session_user_material,priority:1" json:"user_id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index:idx_session_user_material,priority:2" json:"material_id"`

	Status    string     `gorm:"column:status;not null;default:'active'" json:"status"`
	StartedAt time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`

	TotalQuestions   int `gorm:"column:total_questions;not null;default:0" json:"total_questions"`
	TotalCorrect     int `gorm:"column:total_correct;not null;default:0" json:"total_correct"`
	ConceptsWorked   int `gorm:"column:concepts_worked;not null;default:0" json:"concepts_worked"`
	ConceptsMastered int `gorm:"column:concepts_mastered;not null;default:0" json:"concepts_mastered"`

	// Final aggregate stats, written once at close from the response log.
	Summary datatypes.JSON `gorm:"column:summary;type:jsonb" json:"summary,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Session) TableName() string { return "session" }

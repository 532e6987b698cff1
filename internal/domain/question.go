package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is one generated variant for a concept, tagged with the
// engagement mode it was written for and the format it tests.
type Question struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_question_concept_mode,priority:1" json:"concept_id"`

	Mode   string `gorm:"column:mode;not null;index:idx_question_concept_mode,priority:2" json:"mode"`
	Format string `gorm:"column:format;not null;index" json:"format"`

	QuestionText string         `gorm:"column:question_text;type:text;not null" json:"question_text"`
	AnswerText   string         `gorm:"column:answer_text;type:text" json:"answer_text"`
	Difficulty   int            `gorm:"column:difficulty;not null;default:5" json:"difficulty"`
	Payload      datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

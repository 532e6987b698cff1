package domain

import (
	"time"

	"github.com/google/uuid"
)

// Response is one row of the append-only answer log. Rows are never
// mutated after creation; session summaries are rebuilt from this log.
type Response struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ConceptID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_response_user_concept" json:"concept_id"`
	QuestionID *uuid.UUID `gorm:"type:uuid" json:"question_id,omitempty"`
	SessionID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_response_session_seq,priority:1" json:"session_id"`

	Mode   string `gorm:"column:mode;not null" json:"mode"`
	Format string `gorm:"column:format" json:"format,omitempty"`

	AnswerText string `gorm:"column:answer_text;type:text" json:"answer_text,omitempty"`
	Correct    bool   `gorm:"column:correct;not null" json:"correct"`
	Partial    bool   `gorm:"column:partial;not null;default:false" json:"partial"`

	Skipped bool `gorm:"column:skipped;not null;default:false" json:"skipped"`
	Peeked  bool `gorm:"column:peeked;not null;default:false" json:"peeked"`
	// Aided marks answers submitted after a hint or peek; they are kept
	// out of baseline calibration.
	Aided bool `gorm:"column:aided;not null;default:false" json:"aided"`

	ResponseTimeMs int `gorm:"column:response_time_ms;not null;default:0" json:"response_time_ms"`
	HesitationMs   int `gorm:"column:hesitation_ms;not null;default:0" json:"hesitation_ms"`

	SequenceNumber int `gorm:"column:sequence_number;not null;index:idx_response_session_seq,priority:2" json:"sequence_number"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Response) TableName() string { return "response" }

package services

import (
	"time"

	"github.com/google/uuid"
)

// QuestionPresented is the outbound payload for one served turn.
type QuestionPresented struct {
	SessionID   uuid.UUID `json:"session_id"`
	ConceptID   uuid.UUID `json:"concept_id"`
	ConceptName string    `json:"concept_name"`
	QuestionID  uuid.UUID `json:"question_id"`
	Mode        string    `json:"mode"`
	Format      string    `json:"format"`
	Question    string    `json:"question"`

	// Why the selector chose this concept and mode.
	Rule   string `json:"rule"`
	Reason string `json:"reason,omitempty"`

	// Set when the mode differs from the concept's previous mode.
	ModeSwitched bool   `json:"mode_switched,omitempty"`
	PreviousMode string `json:"previous_mode,omitempty"`

	// True when every concept is already mastered and nothing was served.
	SessionComplete bool `json:"session_complete,omitempty"`
}

type AnswerInput struct {
	Text           string `json:"text"`
	ResponseTimeMs int    `json:"response_time_ms"`
	HesitationMs   int    `json:"hesitation_ms"`
}

type Feedback struct {
	SessionID uuid.UUID `json:"session_id"`
	ConceptID uuid.UUID `json:"concept_id"`

	Correct       bool   `json:"correct"`
	Partial       bool   `json:"partial"`
	CorrectAnswer string `json:"correct_answer,omitempty"`

	Phase           string  `json:"phase"`
	Streak          int     `json:"streak"`
	Accuracy        float64 `json:"accuracy"`
	PredictedRecall float64 `json:"predicted_recall"`

	// Set on the turn the five-criteria verdict first flips true.
	MasteredNow bool `json:"mastered_now,omitempty"`

	SessionComplete bool `json:"session_complete,omitempty"`
}

// Aid is the response to a hint or peek request.
type Aid struct {
	SessionID uuid.UUID `json:"session_id"`
	ConceptID uuid.UUID `json:"concept_id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
}

// SessionSummary is rebuilt from the response log at close, never from
// the mutable counters.
type SessionSummary struct {
	SessionID       uuid.UUID `json:"session_id"`
	Status          string    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMinutes int       `json:"duration_minutes"`

	TotalQuestions   int     `json:"total_questions"`
	TotalCorrect     int     `json:"total_correct"`
	TotalSkipped     int     `json:"total_skipped"`
	Accuracy         float64 `json:"accuracy"`
	ConceptsWorked   int     `json:"concepts_worked"`
	ConceptsMastered int     `json:"concepts_mastered"`
}

// SessionSnapshot is the read-only view served by GET. Eventually
// consistent with in-flight writes.
type SessionSnapshot struct {
	SessionID  uuid.UUID `json:"session_id"`
	UserID     uuid.UUID `json:"user_id"`
	MaterialID uuid.UUID `json:"material_id"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`

	TotalQuestions int `json:"total_questions"`
	TotalCorrect   int `json:"total_correct"`

	Concepts []ConceptProgress `json:"concepts"`
}

type ConceptProgress struct {
	ConceptID       uuid.UUID  `json:"concept_id"`
	Name            string     `json:"name"`
	Phase           string     `json:"phase"`
	Accuracy        float64    `json:"accuracy"`
	Streak          int        `json:"streak"`
	PredictedRecall float64    `json:"predicted_recall"`
	MasteredAt      *time.Time `json:"mastered_at,omitempty"`
}

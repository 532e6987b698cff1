package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserConceptState carries the five mastery signals for one (user, concept)
// pair. Mutated only by the orchestrator holding the session lock; all
// other readers tolerate eventually-consistent snapshots.
type UserConceptState struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_concept_state,unique,priority:1" json:"user_id"`
	ConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_concept_state,unique,priority:2" json:"concept_id"`

	Phase string `gorm:"column:phase;not null;default:'untouched'" json:"phase"`

	// Criterion 1: accuracy over all attempts.
	TotalAttempts   int `gorm:"column:total_attempts;not null;default:0" json:"total_attempts"`
	CorrectAttempts int `gorm:"column:correct_attempts;not null;default:0" json:"correct_attempts"`

	// Criterion 2: stability. Streak resets on any non-perfect answer.
	ConsecutivePerfect  int `gorm:"column:consecutive_perfect;not null;default:0" json:"consecutive_perfect"`
	MaxStreak           int `gorm:"column:max_streak;not null;default:0" json:"max_streak"`
	ConsecutiveFailures int `gorm:"column:consecutive_failures;not null;default:0" json:"consecutive_failures"`

	// Criterion 3: speed. Baseline is set once from the first unaided
	// correct answers and never recomputed.
	BaselineResponseMs int            `gorm:"column:baseline_response_ms;not null;default:0" json:"baseline_response_ms"`
	BaselineSamples    int            `gorm:"column:baseline_samples;not null;default:0" json:"baseline_samples"`
	RecentResponseMs   datatypes.JSON `gorm:"column:recent_response_ms;type:jsonb" json:"recent_response_ms,omitempty"`
	HesitationCount    int            `gorm:"column:hesitation_count;not null;default:0" json:"hesitation_count"`

	// Criterion 4: format invariance.
	FormatsAttempted datatypes.JSON `gorm:"column:formats_attempted;type:jsonb" json:"formats_attempted,omitempty"`
	FormatsPassed    datatypes.JSON `gorm:"column:formats_passed;type:jsonb" json:"formats_passed,omitempty"`

	// Criterion 5: predicted recall after a 7-day gap.
	PredictedRecall float64    `gorm:"column:predicted_recall;not null;default:0" json:"predicted_recall"`
	LastEvaluatedAt *time.Time `gorm:"column:last_evaluated_at" json:"last_evaluated_at,omitempty"`

	// Set exactly once on the first all-five verdict; never cleared.
	MasteredAt   *time.Time `gorm:"column:mastered_at" json:"mastered_at,omitempty"`
	NextReviewAt *time.Time `gorm:"column:next_review_at;index" json:"next_review_at,omitempty"`

	CurrentMode   string     `gorm:"column:current_mode" json:"current_mode,omitempty"`
	ModeEnteredAt *time.Time `gorm:"column:mode_entered_at" json:"mode_entered_at,omitempty"`

	// Optimistic concurrency check for read-modify-write cycles.
	Version int `gorm:"column:version;not null;default:0" json:"version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserConceptState) TableName() string { return "user_concept_state" }

func (s *UserConceptState) Accuracy() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.CorrectAttempts) / float64(s.TotalAttempts)
}

func (s *UserConceptState) RecentTimes() []int {
	return decodeIntList(s.RecentResponseMs)
}

func (s *UserConceptState) SetRecentTimes(v []int) {
	s.RecentResponseMs = encodeJSONList(v)
}

func (s *UserConceptState) FormatsAttemptedList() []string {
	return decodeStringList(s.FormatsAttempted)
}

func (s *UserConceptState) SetFormatsAttempted(v []string) {
	s.FormatsAttempted = encodeJSONList(v)
}

func (s *UserConceptState) FormatsPassedList() []string {
	return decodeStringList(s.FormatsPassed)
}

func (s *UserConceptState) SetFormatsPassed(v []string) {
	s.FormatsPassed = encodeJSONList(v)
}

func decodeIntList(raw datatypes.JSON) []int {
	if len(raw) == 0 {
		return nil
	}
	var out []int
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func encodeJSONList(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

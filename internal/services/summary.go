package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/mastery-engine/internal/domain"
)

// summarize derives the final session statistics from the response log
// alone, so the same log always reproduces the same summary.
func summarize(sessionID uuid.UUID, startedAt, endedAt time.Time, status string, log []*domain.Response) *SessionSummary {
	sum := &SessionSummary{
		SessionID: sessionID,
		Status:    status,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	}
	if endedAt.After(startedAt) {
		sum.DurationMinutes = int(endedAt.Sub(startedAt).Minutes())
	}

	worked := make(map[uuid.UUID]bool)
	for _, r := range log {
		if r.Peeked {
			continue
		}
		sum.TotalQuestions++
		worked[r.ConceptID] = true
		if r.Skipped {
			sum.TotalSkipped++
			continue
		}
		if r.Correct {
			sum.TotalCorrect++
		}
	}
	sum.ConceptsWorked = len(worked)
	if sum.TotalQuestions > 0 {
		sum.Accuracy = float64(sum.TotalCorrect) / float64(sum.TotalQuestions)
	}
	return sum
}

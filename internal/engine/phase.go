package engine

// Phase is the per-(user, concept) position in the mastery state machine.
type Phase string

const (
	PhaseUntouched        Phase = "untouched"
	PhaseLearning         Phase = "learning"
	PhaseStruggling       Phase = "struggling"
	PhaseConsolidating    Phase = "consolidating"
	PhaseMasteryCandidate Phase = "mastery_candidate"
	PhaseMastered         Phase = "mastered"
)

// ProgressSnapshot carries the counters a phase transition depends on,
// taken after the response being applied.
type ProgressSnapshot struct {
	TotalAttempts       int
	Accuracy            float64
	Streak              int
	ConsecutiveFailures int

	// Criteria 1, 2, 4 (accuracy, streak, format invariance).
	CandidateCriteriaMet bool
	// All five criteria.
	AllCriteriaMet bool
}

// NextPhase advances the state machine. Mastered is terminal: later
// failures are logged by the caller but never revert the phase.
func NextPhase(cur Phase, s ProgressSnapshot) Phase {
	// A single response can clear several gates at once (e.g. the attempt
	// that both starts a concept and completes a streak), so advance until
	// no rule fires.
	for {
		next := stepPhase(cur, s)
		if next == cur {
			return cur
		}
		cur = next
	}
}

func stepPhase(cur Phase, s ProgressSnapshot) Phase {
	switch cur {
	case PhaseUntouched:
		if s.TotalAttempts > 0 {
			return PhaseLearning
		}
	case PhaseLearning:
		if s.Accuracy >= 0.5 && s.Streak >= 3 {
			return PhaseConsolidating
		}
	case PhaseStruggling:
		if s.Streak >= 3 {
			return PhaseConsolidating
		}
	case PhaseConsolidating:
		if s.CandidateCriteriaMet {
			return PhaseMasteryCandidate
		}
		if s.ConsecutiveFailures >= 2 {
			return PhaseStruggling
		}
	case PhaseMasteryCandidate:
		if s.AllCriteriaMet {
			return PhaseMastered
		}
	case PhaseMastered:
		// terminal
	}
	return cur
}

package engine

import "testing"

func TestNextPhaseFirstAttempt(t *testing.T) {
	got := NextPhase(PhaseUntouched, ProgressSnapshot{TotalAttempts: 1, Accuracy: 0, Streak: 0})
	if got != PhaseLearning {
		t.Fatalf("untouched after first attempt = %s, want learning", got)
	}
}

func TestNextPhaseLearningToConsolidating(t *testing.T) {
	got := NextPhase(PhaseLearning, ProgressSnapshot{TotalAttempts: 4, Accuracy: 0.75, Streak: 3})
	if got != PhaseConsolidating {
		t.Fatalf("learning with acc 0.75 streak 3 = %s, want consolidating", got)
	}
}

func TestNextPhaseLearningHoldsBelowGate(t *testing.T) {
	cases := []ProgressSnapshot{
		{TotalAttempts: 4, Accuracy: 0.4, Streak: 3},
		{TotalAttempts: 4, Accuracy: 0.75, Streak: 2},
	}
	for i, s := range cases {
		if got := NextPhase(PhaseLearning, s); got != PhaseLearning {
			t.Fatalf("case %d: learning advanced to %s with %+v", i, got, s)
		}
	}
}

func TestNextPhaseChainsAcrossGates(t *testing.T) {
	// A third straight correct answer on a fresh concept clears the first
	// two gates in one evaluation.
	got := NextPhase(PhaseUntouched, ProgressSnapshot{TotalAttempts: 3, Accuracy: 1.0, Streak: 3})
	if got != PhaseConsolidating {
		t.Fatalf("untouched with 3-streak = %s, want consolidating", got)
	}
}

func TestNextPhaseConsolidatingToStruggling(t *testing.T) {
	got := NextPhase(PhaseConsolidating, ProgressSnapshot{TotalAttempts: 8, Accuracy: 0.5, ConsecutiveFailures: 2})
	if got != PhaseStruggling {
		t.Fatalf("consolidating after 2 straight failures = %s, want struggling", got)
	}
}

func TestNextPhaseStrugglingRecovers(t *testing.T) {
	got := NextPhase(PhaseStruggling, ProgressSnapshot{TotalAttempts: 10, Accuracy: 0.5, Streak: 3})
	if got != PhaseConsolidating {
		t.Fatalf("struggling with a fresh 3-streak = %s, want consolidating", got)
	}
}

func TestNextPhaseConsolidatingToCandidate(t *testing.T) {
	got := NextPhase(PhaseConsolidating, ProgressSnapshot{
		TotalAttempts: 20, Accuracy: 1.0, Streak: 11, CandidateCriteriaMet: true,
	})
	if got != PhaseMasteryCandidate {
		t.Fatalf("consolidating with criteria 1,2,4 = %s, want mastery_candidate", got)
	}
}

func TestNextPhaseCandidateToMastered(t *testing.T) {
	got := NextPhase(PhaseMasteryCandidate, ProgressSnapshot{
		TotalAttempts: 30, Accuracy: 1.0, Streak: 12,
		CandidateCriteriaMet: true, AllCriteriaMet: true,
	})
	if got != PhaseMastered {
		t.Fatalf("candidate with all five = %s, want mastered", got)
	}
}

func TestNextPhaseCandidateHoldsWithoutRecall(t *testing.T) {
	got := NextPhase(PhaseMasteryCandidate, ProgressSnapshot{
		TotalAttempts: 30, Accuracy: 1.0, Streak: 12, CandidateCriteriaMet: true,
	})
	if got != PhaseMasteryCandidate {
		t.Fatalf("candidate without all five = %s, want mastery_candidate", got)
	}
}

func TestNextPhaseMasteredIsTerminal(t *testing.T) {
	snapshots := []ProgressSnapshot{
		{TotalAttempts: 31, Accuracy: 0.2, ConsecutiveFailures: 5},
		{TotalAttempts: 40, Accuracy: 0.0, Streak: 0},
		{},
	}
	for i, s := range snapshots {
		if got := NextPhase(PhaseMastered, s); got != PhaseMastered {
			t.Fatalf("case %d: mastered moved to %s", i, got)
		}
	}
}

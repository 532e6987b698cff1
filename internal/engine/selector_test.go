package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var selNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func cv(id byte, phase Phase, attempts int, accuracy float64) ConceptView {
	var raw [16]byte
	raw[15] = id
	return ConceptView{
		ConceptID:     uuid.UUID(raw),
		Phase:         phase,
		TotalAttempts: attempts,
		Accuracy:      accuracy,
		LastAttemptAt: selNow.Add(-6 * time.Hour),
	}
}

func TestNextTurnRescueOverridesEverything(t *testing.T) {
	// 4/10 recent actions are skips; concept B has the fewest attempts.
	a := cv(1, PhaseLearning, 5, 0.7)
	b := cv(2, PhaseLearning, 1, 0.2)
	// A concept sitting one recall check from mastery would normally win.
	c := cv(3, PhaseMasteryCandidate, 20, 1.0)
	c.Criteria = Criteria{AccuracyMet: true, StreakMet: true, SpeedMet: true, FormatsMet: true}

	d, ok := NextTurn(TurnInput{
		Concepts:      []ConceptView{a, b, c},
		RecentActions: actions("ssssaaaaaa"),
		Now:           selNow,
	}, DefaultPolicy())
	if !ok {
		t.Fatalf("expected a decision")
	}
	if d.Rule != RuleRescue {
		t.Fatalf("rule = %s, want rescue", d.Rule)
	}
	if d.ConceptID != b.ConceptID {
		t.Fatalf("rescue must pick the least-attempted concept, got %s", d.ConceptID)
	}
	if d.Mode != ModeMicroWins {
		t.Fatalf("rescue mode = %s, want MICRO_WINS", d.Mode)
	}
}

func TestNextTurnRescueBoundaryFallsThrough(t *testing.T) {
	a := cv(1, PhaseLearning, 5, 0.7)
	d, ok := NextTurn(TurnInput{
		Concepts:      []ConceptView{a},
		RecentActions: actions("sssaaaaaaa"), // exactly 30%
		Now:           selNow,
	}, DefaultPolicy())
	if !ok || d.Rule == RuleRescue {
		t.Fatalf("30%% skip rate must not force rescue, got rule=%s ok=%v", d.Rule, ok)
	}
}

func TestNextTurnValidationBeforeChallenge(t *testing.T) {
	ready := cv(1, PhaseMasteryCandidate, 20, 1.0)
	ready.Criteria = Criteria{
		AccuracyMet: true, StreakMet: true, SpeedMet: true, FormatsMet: true,
		PredictedRecall: 0.6,
	}
	other := cv(2, PhaseConsolidating, 8, 0.72)

	d, ok := NextTurn(TurnInput{
		Concepts: []ConceptView{other, ready},
		Now:      selNow,
	}, DefaultPolicy())
	if !ok {
		t.Fatalf("expected a decision")
	}
	if d.Rule != RuleMasteryValidation {
		t.Fatalf("rule = %s, want mastery_validation", d.Rule)
	}
	if d.ConceptID != ready.ConceptID || d.Mode != ModeMasteryValidation {
		t.Fatalf("validation pick = (%s, %s)", d.ConceptID, d.Mode)
	}
}

func TestNextTurnValidationPrefersClosestForecast(t *testing.T) {
	near := cv(1, PhaseMasteryCandidate, 20, 1.0)
	near.Criteria = Criteria{AccuracyMet: true, StreakMet: true, SpeedMet: true, FormatsMet: true, PredictedRecall: 0.9}
	far := cv(2, PhaseMasteryCandidate, 20, 1.0)
	far.Criteria = Criteria{AccuracyMet: true, StreakMet: true, SpeedMet: true, FormatsMet: true, PredictedRecall: 0.4}

	d, _ := NextTurn(TurnInput{Concepts: []ConceptView{far, near}, Now: selNow}, DefaultPolicy())
	if d.ConceptID != near.ConceptID {
		t.Fatalf("validation must pick the highest forecast, got %s", d.ConceptID)
	}
}

func TestNextTurnChallengePrefersTargetBand(t *testing.T) {
	inBand := cv(1, PhaseConsolidating, 10, 0.72)
	tooEasy := cv(2, PhaseConsolidating, 10, 0.99)
	tooHard := cv(3, PhaseLearning, 10, 0.05)

	d, ok := NextTurn(TurnInput{
		Concepts: []ConceptView{tooEasy, inBand, tooHard},
		Now:      selNow,
	}, DefaultPolicy())
	if !ok || d.Rule != RuleOptimalChallenge {
		t.Fatalf("rule = %s ok=%v, want optimal_challenge", d.Rule, ok)
	}
	if d.ConceptID != inBand.ConceptID {
		t.Fatalf("challenge pick = %s, want the in-band concept", d.ConceptID)
	}
}

func TestNextTurnChallengeIntroducesUntouched(t *testing.T) {
	fresh := cv(1, PhaseUntouched, 0, 0)
	fresh.LastAttemptAt = time.Time{}
	easy := cv(2, PhaseConsolidating, 10, 0.98)

	d, _ := NextTurn(TurnInput{Concepts: []ConceptView{easy, fresh}, Now: selNow}, DefaultPolicy())
	if d.ConceptID != fresh.ConceptID {
		t.Fatalf("untouched concept must outrank a near-perfect one, got %s", d.ConceptID)
	}
}

func TestNextTurnNeverRepeatsPreviousConcept(t *testing.T) {
	a := cv(1, PhaseConsolidating, 10, 0.72)
	b := cv(2, PhaseConsolidating, 10, 0.95)

	d, _ := NextTurn(TurnInput{
		Concepts:      []ConceptView{a, b},
		LastConceptID: a.ConceptID,
		Now:           selNow,
	}, DefaultPolicy())
	if d.ConceptID != b.ConceptID {
		t.Fatalf("previous concept must be excluded, got %s", d.ConceptID)
	}
}

func TestNextTurnRepeatsWhenOnlyOneRemains(t *testing.T) {
	a := cv(1, PhaseConsolidating, 10, 0.72)
	done := cv(2, PhaseMastered, 30, 1.0)

	d, ok := NextTurn(TurnInput{
		Concepts:      []ConceptView{a, done},
		LastConceptID: a.ConceptID,
		Now:           selNow,
	}, DefaultPolicy())
	if !ok || d.ConceptID != a.ConceptID {
		t.Fatalf("sole remaining concept must be re-served, got %s ok=%v", d.ConceptID, ok)
	}
}

func TestNextTurnAllMastered(t *testing.T) {
	a := cv(1, PhaseMastered, 30, 1.0)
	b := cv(2, PhaseMastered, 25, 1.0)
	if _, ok := NextTurn(TurnInput{Concepts: []ConceptView{a, b}, Now: selNow}, DefaultPolicy()); ok {
		t.Fatalf("no decision expected when everything is mastered")
	}
}

func TestModeForPhaseTiers(t *testing.T) {
	cases := []struct {
		phase    Phase
		attempts int
		want     Mode
	}{
		{PhaseUntouched, 0, ModeWorkedExample},
		{PhaseLearning, 1, ModeGuidedSolve},
		{PhaseLearning, 2, ModeCollaborative},
		{PhaseStruggling, 7, ModeCollaborative},
		{PhaseConsolidating, 3, ModeRapidFire},
		{PhaseConsolidating, 4, ModeFillStory},
		{PhaseConsolidating, 5, ModeNumberSwap},
		{PhaseMasteryCandidate, 4, ModeReverseEngineer},
		{PhaseMastered, 0, ModeBuildMap},
	}
	for _, tc := range cases {
		if got := modeForPhase(tc.phase, tc.attempts); got != tc.want {
			t.Fatalf("modeForPhase(%s, %d) = %s, want %s", tc.phase, tc.attempts, got, tc.want)
		}
	}
}

func TestModeFormatsCoverInvariance(t *testing.T) {
	// Active-tier rotation has to touch at least two distinct formats or
	// criterion 4 can never pass through normal consolidation.
	seen := map[Format]bool{}
	for _, m := range ActiveModes {
		seen[m.Format()] = true
	}
	if len(seen) < 2 {
		t.Fatalf("active rotation covers %d formats, want >= 2", len(seen))
	}
}

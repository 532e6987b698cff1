package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConceptView is the selector's read model for one concept: current phase,
// counters, and the latest criteria evaluation.
type ConceptView struct {
	ConceptID     uuid.UUID
	Phase         Phase
	TotalAttempts int
	Accuracy      float64
	LastAttemptAt time.Time
	Criteria      Criteria
}

func (v ConceptView) mastered() bool { return v.Phase == PhaseMastered }

// TurnInput is everything one mode-selection turn depends on.
type TurnInput struct {
	Concepts []ConceptView
	// Trailing session actions across all concepts, oldest first.
	RecentActions []Action
	// Concept served on the immediately preceding turn; uuid.Nil on the
	// first turn.
	LastConceptID uuid.UUID
	Now           time.Time
}

type RuleName string

const (
	RuleRescue            RuleName = "rescue"
	RuleMasteryValidation RuleName = "mastery_validation"
	RuleOptimalChallenge  RuleName = "optimal_challenge"
)

// Decision is the selector's output for one turn.
type Decision struct {
	ConceptID uuid.UUID
	Mode      Mode
	Rule      RuleName
	Reason    string
}

// rule is one predicate→action pair of the cascade. Rules are evaluated
// top-down; the first one that produces a decision wins.
type rule struct {
	name  RuleName
	apply func(TurnInput, Policy) (Decision, bool)
}

var cascade = []rule{
	{RuleRescue, pickRescue},
	{RuleMasteryValidation, pickValidation},
	{RuleOptimalChallenge, pickChallenge},
}

// NextTurn runs the priority cascade and returns the next (concept, mode).
// ok is false when every concept is mastered.
func NextTurn(in TurnInput, p Policy) (Decision, bool) {
	for _, r := range cascade {
		if d, ok := r.apply(in, p); ok {
			d.Rule = r.name
			return d, true
		}
	}
	return Decision{}, false
}

// pickRescue forces micro-wins on the least-attempted unmastered concept
// when the anxiety window fires. Breaks the failure→more-failure spiral.
func pickRescue(in TurnInput, p Policy) (Decision, bool) {
	if !RescueTriggered(in.RecentActions, p.Rescue) {
		return Decision{}, false
	}
	var best *ConceptView
	for i := range in.Concepts {
		v := &in.Concepts[i]
		if v.mastered() {
			continue
		}
		if best == nil || lessAttempted(*v, *best) {
			best = v
		}
	}
	if best == nil {
		return Decision{}, false
	}
	return Decision{
		ConceptID: best.ConceptID,
		Mode:      ModeMicroWins,
		Reason:    fmt.Sprintf("skip rate above %.0f%%, serving confidence builders", p.Rescue.SkipRateThreshold*100),
	}, true
}

// pickValidation prioritizes the concept that is one recall check away
// from mastery: criteria 1-4 met, forecast still short.
func pickValidation(in TurnInput, p Policy) (Decision, bool) {
	var best *ConceptView
	for i := range in.Concepts {
		v := &in.Concepts[i]
		if v.mastered() {
			continue
		}
		if !v.Criteria.CoreMet() || v.Criteria.RecallMet {
			continue
		}
		if best == nil ||
			v.Criteria.PredictedRecall > best.Criteria.PredictedRecall ||
			(v.Criteria.PredictedRecall == best.Criteria.PredictedRecall && idLess(*v, *best)) {
			best = v
		}
	}
	if best == nil {
		return Decision{}, false
	}
	return Decision{
		ConceptID: best.ConceptID,
		Mode:      ModeMasteryValidation,
		Reason:    "criteria 1-4 met, validating recall",
	}, true
}

// pickChallenge selects the concept whose accuracy sits closest to the
// target band: near-100% wastes time, near-0% feeds anxiety. Recently
// touched concepts get a bonus to preserve spacing benefits, and the
// concept just served is excluded unless it is the only one left.
func pickChallenge(in TurnInput, p Policy) (Decision, bool) {
	unmastered := 0
	for i := range in.Concepts {
		if !in.Concepts[i].mastered() {
			unmastered++
		}
	}
	if unmastered == 0 {
		return Decision{}, false
	}

	var best *ConceptView
	bestScore := 0.0
	for i := range in.Concepts {
		v := &in.Concepts[i]
		if v.mastered() {
			continue
		}
		if unmastered > 1 && v.ConceptID == in.LastConceptID {
			continue
		}
		score := challengeScore(*v, in.Now, p.Selector)
		if best == nil || score > bestScore || (score == bestScore && idLess(*v, *best)) {
			best = v
			bestScore = score
		}
	}
	if best == nil {
		return Decision{}, false
	}
	return Decision{
		ConceptID: best.ConceptID,
		Mode:      modeForPhase(best.Phase, best.TotalAttempts),
		Reason:    fmt.Sprintf("challenge score %.1f in phase %s", bestScore, best.Phase),
	}, true
}

func challengeScore(v ConceptView, now time.Time, p SelectorPolicy) float64 {
	if v.TotalAttempts == 0 {
		return p.UntouchedScore
	}
	mid := (p.TargetAccuracyLow + p.TargetAccuracyHigh) / 2
	dist := v.Accuracy - mid
	if dist < 0 {
		dist = -dist
	}
	score := 100 - dist*100

	if !v.LastAttemptAt.IsZero() {
		hours := now.Sub(v.LastAttemptAt).Hours()
		if hours < 0 {
			hours = 0
		}
		score += p.RecencyBonus / (1 + hours)
	}
	return score
}

// modeForPhase maps the state machine position to a mode tier; the tier
// rotates by attempt count so format coverage accumulates.
func modeForPhase(phase Phase, attempts int) Mode {
	switch phase {
	case PhaseUntouched, PhaseLearning:
		return FoundationModes[attempts%len(FoundationModes)]
	case PhaseStruggling:
		// Accuracy dropped after prior progress: maximum scaffolding.
		return ModeCollaborative
	case PhaseConsolidating:
		return ActiveModes[attempts%len(ActiveModes)]
	case PhaseMasteryCandidate:
		return DeepModes[attempts%len(DeepModes)]
	case PhaseMastered:
		return ModeBuildMap
	}
	return ModeGuidedSolve
}

func lessAttempted(a, b ConceptView) bool {
	if a.TotalAttempts != b.TotalAttempts {
		return a.TotalAttempts < b.TotalAttempts
	}
	return idLess(a, b)
}

// idLess is the deterministic tie-break.
func idLess(a, b ConceptView) bool {
	return a.ConceptID.String() < b.ConceptID.String()
}

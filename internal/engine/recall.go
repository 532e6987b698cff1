package engine

import (
	"math"
	"time"
)

// Attempt is one graded retrieval event. Skips arrive as Correct=false.
type Attempt struct {
	At      time.Time
	Correct bool
}

// PredictRecall forecasts the probability of a correct answer after a
// 7-day gap with no further practice, from the ordered response history.
//
// The model tracks a memory stability S (hours). A first success seeds S;
// each later success multiplies it by 1 + growth*spacing, where spacing is
// the gap to the previous attempt in days, capped. An un-spaced retrieval
// earns almost nothing; a retrieval after a long gap earns the most. A
// success right after a failure earns half. Failures halve S down to a
// floor. The forecast maps S through an exponential forgetting curve
// evaluated at the horizon.
//
// Pure and deterministic: identical histories yield identical outputs.
func PredictRecall(history []Attempt, now time.Time, p RecallPolicy) float64 {
	if len(history) == 0 {
		return 0.0
	}

	stability := 0.0
	prevFailed := false
	var prevAt time.Time

	for i, a := range history {
		gapHours := 0.0
		if i > 0 {
			gapHours = a.At.Sub(prevAt).Hours()
			if gapHours < 0 {
				gapHours = 0
			}
		}

		if a.Correct {
			if stability == 0 {
				stability = p.InitStabilityHours
			} else {
				increment := p.Growth * math.Min(gapHours/24, p.SpacingCapDays)
				if prevFailed {
					increment *= p.RelearnPenalty
				}
				stability *= 1 + increment
			}
			prevFailed = false
		} else {
			if stability > 0 {
				stability = math.Max(stability*p.FailureDecay, p.FloorStabilityHours)
			}
			prevFailed = true
		}
		prevAt = a.At
	}

	if stability <= 0 {
		return 0.0
	}

	sinceLast := now.Sub(prevAt).Hours()
	if sinceLast < 0 {
		sinceLast = 0
	}
	elapsed := sinceLast + p.HorizonHours

	return math.Exp(-elapsed / stability)
}

package engine

// Criterion names one of the five independent mastery signals.
type Criterion string

const (
	CriterionAccuracy Criterion = "accuracy"
	CriterionStreak   Criterion = "streak"
	CriterionSpeed    Criterion = "speed"
	CriterionFormats  Criterion = "formats"
	CriterionRecall   Criterion = "recall"
)

// StateView is the immutable snapshot of one concept state the evaluator
// reads. The orchestrator builds it fresh on every evaluation.
type StateView struct {
	TotalAttempts      int
	CorrectAttempts    int
	ConsecutivePerfect int

	// Mean of the first qualifying correct answers; 0 until established.
	BaselineResponseMs int
	// Response times of the most recent attempts, oldest first.
	RecentResponseMs []int

	FormatsAttempted []string
	FormatsPassed    []string

	PredictedRecall float64
}

// Criteria is the evaluation result: one tagged record per turn, with
// per-criterion values, pass flags, and the criteria that blocked the
// verdict when it is false.
type Criteria struct {
	Accuracy    float64
	AccuracyMet bool

	Streak    int
	StreakMet bool

	// SpeedRatio is recent-average / baseline; 0 until a baseline exists.
	SpeedRatio float64
	SpeedMet   bool

	FormatInvariance float64
	FormatCount      int
	FormatsMet       bool

	PredictedRecall float64
	RecallMet       bool

	Mastered bool
	Limiting []Criterion
}

// CoreMet reports criteria 1-4 (everything but predicted recall). A
// concept with CoreMet and a failing recall forecast is one validation
// away from mastery.
func (c Criteria) CoreMet() bool {
	return c.AccuracyMet && c.StreakMet && c.SpeedMet && c.FormatsMet
}

// CandidateMet reports criteria 1, 2 and 4, the gate into the
// mastery-candidate phase.
func (c Criteria) CandidateMet() bool {
	return c.AccuracyMet && c.StreakMet && c.FormatsMet
}

// EvaluateMastery combines the five criteria. Strict AND: a single failing
// criterion blocks mastery regardless of the others. Pure; the caller
// applies the mastered-at side effect on the first true verdict.
func EvaluateMastery(v StateView, p MasteryPolicy) Criteria {
	out := Criteria{
		Streak:          v.ConsecutivePerfect,
		PredictedRecall: v.PredictedRecall,
	}

	// Criterion 1: accuracy over all attempts, not a rolling window.
	if v.TotalAttempts > 0 {
		out.Accuracy = float64(v.CorrectAttempts) / float64(v.TotalAttempts)
		out.AccuracyMet = out.Accuracy >= p.MinAccuracy
	}

	// Criterion 2: stability.
	out.StreakMet = v.ConsecutivePerfect >= p.MinStreak

	// Criterion 3: fluency against the frozen baseline.
	if v.BaselineResponseMs > 0 && len(v.RecentResponseMs) > 0 {
		recent := v.RecentResponseMs
		if len(recent) > p.SpeedWindow {
			recent = recent[len(recent)-p.SpeedWindow:]
		}
		sum := 0
		for _, ms := range recent {
			sum += ms
		}
		avg := float64(sum) / float64(len(recent))
		out.SpeedRatio = avg / float64(v.BaselineResponseMs)
		out.SpeedMet = out.SpeedRatio <= p.MaxSpeedRatio
	}

	// Criterion 4: format invariance over formats actually attempted.
	out.FormatCount = len(v.FormatsAttempted)
	if out.FormatCount > 0 {
		out.FormatInvariance = float64(len(v.FormatsPassed)) / float64(out.FormatCount)
	}
	out.FormatsMet = out.FormatCount >= p.MinFormats &&
		out.FormatInvariance >= p.MinFormatInvariance

	// Criterion 5: forecast from the decay model.
	out.RecallMet = v.PredictedRecall >= p.MinPredictedRecall

	out.Mastered = out.AccuracyMet && out.StreakMet && out.SpeedMet &&
		out.FormatsMet && out.RecallMet

	if !out.Mastered {
		if !out.AccuracyMet {
			out.Limiting = append(out.Limiting, CriterionAccuracy)
		}
		if !out.StreakMet {
			out.Limiting = append(out.Limiting, CriterionStreak)
		}
		if !out.SpeedMet {
			out.Limiting = append(out.Limiting, CriterionSpeed)
		}
		if !out.FormatsMet {
			out.Limiting = append(out.Limiting, CriterionFormats)
		}
		if !out.RecallMet {
			out.Limiting = append(out.Limiting, CriterionRecall)
		}
	}

	return out
}

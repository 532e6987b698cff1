package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy bundles every tunable threshold in the engine. The defaults come
// from observed behavior of the production cascade; override them through
// a policy file only with evidence.
type Policy struct {
	Mastery  MasteryPolicy  `yaml:"mastery"`
	Recall   RecallPolicy   `yaml:"recall"`
	Rescue   RescuePolicy   `yaml:"rescue"`
	Selector SelectorPolicy `yaml:"selector"`
}

type MasteryPolicy struct {
	MinAccuracy         float64 `yaml:"min_accuracy"`
	MinStreak           int     `yaml:"min_streak"`
	MaxSpeedRatio       float64 `yaml:"max_speed_ratio"`
	SpeedWindow         int     `yaml:"speed_window"`
	BaselineSamples     int     `yaml:"baseline_samples"`
	MinFormatInvariance float64 `yaml:"min_format_invariance"`
	MinFormats          int     `yaml:"min_formats"`
	MinPredictedRecall  float64 `yaml:"min_predicted_recall"`
}

type RecallPolicy struct {
	InitStabilityHours  float64 `yaml:"init_stability_hours"`
	Growth              float64 `yaml:"growth"`
	SpacingCapDays      float64 `yaml:"spacing_cap_days"`
	RelearnPenalty      float64 `yaml:"relearn_penalty"`
	FailureDecay        float64 `yaml:"failure_decay"`
	FloorStabilityHours float64 `yaml:"floor_stability_hours"`
	HorizonHours        float64 `yaml:"horizon_hours"`
}

type RescuePolicy struct {
	Window            int     `yaml:"window"`
	SkipRateThreshold float64 `yaml:"skip_rate_threshold"`
}

type SelectorPolicy struct {
	TargetAccuracyLow  float64 `yaml:"target_accuracy_low"`
	TargetAccuracyHigh float64 `yaml:"target_accuracy_high"`
	UntouchedScore     float64 `yaml:"untouched_score"`
	RecencyBonus       float64 `yaml:"recency_bonus"`
}

func DefaultPolicy() Policy {
	return Policy{
		Mastery: MasteryPolicy{
			MinAccuracy:         0.99,
			MinStreak:           10,
			MaxSpeedRatio:       1.3,
			SpeedWindow:         10,
			BaselineSamples:     3,
			MinFormatInvariance: 0.8,
			MinFormats:          2,
			MinPredictedRecall:  0.95,
		},
		Recall: RecallPolicy{
			InitStabilityHours:  12,
			Growth:              0.9,
			SpacingCapDays:      4,
			RelearnPenalty:      0.5,
			FailureDecay:        0.5,
			FloorStabilityHours: 6,
			HorizonHours:        7 * 24,
		},
		Rescue: RescuePolicy{
			Window:            10,
			SkipRateThreshold: 0.3,
		},
		Selector: SelectorPolicy{
			TargetAccuracyLow:  0.60,
			TargetAccuracyHigh: 0.85,
			UntouchedScore:     85,
			RecencyBonus:       20,
		},
	}
}

// LoadPolicy reads a YAML policy file over the defaults. Missing keys keep
// their default values.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.Mastery.MinAccuracy <= 0 || p.Mastery.MinAccuracy > 1 {
		return fmt.Errorf("mastery.min_accuracy out of range: %v", p.Mastery.MinAccuracy)
	}
	if p.Mastery.MinStreak < 1 {
		return fmt.Errorf("mastery.min_streak out of range: %v", p.Mastery.MinStreak)
	}
	if p.Mastery.MaxSpeedRatio < 1 {
		return fmt.Errorf("mastery.max_speed_ratio out of range: %v", p.Mastery.MaxSpeedRatio)
	}
	if p.Mastery.MinPredictedRecall <= 0 || p.Mastery.MinPredictedRecall > 1 {
		return fmt.Errorf("mastery.min_predicted_recall out of range: %v", p.Mastery.MinPredictedRecall)
	}
	if p.Rescue.Window < 1 {
		return fmt.Errorf("rescue.window out of range: %v", p.Rescue.Window)
	}
	if p.Rescue.SkipRateThreshold < 0 || p.Rescue.SkipRateThreshold >= 1 {
		return fmt.Errorf("rescue.skip_rate_threshold out of range: %v", p.Rescue.SkipRateThreshold)
	}
	if p.Selector.TargetAccuracyLow >= p.Selector.TargetAccuracyHigh {
		return fmt.Errorf("selector target band inverted: [%v, %v]",
			p.Selector.TargetAccuracyLow, p.Selector.TargetAccuracyHigh)
	}
	if p.Recall.HorizonHours <= 0 {
		return fmt.Errorf("recall.horizon_hours out of range: %v", p.Recall.HorizonHours)
	}
	return nil
}

package engine

// Action is one protocol action in the session, any concept.
type Action string

const (
	ActionAnswer Action = "answer"
	ActionSkip   Action = "skip"
	ActionHint   Action = "hint"
	ActionPeek   Action = "peek"
)

// RescueTriggered reports whether the skip rate over the trailing window
// strictly exceeds the threshold. Rescue is session-scoped: it overrides
// whatever concept would otherwise be served next. Exactly at the
// threshold does not trigger.
func RescueTriggered(recent []Action, p RescuePolicy) bool {
	if len(recent) == 0 {
		return false
	}
	window := recent
	if len(window) > p.Window {
		window = window[len(window)-p.Window:]
	}
	skips := 0
	for _, a := range window {
		if a == ActionSkip {
			skips++
		}
	}
	return float64(skips)/float64(len(window)) > p.SkipRateThreshold
}

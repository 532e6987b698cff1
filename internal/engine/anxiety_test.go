package engine

import "testing"

func actions(pattern string) []Action {
	out := make([]Action, 0, len(pattern))
	for _, r := range pattern {
		switch r {
		case 's':
			out = append(out, ActionSkip)
		case 'h':
			out = append(out, ActionHint)
		case 'p':
			out = append(out, ActionPeek)
		default:
			out = append(out, ActionAnswer)
		}
	}
	return out
}

func TestRescueTriggersAboveThreshold(t *testing.T) {
	if !RescueTriggered(actions("ssssaaaaaa"), DefaultPolicy().Rescue) {
		t.Fatalf("4/10 skips must trigger rescue")
	}
}

func TestRescueBoundaryDoesNotTrigger(t *testing.T) {
	if RescueTriggered(actions("sssaaaaaaa"), DefaultPolicy().Rescue) {
		t.Fatalf("exactly 30%% skip rate must not trigger rescue")
	}
}

func TestRescueEmptyWindow(t *testing.T) {
	if RescueTriggered(nil, DefaultPolicy().Rescue) {
		t.Fatalf("empty window must not trigger rescue")
	}
}

func TestRescueUsesTrailingWindowOnly(t *testing.T) {
	// Ten skips followed by ten answers: the trailing window holds only
	// answers.
	if RescueTriggered(actions("ssssssssssaaaaaaaaaa"), DefaultPolicy().Rescue) {
		t.Fatalf("old skips outside the window must not trigger rescue")
	}
}

func TestRescueShortWindow(t *testing.T) {
	// With fewer actions than the window, the rate runs over what exists.
	if !RescueTriggered(actions("ssaaa"), DefaultPolicy().Rescue) {
		t.Fatalf("2/5 skips must trigger rescue")
	}
}

func TestRescueHintsAndPeeksAreNotSkips(t *testing.T) {
	if RescueTriggered(actions("hhhpppaaaa"), DefaultPolicy().Rescue) {
		t.Fatalf("hints and peeks must not count toward the skip rate")
	}
}

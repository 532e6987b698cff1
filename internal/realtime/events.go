package realtime

type Event string

const (
	EventQuestionPresented Event = "QuestionPresented"
	EventFeedback          Event = "Feedback"
	EventModeSwitched      Event = "ModeSwitched"
	EventMasteryAchieved   Event = "MasteryAchieved"
	EventSessionComplete   Event = "SessionComplete"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// SessionChannel is the pub/sub channel a client watches for one
// practice session's events.
func SessionChannel(sessionID string) string {
	return "session:" + sessionID
}

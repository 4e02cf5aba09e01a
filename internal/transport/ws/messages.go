package ws

// Message types pushed to watchers.
const (
	TypeState = "state" // active roster snapshot for the watched meeting
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatePayload struct {
	MeetingKey     string       `json:"meetingKey"`
	Participants   []RosterItem `json:"participants"`
	WebhookTracked int          `json:"webhookTracked"`
	UpdatedAtUnix  int64        `json:"updated_at_unix"`
}

type RosterItem struct {
	ParticipantID string `json:"participantUUID"`
	ScreenName    string `json:"screenName"`
	Role          string `json:"role"`
}

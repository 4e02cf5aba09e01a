package http

type RegisterRequest struct {
	ParticipantID string `json:"participantUUID"`
	ScreenName    string `json:"screenName"`
	Role          string `json:"role"`
}

type SyncRequest struct {
	Participants []SyncParticipant `json:"participants"`
}

type SyncParticipant struct {
	ParticipantID string `json:"participantUUID"`
	ScreenName    string `json:"screenName"`
	Role          string `json:"role"`
}

type ParticipantItem struct {
	ParticipantID string `json:"participantUUID"`
	ScreenName    string `json:"screenName"`
	Role          string `json:"role"`
}

type SnapshotResponse struct {
	Participants   []ParticipantItem `json:"participants"`
	UpdatedAt      int64             `json:"updatedAt"`
	StaleAfterMS   int64             `json:"staleAfterMs"`
	WebhookTracked int               `json:"webhookTracked"`
}

type StatusResponse struct {
	Success bool `json:"success"`
	Updated int  `json:"updated,omitempty"`
}

type ValidationResponse struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// Inbound webhook envelope. Field fallbacks mirror what the event source
// actually sends across meeting types.
type webhookEnvelope struct {
	Event   string         `json:"event"`
	Payload webhookPayload `json:"payload"`
}

type webhookPayload struct {
	PlainToken string        `json:"plainToken"`
	Object     webhookObject `json:"object"`
}

type webhookObject struct {
	UUID        string             `json:"uuid"`
	Participant webhookParticipant `json:"participant"`
}

type webhookParticipant struct {
	ParticipantUUID     string `json:"participant_uuid"`
	ID                  string `json:"id"`
	UserID              string `json:"user_id"`
	UserName            string `json:"user_name"`
	ParticipantUserName string `json:"participant_user_name"`
	Role                string `json:"role"`
}

func (p webhookParticipant) participantID() string {
	switch {
	case p.ParticipantUUID != "":
		return p.ParticipantUUID
	case p.ID != "":
		return p.ID
	default:
		return p.UserID
	}
}

func (p webhookParticipant) screenName() string {
	switch {
	case p.UserName != "":
		return p.UserName
	case p.ParticipantUserName != "":
		return p.ParticipantUserName
	default:
		return ""
	}
}

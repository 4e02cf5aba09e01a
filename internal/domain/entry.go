package domain

import "time"

// Source tags the channel that produced a presence observation. It is an open
// set in practice; callers must tolerate values they do not recognise.
type Source string

const (
	// SourceHeartbeat — self-reported by the participant's own client.
	SourceHeartbeat Source = "heartbeat"
	// SourceSync — host-pushed bulk roster snapshot.
	SourceSync Source = "sdk-sync"
	// SourceWebhook — authenticated push event; authoritative until an
	// explicit leave or TTL eviction.
	SourceWebhook Source = "webhook"
)

const (
	DefaultRole = "attendee"
	UnknownName = "Unknown"
)

// Entry is the per-participant presence record stored against a meeting.
type Entry struct {
	ScreenName string
	Role       string
	LastSeen   time.Time
	Source     Source
}

// RosterRecord is one participant row of a host-pushed bulk sync batch.
type RosterRecord struct {
	ParticipantID string
	ScreenName    string
	Role          string
}

package domain

import "time"

// Merge rules for the three update channels. All three are pure: they decide
// how a new observation combines with whatever entry already exists, and the
// store applies the result atomically.

// MergeHeartbeat builds the entry for a self-reported observation. The
// first-person signal always wins immediately, including relabeling a webhook
// or sdk-sync entry back to heartbeat.
func MergeHeartbeat(screenName, role string, now time.Time) Entry {
	if role == "" {
		role = DefaultRole
	}
	return Entry{
		ScreenName: screenName,
		Role:       role,
		LastSeen:   now,
		Source:     SourceHeartbeat,
	}
}

// MergeSync folds one roster record into an existing entry. The sync channel
// is purely additive: names and roles fall back to what is already known,
// lastSeen never regresses, and a webhook source label is sticky. A missing
// record is never a removal signal.
func MergeSync(existing Entry, exists bool, rec RosterRecord, now time.Time) Entry {
	out := Entry{
		ScreenName: rec.ScreenName,
		Role:       rec.Role,
		LastSeen:   now,
		Source:     SourceSync,
	}
	if out.ScreenName == "" && exists {
		out.ScreenName = existing.ScreenName
	}
	if out.ScreenName == "" {
		out.ScreenName = UnknownName
	}
	if out.Role == "" && exists {
		out.Role = existing.Role
	}
	if out.Role == "" {
		out.Role = DefaultRole
	}
	if exists {
		if existing.LastSeen.After(out.LastSeen) {
			out.LastSeen = existing.LastSeen
		}
		if existing.Source == SourceWebhook {
			out.Source = SourceWebhook
		}
	}
	return out
}

// MergeWebhookJoin builds the entry for an authenticated join event. It
// reports keep=false when the event must be dropped: an existing heartbeat
// entry carries fresher timing data than the event channel, so the join
// defers to it.
func MergeWebhookJoin(existing Entry, exists bool, screenName, role string, now time.Time) (Entry, bool) {
	if exists && existing.Source == SourceHeartbeat {
		return existing, false
	}
	if screenName == "" {
		screenName = UnknownName
	}
	if role == "" {
		role = DefaultRole
	}
	return Entry{
		ScreenName: screenName,
		Role:       role,
		LastSeen:   now,
		Source:     SourceWebhook,
	}, true
}

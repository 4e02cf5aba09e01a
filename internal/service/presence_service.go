package service

import (
	"time"

	"github.com/samber/lo"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/store"
)

// DefaultStaleThreshold is the read-time window beyond which a non-webhook
// entry is excluded from the active snapshot without being deleted.
const DefaultStaleThreshold = 15 * time.Second

// Notifier is told when a meeting's presence view may have changed. Delivery
// is best-effort: it must never block and never affects the mutation that
// triggered it.
type Notifier interface {
	PresenceChanged(meetingKey string)
}

// PresenceService applies the per-channel merge rules to the store and
// computes the externally visible active roster.
type PresenceService struct {
	store      *store.Store
	now        func() time.Time
	staleAfter time.Duration
	notifier   Notifier
}

func NewPresenceService(st *store.Store) *PresenceService {
	return &PresenceService{
		store:      st,
		now:        time.Now,
		staleAfter: DefaultStaleThreshold,
	}
}

// SetNow overrides the clock, for deterministic tests.
func (s *PresenceService) SetNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *PresenceService) SetStaleThreshold(d time.Duration) {
	if d > 0 {
		s.staleAfter = d
	}
}

func (s *PresenceService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Heartbeat records a self-reported observation. It always wins immediately,
// regardless of what the entry previously looked like.
func (s *PresenceService) Heartbeat(meetingKey, participantID, screenName, role string) {
	now := s.now()
	s.store.Update(meetingKey, participantID, func(domain.Entry, bool) (domain.Entry, bool) {
		return domain.MergeHeartbeat(screenName, role, now), true
	})
	s.notify(meetingKey)
}

// SyncRoster folds a host-pushed batch into the store and returns the number
// of records applied. Records missing a participant id are skipped; records
// absent from the batch are left untouched.
func (s *PresenceService) SyncRoster(meetingKey string, records []domain.RosterRecord) int {
	now := s.now()
	applied := 0
	for _, rec := range records {
		if rec.ParticipantID == "" {
			continue
		}
		rec := rec
		s.store.Update(meetingKey, rec.ParticipantID, func(existing domain.Entry, exists bool) (domain.Entry, bool) {
			return domain.MergeSync(existing, exists, rec, now), true
		})
		applied++
	}
	if applied > 0 {
		s.notify(meetingKey)
	}
	return applied
}

// WebhookJoin records an authenticated join event. It reports whether the
// event was stored; a join against a heartbeat entry is dropped.
func (s *PresenceService) WebhookJoin(meetingKey, participantID, screenName, role string) bool {
	now := s.now()
	stored := false
	s.store.Update(meetingKey, participantID, func(existing domain.Entry, exists bool) (domain.Entry, bool) {
		next, keep := domain.MergeWebhookJoin(existing, exists, screenName, role, now)
		stored = keep
		return next, keep
	})
	if stored {
		s.notify(meetingKey)
	}
	return stored
}

// WebhookLeave removes a participant unconditionally, whatever the entry's
// source. An absent meeting or participant is a silent no-op.
func (s *PresenceService) WebhookLeave(meetingKey, participantID string) {
	s.store.Remove(meetingKey, participantID)
	s.notify(meetingKey)
}

// EndMeeting tears down an entire partition.
func (s *PresenceService) EndMeeting(meetingKey string) {
	s.store.DeleteMeeting(meetingKey)
	s.notify(meetingKey)
}

// ActiveParticipant is the externally visible projection of an entry.
type ActiveParticipant struct {
	ParticipantID string
	ScreenName    string
	Role          string
}

// ActiveRoster is the snapshot returned to consumers. Order of Participants
// carries no meaning.
type ActiveRoster struct {
	Participants   []ActiveParticipant
	WebhookTracked int
	StaleAfter     time.Duration
	AsOf           time.Time
}

// ListActive filters the raw store at read time: webhook entries are active
// until explicitly removed, everything else only within the staleness window.
// An absent or empty meeting yields an empty roster, not an error.
func (s *PresenceService) ListActive(meetingKey string) ActiveRoster {
	now := s.now()
	active := lo.PickBy(s.store.Snapshot(meetingKey), func(_ string, e domain.Entry) bool {
		return e.Source == domain.SourceWebhook || now.Sub(e.LastSeen) <= s.staleAfter
	})

	roster := ActiveRoster{
		Participants: lo.MapToSlice(active, func(id string, e domain.Entry) ActiveParticipant {
			return ActiveParticipant{ParticipantID: id, ScreenName: e.ScreenName, Role: e.Role}
		}),
		StaleAfter: s.staleAfter,
		AsOf:       now,
	}
	for _, e := range active {
		if e.Source == domain.SourceWebhook {
			roster.WebhookTracked++
		}
	}
	return roster
}

func (s *PresenceService) notify(meetingKey string) {
	if s.notifier != nil {
		s.notifier.PresenceChanged(meetingKey)
	}
}

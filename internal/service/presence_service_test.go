package service

import (
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/store"
)

// fakeClock mirrors the injected-now pattern: tests advance it explicitly.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestService() (*PresenceService, *store.Store, *fakeClock) {
	st := store.New()
	clk := newFakeClock()
	svc := NewPresenceService(st)
	svc.SetNow(clk.Now)
	return svc, st, clk
}

func find(roster ActiveRoster, id string) (ActiveParticipant, bool) {
	for _, p := range roster.Participants {
		if p.ParticipantID == id {
			return p, true
		}
	}
	return ActiveParticipant{}, false
}

func TestHeartbeatThenWebhookJoinKeepsHeartbeat(t *testing.T) {
	svc, st, _ := newTestService()

	svc.Heartbeat("m1", "p1", "Alice", "attendee")
	if stored := svc.WebhookJoin("m1", "p1", "Alice2", "attendee"); stored {
		t.Fatal("webhook join must be dropped against a heartbeat entry")
	}

	e := st.Snapshot("m1")["p1"]
	if e.ScreenName != "Alice" || e.Source != domain.SourceHeartbeat {
		t.Fatalf("entry = %+v, want Alice/heartbeat", e)
	}
}

func TestWebhookJoinThenSyncKeepsNameAndStickySource(t *testing.T) {
	svc, st, clk := newTestService()

	svc.WebhookJoin("m1", "p1", "Alice", "attendee")
	joined := clk.Now()
	clk.Advance(2 * time.Second)

	applied := svc.SyncRoster("m1", []domain.RosterRecord{{ParticipantID: "p1"}})
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}

	e := st.Snapshot("m1")["p1"]
	if e.ScreenName != "Alice" {
		t.Fatalf("screenName = %q, want Alice kept", e.ScreenName)
	}
	if e.Source != domain.SourceWebhook {
		t.Fatalf("source = %q, want webhook sticky", e.Source)
	}
	if !e.LastSeen.After(joined) {
		t.Fatalf("lastSeen = %v, want advanced past %v", e.LastSeen, joined)
	}
}

func TestSyncSkipsRecordsWithoutID(t *testing.T) {
	svc, st, _ := newTestService()
	applied := svc.SyncRoster("m1", []domain.RosterRecord{
		{ScreenName: "Ghost"},
		{ParticipantID: "p1", ScreenName: "Alice"},
	})
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}
	if len(st.Snapshot("m1")) != 1 {
		t.Fatal("record without id must not be stored")
	}
}

func TestWebhookLeaveRemovesRegardlessOfSource(t *testing.T) {
	svc, st, _ := newTestService()

	svc.Heartbeat("m1", "p1", "Alice", "")
	svc.WebhookJoin("m1", "p2", "Bob", "")
	svc.WebhookLeave("m1", "p1")
	svc.WebhookLeave("m1", "p2")
	if st.Len() != 0 {
		t.Fatalf("entries remain after authoritative leave: %v", st.Snapshot("m1"))
	}

	// Leave on an absent meeting is a silent no-op.
	svc.WebhookLeave("gone", "p1")
	if st.Len() != 0 {
		t.Fatal("leave on absent meeting created state")
	}
}

func TestListActiveStalenessFilter(t *testing.T) {
	svc, _, clk := newTestService()

	svc.Heartbeat("m1", "fresh", "Fresh", "")
	svc.WebhookJoin("m1", "tracked", "Tracked", "host")
	clk.Advance(20 * time.Second)
	svc.Heartbeat("m1", "recent", "Recent", "")

	roster := svc.ListActive("m1")
	if _, ok := find(roster, "fresh"); ok {
		t.Fatal("stale heartbeat entry must be filtered out")
	}
	if _, ok := find(roster, "recent"); !ok {
		t.Fatal("fresh heartbeat entry missing")
	}
	if p, ok := find(roster, "tracked"); !ok || p.Role != "host" {
		t.Fatalf("webhook entry must stay active past the window, got %+v (%v)", p, ok)
	}
	if roster.WebhookTracked != 1 {
		t.Fatalf("webhookTracked = %d, want 1", roster.WebhookTracked)
	}
	if roster.StaleAfter != DefaultStaleThreshold {
		t.Fatalf("staleAfter = %v, want %v", roster.StaleAfter, DefaultStaleThreshold)
	}
}

func TestListActiveAbsentMeeting(t *testing.T) {
	svc, _, _ := newTestService()
	roster := svc.ListActive("absent")
	if len(roster.Participants) != 0 || roster.WebhookTracked != 0 {
		t.Fatalf("absent meeting roster = %+v, want empty", roster)
	}
}

func TestEndMeeting(t *testing.T) {
	svc, st, _ := newTestService()
	svc.Heartbeat("m1", "p1", "Alice", "")
	svc.EndMeeting("m1")
	if st.Len() != 0 {
		t.Fatal("teardown left the partition behind")
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	keys []string
}

func (n *recordingNotifier) PresenceChanged(meetingKey string) {
	n.mu.Lock()
	n.keys = append(n.keys, meetingKey)
	n.mu.Unlock()
}

func TestNotifierFiresOnMutations(t *testing.T) {
	svc, _, _ := newTestService()
	n := &recordingNotifier{}
	svc.SetNotifier(n)

	svc.Heartbeat("m1", "p1", "Alice", "")
	svc.WebhookJoin("m1", "p1", "Alice2", "") // dropped: no notification
	svc.WebhookLeave("m1", "p1")
	svc.SyncRoster("m1", nil) // nothing applied: no notification

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.keys) != 2 {
		t.Fatalf("notifications = %v, want exactly heartbeat and leave", n.keys)
	}
}

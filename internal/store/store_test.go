package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/presence-service/internal/domain"
)

func upsert(e domain.Entry) UpdateFunc {
	return func(domain.Entry, bool) (domain.Entry, bool) { return e, true }
}

func TestUpdateCreatesPartitionLazily(t *testing.T) {
	s := New()
	if s.Len() != 0 {
		t.Fatalf("fresh store has %d meetings", s.Len())
	}

	s.Update("m1", "p1", upsert(domain.Entry{ScreenName: "Alice"}))
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	snap := s.Snapshot("m1")
	if snap["p1"].ScreenName != "Alice" {
		t.Fatalf("entry not stored: %+v", snap)
	}
}

func TestUpdateKeepFalseLeavesNothingBehind(t *testing.T) {
	s := New()
	s.Update("m1", "p1", func(domain.Entry, bool) (domain.Entry, bool) {
		return domain.Entry{}, false
	})
	if s.Len() != 0 {
		t.Fatal("dropped write must not leave an empty partition")
	}
}

func TestSnapshotDoesNotCreateAndIsACopy(t *testing.T) {
	s := New()
	if got := s.Snapshot("absent"); len(got) != 0 {
		t.Fatalf("absent meeting snapshot = %v, want empty", got)
	}
	if s.Len() != 0 {
		t.Fatal("read created a partition")
	}

	s.Update("m1", "p1", upsert(domain.Entry{ScreenName: "Alice"}))
	snap := s.Snapshot("m1")
	snap["p1"] = domain.Entry{ScreenName: "Mallory"}
	if s.Snapshot("m1")["p1"].ScreenName != "Alice" {
		t.Fatal("snapshot leaked a reference into the store")
	}
}

func TestRemoveDropsEmptyPartition(t *testing.T) {
	s := New()
	s.Remove("absent", "p1") // no-op

	s.Update("m1", "p1", upsert(domain.Entry{ScreenName: "Alice"}))
	s.Update("m1", "p2", upsert(domain.Entry{ScreenName: "Bob"}))
	s.Remove("m1", "p1")
	if len(s.Snapshot("m1")) != 1 {
		t.Fatal("remove removed the wrong entries")
	}
	s.Remove("m1", "p2")
	if s.Len() != 0 {
		t.Fatal("emptied partition must be dropped")
	}
}

func TestPrune(t *testing.T) {
	s := New()
	old := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.Update("m1", "p1", upsert(domain.Entry{LastSeen: old}))
	s.Update("m1", "p2", upsert(domain.Entry{LastSeen: old.Add(time.Hour)}))

	removed := s.Prune("m1", func(_ string, e domain.Entry) bool {
		return e.LastSeen.Equal(old)
	})
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := s.Snapshot("m1")["p2"]; !ok {
		t.Fatal("survivor entry missing")
	}

	s.Prune("m1", func(string, domain.Entry) bool { return true })
	if s.Len() != 0 {
		t.Fatal("fully pruned partition must be dropped")
	}
	if s.Prune("absent", func(string, domain.Entry) bool { return true }) != 0 {
		t.Fatal("prune of absent meeting must be a no-op")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("m%d", n%2)
			for j := 0; j < 200; j++ {
				pid := fmt.Sprintf("p%d", j%10)
				s.Update(key, pid, upsert(domain.Entry{ScreenName: pid}))
				_ = s.Snapshot(key)
				for _, k := range s.MeetingKeys() {
					s.Prune(k, func(string, domain.Entry) bool { return false })
				}
				if j%50 == 0 {
					s.Remove(key, pid)
				}
			}
		}(i)
	}
	wg.Wait()
}

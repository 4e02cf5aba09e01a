// Package store holds the authoritative nested presence map:
// meeting key -> participant key -> entry.
//
// The store exclusively owns the entries. Callers receive copies and submit
// observations through Update; they never hold references into the maps. All
// operations are short computation-only critical sections behind one RWMutex,
// which is enough for a single-instance deployment.
package store

import (
	"sync"

	"github.com/cwrk-planet/presence-service/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	meetings map[string]map[string]domain.Entry
}

func New() *Store {
	return &Store{meetings: make(map[string]map[string]domain.Entry)}
}

// UpdateFunc receives the current entry for a participant (exists reports
// whether one is stored) and returns the entry to store. Returning keep=false
// leaves the map untouched.
type UpdateFunc func(existing domain.Entry, exists bool) (next domain.Entry, keep bool)

// Update runs fn for one participant as an atomic read-modify-write. The
// meeting partition is created lazily; Update is the only write-path creator.
// A partition left empty is removed immediately.
func (s *Store) Update(meetingKey, participantKey string, fn UpdateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.meetings[meetingKey]
	if !ok {
		entries = make(map[string]domain.Entry)
		s.meetings[meetingKey] = entries
	}
	existing, exists := entries[participantKey]
	if next, keep := fn(existing, exists); keep {
		entries[participantKey] = next
	}
	if len(entries) == 0 {
		delete(s.meetings, meetingKey)
	}
}

// Remove deletes one participant's entry. An absent meeting or participant is
// a no-op, not an error.
func (s *Store) Remove(meetingKey, participantKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.meetings[meetingKey]
	if !ok {
		return
	}
	delete(entries, participantKey)
	if len(entries) == 0 {
		delete(s.meetings, meetingKey)
	}
}

// Snapshot returns a copy of a meeting's entries. Absent meetings yield an
// empty map; reads never create partitions.
func (s *Store) Snapshot(meetingKey string) map[string]domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.meetings[meetingKey]
	out := make(map[string]domain.Entry, len(entries))
	for k, e := range entries {
		out[k] = e
	}
	return out
}

// DeleteMeeting drops an entire partition (meeting teardown).
func (s *Store) DeleteMeeting(meetingKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meetings, meetingKey)
}

// MeetingKeys returns a defensive snapshot of partition keys, so that a sweep
// can iterate without racing writes to the partition map.
func (s *Store) MeetingKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.meetings))
	for k := range s.meetings {
		keys = append(keys, k)
	}
	return keys
}

// Prune deletes every entry of one meeting that fn selects and drops the
// partition if it ends up empty. It returns the number of removed entries.
func (s *Store) Prune(meetingKey string, fn func(participantKey string, e domain.Entry) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.meetings[meetingKey]
	if !ok {
		return 0
	}
	removed := 0
	for k, e := range entries {
		if fn(k, e) {
			delete(entries, k)
			removed++
		}
	}
	if len(entries) == 0 {
		delete(s.meetings, meetingKey)
	}
	return removed
}

// Len reports the number of meeting partitions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meetings)
}

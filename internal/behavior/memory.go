// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package behavior

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store, used when behavior persistence is
// disabled and in tests.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	// kind -> session -> events in ascending time order
	events map[Kind]map[string][]Event
}

var (
	_ Store         = (*MemoryStore)(nil)
	_ SessionLister = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:    time.Now,
		events: make(map[Kind]map[string][]Event, len(Kinds)),
	}
}

// SetClock overrides the time source used by Evict.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bySession := s.events[e.Kind]
	if bySession == nil {
		bySession = make(map[string][]Event)
		s.events[e.Kind] = bySession
	}
	list := bySession[e.SessionID]
	i := sort.Search(len(list), func(i int) bool { return list[i].Timestamp.After(e.Timestamp) })
	list = append(list, Event{})
	copy(list[i+1:], list[i:])
	list[i] = e.Clone()
	bySession[e.SessionID] = list
	return nil
}

// Query implements Store.
func (s *MemoryStore) Query(ctx context.Context, sessionID string, kind Kind, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.events[kind][sessionID]
	n := len(list)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Event, 0, n)
	for i := len(list) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, list[i].Clone())
	}
	return out, nil
}

// Evict implements Store.
func (s *MemoryStore) Evict(ctx context.Context, kind Kind, maxAge time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for session, list := range s.events[kind] {
		keep := sort.Search(len(list), func(i int) bool { return !list[i].Timestamp.Before(cutoff) })
		if keep == 0 {
			continue
		}
		removed += keep
		if keep == len(list) {
			delete(s.events[kind], session)
			continue
		}
		s.events[kind][session] = append([]Event(nil), list[keep:]...)
	}
	return removed, nil
}

// Sessions implements SessionLister.
func (s *MemoryStore) Sessions(ctx context.Context, kind Kind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.events[kind]))
	for id := range s.events[kind] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

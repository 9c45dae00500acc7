// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package behavior

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelrank/internal/cache"
	"github.com/tomtom215/reelrank/internal/metrics"
)

// DefaultIdleTimeout ends a session after 30 minutes without activity.
const DefaultIdleTimeout = 30 * time.Minute

// Session is an anonymous, time-bounded visitor context. It is never
// persisted and never merged across devices.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	LastSeen  time.Time `json:"lastSeen"`
	Device    string    `json:"device,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
}

// SessionTracker hands out session ids. A session stays alive while it is
// touched at least once per idle timeout.
type SessionTracker struct {
	sessions *cache.LRU[Session]
	now      func() time.Time
}

// NewSessionTracker tracks up to capacity live sessions.
func NewSessionTracker(capacity int, idle time.Duration) *SessionTracker {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &SessionTracker{
		sessions: cache.NewLRU[Session](capacity, idle),
		now:      time.Now,
	}
}

// SetClock overrides the time source.
func (t *SessionTracker) SetClock(now func() time.Time) {
	t.now = now
	t.sessions.SetClock(now)
}

// Resolve returns the live session for id, or starts a new one when id is
// empty, unknown or idle for too long. created reports a new session.
func (t *SessionTracker) Resolve(id, device, referrer string) (s Session, created bool) {
	now := t.now().UTC()
	if id != "" {
		if s, ok := t.sessions.Get(id); ok {
			s.LastSeen = now
			t.sessions.Add(id, s)
			return s, false
		}
	}

	s = Session{
		ID:        uuid.New().String(),
		StartedAt: now,
		LastSeen:  now,
		Device:    device,
		Referrer:  referrer,
	}
	t.sessions.Add(s.ID, s)
	return s, true
}

// Lookup returns a live session without touching it.
func (t *SessionTracker) Lookup(id string) (Session, bool) {
	return t.sessions.Get(id)
}

// Sweep drops idle sessions and refreshes the active-session gauge.
func (t *SessionTracker) Sweep() int {
	removed := t.sessions.CleanupExpired()
	metrics.ActiveSessions.Set(float64(t.sessions.Len()))
	return removed
}
